package lexer

// Cursor walks source text one codepoint at a time. Every operation is total:
// reads past the end return 0 rather than failing.
type Cursor struct {
	src []rune

	pos   int
	start int
}

func NewCursor(src []rune) *Cursor {
	return &Cursor{src: src}
}

// Advance returns the current character and moves past it.
func (c *Cursor) Advance() rune {
	if c.IsAtEnd(0) {
		return 0
	}

	r := c.src[c.pos]
	c.pos++
	return r
}

func (c *Cursor) Peek() rune {
	return c.at(0)
}

func (c *Cursor) PeekNext() rune {
	return c.at(1)
}

func (c *Cursor) at(offset int) rune {
	if c.IsAtEnd(offset) {
		return 0
	}
	return c.src[c.pos+offset]
}

// Start marks the beginning of the current lexeme.
func (c *Cursor) Start() {
	c.start = c.pos
}

// Text returns everything consumed since the last Start.
func (c *Cursor) Text() string {
	return string(c.src[c.start:c.pos])
}

// Slice returns the consumed span with its bounds moved by startOffset and
// endOffset, so Slice(1, -1) strips a pair of delimiters. The bounds are clamped
// to the span itself.
func (c *Cursor) Slice(startOffset, endOffset int) string {
	from := c.start + startOffset
	to := c.pos + endOffset
	if from < c.start {
		from = c.start
	}
	if to > c.pos {
		to = c.pos
	}
	if from >= to {
		return ""
	}
	return string(c.src[from:to])
}

// IsAtEnd reports whether the position offset characters ahead lies past the input.
func (c *Cursor) IsAtEnd(offset int) bool {
	return c.pos+offset >= len(c.src)
}

func (c *Cursor) Pos() int      { return c.pos }
func (c *Cursor) StartPos() int { return c.start }
