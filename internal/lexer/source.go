package lexer

import (
	"path/filepath"
	"strings"
)

type SourceFile struct {
	Name string

	text       []rune
	lineStarts []int
}

func NewSourceFile(name string, text string) *SourceFile {
	runes := []rune(text)
	lineStarts := []int{0}
	for i, r := range runes {
		if r == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}

	return &SourceFile{
		Name:       name,
		text:       runes,
		lineStarts: lineStarts,
	}
}

func (s *SourceFile) Runes() []rune {
	return s.text
}

func (s *SourceFile) ModuleName() string {
	return ModuleName(s.Name)
}

// ModuleName is the file's base name without its extension.
func ModuleName(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LineText returns the 1-based line without its line terminator.
func (s *SourceFile) LineText(line int) string {
	if line < 1 || line > len(s.lineStarts) {
		return ""
	}

	start := s.lineStarts[line-1]
	end := len(s.text)
	if line < len(s.lineStarts) {
		end = s.lineStarts[line] - 1
	}

	return strings.TrimSuffix(string(s.text[start:end]), "\r")
}

// Column converts an absolute offset into a 0-based column on its line.
func (s *SourceFile) Column(offset int) int {
	line := 0
	for i, start := range s.lineStarts {
		if start > offset {
			break
		}
		line = i
	}
	return offset - s.lineStarts[line]
}
