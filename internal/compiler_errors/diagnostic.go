package compiler_errors

// LineSource gives access to the text of one source file.
type LineSource interface {
	LineText(line int) string
	Column(offset int) int
}

// Diagnostic is the structured payload handed to an error display. The core never
// formats final user-facing text; it only fills these fields.
type Diagnostic struct {
	Phase      Phase
	FileName   string
	Line       int
	Column     int
	SourceLine string
	Message    string
}

// Display renders diagnostics for the user.
type Display interface {
	Show(d Diagnostic)
}

// Diagnose converts a compiler error into a Diagnostic. Errors without a position
// produce a Diagnostic with only Phase and Message set. sources may be nil.
func Diagnose(err CompilerError, sources map[string]LineSource) Diagnostic {
	positioned, ok := err.(PositionedError)
	if !ok {
		d := Diagnostic{Message: err.GetMessage(), Phase: PhaseType}
		if te, ok := err.(*TypeError); ok {
			d.FileName = te.FileName
			d.Line = te.Line
		}
		return d
	}

	d := Diagnostic{
		Phase:    positioned.GetPhase(),
		FileName: positioned.GetFileName(),
		Line:     positioned.GetLine(),
		Message:  positioned.GetMessage(),
	}

	if src, ok := sources[d.FileName]; ok && src != nil {
		d.SourceLine = src.LineText(d.Line)
		d.Column = src.Column(positioned.GetOffset())
	}

	return d
}

// ShowAll sends every error to the display in order.
func ShowAll(display Display, errs []CompilerError, sources map[string]LineSource) {
	for _, err := range errs {
		display.Show(Diagnose(err, sources))
	}
}
