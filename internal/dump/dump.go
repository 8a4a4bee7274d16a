package dump

import (
	"fmt"
	"io"
	"regexp"
	"text/tabwriter"

	"github.com/sanity-io/litter"

	"github.com/kievzenit/cyc/internal/ast"
	"github.com/kievzenit/cyc/internal/lexer"
	"github.com/kievzenit/cyc/internal/types"
)

// Tokens writes one row per token. IGNORED tokens are skipped unless all is
// set.
func Tokens(w io.Writer, tokens []lexer.Token, all bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LEXEME\tKIND\tLITERAL\tINDENT\tLINE\tOFFSET")

	for _, token := range tokens {
		if token.Kind == lexer.IGNORED && !all {
			continue
		}

		literal := ""
		if token.Literal != nil {
			literal = fmt.Sprintf("%v", token.Literal)
		}

		fmt.Fprintf(tw, "%q\t%s\t%s\t%d\t%d\t%d\n",
			token.Lexeme, token.Kind, literal, token.Indent, token.Line, token.Offset)
	}

	return tw.Flush()
}

// AST writes every top-level statement of unit as an s-expression.
func AST(w io.Writer, unit *ast.TranslationUnit) error {
	_, err := io.WriteString(w, ast.PrintUnit(unit))
	return err
}

// TypeTable lists every definition, object children indented beneath their
// parent in declaration order.
func TypeTable(w io.Writer, table *types.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FORMAT\tNAME\tBITS\tBYTES\tALIGN\tOFFSET")

	for _, def := range table.Definitions() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t\n",
			def.Format(), def.Name(), def.BitSize(), def.ByteSize(), def.Alignment())

		obj, ok := def.(*types.ObjectType)
		if !ok {
			continue
		}
		for _, child := range obj.Children {
			fmt.Fprintf(tw, "  %s\t%s %s\t%d\t%d\t%d\t%d\n",
				child.Type.Format(), child.Type.Name(), child.Name,
				child.Type.BitSize(), child.Type.ByteSize(), child.Type.Alignment(), child.Offset)
		}
	}

	return tw.Flush()
}

var rawOptions = litter.Options{
	HidePrivateFields: true,
	FieldExclusions:   regexp.MustCompile(`^(StartToken|Def)$`),
}

// Raw dumps any value with its full Go structure.
func Raw(w io.Writer, value any) error {
	_, err := io.WriteString(w, rawOptions.Sdump(value))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
