package parser

import (
	"github.com/kievzenit/cyc/internal/ast"
	"github.com/kievzenit/cyc/internal/compiler_errors"
	"github.com/kievzenit/cyc/internal/lexer"
)

var bindingPowerLookup = map[lexer.TokenKind]int{
	lexer.OR:            10,
	lexer.AND:           20,
	lexer.EQUAL_EQUAL:   30,
	lexer.BANG_EQUAL:    30,
	lexer.LESS:          40,
	lexer.LESS_EQUAL:    40,
	lexer.GREATER:       40,
	lexer.GREATER_EQUAL: 40,
	lexer.PLUS:          50,
	lexer.MINUS:         50,
	lexer.STAR:          60,
	lexer.SLASH:         60,
	lexer.PERCENT:       60,
}

var declarationTypeKinds = append(append([]lexer.TokenKind{}, lexer.TypeKinds...), lexer.IDENTIFIER)

type Parser struct {
	fileName string
	module   string

	tokens *lexer.TokenCursor
	eh     compiler_errors.ErrorHandler
}

func NewParser(fileName string, tokens *lexer.TokenCursor, eh compiler_errors.ErrorHandler) *Parser {
	return &Parser{
		fileName: fileName,
		module:   lexer.ModuleName(fileName),

		tokens: tokens,
		eh:     eh,
	}
}

// ParseSource scans and parses one file. Lexical and syntax errors go to eh.
func ParseSource(src *lexer.SourceFile, eh compiler_errors.ErrorHandler) *ast.TranslationUnit {
	tokens := lexer.NewLexer(src, eh).Tokenize()
	return NewParser(src.Name, lexer.NewTokenCursor(tokens), eh).Parse()
}

// Parse reads top-level statements until EOF. A statement that fails to parse
// is reported and skipped together with any lines nested under it.
func (p *Parser) Parse() *ast.TranslationUnit {
	stmts := make([]ast.Stmt, 0)

	for !p.tokens.IsAtEnd() {
		if p.tokens.Match(lexer.NEWLINE) {
			continue
		}
		if p.unexpectedIndent(0) {
			continue
		}

		indent := p.tokens.Peek().Indent
		stmt, err := p.parseDeclaration()
		if err != nil {
			p.report(err)
			p.synchronize(indent)
			continue
		}

		stmts = append(stmts, stmt)
	}

	return &ast.TranslationUnit{
		FileName: p.fileName,
		Module:   p.module,
		Stmts:    stmts,
	}
}

func (p *Parser) parseDeclaration() (ast.Stmt, error) {
	switch {
	case p.tokens.Check(lexer.CLASS):
		return p.parseClassDeclStmt()
	case p.isDeclarationStart():
		if p.tokens.CheckAt(lexer.LEFT_PAREN, 2) {
			return p.parseFuncDeclStmt()
		}
		return p.parseVarDeclStmt(true)
	}

	return p.parseStmt()
}

// isDeclarationStart reports whether a type name followed by an identifier is
// next.
func (p *Parser) isDeclarationStart() bool {
	return p.tokens.CheckAny(declarationTypeKinds...) && p.tokens.CheckAt(lexer.IDENTIFIER, 1)
}

func (p *Parser) parseClassDeclStmt() (*ast.ClassDeclStmt, error) {
	startToken, err := p.expect(lexer.CLASS, "expected 'class'")
	if err != nil {
		return nil, err
	}

	name, err := p.expect(lexer.IDENTIFIER, "expected class name")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.NEWLINE, "expected newline after class name"); err != nil {
		return nil, err
	}

	classDeclStmt := &ast.ClassDeclStmt{
		StartToken: startToken,

		Name:    name.Lexeme,
		Members: make([]*ast.VarDeclStmt, 0),
		Methods: make([]*ast.FuncDeclStmt, 0),
		Classes: make([]*ast.ClassDeclStmt, 0),
	}

	level := p.tokens.Peek().Indent
	for p.isInsideBlock(startToken) {
		if p.unexpectedIndent(level) {
			continue
		}

		indent := p.tokens.Peek().Indent
		if err := p.parseClassMember(classDeclStmt); err != nil {
			p.report(err)
			p.synchronize(indent)
		}
	}

	return classDeclStmt, nil
}

func (p *Parser) parseClassMember(classDeclStmt *ast.ClassDeclStmt) error {
	switch {
	case p.tokens.Check(lexer.CLASS):
		nested, err := p.parseClassDeclStmt()
		if err != nil {
			return err
		}
		classDeclStmt.Classes = append(classDeclStmt.Classes, nested)
		return nil

	case p.isDeclarationStart() && p.tokens.CheckAt(lexer.LEFT_PAREN, 2):
		method, err := p.parseFuncDeclStmt()
		if err != nil {
			return err
		}
		classDeclStmt.Methods = append(classDeclStmt.Methods, method)
		return nil

	case p.isDeclarationStart():
		if p.tokens.CheckAt(lexer.EQUAL, 2) {
			return lexer.NewParseError(p.tokens.PeekAt(2), "class members cannot have initializers")
		}

		member, err := p.parseVarDeclStmt(true)
		if err != nil {
			return err
		}
		classDeclStmt.Members = append(classDeclStmt.Members, member)
		return nil
	}

	return lexer.NewParseError(p.tokens.Peek(), "expected member, method or nested class declaration")
}

func (p *Parser) parseFuncDeclStmt() (*ast.FuncDeclStmt, error) {
	returnType, err := p.parseTypeStmt()
	if err != nil {
		return nil, err
	}

	name, err := p.expect(lexer.IDENTIFIER, "expected function name")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.LEFT_PAREN, "expected '(' after function name"); err != nil {
		return nil, err
	}

	params := make([]*ast.ParamStmt, 0)
	if !p.tokens.Check(lexer.RIGHT_PAREN) {
		for {
			param, err := p.parseParamStmt()
			if err != nil {
				return nil, err
			}
			params = append(params, param)

			if !p.tokens.Match(lexer.COMMA) {
				break
			}
		}
	}

	if _, err := p.expect(lexer.RIGHT_PAREN, "expected ')' after parameters"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.NEWLINE, "expected newline after function signature"); err != nil {
		return nil, err
	}

	body := p.parseBlockStmt(returnType.StartToken)

	return &ast.FuncDeclStmt{
		StartToken: returnType.StartToken,

		ReturnType: returnType,
		Name:       name.Lexeme,
		Params:     params,
		Body:       body,
	}, nil
}

func (p *Parser) parseParamStmt() (*ast.ParamStmt, error) {
	paramType, err := p.parseTypeStmt()
	if err != nil {
		return nil, err
	}

	name, err := p.expect(lexer.IDENTIFIER, "expected parameter name")
	if err != nil {
		return nil, err
	}

	return &ast.ParamStmt{
		StartToken: paramType.StartToken,

		Type: paramType,
		Name: name.Lexeme,
	}, nil
}

func (p *Parser) parseVarDeclStmt(expectNewline bool) (*ast.VarDeclStmt, error) {
	varType, err := p.parseTypeStmt()
	if err != nil {
		return nil, err
	}

	name, err := p.expect(lexer.IDENTIFIER, "expected variable name")
	if err != nil {
		return nil, err
	}

	var value ast.Expr
	if p.tokens.Match(lexer.EQUAL) {
		value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	if expectNewline {
		if _, err := p.expect(lexer.NEWLINE, "expected newline after variable declaration"); err != nil {
			return nil, err
		}
	}

	return &ast.VarDeclStmt{
		StartToken: varType.StartToken,

		Type:  varType,
		Name:  name.Lexeme,
		Value: value,
	}, nil
}

func (p *Parser) parseTypeStmt() (*ast.TypeStmt, error) {
	token, err := p.expectAny("expected type name", declarationTypeKinds...)
	if err != nil {
		return nil, err
	}
	return ast.NewTypeStmt(token), nil
}

// parseBlockStmt reads every statement indented deeper than owner. An empty
// block is reported but still returned so the enclosing statement survives.
func (p *Parser) parseBlockStmt(owner *lexer.Token) *ast.BlockStmt {
	first := p.tokens.Peek()
	block := &ast.BlockStmt{
		StartToken: &first,

		Stmts: make([]ast.Stmt, 0),
	}

	if !p.isInsideBlock(owner) {
		p.report(lexer.NewParseError(first, "expected an indented block"))
		return block
	}

	for p.isInsideBlock(owner) {
		if p.unexpectedIndent(first.Indent) {
			continue
		}

		indent := p.tokens.Peek().Indent
		stmt, err := p.parseDeclaration()
		if err != nil {
			p.report(err)
			p.synchronize(indent)
			continue
		}
		block.Stmts = append(block.Stmts, stmt)
	}

	return block
}

func (p *Parser) isInsideBlock(owner *lexer.Token) bool {
	return !p.tokens.IsAtEnd() && p.tokens.Peek().Indent > owner.Indent
}

// unexpectedIndent reports a line indented deeper than its siblings at level
// and skips it together with its own nested lines.
func (p *Parser) unexpectedIndent(level int) bool {
	token := p.tokens.Peek()
	if token.Indent <= level {
		return false
	}

	p.report(lexer.NewParseError(token, "unexpected indent"))
	p.synchronize(level)
	return true
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.tokens.Peek().Kind {
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	}

	return p.parseExprStmt()
}

func (p *Parser) parseIfStmt() (*ast.IfStmt, error) {
	startToken, err := p.expect(lexer.IF, "expected 'if'")
	if err != nil {
		return nil, err
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.NEWLINE, "expected newline after if condition"); err != nil {
		return nil, err
	}
	then := p.parseBlockStmt(startToken)

	ifStmt := &ast.IfStmt{
		StartToken: startToken,

		Cond: cond,
		Then: then,
	}

	if !p.tokens.Check(lexer.ELSE) || p.tokens.Peek().Indent != startToken.Indent {
		return ifStmt, nil
	}

	elseToken := p.read()
	if p.tokens.Check(lexer.IF) {
		elseIf, err := p.parseIfStmt()
		if err != nil {
			return nil, err
		}
		ifStmt.Else = elseIf
		return ifStmt, nil
	}

	if _, err := p.expect(lexer.NEWLINE, "expected newline after 'else'"); err != nil {
		return nil, err
	}
	ifStmt.Else = p.parseBlockStmt(elseToken)

	return ifStmt, nil
}

func (p *Parser) parseWhileStmt() (*ast.WhileStmt, error) {
	startToken, err := p.expect(lexer.WHILE, "expected 'while'")
	if err != nil {
		return nil, err
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.NEWLINE, "expected newline after while condition"); err != nil {
		return nil, err
	}

	return &ast.WhileStmt{
		StartToken: startToken,

		Cond: cond,
		Body: p.parseBlockStmt(startToken),
	}, nil
}

func (p *Parser) parseForStmt() (*ast.ForStmt, error) {
	startToken, err := p.expect(lexer.FOR, "expected 'for'")
	if err != nil {
		return nil, err
	}

	forStmt := &ast.ForStmt{
		StartToken: startToken,
	}

	if !p.tokens.Check(lexer.SEMICOLON) {
		if p.isDeclarationStart() {
			forStmt.Init, err = p.parseVarDeclStmt(false)
		} else {
			var expr ast.Expr
			expr, err = p.parseExpr()
			if err == nil {
				forStmt.Init = &ast.ExprStmt{StartToken: expr.FirstToken(), Expr: expr}
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON, "expected ';' after for initializer"); err != nil {
		return nil, err
	}

	if !p.tokens.Check(lexer.SEMICOLON) {
		if forStmt.Cond, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON, "expected ';' after for condition"); err != nil {
		return nil, err
	}

	if !p.tokens.Check(lexer.NEWLINE) {
		if forStmt.Incr, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.NEWLINE, "expected newline after for clauses"); err != nil {
		return nil, err
	}

	forStmt.Body = p.parseBlockStmt(startToken)
	return forStmt, nil
}

func (p *Parser) parseReturnStmt() (*ast.ReturnStmt, error) {
	startToken, err := p.expect(lexer.RETURN, "expected 'return'")
	if err != nil {
		return nil, err
	}

	returnStmt := &ast.ReturnStmt{
		StartToken: startToken,
	}

	if !p.tokens.Check(lexer.NEWLINE) {
		if returnStmt.Value, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(lexer.NEWLINE, "expected newline after return value"); err != nil {
		return nil, err
	}

	return returnStmt, nil
}

func (p *Parser) parseExprStmt() (*ast.ExprStmt, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.NEWLINE, "expected newline after expression"); err != nil {
		return nil, err
	}

	return &ast.ExprStmt{
		StartToken: expr.FirstToken(),

		Expr: expr,
	}, nil
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseAssignExpr()
}

func (p *Parser) parseAssignExpr() (ast.Expr, error) {
	expr, err := p.parseBinaryExpr(0)
	if err != nil {
		return nil, err
	}

	if !p.tokens.Check(lexer.EQUAL) {
		return expr, nil
	}
	equals := p.read()

	value, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}

	switch target := expr.(type) {
	case *ast.VariableExpr:
		return &ast.AssignExpr{
			StartToken: target.StartToken,

			Name:  target.Name,
			Value: value,
		}, nil
	case *ast.GetExpr:
		return &ast.SetExpr{
			StartToken: target.StartToken,

			Object: target.Object,
			Name:   target.Name,
			Value:  value,
		}, nil
	}

	return nil, lexer.NewParseError(*equals, "invalid assignment target")
}

func (p *Parser) parseBinaryExpr(bindingPower int) (ast.Expr, error) {
	left, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}

	for {
		op := p.tokens.Peek()
		currentBindingPower, ok := bindingPowerLookup[op.Kind]
		if !ok || currentBindingPower < bindingPower {
			return left, nil
		}
		p.read()

		right, err := p.parseBinaryExpr(currentBindingPower + 1)
		if err != nil {
			return nil, err
		}

		left = &ast.BinaryExpr{
			StartToken: left.FirstToken(),

			Left:     left,
			Operator: op.Kind,
			Right:    right,
		}
	}
}

func (p *Parser) parseUnaryExpr() (ast.Expr, error) {
	if p.isCurrAny(lexer.BANG, lexer.MINUS, lexer.PLUS_PLUS, lexer.MINUS_MINUS) {
		op := p.read()

		operand, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}

		return &ast.UnaryExpr{
			StartToken: op,

			Operator: op.Kind,
			Operand:  operand,
		}, nil
	}

	return p.parseCallExpr()
}

func (p *Parser) parseCallExpr() (ast.Expr, error) {
	expr, err := p.parsePrimaryExpr()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.tokens.Match(lexer.LEFT_PAREN):
			args := make([]ast.Expr, 0)
			if !p.tokens.Check(lexer.RIGHT_PAREN) {
				for {
					arg, err := p.parseExpr()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)

					if !p.tokens.Match(lexer.COMMA) {
						break
					}
				}
			}

			if _, err := p.expect(lexer.RIGHT_PAREN, "expected ')' after arguments"); err != nil {
				return nil, err
			}

			expr = &ast.CallExpr{
				StartToken: expr.FirstToken(),

				Callee: expr,
				Args:   args,
			}

		case p.tokens.Match(lexer.DOT):
			name, err := p.expect(lexer.IDENTIFIER, "expected member name after '.'")
			if err != nil {
				return nil, err
			}

			expr = &ast.GetExpr{
				StartToken: name,

				Object: expr,
				Name:   name.Lexeme,
			}

		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimaryExpr() (ast.Expr, error) {
	switch p.tokens.Peek().Kind {
	case lexer.TRUE:
		return &ast.LiteralExpr{StartToken: p.read(), Value: true}, nil
	case lexer.FALSE:
		return &ast.LiteralExpr{StartToken: p.read(), Value: false}, nil
	case lexer.NULL:
		return &ast.LiteralExpr{StartToken: p.read(), Value: nil}, nil

	case lexer.INT_LITERAL, lexer.FLOAT_LITERAL, lexer.STR_LITERAL:
		token := p.read()
		return &ast.LiteralExpr{StartToken: token, Value: token.Literal}, nil

	case lexer.IDENTIFIER:
		token := p.read()
		return &ast.VariableExpr{StartToken: token, Name: token.Lexeme}, nil

	case lexer.LEFT_PAREN:
		startToken := p.read()

		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(lexer.RIGHT_PAREN, "expected ')' after expression"); err != nil {
			return nil, err
		}

		return &ast.GroupingExpr{
			StartToken: startToken,

			Expr: expr,
		}, nil
	}

	return nil, lexer.NewParseError(p.tokens.Peek(), "expected expression")
}

// synchronize skips the rest of the failing line and every line indented
// deeper than indent.
func (p *Parser) synchronize(indent int) {
	p.skipLine()
	for !p.tokens.IsAtEnd() && p.tokens.Peek().Indent > indent {
		p.skipLine()
	}
}

func (p *Parser) skipLine() {
	for !p.tokens.IsAtEnd() && !p.tokens.Match(lexer.NEWLINE) {
		p.tokens.Advance()
	}
}

func (p *Parser) report(err error) {
	if pe, ok := err.(*lexer.ParseError); ok {
		p.eh.AddError(pe)
		return
	}

	token := p.tokens.Peek()
	p.eh.AddError(compiler_errors.NewSourceError(
		compiler_errors.PhaseSyntax,
		p.fileName,
		token.Line,
		token.Offset,
		err.Error(),
	))
}

func (p *Parser) read() *lexer.Token {
	token := p.tokens.Advance()
	return &token
}

func (p *Parser) expect(kind lexer.TokenKind, message string) (*lexer.Token, error) {
	token, err := p.tokens.Consume(kind, message)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (p *Parser) expectAny(message string, kinds ...lexer.TokenKind) (*lexer.Token, error) {
	token, err := p.tokens.ConsumeAny(message, kinds...)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (p *Parser) isCurrAny(kinds ...lexer.TokenKind) bool {
	return p.tokens.CheckAny(kinds...)
}
