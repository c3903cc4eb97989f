package constraint

import "fmt"

// ParseError reports a malformed constraint. Pos is the 1-based byte
// position of the offending token within the constraint text.
type ParseError struct {
	Pos   int
	Token string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d near %q: %s", e.Pos, e.Token, e.Msg)
}

// Parse turns one constraint text into its expression tree. The IF/THEN
// implication form is only recognized at the top level; everything else
// follows the precedence OR < AND < NOT < comparison.
func Parse(text string) (*Expr, error) {
	tokens, lexErr := lex(text)
	if lexErr != nil {
		return nil, lexErr
	}
	p := &parser{tokens: tokens}

	var expr *Expr
	var err *ParseError
	if p.peek().kind == tokIf {
		expr, err = p.implication()
	} else {
		expr, err = p.expr()
	}
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok, "unexpected trailing input")
	}
	return expr, nil
}

type parser struct {
	tokens []token
	next   int
}

func (p *parser) peek() token {
	return p.tokens[p.next]
}

func (p *parser) advance() token {
	tok := p.tokens[p.next]
	if tok.kind != tokEOF {
		p.next++
	}
	return tok
}

func (p *parser) expect(kind tokenKind) (token, *ParseError) {
	tok := p.peek()
	if tok.kind != kind {
		return tok, p.errorf(tok, "expected %s", kind)
	}
	return p.advance(), nil
}

func (p *parser) errorf(tok token, format string, args ...interface{}) *ParseError {
	text := tok.text
	if tok.kind == tokEOF {
		text = "<end>"
	}
	return &ParseError{Pos: tok.pos, Token: text, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) implication() (*Expr, *ParseError) {
	if _, err := p.expect(tokIf); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokThen); err != nil {
		return nil, err
	}
	then, err := p.expr()
	if err != nil {
		return nil, err
	}
	node := &Expr{Op: OpImplies, Left: cond, Right: then}
	if p.peek().kind == tokElse {
		p.advance()
		alt, err := p.expr()
		if err != nil {
			return nil, err
		}
		node.Else = alt
	}
	return node, nil
}

func (p *parser) expr() (*Expr, *ParseError) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.advance()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = &Expr{Op: OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) and() (*Expr, *ParseError) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.advance()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &Expr{Op: OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) unary() (*Expr, *ParseError) {
	if p.peek().kind == tokNot {
		p.advance()
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Expr{Op: OpNot, Left: inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (*Expr, *ParseError) {
	tok := p.peek()
	switch tok.kind {
	case tokLParen:
		p.advance()
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	case tokParam:
		return p.comparison()
	case tokIf:
		return nil, p.errorf(tok, "IF is only allowed at the start of a constraint")
	default:
		return nil, p.errorf(tok, "expected a comparison or '('")
	}
}

func (p *parser) comparison() (*Expr, *ParseError) {
	param := p.advance()
	tok := p.peek()
	switch tok.kind {
	case tokEq, tokNe:
		p.advance()
		lit, err := p.expect(tokString)
		if err != nil {
			return nil, err
		}
		op := OpEq
		if tok.kind == tokNe {
			op = OpNe
		}
		return &Expr{Op: op, Param: param.text, Value: lit.text}, nil
	case tokNot:
		p.advance()
		if _, err := p.expect(tokIn); err != nil {
			return nil, err
		}
		set, err := p.set()
		if err != nil {
			return nil, err
		}
		return &Expr{Op: OpNotIn, Param: param.text, Set: set}, nil
	case tokIn:
		p.advance()
		set, err := p.set()
		if err != nil {
			return nil, err
		}
		return &Expr{Op: OpIn, Param: param.text, Set: set}, nil
	default:
		return nil, p.errorf(tok, "expected '=', '<>', 'IN' or 'NOT IN' after [%s]", param.text)
	}
}

func (p *parser) set() ([]string, *ParseError) {
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	var values []string
	for {
		lit, err := p.expect(tokString)
		if err != nil {
			return nil, err
		}
		values = append(values, lit.text)
		tok := p.peek()
		if tok.kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(tokRBrace); err != nil {
		return nil, err
	}
	return values, nil
}
