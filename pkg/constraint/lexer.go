package constraint

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokParam
	tokString
	tokEq
	tokNe
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokComma
	tokIf
	tokThen
	tokElse
	tokAnd
	tokOr
	tokNot
	tokIn
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokParam:
		return "parameter"
	case tokString:
		return "string"
	case tokEq:
		return "="
	case tokNe:
		return "<>"
	case tokLBrace:
		return "{"
	case tokRBrace:
		return "}"
	case tokLParen:
		return "("
	case tokRParen:
		return ")"
	case tokComma:
		return ","
	case tokIf:
		return "IF"
	case tokThen:
		return "THEN"
	case tokElse:
		return "ELSE"
	case tokAnd:
		return "AND"
	case tokOr:
		return "OR"
	case tokNot:
		return "NOT"
	case tokIn:
		return "IN"
	}
	return "unknown"
}

// token carries its 1-based byte position in the source text so parse
// errors can point at the offending spot.
type token struct {
	kind tokenKind
	text string
	pos  int
}

var keywords = map[string]tokenKind{
	"IF":   tokIf,
	"THEN": tokThen,
	"ELSE": tokElse,
	"AND":  tokAnd,
	"OR":   tokOr,
	"NOT":  tokNot,
	"IN":   tokIn,
}

// lex splits a constraint text into tokens. The only error cases are
// unterminated parameter brackets or string literals and characters the
// language has no use for.
func lex(src string) ([]token, *ParseError) {
	var tokens []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '[':
			end := strings.IndexByte(src[i+1:], ']')
			if end < 0 {
				return nil, &ParseError{Pos: i + 1, Token: "[", Msg: "unterminated parameter name, missing ']'"}
			}
			name := strings.TrimSpace(src[i+1 : i+1+end])
			if name == "" {
				return nil, &ParseError{Pos: i + 1, Token: "[]", Msg: "empty parameter name"}
			}
			tokens = append(tokens, token{kind: tokParam, text: name, pos: i + 1})
			i += end + 2
		case c == '"':
			end := strings.IndexByte(src[i+1:], '"')
			if end < 0 {
				return nil, &ParseError{Pos: i + 1, Token: `"`, Msg: `unterminated string literal, missing '"'`}
			}
			tokens = append(tokens, token{kind: tokString, text: src[i+1 : i+1+end], pos: i + 1})
			i += end + 2
		case c == '=':
			tokens = append(tokens, token{kind: tokEq, text: "=", pos: i + 1})
			i++
		case c == '<':
			if i+1 < len(src) && src[i+1] == '>' {
				tokens = append(tokens, token{kind: tokNe, text: "<>", pos: i + 1})
				i += 2
			} else {
				return nil, &ParseError{Pos: i + 1, Token: "<", Msg: "expected '<>'"}
			}
		case c == '{':
			tokens = append(tokens, token{kind: tokLBrace, text: "{", pos: i + 1})
			i++
		case c == '}':
			tokens = append(tokens, token{kind: tokRBrace, text: "}", pos: i + 1})
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i + 1})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i + 1})
			i++
		case c == ',':
			tokens = append(tokens, token{kind: tokComma, text: ",", pos: i + 1})
			i++
		case isWordByte(c):
			start := i
			for i < len(src) && isWordByte(src[i]) {
				i++
			}
			word := src[start:i]
			kind, ok := keywords[strings.ToUpper(word)]
			if !ok {
				return nil, &ParseError{Pos: start + 1, Token: word, Msg: fmt.Sprintf("unexpected word %q, keywords are IF, THEN, ELSE, AND, OR, NOT, IN", word)}
			}
			tokens = append(tokens, token{kind: kind, text: word, pos: start + 1})
		default:
			return nil, &ParseError{Pos: i + 1, Token: string(c), Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	tokens = append(tokens, token{kind: tokEOF, text: "", pos: len(src) + 1})
	return tokens, nil
}

func isWordByte(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))
}
