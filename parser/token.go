package parser

import "strings"

type TokenType int

const (
	EOF TokenType = iota
	// IDENT covers keywords too; keywords are matched case-insensitively by
	// the statement parsers.
	IDENT
	NUMBER
	STRING
	COMMA
	LPAREN
	RPAREN
	SEMICOLON
	EQUALS
	DOT
	ASTERISK
	MINUS
	PLUS
	INVALID
)

var tokenTypeNames = map[TokenType]string{
	EOF:       "end of input",
	IDENT:     "identifier",
	NUMBER:    "number",
	STRING:    "string",
	COMMA:     "','",
	LPAREN:    "'('",
	RPAREN:    "')'",
	SEMICOLON: "';'",
	EQUALS:    "'='",
	DOT:       "'.'",
	ASTERISK:  "'*'",
	MINUS:     "'-'",
	PLUS:      "'+'",
	INVALID:   "invalid token",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

type Token struct {
	Type TokenType
	// Value is the exact source text, quotes included for strings
	Value    string
	Position int
}

// Is reports whether the token is the given keyword, ignoring case.
func (t Token) Is(keyword string) bool {
	return t.Type == IDENT && strings.EqualFold(t.Value, keyword)
}

func (t Token) describe() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case INVALID:
		return t.Value
	default:
		return "'" + t.Value + "'"
	}
}
