package parser

import "fmt"

var singleCharTokens = map[byte]TokenType{
	',': COMMA,
	'(': LPAREN,
	')': RPAREN,
	';': SEMICOLON,
	'=': EQUALS,
	'.': DOT,
	'*': ASTERISK,
	'-': MINUS,
	'+': PLUS,
}

// Tokenize splits sql into tokens ending with EOF. Case is preserved; an
// unterminated string or stray character produces an INVALID token and stops
// the scan.
func Tokenize(sql string) []Token {
	var toks []Token
	pos := 0
	for {
		for pos < len(sql) && isSpace(sql[pos]) {
			pos++
		}
		if pos >= len(sql) {
			return append(toks, Token{Type: EOF, Position: pos})
		}

		start := pos
		ch := sql[pos]
		switch {
		case isIdentStart(ch):
			for pos < len(sql) && isIdentPart(sql[pos]) {
				pos++
			}
			toks = append(toks, Token{Type: IDENT, Value: sql[start:pos], Position: start})
		case isDigit(ch) || (ch == '.' && pos+1 < len(sql) && isDigit(sql[pos+1])):
			pos = scanNumber(sql, pos)
			toks = append(toks, Token{Type: NUMBER, Value: sql[start:pos], Position: start})
		case ch == '\'' || ch == '"':
			end, ok := scanString(sql, pos)
			if !ok {
				return append(toks, Token{Type: INVALID, Value: fmt.Sprintf("unterminated string at position %d", start), Position: start})
			}
			pos = end
			toks = append(toks, Token{Type: STRING, Value: sql[start:pos], Position: start})
		default:
			tt, ok := singleCharTokens[ch]
			if !ok {
				return append(toks, Token{Type: INVALID, Value: fmt.Sprintf("unexpected character %q at position %d", ch, start), Position: start})
			}
			pos++
			toks = append(toks, Token{Type: tt, Value: sql[start:pos], Position: start})
		}
	}
}

// scanNumber accepts digits, one fractional part and an optional exponent.
func scanNumber(sql string, pos int) int {
	for pos < len(sql) && isDigit(sql[pos]) {
		pos++
	}
	if pos < len(sql) && sql[pos] == '.' {
		pos++
		for pos < len(sql) && isDigit(sql[pos]) {
			pos++
		}
	}
	if pos < len(sql) && (sql[pos] == 'e' || sql[pos] == 'E') {
		next := pos + 1
		if next < len(sql) && (sql[next] == '+' || sql[next] == '-') {
			next++
		}
		if next < len(sql) && isDigit(sql[next]) {
			pos = next
			for pos < len(sql) && isDigit(sql[pos]) {
				pos++
			}
		}
	}
	return pos
}

// scanString returns the index just past the closing quote. A doubled quote
// inside the string is an escaped quote.
func scanString(sql string, pos int) (int, bool) {
	quote := sql[pos]
	pos++
	for pos < len(sql) {
		if sql[pos] == quote {
			if pos+1 < len(sql) && sql[pos+1] == quote {
				pos += 2
				continue
			}
			return pos + 1, true
		}
		pos++
	}
	return pos, false
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
