package parser

import (
	"fmt"
	"strings"
)

const supportedStatements = "SHOW TABLES, CREATE TABLE, INSERT INTO, SELECT, UPDATE, DELETE FROM"

type statementParser func(p *parser) (Command, error)

// statements maps the leading keyword of a statement to its parse function.
var statements = map[string]statementParser{
	"SHOW":   parseShowTables,
	"CREATE": parseCreateTable,
	"INSERT": parseInsert,
	"SELECT": parseSelect,
	"UPDATE": parseUpdate,
	"DELETE": parseDelete,
}

// Words that can never be a table or column name.
var reserved = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "JOIN": true, "INNER": true, "ON": true,
	"INSERT": true, "INTO": true, "VALUES": true, "UPDATE": true, "SET": true,
	"DELETE": true, "CREATE": true, "TABLE": true,
}

// Parse turns one SQL statement into a Command. A single trailing semicolon
// is allowed.
func Parse(sql string) (Command, error) {
	toks := Tokenize(sql)
	first := toks[0]
	if first.Type == EOF {
		return nil, &SyntaxError{Statement: "SQL", Expected: supportedStatements, Detail: "empty statement"}
	}
	if first.Type != IDENT {
		return nil, &SyntaxError{Statement: "SQL", Expected: supportedStatements, Detail: "unexpected " + first.describe()}
	}

	parse, ok := statements[strings.ToUpper(first.Value)]
	if !ok {
		return nil, &SyntaxError{Statement: "SQL", Expected: supportedStatements, Detail: fmt.Sprintf("unsupported command %q", first.Value)}
	}

	p := &parser{toks: toks}
	return parse(p)
}

type parser struct {
	toks []Token
	pos  int

	// statement and shape are what a SyntaxError reports
	statement string
	shape     string
}

func (p *parser) begin(statement, shape string) {
	p.statement = statement
	p.shape = shape
}

func (p *parser) peek() Token {
	return p.toks[p.pos]
}

func (p *parser) next() Token {
	tok := p.toks[p.pos]
	if tok.Type != EOF && tok.Type != INVALID {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Statement: p.statement,
		Expected:  p.shape,
		Detail:    fmt.Sprintf(format, args...),
	}
}

func (p *parser) unexpected(want string) *SyntaxError {
	return p.errorf("expected %s, got %s", want, p.peek().describe())
}

// acceptKeyword consumes the next token if it is keyword.
func (p *parser) acceptKeyword(keyword string) bool {
	if p.peek().Is(keyword) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectKeyword(keywords ...string) error {
	for _, kw := range keywords {
		if !p.acceptKeyword(kw) {
			return p.unexpected(kw)
		}
	}
	return nil
}

func (p *parser) accept(tt TokenType) bool {
	if p.peek().Type == tt {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(tt TokenType) error {
	if !p.accept(tt) {
		return p.unexpected(tt.String())
	}
	return nil
}

// ident reads a table or column name.
func (p *parser) ident(what string) (string, error) {
	tok := p.peek()
	if tok.Type != IDENT || reserved[strings.ToUpper(tok.Value)] {
		return "", p.unexpected(what)
	}
	p.next()
	return tok.Value, nil
}

// columnRef reads a column name, optionally qualified as table.column.
func (p *parser) columnRef() (string, error) {
	name, err := p.ident("column name")
	if err != nil {
		return "", err
	}
	if p.accept(DOT) {
		col, err := p.ident("column name")
		if err != nil {
			return "", err
		}
		name = name + "." + col
	}
	return name, nil
}

// literal reads one literal and returns its source text. The text is not
// interpreted here.
func (p *parser) literal() (string, error) {
	tok := p.peek()
	switch tok.Type {
	case MINUS, PLUS:
		p.next()
		num := p.peek()
		if num.Type != NUMBER {
			return "", p.unexpected("number after sign")
		}
		p.next()
		return tok.Value + num.Value, nil
	case NUMBER, STRING:
		p.next()
		return tok.Value, nil
	case IDENT:
		if tok.Is("true") || tok.Is("false") || tok.Is("null") {
			p.next()
			return tok.Value, nil
		}
	}
	return "", p.unexpected("literal value")
}

// columnList reads "*" or a comma separated list of column refs. A nil
// result means "*".
func (p *parser) columnList() ([]string, error) {
	if p.accept(ASTERISK) {
		return nil, nil
	}
	var cols []string
	for {
		col, err := p.columnRef()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if !p.accept(COMMA) {
			return cols, nil
		}
	}
}

// where reads an optional WHERE col = literal clause.
func (p *parser) where() (*Where, error) {
	if !p.acceptKeyword("WHERE") {
		return nil, nil
	}
	col, err := p.columnRef()
	if err != nil {
		return nil, err
	}
	if err := p.expect(EQUALS); err != nil {
		return nil, err
	}
	val, err := p.literal()
	if err != nil {
		return nil, err
	}
	return &Where{Column: col, Value: val}, nil
}

// end consumes an optional semicolon and requires the end of input.
func (p *parser) end() error {
	p.accept(SEMICOLON)
	if p.peek().Type != EOF {
		return p.unexpected("end of statement")
	}
	return nil
}
