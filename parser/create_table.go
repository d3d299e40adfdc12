package parser

import "strings"

const createTableShape = "CREATE TABLE table_name (col1 TYPE [PRIMARY KEY] [UNIQUE] [NOT NULL], col2 TYPE, ...)"

func parseCreateTable(p *parser) (Command, error) {
	p.begin("CREATE TABLE", createTableShape)
	if err := p.expectKeyword("CREATE", "TABLE"); err != nil {
		return nil, err
	}
	name, err := p.ident("table name")
	if err != nil {
		return nil, err
	}
	if err := p.expect(LPAREN); err != nil {
		return nil, err
	}

	cmd := CreateTable{Table: name}
	for {
		def, err := parseColumnDef(p)
		if err != nil {
			return nil, err
		}
		cmd.Columns = append(cmd.Columns, def)
		if p.accept(COMMA) {
			continue
		}
		if err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		break
	}

	if err := p.end(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func parseColumnDef(p *parser) (ColumnDef, error) {
	var def ColumnDef
	name, err := p.ident("column name")
	if err != nil {
		return def, err
	}
	def.Name = name

	typeTok := p.peek()
	if typeTok.Type != IDENT {
		return def, p.unexpected("column type")
	}
	p.next()
	def.Type = strings.ToUpper(typeTok.Value)
	// VARCHAR(255) style lengths are accepted and dropped
	if p.accept(LPAREN) {
		if err := p.expect(NUMBER); err != nil {
			return def, err
		}
		if err := p.expect(RPAREN); err != nil {
			return def, err
		}
	}

	def.Nullable = true
	for {
		tok := p.peek()
		switch {
		case tok.Is("PRIMARY"):
			if err := p.expectKeyword("PRIMARY", "KEY"); err != nil {
				return def, err
			}
			def.Primary = true
			def.Unique = true
		case tok.Is("UNIQUE"):
			p.next()
			def.Unique = true
		case tok.Is("NOT"):
			if err := p.expectKeyword("NOT", "NULL"); err != nil {
				return def, err
			}
			def.Nullable = false
		case tok.Is("NULL"):
			p.next()
			def.Nullable = true
		case tok.Type == COMMA || tok.Type == RPAREN:
			return def, nil
		default:
			return def, p.errorf("unexpected %s in definition of column %q", tok.describe(), def.Name)
		}
	}
}
