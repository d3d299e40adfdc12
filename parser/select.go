package parser

const (
	selectShape = "SELECT * FROM table_name [WHERE column = value]"
	joinShape   = "SELECT * FROM table1 JOIN table2 ON table1.column = table2.column [WHERE column = value]"
)

// parseSelect handles both plain selects and joins; the shape switches to the
// join form once a JOIN keyword is seen.
func parseSelect(p *parser) (Command, error) {
	p.begin("SELECT", selectShape)
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	cols, err := p.columnList()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	name, err := p.ident("table name")
	if err != nil {
		return nil, err
	}

	if p.peek().Is("JOIN") || p.peek().Is("INNER") {
		return parseJoin(p, cols, name)
	}

	where, err := p.where()
	if err != nil {
		return nil, err
	}
	if err := p.end(); err != nil {
		return nil, err
	}
	return Select{Columns: cols, Table: name, Where: where}, nil
}

func parseJoin(p *parser, cols []string, left string) (Command, error) {
	p.begin("JOIN", joinShape)
	p.acceptKeyword("INNER")
	if err := p.expectKeyword("JOIN"); err != nil {
		return nil, err
	}
	right, err := p.ident("table name")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("ON"); err != nil {
		return nil, err
	}
	leftCol, err := p.columnRef()
	if err != nil {
		return nil, err
	}
	if err := p.expect(EQUALS); err != nil {
		return nil, err
	}
	rightCol, err := p.columnRef()
	if err != nil {
		return nil, err
	}

	where, err := p.where()
	if err != nil {
		return nil, err
	}
	if err := p.end(); err != nil {
		return nil, err
	}
	return Join{
		Columns:     cols,
		Left:        left,
		Right:       right,
		LeftColumn:  leftCol,
		RightColumn: rightCol,
		Where:       where,
	}, nil
}
