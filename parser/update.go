package parser

const updateShape = "UPDATE table_name SET col1 = val1[, col2 = val2] [WHERE column = value]"

func parseUpdate(p *parser) (Command, error) {
	p.begin("UPDATE", updateShape)
	if err := p.expectKeyword("UPDATE"); err != nil {
		return nil, err
	}
	name, err := p.ident("table name")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}

	cmd := Update{Table: name}
	for {
		col, err := p.ident("column name")
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
		cmd.Set = append(cmd.Set, Assignment{Column: col, Value: val})
		if !p.accept(COMMA) {
			break
		}
	}

	if cmd.Where, err = p.where(); err != nil {
		return nil, err
	}
	if err := p.end(); err != nil {
		return nil, err
	}
	return cmd, nil
}
