package parser

const insertShape = "INSERT INTO table_name [(col1, col2, ...)] VALUES (val1, val2, ...)"

func parseInsert(p *parser) (Command, error) {
	p.begin("INSERT", insertShape)
	if err := p.expectKeyword("INSERT", "INTO"); err != nil {
		return nil, err
	}
	name, err := p.ident("table name")
	if err != nil {
		return nil, err
	}

	cmd := Insert{Table: name}
	if p.accept(LPAREN) {
		for {
			col, err := p.ident("column name")
			if err != nil {
				return nil, err
			}
			cmd.Columns = append(cmd.Columns, col)
			if !p.accept(COMMA) {
				break
			}
		}
		if err := p.expect(RPAREN); err != nil {
			return nil, err
		}
	}

	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	if err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	for {
		val, err := p.literal()
		if err != nil {
			return nil, err
		}
		cmd.Values = append(cmd.Values, val)
		if !p.accept(COMMA) {
			break
		}
	}
	if err := p.expect(RPAREN); err != nil {
		return nil, err
	}

	if err := p.end(); err != nil {
		return nil, err
	}
	return cmd, nil
}
