package parser

const deleteShape = "DELETE FROM table_name [WHERE column = value]"

func parseDelete(p *parser) (Command, error) {
	p.begin("DELETE", deleteShape)
	if err := p.expectKeyword("DELETE", "FROM"); err != nil {
		return nil, err
	}
	name, err := p.ident("table name")
	if err != nil {
		return nil, err
	}

	cmd := Delete{Table: name}
	if cmd.Where, err = p.where(); err != nil {
		return nil, err
	}
	if err := p.end(); err != nil {
		return nil, err
	}
	return cmd, nil
}
