package parser

const showTablesShape = "SHOW TABLES"

func parseShowTables(p *parser) (Command, error) {
	p.begin("SHOW", showTablesShape)
	if err := p.expectKeyword("SHOW", "TABLES"); err != nil {
		return nil, err
	}
	if err := p.end(); err != nil {
		return nil, err
	}
	return ShowTables{}, nil
}
