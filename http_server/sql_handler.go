package http_server

import (
	"net/http"

	"github.com/danthegoodman1/tinyrdb/audit_log"
	"github.com/danthegoodman1/tinyrdb/parser"
)

type SQLReqBody struct {
	SQL string `json:"sql" validate:"required"`
}

func (s *HTTPServer) SQLHandler(c *CustomContext) error {
	var reqBody SQLReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	cmd, err := parser.Parse(reqBody.SQL)
	if err != nil {
		return c.StatementError(err, "error parsing statement")
	}
	if s.Audit != nil {
		s.Audit.Record(audit_log.SourceHTTP, reqBody.SQL)
	}

	res, err := s.Exec.Execute(c.Request().Context(), cmd)
	if err != nil {
		return c.StatementError(err, "error executing statement")
	}
	return c.JSON(http.StatusOK, res)
}
