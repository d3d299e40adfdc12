package http_server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danthegoodman1/gojsonutils"
	"github.com/labstack/echo/v4"

	"github.com/danthegoodman1/tinyrdb/database"
	"github.com/danthegoodman1/tinyrdb/parquet_export"
	"github.com/danthegoodman1/tinyrdb/partitioner"
	"github.com/danthegoodman1/tinyrdb/parser"
	"github.com/danthegoodman1/tinyrdb/table"
)

var ErrNotFlatMap = errors.New("not a flat map")

func (s *HTTPServer) ListTables(c *CustomContext) error {
	res, err := s.Exec.Execute(c.Request().Context(), parser.ShowTables{})
	if err != nil {
		return c.StatementError(err, "error listing tables")
	}
	return c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) GetRows(c *CustomContext) error {
	res, err := s.Exec.Execute(c.Request().Context(), parser.Select{Table: c.Param("table")})
	if err != nil {
		return c.StatementError(err, "error selecting rows")
	}
	return c.JSON(http.StatusOK, res)
}

// InsertRow inserts one JSON object. Nested objects are flattened to dotted
// column names.
func (s *HTTPServer) InsertRow(c *CustomContext) error {
	defer c.Request().Body.Close()

	var body map[string]any
	if err := c.Echo().JSONSerializer.Deserialize(c, &body); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	if body == nil {
		return c.String(http.StatusBadRequest, "body must be a JSON object")
	}

	flat, err := gojsonutils.Flatten(body, nil)
	if err != nil {
		return c.InternalError(err, "error flattening JSON map")
	}
	flatMap, ok := flat.(map[string]any)
	if !ok {
		return c.InternalError(ErrNotFlatMap, fmt.Sprintf("got a non flat map: %+v", flat))
	}

	res, err := s.Exec.InsertRow(c.Request().Context(), c.Param("table"), flatMap)
	if err != nil {
		return c.StatementError(err, "error inserting row")
	}
	return c.JSON(http.StatusCreated, res)
}

// ExportTable responds with the table as a parquet file. With dest=s3 it
// uploads instead, split by any partition=func:column params, and responds
// with the object keys.
func (s *HTTPServer) ExportTable(c *CustomContext) error {
	ctx := c.Request().Context()
	name := c.Param("table")

	var columns []table.Column
	var rows []table.Row
	err := s.Exec.WithDatabase(ctx, func(ctx context.Context, db *database.Database) error {
		t, err := db.Table(name)
		if err != nil {
			return err
		}
		columns = t.Columns()
		rows = t.Rows()
		return nil
	})
	if err != nil {
		return c.StatementError(err, "error reading table")
	}

	if c.QueryParam("dest") == "s3" {
		var plans []partitioner.PartitionPlan
		for _, spec := range c.QueryParams()["partition"] {
			plan, err := partitioner.ParsePlan(spec)
			if err != nil {
				return c.String(http.StatusBadRequest, err.Error())
			}
			plans = append(plans, plan)
		}
		keys, err := parquet_export.ExportToS3(ctx, name, columns, rows, plans)
		if err != nil {
			return c.InternalError(err, "error exporting table to s3")
		}
		return c.JSON(http.StatusOK, map[string]any{"keys": keys, "rows": len(rows)})
	}

	var buf bytes.Buffer
	if _, err := parquet_export.Write(&buf, columns, rows); err != nil {
		return c.InternalError(err, "error writing parquet")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name+".parquet"))
	return c.Blob(http.StatusOK, "application/octet-stream", buf.Bytes())
}
