package parquet_export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"github.com/rs/zerolog"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/danthegoodman1/tinyrdb/partitioner"
	"github.com/danthegoodman1/tinyrdb/s3_helper"
	"github.com/danthegoodman1/tinyrdb/table"
	"github.com/danthegoodman1/tinyrdb/utils"
)

const parallelism = 4

// Write encodes rows as parquet into w and returns the number of rows
// written.
func Write(w io.Writer, columns []table.Column, rows []table.Row) (int, error) {
	schema, err := SchemaString(columns)
	if err != nil {
		return 0, err
	}
	pw, err := writer.NewJSONWriterFromWriter(schema, w, parallelism)
	if err != nil {
		return 0, fmt.Errorf("error in writer.NewJSONWriterFromWriter: %w", err)
	}
	return writeRows(pw, rows)
}

// ExportFile writes the whole table to a local parquet file.
func ExportFile(filePath string, t *table.Table) (int, error) {
	schema, err := SchemaString(t.Columns())
	if err != nil {
		return 0, err
	}
	fw, err := local.NewLocalFileWriter(filePath)
	if err != nil {
		return 0, fmt.Errorf("error in local.NewLocalFileWriter: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewJSONWriter(schema, fw, parallelism)
	if err != nil {
		return 0, fmt.Errorf("error in writer.NewJSONWriter: %w", err)
	}
	return writeRows(pw, t.Rows())
}

// ExportToS3 uploads rows as parquet objects under EXPORT_PREFIX/<table>/,
// one object per partition when plans are given, and returns the object keys.
func ExportToS3(ctx context.Context, tableName string, columns []table.Column, rows []table.Row, plans []partitioner.PartitionPlan) ([]string, error) {
	groups, order, err := GroupByPartition(rows, plans)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, part := range order {
		var buf bytes.Buffer
		n, err := Write(&buf, columns, groups[part])
		if err != nil {
			return keys, err
		}

		key := path.Join(utils.EXPORT_PREFIX, tableName, part, utils.GenKSortedID("")+".parquet")
		_, err = s3_helper.WriteBytesToS3(ctx, key, &buf, utils.Ptr("application/octet-stream"))
		if err != nil {
			return keys, fmt.Errorf("error in WriteBytesToS3: %w", err)
		}
		zerolog.Ctx(ctx).Debug().Str("key", key).Int("rows", n).Msg("exported partition to s3")
		keys = append(keys, key)
	}
	return keys, nil
}

// GroupByPartition splits rows by their partition path. order lists the
// partitions in first-seen order. Without plans every row lands in the ""
// partition.
func GroupByPartition(rows []table.Row, plans []partitioner.PartitionPlan) (groups map[string][]table.Row, order []string, err error) {
	groups = make(map[string][]table.Row)
	if len(plans) == 0 {
		groups[""] = rows
		return groups, []string{""}, nil
	}
	for _, row := range rows {
		part, err := partitioner.GetRowPartition(row, plans)
		if err != nil {
			return nil, nil, fmt.Errorf("error in GetRowPartition: %w", err)
		}
		if _, exists := groups[part]; !exists {
			order = append(order, part)
		}
		groups[part] = append(groups[part], row)
	}
	return groups, order, nil
}

func writeRows(pw *writer.JSONWriter, rows []table.Row) (int, error) {
	for i, row := range rows {
		b, err := json.Marshal(row)
		if err != nil {
			return i, fmt.Errorf("error in json.Marshal: %w", err)
		}
		if err := pw.Write(string(b)); err != nil {
			return i, fmt.Errorf("error writing row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return len(rows), fmt.Errorf("error in WriteStop: %w", err)
	}
	return len(rows), nil
}
