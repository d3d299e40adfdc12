package parquet_export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danthegoodman1/tinyrdb/table"
)

type (
	ParquetJSONSchema struct {
		Tag    string               `json:",omitempty"`
		Fields []*ParquetJSONSchema `json:",omitempty"`
	}

	SchemaTag struct {
		Name           string
		Type           string
		ConvertedType  string
		RepetitionType RepetitionType
		Encoding       string
	}

	RepetitionType string
)

var (
	Optional RepetitionType = "OPTIONAL"
	Required RepetitionType = "REQUIRED"
)

// tagFor maps a column type to its parquet physical type. Every column is
// optional since any cell may be null.
func tagFor(col table.Column) (SchemaTag, error) {
	tag := SchemaTag{Name: col.Name, RepetitionType: Optional}
	switch col.Type {
	case table.TypeInt:
		tag.Type = "INT64"
	case table.TypeFloat:
		tag.Type = "DOUBLE"
	case table.TypeStr:
		tag.Type = "BYTE_ARRAY"
		tag.ConvertedType = "UTF8"
		tag.Encoding = "PLAIN"
	default:
		return tag, fmt.Errorf("no parquet type for column '%s' of type '%s'", col.Name, col.Type)
	}
	return tag, nil
}

func (st SchemaTag) String() string {
	var tagArr []string
	if st.Type != "" {
		tagArr = append(tagArr, "type="+st.Type)
	}
	if st.ConvertedType != "" {
		tagArr = append(tagArr, "convertedtype="+st.ConvertedType)
	}
	if st.Encoding != "" {
		tagArr = append(tagArr, "encoding="+st.Encoding)
	}
	if st.Name != "" {
		tagArr = append(tagArr, "name="+st.Name)
	}
	if st.RepetitionType != "" {
		tagArr = append(tagArr, "repetitiontype="+string(st.RepetitionType))
	}
	return strings.Join(tagArr, ", ")
}

// SchemaString returns the parquet-go JSON schema for the columns, in
// declared order.
func SchemaString(columns []table.Column) (string, error) {
	root := ParquetJSONSchema{
		Tag: SchemaTag{Name: "parquet_go_root", RepetitionType: Required}.String(),
	}
	for _, col := range columns {
		tag, err := tagFor(col)
		if err != nil {
			return "", err
		}
		root.Fields = append(root.Fields, &ParquetJSONSchema{Tag: tag.String()})
	}

	b, err := json.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("error in json.Marshal: %w", err)
	}
	return string(b), nil
}
