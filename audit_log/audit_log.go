package audit_log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/danthegoodman1/tinyrdb/gologger"
	"github.com/danthegoodman1/tinyrdb/utils"
)

const (
	SourceREPL = "REPL"
	SourceHTTP = "HTTP"
)

// Logger appends one JSON line per accepted statement:
// {"id": ..., "source": ..., "sql": ..., "time": ...}
type Logger struct {
	log    zerolog.Logger
	closer io.Closer
}

// Open appends to the file at path, creating it and its directory if needed.
func Open(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("error in MkdirAll: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("error opening audit log: %w", err)
	}
	l := New(f)
	l.closer = f
	return l, nil
}

func New(w io.Writer) *Logger {
	return &Logger{log: gologger.NewFileLogger(w)}
}

func (l *Logger) Record(source, sql string) {
	l.log.Log().
		Str("id", utils.GenKSortedID("")).
		Str("source", source).
		Str("sql", sql).
		Send()
}

func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
