package utils

import (
	"fmt"
	"os"
	"strconv"

	"github.com/danthegoodman1/tinyrdb/gologger"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/segmentio/ksuid"
)

var logger = gologger.NewLogger()

func GetEnvOrDefault(env, defaultVal string) string {
	e := os.Getenv(env)
	if e == "" {
		return defaultVal
	}
	return e
}

// GetEnvOrDefaultInt exits the process when the variable is set but is not
// an integer.
func GetEnvOrDefaultInt(env string, defaultVal int64) int64 {
	e := os.Getenv(env)
	if e == "" {
		return defaultVal
	}
	intVal, err := strconv.ParseInt(e, 10, 64)
	if err != nil {
		logger.Error().Msg(fmt.Sprintf("Failed to parse string to int '%s'", env))
		os.Exit(1)
	}
	return intVal
}

// GenKSortedID is used for audit entry ids and export object names, which
// should sort by creation time.
func GenKSortedID(prefix string) string {
	return prefix + ksuid.New().String()
}

// GenRandomShortID names REPL sessions in logs.
func GenRandomShortID() string {
	// reduced character set that's less probable to mis-type
	return gonanoid.MustGenerate("abcdefghikmonpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ0123456789", 8)
}

func Ptr[T any](s T) *T {
	return &s
}
