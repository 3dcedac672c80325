package utils

import (
	"log"
	"os"
)

// InitLogger returns the application logger. All engine diagnostics
// (dropped completion events, extraction fallbacks, failed persists) go
// through it.
func InitLogger(output ...*os.File) *log.Logger {
	out := os.Stdout
	if len(output) > 0 && output[0] != nil {
		out = output[0]
	}
	return log.New(out, "[lms] ", log.LstdFlags|log.LUTC)
}
