package logger

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger interface {
	Printf(s string, args ...any)
}

type logger struct{ label string }

func New(label string) Logger {
	return logger{label}
}

func (l logger) Printf(s string, args ...any) {
	args = append([]any{l.label}, args...)
	log.Printf("[%s]\t"+s, args...)
}

// Nop returns a logger that drops everything. Used in tests.
func Nop() Logger {
	return nop{}
}

type nop struct{}

func (nop) Printf(s string, args ...any) {}

// LogToFile mirrors all diagnostic output into a size-rotated file in
// addition to stderr.
func LogToFile(path string) {
	log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
	}))
}
