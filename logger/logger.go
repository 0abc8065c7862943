// Package logger provides the leveled logger shared by all bindtrim
// pipeline stages. A nil *Logger discards everything, so library code
// can log unconditionally.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

type Level int

const (
	INFO  Level = 0
	WARN  Level = 1
	ERROR Level = 2
)

type Logger struct {
	Writer   io.Writer
	Prefix   string
	MinLevel Level
}

func (l *Logger) Log(level Level, format string, args ...any) {
	if l == nil || l.Writer == nil || level < l.MinLevel {
		return
	}
	var b bytes.Buffer
	if l.Prefix != "" {
		b.WriteString(l.Prefix)
		b.WriteString(" ")
	}
	switch level {
	case INFO:
		b.WriteString("INFO")
	case WARN:
		b.WriteString("WARNING")
	case ERROR:
		b.WriteString("ERROR")
	default:
		panic(fmt.Sprintf("invalid log level: %v", level))
	}
	b.WriteString(":")
	s := fmt.Sprintf(format, args...)
	if strings.Contains(s, "\n") {
		b.WriteString("\n")
		s = indentString(s, "  ")
	} else {
		b.WriteString(" ")
	}
	b.WriteString(s)
	if !strings.HasSuffix(s, "\n") {
		b.WriteString("\n")
	}
	io.Copy(l.Writer, &b)
}

func (l *Logger) Infof(format string, args ...any)  { l.Log(INFO, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.Log(WARN, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.Log(ERROR, format, args...) }

// Prepends indent to each nonempty line beginning in s.
func indentString(s string, indent string) string {
	lines := strings.SplitAfter(s, "\n")
	var res strings.Builder
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			res.WriteString(indent)
			res.WriteString(line)
		} else {
			res.WriteString(line)
		}
	}
	return res.String()
}
