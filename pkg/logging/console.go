package logging

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	levelStyles = map[Level]lipgloss.Style{
		DebugLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		InfoLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF")),
		WarnLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")).Bold(true),
		ErrorLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
	}
	keyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// ConsoleLogger writes human-oriented lines for interactive use:
//
//	15:04:05 WARN  token exceeds advisory limit token_length=2311
//
// Colours are applied only when the terminal supports them.
type ConsoleLogger struct {
	writer io.Writer
	level  Level
	fields []Field
	mu     *sync.Mutex
}

// NewConsoleLogger creates a console logger
func NewConsoleLogger(writer io.Writer, level Level) *ConsoleLogger {
	return &ConsoleLogger{
		writer: writer,
		level:  level,
		mu:     &sync.Mutex{},
	}
}

func (l *ConsoleLogger) log(level Level, msg string, fields ...Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(levelStyles[level].Render(fmt.Sprintf("%-5s", level.String())))
	b.WriteByte(' ')
	b.WriteString(msg)

	merged := mergeFields(l.fields, fields)
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s%v", keyStyle.Render(k+"="), merged[k])
	}
	b.WriteByte('\n')

	io.WriteString(l.writer, b.String())
}

func (l *ConsoleLogger) Debug(msg string, fields ...Field) {
	l.log(DebugLevel, msg, fields...)
}

func (l *ConsoleLogger) Info(msg string, fields ...Field) {
	l.log(InfoLevel, msg, fields...)
}

func (l *ConsoleLogger) Warn(msg string, fields ...Field) {
	l.log(WarnLevel, msg, fields...)
}

func (l *ConsoleLogger) Error(msg string, fields ...Field) {
	l.log(ErrorLevel, msg, fields...)
}

func (l *ConsoleLogger) With(fields ...Field) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newFields := make([]Field, 0, len(l.fields)+len(fields))
	newFields = append(newFields, l.fields...)
	newFields = append(newFields, fields...)

	return &ConsoleLogger{
		writer: l.writer,
		level:  l.level,
		fields: newFields,
		mu:     l.mu,
	}
}

func (l *ConsoleLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *ConsoleLogger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// New returns a JSON or console logger for the named format ("json" or
// "console"); unknown formats get JSON.
func New(format string, writer io.Writer, level Level) Logger {
	if format == "console" {
		return NewConsoleLogger(writer, level)
	}
	return NewJSONLogger(writer, level)
}
