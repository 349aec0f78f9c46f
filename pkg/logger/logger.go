// Package logger provides structured JSON logging for Growth Hub.
// One line per entry, leveled, with typed fields.
// No external dependencies - uses only standard library.
package logger

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

// String returns the level name.
func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a level name onto a Level. Unknown names mean Info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Field is one structured key-value pair on a log entry.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field    { return Field{key, value} }
func Int(key string, value int) Field   { return Field{key, value} }
func Bool(key string, value bool) Field { return Field{key, value} }
func Any(key string, value any) Field   { return Field{key, value} }

// Err produces the conventional "error" field.
func Err(err error) Field {
	if err == nil {
		return Field{"error", nil}
	}
	return Field{"error", err.Error()}
}

// Duration renders the value in Go duration syntax ("1.5s").
func Duration(key string, value time.Duration) Field {
	return Field{key, value.String()}
}

// Logger writes leveled JSON entries to a single writer. Safe for
// concurrent use.
type Logger struct {
	mu    *sync.Mutex
	enc   *json.Encoder
	level Level
	base  []Field
}

// New creates a Logger writing to out, dropping entries below level.
func New(out io.Writer, level Level) *Logger {
	if out == nil {
		out = os.Stdout
	}
	return &Logger{
		mu:    &sync.Mutex{},
		enc:   json.NewEncoder(out),
		level: level,
	}
}

// Default creates a stdout logger at Info level.
func Default() *Logger {
	return New(os.Stdout, LevelInfo)
}

// With returns a Logger that stamps every entry with the given fields.
// The writer and its lock are shared with the parent.
func (l *Logger) With(fields ...Field) *Logger {
	child := *l
	child.base = append(append([]Field(nil), l.base...), fields...)
	return &child
}

func (l *Logger) Debug(msg string, fields ...Field) { l.emit(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.emit(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.emit(LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.emit(LevelError, msg, fields) }

type entry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

func (l *Logger) emit(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level.String(),
		Message:   msg,
	}
	if len(l.base)+len(fields) > 0 {
		e.Fields = make(map[string]any, len(l.base)+len(fields))
		for _, f := range l.base {
			e.Fields[f.Key] = f.Value
		}
		for _, f := range fields {
			e.Fields[f.Key] = f.Value
		}
	}

	l.mu.Lock()
	_ = l.enc.Encode(e)
	l.mu.Unlock()
}

// Field helpers shared across Growth Hub packages.
func UserID(id string) Field      { return String("user_id", id) }
func Domain(name string) Field    { return String("domain", name) }
func XPDelta(xp int) Field        { return Int("xp_delta", xp) }
func GoalID(id string) Field      { return String("goal_id", id) }
func StreakDays(days int) Field   { return Int("streak_days", days) }
func Component(name string) Field { return String("component", name) }
