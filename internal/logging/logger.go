// Package logging writes level-tagged log lines to a log file and echoes
// them to the console.
//
// The file sink is a zap core appending plain text lines. The console sink
// prefixes each line with its level and colors it with lipgloss when the
// output is a terminal.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the severity shown in front of every line.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
	LevelSuccess
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelSuccess:
		return "SUCCESS"
	default:
		return "INFO"
	}
}

// successLevel has no zap name of its own; encodeLevel prints it.
const successLevel = zapcore.DebugLevel - 1

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelSuccess:
		return successLevel
	default:
		return zapcore.InfoLevel
	}
}

func encodeLevel(lvl zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if lvl == successLevel {
		enc.AppendString(LevelSuccess.String())
		return
	}
	zapcore.CapitalLevelEncoder(lvl, enc)
}

var levelStyles = map[Level]lipgloss.Style{
	LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6")),
	LevelWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#eab308")),
	LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true),
	LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")),
}

// Options configures a Logger.
type Options struct {
	// File is the log file path. Lines are appended. Empty disables the file sink.
	File string

	// Console receives the echoed lines. Nil disables the console sink.
	Console io.Writer

	// Styled enables lipgloss colors on the console.
	Styled bool
}

// Logger fans each line out to the log file and the console.
type Logger struct {
	mu      sync.Mutex
	console io.Writer
	styled  bool
	file    *zap.Logger
	closer  io.Closer
	runID   string
}

// New creates a Logger. The log file and its directory are created if needed.
func New(opts Options) (*Logger, error) {
	l := &Logger{
		console: opts.Console,
		styled:  opts.Styled,
		runID:   uuid.NewString(),
	}

	if opts.File == "" {
		return l, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// #nosec G304 - the log path is operator supplied
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    encodeLevel,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	everything := zap.LevelEnablerFunc(func(zapcore.Level) bool { return true })
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(f), everything)

	l.file = zap.New(core).With(zap.String("run", l.runID))
	l.closer = f
	return l, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{runID: uuid.NewString()}
}

// RunID identifies all lines written by one invocation.
func (l *Logger) RunID() string {
	return l.runID
}

// Printf logs at INFO.
func (l *Logger) Printf(format string, v ...any) {
	l.log(LevelInfo, fmt.Sprintf(format, v...))
}

// Warnf logs at WARN.
func (l *Logger) Warnf(format string, v ...any) {
	l.log(LevelWarn, fmt.Sprintf(format, v...))
}

// Errorf logs at ERROR.
func (l *Logger) Errorf(format string, v ...any) {
	l.log(LevelError, fmt.Sprintf(format, v...))
}

// Successf logs at SUCCESS.
func (l *Logger) Successf(format string, v ...any) {
	l.log(LevelSuccess, fmt.Sprintf(format, v...))
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	_ = l.file.Sync()
	err := l.closer.Close()
	l.file = nil
	return err
}

func (l *Logger) log(level Level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		if ce := l.file.Check(level.zapLevel(), msg); ce != nil {
			ce.Write()
		}
	}
	if l.console != nil {
		_, _ = fmt.Fprintln(l.console, l.formatConsole(level, msg))
	}
}

func (l *Logger) formatConsole(level Level, msg string) string {
	tag := "[" + level.String() + "]"
	if !l.styled {
		return tag + " " + msg
	}
	style := levelStyles[level]
	// Continuation lines keep the level color so multi-line output stays grouped.
	lines := strings.Split(msg, "\n")
	for i, line := range lines {
		lines[i] = style.Render(line)
	}
	return style.Render(tag) + " " + strings.Join(lines, "\n")
}
