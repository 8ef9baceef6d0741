package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the leveled logging facade used throughout this module instead
// of the stdlib `log` package or bare `fmt.Println`, matching the teacher's
// convention of passing a `logging.Logger` into every component that needs
// to report anything rather than reaching for a process-wide global.
type Logger interface {
	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)
	Named(name string) Logger
}

type impl struct {
	core *zap.SugaredLogger
}

// globalLogger is used only by NewFileAppender to report a failure to
// rotate its own log file, before any caller-supplied Logger exists yet.
var globalLogger = New("startup")

// New builds a Logger named `name` that writes human-readable lines to
// stdout via a ConsoleAppender, at DEBUG level and above.
func New(name string) Logger {
	return NewWithAppenders(name, NewStdoutAppender())
}

// NewWithAppenders builds a Logger named `name` that fans its entries out to
// every supplied Appender (e.g. a ConsoleAppender plus a rotating file
// appender from NewFileAppender).
func NewWithAppenders(name string, appenders ...Appender) Logger {
	cores := make([]zapcore.Core, 0, len(appenders))
	for _, a := range appenders {
		cores = append(cores, &appenderCore{appender: a, enabler: zapcore.DebugLevel})
	}
	core := zapcore.NewTee(cores...)
	zl := zap.New(core).Named(name)
	return &impl{core: zl.Sugar()}
}

func (l *impl) Debugf(template string, args ...any) { l.core.Debugf(template, args...) }
func (l *impl) Infof(template string, args ...any)  { l.core.Infof(template, args...) }
func (l *impl) Warnf(template string, args ...any)  { l.core.Warnf(template, args...) }
func (l *impl) Errorf(template string, args ...any) { l.core.Errorf(template, args...) }

func (l *impl) Named(name string) Logger {
	return &impl{core: l.core.Named(name)}
}

// appenderCore adapts an Appender (Write(Entry, []Field) error) to the
// zapcore.Core interface zap itself uses internally.
type appenderCore struct {
	appender Appender
	enabler  zapcore.Level
}

func (c *appenderCore) Enabled(level zapcore.Level) bool {
	return level >= c.enabler
}

func (c *appenderCore) With(fields []zapcore.Field) zapcore.Core {
	return c
}

func (c *appenderCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *appenderCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.appender.Write(entry, fields)
}

func (c *appenderCore) Sync() error {
	return c.appender.Sync()
}
