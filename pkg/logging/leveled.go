package logging

import (
	"fmt"
	"strings"
)

// LeveledLogger adapts the package logger to key/value style logger
// interfaces such as retryablehttp.LeveledLogger.
type LeveledLogger struct {
	Subsystem string
}

// NewLeveledLogger returns a LeveledLogger tagging every line with subsystem.
func NewLeveledLogger(subsystem string) *LeveledLogger {
	return &LeveledLogger{Subsystem: subsystem}
}

func (l *LeveledLogger) Error(msg string, keysAndValues ...interface{}) {
	logInternal(LevelError, l.Subsystem, nil, "%s", withPairs(msg, keysAndValues))
}

func (l *LeveledLogger) Info(msg string, keysAndValues ...interface{}) {
	logInternal(LevelInfo, l.Subsystem, nil, "%s", withPairs(msg, keysAndValues))
}

func (l *LeveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	logInternal(LevelDebug, l.Subsystem, nil, "%s", withPairs(msg, keysAndValues))
}

func (l *LeveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	logInternal(LevelWarn, l.Subsystem, nil, "%s", withPairs(msg, keysAndValues))
}

func withPairs(msg string, keysAndValues []interface{}) string {
	if len(keysAndValues) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(keysAndValues); i += 2 {
		b.WriteByte(' ')
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&b, "%v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&b, "%v", keysAndValues[i])
		}
	}
	return b.String()
}
