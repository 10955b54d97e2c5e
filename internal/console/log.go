package console

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/reconsole/internal/router"
)

// DefaultLogLines bounds the log area
const DefaultLogLines = 500

// Status is the status bar message
type Status struct {
	Level router.Level
	Text  string
	At    time.Time
}

// Log is the bounded log area. Lines past the limit drop off the top.
type Log struct {
	lines []string
	max   int
	now   func() time.Time
}

// NewLog creates a log area holding at most max lines
func NewLog(max int) *Log {
	if max <= 0 {
		max = DefaultLogLines
	}
	return &Log{max: max, now: time.Now}
}

// Add appends a line and mirrors it to logrus
func (l *Log) Add(level router.Level, text string) {
	line := fmt.Sprintf("%s %-7s %s", l.now().Format("15:04:05"), level, text)
	l.lines = append(l.lines, line)
	if over := len(l.lines) - l.max; over > 0 {
		l.lines = append(l.lines[:0], l.lines[over:]...)
	}

	switch level {
	case router.Error:
		logrus.Error(text)
	case router.Warning:
		logrus.Warn(text)
	default:
		logrus.Info(text)
	}
}

// Lines returns the log area contents, oldest first
func (l *Log) Lines() []string {
	return append([]string(nil), l.lines...)
}

// Len counts the lines held
func (l *Log) Len() int { return len(l.lines) }
