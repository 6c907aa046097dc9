package logging

import (
	"fmt"
	"log"
	"strings"
)

// CronLogger - Routes scheduler (gocron) messages for the session purge and keyword reload jobs into the standard
// logger. gocron passes slog-style key/value pairs after the message, which are written as "key=value".
type CronLogger struct {
	// Where to write. Nil means log.Default().
	Logger *log.Logger
}

func (c *CronLogger) Debug(msg string, args ...any) {
	c.write("DEBUG", msg, args)
}

func (c *CronLogger) Error(msg string, args ...any) {
	c.write("ERROR", msg, args)
}

func (c *CronLogger) Info(msg string, args ...any) {
	c.write("INFO", msg, args)
}

func (c *CronLogger) Warn(msg string, args ...any) {
	c.write("WARN", msg, args)
}

func (c *CronLogger) write(level string, msg string, args []any) {
	logger := c.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("[cron | %s] %s%s", level, msg, formatPairs(args))
}

func formatPairs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	if len(args)%2 != 0 {
		return " " + fmt.Sprint(args...)
	}
	pairs := make([]string, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		pairs = append(pairs, fmt.Sprintf("%v=%v", args[i], args[i+1]))
	}
	return " " + strings.Join(pairs, " ")
}
