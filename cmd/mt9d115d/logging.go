package main

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/platinasystems/log"
)

// Log levels, selected with the LOG_LEVEL environment variable.
const (
	levelDebug = 10
	levelInfo  = 20
	levelWarn  = 30
	levelError = 40
)

var (
	debugLogger *stdlog.Logger
	infoLogger  *stdlog.Logger
	warnLogger  *stdlog.Logger
	errorLogger *stdlog.Logger
)

func init() {
	level, err := parseLevel(os.Getenv("LOG_LEVEL"))

	debugLogger = newLogger("debug", levelDebug, level)
	infoLogger = newLogger("info", levelInfo, level)
	warnLogger = newLogger("warn", levelWarn, level)
	errorLogger = newLogger("err", levelError, level)

	if err != nil {
		warnLogger.Printf("%v, keeping INFO", err)
	}
}

func parseLevel(s string) (int, error) {
	switch strings.ToUpper(s) {
	case "", "INFO":
		return levelInfo, nil
	case "DEBUG":
		return levelDebug, nil
	case "WARNING", "WARN":
		return levelWarn, nil
	case "ERROR", "ERR":
		return levelError, nil
	}
	return levelInfo, fmt.Errorf("unrecognized LOG_LEVEL %q", s)
}

// newLogger returns a logger writing at priority, or discarding when l is
// below the selected level. The system log stamps the lines.
func newLogger(priority string, l, level int) *stdlog.Logger {
	var w io.Writer = io.Discard
	if l >= level {
		w = priorityWriter(priority)
	}
	return stdlog.New(w, "", 0)
}

// priorityWriter sends each line to the daemon facility at one priority.
type priorityWriter string

func (p priorityWriter) Write(b []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(b), "\n"), "\n") {
		log.Print("daemon", string(p), line)
	}
	return len(b), nil
}
