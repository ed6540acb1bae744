package log

//go:generate go run github.com/abice/go-enum -f=$GOFILE --marshal --names

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// FormatType format for logging ENUM(
// text // logging as text
// json // JSON format
// )
type FormatType int

// Level log level ENUM(
// info
// trace
// debug
// warn
// error
// fatal
// )
type Level int

// Config is the logging configuration
type Config struct {
	Level     Level      `yaml:"level" default:"info"`
	Format    FormatType `yaml:"format" default:"text"`
	Timestamp bool       `yaml:"timestamp" default:"true"`
	Hostname  bool       `yaml:"hostname" default:"false"`
}

// nolint:gochecknoglobals
var logger *logrus.Logger

// nolint:gochecknoinits
func init() {
	logger = logrus.New()

	ConfigureLogger(Config{
		Level:     LevelInfo,
		Format:    FormatTypeText,
		Timestamp: true,
	})
}

// Log returns the global logger
func Log() *logrus.Logger {
	return logger
}

// PrefixedLog return the global logger with prefix
func PrefixedLog(prefix string) *logrus.Entry {
	return logger.WithField("prefix", prefix)
}

// WithPrefix returns a copy of the entry with a new prefix
func WithPrefix(entry *logrus.Entry, prefix string) *logrus.Entry {
	return entry.WithField("prefix", prefix)
}

// EscapeInput removes line breaks from input.
// DNS and HTTP payloads end up in log lines, they must not be able to forge new ones.
func EscapeInput(input string) string {
	result := strings.ReplaceAll(input, "\n", "")
	result = strings.ReplaceAll(result, "\r", "")

	return result
}

// ConfigureLogger applies configuration to the global logger
func ConfigureLogger(lc Config) {
	if level, err := logrus.ParseLevel(lc.Level.String()); err != nil {
		logger.Fatalf("invalid log level %s %v", lc.Level, err)
	} else {
		logger.SetLevel(level)
	}

	var baseFormatter logrus.Formatter

	switch lc.Format {
	case FormatTypeText:
		logFormatter := &prefixed.TextFormatter{
			TimestampFormat:  "2006-01-02 15:04:05",
			FullTimestamp:    true,
			ForceFormatting:  true,
			ForceColors:      false,
			QuoteEmptyFields: true,
			DisableTimestamp: !lc.Timestamp,
		}

		logFormatter.SetColorScheme(&prefixed.ColorScheme{
			PrefixStyle:    "blue+b",
			TimestampStyle: "white+h",
		})

		baseFormatter = logFormatter

	case FormatTypeJson:
		baseFormatter = &logrus.JSONFormatter{DisableTimestamp: !lc.Timestamp}
	}

	var newFormatter logrus.Formatter = baseFormatter

	if lc.Hostname {
		if hn, err := getHostname(hostnameFile); err == nil {
			newFormatter = hostnameFormatter{
				hostname:  hn,
				formatter: baseFormatter,
			}
		}
	}

	logger.SetFormatter(newFormatter)
}

// Silence disables the logger output
func Silence() {
	logger.Out = io.Discard
}

type hostnameFormatter struct {
	hostname  string
	formatter logrus.Formatter
}

func (l hostnameFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	newentry := *entry
	newentry.Data = make(logrus.Fields, len(entry.Data)+1)

	for k, v := range entry.Data {
		newentry.Data[k] = v
	}

	newentry.Data["hostname"] = l.hostname

	return l.formatter.Format(&newentry)
}
