package resolutionlog

import (
	"github.com/sirupsen/logrus"

	"github.com/masiarekpl/keypin/log"
)

const loggerPrefixLoggerWriter = "resolution"

type LoggerWriter struct {
	logger *logrus.Entry
}

func NewLoggerWriter() *LoggerWriter {
	return &LoggerWriter{logger: log.PrefixedLog(loggerPrefixLoggerWriter)}
}

func (d *LoggerWriter) Write(entry *Entry) {
	logger := d.logger.WithFields(LogEntryFields(entry))

	if entry.Error != "" {
		logger.Warn("identity resolution failed")

		return
	}

	logger.Info("identity resolved")
}

func (d *LoggerWriter) CleanUp() {
	// Nothing to do
}

// LogEntryFields returns the non empty fields of the entry
func LogEntryFields(entry *Entry) logrus.Fields {
	fields := logrus.Fields{
		"identity_type": entry.IdentityType,
		"state":         entry.State,
		"outcome":       entry.Outcome,
		"duration_ms":   entry.DurationMs,
	}

	optional := map[string]string{
		"domain":     entry.Domain,
		"version":    entry.Version,
		"error":      entry.Error,
		"key_url":    entry.KeyURL,
		"key_digest": entry.KeyDigest,
	}

	for k, v := range optional {
		if v != "" {
			fields[k] = log.EscapeInput(v)
		}
	}

	if entry.Degraded {
		fields["degraded_trust"] = true
	}

	return fields
}
