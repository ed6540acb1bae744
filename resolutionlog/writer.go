package resolutionlog

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/masiarekpl/keypin/config"
	"github.com/masiarekpl/keypin/log"
	"github.com/masiarekpl/keypin/model"
)

const cleanUpRunPeriod = 12 * time.Hour

// Entry is the audit record of one identity resolution attempt
type Entry struct {
	Start        time.Time
	IdentityType string
	Domain       string
	Version      string
	// State is the last state which was reached
	State string
	// Outcome is "ready" or the kind of the error
	Outcome    string
	Error      string
	KeyURL     string
	KeyDigest  string
	Degraded   bool
	DurationMs int64
	// Instance identifies the process which wrote the entry
	Instance string
}

type Writer interface {
	Write(entry *Entry)
	CleanUp()
}

// NewWriter creates the writer for the configured log type
func NewWriter(cfg config.ResolutionLog) (Writer, error) {
	switch cfg.Type {
	case config.ResolutionLogTypeNone:
		return NewNoneWriter(), nil
	case config.ResolutionLogTypeConsole:
		return NewLoggerWriter(), nil
	case config.ResolutionLogTypeMysql, config.ResolutionLogTypePostgresql, config.ResolutionLogTypeSqlite:
		var writer *DatabaseWriter

		err := retry.Do(
			func() error {
				var err error
				writer, err = NewDatabaseWriter(cfg.Type, cfg.Target, cfg.LogRetentionDays)

				return err
			},
			retry.Attempts(uint(cfg.CreationAttempts)),
			retry.DelayType(retry.FixedDelay),
			retry.Delay(cfg.CreationCooldown.ToDuration()),
			retry.LastErrorOnly(true),
			retry.OnRetry(func(n uint, err error) {
				log.PrefixedLog(loggerPrefixDatabaseWriter).
					Warnf("can't create resolution log database, attempt %d/%d: %s", n+1, cfg.CreationAttempts, err)
			}),
		)

		if err != nil {
			return nil, err
		}

		return writer, nil
	}

	return nil, fmt.Errorf("unsupported resolution log type '%s'", cfg.Type)
}

// PeriodicCleanUp calls CleanUp of the writer until ctx is done
func PeriodicCleanUp(ctx context.Context, w Writer) {
	periodicCleanUp(ctx, w, model.NewTimeTicker(cleanUpRunPeriod))
}

func periodicCleanUp(ctx context.Context, w Writer, ticker model.TickerWrapper) {
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			w.CleanUp()
		case <-ctx.Done():
			return
		}
	}
}
