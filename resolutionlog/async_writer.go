package resolutionlog

import (
	"context"

	"github.com/masiarekpl/keypin/log"
)

const (
	loggerPrefixAsyncWriter = "resolution_log"

	logChanCap = 1000
)

// AsyncWriter hands entries to a single goroutine, so a slow target never delays a resolution
type AsyncWriter struct {
	target  Writer
	logChan chan *Entry
}

// NewAsyncWriter writes to target until ctx is done.
// Entries are dropped while the buffer of waiting entries is full.
func NewAsyncWriter(ctx context.Context, target Writer) *AsyncWriter {
	return newAsyncWriter(ctx, target, logChanCap)
}

func newAsyncWriter(ctx context.Context, target Writer, capacity int) *AsyncWriter {
	w := &AsyncWriter{
		target:  target,
		logChan: make(chan *Entry, capacity),
	}

	go w.writeLog(ctx)

	return w
}

func (w *AsyncWriter) Write(entry *Entry) {
	select {
	case w.logChan <- entry:
	default:
		log.PrefixedLog(loggerPrefixAsyncWriter).
			WithField("identity_type", entry.IdentityType).
			Error("resolution log writer is too slow, log entry will be dropped")
	}
}

func (w *AsyncWriter) CleanUp() {
	w.target.CleanUp()
}

func (w *AsyncWriter) writeLog(ctx context.Context) {
	for {
		select {
		case entry := <-w.logChan:
			w.target.Write(entry)
		case <-ctx.Done():
			return
		}
	}
}
