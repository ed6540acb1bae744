package model

import "time"

// TickerWrapper is the part of time.Ticker periodic jobs use, so tests can drive the ticks
type TickerWrapper interface {
	C() <-chan time.Time
	Stop()
}

// TimeTicker wraps a time.Ticker
type TimeTicker struct {
	ticker *time.Ticker
}

// NewTimeTicker starts a ticker with period d
func NewTimeTicker(d time.Duration) *TimeTicker {
	return &TimeTicker{ticker: time.NewTicker(d)}
}

func (t *TimeTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t *TimeTicker) Stop() {
	t.ticker.Stop()
}
