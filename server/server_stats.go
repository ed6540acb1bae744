package server

import (
	"github.com/sirupsen/logrus"

	"github.com/masiarekpl/keypin/evt"
	"github.com/masiarekpl/keypin/stats"
	"github.com/masiarekpl/keypin/util"
)

// resolutionStats counts resolution outcomes per identity type for the configuration dump
type resolutionStats struct {
	outcomes *stats.Aggregator

	onResolved func(typ string, degraded bool)
	onFailed   func(typ, kind string)
}

func newResolutionStats() *resolutionStats {
	s := &resolutionStats{outcomes: stats.NewAggregator("resolutions")}

	s.onResolved = func(typ string, degraded bool) {
		if degraded {
			s.outcomes.Put(typ + " degraded")
		} else {
			s.outcomes.Put(typ + " ready")
		}
	}

	s.onFailed = func(typ, kind string) {
		s.outcomes.Put(typ + " " + kind)
	}

	util.FatalOnError("can't subscribe resolution stats: ", evt.Bus().Subscribe(evt.IdentityResolved, s.onResolved))
	util.FatalOnError("can't subscribe resolution stats: ", evt.Bus().Subscribe(evt.IdentityResolutionFailed, s.onFailed))

	return s
}

func (s *resolutionStats) close() {
	_ = evt.Bus().Unsubscribe(evt.IdentityResolved, s.onResolved)
	_ = evt.Bus().Unsubscribe(evt.IdentityResolutionFailed, s.onFailed)
}

func (s *resolutionStats) logTo(logger *logrus.Entry) {
	top := s.outcomes.Top()
	if len(top) == 0 {
		logger.Info("no resolutions in the last 24 hours")

		return
	}

	logger.Info("resolutions in the last 24 hours:")

	for _, c := range top {
		logger.Infof("   %-30s %6d", c.Key, c.Count)
	}
}
