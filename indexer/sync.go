package indexer

import (
	"time"
)

// RunPeriodicRefresh triggers a full refresh of every registered workspace at
// the given interval until stop is closed. A full pass re-enumerates the tree
// and reconciles stale entries, so watcher events lost to platform hiccups
// heal on the next tick.
func (s *Service) RunPeriodicRefresh(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("periodic refresh started", "interval", interval)

	for {
		select {
		case <-stop:
			s.logger.Info("periodic refresh stopped")
			return
		case <-ticker.C:
			s.Refresh("")
		}
	}
}
