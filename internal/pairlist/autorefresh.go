package pairlist

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// StartAutoRefresh launches the background loop: refresh, then wait
// intervalSeconds in one-tick steps so a stop is noticed promptly. A
// non-positive interval keeps the configured one. It returns false if a loop
// is already running.
func (m *Manager) StartAutoRefresh(ctx context.Context, intervalSeconds int) bool {
	m.loopMu.Lock()
	defer m.loopMu.Unlock()

	if m.running.Load() {
		m.logger.Warn("auto refresh already running")
		return false
	}
	if m.done != nil {
		// A previous loop exited on its own when its parent context ended.
		<-m.done
		m.cancel()
		m.cancel, m.done = nil, nil
	}

	m.mu.Lock()
	if intervalSeconds > 0 {
		m.refreshInterval = intervalSeconds
	}
	interval := m.refreshInterval
	m.mu.Unlock()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel, m.done = cancel, done
	m.running.Store(true)

	go m.autoRefreshLoop(loopCtx, interval, done)

	m.logger.Info("auto refresh started", zap.Int("interval_seconds", interval))
	return true
}

// StopAutoRefresh cancels the loop and waits for it to exit. It is a no-op
// when no loop is running.
func (m *Manager) StopAutoRefresh() {
	m.loopMu.Lock()
	defer m.loopMu.Unlock()

	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel, m.done = nil, nil
	m.logger.Info("auto refresh stopped")
}

// IsAutoRefreshing reports whether the background loop is running.
func (m *Manager) IsAutoRefreshing() bool {
	return m.running.Load()
}

// Close stops any running auto refresh.
func (m *Manager) Close() {
	m.StopAutoRefresh()
}

func (m *Manager) autoRefreshLoop(ctx context.Context, interval int, done chan struct{}) {
	defer close(done)
	defer m.running.Store(false)

	if interval < 1 {
		interval = 1
	}
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		m.refreshRecovered(ctx)

		for waited := 0; waited < interval; waited++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}
}

func (m *Manager) refreshRecovered(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("auto refresh panicked", zap.String("panic", fmt.Sprint(r)))
		}
	}()
	m.Refresh(ctx)
}
