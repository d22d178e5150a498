package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// CloseFunc releases one component during shutdown.
type CloseFunc func(ctx context.Context) error

type entry struct {
	name  string
	close CloseFunc
}

// Manager tears the process down in reverse registration order, so a
// component never outlives the ones it depends on.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	entries []entry
	once    sync.Once
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{timeout: timeout, logger: logger}
}

// Register queues a component for shutdown. Nil closers are ignored.
func (m *Manager) Register(name string, close CloseFunc) {
	if close == nil {
		return
	}
	m.mu.Lock()
	m.entries = append(m.entries, entry{name: name, close: close})
	m.mu.Unlock()
}

// Shutdown closes every registered component, newest first. It runs at
// most once; later calls return nil immediately.
func (m *Manager) Shutdown(parent context.Context) error {
	var result error
	m.once.Do(func() {
		if parent == nil {
			parent = context.Background()
		}
		ctx, cancel := context.WithTimeout(parent, m.timeout)
		defer cancel()

		m.mu.Lock()
		entries := m.entries
		m.mu.Unlock()

		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			started := time.Now()
			if err := e.close(ctx); err != nil {
				m.logger.Error("component shutdown failed",
					zap.String("component", e.name), zap.Error(err))
				result = errors.Join(result, err)
				continue
			}
			m.logger.Info("component stopped",
				zap.String("component", e.name),
				zap.Duration("took", time.Since(started)))
		}
	})
	return result
}

// Listen cancels the given function when SIGTERM or SIGINT arrives.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(signals)
		sig := <-signals
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}
