package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SessionRegistry keeps one form controller per browser session.
type SessionRegistry interface {
	Start(ctx context.Context)
	Stop()
	Get(sessionID string) *FormController
	Len() int
}

type sessionEntry struct {
	form     *FormController
	lastSeen time.Time
}

type sessionRegistry struct {
	newForm    func() *FormController
	expiration time.Duration
	interval   time.Duration
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// DefaultSessionExpiration matches what fiber's session store falls back to.
const DefaultSessionExpiration = 24 * time.Hour

// NewSessionRegistry returns a registry evicting forms idle for longer than
// expiration. A non-positive expiration means DefaultSessionExpiration.
func NewSessionRegistry(newForm func() *FormController, expiration time.Duration) SessionRegistry {
	if expiration <= 0 {
		expiration = DefaultSessionExpiration
	}

	interval := expiration / 10
	if interval < time.Minute {
		interval = time.Minute
	}

	return &sessionRegistry{
		newForm:    newForm,
		expiration: expiration,
		interval:   interval,
		now:        time.Now,
		sessions:   make(map[string]*sessionEntry),
		stopChan:   make(chan struct{}),
	}
}

// Start implements SessionRegistry.
func (r *sessionRegistry) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.evictExpired(ctx)
	slog.Info("✅ Session janitor started", "expiration", r.expiration, "interval", r.interval)
}

// Stop implements SessionRegistry.
func (r *sessionRegistry) Stop() {
	r.stopOnce.Do(func() {
		slog.Info("🛑 Stopping session janitor...")
		close(r.stopChan)
	})
	r.wg.Wait()
}

// Get implements SessionRegistry. Unknown ids get a fresh form.
func (r *sessionRegistry) Get(sessionID string) *FormController {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[sessionID]
	if !ok {
		entry = &sessionEntry{form: r.newForm()}
		r.sessions[sessionID] = entry
	}
	entry.lastSeen = r.now()

	return entry.form
}

// Len implements SessionRegistry.
func (r *sessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

func (r *sessionRegistry) evictExpired(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			slog.Info("🔄 Session janitor stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.sweep(); n > 0 {
				slog.Info("🧹 Evicted expired sessions", "count", n)
			}
		}
	}
}

func (r *sessionRegistry) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.expiration)
	evicted := 0
	for id, entry := range r.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}
