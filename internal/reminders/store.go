package reminders

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobKey identifies a pending one-shot reminder. At most one job exists per
// key: re-registering replaces the previous fire time.
type JobKey struct {
	ItemID uuid.UUID
	UserID uuid.UUID
}

// JobStore holds pending one-shot reminder jobs.
type JobStore interface {
	// Upsert schedules fire to run at fireAt, replacing any pending job for
	// the same key.
	Upsert(key JobKey, fireAt time.Time, fire func())
	// Cancel drops a pending job if one exists.
	Cancel(key JobKey)
	// Len reports the number of pending jobs.
	Len() int
}

// TimerStore is an in-process JobStore backed by one timer per job.
type TimerStore struct {
	mu     sync.Mutex
	timers map[JobKey]*time.Timer
	now    func() time.Time
}

// NewTimerStore builds an empty timer-backed store.
func NewTimerStore() *TimerStore {
	return &TimerStore{
		timers: make(map[JobKey]*time.Timer),
		now:    time.Now,
	}
}

// Upsert replaces any pending timer for the key. Last registration wins even
// under concurrent re-opens of the same item.
func (s *TimerStore) Upsert(key JobKey, fireAt time.Time, fire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[key]; ok {
		existing.Stop()
	}

	delay := fireAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.remove(key)
		fire()
	})
}

// Cancel stops and drops the pending timer for the key.
func (s *TimerStore) Cancel(key JobKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.timers[key]; ok {
		existing.Stop()
		delete(s.timers, key)
	}
}

// Len reports how many jobs are pending.
func (s *TimerStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending timer. Used on worker shutdown.
func (s *TimerStore) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}

func (s *TimerStore) remove(key JobKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, key)
}
