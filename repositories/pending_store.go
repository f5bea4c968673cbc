package repositories

import (
	"sync"
	"time"

	"github.com/lengsovandara168/Agri-Tech-2/models"
)

// PendingRegistrationStore is the process-wide holding area for unconfirmed
// signups, keyed by email as submitted. Every record is purged automatically
// once its TTL elapses, whether or not it is ever consulted again.
type PendingRegistrationStore struct {
	mu      sync.Mutex
	seq     uint64
	entries map[string]*pendingEntry
}

type pendingEntry struct {
	rec   models.PendingRegistration
	seq   uint64
	timer *time.Timer
}

// NewPendingRegistrationStore creates an empty store.
func NewPendingRegistrationStore() *PendingRegistrationStore {
	return &PendingRegistrationStore{
		entries: make(map[string]*pendingEntry),
	}
}

// Put inserts or replaces the pending registration for the record's email
// and schedules its purge after ttl. Replacing re-arms the purge timer, so
// the newest record always wins.
func (s *PendingRegistrationStore) Put(email string, rec models.PendingRegistration, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[email]; ok {
		old.timer.Stop()
	}

	s.seq++
	seq := s.seq
	s.entries[email] = &pendingEntry{
		rec: rec,
		seq: seq,
		timer: time.AfterFunc(ttl, func() {
			s.expire(email, seq)
		}),
	}
}

// Get returns the pending registration for email, if any.
func (s *PendingRegistrationStore) Get(email string) (models.PendingRegistration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[email]
	if !ok {
		return models.PendingRegistration{}, false
	}
	return entry.rec, true
}

// Delete removes the pending registration for email, if any.
func (s *PendingRegistrationStore) Delete(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[email]; ok {
		entry.timer.Stop()
		delete(s.entries, email)
	}
}

// expire is the timer callback. The sequence guard keeps a stale timer that
// raced an overwrite from deleting the newer record.
func (s *PendingRegistrationStore) expire(email string, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[email]; ok && entry.seq == seq {
		delete(s.entries, email)
	}
}
