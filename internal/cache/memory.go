package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type entry struct {
	data      []byte
	timestamp time.Time
	ttl       time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.timestamp) > e.ttl
}

// Manager is the in-process Store: a mutex-guarded map with lazy eviction on
// read and a periodic background sweep. The sweep only removes entries and
// never blocks readers for long; a read racing the sweep may or may not see
// an about-to-expire entry, which is acceptable for TTL caching.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]entry
	stop    chan struct{}
	once    sync.Once
}

const defaultSweepInterval = 5 * time.Minute

// NewManager starts the sweep goroutine. Call Stop when done.
func NewManager(sweepInterval time.Duration) *Manager {
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}
	m := &Manager{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}
	go m.sweepLoop(sweepInterval)
	return m
}

func (m *Manager) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(time.Now()) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return e.data, true
}

func (m *Manager) Set(_ context.Context, key string, data []byte, ttl time.Duration) {
	m.mu.Lock()
	m.entries[key] = entry{data: data, timestamp: time.Now(), ttl: ttl}
	m.mu.Unlock()
}

func (m *Manager) Delete(_ context.Context, key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

func (m *Manager) DeletePrefix(_ context.Context, prefix string) {
	m.mu.Lock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
}

// Len reports live (possibly expired but unswept) entries.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Stop halts the sweep goroutine and clears the map. Safe to call twice.
func (m *Manager) Stop() {
	m.once.Do(func() {
		close(m.stop)
		m.mu.Lock()
		m.entries = make(map[string]entry)
		m.mu.Unlock()
	})
}

func (m *Manager) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	now := time.Now()
	m.mu.Lock()
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
}
