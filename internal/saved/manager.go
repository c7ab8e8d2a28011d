// Package saved manages the user's saved-search list: load, execute,
// delete, and notification toggling against a backing API. Criteria
// maps are opaque here; the only field ever rewritten is the
// notification flag, and the server's returned object is always taken
// as ground truth over any local mutation.
package saved

import (
	"context"
	"sync"

	"ilanhub/internal/domain"
)

// API is the slice of the saved-search backend the manager drives.
type API interface {
	List(ctx context.Context) ([]domain.SavedSearch, error)
	Update(ctx context.Context, s domain.SavedSearch) (domain.SavedSearch, error)
	Delete(ctx context.Context, id string) error
}

// ErrorFunc surfaces one operation's failure as a transient
// notification. Failures are independent and never retried.
type ErrorFunc func(op string, err error)

type Manager struct {
	api      API
	notifyMu sync.Mutex
	onError  ErrorFunc

	mu      sync.Mutex
	entries []domain.SavedSearch
}

func NewManager(api API, onError ErrorFunc) *Manager {
	return &Manager{api: api, onError: onError}
}

// Load fetches all saved searches. On failure the visible list is
// left empty and the error is surfaced once.
func (m *Manager) Load(ctx context.Context) error {
	list, err := m.api.List(ctx)
	if err != nil {
		m.mu.Lock()
		m.entries = nil
		m.mu.Unlock()
		m.report("list", err)
		return err
	}
	m.mu.Lock()
	m.entries = list
	m.mu.Unlock()
	return nil
}

// Entries returns a copy of the current list in its stored order.
func (m *Manager) Entries() []domain.SavedSearch {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SavedSearch, len(m.entries))
	copy(out, m.entries)
	return out
}

// Execute invokes run with the stored criteria map, unchanged. The
// saved search itself is never mutated by execution.
func (m *Manager) Execute(id string, run func(criteria map[string]string) error) error {
	m.mu.Lock()
	var criteria map[string]string
	found := false
	for _, e := range m.entries {
		if e.ID == id {
			criteria = copyCriteria(e.Criteria)
			found = true
			break
		}
	}
	m.mu.Unlock()
	if !found {
		return domain.ErrNotFound
	}
	return run(criteria)
}

// Delete removes a saved search. The confirmed flag is the caller's
// explicit confirmation step; deletion is irreversible. On backend
// failure the visible list is identical to its pre-delete state.
func (m *Manager) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return domain.ErrConfirmRequired
	}
	if err := m.api.Delete(ctx, id); err != nil {
		m.report("delete", err)
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	return nil
}

// ToggleNotification sends the full saved-search payload with only
// NotificationEnabled inverted. On success the server's returned
// object replaces the matching entry in place, without reordering; no
// local flip happens on failure.
func (m *Manager) ToggleNotification(ctx context.Context, id string) error {
	m.mu.Lock()
	idx := -1
	var payload domain.SavedSearch
	for i, e := range m.entries {
		if e.ID == id {
			idx = i
			payload = e
			payload.Criteria = copyCriteria(e.Criteria)
			break
		}
	}
	m.mu.Unlock()
	if idx == -1 {
		return domain.ErrNotFound
	}

	payload.NotificationEnabled = !payload.NotificationEnabled
	got, err := m.api.Update(ctx, payload)
	if err != nil {
		m.report("toggle", err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == got.ID {
			m.entries[i] = got
			return nil
		}
	}
	return nil
}

func (m *Manager) report(op string, err error) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	if m.onError != nil {
		m.onError(op, err)
	}
}

func copyCriteria(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
