package workspace

import (
	"sync"

	"duopane/internal/log"
)

// Manager refreshes every registered workspace. It is the notifier handed to
// transactions and to the watcher.
type Manager struct {
	mu         sync.RWMutex
	workspaces []*Workspace
}

func NewManager(ws ...*Workspace) *Manager {
	m := &Manager{}
	m.Register(ws...)
	return m
}

func (m *Manager) Register(ws ...*Workspace) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workspaces = append(m.workspaces, ws...)
}

// Workspaces returns the registered workspaces in registration order.
func (m *Manager) Workspaces() []*Workspace {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Workspace, len(m.workspaces))
	copy(out, m.workspaces)
	return out
}

// RebuildAll rebuilds every workspace. Failures are logged, never returned.
func (m *Manager) RebuildAll() {
	for _, w := range m.Workspaces() {
		if err := w.Rebuild(); err != nil {
			log.LogWithFields(log.F("path", w.Path())).WithError(err).Warn("rebuild failed")
		}
	}
}
