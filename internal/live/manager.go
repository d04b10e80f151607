package live

import (
	"sync"

	"github.com/revelare/revelare-web/pkg/metrics"
)

// Manager tracks open connections so they can be counted and closed on
// shutdown.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewManager() *Manager {
	return &Manager{clients: make(map[string]*Client)}
}

func (m *Manager) register(c *Client) {
	m.mu.Lock()
	m.clients[c.ID] = c
	m.mu.Unlock()
	metrics.IncLiveConnections()
}

func (m *Manager) unregister(c *Client) {
	m.mu.Lock()
	_, ok := m.clients[c.ID]
	delete(m.clients, c.ID)
	m.mu.Unlock()
	if ok {
		metrics.DecLiveConnections()
	}
	c.Shutdown()
}

func (m *Manager) GetClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// CloseAll shuts every connection down.
func (m *Manager) CloseAll() {
	m.mu.RLock()
	clients := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	m.mu.RUnlock()
	for _, c := range clients {
		c.Shutdown()
	}
}
