package platforms

import (
	"context"
	"strings"
	"sync"
)

type Field struct {
	Name   string
	Value  string
	Inline bool
}

type Message struct {
	PanelKey    string
	Title       string
	Description string
	Color       int
	Timestamp   string
	Fields      []Field
}

type Adapter interface {
	Name() string
	Send(ctx context.Context, endpoint, secret string, msg Message) error
}

// PanelForgetter is implemented by adapters that remember posted message ids
// so later messages with the same panel key edit them.
type PanelForgetter interface {
	ForgetPanel(endpoint, panelKey string)
}

type panelIDs struct {
	mu   sync.Mutex
	byID map[string]string
}

func newPanelIDs() *panelIDs {
	return &panelIDs{byID: map[string]string{}}
}

func panelKey(endpoint, key string) string {
	return strings.TrimSpace(endpoint) + "|" + strings.TrimSpace(key)
}

func (p *panelIDs) get(key string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.byID[key]
}

func (p *panelIDs) set(key, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byID[key] = id
}

func (p *panelIDs) forget(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.byID, key)
}
