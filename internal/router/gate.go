package router

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"wings-inventory/internal/events"
	"wings-inventory/internal/model"
	"wings-inventory/internal/service"
)

// Notifier pushes a message to connected clients.
type Notifier interface {
	Notify(v any)
}

// Gate tracks session transitions through a single auth observer and keeps
// one workspace per live session.
type Gate struct {
	auth     service.AuthService
	inv      service.InventoryService
	members  service.MemberService
	notifier Notifier
	flashTTL time.Duration

	mu         sync.Mutex
	unobserve  func()
	workspaces map[string]*Workspace
}

func NewGate(auth service.AuthService, inv service.InventoryService, members service.MemberService, notifier Notifier, flashTTL time.Duration) *Gate {
	return &Gate{
		auth:       auth,
		inv:        inv,
		members:    members,
		notifier:   notifier,
		flashTTL:   flashTTL,
		workspaces: make(map[string]*Workspace),
	}
}

// Mount starts observing session transitions. Mounting twice keeps the first observer.
func (g *Gate) Mount() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unobserve != nil {
		return
	}
	g.unobserve = g.auth.Observe(g.onSession)
}

// Unmount stops observing and closes every workspace.
func (g *Gate) Unmount() {
	g.mu.Lock()
	unobserve := g.unobserve
	g.unobserve = nil
	open := g.workspaces
	g.workspaces = make(map[string]*Workspace)
	g.mu.Unlock()

	if unobserve != nil {
		unobserve()
	}
	for _, w := range open {
		w.Close()
	}
}

func (g *Gate) Mounted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unobserve != nil
}

// Workspace returns the workspace of sess, creating it on first use.
func (g *Gate) Workspace(sess *model.Session) *Workspace {
	g.mu.Lock()
	defer g.mu.Unlock()
	if w, ok := g.workspaces[sess.ID]; ok {
		return w
	}
	w := newWorkspace(*sess, g.inv, g.members, g.flashTTL)
	g.workspaces[sess.ID] = w
	return w
}

func (g *Gate) WorkspaceCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.workspaces)
}

func (g *Gate) onSession(e model.SessionEvent) {
	if !e.Authenticated() {
		g.mu.Lock()
		w, ok := g.workspaces[e.Session.ID]
		delete(g.workspaces, e.Session.ID)
		g.mu.Unlock()
		if ok {
			w.Close()
		}
	}

	zap.L().Debug("session transition", zap.String("kind", string(e.Kind)), zap.String("email", e.Session.Email))
	if g.notifier == nil {
		return
	}
	g.notifier.Notify(events.Event{
		Type:   events.TypeSessionUpdate,
		Action: string(e.Kind),
		ID:     e.Session.ID,
		Data:   map[string]any{"authenticated": e.Authenticated()},
		User:   &events.Actor{ID: e.Session.AccountID, Email: e.Session.Email},
	})
}
