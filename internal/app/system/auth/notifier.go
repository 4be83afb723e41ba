// internal/app/system/auth/notifier.go
package auth

import "sync"

// Listener receives session transitions. OnSignOut is called synchronously
// from the sign-out path: dependent caches must be cleared by the time it
// returns so no stale cross-user state survives the session.
type Listener interface {
	OnSignIn(u *SessionUser)
	OnSignOut(userID string)
}

// Notifier fans session transitions out to registered listeners.
type Notifier struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers a listener for future transitions.
func (n *Notifier) Subscribe(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

// SignIn notifies listeners of a sign-in.
func (n *Notifier) SignIn(u *SessionUser) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, l := range n.listeners {
		l.OnSignIn(u)
	}
}

// SignOut notifies listeners of a sign-out.
func (n *Notifier) SignOut(userID string) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, l := range n.listeners {
		l.OnSignOut(userID)
	}
}
