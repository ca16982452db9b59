package sdk

import "sync"

// StateListeners keeps auth state listeners
type StateListeners struct {
	mu        sync.Mutex
	seq       int
	listeners map[int]StateListener
}

// Add registers listener and calls it with current user
func (l *StateListeners) Add(listener StateListener, current *User) Registration {
	l.mu.Lock()
	if l.listeners == nil {
		l.listeners = map[int]StateListener{}
	}
	l.seq++
	id := l.seq
	l.listeners[id] = listener
	l.mu.Unlock()
	listener(current)
	return RegistrationFunc(func() {
		l.mu.Lock()
		delete(l.listeners, id)
		l.mu.Unlock()
	})
}

// Notify calls all listeners with user
func (l *StateListeners) Notify(user *User) {
	l.mu.Lock()
	listeners := make([]StateListener, 0, len(l.listeners))
	for _, listener := range l.listeners {
		listeners = append(listeners, listener)
	}
	l.mu.Unlock()
	for _, listener := range listeners {
		listener(user)
	}
}

// Len returns number of listeners
func (l *StateListeners) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.listeners)
}
