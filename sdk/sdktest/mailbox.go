package sdktest

import "sync"

// mailbox delivers callbacks of one listener in order on its own goroutine
type mailbox struct {
	mu     sync.Mutex
	items  []func()
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newMailbox() *mailbox {
	ret := &mailbox{signal: make(chan struct{}, 1), done: make(chan struct{})}
	go ret.run()
	return ret
}

func (m *mailbox) push(fn func()) {
	m.mu.Lock()
	m.items = append(m.items, fn)
	m.mu.Unlock()
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) close() {
	m.once.Do(func() { close(m.done) })
}

func (m *mailbox) closed() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

func (m *mailbox) run() {
	for {
		select {
		case <-m.done:
			return
		case <-m.signal:
		}
		for {
			m.mu.Lock()
			if len(m.items) == 0 {
				m.mu.Unlock()
				break
			}
			fn := m.items[0]
			m.items = m.items[1:]
			m.mu.Unlock()
			if m.closed() {
				return
			}
			fn()
		}
	}
}
