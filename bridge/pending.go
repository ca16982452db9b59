package bridge

import "context"

// Pending represents an asynchronous call result
type Pending struct {
	done      chan struct{}
	result    interface{}
	rejection *Rejection
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) resolve(result interface{}) {
	p.result = result
	close(p.done)
}

func (p *Pending) reject(rejection *Rejection) {
	p.rejection = rejection
	close(p.done)
}

// Done returns channel closed once the call completes
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Result returns call outcome, it has to be called after Done is closed
func (p *Pending) Result() (interface{}, *Rejection) {
	return p.result, p.rejection
}

// Wait waits for call outcome
func (p *Pending) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
	}
	if p.rejection != nil {
		return nil, p.rejection
	}
	return p.result, nil
}

// Then calls fn on a separate goroutine once the call completes
func (p *Pending) Then(fn func(result interface{}, rejection *Rejection)) {
	go func() {
		<-p.done
		fn(p.result, p.rejection)
	}()
}
