package editable

import (
	"context"
	"sync"
)

// loop queues asynchronous completions so they run on the goroutine that
// calls Settle. Every begin must be matched by exactly one complete.
type loop struct {
	mu      sync.Mutex
	queue   []func()
	pending int
	wake    chan struct{}
}

func newLoop() *loop {
	return &loop{wake: make(chan struct{}, 1)}
}

func (l *loop) begin() {
	l.mu.Lock()
	l.pending++
	l.mu.Unlock()
}

// complete enqueues fn; it may be called from any goroutine.
func (l *loop) complete(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// settle runs queued completions until nothing is outstanding.
func (l *loop) settle(ctx context.Context) error {
	for {
		l.mu.Lock()
		if len(l.queue) > 0 {
			fn := l.queue[0]
			l.queue = l.queue[1:]
			l.pending--
			l.mu.Unlock()
			fn()
			continue
		}
		if l.pending == 0 {
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		select {
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *loop) outstanding() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Signal is handed to a Target (or used by a Module) to report its outcome.
// Only the first call to Success or Error has an effect; the outcome runs on
// the editor's loop.
type Signal struct {
	ed        *Editor
	once      sync.Once
	onSuccess func(Data)
	onError   func(Failure)
	label     string
}

func (ed *Editor) newSignal(label string, onSuccess func(Data), onError func(Failure)) *Signal {
	ed.loop.begin()
	return &Signal{ed: ed, onSuccess: onSuccess, onError: onError, label: label}
}

// Success reports a successful outcome.
func (s *Signal) Success(d Data) {
	fired := false
	s.once.Do(func() {
		fired = true
		s.ed.loop.complete(func() { s.onSuccess(d) })
	})
	if !fired {
		s.ed.log.Warn().Str("unit", s.label).Msg("signal already resolved, success ignored")
	}
}

// Error reports a failed outcome. Untyped errors become a TargetError.
func (s *Signal) Error(err error) {
	fired := false
	s.once.Do(func() {
		fired = true
		f := asSignalled(err)
		s.ed.loop.complete(func() { s.onError(f) })
	})
	if !fired {
		s.ed.log.Warn().Str("unit", s.label).Err(err).Msg("signal already resolved, error ignored")
	}
}

// later runs fn on the loop during the next Settle.
func (ed *Editor) later(fn func()) {
	ed.loop.begin()
	ed.loop.complete(fn)
}
