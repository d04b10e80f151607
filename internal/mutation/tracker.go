package mutation

import (
	"errors"
	"sync"
)

var ErrBusy = errors.New("a submission is already in progress")

type State int

const (
	Idle State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Succeeded:
		return "success"
	case Failed:
		return "failure"
	default:
		return "idle"
	}
}

// Tracker allows one in-flight submission per key, usually a session id
// and form name. A submission moves IDLE -> SUBMITTING -> SUCCESS|FAILURE
// and always returns to IDLE.
type Tracker struct {
	mu       sync.Mutex
	inflight map[string]struct{}
	observe  func(key string, s State)
}

func NewTracker() *Tracker {
	return &Tracker{inflight: make(map[string]struct{})}
}

// Observe registers a callback for state transitions.
func (t *Tracker) Observe(fn func(key string, s State)) {
	t.mu.Lock()
	t.observe = fn
	t.mu.Unlock()
}

func Key(sessionID, form string) string {
	return sessionID + ":" + form
}

func (t *Tracker) Busy(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.inflight[key]
	return ok
}

// Begin marks key as submitting. The returned release must be called,
// normally deferred.
func (t *Tracker) Begin(key string) (release func(err error), err error) {
	t.mu.Lock()
	if _, ok := t.inflight[key]; ok {
		t.mu.Unlock()
		return nil, ErrBusy
	}
	t.inflight[key] = struct{}{}
	obs := t.observe
	t.mu.Unlock()
	notify(obs, key, Submitting)

	var once sync.Once
	return func(err error) {
		once.Do(func() {
			if err != nil {
				notify(obs, key, Failed)
			} else {
				notify(obs, key, Succeeded)
			}
			t.mu.Lock()
			delete(t.inflight, key)
			t.mu.Unlock()
			notify(obs, key, Idle)
		})
	}, nil
}

// Do runs fn as the single submission for key.
func (t *Tracker) Do(key string, fn func() error) (err error) {
	release, err := t.Begin(key)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			release(errors.New("submission panicked"))
			panic(r)
		}
		release(err)
	}()
	return fn()
}

func notify(fn func(string, State), key string, s State) {
	if fn != nil {
		fn(key, s)
	}
}
