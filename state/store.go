package state

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Action is dispatched to the Store. Reducers switch on the concrete type.
type Action interface {
	Type() string
}

// ActionError is the last failure recorded on a slice, overwritten by the next attempt.
type ActionError struct {
	Op      string
	Message string
	Err     error `json:"-"`
}

func (e *ActionError) Error() string {
	return e.Message
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// State is the whole client-side application state.
type State struct {
	Auth     AuthState
	Groups   GroupsState
	Sessions SessionsState
}

// Reset returns every slice to its initial value. It is what a full reload does.
type Reset struct{}

func (Reset) Type() string { return "app/reset" }

// Reduce applies a to every slice.
func Reduce(s State, a Action) State {
	return State{
		Auth:     ReduceAuth(s.Auth, a),
		Groups:   ReduceGroups(s.Groups, a),
		Sessions: ReduceSessions(s.Sessions, a),
	}
}

// Store holds the current State. It is safe for concurrent use; subscribers are called
// outside the lock, in subscription order, after every dispatch.
type Store struct {
	mu          sync.RWMutex
	state       State
	subscribers []subscriber
	nextID      int
}

type subscriber struct {
	id int
	fn func(State)
}

func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// Dispatch reduces a into the current state and returns the new state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	subs := append([]subscriber(nil), s.subscribers...)
	s.mu.Unlock()

	log.Debug().Str("action", a.Type()).Msg("dispatch")
	for _, sub := range subs {
		sub.fn(next)
	}
	return next
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn for state changes. The returned func removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}
