package dashboard

import (
	"context"
	"sync"

	"github.com/Frictionalfor/codeFORGE-sub002/core"
	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
)

// Loader runs the aggregation pipeline. *classroom.Service implements it.
type Loader interface {
	Load(ctx context.Context) (classroom.Result, error)
}

var _ Loader = (*classroom.Service)(nil)

// State is what the home screen shows.
type State struct {
	Result  classroom.Result
	Stats   Stats
	Loading bool
	Err     error
	Notice  string // user-facing message for Err
}

// Shell tracks the current view and the latest loaded Result.
// Entering Home always starts a fresh load; a load that completes after a newer one started,
// or after the shell left Home, is discarded.
type Shell struct {
	loader Loader
	logger core.Logger

	mu         sync.Mutex
	current    View
	generation uint64
	state      State
	wg         sync.WaitGroup
}

// NewShell starts on Home without loading; call Home to load.
func NewShell(loader Loader, logger core.Logger) *Shell {
	return &Shell{loader: loader, logger: logger, current: Home{}}
}

func (s *Shell) Current() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait blocks until every load started so far has completed (applied or discarded).
func (s *Shell) Wait() { s.wg.Wait() }

// Open switches to v. Contextual views must carry their context (see NewEditor).
func (s *Shell) Open(ctx context.Context, v View) error {
	if !valid(v) {
		switch v.(type) {
		case Editor:
			return ErrInvalidEditor
		case Assignments:
			return ErrNoClass
		default:
			return ErrNoView
		}
	}

	s.mu.Lock()
	s.current = v
	s.generation++ // any load in flight is now stale
	gen := s.generation
	_, home := v.(Home)
	s.state.Loading = home
	s.mu.Unlock()

	if home {
		s.wg.Add(1)
		go s.load(ctx, gen)
	}
	return nil
}

func (s *Shell) Home(ctx context.Context) { _ = s.Open(ctx, Home{}) }

func (s *Shell) ShowClasses(ctx context.Context) { _ = s.Open(ctx, Classes{}) }

func (s *Shell) ShowSchedule(ctx context.Context) { _ = s.Open(ctx, Schedule{}) }

func (s *Shell) ShowSettings(ctx context.Context) { _ = s.Open(ctx, Settings{}) }

func (s *Shell) OpenClass(ctx context.Context, class classroom.EnrolledClass) error {
	return s.Open(ctx, Assignments{Class: class})
}

func (s *Shell) OpenEditor(ctx context.Context, class classroom.EnrolledClass, assignment classroom.EnrichedAssignment) error {
	e, err := NewEditor(class, assignment)
	if err != nil {
		return err
	}
	return s.Open(ctx, e)
}

// Back goes one level up: Editor to its class, Assignments to Classes, anything else Home.
func (s *Shell) Back(ctx context.Context) {
	_ = s.Open(ctx, parent(s.Current()))
}

func (s *Shell) load(ctx context.Context, gen uint64) {
	defer s.wg.Done()
	res, err := s.loader.Load(ctx)
	if !s.apply(gen, res, err) && s.logger != nil {
		s.logger.Debug("discarding stale dashboard load", map[string]interface{}{"generation": gen})
	}
}

// apply stores a completed load unless it is stale.
func (s *Shell) apply(gen uint64, res classroom.Result, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	if _, home := s.current.(Home); !home {
		return false
	}
	s.state = NewState(res, err)
	return true
}

// Store keeps the latest State per student.
type Store interface {
	Get(key string) (State, bool)
	Put(key string, st State)
	Delete(key string)
}

// NewState builds the State of a completed load.
func NewState(res classroom.Result, err error) State {
	return State{
		Result: res,
		Stats:  NewStats(res),
		Err:    err,
		Notice: classroom.Notice(err),
	}
}
