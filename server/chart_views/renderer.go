package chart_views

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"balancechart/models"
	"balancechart/server/hooks"
)

// Renderer owns the underlying chart objects. It has no partial-update
// operation: a new dataset means a new session.
type Renderer interface {
	// Create allocates a fresh drawing surface inside parent and draws ds onto it.
	Create(parent *hooks.Element, ds models.ChartDataset) (*Session, error)
	// Destroy releases the session's chart object and surface. Destroying a nil or
	// already destroyed session does nothing.
	Destroy(*Session)
	// Live returns the number of sessions created and not yet destroyed.
	Live() int
}

// ErrSessionDestroyed is returned when a destroyed session is queried.
var ErrSessionDestroyed = errors.New("chart session destroyed")

// Session is one instantiation of a chart plus the surface it draws onto. Sessions are
// owned by exactly one controller and must not be shared.
type Session struct {
	id        string
	surfaceID string
	parent    *hooks.Element
	series    int
	points    int
	destroyed bool
}

// Surface returns the id of the session's drawing surface.
func (s *Session) Surface() (string, error) {
	if s == nil || s.destroyed {
		return "", ErrSessionDestroyed
	}
	return s.surfaceID, nil
}

// Shape returns the number of series and points drawn.
func (s *Session) Shape() (series, points int, err error) {
	if s == nil || s.destroyed {
		return 0, 0, ErrSessionDestroyed
	}
	return s.series, s.points, nil
}

// Destroyed reports whether the session has been released.
func (s *Session) Destroyed() bool {
	return s == nil || s.destroyed
}

// RenderError is returned by Create when the chart rejects a dataset.
type RenderError struct {
	Backend string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s renderer: %v", e.Backend, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// surfaces tracks live sessions of a renderer. Surface ids are never reused.
type surfaces struct {
	mu   sync.Mutex
	live map[string]*Session
}

func newSurfaces() *surfaces {
	return &surfaces{live: map[string]*Session{}}
}

// allocate returns a new, unregistered session with a fresh surface inside parent.
func (sf *surfaces) allocate(parent *hooks.Element, ds models.ChartDataset) *Session {
	id := uuid.NewString()
	return &Session{
		id:        id,
		surfaceID: parent.ID() + "-surface-" + id,
		parent:    parent,
		series:    len(ds.Series),
		points:    ds.NumPoints(),
	}
}

func (sf *surfaces) register(s *Session) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	sf.live[s.id] = s
}

// release marks s destroyed and reports whether it was live.
func (sf *surfaces) release(s *Session) bool {
	if s == nil {
		return false
	}
	sf.mu.Lock()
	defer sf.mu.Unlock()
	if s.destroyed {
		return false
	}
	s.destroyed = true
	_, ok := sf.live[s.id]
	delete(sf.live, s.id)
	return ok
}

func (sf *surfaces) count() int {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return len(sf.live)
}
