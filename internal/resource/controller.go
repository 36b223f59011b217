// Package resource implements the fetch / mutate / re-fetch cycle every
// collection view in the dashboard goes through.
//
// A Controller owns the last fetched copy of one collection. Load replaces
// the whole copy with the server's list; Create, Update and Remove go to the
// server and, on success, Load again. The local copy is never patched in
// place.
//
// Overlapping loads are ordered by a per-controller sequence number: a
// result is applied only if it answers the most recently issued load, so the
// last load issued wins, whatever order the responses arrive in. Detach
// cancels whatever is in flight and makes the controller ignore any result
// that still arrives.
package resource

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"kyri56xcaesar/pms-dashboard/internal/gateway"
)

// ErrUnsupported is returned by mutations the collection's source does not
// offer (the team lead namespace cannot create teams, for instance).
var ErrUnsupported = errors.New("operation not supported for this collection")

// ErrDetached is returned by operations started on a detached controller.
var ErrDetached = errors.New("controller detached")

// Source is the set of server calls behind one collection. Nil mutations are
// unsupported.
type Source[T, P any] struct {
	List   func(ctx context.Context) ([]T, error)
	Create func(ctx context.Context, payload P) error
	Update func(ctx context.Context, id string, payload P) error
	Delete func(ctx context.Context, id string) error
}

// Messages are the fixed, user-facing texts a failed operation leaves in
// State.Error.
type Messages struct {
	Fetch  string
	Create string
	Update string
	Delete string
}

// DefaultMessages builds "Failed to fetch tasks", "Failed to create task"...
// from the plural and singular resource names.
func DefaultMessages(plural, singular string) Messages {
	return Messages{
		Fetch:  gateway.Message(gateway.OpFetch, plural),
		Create: gateway.Message(gateway.OpCreate, singular),
		Update: gateway.Message(gateway.OpUpdate, singular),
		Delete: gateway.Message(gateway.OpDelete, singular),
	}
}

// State is what a view renders.
type State[T any] struct {
	Items   []T    `json:"items"`
	Loading bool   `json:"loading"`
	Error   string `json:"error"`
}

type Controller[T, P any] struct {
	name string
	src  Source[T, P]
	msgs Messages
	log  zerolog.Logger

	life    context.Context
	destroy context.CancelFunc

	mu       sync.Mutex
	state    State[T]
	issued   uint64 // sequence number of the latest load issued
	pending  int    // operations currently in flight
	detached bool

	subsMu sync.Mutex
	subs   map[int]func(State[T])
	nextID int
}

func New[T, P any](name string, src Source[T, P], msgs Messages, log zerolog.Logger) *Controller[T, P] {
	life, destroy := context.WithCancel(context.Background())

	return &Controller[T, P]{
		name:    name,
		src:     src,
		msgs:    msgs,
		log:     log.With().Str("collection", name).Logger(),
		life:    life,
		destroy: destroy,
		state:   State[T]{Items: []T{}},
		subs:    make(map[int]func(State[T])),
	}
}

func (c *Controller[T, P]) Name() string { return c.name }

// State returns a copy of the current state.
func (c *Controller[T, P]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshot()
}

func (c *Controller[T, P]) snapshot() State[T] {
	return State[T]{
		Items:   slices.Clone(c.state.Items),
		Loading: c.state.Loading,
		Error:   c.state.Error,
	}
}

// scope derives a context that is also cancelled when the controller is
// detached.
func (c *Controller[T, P]) scope(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(c.life, cancel)

	return ctx, func() {
		stop()
		cancel()
	}
}

// begin marks an operation in flight. It reports false on a detached
// controller.
func (c *Controller[T, P]) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.detached {
		return false
	}
	c.pending++
	c.state.Loading = true
	c.state.Error = ""

	return true
}

// end closes an operation. Loading drops once nothing is in flight.
func (c *Controller[T, P]) end() {
	c.pending--
	if c.pending <= 0 {
		c.pending = 0
		c.state.Loading = false
	}
}

// Load fetches the collection and, if this is still the latest load,
// replaces the local copy. On failure the previous items stay and Error
// holds the fetch message. The returned error is the raw cause.
func (c *Controller[T, P]) Load(ctx context.Context) (State[T], error) {
	if c.src.List == nil {
		return c.State(), ErrUnsupported
	}

	if !c.begin() {
		return State[T]{}, ErrDetached
	}
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.mu.Unlock()
	c.publish()

	ctx, done := c.scope(ctx)
	items, err := c.src.List(ctx)
	done()

	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return State[T]{}, ErrDetached
	}
	c.end()
	stale := seq != c.issued
	switch {
	case stale:
		c.log.Debug().Uint64("seq", seq).Uint64("latest", c.issued).Msg("discarding stale load result")
	case err != nil:
		c.state.Error = c.msgs.Fetch
	default:
		if items == nil {
			items = []T{}
		}
		c.state.Items = items
		c.state.Error = ""
	}
	out := c.snapshot()
	c.mu.Unlock()

	if err != nil && !stale {
		c.log.Warn().Err(err).Msg(c.msgs.Fetch)
	}
	c.publish()

	return out, err
}

// Create sends payload to the server and reloads on success.
func (c *Controller[T, P]) Create(ctx context.Context, payload P) (State[T], error) {
	if c.src.Create == nil {
		return c.State(), ErrUnsupported
	}

	return c.mutate(ctx, c.msgs.Create, func(ctx context.Context) error {
		return c.src.Create(ctx, payload)
	})
}

// Update sends payload for id and reloads on success.
func (c *Controller[T, P]) Update(ctx context.Context, id string, payload P) (State[T], error) {
	if c.src.Update == nil {
		return c.State(), ErrUnsupported
	}

	return c.mutate(ctx, c.msgs.Update, func(ctx context.Context) error {
		return c.src.Update(ctx, id, payload)
	})
}

// Remove deletes id and reloads on success.
func (c *Controller[T, P]) Remove(ctx context.Context, id string) (State[T], error) {
	if c.src.Delete == nil {
		return c.State(), ErrUnsupported
	}

	return c.mutate(ctx, c.msgs.Delete, func(ctx context.Context) error {
		return c.src.Delete(ctx, id)
	})
}

// Apply runs a call outside the four CRUD verbs (assigning a task, adding
// members to a team) with the same rules: reload on success, failMsg and no
// reload on failure.
func (c *Controller[T, P]) Apply(ctx context.Context, failMsg string, op func(context.Context) error) (State[T], error) {
	return c.mutate(ctx, failMsg, op)
}

func (c *Controller[T, P]) mutate(ctx context.Context, failMsg string, op func(context.Context) error) (State[T], error) {
	if !c.begin() {
		return State[T]{}, ErrDetached
	}
	c.publish()

	scoped, done := c.scope(ctx)
	err := op(scoped)
	done()

	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return State[T]{}, ErrDetached
	}
	c.end()
	if err != nil {
		c.state.Error = failMsg
	}
	out := c.snapshot()
	c.mu.Unlock()

	if err != nil {
		c.log.Warn().Err(err).Msg(failMsg)
		c.publish()
		return out, err
	}

	return c.Load(ctx)
}

// Detach tears the controller down: in-flight requests are cancelled,
// results that still arrive are dropped, and later calls return
// ErrDetached. Subscribers are released.
func (c *Controller[T, P]) Detach() {
	c.mu.Lock()
	c.detached = true
	c.mu.Unlock()

	c.destroy()

	c.subsMu.Lock()
	c.subs = make(map[int]func(State[T]))
	c.subsMu.Unlock()
}

// Detached reports whether Detach has been called.
func (c *Controller[T, P]) Detached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.detached
}

// Subscribe registers fn to receive every state change.
func (c *Controller[T, P]) Subscribe(fn func(State[T])) func() {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	id := c.nextID
	c.nextID++
	c.subs[id] = fn

	return func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Controller[T, P]) publish() {
	st := c.State()

	c.subsMu.Lock()
	fns := make([]func(State[T]), 0, len(c.subs))
	for i := 0; i < c.nextID; i++ {
		if fn, ok := c.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	c.subsMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
