package session

import (
	"context"
	"sync"
	"time"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// BusyPolicy decides what happens to a turn that arrives while another turn
// of the same session is running.
type BusyPolicy string

const (
	Queue  BusyPolicy = "queue"
	Reject BusyPolicy = "reject"
)

// TurnFunc computes the session that results from one turn. It receives a
// private copy of the stored session.
type TurnFunc func(ctx context.Context, sess booking.Session) (booking.Session, error)

// Controller serializes turns per session and commits each turn's result
// atomically: the stored session is either fully replaced or untouched.
type Controller struct {
	store  Store
	policy BusyPolicy
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sem  *semaphore.Weighted
	refs int
}

type ControllerOption func(*Controller)

func WithBusyPolicy(p BusyPolicy) ControllerOption {
	return func(c *Controller) { c.policy = p }
}

func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

func NewController(store Store, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:  store,
		policy: Queue,
		now:    time.Now,
		locks:  map[string]*sessionLock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do runs fn for the session with the given id while holding that session's
// lock, then persists the carried-over result. Nothing is persisted when fn
// fails or ctx is cancelled before the commit.
func (c *Controller) Do(ctx context.Context, id string, fn TurnFunc) (booking.Session, error) {
	release, err := c.acquire(ctx, id)
	if err != nil {
		return booking.Session{}, err
	}
	defer release()

	loaded, err := c.store.Load(ctx, id)
	if err != nil {
		return booking.Session{}, err
	}

	next, err := fn(ctx, loaded.Clone())
	if err != nil {
		return booking.Session{}, err
	}
	if err := ctx.Err(); err != nil {
		logger.Info("Turn cancelled before commit", zap.String("session", id))
		return booking.Session{}, err
	}

	if len(next.Turns) < len(loaded.Turns) {
		logger.Error("Turn dropped persisted history", zap.String("session", id),
			zap.Int("loaded", len(loaded.Turns)), zap.Int("returned", len(next.Turns)))
		return booking.Session{}, ErrHistoryRewritten
	}

	next = booking.CarryOver(next)
	next.ID = id
	next.Version = loaded.Version + 1
	next.UpdatedAt = c.now()

	// Once the turn is decided the write must not be torn by a late cancel.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := c.store.Save(saveCtx, next); err != nil {
		logger.Error("Failed to commit turn", zap.String("session", id), zap.Error(err))
		return booking.Session{}, err
	}
	return next, nil
}

// Load returns the stored session without taking the lock.
func (c *Controller) Load(ctx context.Context, id string) (booking.Session, error) {
	return c.store.Load(ctx, id)
}

func (c *Controller) acquire(ctx context.Context, id string) (func(), error) {
	c.mu.Lock()
	l, ok := c.locks[id]
	if !ok {
		l = &sessionLock{sem: semaphore.NewWeighted(1)}
		c.locks[id] = l
	}
	l.refs++
	c.mu.Unlock()

	var err error
	if c.policy == Reject {
		if !l.sem.TryAcquire(1) {
			err = ErrTurnInProgress
		}
	} else {
		err = l.sem.Acquire(ctx, 1)
	}
	if err != nil {
		c.unref(id, l)
		return nil, err
	}

	return func() {
		l.sem.Release(1)
		c.unref(id, l)
	}, nil
}

func (c *Controller) unref(id string, l *sessionLock) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(c.locks, id)
	}
}
