package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	loadErr error
	saveErr error
	saves   int
}

func (s *failingStore) Load(_ context.Context, id string) (booking.Session, error) {
	if s.loadErr != nil {
		return booking.Session{}, s.loadErr
	}
	return booking.NewSession(id), nil
}

func (s *failingStore) Save(context.Context, booking.Session) error {
	s.saves++
	return s.saveErr
}

func appendTurn(text string) TurnFunc {
	return func(_ context.Context, sess booking.Session) (booking.Session, error) {
		sess.Turns = append(sess.Turns, booking.Turn{User: text})
		return sess, nil
	}
}

func TestController_Do(t *testing.T) {
	ctx := context.Background()

	t.Run("commits carried over result with next version", func(t *testing.T) {
		store := NewMemoryStore()
		c := NewController(store)

		got, err := c.Do(ctx, "s1", func(_ context.Context, sess booking.Session) (booking.Session, error) {
			sess.FlowState = booking.Confirmed
			sess.Record = booking.Record{catalog.ServiceType: "repair"}
			sess.Turns = append(sess.Turns, booking.Turn{User: "yes"})
			return sess, nil
		})

		require.NoError(t, err)
		assert.Equal(t, booking.NotBooking, got.FlowState)
		assert.Empty(t, got.Record)
		assert.Equal(t, int64(1), got.Version)

		stored, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, got, stored)
	})

	t.Run("turn error persists nothing", func(t *testing.T) {
		store := NewMemoryStore()
		c := NewController(store)

		_, err := c.Do(ctx, "s1", func(context.Context, booking.Session) (booking.Session, error) {
			return booking.Session{}, errors.New("boom")
		})

		assert.Error(t, err)
		assert.Zero(t, store.Len())
	})

	t.Run("cancelled turn persists nothing", func(t *testing.T) {
		store := NewMemoryStore()
		c := NewController(store)
		turnCtx, cancel := context.WithCancel(ctx)

		_, err := c.Do(turnCtx, "s1", func(_ context.Context, sess booking.Session) (booking.Session, error) {
			cancel()
			sess.FlowState = booking.Collecting
			return sess, nil
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, store.Len())
	})

	t.Run("store unavailable on load", func(t *testing.T) {
		store := &failingStore{loadErr: ErrStoreUnavailable}
		c := NewController(store)

		_, err := c.Do(ctx, "s1", appendTurn("hi"))

		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Zero(t, store.saves)
	})

	t.Run("store unavailable on save", func(t *testing.T) {
		c := NewController(&failingStore{saveErr: ErrStoreUnavailable})
		_, err := c.Do(ctx, "s1", appendTurn("hi"))
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("history is kept in full", func(t *testing.T) {
		store := NewMemoryStore()
		c := NewController(store)
		utterances := make([]string, 250)
		for i := range utterances {
			utterances[i] = fmt.Sprintf("turn %d", i)
			_, err := c.Do(ctx, "s1", appendTurn(utterances[i]))
			require.NoError(t, err)
		}

		sess, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, sess.Turns, len(utterances))
		assert.Equal(t, "turn 0", sess.Turns[0].User)
		assert.Equal(t, "turn 249", sess.Turns[249].User)
		assert.Equal(t, int64(250), sess.Version)
	})

	t.Run("dropping history is refused", func(t *testing.T) {
		store := NewMemoryStore()
		c := NewController(store)
		_, err := c.Do(ctx, "s1", appendTurn("a"))
		require.NoError(t, err)

		_, err = c.Do(ctx, "s1", func(_ context.Context, sess booking.Session) (booking.Session, error) {
			sess.Turns = []booking.Turn{{User: "b"}}
			return sess, nil
		})
		assert.ErrorIs(t, err, ErrHistoryRewritten)

		sess, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, []booking.Turn{{User: "a"}}, sess.Turns)
	})

	t.Run("clock stamps the commit", func(t *testing.T) {
		at := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
		c := NewController(NewMemoryStore(), WithClock(func() time.Time { return at }))
		got, err := c.Do(ctx, "s1", appendTurn("hi"))
		require.NoError(t, err)
		assert.Equal(t, at, got.UpdatedAt)
	})
}

func TestController_QueuePolicySerializesTurns(t *testing.T) {
	store := NewMemoryStore()
	c := NewController(store, WithBusyPolicy(Queue))

	const turns = 25
	var wg sync.WaitGroup
	for range turns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Do(context.Background(), "s1", func(_ context.Context, sess booking.Session) (booking.Session, error) {
				time.Sleep(time.Millisecond)
				sess.Turns = append(sess.Turns, booking.Turn{User: "x"})
				return sess, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, sess.Turns, turns)
	assert.Equal(t, int64(turns), sess.Version)
	assert.Empty(t, c.locks)
}

func TestController_RejectPolicy(t *testing.T) {
	c := NewController(NewMemoryStore(), WithBusyPolicy(Reject))

	started := make(chan struct{})
	finish := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := c.Do(context.Background(), "s1", func(_ context.Context, sess booking.Session) (booking.Session, error) {
			close(started)
			<-finish
			return sess, nil
		})
		done <- err
	}()

	<-started
	_, err := c.Do(context.Background(), "s1", appendTurn("second"))
	assert.ErrorIs(t, err, ErrTurnInProgress)

	_, err = c.Do(context.Background(), "other", appendTurn("independent"))
	assert.NoError(t, err)

	close(finish)
	assert.NoError(t, <-done)
}

func TestController_QueuedTurnGivesUpOnCancel(t *testing.T) {
	c := NewController(NewMemoryStore())

	started := make(chan struct{})
	finish := make(chan struct{})
	go func() {
		_, _ = c.Do(context.Background(), "s1", func(_ context.Context, sess booking.Session) (booking.Session, error) {
			close(started)
			<-finish
			return sess, nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Do(ctx, "s1", appendTurn("late"))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(finish)
}
