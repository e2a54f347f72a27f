package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/pegls/cache"
)

func TestStore_GetAbsent(t *testing.T) {
	t.Parallel()

	s := cache.New[string, int]()

	_, ok := s.Get("a")
	assert.False(t, ok)
}

func TestStore_SetThenGet(t *testing.T) {
	t.Parallel()

	s := cache.New[string, int]()
	s.Set("a", 1)

	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	s.Set("a", 2)

	v, ok = s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestStore_WaitForFilledResolvesImmediately(t *testing.T) {
	t.Parallel()

	s := cache.New[string, int]()
	s.Set("a", 7)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v, err := s.WaitFor(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestStore_WaitForBeforeSet(t *testing.T) {
	t.Parallel()

	s := cache.New[string, int]()

	const waiters = 5

	var wg sync.WaitGroup

	results := make(chan int, waiters)

	for range waiters {
		wg.Add(1)

		go func() {
			defer wg.Done()

			v, err := s.WaitFor(context.Background(), "a")
			if err == nil {
				results <- v
			}
		}()
	}

	require.Eventually(t, func() bool { return s.Len() == 1 }, time.Second, time.Millisecond)

	select {
	case v := <-results:
		t.Fatalf("waiter resolved before Set with %d", v)
	case <-time.After(20 * time.Millisecond):
	}

	s.Set("a", 42)
	wg.Wait()
	close(results)

	count := 0

	for v := range results {
		assert.Equal(t, 42, v)

		count++
	}

	assert.Equal(t, waiters, count)
}

func TestStore_DeleteStartsNewGeneration(t *testing.T) {
	t.Parallel()

	s := cache.New[string, string]()
	s.Set("doc", "v1")
	assert.Equal(t, uint64(0), s.Generation("doc"))

	first, err := s.WaitFor(context.Background(), "doc")
	require.NoError(t, err)

	s.Delete("doc")
	assert.Equal(t, uint64(1), s.Generation("doc"))

	_, ok := s.Get("doc")
	assert.False(t, ok, "deleted slot must read as absent")

	done := make(chan string, 1)

	go func() {
		v, err := s.WaitFor(context.Background(), "doc")
		if err == nil {
			done <- v
		}
	}()

	select {
	case v := <-done:
		t.Fatalf("waiter resolved from deleted generation with %q", v)
	case <-time.After(20 * time.Millisecond):
	}

	s.Set("doc", "v2")

	select {
	case v := <-done:
		assert.Equal(t, "v2", v)
	case <-time.After(time.Second):
		t.Fatal("waiter was not resolved by Set")
	}

	assert.Equal(t, "v1", first, "values resolved before Delete are unaffected")
	assert.Equal(t, uint64(1), s.Generation("doc"), "Set does not advance the generation")
}

func TestStore_DeleteWhileWaitingResolvesOnNextSet(t *testing.T) {
	t.Parallel()

	s := cache.New[string, int]()

	done := make(chan int, 1)

	go func() {
		v, err := s.WaitFor(context.Background(), "doc")
		if err == nil {
			done <- v
		}
	}()

	require.Eventually(t, func() bool { return s.Len() == 1 }, time.Second, time.Millisecond)

	s.Delete("doc")
	s.Delete("doc")
	assert.Equal(t, uint64(2), s.Generation("doc"))

	s.Set("doc", 3)

	select {
	case v := <-done:
		assert.Equal(t, 3, v)
	case <-time.After(time.Second):
		t.Fatal("waiter was not resolved by Set after Delete")
	}
}

func TestStore_WaitForContextCanceled(t *testing.T) {
	t.Parallel()

	s := cache.New[string, int]()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.WaitFor(ctx, "a")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStore_RemoveReleasesWaiters(t *testing.T) {
	t.Parallel()

	s := cache.New[string, int]()

	errs := make(chan error, 1)

	go func() {
		_, err := s.WaitFor(context.Background(), "doc")
		errs <- err
	}()

	require.Eventually(t, func() bool { return s.Len() == 1 }, time.Second, time.Millisecond)

	s.Remove("doc")

	select {
	case err := <-errs:
		require.ErrorIs(t, err, cache.ErrRemoved)
	case <-time.After(time.Second):
		t.Fatal("waiter was not released by Remove")
	}

	assert.Equal(t, 0, s.Len())
}

func TestStore_RemoveFilled(t *testing.T) {
	t.Parallel()

	s := cache.New[string, int]()
	s.Set("doc", 1)
	s.Remove("doc")

	_, ok := s.Get("doc")
	assert.False(t, ok)
	assert.Equal(t, uint64(0), s.Generation("doc"))
}

func TestStore_FillCurrentGeneration(t *testing.T) {
	t.Parallel()

	s := cache.New[string, int]()

	done := make(chan int, 1)

	go func() {
		v, err := s.WaitFor(context.Background(), "doc")
		if err == nil {
			done <- v
		}
	}()

	require.Eventually(t, func() bool { return s.Len() == 1 }, time.Second, time.Millisecond)

	stale := s.Delete("doc")
	gen := s.Delete("doc")
	assert.Equal(t, uint64(2), gen)

	assert.False(t, s.Fill("doc", stale, 1), "an older generation must not fill the slot")
	assert.True(t, s.Fill("doc", gen, 2))
	assert.False(t, s.Fill("doc", gen, 3), "a filled slot is not overwritten")

	select {
	case v := <-done:
		assert.Equal(t, 2, v)
	case <-time.After(time.Second):
		t.Fatal("waiter was not resolved by Fill")
	}
}

func TestStore_FillAfterRemove(t *testing.T) {
	t.Parallel()

	s := cache.New[string, int]()

	gen := s.Delete("doc")
	s.Remove("doc")

	assert.False(t, s.Fill("doc", gen, 1))
	assert.Equal(t, 0, s.Len(), "a removed key must not get its slot back")

	assert.Equal(t, uint64(0), s.Delete("doc"), "Delete leaves a removed key alone")
	assert.Equal(t, 0, s.Len())
}

func TestStore_WaitForRemovedKey(t *testing.T) {
	t.Parallel()

	s := cache.New[string, int]()
	s.Set("doc", 1)
	s.Remove("doc")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := s.WaitFor(ctx, "doc")
	require.ErrorIs(t, err, cache.ErrRemoved)
	require.NoError(t, ctx.Err(), "WaitFor on a removed key must not block")
	assert.Equal(t, 0, s.Len())

	s.Restore("doc")

	errs := make(chan error, 1)

	go func() {
		_, err := s.WaitFor(context.Background(), "doc")
		errs <- err
	}()

	require.Eventually(t, func() bool { return s.Len() == 1 }, time.Second, time.Millisecond)

	gen := s.Delete("doc")
	require.True(t, s.Fill("doc", gen, 2))

	select {
	case err := <-errs:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("restored key did not resolve its waiter")
	}
}

func TestStore_SetRestoresRemovedKey(t *testing.T) {
	t.Parallel()

	s := cache.New[string, int]()
	s.Remove("doc")
	s.Set("doc", 4)

	v, err := s.WaitFor(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}
