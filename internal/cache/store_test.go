package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*Store, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock()
	s := NewStore(zap.NewNop(), WithClock(clk))
	t.Cleanup(s.Close)
	return s, clk
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func never(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(50 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			t.Fatalf("unexpected %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

type countingFetcher struct {
	calls atomic.Int32
	value atomic.Int32
}

func (f *countingFetcher) fetch(ctx context.Context) (any, error) {
	f.calls.Add(1)
	return int(f.value.Add(1)), nil
}

func TestStore_ConcurrentReadsShareOneFetch(t *testing.T) {
	s, _ := newTestStore(t)
	key := Key{View: "currentTrack"}

	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "track", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := s.Get(context.Background(), key, 30*time.Second, fetch)
			if err != nil {
				t.Errorf("Get: %v", err)
			}
			results[i] = v
		}(i)
	}

	eventually(t, "fetch start", func() bool { return calls.Load() == 1 })
	eventually(t, "loading status", func() bool { return s.Status(key).Loading })
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("fetches = %d, want 1", calls.Load())
	}
	if results[0] != "track" || results[1] != "track" {
		t.Errorf("results = %v", results)
	}
}

func TestStore_StalenessWindow(t *testing.T) {
	tests := []struct {
		name        string
		ttl         time.Duration
		advance     time.Duration
		wantFetches int32
	}{
		{name: "Within window", ttl: 30 * time.Second, advance: 29 * time.Second, wantFetches: 1},
		{name: "Expired", ttl: 30 * time.Second, advance: 30 * time.Second, wantFetches: 2},
		{name: "Playlists window", ttl: 60 * time.Second, advance: 45 * time.Second, wantFetches: 1},
		{name: "Forever", ttl: Forever, advance: 24 * time.Hour, wantFetches: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, clk := newTestStore(t)
			f := &countingFetcher{}
			key := Key{View: "view"}

			if _, err := s.Get(context.Background(), key, tt.ttl, f.fetch); err != nil {
				t.Fatal(err)
			}
			clk.Add(tt.advance)
			if _, err := s.Get(context.Background(), key, tt.ttl, f.fetch); err != nil {
				t.Fatal(err)
			}
			if got := f.calls.Load(); got != tt.wantFetches {
				t.Errorf("fetches = %d, want %d", got, tt.wantFetches)
			}
		})
	}
}

func TestStore_DependentKeysAreIndependent(t *testing.T) {
	s, _ := newTestStore(t)
	f := &countingFetcher{}

	a, _ := s.Get(context.Background(), Key{View: "artworkURL", Dep: "spotify:track:1|640"}, 30*time.Second, f.fetch)
	b, _ := s.Get(context.Background(), Key{View: "artworkURL", Dep: "spotify:track:1|1280"}, 30*time.Second, f.fetch)
	_, _ = s.Get(context.Background(), Key{View: "artworkURL", Dep: "spotify:track:1|640"}, 30*time.Second, f.fetch)

	if f.calls.Load() != 2 {
		t.Errorf("fetches = %d, want 2", f.calls.Load())
	}
	if a == b {
		t.Errorf("sizes share an entry: %v == %v", a, b)
	}
}

func TestStore_InvalidateRefetchesReadEntries(t *testing.T) {
	s, _ := newTestStore(t)
	f := &countingFetcher{}
	key := Key{View: "tracklist"}

	var updates atomic.Int32
	s.OnUpdate(func(k Key, v any) {
		if k == key {
			updates.Add(1)
		}
	})

	if _, err := s.Get(context.Background(), key, 30*time.Second, f.fetch); err != nil {
		t.Fatal(err)
	}
	s.Invalidate("tracklist")
	s.Invalidate("session")

	eventually(t, "background refetch", func() bool { return f.calls.Load() == 2 })
	eventually(t, "update notification", func() bool { return updates.Load() == 2 })

	v, _ := s.Get(context.Background(), key, 30*time.Second, f.fetch)
	if v != 2 {
		t.Errorf("value = %v, want refreshed 2", v)
	}
	if f.calls.Load() != 2 {
		t.Errorf("fetches = %d, want 2", f.calls.Load())
	}
}

func TestStore_InvalidateAfterDelaysAndDebounces(t *testing.T) {
	s, clk := newTestStore(t)
	f := &countingFetcher{}
	key := Key{View: "currentTrack"}
	settle := 1500 * time.Millisecond

	if _, err := s.Get(context.Background(), key, 30*time.Second, f.fetch); err != nil {
		t.Fatal(err)
	}

	s.InvalidateAfter("currentTrack", settle)
	clk.Add(time.Second)
	s.InvalidateAfter("currentTrack", settle)

	clk.Add(1499 * time.Millisecond)
	never(t, "refetch before settle", func() bool { return f.calls.Load() > 1 })

	clk.Add(time.Millisecond)
	eventually(t, "refetch after settle", func() bool { return f.calls.Load() == 2 })
	never(t, "second refetch", func() bool { return f.calls.Load() > 2 })
}

func TestStore_ErrorsAreNotCached(t *testing.T) {
	s, _ := newTestStore(t)
	key := Key{View: "config"}
	boom := errors.New("backend down")

	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return "cfg", nil
	}

	if _, err := s.Get(context.Background(), key, Forever, fetch); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if _, ok := s.Peek(key); ok {
		t.Fatal("failed fetch left a value behind")
	}
	v, err := s.Get(context.Background(), key, Forever, fetch)
	if err != nil || v != "cfg" {
		t.Errorf("Get() = %v, %v", v, err)
	}
}

func TestStore_InvalidateDuringFetchLeavesEntryStale(t *testing.T) {
	s, _ := newTestStore(t)
	key := Key{View: "session"}

	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		n := calls.Add(1)
		if n == 1 {
			<-release
			return "old", nil
		}
		return "new", nil
	}

	done := make(chan any, 1)
	go func() {
		v, _ := s.Get(context.Background(), key, 30*time.Second, fetch)
		done <- v
	}()
	eventually(t, "fetch start", func() bool { return calls.Load() == 1 })

	s.Invalidate("session")
	eventually(t, "refetch", func() bool { return calls.Load() == 2 })
	eventually(t, "fresh value", func() bool {
		v, ok := s.Peek(key)
		return ok && v == "new"
	})

	close(release)
	<-done

	v, _ := s.Peek(key)
	if v != "new" {
		t.Errorf("late result overwrote fresher value: %v", v)
	}
}

func TestStore_CallerCancelDoesNotAbortSharedFetch(t *testing.T) {
	s, _ := newTestStore(t)
	key := Key{View: "playlists"}

	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		<-release
		return "lists", ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := s.Get(ctx, key, time.Minute, fetch)
		errc <- err
	}()
	eventually(t, "loading", func() bool { return s.Status(key).Loading })
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want canceled", err)
	}

	close(release)
	eventually(t, "shared fetch stored", func() bool {
		_, ok := s.Peek(key)
		return ok
	})
}

func TestTypedGet(t *testing.T) {
	s, _ := newTestStore(t)

	n, err := Get(context.Background(), s, Key{View: "n"}, Forever, func(context.Context) (int, error) { return 7, nil })
	if err != nil || n != 7 {
		t.Fatalf("Get() = %d, %v", n, err)
	}

	s.Set(Key{View: "s"}, "text")
	if _, err := Get(context.Background(), s, Key{View: "s"}, Forever, func(context.Context) (int, error) { return 0, nil }); err == nil {
		t.Error("expected type mismatch error")
	}

	if got, ok := Peek[int](s, Key{View: "n"}); !ok || got != 7 {
		t.Errorf("Peek() = %d, %v", got, ok)
	}
}
