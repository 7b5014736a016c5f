package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitSettled[T any](t *testing.T, r *Resource[T]) State[T] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := r.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	return st
}

func TestLoadSuccess(t *testing.T) {
	r := New(context.Background(), func(ctx context.Context, path string) ([]string, error) {
		return []string{path}, nil
	})
	defer r.Close()

	if st := r.State(); !st.Loading || st.Data != nil {
		t.Fatalf("initial state = %+v", st)
	}
	r.Load("/movies/")
	st := waitSettled(t, r)
	if st.Loading || st.Err != "" || st.Data == nil || (*st.Data)[0] != "/movies/" {
		t.Fatalf("state = %+v", st)
	}
}

func TestLoadErrorUsesFixedMessage(t *testing.T) {
	r := New(context.Background(), func(ctx context.Context, path string) (int, error) {
		return 0, errors.New("status 500")
	})
	defer r.Close()

	r.Load("/movies/")
	st := waitSettled(t, r)
	if st.Loading || st.Data != nil || st.Err != ErrorMessage {
		t.Fatalf("state = %+v", st)
	}
}

func TestSamePathIsNoop(t *testing.T) {
	var calls int32
	r := New(context.Background(), func(ctx context.Context, path string) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	})
	defer r.Close()

	r.Load("/movies/")
	waitSettled(t, r)
	r.Load("/movies/")
	waitSettled(t, r)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}

	r.Reload()
	st := waitSettled(t, r)
	if got := atomic.LoadInt32(&calls); got != 2 || *st.Data != 2 {
		t.Fatalf("reload calls = %d data = %v", got, st.Data)
	}
}

func TestPathChangeCancelsPreviousLoad(t *testing.T) {
	release := make(chan struct{})
	var canceled sync.WaitGroup
	canceled.Add(1)

	r := New(context.Background(), func(ctx context.Context, path string) (string, error) {
		if path == "/slow/" {
			select {
			case <-ctx.Done():
				canceled.Done()
			case <-release:
			}
			return "stale", nil
		}
		return path, nil
	})
	defer r.Close()

	r.Load("/slow/")
	r.Load("/fast/")
	canceled.Wait()
	close(release)

	st := waitSettled(t, r)
	if st.Data == nil || *st.Data != "/fast/" {
		t.Fatalf("state = %+v", st)
	}
	time.Sleep(10 * time.Millisecond)
	if st := r.State(); *st.Data != "/fast/" {
		t.Fatalf("stale result overwrote state: %+v", st)
	}
}

func TestCloseDiscardsLateResult(t *testing.T) {
	started := make(chan struct{})
	finished := make(chan struct{})
	r := New(context.Background(), func(ctx context.Context, path string) (string, error) {
		close(started)
		<-ctx.Done()
		defer close(finished)
		return "late", nil
	})

	r.Load("/movies/")
	<-started
	r.Close()
	<-finished
	time.Sleep(10 * time.Millisecond)

	st := r.State()
	if st.Data != nil {
		t.Fatalf("closed resource wrote data: %+v", st)
	}
	r.Load("/other/")
	if r.Path() != "/movies/" {
		t.Fatalf("closed resource accepted a new path")
	}
}

func TestWaitHonoursContext(t *testing.T) {
	r := New(context.Background(), func(ctx context.Context, path string) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	defer r.Close()

	r.Load("/movies/")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	st, err := r.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) || !st.Loading {
		t.Fatalf("Wait = %+v, %v", st, err)
	}
}
