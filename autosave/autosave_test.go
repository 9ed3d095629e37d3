package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	saves []string
	err   error
}

func (r *recorder) SavePageText(_ context.Context, docID string, pageNum int, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, text)
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saves) == 0 {
		return ""
	}
	return r.saves[len(r.saves)-1]
}

func TestDebounceCoalescesEdits(t *testing.T) {
	rec := &recorder{}
	s := New(rec, 40*time.Millisecond, nil)
	defer s.Stop()

	s.Touch("doc1", 1, "a")
	s.Touch("doc1", 1, "ab")
	s.Touch("doc1", 1, "abc")

	time.Sleep(120 * time.Millisecond)
	if got := rec.count(); got != 1 {
		t.Fatalf("got %d saves, want 1", got)
	}
	if got := rec.last(); got != "abc" {
		t.Errorf("saved %q, want latest text %q", got, "abc")
	}
}

func TestReschedulePushesDeadline(t *testing.T) {
	rec := &recorder{}
	s := New(rec, 60*time.Millisecond, nil)
	defer s.Stop()

	s.Touch("doc1", 1, "a")
	time.Sleep(40 * time.Millisecond)
	s.Touch("doc1", 1, "ab") // rearms before the first deadline
	time.Sleep(40 * time.Millisecond)

	if got := rec.count(); got != 0 {
		t.Fatalf("saved %d times before quiet period elapsed, want 0", got)
	}
	time.Sleep(60 * time.Millisecond)
	if got := rec.count(); got != 1 {
		t.Errorf("got %d saves, want 1", got)
	}
}

func TestFlushPersistsImmediately(t *testing.T) {
	rec := &recorder{}
	s := New(rec, time.Hour, nil)
	defer s.Stop()

	s.Touch("doc1", 2, "edited")
	s.Flush(context.Background())

	if got := rec.count(); got != 1 {
		t.Fatalf("got %d saves after Flush, want 1", got)
	}
	if got := rec.last(); got != "edited" {
		t.Errorf("saved %q, want %q", got, "edited")
	}

	// Nothing dirty left: a second flush is a no-op.
	s.Flush(context.Background())
	if got := rec.count(); got != 1 {
		t.Errorf("got %d saves after second Flush, want 1", got)
	}
}

func TestStopDropsPendingSave(t *testing.T) {
	rec := &recorder{}
	s := New(rec, 30*time.Millisecond, nil)

	s.Touch("doc1", 1, "gone")
	s.Stop()

	time.Sleep(80 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Errorf("got %d saves after Stop, want 0", got)
	}
}

func TestFailureCallback(t *testing.T) {
	rec := &recorder{err: errors.New("backend down")}
	var mu sync.Mutex
	var failed []int
	s := New(rec, time.Hour, func(docID string, pageNum int, err error) {
		mu.Lock()
		failed = append(failed, pageNum)
		mu.Unlock()
	})
	defer s.Stop()

	s.Touch("doc1", 3, "text")
	s.Flush(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if len(failed) != 1 || failed[0] != 3 {
		t.Errorf("onFail calls = %v, want [3]", failed)
	}
}

func TestMultiAttemptsAllReturnsFirstError(t *testing.T) {
	errA := errors.New("a failed")
	a := &recorder{err: errA}
	b := &recorder{}

	err := Multi(a, b).SavePageText(context.Background(), "doc1", 1, "text")
	if !errors.Is(err, errA) {
		t.Errorf("err = %v, want %v", err, errA)
	}
	if a.count() != 1 || b.count() != 1 {
		t.Errorf("saves = %d/%d, want both attempted", a.count(), b.count())
	}
}
