package session

import (
	"sync"
	"testing"
)

func TestPutSingleTakeSingle(t *testing.T) {
	s := NewStore()
	s.PutSingle(1, "https://example.com/a")

	url, ok := s.TakeSingle(1)
	if !ok {
		t.Fatal("TakeSingle should find the pending request")
	}
	if url != "https://example.com/a" {
		t.Errorf("url = %q", url)
	}

	if _, ok := s.TakeSingle(1); ok {
		t.Error("second take must report absent")
	}
}

func TestPutBatchTakeBatch(t *testing.T) {
	s := NewStore()
	urls := []string{"https://a", "https://b", "https://c"}
	s.PutBatch(1, urls)

	got, ok := s.TakeBatch(1)
	if !ok {
		t.Fatal("TakeBatch should find the pending request")
	}
	if len(got) != 3 || got[0] != "https://a" || got[2] != "https://c" {
		t.Errorf("urls = %v, order must be preserved", got)
	}

	if _, ok := s.TakeBatch(1); ok {
		t.Error("second take must report absent")
	}
}

func TestModeMismatchIsAbsent(t *testing.T) {
	s := NewStore()
	s.PutSingle(1, "https://a")
	if _, ok := s.TakeBatch(1); ok {
		t.Error("TakeBatch must not consume a single entry")
	}
	if _, ok := s.TakeSingle(1); !ok {
		t.Error("single entry should still be present after mismatched take")
	}
}

func TestLastWriteWinsAcrossModes(t *testing.T) {
	s := NewStore()
	s.PutSingle(1, "https://old")
	s.PutBatch(1, []string{"https://new1", "https://new2"})

	if _, ok := s.TakeSingle(1); ok {
		t.Error("batch submission should have replaced the single entry")
	}
	got, ok := s.TakeBatch(1)
	if !ok || len(got) != 2 {
		t.Errorf("latest batch should win, got %v ok=%v", got, ok)
	}
}

func TestBatchIsCopied(t *testing.T) {
	s := NewStore()
	urls := []string{"https://a", "https://b"}
	s.PutBatch(1, urls)
	urls[0] = "https://mutated"

	got, _ := s.TakeBatch(1)
	if got[0] != "https://a" {
		t.Error("stored batch must not alias the caller's slice")
	}
}

func TestUsersAreIndependent(t *testing.T) {
	s := NewStore()
	s.PutSingle(1, "https://one")
	s.PutSingle(2, "https://two")

	url, ok := s.TakeSingle(2)
	if !ok || url != "https://two" {
		t.Errorf("user 2 take = %q ok=%v", url, ok)
	}
	if _, ok := s.TakeSingle(1); !ok {
		t.Error("user 1 entry must survive user 2's take")
	}
}

func TestConcurrentTakeIsExactlyOnce(t *testing.T) {
	s := NewStore()
	s.PutSingle(1, "https://once")

	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.TakeSingle(1); ok {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	var count int
	for range wins {
		count++
	}
	if count != 1 {
		t.Errorf("exactly one concurrent take must succeed, got %d", count)
	}
}
