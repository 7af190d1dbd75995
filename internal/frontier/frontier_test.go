package frontier

import (
	"errors"
	"fmt"
	"testing"
)

// =============================================================================
// Queue Tests
// =============================================================================

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue(Entry{URL: "a", Depth: 0})
	q.Push(Entry{URL: "b", Depth: 1})
	q.Push(Entry{URL: "c", Depth: 1})

	for _, want := range []string{"a", "b", "c"} {
		e, err := q.Pop()
		if err != nil {
			t.Fatalf("Pop() error = %v", err)
		}
		if e.URL != want {
			t.Errorf("Pop() = %s, want %s", e.URL, want)
		}
	}

	if _, err := q.Pop(); !errors.Is(err, ErrEmpty) {
		t.Errorf("Pop() on empty queue error = %v, want ErrEmpty", err)
	}
}

func TestQueue_AllowsDuplicates(t *testing.T) {
	q := NewQueue()
	q.Push(Entry{URL: "a", Depth: 1})
	q.Push(Entry{URL: "a", Depth: 2})

	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
}

func TestQueue_Len(t *testing.T) {
	q := NewQueue()
	if !q.IsEmpty() {
		t.Error("new queue should be empty")
	}

	for i := 0; i < 5; i++ {
		q.Push(Entry{URL: fmt.Sprintf("u%d", i)})
	}
	q.Pop()
	q.Pop()

	if q.Len() != 3 {
		t.Errorf("Len() = %d, want 3", q.Len())
	}
}

func TestQueue_OrderAcrossCompaction(t *testing.T) {
	q := NewQueue()
	next := 0
	for i := 0; i < 500; i++ {
		q.Push(Entry{URL: fmt.Sprintf("u%d", i)})
		if i%3 == 0 {
			e, _ := q.Pop()
			if want := fmt.Sprintf("u%d", next); e.URL != want {
				t.Fatalf("Pop() = %s, want %s", e.URL, want)
			}
			next++
		}
	}
	for !q.IsEmpty() {
		e, _ := q.Pop()
		if want := fmt.Sprintf("u%d", next); e.URL != want {
			t.Fatalf("Pop() = %s, want %s", e.URL, want)
		}
		next++
	}
	if next != 500 {
		t.Errorf("popped %d entries, want 500", next)
	}
}

// =============================================================================
// VisitedSet Tests
// =============================================================================

func TestVisitedSet_Add(t *testing.T) {
	v := NewVisitedSet(10)

	if !v.Add("https://example.com") {
		t.Error("first Add() should report true")
	}
	if v.Add("https://example.com") {
		t.Error("second Add() should report false")
	}
	if v.Len() != 1 {
		t.Errorf("Len() = %d, want 1", v.Len())
	}
}

func TestVisitedSet_Contains(t *testing.T) {
	v := NewVisitedSet(10)
	v.Add("https://example.com/a")

	if !v.Contains("https://example.com/a") {
		t.Error("Contains() should be true for added URL")
	}
	if v.Contains("https://example.com/b") {
		t.Error("Contains() should be false for unseen URL")
	}
}

func TestVisitedSet_ExactMatchOnly(t *testing.T) {
	v := NewVisitedSet(10)
	v.Add("https://example.com/a")

	for _, u := range []string{"https://example.com/a/", "https://example.com/a#x", "HTTPS://example.com/a"} {
		if v.Contains(u) {
			t.Errorf("Contains(%q) should be false, URLs compare as exact strings", u)
		}
	}
}

func TestVisitedSet_Many(t *testing.T) {
	v := NewVisitedSet(100)
	for i := 0; i < 5000; i++ {
		v.Add(fmt.Sprintf("https://example.com/%d", i))
	}

	if v.Len() != 5000 {
		t.Errorf("Len() = %d, want 5000", v.Len())
	}
	for i := 5000; i < 5100; i++ {
		if v.Contains(fmt.Sprintf("https://example.com/%d", i)) {
			t.Errorf("Contains(%d) false positive", i)
		}
	}
}
