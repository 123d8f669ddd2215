package dialog

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitCurrent(t *testing.T, s *Service, n int) Request {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if s.Len() >= n {
			req, ok := s.Current()
			if ok {
				return req
			}
		}
		select {
		case <-s.Changes():
		case <-time.After(5 * time.Millisecond):
		case <-deadline:
			t.Fatalf("timed out waiting for %d queued requests (have %d)", n, s.Len())
		}
	}
}

func TestPrompt_SubmitTrims(t *testing.T) {
	s := New()
	got := make(chan string, 1)
	go func() {
		v, err := s.Prompt(context.Background(), "New project", "Project name", "")
		if err != nil {
			t.Errorf("prompt: %v", err)
		}
		got <- v
	}()

	req := waitCurrent(t, s, 1)
	if req.Kind != KindPrompt || req.Title != "New project" || req.ID == "" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if !s.Submit("  Demo  ") {
		t.Fatalf("submit resolved nothing")
	}
	if v := <-got; v != "Demo" {
		t.Fatalf("got %q want %q", v, "Demo")
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("queue should be empty")
	}
}

func TestPrompt_Cancel(t *testing.T) {
	s := New()
	errc := make(chan error, 1)
	go func() {
		_, err := s.Prompt(context.Background(), "Rename", "", "old")
		errc <- err
	}()
	req := waitCurrent(t, s, 1)
	if req.Default != "old" {
		t.Fatalf("default: %q", req.Default)
	}
	s.Cancel()
	if err := <-errc; !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
}

func TestConfirm_SubmitAndCancel(t *testing.T) {
	s := New()
	results := make(chan bool, 2)
	go func() {
		ok, _ := s.Confirm(context.Background(), "Delete project", "This cannot be undone")
		results <- ok
	}()
	waitCurrent(t, s, 1)
	s.Submit("ignored")
	if !<-results {
		t.Fatalf("submit should confirm")
	}

	go func() {
		ok, _ := s.Confirm(context.Background(), "Delete project", "")
		results <- ok
	}()
	waitCurrent(t, s, 1)
	s.Cancel()
	if <-results {
		t.Fatalf("cancel should decline")
	}
}

func TestQueue_OverlappingRequestsAreNotDropped(t *testing.T) {
	s := New()
	first := make(chan string, 1)
	second := make(chan string, 1)

	go func() {
		v, _ := s.Prompt(context.Background(), "first", "", "")
		first <- v
	}()
	waitCurrent(t, s, 1)
	go func() {
		v, _ := s.Prompt(context.Background(), "second", "", "")
		second <- v
	}()
	waitCurrent(t, s, 2)

	if req, _ := s.Current(); req.Title != "first" {
		t.Fatalf("head should be first, got %q", req.Title)
	}
	s.Submit("a")
	if req := waitCurrent(t, s, 1); req.Title != "second" {
		t.Fatalf("head should be second, got %q", req.Title)
	}
	s.Submit("b")

	if v := <-first; v != "a" {
		t.Fatalf("first got %q", v)
	}
	if v := <-second; v != "b" {
		t.Fatalf("second got %q", v)
	}
}

func TestPrompt_ContextWithdraws(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := s.Prompt(ctx, "x", "", "")
		errc <- err
	}()
	waitCurrent(t, s, 1)
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("request should be withdrawn, have %d", s.Len())
	}
	if s.Submit("late") {
		t.Fatalf("nothing should be left to resolve")
	}
}
