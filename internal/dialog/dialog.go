// Package dialog queues modal prompt and confirm requests. Requests are shown
// one at a time in arrival order and each is resolved independently; a second
// request never overwrites a pending one.
package dialog

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrCanceled is returned by Prompt when the user dismisses the dialog.
var ErrCanceled = errors.New("dialog canceled")

type Kind int

const (
	KindPrompt Kind = iota
	KindConfirm
)

// Request is a snapshot of one queued dialog.
type Request struct {
	ID          string
	Kind        Kind
	Title       string
	Message     string // confirm body
	Placeholder string
	Default     string
}

type answer struct {
	value string
	ok    bool
}

type pending struct {
	req   Request
	reply chan answer
}

// Service owns the dialog queue. The zero value is not usable; call New.
type Service struct {
	mu      sync.Mutex
	queue   []*pending
	changes chan struct{}
}

func New() *Service {
	return &Service{changes: make(chan struct{}, 1)}
}

// Changes signals (coalesced) whenever the head of the queue changes.
func (s *Service) Changes() <-chan struct{} { return s.changes }

func (s *Service) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// Prompt asks for a single line of text and blocks until the request is
// resolved. The answer is trimmed. Cancel yields ErrCanceled; an ended ctx
// withdraws the request and returns ctx.Err().
func (s *Service) Prompt(ctx context.Context, title, placeholder, def string) (string, error) {
	a, err := s.enqueue(ctx, Request{Kind: KindPrompt, Title: title, Placeholder: placeholder, Default: def})
	if err != nil {
		return "", err
	}
	if !a.ok {
		return "", ErrCanceled
	}
	return a.value, nil
}

// Confirm asks a yes/no question. Cancel answers false.
func (s *Service) Confirm(ctx context.Context, title, message string) (bool, error) {
	a, err := s.enqueue(ctx, Request{Kind: KindConfirm, Title: title, Message: message})
	if err != nil {
		return false, err
	}
	return a.ok, nil
}

func (s *Service) enqueue(ctx context.Context, req Request) (answer, error) {
	req.ID = uuid.NewString()
	p := &pending{req: req, reply: make(chan answer, 1)}

	s.mu.Lock()
	s.queue = append(s.queue, p)
	head := len(s.queue) == 1
	s.mu.Unlock()
	if head {
		s.notify()
	}

	select {
	case a := <-p.reply:
		return a, nil
	case <-ctx.Done():
		s.withdraw(p)
		// A resolution may have raced the cancellation.
		select {
		case a := <-p.reply:
			return a, nil
		default:
		}
		return answer{}, ctx.Err()
	}
}

func (s *Service) withdraw(p *pending) {
	s.mu.Lock()
	wasHead := false
	for i, q := range s.queue {
		if q == p {
			wasHead = i == 0
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	if wasHead {
		s.notify()
	}
}

// Current returns the request that should be displayed, if any.
func (s *Service) Current() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return Request{}, false
	}
	return s.queue[0].req, true
}

// Len reports the number of outstanding requests, displayed one included.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Submit resolves the displayed request. Prompts receive the trimmed value;
// confirms receive true. It reports whether a request was resolved.
func (s *Service) Submit(value string) bool {
	return s.resolve(answer{value: strings.TrimSpace(value), ok: true})
}

// Cancel dismisses the displayed request.
func (s *Service) Cancel() bool {
	return s.resolve(answer{})
}

func (s *Service) resolve(a answer) bool {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return false
	}
	p := s.queue[0]
	s.queue = s.queue[1:]
	s.mu.Unlock()

	p.reply <- a
	s.notify()
	return true
}
