package app

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"nurturing_engine/internal/domain/activity"
	"nurturing_engine/internal/domain/contact"
	"nurturing_engine/internal/domain/messaging"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// clock is a settable time source shared by the engine and the fakes.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeContactRepo struct {
	mu        sync.Mutex
	clock     *clock
	contacts  map[uuid.UUID]*contact.Contact
	findErr   func(q contact.Query) error
	updateErr error
	queries   []contact.Query
}

func newFakeContactRepo(clk *clock, contacts ...*contact.Contact) *fakeContactRepo {
	r := &fakeContactRepo{clock: clk, contacts: make(map[uuid.UUID]*contact.Contact)}
	for _, c := range contacts {
		r.contacts[c.ID] = c
	}
	return r
}

func (r *fakeContactRepo) Find(_ context.Context, q contact.Query) ([]*contact.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, q)
	if r.findErr != nil {
		if err := r.findErr(q); err != nil {
			return nil, err
		}
	}
	var out []*contact.Contact
	for _, c := range r.contacts {
		if q.Matches(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeContactRepo) GetByID(_ context.Context, id uuid.UUID) (*contact.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok {
		return nil, contact.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeContactRepo) UpdateStatus(_ context.Context, id uuid.UUID, status contact.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	c, ok := r.contacts[id]
	if !ok {
		return contact.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = r.clock.Now()
	return nil
}

func (r *fakeContactRepo) UpdateScoreAndTags(_ context.Context, id uuid.UUID, score int, tags []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	c, ok := r.contacts[id]
	if !ok {
		return contact.ErrNotFound
	}
	c.Score = score
	c.Tags = tags
	return nil
}

func (r *fakeContactRepo) get(id uuid.UUID) contact.Contact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.contacts[id]
}

type fakeActivityRepo struct {
	mu        sync.Mutex
	entries   []*activity.Entry
	appendErr func(e *activity.Entry) error
	recentErr error
}

func (r *fakeActivityRepo) Append(_ context.Context, e *activity.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		if err := r.appendErr(e); err != nil {
			return err
		}
	}
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeActivityRepo) HasRecent(_ context.Context, contactID uuid.UUID, ruleID string, kind activity.Kind, since time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recentErr != nil {
		return false, r.recentErr
	}
	for _, e := range r.entries {
		if e.ContactID == contactID && e.RuleID == ruleID && e.Kind == kind && !e.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeActivityRepo) ListByContact(_ context.Context, contactID uuid.UUID, limit int) ([]*activity.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*activity.Entry
	for _, e := range r.entries {
		if e.ContactID == contactID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeActivityRepo) byKind(kind activity.Kind) []*activity.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*activity.Entry
	for _, e := range r.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

type sentMessage struct {
	Phone string
	Text  string
}

type fakeGateway struct {
	mu     sync.Mutex
	sent   []sentMessage
	result messaging.SendResult
	err    error
	block  bool // wait for ctx cancellation before returning
	panic  bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{result: messaging.SendResult{Success: true, MessageID: "msg-1"}}
}

func (g *fakeGateway) Send(ctx context.Context, phone, text string) (messaging.SendResult, error) {
	if g.panic {
		panic("gateway exploded")
	}
	if g.block {
		<-ctx.Done()
		return messaging.SendResult{}, ctx.Err()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentMessage{Phone: phone, Text: text})
	return g.result, g.err
}

func (g *fakeGateway) sentCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}
