package service

import (
	"context"
	"sync"

	"apin-chat/internal/entity"
	"apin-chat/pkg/events"
	"apin-chat/pkg/llm"
)

type fakeGateway struct {
	mu           sync.Mutex
	availability llm.Availability
	// When set, answers probe number call (1-based) instead of availability.
	availabilityFn func(call int) llm.Availability
	reply        string
	replyErr     error
	title        string
	titleErr     error

	// When set, GenerateResponse blocks until it is closed.
	release chan struct{}
	// Receives once per GenerateResponse call, before blocking on release.
	started chan struct{}

	probes     int
	histories  [][]entity.Message
	modelTypes []entity.ModelType
	titleSeeds []string
}

func (g *fakeGateway) Availability(ctx context.Context) llm.Availability {
	g.mu.Lock()
	g.probes++
	call, fn, a := g.probes, g.availabilityFn, g.availability
	g.mu.Unlock()

	if fn != nil {
		return fn(call)
	}
	return a
}

func (g *fakeGateway) Probes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.probes
}

func (g *fakeGateway) GenerateResponse(ctx context.Context, messages []entity.Message, modelType entity.ModelType) (string, error) {
	g.mu.Lock()
	history := make([]entity.Message, len(messages))
	copy(history, messages)
	g.histories = append(g.histories, history)
	g.modelTypes = append(g.modelTypes, modelType)
	release, started := g.release, g.started
	reply, err := g.reply, g.replyErr
	g.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	return reply, err
}

func (g *fakeGateway) GenerateTitle(ctx context.Context, seed string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.titleSeeds = append(g.titleSeeds, seed)
	return g.title, g.titleErr
}

func (g *fakeGateway) TitleSeeds() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.titleSeeds...)
}

func (g *fakeGateway) Histories() [][]entity.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([][]entity.Message(nil), g.histories...)
}

type fakeRepository struct {
	mu     sync.Mutex
	stored []entity.Chat
	saves  int
	clears int
	toLoad []entity.Chat
}

func (r *fakeRepository) Save(ctx context.Context, chats []entity.Chat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.stored = make([]entity.Chat, len(chats))
	for i, c := range chats {
		r.stored[i] = c.Clone()
	}
}

func (r *fakeRepository) Load(ctx context.Context) []entity.Chat {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Chat, len(r.toLoad))
	for i, c := range r.toLoad {
		out[i] = c.Clone()
	}
	return out
}

func (r *fakeRepository) Clear(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	r.stored = nil
}

func (r *fakeRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *fakeRepository) Stored() []entity.Chat {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stored
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

// Seqs returns the seq field of every event in publish order.
func (p *recordingPublisher) Seqs() []uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	seqs := make([]uint64, 0, len(p.events))
	for _, e := range p.events {
		seq, _ := e.Payload()["seq"].(uint64)
		seqs = append(seqs, seq)
	}
	return seqs
}

func (p *recordingPublisher) Last(eventType string) (events.Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].EventType() == eventType {
			return p.events[i], true
		}
	}
	return nil, false
}
