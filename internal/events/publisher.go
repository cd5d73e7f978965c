package events

import (
	"context"
	"log/slog"
	"sync"
)

// Sink delivers a single event to its destination.
type Sink interface {
	Deliver(ctx context.Context, event Event) error
	Close() error
}

// Publisher decouples event emission from delivery. Publish never blocks the
// request path: events go onto a buffered channel and a single worker drains
// them to the sink. When the buffer is full the event is dropped and counted,
// not queued; lifecycle state lives in the store, the stream is advisory.
type Publisher struct {
	sink   Sink
	logger *slog.Logger
	ch     chan Event
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewPublisher(sink Sink, buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	p := &Publisher{
		sink:   sink,
		logger: logger,
		ch:     make(chan Event, buffer),
	}
	p.wg.Add(1)
	go p.drain()
	return p
}

func (p *Publisher) Publish(event Event) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	select {
	case p.ch <- event:
	default:
		p.logger.Warn("event buffer full, dropping event",
			slog.String("type", string(event.Type)),
			slog.String("reference", event.Reference))
	}
	p.mu.Unlock()
}

// Close stops accepting events, drains what is already buffered, and closes
// the sink.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.ch)
	p.mu.Unlock()

	p.wg.Wait()
	return p.sink.Close()
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.ch {
		if err := p.sink.Deliver(context.Background(), event); err != nil {
			p.logger.Error("event delivery failed",
				slog.String("type", string(event.Type)),
				slog.String("reference", event.Reference),
				slog.String("error", err.Error()))
		}
	}
}
