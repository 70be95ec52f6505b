package client

import (
	"context"
	"time"
)

// Polling intervals. Polling is the durability backstop for the at-most-once
// live channel: a client that missed events converges on the next fetch.
const (
	UserPollInterval  = 10 * time.Second
	AdminPollInterval = 15 * time.Second
)

// ListPoller periodically re-fetches a chat list and reports each result.
// A list-changed live event can force an immediate fetch through Kick.
type ListPoller struct {
	interval time.Duration
	fetch    func(ctx context.Context) ([]ChatSummary, error)
	onUpdate func(summaries []ChatSummary)
	onError  func(err error)
	kick     chan struct{}
}

// NewListPoller creates a poller. onError may be nil to ignore fetch errors;
// the next tick retries regardless.
func NewListPoller(
	interval time.Duration,
	fetch func(ctx context.Context) ([]ChatSummary, error),
	onUpdate func(summaries []ChatSummary),
	onError func(err error),
) *ListPoller {
	return &ListPoller{
		interval: interval,
		fetch:    fetch,
		onUpdate: onUpdate,
		onError:  onError,
		kick:     make(chan struct{}, 1),
	}
}

// Kick requests an immediate fetch. Coalesces if one is already pending.
func (p *ListPoller) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled. It fetches once immediately.
func (p *ListPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		case <-p.kick:
			p.poll(ctx)
		}
	}
}

func (p *ListPoller) poll(ctx context.Context) {
	summaries, err := p.fetch(ctx)
	if err != nil {
		if p.onError != nil && ctx.Err() == nil {
			p.onError(err)
		}
		return
	}
	p.onUpdate(summaries)
}
