// Package client implements the polling side of message synchronisation:
// it keeps a local timeline of one conversation up to date by fetching
// only what was created since the newest message already held.
package client

import (
	"context"
	"dm-lab/domain"
	"dm-lab/projection"
	"fmt"
	"log/slog"
	"time"
)

type Fetcher interface {
	FetchMessages(ctx context.Context, self, peer string, after *time.Time) ([]domain.MessageView, error)
}

type Poller struct {
	fetcher  Fetcher
	log      *slog.Logger
	interval time.Duration
	timeline *projection.Timeline
}

func NewPoller(log *slog.Logger, fetcher Fetcher, self, peer string, interval time.Duration) *Poller {
	return &Poller{
		fetcher:  fetcher,
		log:      log,
		interval: interval,
		timeline: projection.NewTimeline(self, peer),
	}
}

func (p *Poller) Timeline() *projection.Timeline {
	return p.timeline
}

// Poll fetches from the current cursor and returns the messages not seen before.
// The cursor is inclusive, so the newest known message comes back and is dropped.
func (p *Poller) Poll(ctx context.Context) ([]domain.MessageView, error) {
	messages, err := p.fetcher.FetchMessages(ctx, p.timeline.Owner, p.timeline.Peer, p.timeline.Cursor())
	if err != nil {
		return nil, fmt.Errorf("poll %s<->%s: %w", p.timeline.Owner, p.timeline.Peer, err)
	}
	return p.timeline.Merge(messages), nil
}

// Run polls immediately then at every interval until ctx is done.
// Failed polls are logged and retried at the next tick.
func (p *Poller) Run(ctx context.Context, onNew func([]domain.MessageView)) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		added, err := p.Poll(ctx)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			p.log.Warn("Poll failed", "error", err)
		case len(added) > 0:
			onNew(added)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
