// Package poller fetches process snapshots on a fixed cadence.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dicklesworthstone/proctree/internal/wire"
)

var log = logrus.WithField("source", "poller")

// Fetcher produces one snapshot per call. *service.Service and *Client both
// satisfy it.
type Fetcher interface {
	GetSnapshot(ctx context.Context) (wire.Document, error)
}

// Result is the outcome of one fetch. Doc is empty when Err is set.
type Result struct {
	Doc     wire.Document
	Err     error
	At      time.Time
	Elapsed time.Duration
}

// Poller calls Fetch every Interval. A tick that arrives while the previous
// fetch is still running is dropped, so at most one fetch is in flight.
type Poller struct {
	Interval time.Duration
	Fetch    Fetcher

	inFlight atomic.Bool
	skipped  atomic.Int64
}

func New(interval time.Duration, f Fetcher) *Poller {
	return &Poller{Interval: interval, Fetch: f}
}

// Skipped reports how many ticks were dropped because a fetch was running.
func (p *Poller) Skipped() int64 { return p.skipped.Load() }

// Stream fetches once immediately and then on every tick, delivering results
// until ctx is done. The channel is closed after the last fetch returns.
func (p *Poller) Stream(ctx context.Context) <-chan Result {
	ch := make(chan Result)
	var wg sync.WaitGroup

	start := func() {
		if !p.inFlight.CompareAndSwap(false, true) {
			p.skipped.Add(1)
			log.Debug("previous fetch still running, skipping tick")
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer p.inFlight.Store(false)
			res := p.fetch(ctx)
			select {
			case ch <- res:
			case <-ctx.Done():
			}
		}()
	}

	go func() {
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()
		defer close(ch)
		defer wg.Wait()

		start()
		for {
			select {
			case <-ticker.C:
				start()
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func (p *Poller) fetch(ctx context.Context) Result {
	began := time.Now()
	doc, err := p.Fetch.GetSnapshot(ctx)
	if err != nil {
		log.WithError(err).Warn("fetch failed")
	}
	return Result{Doc: doc, Err: err, At: began, Elapsed: time.Since(began)}
}
