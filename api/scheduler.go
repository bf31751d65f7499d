/*
scheduler.go - Automated completion sweep

PURPOSE:
  Periodically moves scheduled training requests whose linked session
  has ended into the terminal completed status, so request listings
  reflect reality without staff action.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each sweep is one idempotent storage call; re-running is harmless
  - Already-completed requests are never touched again

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour)
  - Enabled: Whether the sweeper is active (default: true)

USAGE:
  sweeper := NewCompletionSweeper(handler.Requests)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - handlers.go: CompleteElapsed endpoint (manual sweep)
  - training/requests.go: RequestLedger.CompleteElapsed
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lifeline/training-engine/training"
)

// CompletionSweeper advances scheduled requests with elapsed sessions
// to completed on a timer.
type CompletionSweeper struct {
	Requests      *training.RequestLedger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewCompletionSweeper creates a new sweeper.
func NewCompletionSweeper(requests *training.RequestLedger) *CompletionSweeper {
	return &CompletionSweeper{
		Requests:      requests,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the sweeper.
func (cs *CompletionSweeper) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.Enabled {
		log.Println("[Sweeper] Disabled, not starting")
		return
	}

	cs.ticker = time.NewTicker(cs.CheckInterval)
	cs.wg.Add(1)

	go cs.run()

	log.Printf("[Sweeper] Started with check interval: %v", cs.CheckInterval)
}

// Stop stops the sweeper.
func (cs *CompletionSweeper) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.ticker != nil {
		cs.ticker.Stop()
		close(cs.stop)
		cs.wg.Wait()
		log.Println("[Sweeper] Stopped")
	}
}

func (cs *CompletionSweeper) run() {
	defer cs.wg.Done()

	// Run immediately on start
	cs.sweep()

	for {
		select {
		case <-cs.ticker.C:
			cs.sweep()
		case <-cs.stop:
			return
		}
	}
}

func (cs *CompletionSweeper) sweep() {
	ctx := context.Background()
	now := time.Now().UTC()

	n, err := cs.Requests.CompleteElapsed(ctx, now)
	if err != nil {
		log.Printf("[Sweeper] Error completing elapsed requests: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[Sweeper] Completed %d elapsed request(s)", n)
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (cs *CompletionSweeper) RunNow() {
	cs.sweep()
}
