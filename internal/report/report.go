package report

import (
	"sync"
	"time"
)

type Status string

const (
	StatusDone   Status = "done"
	StatusFailed Status = "failed"
)

// Outcome is the result of one campaign within a run.
type Outcome struct {
	Campaign   string
	Status     Status
	Products   int
	Duration   time.Duration
	Err        string
	FinishedAt time.Time
}

type Summary struct {
	Campaigns int
	Done      int
	Failed    int
	Elapsed   time.Duration
}

// Report accumulates campaign outcomes over a single run.
type Report struct {
	mu       sync.Mutex
	outcomes []Outcome
	started  time.Time
}

func New() *Report {
	return &Report{started: time.Now()}
}

func (r *Report) Done(campaign string, products int, duration time.Duration) {
	r.add(Outcome{
		Campaign: campaign,
		Status:   StatusDone,
		Products: products,
		Duration: duration,
	})
}

func (r *Report) Failed(campaign string, err error, duration time.Duration) {
	out := Outcome{
		Campaign: campaign,
		Status:   StatusFailed,
		Duration: duration,
	}
	if err != nil {
		out.Err = err.Error()
	}
	r.add(out)
}

func (r *Report) add(out Outcome) {
	out.FinishedAt = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, out)
}

// Snapshot returns a copy of the outcomes recorded so far, in the order
// they finished.
func (r *Report) Snapshot() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	outcomes := make([]Outcome, len(r.outcomes))
	copy(outcomes, r.outcomes)
	return outcomes
}

func (r *Report) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	sum := Summary{
		Campaigns: len(r.outcomes),
		Elapsed:   time.Since(r.started),
	}
	for _, out := range r.outcomes {
		switch out.Status {
		case StatusDone:
			sum.Done++
		case StatusFailed:
			sum.Failed++
		}
	}
	return sum
}
