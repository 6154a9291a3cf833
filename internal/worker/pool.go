// Package worker provides background processing for playlist analysis
// jobs. Results are held in memory and looked up by job ID.
package worker

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/ewilliams-labs/cadence/internal/core/analysis"
	"github.com/ewilliams-labs/cadence/internal/core/domain"
	"github.com/ewilliams-labs/cadence/internal/core/services"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
)

// Job represents one queued playlist analysis.
type Job struct {
	ID     string
	Tracks []domain.RawTrack
}

// Result is a job's current state and, once done, its output.
type Result struct {
	ID       string                 `json:"id"`
	Status   Status                 `json:"status"`
	Tracks   []domain.EnrichedTrack `json:"tracks,omitempty"`
	Summary  *analysis.SummaryStats `json:"summary,omitempty"`
	Outliers []analysis.Outlier     `json:"outliers,omitempty"`
}

// Pool manages background workers for async playlist analysis.
type Pool struct {
	enricher *services.Enricher
	jobs     chan Job
	wg       sync.WaitGroup
	log      hclog.Logger

	mu      sync.Mutex
	results map[string]*Result
}

// NewPool creates a worker pool with the given queue size.
func NewPool(enricher *services.Enricher, queueSize int, log hclog.Logger) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		enricher: enricher,
		jobs:     make(chan Job, queueSize),
		log:      log.Named("worker"),
		results:  make(map[string]*Result),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop waits for workers to finish after closing the queue.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Submit queues an analysis job without blocking. It reports false when
// the queue is full; the caller decides how to surface that.
func (p *Pool) Submit(tracks []domain.RawTrack) (string, bool) {
	job := Job{ID: uuid.NewString(), Tracks: tracks}

	p.mu.Lock()
	p.results[job.ID] = &Result{ID: job.ID, Status: StatusQueued}
	p.mu.Unlock()

	select {
	case p.jobs <- job:
		return job.ID, true
	default:
		p.mu.Lock()
		delete(p.results, job.ID)
		p.mu.Unlock()
		p.log.Warn("dropping analysis job, queue full", "tracks", len(tracks))
		return "", false
	}
}

// Status returns a snapshot of the job's result.
func (p *Pool) Status(id string) (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.results[id]
	if !ok {
		return Result{}, false
	}
	return *r, true
}

func (p *Pool) processJob(job Job) {
	p.setStatus(job.ID, StatusRunning)

	// Jobs outlive the request that submitted them.
	enriched := p.enricher.EnrichBatch(context.Background(), job.Tracks)
	summary := p.enricher.SummarizeBatch(enriched)
	outliers := analysis.DetectOutliers(enriched, summary)

	p.mu.Lock()
	if r, ok := p.results[job.ID]; ok {
		r.Status = StatusDone
		r.Tracks = enriched
		r.Summary = &summary
		r.Outliers = outliers
	}
	p.mu.Unlock()

	p.log.Info("analysis job done", "id", job.ID, "tracks", len(enriched), "outliers", len(outliers))
}

func (p *Pool) setStatus(id string, status Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if r, ok := p.results[id]; ok {
		r.Status = status
	}
}
