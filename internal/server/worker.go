package server

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/optkit-io/optkit/internal/metrics"
	"github.com/optkit-io/optkit/objectives"
	"github.com/optkit-io/optkit/opt"
	"github.com/optkit-io/optkit/opt/engine"
)

// EngineFactory builds one engine per run, so jobs never share engine
// state.
type EngineFactory func() engine.Engine

// Pool executes submitted jobs on a fixed set of workers.
type Pool struct {
	manager *Manager
	metrics *metrics.Metrics
	log     *zap.Logger
	engine  EngineFactory
	timeout time.Duration
	queue   chan string
	wg      sync.WaitGroup
}

// NewPool starts size workers draining a queue of queueCap job ids.
func NewPool(size, queueCap int, m *Manager, met *metrics.Metrics, log *zap.Logger, eng EngineFactory, timeout time.Duration) *Pool {
	p := &Pool{
		manager: m,
		metrics: met,
		log:     log,
		engine:  eng,
		timeout: timeout,
		queue:   make(chan string, queueCap),
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Enqueue hands a pending job to the pool; false when the queue is
// full.
func (p *Pool) Enqueue(id string) bool {
	select {
	case p.queue <- id:
		p.metrics.JobsQueued.Inc()
		return true
	default:
		return false
	}
}

// Stop closes intake and waits for in-flight jobs to finish. Callers
// wanting a faster drain cancel the jobs first.
func (p *Pool) Stop() {
	close(p.queue)
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for id := range p.queue {
		p.metrics.JobsQueued.Dec()
		p.run(id)
	}
}

// run moves one job from pending to its terminal state.
func (p *Pool) run(id string) {
	job, ok := p.manager.Get(id)
	if !ok {
		return
	}

	p.metrics.JobsInFlight.Inc()
	defer p.metrics.JobsInFlight.Dec()

	started := time.Now().UTC()
	p.manager.update(id, func(j *Job) {
		j.State = StateRunning
		j.StartedAt = &started
	})

	result, err := p.execute(job)
	ended := time.Now().UTC()
	p.metrics.RunDuration.Observe(ended.Sub(started).Seconds())

	state := StateCompleted
	statusLabel := "error"
	switch {
	case err != nil:
		state = StateFailed
	case job.cancel.Load():
		state = StateCancelled
		statusLabel = result.CodeText
	default:
		statusLabel = result.CodeText
	}

	p.manager.update(id, func(j *Job) {
		j.State = state
		j.EndedAt = &ended
		if err != nil {
			j.Error = err.Error()
			return
		}
		j.Result = result
	})
	p.metrics.RunsFinished.WithLabelValues(string(state), statusLabel).Inc()

	fields := []zap.Field{
		zap.String("job_id", id),
		zap.String("state", string(state)),
		zap.Duration("duration", ended.Sub(started)),
	}
	if err != nil {
		p.log.Error("job failed", append(fields, zap.Error(err))...)
		return
	}
	p.log.Info("job finished", append(fields,
		zap.String("status", result.CodeText),
		zap.Float64("score", result.Score),
		zap.Uint64("evaluations", result.Evaluations))...)
}

// execute translates the request into a facade run. The job's cancel
// flag and the pool's run timeout both feed the stop condition, which
// doubles as the evaluation counter.
func (p *Pool) execute(job Job) (*RunResult, error) {
	prob, err := objectives.Lookup(job.Request.Objective)
	if err != nil {
		return nil, err
	}
	method, err := opt.ParseMethod(job.Request.Method)
	if err != nil {
		return nil, err
	}

	criteria := opt.NewStopCriteria()
	if job.Request.MaxEval > 0 {
		criteria.SetMaxIterations(job.Request.MaxEval)
	}
	if job.Request.AbsTol != nil {
		criteria.SetAbsScoreDiff(*job.Request.AbsTol)
	}
	if job.Request.RelTol != nil {
		criteria.SetRelScoreDiff(*job.Request.RelTol)
	}
	if job.Request.StopScore != nil {
		criteria.SetStopScore(*job.Request.StopScore)
	}

	var evals atomic.Uint64
	cancel := job.cancel
	deadline := time.Now().Add(p.timeout)
	criteria.SetStopCondition(func() bool {
		evals.Add(1)
		p.metrics.Evaluations.Inc()
		if cancel.Load() {
			return true
		}
		return p.timeout > 0 && time.Now().After(deadline)
	})

	optimizer := opt.New(method,
		opt.WithEngine(p.engine()),
		opt.WithLogger(p.log),
		opt.WithCriteria(criteria),
	)
	switch strings.ToLower(job.Request.Direction) {
	case "min", "minimize":
		optimizer.ToMin()
	case "max", "maximize":
		optimizer.ToMax()
	default:
		return nil, fmt.Errorf("server: unknown direction %q", job.Request.Direction)
	}
	if job.Request.Seed != nil {
		optimizer.Seed(*job.Request.Seed)
	}

	initial := prob.Initial
	if len(job.Request.Initial) > 0 {
		initial = opt.Input(job.Request.Initial)
	}
	bounds := prob.Bounds
	if len(job.Request.Bounds) > 0 {
		bounds = make(opt.Bounds, len(job.Request.Bounds))
		for i, b := range job.Request.Bounds {
			bounds[i] = opt.NewBound(b[0], b[1])
		}
	}

	r, err := optimizer.Optimize(prob.Objective, initial, bounds)
	if err != nil {
		return nil, err
	}
	return &RunResult{
		Code:        int(r.Code),
		CodeText:    r.Code.String(),
		Optimum:     r.Optimum,
		Score:       r.Score,
		Evaluations: evals.Load(),
	}, nil
}
