package qloo

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const insightsPath = "/v2/insights"

// Executor runs planned descriptors against the insights endpoint.
type Executor struct {
	client      *Client
	concurrency int
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithConcurrency sets the number of descriptors executed at once. Values
// below 2 keep execution strictly sequential.
func WithConcurrency(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 1 {
			e.concurrency = n
		}
	}
}

// NewExecutor creates an executor backed by client.
func NewExecutor(client *Client, opts ...ExecutorOption) *Executor {
	e := &Executor{client: client, concurrency: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs every descriptor and returns one Result per descriptor, in
// input order. It never fails: transport and HTTP errors are recorded on the
// corresponding Result and execution continues.
func (e *Executor) Execute(ctx context.Context, descriptors []Descriptor) []Result {
	start := time.Now()
	results := make([]Result, len(descriptors))

	if e.concurrency <= 1 {
		for i, d := range descriptors {
			results[i] = e.executeOne(ctx, d)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(e.concurrency)
		for i, d := range descriptors {
			g.Go(func() error {
				results[i] = e.executeOne(ctx, d)
				return nil
			})
		}
		_ = g.Wait()
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	log.Info().
		Int("queries", len(descriptors)).
		Int("succeeded", succeeded).
		Int("concurrency", e.concurrency).
		Dur("duration", time.Since(start)).
		Msg("Qloo queries executed")
	return results
}

func (e *Executor) executeOne(ctx context.Context, d Descriptor) Result {
	var (
		method = http.MethodGet
		data   []byte
		err    error
	)
	if HasQueryKey(d.Parameters) {
		method = http.MethodPost
		data, err = e.client.do(ctx, method, insightsPath, nil, NestParams(d.Parameters))
	} else {
		data, err = e.client.do(ctx, method, insightsPath, FlattenQuery(d.Parameters), nil)
	}
	if err != nil {
		log.Warn().Err(err).
			Str("method", method).
			Str("entityType", d.EntityType).
			Str("description", d.Description).
			Msg("Qloo query failed")
		return Result{Query: d, Success: false, Error: err.Error()}
	}
	return Result{Query: d, Success: true, Data: data}
}
