// Copyright 2025 Chorus Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"context"
	"log/slog"

	"github.com/chorusqa/chorus/ai"
	"github.com/chorusqa/chorus/core"
	"github.com/chorusqa/chorus/storage"
	"golang.org/x/sync/errgroup"
)

// Orchestrator runs one pipeline runner per requested source,
// concurrently and fully isolated: a source reaching its failed state
// never cancels or degrades the others. All runners publish to one
// bounded event bus owned by the orchestrator.
type Orchestrator struct {
	content     storage.ContentRepository
	discussions storage.DiscussionRepository
	oracle      ai.Oracle
	config      Config
	logger      *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithConfig replaces the default pipeline configuration.
func WithConfig(config Config) Option {
	return func(o *Orchestrator) error {
		o.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates a multi-source orchestrator.
func NewOrchestrator(content storage.ContentRepository, discussions storage.DiscussionRepository, oracle ai.Oracle, opts ...Option) (*Orchestrator, error) {
	if content == nil {
		return nil, ErrContentRepositoryRequired
	}
	if discussions == nil {
		return nil, ErrDiscussionRepositoryRequired
	}
	if oracle == nil {
		return nil, ErrOracleRequired
	}

	o := &Orchestrator{
		content:     content,
		discussions: discussions,
		oracle:      oracle,
		config:      DefaultConfig(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Result is the final payload of one query across all its sources.
// Its JSON form is the caller-facing wire format, see wire.go.
type Result struct {
	Query   string
	Experts []*core.ExpertResult
}

// Ask runs the pipeline for every requested source (nil Sources means
// all known sources). It returns the merged progress event stream and
// a channel that delivers the final result once every runner has
// reached done or failed. The event channel closes after the result is
// delivered. Cancelling ctx aborts all runners promptly.
//
// Events from one source follow the stage order strictly; across
// sources they interleave without ordering guarantees, tagged by
// source for demultiplexing.
func (o *Orchestrator) Ask(ctx context.Context, query *core.Query) (<-chan ProgressEvent, <-chan *Result, error) {
	if err := core.ValidateQuery(query); err != nil {
		return nil, nil, err
	}

	sources := query.Sources
	if sources == nil {
		var err error
		sources, err = o.content.Sources(ctx)
		if err != nil {
			return nil, nil, err
		}
	}
	if len(sources) == 0 {
		return nil, nil, ErrNoSources
	}

	bus := NewEventBus(o.config.EventBuffer)
	results := make([]*core.ExpertResult, len(sources))
	resultCh := make(chan *Result, 1)

	// Zero-value group: wait-only, no shared cancellation. One failed
	// source must not cancel its siblings; only ctx does that.
	var g errgroup.Group
	for i, source := range sources {
		runner := NewRunner(source, o.content, o.discussions, o.oracle, o.config, bus, o.logger)
		g.Go(func() error {
			results[i] = runner.Run(ctx, query)
			return nil
		})
	}

	go func() {
		_ = g.Wait()

		failed := 0
		for _, res := range results {
			if res != nil && res.Failed {
				failed++
			}
		}
		_ = bus.Publish(ctx, ProgressEvent{
			Stage:   StageDone,
			Status:  StatusCompleted,
			Message: "all sources finished",
			Data:    map[string]any{"sources": len(sources), "failed": failed},
		})

		resultCh <- &Result{Query: query.Text, Experts: results}
		close(resultCh)
		bus.Close()
	}()

	return bus.Events(), resultCh, nil
}
