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
	"sync"
	"time"
)

// Stage identifies one step of the per-source pipeline.
type Stage string

const (
	StageMapping                 Stage = "mapping"
	StageScoringMedium           Stage = "scoring_medium"
	StageExpanding               Stage = "expanding"
	StageSynthesizing            Stage = "synthesizing"
	StageValidatingLanguage      Stage = "validating_language"
	StageMatchingDiscussions     Stage = "matching_discussions"
	StageSynthesizingDiscussions Stage = "synthesizing_discussions"
	StageDone                    Stage = "done"
	StageFailed                  Stage = "failed"
)

// EventStatus is the status of a stage at the moment an event is emitted.
type EventStatus string

const (
	StatusStarting   EventStatus = "starting"
	StatusProcessing EventStatus = "processing"
	StatusCompleted  EventStatus = "completed"
	StatusFailed     EventStatus = "failed"
)

// ProgressEvent is one record of pipeline progress. Events within one
// source follow the stage sequence strictly; across sources they
// interleave and carry the source name for demultiplexing.
// Transient; never persisted.
type ProgressEvent struct {
	Source    string         `json:"source_id"`
	Stage     Stage          `json:"stage"`
	Status    EventStatus    `json:"status"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// EventBus is a bounded multi-producer/single-consumer event channel.
// When the buffer is full, Publish blocks the producing runner until the
// consumer catches up, capping memory use on slow client connections.
type EventBus struct {
	ch chan ProgressEvent

	// mu is held for reading across the whole send so Close cannot
	// close the channel under an in-flight Publish.
	mu     sync.RWMutex
	closed bool
}

// NewEventBus creates an event bus with the given buffer capacity.
// Capacities below 1 are raised to 1.
func NewEventBus(capacity int) *EventBus {
	if capacity < 1 {
		capacity = 1
	}
	return &EventBus{ch: make(chan ProgressEvent, capacity)}
}

// Publish appends an event to the bus, blocking while the buffer is
// full. Returns the context error if the caller is cancelled while
// blocked. Publishing to a closed bus is a silent no-op; runners may
// still be draining when the consumer walks away.
func (b *EventBus) Publish(ctx context.Context, event ProgressEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}

	select {
	case b.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events returns the consumer side of the bus. The channel is closed by
// Close once all producers are done.
func (b *EventBus) Events() <-chan ProgressEvent {
	return b.ch
}

// Close closes the bus. Safe to call while producers are publishing:
// Close waits for in-flight sends to drain, and later publishes become
// no-ops. Calling Close more than once is a no-op.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}
