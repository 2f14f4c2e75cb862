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

	"github.com/chorusqa/chorus/core"
	"github.com/chorusqa/chorus/storage"
)

// Expander attaches one hop of linked context to high-tier items.
// Selected medium items pass through without expansion. No oracle
// calls; this is pure data expansion against the store.
//
// Expansion depth is fixed at 1, so link cycles cannot occur by
// construction; no cycle detection exists or is needed.
type Expander struct {
	content storage.ContentRepository
	logger  *slog.Logger
}

// NewExpander creates a context expander.
func NewExpander(content storage.ContentRepository, logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.Default()
	}
	return &Expander{
		content: content,
		logger:  logger.With("component", "expander"),
	}
}

// Expand enriches the high items with their one-hop linked context and
// appends the selected medium items without any context. All returned
// items are flagged as originally selected; context stays attached to
// its item and is never citable on its own. Storage errors on a lookup
// are logged and leave that item without context, never failing the run.
func (e *Expander) Expand(ctx context.Context, source string, high []core.ClassifiedItem, medium []core.ScoredItem) []core.EnrichedItem {
	enriched := make([]core.EnrichedItem, 0, len(high)+len(medium))

	for _, ci := range high {
		linked, err := e.content.GetLinkedItems(ctx, source, ci.Item.Id)
		if err != nil {
			e.logger.Warn("link lookup failed, item keeps no context",
				"source", source, "id", ci.Item.Id, "error", err)
			linked = nil
		}
		enriched = append(enriched, core.EnrichedItem{
			Item:     ci.Item,
			Tier:     ci.Tier,
			Selected: true,
			Context:  linked,
		})
	}

	for _, si := range medium {
		enriched = append(enriched, core.EnrichedItem{
			Item:     si.Item,
			Tier:     si.Tier,
			Selected: true,
		})
	}

	return enriched
}
