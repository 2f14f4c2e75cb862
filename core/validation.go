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


package core

import (
	"fmt"
	"time"
)

// ValidateContentItem validates a ContentItem according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Source must not be empty
//   - Timestamp must not be in the future
//
// NOT validated:
//   - Id (0 is replaced with a content-based ID at import time)
//   - LinkedIds (targets may be missing from the archive; lookups skip them)
func ValidateContentItem(item *ContentItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidContentItem)
	}

	if item.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidContentItem, ErrEmptyContent)
	}

	if item.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidContentItem, ErrEmptySource)
	}

	if !IsValidTimestamp(item.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidContentItem, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateQuery validates a Query according to domain rules.
func ValidateQuery(q *Query) error {
	if q == nil {
		return fmt.Errorf("%w: query is nil", ErrInvalidQuery)
	}

	if q.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, ErrEmptyContent)
	}

	return nil
}

// ValidateDiscussionGroup validates a DiscussionGroup according to domain rules.
//
// Validation rules:
//   - Source must not be empty
//   - A group claiming drift must carry at least one topic
func ValidateDiscussionGroup(group *DiscussionGroup) error {
	if group == nil {
		return fmt.Errorf("%w: group is nil", ErrInvalidDiscussionGroup)
	}

	if group.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDiscussionGroup, ErrEmptySource)
	}

	if group.HasDrift && len(group.Topics) == 0 {
		return fmt.Errorf("%w: drift flagged without topics", ErrInvalidDiscussionGroup)
	}

	return nil
}

// ValidateTier validates that a Tier has a known value.
func ValidateTier(t Tier) error {
	if t != TierHigh && t != TierMedium && t != TierLow && t != TierNone {
		return fmt.Errorf("%w: value %d", ErrInvalidTier, t)
	}
	return nil
}

// ValidateScore validates that a relevance score lies in [0,1].
func ValidateScore(score float64) error {
	if score < 0 || score > 1 {
		return fmt.Errorf("%w: value %f", ErrInvalidScore, score)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
