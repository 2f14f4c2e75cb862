package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validItem() *ContentItem {
	return &ContentItem{
		Id:        1,
		Source:    "channel-a",
		Author:    "poster",
		Text:      "an archived post",
		Timestamp: time.Now().Add(-time.Hour),
	}
}

func TestValidateContentItem_Valid(t *testing.T) {
	require.NoError(t, ValidateContentItem(validItem()))
}

func TestValidateContentItem_Nil(t *testing.T) {
	err := ValidateContentItem(nil)
	assert.ErrorIs(t, err, ErrInvalidContentItem)
}

func TestValidateContentItem_EmptyText(t *testing.T) {
	item := validItem()
	item.Text = ""
	err := ValidateContentItem(item)
	assert.ErrorIs(t, err, ErrInvalidContentItem)
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestValidateContentItem_EmptySource(t *testing.T) {
	item := validItem()
	item.Source = ""
	err := ValidateContentItem(item)
	assert.ErrorIs(t, err, ErrEmptySource)
}

func TestValidateContentItem_FutureTimestamp(t *testing.T) {
	item := validItem()
	item.Timestamp = time.Now().Add(time.Hour)
	err := ValidateContentItem(item)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestValidateQuery(t *testing.T) {
	require.NoError(t, ValidateQuery(&Query{Text: "what happened?"}))

	assert.ErrorIs(t, ValidateQuery(nil), ErrInvalidQuery)
	assert.ErrorIs(t, ValidateQuery(&Query{}), ErrEmptyContent)
}

func TestValidateDiscussionGroup(t *testing.T) {
	require.NoError(t, ValidateDiscussionGroup(&DiscussionGroup{
		AnchorId: 10,
		Source:   "channel-a",
		HasDrift: true,
		Topics:   []DriftTopic{{Label: "side topic"}},
	}))

	assert.ErrorIs(t, ValidateDiscussionGroup(nil), ErrInvalidDiscussionGroup)
	assert.ErrorIs(t, ValidateDiscussionGroup(&DiscussionGroup{AnchorId: 1}), ErrEmptySource)

	// Drift without topics is inconsistent analysis output.
	err := ValidateDiscussionGroup(&DiscussionGroup{AnchorId: 1, Source: "s", HasDrift: true})
	assert.ErrorIs(t, err, ErrInvalidDiscussionGroup)
}

func TestValidateTier(t *testing.T) {
	for _, tier := range []Tier{TierNone, TierLow, TierMedium, TierHigh} {
		assert.NoError(t, ValidateTier(tier))
	}
	assert.ErrorIs(t, ValidateTier(Tier(42)), ErrInvalidTier)
}

func TestValidateScore(t *testing.T) {
	assert.NoError(t, ValidateScore(0))
	assert.NoError(t, ValidateScore(0.7))
	assert.NoError(t, ValidateScore(1))
	assert.ErrorIs(t, ValidateScore(-0.1), ErrInvalidScore)
	assert.ErrorIs(t, ValidateScore(1.1), ErrInvalidScore)
}
