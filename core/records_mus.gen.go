// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	slicee7NQDqYKQSygΔCQXdV8jDgΞΞ = ord.NewSliceSer[string](ord.String)
	slicel6mGy5YIrSHl6yfzzaThxgΞΞ = ord.NewSliceSer[DriftTopic](DriftTopicMUS)
	sliceΔ41SΣLzΣFKk3quInaC2eLgΞΞ = ord.NewSliceSer[ID](IDMUS)
)

var IDMUS = iDMUS{}

type iDMUS struct{}

func (s iDMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s iDMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s iDMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s iDMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var ContentItemMUS = contentItemMUS{}

type contentItemMUS struct{}

func (s contentItemMUS) Marshal(v ContentItem, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Source, bs[n:])
	n += ord.String.Marshal(v.Author, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.Timestamp, bs[n:])
	return n + sliceΔ41SΣLzΣFKk3quInaC2eLgΞΞ.Marshal(v.LinkedIds, bs[n:])
}

func (s contentItemMUS) Unmarshal(bs []byte) (v ContentItem, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Source, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Author, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.LinkedIds, n1, err = sliceΔ41SΣLzΣFKk3quInaC2eLgΞΞ.Unmarshal(bs[n:])
	n += n1
	return
}

func (s contentItemMUS) Size(v ContentItem) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Source)
	size += ord.String.Size(v.Author)
	size += ord.String.Size(v.Text)
	size += raw.TimeUnixMicro.Size(v.Timestamp)
	return size + sliceΔ41SΣLzΣFKk3quInaC2eLgΞΞ.Size(v.LinkedIds)
}

func (s contentItemMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = sliceΔ41SΣLzΣFKk3quInaC2eLgΞΞ.Skip(bs[n:])
	n += n1
	return
}

var DriftTopicMUS = driftTopicMUS{}

type driftTopicMUS struct{}

func (s driftTopicMUS) Marshal(v DriftTopic, bs []byte) (n int) {
	n = ord.String.Marshal(v.Label, bs)
	n += slicee7NQDqYKQSygΔCQXdV8jDgΞΞ.Marshal(v.Keywords, bs[n:])
	n += slicee7NQDqYKQSygΔCQXdV8jDgΞΞ.Marshal(v.Phrases, bs[n:])
	return n + ord.String.Marshal(v.Rationale, bs[n:])
}

func (s driftTopicMUS) Unmarshal(bs []byte) (v DriftTopic, n int, err error) {
	v.Label, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Keywords, n1, err = slicee7NQDqYKQSygΔCQXdV8jDgΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Phrases, n1, err = slicee7NQDqYKQSygΔCQXdV8jDgΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Rationale, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s driftTopicMUS) Size(v DriftTopic) (size int) {
	size = ord.String.Size(v.Label)
	size += slicee7NQDqYKQSygΔCQXdV8jDgΞΞ.Size(v.Keywords)
	size += slicee7NQDqYKQSygΔCQXdV8jDgΞΞ.Size(v.Phrases)
	return size + ord.String.Size(v.Rationale)
}

func (s driftTopicMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = slicee7NQDqYKQSygΔCQXdV8jDgΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slicee7NQDqYKQSygΔCQXdV8jDgΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return
}

var DiscussionGroupMUS = discussionGroupMUS{}

type discussionGroupMUS struct{}

func (s discussionGroupMUS) Marshal(v DiscussionGroup, bs []byte) (n int) {
	n = IDMUS.Marshal(v.AnchorId, bs)
	n += ord.String.Marshal(v.Source, bs[n:])
	n += ord.Bool.Marshal(v.HasDrift, bs[n:])
	return n + slicel6mGy5YIrSHl6yfzzaThxgΞΞ.Marshal(v.Topics, bs[n:])
}

func (s discussionGroupMUS) Unmarshal(bs []byte) (v DiscussionGroup, n int, err error) {
	v.AnchorId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Source, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.HasDrift, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Topics, n1, err = slicel6mGy5YIrSHl6yfzzaThxgΞΞ.Unmarshal(bs[n:])
	n += n1
	return
}

func (s discussionGroupMUS) Size(v DiscussionGroup) (size int) {
	size = IDMUS.Size(v.AnchorId)
	size += ord.String.Size(v.Source)
	size += ord.Bool.Size(v.HasDrift)
	return size + slicel6mGy5YIrSHl6yfzzaThxgΞΞ.Size(v.Topics)
}

func (s discussionGroupMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slicel6mGy5YIrSHl6yfzzaThxgΞΞ.Skip(bs[n:])
	n += n1
	return
}
