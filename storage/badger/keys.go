package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/chorusqa/chorus/core"
)

// Key prefixes for different data types
const (
	itemPrefix      = "conitem"
	itemDatePrefix  = "conitemd"
	itemLinkPrefix  = "conlink"
	groupPrefix     = "disgrp"
	sourceMarkerKey = "consrc"
)

// makeItemKey generates a key for a content item by source and ID.
func makeItemKey(source string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", itemPrefix, source, id))
}

// makeItemDateKey generates a composite key for the per-source timestamp index.
// Format: prefix:source:timestamp:id
func makeItemDateKey(source string, timestamp time.Time, id core.ID) []byte {
	prefixBytes := []byte(itemDatePrefix + ":" + source + ":")
	buf := make([]byte, len(prefixBytes)+16) // 8 bytes timestamp + 8 bytes ID
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeItemDateScanPrefix generates the scan prefix for a source's timestamp index.
func makeItemDateScanPrefix(source string) []byte {
	return []byte(itemDatePrefix + ":" + source + ":")
}

// makeItemLinkKey generates a composite key for the reverse-link index.
// Format: prefix:source:targetID:itemID, meaning itemID links to targetID.
func makeItemLinkKey(source string, targetID, itemID core.ID) []byte {
	prefixBytes := []byte(itemLinkPrefix + ":" + source + ":")
	buf := make([]byte, len(prefixBytes)+16) // 8 bytes target + 8 bytes item
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(targetID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(itemID))
	return buf
}

// makeItemLinkScanPrefix generates the scan prefix for everything linking to targetID.
func makeItemLinkScanPrefix(source string, targetID core.ID) []byte {
	prefixBytes := []byte(itemLinkPrefix + ":" + source + ":")
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(targetID))
	return buf
}

// makeGroupKey generates a key for a discussion group by source and anchor ID.
func makeGroupKey(source string, anchorID core.ID) []byte {
	prefixBytes := []byte(groupPrefix + ":" + source + ":")
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(anchorID))
	return buf
}

// makeGroupScanPrefix generates the scan prefix for a source's discussion groups.
func makeGroupScanPrefix(source string) []byte {
	return []byte(groupPrefix + ":" + source + ":")
}

// makeSourceMarkerKey generates a key marking that a source has stored items.
func makeSourceMarkerKey(source string) []byte {
	return []byte(fmt.Sprintf("%s:%s", sourceMarkerKey, source))
}

// makeSourceMarkerScanPrefix generates the scan prefix for source markers.
func makeSourceMarkerScanPrefix() []byte {
	return []byte(sourceMarkerKey + ":")
}
