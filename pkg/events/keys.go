package events

import "github.com/ben-juodvalkis/musical-perception/pkg/kv"

// Key layout:
//
//	events:{stream}:{id}  → msgpack-encoded Record
//	hash:{stream}:{hex}   → id (audio content hash index, for dedup)
//
// IDs are UUIDv7, so lexicographic key order within a stream matches
// append order.

func eventKey(stream, id string) kv.Key {
	return kv.Key{"events", stream, id}
}

func streamPrefix(stream string) kv.Key {
	if stream == "" {
		return kv.Key{"events"}
	}
	return kv.Key{"events", stream}
}

func hashKey(stream, hash string) kv.Key {
	return kv.Key{"hash", stream, hash}
}
