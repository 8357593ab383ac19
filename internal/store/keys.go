package store

import "sync"

// keyPool provides reusable byte slices for building database keys on the
// read path. Keys handed to write operations are not pooled: badger retains
// them until the transaction commits.
var keyPool = sync.Pool{
	New: func() any {
		// 256 bytes covers every key shape we build:
		// prefix + "idx:" + index name + ":" + value (slug, email, nanoid)
		return make([]byte, 0, 256)
	},
}

// buildKey constructs a database key from prefix and suffix using a pooled buffer.
// Callers MUST call releaseKey when done with the key.
//
// Usage:
//
//	key := buildKey("product:", productID)
//	defer releaseKey(key)
//	item, err := txn.Get(key)
func buildKey(prefix, suffix string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	buf = append(buf, suffix...)
	return buf
}

// buildIndexKey constructs an index key from prefix, index name, and value.
// Callers MUST call releaseKey when done with the key.
func buildIndexKey(prefix, indexName, value string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	buf = append(buf, "idx:"...)
	buf = append(buf, indexName...)
	buf = append(buf, ':')
	buf = append(buf, value...)
	return buf
}

// releaseKey returns a key buffer to the pool for reuse.
// After calling this, the key slice must not be used.
func releaseKey(key []byte) {
	// Oversized buffers stay out of the pool.
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}
