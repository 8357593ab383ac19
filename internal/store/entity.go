package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"

	domainerrors "github.com/storefrontapp/storefront-server/internal/errors"
)

// Entity provides generic CRUD operations for any domain type.
type Entity[T any] struct {
	store   *Store
	prefix  string
	indexes []Index[T]
}

// Index defines a secondary index on an entity.
//
// Unique indexes store one key per value and reject writes whose value is
// already claimed by another document; the rejection surfaces as a duplicate
// ValidationError naming the index. Non-unique indexes store one key per
// (value, id) pair and never conflict.
type Index[T any] struct {
	name            string
	keyGen          func(*T) []string
	lookupTransform func(string) string // Optional transformation for lookups
	unique          bool
}

// NewEntity creates a new Entity instance for type T.
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{
		store:   s,
		prefix:  prefix,
		indexes: make([]Index[T], 0),
	}
}

// WithIndex adds a non-unique secondary index to the entity.
// keyGen may return multiple values (multi-valued index) or none (sparse).
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:   name,
		keyGen: keyGen,
	})
	return e
}

// WithUniqueIndex adds a unique secondary index to the entity.
func (e *Entity[T]) WithUniqueIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:   name,
		keyGen: keyGen,
		unique: true,
	})
	return e
}

// WithUniqueIndexTransform adds a unique secondary index with lookup transformation.
// The lookupTransform function is applied to search values before index lookup,
// enabling case-insensitive searches, normalization, etc.
func (e *Entity[T]) WithUniqueIndexTransform(name string, keyGen func(*T) []string, lookupTransform func(string) string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:            name,
		keyGen:          keyGen,
		lookupTransform: lookupTransform,
		unique:          true,
	})
	return e
}

// indexKeys returns the full database keys an index derives from an entity.
func (e *Entity[T]) indexKeys(idx Index[T], id string, entity *T) []string {
	values := idx.keyGen(entity)
	keys := make([]string, 0, len(values))
	for _, value := range values {
		if idx.unique {
			keys = append(keys, e.prefix+"idx:"+idx.name+":"+value)
		} else {
			keys = append(keys, e.prefix+"idx:"+idx.name+":"+value+":"+id)
		}
	}
	return keys
}

// checkUniqueConflicts fails with a duplicate error when any unique index key
// is already claimed by a different document.
func (e *Entity[T]) checkUniqueConflicts(txn *badger.Txn, id string, entity *T, skip map[string]bool) error {
	for _, idx := range e.indexes {
		if !idx.unique {
			continue
		}
		for _, key := range e.indexKeys(idx, id, entity) {
			if skip[key] {
				continue
			}
			item, err := txn.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return unavailable("check index key", err)
			}

			var ownerID string
			if err := item.Value(func(val []byte) error {
				ownerID = string(val)
				return nil
			}); err != nil {
				return unavailable("read index key", err)
			}
			if ownerID != id {
				return domainerrors.Duplicate(idx.name)
			}
		}
	}
	return nil
}

// Create creates a new entity with the given ID.
// Returns a duplicate ValidationError when the ID or any unique index value
// is already taken.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := e.prefix + id

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		// Check if key already exists
		_, err := txn.Get([]byte(key))
		if err == nil {
			return domainerrors.Duplicate("id")
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return unavailable("check existing key", err)
		}

		if err := e.checkUniqueConflicts(txn, id, entity, nil); err != nil {
			return err
		}

		// Set the primary key
		if err := txn.Set([]byte(key), data); err != nil {
			return unavailable("set key", err)
		}

		// Set index keys
		for _, idx := range e.indexes {
			for _, idxKey := range e.indexKeys(idx, id, entity) {
				if err := txn.Set([]byte(idxKey), []byte(id)); err != nil {
					return unavailable("set index key", err)
				}
			}
		}

		return nil
	})
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity T

	err := e.store.db.View(func(txn *badger.Txn) error {
		key := buildKey(e.prefix, id)
		defer releaseKey(key)

		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domainerrors.ErrNotFound
		}
		if err != nil {
			return unavailable("get key", err)
		}

		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &entity); err != nil {
				return fmt.Errorf("failed to unmarshal entity: %w", err)
			}
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return &entity, nil
}

// GetByIndex retrieves an entity by a unique secondary index.
// If the index has a lookup transform, it will be applied to the value before lookup.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Find the index and apply transformation if available
	transformedValue := value
	for _, idx := range e.indexes {
		if idx.name == indexName && idx.lookupTransform != nil {
			transformedValue = idx.lookupTransform(value)
			break
		}
	}

	var id string
	err := e.store.db.View(func(txn *badger.Txn) error {
		indexKey := buildIndexKey(e.prefix, indexName, transformedValue)
		defer releaseKey(indexKey)

		item, err := txn.Get(indexKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domainerrors.ErrNotFound
		}
		if err != nil {
			return unavailable("get index key", err)
		}

		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return e.Get(ctx, id)
}

// Update updates an existing entity.
// Returns ErrNotFound if the entity does not exist, or a duplicate
// ValidationError when a changed unique index value is already taken.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := e.prefix + id

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		// Get the old entity to clean up old indexes
		var oldEntity T
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domainerrors.ErrNotFound
		}
		if err != nil {
			return unavailable("get existing key", err)
		}

		err = item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &oldEntity); err != nil {
				return fmt.Errorf("failed to unmarshal old entity: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		// Old index keys survive the conflict check: an unchanged unique value
		// still points at this document and must not read as a collision.
		oldKeys := make(map[string]bool)
		for _, idx := range e.indexes {
			for _, idxKey := range e.indexKeys(idx, id, &oldEntity) {
				oldKeys[idxKey] = true
			}
		}

		if err := e.checkUniqueConflicts(txn, id, entity, oldKeys); err != nil {
			return err
		}

		// Delete old index keys
		for idxKey := range oldKeys {
			if err := txn.Delete([]byte(idxKey)); err != nil {
				return unavailable("delete old index key", err)
			}
		}

		// Set the primary key
		if err := txn.Set([]byte(key), data); err != nil {
			return unavailable("set key", err)
		}

		// Set new index keys
		for _, idx := range e.indexes {
			for _, idxKey := range e.indexKeys(idx, id, entity) {
				if err := txn.Set([]byte(idxKey), []byte(id)); err != nil {
					return unavailable("set index key", err)
				}
			}
		}

		return nil
	})
}

// Delete deletes an entity by ID along with its index entries.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := e.prefix + id

	return e.store.db.Update(func(txn *badger.Txn) error {
		// Get the entity to clean up indexes
		var entity T
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domainerrors.ErrNotFound
		}
		if err != nil {
			return unavailable("get key", err)
		}

		err = item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &entity); err != nil {
				return fmt.Errorf("failed to unmarshal entity: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		// Delete index keys
		for _, idx := range e.indexes {
			for _, idxKey := range e.indexKeys(idx, id, &entity) {
				if err := txn.Delete([]byte(idxKey)); err != nil {
					return unavailable("delete index key", err)
				}
			}
		}

		// Delete the primary key
		if err := txn.Delete([]byte(key)); err != nil {
			return unavailable("delete key", err)
		}

		return nil
	})
}

// List returns an iterator over all entities.
// The sequence is lazy, finite and restartable: each range over it opens a
// fresh read transaction.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		_ = e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(e.prefix)
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek([]byte(e.prefix)); it.ValidForPrefix([]byte(e.prefix)); it.Next() {
				// Check context cancellation
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				// Skip index keys
				key := string(it.Item().Key())
				if strings.HasPrefix(key[len(e.prefix):], "idx:") {
					continue
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})

				if err != nil {
					yield(nil, err)
					return err
				}

				if !yield(&entity, nil) {
					return nil // Consumer stopped early
				}
			}

			return nil
		})
	}
}

// ListByIndex returns an iterator over every entity whose index contains the
// given value. Works for unique indexes (zero or one result) and non-unique
// indexes alike.
func (e *Entity[T]) ListByIndex(ctx context.Context, indexName, value string) iter.Seq2[*T, error] {
	var target *Index[T]
	for i := range e.indexes {
		if e.indexes[i].name == indexName {
			target = &e.indexes[i]
			break
		}
	}

	return func(yield func(*T, error) bool) {
		if target == nil {
			yield(nil, fmt.Errorf("no index named %q on %s", indexName, e.prefix))
			return
		}

		lookupValue := value
		if target.lookupTransform != nil {
			lookupValue = target.lookupTransform(value)
		}

		// Unique: single exact key. Non-unique: prefix scan over value:id keys.
		scanPrefix := e.prefix + "idx:" + indexName + ":" + lookupValue
		if !target.unique {
			scanPrefix += ":"
		}

		var ids []string
		err := e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(scanPrefix)
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek([]byte(scanPrefix)); it.ValidForPrefix([]byte(scanPrefix)); it.Next() {
				if err := it.Item().Value(func(val []byte) error {
					ids = append(ids, string(val))
					return nil
				}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			yield(nil, unavailable("scan index", err))
			return
		}

		for _, id := range ids {
			if ctx.Err() != nil {
				yield(nil, ctx.Err())
				return
			}

			entity, err := e.Get(ctx, id)
			if err != nil {
				// Index entry pointing at a vanished document: surface it,
				// the store never silently drops inconsistencies.
				if !yield(nil, fmt.Errorf("index %s: dangling entry for %s: %w", indexName, id, err)) {
					return
				}
				continue
			}
			if !yield(entity, nil) {
				return
			}
		}
	}
}

// Count returns the number of entities in the collection.
func (e *Entity[T]) Count(ctx context.Context) (int, error) {
	count := 0
	for _, err := range e.List(ctx) {
		if err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}
