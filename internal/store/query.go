package store

import (
	"iter"
	"slices"
)

// Filter returns a sequence yielding only the entities that match keep.
// Errors pass through untouched.
func Filter[T any](seq iter.Seq2[*T, error], keep func(*T) bool) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		for entity, err := range seq {
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			if !keep(entity) {
				continue
			}
			if !yield(entity, nil) {
				return
			}
		}
	}
}

// Collect drains a sequence into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[*T, error]) ([]*T, error) {
	var out []*T
	for entity, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// CollectPage drains a sequence, sorts the results and cuts a page out of
// them. offset and limit follow the usual slice conventions; a limit of zero
// means no cap.
func CollectPage[T any](seq iter.Seq2[*T, error], less func(a, b *T) int, offset, limit int) ([]*T, int, error) {
	all, err := Collect(seq)
	if err != nil {
		return nil, 0, err
	}
	if less != nil {
		slices.SortStableFunc(all, less)
	}

	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []*T{}, total, nil
	}
	page := all[offset:]
	if limit > 0 && limit < len(page) {
		page = page[:limit]
	}
	return page, total, nil
}
