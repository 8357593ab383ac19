package backup

import (
	"archive/zip"
	"bufio"
	"context"
	"encoding/json/v2"
	"fmt"

	"github.com/storefrontapp/storefront-server/internal/errors"
	"github.com/storefrontapp/storefront-server/internal/store"
)

// Restore reads an archive and inserts every document that does not already
// exist. Existing documents are left untouched; the caller decides whether to
// restore into a fresh data directory for a full replacement.
func (s *Service) Restore(ctx context.Context, archivePath string) (*RestoreResult, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	manifest, err := readManifest(r)
	if err != nil {
		return nil, err
	}
	if manifest.Version > manifestVersion {
		return nil, fmt.Errorf("archive version %d is newer than this server supports", manifest.Version)
	}

	s.logger.Info("restoring backup",
		"archive", archivePath,
		"created_at", manifest.CreatedAt,
		"server_version", manifest.ServerVersion)

	result := &RestoreResult{Counts: map[string]int{}}
	for _, f := range r.File {
		var n, skipped int
		var err error
		switch f.Name {
		case "users.jsonl":
			n, skipped, err = restoreEntityFile(ctx, f, s.store.Users)
		case "categories.jsonl":
			n, skipped, err = restoreEntityFile(ctx, f, s.store.Categories)
		case "tags.jsonl":
			n, skipped, err = restoreEntityFile(ctx, f, s.store.Tags)
		case "products.jsonl":
			n, skipped, err = restoreEntityFile(ctx, f, s.store.Products)
		case "posts.jsonl":
			n, skipped, err = restoreEntityFile(ctx, f, s.store.Posts)
		case "orders.jsonl":
			n, skipped, err = restoreEntityFile(ctx, f, s.store.Orders)
		case "reviews.jsonl":
			n, skipped, err = restoreEntityFile(ctx, f, s.store.Reviews)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("restore %s: %w", f.Name, err)
		}
		result.Counts[f.Name[:len(f.Name)-len(".jsonl")]] = n
		result.Skipped += skipped
	}

	s.logger.Info("restore complete", "skipped", result.Skipped)
	return result, nil
}

// identifiable matches the Base embed every root entity carries.
type identifiable interface {
	DocumentID() string
}

func restoreEntityFile[T any](ctx context.Context, f *zip.File, e *store.Entity[T]) (restored, skipped int, err error) {
	rc, err := f.Open()
	if err != nil {
		return 0, 0, err
	}
	defer rc.Close()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		doc := new(T)
		if err := json.Unmarshal(line, doc); err != nil {
			return restored, skipped, err
		}

		ident, ok := any(doc).(identifiable)
		if !ok {
			return restored, skipped, fmt.Errorf("document type has no ID")
		}

		createErr := e.Create(ctx, ident.DocumentID(), doc)
		switch {
		case createErr == nil:
			restored++
		// Duplicate IDs and unique-index collisions mean the document (or a
		// competitor for its slug or email) is already present.
		case errors.Is(createErr, errors.ErrValidation),
			errors.Is(createErr, errors.ErrConflict),
			errors.Is(createErr, errors.ErrAlreadyExists):
			skipped++
		default:
			return restored, skipped, createErr
		}
	}
	return restored, skipped, scanner.Err()
}
