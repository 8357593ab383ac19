// Package backup writes and restores archives of the document store. An
// archive is a zip holding manifest.json plus one JSON-lines file per entity
// type. The search index is not archived; it is rebuilt from the documents.
package backup

import (
	"archive/zip"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/storefrontapp/storefront-server/internal/store"
)

// Service creates and lists backup archives.
type Service struct {
	store     *store.Store
	backupDir string
	version   string
	logger    *slog.Logger
}

// NewService creates a backup service writing archives under backupDir.
func NewService(st *store.Store, backupDir, version string, logger *slog.Logger) *Service {
	return &Service{
		store:     st,
		backupDir: backupDir,
		version:   version,
		logger:    logger,
	}
}

// Create writes a new archive and returns what it contains.
func (s *Service) Create(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	start := time.Now()
	outputPath := filepath.Join(s.backupDir,
		fmt.Sprintf("backup-%s.storefront.zip", start.Format("2006-01-02-150405")))

	s.logger.Info("creating backup", "output", outputPath)

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	counts := map[string]int{}

	if err := s.writeEntities(ctx, zw, counts); err != nil {
		zw.Close()
		os.Remove(outputPath)
		return nil, err
	}

	manifest := Manifest{
		Version:       manifestVersion,
		ServerVersion: s.version,
		CreatedAt:     start,
		Counts:        counts,
	}
	if err := writeJSONFile(zw, "manifest.json", manifest); err != nil {
		zw.Close()
		os.Remove(outputPath)
		return nil, err
	}

	if err := zw.Close(); err != nil {
		os.Remove(outputPath)
		return nil, fmt.Errorf("finish archive: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	s.logger.Info("backup complete",
		"output", outputPath,
		"size", stat.Size(),
		"duration", time.Since(start))

	return &Result{
		Path:     outputPath,
		Size:     stat.Size(),
		Counts:   counts,
		Duration: time.Since(start),
	}, nil
}

func (s *Service) writeEntities(ctx context.Context, zw *zip.Writer, counts map[string]int) error {
	var err error
	if counts["users"], err = writeEntityFile(ctx, zw, "users.jsonl", s.store.Users); err != nil {
		return err
	}
	if counts["categories"], err = writeEntityFile(ctx, zw, "categories.jsonl", s.store.Categories); err != nil {
		return err
	}
	if counts["tags"], err = writeEntityFile(ctx, zw, "tags.jsonl", s.store.Tags); err != nil {
		return err
	}
	if counts["products"], err = writeEntityFile(ctx, zw, "products.jsonl", s.store.Products); err != nil {
		return err
	}
	if counts["posts"], err = writeEntityFile(ctx, zw, "posts.jsonl", s.store.Posts); err != nil {
		return err
	}
	if counts["orders"], err = writeEntityFile(ctx, zw, "orders.jsonl", s.store.Orders); err != nil {
		return err
	}
	if counts["reviews"], err = writeEntityFile(ctx, zw, "reviews.jsonl", s.store.Reviews); err != nil {
		return err
	}
	return nil
}

// writeEntityFile streams every document of one entity into the archive, one
// JSON object per line.
func writeEntityFile[T any](ctx context.Context, zw *zip.Writer, name string, e *store.Entity[T]) (int, error) {
	w, err := zw.Create(name)
	if err != nil {
		return 0, err
	}

	count := 0
	for doc, err := range e.List(ctx) {
		if err != nil {
			return count, fmt.Errorf("export %s: %w", name, err)
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return count, fmt.Errorf("marshal %s: %w", name, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func writeJSONFile(zw *zip.Writer, name string, v any) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	return json.MarshalWrite(w, v)
}

// List returns the archives under the backup directory, newest first.
func (s *Service) List() ([]Info, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".storefront.zip") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Path:      filepath.Join(s.backupDir, entry.Name()),
			Size:      fi.Size(),
			CreatedAt: fi.ModTime(),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].CreatedAt.After(infos[j].CreatedAt) })
	return infos, nil
}

// readManifest pulls manifest.json out of an open archive.
func readManifest(r *zip.ReadCloser) (*Manifest, error) {
	for _, f := range r.File {
		if f.Name != "manifest.json" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, err
		}
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse manifest: %w", err)
		}
		return &m, nil
	}
	return nil, fmt.Errorf("archive has no manifest.json")
}
