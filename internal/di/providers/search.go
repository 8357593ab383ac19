package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/storefrontapp/storefront-server/internal/config"
	"github.com/storefrontapp/storefront-server/internal/logger"
	"github.com/storefrontapp/storefront-server/internal/search"
	"github.com/storefrontapp/storefront-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability. The
// inner index is nil when search is disabled.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	if h.Index == nil {
		return nil
	}
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Search.Enabled {
		log.Info("Search disabled by configuration")
		return &SearchIndexHandle{Index: nil}, nil
	}

	index, err := search.NewIndex(search.Options{
		DataPath: cfg.Data.SearchPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// TriggerSearchReindexIfNeeded backfills an empty index from the document
// store. Called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	if indexHandle.Index == nil {
		return
	}
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	storeHandle := do.MustInvoke[*StoreHandle](i)
	ctx := context.Background()
	products, _ := storeHandle.Products.Count(ctx)
	posts, _ := storeHandle.Posts.Count(ctx)
	if products == 0 && posts == 0 {
		return
	}

	log.Info("Search index is empty but documents exist, triggering initial reindex",
		"products", products,
		"posts", posts,
	)

	productService := do.MustInvoke[*service.ProductService](i)
	postService := do.MustInvoke[*service.PostService](i)

	go func() {
		reindexCtx := context.Background()
		if err := productService.Reindex(reindexCtx); err != nil {
			log.Error("Initial product reindex failed", "error", err)
		}
		if err := postService.Reindex(reindexCtx); err != nil {
			log.Error("Initial post reindex failed", "error", err)
		}
		count, _ := indexHandle.DocumentCount()
		log.Info("Initial search reindex completed", "documents", count)
	}()
}
