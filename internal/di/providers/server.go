package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/storefrontapp/storefront-server/internal/api"
	"github.com/storefrontapp/storefront-server/internal/backup"
	"github.com/storefrontapp/storefront-server/internal/config"
	"github.com/storefrontapp/storefront-server/internal/logger"
	"github.com/storefrontapp/storefront-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := api.Services{
		Users:      do.MustInvoke[*service.UserService](i),
		Categories: do.MustInvoke[*service.CategoryService](i),
		Tags:       do.MustInvoke[*service.TagService](i),
		Products:   do.MustInvoke[*service.ProductService](i),
		Posts:      do.MustInvoke[*service.PostService](i),
		Orders:     do.MustInvoke[*service.OrderService](i),
		Reviews:    do.MustInvoke[*service.ReviewService](i),
	}

	backupSvc := backup.NewService(storeHandle.Store, cfg.Data.BackupPath(), serverVersion, log.Logger)

	handler := api.NewServer(cfg, storeHandle.Store, services, indexHandle.Index, backupSvc, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
