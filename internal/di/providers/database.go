package providers

import (
	"github.com/samber/do/v2"

	"github.com/storefrontapp/storefront-server/internal/audit"
	"github.com/storefrontapp/storefront-server/internal/config"
	"github.com/storefrontapp/storefront-server/internal/logger"
	"github.com/storefrontapp/storefront-server/internal/store"
)

// StoreHandle wraps the document store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the document store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := cfg.Data.DocumentPath()
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Document store initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// AuditLogHandle wraps the audit log with shutdown capability.
type AuditLogHandle struct {
	*audit.Log
}

// Shutdown implements do.Shutdownable.
func (h *AuditLogHandle) Shutdown() error {
	if h.Log == nil {
		return nil
	}
	return h.Close()
}

// ProvideAuditLog provides the SQLite-backed audit trail.
func ProvideAuditLog(i do.Injector) (*AuditLogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	auditLog, err := audit.Open(cfg.Data.AuditPath(), log.Logger)
	if err != nil {
		// The audit trail is best-effort; the server runs without one.
		log.Warn("Audit log unavailable", "path", cfg.Data.AuditPath(), "error", err)
		return &AuditLogHandle{Log: nil}, nil
	}

	log.Info("Audit log opened", "path", cfg.Data.AuditPath())

	return &AuditLogHandle{Log: auditLog}, nil
}
