package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storefrontapp/storefront-server/internal/backup"
	"github.com/storefrontapp/storefront-server/internal/errors"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createBackup",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/backups",
		Summary:       "Create backup",
		Description:   "Writes an archive of every document to the backup directory",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBackups",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/backups",
		Summary:     "List backups",
		Tags:        []string{"Admin"},
	}, s.handleListBackups)

	huma.Register(s.api, huma.Operation{
		OperationID: "restoreBackup",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/backups/restore",
		Summary:     "Restore backup",
		Description: "Inserts documents from an archive; documents already present are skipped",
		Tags:        []string{"Admin"},
	}, s.handleRestoreBackup)
}

// === DTOs ===

// BackupOutput wraps a backup result for Huma.
type BackupOutput struct {
	Body backup.Result
}

// ListBackupsOutput wraps the archive list for Huma.
type ListBackupsOutput struct {
	Body struct {
		Backups []backup.Info `json:"backups" doc:"Archives on disk, newest first"`
	}
}

// RestoreBackupInput names the archive to restore.
type RestoreBackupInput struct {
	Body struct {
		Path string `json:"path" doc:"Archive path as returned by list backups"`
	}
}

// RestoreBackupOutput wraps a restore result for Huma.
type RestoreBackupOutput struct {
	Body backup.RestoreResult
}

// === Handlers ===

func (s *Server) handleCreateBackup(ctx context.Context, _ *struct{}) (*BackupOutput, error) {
	if s.backups == nil {
		return nil, errors.Unavailable("backups are not configured")
	}
	result, err := s.backups.Create(ctx)
	if err != nil {
		return nil, err
	}
	return &BackupOutput{Body: *result}, nil
}

func (s *Server) handleListBackups(ctx context.Context, _ *struct{}) (*ListBackupsOutput, error) {
	if s.backups == nil {
		return nil, errors.Unavailable("backups are not configured")
	}
	infos, err := s.backups.List()
	if err != nil {
		return nil, err
	}
	out := &ListBackupsOutput{}
	out.Body.Backups = infos
	return out, nil
}

func (s *Server) handleRestoreBackup(ctx context.Context, input *RestoreBackupInput) (*RestoreBackupOutput, error) {
	if s.backups == nil {
		return nil, errors.Unavailable("backups are not configured")
	}
	result, err := s.backups.Restore(ctx, input.Body.Path)
	if err != nil {
		return nil, err
	}
	return &RestoreBackupOutput{Body: *result}, nil
}
