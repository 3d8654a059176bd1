package services

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenapp/haven-backend/internal/clients/gcp"
	"github.com/havenapp/haven-backend/internal/data/repos"
	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/apierr"
	"github.com/havenapp/haven-backend/internal/pkg/ctxutil"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

// LibraryUploadInput carries one module upload: metadata plus the file stream.
type LibraryUploadInput struct {
	Title       string
	Description string
	Category    string
	FileName    string
	ContentType string
	SizeBytes   int64
	File        io.Reader
}

type LibraryService interface {
	Upload(dbc dbctx.Context, in LibraryUploadInput) (*types.LibraryModule, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.LibraryModule, error)
	List(dbc dbctx.Context, category string, limit, offset int) ([]*types.LibraryModule, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type libraryService struct {
	db      *gorm.DB
	log     *logger.Logger
	modules repos.LibraryModuleRepo
	bucket  gcp.BucketService
}

// NewLibraryService accepts a nil bucket; uploads then fail with 503 until
// storage is configured, reads of existing rows keep working.
func NewLibraryService(db *gorm.DB, baseLog *logger.Logger, moduleRepo repos.LibraryModuleRepo, bucket gcp.BucketService) LibraryService {
	return &libraryService{
		db:      db,
		log:     baseLog.With("service", "LibraryService"),
		modules: moduleRepo,
		bucket:  bucket,
	}
}

func (s *libraryService) Upload(dbc dbctx.Context, in LibraryUploadInput) (*types.LibraryModule, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}
	if s.bucket == nil {
		return nil, apierr.New(http.StatusServiceUnavailable, "storage_unavailable", fmt.Errorf("file storage is not configured"))
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("title is required"))
	}
	if in.File == nil || strings.TrimSpace(in.FileName) == "" {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("file is required"))
	}

	id := uuid.New()
	key := moduleStorageKey(id, in.FileName)
	if err := s.bucket.UploadFile(dbc, key, in.File); err != nil {
		return nil, fmt.Errorf("upload module file: %w", err)
	}

	row := &types.LibraryModule{
		ID:          id,
		OwnerID:     rd.UserID,
		Title:       in.Title,
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		FileName:    filepath.Base(in.FileName),
		StorageKey:  key,
		ContentType: in.ContentType,
		SizeBytes:   in.SizeBytes,
		DownloadURL: s.bucket.GetPublicURL(key),
	}
	created, err := s.modules.Create(dbc, row)
	if err != nil {
		// The object is orphaned if the row never lands; reclaim it.
		if dErr := s.bucket.DeleteFile(dbc, key); dErr != nil {
			s.log.Warn("Failed to clean up module object after create error", "key", key, "error", dErr)
		}
		return nil, fmt.Errorf("create module row: %w", err)
	}
	return created, nil
}

func (s *libraryService) Get(dbc dbctx.Context, id uuid.UUID) (*types.LibraryModule, error) {
	module, err := s.modules.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load module: %w", err)
	}
	if module == nil {
		return nil, apierr.New(http.StatusNotFound, "module_not_found", fmt.Errorf("module not found"))
	}
	return module, nil
}

func (s *libraryService) List(dbc dbctx.Context, category string, limit, offset int) ([]*types.LibraryModule, error) {
	modules, err := s.modules.List(dbc, category, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

func (s *libraryService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}
	module, err := s.modules.GetByID(dbc, id)
	if err != nil {
		return fmt.Errorf("load module: %w", err)
	}
	if module == nil {
		return apierr.New(http.StatusNotFound, "module_not_found", fmt.Errorf("module not found"))
	}
	if module.OwnerID != rd.UserID {
		return apierr.New(http.StatusForbidden, "permission_denied", fmt.Errorf("only the owner can delete a module"))
	}

	if err := s.modules.Delete(dbc, module.ID); err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	// Object removal is best effort; the row is already gone.
	if s.bucket != nil && module.StorageKey != "" {
		if dErr := s.bucket.DeleteFile(dbc, module.StorageKey); dErr != nil {
			s.log.Warn("Failed to delete module object", "key", module.StorageKey, "error", dErr)
		}
	}
	return nil
}

func moduleStorageKey(id uuid.UUID, fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("library_module/%s/%d.%s", id.String(), time.Now().UnixNano(), ext)
}
