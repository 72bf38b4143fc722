package files

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aetherdesk-ai/aetherdesk-backend/internal/workspace"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	pkgerrors "github.com/aetherdesk-ai/aetherdesk-backend/pkg/errors"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/storage/gcs"
)

var allowedContentTypes = map[string]struct{}{
	"image/png":       {},
	"image/jpeg":      {},
	"image/webp":      {},
	"image/gif":       {},
	"application/pdf": {},
	"text/plain":      {},
	"text/csv":        {},
}

type storageClient interface {
	Upload(ctx context.Context, object, contentType string, body io.Reader) (*gcs.ObjectInfo, error)
	ListObjects(ctx context.Context, prefix string) ([]gcs.ObjectInfo, error)
}

type workspaceResolver interface {
	Resolve(ctx context.Context, user *models.User) workspace.TeamContext
}

// UploadInput carries one incoming file.
type UploadInput struct {
	FileName    string
	ContentType string
	SizeBytes   int64
	Body        io.Reader
}

// FileDTO describes a stored file belonging to the caller.
type FileDTO struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
	URL         string    `json:"url,omitempty"`
}

// Service stores and lists files under a per-user object prefix.
type Service interface {
	Upload(ctx context.Context, user *models.User, input UploadInput) (*FileDTO, error)
	List(ctx context.Context, user *models.User) ([]FileDTO, error)
}

type service struct {
	storage   storageClient
	resolver  workspaceResolver
	maxUpload int64
	logg      *logger.Logger
}

// NewService builds the file service over the provided object store.
func NewService(storage storageClient, resolver workspaceResolver, maxUploadBytes int64, logg *logger.Logger) (Service, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage client required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("workspace resolver required")
	}
	if maxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		storage:   storage,
		resolver:  resolver,
		maxUpload: maxUploadBytes,
		logg:      logg,
	}, nil
}

// Upload stores the file under the caller's prefix. Workspace members need
// the upload grant; owners and standalone accounts upload freely.
func (s *service) Upload(ctx context.Context, user *models.User, input UploadInput) (*FileDTO, error) {
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := s.checkUploadGrant(ctx, user); err != nil {
		return nil, err
	}

	name := sanitizeFileName(input.FileName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	contentType := strings.TrimSpace(strings.ToLower(input.ContentType))
	if _, ok := allowedContentTypes[contentType]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("content type %q is not allowed", input.ContentType))
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if input.SizeBytes > s.maxUpload {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds the %d byte limit", s.maxUpload))
	}

	object := path.Join(userPrefix(user.ID), uuid.NewString()+"-"+name)
	info, err := s.storage.Upload(ctx, object, contentType, io.LimitReader(input.Body, s.maxUpload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store file")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_id": user.ID.String(),
		"object":  info.Name,
	})
	s.logg.Info(logCtx, "file uploaded")

	dto := dtoFromObject(*info, user.ID)
	return &dto, nil
}

// List returns the caller's stored files, and never anyone else's: the
// listing prefix is derived from the authenticated user id alone.
func (s *service) List(ctx context.Context, user *models.User) ([]FileDTO, error) {
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	objects, err := s.storage.ListObjects(ctx, userPrefix(user.ID)+"/")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list files")
	}

	out := make([]FileDTO, 0, len(objects))
	for _, obj := range objects {
		out = append(out, dtoFromObject(obj, user.ID))
	}
	return out, nil
}

func (s *service) checkUploadGrant(ctx context.Context, user *models.User) error {
	tc := s.resolver.Resolve(ctx, user)
	if tc.OrganizationID == nil || tc.IsOwner {
		return nil
	}
	if !tc.Permissions.UploadFiles {
		return pkgerrors.New(pkgerrors.CodeForbidden, "your role cannot upload files")
	}
	return nil
}

func userPrefix(userID uuid.UUID) string {
	return "users/" + userID.String()
}

func dtoFromObject(obj gcs.ObjectInfo, userID uuid.UUID) FileDTO {
	name := strings.TrimPrefix(obj.Name, userPrefix(userID)+"/")
	// Strip the uniquifying uuid prefix for display.
	if len(name) > 37 && name[36] == '-' {
		if _, err := uuid.Parse(name[:36]); err == nil {
			name = name[37:]
		}
	}
	return FileDTO{
		Name:        name,
		Path:        obj.Name,
		SizeBytes:   obj.SizeBytes,
		ContentType: obj.ContentType,
		UploadedAt:  obj.UpdatedAt,
		URL:         obj.MediaLink,
	}
}

func sanitizeFileName(raw string) string {
	name := path.Base(strings.TrimSpace(raw))
	if name == "." || name == "/" {
		return ""
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-.")
}
