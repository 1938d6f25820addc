package brands

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/modavia/backend/pkg/response"
	"github.com/modavia/backend/pkg/storage"

	"github.com/modavia/backend/internal/models"
)

// CreateRequest is the body for POST /brands.
type CreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateRequest is the body for PATCH /brands/:id.
type UpdateRequest struct {
	Description string `json:"description"`
}

// Handler handles brand HTTP endpoints.
type Handler struct {
	repo   *Repository
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates a brands handler. s3 may be nil when storage is disabled.
func NewHandler(repo *Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, s3: s3, logger: logger}
}

// Create handles POST /brands (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	b := &models.Brand{Name: req.Name, Description: req.Description}
	if err := h.repo.Create(c.Request.Context(), b); err != nil {
		h.logger.Error("create brand failed", zap.Error(err), zap.String("name", req.Name))
		response.Conflict(c, "brand name already exists or is invalid")
		return
	}
	response.Created(c, b)
}

// List handles GET /brands.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list brands")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /brands/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid brand id")
		return
	}
	b, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrBrandNotFound) {
			response.NotFound(c, "brand not found")
			return
		}
		response.Internal(c, "failed to load brand")
		return
	}
	response.OK(c, b)
}

// Update handles PATCH /brands/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid brand id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.Description); err != nil {
		response.Internal(c, "failed to update brand")
		return
	}
	response.OK(c, gin.H{"id": id})
}

// UploadLogo handles POST /brands/:id/logo (admin only). Accepts a
// multipart image and stores it in the media bucket.
func (h *Handler) UploadLogo(c *gin.Context) {
	if h.s3 == nil {
		response.Internal(c, "storage not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid brand id")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "brand not found")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file (form field: file)")
		return
	}
	if file.Size > storage.MaxImageFileSize {
		response.BadRequest(c, "file size exceeds 5MB limit")
		return
	}
	if !storage.ValidateImageFileType(file.Header.Get("Content-Type"), file.Filename) {
		response.BadRequest(c, "invalid file type: only jpg, png and webp allowed")
		return
	}

	rc, err := file.Open()
	if err != nil {
		h.logger.Error("open uploaded file failed", zap.Error(err))
		response.Internal(c, "failed to read file")
		return
	}
	defer rc.Close()

	key := storage.LogoKey(id.String(), file.Filename)
	contentType := storage.ContentTypeForFilename(file.Filename)
	if _, err := h.s3.Upload(c.Request.Context(), key, contentType, rc, file.Size); err != nil {
		h.logger.Error("S3 upload failed", zap.Error(err), zap.String("brand_id", id.String()), zap.String("key", key))
		response.Internal(c, "failed to upload file to storage")
		return
	}
	if err := h.repo.SetLogoKey(c.Request.Context(), id, key); err != nil {
		response.Internal(c, "failed to store logo reference")
		return
	}
	response.OK(c, gin.H{"logo_key": key})
}
