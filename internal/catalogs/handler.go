package catalogs

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/modavia/backend/internal/middleware"
	"github.com/modavia/backend/internal/models"
	"github.com/modavia/backend/internal/notifications"
	"github.com/modavia/backend/pkg/response"
	"github.com/modavia/backend/pkg/storage"
)

var validTypes = map[string]bool{
	models.CatalogTypePreorder:   true,
	models.CatalogTypeAvailable:  true,
	models.CatalogTypeRestock:    true,
	models.CatalogTypeStock:      true,
	models.CatalogTypeRemainders: true,
}

var validSeasons = map[string]bool{
	models.SeasonPreFallWinter:    true,
	models.SeasonPreSpringSummer:  true,
	models.SeasonMainFallWinter:   true,
	models.SeasonMainSpringSummer: true,
	models.SeasonOther:            true,
}

// CreateRequest is the body for POST /catalogs.
type CreateRequest struct {
	Name       string     `json:"name"`
	BrandID    uuid.UUID  `json:"brand_id" binding:"required"`
	Type       string     `json:"type" binding:"required"`
	Season     string     `json:"season" binding:"required"`
	Year       int        `json:"year" binding:"required"`
	OrderStart *time.Time `json:"order_start"`
	OrderEnd   *time.Time `json:"order_end"`
	DeliveryAt *time.Time `json:"delivery_at"`
	Conditions string     `json:"conditions"`
}

// UpdateRequest is the body for PATCH /catalogs/:id. Omitted fields are
// left untouched.
type UpdateRequest struct {
	Name       *string    `json:"name"`
	Type       *string    `json:"type"`
	Season     *string    `json:"season"`
	Year       *int       `json:"year"`
	OrderStart *time.Time `json:"order_start"`
	OrderEnd   *time.Time `json:"order_end"`
	DeliveryAt *time.Time `json:"delivery_at"`
	Conditions *string    `json:"conditions"`
}

// SetStatusRequest is the body for PATCH /catalogs/:id/status.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Handler handles catalog HTTP endpoints.
type Handler struct {
	repo      *Repository
	publisher *notifications.Publisher
	s3        *storage.S3
	logger    *zap.Logger
}

// NewHandler creates a catalogs handler. s3 may be nil when storage is disabled.
func NewHandler(repo *Repository, publisher *notifications.Publisher, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, publisher: publisher, s3: s3, logger: logger}
}

// Create handles POST /catalogs (admin only). Catalogs start in draft.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !validTypes[req.Type] {
		response.BadRequest(c, "invalid catalog type")
		return
	}
	if !validSeasons[req.Season] {
		response.BadRequest(c, "invalid catalog season")
		return
	}
	cat := &models.Catalog{
		Name:       req.Name,
		BrandID:    req.BrandID,
		Type:       req.Type,
		Season:     req.Season,
		Year:       req.Year,
		OrderStart: req.OrderStart,
		OrderEnd:   req.OrderEnd,
		DeliveryAt: req.DeliveryAt,
		Conditions: req.Conditions,
	}
	if err := h.repo.Create(c.Request.Context(), cat); err != nil {
		h.logger.Error("create catalog failed", zap.Error(err), zap.String("brand_id", req.BrandID.String()))
		response.Internal(c, "failed to create catalog")
		return
	}
	response.Created(c, cat)
}

// List handles GET /catalogs. Admins see everything with optional
// ?brand_id= and ?status= filters; other users see published catalogs of
// their linked brands.
func (h *Handler) List(c *gin.Context) {
	role, _ := c.MustGet(middleware.ContextUserRole).(string)
	if role != string(models.RoleAdmin) {
		userID, _ := c.MustGet(middleware.ContextUserID).(uuid.UUID)
		list, err := h.repo.ListPublishedForUser(c.Request.Context(), userID)
		if err != nil {
			response.Internal(c, "failed to list catalogs")
			return
		}
		response.OK(c, list)
		return
	}

	var brandID *uuid.UUID
	if s := c.Query("brand_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			response.BadRequest(c, "invalid brand_id filter")
			return
		}
		brandID = &id
	}
	var status *string
	if s := c.Query("status"); s != "" {
		if _, ok := transitions[s]; !ok {
			response.BadRequest(c, "invalid status filter")
			return
		}
		status = &s
	}
	list, err := h.repo.List(c.Request.Context(), brandID, status)
	if err != nil {
		response.Internal(c, "failed to list catalogs")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /catalogs/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid catalog id")
		return
	}
	detail, err := h.repo.GetDetail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrCatalogNotFound) {
			response.NotFound(c, "catalog not found")
			return
		}
		response.Internal(c, "failed to load catalog")
		return
	}
	response.OK(c, detail)
}

// Update handles PATCH /catalogs/:id (admin only). Rejected once archived.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid catalog id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Type != nil && !validTypes[*req.Type] {
		response.BadRequest(c, "invalid catalog type")
		return
	}
	if req.Season != nil && !validSeasons[*req.Season] {
		response.BadRequest(c, "invalid catalog season")
		return
	}
	cat, err := h.repo.Update(c.Request.Context(), id, UpdateParams{
		Name:       req.Name,
		Type:       req.Type,
		Season:     req.Season,
		Year:       req.Year,
		OrderStart: req.OrderStart,
		OrderEnd:   req.OrderEnd,
		DeliveryAt: req.DeliveryAt,
		Conditions: req.Conditions,
	})
	if err != nil {
		h.writeUpdateError(c, err)
		return
	}
	response.OK(c, cat)
}

// SetStatus handles PATCH /catalogs/:id/status (admin only). Applies the
// state machine; the draft-to-published edge fires the client fan-out.
// The status write commits before fan-out starts and is never rolled back
// by fan-out failures.
func (h *Handler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid catalog id")
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status required")
		return
	}

	cat, becamePublished, err := h.repo.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.writeUpdateError(c, err)
		return
	}

	var report *notifications.Report
	if becamePublished && h.publisher != nil {
		report, err = h.publisher.NotifyCatalogPublication(c.Request.Context(), cat.ID, cat.BrandID)
		if err != nil {
			// Status change is committed; surface the fan-out problem
			// without pretending the transition failed.
			h.logger.Error("publication fan-out failed", zap.Error(err), zap.String("catalog_id", cat.ID.String()))
		}
	}

	resp := gin.H{"catalog": cat}
	if report != nil {
		resp["fanout"] = report
	}
	response.OK(c, resp)
}

func (h *Handler) writeUpdateError(c *gin.Context, err error) {
	var invalid *InvalidTransitionError
	switch {
	case errors.Is(err, ErrCatalogNotFound):
		response.NotFound(c, "catalog not found")
	case errors.Is(err, ErrCatalogArchived):
		response.BadRequest(c, "catalog is archived and cannot be modified")
	case errors.Is(err, ErrUnknownStatus):
		response.BadRequest(c, "unknown catalog status")
	case errors.As(err, &invalid):
		response.BadRequest(c, invalid.Error())
	default:
		h.logger.Error("catalog update failed", zap.Error(err))
		response.Internal(c, "failed to update catalog")
	}
}

// UploadCover handles POST /catalogs/:id/cover (admin only).
func (h *Handler) UploadCover(c *gin.Context) {
	if h.s3 == nil {
		response.Internal(c, "storage not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid catalog id")
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

	key := storage.CoverKey(id.String(), file.Filename)
	contentType := storage.ContentTypeForFilename(file.Filename)
	if _, err := h.s3.Upload(c.Request.Context(), key, contentType, rc, file.Size); err != nil {
		h.logger.Error("S3 upload failed", zap.Error(err), zap.String("catalog_id", id.String()), zap.String("key", key))
		response.Internal(c, "failed to upload file to storage")
		return
	}
	if err := h.repo.SetCoverKey(c.Request.Context(), id, key); err != nil {
		h.writeUpdateError(c, err)
		return
	}
	response.OK(c, gin.H{"cover_key": key})
}

// CoverURL handles GET /catalogs/:id/cover-url. Returns a presigned
// download URL for the cover image.
func (h *Handler) CoverURL(c *gin.Context) {
	if h.s3 == nil {
		response.Internal(c, "storage not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid catalog id")
		return
	}
	cat, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrCatalogNotFound) {
			response.NotFound(c, "catalog not found")
			return
		}
		response.Internal(c, "failed to load catalog")
		return
	}
	if cat.CoverKey == "" {
		response.NotFound(c, "catalog has no cover image")
		return
	}
	url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(), cat.CoverKey, h.s3.PresignExpire())
	if err != nil {
		h.logger.Error("presign cover failed", zap.Error(err), zap.String("catalog_id", id.String()))
		response.Internal(c, "failed to generate download url")
		return
	}
	response.OK(c, gin.H{"url": url, "expires_in_minutes": int(h.s3.PresignExpire().Minutes())})
}
