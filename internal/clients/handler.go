package clients

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/modavia/backend/internal/middleware"
	"github.com/modavia/backend/internal/models"
	"github.com/modavia/backend/pkg/response"
)

// CreateRequest is the body for POST /clients.
type CreateRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	VATNumber   string `json:"vat_number"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

// SetStatusRequest is the body for PATCH /clients/:id/status.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AddBrandRequest is the body for POST /clients/:id/brands.
type AddBrandRequest struct {
	BrandID uuid.UUID `json:"brand_id" binding:"required"`
}

var validStatuses = map[string]bool{
	models.ClientStatusPending:  true,
	models.ClientStatusActive:   true,
	models.ClientStatusInactive: true,
	models.ClientStatusDeleted:  true,
}

// Handler handles client HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a clients handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /clients. The authenticated user becomes the owner;
// the client starts in pending_activation until an admin activates it.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	cl := &models.Client{
		UserID:      userID,
		CompanyName: req.CompanyName,
		VATNumber:   req.VATNumber,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
	}
	if err := h.repo.Create(c.Request.Context(), cl); err != nil {
		h.logger.Error("create client failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to create client")
		return
	}
	response.Created(c, cl)
}

// ListMine handles GET /clients/mine. Returns the caller's own client
// accounts regardless of status.
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	list, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list clients")
		return
	}
	response.OK(c, list)
}

// List handles GET /clients (admin only), with optional ?status= filter.
func (h *Handler) List(c *gin.Context) {
	var status *string
	if s := c.Query("status"); s != "" {
		if !validStatuses[s] {
			response.BadRequest(c, "invalid status filter")
			return
		}
		status = &s
	}
	list, err := h.repo.List(c.Request.Context(), status)
	if err != nil {
		response.Internal(c, "failed to list clients")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /clients/:id. Admins see any client; other users
// only their own.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}
	cl, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrClientNotFound) {
			response.NotFound(c, "client not found")
			return
		}
		response.Internal(c, "failed to load client")
		return
	}
	role, _ := c.MustGet(middleware.ContextUserRole).(string)
	userID, _ := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if role != string(models.RoleAdmin) && cl.UserID != userID {
		response.Forbidden(c, "not your client account")
		return
	}
	response.OK(c, cl)
}

// SetStatus handles PATCH /clients/:id/status (admin only).
func (h *Handler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status required")
		return
	}
	if !validStatuses[req.Status] {
		response.BadRequest(c, "invalid status")
		return
	}
	if err := h.repo.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		if errors.Is(err, ErrClientNotFound) {
			response.NotFound(c, "client not found")
			return
		}
		response.Internal(c, "failed to update client status")
		return
	}
	response.OK(c, gin.H{"id": id, "status": req.Status})
}

// AddBrand handles POST /clients/:id/brands (admin only).
func (h *Handler) AddBrand(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}
	var req AddBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "brand_id required")
		return
	}
	if err := h.repo.AddBrand(c.Request.Context(), id, req.BrandID); err != nil {
		h.logger.Error("add client brand failed", zap.Error(err), zap.String("client_id", id.String()))
		response.Internal(c, "failed to link brand")
		return
	}
	response.OK(c, gin.H{"client_id": id, "brand_id": req.BrandID})
}

// RemoveBrand handles DELETE /clients/:id/brands/:brandId (admin only).
func (h *Handler) RemoveBrand(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}
	brandID, err := uuid.Parse(c.Param("brandId"))
	if err != nil {
		response.BadRequest(c, "invalid brand id")
		return
	}
	if err := h.repo.RemoveBrand(c.Request.Context(), id, brandID); err != nil {
		response.Internal(c, "failed to unlink brand")
		return
	}
	response.NoContent(c)
}

// ListBrands handles GET /clients/:id/brands.
func (h *Handler) ListBrands(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}
	list, err := h.repo.ListBrands(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to list client brands")
		return
	}
	response.OK(c, list)
}
