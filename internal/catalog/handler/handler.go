package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travel_backoffice/internal/catalog/service"
	"travel_backoffice/internal/catalog/transport"
	"travel_backoffice/platform/httpkit"
	"travel_backoffice/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for catalog groups.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new catalog handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListGroups handles GET /api/v1/catalogs
func (h *Handler) ListGroups(c *gin.Context) {
	result, err := h.svc.Groups(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetGroup handles GET /api/v1/catalogs/:group
func (h *Handler) GetGroup(c *gin.Context) {
	result, err := h.svc.ListGroup(c.Request.Context(), c.Param("group"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpsertEntry handles PUT /api/v1/catalogs/:group/:value
func (h *Handler) UpsertEntry(c *gin.Context) {
	var req transport.UpsertEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Upsert(c.Request.Context(), c.Param("group"), c.Param("value"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteEntry handles DELETE /api/v1/catalogs/:group/:value
func (h *Handler) DeleteEntry(c *gin.Context) {
	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), c.Param("group"), c.Param("value"))) {
		return
	}
	c.Status(http.StatusNoContent)
}
