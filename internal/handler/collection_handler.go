package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-admin-api/internal/dto"
	"github.com/noah-isme/coaching-admin-api/internal/models"
	appErrors "github.com/noah-isme/coaching-admin-api/pkg/errors"
	"github.com/noah-isme/coaching-admin-api/pkg/response"
)

type collectionManager interface {
	Create(ctx context.Context, req dto.CreateCollectionRequest, actorID string) (*models.Collection, error)
	Approve(ctx context.Context, id, actorID string) (*models.Collection, error)
}

// CollectionHandler records fee collections.
type CollectionHandler struct {
	service collectionManager
}

// NewCollectionHandler constructs the collection handler.
func NewCollectionHandler(svc collectionManager) *CollectionHandler {
	return &CollectionHandler{service: svc}
}

// Create godoc
// @Summary Record a fee collection
// @Tags Collections
// @Accept json
// @Produce json
// @Param payload body dto.CreateCollectionRequest true "Collection"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /collections [post]
func (h *CollectionHandler) Create(c *gin.Context) {
	var req dto.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	col, err := h.service.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, col)
}

// Approve godoc
// @Summary Approve a pending collection
// @Tags Collections
// @Produce json
// @Param id path string true "Collection ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /collections/{id}/approve [post]
func (h *CollectionHandler) Approve(c *gin.Context) {
	col, err := h.service.Approve(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, col, nil)
}
