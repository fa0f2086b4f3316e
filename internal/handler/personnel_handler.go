package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-fleet-api/internal/dto"
	"github.com/noah-isme/campus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/campus-fleet-api/pkg/errors"
	"github.com/noah-isme/campus-fleet-api/pkg/response"
)

type personnelService interface {
	Role() models.PersonnelRole
	List(ctx context.Context) ([]models.PersonnelDetail, error)
	Get(ctx context.Context, id string) (*models.Personnel, error)
	Create(ctx context.Context, req dto.CreatePersonnelRequest) (*models.Personnel, error)
	Update(ctx context.Context, id string, req dto.UpdatePersonnelRequest) (*models.Personnel, error)
	Delete(ctx context.Context, id string) error
}

// PersonnelHandler manages one personnel registry. The router mounts one
// instance for drivers and one for conductors.
type PersonnelHandler struct {
	service personnelService
}

// NewPersonnelHandler builds a handler over the given registry.
func NewPersonnelHandler(service personnelService) *PersonnelHandler {
	return &PersonnelHandler{service: service}
}

// List godoc
// @Summary List drivers or conductors with their assigned bus
// @Tags Personnel
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /drivers [get]
// @Router /conductors [get]
func (h *PersonnelHandler) List(c *gin.Context) {
	people, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, people, nil, map[string]interface{}{"role": h.service.Role()})
}

// Get godoc
// @Summary Get a driver or conductor
// @Tags Personnel
// @Produce json
// @Param id path string true "Personnel ID"
// @Success 200 {object} response.Envelope
// @Router /drivers/{id} [get]
// @Router /conductors/{id} [get]
func (h *PersonnelHandler) Get(c *gin.Context) {
	person, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, person)
}

// Create godoc
// @Summary Register a driver or conductor
// @Tags Personnel
// @Accept json
// @Produce json
// @Param payload body dto.CreatePersonnelRequest true "Personnel payload"
// @Success 201 {object} response.Envelope
// @Router /drivers [post]
// @Router /conductors [post]
func (h *PersonnelHandler) Create(c *gin.Context) {
	var req dto.CreatePersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid personnel payload"))
		return
	}
	person, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, person)
}

// Update godoc
// @Summary Update a driver or conductor
// @Tags Personnel
// @Accept json
// @Produce json
// @Param id path string true "Personnel ID"
// @Param payload body dto.UpdatePersonnelRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /drivers/{id} [patch]
// @Router /conductors/{id} [patch]
func (h *PersonnelHandler) Update(c *gin.Context) {
	var req dto.UpdatePersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid personnel payload"))
		return
	}
	person, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, person)
}

// Delete godoc
// @Summary Delete a driver or conductor
// @Description An assigned bus loses the slot and returns to the depot.
// @Tags Personnel
// @Param id path string true "Personnel ID"
// @Success 204
// @Router /drivers/{id} [delete]
// @Router /conductors/{id} [delete]
func (h *PersonnelHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
