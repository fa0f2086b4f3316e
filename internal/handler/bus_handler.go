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

type busService interface {
	List(ctx context.Context, query dto.BusListQuery) ([]models.BusDetail, error)
	Get(ctx context.Context, id string) (*models.BusDetail, error)
	Create(ctx context.Context, req dto.CreateBusRequest) (*models.BusDetail, error)
	Update(ctx context.Context, id string, req dto.UpdateBusRequest) (*models.BusDetail, error)
	Delete(ctx context.Context, id string) error
}

type assignmentService interface {
	AssignPersonnel(ctx context.Context, req dto.AssignPersonnelRequest) (*models.BusDetail, error)
	AssignDriver(ctx context.Context, busID string, driverID dto.OptionalID) (*models.BusDetail, error)
	AssignConductor(ctx context.Context, busID string, conductorID dto.OptionalID) (*models.BusDetail, error)
}

// BusHandler exposes the bus registry and personnel assignment endpoints.
type BusHandler struct {
	buses       busService
	assignments assignmentService
}

// NewBusHandler builds a bus handler.
func NewBusHandler(buses busService, assignments assignmentService) *BusHandler {
	return &BusHandler{buses: buses, assignments: assignments}
}

// List godoc
// @Summary List buses
// @Tags Buses
// @Produce json
// @Param status query string false "in-transit, maintenance or idle"
// @Param routeId query string false "Route ID filter"
// @Param q query string false "Search bus or registration number"
// @Success 200 {object} response.Envelope
// @Router /buses [get]
func (h *BusHandler) List(c *gin.Context) {
	var query dto.BusListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bus filter"))
		return
	}
	buses, err := h.buses.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, buses, nil, map[string]interface{}{"count": len(buses)})
}

// Get godoc
// @Summary Get a bus with its crew and route
// @Tags Buses
// @Produce json
// @Param id path string true "Bus ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /buses/{id} [get]
func (h *BusHandler) Get(c *gin.Context) {
	bus, err := h.buses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, bus)
}

// Create godoc
// @Summary Register a bus
// @Tags Buses
// @Accept json
// @Produce json
// @Param payload body dto.CreateBusRequest true "Bus payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /buses [post]
func (h *BusHandler) Create(c *gin.Context) {
	var req dto.CreateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bus payload"))
		return
	}
	bus, err := h.buses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, bus)
}

// Update godoc
// @Summary Update bus details
// @Tags Buses
// @Accept json
// @Produce json
// @Param id path string true "Bus ID"
// @Param payload body dto.UpdateBusRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /buses/{id} [patch]
func (h *BusHandler) Update(c *gin.Context) {
	var req dto.UpdateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bus payload"))
		return
	}
	bus, err := h.buses.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, bus)
}

// Delete godoc
// @Summary Delete a bus
// @Description Unbinds its crew and removes its location history.
// @Tags Buses
// @Param id path string true "Bus ID"
// @Success 204
// @Router /buses/{id} [delete]
func (h *BusHandler) Delete(c *gin.Context) {
	if err := h.buses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignPersonnel godoc
// @Summary Assign or unassign the driver and conductor of a bus
// @Tags Buses
// @Accept json
// @Produce json
// @Param payload body dto.AssignPersonnelRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /buses/assign-personnel [post]
func (h *BusHandler) AssignPersonnel(c *gin.Context) {
	var req dto.AssignPersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	bus, err := h.assignments.AssignPersonnel(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, bus)
}

// AssignDriver godoc
// @Summary Set or clear the driver of a bus
// @Tags Buses
// @Accept json
// @Produce json
// @Param id path string true "Bus ID"
// @Param payload body dto.AssignSlotRequest true "Driver ID or null"
// @Success 200 {object} response.Envelope
// @Router /buses/{id}/driver [patch]
func (h *BusHandler) AssignDriver(c *gin.Context) {
	h.assignSlot(c, h.assignments.AssignDriver)
}

// AssignConductor godoc
// @Summary Set or clear the conductor of a bus
// @Tags Buses
// @Accept json
// @Produce json
// @Param id path string true "Bus ID"
// @Param payload body dto.AssignSlotRequest true "Conductor ID or null"
// @Success 200 {object} response.Envelope
// @Router /buses/{id}/conductor [patch]
func (h *BusHandler) AssignConductor(c *gin.Context) {
	h.assignSlot(c, h.assignments.AssignConductor)
}

func (h *BusHandler) assignSlot(c *gin.Context, assign func(context.Context, string, dto.OptionalID) (*models.BusDetail, error)) {
	var req dto.AssignSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	if !req.PersonnelID.Set {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "personnelId is required; send null to unassign"))
		return
	}
	bus, err := assign(c.Request.Context(), c.Param("id"), req.PersonnelID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, bus)
}
