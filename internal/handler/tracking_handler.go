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

type trackingService interface {
	PushLocationUpdate(ctx context.Context, busID string, caller models.Caller, req dto.LocationUpdateRequest) (*models.BusDetail, error)
	IncrementPassengers(ctx context.Context, busID string, caller models.Caller, req dto.PassengerDeltaRequest) (*dto.PassengerStatus, error)
	DecrementPassengers(ctx context.Context, busID string, caller models.Caller, req dto.PassengerDeltaRequest) (*dto.PassengerStatus, error)
}

type locationHistoryService interface {
	List(ctx context.Context, busID string, query dto.LocationHistoryQuery) ([]models.LocationHistory, error)
	Export(ctx context.Context, busID string, query dto.LocationHistoryExportQuery) (*dto.ExportFile, error)
}

// TrackingHandler serves live location, occupancy and history endpoints.
type TrackingHandler struct {
	tracking trackingService
	history  locationHistoryService
}

// NewTrackingHandler builds a tracking handler.
func NewTrackingHandler(tracking trackingService, history locationHistoryService) *TrackingHandler {
	return &TrackingHandler{tracking: tracking, history: history}
}

// PushLocation godoc
// @Summary Push the live location and attendance of a bus
// @Tags Tracking
// @Accept json
// @Produce json
// @Param id path string true "Bus ID"
// @Param payload body dto.LocationUpdateRequest true "Location update"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /buses/{id}/location [patch]
func (h *TrackingHandler) PushLocation(c *gin.Context) {
	var req dto.LocationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid location payload"))
		return
	}
	bus, err := h.tracking.PushLocationUpdate(c.Request.Context(), c.Param("id"), callerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, bus)
}

// Increment godoc
// @Summary Board passengers
// @Tags Tracking
// @Accept json
// @Produce json
// @Param id path string true "Bus ID"
// @Param payload body dto.PassengerDeltaRequest true "Passenger type and count"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /buses/{id}/passengers/increment [post]
func (h *TrackingHandler) Increment(c *gin.Context) {
	h.changePassengers(c, h.tracking.IncrementPassengers)
}

// Decrement godoc
// @Summary Alight passengers
// @Tags Tracking
// @Accept json
// @Produce json
// @Param id path string true "Bus ID"
// @Param payload body dto.PassengerDeltaRequest true "Passenger type and count"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /buses/{id}/passengers/decrement [post]
func (h *TrackingHandler) Decrement(c *gin.Context) {
	h.changePassengers(c, h.tracking.DecrementPassengers)
}

func (h *TrackingHandler) changePassengers(c *gin.Context, change func(context.Context, string, models.Caller, dto.PassengerDeltaRequest) (*dto.PassengerStatus, error)) {
	var req dto.PassengerDeltaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid passenger payload"))
		return
	}
	status, err := change(c.Request.Context(), c.Param("id"), callerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status)
}

// History godoc
// @Summary List recent location history, newest first
// @Tags Tracking
// @Produce json
// @Param id path string true "Bus ID"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /buses/{id}/location-history [get]
func (h *TrackingHandler) History(c *gin.Context) {
	var query dto.LocationHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid history query"))
		return
	}
	entries, err := h.history.List(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil, map[string]interface{}{"count": len(entries)})
}

// ExportHistory godoc
// @Summary Download location history as CSV or PDF
// @Tags Tracking
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Bus ID"
// @Param format query string false "csv (default) or pdf"
// @Param limit query int false "Maximum entries"
// @Success 200 {file} file
// @Router /buses/{id}/location-history/export [get]
func (h *TrackingHandler) ExportHistory(c *gin.Context) {
	var query dto.LocationHistoryExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.history.Export(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
