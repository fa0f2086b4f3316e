package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-fleet-api/internal/models"
	"github.com/noah-isme/campus-fleet-api/pkg/response"
)

type routeService interface {
	List(ctx context.Context) ([]models.Route, error)
	Get(ctx context.Context, id string) (*models.Route, error)
}

// RouteHandler exposes the read-only route catalogue.
type RouteHandler struct {
	service routeService
}

// NewRouteHandler builds a route handler.
func NewRouteHandler(service routeService) *RouteHandler {
	return &RouteHandler{service: service}
}

// List godoc
// @Summary List routes
// @Tags Routes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /routes [get]
func (h *RouteHandler) List(c *gin.Context) {
	routes, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, routes)
}

// Get godoc
// @Summary Get a route
// @Tags Routes
// @Produce json
// @Param id path string true "Route ID"
// @Success 200 {object} response.Envelope
// @Router /routes/{id} [get]
func (h *RouteHandler) Get(c *gin.Context) {
	route, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, route)
}
