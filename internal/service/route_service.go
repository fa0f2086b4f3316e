package service

import (
	"context"

	"github.com/noah-isme/campus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/campus-fleet-api/pkg/errors"
)

type routeRepository interface {
	List(ctx context.Context) ([]models.Route, error)
	FindByID(ctx context.Context, id string) (*models.Route, error)
}

// RouteService exposes the routes maintained by the scheduling module.
type RouteService struct {
	repo routeRepository
}

// NewRouteService constructs a RouteService.
func NewRouteService(repo routeRepository) *RouteService {
	return &RouteService{repo: repo}
}

// List returns every route ordered by name.
func (s *RouteService) List(ctx context.Context) ([]models.Route, error) {
	routes, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list routes")
	}
	return routes, nil
}

// Get returns one route.
func (s *RouteService) Get(ctx context.Context, id string) (*models.Route, error) {
	route, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "route")
	}
	return route, nil
}
