package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-fleet-api/internal/models"
)

// RouteRepository reads the routes table owned by the schedule service.
type RouteRepository struct {
	db *sqlx.DB
}

// NewRouteRepository constructs a RouteRepository.
func NewRouteRepository(db *sqlx.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// List returns all routes by name.
func (r *RouteRepository) List(ctx context.Context) ([]models.Route, error) {
	const query = `SELECT id, name, code, start_point, end_point, created_at, updated_at FROM routes ORDER BY name ASC`
	routes := make([]models.Route, 0)
	if err := r.db.SelectContext(ctx, &routes, query); err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return routes, nil
}

// FindByID fetches a route by id.
func (r *RouteRepository) FindByID(ctx context.Context, id string) (*models.Route, error) {
	const query = `SELECT id, name, code, start_point, end_point, created_at, updated_at FROM routes WHERE id = $1`
	var route models.Route
	if err := r.db.GetContext(ctx, &route, query, id); err != nil {
		return nil, err
	}
	return &route, nil
}

// Exists reports whether a route id resolves.
func (r *RouteRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM routes WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check route: %w", err)
	}
	return exists, nil
}
