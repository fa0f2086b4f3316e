package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-fleet-api/internal/dto"
	"github.com/noah-isme/campus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/campus-fleet-api/pkg/errors"
)

type busRepository interface {
	List(ctx context.Context, filter models.BusFilter) ([]models.BusDetail, error)
	FindByID(ctx context.Context, id string) (*models.Bus, error)
	FindDetailByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.BusDetail, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Bus, error)
	FindIdentityClash(ctx context.Context, identity models.BusIdentity, excludeID string) (string, error)
	Create(ctx context.Context, bus *models.Bus) error
	Update(ctx context.Context, exec sqlx.ExtContext, bus *models.Bus) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

// BusReferenceClearer drops the assigned-bus back-reference of whoever
// points at a deleted bus.
type BusReferenceClearer interface {
	ClearBus(ctx context.Context, exec sqlx.ExtContext, busID string) error
}

type historyPurger interface {
	DeleteByBus(ctx context.Context, exec sqlx.ExtContext, busID string) (int64, error)
}

type busListCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Invalidate(ctx context.Context, pattern string) error
}

// BusService manages the fleet registry.
type BusService struct {
	repo      busRepository
	personnel []BusReferenceClearer
	history   historyPurger
	routes    routeChecker
	cache     busListCache
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewBusService constructs the fleet registry service. personnel holds one
// repository per role so deletes can clear every back-reference.
func NewBusService(
	repo busRepository,
	personnel []BusReferenceClearer,
	history historyPurger,
	routes routeChecker,
	cache busListCache,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *BusService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BusService{
		repo:      repo,
		personnel: personnel,
		history:   history,
		routes:    routes,
		cache:     cache,
		tx:        tx,
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// List returns buses with their driver, conductor and route display fields.
func (s *BusService) List(ctx context.Context, query dto.BusListQuery) ([]models.BusDetail, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, validationError(err, "invalid bus filter")
	}

	filter := models.BusFilter{Search: strings.TrimSpace(query.Search)}
	if query.Status != "" {
		status := models.BusStatus(query.Status)
		filter.Status = &status
	}
	if routeID := strings.TrimSpace(query.RouteID); routeID != "" {
		filter.RouteID = &routeID
	}

	key := busListCacheKey(query)
	if s.cache != nil {
		var cached []models.BusDetail
		if s.cache.Get(ctx, key, &cached) {
			return cached, nil
		}
	}

	buses, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list buses")
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, buses, s.cacheTTL)
	}
	return buses, nil
}

// Get returns one bus with relations.
func (s *BusService) Get(ctx context.Context, id string) (*models.BusDetail, error) {
	bus, err := s.repo.FindDetailByID(ctx, nil, id)
	if err != nil {
		return nil, lookupError(err, "bus")
	}
	return bus, nil
}

// Create registers a bus in the depot state.
func (s *BusService) Create(ctx context.Context, req dto.CreateBusRequest) (*models.BusDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid bus payload")
	}

	bus := models.NewBus(
		strings.TrimSpace(req.BusNumber),
		strings.TrimSpace(req.RegistrationNumber),
		strings.TrimSpace(req.ChassisNumber),
		strings.TrimSpace(req.EngineNumber),
		req.SeatingCapacity,
		req.StandingCapacity,
	)
	if err := s.ensureUniqueIdentity(ctx, bus.Identity(), ""); err != nil {
		return nil, err
	}
	if routeID := trimmedID(req.RouteID); routeID != nil {
		if err := s.ensureRoute(ctx, *routeID); err != nil {
			return nil, err
		}
		bus.RouteID = routeID
	}

	if err := s.repo.Create(ctx, bus); err != nil {
		return nil, storeError(err, "failed to create bus")
	}
	s.invalidate(ctx)
	s.logger.Info("bus registered", zap.String("bus_id", bus.ID), zap.String("bus_number", bus.BusNumber))

	return &models.BusDetail{Bus: *bus}, nil
}

// Update patches identity, capacity and route under the bus row lock.
func (s *BusService) Update(ctx context.Context, id string, req dto.UpdateBusRequest) (*models.BusDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid bus payload")
	}

	err := runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		bus, err := s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return lookupError(err, "bus")
		}

		before := bus.Identity()
		assignTrimmed(&bus.BusNumber, req.BusNumber)
		assignTrimmed(&bus.RegistrationNumber, req.RegistrationNumber)
		assignTrimmed(&bus.ChassisNumber, req.ChassisNumber)
		assignTrimmed(&bus.EngineNumber, req.EngineNumber)
		if bus.Identity() != before {
			if err := s.ensureUniqueIdentity(ctx, bus.Identity(), bus.ID); err != nil {
				return err
			}
		}

		if req.SeatingCapacity != nil {
			if *req.SeatingCapacity < bus.Onboard() {
				return appErrors.Clone(appErrors.ErrValidation,
					fmt.Sprintf("seating capacity %d is below the %d passengers on board", *req.SeatingCapacity, bus.Onboard()))
			}
			bus.SeatingCapacity = *req.SeatingCapacity
		}
		if req.StandingCapacity != nil {
			bus.StandingCapacity = *req.StandingCapacity
		}

		if req.RouteID.Set {
			routeID := trimmedID(req.RouteID.Value)
			if routeID != nil {
				if err := s.ensureRoute(ctx, *routeID); err != nil {
					return err
				}
			}
			bus.RouteID = routeID
		}

		if err := s.repo.Update(ctx, tx, bus); err != nil {
			return storeError(err, "failed to update bus")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Delete removes a bus, clears the back-references of its personnel and
// purges its audit rows in one transaction.
func (s *BusService) Delete(ctx context.Context, id string) error {
	var purged int64
	err := runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if _, err := s.repo.LockByID(ctx, tx, id); err != nil {
			return lookupError(err, "bus")
		}
		for _, repo := range s.personnel {
			if err := repo.ClearBus(ctx, tx, id); err != nil {
				return storeError(err, "failed to release bus personnel")
			}
		}
		n, err := s.history.DeleteByBus(ctx, tx, id)
		if err != nil {
			return storeError(err, "failed to purge location history")
		}
		purged = n
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return lookupError(err, "bus")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	s.logger.Info("bus deleted", zap.String("bus_id", id), zap.Int64("history_purged", purged))
	return nil
}

func (s *BusService) ensureUniqueIdentity(ctx context.Context, identity models.BusIdentity, excludeID string) error {
	field, err := s.repo.FindIdentityClash(ctx, identity, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to check bus identity")
	}
	if field != "" {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%s already registered", strings.ReplaceAll(field, "_", " ")))
	}
	return nil
}

func (s *BusService) ensureRoute(ctx context.Context, routeID string) error {
	exists, err := s.routes.Exists(ctx, routeID)
	if err != nil {
		return appErrors.Internal(err, "failed to check route")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "route not found")
	}
	return nil
}

func (s *BusService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, busCachePattern)
}

func busListCacheKey(query dto.BusListQuery) string {
	return fmt.Sprintf("fleet:buses:list:%s:%s:%s",
		query.Status,
		strings.TrimSpace(query.RouteID),
		strings.ToLower(strings.TrimSpace(query.Search)),
	)
}

func assignTrimmed(dst *string, value *string) {
	if value == nil {
		return
	}
	*dst = strings.TrimSpace(*value)
}
