package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-fleet-api/internal/dto"
	"github.com/noah-isme/campus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/campus-fleet-api/pkg/errors"
)

type assignmentBusRepository interface {
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Bus, error)
	FindByPersonnel(ctx context.Context, exec sqlx.ExtContext, role models.PersonnelRole, personID string, lock bool) (*models.Bus, error)
	Update(ctx context.Context, exec sqlx.ExtContext, bus *models.Bus) error
	FindDetailByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.BusDetail, error)
}

type personnelBinder interface {
	Role() models.PersonnelRole
	LockByIDs(ctx context.Context, exec sqlx.ExtContext, ids []string) (map[string]*models.Personnel, error)
	BindBus(ctx context.Context, exec sqlx.ExtContext, personID, busID string) error
	ReleaseBus(ctx context.Context, exec sqlx.ExtContext, personID, busID string) error
}

type routeChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// AssignmentService binds drivers, conductors and routes to buses. Every
// change runs in one transaction that locks the bus row first and then the
// personnel rows involved, in id order, so two requests can never bind the
// same person to two buses.
type AssignmentService struct {
	buses     assignmentBusRepository
	personnel []personnelBinder
	routes    routeChecker
	cache     cacheInvalidator
	tx        txProvider
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService wires the coordinator. drivers and conductors must be
// the repositories for their respective roles.
func NewAssignmentService(
	buses assignmentBusRepository,
	drivers personnelBinder,
	conductors personnelBinder,
	routes routeChecker,
	cache cacheInvalidator,
	tx txProvider,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		buses:     buses,
		personnel: []personnelBinder{drivers, conductors},
		routes:    routes,
		cache:     cache,
		tx:        tx,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// slotChange is the plan for one personnel slot of the bus.
type slotChange struct {
	repo      personnelBinder
	requested dto.OptionalID
	previous  *string
	next      *models.Personnel
}

func (c slotChange) role() models.PersonnelRole {
	return c.repo.Role()
}

func (c slotChange) lockIDs() []string {
	var ids []string
	if c.previous != nil {
		ids = append(ids, *c.previous)
	}
	if c.requested.Value != nil {
		ids = append(ids, *c.requested.Value)
	}
	return ids
}

// AssignPersonnel applies a tri-state assignment: an omitted id leaves the
// slot alone, null unbinds it, a value binds that person. Both slots set to
// null parks the bus at the depot.
func (s *AssignmentService) AssignPersonnel(ctx context.Context, req dto.AssignPersonnelRequest) (*models.BusDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assignment payload")
	}
	routeID := trimmedID(req.RouteID)
	if !req.DriverID.Set && !req.ConductorID.Set && routeID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one of driverId, conductorId or routeId is required")
	}

	err := runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		bus, err := s.buses.LockByID(ctx, tx, req.BusID)
		if err != nil {
			return lookupError(err, "bus")
		}

		if routeID != nil {
			exists, err := s.routes.Exists(ctx, *routeID)
			if err != nil {
				return storeError(err, "failed to check route")
			}
			if !exists {
				return appErrors.Clone(appErrors.ErrNotFound, "route not found")
			}
		}

		changes := []*slotChange{
			{repo: s.personnel[0], requested: req.DriverID},
			{repo: s.personnel[1], requested: req.ConductorID},
		}
		for _, change := range changes {
			if !change.requested.Set {
				continue
			}
			change.previous = bus.Slot(change.role())
			if err := s.checkSlot(ctx, tx, bus, change); err != nil {
				return err
			}
		}

		for _, change := range changes {
			if !change.requested.Set {
				continue
			}
			if err := s.applySlot(ctx, tx, bus, change); err != nil {
				return err
			}
		}

		if req.DriverID.IsNull() && req.ConductorID.IsNull() {
			bus.ResetToDepot()
		}
		if routeID != nil {
			bus.RouteID = routeID
		}

		if err := s.buses.Update(ctx, tx, bus); err != nil {
			return storeError(err, "failed to update bus")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			s.metrics.AssignmentConflict()
		}
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info("bus assignment updated",
		zap.String("bus_id", req.BusID),
		zap.Bool("driver_changed", req.DriverID.Set),
		zap.Bool("conductor_changed", req.ConductorID.Set),
		zap.Bool("route_changed", routeID != nil),
	)

	detail, err := s.buses.FindDetailByID(ctx, nil, req.BusID)
	if err != nil {
		return nil, lookupError(err, "bus")
	}
	return detail, nil
}

// AssignDriver changes only the driver slot through the same locked path.
func (s *AssignmentService) AssignDriver(ctx context.Context, busID string, driverID dto.OptionalID) (*models.BusDetail, error) {
	return s.assignSingle(ctx, busID, models.PersonnelDriver, driverID)
}

// AssignConductor changes only the conductor slot through the same locked path.
func (s *AssignmentService) AssignConductor(ctx context.Context, busID string, conductorID dto.OptionalID) (*models.BusDetail, error) {
	return s.assignSingle(ctx, busID, models.PersonnelConductor, conductorID)
}

func (s *AssignmentService) assignSingle(ctx context.Context, busID string, role models.PersonnelRole, id dto.OptionalID) (*models.BusDetail, error) {
	if !id.Set {
		return nil, appErrors.Clone(appErrors.ErrValidation, "personnelId is required, use null to unassign")
	}
	req := dto.AssignPersonnelRequest{BusID: busID}
	if role == models.PersonnelConductor {
		req.ConductorID = id
	} else {
		req.DriverID = id
	}
	return s.AssignPersonnel(ctx, req)
}

// checkSlot locks the outgoing and incoming holders of one slot and verifies
// the incoming person is free. It never writes.
func (s *AssignmentService) checkSlot(ctx context.Context, tx sqlx.ExtContext, bus *models.Bus, change *slotChange) error {
	role := change.role()
	locked, err := change.repo.LockByIDs(ctx, tx, change.lockIDs())
	if err != nil {
		return storeError(err, fmt.Sprintf("failed to lock %s", role))
	}

	if change.requested.Value == nil {
		return nil
	}
	nextID := *change.requested.Value

	person, ok := locked[nextID]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", role))
	}
	if person.AssignedBusID != nil && *person.AssignedBusID != bus.ID {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%s already assigned to another bus", role))
	}
	other, err := s.buses.FindByPersonnel(ctx, tx, role, nextID, false)
	if err != nil {
		return storeError(err, fmt.Sprintf("failed to check %s assignment", role))
	}
	if other != nil && other.ID != bus.ID {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%s already assigned to another bus", role))
	}

	change.next = person
	return nil
}

// applySlot releases the previous holder, binds the next one and updates the
// bus slot in memory. The bus row itself is written by the caller.
func (s *AssignmentService) applySlot(ctx context.Context, tx sqlx.ExtContext, bus *models.Bus, change *slotChange) error {
	role := change.role()
	var nextID *string
	if change.next != nil {
		id := change.next.ID
		nextID = &id
	}

	if change.previous != nil && (nextID == nil || *nextID != *change.previous) {
		if err := change.repo.ReleaseBus(ctx, tx, *change.previous, bus.ID); err != nil {
			return storeError(err, fmt.Sprintf("failed to release previous %s", role))
		}
	}

	if change.next != nil && !boundTo(change.next, bus.ID) {
		if err := change.repo.BindBus(ctx, tx, change.next.ID, bus.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", role))
			}
			return storeError(err, fmt.Sprintf("failed to bind %s", role))
		}
	}

	bus.SetSlot(role, nextID)
	return nil
}

func (s *AssignmentService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, busCachePattern)
}

func boundTo(person *models.Personnel, busID string) bool {
	return person.AssignedBusID != nil && *person.AssignedBusID == busID
}

func trimmedID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
