package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-fleet-api/internal/dto"
	"github.com/noah-isme/campus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/campus-fleet-api/pkg/errors"
)

type trackingBusRepository interface {
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Bus, error)
	Update(ctx context.Context, exec sqlx.ExtContext, bus *models.Bus) error
	FindDetailByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.BusDetail, error)
}

type historyRecorder interface {
	Record(ctx context.Context, entry *models.LocationHistory)
}

// TrackingService applies live state pushed by conductor apps and keeps the
// onboard count inside the seating capacity. Each operation holds the bus
// row lock for its read-modify-write.
type TrackingService struct {
	buses     trackingBusRepository
	history   historyRecorder
	cache     cacheInvalidator
	tx        txProvider
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewTrackingService wires the tracker.
func NewTrackingService(
	buses trackingBusRepository,
	history historyRecorder,
	cache cacheInvalidator,
	tx txProvider,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *TrackingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackingService{
		buses:     buses,
		history:   history,
		cache:     cache,
		tx:        tx,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// DeriveStudents turns the conductor's tally into the number of students on
// board. On the departure leg the count is who boarded. On the return leg it
// is who already got off, so the rest of the route total is still aboard.
func DeriveStudents(direction models.Direction, count int, totalStudents *int) (int, error) {
	if direction != models.DirectionReturn {
		return count, nil
	}
	if totalStudents == nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "attendanceData.totalStudents is required on the return leg")
	}
	return *totalStudents - count, nil
}

// PushLocationUpdate records the bus position, status, direction, alert and
// derived student count in one write, then appends an audit row. A failed
// audit append never undoes the bus write.
func (s *TrackingService) PushLocationUpdate(ctx context.Context, busID string, caller models.Caller, req dto.LocationUpdateRequest) (*models.BusDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid location payload")
	}

	count := *req.AttendanceData.Count
	var (
		updated *models.Bus
		now     time.Time
	)

	err := runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		bus, err := s.buses.LockByID(ctx, tx, busID)
		if err != nil {
			return lookupError(err, "bus")
		}
		// Stamped under the row lock so audit order follows write order.
		now = s.now()
		if err := authorizeBusCaller(caller, bus); err != nil {
			return err
		}

		students, err := DeriveStudents(req.RouteDirection, count, req.AttendanceData.TotalStudents)
		if err != nil {
			return err
		}
		if students < 0 {
			s.metrics.CapacityRejected("location", "negative")
			return appErrors.Clone(appErrors.ErrNegativeCount, fmt.Sprintf("derived student count %d is negative", students))
		}
		if students > bus.SeatingCapacity-bus.Others {
			s.metrics.CapacityRejected("location", "capacity")
			return appErrors.Clone(appErrors.ErrCapacityExceeded,
				fmt.Sprintf("%d students and %d others exceed seating capacity %d", students, bus.Others, bus.SeatingCapacity))
		}

		bus.CurrentLocation = strings.TrimSpace(req.CurrentLocation)
		bus.Status = req.Status
		bus.CurrentDirection = req.RouteDirection
		bus.Students = students
		bus.Attendance = models.Attendance{
			Route:         optionalText(&req.AttendanceData.Route),
			Count:         &count,
			TotalStudents: req.AttendanceData.TotalStudents,
		}
		bus.AlertMessage = optionalText(req.AlertMessage)
		bus.AlertType = optionalText(req.AlertType)
		bus.LastUpdated = &now

		if err := s.buses.Update(ctx, tx, bus); err != nil {
			return storeError(err, "failed to update bus location")
		}
		updated = bus
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.LocationUpdated(string(updated.Status))
	s.invalidate(ctx)

	if s.history != nil {
		s.history.Record(ctx, &models.LocationHistory{
			ID:              uuid.NewString(),
			BusID:           updated.ID,
			Location:        updated.CurrentLocation,
			Direction:       updated.CurrentDirection,
			Status:          updated.Status,
			PassengerCount:  count,
			StudentsOnboard: updated.Students,
			TotalStudents:   updated.Attendance.TotalStudents,
			AlertMessage:    updated.AlertMessage,
			AlertType:       updated.AlertType,
			RecordedAt:      now,
		})
	}

	return s.detailAfterWrite(ctx, updated), nil
}

// IncrementPassengers boards count passengers of one type. The total onboard
// may never exceed the seating capacity.
func (s *TrackingService) IncrementPassengers(ctx context.Context, busID string, caller models.Caller, req dto.PassengerDeltaRequest) (*dto.PassengerStatus, error) {
	return s.changePassengers(ctx, busID, caller, req, "increment")
}

// DecrementPassengers alights count passengers of one type. A counter may
// never go below zero.
func (s *TrackingService) DecrementPassengers(ctx context.Context, busID string, caller models.Caller, req dto.PassengerDeltaRequest) (*dto.PassengerStatus, error) {
	return s.changePassengers(ctx, busID, caller, req, "decrement")
}

func (s *TrackingService) changePassengers(ctx context.Context, busID string, caller models.Caller, req dto.PassengerDeltaRequest, operation string) (*dto.PassengerStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid passenger payload")
	}

	var status dto.PassengerStatus
	err := runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		bus, err := s.buses.LockByID(ctx, tx, busID)
		if err != nil {
			return lookupError(err, "bus")
		}
		if err := authorizeBusCaller(caller, bus); err != nil {
			return err
		}

		current := bus.PassengerCounts.Of(req.Type)
		next := current + req.Count
		if operation == "decrement" {
			next = current - req.Count
			if next < 0 {
				s.metrics.CapacityRejected(operation, "negative")
				return appErrors.Clone(appErrors.ErrNegativeCount,
					fmt.Sprintf("cannot remove %d %s, only %d on board", req.Count, req.Type, current))
			}
		} else if req.Count > bus.AvailableSeats() {
			s.metrics.CapacityRejected(operation, "capacity")
			return appErrors.Clone(appErrors.ErrCapacityExceeded,
				fmt.Sprintf("only %d seats available", bus.AvailableSeats()))
		}

		now := s.now()
		bus.PassengerCounts = bus.PassengerCounts.With(req.Type, next)
		bus.LastUpdated = &now
		if err := s.buses.Update(ctx, tx, bus); err != nil {
			return storeError(err, "failed to update passenger count")
		}

		status = dto.PassengerStatus{
			CurrentPassengers: bus.PassengerCounts,
			AvailableSeats:    bus.AvailableSeats(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PassengersChanged(operation, string(req.Type))
	s.invalidate(ctx)
	return &status, nil
}

// detailAfterWrite reloads the bus with its relations. The write is already
// committed, so a failed reload falls back to the bare bus.
func (s *TrackingService) detailAfterWrite(ctx context.Context, bus *models.Bus) *models.BusDetail {
	detail, err := s.buses.FindDetailByID(ctx, nil, bus.ID)
	if err != nil {
		s.logger.Warn("reload bus after location update failed", zap.String("bus_id", bus.ID), zap.Error(err))
		return &models.BusDetail{Bus: *bus}
	}
	return detail
}

func (s *TrackingService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, busCachePattern)
}

// authorizeBusCaller lets admins act on any bus and conductors only on the
// bus they are assigned to. Drivers never push live state.
func authorizeBusCaller(caller models.Caller, bus *models.Bus) error {
	switch caller.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleConductor:
		if bus.ConductorID != nil && *bus.ConductorID == caller.ID {
			return nil
		}
		return appErrors.Clone(appErrors.ErrForbidden, "only the assigned conductor can update this bus")
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "role cannot update bus state")
	}
}

func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
