package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-fleet-api/internal/dto"
	"github.com/noah-isme/campus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/campus-fleet-api/pkg/errors"
)

type personnelRepository interface {
	Role() models.PersonnelRole
	List(ctx context.Context) ([]models.PersonnelDetail, error)
	FindByID(ctx context.Context, id string) (*models.Personnel, error)
	LockByIDs(ctx context.Context, exec sqlx.ExtContext, ids []string) (map[string]*models.Personnel, error)
	EmployeeCodeTaken(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, person *models.Personnel) error
	Update(ctx context.Context, person *models.Personnel) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type personnelBusRepository interface {
	FindByPersonnel(ctx context.Context, exec sqlx.ExtContext, role models.PersonnelRole, personID string, lock bool) (*models.Bus, error)
	Update(ctx context.Context, exec sqlx.ExtContext, bus *models.Bus) error
}

// PersonnelService manages one personnel registry, drivers or conductors.
type PersonnelService struct {
	repo      personnelRepository
	buses     personnelBusRepository
	cache     cacheInvalidator
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPersonnelService constructs a registry service for the repository's role.
func NewPersonnelService(repo personnelRepository, buses personnelBusRepository, cache cacheInvalidator, tx txProvider, validate *validator.Validate, logger *zap.Logger) *PersonnelService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonnelService{
		repo:      repo,
		buses:     buses,
		cache:     cache,
		tx:        tx,
		validator: validate,
		logger:    logger.With(zap.String("personnel_role", string(repo.Role()))),
	}
}

// Role returns the role served.
func (s *PersonnelService) Role() models.PersonnelRole {
	return s.repo.Role()
}

// List returns every person of the role with the bus they drive or staff.
func (s *PersonnelService) List(ctx context.Context) ([]models.PersonnelDetail, error) {
	people, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, fmt.Sprintf("failed to list %ss", s.Role()))
	}
	return people, nil
}

// Get returns one person.
func (s *PersonnelService) Get(ctx context.Context, id string) (*models.Personnel, error) {
	person, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, string(s.Role()))
	}
	return person, nil
}

// Create registers a person without a bus.
func (s *PersonnelService) Create(ctx context.Context, req dto.CreatePersonnelRequest) (*models.Personnel, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, fmt.Sprintf("invalid %s payload", s.Role()))
	}

	person := &models.Personnel{
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        optionalText(req.Phone),
		EmployeeCode: strings.TrimSpace(req.EmployeeCode),
	}
	if s.Role() == models.PersonnelDriver {
		person.LicenseNumber = optionalText(req.LicenseNumber)
	}
	if err := s.ensureCodeFree(ctx, person.EmployeeCode, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, person); err != nil {
		return nil, storeError(err, fmt.Sprintf("failed to create %s", s.Role()))
	}
	s.logger.Info("personnel registered", zap.String("personnel_id", person.ID))
	return person, nil
}

// Update patches registry fields. Bus assignment is never changed here.
func (s *PersonnelService) Update(ctx context.Context, id string, req dto.UpdatePersonnelRequest) (*models.Personnel, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, fmt.Sprintf("invalid %s payload", s.Role()))
	}

	person, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, string(s.Role()))
	}

	assignTrimmed(&person.FullName, req.FullName)
	if req.Phone != nil {
		person.Phone = optionalText(req.Phone)
	}
	if req.LicenseNumber != nil && s.Role() == models.PersonnelDriver {
		person.LicenseNumber = optionalText(req.LicenseNumber)
	}
	if req.EmployeeCode != nil {
		code := strings.TrimSpace(*req.EmployeeCode)
		if code != person.EmployeeCode {
			if err := s.ensureCodeFree(ctx, code, person.ID); err != nil {
				return nil, err
			}
			person.EmployeeCode = code
		}
	}

	if err := s.repo.Update(ctx, person); err != nil {
		return nil, lookupError(err, string(s.Role()))
	}
	s.invalidate(ctx)
	return person, nil
}

// Delete removes a person. A bus they were assigned to loses the slot and is
// parked at the depot in the same transaction.
func (s *PersonnelService) Delete(ctx context.Context, id string) error {
	role := s.Role()
	var resetBusID string

	err := runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		bus, err := s.buses.FindByPersonnel(ctx, tx, role, id, true)
		if err != nil {
			return storeError(err, fmt.Sprintf("failed to load %s bus", role))
		}

		locked, err := s.repo.LockByIDs(ctx, tx, []string{id})
		if err != nil {
			return storeError(err, fmt.Sprintf("failed to lock %s", role))
		}
		if _, ok := locked[id]; !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", role))
		}

		if bus != nil {
			bus.SetSlot(role, nil)
			bus.ResetToDepot()
			if err := s.buses.Update(ctx, tx, bus); err != nil {
				return storeError(err, "failed to reset bus")
			}
			resetBusID = bus.ID
		}

		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return lookupError(err, string(role))
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	fields := []zap.Field{zap.String("personnel_id", id)}
	if resetBusID != "" {
		fields = append(fields, zap.String("reset_bus_id", resetBusID))
	}
	s.logger.Info("personnel deleted", fields...)
	return nil
}

func (s *PersonnelService) ensureCodeFree(ctx context.Context, code, excludeID string) error {
	taken, err := s.repo.EmployeeCodeTaken(ctx, code, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to check employee code")
	}
	if taken {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("employee code already used by another %s", s.Role()))
	}
	return nil
}

func (s *PersonnelService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, busCachePattern)
}
