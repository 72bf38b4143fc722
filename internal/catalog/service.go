package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
	pkgerrors "github.com/aetherdesk-ai/aetherdesk-backend/pkg/errors"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox/payloads"
)

type catalogRepository interface {
	List(ctx context.Context, filters ListFilters) ([]models.Service, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	Create(ctx context.Context, row *models.Service) error
	Update(ctx context.Context, row *models.Service) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListPackages(ctx context.Context, serviceID uuid.UUID) ([]models.ServicePackage, error)
	FindPackageByID(ctx context.Context, id uuid.UUID) (*models.ServicePackage, error)
	CreatePackageTx(tx *gorm.DB, row *models.ServicePackage) error
	UpdatePackageTx(tx *gorm.DB, row *models.ServicePackage) error
	DeletePackage(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes the public browse surface and the admin CRUD surface.
// Role gating for the admin operations happens at the router.
type Service interface {
	ListServices(ctx context.Context, filters ListFilters) ([]ServiceDTO, error)
	GetService(ctx context.Context, id uuid.UUID) (*ServiceDTO, error)
	CreateService(ctx context.Context, req UpsertServiceRequest) (*ServiceDTO, error)
	UpdateService(ctx context.Context, id uuid.UUID, req UpsertServiceRequest) (*ServiceDTO, error)
	DeleteService(ctx context.Context, id uuid.UUID) error
	CreatePackage(ctx context.Context, serviceID uuid.UUID, req UpsertPackageRequest) (*PackageDTO, error)
	UpdatePackage(ctx context.Context, id uuid.UUID, req UpsertPackageRequest) (*PackageDTO, error)
	DeletePackage(ctx context.Context, id uuid.UUID) error
}

// ServiceParams packages the catalog service dependencies.
type ServiceParams struct {
	DB     txRunner
	Repo   catalogRepository
	Outbox outboxEmitter
	Logger *logger.Logger
}

type service struct {
	db     txRunner
	repo   catalogRepository
	outbox outboxEmitter
	logg   *logger.Logger
}

// NewService builds the catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		outbox: params.Outbox,
		logg:   params.Logger,
	}, nil
}

func (s *service) ListServices(ctx context.Context, filters ListFilters) ([]ServiceDTO, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list services")
	}
	return ServicesFromModels(rows), nil
}

func (s *service) GetService(ctx context.Context, id uuid.UUID) (*ServiceDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find service")
	}

	dto := ServiceFromModel(row)
	packages, err := s.repo.ListPackages(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list packages")
	}
	dto.Packages = PackagesFromModels(packages)
	return dto, nil
}

func (s *service) CreateService(ctx context.Context, req UpsertServiceRequest) (*ServiceDTO, error) {
	row := &models.Service{}
	if err := applyServiceRequest(row, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create service")
	}
	s.logg.Info(s.logg.WithField(ctx, "service_id", row.ID.String()), "catalog service created")
	return ServiceFromModel(row), nil
}

// UpdateService is an unconditional overwrite of the stored row.
func (s *service) UpdateService(ctx context.Context, id uuid.UUID, req UpsertServiceRequest) (*ServiceDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find service")
	}
	if err := applyServiceRequest(row, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update service")
	}
	return ServiceFromModel(row), nil
}

func (s *service) DeleteService(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete service")
	}
	return nil
}

func (s *service) CreatePackage(ctx context.Context, serviceID uuid.UUID, req UpsertPackageRequest) (*PackageDTO, error) {
	if _, err := s.repo.FindByID(ctx, serviceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find service")
	}

	row := &models.ServicePackage{ServiceID: serviceID}
	if err := applyPackageRequest(row, req); err != nil {
		return nil, err
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreatePackageTx(tx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create package")
		}
		return s.emitPackageEvent(ctx, tx, row)
	})
	if err != nil {
		return nil, err
	}
	return PackageFromModel(row), nil
}

// UpdatePackage overwrites the tier and publishes the row to the realtime
// channel in the same transaction.
func (s *service) UpdatePackage(ctx context.Context, id uuid.UUID, req UpsertPackageRequest) (*PackageDTO, error) {
	row, err := s.repo.FindPackageByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "package not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find package")
	}
	if err := applyPackageRequest(row, req); err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdatePackageTx(tx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update package")
		}
		return s.emitPackageEvent(ctx, tx, row)
	})
	if err != nil {
		return nil, err
	}
	return PackageFromModel(row), nil
}

func (s *service) DeletePackage(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeletePackage(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete package")
	}
	return nil
}

func (s *service) emitPackageEvent(ctx context.Context, tx *gorm.DB, row *models.ServicePackage) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.OutboxEventPackageUpdated,
		AggregateType: enums.OutboxAggregatePackage,
		AggregateID:   row.ID,
		Data: payloads.PackageUpdatedEvent{
			PackageID: row.ID,
			ServiceID: row.ServiceID,
			UpdatedAt: time.Now(),
		},
	})
}

func applyServiceRequest(row *models.Service, req UpsertServiceRequest) error {
	if strings.TrimSpace(req.NameEN) == "" || strings.TrimSpace(req.NameAR) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name_en and name_ar are required")
	}
	if req.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	currency, err := resolveCurrency(req.Currency)
	if err != nil {
		return err
	}

	row.NameEN = req.NameEN
	row.NameAR = req.NameAR
	row.DescriptionEN = req.DescriptionEN
	row.DescriptionAR = req.DescriptionAR
	row.Category = req.Category
	row.Price = req.Price
	row.Currency = currency
	row.SortOrder = req.SortOrder
	row.Active = true
	if req.Active != nil {
		row.Active = *req.Active
	}
	return nil
}

func applyPackageRequest(row *models.ServicePackage, req UpsertPackageRequest) error {
	if strings.TrimSpace(req.NameEN) == "" || strings.TrimSpace(req.NameAR) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name_en and name_ar are required")
	}
	if req.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	currency, err := resolveCurrency(req.Currency)
	if err != nil {
		return err
	}

	row.NameEN = req.NameEN
	row.NameAR = req.NameAR
	row.Price = req.Price
	row.Currency = currency
	row.Features = req.Features
	row.SortOrder = req.SortOrder
	row.Active = true
	if req.Active != nil {
		row.Active = *req.Active
	}
	return nil
}

func resolveCurrency(raw string) (enums.Currency, error) {
	if strings.TrimSpace(raw) == "" {
		return enums.CurrencyUSD, nil
	}
	currency, err := enums.ParseCurrency(raw)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	return currency, nil
}
