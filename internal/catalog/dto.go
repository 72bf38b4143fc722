package catalog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db/models"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/enums"
)

// ServiceDTO is the transport shape for one catalog service.
type ServiceDTO struct {
	ID            uuid.UUID       `json:"id"`
	NameEN        string          `json:"name_en"`
	NameAR        string          `json:"name_ar"`
	DescriptionEN string          `json:"description_en,omitempty"`
	DescriptionAR string          `json:"description_ar,omitempty"`
	Category      string          `json:"category,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Currency      enums.Currency  `json:"currency"`
	Active        bool            `json:"active"`
	SortOrder     int             `json:"sort_order"`
	Packages      []PackageDTO    `json:"packages,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PackageDTO is the transport shape for one service tier.
type PackageDTO struct {
	ID        uuid.UUID       `json:"id"`
	ServiceID uuid.UUID       `json:"service_id"`
	NameEN    string          `json:"name_en"`
	NameAR    string          `json:"name_ar"`
	Price     decimal.Decimal `json:"price"`
	Currency  enums.Currency  `json:"currency"`
	Features  json.RawMessage `json:"features,omitempty"`
	Active    bool            `json:"active"`
	SortOrder int             `json:"sort_order"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// UpsertServiceRequest covers both create and unconditional update.
type UpsertServiceRequest struct {
	NameEN        string          `json:"name_en" validate:"required"`
	NameAR        string          `json:"name_ar" validate:"required"`
	DescriptionEN string          `json:"description_en,omitempty"`
	DescriptionAR string          `json:"description_ar,omitempty"`
	Category      string          `json:"category,omitempty"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	Currency      string          `json:"currency,omitempty"`
	Active        *bool           `json:"active,omitempty"`
	SortOrder     int             `json:"sort_order,omitempty"`
}

// UpsertPackageRequest covers both create and unconditional update of a tier.
type UpsertPackageRequest struct {
	NameEN    string          `json:"name_en" validate:"required"`
	NameAR    string          `json:"name_ar" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"required"`
	Currency  string          `json:"currency,omitempty"`
	Features  json.RawMessage `json:"features,omitempty"`
	Active    *bool           `json:"active,omitempty"`
	SortOrder int             `json:"sort_order,omitempty"`
}

// ListFilters are the supported knobs on the catalog browse endpoint.
type ListFilters struct {
	Active   *bool            `json:"active,omitempty"`
	Query    string           `json:"q,omitempty"`
	Category string           `json:"category,omitempty"`
	PriceMin *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax *decimal.Decimal `json:"price_max,omitempty"`
}

// ServiceFromModel converts without packages.
func ServiceFromModel(m *models.Service) *ServiceDTO {
	if m == nil {
		return nil
	}
	return &ServiceDTO{
		ID:            m.ID,
		NameEN:        m.NameEN,
		NameAR:        m.NameAR,
		DescriptionEN: m.DescriptionEN,
		DescriptionAR: m.DescriptionAR,
		Category:      m.Category,
		Price:         m.Price,
		Currency:      m.Currency,
		Active:        m.Active,
		SortOrder:     m.SortOrder,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ServicesFromModels converts a slice, preserving order.
func ServicesFromModels(rows []models.Service) []ServiceDTO {
	out := make([]ServiceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ServiceFromModel(&rows[i]))
	}
	return out
}

// PackageFromModel converts one tier.
func PackageFromModel(m *models.ServicePackage) *PackageDTO {
	if m == nil {
		return nil
	}
	return &PackageDTO{
		ID:        m.ID,
		ServiceID: m.ServiceID,
		NameEN:    m.NameEN,
		NameAR:    m.NameAR,
		Price:     m.Price,
		Currency:  m.Currency,
		Features:  m.Features,
		Active:    m.Active,
		SortOrder: m.SortOrder,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// PackagesFromModels converts a slice, preserving order.
func PackagesFromModels(rows []models.ServicePackage) []PackageDTO {
	out := make([]PackageDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *PackageFromModel(&rows[i]))
	}
	return out
}
