package service

import (
	"context"
	"fmt"

	"github.com/logbookhq/logbook/internal/model"
	"github.com/logbookhq/logbook/internal/session"
)

// RecordGateway is the slice of the sheets client the search/edit component
// needs.
type RecordGateway interface {
	Search(ctx context.Context, criteria model.Criteria) ([]model.VehicleRecord, error)
	Update(ctx context.Context, token string, record model.VehicleRecord) error
}

// VehicleService translates search criteria into gateway queries and submits
// authenticated record updates. It holds no state of its own; the session
// passed to UpdateRecord is the only credential source.
type VehicleService struct {
	gateway RecordGateway
}

// NewVehicleService creates a VehicleService.
func NewVehicleService(gateway RecordGateway) *VehicleService {
	return &VehicleService{gateway: gateway}
}

// Search trims all criteria and queries the gateway. At least one criterion
// must remain after trimming; an all-empty query fails locally without a
// network call. An empty result set is a successful outcome, never an error.
// Matching semantics (case-insensitive substring, AND) belong to the
// gateway.
func (s *VehicleService) Search(ctx context.Context, criteria model.Criteria) ([]model.VehicleRecord, error) {
	criteria = criteria.Trim()
	if criteria.Empty() {
		return nil, model.NewError(model.KindValidation, "at least one search term is required")
	}

	results, err := s.gateway.Search(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return results, nil
}

// UpdateRecord sends every editable field plus the row locator to the
// gateway. Requires a live session; an absent one fails locally. The gateway
// applies last write wins — no conflict detection exists — so after a
// successful update the caller should re-run its search for a fresh view.
func (s *VehicleService) UpdateRecord(ctx context.Context, sess *session.Session, record model.VehicleRecord) error {
	if sess == nil || sess.UpstreamToken == "" {
		return model.NewError(model.KindAuthorization, "login required to edit vehicles")
	}
	if record.RowIndex == "" {
		return model.NewError(model.KindValidation, "record has no row locator")
	}

	if err := s.gateway.Update(ctx, sess.UpstreamToken, record); err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return nil
}
