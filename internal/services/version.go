package services

import (
	"context"
	"fmt"
	"time"

	"seatplanner/internal/domain"
)

type versionService struct {
	versionRepo    domain.VersionRepository
	access         domain.AccessResolver
	contextTimeout time.Duration
}

func NewVersionService(versionRepo domain.VersionRepository, access domain.AccessResolver, timeout time.Duration) domain.VersionService {
	return &versionService{
		versionRepo:    versionRepo,
		access:         access,
		contextTimeout: timeout,
	}
}

func (s *versionService) Create(ctx context.Context, callerID string, v *domain.Version) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.access.Require(ctx, v.EventID, callerID, domain.MinRoleEdit); err != nil {
		return err
	}
	now := time.Now()
	v.CreatedByUser = callerID
	v.CreatedAt = now
	v.UpdatedAt = now
	if err := s.versionRepo.Create(ctx, v); err != nil {
		return fmt.Errorf("create version: %w", err)
	}
	return nil
}

func (s *versionService) ListByEvent(ctx context.Context, eventID, callerID string) ([]*domain.Version, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.access.Require(ctx, eventID, callerID, domain.MinRoleView); err != nil {
		return nil, err
	}
	versions, err := s.versionRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

func (s *versionService) load(ctx context.Context, versionID, callerID string, min domain.Role) (*domain.Version, error) {
	v, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Require(ctx, v.EventID, callerID, min); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *versionService) Get(ctx context.Context, versionID, callerID string) (*domain.Version, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.load(ctx, versionID, callerID, domain.MinRoleView)
}

// Update applies metadata changes and, when is_active is true, activates the version.
// Deactivation is only possible by activating a sibling.
func (s *versionService) Update(ctx context.Context, versionID, callerID string, upd domain.VersionUpdate) (*domain.Version, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v, err := s.load(ctx, versionID, callerID, domain.MinRoleEdit)
	if err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if err := domain.NewValidationError(upd.Validate()...); err != nil {
		return nil, err
	}
	if upd.IsActive.HasValue() && !upd.IsActive.Value {
		return nil, domain.ErrCannotDeactivate
	}

	if upd.HasMetadata() {
		upd.Apply(v)
		v.UpdatedAt = time.Now()
		if err := s.versionRepo.Update(ctx, v); err != nil {
			return nil, fmt.Errorf("update version: %w", err)
		}
	}
	if upd.IsActive.HasValue() && upd.IsActive.Value && !v.IsActive {
		if err := s.versionRepo.Activate(ctx, v.ID); err != nil {
			return nil, fmt.Errorf("activate version: %w", err)
		}
	}
	return s.versionRepo.GetByID(ctx, v.ID)
}

func (s *versionService) Activate(ctx context.Context, versionID, callerID string) (*domain.Version, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v, err := s.load(ctx, versionID, callerID, domain.MinRoleEdit)
	if err != nil {
		return nil, err
	}
	if err := s.versionRepo.Activate(ctx, v.ID); err != nil {
		return nil, fmt.Errorf("activate version: %w", err)
	}
	return s.versionRepo.GetByID(ctx, v.ID)
}

// Duplicate copies the version and its tables into the event's next version. The copy
// is inactive and carries no assignments.
func (s *versionService) Duplicate(ctx context.Context, versionID, callerID string, name *string) (*domain.Version, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	src, err := s.load(ctx, versionID, callerID, domain.MinRoleEdit)
	if err != nil {
		return nil, err
	}
	newName := src.DuplicateName(name)
	if len(newName) > 100 {
		return nil, domain.NewValidationError("name: must be 1-100 characters")
	}
	newID, err := s.versionRepo.Duplicate(ctx, src.ID, newName, callerID)
	if err != nil {
		return nil, fmt.Errorf("duplicate version: %w", err)
	}
	return s.versionRepo.GetByID(ctx, newID)
}

func (s *versionService) Delete(ctx context.Context, versionID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v, err := s.load(ctx, versionID, callerID, domain.MinRoleDelete)
	if err != nil {
		return err
	}
	if err := s.versionRepo.Delete(ctx, v.ID); err != nil {
		return fmt.Errorf("delete version: %w", err)
	}
	return nil
}
