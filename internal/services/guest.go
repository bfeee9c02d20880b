package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seatplanner/internal/domain"
)

type guestService struct {
	guestRepo      domain.GuestRepository
	groupRepo      domain.GroupRepository
	access         domain.AccessResolver
	contextTimeout time.Duration
}

func NewGuestService(guestRepo domain.GuestRepository, groupRepo domain.GroupRepository, access domain.AccessResolver, timeout time.Duration) domain.GuestService {
	return &guestService{
		guestRepo:      guestRepo,
		groupRepo:      groupRepo,
		access:         access,
		contextTimeout: timeout,
	}
}

func (s *guestService) Create(ctx context.Context, callerID string, guest *domain.Guest) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.access.Require(ctx, guest.EventID, callerID, domain.MinRoleEdit); err != nil {
		return err
	}
	if err := s.checkReferences(ctx, guest); err != nil {
		return err
	}

	now := time.Now()
	guest.AddedByUser = callerID
	guest.CreatedAt = now
	guest.UpdatedAt = now
	if guest.GuestType == "" {
		guest.GuestType = domain.GuestPrimary
	}
	if guest.RSVPStatus == "" {
		guest.RSVPStatus = domain.RSVPPending
	}
	if guest.DietaryRestrictions == nil {
		guest.DietaryRestrictions = []string{}
	}
	if err := s.guestRepo.Create(ctx, guest); err != nil {
		return fmt.Errorf("create guest: %w", err)
	}
	return nil
}

// checkReferences keeps primary_guest_id and current_group inside the guest's event.
func (s *guestService) checkReferences(ctx context.Context, guest *domain.Guest) error {
	if guest.PrimaryGuestID != nil {
		if *guest.PrimaryGuestID == guest.ID {
			return domain.ErrPrimaryGuestInvalid
		}
		primary, err := s.guestRepo.GetByID(ctx, *guest.PrimaryGuestID)
		if errors.Is(err, domain.ErrNotFound) || (err == nil && primary.EventID != guest.EventID) {
			return domain.ErrPrimaryGuestInvalid
		}
		if err != nil {
			return fmt.Errorf("get primary guest: %w", err)
		}
	}
	if guest.CurrentGroup != nil {
		group, err := s.groupRepo.GetByID(ctx, *guest.CurrentGroup)
		if errors.Is(err, domain.ErrNotFound) || (err == nil && group.EventID != guest.EventID) {
			return domain.ErrGroupNotInEvent
		}
		if err != nil {
			return fmt.Errorf("get group: %w", err)
		}
	}
	return nil
}

func (s *guestService) ListByEvent(ctx context.Context, eventID, callerID string, params domain.PaginationParams) ([]*domain.Guest, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.access.Require(ctx, eventID, callerID, domain.MinRoleView); err != nil {
		return nil, 0, err
	}
	guests, total, err := s.guestRepo.ListByEventID(ctx, eventID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list guests: %w", err)
	}
	return guests, total, nil
}

func (s *guestService) load(ctx context.Context, guestID, callerID string, min domain.Role) (*domain.Guest, error) {
	guest, err := s.guestRepo.GetByID(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Require(ctx, guest.EventID, callerID, min); err != nil {
		return nil, err
	}
	return guest, nil
}

func (s *guestService) Get(ctx context.Context, guestID, callerID string) (*domain.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.load(ctx, guestID, callerID, domain.MinRoleView)
}

func (s *guestService) Update(ctx context.Context, guestID, callerID string, upd domain.GuestUpdate) (*domain.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	guest, err := s.load(ctx, guestID, callerID, domain.MinRoleEdit)
	if err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if err := domain.NewValidationError(upd.Validate()...); err != nil {
		return nil, err
	}

	upd.Apply(guest)
	if upd.PrimaryGuestID.HasValue() || upd.CurrentGroup.HasValue() {
		if err := s.checkReferences(ctx, guest); err != nil {
			return nil, err
		}
	}
	guest.UpdatedAt = time.Now()
	if err := s.guestRepo.Update(ctx, guest); err != nil {
		return nil, fmt.Errorf("update guest: %w", err)
	}
	return s.guestRepo.GetByID(ctx, guest.ID)
}

func (s *guestService) Delete(ctx context.Context, guestID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	guest, err := s.load(ctx, guestID, callerID, domain.MinRoleDelete)
	if err != nil {
		return err
	}
	if err := s.guestRepo.Delete(ctx, guest.ID); err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	return nil
}
