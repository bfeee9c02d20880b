package services

import (
	"context"
	"fmt"
	"time"

	"seatplanner/internal/domain"
)

type groupService struct {
	groupRepo      domain.GroupRepository
	guestRepo      domain.GuestRepository
	access         domain.AccessResolver
	contextTimeout time.Duration
}

func NewGroupService(groupRepo domain.GroupRepository, guestRepo domain.GuestRepository, access domain.AccessResolver, timeout time.Duration) domain.GroupService {
	return &groupService{
		groupRepo:      groupRepo,
		guestRepo:      guestRepo,
		access:         access,
		contextTimeout: timeout,
	}
}

func (s *groupService) Create(ctx context.Context, callerID string, group *domain.Group) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.access.Require(ctx, group.EventID, callerID, domain.MinRoleEdit); err != nil {
		return err
	}
	group.CreatedAt = time.Now()
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

func (s *groupService) ListByEvent(ctx context.Context, eventID, callerID string) ([]*domain.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.access.Require(ctx, eventID, callerID, domain.MinRoleView); err != nil {
		return nil, err
	}
	groups, err := s.groupRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

func (s *groupService) load(ctx context.Context, groupID, callerID string, min domain.Role) (*domain.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Require(ctx, group.EventID, callerID, min); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *groupService) Get(ctx context.Context, groupID, callerID string) (*domain.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.load(ctx, groupID, callerID, domain.MinRoleView)
}

func (s *groupService) Update(ctx context.Context, groupID, callerID string, upd domain.GroupUpdate) (*domain.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	group, err := s.load(ctx, groupID, callerID, domain.MinRoleEdit)
	if err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if err := domain.NewValidationError(upd.Validate()...); err != nil {
		return nil, err
	}
	upd.Apply(group)
	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	return group, nil
}

func (s *groupService) Delete(ctx context.Context, groupID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	group, err := s.load(ctx, groupID, callerID, domain.MinRoleDelete)
	if err != nil {
		return err
	}
	if err := s.groupRepo.Delete(ctx, group.ID); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

func (s *groupService) ListGuests(ctx context.Context, groupID, callerID string) ([]*domain.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	group, err := s.load(ctx, groupID, callerID, domain.MinRoleView)
	if err != nil {
		return nil, err
	}
	guests, err := s.guestRepo.ListByGroupID(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("list group guests: %w", err)
	}
	return guests, nil
}
