package services

import (
	"context"
	"fmt"
	"time"

	"seatplanner/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	access         domain.AccessResolver
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository, access domain.AccessResolver, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		access:         access,
		contextTimeout: timeout,
	}
}

func (s *eventService) Create(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OwnerUserID == "" {
		return fmt.Errorf("event owner is required")
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.Status == "" {
		event.Status = domain.EventPlanning
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	event.UserRole = domain.RoleOwner
	return nil
}

func (s *eventService) ListForUser(ctx context.Context, userID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) Get(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	access, err := s.access.Require(ctx, eventID, userID, domain.MinRoleView)
	if err != nil {
		return nil, err
	}
	return access.Event, nil
}

func (s *eventService) Update(ctx context.Context, eventID, userID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	access, err := s.access.Require(ctx, eventID, userID, domain.MinRoleEventSettings)
	if err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if err := domain.NewValidationError(upd.Validate()...); err != nil {
		return nil, err
	}

	event := access.Event
	upd.Apply(event)
	event.UpdatedAt = time.Now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// Delete is owner-only and removes everything under the event.
func (s *eventService) Delete(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.access.Require(ctx, eventID, userID, domain.MinRoleDeleteEvent); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) Stats(ctx context.Context, eventID, userID string) (*domain.EventStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.access.Require(ctx, eventID, userID, domain.MinRoleView); err != nil {
		return nil, err
	}
	stats, err := s.eventRepo.Stats(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	return stats, nil
}
