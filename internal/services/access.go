package services

import (
	"context"
	"errors"
	"fmt"

	"seatplanner/internal/domain"
)

type accessResolver struct {
	eventRepo        domain.EventRepository
	collaboratorRepo domain.CollaboratorRepository
}

// NewAccessResolver returns the AccessResolver every event-scoped service checks through.
func NewAccessResolver(eventRepo domain.EventRepository, collaboratorRepo domain.CollaboratorRepository) domain.AccessResolver {
	return &accessResolver{eventRepo: eventRepo, collaboratorRepo: collaboratorRepo}
}

func (a *accessResolver) Resolve(ctx context.Context, eventID, userID string) (*domain.Access, error) {
	event, err := a.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	var collab *domain.Collaborator
	if userID != "" && userID != event.OwnerUserID {
		collab, err = a.collaboratorRepo.GetActive(ctx, eventID, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get collaborator: %w", err)
		}
	}

	role := domain.ResolveRole(event.OwnerUserID, userID, collab)
	if role == domain.RoleNone {
		return nil, domain.ErrNotFound
	}
	event.UserRole = role
	return &domain.Access{
		EventID:     event.ID,
		OwnerUserID: event.OwnerUserID,
		UserID:      userID,
		Role:        role,
		Event:       event,
	}, nil
}

func (a *accessResolver) Require(ctx context.Context, eventID, userID string, min domain.Role) (*domain.Access, error) {
	access, err := a.Resolve(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if !access.Role.AtLeast(min) {
		return nil, domain.ErrForbidden
	}
	return access, nil
}
