package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"seatplanner/internal/domain"
)

type collaboratorService struct {
	collaboratorRepo domain.CollaboratorRepository
	userRepo         domain.UserRepository
	access           domain.AccessResolver
	emailService     domain.EmailService
	appBaseURL       string
	logger           *slog.Logger
	contextTimeout   time.Duration
}

// NewCollaboratorService wires the collaborator use cases. emailService may be nil,
// in which case invitations are stored without notifying the invitee.
func NewCollaboratorService(
	collaboratorRepo domain.CollaboratorRepository,
	userRepo domain.UserRepository,
	access domain.AccessResolver,
	emailService domain.EmailService,
	appBaseURL string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.CollaboratorService {
	return &collaboratorService{
		collaboratorRepo: collaboratorRepo,
		userRepo:         userRepo,
		access:           access,
		emailService:     emailService,
		appBaseURL:       strings.TrimRight(appBaseURL, "/"),
		logger:           logger,
		contextTimeout:   timeout,
	}
}

func invalidCollaboratorRole() error {
	return domain.NewValidationError("role: must be one of admin, editor, viewer")
}

func (s *collaboratorService) Invite(ctx context.Context, eventID, callerID, email string, role domain.Role) (*domain.Collaborator, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !role.IsCollaboratorRole() {
		return nil, invalidCollaboratorRole()
	}
	access, err := s.access.Require(ctx, eventID, callerID, domain.MinRoleManageCollaborator)
	if err != nil {
		return nil, err
	}

	invitee, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if invitee.ID == access.OwnerUserID {
		return nil, domain.ErrOwnerAsCollaborator
	}

	collab, err := s.collaboratorRepo.InviteOrReactivate(ctx, eventID, invitee.ID, role, callerID)
	if err != nil {
		return nil, fmt.Errorf("invite collaborator: %w", err)
	}

	s.notifyInvitee(ctx, access.Event, invitee, callerID, role)
	return collab, nil
}

// notifyInvitee sends the invitation email. The invite is already committed, so a
// delivery failure is logged and not returned.
func (s *collaboratorService) notifyInvitee(ctx context.Context, event *domain.Event, invitee *domain.User, callerID string, role domain.Role) {
	if s.emailService == nil {
		return
	}
	inviterName := ""
	if inviter, err := s.userRepo.GetByID(ctx, callerID); err == nil {
		inviterName = inviter.DisplayName
	}
	data := &domain.CollaboratorInvitationEmailData{
		Email:       invitee.Email,
		InviteeName: invitee.DisplayName,
		InviterName: inviterName,
		EventName:   event.Name,
		Role:        role,
		EventURL:    fmt.Sprintf("%s/events/%s", s.appBaseURL, event.ID),
	}
	if err := s.emailService.SendCollaboratorInvitation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "collaborator invitation email failed",
			"event_id", event.ID, "user_id", invitee.ID, "err", err)
	}
}

func (s *collaboratorService) ListByEvent(ctx context.Context, eventID, callerID string) ([]*domain.Collaborator, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.access.Require(ctx, eventID, callerID, domain.MinRoleView); err != nil {
		return nil, err
	}
	list, err := s.collaboratorRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	return list, nil
}

func (s *collaboratorService) ListMine(ctx context.Context, callerID string) ([]*domain.Collaboration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.collaboratorRepo.ListByUserID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list collaborations: %w", err)
	}
	return list, nil
}

// load fetches an active collaborator and checks the caller's role on its event.
func (s *collaboratorService) load(ctx context.Context, collaboratorID, callerID string, min domain.Role) (*domain.Collaborator, error) {
	collab, err := s.collaboratorRepo.GetByID(ctx, collaboratorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Require(ctx, collab.EventID, callerID, min); err != nil {
		return nil, err
	}
	return collab, nil
}

func (s *collaboratorService) Get(ctx context.Context, collaboratorID, callerID string) (*domain.Collaborator, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.load(ctx, collaboratorID, callerID, domain.MinRoleView)
}

func (s *collaboratorService) UpdateRole(ctx context.Context, collaboratorID, callerID string, role domain.Role) (*domain.Collaborator, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !role.IsCollaboratorRole() {
		return nil, invalidCollaboratorRole()
	}
	collab, err := s.load(ctx, collaboratorID, callerID, domain.MinRoleManageCollaborator)
	if err != nil {
		return nil, err
	}
	if err := s.collaboratorRepo.UpdateRole(ctx, collab.ID, role); err != nil {
		return nil, fmt.Errorf("update collaborator role: %w", err)
	}
	collab.Role = role
	return collab, nil
}

// Remove lets admins remove anyone and any collaborator remove themselves.
func (s *collaboratorService) Remove(ctx context.Context, collaboratorID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	collab, err := s.collaboratorRepo.GetByID(ctx, collaboratorID)
	if err != nil {
		return err
	}
	min := domain.MinRoleManageCollaborator
	if collab.UserID == callerID {
		min = domain.MinRoleView
	}
	if _, err := s.access.Require(ctx, collab.EventID, callerID, min); err != nil {
		return err
	}
	if err := s.collaboratorRepo.Remove(ctx, collab.ID); err != nil {
		return fmt.Errorf("remove collaborator: %w", err)
	}
	return nil
}
