package services

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"
)

// profileService implements the ProfileService interface
type profileService struct {
	profileRepo repositories.ProfileRepository
	validator   *validator.Validate
	logger      *logrus.Logger
}

// NewProfileService creates a new profile service instance
func NewProfileService(profileRepo repositories.ProfileRepository, logger *logrus.Logger) ProfileService {
	if logger == nil {
		logger = logrus.New()
	}
	return &profileService{
		profileRepo: profileRepo,
		validator:   validator.New(),
		logger:      logger,
	}
}

// ListProfiles lists profiles with filters and pagination
func (s *profileService) ListProfiles(ctx context.Context, filters *repositories.ProfileFilters) (*ProfileList, error) {
	if filters == nil {
		filters = &repositories.ProfileFilters{}
	}
	if filters.Role != nil && *filters.Role != models.RoleAdmin && *filters.Role != models.RoleUser {
		return nil, invalidf("role inválida: %s", *filters.Role)
	}

	profiles, count, err := s.profileRepo.List(ctx, filters)
	if err != nil {
		return nil, wrapRepoErr("falha ao listar perfis", err)
	}
	if profiles == nil {
		profiles = []*models.Profile{}
	}

	return &ProfileList{Data: profiles, Count: count}, nil
}

// UpdateProfile updates email and/or role; one of them is required
func (s *profileService) UpdateProfile(ctx context.Context, req *ProfileUpdateRequest) (*models.Profile, error) {
	if req == nil {
		return nil, invalidf("update request cannot be nil")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidf("validation failed: %v", err)
	}
	if req.Email == nil && req.Role == nil {
		return nil, invalidf("informe ao menos um campo para atualizar (email ou role)")
	}
	if req.Email != nil && !models.IsValidEmail(*req.Email) {
		return nil, invalidf("email inválido: %s", *req.Email)
	}
	if req.Role != nil && *req.Role != models.RoleAdmin && *req.Role != models.RoleUser {
		return nil, invalidf("role inválida: %s", *req.Role)
	}

	profile, err := s.profileRepo.Update(ctx, req.ID, req.Email, req.Role)
	if err != nil {
		return nil, wrapRepoErr("falha ao atualizar perfil", err)
	}

	return profile, nil
}

// DeleteProfile removes a profile; admins cannot delete themselves
func (s *profileService) DeleteProfile(ctx context.Context, id, currentUserID string) error {
	if id == "" {
		return invalidf("profile ID is required")
	}

	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return wrapRepoErr("perfil não encontrado", err)
	}

	if currentUserID != "" && id == currentUserID && profile.IsAdmin() {
		return forbiddenf("administradores não podem deletar seu próprio perfil")
	}

	if err := s.profileRepo.Delete(ctx, id); err != nil {
		return wrapRepoErr("falha ao remover perfil", err)
	}

	return nil
}

// GetRole returns the role of a profile
func (s *profileService) GetRole(ctx context.Context, id string) (models.Role, error) {
	role, err := s.profileRepo.GetRole(ctx, id)
	if err != nil {
		return "", wrapRepoErr("perfil não encontrado", err)
	}
	return role, nil
}
