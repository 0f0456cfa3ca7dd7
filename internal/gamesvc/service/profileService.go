package service

import (
	"context"
	"fmt"

	"github.com/promptfighter/game-services/internal/gamesvc/models"
)

// ProfileService bootstraps display profiles for users coming from the
// identity provider. The core only needs a stable user id and a name.
type ProfileService struct {
	profiles ProfileStore
}

func NewProfileService(profiles ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// GetOrCreateProfile returns the existing profile or creates one from the
// supplied identity.
func (s *ProfileService) GetOrCreateProfile(ctx context.Context, profile models.Profile) (*models.Profile, error) {
	if profile.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	existing, err := s.profiles.GetByID(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if profile.Username == "" {
		profile.Username = "Player"
	}
	profile.Status = "ACTIVE"
	return s.profiles.CreateProfile(ctx, profile)
}
