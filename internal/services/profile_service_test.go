package services

import (
	"context"
	"testing"

	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"
)

func TestProfileService_ListProfiles(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	svc := NewProfileService(repos.ProfileRepo, testLogger())
	ctx := context.Background()

	createProfile(t, repos, "um@example.com", models.RoleUser)
	createProfile(t, repos, "dois@example.com", models.RoleAdmin)

	adminRole := models.RoleAdmin
	list, err := svc.ListProfiles(ctx, &repositories.ProfileFilters{Role: &adminRole})
	if err != nil {
		t.Fatalf("Failed to list profiles: %v", err)
	}
	if list.Count != 1 {
		t.Errorf("Expected 1 admin, got %d", list.Count)
	}

	badRole := models.Role("gerente")
	_, err = svc.ListProfiles(ctx, &repositories.ProfileFilters{Role: &badRole})
	if !IsInvalidInput(err) {
		t.Errorf("Expected invalid input for unknown role, got %v", err)
	}
}

func TestProfileService_UpdateProfile(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	svc := NewProfileService(repos.ProfileRepo, testLogger())
	ctx := context.Background()

	profile := createProfile(t, repos, "antes@example.com", models.RoleUser)

	adminRole := models.RoleAdmin
	updated, err := svc.UpdateProfile(ctx, &ProfileUpdateRequest{
		ID:    profile.ID,
		Email: strPtr("depois@example.com"),
		Role:  &adminRole,
	})
	if err != nil {
		t.Fatalf("Failed to update profile: %v", err)
	}
	if updated.Email == nil || *updated.Email != "depois@example.com" {
		t.Errorf("Expected updated email, got %v", updated.Email)
	}
	if updated.Role != models.RoleAdmin {
		t.Errorf("Expected role admin, got %s", updated.Role)
	}
}

func TestProfileService_UpdateProfile_Validation(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	svc := NewProfileService(repos.ProfileRepo, testLogger())
	ctx := context.Background()

	profile := createProfile(t, repos, "valida@example.com", models.RoleUser)

	// no fields
	_, err := svc.UpdateProfile(ctx, &ProfileUpdateRequest{ID: profile.ID})
	if !IsInvalidInput(err) {
		t.Errorf("Expected invalid input for empty update, got %v", err)
	}

	// malformed email
	_, err = svc.UpdateProfile(ctx, &ProfileUpdateRequest{
		ID:    profile.ID,
		Email: strPtr("sem-arroba"),
	})
	if !IsInvalidInput(err) {
		t.Errorf("Expected invalid input for bad email, got %v", err)
	}

	// unknown role
	badRole := models.Role("gerente")
	_, err = svc.UpdateProfile(ctx, &ProfileUpdateRequest{
		ID:   profile.ID,
		Role: &badRole,
	})
	if !IsInvalidInput(err) {
		t.Errorf("Expected invalid input for bad role, got %v", err)
	}
}

func TestProfileService_DeleteProfile(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	svc := NewProfileService(repos.ProfileRepo, testLogger())
	ctx := context.Background()

	admin := createProfile(t, repos, "admin@example.com", models.RoleAdmin)
	user := createProfile(t, repos, "alvo@example.com", models.RoleUser)

	// admins cannot delete themselves
	err := svc.DeleteProfile(ctx, admin.ID, admin.ID)
	if !IsForbidden(err) {
		t.Errorf("Expected forbidden for admin self-delete, got %v", err)
	}

	// deleting another profile works
	if err := svc.DeleteProfile(ctx, user.ID, admin.ID); err != nil {
		t.Fatalf("Failed to delete profile: %v", err)
	}

	if _, err := svc.GetRole(ctx, user.ID); !IsNotFound(err) {
		t.Errorf("Expected not found after delete, got %v", err)
	}
}
