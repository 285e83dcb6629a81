package sqlite

import (
	"context"
	"testing"

	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"
)

func TestProfileRepository_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProfileRepository(db, testLogger())
	ctx := context.Background()

	profile := models.NewProfile("ana@example.com", models.RoleUser)
	if err := repo.Create(ctx, profile); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}

	got, err := repo.GetByID(ctx, profile.ID)
	if err != nil {
		t.Fatalf("Failed to get profile: %v", err)
	}

	if got.ID != profile.ID {
		t.Errorf("Expected ID %s, got %s", profile.ID, got.ID)
	}
	if got.Email == nil || *got.Email != "ana@example.com" {
		t.Errorf("Expected email ana@example.com, got %v", got.Email)
	}
	if got.Role != models.RoleUser {
		t.Errorf("Expected role user, got %s", got.Role)
	}
}

func TestProfileRepository_Create_Duplicate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProfileRepository(db, testLogger())
	ctx := context.Background()

	profile := models.NewProfile("dup@example.com", models.RoleUser)
	if err := repo.Create(ctx, profile); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}

	err := repo.Create(ctx, profile)
	if err == nil {
		t.Fatal("Expected error when creating duplicate profile")
	}
	if !repositories.IsDuplicate(err) {
		t.Errorf("Expected duplicate error, got %v", err)
	}
}

func TestProfileRepository_GetByID_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProfileRepository(db, testLogger())

	_, err := repo.GetByID(context.Background(), "missing-id")
	if err == nil {
		t.Fatal("Expected error for missing profile")
	}
	if !repositories.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestProfileRepository_GetRole(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProfileRepository(db, testLogger())
	ctx := context.Background()

	admin := models.NewProfile("admin@example.com", models.RoleAdmin)
	if err := repo.Create(ctx, admin); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}

	role, err := repo.GetRole(ctx, admin.ID)
	if err != nil {
		t.Fatalf("Failed to get role: %v", err)
	}
	if role != models.RoleAdmin {
		t.Errorf("Expected role admin, got %s", role)
	}
}

func TestProfileRepository_List_Filters(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProfileRepository(db, testLogger())
	ctx := context.Background()

	profiles := []*models.Profile{
		models.NewProfile("maria@loja.com", models.RoleAdmin),
		models.NewProfile("joao@loja.com", models.RoleUser),
		models.NewProfile("pedro@gmail.com", models.RoleUser),
	}
	for _, p := range profiles {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Failed to create profile: %v", err)
		}
	}

	// role filter
	results, total, err := repo.List(ctx, &repositories.ProfileFilters{Role: rolePtr(models.RoleUser)})
	if err != nil {
		t.Fatalf("Failed to list profiles: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected total 2, got %d", total)
	}
	for _, p := range results {
		if p.Role != models.RoleUser {
			t.Errorf("Expected only user profiles, got role %s", p.Role)
		}
	}

	// partial case-insensitive email filter
	results, total, err = repo.List(ctx, &repositories.ProfileFilters{Email: "LOJA"})
	if err != nil {
		t.Fatalf("Failed to list profiles: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected total 2 for email filter, got %d", total)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(results))
	}
}

func TestProfileRepository_List_Pagination(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProfileRepository(db, testLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := repo.Create(ctx, models.NewProfile("", models.RoleUser)); err != nil {
			t.Fatalf("Failed to create profile: %v", err)
		}
	}

	results, total, err := repo.List(ctx, &repositories.ProfileFilters{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("Failed to list profiles: %v", err)
	}
	if total != 5 {
		t.Errorf("Expected total 5, got %d", total)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 results on page 2, got %d", len(results))
	}
}

func TestProfileRepository_Update(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProfileRepository(db, testLogger())
	ctx := context.Background()

	profile := models.NewProfile("old@example.com", models.RoleUser)
	if err := repo.Create(ctx, profile); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}

	updated, err := repo.Update(ctx, profile.ID, stringPtr("new@example.com"), rolePtr(models.RoleAdmin))
	if err != nil {
		t.Fatalf("Failed to update profile: %v", err)
	}

	if updated.Email == nil || *updated.Email != "new@example.com" {
		t.Errorf("Expected email new@example.com, got %v", updated.Email)
	}
	if updated.Role != models.RoleAdmin {
		t.Errorf("Expected role admin, got %s", updated.Role)
	}
}

func TestProfileRepository_Update_NoFields(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProfileRepository(db, testLogger())
	ctx := context.Background()

	profile := models.NewProfile("x@example.com", models.RoleUser)
	if err := repo.Create(ctx, profile); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}

	_, err := repo.Update(ctx, profile.ID, nil, nil)
	if err == nil {
		t.Fatal("Expected error when updating with no fields")
	}
	if !repositories.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestProfileRepository_Delete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProfileRepository(db, testLogger())
	ctx := context.Background()

	profile := models.NewProfile("del@example.com", models.RoleUser)
	if err := repo.Create(ctx, profile); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}

	if err := repo.Delete(ctx, profile.ID); err != nil {
		t.Fatalf("Failed to delete profile: %v", err)
	}

	_, err := repo.GetByID(ctx, profile.ID)
	if !repositories.IsNotFound(err) {
		t.Errorf("Expected not found after delete, got %v", err)
	}

	if err := repo.Delete(ctx, profile.ID); !repositories.IsNotFound(err) {
		t.Errorf("Expected not found when deleting twice, got %v", err)
	}
}
