package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ProfileRepository implements repositories.ProfileRepository using SQLite
type ProfileRepository struct {
	*BaseRepository
}

// NewProfileRepository creates a new SQLite profile repository
func NewProfileRepository(db *sql.DB, logger *logrus.Logger) *ProfileRepository {
	return &ProfileRepository{
		BaseRepository: NewBaseRepository(db, "profiles", logger),
	}
}

const profileColumns = "id, email, role, created_at, updated_at"

// Create creates a new profile
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := profile.Validate(); err != nil {
		return repositories.ValidationError("profile", profile.ID, err)
	}

	query := `INSERT INTO profiles (id, email, role, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		profile.ID, profile.Email, profile.Role, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		if repositories.IsDuplicate(err) {
			return repositories.DuplicateError("profile", "id", profile.ID)
		}
		return err
	}

	return nil
}

// GetByID retrieves a profile by its ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM profiles WHERE id = ?", profileColumns)

	row := r.executeQueryRow(ctx, "get", query, id)
	profile, err := scanProfile(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError("profile", id)
		}
		return nil, repositories.NewRepositoryError("get", "profile", id, err)
	}

	return profile, nil
}

// GetRole retrieves only the role of a profile
func (r *ProfileRepository) GetRole(ctx context.Context, id string) (models.Role, error) {
	if err := r.validateID(id); err != nil {
		return "", err
	}

	var role models.Role
	row := r.executeQueryRow(ctx, "get_role", "SELECT role FROM profiles WHERE id = ?", id)
	if err := row.Scan(&role); err != nil {
		if err == sql.ErrNoRows {
			return "", repositories.NotFoundError("profile", id)
		}
		return "", repositories.NewRepositoryError("get_role", "profile", id, err)
	}

	return role, nil
}

// List retrieves profiles with filters, pagination and ordering
func (r *ProfileRepository) List(ctx context.Context, filters *repositories.ProfileFilters) ([]*models.Profile, int64, error) {
	if filters == nil {
		filters = &repositories.ProfileFilters{}
	}
	filters.Normalize()

	var conditions []string
	var args []interface{}

	if filters.Email != "" {
		conditions = append(conditions, "email LIKE ? COLLATE NOCASE")
		args = append(args, "%"+filters.Email+"%")
	}
	if filters.Role != nil {
		conditions = append(conditions, "role = ?")
		args = append(args, *filters.Role)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	total, err := r.countRows(ctx, "list", whereClause, args...)
	if err != nil {
		return nil, 0, err
	}

	orderBy := "created_at DESC"
	switch filters.Sort {
	case repositories.ProfileSortRoleAsc:
		orderBy = "role ASC, created_at DESC"
	case repositories.ProfileSortRoleDesc:
		orderBy = "role DESC, created_at DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM profiles %s ORDER BY %s LIMIT ? OFFSET ?",
		profileColumns, whereClause, orderBy)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.executeQuery(ctx, "list", query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, 0, repositories.NewRepositoryError("list", "profile", "", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, repositories.NewRepositoryError("list", "profile", "", err)
	}

	return profiles, total, nil
}

// Update applies the provided non-nil fields to a profile
func (r *ProfileRepository) Update(ctx context.Context, id string, email *string, role *models.Role) (*models.Profile, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	var sets []string
	var args []interface{}

	if email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *email)
	}
	if role != nil {
		sets = append(sets, "role = ?")
		args = append(args, *role)
	}
	if len(sets) == 0 {
		return nil, repositories.ValidationError("profile", id,
			fmt.Errorf("no fields to update"))
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	query := fmt.Sprintf("UPDATE profiles SET %s WHERE id = ?", strings.Join(sets, ", "))
	args = append(args, id)

	result, err := r.executeExec(ctx, "update", query, args...)
	if err != nil {
		return nil, err
	}
	if err := r.checkRowsAffected(result, "update", id); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// Delete removes a profile by ID
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	if err := r.validateID(id); err != nil {
		return err
	}

	result, err := r.executeExec(ctx, "delete", "DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "delete", id)
}

// scanner abstracts sql.Row and sql.Rows for shared scan helpers
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(s scanner) (*models.Profile, error) {
	var profile models.Profile
	var email sql.NullString

	if err := s.Scan(&profile.ID, &email, &profile.Role, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		return nil, err
	}

	if email.Valid {
		profile.Email = &email.String
	}

	return &profile, nil
}
