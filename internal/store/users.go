package store

import (
	"context"

	"marketplace-api/internal/models"
)

// userColumns never includes password_hash
const userColumns = "id, username, email, created_at, updated_at"

// UserFields holds the columns a user update may change
type UserFields struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

// ListUsers returns one page of users ordered by id and the total user count
func (s *Store) ListUsers(ctx context.Context, page models.PageRequest) ([]models.User, int64, error) {
	total, err := s.count(ctx, "users")
	if err != nil {
		return nil, 0, err
	}

	users := []models.User{}
	err = s.q.SelectContext(ctx, &users,
		"SELECT "+userColumns+" FROM users ORDER BY id ASC LIMIT $1 OFFSET $2",
		page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.q.GetContext(ctx, &user, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// UserExists reports whether a user row exists
func (s *Store) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.q.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", id)
	return exists, err
}

// FindUserConflicts returns users other than excludeID holding username or email.
// Pass excludeID 0 when creating.
func (s *Store) FindUserConflicts(ctx context.Context, username, email string, excludeID int64) ([]models.User, error) {
	users := []models.User{}
	err := s.q.SelectContext(ctx, &users, `
		SELECT `+userColumns+`
		FROM users
		WHERE (username = $1 OR email = $2) AND id <> $3
		ORDER BY id ASC`, username, email, excludeID)
	return users, err
}

// CreateUser inserts a user, hash already computed
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	return translate(s.q.GetContext(ctx, user, query, user.Username, user.Email, user.PasswordHash))
}

// UpdateUser changes only the supplied columns
func (s *Store) UpdateUser(ctx context.Context, id int64, fields UserFields) (*models.User, error) {
	b := NewUpdate("users").Touch("updated_at")
	if fields.Username != nil {
		b.Set("username", *fields.Username)
	}
	if fields.Email != nil {
		b.Set("email", *fields.Email)
	}
	if fields.PasswordHash != nil {
		b.Set("password_hash", *fields.PasswordHash)
	}

	query, args, err := b.Build("id", id, userColumns)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.q.GetContext(ctx, &user, query, args...); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// DeleteUser removes a user and returns the deleted row. Orders and reviews cascade.
func (s *Store) DeleteUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.q.GetContext(ctx, &user, "DELETE FROM users WHERE id = $1 RETURNING "+userColumns, id)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// ReviewedProductIDs lists the products a user has reviewed
func (s *Store) ReviewedProductIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	err := s.q.SelectContext(ctx, &ids,
		"SELECT DISTINCT product_id FROM reviews WHERE user_id = $1 ORDER BY product_id ASC", userID)
	return ids, err
}
