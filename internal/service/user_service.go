package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace-api/internal/broker"
	"marketplace-api/internal/errs"
	"marketplace-api/internal/models"
	"marketplace-api/internal/store"
	"marketplace-api/internal/util"
	"marketplace-api/internal/validation"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgUsernameTaken = "Username already exists"
	msgEmailTaken    = "Email already exists"
)

// bcryptCost is lowered in tests
var bcryptCost = bcrypt.DefaultCost

// UserService handles user business logic
type UserService struct {
	store  *store.Store
	events *broker.EventPublisher
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(store *store.Store, events *broker.EventPublisher) *UserService {
	return &UserService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// ListUsers returns one page of users
func (s *UserService) ListUsers(ctx context.Context, page models.PageRequest) (*models.Page[models.User], error) {
	users, total, err := s.store.ListUsers(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &models.Page[models.User]{Items: users, Pagination: models.NewPagination(page, total)}, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "User not found", "")
	}
	return user, nil
}

// CreateUser validates, hashes the password and stores a new user
func (s *UserService) CreateUser(ctx context.Context, req validation.UserCreate) (user *models.User, err error) {
	ctx, span := util.StartSpan(ctx, "UserService.CreateUser")
	defer func() {
		recordMutation("user", "create", err)
		util.EndSpan(span, err)
	}()

	if err := validate(req); err != nil {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user = &models.User{Username: req.Username, Email: req.Email, PasswordHash: hash}
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := checkUserConflicts(ctx, tx, req.Username, req.Email, 0); err != nil {
			return err
		}
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, userStoreError(err)
	}

	s.logger.Info("User created", zap.Int64("user_id", user.ID))
	if err := s.events.PublishUser(ctx, models.EventTypeUserCreated, user); err != nil {
		s.logger.Error("Failed to publish UserCreated event", zap.Error(err))
	}
	return user, nil
}

// UpdateUser changes the supplied fields of a user
func (s *UserService) UpdateUser(ctx context.Context, id int64, req validation.UserUpdate) (user *models.User, err error) {
	ctx, span := util.StartSpan(ctx, "UserService.UpdateUser", attribute.Int64("user.id", id))
	defer func() {
		recordMutation("user", "update", err)
		util.EndSpan(span, err)
	}()

	if err := validate(req); err != nil {
		return nil, err
	}
	if req.Empty() {
		return nil, errs.NewBadRequestError(msgNoFields)
	}

	fields := store.UserFields{Username: req.Username, Email: req.Email}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		fields.PasswordHash = &hash
	}

	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		current, err := tx.GetUserByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Username != nil || req.Email != nil {
			username := lo.FromPtrOr(req.Username, current.Username)
			email := lo.FromPtrOr(req.Email, current.Email)
			if err := checkUserConflicts(ctx, tx, username, email, id); err != nil {
				return err
			}
		}

		user, err = tx.UpdateUser(ctx, id, fields)
		return err
	})
	if err != nil {
		return nil, userStoreError(err)
	}

	s.logger.Info("User updated", zap.Int64("user_id", id))
	if err := s.events.PublishUser(ctx, models.EventTypeUserUpdated, user); err != nil {
		s.logger.Error("Failed to publish UserUpdated event", zap.Error(err))
	}
	return user, nil
}

// DeleteUser removes a user together with their orders and reviews, then
// recomputes the score of every product the user had reviewed.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (user *models.User, err error) {
	ctx, span := util.StartSpan(ctx, "UserService.DeleteUser", attribute.Int64("user.id", id))
	defer func() {
		recordMutation("user", "delete", err)
		util.EndSpan(span, err)
	}()

	var updates []scoreUpdate
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		productIDs, err := tx.ReviewedProductIDs(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to list reviewed products: %w", err)
		}

		user, err = tx.DeleteUser(ctx, id)
		if err != nil {
			return err
		}

		for _, productID := range productIDs {
			update, err := recomputeScore(ctx, tx, productID)
			if err != nil {
				return err
			}
			updates = append(updates, update)
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "User not found", "")
	}

	s.logger.Info("User deleted",
		zap.Int64("user_id", id),
		zap.Int("rescored_products", len(updates)))
	if err := s.events.PublishUser(ctx, models.EventTypeUserDeleted, user); err != nil {
		s.logger.Error("Failed to publish UserDeleted event", zap.Error(err))
	}
	publishScores(ctx, s.events, s.logger, updates)
	return user, nil
}

// checkUserConflicts reports which of username or email another user already holds
func checkUserConflicts(ctx context.Context, tx *store.Store, username, email string, excludeID int64) error {
	conflicts, err := tx.FindUserConflicts(ctx, username, email, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check user conflicts: %w", err)
	}
	if len(conflicts) == 0 {
		return nil
	}
	if lo.ContainsBy(conflicts, func(u models.User) bool { return u.Username == username }) {
		return errs.NewConflictError(msgUsernameTaken)
	}
	return errs.NewConflictError(msgEmailTaken)
}

// userStoreError also covers a unique index firing after the pre-check passed
func userStoreError(err error) error {
	if errors.Is(err, store.ErrConflict) {
		msg := msgEmailTaken
		if strings.Contains(err.Error(), "username") {
			msg = msgUsernameTaken
		}
		return errs.NewConflictError(msg).WithCause(err)
	}
	return storeError(err, "User not found", "")
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
