package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"marketplace/internal/cache"
	"marketplace/internal/errors"
	"marketplace/internal/model"
	"marketplace/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService handles user management and the activation workflow.
type UserService interface {
	CreateUser(ctx context.Context, name, email, password string, role model.Role) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, name, email string) (*model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	AssignRole(ctx context.Context, id uuid.UUID, role model.Role) error
	ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) error

	// DeactivateUser flips the user to inactive and soft-deletes every
	// product the user owns. It returns false with a nil error when the
	// user is already inactive.
	DeactivateUser(ctx context.Context, id uuid.UUID) (bool, error)
	// ReactivateUser is the mirror operation: the user becomes active and
	// the soft-delete flag is cleared on every owned product.
	ReactivateUser(ctx context.Context, id uuid.UUID) (bool, error)
}

type userService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	uow      repository.UnitOfWork
	cache    *cache.Client
}

// NewUserService builds a UserService.
func NewUserService(
	users repository.UserRepository,
	products repository.ProductRepository,
	uow repository.UnitOfWork,
	cache *cache.Client,
) UserService {
	return &userService{
		users:    users,
		products: products,
		uow:      uow,
		cache:    cache,
	}
}

func userCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

// CreateUser registers a user with a hashed password and a validated role.
func (s *userService) CreateUser(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, errors.ErrInvalidRole
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by ID with caching.
func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, userCacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	s.cache.SetJSON(ctx, userCacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, name, email string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	user.Name = name
	user.Email = email
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	_ = s.cache.Delete(ctx, userCacheKey(id))
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrUserNotFound
		}
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	_ = s.cache.Delete(ctx, userCacheKey(id))
	return nil
}

func (s *userService) AssignRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	if !role.Valid() {
		return errors.ErrInvalidRole
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrUserNotFound
		}
		return err
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	_ = s.cache.Delete(ctx, userCacheKey(id))
	return nil
}

func (s *userService) ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrUserNotFound
		}
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// DeactivateUser transitions the user to inactive and cascades the change
// onto every owned product inside one transaction: the user write and the
// N product writes commit together or not at all.
//
// The product fetch is deliberately unfiltered by soft-delete state, so
// rows that are already hidden are rewritten with the same flag. That
// keeps the cascade idempotent per record and lets reactivation restore
// the whole set.
func (s *userService) DeactivateUser(ctx context.Context, id uuid.UUID) (bool, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, errors.ErrUserNotFound
		}
		return false, fmt.Errorf("find user: %w", err)
	}

	if !user.IsActive {
		return false, nil
	}

	err = s.uow.Do(ctx, func(ctx context.Context, users repository.UserRepository, products repository.ProductRepository) error {
		user.IsActive = false
		if err := users.Update(ctx, user); err != nil {
			return fmt.Errorf("deactivate user: %w", err)
		}

		owned, err := products.FindByCreatorID(ctx, id)
		if err != nil {
			return fmt.Errorf("list owned products: %w", err)
		}
		for i := range owned {
			owned[i].IsDeleted = true
			if err := products.Update(ctx, &owned[i]); err != nil {
				return fmt.Errorf("hide product %s: %w", owned[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	s.invalidateUserAndProducts(ctx, id)
	return true, nil
}

// ReactivateUser is the mirror of DeactivateUser.
func (s *userService) ReactivateUser(ctx context.Context, id uuid.UUID) (bool, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, errors.ErrUserNotFound
		}
		return false, fmt.Errorf("find user: %w", err)
	}

	if user.IsActive {
		return false, nil
	}

	err = s.uow.Do(ctx, func(ctx context.Context, users repository.UserRepository, products repository.ProductRepository) error {
		user.IsActive = true
		if err := users.Update(ctx, user); err != nil {
			return fmt.Errorf("reactivate user: %w", err)
		}

		owned, err := products.FindByCreatorID(ctx, id)
		if err != nil {
			return fmt.Errorf("list owned products: %w", err)
		}
		for i := range owned {
			owned[i].IsDeleted = false
			if err := products.Update(ctx, &owned[i]); err != nil {
				return fmt.Errorf("restore product %s: %w", owned[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	s.invalidateUserAndProducts(ctx, id)
	return true, nil
}

// invalidateUserAndProducts drops cached reads touched by a cascade.
func (s *userService) invalidateUserAndProducts(ctx context.Context, id uuid.UUID) {
	_ = s.cache.Delete(ctx, userCacheKey(id))
	if owned, err := s.products.FindByCreatorID(ctx, id); err == nil {
		for i := range owned {
			_ = s.cache.Delete(ctx, productCacheKey(owned[i].ID))
		}
	}
}
