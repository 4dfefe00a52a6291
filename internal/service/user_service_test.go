package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "marketplace/internal/errors"
	"marketplace/internal/model"
	"marketplace/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCreatorID(ctx context.Context, creatorID uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) FindActiveByCreatorID(ctx context.Context, creatorID uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) Search(ctx context.Context, q repository.ProductQuery) ([]model.Product, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

// passthroughUnitOfWork runs the callback against the given repositories,
// standing in for a real transaction in tests.
type passthroughUnitOfWork struct {
	users    repository.UserRepository
	products repository.ProductRepository
}

func (u *passthroughUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, users repository.UserRepository, products repository.ProductRepository) error) error {
	return fn(ctx, u.users, u.products)
}

func newUserServiceForTest(users *MockUserRepository, products *MockProductRepository) UserService {
	uow := &passthroughUnitOfWork{users: users, products: products}
	return NewUserService(users, products, uow, nil)
}

func TestUserService_DeactivateUser(t *testing.T) {
	userID := uuid.New()

	t.Run("deactivates user and hides every owned product", func(t *testing.T) {
		users := new(MockUserRepository)
		products := new(MockProductRepository)
		svc := newUserServiceForTest(users, products)

		user := &model.User{ID: userID, Name: "U", Email: "u@example.com", Role: model.RoleUser, IsActive: true}
		visible := model.Product{ID: uuid.New(), CreatorUserID: userID, IsDeleted: false}
		hidden := model.Product{ID: uuid.New(), CreatorUserID: userID, IsDeleted: true}

		users.On("FindByID", mock.Anything, userID).Return(user, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.ID == userID && !u.IsActive
		})).Return(nil)
		products.On("FindByCreatorID", mock.Anything, userID).Return([]model.Product{visible, hidden}, nil)
		products.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
			return p.IsDeleted
		})).Return(nil).Twice()

		changed, err := svc.DeactivateUser(context.Background(), userID)

		assert.NoError(t, err)
		assert.True(t, changed)
		users.AssertExpectations(t)
		products.AssertExpectations(t)
	})

	t.Run("returns false without writes when already inactive", func(t *testing.T) {
		users := new(MockUserRepository)
		products := new(MockProductRepository)
		svc := newUserServiceForTest(users, products)

		user := &model.User{ID: userID, IsActive: false}
		users.On("FindByID", mock.Anything, userID).Return(user, nil)

		changed, err := svc.DeactivateUser(context.Background(), userID)

		assert.NoError(t, err)
		assert.False(t, changed)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		products.AssertNotCalled(t, "FindByCreatorID", mock.Anything, mock.Anything)
		products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("fails with not found for unknown user", func(t *testing.T) {
		users := new(MockUserRepository)
		products := new(MockProductRepository)
		svc := newUserServiceForTest(users, products)

		users.On("FindByID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)

		changed, err := svc.DeactivateUser(context.Background(), userID)

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		assert.False(t, changed)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("propagates a product write failure", func(t *testing.T) {
		users := new(MockUserRepository)
		products := new(MockProductRepository)
		svc := newUserServiceForTest(users, products)

		user := &model.User{ID: userID, IsActive: true}
		owned := model.Product{ID: uuid.New(), CreatorUserID: userID}

		users.On("FindByID", mock.Anything, userID).Return(user, nil)
		users.On("Update", mock.Anything, mock.Anything).Return(nil)
		products.On("FindByCreatorID", mock.Anything, userID).Return([]model.Product{owned}, nil)
		products.On("Update", mock.Anything, mock.Anything).Return(errors.New("write failed"))

		changed, err := svc.DeactivateUser(context.Background(), userID)

		assert.Error(t, err)
		assert.False(t, changed)
	})
}

func TestUserService_ReactivateUser(t *testing.T) {
	userID := uuid.New()

	t.Run("reactivates user and restores every owned product", func(t *testing.T) {
		users := new(MockUserRepository)
		products := new(MockProductRepository)
		svc := newUserServiceForTest(users, products)

		user := &model.User{ID: userID, IsActive: false}
		p1 := model.Product{ID: uuid.New(), CreatorUserID: userID, IsDeleted: true}
		p2 := model.Product{ID: uuid.New(), CreatorUserID: userID, IsDeleted: true}

		users.On("FindByID", mock.Anything, userID).Return(user, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.IsActive
		})).Return(nil)
		products.On("FindByCreatorID", mock.Anything, userID).Return([]model.Product{p1, p2}, nil)
		products.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
			return !p.IsDeleted
		})).Return(nil).Twice()

		changed, err := svc.ReactivateUser(context.Background(), userID)

		assert.NoError(t, err)
		assert.True(t, changed)
		users.AssertExpectations(t)
		products.AssertExpectations(t)
	})

	t.Run("returns false without writes when already active", func(t *testing.T) {
		users := new(MockUserRepository)
		products := new(MockProductRepository)
		svc := newUserServiceForTest(users, products)

		users.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, IsActive: true}, nil)

		changed, err := svc.ReactivateUser(context.Background(), userID)

		assert.NoError(t, err)
		assert.False(t, changed)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("fails with not found for unknown user", func(t *testing.T) {
		users := new(MockUserRepository)
		products := new(MockProductRepository)
		svc := newUserServiceForTest(users, products)

		users.On("FindByID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)

		changed, err := svc.ReactivateUser(context.Background(), userID)

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		assert.False(t, changed)
	})
}

// The full round trip from the deactivation contract: a mixed set of
// visible and hidden products ends fully hidden, then fully restored.
func TestUserService_ActivationRoundTrip(t *testing.T) {
	userID := uuid.New()
	user := &model.User{ID: userID, IsActive: true}
	p1 := model.Product{ID: uuid.New(), CreatorUserID: userID, IsDeleted: false}
	p2 := model.Product{ID: uuid.New(), CreatorUserID: userID, IsDeleted: true}
	store := map[uuid.UUID]bool{p1.ID: p1.IsDeleted, p2.ID: p2.IsDeleted}

	users := new(MockUserRepository)
	products := new(MockProductRepository)
	svc := newUserServiceForTest(users, products)

	users.On("FindByID", mock.Anything, userID).Return(user, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)
	// The cascade and the cache invalidation each fetch the owned set, so
	// every phase sees the flags left by the previous one.
	products.On("FindByCreatorID", mock.Anything, userID).Return([]model.Product{p1, p2}, nil).Twice()
	afterHide := []model.Product{p1, p2}
	afterHide[0].IsDeleted = true
	afterHide[1].IsDeleted = true
	products.On("FindByCreatorID", mock.Anything, userID).Return(afterHide, nil)
	products.On("Update", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		p := args.Get(1).(*model.Product)
		store[p.ID] = p.IsDeleted
	}).Return(nil)

	changed, err := svc.DeactivateUser(context.Background(), userID)
	assert.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, user.IsActive)
	assert.True(t, store[p1.ID])
	assert.True(t, store[p2.ID])

	changed, err = svc.ReactivateUser(context.Background(), userID)
	assert.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, user.IsActive)
	assert.False(t, store[p1.ID])
	assert.False(t, store[p2.ID])
}

func TestUserService_CreateUser(t *testing.T) {
	t.Run("rejects a role outside the known set", func(t *testing.T) {
		users := new(MockUserRepository)
		products := new(MockProductRepository)
		svc := newUserServiceForTest(users, products)

		user, err := svc.CreateUser(context.Background(), "Name", "a@example.com", "secret1", model.Role("owner"))

		assert.ErrorIs(t, err, apperrors.ErrInvalidRole)
		assert.Nil(t, user)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		users := new(MockUserRepository)
		products := new(MockProductRepository)
		svc := newUserServiceForTest(users, products)

		users.On("FindByEmail", mock.Anything, "a@example.com").Return(&model.User{}, nil)

		user, err := svc.CreateUser(context.Background(), "Name", "a@example.com", "secret1", model.RoleUser)

		assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
		assert.Nil(t, user)
	})

	t.Run("creates an active user with a hashed password", func(t *testing.T) {
		users := new(MockUserRepository)
		products := new(MockProductRepository)
		svc := newUserServiceForTest(users, products)

		users.On("FindByEmail", mock.Anything, "a@example.com").Return(nil, gorm.ErrRecordNotFound)
		users.On("Create", mock.Anything, mock.Anything).Return(nil)

		user, err := svc.CreateUser(context.Background(), "Name", "a@example.com", "secret1", model.RoleAdmin)

		assert.NoError(t, err)
		assert.True(t, user.IsActive)
		assert.Equal(t, model.RoleAdmin, user.Role)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
	})
}
