package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trendzone/storefront/internal/auth"
	"github.com/trendzone/storefront/internal/domain"
	apperrors "github.com/trendzone/storefront/pkg/errors"
)

func newTestUserService(users *mockUserRepository, tokens *mockRefreshTokenRepository) *UserService {
	return NewUserService(users, tokens, newTestEventProducer(), newTestLogger())
}

func TestUserRegister_Success(t *testing.T) {
	users := new(mockUserRepository)
	svc := newTestUserService(users, new(mockRefreshTokenRepository))
	ctx := context.Background()

	users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := svc.Register(ctx, RegisterInput{
		Email:     "alice@example.com",
		Password:  "SecurePass123",
		FirstName: "Alice",
		LastName:  "Smith",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.True(t, user.Active)
	// The stored hash verifies against the plaintext and is not the
	// plaintext itself.
	assert.NotEqual(t, "SecurePass123", user.PasswordHash)
	assert.True(t, auth.VerifyPassword("SecurePass123", user.PasswordHash))
	users.AssertExpectations(t)
}

func TestUserRegister_DuplicateEmail(t *testing.T) {
	users := new(mockUserRepository)
	svc := newTestUserService(users, new(mockRefreshTokenRepository))
	ctx := context.Background()

	users.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(apperrors.AlreadyExists("user", "email", "alice@example.com"))

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "alice@example.com",
		Password: "SecurePass123",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestUserRegister_WeakPasswordRejected(t *testing.T) {
	users := new(mockUserRepository)
	svc := newTestUserService(users, new(mockRefreshTokenRepository))
	ctx := context.Background()

	for _, password := range []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
		_, err := svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: password})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "password %q should be rejected", password)
	}

	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserUpdateProfile_PartialUpdate(t *testing.T) {
	users := new(mockUserRepository)
	svc := newTestUserService(users, new(mockRefreshTokenRepository))
	ctx := context.Background()

	existing := activeUser()
	existing.FirstName = "Alice"
	existing.LastName = "Smith"
	users.On("GetByID", ctx, existing.ID).Return(existing, nil)
	users.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	updated, err := svc.UpdateProfile(ctx, existing.ID, UpdateProfileInput{
		LastName: strPtr("Jones"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, "Jones", updated.LastName)
}

func TestUserChangePassword_RevokesSessions(t *testing.T) {
	users := new(mockUserRepository)
	tokens := new(mockRefreshTokenRepository)
	svc := newTestUserService(users, tokens)
	ctx := context.Background()

	user := activeUser()
	users.On("GetByID", ctx, user.ID).Return(user, nil)
	users.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)
	tokens.On("RevokeAllForPrincipal", ctx, user.ID, domain.PrincipalUser).Return(nil)

	err := svc.ChangePassword(ctx, user.ID, "SecretPass1", "BrandNewPass2")

	require.NoError(t, err)
	tokens.AssertExpectations(t)
}

func TestUserChangePassword_WrongCurrentPassword(t *testing.T) {
	users := new(mockUserRepository)
	tokens := new(mockRefreshTokenRepository)
	svc := newTestUserService(users, tokens)
	ctx := context.Background()

	user := activeUser()
	users.On("GetByID", ctx, user.ID).Return(user, nil)

	err := svc.ChangePassword(ctx, user.ID, "NotTheRightOne1", "BrandNewPass2")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	tokens.AssertNotCalled(t, "RevokeAllForPrincipal", mock.Anything, mock.Anything, mock.Anything)
}
