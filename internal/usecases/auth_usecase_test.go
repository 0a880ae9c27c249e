package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"
	"parcelhub.backend/internal/domain/entities"
	domainerrors "parcelhub.backend/internal/domain/errors"
	"parcelhub.backend/internal/usecases"
	"parcelhub.backend/pkg/crypto"
	"parcelhub.backend/pkg/jwt"
	redispkg "parcelhub.backend/pkg/redis"
)

const testSecret = "test-secret"

type authFixture struct {
	repo     *MockAccountRepository
	notifier *MockNotifier
	hasher   *crypto.BcryptHasher
	tokens   *crypto.TokenGenerator
	now      time.Time
	uc       *usecases.AuthUsecase
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		repo:     new(MockAccountRepository),
		notifier: new(MockNotifier),
		hasher:   crypto.NewBcryptHasher(bcrypt.MinCost),
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.tokens = crypto.NewTokenGenerator().WithClock(func() time.Time { return f.now })
	f.uc = usecases.NewAuthUsecase(
		f.repo,
		f.hasher,
		f.tokens,
		jwt.NewJWTService(testSecret, time.Hour),
		f.notifier,
		usecases.AuthConfig{AppURL: "https://app.test/"},
	)
	return f
}

func (f *authFixture) account(t *testing.T, password string) *entities.Account {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)
	return &entities.Account{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "a@x.com",
		FullName:     "Alice A",
		PasswordHash: hash,
		Role:         entities.RoleUser,
	}
}

func signupInput() *entities.SignupInput {
	return &entities.SignupInput{
		Username:         "alice",
		Email:            " A@X.com ",
		Password:         "pw12345!A",
		FullName:         "Alice A",
		Mobile:           "+2348012345678",
		BusinessName:     "Alice Ltd",
		BusinessLocation: "Lagos",
	}
}

func tokenFromLink(t *testing.T, link, prefix string) string {
	t.Helper()
	require.True(t, strings.HasPrefix(link, prefix), "link %q", link)
	token := strings.TrimPrefix(link, prefix)
	require.Len(t, token, 64)
	return token
}

func assertInfra(t *testing.T, err error) {
	t.Helper()
	var ie *domainerrors.InfrastructureError
	assert.True(t, errors.As(err, &ie), "want InfrastructureError, got %v", err)
}

func TestAuthUsecase_Signup_Success(t *testing.T) {
	f := newAuthFixture(t)
	accountID := uuid.New()
	var created *entities.Account
	var link string

	f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domainerrors.ErrNotFound).Once()
	f.repo.On("GetByUsername", mock.Anything, "alice").Return(nil, domainerrors.ErrNotFound).Once()
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Account")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*entities.Account)
		created.ID = accountID
	}).Return(nil).Once()
	f.notifier.On("SendVerificationEmail", mock.Anything, mock.Anything, mock.AnythingOfType("string")).Run(func(args mock.Arguments) {
		link = args.String(2)
	}).Return(nil).Once()

	resp, err := f.uc.Signup(context.Background(), signupInput())
	require.NoError(t, err)
	f.uc.Drain()

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, accountID, resp.Account.ID)
	assert.Equal(t, "a@x.com", resp.Account.Email)
	assert.False(t, resp.Account.IsVerified)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)

	token := tokenFromLink(t, link, "https://app.test"+usecases.VerifyEmailPath)
	assert.Equal(t, crypto.HashToken(token), created.VerificationTokenHash.String)
	assert.NotEqual(t, token, created.VerificationTokenHash.String)
	assert.Equal(t, f.now.Add(24*time.Hour), created.VerificationExpiresAt.Time)
	assert.True(t, f.hasher.Verify("pw12345!A", created.PasswordHash))

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(body), created.PasswordHash)
	assert.NotContains(t, string(body), "passwordHash")
	assert.NotContains(t, string(body), token)
	f.repo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestAuthUsecase_Signup_SessionNamesTheNewAccount(t *testing.T) {
	f := newAuthFixture(t)
	var created *entities.Account
	f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domainerrors.ErrNotFound).Once()
	f.repo.On("GetByUsername", mock.Anything, "alice").Return(nil, domainerrors.ErrNotFound).Once()
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Account")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*entities.Account)
	}).Return(nil).Once()
	f.notifier.On("SendVerificationEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	resp, err := f.uc.Signup(context.Background(), signupInput())
	require.NoError(t, err)
	f.uc.Drain()

	require.NotNil(t, created)
	assert.NotEqual(t, uuid.Nil, created.ID, "id is assigned before the store sees the account")
	assert.Equal(t, created.ID, resp.Account.ID)

	claims, err := f.uc.Authenticate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.AccountID)

	exp, err := jwt.NewJWTService(testSecret, time.Hour).ExpiresAt(resp.Token)
	require.NoError(t, err)
	assert.True(t, exp.Equal(resp.ExpiresAt), "reported expiry matches the token's exp claim")
}

func TestAuthUsecase_Signup_DispatchFailureDoesNotFail(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domainerrors.ErrNotFound).Once()
	f.repo.On("GetByUsername", mock.Anything, "alice").Return(nil, domainerrors.ErrNotFound).Once()
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.notifier.On("SendVerificationEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("relay down")).Once()

	resp, err := f.uc.Signup(context.Background(), signupInput())
	require.NoError(t, err)
	f.uc.Drain()
	assert.NotEmpty(t, resp.Token)
	f.notifier.AssertExpectations(t)
}

func TestAuthUsecase_Signup_DispatchOutlivesRequestContext(t *testing.T) {
	f := newAuthFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domainerrors.ErrNotFound).Once()
	f.repo.On("GetByUsername", mock.Anything, "alice").Return(nil, domainerrors.ErrNotFound).Once()
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	var dispatchErr error
	f.notifier.On("SendVerificationEmail", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		dispatchErr = args.Get(0).(context.Context).Err()
	}).Return(nil).Once()

	_, err := f.uc.Signup(ctx, signupInput())
	require.NoError(t, err)
	cancel()
	f.uc.Drain()
	assert.NoError(t, dispatchErr)
}

func TestAuthUsecase_Signup_Duplicates(t *testing.T) {
	t.Run("email in any case", func(t *testing.T) {
		f := newAuthFixture(t)
		f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(&entities.Account{ID: uuid.New()}, nil).Once()

		_, err := f.uc.Signup(context.Background(), signupInput())
		assert.ErrorIs(t, err, domainerrors.ErrDuplicateEmail)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("username", func(t *testing.T) {
		f := newAuthFixture(t)
		f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domainerrors.ErrNotFound).Once()
		f.repo.On("GetByUsername", mock.Anything, "alice").Return(&entities.Account{ID: uuid.New()}, nil).Once()

		_, err := f.uc.Signup(context.Background(), signupInput())
		assert.ErrorIs(t, err, domainerrors.ErrDuplicateUsername)
	})

	t.Run("insert race backstop", func(t *testing.T) {
		f := newAuthFixture(t)
		f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domainerrors.ErrNotFound).Once()
		f.repo.On("GetByUsername", mock.Anything, "alice").Return(nil, domainerrors.ErrNotFound).Once()
		f.repo.On("Create", mock.Anything, mock.Anything).Return(domainerrors.ErrDuplicateEmail).Once()

		_, err := f.uc.Signup(context.Background(), signupInput())
		assert.ErrorIs(t, err, domainerrors.ErrDuplicateEmail)
		f.notifier.AssertNotCalled(t, "SendVerificationEmail", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthUsecase_Signup_StoreFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domainerrors.ErrStoreTimeout).Once()

	_, err := f.uc.Signup(context.Background(), signupInput())
	assertInfra(t, err)
	assert.Equal(t, 503, domainerrors.FromError(err).Status)
}

func TestAuthUsecase_Signin(t *testing.T) {
	f := newAuthFixture(t)
	acc := f.account(t, "pw12345!A")
	f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(acc, nil)
	f.repo.On("GetByEmail", mock.Anything, "nobody@x.com").Return(nil, domainerrors.ErrNotFound)

	resp, err := f.uc.Signin(context.Background(), &entities.SigninInput{Email: "A@x.com", Password: "pw12345!A"})
	require.NoError(t, err)
	claims, err := f.uc.Authenticate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, claims.AccountID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, entities.RoleUser, claims.Role)

	_, wrongPw := f.uc.Signin(context.Background(), &entities.SigninInput{Email: "a@x.com", Password: "nope"})
	_, noUser := f.uc.Signin(context.Background(), &entities.SigninInput{Email: "nobody@x.com", Password: "pw12345!A"})
	assert.ErrorIs(t, wrongPw, domainerrors.ErrInvalidCredentials)
	assert.ErrorIs(t, noUser, domainerrors.ErrInvalidCredentials)

	a, err := json.Marshal(domainerrors.FromError(wrongPw))
	require.NoError(t, err)
	b, err := json.Marshal(domainerrors.FromError(noUser))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestAuthUsecase_Signin_StoreFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, errors.New("connection reset")).Once()

	_, err := f.uc.Signin(context.Background(), &entities.SigninInput{Email: "a@x.com", Password: "x"})
	assertInfra(t, err)
	appErr := domainerrors.FromError(err)
	assert.Equal(t, 500, appErr.Status)
	assert.NotContains(t, appErr.Message, "connection reset")
}

func TestAuthUsecase_VerifyEmail(t *testing.T) {
	token := strings.Repeat("ab", 32)
	hash := crypto.HashToken(token)

	t.Run("empty token", func(t *testing.T) {
		f := newAuthFixture(t)
		assert.ErrorIs(t, f.uc.VerifyEmail(context.Background(), "  "), domainerrors.ErrInvalidLink)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newAuthFixture(t)
		f.repo.On("GetByVerificationTokenHashIgnoringExpiry", mock.Anything, hash).Return(nil, domainerrors.ErrNotFound).Once()
		assert.ErrorIs(t, f.uc.VerifyEmail(context.Background(), token), domainerrors.ErrInvalidLink)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newAuthFixture(t)
		acc := &entities.Account{ID: uuid.New(), VerificationTokenHash: null.StringFrom(hash), VerificationExpiresAt: null.TimeFrom(f.now.Add(-time.Minute))}
		f.repo.On("GetByVerificationTokenHashIgnoringExpiry", mock.Anything, hash).Return(acc, nil).Once()

		assert.ErrorIs(t, f.uc.VerifyEmail(context.Background(), token), domainerrors.ErrTokenExpired)
		f.repo.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		f := newAuthFixture(t)
		acc := &entities.Account{ID: uuid.New(), VerificationTokenHash: null.StringFrom(hash), VerificationExpiresAt: null.TimeFrom(f.now.Add(time.Hour))}
		f.repo.On("GetByVerificationTokenHashIgnoringExpiry", mock.Anything, hash).Return(acc, nil).Once()
		f.repo.On("MarkVerified", mock.Anything, acc.ID, hash).Return(nil).Once()

		assert.NoError(t, f.uc.VerifyEmail(context.Background(), token))
		f.repo.AssertExpectations(t)
	})

	t.Run("lost race", func(t *testing.T) {
		f := newAuthFixture(t)
		acc := &entities.Account{ID: uuid.New(), VerificationTokenHash: null.StringFrom(hash), VerificationExpiresAt: null.TimeFrom(f.now.Add(time.Hour))}
		f.repo.On("GetByVerificationTokenHashIgnoringExpiry", mock.Anything, hash).Return(acc, nil).Once()
		f.repo.On("MarkVerified", mock.Anything, acc.ID, hash).Return(domainerrors.ErrNotFound).Once()

		assert.ErrorIs(t, f.uc.VerifyEmail(context.Background(), token), domainerrors.ErrInvalidLink)
	})
}

func TestAuthUsecase_ResendVerification(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domainerrors.ErrNotFound).Once()
		assert.ErrorIs(t, f.uc.ResendVerification(context.Background(), "a@x.com"), domainerrors.ErrNotFound)
	})

	t.Run("already verified", func(t *testing.T) {
		f := newAuthFixture(t)
		f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(&entities.Account{ID: uuid.New(), IsVerified: true}, nil).Once()
		assert.ErrorIs(t, f.uc.ResendVerification(context.Background(), "a@x.com"), domainerrors.ErrAlreadyVerified)
	})

	t.Run("fresh token replaces the old one", func(t *testing.T) {
		f := newAuthFixture(t)
		acc := f.account(t, "pw")
		var storedHash, link string
		f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(acc, nil).Once()
		f.repo.On("SetVerificationToken", mock.Anything, acc.ID, mock.AnythingOfType("string"), f.now.Add(24*time.Hour)).Run(func(args mock.Arguments) {
			storedHash = args.String(2)
		}).Return(nil).Once()
		f.notifier.On("SendVerificationEmail", mock.Anything, acc, mock.AnythingOfType("string")).Run(func(args mock.Arguments) {
			link = args.String(2)
		}).Return(nil).Once()

		require.NoError(t, f.uc.ResendVerification(context.Background(), "A@x.com"))
		token := tokenFromLink(t, link, "https://app.test"+usecases.VerifyEmailPath)
		assert.Equal(t, crypto.HashToken(token), storedHash)
	})

	t.Run("dispatch failure propagates", func(t *testing.T) {
		f := newAuthFixture(t)
		acc := f.account(t, "pw")
		f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(acc, nil).Once()
		f.repo.On("SetVerificationToken", mock.Anything, acc.ID, mock.Anything, mock.Anything).Return(nil).Once()
		f.notifier.On("SendVerificationEmail", mock.Anything, acc, mock.Anything).Return(errors.New("smtp: 421")).Once()

		assertInfra(t, f.uc.ResendVerification(context.Background(), "a@x.com"))
	})

	t.Run("rate limited", func(t *testing.T) {
		f := newAuthFixture(t)
		limiter := new(MockEmailLimiter)
		f.uc.SetEmailLimiter(limiter)
		acc := f.account(t, "pw")
		f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(acc, nil).Once()
		limiter.On("Allow", mock.Anything, "verification", "a@x.com").Return(redispkg.ErrLimitExceeded).Once()

		assert.ErrorIs(t, f.uc.ResendVerification(context.Background(), "a@x.com"), domainerrors.ErrRateLimited)
		f.repo.AssertNotCalled(t, "SetVerificationToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("limiter outage fails open", func(t *testing.T) {
		f := newAuthFixture(t)
		limiter := new(MockEmailLimiter)
		f.uc.SetEmailLimiter(limiter)
		acc := f.account(t, "pw")
		f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(acc, nil).Once()
		limiter.On("Allow", mock.Anything, "verification", "a@x.com").Return(redispkg.ErrLimiterUnavailable).Once()
		f.repo.On("SetVerificationToken", mock.Anything, acc.ID, mock.Anything, mock.Anything).Return(nil).Once()
		f.notifier.On("SendVerificationEmail", mock.Anything, acc, mock.Anything).Return(nil).Once()

		assert.NoError(t, f.uc.ResendVerification(context.Background(), "a@x.com"))
	})
}

func TestAuthUsecase_ForgotPassword(t *testing.T) {
	t.Run("unknown email reports success", func(t *testing.T) {
		f := newAuthFixture(t)
		f.repo.On("GetByEmail", mock.Anything, "nobody@x.com").Return(nil, domainerrors.ErrNotFound).Once()

		assert.NoError(t, f.uc.ForgotPassword(context.Background(), "nobody@x.com"))
		f.notifier.AssertNotCalled(t, "SendPasswordResetEmail", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("known email gets a link", func(t *testing.T) {
		f := newAuthFixture(t)
		acc := f.account(t, "pw")
		var storedHash, link string
		f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(acc, nil).Once()
		f.repo.On("SetResetToken", mock.Anything, acc.ID, mock.AnythingOfType("string"), f.now.Add(60*time.Minute)).Run(func(args mock.Arguments) {
			storedHash = args.String(2)
		}).Return(nil).Once()
		f.notifier.On("SendPasswordResetEmail", mock.Anything, acc, mock.AnythingOfType("string")).Run(func(args mock.Arguments) {
			link = args.String(2)
		}).Return(nil).Once()

		require.NoError(t, f.uc.ForgotPassword(context.Background(), "a@x.com"))
		token := tokenFromLink(t, link, "https://app.test"+usecases.ResetPasswordPath)
		assert.Equal(t, crypto.HashToken(token), storedHash)
	})

	t.Run("undelivered token is cleared", func(t *testing.T) {
		f := newAuthFixture(t)
		acc := f.account(t, "pw")
		f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(acc, nil).Once()
		f.repo.On("SetResetToken", mock.Anything, acc.ID, mock.Anything, mock.Anything).Return(nil).Once()
		f.notifier.On("SendPasswordResetEmail", mock.Anything, acc, mock.Anything).Return(errors.New("timeout")).Once()
		f.repo.On("ClearResetToken", mock.Anything, acc.ID).Return(nil).Once()

		assertInfra(t, f.uc.ForgotPassword(context.Background(), "a@x.com"))
		f.repo.AssertExpectations(t)
	})

	t.Run("rate limited is silent", func(t *testing.T) {
		f := newAuthFixture(t)
		limiter := new(MockEmailLimiter)
		f.uc.SetEmailLimiter(limiter)
		acc := f.account(t, "pw")
		f.repo.On("GetByEmail", mock.Anything, "a@x.com").Return(acc, nil).Once()
		limiter.On("Allow", mock.Anything, "password_reset", "a@x.com").Return(redispkg.ErrLimitExceeded).Once()

		assert.NoError(t, f.uc.ForgotPassword(context.Background(), "a@x.com"))
		f.repo.AssertNotCalled(t, "SetResetToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthUsecase_ResetToken(t *testing.T) {
	token := strings.Repeat("cd", 32)
	hash := crypto.HashToken(token)

	t.Run("validate returns the email", func(t *testing.T) {
		f := newAuthFixture(t)
		acc := &entities.Account{ID: uuid.New(), Email: "a@x.com", ResetTokenHash: null.StringFrom(hash), ResetExpiresAt: null.TimeFrom(f.now.Add(time.Minute))}
		f.repo.On("GetByResetTokenHashIgnoringExpiry", mock.Anything, hash).Return(acc, nil).Once()

		email, err := f.uc.ValidateResetToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", email)
	})

	t.Run("expired is distinct from invalid", func(t *testing.T) {
		f := newAuthFixture(t)
		acc := &entities.Account{ID: uuid.New(), ResetTokenHash: null.StringFrom(hash), ResetExpiresAt: null.TimeFrom(f.now)}
		f.repo.On("GetByResetTokenHashIgnoringExpiry", mock.Anything, hash).Return(acc, nil)
		f.repo.On("GetByResetTokenHashIgnoringExpiry", mock.Anything, crypto.HashToken("other")).Return(nil, domainerrors.ErrNotFound)

		_, err := f.uc.ValidateResetToken(context.Background(), token)
		assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
		assert.ErrorIs(t, f.uc.ResetPassword(context.Background(), token, "newpw1!A"), domainerrors.ErrTokenExpired)
		assert.ErrorIs(t, f.uc.ResetPassword(context.Background(), "other", "newpw1!A"), domainerrors.ErrInvalidLink)
		f.repo.AssertNotCalled(t, "ConsumeResetToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reset consumes the token atomically", func(t *testing.T) {
		f := newAuthFixture(t)
		acc := &entities.Account{ID: uuid.New(), ResetTokenHash: null.StringFrom(hash), ResetExpiresAt: null.TimeFrom(f.now.Add(time.Minute))}
		f.repo.On("GetByResetTokenHashIgnoringExpiry", mock.Anything, hash).Return(acc, nil).Once()
		f.repo.On("ConsumeResetToken", mock.Anything, acc.ID, hash, mock.MatchedBy(func(newHash string) bool {
			return f.hasher.Verify("newpw1!A", newHash)
		}), f.now).Return(nil).Once()

		require.NoError(t, f.uc.ResetPassword(context.Background(), token, "newpw1!A"))
		f.repo.AssertExpectations(t)
	})

	t.Run("lost race reports invalid link", func(t *testing.T) {
		f := newAuthFixture(t)
		acc := &entities.Account{ID: uuid.New(), ResetTokenHash: null.StringFrom(hash), ResetExpiresAt: null.TimeFrom(f.now.Add(time.Minute))}
		f.repo.On("GetByResetTokenHashIgnoringExpiry", mock.Anything, hash).Return(acc, nil).Once()
		f.repo.On("ConsumeResetToken", mock.Anything, acc.ID, hash, mock.Anything, f.now).Return(domainerrors.ErrNotFound).Once()

		assert.ErrorIs(t, f.uc.ResetPassword(context.Background(), token, "newpw1!A"), domainerrors.ErrInvalidLink)
	})
}

func TestAuthUsecase_ChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	acc := f.account(t, "old-pw1!A")
	f.repo.On("GetByID", mock.Anything, acc.ID).Return(acc, nil)

	err := f.uc.ChangePassword(context.Background(), acc.ID, &entities.ChangePasswordInput{CurrentPassword: "wrong", NewPassword: "new-pw1!A"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	f.repo.On("UpdatePassword", mock.Anything, acc.ID, mock.MatchedBy(func(h string) bool {
		return f.hasher.Verify("new-pw1!A", h)
	})).Return(nil).Once()
	err = f.uc.ChangePassword(context.Background(), acc.ID, &entities.ChangePasswordInput{CurrentPassword: "old-pw1!A", NewPassword: "new-pw1!A"})
	assert.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestAuthUsecase_Profile(t *testing.T) {
	f := newAuthFixture(t)
	acc := f.account(t, "pw")
	acc.Mobile = "+2348000000000"
	missing := uuid.New()
	f.repo.On("GetByID", mock.Anything, acc.ID).Return(acc, nil)
	f.repo.On("GetByID", mock.Anything, missing).Return(nil, domainerrors.ErrNotFound)
	f.repo.On("UpdateProfile", mock.Anything, acc).Return(nil).Once()

	profile, err := f.uc.GetProfile(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)

	_, err = f.uc.GetProfile(context.Background(), missing)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	profile, err = f.uc.UpdateProfile(context.Background(), acc.ID, &entities.UpdateProfileInput{BusinessName: " New Biz "})
	require.NoError(t, err)
	assert.Equal(t, "New Biz", profile.BusinessName)
	assert.Equal(t, "Alice A", profile.FullName)
	assert.Equal(t, "+2348000000000", profile.Mobile)
}

func TestAuthUsecase_Sessions(t *testing.T) {
	f := newAuthFixture(t)
	id := uuid.New()

	token, _, err := jwt.NewJWTService(testSecret, time.Hour).Issue(id, "a@x.com", "alice", "admin")
	require.NoError(t, err)
	claims, err := f.uc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, entities.RoleAdmin, claims.Role)

	expiry, err := f.uc.SessionExpiry(token)
	require.NoError(t, err)
	assert.True(t, expiry.RemainingSeconds > 3500 && expiry.RemainingSeconds <= 3600)

	_, err = f.uc.Authenticate("garbage")
	appErr := domainerrors.FromError(err)
	assert.Equal(t, 401, appErr.Status)
	assert.Equal(t, domainerrors.CodeUnauthorized, appErr.Code)

	expired, _, err := jwt.NewJWTService(testSecret, -time.Minute).Issue(id, "a@x.com", "alice", "user")
	require.NoError(t, err)
	_, err = f.uc.Authenticate(expired)
	appErr = domainerrors.FromError(err)
	assert.Equal(t, 401, appErr.Status)
	assert.Equal(t, domainerrors.CodeTokenExpired, appErr.Code)

	forged, _, err := jwt.NewJWTService("other-secret", time.Hour).Issue(id, "a@x.com", "alice", "admin")
	require.NoError(t, err)
	_, err = f.uc.SessionExpiry(forged)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}
