package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"parcelhub.backend/internal/domain/entities"
	domainerrors "parcelhub.backend/internal/domain/errors"
	"parcelhub.backend/internal/usecases"
	"parcelhub.backend/pkg/utils"
)

func TestAdminUsecase_ListAccounts(t *testing.T) {
	repo := new(MockAccountRepository)
	uc := usecases.NewAdminUsecase(repo, new(MockNotifier), time.Second)
	accounts := []*entities.Account{{ID: uuid.New(), Username: "alice", PasswordHash: "$2a$secret"}}
	repo.On("List", mock.Anything, "ali", utils.PaginationParams{Page: 1, Limit: 20}).Return(accounts, int64(1), nil).Once()

	profiles, meta, err := uc.ListAccounts(context.Background(), " ali ", utils.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "alice", profiles[0].Username)
	assert.Equal(t, int64(1), meta.TotalCount)
}

func TestAdminUsecase_VerifyAccount(t *testing.T) {
	repo := new(MockAccountRepository)
	uc := usecases.NewAdminUsecase(repo, new(MockNotifier), time.Second)
	pending := &entities.Account{ID: uuid.New()}
	verified := &entities.Account{ID: uuid.New(), IsVerified: true}
	repo.On("GetByID", mock.Anything, pending.ID).Return(pending, nil).Once()
	repo.On("GetByID", mock.Anything, verified.ID).Return(verified, nil).Once()
	repo.On("ForceVerify", mock.Anything, pending.ID).Return(nil).Once()

	profile, err := uc.VerifyAccount(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsVerified)

	_, err = uc.VerifyAccount(context.Background(), verified.ID)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyVerified)
}

func TestAdminUsecase_PromoteToAdmin(t *testing.T) {
	repo := new(MockAccountRepository)
	uc := usecases.NewAdminUsecase(repo, new(MockNotifier), time.Second)
	repo.On("UpdateRole", mock.Anything, "a@x.com", entities.RoleAdmin).Return(nil).Once()
	repo.On("UpdateRole", mock.Anything, "nobody@x.com", entities.RoleAdmin).Return(domainerrors.ErrNotFound).Once()

	assert.NoError(t, uc.PromoteToAdmin(context.Background(), "a@x.com"))
	assert.ErrorIs(t, uc.PromoteToAdmin(context.Background(), "nobody@x.com"), domainerrors.ErrNotFound)
}

func TestAdminUsecase_SendTestEmail(t *testing.T) {
	notifier := new(MockNotifier)
	uc := usecases.NewAdminUsecase(new(MockAccountRepository), notifier, time.Second)
	notifier.On("SendTestEmail", mock.Anything, "ops@x.com").Return(nil).Once()
	notifier.On("SendTestEmail", mock.Anything, "down@x.com").Return(errors.New("dial tcp: refused")).Once()

	assert.NoError(t, uc.SendTestEmail(context.Background(), "Ops@x.com"))
	assertInfra(t, uc.SendTestEmail(context.Background(), "down@x.com"))
	assert.ErrorIs(t, uc.SendTestEmail(context.Background(), ""), domainerrors.ErrInvalidInput)
}
