package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tair/stock-ledger/internal/identity/domain"
	"github.com/tair/stock-ledger/internal/identity/repository"
	"github.com/tair/stock-ledger/pkg/auth"
)

func newSQLiteUsers(t *testing.T) *repository.GormUserRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	repo := repository.NewGormUserRepository(db)
	require.NoError(t, repo.AutoMigrate())
	return repo
}

func repositories(t *testing.T) map[string]domain.UserRepository {
	return map[string]domain.UserRepository{
		"memory": repository.NewMemoryUserRepository(),
		"gorm":   newSQLiteUsers(t),
	}
}

func TestRegisterAndLogin(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour, "stock-ledger")

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			register := NewRegisterUserHandler(repo)
			login := NewLoginUserHandler(repo, tokens)

			user, err := register.Handle(ctx, RegisterUserCommand{Username: " alice ", Password: "correct-horse"})
			require.NoError(t, err)
			assert.Equal(t, "alice", user.Username)
			assert.Equal(t, domain.RoleEmployee, user.Role)
			assert.NotEqual(t, "correct-horse", user.PasswordHash)

			_, err = register.Handle(ctx, RegisterUserCommand{Username: "alice", Password: "another-one"})
			require.ErrorIs(t, err, domain.ErrUsernameTaken)

			resp, err := login.Handle(ctx, LoginUserCommand{Username: "alice", Password: "correct-horse"})
			require.NoError(t, err)
			claims, err := tokens.ValidateToken(resp.Token)
			require.NoError(t, err)
			assert.Equal(t, "alice", claims.Username)
			assert.Equal(t, domain.RoleEmployee, claims.Role)

			_, err = login.Handle(ctx, LoginUserCommand{Username: "alice", Password: "wrong-horse"})
			require.ErrorIs(t, err, domain.ErrInvalidCredentials)

			_, err = login.Handle(ctx, LoginUserCommand{Username: "nobody", Password: "correct-horse"})
			require.ErrorIs(t, err, domain.ErrInvalidCredentials)
		})
	}
}

func TestRegister_Validation(t *testing.T) {
	register := NewRegisterUserHandler(repository.NewMemoryUserRepository())
	ctx := context.Background()

	_, err := register.Handle(ctx, RegisterUserCommand{Username: "", Password: "long-enough"})
	assert.ErrorIs(t, err, domain.ErrMissingField)

	_, err = register.Handle(ctx, RegisterUserCommand{Username: "bob", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	_, err = register.Handle(ctx, RegisterUserCommand{Username: "bob", Password: "long-enough", Role: "owner"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestEnsureAdmin(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ensure := NewEnsureAdminHandler(repo)

			created, err := ensure.Handle(ctx, EnsureAdminCommand{})
			require.NoError(t, err)
			assert.False(t, created, "no credentials configured")

			created, err = ensure.Handle(ctx, EnsureAdminCommand{Username: "root", Password: "bootstrap-pass"})
			require.NoError(t, err)
			assert.True(t, created)

			created, err = ensure.Handle(ctx, EnsureAdminCommand{Username: "root2", Password: "bootstrap-pass"})
			require.NoError(t, err)
			assert.False(t, created)

			admins, err := repo.CountByRole(ctx, domain.RoleAdmin)
			require.NoError(t, err)
			assert.Equal(t, int64(1), admins)
		})
	}
}
