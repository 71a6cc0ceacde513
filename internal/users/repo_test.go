package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sunkaracharan/roifinal/pkg/db/dbtest"
)

func TestRepositoryCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	user, err := repo.Create(ctx, CreateUserDTO{Username: "priya", Email: "priya@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	require.True(t, user.IsActive)

	byLogin, err := repo.FindByLogin(ctx, "priya")
	require.NoError(t, err)
	require.Equal(t, user.ID, byLogin.ID)

	byEmail, err := repo.FindByLogin(ctx, "Priya@Example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	_, err = repo.FindByLogin(ctx, "nobody")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryExistsByUsernameOrEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))
	_, err := repo.Create(ctx, CreateUserDTO{Username: "sam", Email: "sam@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	u, e, err := repo.ExistsByUsernameOrEmail(ctx, "sam", "other@example.com")
	require.NoError(t, err)
	require.True(t, u)
	require.False(t, e)

	u, e, err = repo.ExistsByUsernameOrEmail(ctx, "new", "sam@example.com")
	require.NoError(t, err)
	require.False(t, u)
	require.True(t, e)
}

func TestRepositoryCountsAndLastLogin(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))
	staff, err := repo.Create(ctx, CreateUserDTO{Username: "ops", Email: "ops@example.com", PasswordHash: "h", IsStaff: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateUserDTO{Username: "root", Email: "root@example.com", PasswordHash: "h", IsSuperuser: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateUserDTO{Username: "u", Email: "u@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	total, staffCount, supers, err := repo.CountByFlags(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.EqualValues(t, 1, staffCount)
	require.EqualValues(t, 1, supers)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, staff.ID, at))
	reloaded, err := repo.FindByID(ctx, staff.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	require.True(t, reloaded.LastLoginAt.Equal(at))

	list, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
}
