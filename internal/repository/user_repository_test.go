package repository

import (
	"mandarin_edu_backend/internal/model"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.PronunciationAttempt{}))
	return db
}

func TestApplyCompletedAttempt(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	user := &model.User{
		Email:         "stats@test.com",
		Username:      "stats",
		TotalAttempts: 3,
		AverageScore:  80.0,
	}
	require.NoError(t, repo.Create(user))

	// (3, 80.0) + 90 -> (4, 82.5)
	require.NoError(t, repo.ApplyCompletedAttempt(user.ID, 90))
	updated, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.TotalAttempts)
	assert.Equal(t, 82.5, updated.AverageScore)

	// (4, 82.5) + 70 -> (5, 80.0)
	require.NoError(t, repo.ApplyCompletedAttempt(user.ID, 70))
	updated, err = repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TotalAttempts)
	assert.Equal(t, 80.0, updated.AverageScore)
}

func TestApplyCompletedAttemptFirstScore(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	user := &model.User{Email: "first@test.com", Username: "first"}
	require.NoError(t, repo.Create(user))

	require.NoError(t, repo.ApplyCompletedAttempt(user.ID, 66.7))
	updated, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.TotalAttempts)
	assert.Equal(t, 66.7, updated.AverageScore)
}

func TestApplyCompletedAttemptMissingUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	err := repo.ApplyCompletedAttempt(999, 80)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 82.5, Round1(82.5))
	assert.Equal(t, 82.5, Round1(82.54))
	assert.Equal(t, 1.3, Round1(1.25))
	assert.Equal(t, -1.2, Round1(-1.24))
}
