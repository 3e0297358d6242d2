package services

import (
	"context"
	"testing"
	"time"

	"github.com/quizdash/quiz-service/internal/models"
	"github.com/quizdash/quiz-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketsFor_Shapes(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	daily, from, to, err := bucketsFor(WindowDaily, now)
	require.NoError(t, err)
	assert.Len(t, daily, 24)
	assert.Equal(t, "2025-06-15 00:00", daily[0].Label)
	assert.Equal(t, "2025-06-15 23:00", daily[23].Label)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), to)

	weekly, _, _, err := bucketsFor(WindowWeekly, now)
	require.NoError(t, err)
	assert.Len(t, weekly, 7)
	assert.Equal(t, "2025-06-09", weekly[0].Label)
	assert.Equal(t, "2025-06-15", weekly[6].Label)

	monthly, _, _, err := bucketsFor(WindowMonthly, now)
	require.NoError(t, err)
	assert.Len(t, monthly, 30) // June
	assert.Equal(t, "2025-06-01", monthly[0].Label)
	assert.Equal(t, "2025-06-30", monthly[29].Label)

	yearly, _, _, err := bucketsFor(WindowYearly, now)
	require.NoError(t, err)
	assert.Len(t, yearly, 12)
	assert.Equal(t, "2025-01", yearly[0].Label)
	assert.Equal(t, "2025-12", yearly[11].Label)
}

func TestBucketsFor_UnknownWindow(t *testing.T) {
	_, _, _, err := bucketsFor("hourly", time.Now())
	assert.True(t, IsBusinessRule(err), "expected business rule error, got %v", err)
}

func TestBucketize_RunningTotal(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	buckets, _, _, err := bucketsFor(WindowWeekly, now)
	require.NoError(t, err)

	registrations := []time.Time{
		time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 9, 19, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 12, 3, 0, 0, 0, time.UTC),
	}

	points := bucketize(buckets, registrations, 10)
	require.Len(t, points, 7)

	assert.Equal(t, 2, points[0].NewUsers)
	assert.Equal(t, 12, points[0].TotalUsers)
	assert.Equal(t, 0, points[1].NewUsers)
	assert.Equal(t, 12, points[1].TotalUsers)
	assert.Equal(t, 1, points[3].NewUsers)
	assert.Equal(t, 13, points[3].TotalUsers)
	assert.Equal(t, 13, points[6].TotalUsers)
}

func TestBucketize_FutureBucketsStayFlat(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	buckets, _, _, err := bucketsFor(WindowYearly, now)
	require.NoError(t, err)

	registrations := []time.Time{
		time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	points := bucketize(buckets, registrations, 5)
	require.Len(t, points, 12)

	// Months after the last registration repeat the final total
	assert.Equal(t, 7, points[5].TotalUsers)
	for m := 6; m < 12; m++ {
		assert.Equal(t, 0, points[m].NewUsers)
		assert.Equal(t, 7, points[m].TotalUsers)
	}
}

func TestActivity_EndToEnd(t *testing.T) {
	repo := newMemoryRepository()
	svc := NewActivityService(repo, utils.NewDevelopmentLogger()).(*activityService)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	seedUsers := []struct {
		id      string
		created time.Time
	}{
		{"u-old", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"u-mon", time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC)},
		{"u-thu", time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)},
	}
	for _, s := range seedUsers {
		require.NoError(t, repo.Users().Upsert(ctx, &models.User{
			ID:        s.id,
			FullName:  s.id,
			Email:     s.id + "@example.com",
			CreatedAt: s.created,
		}))
	}

	points, err := svc.Activity(ctx, WindowWeekly)
	require.NoError(t, err)
	require.Len(t, points, 7)

	assert.Equal(t, 1, points[0].NewUsers)
	assert.Equal(t, 2, points[0].TotalUsers) // u-old counted in the base
	assert.Equal(t, 3, points[6].TotalUsers)
}

func TestActivity_RejectsUnknownWindow(t *testing.T) {
	repo := newMemoryRepository()
	svc := NewActivityService(repo, utils.NewDevelopmentLogger())

	_, err := svc.Activity(context.Background(), "quarterly")
	assert.True(t, IsBusinessRule(err))
}

func TestTotalUsers(t *testing.T) {
	repo := newMemoryRepository()
	svc := NewActivityService(repo, utils.NewDevelopmentLogger())

	ctx := context.Background()
	require.NoError(t, repo.Users().Upsert(ctx, &models.User{ID: "a", Email: "a@example.com"}))
	require.NoError(t, repo.Users().Upsert(ctx, &models.User{ID: "b", Email: "b@example.com"}))

	total, err := svc.TotalUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
