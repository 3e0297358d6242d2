package services

import (
	"context"
	"time"

	"github.com/quizdash/quiz-service/internal/repositories"
	"github.com/quizdash/quiz-service/internal/utils"
)

// Activity windows
const (
	WindowDaily   = "daily"
	WindowWeekly  = "weekly"
	WindowMonthly = "monthly"
	WindowYearly  = "yearly"
)

type activityService struct {
	repo   repositories.Repository
	logger utils.Logger
	now    func() time.Time
}

func NewActivityService(repo repositories.Repository, logger utils.Logger) ActivityService {
	return &activityService{repo: repo, logger: logger, now: time.Now}
}

// Activity buckets user registrations over the requested window and carries
// a running total alongside each bucket. Buckets that lie in the future hold
// zero new users and repeat the latest total.
func (s *activityService) Activity(ctx context.Context, window string) ([]*ActivityPoint, error) {
	now := s.now()

	buckets, from, to, err := bucketsFor(window, now)
	if err != nil {
		return nil, err
	}

	base, err := s.repo.Users().CountCreatedBefore(ctx, from)
	if err != nil {
		return nil, err
	}

	registrations, err := s.repo.Users().RegistrationsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return bucketize(buckets, registrations, int(base)), nil
}

func (s *activityService) TotalUsers(ctx context.Context) (int64, error) {
	return s.repo.Users().Count(ctx)
}

// bucket is a half-open interval [Start, End).
type bucket struct {
	Label string
	Start time.Time
	End   time.Time
}

// bucketsFor builds the bucket layout for a window anchored at now:
// daily is the 24 hours of today, weekly the last 7 calendar days, monthly
// every day of the current month, yearly the 12 months of the current year.
func bucketsFor(window string, now time.Time) ([]bucket, time.Time, time.Time, error) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var buckets []bucket
	switch window {
	case WindowDaily:
		for h := 0; h < 24; h++ {
			start := today.Add(time.Duration(h) * time.Hour)
			buckets = append(buckets, bucket{
				Label: start.Format("2006-01-02 15:00"),
				Start: start,
				End:   start.Add(time.Hour),
			})
		}
	case WindowWeekly:
		for d := 6; d >= 0; d-- {
			start := today.AddDate(0, 0, -d)
			buckets = append(buckets, bucket{
				Label: start.Format("2006-01-02"),
				Start: start,
				End:   start.AddDate(0, 0, 1),
			})
		}
	case WindowMonthly:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		days := first.AddDate(0, 1, -1).Day()
		for d := 0; d < days; d++ {
			start := first.AddDate(0, 0, d)
			buckets = append(buckets, bucket{
				Label: start.Format("2006-01-02"),
				Start: start,
				End:   start.AddDate(0, 0, 1),
			})
		}
	case WindowYearly:
		for m := time.January; m <= time.December; m++ {
			start := time.Date(now.Year(), m, 1, 0, 0, 0, 0, loc)
			buckets = append(buckets, bucket{
				Label: start.Format("2006-01"),
				Start: start,
				End:   start.AddDate(0, 1, 0),
			})
		}
	default:
		return nil, time.Time{}, time.Time{}, NewBusinessRuleError(
			"activity_window", "window must be daily, weekly, monthly or yearly")
	}

	return buckets, buckets[0].Start, buckets[len(buckets)-1].End, nil
}

// bucketize counts registrations per bucket and accumulates the running
// total on top of the pre-window base count. Registrations are assumed
// sorted ascending.
func bucketize(buckets []bucket, registrations []time.Time, base int) []*ActivityPoint {
	points := make([]*ActivityPoint, 0, len(buckets))
	total := base
	next := 0

	for _, b := range buckets {
		count := 0
		for next < len(registrations) && registrations[next].Before(b.End) {
			if !registrations[next].Before(b.Start) {
				count++
			}
			next++
		}
		total += count
		points = append(points, &ActivityPoint{
			Label:      b.Label,
			NewUsers:   count,
			TotalUsers: total,
		})
	}
	return points
}
