package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"quicktask/internal/models"
	"quicktask/internal/repositories"
)

const (
	DefaultTrendDays = 7
	MaxTrendDays     = 30
)

type AnalyticsService interface {
	Stats(ctx context.Context, ownerID int64) (*models.TaskStats, error)
	Trends(ctx context.Context, ownerID int64, days int) ([]models.TrendPoint, error)
}

type analyticsService struct {
	repo repositories.TaskRepository
	now  func() time.Time
	loc  *time.Location
}

func NewAnalyticsService(repo repositories.TaskRepository) AnalyticsService {
	return &analyticsService{repo: repo, now: time.Now, loc: time.Local}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *analyticsService) Stats(ctx context.Context, ownerID int64) (*models.TaskStats, error) {
	byStatus, err := s.repo.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	total := 0
	for _, n := range byStatus {
		total += n
	}
	stats := &models.TaskStats{TotalTasks: total}
	if total == 0 {
		return stats, nil
	}

	completedStatus := models.StatusCompleted
	completed, err := s.repo.FindAll(ctx, models.TaskFilter{OwnerID: &ownerID, Status: &completedStatus})
	if err != nil {
		return nil, fmt.Errorf("completed tasks: %w", err)
	}
	var totalHours float64
	for _, t := range completed {
		totalHours += t.UpdatedAt.Sub(t.CreatedAt).Hours()
	}
	if len(completed) > 0 {
		stats.AvgCompletionTimeHrs = round2(totalHours / float64(len(completed)))
	}

	now := s.now()
	overdue, err := s.repo.FindByOwnerAndPredicate(ctx, ownerID, models.StatusCompleted, models.DueRange{Before: &now})
	if err != nil {
		return nil, fmt.Errorf("overdue tasks: %w", err)
	}
	stats.OverdueTasks = len(overdue)
	stats.ProductivityScore = round2(float64(len(completed)) / float64(total) * 100)
	return stats, nil
}

// Trends counts tasks completed per calendar day from now-days to now, both ends
// included, with zero-filled gaps.
func (s *analyticsService) Trends(ctx context.Context, ownerID int64, days int) ([]models.TrendPoint, error) {
	if days < 1 || days > MaxTrendDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidRange, MaxTrendDays)
	}
	end := s.now().In(s.loc)
	start := end.AddDate(0, 0, -days)

	completed, err := s.repo.ListCompletedBetween(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("completed tasks: %w", err)
	}
	perDay := make(map[string]int, days+1)
	for _, t := range completed {
		perDay[t.UpdatedAt.In(s.loc).Format("2006-01-02")]++
	}

	out := make([]models.TrendPoint, 0, days+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		out = append(out, models.TrendPoint{Date: key, Count: perDay[key]})
	}
	return out, nil
}
