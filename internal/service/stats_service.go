package service

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"fmt"
	"time"
)

type StatsService interface {
	Summary(ctx context.Context, userID string) (*domain.UserStats, error)
	WeightProgress(ctx context.Context, userID string) ([]domain.WeightEntry, error)
}

type statsService struct {
	store repository.Store
	now   func() time.Time
}

func NewStatsService(store repository.Store) StatsService {
	return &statsService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Summary counts the requester's templates, executions and active goals.
func (s *statsService) Summary(ctx context.Context, userID string) (*domain.UserStats, error) {
	var (
		stats domain.UserStats
		err   error
	)
	if stats.Workouts, err = s.store.Workouts().CountByOwner(ctx, userID); err != nil {
		return nil, fmt.Errorf("count workouts: %w", err)
	}
	if stats.Executions, err = s.store.Executions().Count(ctx, repository.ExecutionFilter{OwnerID: userID}); err != nil {
		return nil, fmt.Errorf("count executions: %w", err)
	}

	now := s.now()
	week := now.AddDate(0, 0, -7)
	if stats.ExecutionsLast7d, err = s.store.Executions().Count(ctx, repository.ExecutionFilter{OwnerID: userID, From: &week}); err != nil {
		return nil, fmt.Errorf("count executions: %w", err)
	}
	month := now.AddDate(0, 0, -30)
	if stats.ExecutionsLast30d, err = s.store.Executions().Count(ctx, repository.ExecutionFilter{OwnerID: userID, From: &month}); err != nil {
		return nil, fmt.Errorf("count executions: %w", err)
	}

	history, err := s.store.Executions().History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load executions: %w", err)
	}
	days := map[string]struct{}{}
	for _, e := range history {
		stats.TotalMinutes += e.Minutes()
		days[e.StartedAt.UTC().Format(time.DateOnly)] = struct{}{}
	}
	stats.ActiveDays = len(days)

	active := true
	if stats.ActiveGoals, err = s.store.Goals().Count(ctx, repository.GoalFilter{OwnerID: userID, Active: &active}); err != nil {
		return nil, fmt.Errorf("count goals: %w", err)
	}
	return &stats, nil
}

// WeightProgress lists the body weight snapshots recorded on executions, oldest first.
func (s *statsService) WeightProgress(ctx context.Context, userID string) ([]domain.WeightEntry, error) {
	history, err := s.store.Executions().History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load executions: %w", err)
	}
	entries := []domain.WeightEntry{}
	for _, e := range history {
		if e.BodyWeight == nil {
			continue
		}
		entries = append(entries, domain.WeightEntry{Date: e.StartedAt, Weight: *e.BodyWeight})
	}
	return entries, nil
}
