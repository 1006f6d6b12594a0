package service

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"errors"
	"time"
)

type GoalService interface {
	CreateGoal(ctx context.Context, userID string, in GoalInput) (*domain.Goal, error)
	GetGoal(ctx context.Context, userID, goalID string) (*domain.Goal, error)
	ListGoals(ctx context.Context, userID string, active *bool, page repository.Page) ([]domain.Goal, error)
	UpdateGoal(ctx context.Context, userID, goalID string, in GoalUpdate) (*domain.Goal, error)
	DeleteGoal(ctx context.Context, userID, goalID string) error
}

type GoalInput struct {
	Kind         domain.GoalKind
	TargetValue  float64
	CurrentValue float64
	StartDate    *time.Time
	EndDate      *time.Time
	Active       *bool
}

type GoalUpdate struct {
	Kind         domain.Optional[domain.GoalKind]
	TargetValue  domain.Optional[float64]
	CurrentValue domain.Optional[float64]
	StartDate    domain.Optional[time.Time]
	EndDate      domain.Optional[time.Time]
	Active       domain.Optional[bool]
}

type goalService struct {
	store repository.Store
	now   func() time.Time
}

func NewGoalService(store repository.Store) GoalService {
	return &goalService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func validateGoal(g *domain.Goal) error {
	if !g.Kind.Valid() {
		return validationError("kind must be one of workouts, weight, load")
	}
	if g.TargetValue <= 0 {
		return validationError("targetValue must be positive")
	}
	if g.CurrentValue < 0 {
		return validationError("currentValue cannot be negative")
	}
	if g.EndDate != nil && g.EndDate.Before(g.StartDate) {
		return validationError("endDate cannot be before startDate")
	}
	return nil
}

func (s *goalService) CreateGoal(ctx context.Context, userID string, in GoalInput) (*domain.Goal, error) {
	goal := &domain.Goal{
		OwnerID:      userID,
		Kind:         in.Kind,
		TargetValue:  in.TargetValue,
		CurrentValue: in.CurrentValue,
		StartDate:    s.now(),
		Active:       true,
	}
	if in.StartDate != nil {
		goal.StartDate = in.StartDate.UTC()
	}
	if in.EndDate != nil {
		t := in.EndDate.UTC()
		goal.EndDate = &t
	}
	if in.Active != nil {
		goal.Active = *in.Active
	}
	if err := validateGoal(goal); err != nil {
		return nil, err
	}

	if err := s.store.Goals().Create(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *goalService) ownedGoal(ctx context.Context, userID, goalID string) (*domain.Goal, error) {
	goal, err := s.store.Goals().GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	if !goal.IsOwnedBy(userID) {
		return nil, ErrGoalAccessDenied
	}
	return goal, nil
}

func (s *goalService) GetGoal(ctx context.Context, userID, goalID string) (*domain.Goal, error) {
	return s.ownedGoal(ctx, userID, goalID)
}

func (s *goalService) ListGoals(ctx context.Context, userID string, active *bool, page repository.Page) ([]domain.Goal, error) {
	return s.store.Goals().List(ctx, repository.GoalFilter{OwnerID: userID, Active: active, Page: page})
}

func (s *goalService) UpdateGoal(ctx context.Context, userID, goalID string, in GoalUpdate) (*domain.Goal, error) {
	goal, err := s.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	in.Kind.ApplyValue(&goal.Kind)
	in.TargetValue.ApplyValue(&goal.TargetValue)
	in.CurrentValue.ApplyValue(&goal.CurrentValue)
	in.StartDate.ApplyValue(&goal.StartDate)
	in.EndDate.Apply(&goal.EndDate)
	in.Active.ApplyValue(&goal.Active)
	goal.StartDate = goal.StartDate.UTC()
	if goal.EndDate != nil {
		t := goal.EndDate.UTC()
		goal.EndDate = &t
	}
	if err := validateGoal(goal); err != nil {
		return nil, err
	}

	if err := s.store.Goals().Update(ctx, goal); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return goal, nil
}

func (s *goalService) DeleteGoal(ctx context.Context, userID, goalID string) error {
	if _, err := s.ownedGoal(ctx, userID, goalID); err != nil {
		return err
	}
	if err := s.store.Goals().Delete(ctx, goalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGoalNotFound
		}
		return err
	}
	return nil
}
