package service

import (
	"alcyxob/fittracker/internal/domain"
	"alcyxob/fittracker/internal/repository"
	"context"
	"errors"
	"strings"
)

type ExerciseService interface {
	CreateExercise(ctx context.Context, userID string, in ExerciseInput) (*domain.Exercise, error)
	// GetExercise returns the exercise when it is public or owned by userID.
	GetExercise(ctx context.Context, userID, exerciseID string) (*domain.Exercise, error)
	ListExercises(ctx context.Context, userID string, filter ExerciseFilter) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, userID, exerciseID string, in ExerciseUpdate) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, userID, exerciseID string) error
}

type ExerciseInput struct {
	Name         string
	MuscleGroup  string
	Equipment    string
	Difficulty   domain.Difficulty
	Description  string
	Instructions string
	ImageURL     string
	Public       bool
}

type ExerciseUpdate struct {
	Name         domain.Optional[string]
	MuscleGroup  domain.Optional[string]
	Equipment    domain.Optional[string]
	Difficulty   domain.Optional[domain.Difficulty]
	Description  domain.Optional[string]
	Instructions domain.Optional[string]
	ImageURL     domain.Optional[string]
	Public       domain.Optional[bool]
}

type ExerciseFilter struct {
	MuscleGroup string
	Equipment   string
	Difficulty  domain.Difficulty
	Name        string
	Page        repository.Page
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	store repository.Store
}

func NewExerciseService(store repository.Store) ExerciseService {
	return &exerciseService{store: store}
}

func validateDifficulty(d domain.Difficulty) error {
	if d != "" && !d.Valid() {
		return validationError("difficulty must be one of beginner, intermediate, advanced")
	}
	return nil
}

// CreateExercise adds an exercise owned by the requester.
func (s *exerciseService) CreateExercise(ctx context.Context, userID string, in ExerciseInput) (*domain.Exercise, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("exercise name is required")
	}
	if err := validateDifficulty(in.Difficulty); err != nil {
		return nil, err
	}

	owner := userID
	exercise := &domain.Exercise{
		OwnerID:      &owner,
		Name:         name,
		MuscleGroup:  in.MuscleGroup,
		Equipment:    in.Equipment,
		Difficulty:   in.Difficulty,
		Description:  in.Description,
		Instructions: in.Instructions,
		ImageURL:     in.ImageURL,
		Public:       in.Public,
	}
	if err := s.store.Exercises().Create(ctx, exercise); err != nil {
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseService) GetExercise(ctx context.Context, userID, exerciseID string) (*domain.Exercise, error) {
	return visibleExercise(ctx, s.store, userID, exerciseID)
}

// visibleExercise loads an exercise and hides it from users who may not see it.
func visibleExercise(ctx context.Context, store repository.Store, userID, exerciseID string) (*domain.Exercise, error) {
	exercise, err := store.Exercises().GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if !exercise.VisibleTo(userID) {
		return nil, ErrExerciseNotFound
	}
	return exercise, nil
}

func (s *exerciseService) ListExercises(ctx context.Context, userID string, filter ExerciseFilter) ([]domain.Exercise, error) {
	if err := validateDifficulty(filter.Difficulty); err != nil {
		return nil, err
	}
	return s.store.Exercises().List(ctx, repository.ExerciseFilter{
		RequesterID: userID,
		MuscleGroup: filter.MuscleGroup,
		Equipment:   filter.Equipment,
		Difficulty:  filter.Difficulty,
		Name:        filter.Name,
		Page:        filter.Page,
	})
}

// ownedExercise loads an exercise for writing: missing is NotFound, anyone but the owner gets Forbidden.
func (s *exerciseService) ownedExercise(ctx context.Context, userID, exerciseID string) (*domain.Exercise, error) {
	exercise, err := s.store.Exercises().GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if !exercise.IsOwnedBy(userID) {
		return nil, ErrExerciseAccessDenied
	}
	return exercise, nil
}

func (s *exerciseService) UpdateExercise(ctx context.Context, userID, exerciseID string, in ExerciseUpdate) (*domain.Exercise, error) {
	exercise, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}

	if name, ok := in.Name.Get(); ok {
		if strings.TrimSpace(name) == "" {
			return nil, validationError("exercise name cannot be empty")
		}
		exercise.Name = strings.TrimSpace(name)
	} else if in.Name.Set {
		return nil, validationError("exercise name cannot be null")
	}
	if d, ok := in.Difficulty.Get(); ok {
		if err := validateDifficulty(d); err != nil {
			return nil, err
		}
	}
	in.MuscleGroup.ApplyValue(&exercise.MuscleGroup)
	in.Equipment.ApplyValue(&exercise.Equipment)
	in.Difficulty.ApplyValue(&exercise.Difficulty)
	in.Description.ApplyValue(&exercise.Description)
	in.Instructions.ApplyValue(&exercise.Instructions)
	in.ImageURL.ApplyValue(&exercise.ImageURL)
	in.Public.ApplyValue(&exercise.Public)
	// null clears the optional text fields
	clearIfNull(in.MuscleGroup, &exercise.MuscleGroup)
	clearIfNull(in.Equipment, &exercise.Equipment)
	clearIfNull(in.Description, &exercise.Description)
	clearIfNull(in.Instructions, &exercise.Instructions)
	clearIfNull(in.ImageURL, &exercise.ImageURL)
	if in.Difficulty.Set && in.Difficulty.Value == nil {
		exercise.Difficulty = ""
	}

	if err := s.store.Exercises().Update(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

func clearIfNull(o domain.Optional[string], dst *string) {
	if o.Set && o.Value == nil {
		*dst = ""
	}
}

func (s *exerciseService) DeleteExercise(ctx context.Context, userID, exerciseID string) error {
	if _, err := s.ownedExercise(ctx, userID, exerciseID); err != nil {
		return err
	}
	if err := s.store.Exercises().Delete(ctx, exerciseID); err != nil {
		switch {
		case errors.Is(err, repository.ErrInUse):
			return ErrExerciseInUse
		case errors.Is(err, repository.ErrNotFound):
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}
