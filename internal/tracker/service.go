// Package tracker implements registration, meal logging and the nutrition
// queries on top of a database.DB.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/franckalain/nutritiontracker/internal/database"
	"github.com/franckalain/nutritiontracker/internal/models"
	"github.com/franckalain/nutritiontracker/internal/nutrition"
)

// DefaultUser is the user text commands are logged for when none is given.
const DefaultUser = "default_user"

// Profile used for users first seen through a text command.
const (
	defaultAge    = 25
	defaultWeight = 70
	defaultHeight = 170
	defaultGender = "male"
	defaultGoal   = "maintain"
)

// MealListener is notified after a meal has been stored.
type MealListener func(*models.Meal)

// Service is the nutrition tracker. It is safe for concurrent use as long as
// the underlying DB is.
type Service struct {
	db        database.DB
	log       *zap.Logger
	now       func() time.Time
	loc       *time.Location
	newID     func() string
	listeners []MealListener
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone calendar dates are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithIDGenerator overrides the meal id source.
func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

// New creates a Service backed by db.
func New(db database.DB, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		db:    db,
		log:   log.Named("tracker"),
		now:   time.Now,
		loc:   time.Local,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnMealLogged registers l to be called for every stored meal. Listeners are
// not safe to add once the service is serving requests.
func (s *Service) OnMealLogged(l MealListener) {
	s.listeners = append(s.listeners, l)
}

// Location is the zone calendar dates are computed in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Register validates raw registration fields and stores the new user.
func (s *Service) Register(ctx context.Context, raw map[string]any) (*models.User, error) {
	if errs := nutrition.ValidateUser(raw); len(errs) > 0 {
		return nil, invalid(errs...)
	}

	// ValidateUser has checked types and ranges.
	age, _ := nutrition.ToFloat(raw["age"])
	weight, _ := nutrition.ToFloat(raw["weight"])
	height, _ := nutrition.ToFloat(raw["height"])
	gender := strings.ToLower(raw["gender"].(string))
	name := strings.TrimSpace(fmt.Sprint(raw["name"]))

	bmr, err := nutrition.ComputeBMR(gender, weight, height, age)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Name:         name,
		Age:          age,
		Weight:       weight,
		Height:       height,
		Gender:       gender,
		Goal:         fmt.Sprint(raw["goal"]),
		BMR:          models.Round2(bmr),
		RegisteredAt: s.now(),
	}
	if err := s.db.CreateUser(ctx, u); err != nil {
		if errors.Is(err, database.ErrUserExists) {
			return nil, fmt.Errorf("register %q: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("register %q: %w", name, err)
	}

	s.log.Info("User registered", zap.String("user", u.Name), zap.Float64("bmr", u.BMR))
	return u, nil
}

// LogMeal stores a meal for an existing user.
func (s *Service) LogMeal(ctx context.Context, user, meal string, items []string) (*models.Meal, error) {
	user = strings.TrimSpace(user)
	if _, err := s.getUser(ctx, user); err != nil {
		return nil, err
	}
	mealType, ok := models.ParseMealType(strings.ToLower(strings.TrimSpace(meal)))
	if !ok {
		return nil, invalid(fmt.Sprintf("Meal type must be one of: %v", models.MealTypes))
	}
	if len(items) == 0 {
		return nil, invalid("Items must be a non-empty array")
	}
	return s.appendMeal(ctx, user, mealType, items)
}

// MessageResult is what LogMessage stored for a text command.
type MessageResult struct {
	User   string
	Parsed *nutrition.ParsedMeal
	Meal   *models.Meal
	// Provisioned is set when the user was created for this message.
	Provisioned bool
}

// LogMessage parses a text command such as "log lunch: Dal, Rice" and stores
// the meal. Unknown users get a default profile; an empty user means
// DefaultUser.
func (s *Service) LogMessage(ctx context.Context, user, message string) (*MessageResult, error) {
	if user == "" {
		user = DefaultUser
	}
	parsed, err := nutrition.ParseMealMessage(message)
	if err != nil {
		return nil, err
	}

	provisioned, err := s.ensureUser(ctx, user)
	if err != nil {
		return nil, err
	}

	meal, err := s.appendMeal(ctx, user, parsed.MealType, parsed.FoodItems)
	if err != nil {
		return nil, err
	}
	return &MessageResult{User: user, Parsed: parsed, Meal: meal, Provisioned: provisioned}, nil
}

func (s *Service) ensureUser(ctx context.Context, name string) (bool, error) {
	_, err := s.db.GetUser(ctx, name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, database.ErrUserNotFound) {
		return false, err
	}

	bmr, err := nutrition.ComputeBMR(defaultGender, defaultWeight, defaultHeight, defaultAge)
	if err != nil {
		return false, err
	}
	u := &models.User{
		Name:         name,
		Age:          defaultAge,
		Weight:       defaultWeight,
		Height:       defaultHeight,
		Gender:       defaultGender,
		Goal:         defaultGoal,
		BMR:          models.Round2(bmr),
		RegisteredAt: s.now(),
	}
	err = s.db.CreateUser(ctx, u)
	if errors.Is(err, database.ErrUserExists) {
		// Created concurrently by another message.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("provision %q: %w", name, err)
	}
	s.log.Info("User provisioned with default profile", zap.String("user", name))
	return true, nil
}

func (s *Service) appendMeal(ctx context.Context, user string, mealType models.MealType, items []string) (*models.Meal, error) {
	m := &models.Meal{
		ID:        s.newID(),
		UserID:    user,
		MealType:  mealType.Display(),
		FoodItems: append([]string(nil), items...),
		Nutrition: nutrition.Aggregate(items),
		LoggedAt:  s.now(),
	}
	if err := s.db.AppendMeal(ctx, m); err != nil {
		return nil, fmt.Errorf("log meal for %q: %w", user, err)
	}

	s.log.Info("Meal logged",
		zap.String("user", user),
		zap.String("meal", m.MealType),
		zap.Strings("items", m.FoodItems),
		zap.Float64("calories", m.Nutrition.Calories),
	)
	for _, l := range s.listeners {
		l(m)
	}
	return m, nil
}

func (s *Service) getUser(ctx context.Context, name string) (*models.User, error) {
	u, err := s.db.GetUser(ctx, name)
	if errors.Is(err, database.ErrUserNotFound) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return u, err
}

// Meals returns every meal of user in logging order.
func (s *Service) Meals(ctx context.Context, user string) ([]*models.Meal, error) {
	if _, err := s.getUser(ctx, user); err != nil {
		return nil, err
	}
	return s.db.ListMeals(ctx, user)
}

// MealsOn returns the meals of user logged on date (YYYY-MM-DD).
func (s *Service) MealsOn(ctx context.Context, user, date string) ([]*models.Meal, error) {
	meals, err := s.Meals(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.onDate(meals, date), nil
}

func (s *Service) onDate(meals []*models.Meal, date string) []*models.Meal {
	var out []*models.Meal
	for _, m := range meals {
		if m.Date(s.loc) == date {
			out = append(out, m)
		}
	}
	return out
}

// Status summarizes a user's intake, lifetime and for today.
type Status struct {
	User       string
	BMR        float64
	Goal       string
	Total      models.NutritionTotals
	Today      models.NutritionTotals
	Date       string
	TotalMeals int
	MealsToday int
}

// Status computes the nutrition summary for user.
func (s *Service) Status(ctx context.Context, user string) (*Status, error) {
	u, err := s.getUser(ctx, user)
	if err != nil {
		return nil, err
	}
	meals, err := s.db.ListMeals(ctx, user)
	if err != nil {
		return nil, err
	}

	today := s.now().In(s.loc).Format(models.DateLayout)
	todays := s.onDate(meals, today)
	return &Status{
		User:       u.Name,
		BMR:        u.BMR,
		Goal:       u.Goal,
		Total:      nutrition.Sum(meals),
		Today:      nutrition.Sum(todays),
		Date:       today,
		TotalMeals: len(meals),
		MealsToday: len(todays),
	}, nil
}

// Catalog returns the food table.
func (s *Service) Catalog() map[string]models.FoodFact {
	return nutrition.Catalog()
}
