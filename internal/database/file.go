package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/franckalain/nutritiontracker/internal/models"
)

const (
	usersFile = "users.json"
	mealsFile = "meals.json"
)

// FileDB keeps users and meals in memory and rewrites users.json and
// meals.json in its directory after every write. An empty directory keeps
// everything in memory only.
type FileDB struct {
	dir   string
	mu    sync.RWMutex
	users map[string]*models.User
	meals []*models.Meal
}

// NewFileDB loads any existing data files from dir.
func NewFileDB(dir string) (*FileDB, error) {
	db := &FileDB{
		dir:   dir,
		users: make(map[string]*models.User),
	}
	if dir == "" {
		return db, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating data directory: %w", err)
	}
	if err := readJSON(filepath.Join(dir, usersFile), &db.users); err != nil {
		return nil, fmt.Errorf("error loading users: %w", err)
	}
	if err := readJSON(filepath.Join(dir, mealsFile), &db.meals); err != nil {
		return nil, fmt.Errorf("error loading meals: %w", err)
	}
	if db.users == nil {
		db.users = make(map[string]*models.User)
	}
	return db, nil
}

func (s *FileDB) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Name]; ok {
		return ErrUserExists
	}
	cp := *u
	s.users[u.Name] = &cp
	if err := s.flush(); err != nil {
		delete(s.users, u.Name)
		return err
	}
	return nil
}

func (s *FileDB) GetUser(ctx context.Context, name string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[name]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *FileDB) AppendMeal(ctx context.Context, m *models.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meals = append(s.meals, copyMeal(m))
	if err := s.flush(); err != nil {
		s.meals = s.meals[:len(s.meals)-1]
		return err
	}
	return nil
}

func (s *FileDB) ListMeals(ctx context.Context, userID string) ([]*models.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Meal
	for _, m := range s.meals {
		if m.UserID == userID {
			out = append(out, copyMeal(m))
		}
	}
	return out, nil
}

func (s *FileDB) Close() error {
	return nil
}

// flush rewrites both files. Callers hold the write lock.
func (s *FileDB) flush() error {
	if s.dir == "" {
		return nil
	}
	if err := writeJSON(filepath.Join(s.dir, usersFile), s.users); err != nil {
		return fmt.Errorf("error saving users: %w", err)
	}
	meals := s.meals
	if meals == nil {
		meals = []*models.Meal{}
	}
	if err := writeJSON(filepath.Join(s.dir, mealsFile), meals); err != nil {
		return fmt.Errorf("error saving meals: %w", err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// writeJSON replaces path via a temp file and rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func copyMeal(m *models.Meal) *models.Meal {
	cp := *m
	cp.FoodItems = append([]string(nil), m.FoodItems...)
	return &cp
}
