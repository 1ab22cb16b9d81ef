package database

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/franckalain/nutritiontracker/internal/models"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteDB implements DB on a single SQLite file.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (and if needed creates) the database at dbPath.
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	if dbPath == "" {
		dbPath = "nutrition.db"
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error enabling WAL mode: %w", err)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

func initializeSchema(db *sql.DB) error {
	schemaBytes, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("error reading schema file: %w", err)
	}

	if _, err := db.Exec(string(schemaBytes)); err != nil {
		return fmt.Errorf("error executing schema: %w", err)
	}
	return nil
}

func (s *SQLiteDB) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (
			name, age, weight, height, gender, goal, bmr, registered_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`

	res, err := s.db.ExecContext(ctx, query,
		u.Name, u.Age, u.Weight, u.Height, u.Gender, u.Goal, u.BMR,
		u.RegisteredAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("error inserting user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserExists
	}
	return nil
}

func (s *SQLiteDB) GetUser(ctx context.Context, name string) (*models.User, error) {
	query := `
		SELECT name, age, weight, height, gender, goal, bmr, registered_at
		FROM users WHERE name = ?
	`

	u := &models.User{}
	var registeredAt string
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&u.Name, &u.Age, &u.Weight, &u.Height, &u.Gender, &u.Goal, &u.BMR, &registeredAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.RegisteredAt, err = time.Parse(time.RFC3339Nano, registeredAt); err != nil {
		return nil, fmt.Errorf("error parsing registered_at: %w", err)
	}
	return u, nil
}

func (s *SQLiteDB) AppendMeal(ctx context.Context, m *models.Meal) error {
	query := `
		INSERT INTO meals (
			id, user_id, meal_type, food_items, calories, protein, carbs, fiber, logged_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	items, err := json.Marshal(m.FoodItems)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query,
		m.ID, m.UserID, m.MealType, string(items),
		m.Nutrition.Calories, m.Nutrition.Protein, m.Nutrition.Carbs, m.Nutrition.Fiber,
		m.LoggedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteDB) ListMeals(ctx context.Context, userID string) ([]*models.Meal, error) {
	query := `
		SELECT id, user_id, meal_type, food_items, calories, protein, carbs, fiber, logged_at
		FROM meals
		WHERE user_id = ?
		ORDER BY seq
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*models.Meal
	for rows.Next() {
		var (
			m        models.Meal
			items    string
			loggedAt string
		)
		err := rows.Scan(
			&m.ID, &m.UserID, &m.MealType, &items,
			&m.Nutrition.Calories, &m.Nutrition.Protein, &m.Nutrition.Carbs, &m.Nutrition.Fiber,
			&loggedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(items), &m.FoodItems); err != nil {
			return nil, fmt.Errorf("error decoding food items of meal %s: %w", m.ID, err)
		}
		if m.LoggedAt, err = time.Parse(time.RFC3339Nano, loggedAt); err != nil {
			return nil, fmt.Errorf("error parsing logged_at of meal %s: %w", m.ID, err)
		}
		results = append(results, &m)
	}

	return results, rows.Err()
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
