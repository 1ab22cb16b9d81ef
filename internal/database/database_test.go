package database

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franckalain/nutritiontracker/internal/models"
)

func testUser(name string) *models.User {
	return &models.User{
		Name:         name,
		Age:          30,
		Weight:       70,
		Height:       170,
		Gender:       "male",
		Goal:         "maintain",
		BMR:          1700.06,
		RegisteredAt: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func testMeal(id, user string, at time.Time, items ...string) *models.Meal {
	return &models.Meal{
		ID:        id,
		UserID:    user,
		MealType:  "Lunch",
		FoodItems: items,
		Nutrition: models.NutritionTotals{Calories: 100, Protein: 1.5, Carbs: 2, Fiber: 0.5},
		LoggedAt:  at,
	}
}

func stores(t *testing.T) map[string]func(t *testing.T) DB {
	return map[string]func(t *testing.T) DB{
		"memory": func(t *testing.T) DB {
			db, err := NewFileDB("")
			require.NoError(t, err)
			return db
		},
		"file": func(t *testing.T) DB {
			db, err := NewFileDB(t.TempDir())
			require.NoError(t, err)
			return db
		},
		"sqlite": func(t *testing.T) DB {
			db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
			require.NoError(t, err)
			return db
		},
	}
}

func TestStoreContract(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			db := open(t)
			defer db.Close()

			_, err := db.GetUser(ctx, "alice")
			assert.ErrorIs(t, err, ErrUserNotFound)

			require.NoError(t, db.CreateUser(ctx, testUser("alice")))

			dup := testUser("alice")
			dup.Goal = "bulk"
			assert.ErrorIs(t, db.CreateUser(ctx, dup), ErrUserExists)

			got, err := db.GetUser(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, "maintain", got.Goal)
			assert.True(t, got.RegisteredAt.Equal(testUser("alice").RegisteredAt))

			_, err = db.GetUser(ctx, "Alice")
			assert.ErrorIs(t, err, ErrUserNotFound)

			base := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
			require.NoError(t, db.AppendMeal(ctx, testMeal("m1", "alice", base, "Dal", "Dal")))
			require.NoError(t, db.AppendMeal(ctx, testMeal("m2", "bob", base.Add(time.Minute), "Rice")))
			require.NoError(t, db.AppendMeal(ctx, testMeal("m3", "alice", base.Add(time.Hour), "Roti", "", "Salad")))

			meals, err := db.ListMeals(ctx, "alice")
			require.NoError(t, err)
			require.Len(t, meals, 2)
			assert.Equal(t, "m1", meals[0].ID)
			assert.Equal(t, []string{"Dal", "Dal"}, meals[0].FoodItems)
			assert.Equal(t, "m3", meals[1].ID)
			assert.Equal(t, []string{"Roti", "", "Salad"}, meals[1].FoodItems)
			assert.Equal(t, 1.5, meals[1].Nutrition.Protein)
			assert.True(t, meals[1].LoggedAt.Equal(base.Add(time.Hour)))

			meals, err = db.ListMeals(ctx, "nobody")
			require.NoError(t, err)
			assert.Empty(t, meals)
		})
	}
}

func TestStoreConcurrentCreateUser(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			db := open(t)
			defer db.Close()

			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				created int
			)
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					u := testUser("carol")
					u.Goal = fmt.Sprintf("goal-%d", i)
					if err := db.CreateUser(ctx, u); err == nil {
						mu.Lock()
						created++
						mu.Unlock()
					}
				}(i)
			}
			wg.Wait()
			assert.Equal(t, 1, created)
		})
	}
}

func TestFileDBReloads(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := NewFileDB(dir)
	require.NoError(t, err)
	require.NoError(t, db.CreateUser(ctx, testUser("dana")))
	at := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	require.NoError(t, db.AppendMeal(ctx, testMeal("m1", "dana", at, "Rice")))
	require.NoError(t, db.Close())

	assert.FileExists(t, filepath.Join(dir, usersFile))
	assert.FileExists(t, filepath.Join(dir, mealsFile))

	reopened, err := NewFileDB(dir)
	require.NoError(t, err)
	u, err := reopened.GetUser(ctx, "dana")
	require.NoError(t, err)
	assert.Equal(t, 1700.06, u.BMR)

	meals, err := reopened.ListMeals(ctx, "dana")
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, []string{"Rice"}, meals[0].FoodItems)
}

func TestFileDBReturnsCopies(t *testing.T) {
	ctx := context.Background()
	db, err := NewFileDB("")
	require.NoError(t, err)

	require.NoError(t, db.AppendMeal(ctx, testMeal("m1", "erin", time.Now(), "Dal")))
	meals, err := db.ListMeals(ctx, "erin")
	require.NoError(t, err)
	meals[0].FoodItems[0] = "Pizza"

	meals, err = db.ListMeals(ctx, "erin")
	require.NoError(t, err)
	assert.Equal(t, "Dal", meals[0].FoodItems[0])
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, Options{Driver: DriverFile})
	require.NoError(t, err)
	assert.IsType(t, &FileDB{}, db)

	db, err = Open(ctx, Options{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteDB{}, db)
	require.NoError(t, db.Close())

	_, err = Open(ctx, Options{Driver: DriverMongo})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Driver: "redis"})
	assert.EqualError(t, err, "unsupported storage driver: redis")
}
