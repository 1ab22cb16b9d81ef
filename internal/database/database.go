package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/franckalain/nutritiontracker/internal/models"
)

var (
	// ErrUserExists is returned by CreateUser when the name is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned by GetUser for unknown names.
	ErrUserNotFound = errors.New("user not found")
)

// DB is the user store and meal log the tracker runs on.
type DB interface {
	// CreateUser inserts u unless a user with the same name exists, in which
	// case it returns ErrUserExists and leaves the stored record alone.
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, name string) (*models.User, error)
	// AppendMeal adds m to the end of the meal log.
	AppendMeal(ctx context.Context, m *models.Meal) error
	// ListMeals returns a user's meals in the order they were logged.
	ListMeals(ctx context.Context, userID string) ([]*models.Meal, error)
	Close() error
}

// Drivers accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Options selects and configures a storage driver.
type Options struct {
	Driver string
	// Path is the data directory for the file driver and the database file
	// for sqlite.
	Path          string
	MongoURI      string
	MongoDatabase string
}

// Open connects to the store named by opts.Driver.
func Open(ctx context.Context, opts Options) (DB, error) {
	switch opts.Driver {
	case DriverFile, "":
		return NewFileDB(opts.Path)
	case DriverSQLite:
		return NewSQLiteDB(opts.Path)
	case DriverMongo:
		return NewMongoDB(ctx, opts.MongoURI, opts.MongoDatabase)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", opts.Driver)
	}
}
