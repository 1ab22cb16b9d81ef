package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/franckalain/nutritiontracker/internal/models"
)

const (
	usersCollection    = "users"
	mealsCollection    = "meals"
	countersCollection = "counters"
)

// mealDoc is a stored meal. Seq comes from the meals counter and orders a
// user's log independently of clock resolution.
type mealDoc struct {
	models.Meal `bson:",inline"`
	Seq         int64 `bson:"seq"`
}

// MongoDB implements DB on two MongoDB collections.
type MongoDB struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDB connects to uri, pings the primary and ensures indexes.
func NewMongoDB(ctx context.Context, uri, dbName string) (*MongoDB, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is not set")
	}
	if dbName == "" {
		dbName = "nutrition"
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m := &MongoDB{client: client, db: client.Database(dbName)}
	if err := m.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

func (m *MongoDB) ensureIndexes(ctx context.Context) error {
	_, err := m.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}
	_, err = m.db.Collection(mealsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "seq", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create meals index: %w", err)
	}
	return nil
}

func (m *MongoDB) CreateUser(ctx context.Context, u *models.User) error {
	_, err := m.db.Collection(usersCollection).InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (m *MongoDB) GetUser(ctx context.Context, name string) (*models.User, error) {
	var u models.User
	err := m.db.Collection(usersCollection).FindOne(ctx, bson.M{"name": name}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

// nextMealSeq atomically increments the meals counter and returns the new
// value.
func (m *MongoDB) nextMealSeq(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := m.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": mealsCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate meal sequence: %w", err)
	}
	return counter.Seq, nil
}

func (m *MongoDB) AppendMeal(ctx context.Context, meal *models.Meal) error {
	seq, err := m.nextMealSeq(ctx)
	if err != nil {
		return err
	}
	if _, err := m.db.Collection(mealsCollection).InsertOne(ctx, mealDoc{Meal: *meal, Seq: seq}); err != nil {
		return fmt.Errorf("failed to insert meal: %w", err)
	}
	return nil
}

func (m *MongoDB) ListMeals(ctx context.Context, userID string) ([]*models.Meal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cursor, err := m.db.Collection(mealsCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find meals: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mealDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode meals: %w", err)
	}
	var meals []*models.Meal
	for i := range docs {
		meals = append(meals, &docs[i].Meal)
	}
	return meals, nil
}

// Close disconnects the client.
func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
