package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/franckalain/nutritiontracker/internal/models"
)

func counterResponse(seq int64) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
		{Key: "_id", Value: mealsCollection},
		{Key: "seq", Value: seq},
	}})
}

func TestMongoDB(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("duplicate user maps to ErrUserExists", func(mt *mtest.T) {
		db := &MongoDB{client: mt.Client, db: mt.DB}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: name_1",
		}))

		err := db.CreateUser(ctx, &models.User{Name: "alice"})
		assert.ErrorIs(mt, err, ErrUserExists)
	})

	mt.Run("other insert errors are not conflicts", func(mt *mtest.T) {
		db := &MongoDB{client: mt.Client, db: mt.DB}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		err := db.CreateUser(ctx, &models.User{Name: "alice"})
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrUserExists)
	})

	mt.Run("missing user", func(mt *mtest.T) {
		db := &MongoDB{client: mt.Client, db: mt.DB}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "nutrition.users", mtest.FirstBatch))

		_, err := db.GetUser(ctx, "nobody")
		assert.ErrorIs(mt, err, ErrUserNotFound)
	})

	mt.Run("meals in the same instant keep logging order", func(mt *mtest.T) {
		db := &MongoDB{client: mt.Client, db: mt.DB}
		at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

		mt.AddMockResponses(
			counterResponse(1), mtest.CreateSuccessResponse(),
			counterResponse(2), mtest.CreateSuccessResponse(),
		)
		require.NoError(mt, db.AppendMeal(ctx, &models.Meal{ID: "m1", UserID: "alice", LoggedAt: at}))
		require.NoError(mt, db.AppendMeal(ctx, &models.Meal{ID: "m2", UserID: "alice", LoggedAt: at}))

		var seqs []int64
		for _, evt := range mt.GetAllStartedEvents() {
			if evt.CommandName != "insert" {
				continue
			}
			docs, err := evt.Command.Lookup("documents").Array().Values()
			require.NoError(mt, err)
			require.Len(mt, docs, 1)
			seqs = append(seqs, docs[0].Document().Lookup("seq").Int64())
		}
		assert.Equal(mt, []int64{1, 2}, seqs)

		mt.ClearEvents()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "nutrition.meals", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "m1"}, {Key: "user_id", Value: "alice"}, {Key: "logged_at", Value: at}, {Key: "seq", Value: int64(1)}},
			bson.D{{Key: "_id", Value: "m2"}, {Key: "user_id", Value: "alice"}, {Key: "logged_at", Value: at}, {Key: "seq", Value: int64(2)}},
		))
		meals, err := db.ListMeals(ctx, "alice")
		require.NoError(mt, err)
		require.Len(mt, meals, 2)
		assert.Equal(mt, "m1", meals[0].ID)
		assert.Equal(mt, "m2", meals[1].ID)

		find := mt.GetStartedEvent()
		require.NotNil(mt, find)
		assert.Equal(mt, "find", find.CommandName)
		sort := find.Command.Lookup("sort").Document()
		assert.Equal(mt, int32(1), sort.Lookup("seq").Int32())
		_, err = sort.LookupErr("logged_at")
		assert.Error(mt, err)
	})
}
