package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/franckalain/nutritiontracker/internal/database"
	"github.com/franckalain/nutritiontracker/internal/tracker"
)

func newTestBot(t *testing.T) *Bot {
	t.Helper()
	db, err := database.NewFileDB("")
	require.NoError(t, err)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	svc := tracker.New(db, zaptest.NewLogger(t),
		tracker.WithClock(func() time.Time { return now }),
		tracker.WithLocation(time.UTC),
	)
	return newBot(svc, "!", zaptest.NewLogger(t))
}

func TestReplyLogsMeal(t *testing.T) {
	b := newTestBot(t)
	ctx := context.Background()

	reply, ok := b.Reply(ctx, "mia", "!log lunch: Jeera Rice, Dal, Cucumber")
	require.True(t, ok)
	assert.Equal(t, "Logged Lunch for mia: Jeera Rice, Dal, Cucumber (446 kcal, 18g protein, 69g carbs, 8g fiber)", reply)

	reply, ok = b.Reply(ctx, "mia", "!status")
	require.True(t, ok)
	assert.Equal(t, "mia: 1 meals today, 446 kcal of 1700.06 BMR (1 meals logged in total)", reply)
}

func TestReplyFormatHint(t *testing.T) {
	b := newTestBot(t)

	reply, ok := b.Reply(context.Background(), "mia", "!log something")
	require.True(t, ok)
	assert.Equal(t, "Use `!log [meal_type]: [food items]`, for example `!log lunch: Jeera Rice, Dal, Cucumber`", reply)
}

func TestReplyStatusUnknownUser(t *testing.T) {
	b := newTestBot(t)

	reply, ok := b.Reply(context.Background(), "nobody", "!status")
	require.True(t, ok)
	assert.Contains(t, reply, "No meals yet for nobody")
}

func TestReplyFoods(t *testing.T) {
	b := newTestBot(t)

	reply, ok := b.Reply(context.Background(), "mia", "!foods")
	require.True(t, ok)
	assert.Contains(t, reply, "\nChicken Curry: 300 kcal\nCucumber: 16 kcal")
}

func TestReplyIgnoresOtherMessages(t *testing.T) {
	b := newTestBot(t)
	for _, msg := range []string{"log lunch: Dal", "hello", "!", "!   ", "!ping"} {
		_, ok := b.Reply(context.Background(), "mia", msg)
		assert.False(t, ok, msg)
	}
}
