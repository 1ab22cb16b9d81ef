// Package bot lets Discord users log meals with the same text commands the
// webhook accepts, e.g. "!log lunch: Dal, Roti".
package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/franckalain/nutritiontracker/internal/nutrition"
	"github.com/franckalain/nutritiontracker/internal/tracker"
)

// Bot relays prefixed channel messages to the tracker.
type Bot struct {
	session *discordgo.Session
	svc     *tracker.Service
	prefix  string
	log     *zap.Logger
}

// New creates a bot for token. It does not connect until Start.
func New(token, prefix string, svc *tracker.Service, log *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	b := newBot(svc, prefix, log)
	b.session = session

	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	return b, nil
}

func newBot(svc *tracker.Service, prefix string, log *zap.Logger) *Bot {
	return &Bot{
		svc:    svc,
		prefix: prefix,
		log:    log.Named("bot"),
	}
}

// Start connects to Discord and blocks until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening Discord session: %w", err)
	}
	b.log.Info("Bot is running")

	<-ctx.Done()

	if err := b.session.Close(); err != nil {
		return fmt.Errorf("error closing Discord session: %w", err)
	}
	b.log.Info("Bot stopped")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if r.User == nil {
		return
	}
	b.log.Info("Connected to Discord", zap.String("user", r.User.Username))
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reply, ok := b.Reply(ctx, m.Author.Username, m.Content)
	if !ok {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		b.log.Error("Failed to send reply", zap.String("channel", m.ChannelID), zap.Error(err))
	}
}

// Reply handles one message from user. ok is false for messages that are
// not commands for this bot.
func (b *Bot) Reply(ctx context.Context, user, content string) (reply string, ok bool) {
	if !strings.HasPrefix(content, b.prefix) {
		return "", false
	}
	command := strings.TrimSpace(strings.TrimPrefix(content, b.prefix))
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", false
	}

	switch strings.ToLower(fields[0]) {
	case "log":
		return b.logMeal(ctx, user, command), true
	case "status":
		return b.status(ctx, user), true
	case "foods":
		return foodList(), true
	default:
		return "", false
	}
}

func (b *Bot) logMeal(ctx context.Context, user, command string) string {
	res, err := b.svc.LogMessage(ctx, user, command)
	var fe *nutrition.FormatError
	switch {
	case errors.As(err, &fe):
		return fmt.Sprintf("Use `%s%s`, for example `%s%s`", b.prefix, fe.Template, b.prefix, fe.Example)
	case err != nil:
		b.log.Error("Failed to log meal", zap.String("user", user), zap.Error(err))
		return "Something went wrong while logging your meal."
	}

	n := res.Meal.Nutrition.Rounded()
	return fmt.Sprintf("Logged %s for %s: %s (%g kcal, %gg protein, %gg carbs, %gg fiber)",
		res.Meal.MealType, user, strings.Join(res.Meal.FoodItems, ", "),
		n.Calories, n.Protein, n.Carbs, n.Fiber)
}

func (b *Bot) status(ctx context.Context, user string) string {
	st, err := b.svc.Status(ctx, user)
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		return fmt.Sprintf("No meals yet for %s. Try `%slog lunch: Dal, Roti`", user, b.prefix)
	case err != nil:
		b.log.Error("Failed to get status", zap.String("user", user), zap.Error(err))
		return "Something went wrong while fetching your status."
	}

	today := st.Today.Rounded()
	return fmt.Sprintf("%s: %d meals today, %g kcal of %g BMR (%d meals logged in total)",
		user, st.MealsToday, today.Calories, st.BMR, st.TotalMeals)
}

func foodList() string {
	foods := nutrition.Catalog()
	names := make([]string, 0, len(foods))
	for name := range foods {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Known foods:")
	for _, name := range names {
		fmt.Fprintf(&sb, "\n%s: %g kcal", name, foods[name].Calories)
	}
	return sb.String()
}
