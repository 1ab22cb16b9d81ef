package nutrition

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/franckalain/nutritiontracker/internal/models"
)

const (
	// MessageTemplate is the shape a text meal command must take.
	MessageTemplate = "log [meal_type]: [food items]"
	// MessageExample is a valid text meal command.
	MessageExample = "log lunch: Jeera Rice, Dal, Cucumber"
)

// ErrInvalidFormat marks text that is not a meal command.
var ErrInvalidFormat = errors.New("invalid message format")

// FormatError reports a rejected meal command along with the expected form.
type FormatError struct {
	Message  string
	Template string
	Example  string
}

func (e *FormatError) Error() string {
	return "invalid message format, use: '" + e.Template + "'"
}

func (e *FormatError) Unwrap() error { return ErrInvalidFormat }

// ParsedMeal is the result of a successfully parsed meal command.
type ParsedMeal struct {
	MealType  models.MealType
	FoodItems []string
}

// ParseMealMessage parses "log <meal>: <item>, <item>, ...". The keyword and
// meal type are matched case-insensitively; item names keep their casing.
// Items are split on commas and trimmed, empty items included.
func ParseMealMessage(msg string) (*ParsedMeal, error) {
	s := strings.TrimSpace(msg)
	fail := func() (*ParsedMeal, error) {
		return nil, &FormatError{Message: msg, Template: MessageTemplate, Example: MessageExample}
	}

	rest, ok := cutPrefixFold(s, "log")
	if !ok {
		return fail()
	}
	trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
	if len(trimmed) == len(rest) {
		return fail()
	}
	rest = trimmed

	var mealType models.MealType
	for _, mt := range models.MealTypes {
		if r, ok := cutPrefixFold(rest, string(mt)+":"); ok {
			mealType, rest = mt, r
			break
		}
	}
	if mealType == "" {
		return fail()
	}

	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
	if rest == "" {
		return fail()
	}

	parts := strings.Split(rest, ",")
	items := make([]string, len(parts))
	for i, p := range parts {
		items[i] = strings.TrimSpace(p)
	}
	return &ParsedMeal{MealType: mealType, FoodItems: items}, nil
}

// cutPrefixFold is strings.CutPrefix with ASCII case folding on the prefix.
func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !utf8.ValidString(s[:len(prefix)]) {
		return s, false
	}
	if !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
