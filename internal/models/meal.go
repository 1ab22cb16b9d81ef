package models

import (
	"strings"
	"time"
)

// MealType is one of the four loggable meals, stored lowercase.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealTypes lists the valid meal types in display order.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// ParseMealType accepts a lowercase meal type.
func ParseMealType(s string) (MealType, bool) {
	for _, mt := range MealTypes {
		if string(mt) == s {
			return mt, true
		}
	}
	return "", false
}

// Display returns the capitalized form used on stored meals ("Lunch").
func (m MealType) Display() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

// DateLayout is the calendar-date form used for per-day grouping.
const DateLayout = "2006-01-02"

// Meal is one logged meal with the nutrition computed when it was logged.
type Meal struct {
	ID        string          `json:"id" bson:"_id"`
	UserID    string          `json:"userId" bson:"user_id"`
	MealType  string          `json:"mealType" bson:"meal_type"`
	FoodItems []string        `json:"foodItems" bson:"food_items"`
	Nutrition NutritionTotals `json:"nutrition" bson:"nutrition"`
	LoggedAt  time.Time       `json:"loggedAt" bson:"logged_at"`
}

// Date returns the calendar date the meal was logged on, in loc.
func (m *Meal) Date(loc *time.Location) string {
	return m.LoggedAt.In(loc).Format(DateLayout)
}
