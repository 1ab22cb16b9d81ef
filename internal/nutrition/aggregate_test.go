package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/franckalain/nutritiontracker/internal/models"
)

func TestAggregateEmpty(t *testing.T) {
	assert.Equal(t, models.NutritionTotals{}, Aggregate(nil))
	assert.Equal(t, models.NutritionTotals{}, Aggregate([]string{}))
}

func TestAggregateUnknownItemsContributeNothing(t *testing.T) {
	assert.Equal(t, models.NutritionTotals{}, Aggregate([]string{"Pizza", "dal", " Dal", ""}))
}

func TestAggregateLunch(t *testing.T) {
	got := Aggregate([]string{"Jeera Rice", "Dal", "Cucumber"})
	assert.Equal(t, models.NutritionTotals{Calories: 446, Protein: 18, Carbs: 69, Fiber: 8}, got)
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	items := []string{"Roti", "Paneer", "Unknown", "Roti", "Salad"}
	want := Aggregate(items)

	perms := [][]string{
		{"Salad", "Roti", "Roti", "Unknown", "Paneer"},
		{"Unknown", "Paneer", "Salad", "Roti", "Roti"},
		{"Roti", "Salad", "Paneer", "Roti", "Unknown"},
	}
	for _, p := range perms {
		assert.Equal(t, want, Aggregate(p), "%v", p)
	}
	assert.Equal(t, 2*120+265+25.0, want.Calories)
}

func TestAggregateCountsDuplicates(t *testing.T) {
	got := Aggregate([]string{"Rice", "Rice"})
	assert.Equal(t, models.NutritionTotals{Calories: 410, Protein: 8, Carbs: 90, Fiber: 2}, got)
}

func TestSum(t *testing.T) {
	meals := []*models.Meal{
		{Nutrition: models.NutritionTotals{Calories: 100.5, Protein: 1}},
		{Nutrition: models.NutritionTotals{Calories: 50, Carbs: 3, Fiber: 2}},
	}
	assert.Equal(t, models.NutritionTotals{Calories: 150.5, Protein: 1, Carbs: 3, Fiber: 2}, Sum(meals))
	assert.Equal(t, models.NutritionTotals{}, Sum(nil))
}

func TestCatalog(t *testing.T) {
	c := Catalog()
	assert.Len(t, c, 8)
	assert.Equal(t, models.FoodFact{Calories: 180, Protein: 12, Carbs: 20, Fiber: 5}, c["Dal"])

	c["Dal"] = models.FoodFact{}
	f, ok := Lookup("Dal")
	assert.True(t, ok)
	assert.Equal(t, 180.0, f.Calories)

	_, ok = Lookup("Dal ")
	assert.False(t, ok)
}
