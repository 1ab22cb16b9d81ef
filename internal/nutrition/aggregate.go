package nutrition

import "github.com/franckalain/nutritiontracker/internal/models"

// Aggregate sums the catalog facts of items. Names missing from the catalog
// contribute nothing.
func Aggregate(items []string) models.NutritionTotals {
	var total models.NutritionTotals
	for _, item := range items {
		if f, ok := Lookup(item); ok {
			total.AddFact(f)
		}
	}
	return total
}

// Sum adds up stored meal snapshots.
func Sum(meals []*models.Meal) models.NutritionTotals {
	var total models.NutritionTotals
	for _, m := range meals {
		total.Add(m.Nutrition)
	}
	return total
}
