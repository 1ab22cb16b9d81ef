// Package nutrition holds the food catalog and the pure rules of the tracker:
// nutrition sums, BMR, registration validation and the text meal grammar.
package nutrition

import "github.com/franckalain/nutritiontracker/internal/models"

var catalog = map[string]models.FoodFact{
	"Jeera Rice":    {Calories: 250, Protein: 5, Carbs: 45, Fiber: 2},
	"Dal":           {Calories: 180, Protein: 12, Carbs: 20, Fiber: 5},
	"Cucumber":      {Calories: 16, Protein: 1, Carbs: 4, Fiber: 1},
	"Roti":          {Calories: 120, Protein: 3, Carbs: 25, Fiber: 3},
	"Chicken Curry": {Calories: 300, Protein: 25, Carbs: 8, Fiber: 1},
	"Paneer":        {Calories: 265, Protein: 18, Carbs: 6, Fiber: 0},
	"Salad":         {Calories: 25, Protein: 2, Carbs: 5, Fiber: 3},
	"Rice":          {Calories: 205, Protein: 4, Carbs: 45, Fiber: 1},
}

// Lookup returns the facts for a food. Names match exactly; callers trim
// or case-fold before calling if they need to.
func Lookup(name string) (models.FoodFact, bool) {
	f, ok := catalog[name]
	return f, ok
}

// Catalog returns a copy of the full food table.
func Catalog() map[string]models.FoodFact {
	out := make(map[string]models.FoodFact, len(catalog))
	for name, f := range catalog {
		out[name] = f
	}
	return out
}
