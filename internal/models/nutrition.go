package models

import "math"

// FoodFact is the per-serving nutrition of one catalog food.
type FoodFact struct {
	Calories float64 `json:"calories" bson:"calories"` // kcal
	Protein  float64 `json:"protein" bson:"protein"`   // grams
	Carbs    float64 `json:"carbs" bson:"carbs"`       // grams
	Fiber    float64 `json:"fiber" bson:"fiber"`       // grams
}

// NutritionTotals accumulates FoodFacts. The zero value is an empty total.
type NutritionTotals struct {
	Calories float64 `json:"calories" bson:"calories"`
	Protein  float64 `json:"protein" bson:"protein"`
	Carbs    float64 `json:"carbs" bson:"carbs"`
	Fiber    float64 `json:"fiber" bson:"fiber"`
}

// AddFact adds a single food's values to the totals.
func (t *NutritionTotals) AddFact(f FoodFact) {
	t.Calories += f.Calories
	t.Protein += f.Protein
	t.Carbs += f.Carbs
	t.Fiber += f.Fiber
}

// Add adds another total, e.g. a stored meal snapshot.
func (t *NutritionTotals) Add(o NutritionTotals) {
	t.Calories += o.Calories
	t.Protein += o.Protein
	t.Carbs += o.Carbs
	t.Fiber += o.Fiber
}

// Rounded returns a copy with every field rounded to 2 decimals.
func (t NutritionTotals) Rounded() NutritionTotals {
	return NutritionTotals{
		Calories: Round2(t.Calories),
		Protein:  Round2(t.Protein),
		Carbs:    Round2(t.Carbs),
		Fiber:    Round2(t.Fiber),
	}
}

// Round2 rounds v to 2 decimal places, halves to even.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
