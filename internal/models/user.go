package models

import "time"

// User is a registered profile. Records are never updated after creation.
type User struct {
	Name         string    `json:"name" bson:"name"`
	Age          float64   `json:"age" bson:"age"`
	Weight       float64   `json:"weight" bson:"weight"` // kg
	Height       float64   `json:"height" bson:"height"` // cm
	Gender       string    `json:"gender" bson:"gender"` // "male" or "female"
	Goal         string    `json:"goal" bson:"goal"`
	BMR          float64   `json:"bmr" bson:"bmr"`
	RegisteredAt time.Time `json:"registered_at" bson:"registered_at"`
}
