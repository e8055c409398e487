package models

// Supplement is a catalogue entry that can be toggled on for a day.
type Supplement struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Quantity string   `json:"quantity"`
	MealType MealType `json:"meal_type"`
	Nutrients
}

var Supplements = map[string]Supplement{
	"vitamins": {ID: "vitamins", Name: "Vitamins", Quantity: "1 serving", MealType: Breakfast},
	"creatine": {ID: "creatine", Name: "Creatine", Quantity: "5 g", MealType: Breakfast},
	"collagen": {ID: "collagen", Name: "Collagen", Quantity: "1 scoop", MealType: Breakfast,
		Nutrients: Nutrients{Calories: 40, Protein: 10}},
	"cmz": {ID: "cmz", Name: "CMZ", Quantity: "1 serving", MealType: Dinner},
}
