package models

import (
	"time"

	"gorm.io/datatypes"
)

// ConfirmedFood is a user-verified (name, quantity) → nutrients mapping.
type ConfirmedFood struct {
	ID       string `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID   string `gorm:"type:varchar(64);uniqueIndex:idx_confirmed_food_key;not null" json:"user_id"`
	FoodName string `gorm:"uniqueIndex:idx_confirmed_food_key;not null" json:"food_name"`
	Quantity string `gorm:"uniqueIndex:idx_confirmed_food_key;not null" json:"quantity"`

	Nutrients `gorm:"embedded"`

	CreatedAt time.Time `json:"created_at"`
}

// RecipeIngredient is a denormalized snapshot of a meal row at recipe creation.
type RecipeIngredient struct {
	FoodName string `json:"food_name"`
	Quantity string `json:"quantity"`
	Nutrients
}

type Recipe struct {
	ID          string                                 `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string                                 `gorm:"type:varchar(64);index;not null" json:"user_id"`
	RecipeName  string                                 `gorm:"not null" json:"recipe_name"`
	Ingredients datatypes.JSONSlice[RecipeIngredient] `json:"ingredients"`

	TotalCalories float64 `json:"total_calories"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalFats     float64 `json:"total_fats"`
	TotalFiber    float64 `json:"total_fiber"`

	CreatedAt time.Time `json:"created_at"`
}

func (r *Recipe) Totals() Nutrients {
	return Nutrients{
		Calories: r.TotalCalories,
		Protein:  r.TotalProtein,
		Carbs:    r.TotalCarbs,
		Fats:     r.TotalFats,
		Fiber:    r.TotalFiber,
	}
}

// ExcludedFood must never appear in meal suggestions.
type ExcludedFood struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);index;not null" json:"user_id"`
	FoodName  string    `gorm:"not null" json:"food_name"`
	CreatedAt time.Time `json:"created_at"`
}

// IngredientOnHand is a pantry hint for meal suggestions.
type IngredientOnHand struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);index;not null" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (IngredientOnHand) TableName() string { return "ingredients_on_hand" }
