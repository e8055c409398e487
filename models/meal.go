package models

import "time"

// MealType is the fixed meal category of a logged food.
type MealType string

const (
	Breakfast MealType = "Breakfast"
	Lunch     MealType = "Lunch"
	Dinner    MealType = "Dinner"
	Snack     MealType = "Snack"
)

var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

func (t MealType) Valid() bool {
	switch t {
	case Breakfast, Lunch, Dinner, Snack:
		return true
	}
	return false
}

// Nutrients is the five-scalar record shared by meals, library entries and lookups.
type Nutrients struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Fiber    float64 `json:"fiber"`
}

func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fats:     n.Fats + o.Fats,
		Fiber:    n.Fiber + o.Fiber,
	}
}

func (n Nutrients) Scale(f float64) Nutrients {
	return Nutrients{
		Calories: n.Calories * f,
		Protein:  n.Protein * f,
		Carbs:    n.Carbs * f,
		Fats:     n.Fats * f,
		Fiber:    n.Fiber * f,
	}
}

// Meal is one logged food occurrence. Unconfirmed rows are pending review.
type Meal struct {
	ID       string   `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID   string   `gorm:"type:varchar(64);index:idx_meals_user_date;not null" json:"user_id"`
	Date     string   `gorm:"type:varchar(10);index:idx_meals_user_date;not null" json:"date"` // YYYY-MM-DD
	MealType MealType `gorm:"type:varchar(16);not null" json:"meal_type"`
	FoodName string   `gorm:"not null" json:"food_name"`
	Quantity string   `gorm:"not null" json:"quantity"` // free-form, e.g. "4 oz"

	Nutrients `gorm:"embedded"`

	IsConfirmed  bool      `gorm:"not null;default:false" json:"is_confirmed"`
	IsSupplement bool      `gorm:"not null;default:false" json:"is_supplement"`
	SupplementID *string   `gorm:"type:varchar(32)" json:"supplement_id,omitempty"`
	IsRecipe     bool      `gorm:"not null;default:false" json:"is_recipe"`
	RecipeID     *string   `gorm:"type:varchar(36)" json:"recipe_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
