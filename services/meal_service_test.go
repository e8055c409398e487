package services

import (
	"context"
	"testing"

	"macrolog/apperror"
	"macrolog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMealService(t *testing.T) (*MealService, *recordingNotifier, *gorm.DB) {
	db := newTestDB(t)
	rec := &recordingNotifier{}
	return NewMealService(db, rec), rec, db
}

func countFoods(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.ConfirmedFood{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestMealService_CreateValidation(t *testing.T) {
	svc, rec, _ := newMealService(t)
	valid := MealInput{Date: "2025-05-01", MealType: models.Lunch, FoodName: "rice", Quantity: "1 cup", Calories: 205, Protein: 4.3, Carbs: 45}

	tests := []struct {
		name  string
		mut   func(*MealInput)
		field string
	}{
		{"bad date", func(in *MealInput) { in.Date = "2025-13-01" }, "date"},
		{"bad meal type", func(in *MealInput) { in.MealType = "Brunch" }, "meal_type"},
		{"blank name", func(in *MealInput) { in.FoodName = "  " }, "food_name"},
		{"blank quantity", func(in *MealInput) { in.Quantity = "" }, "quantity"},
		{"negative calories", func(in *MealInput) { in.Calories = -5 }, "nutrients"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mut(&in)
			_, err := svc.Create(context.Background(), "u1", in)
			var ae *apperror.AppError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.field, ae.Field)
		})
	}
	assert.Empty(t, rec.all())
}

func TestMealService_CreatePendingThenConfirm(t *testing.T) {
	ctx := context.Background()
	svc, rec, db := newMealService(t)

	m, err := svc.Create(ctx, "u1", MealInput{Date: "2025-05-01", MealType: models.Lunch, FoodName: "brown rice", Quantity: " 1 cup ", Calories: 216, Protein: 5, Carbs: 45, Fats: 1.8, Fiber: 3.5})
	require.NoError(t, err)
	assert.Equal(t, "Brown Rice", m.FoodName)
	assert.Equal(t, "1 cup", m.Quantity)
	assert.False(t, m.IsConfirmed)
	assert.EqualValues(t, 0, countFoods(t, db, "u1"))

	for i := 0; i < 3; i++ {
		got, err := svc.Confirm(ctx, "u1", m.ID)
		require.NoError(t, err)
		assert.True(t, got.IsConfirmed)
	}
	assert.EqualValues(t, 1, countFoods(t, db, "u1"), "confirming again must not duplicate the library entry")

	var cf models.ConfirmedFood
	require.NoError(t, db.Where("user_id = ?", "u1").First(&cf).Error)
	assert.Equal(t, "Brown Rice", cf.FoodName)
	assert.Equal(t, 216.0, cf.Calories)

	events := rec.all()
	require.Len(t, events, 4)
	assert.Equal(t, changeRecord{"u1", OpCreated, "2025-05-01"}, events[0])
	assert.Equal(t, OpConfirmed, events[3].Op)
}

func TestMealService_ConfirmMatchesLibraryCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	svc, _, db := newMealService(t)
	require.NoError(t, db.Create(&models.ConfirmedFood{UserID: "u1", FoodName: "Banana", Quantity: "1 medium", Nutrients: models.Nutrients{Calories: 105}}).Error)

	m := seedMeal(t, db, models.Meal{UserID: "u1", Date: "2025-05-01", MealType: models.Snack, FoodName: "BANANA", Quantity: "1 medium", Nutrients: models.Nutrients{Calories: 110}})
	_, err := svc.Confirm(ctx, "u1", m.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, countFoods(t, db, "u1"))

	other := seedMeal(t, db, models.Meal{UserID: "u1", Date: "2025-05-01", MealType: models.Snack, FoodName: "Banana", Quantity: "2 medium", Nutrients: models.Nutrients{Calories: 210}})
	_, err = svc.Confirm(ctx, "u1", other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, countFoods(t, db, "u1"), "a different quantity is a different library entry")
}

func TestMealService_OwnershipAndNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _, db := newMealService(t)
	m := seedMeal(t, db, models.Meal{UserID: "u1", Date: "2025-05-01", MealType: models.Snack, FoodName: "Apple", Quantity: "1 medium"})

	_, err := svc.Confirm(ctx, "u2", m.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "u2", m.ID), apperror.ErrNotFound)
	_, err = svc.Get(ctx, "u1", "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "u1", m.ID))
	_, err = svc.Get(ctx, "u1", m.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestMealService_UpdateKeepsConfirmationAndNotifiesBothDates(t *testing.T) {
	ctx := context.Background()
	svc, rec, db := newMealService(t)
	m := seedMeal(t, db, models.Meal{UserID: "u1", Date: "2025-05-01", MealType: models.Dinner, FoodName: "Steak", Quantity: "8 oz", IsConfirmed: true,
		Nutrients: models.Nutrients{Calories: 600, Protein: 50, Fats: 44}})

	got, err := svc.Update(ctx, "u1", m.ID, MealInput{Date: "2025-05-02", FoodName: "ribeye steak", Quantity: "6 oz", Calories: 450, Protein: 38, Fats: 33})
	require.NoError(t, err)
	assert.True(t, got.IsConfirmed)
	assert.Equal(t, models.Dinner, got.MealType)
	assert.Equal(t, "Ribeye Steak", got.FoodName)

	events := rec.all()
	require.Len(t, events, 2)
	assert.Equal(t, "2025-05-02", events[0].Date)
	assert.Equal(t, "2025-05-01", events[1].Date)
}

func TestMealService_LogItems(t *testing.T) {
	ctx := context.Background()
	svc, rec, db := newMealService(t)

	items := []ResolvedItem{
		{FoodName: "Scrambled Eggs", Quantity: "2 large", Calories: 182, Protein: 12.2, Carbs: 2, Fats: 13.4, MealType: models.Breakfast, IsConfirmed: true, DataSource: SourceLibrary},
		{FoodName: "Toast", Quantity: "1 slice", Calories: 80, Protein: 3, Carbs: 14, Fats: 1, Fiber: 1, MealType: models.Breakfast, DataSource: SourceAI},
	}
	meals, err := svc.LogItems(ctx, "u1", "2025-05-01", items)
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.True(t, meals[0].IsConfirmed)
	assert.False(t, meals[1].IsConfirmed)
	assert.EqualValues(t, 1, countFoods(t, db, "u1"))
	assert.Len(t, rec.all(), 1)

	_, err = svc.LogItems(ctx, "u1", "2025-05-01", nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestMealService_CopyMealType(t *testing.T) {
	ctx := context.Background()
	svc, _, db := newMealService(t)
	sid := "creatine"
	src := seedMeal(t, db, models.Meal{UserID: "u1", Date: "2025-05-01", MealType: models.Breakfast, FoodName: "Creatine", Quantity: "5 g",
		IsConfirmed: true, IsSupplement: true, SupplementID: &sid})
	seedMeal(t, db, models.Meal{UserID: "u1", Date: "2025-05-01", MealType: models.Breakfast, FoodName: "Oats", Quantity: "1 cup",
		Nutrients: models.Nutrients{Calories: 300, Protein: 10, Carbs: 54, Fats: 5}})
	seedMeal(t, db, models.Meal{UserID: "u1", Date: "2025-05-01", MealType: models.Lunch, FoodName: "Salad", Quantity: "1 bowl"})

	copies, err := svc.CopyMealType(ctx, "u1", "2025-05-01", models.Breakfast, "2025-05-03")
	require.NoError(t, err)
	require.Len(t, copies, 2)
	for _, c := range copies {
		assert.NotEqual(t, src.ID, c.ID)
		assert.Equal(t, "2025-05-03", c.Date)
	}

	dst, err := svc.ListByDate(ctx, "u1", "2025-05-03")
	require.NoError(t, err)
	require.Len(t, dst, 2)
	flags := map[string]bool{}
	for _, m := range dst {
		flags[m.FoodName] = m.IsConfirmed
		if m.FoodName == "Creatine" {
			assert.True(t, m.IsSupplement)
			require.NotNil(t, m.SupplementID)
			assert.Equal(t, "creatine", *m.SupplementID)
		}
	}
	assert.Equal(t, map[string]bool{"Creatine": true, "Oats": false}, flags)

	_, err = svc.CopyMealType(ctx, "u1", "2025-05-01", models.Dinner, "2025-05-03")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestMealService_ToggleSupplement(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newMealService(t)

	m, added, err := svc.ToggleSupplement(ctx, "u1", "2025-05-01", "collagen")
	require.NoError(t, err)
	require.True(t, added)
	assert.Equal(t, "Collagen", m.FoodName)
	assert.Equal(t, 40.0, m.Calories)
	assert.Equal(t, 10.0, m.Protein)
	assert.True(t, m.IsConfirmed)
	assert.True(t, m.IsSupplement)

	m, added, err = svc.ToggleSupplement(ctx, "u1", "2025-05-01", "collagen")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Nil(t, m)

	meals, err := svc.ListByDate(ctx, "u1", "2025-05-01")
	require.NoError(t, err)
	assert.Empty(t, meals)

	_, _, err = svc.ToggleSupplement(ctx, "u1", "2025-05-01", "fish-oil")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestMealService_QuickAdd(t *testing.T) {
	ctx := context.Background()
	svc, _, db := newMealService(t)
	food := models.ConfirmedFood{UserID: "u1", FoodName: "Chicken Breast", Quantity: "4 oz", Nutrients: models.Nutrients{Calories: 187, Protein: 35.2, Fats: 4}}
	require.NoError(t, db.Create(&food).Error)
	recipe := models.Recipe{UserID: "u1", RecipeName: "Protein Shake", TotalCalories: 320, TotalProtein: 40, TotalCarbs: 20, TotalFats: 8, TotalFiber: 2}
	require.NoError(t, db.Create(&recipe).Error)

	t.Run("recipe", func(t *testing.T) {
		m, err := svc.QuickAdd(ctx, "u1", QuickAddInput{Date: "2025-05-01", MealType: models.Snack, RecipeID: recipe.ID})
		require.NoError(t, err)
		assert.Equal(t, "Protein Shake", m.FoodName)
		assert.Equal(t, "1 serving", m.Quantity)
		assert.True(t, m.IsRecipe)
		assert.True(t, m.IsConfirmed)
		assert.Equal(t, 320.0, m.Calories)
	})

	t.Run("scaled food", func(t *testing.T) {
		m, err := svc.QuickAdd(ctx, "u1", QuickAddInput{Date: "2025-05-01", MealType: models.Dinner, FoodID: food.ID, Multiplier: 1.5})
		require.NoError(t, err)
		assert.Equal(t, "6 oz", m.Quantity)
		assert.Equal(t, 281.0, m.Calories)
		assert.Equal(t, 52.8, m.Protein)
		assert.Equal(t, 6.0, m.Fats)
	})

	t.Run("unscaled food", func(t *testing.T) {
		m, err := svc.QuickAdd(ctx, "u1", QuickAddInput{Date: "2025-05-01", MealType: models.Lunch, FoodID: food.ID})
		require.NoError(t, err)
		assert.Equal(t, "4 oz", m.Quantity)
		assert.Equal(t, 187.0, m.Calories)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := svc.QuickAdd(ctx, "u1", QuickAddInput{Date: "2025-05-01", MealType: models.Lunch})
		assert.ErrorIs(t, err, apperror.ErrValidation)
		_, err = svc.QuickAdd(ctx, "u1", QuickAddInput{Date: "2025-05-01", MealType: models.Lunch, FoodID: food.ID, RecipeID: recipe.ID})
		assert.ErrorIs(t, err, apperror.ErrValidation)
		_, err = svc.QuickAdd(ctx, "u2", QuickAddInput{Date: "2025-05-01", MealType: models.Lunch, FoodID: food.ID})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		_, err = svc.QuickAdd(ctx, "u1", QuickAddInput{Date: "2025-05-01", MealType: models.Lunch, FoodID: food.ID, Multiplier: -2})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}
