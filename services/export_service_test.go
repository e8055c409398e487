package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"macrolog/apperror"
	"macrolog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArchiver struct {
	data []byte
	key  string
	err  error
}

func (f *fakeArchiver) Upload(_ context.Context, userID, from, to string, data []byte) (string, error) {
	f.data = data
	f.key = userID + "/" + from + "_" + to
	if f.err != nil {
		return "", f.err
	}
	return "https://exports.example.com/" + f.key + ".csv", nil
}

func seedExportMeals(t *testing.T, svc *MealService) {
	t.Helper()
	db := svc.db
	rid := "r1"
	seedMeal(t, db, models.Meal{UserID: "u1", Date: "2025-07-01", MealType: models.Breakfast, FoodName: "Oats, Rolled", Quantity: "1 cup",
		Nutrients: models.Nutrients{Calories: 300, Protein: 10.5, Carbs: 54, Fats: 5, Fiber: 8}, IsConfirmed: true})
	seedMeal(t, db, models.Meal{UserID: "u1", Date: "2025-07-02", MealType: models.Dinner, FoodName: "Chili", Quantity: "1 serving",
		Nutrients: models.Nutrients{Calories: 450}, IsConfirmed: true, IsRecipe: true, RecipeID: &rid})
	seedMeal(t, db, models.Meal{UserID: "u1", Date: "2025-07-05", MealType: models.Snack, FoodName: "Out Of Range", Quantity: "1"})
	seedMeal(t, db, models.Meal{UserID: "u2", Date: "2025-07-01", MealType: models.Snack, FoodName: "Other User", Quantity: "1"})
}

func TestExportService_CSV(t *testing.T) {
	meals := NewMealService(newTestDB(t), nil)
	seedExportMeals(t, meals)
	svc := NewExportService(meals, nil)

	data, err := svc.CSV(context.Background(), "u1", "2025-07-01", "2025-07-03")
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per meal")
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, []string{"2025-07-01", "Breakfast", "Oats, Rolled", "1 cup", "300", "10.5", "54", "5", "8", "Yes", "No", "No"}, rows[1])
	assert.Equal(t, []string{"2025-07-02", "Dinner", "Chili", "1 serving", "450", "0", "0", "0", "0", "Yes", "No", "Yes"}, rows[2])
}

func TestExportService_CSVEmptyAndInvalidRange(t *testing.T) {
	svc := NewExportService(NewMealService(newTestDB(t), nil), nil)

	data, err := svc.CSV(context.Background(), "u1", "2025-07-01", "2025-07-01")
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.CSV(context.Background(), "u1", "2025-07-03", "2025-07-01")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = svc.CSV(context.Background(), "u1", "yesterday", "2025-07-01")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestExportService_Archive(t *testing.T) {
	ctx := context.Background()
	meals := NewMealService(newTestDB(t), nil)
	seedExportMeals(t, meals)

	_, err := NewExportService(meals, nil).Archive(ctx, "u1", "2025-07-01", "2025-07-03")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	arch := &fakeArchiver{}
	url, err := NewExportService(meals, arch).Archive(ctx, "u1", "2025-07-01", "2025-07-03")
	require.NoError(t, err)
	assert.Equal(t, "https://exports.example.com/u1/2025-07-01_2025-07-03.csv", url)
	assert.Contains(t, string(arch.data), "Oats, Rolled")

	arch.err = errors.New("access denied")
	_, err = NewExportService(meals, arch).Archive(ctx, "u1", "2025-07-01", "2025-07-03")
	assert.ErrorIs(t, err, apperror.ErrUpstream)
}
