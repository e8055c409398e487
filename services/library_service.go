package services

import (
	"context"
	"errors"
	"strings"

	"macrolog/apperror"
	"macrolog/models"
	"macrolog/utils"

	"gorm.io/gorm"
)

// LibraryService owns the per-user reference data: confirmed foods, recipes,
// excluded foods and ingredients on hand.
type LibraryService struct{ db *gorm.DB }

func NewLibraryService(db *gorm.DB) *LibraryService { return &LibraryService{db: db} }

// ---------- Confirmed foods ----------

func (s *LibraryService) ListFoods(ctx context.Context, userID string) ([]models.ConfirmedFood, error) {
	var foods []models.ConfirmedFood
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("food_name ASC").
		Find(&foods).Error
	return foods, err
}

type FoodInput struct {
	FoodName string  `json:"food_name"`
	Quantity string  `json:"quantity"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Fiber    float64 `json:"fiber"`
}

func (s *LibraryService) getFood(ctx context.Context, userID, id string) (*models.ConfirmedFood, error) {
	var cf models.ConfirmedFood
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&cf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("food", id)
	}
	if err != nil {
		return nil, err
	}
	return &cf, nil
}

func (s *LibraryService) UpdateFood(ctx context.Context, userID, id string, in FoodInput) (*models.ConfirmedFood, error) {
	if strings.TrimSpace(in.FoodName) == "" {
		return nil, apperror.ValidationFailed("food_name", "food_name is required")
	}
	if strings.TrimSpace(in.Quantity) == "" {
		return nil, apperror.ValidationFailed("quantity", "quantity is required")
	}
	n := models.Nutrients{Calories: in.Calories, Protein: in.Protein, Carbs: in.Carbs, Fats: in.Fats, Fiber: in.Fiber}
	if err := validateNutrients(n); err != nil {
		return nil, err
	}
	cf, err := s.getFood(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	cf.FoodName = utils.TitleCase(in.FoodName)
	cf.Quantity = strings.TrimSpace(in.Quantity)
	cf.Nutrients = n

	var dup int64
	if err := s.db.WithContext(ctx).Model(&models.ConfirmedFood{}).
		Where("user_id = ? AND id <> ? AND LOWER(food_name) = ? AND quantity = ?", userID, id, strings.ToLower(cf.FoodName), cf.Quantity).
		Count(&dup).Error; err != nil {
		return nil, err
	}
	if dup > 0 {
		return nil, apperror.Conflict("food", cf.FoodName+" ("+cf.Quantity+") already exists")
	}
	if err := s.db.WithContext(ctx).Save(cf).Error; err != nil {
		return nil, err
	}
	return cf, nil
}

func (s *LibraryService) DeleteFood(ctx context.Context, userID, id string) error {
	cf, err := s.getFood(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(cf).Error
}

// ---------- Recipes ----------

// CreateRecipe snapshots the chosen meals as ingredients and sums their totals.
func (s *LibraryService) CreateRecipe(ctx context.Context, userID, name string, mealIDs []string) (*models.Recipe, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperror.ValidationFailed("recipe_name", "recipe_name is required")
	}
	ids := uniqueStrings(mealIDs)
	if len(ids) == 0 {
		return nil, apperror.ValidationFailed("meal_ids", "select at least one meal")
	}
	var meals []models.Meal
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Order("created_at ASC").
		Find(&meals).Error; err != nil {
		return nil, err
	}
	if len(meals) != len(ids) {
		return nil, apperror.NotFound("meal", "one or more selected meals")
	}

	r := &models.Recipe{UserID: userID, RecipeName: utils.TitleCase(name)}
	var total models.Nutrients
	for _, m := range meals {
		r.Ingredients = append(r.Ingredients, models.RecipeIngredient{FoodName: m.FoodName, Quantity: m.Quantity, Nutrients: m.Nutrients})
		total = total.Add(m.Nutrients)
	}
	r.TotalCalories = total.Calories
	r.TotalProtein = total.Protein
	r.TotalCarbs = total.Carbs
	r.TotalFats = total.Fats
	r.TotalFiber = total.Fiber

	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

func (s *LibraryService) ListRecipes(ctx context.Context, userID string) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recipe_name ASC").
		Find(&recipes).Error
	return recipes, err
}

func (s *LibraryService) getRecipe(ctx context.Context, userID, id string) (*models.Recipe, error) {
	var r models.Recipe
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("recipe", id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *LibraryService) RenameRecipe(ctx context.Context, userID, id, name string) (*models.Recipe, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperror.ValidationFailed("recipe_name", "recipe_name is required")
	}
	r, err := s.getRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	r.RecipeName = utils.TitleCase(name)
	if err := s.db.WithContext(ctx).Model(r).Update("recipe_name", r.RecipeName).Error; err != nil {
		return nil, err
	}
	return r, nil
}

func (s *LibraryService) DeleteRecipe(ctx context.Context, userID, id string) error {
	r, err := s.getRecipe(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(r).Error
}

// ---------- Excluded foods ----------

func (s *LibraryService) ListExcluded(ctx context.Context, userID string) ([]models.ExcludedFood, error) {
	var out []models.ExcludedFood
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("food_name ASC").Find(&out).Error
	return out, err
}

func (s *LibraryService) AddExcluded(ctx context.Context, userID, name string) (*models.ExcludedFood, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("food_name", "food_name is required")
	}
	var existing models.ExcludedFood
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(food_name) = ?", userID, strings.ToLower(name)).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	ef := &models.ExcludedFood{UserID: userID, FoodName: name}
	if err := s.db.WithContext(ctx).Create(ef).Error; err != nil {
		return nil, err
	}
	return ef, nil
}

func (s *LibraryService) RemoveExcluded(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.ExcludedFood{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("excluded food", id)
	}
	return nil
}

// ---------- Ingredients on hand ----------

func (s *LibraryService) ListIngredients(ctx context.Context, userID string) ([]models.IngredientOnHand, error) {
	var out []models.IngredientOnHand
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&out).Error
	return out, err
}

func (s *LibraryService) AddIngredient(ctx context.Context, userID, name string) (*models.IngredientOnHand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	ing := &models.IngredientOnHand{UserID: userID, Name: name}
	if err := s.db.WithContext(ctx).Create(ing).Error; err != nil {
		return nil, err
	}
	return ing, nil
}

func (s *LibraryService) RemoveIngredient(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.IngredientOnHand{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("ingredient", id)
	}
	return nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
