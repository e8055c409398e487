package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"macrolog/apperror"
	"macrolog/models"
	"macrolog/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MealService struct {
	db     *gorm.DB
	notify MealNotifier
}

func NewMealService(db *gorm.DB, notify MealNotifier) *MealService {
	if notify == nil {
		notify = nopNotifier{}
	}
	return &MealService{db: db, notify: notify}
}

type MealInput struct {
	Date        string          `json:"date"`
	MealType    models.MealType `json:"meal_type"`
	FoodName    string          `json:"food_name"`
	Quantity    string          `json:"quantity"`
	Calories    float64         `json:"calories"`
	Protein     float64         `json:"protein"`
	Carbs       float64         `json:"carbs"`
	Fats        float64         `json:"fats"`
	Fiber       float64         `json:"fiber"`
	IsConfirmed bool            `json:"is_confirmed"`
}

func (in MealInput) nutrients() models.Nutrients {
	return models.Nutrients{Calories: in.Calories, Protein: in.Protein, Carbs: in.Carbs, Fats: in.Fats, Fiber: in.Fiber}
}

func (in MealInput) validate() error {
	if _, err := utils.ParseDate("date", in.Date); err != nil {
		return err
	}
	if !in.MealType.Valid() {
		return apperror.ValidationFailed("meal_type", "meal_type must be one of Breakfast, Lunch, Dinner, Snack")
	}
	if strings.TrimSpace(in.FoodName) == "" {
		return apperror.ValidationFailed("food_name", "food_name is required")
	}
	if strings.TrimSpace(in.Quantity) == "" {
		return apperror.ValidationFailed("quantity", "quantity is required")
	}
	return validateNutrients(in.nutrients())
}

func validateNutrients(n models.Nutrients) error {
	for _, v := range []float64{n.Calories, n.Protein, n.Carbs, n.Fats, n.Fiber} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return apperror.ValidationFailed("nutrients", "nutrient values must be non-negative numbers")
		}
	}
	return nil
}

// ensureConfirmedFood records (name, quantity) in the library unless an entry
// with the same case-insensitive name and exact quantity already exists.
func ensureConfirmedFood(tx *gorm.DB, m *models.Meal) error {
	var n int64
	if err := tx.Model(&models.ConfirmedFood{}).
		Where("user_id = ? AND LOWER(food_name) = ? AND quantity = ?", m.UserID, strings.ToLower(m.FoodName), m.Quantity).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	cf := models.ConfirmedFood{UserID: m.UserID, FoodName: m.FoodName, Quantity: m.Quantity, Nutrients: m.Nutrients}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cf).Error
}

func (s *MealService) Create(ctx context.Context, userID string, in MealInput) (*models.Meal, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	m := &models.Meal{
		UserID:      userID,
		Date:        in.Date,
		MealType:    in.MealType,
		FoodName:    utils.TitleCase(in.FoodName),
		Quantity:    strings.TrimSpace(in.Quantity),
		Nutrients:   in.nutrients(),
		IsConfirmed: in.IsConfirmed,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if m.IsConfirmed {
			return ensureConfirmedFood(tx, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify.MealsChanged(userID, OpCreated, m.Date)
	return m, nil
}

// LogItems stores analyzed items for a date in one batch. Library matches
// arrive confirmed; everything else stays pending.
func (s *MealService) LogItems(ctx context.Context, userID, date string, items []ResolvedItem) ([]models.Meal, error) {
	if _, err := utils.ParseDate("date", date); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperror.ValidationFailed("foods", "at least one food is required")
	}
	meals := make([]models.Meal, 0, len(items))
	for _, it := range items {
		in := MealInput{
			Date: date, MealType: it.MealType, FoodName: it.FoodName, Quantity: it.Quantity,
			Calories: it.Calories, Protein: it.Protein, Carbs: it.Carbs, Fats: it.Fats, Fiber: it.Fiber,
		}
		if err := in.validate(); err != nil {
			return nil, err
		}
		meals = append(meals, models.Meal{
			UserID:      userID,
			Date:        date,
			MealType:    it.MealType,
			FoodName:    utils.TitleCase(it.FoodName),
			Quantity:    strings.TrimSpace(it.Quantity),
			Nutrients:   in.nutrients(),
			IsConfirmed: it.IsConfirmed,
		})
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&meals).Error; err != nil {
			return err
		}
		for i := range meals {
			if meals[i].IsConfirmed {
				if err := ensureConfirmedFood(tx, &meals[i]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify.MealsChanged(userID, OpCreated, date)
	return meals, nil
}

func (s *MealService) ListByDate(ctx context.Context, userID, date string) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("created_at ASC").
		Find(&meals).Error
	return meals, err
}

func (s *MealService) Get(ctx context.Context, userID, id string) (*models.Meal, error) {
	return s.get(s.db.WithContext(ctx), userID, id)
}

func (s *MealService) get(tx *gorm.DB, userID, id string) (*models.Meal, error) {
	var m models.Meal
	err := tx.Where("id = ? AND user_id = ?", id, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("meal", id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Update edits a meal in place. The confirmation flag is not touched.
func (s *MealService) Update(ctx context.Context, userID, id string, in MealInput) (*models.Meal, error) {
	m, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Date == "" {
		in.Date = m.Date
	}
	if in.MealType == "" {
		in.MealType = m.MealType
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	oldDate := m.Date
	m.Date = in.Date
	m.MealType = in.MealType
	m.FoodName = utils.TitleCase(in.FoodName)
	m.Quantity = strings.TrimSpace(in.Quantity)
	m.Nutrients = in.nutrients()
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return nil, err
	}
	s.notify.MealsChanged(userID, OpUpdated, m.Date)
	if oldDate != m.Date {
		s.notify.MealsChanged(userID, OpUpdated, oldDate)
	}
	return m, nil
}

func (s *MealService) Delete(ctx context.Context, userID, id string) error {
	m, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(m).Error; err != nil {
		return err
	}
	s.notify.MealsChanged(userID, OpDeleted, m.Date)
	return nil
}

// Confirm marks a meal confirmed and adds it to the library. Repeating it is a no-op.
func (s *MealService) Confirm(ctx context.Context, userID, id string) (*models.Meal, error) {
	var out *models.Meal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.get(tx, userID, id)
		if err != nil {
			return err
		}
		if !m.IsConfirmed {
			if err := tx.Model(m).Update("is_confirmed", true).Error; err != nil {
				return err
			}
			m.IsConfirmed = true
		}
		out = m
		return ensureConfirmedFood(tx, m)
	})
	if err != nil {
		return nil, err
	}
	s.notify.MealsChanged(userID, OpConfirmed, out.Date)
	return out, nil
}

// CopyMealType duplicates every meal of one category onto another date,
// keeping confirmation, supplement and recipe markers.
func (s *MealService) CopyMealType(ctx context.Context, userID, fromDate string, mealType models.MealType, toDate string) ([]models.Meal, error) {
	if _, err := utils.ParseDate("from_date", fromDate); err != nil {
		return nil, err
	}
	if _, err := utils.ParseDate("to_date", toDate); err != nil {
		return nil, err
	}
	if !mealType.Valid() {
		return nil, apperror.ValidationFailed("meal_type", "meal_type must be one of Breakfast, Lunch, Dinner, Snack")
	}
	var src []models.Meal
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND meal_type = ?", userID, fromDate, mealType).
		Order("created_at ASC").
		Find(&src).Error; err != nil {
		return nil, err
	}
	if len(src) == 0 {
		return nil, apperror.NotFound("meals", fromDate+"/"+string(mealType))
	}
	copies := make([]models.Meal, len(src))
	for i, m := range src {
		m.ID = ""
		m.Date = toDate
		m.CreatedAt = time.Time{}
		copies[i] = m
	}
	if err := s.db.WithContext(ctx).Create(&copies).Error; err != nil {
		return nil, err
	}
	s.notify.MealsChanged(userID, OpCreated, toDate)
	return copies, nil
}

// ToggleSupplement adds the catalogue supplement for date, or removes it
// when already present. The returned meal is nil after removal.
func (s *MealService) ToggleSupplement(ctx context.Context, userID, date, supplementID string) (*models.Meal, bool, error) {
	sup, ok := models.Supplements[supplementID]
	if !ok {
		return nil, false, apperror.NotFound("supplement", supplementID)
	}
	if _, err := utils.ParseDate("date", date); err != nil {
		return nil, false, err
	}
	var existing models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND is_supplement = ? AND supplement_id = ?", userID, date, true, supplementID).
		First(&existing).Error
	switch {
	case err == nil:
		if err := s.db.WithContext(ctx).Delete(&existing).Error; err != nil {
			return nil, false, err
		}
		s.notify.MealsChanged(userID, OpDeleted, date)
		return nil, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, err
	}

	id := sup.ID
	m := &models.Meal{
		UserID:       userID,
		Date:         date,
		MealType:     sup.MealType,
		FoodName:     sup.Name,
		Quantity:     sup.Quantity,
		Nutrients:    sup.Nutrients,
		IsConfirmed:  true,
		IsSupplement: true,
		SupplementID: &id,
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, false, err
	}
	s.notify.MealsChanged(userID, OpCreated, date)
	return m, true, nil
}

type QuickAddInput struct {
	Date       string          `json:"date"`
	MealType   models.MealType `json:"meal_type"`
	FoodID     string          `json:"food_id"`
	RecipeID   string          `json:"recipe_id"`
	Multiplier float64         `json:"multiplier"`
}

// QuickAdd logs a confirmed library food (optionally scaled) or a recipe as
// one confirmed meal.
func (s *MealService) QuickAdd(ctx context.Context, userID string, in QuickAddInput) (*models.Meal, error) {
	if _, err := utils.ParseDate("date", in.Date); err != nil {
		return nil, err
	}
	if !in.MealType.Valid() {
		return nil, apperror.ValidationFailed("meal_type", "meal_type must be one of Breakfast, Lunch, Dinner, Snack")
	}
	if (in.FoodID == "") == (in.RecipeID == "") {
		return nil, apperror.ValidationFailed("food_id", "exactly one of food_id or recipe_id is required")
	}
	db := s.db.WithContext(ctx)
	m := &models.Meal{UserID: userID, Date: in.Date, MealType: in.MealType, IsConfirmed: true}

	if in.RecipeID != "" {
		var r models.Recipe
		err := db.Where("id = ? AND user_id = ?", in.RecipeID, userID).First(&r).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("recipe", in.RecipeID)
		}
		if err != nil {
			return nil, err
		}
		rid := r.ID
		m.FoodName = r.RecipeName
		m.Quantity = "1 serving"
		m.Nutrients = r.Totals()
		m.IsRecipe = true
		m.RecipeID = &rid
	} else {
		var cf models.ConfirmedFood
		err := db.Where("id = ? AND user_id = ?", in.FoodID, userID).First(&cf).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("food", in.FoodID)
		}
		if err != nil {
			return nil, err
		}
		mult := in.Multiplier
		if mult == 0 {
			mult = 1
		}
		if mult < 0 || math.IsNaN(mult) || math.IsInf(mult, 0) {
			return nil, apperror.ValidationFailed("multiplier", "multiplier must be positive")
		}
		m.FoodName = cf.FoodName
		m.Quantity = cf.Quantity
		m.Nutrients = cf.Nutrients
		if mult != 1 {
			m.Quantity = utils.ScaleQuantity(cf.Quantity, mult)
			m.Nutrients = utils.RoundNutrients(cf.Nutrients.Scale(mult))
		}
	}
	if err := db.Create(m).Error; err != nil {
		return nil, err
	}
	s.notify.MealsChanged(userID, OpCreated, m.Date)
	return m, nil
}

// Range lists meals in [from, to] ordered by date.
func (s *MealService) Range(ctx context.Context, userID, from, to string) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, from, to).
		Order("date ASC, created_at ASC").
		Find(&meals).Error
	return meals, err
}
