package services

import (
	"context"
	"errors"

	"macrolog/apperror"
	"macrolog/models"

	"gorm.io/gorm"
)

type SettingsService struct{ db *gorm.DB }

func NewSettingsService(db *gorm.DB) *SettingsService { return &SettingsService{db: db} }

type SettingsInput struct {
	BaseTDEE        float64 `json:"base_tdee"`
	ProteinPerLb    float64 `json:"protein_per_lb"`
	CarbsPercentage float64 `json:"carbs_percentage"`
	FatsPercentage  float64 `json:"fats_percentage"`
	FiberPer1000Cal float64 `json:"fiber_per_1000_cal"`
}

func (in SettingsInput) validate() error {
	switch {
	case in.BaseTDEE < 1000 || in.BaseTDEE > 5000:
		return apperror.ValidationFailed("base_tdee", "base_tdee must be between 1000 and 5000")
	case in.ProteinPerLb <= 0 || in.ProteinPerLb > 2:
		return apperror.ValidationFailed("protein_per_lb", "protein_per_lb must be between 0 and 2")
	case in.CarbsPercentage < 0 || in.CarbsPercentage > 100:
		return apperror.ValidationFailed("carbs_percentage", "carbs_percentage must be between 0 and 100")
	case in.FatsPercentage < 0 || in.FatsPercentage > 100:
		return apperror.ValidationFailed("fats_percentage", "fats_percentage must be between 0 and 100")
	case in.CarbsPercentage+in.FatsPercentage > 100:
		return apperror.ValidationFailed("carbs_percentage", "carbs and fats percentages cannot exceed 100 combined")
	case in.FiberPer1000Cal < 0 || in.FiberPer1000Cal > 50:
		return apperror.ValidationFailed("fiber_per_1000_cal", "fiber_per_1000_cal must be between 0 and 50")
	}
	return nil
}

// Get returns the user's saved coefficients, or the defaults when none exist.
func (s *SettingsService) Get(ctx context.Context, userID string) (models.UserSettings, error) {
	var us models.UserSettings
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&us).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultUserSettings(userID), nil
	}
	return us, err
}

func (s *SettingsService) Upsert(ctx context.Context, userID string, in SettingsInput) (*models.UserSettings, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	us := models.UserSettings{UserID: userID}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		// A map so zero percentages overwrite the stored values.
		Assign(map[string]any{
			"base_tdee":          in.BaseTDEE,
			"protein_per_lb":     in.ProteinPerLb,
			"carbs_percentage":   in.CarbsPercentage,
			"fats_percentage":    in.FatsPercentage,
			"fiber_per_1000_cal": in.FiberPer1000Cal,
		}).
		FirstOrCreate(&us).Error
	if err != nil {
		return nil, err
	}
	return &us, nil
}
