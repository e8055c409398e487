package services

import (
	"context"
	"errors"

	"macrolog/apperror"
	"macrolog/models"
	"macrolog/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DailyStatsService struct{ db *gorm.DB }

func NewDailyStatsService(db *gorm.DB) *DailyStatsService { return &DailyStatsService{db: db} }

// DailyStatsInput is a partial update; nil fields keep their stored value.
type DailyStatsInput struct {
	Weight         *float64           `json:"weight"`
	CaloriesBurned *float64           `json:"calories_burned"`
	WeeklyGoal     *models.WeeklyGoal `json:"weekly_goal"`
}

// Get returns the row for (user, date) or nil when the day has none.
func (s *DailyStatsService) Get(ctx context.Context, userID, date string) (*models.DailyStats, error) {
	var ds models.DailyStats
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&ds).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ds, nil
}

func (s *DailyStatsService) Upsert(ctx context.Context, userID, date string, in DailyStatsInput) (*models.DailyStats, error) {
	if _, err := utils.ParseDate("date", date); err != nil {
		return nil, err
	}
	if in.Weight != nil && *in.Weight <= 0 {
		return nil, apperror.ValidationFailed("weight", "weight must be positive")
	}
	if in.CaloriesBurned != nil && *in.CaloriesBurned < 0 {
		return nil, apperror.ValidationFailed("calories_burned", "calories_burned cannot be negative")
	}
	if in.WeeklyGoal != nil && !in.WeeklyGoal.Valid() {
		return nil, apperror.ValidationFailed("weekly_goal", "weekly_goal must be one of gain2, gain1, maintain, lose1, lose2")
	}

	row := models.DailyStats{UserID: userID, Date: date, WeeklyGoal: models.DefaultWeeklyGoal}
	var cols []string
	if in.Weight != nil {
		row.Weight = in.Weight
		cols = append(cols, "weight")
	}
	if in.CaloriesBurned != nil {
		row.CaloriesBurned = in.CaloriesBurned
		cols = append(cols, "calories_burned")
	}
	if in.WeeklyGoal != nil {
		row.WeeklyGoal = *in.WeeklyGoal
		cols = append(cols, "weekly_goal")
	}

	conflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
	}
	if len(cols) == 0 {
		conflict.DoNothing = true
	} else {
		conflict.DoUpdates = clause.AssignmentColumns(append(cols, "updated_at"))
	}
	if err := s.db.WithContext(ctx).Clauses(conflict).Create(&row).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, date)
}

// LatestWeight finds the most recent recorded weight on or before date.
func (s *DailyStatsService) LatestWeight(ctx context.Context, userID, date string) (*float64, error) {
	var ds models.DailyStats
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date <= ? AND weight IS NOT NULL", userID, date).
		Order("date DESC").
		First(&ds).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ds.Weight, nil
}

// History lists stats rows in [from, to] ascending.
func (s *DailyStatsService) History(ctx context.Context, userID, from, to string) ([]models.DailyStats, error) {
	var rows []models.DailyStats
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, from, to).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}
