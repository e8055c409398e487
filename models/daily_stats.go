package models

import "time"

// WeeklyGoal is a signed calorie-offset tier applied to adjusted maintenance.
type WeeklyGoal string

const (
	Gain2    WeeklyGoal = "gain2"
	Gain1    WeeklyGoal = "gain1"
	Maintain WeeklyGoal = "maintain"
	Lose1    WeeklyGoal = "lose1"
	Lose2    WeeklyGoal = "lose2"
)

const DefaultWeeklyGoal = Lose1

// Offset returns the daily calorie adjustment for the tier, 0 if unknown.
func (g WeeklyGoal) Offset() float64 {
	switch g {
	case Gain2:
		return 1000
	case Gain1:
		return 500
	case Lose1:
		return -500
	case Lose2:
		return -1000
	}
	return 0
}

func (g WeeklyGoal) Valid() bool {
	switch g {
	case Gain2, Gain1, Maintain, Lose1, Lose2:
		return true
	}
	return false
}

// DailyStats is at most one row per (user, date).
type DailyStats struct {
	ID             string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         string     `gorm:"type:varchar(64);uniqueIndex:idx_daily_stats_user_date;not null" json:"user_id"`
	Date           string     `gorm:"type:varchar(10);uniqueIndex:idx_daily_stats_user_date;not null" json:"date"`
	Weight         *float64   `json:"weight"`          // lbs
	CaloriesBurned *float64   `json:"calories_burned"` // exercise kcal
	WeeklyGoal     WeeklyGoal `gorm:"type:varchar(16);default:lose1" json:"weekly_goal"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (DailyStats) TableName() string { return "daily_stats" }
