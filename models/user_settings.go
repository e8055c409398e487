package models

import "time"

// UserSettings holds the per-user goal coefficients.
type UserSettings struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID          string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"user_id"`
	BaseTDEE        float64   `gorm:"column:base_tdee;not null" json:"base_tdee"`
	ProteinPerLb    float64   `gorm:"not null" json:"protein_per_lb"`
	CarbsPercentage float64   `gorm:"not null" json:"carbs_percentage"`
	FatsPercentage  float64   `gorm:"not null" json:"fats_percentage"`
	FiberPer1000Cal float64   `gorm:"column:fiber_per_1000_cal;not null" json:"fiber_per_1000_cal"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DefaultUserSettings returns the coefficients used when a user has saved none.
func DefaultUserSettings(userID string) UserSettings {
	return UserSettings{
		UserID:          userID,
		BaseTDEE:        2026,
		ProteinPerLb:    0.8,
		CarbsPercentage: 50,
		FatsPercentage:  30,
		FiberPer1000Cal: 14,
	}
}

func (UserSettings) TableName() string { return "user_settings" }
