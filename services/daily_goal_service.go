package services

import (
	"context"

	"macrolog/models"

	"gorm.io/gorm"
)

type Targets struct {
	Calories            float64 `json:"calories"`
	Protein             float64 `json:"protein"`
	Carbs               float64 `json:"carbs"`
	Fats                float64 `json:"fats"`
	Fiber               float64 `json:"fiber"`
	AdjustedMaintenance float64 `json:"adjusted_maintenance"`
}

// CalculateTargets derives the day's goals. ok is false until a weight is known.
func CalculateTargets(s models.UserSettings, stats *models.DailyStats) (Targets, bool) {
	if stats == nil || stats.Weight == nil {
		return Targets{}, false
	}
	var burned float64
	if stats.CaloriesBurned != nil {
		burned = *stats.CaloriesBurned
	}
	goal := stats.WeeklyGoal
	if goal == "" {
		goal = models.DefaultWeeklyGoal
	}

	adjusted := s.BaseTDEE + burned
	calories := adjusted + goal.Offset()
	return Targets{
		Calories:            calories,
		Protein:             *stats.Weight * s.ProteinPerLb,
		Carbs:               calories * s.CarbsPercentage / 100 / 4,
		Fats:                calories * s.FatsPercentage / 100 / 9,
		Fiber:               calories / 1000 * s.FiberPer1000Cal,
		AdjustedMaintenance: adjusted,
	}, true
}

// PerMeal splits daily targets evenly over three meals.
func (t Targets) PerMeal() Targets {
	return Targets{
		Calories:            t.Calories / 3,
		Protein:             t.Protein / 3,
		Carbs:               t.Carbs / 3,
		Fats:                t.Fats / 3,
		Fiber:               t.Fiber / 3,
		AdjustedMaintenance: t.AdjustedMaintenance,
	}
}

type Progress struct {
	Consumed float64 `json:"consumed"`
	Goal     float64 `json:"goal"`
	Percent  float64 `json:"percent"`
}

type DailySummary struct {
	Date          string              `json:"date"`
	Meals         []models.Meal       `json:"meals"`
	Pending       []models.Meal       `json:"pending"`
	Totals        models.Nutrients    `json:"totals"`
	PendingTotals models.Nutrients    `json:"pending_totals"`
	Stats         *models.DailyStats  `json:"stats"`
	Settings      models.UserSettings `json:"settings"`
	Targets       *Targets            `json:"targets"`
	Progress      map[string]Progress `json:"progress,omitempty"`
}

type GoalService struct {
	db       *gorm.DB
	settings *SettingsService
	stats    *DailyStatsService
}

func NewGoalService(db *gorm.DB, settings *SettingsService, stats *DailyStatsService) *GoalService {
	return &GoalService{db: db, settings: settings, stats: stats}
}

// statsForTargets returns the day's row, borrowing the latest earlier weight
// when the day has none recorded.
func (g *GoalService) statsForTargets(ctx context.Context, userID, date string) (*models.DailyStats, error) {
	ds, err := g.stats.Get(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if ds != nil && ds.Weight != nil {
		return ds, nil
	}
	w, err := g.stats.LatestWeight(ctx, userID, date)
	if err != nil || w == nil {
		return ds, err
	}
	merged := models.DailyStats{UserID: userID, Date: date, WeeklyGoal: models.DefaultWeeklyGoal}
	if ds != nil {
		merged = *ds
	}
	merged.Weight = w
	return &merged, nil
}

// TargetsFor returns nil targets while no weight has been recorded.
func (g *GoalService) TargetsFor(ctx context.Context, userID, date string) (*Targets, error) {
	settings, err := g.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	ds, err := g.statsForTargets(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	t, ok := CalculateTargets(settings, ds)
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (g *GoalService) DailySummary(ctx context.Context, userID, date string) (*DailySummary, error) {
	var meals []models.Meal
	if err := g.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("created_at ASC").
		Find(&meals).Error; err != nil {
		return nil, err
	}
	settings, err := g.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	ds, err := g.stats.Get(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	out := &DailySummary{Date: date, Meals: []models.Meal{}, Pending: []models.Meal{}, Stats: ds, Settings: settings}
	for _, m := range meals {
		if m.IsConfirmed {
			out.Meals = append(out.Meals, m)
			out.Totals = out.Totals.Add(m.Nutrients)
		} else {
			out.Pending = append(out.Pending, m)
			out.PendingTotals = out.PendingTotals.Add(m.Nutrients)
		}
	}

	forTargets, err := g.statsForTargets(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if t, ok := CalculateTargets(settings, forTargets); ok {
		out.Targets = &t
		out.Progress = map[string]Progress{
			"calories": {Consumed: round2(out.Totals.Calories), Goal: round2(t.Calories), Percent: pct(out.Totals.Calories, t.Calories)},
			"protein":  {Consumed: round2(out.Totals.Protein), Goal: round2(t.Protein), Percent: pct(out.Totals.Protein, t.Protein)},
			"carbs":    {Consumed: round2(out.Totals.Carbs), Goal: round2(t.Carbs), Percent: pct(out.Totals.Carbs, t.Carbs)},
			"fats":     {Consumed: round2(out.Totals.Fats), Goal: round2(t.Fats), Percent: pct(out.Totals.Fats, t.Fats)},
			"fiber":    {Consumed: round2(out.Totals.Fiber), Goal: round2(t.Fiber), Percent: pct(out.Totals.Fiber, t.Fiber)},
		}
	}
	return out, nil
}
