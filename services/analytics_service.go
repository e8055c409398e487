package services

import (
	"context"
	"math"
	"sort"

	"macrolog/apperror"
	"macrolog/models"
	"macrolog/utils"

	"gorm.io/gorm"
)

type AnalyticsService struct {
	db    *gorm.DB
	goals *GoalService
}

func NewAnalyticsService(db *gorm.DB, goals *GoalService) *AnalyticsService {
	return &AnalyticsService{db: db, goals: goals}
}

// ---------- Summary ----------

type FoodCount struct {
	FoodName string `json:"food_name"`
	Count    int    `json:"count"`
}

type MealTypeCount struct {
	MealType models.MealType `json:"meal_type"`
	Count    int             `json:"count"`
}

type StatsSummary struct {
	Period string `json:"period"`
	Range  struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"range"`

	DaysLogged       int              `json:"days_logged"`
	Averages         models.Nutrients `json:"averages"`
	Streak           int              `json:"streak"`
	TopFoods         []FoodCount      `json:"top_foods"`
	MealDistribution []MealTypeCount  `json:"meal_distribution"`
	WeightChange     *float64         `json:"weight_change"`
}

func periodDays(period string) (int, error) {
	switch period {
	case "", "week":
		return 7, nil
	case "month":
		return 30, nil
	}
	return 0, apperror.ValidationFailed("period", "period must be week or month")
}

// Summary aggregates confirmed meals from today-N through today. Averages are
// per distinct logged day, not per calendar day.
func (s *AnalyticsService) Summary(ctx context.Context, userID, period, today string) (*StatsSummary, error) {
	days, err := periodDays(period)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = "week"
	}
	from := utils.AddDays(today, -days)

	var meals []models.Meal
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_confirmed = ? AND date BETWEEN ? AND ?", userID, true, from, today).
		Order("date ASC, created_at ASC").
		Find(&meals).Error; err != nil {
		return nil, err
	}

	out := &StatsSummary{Period: period, TopFoods: []FoodCount{}, MealDistribution: []MealTypeCount{}}
	out.Range.From = from
	out.Range.To = today

	dates := map[string]struct{}{}
	foods := map[string]int{}
	byType := map[models.MealType]int{}
	var total models.Nutrients
	for _, m := range meals {
		dates[m.Date] = struct{}{}
		foods[m.FoodName]++
		byType[m.MealType]++
		total = total.Add(m.Nutrients)
	}
	out.DaysLogged = len(dates)
	if out.DaysLogged > 0 {
		avg := total.Scale(1 / float64(out.DaysLogged))
		out.Averages = models.Nutrients{
			Calories: math.Round(avg.Calories),
			Protein:  math.Round(avg.Protein),
			Carbs:    math.Round(avg.Carbs),
			Fats:     math.Round(avg.Fats),
			Fiber:    math.Round(avg.Fiber),
		}
	}

	for name, n := range foods {
		out.TopFoods = append(out.TopFoods, FoodCount{FoodName: name, Count: n})
	}
	sort.Slice(out.TopFoods, func(i, j int) bool {
		if out.TopFoods[i].Count != out.TopFoods[j].Count {
			return out.TopFoods[i].Count > out.TopFoods[j].Count
		}
		return out.TopFoods[i].FoodName < out.TopFoods[j].FoodName
	})
	if len(out.TopFoods) > 5 {
		out.TopFoods = out.TopFoods[:5]
	}
	for _, mt := range models.MealTypes {
		if n := byType[mt]; n > 0 {
			out.MealDistribution = append(out.MealDistribution, MealTypeCount{MealType: mt, Count: n})
		}
	}

	if out.Streak, err = s.streak(ctx, userID, today); err != nil {
		return nil, err
	}
	if out.WeightChange, err = s.weightChange(ctx, userID, from, today); err != nil {
		return nil, err
	}
	return out, nil
}

// streak counts consecutive logged days ending today; zero when today is empty.
func (s *AnalyticsService) streak(ctx context.Context, userID, today string) (int, error) {
	var dates []string
	if err := s.db.WithContext(ctx).
		Model(&models.Meal{}).
		Where("user_id = ? AND is_confirmed = ? AND date <= ?", userID, true, today).
		Distinct("date").
		Order("date DESC").
		Pluck("date", &dates).Error; err != nil {
		return 0, err
	}
	want := today
	n := 0
	for _, d := range dates {
		if d != want {
			break
		}
		n++
		want = utils.AddDays(want, -1)
	}
	return n, nil
}

func (s *AnalyticsService) weightChange(ctx context.Context, userID, from, to string) (*float64, error) {
	var rows []models.DailyStats
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ? AND weight IS NOT NULL", userID, from, to).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}
	d := round2(*rows[len(rows)-1].Weight - *rows[0].Weight)
	return &d, nil
}

// ---------- Weekly Overview ----------

type WeeklyOverviewResponse struct {
	WeekStart string `json:"week_start"`
	Mode      string `json:"mode"` // chart|detailed
	Days      any    `json:"days"`
}

type DayChart struct {
	Date        string             `json:"date"`
	Percentages map[string]float64 `json:"percentages"`
}
type Metric struct {
	Actual  float64 `json:"actual"`
	Target  float64 `json:"target"`
	Percent float64 `json:"percent"`
}
type DayDetailed struct {
	Date    string            `json:"date"`
	Metrics map[string]Metric `json:"metrics"`
}

func (s *AnalyticsService) WeeklyOverview(ctx context.Context, userID, weekStart, mode string) (*WeeklyOverviewResponse, error) {
	if _, err := utils.ParseDate("week_start", weekStart); err != nil {
		return nil, err
	}
	if mode == "" {
		mode = "detailed"
	}
	if mode != "chart" && mode != "detailed" {
		return nil, apperror.ValidationFailed("mode", "mode must be chart or detailed")
	}
	to := utils.AddDays(weekStart, 6)

	var meals []models.Meal
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_confirmed = ? AND date BETWEEN ? AND ?", userID, true, weekStart, to).
		Find(&meals).Error; err != nil {
		return nil, err
	}
	idx := map[string]models.Nutrients{}
	for _, m := range meals {
		idx[m.Date] = idx[m.Date].Add(m.Nutrients)
	}

	out := &WeeklyOverviewResponse{WeekStart: weekStart, Mode: mode}
	var charts []DayChart
	var detailed []DayDetailed
	for i := 0; i < 7; i++ {
		key := utils.AddDays(weekStart, i)
		dp := idx[key]
		var goal Targets
		t, err := s.goals.TargetsFor(ctx, userID, key)
		if err != nil {
			return nil, err
		}
		if t != nil {
			goal = *t
		}

		if mode == "chart" {
			charts = append(charts, DayChart{
				Date: key,
				Percentages: map[string]float64{
					"calories": pct(dp.Calories, goal.Calories),
					"protein":  pct(dp.Protein, goal.Protein),
					"carbs":    pct(dp.Carbs, goal.Carbs),
					"fats":     pct(dp.Fats, goal.Fats),
					"fiber":    pct(dp.Fiber, goal.Fiber),
				},
			})
			continue
		}
		detailed = append(detailed, DayDetailed{
			Date: key,
			Metrics: map[string]Metric{
				"calories":  {Actual: round2(dp.Calories), Target: round2(goal.Calories), Percent: pct(dp.Calories, goal.Calories)},
				"protein_g": {Actual: round2(dp.Protein), Target: round2(goal.Protein), Percent: pct(dp.Protein, goal.Protein)},
				"carbs_g":   {Actual: round2(dp.Carbs), Target: round2(goal.Carbs), Percent: pct(dp.Carbs, goal.Carbs)},
				"fats_g":    {Actual: round2(dp.Fats), Target: round2(goal.Fats), Percent: pct(dp.Fats, goal.Fats)},
				"fiber_g":   {Actual: round2(dp.Fiber), Target: round2(goal.Fiber), Percent: pct(dp.Fiber, goal.Fiber)},
			},
		})
	}
	if mode == "chart" {
		out.Days = charts
	} else {
		out.Days = detailed
	}
	return out, nil
}

// ---------- internals ----------

func pct(actual, goal float64) float64 {
	if goal <= 0 {
		if actual <= 0 {
			return 0
		}
		return 100
	}
	return round2((actual / goal) * 100.0)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
