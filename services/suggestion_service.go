package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"macrolog/apperror"
	"macrolog/models"
	"macrolog/utils"
)

const maxSuggestionFoods = 50

type SuggestionRequest struct {
	MealType       models.MealType `json:"mealType"`
	TargetCalories *float64        `json:"targetCalories"`
	TargetProtein  *float64        `json:"targetProtein"`
	TargetCarbs    *float64        `json:"targetCarbs"`
	TargetFats     *float64        `json:"targetFats"`
}

type SuggestionService struct {
	ai      AIClient
	library *LibraryService
	goals   *GoalService
	loc     *time.Location
	log     *slog.Logger
}

func NewSuggestionService(ai AIClient, library *LibraryService, goals *GoalService, loc *time.Location, log *slog.Logger) *SuggestionService {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &SuggestionService{ai: ai, library: library, goals: goals, loc: loc, log: log}
}

// fillTargets defaults missing targets to a third of today's computed goals.
func (s *SuggestionService) fillTargets(ctx context.Context, userID string, req *SuggestionRequest) error {
	if req.TargetCalories != nil && req.TargetProtein != nil && req.TargetCarbs != nil && req.TargetFats != nil {
		return nil
	}
	t, err := s.goals.TargetsFor(ctx, userID, utils.Today(s.loc))
	if err != nil {
		return err
	}
	if t == nil {
		return apperror.ValidationFailed("targetCalories", "targets are required until a weight is recorded")
	}
	per := t.PerMeal()
	fill := func(dst **float64, v float64) {
		if *dst == nil {
			v = utils.Round1(v)
			*dst = &v
		}
	}
	fill(&req.TargetCalories, per.Calories)
	fill(&req.TargetProtein, per.Protein)
	fill(&req.TargetCarbs, per.Carbs)
	fill(&req.TargetFats, per.Fats)
	return nil
}

func suggestionPrompt(req SuggestionRequest, excluded []models.ExcludedFood, foods []models.ConfirmedFood, onHand []models.IngredientOnHand) string {
	names := make([]string, 0, len(excluded))
	for _, e := range excluded {
		names = append(names, e.FoodName)
	}
	excludedList := "none"
	if len(names) > 0 {
		excludedList = strings.Join(names, ", ")
	}

	var sb bytes.Buffer
	sb.WriteString("You are a nutrition assistant that suggests meals from the user's preferences and goals.\n\n")
	fmt.Fprintf(&sb, "Hard rules:\n1. Never suggest meals containing: %s\n2. Prefer foods from the user's library\n3. Use realistic portions\n4. Stay close to the target macros\n\n", excludedList)

	sb.WriteString("User's food library:\n")
	if len(foods) == 0 {
		sb.WriteString("- (no saved foods yet)\n")
	}
	for i, f := range foods {
		if i == maxSuggestionFoods {
			break
		}
		fmt.Fprintf(&sb, "- %s (%s): %gcal, %gg protein, %gg carbs, %gg fat\n", f.FoodName, f.Quantity, f.Calories, f.Protein, f.Carbs, f.Fats)
	}
	if len(onHand) > 0 {
		sb.WriteString("\nIngredients on hand (use where sensible):\n")
		for _, ing := range onHand {
			fmt.Fprintf(&sb, "- %s\n", ing.Name)
		}
	}

	fmt.Fprintf(&sb, "\nTarget for %s:\n- Calories: %g kcal\n- Protein: %gg\n- Carbs: %gg\n- Fats: %gg\n",
		req.MealType, *req.TargetCalories, *req.TargetProtein, *req.TargetCarbs, *req.TargetFats)
	sb.WriteString("\nSuggest 3 different meals. For each give a name, the foods with quantities, total macros and short preparation notes.")
	return sb.String()
}

// Suggest returns the model's free-text meal options.
func (s *SuggestionService) Suggest(ctx context.Context, userID string, req SuggestionRequest) (string, error) {
	if !req.MealType.Valid() {
		return "", apperror.ValidationFailed("mealType", "mealType must be one of Breakfast, Lunch, Dinner, Snack")
	}
	if err := s.fillTargets(ctx, userID, &req); err != nil {
		return "", err
	}

	excluded, err := s.library.ListExcluded(ctx, userID)
	if err != nil {
		return "", err
	}
	foods, err := s.library.ListFoods(ctx, userID)
	if err != nil {
		return "", err
	}
	onHand, err := s.library.ListIngredients(ctx, userID)
	if err != nil {
		return "", err
	}

	avoid := "nothing in particular"
	if len(excluded) > 0 {
		parts := make([]string, 0, len(excluded))
		for _, e := range excluded {
			parts = append(parts, e.FoodName)
		}
		avoid = strings.Join(parts, ", ")
	}
	out, err := s.ai.Complete(ctx,
		suggestionPrompt(req, excluded, foods, onHand),
		fmt.Sprintf("Suggest 3 %s meals that avoid %s", req.MealType, avoid))
	if err != nil {
		s.log.Warn("meal suggestion failed", "user_id", userID, "err", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}
