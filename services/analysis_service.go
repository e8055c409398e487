package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"macrolog/apperror"
	"macrolog/models"
	"macrolog/utils"

	"golang.org/x/sync/errgroup"
)

const (
	maxPromptFoods     = 200
	maxParallelLookups = 4
)

// genericFoodKeywords routes whole foods to USDA; anything else (brands,
// packaged products) goes to Open Food Facts.
var genericFoodKeywords = map[string]struct{}{
	"apple": {}, "apples": {}, "avocado": {}, "bacon": {}, "bagel": {}, "banana": {}, "bananas": {},
	"beans": {}, "beef": {}, "berries": {}, "blueberries": {}, "bread": {}, "broccoli": {},
	"butter": {}, "carrot": {}, "carrots": {}, "cheese": {}, "chicken": {}, "coffee": {},
	"corn": {}, "cucumber": {}, "egg": {}, "eggs": {}, "fish": {}, "grapes": {}, "ham": {},
	"honey": {}, "lettuce": {}, "milk": {}, "nuts": {}, "almonds": {}, "oatmeal": {}, "oats": {},
	"onion": {}, "orange": {}, "pasta": {}, "peanut": {}, "pear": {}, "peas": {}, "pork": {},
	"potato": {}, "potatoes": {}, "rice": {}, "salad": {}, "salmon": {}, "shrimp": {},
	"spinach": {}, "steak": {}, "strawberries": {}, "tea": {}, "toast": {}, "tofu": {},
	"tomato": {}, "tuna": {}, "turkey": {}, "yogurt": {},
}

func isGenericFood(name string) bool {
	for _, w := range strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		if _, ok := genericFoodKeywords[w]; ok {
			return true
		}
	}
	return false
}

// ResolvedItem is one reconciled food ready for review or logging.
type ResolvedItem struct {
	FoodName    string          `json:"foodName"`
	Quantity    string          `json:"quantity"`
	Calories    float64         `json:"calories"`
	Protein     float64         `json:"protein"`
	Carbs       float64         `json:"carbs"`
	Fats        float64         `json:"fats"`
	Fiber       float64         `json:"fiber"`
	MealType    models.MealType `json:"mealType"`
	IsConfirmed bool            `json:"isConfirmed"`
	DataSource  string          `json:"dataSource"`
	NeedsReview bool            `json:"needsReview"`
}

func (r *ResolvedItem) setNutrients(n models.Nutrients) {
	n = utils.RoundNutrients(n)
	r.Calories, r.Protein, r.Carbs, r.Fats, r.Fiber = n.Calories, n.Protein, n.Carbs, n.Fats, n.Fiber
}

// aiFood is a single entry of the model reply before validation.
type aiFood struct {
	FoodName string   `json:"foodName"`
	Quantity string   `json:"quantity"`
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fats     *float64 `json:"fats"`
	Fiber    *float64 `json:"fiber"`
	MealType string   `json:"mealType"`
}

// EstimatedFood is a validated model estimate.
type EstimatedFood struct {
	FoodName string
	Quantity string
	MealType models.MealType
	models.Nutrients
}

var errMalformedReply = errors.New("malformed AI reply")

func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ParseEstimates turns the raw model reply into validated estimates. Any
// structural or value problem fails the whole reply.
func ParseEstimates(raw string) ([]EstimatedFood, error) {
	content := stripCodeFences(raw)
	var foods []aiFood
	if strings.HasPrefix(content, "[") {
		if err := json.Unmarshal([]byte(content), &foods); err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformedReply, err)
		}
	} else {
		var wrapped struct {
			Foods *[]aiFood `json:"foods"`
		}
		if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformedReply, err)
		}
		if wrapped.Foods == nil {
			return nil, fmt.Errorf("%w: missing foods", errMalformedReply)
		}
		foods = *wrapped.Foods
	}
	if len(foods) == 0 {
		return nil, fmt.Errorf("%w: no foods", errMalformedReply)
	}

	out := make([]EstimatedFood, 0, len(foods))
	for i, f := range foods {
		name := strings.TrimSpace(f.FoodName)
		qty := strings.TrimSpace(f.Quantity)
		if name == "" || qty == "" {
			return nil, fmt.Errorf("%w: item %d missing name or quantity", errMalformedReply, i)
		}
		mt := models.MealType(strings.TrimSpace(f.MealType))
		if mt != "" && !mt.Valid() {
			return nil, fmt.Errorf("%w: item %d has meal type %q", errMalformedReply, i, f.MealType)
		}
		var n models.Nutrients
		for _, field := range []struct {
			name string
			src  *float64
			dst  *float64
			opt  bool
		}{
			{"calories", f.Calories, &n.Calories, false},
			{"protein", f.Protein, &n.Protein, false},
			{"carbs", f.Carbs, &n.Carbs, false},
			{"fats", f.Fats, &n.Fats, false},
			{"fiber", f.Fiber, &n.Fiber, true},
		} {
			if field.src == nil {
				if field.opt {
					continue
				}
				return nil, fmt.Errorf("%w: item %d missing %s", errMalformedReply, i, field.name)
			}
			v := *field.src
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: item %d has invalid %s", errMalformedReply, i, field.name)
			}
			*field.dst = v
		}
		out = append(out, EstimatedFood{FoodName: name, Quantity: qty, MealType: mt, Nutrients: n})
	}
	return out, nil
}

type AnalysisOptions struct {
	LookupTimeout    time.Duration
	AverageEstimates bool
}

// AnalysisService turns a free-text meal description into resolved items.
type AnalysisService struct {
	ai      AIClient
	library *LibraryService
	usda    NutrientSource
	off     NutrientSource
	opts    AnalysisOptions
	log     *slog.Logger
}

func NewAnalysisService(ai AIClient, library *LibraryService, usda, off NutrientSource, opts AnalysisOptions, log *slog.Logger) *AnalysisService {
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = 2 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &AnalysisService{ai: ai, library: library, usda: usda, off: off, opts: opts, log: log}
}

func analysisPrompt(foods []models.ConfirmedFood) string {
	var sb strings.Builder
	sb.WriteString("You are a nutrition analysis assistant. Split the user's meal description into individual foods and estimate the nutrition of each one.\n")
	if len(foods) > 0 {
		sb.WriteString("\nThe user has confirmed these foods. When a food and quantity match, reuse these exact values:\n")
		for i, f := range foods {
			if i == maxPromptFoods {
				break
			}
			fmt.Fprintf(&sb, "%q (%s): %gcal, %gg protein, %gg carbs, %gg fats, %gg fiber\n",
				f.FoodName, f.Quantity, f.Calories, f.Protein, f.Carbs, f.Fats, f.Fiber)
		}
	}
	sb.WriteString(`
Reply with JSON only, no prose and no markdown:
{"foods":[{"foodName":"Banana","quantity":"1 medium","calories":105,"protein":1.3,"carbs":27,"fats":0.4,"fiber":3.1,"mealType":"Snack"}]}

Rules:
- foodName in Title Case, one entry per food.
- quantity uses short units: g, oz, lb, cup, tbsp, tsp, slice, piece, small, medium, large (e.g. "4 oz", "1 cup", "100g").
- mealType is one of Breakfast, Lunch, Dinner, Snack.
- Numbers are per the stated quantity, rounded to one decimal place.
`)
	return sb.String()
}

// Analyze calls the model once for the whole description and reconciles each
// item against the library and external databases.
func (s *AnalysisService) Analyze(ctx context.Context, userID, description string, hint models.MealType) ([]ResolvedItem, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperror.ValidationFailed("description", "description is required")
	}
	if hint != "" && !hint.Valid() {
		return nil, apperror.ValidationFailed("mealType", "mealType must be one of Breakfast, Lunch, Dinner, Snack")
	}

	library, err := s.library.ListFoods(ctx, userID)
	if err != nil {
		return nil, err
	}

	raw, err := s.ai.Complete(ctx, analysisPrompt(library), description)
	if err != nil {
		return nil, err
	}
	estimates, err := ParseEstimates(raw)
	if err != nil {
		s.log.Warn("ai reply rejected", "user_id", userID, "err", err)
		return nil, apperror.Upstream("AI analysis", err)
	}

	results := make([]ResolvedItem, len(estimates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLookups)
	for i, est := range estimates {
		g.Go(func() error {
			results[i] = s.resolve(gctx, library, est, hint)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func matchLibrary(foods []models.ConfirmedFood, name, quantity string) *models.ConfirmedFood {
	for i := range foods {
		if strings.EqualFold(foods[i].FoodName, name) && foods[i].Quantity == quantity {
			return &foods[i]
		}
	}
	return nil
}

func (s *AnalysisService) resolve(ctx context.Context, library []models.ConfirmedFood, est EstimatedFood, hint models.MealType) ResolvedItem {
	item := ResolvedItem{
		FoodName: utils.TitleCase(est.FoodName),
		Quantity: est.Quantity,
		MealType: est.MealType,
	}
	if hint != "" {
		item.MealType = hint
	}
	if item.MealType == "" {
		item.MealType = models.Snack
	}

	if cf := matchLibrary(library, est.FoodName, est.Quantity); cf != nil {
		item.setNutrients(cf.Nutrients)
		item.IsConfirmed = true
		item.DataSource = SourceLibrary
		return item
	}

	aiValid := utils.IsPlausible(est.Nutrients)
	ext := s.lookupExternal(ctx, est)
	// Per-100 g values for a counted quantity ("1 slice") are not comparable
	// with a per-serving estimate, so they only stand in for an invalid one.
	if ext != nil && aiValid && ext.Per100g && !hasGrams(est.Quantity) {
		ext = nil
	}

	switch {
	case ext != nil && !aiValid:
		item.setNutrients(ext.Nutrients)
		item.DataSource = ext.Source
	case ext != nil && s.opts.AverageEstimates:
		item.setNutrients(est.Nutrients.Add(ext.Nutrients).Scale(0.5))
		item.DataSource = SourceAI + "+" + ext.Source
	case ext != nil:
		item.setNutrients(ext.Nutrients)
		item.DataSource = ext.Source
	default:
		item.setNutrients(est.Nutrients)
		item.DataSource = SourceAI
		item.NeedsReview = !aiValid
	}
	return item
}

// lookupExternal returns a plausible match scaled to the item's quantity, or nil.
func (s *AnalysisService) lookupExternal(ctx context.Context, est EstimatedFood) *NutrientMatch {
	src, label := s.off, SourceOpenFoodFacts
	if isGenericFood(est.FoodName) {
		src, label = s.usda, SourceUSDA
	}
	if src == nil {
		return nil
	}

	lctx, cancel := context.WithTimeout(ctx, s.opts.LookupTimeout)
	defer cancel()
	m, err := src.Lookup(lctx, est.FoodName)
	if err != nil {
		s.log.Warn("nutrient lookup failed", "source", label, "food", est.FoodName, "err", err)
		return nil
	}
	if m == nil {
		return nil
	}
	if m.Per100g {
		if grams, ok := utils.ParseGrams(est.Quantity); ok {
			m.Nutrients = m.Nutrients.Scale(grams / 100)
		}
	}
	if res := utils.CheckPlausibility(m.Nutrients); !res.Valid {
		s.log.Info("discarding implausible lookup", "source", label, "food", est.FoodName, "reasons", res.Reasons)
		return nil
	}
	return m
}

func hasGrams(quantity string) bool {
	_, ok := utils.ParseGrams(quantity)
	return ok
}
