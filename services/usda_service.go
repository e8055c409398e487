package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"macrolog/models"
	"macrolog/utils"
)

// Provenance labels attached to resolved items.
const (
	SourceLibrary       = "library"
	SourceAI            = "AI"
	SourceUSDA          = "USDA"
	SourceOpenFoodFacts = "OpenFoodFacts"
)

// NutrientMatch is a normalized record from an external nutrient database.
// Per100g marks values expressed per 100 g of food.
type NutrientMatch struct {
	Name    string `json:"name"`
	Source  string `json:"source"`
	Per100g bool   `json:"per_100g"`
	models.Nutrients
}

// NutrientSource looks a food name up in an external database.
// A miss is (nil, nil).
type NutrientSource interface {
	Lookup(ctx context.Context, name string) (*NutrientMatch, error)
}

type USDAService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewUSDAService(apiKey, baseURL string, timeout time.Duration) *USDAService {
	return &USDAService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type usdaNutrient struct {
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}

type usdaFood struct {
	FdcID         int            `json:"fdcId"`
	Description   string         `json:"description"`
	DataType      string         `json:"dataType"`
	FoodNutrients []usdaNutrient `json:"foodNutrients"`
}

type usdaSearchResponse struct {
	TotalHits int        `json:"totalHits"`
	Foods     []usdaFood `json:"foods"`
}

func (s *USDAService) search(ctx context.Context, query string, pageSize int) ([]usdaFood, error) {
	q := url.Values{}
	q.Set("api_key", s.apiKey)
	q.Set("query", query)
	q.Set("pageSize", fmt.Sprintf("%d", pageSize))
	q.Set("dataType", "Survey (FNDDS)")
	u := s.baseURL + "/foods/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create USDA request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call USDA search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read USDA response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("usda search API error %d: %s", resp.StatusCode, string(body))
	}

	var sr usdaSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("failed to parse USDA JSON: %w", err)
	}
	return sr.Foods, nil
}

// nutrients reads the five tracked values off an FNDDS record (per 100 g).
func (f usdaFood) nutrients() models.Nutrients {
	get := func(name string) float64 {
		for _, n := range f.FoodNutrients {
			if !strings.Contains(n.NutrientName, name) {
				continue
			}
			if name == "Energy" && strings.EqualFold(n.UnitName, "kJ") {
				continue
			}
			return n.Value
		}
		return 0
	}
	return models.Nutrients{
		Calories: get("Energy"),
		Protein:  get("Protein"),
		Carbs:    get("Carbohydrate"),
		Fats:     get("Total lipid"),
		Fiber:    get("Fiber"),
	}
}

// Lookup returns the top FNDDS hit for name. Hits without energy are misses.
func (s *USDAService) Lookup(ctx context.Context, name string) (*NutrientMatch, error) {
	foods, err := s.search(ctx, name, 1)
	if err != nil {
		return nil, err
	}
	if len(foods) == 0 {
		return nil, nil
	}
	n := foods[0].nutrients()
	if n.Calories <= 0 {
		return nil, nil
	}
	return &NutrientMatch{
		Name:      utils.TitleCase(foods[0].Description),
		Source:    SourceUSDA,
		Per100g:   true,
		Nutrients: n,
	}, nil
}

type FoodSearchResult struct {
	FdcID    int    `json:"fdc_id"`
	FoodName string `json:"food_name"`
	Quantity string `json:"quantity"`
	models.Nutrients
}

// Search lists up to limit FNDDS foods, nutrients per 100 g.
func (s *USDAService) Search(ctx context.Context, query string, limit int) ([]FoodSearchResult, error) {
	foods, err := s.search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]FoodSearchResult, 0, len(foods))
	for _, f := range foods {
		out = append(out, FoodSearchResult{
			FdcID:     f.FdcID,
			FoodName:  utils.TitleCase(f.Description),
			Quantity:  "100g",
			Nutrients: utils.RoundNutrients(f.nutrients()),
		})
	}
	return out, nil
}
