package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"macrolog/apperror"
	"macrolog/models"
	"macrolog/utils"

	"github.com/patrickmn/go-cache"
)

const offUserAgent = "macrolog/1.0"

type OpenFoodFactsService struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

func NewOpenFoodFactsService(baseURL string, timeout, cacheTTL time.Duration) *OpenFoodFactsService {
	return &OpenFoodFactsService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cache:   cache.New(cacheTTL, 2*cacheTTL),
	}
}

type offProduct struct {
	ProductName         string         `json:"product_name"`
	ServingQuantity     any            `json:"serving_quantity"`
	ServingQuantityUnit string         `json:"serving_quantity_unit"`
	Nutriments          map[string]any `json:"nutriments"`
}

type offProductResponse struct {
	Status  int         `json:"status"`
	Product *offProduct `json:"product"`
}

type offSearchResponse struct {
	Count    int          `json:"count"`
	Products []offProduct `json:"products"`
}

// number reads OFF values that arrive either as JSON numbers or numeric strings.
func number(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func (p offProduct) per100g() models.Nutrients {
	return models.Nutrients{
		Calories: number(p.Nutriments["energy-kcal_100g"]),
		Protein:  number(p.Nutriments["proteins_100g"]),
		Carbs:    number(p.Nutriments["carbohydrates_100g"]),
		Fats:     number(p.Nutriments["fat_100g"]),
		Fiber:    number(p.Nutriments["fiber_100g"]),
	}
}

func (p offProduct) servingLabel() string {
	size := number(p.ServingQuantity)
	if size <= 0 {
		size = 100
	}
	unit := p.ServingQuantityUnit
	if unit == "" {
		unit = "g"
	}
	return strconv.FormatFloat(size, 'f', -1, 64) + unit
}

func (s *OpenFoodFactsService) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create Open Food Facts request: %w", err)
	}
	req.Header.Set("User-Agent", offUserAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call Open Food Facts: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Open Food Facts response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return apperror.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("open food facts API error %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse Open Food Facts JSON: %w", err)
	}
	return nil
}

type BarcodeProduct struct {
	Barcode  string `json:"barcode"`
	FoodName string `json:"food_name"`
	Quantity string `json:"quantity"`
	models.Nutrients
}

// Barcode resolves a product code. Unknown products are ErrNotFound.
func (s *OpenFoodFactsService) Barcode(ctx context.Context, code string) (*BarcodeProduct, error) {
	code = strings.TrimSpace(code)
	if code == "" || strings.IndexFunc(code, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return nil, apperror.ValidationFailed("barcode", "barcode must be numeric")
	}
	key := "barcode:" + code
	if v, ok := s.cache.Get(key); ok {
		p := *v.(*BarcodeProduct)
		return &p, nil
	}

	var pr offProductResponse
	err := s.get(ctx, s.baseURL+"/api/v2/product/"+url.PathEscape(code)+".json", &pr)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Upstream("Open Food Facts", err)
	}
	if err != nil || pr.Status != 1 || pr.Product == nil {
		return nil, apperror.NotFound("product", code)
	}

	name := pr.Product.ProductName
	if strings.TrimSpace(name) == "" {
		name = "Unknown Product"
	}
	out := &BarcodeProduct{
		Barcode:   code,
		FoodName:  utils.TitleCase(name),
		Quantity:  pr.Product.servingLabel(),
		Nutrients: utils.RoundNutrients(pr.Product.per100g()),
	}
	cached := *out
	s.cache.SetDefault(key, &cached)
	return out, nil
}

// Lookup runs a text search and returns the first product with energy data.
func (s *OpenFoodFactsService) Lookup(ctx context.Context, name string) (*NutrientMatch, error) {
	q := url.Values{}
	q.Set("search_terms", name)
	q.Set("search_simple", "1")
	q.Set("action", "process")
	q.Set("json", "1")
	q.Set("page_size", "1")

	var sr offSearchResponse
	if err := s.get(ctx, s.baseURL+"/cgi/search.pl?"+q.Encode(), &sr); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(sr.Products) == 0 {
		return nil, nil
	}
	p := sr.Products[0]
	n := p.per100g()
	if n.Calories <= 0 {
		return nil, nil
	}
	return &NutrientMatch{
		Name:      utils.TitleCase(p.ProductName),
		Source:    SourceOpenFoodFacts,
		Per100g:   true,
		Nutrients: n,
	}, nil
}
