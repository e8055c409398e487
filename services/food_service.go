package services

import (
	"context"
	"log/slog"
	"strings"

	"macrolog/apperror"
)

// FoodService backs the manual lookup endpoints: barcode and text search.
type FoodService struct {
	off  *OpenFoodFactsService
	usda *USDAService
	log  *slog.Logger
}

func NewFoodService(off *OpenFoodFactsService, usda *USDAService, log *slog.Logger) *FoodService {
	if log == nil {
		log = slog.Default()
	}
	return &FoodService{off: off, usda: usda, log: log}
}

func (s *FoodService) Barcode(ctx context.Context, code string) (*BarcodeProduct, error) {
	p, err := s.off.Barcode(ctx, code)
	if err != nil && apperror.HTTPStatus(err) >= 500 {
		s.log.Warn("barcode lookup failed", "barcode", code, "err", err)
	}
	return p, err
}

func (s *FoodService) Search(ctx context.Context, query string, limit int) ([]FoodSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.ValidationFailed("q", "q is required")
	}
	if limit <= 0 || limit > 25 {
		limit = 10
	}
	res, err := s.usda.Search(ctx, query, limit)
	if err != nil {
		s.log.Warn("usda search failed", "query", query, "err", err)
		return nil, apperror.Upstream("USDA", err)
	}
	return res, nil
}
