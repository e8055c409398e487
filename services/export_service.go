package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"

	"macrolog/apperror"
	"macrolog/utils"
)

var exportHeader = []string{
	"Date", "Meal Type", "Food Item", "Quantity",
	"Calories", "Protein (g)", "Carbs (g)", "Fats (g)", "Fiber (g)",
	"Confirmed", "Supplement", "Recipe",
}

// Archiver stores a finished export and returns where it can be fetched.
type Archiver interface {
	Upload(ctx context.Context, userID, from, to string, csv []byte) (string, error)
}

type ExportService struct {
	meals    *MealService
	archiver Archiver
}

func NewExportService(meals *MealService, archiver Archiver) *ExportService {
	return &ExportService{meals: meals, archiver: archiver}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formatNumber(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// CSV renders every meal in [from, to] as one row after the header.
func (s *ExportService) CSV(ctx context.Context, userID, from, to string) ([]byte, error) {
	f, err := utils.ParseDate("from", from)
	if err != nil {
		return nil, err
	}
	t, err := utils.ParseDate("to", to)
	if err != nil {
		return nil, err
	}
	if t.Before(f) {
		return nil, apperror.ValidationFailed("to", "to must not be before from")
	}

	meals, err := s.meals.Range(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, m := range meals {
		if err := w.Write([]string{
			m.Date,
			string(m.MealType),
			m.FoodName,
			m.Quantity,
			formatNumber(m.Calories),
			formatNumber(m.Protein),
			formatNumber(m.Carbs),
			formatNumber(m.Fats),
			formatNumber(m.Fiber),
			yesNo(m.IsConfirmed),
			yesNo(m.IsSupplement),
			yesNo(m.IsRecipe),
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Archive uploads the export and returns its URL.
func (s *ExportService) Archive(ctx context.Context, userID, from, to string) (string, error) {
	if s.archiver == nil {
		return "", apperror.ValidationFailed("archive", "export archiving is not configured")
	}
	data, err := s.CSV(ctx, userID, from, to)
	if err != nil {
		return "", err
	}
	url, err := s.archiver.Upload(ctx, userID, from, to, data)
	if err != nil {
		return "", apperror.Upstream("S3", err)
	}
	return url, nil
}
