package utils

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleCase normalizes a food name: "greek YOGURT" -> "Greek Yogurt".
func TitleCase(s string) string {
	// Casers keep state; build one per call so this stays goroutine safe.
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}

var massQuantity = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*(g|grams?|kg|kilograms?|oz|ounces?|lbs?|pounds?)\s*$`)

// ParseGrams converts a mass quantity ("100g", "4 oz", "1.5 lb") to grams.
// Counted or volume quantities ("2 large", "1 cup") report false.
func ParseGrams(quantity string) (float64, bool) {
	m := massQuantity.FindStringSubmatch(quantity)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	unit := strings.ToLower(m[2])
	switch {
	case strings.HasPrefix(unit, "k"):
		return n * 1000, true
	case unit == "oz" || strings.HasPrefix(unit, "ounce"):
		return n * 28.3495, true
	case strings.HasPrefix(unit, "lb") || strings.HasPrefix(unit, "pound"):
		return n * 453.592, true
	}
	return n, true
}

var leadingNumber = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*`)

// ScaleQuantity multiplies the leading amount of a quantity string:
// ScaleQuantity("4 oz", 1.5) == "6 oz". Quantities without an amount count as 1.
func ScaleQuantity(quantity string, mult float64) string {
	base := 1.0
	rest := strings.TrimSpace(quantity)
	if m := leadingNumber.FindStringSubmatch(quantity); m != nil {
		base, _ = strconv.ParseFloat(m[1], 64)
		rest = strings.TrimSpace(quantity[len(m[0]):])
	}
	amount := strconv.FormatFloat(Round1(base*mult), 'f', -1, 64)
	if rest == "" {
		return amount
	}
	return amount + " " + rest
}
