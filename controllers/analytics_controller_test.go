package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfWeek(t *testing.T) {
	loc := time.UTC
	tests := map[string]string{
		"2025-09-01": "2025-09-01", // Monday
		"2025-09-03": "2025-09-01",
		"2025-09-07": "2025-09-01", // Sunday belongs to the week before
		"2025-09-08": "2025-09-08",
	}
	for in, want := range tests {
		d, err := time.ParseInLocation("2006-01-02", in, loc)
		assert.NoError(t, err)
		assert.Equal(t, want, startOfWeek(d.Add(15*time.Hour)).Format("2006-01-02"), in)
	}
}
