package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"macrolog/apperror"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoodService_Search(t *testing.T) {
	setupHTTPMock(t)
	var pageSize string
	httpmock.RegisterResponder(http.MethodGet, "=~^"+usdaBase+"/foods/search",
		func(req *http.Request) (*http.Response, error) {
			pageSize = req.URL.Query().Get("pageSize")
			return httpmock.NewStringResponse(http.StatusOK, usdaEggResponse), nil
		})
	svc := NewFoodService(newOFF(), NewUSDAService("k", usdaBase, time.Second), nil)

	got, err := svc.Search(context.Background(), " egg ", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "10", pageSize)

	_, err = svc.Search(context.Background(), "egg", 100)
	require.NoError(t, err)
	assert.Equal(t, "10", pageSize)

	_, err = svc.Search(context.Background(), "egg", 3)
	require.NoError(t, err)
	assert.Equal(t, "3", pageSize)

	_, err = svc.Search(context.Background(), "  ", 5)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	httpmock.RegisterResponder(http.MethodGet, "=~^"+usdaBase+"/foods/search", httpmock.NewStringResponder(http.StatusInternalServerError, "down"))
	_, err = svc.Search(context.Background(), "egg", 3)
	assert.ErrorIs(t, err, apperror.ErrUpstream)
}
