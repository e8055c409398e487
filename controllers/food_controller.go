package controllers

import (
	"net/http"
	"strconv"

	"macrolog/services"

	"github.com/gin-gonic/gin"
)

type FoodController struct {
	Foods *services.FoodService
}

func NewFoodController(f *services.FoodService) *FoodController {
	return &FoodController{Foods: f}
}

// GET /food/barcode/:code
func (h *FoodController) Barcode(c *gin.Context) {
	p, err := h.Foods.Barcode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err, "look up barcode")
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /food/search?q=apple&limit=10
func (h *FoodController) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	out, err := h.Foods.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err, "search foods")
		return
	}
	c.JSON(http.StatusOK, out)
}
