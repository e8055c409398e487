package controllers

import (
	"net/http"
	"time"

	"macrolog/middlewares"
	"macrolog/models"
	"macrolog/services"

	"github.com/gin-gonic/gin"
)

type MealController struct {
	Meals *services.MealService
	Loc   *time.Location
}

func NewMealController(meals *services.MealService, loc *time.Location) *MealController {
	return &MealController{Meals: meals, Loc: loc}
}

func (h *MealController) ListMeals(c *gin.Context) {
	date, ok := dateParam(c, "date", h.Loc)
	if !ok {
		return
	}
	meals, err := h.Meals.ListByDate(c.Request.Context(), middlewares.UserID(c), date)
	if err != nil {
		respondError(c, err, "load meals")
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (h *MealController) CreateMeal(c *gin.Context) {
	var in services.MealInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	m, err := h.Meals.Create(c.Request.Context(), middlewares.UserID(c), in)
	if err != nil {
		respondError(c, err, "add meal")
		return
	}
	c.JSON(http.StatusCreated, m)
}

// LogAnalyzed stores the reviewed output of the analyze function.
func (h *MealController) LogAnalyzed(c *gin.Context) {
	var body struct {
		Date  string                  `json:"date"`
		Foods []services.ResolvedItem `json:"foods"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	meals, err := h.Meals.LogItems(c.Request.Context(), middlewares.UserID(c), body.Date, body.Foods)
	if err != nil {
		respondError(c, err, "add meals")
		return
	}
	c.JSON(http.StatusCreated, meals)
}

func (h *MealController) UpdateMeal(c *gin.Context) {
	var in services.MealInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	m, err := h.Meals.Update(c.Request.Context(), middlewares.UserID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err, "update meal")
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MealController) DeleteMeal(c *gin.Context) {
	if err := h.Meals.Delete(c.Request.Context(), middlewares.UserID(c), c.Param("id")); err != nil {
		respondError(c, err, "delete meal")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MealController) ConfirmMeal(c *gin.Context) {
	m, err := h.Meals.Confirm(c.Request.Context(), middlewares.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "confirm meal")
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MealController) CopyMeals(c *gin.Context) {
	var body struct {
		FromDate string          `json:"from_date" binding:"required"`
		MealType models.MealType `json:"meal_type" binding:"required"`
		ToDate   string          `json:"to_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	meals, err := h.Meals.CopyMealType(c.Request.Context(), middlewares.UserID(c), body.FromDate, body.MealType, body.ToDate)
	if err != nil {
		respondError(c, err, "copy meals")
		return
	}
	c.JSON(http.StatusCreated, meals)
}

func (h *MealController) ListSupplements(c *gin.Context) {
	out := make([]models.Supplement, 0, len(models.Supplements))
	for _, id := range []string{"vitamins", "creatine", "collagen", "cmz"} {
		out = append(out, models.Supplements[id])
	}
	c.JSON(http.StatusOK, out)
}

func (h *MealController) ToggleSupplement(c *gin.Context) {
	var body struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	m, added, err := h.Meals.ToggleSupplement(c.Request.Context(), middlewares.UserID(c), body.Date, c.Param("id"))
	if err != nil {
		respondError(c, err, "update supplement")
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "meal": m})
}

func (h *MealController) QuickAdd(c *gin.Context) {
	var in services.QuickAddInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	m, err := h.Meals.QuickAdd(c.Request.Context(), middlewares.UserID(c), in)
	if err != nil {
		respondError(c, err, "add meal")
		return
	}
	c.JSON(http.StatusCreated, m)
}
