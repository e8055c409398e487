package controllers

import (
	"net/http"

	"macrolog/middlewares"
	"macrolog/models"
	"macrolog/services"

	"github.com/gin-gonic/gin"
)

// FunctionsController hosts the AI-backed endpoints.
type FunctionsController struct {
	Analysis    *services.AnalysisService
	Suggestions *services.SuggestionService
}

func NewFunctionsController(a *services.AnalysisService, s *services.SuggestionService) *FunctionsController {
	return &FunctionsController{Analysis: a, Suggestions: s}
}

// POST /functions/analyze-food {description, userId, mealType}
func (h *FunctionsController) AnalyzeFood(c *gin.Context) {
	var body struct {
		Description string          `json:"description"`
		UserID      string          `json:"userId"`
		MealType    models.MealType `json:"mealType"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !sameUser(c, body.UserID) {
		return
	}
	foods, err := h.Analysis.Analyze(c.Request.Context(), middlewares.UserID(c), body.Description, body.MealType)
	if err != nil {
		respondError(c, err, "analyze food")
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods})
}

// POST /functions/suggest-meals
func (h *FunctionsController) SuggestMeals(c *gin.Context) {
	var body struct {
		UserID string `json:"userId"`
		services.SuggestionRequest
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !sameUser(c, body.UserID) {
		return
	}
	out, err := h.Suggestions.Suggest(c.Request.Context(), middlewares.UserID(c), body.SuggestionRequest)
	if err != nil {
		respondError(c, err, "generate suggestions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": out})
}
