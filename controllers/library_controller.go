package controllers

import (
	"net/http"

	"macrolog/middlewares"
	"macrolog/services"

	"github.com/gin-gonic/gin"
)

type LibraryController struct {
	Library *services.LibraryService
}

func NewLibraryController(l *services.LibraryService) *LibraryController {
	return &LibraryController{Library: l}
}

func (h *LibraryController) ListFoods(c *gin.Context) {
	foods, err := h.Library.ListFoods(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondError(c, err, "load foods")
		return
	}
	c.JSON(http.StatusOK, foods)
}

func (h *LibraryController) UpdateFood(c *gin.Context) {
	var in services.FoodInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	cf, err := h.Library.UpdateFood(c.Request.Context(), middlewares.UserID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err, "update food")
		return
	}
	c.JSON(http.StatusOK, cf)
}

func (h *LibraryController) DeleteFood(c *gin.Context) {
	if err := h.Library.DeleteFood(c.Request.Context(), middlewares.UserID(c), c.Param("id")); err != nil {
		respondError(c, err, "delete food")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryController) ListRecipes(c *gin.Context) {
	recipes, err := h.Library.ListRecipes(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondError(c, err, "load recipes")
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (h *LibraryController) CreateRecipe(c *gin.Context) {
	var body struct {
		RecipeName string   `json:"recipe_name"`
		MealIDs    []string `json:"meal_ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	r, err := h.Library.CreateRecipe(c.Request.Context(), middlewares.UserID(c), body.RecipeName, body.MealIDs)
	if err != nil {
		respondError(c, err, "create recipe")
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *LibraryController) RenameRecipe(c *gin.Context) {
	var body struct {
		RecipeName string `json:"recipe_name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	r, err := h.Library.RenameRecipe(c.Request.Context(), middlewares.UserID(c), c.Param("id"), body.RecipeName)
	if err != nil {
		respondError(c, err, "update recipe")
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *LibraryController) DeleteRecipe(c *gin.Context) {
	if err := h.Library.DeleteRecipe(c.Request.Context(), middlewares.UserID(c), c.Param("id")); err != nil {
		respondError(c, err, "delete recipe")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryController) ListExcluded(c *gin.Context) {
	out, err := h.Library.ListExcluded(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondError(c, err, "load excluded foods")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *LibraryController) AddExcluded(c *gin.Context) {
	var body struct {
		FoodName string `json:"food_name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	ef, err := h.Library.AddExcluded(c.Request.Context(), middlewares.UserID(c), body.FoodName)
	if err != nil {
		respondError(c, err, "add excluded food")
		return
	}
	c.JSON(http.StatusCreated, ef)
}

func (h *LibraryController) RemoveExcluded(c *gin.Context) {
	if err := h.Library.RemoveExcluded(c.Request.Context(), middlewares.UserID(c), c.Param("id")); err != nil {
		respondError(c, err, "remove excluded food")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryController) ListIngredients(c *gin.Context) {
	out, err := h.Library.ListIngredients(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondError(c, err, "load ingredients")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *LibraryController) AddIngredient(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	ing, err := h.Library.AddIngredient(c.Request.Context(), middlewares.UserID(c), body.Name)
	if err != nil {
		respondError(c, err, "add ingredient")
		return
	}
	c.JSON(http.StatusCreated, ing)
}

func (h *LibraryController) RemoveIngredient(c *gin.Context) {
	if err := h.Library.RemoveIngredient(c.Request.Context(), middlewares.UserID(c), c.Param("id")); err != nil {
		respondError(c, err, "remove ingredient")
		return
	}
	c.Status(http.StatusNoContent)
}
