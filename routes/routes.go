package routes

import (
	"log/slog"
	"net/http"

	"macrolog/controllers"
	"macrolog/middlewares"
	"macrolog/services"

	"github.com/gin-gonic/gin"
)

// Controllers bundles every handler set the router mounts.
type Controllers struct {
	Meals     *controllers.MealController
	Library   *controllers.LibraryController
	Functions *controllers.FunctionsController
	Food      *controllers.FoodController
	Daily     *controllers.DailyController
	Settings  *controllers.SettingsController
	Analytics *controllers.AnalyticsController
	Export    *controllers.ExportController
	Realtime  *controllers.RealtimeController
	Dev       *controllers.DevController // nil unless DEV_TOKENS
}

func SetupRouter(h Controllers, sessions *services.SessionManager, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if h.Dev != nil {
		dev := r.Group("/dev")
		dev.POST("/token", h.Dev.IssueToken)
		dev.POST("/realtime/:userID/ping", h.Dev.PingRealtime)
	}

	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware(sessions))

	fn := api.Group("/functions")
	{
		fn.POST("/analyze-food", h.Functions.AnalyzeFood)
		fn.POST("/suggest-meals", h.Functions.SuggestMeals)
	}

	meals := api.Group("/meals")
	{
		meals.GET("", h.Meals.ListMeals)
		meals.POST("", h.Meals.CreateMeal)
		meals.POST("/batch", h.Meals.LogAnalyzed)
		meals.POST("/copy", h.Meals.CopyMeals)
		meals.POST("/quick-add", h.Meals.QuickAdd)
		meals.GET("/supplements", h.Meals.ListSupplements)
		meals.POST("/supplements/:id/toggle", h.Meals.ToggleSupplement)
		meals.PUT("/:id", h.Meals.UpdateMeal)
		meals.DELETE("/:id", h.Meals.DeleteMeal)
		meals.POST("/:id/confirm", h.Meals.ConfirmMeal)
	}

	lib := api.Group("/library")
	{
		lib.GET("/foods", h.Library.ListFoods)
		lib.PUT("/foods/:id", h.Library.UpdateFood)
		lib.DELETE("/foods/:id", h.Library.DeleteFood)

		lib.GET("/recipes", h.Library.ListRecipes)
		lib.POST("/recipes", h.Library.CreateRecipe)
		lib.PUT("/recipes/:id", h.Library.RenameRecipe)
		lib.DELETE("/recipes/:id", h.Library.DeleteRecipe)

		lib.GET("/excluded", h.Library.ListExcluded)
		lib.POST("/excluded", h.Library.AddExcluded)
		lib.DELETE("/excluded/:id", h.Library.RemoveExcluded)

		lib.GET("/ingredients", h.Library.ListIngredients)
		lib.POST("/ingredients", h.Library.AddIngredient)
		lib.DELETE("/ingredients/:id", h.Library.RemoveIngredient)
	}

	food := api.Group("/food")
	{
		food.GET("/barcode/:code", h.Food.Barcode)
		food.GET("/search", h.Food.Search)
	}

	api.GET("/daily", h.Daily.GetDaily)
	api.GET("/targets", h.Daily.GetTargets)
	api.GET("/daily-stats", h.Daily.ListDailyStats)
	api.GET("/daily-stats/:date", h.Daily.GetDailyStats)
	api.PUT("/daily-stats/:date", h.Daily.UpsertDailyStats)

	api.GET("/settings", h.Settings.GetSettings)
	api.PUT("/settings", h.Settings.UpdateSettings)

	api.GET("/stats", h.Analytics.GetStats)
	api.GET("/stats/weekly", h.Analytics.GetWeeklyOverview)

	api.GET("/export", h.Export.ExportCSV)
	api.POST("/export/archive", h.Export.ArchiveCSV)

	api.GET("/realtime/meals", h.Realtime.MealsWS)

	return r
}
