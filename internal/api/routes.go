package api

import (
	"alcyxob/fitness-tracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer needs.
type Services struct {
	Auth         service.AuthService
	Exercises    service.ExerciseService
	Plans        service.PlanService
	Materializer service.MaterializerService
	Completions  service.CompletionService
	Stats        service.StatsService
	Exports      service.ExportService
}

func SetupRoutes(router *gin.Engine, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	exerciseHandler := NewExerciseHandler(svc.Exercises)
	planHandler := NewPlanHandler(svc.Plans, svc.Materializer)
	completionHandler := NewCompletionHandler(svc.Completions, svc.Stats, svc.Exports)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(svc.Auth))
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, ok := requireUser(c)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex()})
		})
		protected.DELETE("/me/data", completionHandler.EraseMyData)

		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListCatalog)
			exerciseGroup.GET("/:exerciseId", exerciseHandler.GetExercise)
		}

		planGroup := protected.Group("/plans")
		{
			planGroup.POST("", planHandler.ImportPlan)
			planGroup.GET("", planHandler.ListPlans)
			planGroup.GET("/:planId", planHandler.GetPlan)
			planGroup.POST("/:planId/materialize", planHandler.Materialize)
			planGroup.GET("/:planId/workout", planHandler.GetWorkout)
			planGroup.POST("/:planId/completions", completionHandler.RecordCompletion)
		}

		completionGroup := protected.Group("/completions")
		{
			completionGroup.GET("", completionHandler.GetHistory)
			completionGroup.POST("/export", completionHandler.ExportHistory)
		}

		protected.GET("/stats", completionHandler.GetStats)
	}
}
