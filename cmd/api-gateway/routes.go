package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/exam-seat-api/internal/app"
	"github.com/noah-isme/exam-seat-api/internal/handler"
	internalmiddleware "github.com/noah-isme/exam-seat-api/internal/middleware"
	"github.com/noah-isme/exam-seat-api/pkg/config"
	"github.com/noah-isme/exam-seat-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-seat-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-seat-api/pkg/middleware/requestid"
)

func newRouter(a *app.App) *gin.Engine {
	cfg := a.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(a.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(a.Metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(a.Metrics, map[string]handler.Pinger{
		"postgres": a.DB,
		"redis":    handler.PingFunc(a.PingCache),
	})
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	allocations := handler.NewAllocationHandler(a.Allocations)
	exams := handler.NewExamScheduleHandler(a.Exams)
	halls := handler.NewHallHandler(a.Halls)

	api := r.Group(cfg.APIPrefix)

	alloc := api.Group("/allocations")
	alloc.POST("/generate", allocations.Generate)
	alloc.POST("/regenerate", allocations.Regenerate)
	alloc.POST("/regenerate/async", allocations.RegenerateAsync)
	alloc.GET("", allocations.List)
	alloc.GET("/dates", allocations.Dates)
	alloc.GET("/capacity", allocations.Capacity)
	alloc.GET("/export", allocations.Export)
	alloc.DELETE("", allocations.Clear)

	api.POST("/exams", exams.CreateExam)
	api.GET("/exams/:id", exams.GetExam)
	api.DELETE("/exams/:id", exams.DeleteExam)
	api.GET("/exams/:id/entries", exams.ListEntries)
	api.POST("/exams/:id/entries", exams.AddEntry)
	api.DELETE("/exams/:id/entries", exams.ClearEntries)
	api.DELETE("/exam-entries/:id", exams.DeleteEntry)

	api.GET("/halls", halls.List)
	api.POST("/halls", halls.Create)
	api.GET("/halls/:id", halls.Get)
	api.DELETE("/halls/:id", halls.Delete)

	return r
}
