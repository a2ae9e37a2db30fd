/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式；调用大模型的接口受限流保护
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers, api/middleware
 */

package api

import (
	"net/http"

	"dataquality-service/api/controllers"
	ratelimit "dataquality-service/api/middleware"
	"dataquality-service/service"
	"dataquality-service/service/rate_limiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController(func() bool {
		return service.GlobalOrchestrator != nil
	}, service.GlobalHealth)
	r.Get("/health", healthController.Health)
	r.Get("/health/dependencies", healthController.Dependencies)
	r.Get("/ready", healthController.Ready)

	limiter := ratelimitFor(service.GlobalRateLimiter)

	// 数据质量
	r.Route("/api/data-quality", func(r chi.Router) {
		qualityController := controllers.NewDataQualityController(service.GlobalOrchestrator, service.GlobalConfig)
		r.Get("/metrics", qualityController.Metrics)
		r.Get("/health", qualityController.Health)
		r.Post("/sample-dataset", qualityController.SampleDataset)
		r.Post("/score", qualityController.Score)
		r.Post("/analyze-only", qualityController.AnalyzeOnly)

		// 以下接口会调用大模型
		r.With(limiter("analyze")).Post("/analyze", qualityController.Analyze)
		r.With(limiter("recommendations")).Post("/recommendations", qualityController.Recommendations)
		r.With(limiter("prompt")).Post("/prompt", qualityController.Prompt)
	})

	// 文件数据源
	r.Route("/api/files", func(r chi.Router) {
		fileController := controllers.NewFileSourceController(service.GlobalFileSource, service.GlobalOrchestrator)
		r.Get("/", fileController.List)
		r.With(limiter("analyze")).Post("/{name}/analyze", fileController.Analyze)
	})

	// 定时质量检查
	r.Route("/api/scheduler", func(r chi.Router) {
		schedulerController := controllers.NewSchedulerController(qualityRunner())
		r.Get("/runs", schedulerController.Status)
		r.Post("/run", schedulerController.Run)
	})

	// 数据表数据源，仅在配置了数据库时开放
	if service.GlobalTableSource != nil {
		r.Route("/api/tables", func(r chi.Router) {
			tableController := controllers.NewTableSourceController(service.GlobalTableSource, service.GlobalOrchestrator)
			r.Get("/", tableController.List)
			r.With(limiter("analyze")).Post("/{name}/analyze", tableController.Analyze)
		})
	}
}

// qualityRunner 调度器未启用时返回空接口
func qualityRunner() controllers.QualityRunner {
	if service.GlobalScheduler == nil {
		return nil
	}
	return service.GlobalScheduler
}

// ratelimitFor 生成按接口名限流的中间件构造函数
func ratelimitFor(limiter rate_limiter.Limiter) func(endpoint string) func(next http.Handler) http.Handler {
	return func(endpoint string) func(next http.Handler) http.Handler {
		return ratelimit.NewRateLimitMiddleware(limiter, service.GlobalConfig.Redis, endpoint).Middleware
	}
}
