/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs service/contract/service.go
 */

package api

import (
	"datacontract-service/api/controllers"
	apimiddleware "datacontract-service/api/middleware"
	"datacontract-service/service"

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
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API Key鉴权
	r.Use(apimiddleware.NewAPIKeyAuthMiddleware().Middleware)

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 数据契约管理
	r.Route("/contracts", func(r chi.Router) {
		contractController := controllers.NewContractController(service.GlobalContractService)

		// 契约套件CRUD
		r.Route("/suites", func(r chi.Router) {
			r.Post("/", contractController.CreateSuite)
			r.Get("/", contractController.ListSuites)
			r.Get("/{id}", contractController.GetSuite)
			r.Delete("/{id}", contractController.DeleteSuite)

			// 套件校验与导出
			r.Post("/{id}/validate", contractController.ValidateSuite)
			r.Get("/{id}/export", contractController.ExportSuite)
			r.Get("/{id}/summary", contractController.GetSuiteSummary)
		})

		// 套件与引擎原生形态之间的转换
		r.Route("/convert", func(r chi.Router) {
			r.Post("/to-native", contractController.ConvertToNative)
			r.Post("/from-native", contractController.ConvertFromNative)
		})

		// 临时套件文本校验
		r.Post("/validate-document", contractController.ValidateDocument)

		// 期望类型模式信息
		r.Get("/expectation-types", contractController.GetExpectationTypes)
	})

	// 校验结果分析
	r.Route("/analysis", func(r chi.Router) {
		analysisController := controllers.NewAnalysisController(service.GlobalContractService)

		r.Route("/runs", func(r chi.Router) {
			r.Post("/", analysisController.RecordRun)
			r.Get("/{id}", analysisController.GetRun)
		})

		r.Post("/analyze", analysisController.AnalyzeResult)
		r.Post("/failures", analysisController.AnalyzeFailures)
	})
}
