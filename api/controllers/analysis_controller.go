/*
 * @module api/controllers/analysis_controller
 * @description 校验结果分析控制器，接收引擎原始校验结果，生成结构化分析并支持失败明细查询
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 原始结果以引擎返回的JSON对象形态上送，分析结果落库并写入缓存
 * @dependencies datacontract-service/service/contract, github.com/go-chi/chi/v5
 * @refs service/expectation/analyzer.go
 */

package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"datacontract-service/service/contract"
	"datacontract-service/service/expectation"
)

// AnalysisController 校验结果分析控制器
type AnalysisController struct {
	contractService *contract.Service
}

// NewAnalysisController 创建校验结果分析控制器实例
func NewAnalysisController(contractService *contract.Service) *AnalysisController {
	return &AnalysisController{contractService: contractService}
}

// RecordRunRequest 记录校验运行请求
type RecordRunRequest struct {
	SuiteID   string                 `json:"suite_id"`
	RawResult map[string]interface{} `json:"raw_result"`
}

// RecordRun 记录一次校验运行
// @Summary 记录校验运行
// @Description 接收引擎原始校验结果，生成分析报告并落库，严重失败时触发质量告警
// @Tags 校验分析
// @Accept json
// @Produce json
// @Param request body RecordRunRequest true "校验运行信息"
// @Success 200 {object} APIResponse{data=expectation.ValidationAnalysis}
// @Failure 400 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /analysis/runs [post]
func (c *AnalysisController) RecordRun(w http.ResponseWriter, r *http.Request) {
	var req RecordRunRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	if req.SuiteID == "" {
		render.JSON(w, r, BadRequestResponse("套件ID不能为空", nil))
		return
	}
	if req.RawResult == nil {
		render.JSON(w, r, BadRequestResponse("原始校验结果不能为空", nil))
		return
	}

	run, analysis, err := c.contractService.RecordValidationRun(r.Context(), req.SuiteID, req.RawResult)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("校验运行记录失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse("校验运行记录成功", map[string]interface{}{
		"run":      run,
		"analysis": analysis,
	}))
}

// GetRun 获取校验运行分析
// @Summary 获取校验运行分析
// @Description 根据运行ID获取分析结果，优先读取缓存
// @Tags 校验分析
// @Produce json
// @Param id path string true "运行ID"
// @Success 200 {object} APIResponse{data=expectation.ValidationAnalysis}
// @Failure 404 {object} APIResponse
// @Router /analysis/runs/{id} [get]
func (c *AnalysisController) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, analysis, err := c.contractService.GetValidationRun(r.Context(), id)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("校验运行不存在"))
		return
	}

	render.JSON(w, r, SuccessResponse("获取校验运行成功", map[string]interface{}{
		"run":      run,
		"analysis": analysis,
	}))
}

// AnalyzeResult 即席分析引擎校验结果
// @Summary 即席分析校验结果
// @Description 对上送的引擎原始校验结果直接生成分析报告，不落库
// @Tags 校验分析
// @Accept json
// @Produce json
// @Param result body map[string]interface{} true "引擎原始校验结果"
// @Success 200 {object} APIResponse{data=expectation.ValidationAnalysis}
// @Failure 400 {object} APIResponse
// @Router /analysis/analyze [post]
func (c *AnalysisController) AnalyzeResult(w http.ResponseWriter, r *http.Request) {
	var rawResult map[string]interface{}
	if err := render.DecodeJSON(r.Body, &rawResult); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	analysis := expectation.AnalyzeValidationResult(rawResult)
	render.JSON(w, r, SuccessResponse("校验结果分析成功", analysis))
}

// AnalyzeFailures 即席提取失败期望摘要
// @Summary 即席提取失败期望摘要
// @Description 对上送的引擎原始校验结果仅提取失败期望的分类摘要
// @Tags 校验分析
// @Accept json
// @Produce json
// @Param result body map[string]interface{} true "引擎原始校验结果"
// @Success 200 {object} APIResponse{data=expectation.FailedExpectationsSummary}
// @Failure 400 {object} APIResponse
// @Router /analysis/failures [post]
func (c *AnalysisController) AnalyzeFailures(w http.ResponseWriter, r *http.Request) {
	var rawResult map[string]interface{}
	if err := render.DecodeJSON(r.Body, &rawResult); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	render.JSON(w, r, SuccessResponse("失败期望摘要提取成功", expectation.GetFailedExpectationsSummary(rawResult)))
}
