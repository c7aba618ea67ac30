/*
 * @module api/controllers/contract_controller
 * @description 数据契约控制器，提供契约套件的增删查改、结构校验、格式转换和导入导出功能
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 统一的错误处理和响应格式，套件内容以文本形态上送，编码由format字段指明
 * @dependencies datacontract-service/service/contract, github.com/go-chi/chi/v5
 * @refs service/contract/service.go, service/expectation/manager.go
 */

package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"datacontract-service/service/contract"
	"datacontract-service/service/expectation"
	"datacontract-service/service/gx"
)

// ContractController 数据契约控制器
type ContractController struct {
	contractService *contract.Service
}

// NewContractController 创建数据契约控制器实例
func NewContractController(contractService *contract.Service) *ContractController {
	return &ContractController{contractService: contractService}
}

// CreateSuiteRequest 创建契约套件请求
type CreateSuiteRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Format      string   `json:"format" example:"json"` // json, yaml
	Content     string   `json:"content"`
	CreatedBy   string   `json:"created_by"`
}

// CreateSuite 创建契约套件
// @Summary 创建契约套件
// @Description 解析上送的套件文本并入库，入库时执行结构校验
// @Tags 数据契约
// @Accept json
// @Produce json
// @Param suite body CreateSuiteRequest true "契约套件信息"
// @Success 200 {object} APIResponse{data=models.DataContractSuite}
// @Failure 400 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /contracts/suites [post]
func (c *ContractController) CreateSuite(w http.ResponseWriter, r *http.Request) {
	var req CreateSuiteRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	if req.Name == "" {
		render.JSON(w, r, BadRequestResponse("套件名称不能为空", nil))
		return
	}

	record, err := c.contractService.CreateSuite(req.Name, req.Description, req.Tags, req.Content, req.Format, req.CreatedBy)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("契约套件创建失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse("契约套件创建成功", record))
}

// ListSuites 获取契约套件列表
// @Summary 获取契约套件列表
// @Description 分页获取契约套件列表
// @Tags 数据契约
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(10)
// @Success 200 {object} PaginatedResponse{data=[]models.DataContractSuite}
// @Failure 500 {object} APIResponse
// @Router /contracts/suites [get]
func (c *ContractController) ListSuites(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 10
	}

	records, total, err := c.contractService.ListSuites(page, size)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("获取契约套件列表失败", err))
		return
	}

	render.JSON(w, r, &PaginatedResponse{
		Status: 0,
		Msg:    "获取契约套件列表成功",
		Data:   records,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetSuite 获取契约套件详情
// @Summary 获取契约套件详情
// @Description 根据套件ID获取契约套件的详细信息
// @Tags 数据契约
// @Produce json
// @Param id path string true "套件ID"
// @Success 200 {object} APIResponse{data=models.DataContractSuite}
// @Failure 404 {object} APIResponse
// @Router /contracts/suites/{id} [get]
func (c *ContractController) GetSuite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := c.contractService.GetSuite(id)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("契约套件不存在"))
		return
	}

	render.JSON(w, r, SuccessResponse("获取契约套件成功", record))
}

// DeleteSuite 删除契约套件
// @Summary 删除契约套件
// @Description 根据套件ID删除契约套件
// @Tags 数据契约
// @Produce json
// @Param id path string true "套件ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /contracts/suites/{id} [delete]
func (c *ContractController) DeleteSuite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.contractService.DeleteSuite(id); err != nil {
		render.JSON(w, r, NotFoundResponse("契约套件不存在"))
		return
	}

	render.JSON(w, r, SuccessResponse("契约套件删除成功", nil))
}

// ValidateSuite 重新校验契约套件
// @Summary 重新校验契约套件
// @Description 对已入库套件重新执行结构校验并更新状态
// @Tags 数据契约
// @Produce json
// @Param id path string true "套件ID"
// @Success 200 {object} APIResponse{data=expectation.SuiteValidationReport}
// @Failure 404 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /contracts/suites/{id}/validate [post]
func (c *ContractController) ValidateSuite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	isValid, report, err := c.contractService.ValidateStoredSuite(id)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("契约套件校验失败", err))
		return
	}

	msg := "契约套件校验通过"
	if !isValid {
		msg = "契约套件校验未通过"
	}
	render.JSON(w, r, SuccessResponse(msg, report))
}

// ExportSuite 导出契约套件
// @Summary 导出契约套件
// @Description 将已入库套件导出为指定编码的文本
// @Tags 数据契约
// @Produce json
// @Param id path string true "套件ID"
// @Param format query string false "编码格式" Enums(json,yaml) default(json)
// @Success 200 {object} APIResponse{data=string}
// @Failure 404 {object} APIResponse
// @Router /contracts/suites/{id}/export [get]
func (c *ContractController) ExportSuite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := r.URL.Query().Get("format")

	text, err := c.contractService.ExportSuite(id, format)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("契约套件导出失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse("契约套件导出成功", text))
}

// GetSuiteSummary 获取契约套件摘要
// @Summary 获取契约套件摘要
// @Description 统计套件的规则类型分布、规则ID和来源集合
// @Tags 数据契约
// @Produce json
// @Param id path string true "套件ID"
// @Success 200 {object} APIResponse{data=expectation.SuiteSummary}
// @Failure 404 {object} APIResponse
// @Router /contracts/suites/{id}/summary [get]
func (c *ContractController) GetSuiteSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := c.contractService.GetSuite(id)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("契约套件不存在"))
		return
	}

	suite, err := c.contractService.LoadSuiteModel(record)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("契约套件文档解析失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse("获取契约套件摘要成功", c.contractService.Manager().GetSuiteSummary(suite)))
}

// ConvertDocumentRequest 套件文本转换请求
type ConvertDocumentRequest struct {
	Format    string `json:"format" example:"json"` // json, yaml
	Content   string `json:"content"`
	SuiteName string `json:"suite_name"`
}

// ConvertToNative 将套件文本转换为引擎原生套件
// @Summary 套件转换为引擎原生形态
// @Description 解析套件文本并转换为外部校验引擎的原生套件配置
// @Tags 数据契约
// @Accept json
// @Produce json
// @Param request body ConvertDocumentRequest true "套件文本"
// @Success 200 {object} APIResponse{data=gx.ExpectationSuite}
// @Failure 400 {object} APIResponse
// @Router /contracts/convert/to-native [post]
func (c *ContractController) ConvertToNative(w http.ResponseWriter, r *http.Request) {
	var req ConvertDocumentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	suite, err := expectation.Deserialize(req.Content, req.Format)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("套件文本解析失败", err))
		return
	}

	native, err := c.contractService.ConvertToNative(suite, req.SuiteName)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("套件转换失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse("套件转换成功", native))
}

// ConvertFromNative 将引擎原生套件还原为模型套件
// @Summary 引擎原生形态还原为模型套件
// @Description 将外部校验引擎的原生套件配置还原为契约模型套件
// @Tags 数据契约
// @Accept json
// @Produce json
// @Param suite body gx.ExpectationSuite true "引擎原生套件"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /contracts/convert/from-native [post]
func (c *ContractController) ConvertFromNative(w http.ResponseWriter, r *http.Request) {
	var native gx.ExpectationSuite
	if err := render.DecodeJSON(r.Body, &native); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	suite, err := c.contractService.ConvertFromNative(&native)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("套件还原失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse("套件还原成功", suite))
}

// ValidateDocument 校验临时套件文本
// @Summary 校验套件文本
// @Description 解析并校验上送的套件文本，不入库
// @Tags 数据契约
// @Accept json
// @Produce json
// @Param request body ConvertDocumentRequest true "套件文本"
// @Success 200 {object} APIResponse{data=expectation.SuiteValidationReport}
// @Failure 400 {object} APIResponse
// @Router /contracts/validate-document [post]
func (c *ContractController) ValidateDocument(w http.ResponseWriter, r *http.Request) {
	var req ConvertDocumentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	suite, err := expectation.Deserialize(req.Content, req.Format)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("套件文本解析失败", err))
		return
	}

	isValid, report := c.contractService.Manager().ValidateSuite(suite)
	msg := "套件校验通过"
	if !isValid {
		msg = "套件校验未通过"
	}
	render.JSON(w, r, SuccessResponse(msg, report))
}

// GetExpectationTypes 获取受支持的期望类型模式信息
// @Summary 获取期望类型模式信息
// @Description 返回全部受支持期望类型的字段模式文本块，供提示词组装使用
// @Tags 数据契约
// @Produce json
// @Success 200 {object} APIResponse{data=[]string}
// @Router /contracts/expectation-types [get]
func (c *ContractController) GetExpectationTypes(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, SuccessResponse("获取期望类型模式成功", expectation.GetExpectationKindsInfo()))
}
