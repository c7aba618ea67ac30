/*
 * @module service/expectation/manager
 * @description 期望套件管理器，负责模型与引擎原生形态的双向转换、套件结构校验和套件摘要
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 模型套件 -> 原生转换 -> 结构校验 -> 校验报告
 * @rules 类型查找表是受支持规则集的唯一扩展点，转换遇到首个错误即包装返回
 * @dependencies datacontract-service/service/gx, datacontract-service/service/models
 * @refs service/expectation/serializer.go, service/expectation/analyzer.go
 */

package expectation

import (
	"fmt"
	"log/slog"
	"time"

	"datacontract-service/service/gx"
	"datacontract-service/service/models"
)

// suiteCreatorTag 转换生成的原生套件在元数据中登记的创建者标识
const suiteCreatorTag = "expectation_manager"

// validateSourceModel 模型套件校验报告的来源标记
const validateSourceModel = "模型套件校验"

// validatorSupportedTypes 结构校验认可的类型集合
// 比转换查找表多出 strftime 格式校验这一历史遗留标识，老套件文件仍可能携带
var validatorSupportedTypes = map[string]bool{
	models.TypeColumnToExist:                        true,
	models.TypeColumnValuesToNotBeNull:              true,
	models.TypeColumnValuesToBeUnique:               true,
	models.TypeCompoundColumnsToBeUnique:            true,
	models.TypeColumnValuesToBeInSet:                true,
	models.TypeColumnValuesToMatchRegex:             true,
	models.TypeColumnValuesToBeBetween:              true,
	models.TypeColumnValuesToBeOfType:               true,
	"expect_column_values_to_match_strftime_format": true,
	models.TypeColumnMeanToBeBetween:                true,
	models.TypeTableRowCountToBeBetween:             true,
	models.TypeColumnMinToBeBetween:                 true,
	models.TypeColumnMaxToBeBetween:                 true,
	models.TypeColumnSumToBeBetween:                 true,
}

// ExpectationCheckDetail 单条期望的结构校验结果
type ExpectationCheckDetail struct {
	Index           int      `json:"index"`
	ExpectationType string   `json:"expectation_type"`
	IsValid         bool     `json:"is_valid"`
	Errors          []string `json:"errors"`
	Warnings        []string `json:"warnings"`
}

// SuiteValidationReport 套件结构校验报告
type SuiteValidationReport struct {
	SuiteName          string                    `json:"suite_name"`
	TotalExpectations  int                       `json:"total_expectations"`
	ValidationErrors   []string                  `json:"validation_errors"`
	ValidationWarnings []string                  `json:"validation_warnings"`
	ExpectationDetails []*ExpectationCheckDetail `json:"expectation_details"`
	IsValid            bool                      `json:"is_valid"`
	ValidatedAt        string                    `json:"validated_at"`
	Source             string                    `json:"source,omitempty"`
	SuiteSummary       *SuiteSummary             `json:"suite_summary,omitempty"`
	Error              string                    `json:"error,omitempty"`
}

// SuiteSummary 套件摘要
type SuiteSummary struct {
	TotalExpectations int            `json:"total_expectations"`
	ExpectationTypes  map[string]int `json:"expectation_types"`
	ExpectationIDs    []string       `json:"expectation_ids"`
	Sources           []string       `json:"sources"`
}

// Manager 期望套件管理器，持有显式传入的引擎上下文
type Manager struct {
	ctx *gx.Context
}

// NewManager 创建期望套件管理器
func NewManager(ctx *gx.Context) *Manager {
	return &Manager{ctx: ctx}
}

// ensureContext 确保引擎上下文可用，缺失时只尝试一次重建
func (m *Manager) ensureContext() error {
	if m.ctx != nil {
		return nil
	}
	ctx, err := gx.NewContext()
	if err != nil {
		return &EngineContextError{Err: err}
	}
	m.ctx = ctx
	return nil
}

// ToNativeSuite 将模型套件转换为引擎原生套件并注册到上下文
// suiteName 为空时按 UTC 时间生成套件名
func (m *Manager) ToNativeSuite(suite *models.ExpectationSuite, suiteName string) (*gx.ExpectationSuite, error) {
	native, err := m.buildNativeSuite(suite, suiteName)
	if err != nil {
		return nil, err
	}

	if err := m.ctx.AddSuite(native); err != nil {
		return nil, newConversionError("原生套件注册失败", err)
	}

	slog.Info("模型套件已转换为原生套件", "suite_name", native.Name, "total_expectations", len(native.Expectations))
	return native, nil
}

// buildNativeSuite 只做转换不注册，校验等临时路径走这里避免上下文注册表随调用次数增长
func (m *Manager) buildNativeSuite(suite *models.ExpectationSuite, suiteName string) (*gx.ExpectationSuite, error) {
	if err := m.ensureContext(); err != nil {
		return nil, err
	}
	if suite == nil {
		return nil, newConversionError("模型套件转换为原生套件失败", fmt.Errorf("套件不能为空"))
	}

	if suiteName == "" {
		suiteName = fmt.Sprintf("suite_%s", time.Now().UTC().Format("20060102_150405"))
	}

	configurations := make([]*gx.ExpectationConfiguration, 0, len(suite.Expectations))
	for i, exp := range suite.Expectations {
		config, err := expectationToNativeConfig(exp)
		if err != nil {
			return nil, newConversionError(fmt.Sprintf("模型套件第 %d 条规则转换失败", i+1), err)
		}
		configurations = append(configurations, config)
	}

	native := gx.NewExpectationSuite(suiteName, configurations, map[string]interface{}{
		"created_by":         suiteCreatorTag,
		"created_at":         time.Now().UTC().Format(time.RFC3339),
		"total_expectations": len(configurations),
	})
	return native, nil
}

// expectationToNativeConfig 转换单条带元数据的规则
func expectationToNativeConfig(exp *models.ExpectationWithMetadata) (*gx.ExpectationConfiguration, error) {
	if exp == nil {
		return nil, fmt.Errorf("规则不能为空")
	}
	if err := exp.Validate(); err != nil {
		return nil, err
	}

	meta := map[string]interface{}{
		"expectation_id": exp.ID,
		"description":    exp.Description,
		"source":         exp.Source,
	}

	var severity gx.FailureSeverity
	switch exp.Severity {
	case models.SeverityWarning:
		severity = gx.FailureSeverityWarning
	case models.SeverityInfo:
		severity = gx.FailureSeverityInfo
	default:
		severity = gx.FailureSeverityCritical
	}

	return gx.NewExpectationConfiguration(exp.Expectation.ExpectationType(), exp.Expectation.Kwargs(), meta, severity), nil
}

// FromNativeSuite 将引擎原生套件还原为模型套件
// 元数据缺失时填入默认值；引擎侧严重级别不回传，统一落回 critical
func (m *Manager) FromNativeSuite(native *gx.ExpectationSuite) (*models.ExpectationSuite, error) {
	if native == nil {
		return nil, newConversionError("原生套件转换为模型套件失败", fmt.Errorf("套件不能为空"))
	}

	expectations := make([]*models.ExpectationWithMetadata, 0, len(native.Expectations))
	for i, config := range native.Expectations {
		exp, err := nativeConfigToExpectation(config, i)
		if err != nil {
			return nil, newConversionError(fmt.Sprintf("原生套件第 %d 条规则转换失败", i+1), err)
		}
		expectations = append(expectations, exp)
	}

	slog.Info("原生套件已转换为模型套件", "suite_name", native.Name, "total_expectations", len(expectations))
	return &models.ExpectationSuite{Expectations: expectations}, nil
}

// nativeConfigToExpectation 还原单条原生配置，index 用于生成缺省 id
func nativeConfigToExpectation(config *gx.ExpectationConfiguration, index int) (*models.ExpectationWithMetadata, error) {
	if config == nil {
		return nil, fmt.Errorf("期望配置不能为空")
	}

	expectation, err := models.BuildExpectation(config.Type, config.Kwargs)
	if err != nil {
		return nil, err
	}

	meta := config.Meta
	if meta == nil {
		meta = map[string]interface{}{}
	}

	id := metaString(meta, "expectation_id", fmt.Sprintf("exp_%d", index+1))
	description := metaString(meta, "description", fmt.Sprintf("Expectation for %s", config.Type))
	source := metaString(meta, "source", "GX Suite Import")

	return &models.ExpectationWithMetadata{
		ID:          id,
		Expectation: expectation,
		Description: description,
		Source:      source,
		Severity:    models.SeverityCritical,
	}, nil
}

func metaString(meta map[string]interface{}, key, fallback string) string {
	if raw, ok := meta[key]; ok {
		if value, ok := raw.(string); ok && value != "" {
			return value
		}
	}
	return fallback
}

// ValidateNativeSuite 对原生套件做结构与语义校验
// 所有子检查独立执行不短路，内部异常折叠进报告的错误列表而不向外抛出
func (m *Manager) ValidateNativeSuite(native *gx.ExpectationSuite) (bool, *SuiteValidationReport) {
	report := &SuiteValidationReport{
		ValidationErrors:   []string{},
		ValidationWarnings: []string{},
		ExpectationDetails: []*ExpectationCheckDetail{},
		IsValid:            true,
		ValidatedAt:        time.Now().UTC().Format(time.RFC3339),
	}

	if native == nil {
		report.ValidationErrors = append(report.ValidationErrors, "套件不能为空")
		report.IsValid = false
		return false, report
	}

	report.SuiteName = native.Name
	report.TotalExpectations = len(native.Expectations)

	if native.Name == "" {
		report.ValidationWarnings = append(report.ValidationWarnings, "套件没有名称")
	}

	if len(native.Expectations) == 0 {
		report.ValidationErrors = append(report.ValidationErrors, "套件不包含任何期望规则")
		report.IsValid = false
	}

	for i, config := range native.Expectations {
		detail := validateSingleExpectation(config, i)
		report.ExpectationDetails = append(report.ExpectationDetails, detail)
		if !detail.IsValid {
			report.IsValid = false
		}
	}

	slog.Info("原生套件结构校验完成", "suite_name", native.Name, "is_valid", report.IsValid)
	return report.IsValid, report
}

// validateSingleExpectation 校验单条期望配置
func validateSingleExpectation(config *gx.ExpectationConfiguration, index int) *ExpectationCheckDetail {
	detail := &ExpectationCheckDetail{
		Index:    index,
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
	}

	if config == nil {
		detail.Errors = append(detail.Errors, "期望配置为空")
		detail.IsValid = false
		return detail
	}

	detail.ExpectationType = config.Type
	if !validatorSupportedTypes[config.Type] {
		detail.Errors = append(detail.Errors, fmt.Sprintf("不支持的期望类型: %s", config.Type))
		detail.IsValid = false
	}

	return detail
}

// ValidateSuite 校验模型套件：先转换为原生形态再做结构校验，并附带套件摘要
// 转换阶段的异常被捕获并折叠为失败报告，不向调用方传播；临时套件不注册进上下文
func (m *Manager) ValidateSuite(suite *models.ExpectationSuite) (bool, *SuiteValidationReport) {
	native, err := m.buildNativeSuite(suite, "")
	if err != nil {
		return false, &SuiteValidationReport{
			IsValid:            false,
			Error:              err.Error(),
			Source:             validateSourceModel,
			ValidationErrors:   []string{},
			ValidationWarnings: []string{},
			ExpectationDetails: []*ExpectationCheckDetail{},
			ValidatedAt:        time.Now().UTC().Format(time.RFC3339),
		}
	}

	isValid, report := m.ValidateNativeSuite(native)
	report.Source = validateSourceModel
	report.SuiteSummary = m.GetSuiteSummary(suite)
	return isValid, report
}

// GetSuiteSummary 统计套件摘要，纯函数，O(n)
func (m *Manager) GetSuiteSummary(suite *models.ExpectationSuite) *SuiteSummary {
	summary := &SuiteSummary{
		ExpectationTypes: map[string]int{},
		ExpectationIDs:   []string{},
		Sources:          []string{},
	}
	if suite == nil {
		return summary
	}

	summary.TotalExpectations = len(suite.Expectations)
	seenSources := map[string]bool{}
	for _, exp := range suite.Expectations {
		if exp == nil || exp.Expectation == nil {
			continue
		}
		summary.ExpectationTypes[exp.Expectation.ExpectationType()]++
		summary.ExpectationIDs = append(summary.ExpectationIDs, exp.ID)
		if !seenSources[exp.Source] {
			seenSources[exp.Source] = true
			summary.Sources = append(summary.Sources, exp.Source)
		}
	}
	return summary
}
