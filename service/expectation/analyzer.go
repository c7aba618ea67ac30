/*
 * @module service/expectation/analyzer
 * @description 校验运行结果分析器，将引擎原始结果载荷转换为执行摘要、逐条明细和失败分类
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 原始结果载荷 -> 逐条解析 -> 失败聚合 -> 分析报告
 * @rules 严重级别不在三级枚举内的失败不计入分桶但仍计入类型/列统计，只记日志不抛错
 * @dependencies github.com/spf13/cast, sort
 * @refs service/expectation/manager.go, service/contract/service.go
 */

package expectation

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// ExecutiveSummary 校验运行执行摘要
type ExecutiveSummary struct {
	OverallSuccess         bool    `json:"overall_success"`
	TotalExpectations      int     `json:"total_expectations"`
	SuccessfulExpectations int     `json:"successful_expectations"`
	FailedExpectations     int     `json:"failed_expectations"`
	SuccessPercentage      float64 `json:"success_percentage"`
	ValidationTime         string  `json:"validation_time,omitempty"`
	SuiteName              string  `json:"suite_name,omitempty"`
}

// FailureInfo 失败明细信息
type FailureInfo struct {
	TotalElements     int64         `json:"total_elements"`
	InvalidCount      int64         `json:"invalid_count"`
	InvalidPercentage float64       `json:"invalid_percentage"`
	InvalidValues     []interface{} `json:"invalid_values"`
	InvalidIndices    []interface{} `json:"invalid_indices"`
	ValueCounts       []interface{} `json:"value_counts"`
	MissingCount      *int64        `json:"missing_count,omitempty"`
	MissingPercentage *float64      `json:"missing_percentage,omitempty"`
}

// ExpectationResultDetail 单条期望的运行结果明细
type ExpectationResultDetail struct {
	ExpectationID     string                 `json:"expectation_id"`
	ExpectationType   string                 `json:"expectation_type"`
	Column            string                 `json:"column,omitempty"`
	Description       string                 `json:"description"`
	Severity          string                 `json:"severity"`
	Source            string                 `json:"source"`
	Success           bool                   `json:"success"`
	Status            string                 `json:"status"`
	FailureInfo       *FailureInfo           `json:"failure_info,omitempty"`
	ExpectationKwargs map[string]interface{} `json:"expectation_kwargs"`
}

// FailureRef 失败条目引用，供严重级别分桶使用
type FailureRef struct {
	ExpectationID     string  `json:"expectation_id"`
	Column            string  `json:"column,omitempty"`
	InvalidPercentage float64 `json:"invalid_percentage"`
}

// FailureSummary 失败分类汇总
type FailureSummary struct {
	FailedByType       map[string]int             `json:"failed_by_type"`
	FailedByColumn     map[string]int             `json:"failed_by_column"`
	CriticalFailures   []*FailureRef              `json:"critical_failures"`
	WarningFailures    []*FailureRef              `json:"warning_failures"`
	InfoFailures       []*FailureRef              `json:"info_failures"`
	MostCommonFailures []*ExpectationResultDetail `json:"most_common_failures"`
}

// ValidationAnalysis 校验运行分析报告
type ValidationAnalysis struct {
	ExecutiveSummary   *ExecutiveSummary          `json:"executive_summary"`
	ExpectationDetails []*ExpectationResultDetail `json:"expectation_details"`
	FailureSummary     *FailureSummary            `json:"failure_summary"`
	RawStatistics      map[string]interface{}     `json:"raw_statistics"`
}

// FailedExpectationsSummary 只含失败条目的便捷视图
type FailedExpectationsSummary struct {
	TotalFailures      int                        `json:"total_failures"`
	FailedExpectations []*ExpectationResultDetail `json:"failed_expectations"`
	FailureSummary     *FailureSummary            `json:"failure_summary"`
}

// AnalyzeValidationResult 分析引擎校验运行的原始结果载荷
func AnalyzeValidationResult(result map[string]interface{}) *ValidationAnalysis {
	if result == nil {
		result = map[string]interface{}{}
	}

	overallSuccess := cast.ToBool(result["success"])
	results := toMapSlice(result["results"])
	statistics := cast.ToStringMap(result["statistics"])
	meta := cast.ToStringMap(result["meta"])

	totalExpectations := len(results)
	if raw, ok := statistics["evaluated_expectations"]; ok {
		totalExpectations = cast.ToInt(raw)
	}

	// 套件名优先取顶层字段，引擎导出的载荷放在 meta 中
	suiteName := cast.ToString(result["suite_name"])
	if suiteName == "" {
		suiteName = cast.ToString(meta["expectation_suite_name"])
	}

	summary := &ExecutiveSummary{
		OverallSuccess:         overallSuccess,
		TotalExpectations:      totalExpectations,
		SuccessfulExpectations: cast.ToInt(statistics["successful_expectations"]),
		FailedExpectations:     cast.ToInt(statistics["unsuccessful_expectations"]),
		SuccessPercentage:      cast.ToFloat64(statistics["success_percent"]),
		ValidationTime:         cast.ToString(meta["validation_time"]),
		SuiteName:              suiteName,
	}

	details := make([]*ExpectationResultDetail, 0, len(results))
	for _, entry := range results {
		details = append(details, analyzeResultEntry(entry))
	}

	return &ValidationAnalysis{
		ExecutiveSummary:   summary,
		ExpectationDetails: details,
		FailureSummary:     buildFailureSummary(details),
		RawStatistics:      statistics,
	}
}

// analyzeResultEntry 解析单条运行结果
func analyzeResultEntry(entry map[string]interface{}) *ExpectationResultDetail {
	config := cast.ToStringMap(entry["expectation_config"])
	expectationResult := cast.ToStringMap(entry["result"])
	meta := cast.ToStringMap(config["meta"])
	kwargs := cast.ToStringMap(config["kwargs"])
	success := cast.ToBool(entry["success"])

	detail := &ExpectationResultDetail{
		ExpectationID:     stringOrDefault(meta["expectation_id"], "unknown"),
		ExpectationType:   stringOrDefault(config["type"], "unknown"),
		Column:            cast.ToString(kwargs["column"]),
		Description:       stringOrDefault(meta["description"], "No description"),
		Severity:          stringOrDefault(config["severity"], "unknown"),
		Source:            stringOrDefault(meta["source"], "unknown"),
		Success:           success,
		ExpectationKwargs: kwargs,
	}

	if success {
		detail.Status = "PASS"
		return detail
	}

	detail.Status = "FAIL"
	failureInfo := &FailureInfo{
		TotalElements:     cast.ToInt64(expectationResult["element_count"]),
		InvalidCount:      cast.ToInt64(expectationResult["unexpected_count"]),
		InvalidPercentage: cast.ToFloat64(expectationResult["unexpected_percent"]),
		InvalidValues:     toSliceOrEmpty(expectationResult["partial_unexpected_list"]),
		InvalidIndices:    toSliceOrEmpty(expectationResult["partial_unexpected_index_list"]),
		ValueCounts:       toSliceOrEmpty(expectationResult["partial_unexpected_counts"]),
	}

	if raw, ok := expectationResult["missing_count"]; ok {
		missingCount := cast.ToInt64(raw)
		missingPercent := cast.ToFloat64(expectationResult["missing_percent"])
		failureInfo.MissingCount = &missingCount
		failureInfo.MissingPercentage = &missingPercent
	}

	detail.FailureInfo = failureInfo
	return detail
}

// buildFailureSummary 聚合失败条目：按类型、按列、按严重级别分桶，并取失败占比最高的前5条
func buildFailureSummary(details []*ExpectationResultDetail) *FailureSummary {
	summary := &FailureSummary{
		FailedByType:       map[string]int{},
		FailedByColumn:     map[string]int{},
		CriticalFailures:   []*FailureRef{},
		WarningFailures:    []*FailureRef{},
		InfoFailures:       []*FailureRef{},
		MostCommonFailures: []*ExpectationResultDetail{},
	}

	failed := []*ExpectationResultDetail{}
	for _, detail := range details {
		if detail.Status != "FAIL" {
			continue
		}

		summary.FailedByType[detail.ExpectationType]++
		if detail.Column != "" {
			summary.FailedByColumn[detail.Column]++
		}

		ref := &FailureRef{
			ExpectationID: detail.ExpectationID,
			Column:        detail.Column,
		}
		if detail.FailureInfo != nil {
			ref.InvalidPercentage = detail.FailureInfo.InvalidPercentage
		}

		switch strings.ToLower(detail.Severity) {
		case "critical":
			summary.CriticalFailures = append(summary.CriticalFailures, ref)
		case "warning":
			summary.WarningFailures = append(summary.WarningFailures, ref)
		case "info":
			summary.InfoFailures = append(summary.InfoFailures, ref)
		default:
			// 未识别的严重级别不进任何分桶，保持宽容处理
			slog.Warn("失败条目携带未识别的严重级别", "expectation_id", detail.ExpectationID, "severity", detail.Severity)
		}

		if detail.FailureInfo != nil {
			failed = append(failed, detail)
		}
	}

	// 稳定排序，失败占比相同的条目保持原始顺序
	sort.SliceStable(failed, func(i, j int) bool {
		return failed[i].FailureInfo.InvalidPercentage > failed[j].FailureInfo.InvalidPercentage
	})
	if len(failed) > 5 {
		failed = failed[:5]
	}
	summary.MostCommonFailures = failed

	return summary
}

// GetFailedExpectationsSummary 提取失败条目和失败汇总的便捷视图
func GetFailedExpectationsSummary(result map[string]interface{}) *FailedExpectationsSummary {
	analysis := AnalyzeValidationResult(result)

	failed := []*ExpectationResultDetail{}
	for _, detail := range analysis.ExpectationDetails {
		if detail.Status == "FAIL" {
			failed = append(failed, detail)
		}
	}

	return &FailedExpectationsSummary{
		TotalFailures:      len(failed),
		FailedExpectations: failed,
		FailureSummary:     analysis.FailureSummary,
	}
}

func stringOrDefault(raw interface{}, fallback string) string {
	value := cast.ToString(raw)
	if value == "" {
		return fallback
	}
	return value
}

func toMapSlice(raw interface{}) []map[string]interface{} {
	items, ok := raw.([]interface{})
	if !ok {
		if typed, ok := raw.([]map[string]interface{}); ok {
			return typed
		}
		return nil
	}
	result := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		result = append(result, cast.ToStringMap(item))
	}
	return result
}

func toSliceOrEmpty(raw interface{}) []interface{} {
	if items, ok := raw.([]interface{}); ok {
		return items
	}
	return []interface{}{}
}
