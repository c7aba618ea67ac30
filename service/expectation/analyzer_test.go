/*
 * @module service/expectation/analyzer_test
 * @description 校验结果分析器测试，覆盖执行摘要、失败分桶、排序和宽容处理
 * @architecture 测试层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 原始结果构造 -> 分析 -> 分桶与排序断言
 * @rules 未识别严重级别不进分桶但保留在类型与列统计中
 * @dependencies testing, testify
 * @refs service/expectation/analyzer.go
 */

package expectation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultEntry(id, expectationType, column, severity string, success bool, unexpectedPercent float64) map[string]interface{} {
	entry := map[string]interface{}{
		"success": success,
		"expectation_config": map[string]interface{}{
			"type":     expectationType,
			"kwargs":   map[string]interface{}{"column": column},
			"severity": severity,
			"meta": map[string]interface{}{
				"expectation_id": id,
				"description":    "规则 " + id,
				"source":         "业务规则",
			},
		},
		"result": map[string]interface{}{},
	}
	if !success {
		entry["result"] = map[string]interface{}{
			"element_count":                 float64(1000),
			"unexpected_count":              float64(unexpectedPercent * 10),
			"unexpected_percent":            unexpectedPercent,
			"partial_unexpected_list":       []interface{}{"bad"},
			"partial_unexpected_index_list": []interface{}{float64(7)},
		}
	}
	return entry
}

func sampleRunResult() map[string]interface{} {
	return map[string]interface{}{
		"success": false,
		"statistics": map[string]interface{}{
			"evaluated_expectations":    float64(5),
			"successful_expectations":   float64(2),
			"unsuccessful_expectations": float64(3),
			"success_percent":           float64(40),
		},
		"meta": map[string]interface{}{
			"validation_time":        "2026-08-01T02:00:00Z",
			"expectation_suite_name": "orders_suite",
		},
		"results": []interface{}{
			resultEntry("exp_001", "expect_column_to_exist", "user_id", "CRITICAL", true, 0),
			resultEntry("exp_002", "expect_column_values_to_be_between", "age", "CRITICAL", false, 45.5),
			resultEntry("exp_003", "expect_column_values_to_not_be_null", "email", "WARNING", false, 12.0),
			resultEntry("exp_004", "expect_column_values_to_be_unique", "order_no", "BLOCKER", false, 99.9),
			resultEntry("exp_005", "expect_column_values_to_match_regex", "phone", "INFO", true, 0),
		},
	}
}

// TestAnalyzeExecutiveSummary 测试执行摘要提取
func TestAnalyzeExecutiveSummary(t *testing.T) {
	analysis := AnalyzeValidationResult(sampleRunResult())

	summary := analysis.ExecutiveSummary
	assert.False(t, summary.OverallSuccess)
	assert.Equal(t, 5, summary.TotalExpectations)
	assert.Equal(t, 2, summary.SuccessfulExpectations)
	assert.Equal(t, 3, summary.FailedExpectations)
	assert.Equal(t, 40.0, summary.SuccessPercentage)
	assert.Equal(t, "2026-08-01T02:00:00Z", summary.ValidationTime)
	assert.Equal(t, "orders_suite", summary.SuiteName)
}

// TestAnalyzeSuiteNameTopLevelFirst 测试套件名优先取顶层字段，meta 中的名称作为回退
func TestAnalyzeSuiteNameTopLevelFirst(t *testing.T) {
	result := sampleRunResult()
	result["suite_name"] = "orders_contract"

	analysis := AnalyzeValidationResult(result)
	assert.Equal(t, "orders_contract", analysis.ExecutiveSummary.SuiteName)

	// 顶层字段缺失时回退到引擎 meta 中的套件名
	delete(result, "suite_name")
	analysis = AnalyzeValidationResult(result)
	assert.Equal(t, "orders_suite", analysis.ExecutiveSummary.SuiteName)
}

// TestAnalyzeExpectationDetails 测试逐条明细与失败信息
func TestAnalyzeExpectationDetails(t *testing.T) {
	analysis := AnalyzeValidationResult(sampleRunResult())
	require.Len(t, analysis.ExpectationDetails, 5)

	passed := analysis.ExpectationDetails[0]
	assert.Equal(t, "PASS", passed.Status)
	assert.Nil(t, passed.FailureInfo)

	failed := analysis.ExpectationDetails[1]
	assert.Equal(t, "FAIL", failed.Status)
	require.NotNil(t, failed.FailureInfo)
	assert.Equal(t, int64(1000), failed.FailureInfo.TotalElements)
	assert.Equal(t, 45.5, failed.FailureInfo.InvalidPercentage)
	assert.Equal(t, []interface{}{"bad"}, failed.FailureInfo.InvalidValues)
	assert.Nil(t, failed.FailureInfo.MissingCount)
}

// TestAnalyzeMissingCountExtraction 测试 missing_count 字段的提取
func TestAnalyzeMissingCountExtraction(t *testing.T) {
	entry := resultEntry("exp_001", "expect_column_values_to_not_be_null", "email", "CRITICAL", false, 5.0)
	entry["result"].(map[string]interface{})["missing_count"] = float64(12)
	entry["result"].(map[string]interface{})["missing_percent"] = float64(1.2)

	analysis := AnalyzeValidationResult(map[string]interface{}{
		"success": false,
		"results": []interface{}{entry},
	})

	require.Len(t, analysis.ExpectationDetails, 1)
	info := analysis.ExpectationDetails[0].FailureInfo
	require.NotNil(t, info.MissingCount)
	assert.Equal(t, int64(12), *info.MissingCount)
	require.NotNil(t, info.MissingPercentage)
	assert.Equal(t, 1.2, *info.MissingPercentage)
}

// TestFailureSummaryBuckets 测试严重级别分桶与未识别级别的宽容处理
func TestFailureSummaryBuckets(t *testing.T) {
	analysis := AnalyzeValidationResult(sampleRunResult())
	summary := analysis.FailureSummary

	// 引擎侧大写严重级别按大小写不敏感归桶
	require.Len(t, summary.CriticalFailures, 1)
	assert.Equal(t, "exp_002", summary.CriticalFailures[0].ExpectationID)
	require.Len(t, summary.WarningFailures, 1)
	assert.Equal(t, "exp_003", summary.WarningFailures[0].ExpectationID)
	assert.Empty(t, summary.InfoFailures)

	// 未识别级别不进分桶，但仍计入类型与列统计
	assert.Equal(t, 1, summary.FailedByType["expect_column_values_to_be_unique"])
	assert.Equal(t, 1, summary.FailedByColumn["order_no"])
	assert.Equal(t, 1, summary.FailedByType["expect_column_values_to_be_between"])
}

// TestMostCommonFailuresOrdering 测试失败占比降序排序
func TestMostCommonFailuresOrdering(t *testing.T) {
	analysis := AnalyzeValidationResult(sampleRunResult())
	failures := analysis.FailureSummary.MostCommonFailures

	require.Len(t, failures, 3)
	assert.Equal(t, "exp_004", failures[0].ExpectationID)
	assert.Equal(t, "exp_002", failures[1].ExpectationID)
	assert.Equal(t, "exp_003", failures[2].ExpectationID)
}

// TestMostCommonFailuresCapped 测试失败排行最多保留5条
func TestMostCommonFailuresCapped(t *testing.T) {
	results := []interface{}{}
	for i := 0; i < 8; i++ {
		results = append(results, resultEntry(
			"exp_00"+string(rune('1'+i)), "expect_column_values_to_not_be_null", "c", "CRITICAL", false, float64(i)))
	}

	analysis := AnalyzeValidationResult(map[string]interface{}{
		"success": false,
		"results": results,
	})
	assert.Len(t, analysis.FailureSummary.MostCommonFailures, 5)
}

// TestAnalyzeEmptyResult 测试空载荷的防御性处理
func TestAnalyzeEmptyResult(t *testing.T) {
	analysis := AnalyzeValidationResult(nil)

	require.NotNil(t, analysis.ExecutiveSummary)
	assert.Equal(t, 0, analysis.ExecutiveSummary.TotalExpectations)
	assert.Empty(t, analysis.ExpectationDetails)
	require.NotNil(t, analysis.FailureSummary)
	assert.Empty(t, analysis.FailureSummary.CriticalFailures)
}

// TestAnalyzeDefaultsForMissingFields 测试缺失字段的默认值
func TestAnalyzeDefaultsForMissingFields(t *testing.T) {
	analysis := AnalyzeValidationResult(map[string]interface{}{
		"success": true,
		"results": []interface{}{
			map[string]interface{}{"success": true},
		},
	})

	require.Len(t, analysis.ExpectationDetails, 1)
	detail := analysis.ExpectationDetails[0]
	assert.Equal(t, "unknown", detail.ExpectationID)
	assert.Equal(t, "unknown", detail.ExpectationType)
	assert.Equal(t, "No description", detail.Description)
	// statistics 缺失时按结果条数统计
	assert.Equal(t, 1, analysis.ExecutiveSummary.TotalExpectations)
}

// TestGetFailedExpectationsSummary 测试失败条目便捷视图
func TestGetFailedExpectationsSummary(t *testing.T) {
	summary := GetFailedExpectationsSummary(sampleRunResult())

	assert.Equal(t, 3, summary.TotalFailures)
	require.Len(t, summary.FailedExpectations, 3)
	assert.Equal(t, "exp_002", summary.FailedExpectations[0].ExpectationID)
	require.NotNil(t, summary.FailureSummary)
	assert.Len(t, summary.FailureSummary.CriticalFailures, 1)
}
