/*
 * @module service/expectation/manager_test
 * @description 期望套件管理器测试，覆盖双向转换、元数据缺省、严重级别映射和结构校验
 * @architecture 测试层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 模型套件构建 -> 转换 -> 还原 -> 校验断言
 * @rules 转换错误必须包装为转换错误类型，严重级别反向转换统一落回 critical
 * @dependencies testing, testify
 * @refs service/expectation/manager.go
 */

package expectation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacontract-service/service/gx"
	"datacontract-service/service/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	t.Setenv("GX_CONTEXT_DIR", t.TempDir())

	ctx, err := gx.NewContext()
	require.NoError(t, err)
	return NewManager(ctx)
}

func buildMetaExpectation(t *testing.T, expectationType string, kwargs map[string]interface{}, id string, severity models.Severity) *models.ExpectationWithMetadata {
	t.Helper()
	exp, err := models.BuildExpectation(expectationType, kwargs)
	require.NoError(t, err)
	return &models.ExpectationWithMetadata{
		ID:          id,
		Expectation: exp,
		Description: "规则 " + id,
		Source:      "业务规则",
		Severity:    severity,
	}
}

// TestToNativeSuiteCarriesMetadata 测试转换输出的套件元数据与逐条规则元数据
func TestToNativeSuiteCarriesMetadata(t *testing.T) {
	manager := newTestManager(t)

	suite := &models.ExpectationSuite{
		Expectations: []*models.ExpectationWithMetadata{
			buildMetaExpectation(t, models.TypeColumnToExist, map[string]interface{}{"column": "user_id"}, "exp_001", models.SeverityWarning),
		},
	}

	native, err := manager.ToNativeSuite(suite, "orders_suite")
	require.NoError(t, err)

	assert.Equal(t, "orders_suite", native.Name)
	assert.Equal(t, "expectation_manager", native.Meta["created_by"])
	assert.Equal(t, 1, native.Meta["total_expectations"])
	assert.NotEmpty(t, native.Meta["created_at"])

	require.Len(t, native.Expectations, 1)
	config := native.Expectations[0]
	assert.Equal(t, models.TypeColumnToExist, config.Type)
	assert.Equal(t, "exp_001", config.Meta["expectation_id"])
	assert.Equal(t, "规则 exp_001", config.Meta["description"])
	assert.Equal(t, "业务规则", config.Meta["source"])
	assert.Equal(t, gx.FailureSeverityWarning, config.Severity)
}

// TestToNativeSuiteGeneratesName 测试套件名缺省时按时间生成
func TestToNativeSuiteGeneratesName(t *testing.T) {
	manager := newTestManager(t)

	suite := &models.ExpectationSuite{
		Expectations: []*models.ExpectationWithMetadata{
			buildMetaExpectation(t, models.TypeColumnToExist, map[string]interface{}{"column": "user_id"}, "exp_001", models.SeverityCritical),
		},
	}

	native, err := manager.ToNativeSuite(suite, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(native.Name, "suite_"))
}

// TestToNativeSuiteRegistersInContext 测试转换后的套件在上下文中可取回
func TestToNativeSuiteRegistersInContext(t *testing.T) {
	manager := newTestManager(t)

	suite := &models.ExpectationSuite{
		Expectations: []*models.ExpectationWithMetadata{
			buildMetaExpectation(t, models.TypeColumnToExist, map[string]interface{}{"column": "user_id"}, "exp_001", models.SeverityCritical),
		},
	}

	_, err := manager.ToNativeSuite(suite, "registered_suite")
	require.NoError(t, err)

	got, ok := manager.ctx.GetSuite("registered_suite")
	require.True(t, ok)
	assert.Len(t, got.Expectations, 1)
}

// TestToNativeSuiteWrapsRuleError 测试非法规则转换返回转换错误并带序号
func TestToNativeSuiteWrapsRuleError(t *testing.T) {
	manager := newTestManager(t)

	suite := &models.ExpectationSuite{
		Expectations: []*models.ExpectationWithMetadata{
			buildMetaExpectation(t, models.TypeColumnToExist, map[string]interface{}{"column": "user_id"}, "exp_001", models.SeverityCritical),
			{
				ID:          "exp_002",
				Expectation: &models.ExpectColumnToExist{},
				Description: "缺列名",
				Source:      "业务规则",
				Severity:    models.SeverityCritical,
			},
		},
	}

	_, err := manager.ToNativeSuite(suite, "broken_suite")
	require.Error(t, err)

	var conversionErr *ConversionError
	require.True(t, errors.As(err, &conversionErr))
	assert.Contains(t, conversionErr.Op, "第 2 条")
}

// TestFromNativeSuiteFillsDefaults 测试元数据缺失时的默认值
func TestFromNativeSuiteFillsDefaults(t *testing.T) {
	manager := newTestManager(t)

	native := gx.NewExpectationSuite("imported", []*gx.ExpectationConfiguration{
		gx.NewExpectationConfiguration(models.TypeColumnValuesToNotBeNull, map[string]interface{}{"column": "user_id"}, nil, gx.FailureSeverityInfo),
	}, nil)

	suite, err := manager.FromNativeSuite(native)
	require.NoError(t, err)
	require.Len(t, suite.Expectations, 1)

	exp := suite.Expectations[0]
	assert.Equal(t, "exp_1", exp.ID)
	assert.Equal(t, "Expectation for "+models.TypeColumnValuesToNotBeNull, exp.Description)
	assert.Equal(t, "GX Suite Import", exp.Source)
	// 引擎侧严重级别不回传，统一落回 critical
	assert.Equal(t, models.SeverityCritical, exp.Severity)
}

// TestFromNativeSuiteRejectsUnsupportedType 测试未登记类型还原失败
func TestFromNativeSuiteRejectsUnsupportedType(t *testing.T) {
	manager := newTestManager(t)

	native := gx.NewExpectationSuite("imported", []*gx.ExpectationConfiguration{
		gx.NewExpectationConfiguration("expect_magic", map[string]interface{}{"column": "x"}, nil, gx.FailureSeverityCritical),
	}, nil)

	_, err := manager.FromNativeSuite(native)
	require.Error(t, err)

	var conversionErr *ConversionError
	require.True(t, errors.As(err, &conversionErr))
}

// TestRoundTripPreservesRulesAndOrder 测试模型->原生->模型往返保持规则类型、参数和顺序
func TestRoundTripPreservesRulesAndOrder(t *testing.T) {
	manager := newTestManager(t)

	suite := &models.ExpectationSuite{
		Expectations: []*models.ExpectationWithMetadata{
			buildMetaExpectation(t, models.TypeColumnToExist, map[string]interface{}{"column": "user_id"}, "exp_001", models.SeverityCritical),
			buildMetaExpectation(t, models.TypeColumnValuesToBeInSet, map[string]interface{}{
				"column":    "status",
				"value_set": []interface{}{"active", "closed"},
			}, "exp_002", models.SeverityWarning),
			buildMetaExpectation(t, models.TypeTableRowCountToBeBetween, map[string]interface{}{"min_value": 1}, "exp_003", models.SeverityInfo),
		},
	}

	native, err := manager.ToNativeSuite(suite, "round_trip")
	require.NoError(t, err)

	restored, err := manager.FromNativeSuite(native)
	require.NoError(t, err)
	require.Len(t, restored.Expectations, len(suite.Expectations))

	for i, original := range suite.Expectations {
		got := restored.Expectations[i]
		assert.Equal(t, original.ID, got.ID)
		assert.Equal(t, original.Description, got.Description)
		assert.Equal(t, original.Source, got.Source)
		assert.Equal(t, original.Expectation.ExpectationType(), got.Expectation.ExpectationType())
		assert.Equal(t, original.Expectation.Kwargs(), got.Expectation.Kwargs())
	}
}

// TestValidateNativeSuiteEmptyRules 测试零规则套件判为无效
func TestValidateNativeSuiteEmptyRules(t *testing.T) {
	manager := newTestManager(t)

	isValid, report := manager.ValidateNativeSuite(gx.NewExpectationSuite("", nil, nil))
	assert.False(t, isValid)
	assert.NotEmpty(t, report.ValidationErrors)
	// 名称缺失只产生告警，不影响有效性判断
	assert.NotEmpty(t, report.ValidationWarnings)
}

// TestValidateNativeSuiteLegacyStrftime 测试历史遗留 strftime 类型仍被校验器认可
func TestValidateNativeSuiteLegacyStrftime(t *testing.T) {
	manager := newTestManager(t)

	native := gx.NewExpectationSuite("legacy", []*gx.ExpectationConfiguration{
		gx.NewExpectationConfiguration("expect_column_values_to_match_strftime_format",
			map[string]interface{}{"column": "created_at", "strftime_format": "%Y-%m-%d"}, nil, gx.FailureSeverityCritical),
	}, nil)

	isValid, report := manager.ValidateNativeSuite(native)
	assert.True(t, isValid)
	require.Len(t, report.ExpectationDetails, 1)
	assert.True(t, report.ExpectationDetails[0].IsValid)
}

// TestValidateNativeSuiteDoesNotShortCircuit 测试逐条校验不短路
func TestValidateNativeSuiteDoesNotShortCircuit(t *testing.T) {
	manager := newTestManager(t)

	native := gx.NewExpectationSuite("mixed", []*gx.ExpectationConfiguration{
		gx.NewExpectationConfiguration("expect_magic", map[string]interface{}{}, nil, gx.FailureSeverityCritical),
		gx.NewExpectationConfiguration(models.TypeColumnToExist, map[string]interface{}{"column": "user_id"}, nil, gx.FailureSeverityCritical),
	}, nil)

	isValid, report := manager.ValidateNativeSuite(native)
	assert.False(t, isValid)
	require.Len(t, report.ExpectationDetails, 2)
	assert.False(t, report.ExpectationDetails[0].IsValid)
	assert.True(t, report.ExpectationDetails[1].IsValid)
}

// TestValidateSuiteAttachesSummary 测试模型套件校验附带来源与摘要
func TestValidateSuiteAttachesSummary(t *testing.T) {
	manager := newTestManager(t)

	suite := &models.ExpectationSuite{
		Expectations: []*models.ExpectationWithMetadata{
			buildMetaExpectation(t, models.TypeColumnToExist, map[string]interface{}{"column": "user_id"}, "exp_001", models.SeverityCritical),
			buildMetaExpectation(t, models.TypeColumnToExist, map[string]interface{}{"column": "order_no"}, "exp_002", models.SeverityCritical),
		},
	}

	isValid, report := manager.ValidateSuite(suite)
	assert.True(t, isValid)
	assert.Equal(t, "模型套件校验", report.Source)

	require.NotNil(t, report.SuiteSummary)
	assert.Equal(t, 2, report.SuiteSummary.TotalExpectations)
	assert.Equal(t, 2, report.SuiteSummary.ExpectationTypes[models.TypeColumnToExist])
	assert.Equal(t, []string{"exp_001", "exp_002"}, report.SuiteSummary.ExpectationIDs)
	assert.Equal(t, []string{"业务规则"}, report.SuiteSummary.Sources)
}

// TestValidateSuiteDoesNotRegisterSuite 测试校验路径不向上下文注册临时套件
func TestValidateSuiteDoesNotRegisterSuite(t *testing.T) {
	manager := newTestManager(t)

	suite := &models.ExpectationSuite{
		Expectations: []*models.ExpectationWithMetadata{
			buildMetaExpectation(t, models.TypeColumnToExist, map[string]interface{}{"column": "user_id"}, "exp_001", models.SeverityCritical),
		},
	}

	before := manager.ctx.SuiteCount()
	for i := 0; i < 3; i++ {
		isValid, _ := manager.ValidateSuite(suite)
		assert.True(t, isValid)
	}
	assert.Equal(t, before, manager.ctx.SuiteCount())

	// 显式转换仍然注册
	_, err := manager.ToNativeSuite(suite, "kept_suite")
	require.NoError(t, err)
	assert.Equal(t, before+1, manager.ctx.SuiteCount())
}

// TestValidateSuiteFoldsConversionError 测试转换失败折叠为失败报告而非抛错
func TestValidateSuiteFoldsConversionError(t *testing.T) {
	manager := newTestManager(t)

	suite := &models.ExpectationSuite{
		Expectations: []*models.ExpectationWithMetadata{
			{
				ID:          "exp_001",
				Expectation: &models.ExpectColumnToExist{},
				Description: "缺列名",
				Source:      "业务规则",
				Severity:    models.SeverityCritical,
			},
		},
	}

	isValid, report := manager.ValidateSuite(suite)
	assert.False(t, isValid)
	assert.False(t, report.IsValid)
	assert.NotEmpty(t, report.Error)
	assert.Equal(t, "模型套件校验", report.Source)
}

// TestGetSuiteSummaryDeduplicatesSources 测试摘要统计与来源去重
func TestGetSuiteSummaryDeduplicatesSources(t *testing.T) {
	manager := newTestManager(t)

	first := buildMetaExpectation(t, models.TypeColumnToExist, map[string]interface{}{"column": "a"}, "exp_001", models.SeverityCritical)
	second := buildMetaExpectation(t, models.TypeColumnValuesToBeUnique, map[string]interface{}{"column": "b"}, "exp_002", models.SeverityCritical)
	second.Source = "数据字典"
	third := buildMetaExpectation(t, models.TypeColumnToExist, map[string]interface{}{"column": "c"}, "exp_003", models.SeverityCritical)

	summary := manager.GetSuiteSummary(&models.ExpectationSuite{
		Expectations: []*models.ExpectationWithMetadata{first, second, third},
	})

	assert.Equal(t, 3, summary.TotalExpectations)
	assert.Equal(t, 2, summary.ExpectationTypes[models.TypeColumnToExist])
	assert.Equal(t, 1, summary.ExpectationTypes[models.TypeColumnValuesToBeUnique])
	assert.Equal(t, []string{"业务规则", "数据字典"}, summary.Sources)

	// nil 套件返回空摘要
	empty := manager.GetSuiteSummary(nil)
	assert.Equal(t, 0, empty.TotalExpectations)
}
