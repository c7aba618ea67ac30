/*
 * @module service/expectation/serializer_test
 * @description 套件序列化层测试，覆盖 JSON/YAML 往返、文件读写和编码回退
 * @architecture 测试层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 套件构建 -> 编码 -> 解码 -> 等价断言
 * @rules 编码往返无损，格式名大小写不敏感，非 UTF-8 文件按 GBK 回退
 * @dependencies testing, testify, golang.org/x/text
 * @refs service/expectation/serializer.go
 */

package expectation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"datacontract-service/service/models"
)

// fullCoverageSuite 构建覆盖全部受支持类型的套件
func fullCoverageSuite(t *testing.T) *models.ExpectationSuite {
	t.Helper()

	cases := []struct {
		expectationType string
		kwargs          map[string]interface{}
	}{
		{models.TypeColumnToExist, map[string]interface{}{"column": "user_id"}},
		{models.TypeColumnValuesToNotBeNull, map[string]interface{}{"column": "user_id", "mostly": 0.99}},
		{models.TypeColumnValuesToBeUnique, map[string]interface{}{"column": "order_no"}},
		{models.TypeCompoundColumnsToBeUnique, map[string]interface{}{"column_list": []string{"order_no", "line_no"}}},
		{models.TypeColumnValuesToBeInSet, map[string]interface{}{"column": "status", "value_set": []interface{}{"active", "closed"}}},
		{models.TypeColumnValuesToMatchRegex, map[string]interface{}{"column": "phone", "regex": `^1\d{10}$`}},
		{models.TypeColumnValuesToBeBetween, map[string]interface{}{"column": "age", "min_value": 0.0, "max_value": 150.0}},
		{models.TypeColumnValuesToBeOfType, map[string]interface{}{"column": "amount", "type_": "float"}},
		{models.TypeColumnMeanToBeBetween, map[string]interface{}{"column": "amount", "min_value": 10.5}},
		{models.TypeTableRowCountToBeBetween, map[string]interface{}{"min_value": 1, "max_value": 100000}},
		{models.TypeColumnMinToBeBetween, map[string]interface{}{"column": "amount", "min_value": 0.0}},
		{models.TypeColumnMaxToBeBetween, map[string]interface{}{"column": "amount", "max_value": 10000.0}},
		{models.TypeColumnSumToBeBetween, map[string]interface{}{"column": "amount", "min_value": 0.0, "max_value": 1e9}},
	}

	severities := []models.Severity{models.SeverityCritical, models.SeverityWarning, models.SeverityInfo}
	expectations := make([]*models.ExpectationWithMetadata, 0, len(cases))
	for i, tc := range cases {
		exp, err := models.BuildExpectation(tc.expectationType, tc.kwargs)
		require.NoError(t, err, tc.expectationType)
		expectations = append(expectations, &models.ExpectationWithMetadata{
			ID:          "exp_" + tc.expectationType,
			Expectation: exp,
			Description: "规则 " + tc.expectationType,
			Source:      "业务规则",
			Severity:    severities[i%len(severities)],
		})
	}
	return &models.ExpectationSuite{Expectations: expectations}
}

// assertSuitesEquivalent 逐条断言两个套件等价
func assertSuitesEquivalent(t *testing.T, expected, actual *models.ExpectationSuite) {
	t.Helper()
	require.Len(t, actual.Expectations, len(expected.Expectations))
	for i, exp := range expected.Expectations {
		got := actual.Expectations[i]
		assert.Equal(t, exp.ID, got.ID)
		assert.Equal(t, exp.Description, got.Description)
		assert.Equal(t, exp.Source, got.Source)
		assert.Equal(t, exp.Severity, got.Severity)
		assert.Equal(t, exp.Expectation.ExpectationType(), got.Expectation.ExpectationType())
		assert.Equal(t, exp.Expectation.Kwargs(), got.Expectation.Kwargs())
	}
}

// TestJSONRoundTrip 测试 JSON 编码往返无损
func TestJSONRoundTrip(t *testing.T) {
	suite := fullCoverageSuite(t)

	text, err := SerializeJSON(suite)
	require.NoError(t, err)

	decoded, err := DeserializeJSON(text)
	require.NoError(t, err)
	assertSuitesEquivalent(t, suite, decoded)
}

// TestYAMLRoundTrip 测试 YAML 编码往返无损
func TestYAMLRoundTrip(t *testing.T) {
	suite := fullCoverageSuite(t)

	text, err := SerializeYAML(suite)
	require.NoError(t, err)

	decoded, err := DeserializeYAML(text)
	require.NoError(t, err)
	assertSuitesEquivalent(t, suite, decoded)
}

// TestRoundTripAppliesMostlyDefault 测试手工构建且未显式给出 mostly 的套件往返等价
func TestRoundTripAppliesMostlyDefault(t *testing.T) {
	suite := &models.ExpectationSuite{
		Expectations: []*models.ExpectationWithMetadata{
			{
				ID:          "exp_001",
				Expectation: &models.ExpectColumnValuesToNotBeNull{Column: "user_id"},
				Description: "用户ID非空",
				Source:      "业务规则",
				Severity:    models.SeverityCritical,
			},
		},
	}

	text, err := SerializeJSON(suite)
	require.NoError(t, err)
	// 序列化阶段的校验已落地缺省值
	assert.Contains(t, text, `"mostly": 1`)

	decoded, err := DeserializeJSON(text)
	require.NoError(t, err)
	assertSuitesEquivalent(t, suite, decoded)

	restored := decoded.Expectations[0].Expectation.(*models.ExpectColumnValuesToNotBeNull)
	require.NotNil(t, restored.Mostly)
	assert.Equal(t, 1.0, *restored.Mostly)
}

// TestSerializeFormatDispatch 测试格式名分发与大小写不敏感
func TestSerializeFormatDispatch(t *testing.T) {
	suite := fullCoverageSuite(t)

	for _, format := range []string{"JSON", "yaml", "YML", ""} {
		text, err := Serialize(suite, format)
		require.NoError(t, err, format)

		decoded, err := Deserialize(text, format)
		require.NoError(t, err, format)
		assert.Len(t, decoded.Expectations, len(suite.Expectations))
	}

	_, err := Serialize(suite, "toml")
	require.Error(t, err)

	var conversionErr *ConversionError
	require.True(t, errors.As(err, &conversionErr))
}

// TestDeserializeRejectsInvalidDocument 测试非法文本与非法规则均被拒绝
func TestDeserializeRejectsInvalidDocument(t *testing.T) {
	_, err := DeserializeJSON("{not json")
	require.Error(t, err)

	// 文本合法但规则违反字段约束
	_, err = DeserializeJSON(`{
		"expectations": [{
			"id": "exp_001",
			"expectation": {"expectation_type": "expect_column_values_to_not_be_null", "column": "a", "mostly": 2.0},
			"description": "非法 mostly",
			"source": "业务规则",
			"severity": "critical"
		}]
	}`)
	require.Error(t, err)
}

// TestFileRoundTripWithExtensionInference 测试文件读写与扩展名推断
func TestFileRoundTripWithExtensionInference(t *testing.T) {
	suite := fullCoverageSuite(t)
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "nested", "suite.json")
	require.NoError(t, SerializeToFile(suite, jsonPath, "json"))

	decoded, err := DeserializeFromFile(jsonPath, "")
	require.NoError(t, err)
	assertSuitesEquivalent(t, suite, decoded)

	yamlPath := filepath.Join(dir, "suite.yaml")
	require.NoError(t, SerializeToFile(suite, yamlPath, "yaml"))

	decoded, err = DeserializeFromFile(yamlPath, "")
	require.NoError(t, err)
	assertSuitesEquivalent(t, suite, decoded)
}

// TestDeserializeFromFileGBKFallback 测试非 UTF-8 套件文件按 GBK 回退解码
func TestDeserializeFromFileGBKFallback(t *testing.T) {
	suite := fullCoverageSuite(t)

	text, err := SerializeJSON(suite)
	require.NoError(t, err)

	gbkData, _, err := transform.Bytes(simplifiedchinese.GBK.NewEncoder(), []byte(text))
	require.NoError(t, err)
	// 中文描述经 GBK 编码后不再是合法 UTF-8
	require.False(t, utf8.Valid(gbkData))

	path := filepath.Join(t.TempDir(), "legacy.json")
	require.NoError(t, os.WriteFile(path, gbkData, 0o644))

	decoded, err := DeserializeFromFile(path, "json")
	require.NoError(t, err)
	assertSuitesEquivalent(t, suite, decoded)
}

// TestDeserializeFromFileMissing 测试缺失文件返回转换错误
func TestDeserializeFromFileMissing(t *testing.T) {
	_, err := DeserializeFromFile(filepath.Join(t.TempDir(), "missing.json"), "json")
	require.Error(t, err)

	var conversionErr *ConversionError
	require.True(t, errors.As(err, &conversionErr))
}
