/*
 * @module service/expectation/schema
 * @description 期望类型字段模式渲染，为外部提示词组装组件提供逐类型的文本模式块
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 模式表查询 -> YAML 渲染 -> 文本块输出
 * @rules 模式块被下游原样拼入提示词，字段顺序必须稳定，不做反向解析
 * @dependencies gopkg.in/yaml.v3
 * @refs service/models/expectation.go
 */

package expectation

import (
	"gopkg.in/yaml.v3"

	"datacontract-service/service/models"
)

// PropertySchema 单个字段的模式描述
type PropertySchema struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"`
	Description string      `yaml:"description"`
	Default     interface{} `yaml:"default,omitempty"`
}

// ExpectationSchema 单个期望类型的字段模式
type ExpectationSchema struct {
	Title           string            `yaml:"title"`
	ExpectationType string            `yaml:"expectation_type"`
	Description     string            `yaml:"description"`
	Properties      []*PropertySchema `yaml:"properties"`
	Required        []string          `yaml:"required"`
}

var (
	columnProperty = &PropertySchema{Name: "column", Type: "string", Description: "Name of the column to validate"}
	mostlyProperty = &PropertySchema{Name: "mostly", Type: "number", Description: "Minimum fraction of values that must satisfy the rule (0.0 to 1.0)", Default: 1.0}
	minProperty    = &PropertySchema{Name: "min_value", Type: "number", Description: "Minimum allowed value (inclusive)"}
	maxProperty    = &PropertySchema{Name: "max_value", Type: "number", Description: "Maximum allowed value (inclusive)"}
)

// expectationSchemas 按受支持类型顺序排列的模式表，与转换查找表同步维护
var expectationSchemas = []*ExpectationSchema{
	{
		Title:           "ExpectColumnToExist",
		ExpectationType: models.TypeColumnToExist,
		Description:     "Validates that a specific column exists in the dataset",
		Properties:      []*PropertySchema{{Name: "column", Type: "string", Description: "Name of the column that must exist"}},
		Required:        []string{"column"},
	},
	{
		Title:           "ExpectColumnValuesToNotBeNull",
		ExpectationType: models.TypeColumnValuesToNotBeNull,
		Description:     "Validates that column values are not null",
		Properties:      []*PropertySchema{columnProperty, mostlyProperty},
		Required:        []string{"column"},
	},
	{
		Title:           "ExpectColumnValuesToBeUnique",
		ExpectationType: models.TypeColumnValuesToBeUnique,
		Description:     "Validates that all values in a column are unique",
		Properties:      []*PropertySchema{columnProperty, mostlyProperty},
		Required:        []string{"column"},
	},
	{
		Title:           "ExpectCompoundColumnsToBeUnique",
		ExpectationType: models.TypeCompoundColumnsToBeUnique,
		Description:     "Validates that combinations of multiple columns are unique",
		Properties: []*PropertySchema{
			{Name: "column_list", Type: "array[string]", Description: "List of column names that together should form unique combinations"},
		},
		Required: []string{"column_list"},
	},
	{
		Title:           "ExpectColumnValuesToBeInSet",
		ExpectationType: models.TypeColumnValuesToBeInSet,
		Description:     "Validates that column values are within a predefined set",
		Properties: []*PropertySchema{
			columnProperty,
			{Name: "value_set", Type: "array[string|number]", Description: "List of valid values"},
			mostlyProperty,
		},
		Required: []string{"column", "value_set"},
	},
	{
		Title:           "ExpectColumnValuesToMatchRegex",
		ExpectationType: models.TypeColumnValuesToMatchRegex,
		Description:     "Validates that column values match a regular expression pattern",
		Properties: []*PropertySchema{
			columnProperty,
			{Name: "regex", Type: "string", Description: "Regular expression pattern"},
			mostlyProperty,
		},
		Required: []string{"column", "regex"},
	},
	{
		Title:           "ExpectColumnValuesToBeBetween",
		ExpectationType: models.TypeColumnValuesToBeBetween,
		Description:     "Validates that numeric column values fall within a specified range, at least one bound is required",
		Properties:      []*PropertySchema{columnProperty, minProperty, maxProperty, mostlyProperty},
		Required:        []string{"column"},
	},
	{
		Title:           "ExpectColumnValuesToBeOfType",
		ExpectationType: models.TypeColumnValuesToBeOfType,
		Description:     "Validates that column values are of the expected data type",
		Properties: []*PropertySchema{
			columnProperty,
			{Name: "type_", Type: "string", Description: "Expected data type. Examples: 'int', 'float', 'str', 'bool', 'datetime'"},
		},
		Required: []string{"column", "type_"},
	},
	{
		Title:           "ExpectColumnMeanToBeBetween",
		ExpectationType: models.TypeColumnMeanToBeBetween,
		Description:     "Validates that the mean of a numeric column falls within expected bounds, at least one bound is required",
		Properties:      []*PropertySchema{columnProperty, minProperty, maxProperty},
		Required:        []string{"column"},
	},
	{
		Title:           "ExpectTableRowCountToBeBetween",
		ExpectationType: models.TypeTableRowCountToBeBetween,
		Description:     "Validates that the total number of rows falls within expected bounds, at least one bound is required",
		Properties: []*PropertySchema{
			{Name: "min_value", Type: "integer", Description: "Minimum expected number of rows"},
			{Name: "max_value", Type: "integer", Description: "Maximum expected number of rows"},
		},
		Required: []string{},
	},
	{
		Title:           "ExpectColumnMinToBeBetween",
		ExpectationType: models.TypeColumnMinToBeBetween,
		Description:     "Validates that the minimum value in a column falls within expected bounds, at least one bound is required",
		Properties:      []*PropertySchema{columnProperty, minProperty, maxProperty},
		Required:        []string{"column"},
	},
	{
		Title:           "ExpectColumnMaxToBeBetween",
		ExpectationType: models.TypeColumnMaxToBeBetween,
		Description:     "Validates that the maximum value in a column falls within expected bounds, at least one bound is required",
		Properties:      []*PropertySchema{columnProperty, minProperty, maxProperty},
		Required:        []string{"column"},
	},
	{
		Title:           "ExpectColumnSumToBeBetween",
		ExpectationType: models.TypeColumnSumToBeBetween,
		Description:     "Validates that the sum of values in a column falls within expected bounds, at least one bound is required",
		Properties:      []*PropertySchema{columnProperty, minProperty, maxProperty},
		Required:        []string{"column"},
	},
}

// GetExpectationKindsInfo 渲染全部受支持期望类型的字段模式块
// 每个类型一段 YAML 文本，由外部提示词组装组件原样使用
func GetExpectationKindsInfo() []string {
	blocks := make([]string, 0, len(expectationSchemas))
	for _, schema := range expectationSchemas {
		data, err := yaml.Marshal(schema)
		if err != nil {
			// 模式表为静态内容，序列化失败属于编程错误，跳过该块
			continue
		}
		blocks = append(blocks, string(data))
	}
	return blocks
}
