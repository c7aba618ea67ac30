/*
 * @module service/models/expectation
 * @description 数据契约期望规则模型，定义13种受支持的校验规则类型、带元数据的包装模型和套件容器
 * @architecture 数据模型层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 规则构建 -> 字段校验 -> 套件组装 -> 转换/序列化
 * @rules 构建和校验阶段检查所有字段约束并落地缺省参数，未知规则类型必须显式拒绝
 * @dependencies github.com/spf13/cast
 * @refs service/expectation/manager.go, service/expectation/serializer.go
 */

package models

import (
	"fmt"

	"github.com/spf13/cast"
)

// 受支持的期望规则类型标识
const (
	TypeColumnToExist             = "expect_column_to_exist"
	TypeColumnValuesToNotBeNull   = "expect_column_values_to_not_be_null"
	TypeColumnValuesToBeUnique    = "expect_column_values_to_be_unique"
	TypeCompoundColumnsToBeUnique = "expect_compound_columns_to_be_unique"
	TypeColumnValuesToBeInSet     = "expect_column_values_to_be_in_set"
	TypeColumnValuesToMatchRegex  = "expect_column_values_to_match_regex"
	TypeColumnValuesToBeBetween   = "expect_column_values_to_be_between"
	TypeColumnValuesToBeOfType    = "expect_column_values_to_be_of_type"
	TypeColumnMeanToBeBetween     = "expect_column_mean_to_be_between"
	TypeTableRowCountToBeBetween  = "expect_table_row_count_to_be_between"
	TypeColumnMinToBeBetween      = "expect_column_min_to_be_between"
	TypeColumnMaxToBeBetween      = "expect_column_max_to_be_between"
	TypeColumnSumToBeBetween      = "expect_column_sum_to_be_between"
)

// Severity 期望失败的严重级别
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// ValidationError 字段级校验错误，指明违反约束的字段
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("字段 %s 校验失败: %s", e.Field, e.Message)
}

// Expectation 期望规则统一接口，所有规则类型均为构建时校验的值类型
type Expectation interface {
	// ExpectationType 返回规则类型标识
	ExpectationType() string
	// Validate 校验规则自身的字段约束
	Validate() error
	// Kwargs 返回除类型标识外的全部参数，供原生引擎配置使用
	Kwargs() map[string]interface{}
}

// ExpectColumnToExist 校验数据集中存在指定列
type ExpectColumnToExist struct {
	Column string `json:"column" yaml:"column"`
}

func (e *ExpectColumnToExist) ExpectationType() string { return TypeColumnToExist }

func (e *ExpectColumnToExist) Validate() error {
	if e.Column == "" {
		return &ValidationError{Field: "column", Message: "不能为空"}
	}
	return nil
}

func (e *ExpectColumnToExist) Kwargs() map[string]interface{} {
	return map[string]interface{}{"column": e.Column}
}

// ExpectColumnValuesToNotBeNull 校验列值非空
type ExpectColumnValuesToNotBeNull struct {
	Column string   `json:"column" yaml:"column"`
	Mostly *float64 `json:"mostly,omitempty" yaml:"mostly,omitempty"`
}

func (e *ExpectColumnValuesToNotBeNull) ExpectationType() string { return TypeColumnValuesToNotBeNull }

func (e *ExpectColumnValuesToNotBeNull) Validate() error {
	if e.Column == "" {
		return &ValidationError{Field: "column", Message: "不能为空"}
	}
	return validateMostly(&e.Mostly)
}

func (e *ExpectColumnValuesToNotBeNull) Kwargs() map[string]interface{} {
	kwargs := map[string]interface{}{"column": e.Column}
	putMostly(kwargs, e.Mostly)
	return kwargs
}

// ExpectColumnValuesToBeUnique 校验列值唯一
type ExpectColumnValuesToBeUnique struct {
	Column string   `json:"column" yaml:"column"`
	Mostly *float64 `json:"mostly,omitempty" yaml:"mostly,omitempty"`
}

func (e *ExpectColumnValuesToBeUnique) ExpectationType() string { return TypeColumnValuesToBeUnique }

func (e *ExpectColumnValuesToBeUnique) Validate() error {
	if e.Column == "" {
		return &ValidationError{Field: "column", Message: "不能为空"}
	}
	return validateMostly(&e.Mostly)
}

func (e *ExpectColumnValuesToBeUnique) Kwargs() map[string]interface{} {
	kwargs := map[string]interface{}{"column": e.Column}
	putMostly(kwargs, e.Mostly)
	return kwargs
}

// ExpectCompoundColumnsToBeUnique 校验多列组合唯一
type ExpectCompoundColumnsToBeUnique struct {
	ColumnList []string `json:"column_list" yaml:"column_list"`
}

func (e *ExpectCompoundColumnsToBeUnique) ExpectationType() string {
	return TypeCompoundColumnsToBeUnique
}

func (e *ExpectCompoundColumnsToBeUnique) Validate() error {
	if len(e.ColumnList) == 0 {
		return &ValidationError{Field: "column_list", Message: "至少需要一个列名"}
	}
	for i, col := range e.ColumnList {
		if col == "" {
			return &ValidationError{Field: "column_list", Message: fmt.Sprintf("第 %d 个列名为空", i+1)}
		}
	}
	return nil
}

func (e *ExpectCompoundColumnsToBeUnique) Kwargs() map[string]interface{} {
	return map[string]interface{}{"column_list": e.ColumnList}
}

// ExpectColumnValuesToBeInSet 校验列值属于预定义集合
type ExpectColumnValuesToBeInSet struct {
	Column   string        `json:"column" yaml:"column"`
	ValueSet []interface{} `json:"value_set" yaml:"value_set"`
	Mostly   *float64      `json:"mostly,omitempty" yaml:"mostly,omitempty"`
}

func (e *ExpectColumnValuesToBeInSet) ExpectationType() string { return TypeColumnValuesToBeInSet }

func (e *ExpectColumnValuesToBeInSet) Validate() error {
	if e.Column == "" {
		return &ValidationError{Field: "column", Message: "不能为空"}
	}
	if len(e.ValueSet) == 0 {
		return &ValidationError{Field: "value_set", Message: "不能为空"}
	}
	for i, v := range e.ValueSet {
		switch v.(type) {
		case string, int, int32, int64, float32, float64:
		default:
			return &ValidationError{Field: "value_set", Message: fmt.Sprintf("第 %d 个元素类型不支持，仅允许字符串和数值", i+1)}
		}
	}
	return validateMostly(&e.Mostly)
}

func (e *ExpectColumnValuesToBeInSet) Kwargs() map[string]interface{} {
	kwargs := map[string]interface{}{"column": e.Column, "value_set": e.ValueSet}
	putMostly(kwargs, e.Mostly)
	return kwargs
}

// ExpectColumnValuesToMatchRegex 校验列值匹配正则表达式
type ExpectColumnValuesToMatchRegex struct {
	Column string   `json:"column" yaml:"column"`
	Regex  string   `json:"regex" yaml:"regex"`
	Mostly *float64 `json:"mostly,omitempty" yaml:"mostly,omitempty"`
}

func (e *ExpectColumnValuesToMatchRegex) ExpectationType() string {
	return TypeColumnValuesToMatchRegex
}

func (e *ExpectColumnValuesToMatchRegex) Validate() error {
	if e.Column == "" {
		return &ValidationError{Field: "column", Message: "不能为空"}
	}
	if e.Regex == "" {
		return &ValidationError{Field: "regex", Message: "不能为空"}
	}
	return validateMostly(&e.Mostly)
}

func (e *ExpectColumnValuesToMatchRegex) Kwargs() map[string]interface{} {
	kwargs := map[string]interface{}{"column": e.Column, "regex": e.Regex}
	putMostly(kwargs, e.Mostly)
	return kwargs
}

// ExpectColumnValuesToBeBetween 校验数值列取值落在指定区间
type ExpectColumnValuesToBeBetween struct {
	Column   string   `json:"column" yaml:"column"`
	MinValue *float64 `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty" yaml:"max_value,omitempty"`
	Mostly   *float64 `json:"mostly,omitempty" yaml:"mostly,omitempty"`
}

func (e *ExpectColumnValuesToBeBetween) ExpectationType() string {
	return TypeColumnValuesToBeBetween
}

func (e *ExpectColumnValuesToBeBetween) Validate() error {
	if e.Column == "" {
		return &ValidationError{Field: "column", Message: "不能为空"}
	}
	if err := validateBounds(e.MinValue, e.MaxValue); err != nil {
		return err
	}
	return validateMostly(&e.Mostly)
}

func (e *ExpectColumnValuesToBeBetween) Kwargs() map[string]interface{} {
	kwargs := map[string]interface{}{"column": e.Column}
	putBounds(kwargs, e.MinValue, e.MaxValue)
	putMostly(kwargs, e.Mostly)
	return kwargs
}

// ExpectColumnValuesToBeOfType 校验列值为期望的数据类型
type ExpectColumnValuesToBeOfType struct {
	Column string `json:"column" yaml:"column"`
	// Type 期望的数据类型，原生引擎参数名为 type_，保持原样传递
	Type string `json:"type_" yaml:"type_"`
}

func (e *ExpectColumnValuesToBeOfType) ExpectationType() string { return TypeColumnValuesToBeOfType }

func (e *ExpectColumnValuesToBeOfType) Validate() error {
	if e.Column == "" {
		return &ValidationError{Field: "column", Message: "不能为空"}
	}
	if e.Type == "" {
		return &ValidationError{Field: "type_", Message: "不能为空"}
	}
	return nil
}

func (e *ExpectColumnValuesToBeOfType) Kwargs() map[string]interface{} {
	return map[string]interface{}{"column": e.Column, "type_": e.Type}
}

// ExpectColumnMeanToBeBetween 校验数值列均值落在指定区间
type ExpectColumnMeanToBeBetween struct {
	Column   string   `json:"column" yaml:"column"`
	MinValue *float64 `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty" yaml:"max_value,omitempty"`
}

func (e *ExpectColumnMeanToBeBetween) ExpectationType() string { return TypeColumnMeanToBeBetween }

func (e *ExpectColumnMeanToBeBetween) Validate() error {
	if e.Column == "" {
		return &ValidationError{Field: "column", Message: "不能为空"}
	}
	return validateBounds(e.MinValue, e.MaxValue)
}

func (e *ExpectColumnMeanToBeBetween) Kwargs() map[string]interface{} {
	kwargs := map[string]interface{}{"column": e.Column}
	putBounds(kwargs, e.MinValue, e.MaxValue)
	return kwargs
}

// ExpectTableRowCountToBeBetween 校验总行数落在指定区间
type ExpectTableRowCountToBeBetween struct {
	MinValue *int64 `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	MaxValue *int64 `json:"max_value,omitempty" yaml:"max_value,omitempty"`
}

func (e *ExpectTableRowCountToBeBetween) ExpectationType() string {
	return TypeTableRowCountToBeBetween
}

func (e *ExpectTableRowCountToBeBetween) Validate() error {
	if e.MinValue == nil && e.MaxValue == nil {
		return &ValidationError{Field: "min_value", Message: "min_value 和 max_value 至少需要指定一个"}
	}
	return nil
}

func (e *ExpectTableRowCountToBeBetween) Kwargs() map[string]interface{} {
	kwargs := map[string]interface{}{}
	if e.MinValue != nil {
		kwargs["min_value"] = *e.MinValue
	}
	if e.MaxValue != nil {
		kwargs["max_value"] = *e.MaxValue
	}
	return kwargs
}

// ExpectColumnMinToBeBetween 校验列最小值落在指定区间
type ExpectColumnMinToBeBetween struct {
	Column   string   `json:"column" yaml:"column"`
	MinValue *float64 `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty" yaml:"max_value,omitempty"`
}

func (e *ExpectColumnMinToBeBetween) ExpectationType() string { return TypeColumnMinToBeBetween }

func (e *ExpectColumnMinToBeBetween) Validate() error {
	if e.Column == "" {
		return &ValidationError{Field: "column", Message: "不能为空"}
	}
	return validateBounds(e.MinValue, e.MaxValue)
}

func (e *ExpectColumnMinToBeBetween) Kwargs() map[string]interface{} {
	kwargs := map[string]interface{}{"column": e.Column}
	putBounds(kwargs, e.MinValue, e.MaxValue)
	return kwargs
}

// ExpectColumnMaxToBeBetween 校验列最大值落在指定区间
type ExpectColumnMaxToBeBetween struct {
	Column   string   `json:"column" yaml:"column"`
	MinValue *float64 `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty" yaml:"max_value,omitempty"`
}

func (e *ExpectColumnMaxToBeBetween) ExpectationType() string { return TypeColumnMaxToBeBetween }

func (e *ExpectColumnMaxToBeBetween) Validate() error {
	if e.Column == "" {
		return &ValidationError{Field: "column", Message: "不能为空"}
	}
	return validateBounds(e.MinValue, e.MaxValue)
}

func (e *ExpectColumnMaxToBeBetween) Kwargs() map[string]interface{} {
	kwargs := map[string]interface{}{"column": e.Column}
	putBounds(kwargs, e.MinValue, e.MaxValue)
	return kwargs
}

// ExpectColumnSumToBeBetween 校验列求和结果落在指定区间
type ExpectColumnSumToBeBetween struct {
	Column   string   `json:"column" yaml:"column"`
	MinValue *float64 `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty" yaml:"max_value,omitempty"`
}

func (e *ExpectColumnSumToBeBetween) ExpectationType() string { return TypeColumnSumToBeBetween }

func (e *ExpectColumnSumToBeBetween) Validate() error {
	if e.Column == "" {
		return &ValidationError{Field: "column", Message: "不能为空"}
	}
	return validateBounds(e.MinValue, e.MaxValue)
}

func (e *ExpectColumnSumToBeBetween) Kwargs() map[string]interface{} {
	kwargs := map[string]interface{}{"column": e.Column}
	putBounds(kwargs, e.MinValue, e.MaxValue)
	return kwargs
}

// validateMostly 校验 mostly 取值范围并在缺省时补默认值 1.0，超出 [0,1] 直接拒绝而非截断
// 缺省值在校验阶段落地，保证手工构建的规则与解码构建的规则往返等价
func validateMostly(mostly **float64) error {
	if *mostly == nil {
		*mostly = Float64Ptr(1.0)
		return nil
	}
	if **mostly < 0.0 || **mostly > 1.0 {
		return &ValidationError{Field: "mostly", Message: fmt.Sprintf("取值 %v 超出范围 [0, 1]", **mostly)}
	}
	return nil
}

// validateBounds 区间类规则的不变量：min_value 和 max_value 至少存在一个
func validateBounds(min, max *float64) error {
	if min == nil && max == nil {
		return &ValidationError{Field: "min_value", Message: "min_value 和 max_value 至少需要指定一个"}
	}
	return nil
}

func putMostly(kwargs map[string]interface{}, mostly *float64) {
	if mostly != nil {
		kwargs["mostly"] = *mostly
	}
}

func putBounds(kwargs map[string]interface{}, min, max *float64) {
	if min != nil {
		kwargs["min_value"] = *min
	}
	if max != nil {
		kwargs["max_value"] = *max
	}
}

// Float64Ptr 构建可选浮点参数
func Float64Ptr(v float64) *float64 { return &v }

// Int64Ptr 构建可选整型参数
func Int64Ptr(v int64) *int64 { return &v }

// expectationBuilder 根据无类型参数映射构建具体规则
type expectationBuilder func(kwargs map[string]interface{}) (Expectation, error)

// expectationBuilders 类型标识到构建函数的查找表，新增规则类型只需在此登记
var expectationBuilders = map[string]expectationBuilder{
	TypeColumnToExist: func(kwargs map[string]interface{}) (Expectation, error) {
		column, err := requiredString(kwargs, "column")
		if err != nil {
			return nil, err
		}
		return &ExpectColumnToExist{Column: column}, nil
	},
	TypeColumnValuesToNotBeNull: func(kwargs map[string]interface{}) (Expectation, error) {
		column, err := requiredString(kwargs, "column")
		if err != nil {
			return nil, err
		}
		mostly, err := optionalMostly(kwargs)
		if err != nil {
			return nil, err
		}
		return &ExpectColumnValuesToNotBeNull{Column: column, Mostly: mostly}, nil
	},
	TypeColumnValuesToBeUnique: func(kwargs map[string]interface{}) (Expectation, error) {
		column, err := requiredString(kwargs, "column")
		if err != nil {
			return nil, err
		}
		mostly, err := optionalMostly(kwargs)
		if err != nil {
			return nil, err
		}
		return &ExpectColumnValuesToBeUnique{Column: column, Mostly: mostly}, nil
	},
	TypeCompoundColumnsToBeUnique: func(kwargs map[string]interface{}) (Expectation, error) {
		raw, ok := kwargs["column_list"]
		if !ok || raw == nil {
			return nil, &ValidationError{Field: "column_list", Message: "缺少必填字段"}
		}
		columns, err := cast.ToStringSliceE(raw)
		if err != nil {
			return nil, &ValidationError{Field: "column_list", Message: "必须为字符串列表"}
		}
		if len(columns) == 0 {
			return nil, &ValidationError{Field: "column_list", Message: "至少需要一个列名"}
		}
		return &ExpectCompoundColumnsToBeUnique{ColumnList: columns}, nil
	},
	TypeColumnValuesToBeInSet: func(kwargs map[string]interface{}) (Expectation, error) {
		column, err := requiredString(kwargs, "column")
		if err != nil {
			return nil, err
		}
		raw, ok := kwargs["value_set"]
		if !ok || raw == nil {
			return nil, &ValidationError{Field: "value_set", Message: "缺少必填字段"}
		}
		values, ok := toInterfaceSlice(raw)
		if !ok || len(values) == 0 {
			return nil, &ValidationError{Field: "value_set", Message: "必须为非空列表"}
		}
		mostly, err := optionalMostly(kwargs)
		if err != nil {
			return nil, err
		}
		exp := &ExpectColumnValuesToBeInSet{Column: column, ValueSet: values, Mostly: mostly}
		if err := exp.Validate(); err != nil {
			return nil, err
		}
		return exp, nil
	},
	TypeColumnValuesToMatchRegex: func(kwargs map[string]interface{}) (Expectation, error) {
		column, err := requiredString(kwargs, "column")
		if err != nil {
			return nil, err
		}
		regex, err := requiredString(kwargs, "regex")
		if err != nil {
			return nil, err
		}
		mostly, err := optionalMostly(kwargs)
		if err != nil {
			return nil, err
		}
		return &ExpectColumnValuesToMatchRegex{Column: column, Regex: regex, Mostly: mostly}, nil
	},
	TypeColumnValuesToBeBetween: func(kwargs map[string]interface{}) (Expectation, error) {
		column, err := requiredString(kwargs, "column")
		if err != nil {
			return nil, err
		}
		min, max, err := optionalBounds(kwargs)
		if err != nil {
			return nil, err
		}
		mostly, err := optionalMostly(kwargs)
		if err != nil {
			return nil, err
		}
		exp := &ExpectColumnValuesToBeBetween{Column: column, MinValue: min, MaxValue: max, Mostly: mostly}
		if err := exp.Validate(); err != nil {
			return nil, err
		}
		return exp, nil
	},
	TypeColumnValuesToBeOfType: func(kwargs map[string]interface{}) (Expectation, error) {
		column, err := requiredString(kwargs, "column")
		if err != nil {
			return nil, err
		}
		typeName, err := requiredString(kwargs, "type_")
		if err != nil {
			return nil, err
		}
		return &ExpectColumnValuesToBeOfType{Column: column, Type: typeName}, nil
	},
	TypeColumnMeanToBeBetween: func(kwargs map[string]interface{}) (Expectation, error) {
		column, err := requiredString(kwargs, "column")
		if err != nil {
			return nil, err
		}
		min, max, err := optionalBounds(kwargs)
		if err != nil {
			return nil, err
		}
		exp := &ExpectColumnMeanToBeBetween{Column: column, MinValue: min, MaxValue: max}
		if err := exp.Validate(); err != nil {
			return nil, err
		}
		return exp, nil
	},
	TypeTableRowCountToBeBetween: func(kwargs map[string]interface{}) (Expectation, error) {
		min, err := optionalInt64(kwargs, "min_value")
		if err != nil {
			return nil, err
		}
		max, err := optionalInt64(kwargs, "max_value")
		if err != nil {
			return nil, err
		}
		exp := &ExpectTableRowCountToBeBetween{MinValue: min, MaxValue: max}
		if err := exp.Validate(); err != nil {
			return nil, err
		}
		return exp, nil
	},
	TypeColumnMinToBeBetween: func(kwargs map[string]interface{}) (Expectation, error) {
		column, err := requiredString(kwargs, "column")
		if err != nil {
			return nil, err
		}
		min, max, err := optionalBounds(kwargs)
		if err != nil {
			return nil, err
		}
		exp := &ExpectColumnMinToBeBetween{Column: column, MinValue: min, MaxValue: max}
		if err := exp.Validate(); err != nil {
			return nil, err
		}
		return exp, nil
	},
	TypeColumnMaxToBeBetween: func(kwargs map[string]interface{}) (Expectation, error) {
		column, err := requiredString(kwargs, "column")
		if err != nil {
			return nil, err
		}
		min, max, err := optionalBounds(kwargs)
		if err != nil {
			return nil, err
		}
		exp := &ExpectColumnMaxToBeBetween{Column: column, MinValue: min, MaxValue: max}
		if err := exp.Validate(); err != nil {
			return nil, err
		}
		return exp, nil
	},
	TypeColumnSumToBeBetween: func(kwargs map[string]interface{}) (Expectation, error) {
		column, err := requiredString(kwargs, "column")
		if err != nil {
			return nil, err
		}
		min, max, err := optionalBounds(kwargs)
		if err != nil {
			return nil, err
		}
		exp := &ExpectColumnSumToBeBetween{Column: column, MinValue: min, MaxValue: max}
		if err := exp.Validate(); err != nil {
			return nil, err
		}
		return exp, nil
	},
}

// BuildExpectation 根据类型标识和参数映射构建规则实例
// 未登记的类型标识和字段约束违例均返回错误，不做静默修复
func BuildExpectation(expectationType string, kwargs map[string]interface{}) (Expectation, error) {
	builder, ok := expectationBuilders[expectationType]
	if !ok {
		return nil, &ValidationError{Field: "expectation_type", Message: fmt.Sprintf("不支持的期望类型: %s", expectationType)}
	}
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}
	return builder(kwargs)
}

// SupportedExpectationTypes 返回查找表中登记的全部类型标识
func SupportedExpectationTypes() []string {
	return []string{
		TypeColumnToExist,
		TypeColumnValuesToNotBeNull,
		TypeColumnValuesToBeUnique,
		TypeCompoundColumnsToBeUnique,
		TypeColumnValuesToBeInSet,
		TypeColumnValuesToMatchRegex,
		TypeColumnValuesToBeBetween,
		TypeColumnValuesToBeOfType,
		TypeColumnMeanToBeBetween,
		TypeTableRowCountToBeBetween,
		TypeColumnMinToBeBetween,
		TypeColumnMaxToBeBetween,
		TypeColumnSumToBeBetween,
	}
}

func requiredString(kwargs map[string]interface{}, field string) (string, error) {
	raw, ok := kwargs[field]
	if !ok || raw == nil {
		return "", &ValidationError{Field: field, Message: "缺少必填字段"}
	}
	value, err := cast.ToStringE(raw)
	if err != nil || value == "" {
		return "", &ValidationError{Field: field, Message: "必须为非空字符串"}
	}
	return value, nil
}

// optionalMostly 提取 mostly 参数，缺省时按 1.0 处理
func optionalMostly(kwargs map[string]interface{}) (*float64, error) {
	raw, ok := kwargs["mostly"]
	if !ok || raw == nil {
		return Float64Ptr(1.0), nil
	}
	value, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, &ValidationError{Field: "mostly", Message: "必须为数值"}
	}
	if value < 0.0 || value > 1.0 {
		return nil, &ValidationError{Field: "mostly", Message: fmt.Sprintf("取值 %v 超出范围 [0, 1]", value)}
	}
	return &value, nil
}

func optionalBounds(kwargs map[string]interface{}) (*float64, *float64, error) {
	min, err := optionalFloat64(kwargs, "min_value")
	if err != nil {
		return nil, nil, err
	}
	max, err := optionalFloat64(kwargs, "max_value")
	if err != nil {
		return nil, nil, err
	}
	return min, max, nil
}

func optionalFloat64(kwargs map[string]interface{}, field string) (*float64, error) {
	raw, ok := kwargs[field]
	if !ok || raw == nil {
		return nil, nil
	}
	value, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, &ValidationError{Field: field, Message: "必须为数值"}
	}
	return &value, nil
}

func optionalInt64(kwargs map[string]interface{}, field string) (*int64, error) {
	raw, ok := kwargs[field]
	if !ok || raw == nil {
		return nil, nil
	}
	value, err := cast.ToInt64E(raw)
	if err != nil {
		return nil, &ValidationError{Field: field, Message: "必须为整数"}
	}
	return &value, nil
}

func toInterfaceSlice(raw interface{}) ([]interface{}, bool) {
	switch v := raw.(type) {
	case []interface{}:
		return v, true
	case []string:
		values := make([]interface{}, len(v))
		for i, s := range v {
			values[i] = s
		}
		return values, true
	case []float64:
		values := make([]interface{}, len(v))
		for i, f := range v {
			values[i] = f
		}
		return values, true
	case []int:
		values := make([]interface{}, len(v))
		for i, n := range v {
			values[i] = n
		}
		return values, true
	default:
		return nil, false
	}
}
