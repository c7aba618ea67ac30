/*
 * @module service/gx
 * @description 外部校验引擎的原生配置形态，包含期望套件、期望配置和失败严重级别枚举
 * @architecture 适配器模式 - 面向引擎的瞬态投影，不作为数据源头
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 模型转换 -> 原生配置生成 -> 引擎执行
 * @rules 原生形态只承载引擎所需字段，反向转换时引擎端默认值被模型层丢弃
 * @refs service/expectation/manager.go
 */

package gx

// FailureSeverity 引擎侧三级严重级别枚举
type FailureSeverity string

const (
	FailureSeverityCritical FailureSeverity = "CRITICAL"
	FailureSeverityWarning  FailureSeverity = "WARNING"
	FailureSeverityInfo     FailureSeverity = "INFO"
)

// ExpectationConfiguration 引擎原生期望配置
type ExpectationConfiguration struct {
	Type     string                 `json:"type"`
	Kwargs   map[string]interface{} `json:"kwargs"`
	Meta     map[string]interface{} `json:"meta"`
	Severity FailureSeverity        `json:"severity"`
}

// NewExpectationConfiguration 创建引擎原生期望配置
func NewExpectationConfiguration(expectationType string, kwargs, meta map[string]interface{}, severity FailureSeverity) *ExpectationConfiguration {
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return &ExpectationConfiguration{
		Type:     expectationType,
		Kwargs:   kwargs,
		Meta:     meta,
		Severity: severity,
	}
}

// ExpectationSuite 引擎原生期望套件
type ExpectationSuite struct {
	Name         string                      `json:"name"`
	Expectations []*ExpectationConfiguration `json:"expectations"`
	Meta         map[string]interface{}      `json:"meta"`
}

// NewExpectationSuite 创建引擎原生期望套件，保持传入的规则顺序
func NewExpectationSuite(name string, expectations []*ExpectationConfiguration, meta map[string]interface{}) *ExpectationSuite {
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return &ExpectationSuite{
		Name:         name,
		Expectations: expectations,
		Meta:         meta,
	}
}
