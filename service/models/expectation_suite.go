/*
 * @module service/models/expectation_suite
 * @description 期望套件容器模型，包含带元数据的规则包装，负责 JSON/YAML 两种编码下的判别式解码
 * @architecture 数据模型层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 文本解码 -> expectation_type 分发 -> 构建校验 -> 套件组装
 * @rules 解码必须复用与构建相同的字段校验，列表顺序在所有变换中保持不变
 * @dependencies encoding/json, gopkg.in/yaml.v3
 * @refs service/models/expectation.go, service/expectation/serializer.go
 */

package models

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ExpectationWithMetadata 带元数据的期望规则包装
// id 在套件内的唯一性由调用方负责，模型本身不强制
type ExpectationWithMetadata struct {
	ID          string      `json:"id" yaml:"id"`
	Expectation Expectation `json:"expectation" yaml:"expectation"`
	Description string      `json:"description" yaml:"description"`
	Source      string      `json:"source" yaml:"source"`
	Severity    Severity    `json:"severity" yaml:"severity"`
}

// Validate 校验包装自身及内部规则
func (e *ExpectationWithMetadata) Validate() error {
	if e.ID == "" {
		return &ValidationError{Field: "id", Message: "不能为空"}
	}
	if e.Description == "" {
		return &ValidationError{Field: "description", Message: "不能为空"}
	}
	if e.Source == "" {
		return &ValidationError{Field: "source", Message: "不能为空"}
	}
	switch e.Severity {
	case SeverityCritical, SeverityWarning, SeverityInfo:
	default:
		return &ValidationError{Field: "severity", Message: fmt.Sprintf("不支持的严重级别: %s", e.Severity)}
	}
	if e.Expectation == nil {
		return &ValidationError{Field: "expectation", Message: "不能为空"}
	}
	return e.Expectation.Validate()
}

// expectationWithMetadataAlias 解码中转结构，expectation 字段延迟到类型分发后再构建
type expectationWithMetadataAlias struct {
	ID          string                 `json:"id" yaml:"id"`
	Expectation map[string]interface{} `json:"expectation" yaml:"expectation"`
	Description string                 `json:"description" yaml:"description"`
	Source      string                 `json:"source" yaml:"source"`
	Severity    string                 `json:"severity" yaml:"severity"`
}

func (e *ExpectationWithMetadata) fromAlias(alias *expectationWithMetadataAlias) error {
	if alias.Expectation == nil {
		return &ValidationError{Field: "expectation", Message: "缺少必填字段"}
	}
	rawType, ok := alias.Expectation["expectation_type"]
	if !ok {
		return &ValidationError{Field: "expectation_type", Message: "缺少必填字段"}
	}
	expectationType, ok := rawType.(string)
	if !ok {
		return &ValidationError{Field: "expectation_type", Message: "必须为字符串"}
	}

	kwargs := make(map[string]interface{}, len(alias.Expectation))
	for key, value := range alias.Expectation {
		if key != "expectation_type" {
			kwargs[key] = value
		}
	}

	expectation, err := BuildExpectation(expectationType, kwargs)
	if err != nil {
		return err
	}

	severity := Severity(alias.Severity)
	if severity == "" {
		severity = SeverityCritical
	}

	e.ID = alias.ID
	e.Expectation = expectation
	e.Description = alias.Description
	e.Source = alias.Source
	e.Severity = severity
	return e.Validate()
}

// MarshalJSON 将内部规则按具体类型序列化，并补充 expectation_type 判别字段
func (e *ExpectationWithMetadata) MarshalJSON() ([]byte, error) {
	expectation, err := marshalExpectationObject(e.Expectation)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]interface{}{
		"id":          e.ID,
		"expectation": expectation,
		"description": e.Description,
		"source":      e.Source,
		"severity":    e.Severity,
	})
}

// UnmarshalJSON 基于 expectation_type 判别字段分发到具体规则类型
func (e *ExpectationWithMetadata) UnmarshalJSON(data []byte) error {
	var alias expectationWithMetadataAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	return e.fromAlias(&alias)
}

// MarshalYAML 与 JSON 编码保持同一字段布局
func (e *ExpectationWithMetadata) MarshalYAML() (interface{}, error) {
	expectation, err := marshalExpectationObject(e.Expectation)
	if err != nil {
		return nil, err
	}
	return &struct {
		ID          string                 `yaml:"id"`
		Expectation map[string]interface{} `yaml:"expectation"`
		Description string                 `yaml:"description"`
		Source      string                 `yaml:"source"`
		Severity    Severity               `yaml:"severity"`
	}{
		ID:          e.ID,
		Expectation: expectation,
		Description: e.Description,
		Source:      e.Source,
		Severity:    e.Severity,
	}, nil
}

// UnmarshalYAML 基于 expectation_type 判别字段分发到具体规则类型
func (e *ExpectationWithMetadata) UnmarshalYAML(value *yaml.Node) error {
	var alias expectationWithMetadataAlias
	if err := value.Decode(&alias); err != nil {
		return err
	}
	return e.fromAlias(&alias)
}

// marshalExpectationObject 将具体规则降级为键值映射，缺省字段不输出
func marshalExpectationObject(expectation Expectation) (map[string]interface{}, error) {
	if expectation == nil {
		return nil, &ValidationError{Field: "expectation", Message: "不能为空"}
	}
	data, err := json.Marshal(expectation)
	if err != nil {
		return nil, err
	}
	object := map[string]interface{}{}
	if err := json.Unmarshal(data, &object); err != nil {
		return nil, err
	}
	object["expectation_type"] = expectation.ExpectationType()
	return object, nil
}

// ExpectationSuite 期望套件容器，持有带元数据的规则有序列表
type ExpectationSuite struct {
	Expectations []*ExpectationWithMetadata `json:"expectations" yaml:"expectations"`
}

// Validate 逐条校验套件内的规则包装
func (s *ExpectationSuite) Validate() error {
	for i, exp := range s.Expectations {
		if exp == nil {
			return &ValidationError{Field: "expectations", Message: fmt.Sprintf("第 %d 条规则为空", i+1)}
		}
		if err := exp.Validate(); err != nil {
			return fmt.Errorf("第 %d 条规则非法: %w", i+1, err)
		}
	}
	return nil
}
