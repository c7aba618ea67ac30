/*
 * @module service/expectation/errors
 * @description 期望管理错误类型，区分转换错误与引擎上下文错误
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 底层错误捕获 -> 包装首个错误 -> 向调用方传播
 * @rules 转换错误包装首个底层错误并保留错误链，不吞错
 * @refs service/models/expectation.go
 */

package expectation

import "fmt"

// ConversionError 转换与序列化错误，包装首个底层错误
type ConversionError struct {
	Op  string
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func newConversionError(op string, err error) *ConversionError {
	return &ConversionError{Op: op, Err: err}
}

// EngineContextError 引擎上下文初始化失败，依赖上下文的操作无法继续
type EngineContextError struct {
	Err error
}

func (e *EngineContextError) Error() string {
	return fmt.Sprintf("校验引擎上下文初始化失败: %v", e.Err)
}

func (e *EngineContextError) Unwrap() error {
	return e.Err
}
