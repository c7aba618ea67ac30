/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify, time
 * @refs service/models
 */

package testutil

import (
	"bytes"
	"datacontract-service/service/models"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.DataContractSuite{},
		&models.ContractValidationRun{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	// 清空所有表的数据
	tables := []string{
		"data_contract_suites",
		"contract_validation_runs",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// ContractSuiteOption 契约套件选项函数类型
type ContractSuiteOption func(*models.DataContractSuite)

// CreateContractSuite 创建测试契约套件记录
func (f *TestDataFactory) CreateContractSuite(opts ...ContractSuiteOption) *models.DataContractSuite {
	record := &models.DataContractSuite{
		ID:          generateID("dcs"),
		Name:        "测试契约套件_" + generateSuffix(),
		Description: "这是一个测试契约套件",
		SuiteDocument: models.JSONB{
			"expectations": []interface{}{
				map[string]interface{}{
					"id": "exp_001",
					"expectation": map[string]interface{}{
						"expectation_type": "expect_column_to_exist",
						"column":           "user_id",
					},
					"description": "用户ID列必须存在",
					"source":      "业务规则",
					"severity":    "critical",
				},
			},
		},
		Format:            "json",
		Status:            models.ContractStatusValid,
		TotalExpectations: 1,
		IsEnabled:         true,
		CreatedBy:         "test",
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(record)
	}

	err := f.DB.Create(record).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test contract suite: %v", err))
	}

	return record
}

// ValidationRunOption 校验运行选项函数类型
type ValidationRunOption func(*models.ContractValidationRun)

// CreateValidationRun 创建测试校验运行记录
func (f *TestDataFactory) CreateValidationRun(suiteID string, opts ...ValidationRunOption) *models.ContractValidationRun {
	run := &models.ContractValidationRun{
		ID:                     generateID("cvr"),
		SuiteID:                suiteID,
		SuiteName:              "测试契约套件",
		Status:                 models.RunStatusPassed,
		TotalExpectations:      1,
		SuccessfulExpectations: 1,
		FailedExpectations:     0,
		SuccessPercentage:      100,
		RawResult:              models.JSONB{"success": true},
		Analysis:               models.JSONB{},
		RunAt:                  time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(run)
	}

	err := f.DB.Create(run).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test validation run: %v", err))
	}

	return run
}

// SampleSuiteJSON 返回覆盖常见期望类型的套件JSON文本
func SampleSuiteJSON() string {
	return `{
  "expectations": [
    {
      "id": "exp_001",
      "expectation": {
        "expectation_type": "expect_column_to_exist",
        "column": "user_id"
      },
      "description": "用户ID列必须存在",
      "source": "业务规则",
      "severity": "critical"
    },
    {
      "id": "exp_002",
      "expectation": {
        "expectation_type": "expect_column_values_to_not_be_null",
        "column": "user_id",
        "mostly": 0.99
      },
      "description": "用户ID不能为空",
      "source": "业务规则",
      "severity": "critical"
    },
    {
      "id": "exp_003",
      "expectation": {
        "expectation_type": "expect_column_values_to_be_between",
        "column": "age",
        "min_value": 0,
        "max_value": 150
      },
      "description": "年龄范围约束",
      "source": "数据字典",
      "severity": "warning"
    }
  ]
}`
}

// SampleValidationResult 返回模拟的引擎原始校验结果
func SampleValidationResult() map[string]interface{} {
	return map[string]interface{}{
		"success": false,
		"statistics": map[string]interface{}{
			"evaluated_expectations":    float64(3),
			"successful_expectations":   float64(2),
			"unsuccessful_expectations": float64(1),
			"success_percent":           float64(66.7),
		},
		"meta": map[string]interface{}{
			"validation_time":        "2025-06-01T02:00:00Z",
			"expectation_suite_name": "test_suite",
		},
		"results": []interface{}{
			map[string]interface{}{
				"success": true,
				"expectation_config": map[string]interface{}{
					"type":     "expect_column_to_exist",
					"kwargs":   map[string]interface{}{"column": "user_id"},
					"severity": "critical",
					"meta": map[string]interface{}{
						"expectation_id": "exp_001",
						"description":    "用户ID列必须存在",
					},
				},
				"result": map[string]interface{}{},
			},
			map[string]interface{}{
				"success": true,
				"expectation_config": map[string]interface{}{
					"type":     "expect_column_values_to_not_be_null",
					"kwargs":   map[string]interface{}{"column": "user_id", "mostly": float64(0.99)},
					"severity": "critical",
					"meta": map[string]interface{}{
						"expectation_id": "exp_002",
						"description":    "用户ID不能为空",
					},
				},
				"result": map[string]interface{}{
					"element_count":    float64(1000),
					"unexpected_count": float64(2),
				},
			},
			map[string]interface{}{
				"success": false,
				"expectation_config": map[string]interface{}{
					"type":     "expect_column_values_to_be_between",
					"kwargs":   map[string]interface{}{"column": "age", "min_value": float64(0), "max_value": float64(150)},
					"severity": "warning",
					"meta": map[string]interface{}{
						"expectation_id": "exp_003",
						"description":    "年龄范围约束",
					},
				},
				"result": map[string]interface{}{
					"element_count":                 float64(1000),
					"unexpected_count":              float64(45),
					"unexpected_percent":            float64(4.5),
					"partial_unexpected_list":       []interface{}{float64(-1), float64(999)},
					"partial_unexpected_index_list": []interface{}{float64(10), float64(42)},
				},
			},
		},
	}
}

// 辅助函数
func generateID(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixNano(), generateSuffix())
}

func generateSuffix() string {
	return fmt.Sprintf("%d", time.Now().UnixNano()%100000)
}

// HTTPTestHelper HTTP测试辅助工具
type HTTPTestHelper struct{}

// NewHTTPTestHelper 创建HTTP测试辅助工具
func NewHTTPTestHelper() *HTTPTestHelper {
	return &HTTPTestHelper{}
}

// CreateJSONRequest 创建JSON请求
func (h *HTTPTestHelper) CreateJSONRequest(method, url string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// AssertJSONResponse 断言JSON响应
func (h *HTTPTestHelper) AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedBody interface{}) {
	assert.Equal(t, expectedStatus, w.Code)

	if expectedBody != nil {
		var actualBody interface{}
		err := json.Unmarshal(w.Body.Bytes(), &actualBody)
		assert.NoError(t, err)

		expectedJSON, _ := json.Marshal(expectedBody)
		actualJSON, _ := json.Marshal(actualBody)

		assert.JSONEq(t, string(expectedJSON), string(actualJSON))
	}
}
