/*
 * @module service/models/contract_models
 * @description 数据契约持久化模型，包含契约套件记录和校验运行记录
 * @architecture 数据模型层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 套件入库 -> 结构校验 -> 运行结果记录 -> 质量报告
 * @dependencies gorm.io/gorm, github.com/google/uuid, github.com/lib/pq
 * @refs service/contract/service.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// 契约套件状态
const (
	ContractStatusDraft   = "draft"
	ContractStatusValid   = "valid"
	ContractStatusInvalid = "invalid"
)

// DataContractSuite 数据契约套件记录，套件文档以 JSONB 存储
type DataContractSuite struct {
	ID                string         `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name              string         `gorm:"type:varchar(100);not null;index" json:"name"`
	Description       string         `gorm:"type:text" json:"description"`
	SuiteDocument     JSONB          `gorm:"type:jsonb" json:"suite_document"`
	Format            string         `gorm:"type:varchar(10);default:json" json:"format"`  // json, yaml
	Status            string         `gorm:"type:varchar(20);default:draft" json:"status"` // draft, valid, invalid
	Tags              pq.StringArray `gorm:"type:text[]" json:"tags"`
	TotalExpectations int            `json:"total_expectations"`
	LastValidation    JSONB          `gorm:"type:jsonb" json:"last_validation"`
	LastValidatedAt   *time.Time     `json:"last_validated_at,omitempty"`
	IsEnabled         bool           `gorm:"default:true" json:"is_enabled"`
	CreatedAt         time.Time      `json:"created_at"`
	CreatedBy         string         `gorm:"type:varchar(50)" json:"created_by"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// TableName 指定表名
func (DataContractSuite) TableName() string {
	return "data_contract_suites"
}

// BeforeCreate 创建前钩子
func (d *DataContractSuite) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// 校验运行状态
const (
	RunStatusPassed = "passed"
	RunStatusFailed = "failed"
)

// ContractValidationRun 契约校验运行记录，保存引擎原始结果和分析报告
type ContractValidationRun struct {
	ID                     string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	SuiteID                string    `gorm:"type:varchar(50);not null;index" json:"suite_id"`
	SuiteName              string    `gorm:"type:varchar(100)" json:"suite_name"`
	Status                 string    `gorm:"type:varchar(20);not null" json:"status"` // passed, failed
	TotalExpectations      int       `json:"total_expectations"`
	SuccessfulExpectations int       `json:"successful_expectations"`
	FailedExpectations     int       `json:"failed_expectations"`
	SuccessPercentage      float64   `json:"success_percentage"`
	RawResult              JSONB     `gorm:"type:jsonb" json:"raw_result"`
	Analysis               JSONB     `gorm:"type:jsonb" json:"analysis"`
	RunAt                  time.Time `json:"run_at"`
	CreatedAt              time.Time `json:"created_at"`
}

// TableName 指定表名
func (ContractValidationRun) TableName() string {
	return "contract_validation_runs"
}

// BeforeCreate 创建前钩子
func (c *ContractValidationRun) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
