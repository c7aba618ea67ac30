/*
 * @module service/contract/service
 * @description 数据契约服务，负责契约套件的持久化管理、结构校验、导入导出和运行结果记录
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 套件入库 -> 结构校验 -> 状态更新 -> 运行结果分析 -> 告警发布
 * @rules 套件文档以模型序列化形态入库，入库前必须通过结构校验流程
 * @dependencies gorm.io/gorm, datacontract-service/service/expectation
 * @refs service/contract/scheduler.go, api/controllers/contract_controller.go
 */

package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"datacontract-service/service/cache"
	"datacontract-service/service/expectation"
	"datacontract-service/service/gx"
	"datacontract-service/service/models"
	"datacontract-service/service/notifier"
)

// Service 数据契约服务
type Service struct {
	db       *gorm.DB
	manager  *expectation.Manager
	cache    *cache.ReportCache
	notifier *notifier.AlertNotifier
}

// NewService 创建数据契约服务实例，cache 和 notifier 为可选依赖
func NewService(db *gorm.DB, manager *expectation.Manager, reportCache *cache.ReportCache, alertNotifier *notifier.AlertNotifier) *Service {
	return &Service{
		db:       db,
		manager:  manager,
		cache:    reportCache,
		notifier: alertNotifier,
	}
}

// Manager 返回底层期望套件管理器
func (s *Service) Manager() *expectation.Manager {
	return s.manager
}

// ConvertToNative 将模型套件转换为引擎原生套件并记录转换指标
func (s *Service) ConvertToNative(suite *models.ExpectationSuite, suiteName string) (*gx.ExpectationSuite, error) {
	native, err := s.manager.ToNativeSuite(suite, suiteName)
	conversionsTotal.WithLabelValues("to_native", conversionResultLabel(err)).Inc()
	return native, err
}

// ConvertFromNative 将引擎原生套件还原为模型套件并记录转换指标
func (s *Service) ConvertFromNative(native *gx.ExpectationSuite) (*models.ExpectationSuite, error) {
	suite, err := s.manager.FromNativeSuite(native)
	conversionsTotal.WithLabelValues("from_native", conversionResultLabel(err)).Inc()
	return suite, err
}

// CreateSuite 解析并入库契约套件，入库时执行结构校验并记录结果
func (s *Service) CreateSuite(name, description string, tags []string, content, format, createdBy string) (*models.DataContractSuite, error) {
	suite, err := expectation.Deserialize(content, format)
	if err != nil {
		return nil, err
	}

	document, err := suiteToDocument(suite)
	if err != nil {
		return nil, err
	}

	isValid, report := s.manager.ValidateSuite(suite)
	validationsTotal.WithLabelValues(validationResultLabel(isValid)).Inc()

	status := models.ContractStatusValid
	if !isValid {
		status = models.ContractStatusInvalid
	}

	now := time.Now()
	record := &models.DataContractSuite{
		Name:              name,
		Description:       description,
		SuiteDocument:     document,
		Format:            format,
		Status:            status,
		Tags:              tags,
		TotalExpectations: len(suite.Expectations),
		LastValidation:    reportToJSONB(report),
		LastValidatedAt:   &now,
		IsEnabled:         true,
		CreatedBy:         createdBy,
	}

	if err := s.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("契约套件入库失败: %w", err)
	}

	storedSuites.Inc()
	slog.Info("契约套件已创建", "suite_id", record.ID, "name", name, "status", status)
	return record, nil
}

// GetSuite 按ID获取契约套件记录
func (s *Service) GetSuite(id string) (*models.DataContractSuite, error) {
	var record models.DataContractSuite
	if err := s.db.First(&record, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("获取契约套件失败: %w", err)
	}
	return &record, nil
}

// ListSuites 分页获取契约套件列表
func (s *Service) ListSuites(page, size int) ([]models.DataContractSuite, int64, error) {
	var records []models.DataContractSuite
	var total int64

	if err := s.db.Model(&models.DataContractSuite{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计契约套件数量失败: %w", err)
	}

	offset := (page - 1) * size
	if err := s.db.Order("created_at DESC").Offset(offset).Limit(size).Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("获取契约套件列表失败: %w", err)
	}

	return records, total, nil
}

// DeleteSuite 删除契约套件记录
func (s *Service) DeleteSuite(id string) error {
	result := s.db.Delete(&models.DataContractSuite{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("删除契约套件失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("契约套件不存在: %s", id)
	}
	storedSuites.Dec()
	return nil
}

// LoadSuiteModel 将记录中的套件文档还原为模型套件
func (s *Service) LoadSuiteModel(record *models.DataContractSuite) (*models.ExpectationSuite, error) {
	if record == nil || record.SuiteDocument == nil {
		return nil, fmt.Errorf("契约套件文档为空")
	}

	data, err := json.Marshal(record.SuiteDocument)
	if err != nil {
		return nil, fmt.Errorf("契约套件文档读取失败: %w", err)
	}
	return expectation.DeserializeJSON(string(data))
}

// ValidateStoredSuite 对已入库套件重新执行结构校验并更新状态
func (s *Service) ValidateStoredSuite(id string) (bool, *expectation.SuiteValidationReport, error) {
	record, err := s.GetSuite(id)
	if err != nil {
		return false, nil, err
	}

	suite, err := s.LoadSuiteModel(record)
	if err != nil {
		return false, nil, err
	}

	isValid, report := s.manager.ValidateSuite(suite)
	validationsTotal.WithLabelValues(validationResultLabel(isValid)).Inc()

	status := models.ContractStatusValid
	if !isValid {
		status = models.ContractStatusInvalid
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":            status,
		"last_validation":   reportToJSONB(report),
		"last_validated_at": &now,
	}
	if err := s.db.Model(record).Updates(updates).Error; err != nil {
		return isValid, report, fmt.Errorf("更新契约套件校验状态失败: %w", err)
	}

	slog.Info("契约套件完成重新校验", "suite_id", id, "is_valid", isValid)
	return isValid, report, nil
}

// ExportSuite 将已入库套件导出为指定编码的文本
func (s *Service) ExportSuite(id, format string) (string, error) {
	record, err := s.GetSuite(id)
	if err != nil {
		return "", err
	}

	suite, err := s.LoadSuiteModel(record)
	if err != nil {
		return "", err
	}

	return expectation.Serialize(suite, format)
}

// RecordValidationRun 记录一次校验运行：分析原始结果、持久化、写缓存并在必要时发布告警
func (s *Service) RecordValidationRun(ctx context.Context, suiteID string, rawResult map[string]interface{}) (*models.ContractValidationRun, *expectation.ValidationAnalysis, error) {
	record, err := s.GetSuite(suiteID)
	if err != nil {
		return nil, nil, err
	}

	analysis := expectation.AnalyzeValidationResult(rawResult)
	summary := analysis.ExecutiveSummary

	status := models.RunStatusPassed
	if !summary.OverallSuccess {
		status = models.RunStatusFailed
	}
	validationRunsTotal.WithLabelValues(status).Inc()

	analysisDocument, err := analysisToJSONB(analysis)
	if err != nil {
		return nil, nil, err
	}

	run := &models.ContractValidationRun{
		SuiteID:                suiteID,
		SuiteName:              record.Name,
		Status:                 status,
		TotalExpectations:      summary.TotalExpectations,
		SuccessfulExpectations: summary.SuccessfulExpectations,
		FailedExpectations:     summary.FailedExpectations,
		SuccessPercentage:      summary.SuccessPercentage,
		RawResult:              models.JSONB(rawResult),
		Analysis:               analysisDocument,
		RunAt:                  time.Now(),
	}

	if err := s.db.Create(run).Error; err != nil {
		return nil, nil, fmt.Errorf("校验运行记录入库失败: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetAnalysis(ctx, run.ID, analysis); err != nil {
			slog.Warn("分析报告写入缓存失败", "run_id", run.ID, "error", err)
		}
	}

	if len(analysis.FailureSummary.CriticalFailures) > 0 {
		s.publishAlert(ctx, record, run, analysis)
	}

	slog.Info("校验运行已记录", "run_id", run.ID, "suite_id", suiteID, "status", status)
	return run, analysis, nil
}

// GetValidationRun 获取校验运行记录及其分析报告，优先读缓存
func (s *Service) GetValidationRun(ctx context.Context, runID string) (*models.ContractValidationRun, *expectation.ValidationAnalysis, error) {
	var run models.ContractValidationRun
	if err := s.db.First(&run, "id = ?", runID).Error; err != nil {
		return nil, nil, fmt.Errorf("获取校验运行记录失败: %w", err)
	}

	var analysis expectation.ValidationAnalysis
	if s.cache != nil {
		hit, err := s.cache.GetAnalysis(ctx, runID, &analysis)
		if err != nil {
			slog.Warn("分析报告读取缓存失败", "run_id", runID, "error", err)
		} else if hit {
			return &run, &analysis, nil
		}
	}

	data, err := json.Marshal(run.Analysis)
	if err != nil {
		return nil, nil, fmt.Errorf("分析报告读取失败: %w", err)
	}
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, nil, fmt.Errorf("分析报告解析失败: %w", err)
	}
	return &run, &analysis, nil
}

// ListEnabledSuites 获取全部启用状态的契约套件，供调度器重新校验
func (s *Service) ListEnabledSuites() ([]models.DataContractSuite, error) {
	var records []models.DataContractSuite
	if err := s.db.Where("is_enabled = ?", true).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("获取启用契约套件失败: %w", err)
	}
	return records, nil
}

// publishAlert 发布严重失败告警，发布失败只记日志不影响主流程
func (s *Service) publishAlert(ctx context.Context, record *models.DataContractSuite, run *models.ContractValidationRun, analysis *expectation.ValidationAnalysis) {
	if s.notifier == nil {
		return
	}

	alert := &notifier.QualityAlert{
		SuiteID:            record.ID,
		SuiteName:          record.Name,
		RunID:              run.ID,
		Status:             run.Status,
		FailedExpectations: run.FailedExpectations,
		CriticalFailures:   analysis.FailureSummary.CriticalFailures,
		TriggeredAt:        time.Now(),
	}
	if err := s.notifier.Publish(ctx, alert); err != nil {
		slog.Error("质量告警发布失败", "suite_id", record.ID, "run_id", run.ID, "error", err)
	}
}

// suiteToDocument 将模型套件降级为 JSONB 文档
func suiteToDocument(suite *models.ExpectationSuite) (models.JSONB, error) {
	data, err := json.Marshal(suite)
	if err != nil {
		return nil, fmt.Errorf("契约套件文档生成失败: %w", err)
	}
	document := models.JSONB{}
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("契约套件文档生成失败: %w", err)
	}
	return document, nil
}

func reportToJSONB(report *expectation.SuiteValidationReport) models.JSONB {
	data, err := json.Marshal(report)
	if err != nil {
		return nil
	}
	document := models.JSONB{}
	if err := json.Unmarshal(data, &document); err != nil {
		return nil
	}
	return document
}

func analysisToJSONB(analysis *expectation.ValidationAnalysis) (models.JSONB, error) {
	data, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("分析报告序列化失败: %w", err)
	}
	document := models.JSONB{}
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("分析报告序列化失败: %w", err)
	}
	return document, nil
}

func validationResultLabel(isValid bool) string {
	if isValid {
		return "valid"
	}
	return "invalid"
}

func conversionResultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
