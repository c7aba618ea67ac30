/*
 * @module service/contract/service_test
 * @description 数据契约服务测试，覆盖套件入库、结构校验、导出和运行结果记录
 * @architecture 测试层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 内存数据库初始化 -> 服务调用 -> 持久化断言
 * @rules 使用内存 SQLite 隔离测试，不依赖外部缓存与消息通道
 * @dependencies testing, testify, gorm, sqlite
 * @refs service/contract/service.go
 */

package contract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacontract-service/service/expectation"
	"datacontract-service/service/gx"
	"datacontract-service/service/models"
	"datacontract-service/testutil"
)

func newTestService(t *testing.T) (*Service, *testutil.TestDB) {
	t.Helper()
	t.Setenv("GX_CONTEXT_DIR", t.TempDir())

	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	ctx, err := gx.NewContext()
	require.NoError(t, err)

	service := NewService(tdb.DB, expectation.NewManager(ctx), nil, nil)
	return service, tdb
}

// TestCreateSuiteStoresValidatedDocument 测试套件入库时执行结构校验并完整存档
func TestCreateSuiteStoresValidatedDocument(t *testing.T) {
	service, _ := newTestService(t)

	record, err := service.CreateSuite("订单契约", "订单数据的质量契约", []string{"orders"}, testutil.SampleSuiteJSON(), "json", "tester")
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, models.ContractStatusValid, record.Status)
	assert.Equal(t, 3, record.TotalExpectations)
	assert.NotNil(t, record.LastValidatedAt)

	// 入库文档可无损还原为模型套件
	stored, err := service.GetSuite(record.ID)
	require.NoError(t, err)

	suite, err := service.LoadSuiteModel(stored)
	require.NoError(t, err)
	require.Len(t, suite.Expectations, 3)
	assert.Equal(t, "exp_001", suite.Expectations[0].ID)
	assert.Equal(t, models.TypeColumnValuesToBeBetween, suite.Expectations[2].Expectation.ExpectationType())
}

// TestCreateSuiteRejectsBrokenDocument 测试非法套件文本拒绝入库
func TestCreateSuiteRejectsBrokenDocument(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.CreateSuite("坏契约", "", nil, "{not json", "json", "tester")
	require.Error(t, err)
}

// TestCreateSuiteEmptyRulesMarkedInvalid 测试零规则套件入库后状态为 invalid
func TestCreateSuiteEmptyRulesMarkedInvalid(t *testing.T) {
	service, _ := newTestService(t)

	record, err := service.CreateSuite("空契约", "", nil, `{"expectations": []}`, "json", "tester")
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusInvalid, record.Status)
}

// TestValidateStoredSuiteRefreshesStatus 测试已入库套件重新校验并刷新状态
func TestValidateStoredSuiteRefreshesStatus(t *testing.T) {
	service, _ := newTestService(t)

	record, err := service.CreateSuite("订单契约", "", nil, testutil.SampleSuiteJSON(), "json", "tester")
	require.NoError(t, err)

	isValid, report, err := service.ValidateStoredSuite(record.ID)
	require.NoError(t, err)
	assert.True(t, isValid)
	require.NotNil(t, report.SuiteSummary)
	assert.Equal(t, 3, report.SuiteSummary.TotalExpectations)

	refreshed, err := service.GetSuite(record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusValid, refreshed.Status)
	assert.NotNil(t, refreshed.LastValidatedAt)
}

// TestListSuitesPagination 测试套件列表分页
func TestListSuitesPagination(t *testing.T) {
	service, _ := newTestService(t)

	for _, name := range []string{"契约A", "契约B", "契约C"} {
		_, err := service.CreateSuite(name, "", nil, testutil.SampleSuiteJSON(), "json", "tester")
		require.NoError(t, err)
	}

	records, total, err := service.ListSuites(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, records, 2)

	records, _, err = service.ListSuites(2, 2)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

// TestDeleteSuite 测试套件删除与缺失ID的错误返回
func TestDeleteSuite(t *testing.T) {
	service, _ := newTestService(t)

	record, err := service.CreateSuite("待删除契约", "", nil, testutil.SampleSuiteJSON(), "json", "tester")
	require.NoError(t, err)

	require.NoError(t, service.DeleteSuite(record.ID))

	_, err = service.GetSuite(record.ID)
	require.Error(t, err)

	require.Error(t, service.DeleteSuite("missing-id"))
}

// TestExportSuiteYAML 测试套件按 YAML 编码导出
func TestExportSuiteYAML(t *testing.T) {
	service, _ := newTestService(t)

	record, err := service.CreateSuite("订单契约", "", nil, testutil.SampleSuiteJSON(), "json", "tester")
	require.NoError(t, err)

	text, err := service.ExportSuite(record.ID, "yaml")
	require.NoError(t, err)
	assert.True(t, strings.Contains(text, "expectation_type:"))

	// 导出文本可再次解析
	suite, err := expectation.Deserialize(text, "yaml")
	require.NoError(t, err)
	assert.Len(t, suite.Expectations, 3)
}

// TestConvertToNativeAndBack 测试服务层双向转换入口
func TestConvertToNativeAndBack(t *testing.T) {
	service, _ := newTestService(t)

	suite, err := expectation.Deserialize(testutil.SampleSuiteJSON(), "json")
	require.NoError(t, err)

	native, err := service.ConvertToNative(suite, "orders_suite")
	require.NoError(t, err)
	assert.Equal(t, "orders_suite", native.Name)

	restored, err := service.ConvertFromNative(native)
	require.NoError(t, err)
	require.Len(t, restored.Expectations, 3)
	assert.Equal(t, "exp_001", restored.Expectations[0].ID)
}

// TestRecordValidationRunPersistsAnalysis 测试运行结果记录、分析落库与读取
func TestRecordValidationRunPersistsAnalysis(t *testing.T) {
	service, _ := newTestService(t)

	record, err := service.CreateSuite("订单契约", "", nil, testutil.SampleSuiteJSON(), "json", "tester")
	require.NoError(t, err)

	run, analysis, err := service.RecordValidationRun(context.Background(), record.ID, testutil.SampleValidationResult())
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.Equal(t, 3, run.TotalExpectations)
	assert.Equal(t, 1, run.FailedExpectations)
	assert.Equal(t, 66.7, run.SuccessPercentage)
	require.NotNil(t, analysis.FailureSummary)
	assert.Len(t, analysis.FailureSummary.WarningFailures, 1)

	// 读取时从落库文档还原分析报告
	gotRun, gotAnalysis, err := service.GetValidationRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, gotRun.ID)
	assert.Equal(t, analysis.ExecutiveSummary.SuccessPercentage, gotAnalysis.ExecutiveSummary.SuccessPercentage)
	assert.Len(t, gotAnalysis.ExpectationDetails, 3)
}

// TestRecordValidationRunUnknownSuite 测试未知套件的运行记录被拒绝
func TestRecordValidationRunUnknownSuite(t *testing.T) {
	service, _ := newTestService(t)

	_, _, err := service.RecordValidationRun(context.Background(), "missing-id", testutil.SampleValidationResult())
	require.Error(t, err)
}

// TestRevalidationSchedulerRunOnce 测试重校验调度器的单轮执行
func TestRevalidationSchedulerRunOnce(t *testing.T) {
	service, _ := newTestService(t)

	record, err := service.CreateSuite("订单契约", "", nil, testutil.SampleSuiteJSON(), "json", "tester")
	require.NoError(t, err)

	scheduler := NewRevalidationScheduler(service, "")
	scheduler.runOnce()

	refreshed, err := service.GetSuite(record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusValid, refreshed.Status)
}

// TestRevalidationSchedulerLifecycle 测试调度器启动与停止
func TestRevalidationSchedulerLifecycle(t *testing.T) {
	service, _ := newTestService(t)

	scheduler := NewRevalidationScheduler(service, "")
	require.NoError(t, scheduler.Start())
	require.Error(t, scheduler.Start())
	scheduler.Stop()
}
