/*
 * @module service/contract/scheduler
 * @description 契约套件定时重校验调度器，周期性对启用套件重新执行结构校验并刷新状态
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 启动调度器 -> 定时触发 -> 遍历启用套件 -> 重新校验 -> 状态更新
 * @rules 调度器只做结构校验，不触碰数据；单个套件失败不中断整轮
 * @dependencies github.com/robfig/cron/v3
 * @refs service/contract/service.go, service/init.go
 */

package contract

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// defaultRevalidationSpec 默认每天凌晨两点执行一轮重校验
const defaultRevalidationSpec = "0 0 2 * * *"

// RevalidationScheduler 契约套件重校验调度器
type RevalidationScheduler struct {
	service *Service
	cron    *cron.Cron
	spec    string
	entryID cron.EntryID
	started bool
}

// NewRevalidationScheduler 创建重校验调度器，spec 为空时使用默认调度表达式
func NewRevalidationScheduler(service *Service, spec string) *RevalidationScheduler {
	if spec == "" {
		spec = defaultRevalidationSpec
	}
	return &RevalidationScheduler{
		service: service,
		cron:    cron.New(cron.WithSeconds()),
		spec:    spec,
	}
}

// Start 启动调度器
func (rs *RevalidationScheduler) Start() error {
	if rs.started {
		return fmt.Errorf("调度器已经启动")
	}

	entryID, err := rs.cron.AddFunc(rs.spec, rs.runOnce)
	if err != nil {
		return fmt.Errorf("注册重校验任务失败: %w", err)
	}
	rs.entryID = entryID

	rs.cron.Start()
	rs.started = true
	slog.Info("契约套件重校验调度器已启动", "spec", rs.spec)
	return nil
}

// Stop 停止调度器，等待执行中的任务结束
func (rs *RevalidationScheduler) Stop() {
	if !rs.started {
		return
	}
	ctx := rs.cron.Stop()
	<-ctx.Done()
	rs.started = false
	slog.Info("契约套件重校验调度器已停止")
}

// runOnce 执行一轮重校验
func (rs *RevalidationScheduler) runOnce() {
	records, err := rs.service.ListEnabledSuites()
	if err != nil {
		slog.Error("重校验任务获取套件列表失败", "error", err)
		return
	}

	validCount := 0
	invalidCount := 0
	for _, record := range records {
		isValid, _, err := rs.service.ValidateStoredSuite(record.ID)
		if err != nil {
			slog.Error("套件重校验失败", "suite_id", record.ID, "error", err)
			continue
		}
		if isValid {
			validCount++
		} else {
			invalidCount++
		}
	}

	slog.Info("契约套件重校验完成", "total", len(records), "valid", validCount, "invalid", invalidCount)
}
