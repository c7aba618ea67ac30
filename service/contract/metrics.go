/*
 * @module service/contract/metrics
 * @description 数据契约服务Prometheus指标，统计转换、校验和运行分析次数
 * @architecture 监控层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 业务操作 -> 指标递增 -> /metrics 暴露
 * @dependencies github.com/prometheus/client_golang
 * @refs main.go, service/contract/service.go
 */

package contract

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// conversionsTotal 套件转换次数，direction 取 to_native / from_native
	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datacontract_suite_conversions_total",
		Help: "契约套件与原生形态之间的转换总次数",
	}, []string{"direction", "result"})

	// validationsTotal 套件结构校验次数
	validationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datacontract_suite_validations_total",
		Help: "契约套件结构校验总次数",
	}, []string{"result"})

	// validationRunsTotal 运行结果分析次数
	validationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datacontract_validation_runs_total",
		Help: "契约校验运行结果分析总次数",
	}, []string{"status"})

	// storedSuites 当前持久化的契约套件数量
	storedSuites = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "datacontract_stored_suites",
		Help: "当前持久化的契约套件数量",
	})
)
