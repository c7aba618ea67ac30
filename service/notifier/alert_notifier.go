/*
 * @module service/notifier/alert_notifier
 * @description 质量告警通知器，校验运行出现严重失败时向Kafka平台总线和MQTT边缘看板发布告警
 * @architecture 适配器模式 - 封装消息中间件客户端，提供统一的告警发布接口
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 告警构建 -> JSON序列化 -> Kafka/MQTT发布
 * @rules 两条通道相互独立，单一通道失败不阻塞另一通道，未配置的通道跳过
 * @dependencies github.com/segmentio/kafka-go, github.com/eclipse/paho.mqtt.golang
 * @refs service/contract/service.go, service/expectation/analyzer.go
 */

package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/segmentio/kafka-go"

	"datacontract-service/service/expectation"
)

// QualityAlert 质量告警事件
type QualityAlert struct {
	SuiteID            string                    `json:"suite_id"`
	SuiteName          string                    `json:"suite_name"`
	RunID              string                    `json:"run_id"`
	Status             string                    `json:"status"`
	FailedExpectations int                       `json:"failed_expectations"`
	CriticalFailures   []*expectation.FailureRef `json:"critical_failures"`
	TriggeredAt        time.Time                 `json:"triggered_at"`
}

// AlertNotifier 质量告警通知器
type AlertNotifier struct {
	kafkaWriter *kafka.Writer
	mqttClient  mqtt.Client
	mqttTopic   string
	mutex       sync.Mutex
}

// NewAlertNotifier 从环境变量创建告警通知器
// KAFKA_BROKERS 为空时不启用Kafka通道，MQTT_BROKER 为空时不启用MQTT通道
func NewAlertNotifier() *AlertNotifier {
	notifier := &AlertNotifier{}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		topic := getEnvWithDefault("KAFKA_ALERT_TOPIC", "data-contract-quality-alerts")
		notifier.kafkaWriter = &kafka.Writer{
			Addr:         kafka.TCP(strings.Split(brokers, ",")...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 100 * time.Millisecond,
		}
		slog.Info("质量告警Kafka通道已启用", "brokers", brokers, "topic", topic)
	}

	if broker := os.Getenv("MQTT_BROKER"); broker != "" {
		notifier.mqttTopic = getEnvWithDefault("MQTT_ALERT_TOPIC", "datacontract/quality/alerts")

		opts := mqtt.NewClientOptions()
		opts.AddBroker(broker)
		opts.SetClientID(getEnvWithDefault("MQTT_CLIENT_ID", "datacontract-service"))
		if username := os.Getenv("MQTT_USERNAME"); username != "" {
			opts.SetUsername(username)
			opts.SetPassword(os.Getenv("MQTT_PASSWORD"))
		}
		opts.SetAutoReconnect(true)
		opts.SetConnectRetry(true)

		client := mqtt.NewClient(opts)
		if token := client.Connect(); token.WaitTimeout(5*time.Second) && token.Error() != nil {
			slog.Error("MQTT连接失败，MQTT告警通道不可用", "broker", broker, "error", token.Error())
		} else {
			notifier.mqttClient = client
			slog.Info("质量告警MQTT通道已启用", "broker", broker, "topic", notifier.mqttTopic)
		}
	}

	return notifier
}

// Publish 发布质量告警，两条通道独立发送互不阻塞
func (n *AlertNotifier) Publish(ctx context.Context, alert *QualityAlert) error {
	if n == nil || alert == nil {
		return nil
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("告警序列化失败: %w", err)
	}

	n.mutex.Lock()
	defer n.mutex.Unlock()

	var firstErr error

	if n.kafkaWriter != nil {
		message := kafka.Message{
			Key:   []byte(alert.SuiteID),
			Value: payload,
			Time:  time.Now(),
		}
		if err := n.kafkaWriter.WriteMessages(ctx, message); err != nil {
			slog.Error("Kafka告警发布失败", "suite_id", alert.SuiteID, "error", err)
			firstErr = fmt.Errorf("Kafka告警发布失败: %w", err)
		}
	}

	if n.mqttClient != nil && n.mqttClient.IsConnected() {
		token := n.mqttClient.Publish(n.mqttTopic, 1, false, payload)
		if token.WaitTimeout(3*time.Second) && token.Error() != nil {
			slog.Error("MQTT告警发布失败", "suite_id", alert.SuiteID, "error", token.Error())
			if firstErr == nil {
				firstErr = fmt.Errorf("MQTT告警发布失败: %w", token.Error())
			}
		}
	}

	return firstErr
}

// Close 关闭底层连接
func (n *AlertNotifier) Close() error {
	if n == nil {
		return nil
	}

	n.mutex.Lock()
	defer n.mutex.Unlock()

	var firstErr error
	if n.kafkaWriter != nil {
		if err := n.kafkaWriter.Close(); err != nil {
			firstErr = err
		}
		n.kafkaWriter = nil
	}
	if n.mqttClient != nil {
		n.mqttClient.Disconnect(250)
		n.mqttClient = nil
	}
	return firstErr
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
