/*
 * @module service/cache/report_cache
 * @description 基于Redis的分析报告缓存，按运行ID缓存校验分析报告，未命中时回落数据库
 * @architecture 工具层 - 提供可选的读缓存能力
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 报告写入缓存 -> TTL过期 -> 读取回落数据库
 * @rules 缓存是可选依赖，Redis不可用时所有操作静默降级
 * @dependencies github.com/go-redis/redis/v8
 * @refs service/contract/service.go
 */

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	analysisKeyPrefix = "datacontract:analysis:"
	defaultTTL        = 30 * time.Minute
)

// ReportCache 分析报告缓存
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache 从环境变量创建Redis缓存，连接失败时返回错误由调用方决定是否降级
func NewReportCache() (*ReportCache, error) {
	host := getEnvWithDefault("REDIS_HOST", "localhost")
	port := getEnvWithDefault("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD")
	db := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		fmt.Sscanf(dbStr, "%d", &db)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	slog.Info("分析报告缓存已连接Redis", "addr", fmt.Sprintf("%s:%s", host, port))
	return &ReportCache{client: client, ttl: defaultTTL}, nil
}

// SetAnalysis 缓存运行ID对应的分析报告
func (c *ReportCache) SetAnalysis(ctx context.Context, runID string, analysis interface{}) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("分析报告序列化失败: %w", err)
	}

	if err := c.client.Set(ctx, analysisKeyPrefix+runID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("分析报告写入缓存失败: %w", err)
	}
	return nil
}

// GetAnalysis 读取缓存的分析报告，返回是否命中
func (c *ReportCache) GetAnalysis(ctx context.Context, runID string, out interface{}) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}

	data, err := c.client.Get(ctx, analysisKeyPrefix+runID).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("分析报告读取缓存失败: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("分析报告反序列化失败: %w", err)
	}
	return true, nil
}

// Close 关闭Redis连接
func (c *ReportCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
