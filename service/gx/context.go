/*
 * @module service/gx/context
 * @description 校验引擎运行时上下文，进程启动时显式创建并在各转换调用间传递
 * @architecture 适配器模式 - 显式持有的运行时句柄，取代隐式全局状态
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 上下文创建 -> 套件注册 -> 进程退出时随进程销毁
 * @rules 上下文创建失败时由调用方尝试一次重建，不做循环重试
 * @dependencies os, path/filepath, sync
 * @refs service/expectation/manager.go, service/init.go
 */

package gx

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Context 引擎运行时上下文，持有工作目录和已注册套件
type Context struct {
	rootDir string
	suites  map[string]*ExpectationSuite
	mutex   sync.RWMutex
}

// NewContext 创建引擎上下文，工作目录取 GX_CONTEXT_DIR，缺省落在系统临时目录
func NewContext() (*Context, error) {
	rootDir := os.Getenv("GX_CONTEXT_DIR")
	if rootDir == "" {
		rootDir = filepath.Join(os.TempDir(), "gx_context")
	}

	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建引擎上下文目录失败: %w", err)
	}

	return &Context{
		rootDir: rootDir,
		suites:  make(map[string]*ExpectationSuite),
	}, nil
}

// RootDir 返回上下文工作目录
func (c *Context) RootDir() string {
	return c.rootDir
}

// AddSuite 注册套件，同名套件覆盖旧注册
func (c *Context) AddSuite(suite *ExpectationSuite) error {
	if suite == nil {
		return fmt.Errorf("套件不能为空")
	}
	if suite.Name == "" {
		return fmt.Errorf("套件名称不能为空")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.suites[suite.Name] = suite
	return nil
}

// GetSuite 按名称取回已注册套件
func (c *Context) GetSuite(name string) (*ExpectationSuite, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	suite, ok := c.suites[name]
	return suite, ok
}

// SuiteCount 返回当前注册的套件数量
func (c *Context) SuiteCount() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.suites)
}
