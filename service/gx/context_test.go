/*
 * @module service/gx/context_test
 * @description 引擎上下文测试，覆盖工作目录创建和套件注册语义
 * @architecture 测试层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 上下文创建 -> 套件注册 -> 取回断言
 * @rules 同名套件覆盖旧注册，空套件和空名称被拒绝
 * @dependencies testing, testify
 * @refs service/gx/context.go
 */

package gx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewContextCreatesWorkDir 测试上下文创建时建立工作目录
func TestNewContextCreatesWorkDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gx_work")
	t.Setenv("GX_CONTEXT_DIR", dir)

	ctx, err := NewContext()
	require.NoError(t, err)
	assert.Equal(t, dir, ctx.RootDir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// TestAddSuiteOverwritesSameName 测试同名套件覆盖旧注册
func TestAddSuiteOverwritesSameName(t *testing.T) {
	t.Setenv("GX_CONTEXT_DIR", t.TempDir())
	ctx, err := NewContext()
	require.NoError(t, err)

	first := NewExpectationSuite("orders", []*ExpectationConfiguration{
		NewExpectationConfiguration("expect_column_to_exist", map[string]interface{}{"column": "id"}, nil, FailureSeverityCritical),
	}, nil)
	require.NoError(t, ctx.AddSuite(first))

	second := NewExpectationSuite("orders", nil, nil)
	require.NoError(t, ctx.AddSuite(second))

	assert.Equal(t, 1, ctx.SuiteCount())
	got, ok := ctx.GetSuite("orders")
	require.True(t, ok)
	assert.Len(t, got.Expectations, 0)
}

// TestAddSuiteRejectsInvalid 测试空套件与空名称被拒绝
func TestAddSuiteRejectsInvalid(t *testing.T) {
	t.Setenv("GX_CONTEXT_DIR", t.TempDir())
	ctx, err := NewContext()
	require.NoError(t, err)

	assert.Error(t, ctx.AddSuite(nil))
	assert.Error(t, ctx.AddSuite(NewExpectationSuite("", nil, nil)))

	_, ok := ctx.GetSuite("missing")
	assert.False(t, ok)
}
