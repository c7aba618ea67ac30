/*
 * @module api/middleware/apikey_auth
 * @description API Key鉴权中间件，基于bcrypt哈希比对验证X-API-Key请求头
 * @architecture 中间件模式 - HTTP请求拦截和验证
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow Key提取 -> 哈希比对 -> 下一个处理器
 * @rules 未配置API_KEY_HASH时放行全部请求，配置后所有非白名单路径必须携带合法Key
 * @dependencies net/http, golang.org/x/crypto/bcrypt
 * @refs api/routes.go
 */

package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/render"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyHeader API Key请求头名称
const APIKeyHeader = "X-API-Key"

// APIKeyAuthMiddleware API Key认证中间件
type APIKeyAuthMiddleware struct {
	keyHash []byte
	// 白名单路径（不需要鉴权）
	whitelistPaths []string
}

// NewAPIKeyAuthMiddleware 创建API Key认证中间件实例
func NewAPIKeyAuthMiddleware() *APIKeyAuthMiddleware {
	return &APIKeyAuthMiddleware{
		keyHash: []byte(os.Getenv("API_KEY_HASH")),
		whitelistPaths: []string{
			"/health",  // 健康检查
			"/ready",   // 就绪检查
			"/swagger", // Swagger文档
			"/metrics", // Prometheus指标
		},
	}
}

// AddWhitelistPath 添加白名单路径
func (m *APIKeyAuthMiddleware) AddWhitelistPath(path string) {
	m.whitelistPaths = append(m.whitelistPaths, path)
}

// IsWhitelistPath 检查路径是否在白名单中
func (m *APIKeyAuthMiddleware) IsWhitelistPath(path string) bool {
	for _, whitelistPath := range m.whitelistPaths {
		// 支持前缀匹配
		if strings.HasPrefix(path, whitelistPath) {
			return true
		}
	}
	return false
}

// Middleware 认证中间件处理函数
func (m *APIKeyAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 未配置哈希时不启用鉴权
		if len(m.keyHash) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		if m.IsWhitelistPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get(APIKeyHeader)
		if apiKey == "" {
			m.respondUnauthorized(w, r, "缺少X-API-Key请求头")
			return
		}

		if err := bcrypt.CompareHashAndPassword(m.keyHash, []byte(apiKey)); err != nil {
			m.respondUnauthorized(w, r, "API Key无效")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// respondUnauthorized 返回401未授权响应
func (m *APIKeyAuthMiddleware) respondUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	render.JSON(w, r, map[string]interface{}{
		"status":  http.StatusUnauthorized,
		"message": message,
		"error":   "Unauthorized",
	})
}
