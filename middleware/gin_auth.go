package middleware

import (
	"net/http"

	"github.com/cydxin/support-chat-sdk/response"
	"github.com/cydxin/support-chat-sdk/service"
	"github.com/gin-gonic/gin"
)

const (
	// ContextUserIDKey gin context 里保存 user id 的 key
	ContextUserIDKey  = "user_id"
	ContextEmailKey   = "email"
	ContextIsAdminKey = "is_admin"
	ContextTokenKey   = "token"
)

/*
	GinAuthMiddleware Gin 鉴权中间件：

- 优先从 Authorization: Bearer <token> 读取
- 如果没有，再从 query 参数读取（token=xxx，WebSocket 场景用）
- 校验 token -> Session（Redis 查 userID，DB 查 email）成功后写入 gin.Context

使用：router.Use(middleware.GinAuthMiddleware(authService))
*/
func GinAuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
				Code: response.CodeInternalError,
				Msg:  "auth service is nil",
			})
			return
		}

		sess, token, err := auth.AuthenticateRequest(c.Request.Context(), c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Response{
				Code: response.CodeTokenInvalid,
				Msg:  err.Error(),
			})
			return
		}

		c.Set(ContextUserIDKey, sess.UserID)
		c.Set(ContextEmailKey, sess.Email)
		c.Set(ContextIsAdminKey, sess.IsAdmin)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

// SessionFromContext 从 gin.Context 还原中间件写入的会话身份
func SessionFromContext(c *gin.Context) *service.Session {
	sess := &service.Session{}
	if v, ok := c.Get(ContextUserIDKey); ok {
		if uid, ok := v.(uint64); ok {
			sess.UserID = uid
		}
	}
	if v, ok := c.Get(ContextEmailKey); ok {
		if email, ok := v.(string); ok {
			sess.Email = email
		}
	}
	if v, ok := c.Get(ContextIsAdminKey); ok {
		if isAdmin, ok := v.(bool); ok {
			sess.IsAdmin = isAdmin
		}
	}
	return sess
}
