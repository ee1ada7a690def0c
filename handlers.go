package support_chat

import (
	"github.com/cydxin/support-chat-sdk/middleware"
	"github.com/gin-gonic/gin"
)

/*
*	提供的HTTP接口在此处注册，也可以直接自己写controller然后调用service
*	推荐自己写controller，因为这样更灵活
 */

// RegisterRoutes 在路由组上挂全部接口。
// register/login 不需要登录，其余接口走鉴权中间件。
func (e *Engine) RegisterRoutes(g *gin.RouterGroup) {
	g.POST("/user/register", e.GinHandleUserRegister)
	g.POST("/user/login", e.GinHandleUserLogin)

	authed := g.Group("", middleware.GinAuthMiddleware(e.AuthService))
	{
		authed.GET("/user/info", e.GinHandleGetUserInfo)
		authed.POST("/user/logout", e.GinHandleUserLogout)

		authed.GET("/thread", e.GinHandleResolveThread)
		authed.GET("/thread/messages", e.GinHandleLoadMessages)
		authed.POST("/thread/messages", e.GinHandleSendMessage)

		authed.POST("/reactions/message", e.GinHandleToggleMessageReaction)
		authed.POST("/reactions/announcement", e.GinHandleToggleAnnouncementReaction)

		authed.GET("/announcements", e.GinHandleListAnnouncements)
		authed.POST("/announcements", e.GinHandlePostAnnouncement)

		authed.GET("/admin/threads", e.GinHandleListThreadSummaries)

		authed.GET("/ws", e.GinHandleWS)
	}
}

// GinHandleWS WebSocket 入口
// @Summary WebSocket 连接
// @Description 升级为 WebSocket。上行 {"watch":"thread","thread_id":N} / {"watch":"announcements"} / {"watch":"dashboard"} 挂载视图，服务端在每次变更后推送全量快照帧
// @Tags WebSocket
// @Param token query string true "登录 token（WS 无法传 header）"
// @Security QueryToken
// @Router /ws [get]
func (e *Engine) GinHandleWS(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	e.WsServer.ServeWS(c.Writer, c.Request, sess)
}
