package support_chat

import (
	"net/http"
	"strconv"

	"github.com/cydxin/support-chat-sdk/middleware"
	"github.com/cydxin/support-chat-sdk/response"
	"github.com/gin-gonic/gin"
)

// -------------------- 会话（Thread）相关接口 --------------------

// GinHandleResolveThread 解析会话
// @Summary 解析（或创建）当前用户的会话
// @Description 每个用户恰好一个会话：存在则返回，不存在则创建。并发重复创建被唯一索引挡下后重查
// @Tags 会话
// @Produce json
// @Success 200 {object} response.Response "thread_id"
// @Failure 401 {object} response.Response "未登录"
// @Security BearerAuth
// @Router /thread [get]
func (e *Engine) GinHandleResolveThread(ctx *gin.Context) {
	sess := middleware.SessionFromContext(ctx)

	threadID, err := e.ThreadService.ResolveThread(sess.UserID)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(gin.H{"thread_id": threadID}))
}

// GinHandleListThreadSummaries 管理端会话列表
// @Summary 管理端会话概要列表
// @Description 全部会话按最近活跃倒序，带归属用户邮箱、最后一条消息和未读数。仅管理员可用
// @Tags 管理端
// @Produce json
// @Success 200 {object} response.Response{data=[]service.ThreadSummaryDTO} "查询成功"
// @Failure 403 {object} response.Response "权限不足"
// @Security BearerAuth
// @Router /admin/threads [get]
func (e *Engine) GinHandleListThreadSummaries(ctx *gin.Context) {
	sess := middleware.SessionFromContext(ctx)
	if !sess.IsAdmin {
		ctx.JSON(http.StatusForbidden, response.Error(response.CodePermissionDeny, "admin only"))
		return
	}

	list, err := e.ThreadService.ListThreadSummaries()
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(list))
}

// parseThreadID query 参数 thread_id；管理员可以看任意会话，普通用户只能看自己的
func (e *Engine) parseThreadID(ctx *gin.Context) (uint64, bool) {
	sess := middleware.SessionFromContext(ctx)

	idStr := ctx.Query("thread_id")
	if idStr == "" {
		// 不传则解析自己的会话
		id, err := e.ThreadService.ResolveThread(sess.UserID)
		if err != nil {
			ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
			return 0, false
		}
		return id, true
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid thread_id"))
		return 0, false
	}

	if !sess.IsAdmin {
		t, err := e.ThreadService.GetThread(id)
		if err != nil {
			ctx.JSON(http.StatusOK, response.Error(response.CodeNotFound, "thread not found"))
			return 0, false
		}
		if t.UserID != sess.UserID {
			ctx.JSON(http.StatusForbidden, response.Error(response.CodePermissionDeny, "not your thread"))
			return 0, false
		}
	}
	return id, true
}
