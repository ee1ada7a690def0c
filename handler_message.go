package support_chat

import (
	"errors"
	"net/http"

	"github.com/cydxin/support-chat-sdk/middleware"
	"github.com/cydxin/support-chat-sdk/response"
	"github.com/cydxin/support-chat-sdk/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 消息（Message）相关接口 --------------------

// GinHandleLoadMessages 加载会话消息
// @Summary 加载会话全量消息
// @Description 按创建时间升序返回，带发送人邮箱。读取的副作用：他人发来的未读消息被批量标记已读
// @Tags 消息
// @Produce json
// @Param thread_id query uint64 false "会话ID (不传则解析自己的会话；非管理员只能看自己的)"
// @Success 200 {object} response.Response{data=[]service.MessageListItemDTO} "查询成功"
// @Failure 403 {object} response.Response "权限不足"
// @Security BearerAuth
// @Router /thread/messages [get]
func (e *Engine) GinHandleLoadMessages(ctx *gin.Context) {
	threadID, ok := e.parseThreadID(ctx)
	if !ok {
		return
	}
	sess := middleware.SessionFromContext(ctx)

	list, err := e.MessageService.LoadMessages(threadID, sess.UserID)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(list))
}

type sendMessageReq struct {
	ThreadID uint64 `json:"thread_id"`
	Content  string `json:"content"`
}

// GinHandleSendMessage 发送消息
// @Summary 发送消息
// @Description 空白内容直接拒绝。成功后会话活跃时间被顶到最新，变更通知推给订阅方
// @Tags 消息
// @Accept json
// @Produce json
// @Param req body sendMessageReq true "消息内容 (thread_id 可为 0，表示自己的会话)"
// @Success 200 {object} response.Response{data=service.MessageDTO} "发送成功"
// @Failure 400 {object} response.Response "内容为空"
// @Security BearerAuth
// @Router /thread/messages [post]
func (e *Engine) GinHandleSendMessage(ctx *gin.Context) {
	var req sendMessageReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	sess := middleware.SessionFromContext(ctx)

	threadID := req.ThreadID
	if threadID == 0 {
		id, err := e.ThreadService.ResolveThread(sess.UserID)
		if err != nil {
			ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
			return
		}
		threadID = id
	} else if !sess.IsAdmin {
		t, err := e.ThreadService.GetThread(threadID)
		if err != nil || t.UserID != sess.UserID {
			ctx.JSON(http.StatusForbidden, response.Error(response.CodePermissionDeny, "not your thread"))
			return
		}
	}

	msg, err := e.MessageService.SendMessage(threadID, sess.UserID, req.Content, nil)
	if err != nil {
		if errors.Is(err, service.ErrEmptyContent) {
			ctx.JSON(http.StatusBadRequest, response.Error(response.CodeEmptyContent, err.Error()))
			return
		}
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(service.ToMessageDTO(msg)))
}
