package support_chat

import (
	"net/http"

	"github.com/cydxin/support-chat-sdk/middleware"
	"github.com/cydxin/support-chat-sdk/response"
	"github.com/gin-gonic/gin"
)

// -------------------- 回应（Reaction）相关接口 --------------------

type toggleReactionReq struct {
	MessageID      uint64 `json:"message_id,omitempty"`
	AnnouncementID uint64 `json:"announcement_id,omitempty"`
	Emoji          string `json:"emoji"`
}

type toggleReactionResp struct {
	Added bool `json:"added"` // true=新增 false=取消
}

// GinHandleToggleMessageReaction 切换消息回应
// @Summary 切换消息回应
// @Description (消息, 用户, emoji) 三元组已存在则取消，不存在则新增
// @Tags 回应
// @Accept json
// @Produce json
// @Param req body toggleReactionReq true "message_id + emoji"
// @Success 200 {object} response.Response{data=toggleReactionResp} "切换成功"
// @Failure 400 {object} response.Response "参数错误"
// @Security BearerAuth
// @Router /reactions/message [post]
func (e *Engine) GinHandleToggleMessageReaction(ctx *gin.Context) {
	var req toggleReactionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	sess := middleware.SessionFromContext(ctx)

	_, added, err := e.ReactionService.ToggleMessageReaction(req.MessageID, sess.UserID, req.Emoji)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(toggleReactionResp{Added: added}))
}

// GinHandleToggleAnnouncementReaction 切换公告回应
// @Summary 切换公告回应
// @Description (公告, 用户, emoji) 三元组已存在则取消，不存在则新增
// @Tags 回应
// @Accept json
// @Produce json
// @Param req body toggleReactionReq true "announcement_id + emoji"
// @Success 200 {object} response.Response{data=toggleReactionResp} "切换成功"
// @Failure 400 {object} response.Response "参数错误"
// @Security BearerAuth
// @Router /reactions/announcement [post]
func (e *Engine) GinHandleToggleAnnouncementReaction(ctx *gin.Context) {
	var req toggleReactionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	sess := middleware.SessionFromContext(ctx)

	_, added, err := e.ReactionService.ToggleAnnouncementReaction(req.AnnouncementID, sess.UserID, req.Emoji)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(toggleReactionResp{Added: added}))
}
