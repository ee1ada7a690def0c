package support_chat

import (
	"errors"
	"net/http"

	"github.com/cydxin/support-chat-sdk/middleware"
	"github.com/cydxin/support-chat-sdk/response"
	"github.com/cydxin/support-chat-sdk/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// -------------------- 公告（Announcement）相关接口 --------------------

// GinHandleListAnnouncements 公告列表
// @Summary 公告两级列表
// @Description 栏目按最近活跃倒序，栏目内公告按发布时间倒序
// @Tags 公告
// @Produce json
// @Success 200 {object} response.Response{data=[]service.AnnouncementThreadDTO} "查询成功"
// @Security BearerAuth
// @Router /announcements [get]
func (e *Engine) GinHandleListAnnouncements(ctx *gin.Context) {
	list, err := e.AnnouncementService.ListThreads()
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(list))
}

type postAnnouncementReq struct {
	ThreadID uint64 `json:"thread_id"`
	Content  string `json:"content"` // markdown
}

// GinHandlePostAnnouncement 发布公告
// @Summary 发布公告
// @Description 仅管理员。空白内容直接拒绝；目标栏目必须存在
// @Tags 公告
// @Accept json
// @Produce json
// @Param req body postAnnouncementReq true "thread_id + content"
// @Success 200 {object} response.Response "发布成功"
// @Failure 400 {object} response.Response "内容为空"
// @Failure 403 {object} response.Response "权限不足"
// @Security BearerAuth
// @Router /announcements [post]
func (e *Engine) GinHandlePostAnnouncement(ctx *gin.Context) {
	var req postAnnouncementReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	sess := middleware.SessionFromContext(ctx)

	ann, err := e.AnnouncementService.PostAnnouncement(req.ThreadID, req.Content, sess.IsAdmin)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAdmin):
			ctx.JSON(http.StatusForbidden, response.Error(response.CodePermissionDeny, err.Error()))
		case errors.Is(err, service.ErrEmptyContent):
			ctx.JSON(http.StatusBadRequest, response.Error(response.CodeEmptyContent, err.Error()))
		case errors.Is(err, gorm.ErrRecordNotFound):
			ctx.JSON(http.StatusOK, response.Error(response.CodeNotFound, "announcement thread not found"))
		default:
			ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.Success(gin.H{"id": ann.ID, "uid": ann.UID}))
}
