package support_chat

import (
	"net/http"
	"strings"

	"github.com/cydxin/support-chat-sdk/middleware"
	"github.com/cydxin/support-chat-sdk/response"
	"github.com/cydxin/support-chat-sdk/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 用户（User）相关接口 --------------------

// GinHandleUserRegister 用户注册
// @Summary 用户注册
// @Description 创建新用户账号：email + password
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body service.RegisterReq true "注册信息"
// @Success 200 {object} response.Response{data=service.UserDTO} "注册成功"
// @Failure 400 {object} response.Response "请求错误"
// @Router /user/register [post]
func (e *Engine) GinHandleUserRegister(ctx *gin.Context) {
	var req service.RegisterReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	u, err := e.UserService.Register(req)
	if err != nil {
		code := response.CodeInternalError
		switch {
		case strings.Contains(err.Error(), "invalid"), strings.Contains(err.Error(), "short"):
			code = response.CodeParamError
		case strings.Contains(err.Error(), "registered"):
			code = response.CodeUserExists
		}
		ctx.JSON(http.StatusOK, response.Error(code, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(u))
}

// GinHandleUserLogin 用户登录
// @Summary 用户登录
// @Description email + password 登录，返回 token（Redis 存储，带 TTL）
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body service.LoginReq true "登录信息"
// @Success 200 {object} response.Response{data=service.LoginResp} "登录成功"
// @Failure 401 {object} response.Response "密码错误"
// @Router /user/login [post]
func (e *Engine) GinHandleUserLogin(ctx *gin.Context) {
	var req service.LoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	resp, err := e.UserService.Login(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodePasswordError, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(resp))
}

// GinHandleUserLogout 退出登录
// @Summary 退出登录
// @Description 注销当前 token
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response "已注销"
// @Security BearerAuth
// @Router /user/logout [post]
func (e *Engine) GinHandleUserLogout(ctx *gin.Context) {
	token, _ := ctx.Get(middleware.ContextTokenKey)
	t, _ := token.(string)
	if err := e.AuthService.RevokeToken(ctx.Request.Context(), t); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleGetUserInfo 获取当前用户信息
// @Summary 获取当前用户信息
// @Description 返回登录用户详情（含 is_admin 标记，只影响界面可达性）
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response{data=service.UserDTO} "查询成功"
// @Failure 401 {object} response.Response "未登录"
// @Security BearerAuth
// @Router /user/info [get]
func (e *Engine) GinHandleGetUserInfo(ctx *gin.Context) {
	sess := middleware.SessionFromContext(ctx)

	u, err := e.UserService.GetUser(sess.UserID)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeUserNotFound, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(u))
}
