// Package support_chat 提供客服聊天 SDK 核心能力
// @title Support Chat SDK API
// @version 1.0
// @description 客服聊天 SDK 的 RESTful API 文档，包含用户、会话、消息、回应、公告模块
// @description
// @description ## 业务状态码说明
// @description | Code | 说明 |
// @description |------|------|
// @description | 0 | 成功 |
// @description | 10001 | 参数错误 |
// @description | 10002 | 用户不存在 |
// @description | 10003 | 密码错误（登录失败） |
// @description | 10004 | Token 无效 |
// @description | 10005 | 权限不足 |
// @description | 10006 | 邮箱已注册 |
// @description | 10007 | 内容为空 |
// @description | 10008 | 目标不存在 |
// @description | 99999 | 内部错误 |
// @description
// @description ## HTTP 状态码说明
// @description - **200**: 业务请求成功（根据 response.code 判断业务状态）
// @description - **401**: 认证失败（未登录/Token 无效/登录失败）
// @description - **403**: 权限不足
// @description - **500**: 服务器内部错误
// @description
// @description ## 响应格式
// @description 所有接口统一返回格式：
// @description ```json
// @description {
// @description   "code": 0,
// @description   "msg": "success",
// @description   "data": {}
// @description }
// @description ```
//
// @termsOfService https://github.com/cydxin/support-chat-sdk
//
// @contact.name API Support
// @contact.url https://github.com/cydxin/support-chat-sdk/issues
// @contact.email support@example.com
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:6789
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 格式：Bearer <token>
//
// @securityDefinitions.apikey QueryToken
// @in query
// @name token
// @description 用于 WebSocket 等无法传 header 的场景
package support_chat
