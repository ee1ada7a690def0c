package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cydxin/support-chat-sdk/models"
	"gorm.io/gorm"
)

// Session 当前登录身份。
// IsAdmin 只由 email 与配置的 AdminEmail 相等推出，没有别的来源。
type Session struct {
	UserID  uint64
	Email   string
	IsAdmin bool
}

// AuthService 提供“鉴权核心能力”，供调用方自建中间件/拦截器使用。
// - 解析 token（Bearer 优先，其次 query）
// - 校验 token -> Session（Redis 查 userID，DB 查 email）
// - 注销 token / 注销用户全部 token
//
// Gin 等框架的中间件建议作为单独适配层，内部调用该 service。
type AuthService struct {
	token      *TokenService
	userDAO    *models.UserDAO
	adminEmail string
}

func NewAuthService(s *Service) *AuthService {
	var dao *models.UserDAO
	if s.DB != nil {
		dao = models.NewUserDAO(s.DB)
	}
	return &AuthService{token: NewTokenService(s.RDB), userDAO: dao, adminEmail: s.AdminEmail}
}

// ExtractToken 从 HTTP 请求中提取 token：优先 Authorization: Bearer，其次 query: token。
func (a *AuthService) ExtractToken(r *http.Request) string {
	if r == nil {
		return ""
	}

	// Authorization: Bearer <token>
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if ah != "" {
		parts := strings.SplitN(ah, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// query: ?token=xxx
	q := r.URL.Query().Get("token")
	return strings.TrimSpace(q)
}

// CurrentSession 根据 token 还原会话身份。token 无效/用户不存在时返回错误。
func (a *AuthService) CurrentSession(ctx context.Context, token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("missing token")
	}
	uid, err := a.token.GetUserIDByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	sess := &Session{UserID: uid}
	if a.userDAO != nil {
		u, err := a.userDAO.FindByID(uid)
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, err
		}
		if u != nil {
			sess.Email = u.Email
			sess.IsAdmin = a.adminEmail != "" && u.Email == a.adminEmail
		}
	}
	return sess, nil
}

// AuthenticateRequest 从请求里抽 token 并还原会话。
func (a *AuthService) AuthenticateRequest(ctx context.Context, r *http.Request) (*Session, string, error) {
	t := a.ExtractToken(r)
	sess, err := a.CurrentSession(ctx, t)
	return sess, t, err
}

// RevokeToken 注销单个 token。
func (a *AuthService) RevokeToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	uid, err := a.token.GetUserIDByToken(ctx, token)
	if err == nil {
		_ = a.token.RemoveUserToken(ctx, uid, token)
	}
	return a.token.RevokeToken(ctx, token)
}

// RevokeAllTokensByUser 注销用户全部 token。
func (a *AuthService) RevokeAllTokensByUser(ctx context.Context, userID uint64) error {
	return a.token.RevokeAllTokensByUser(ctx, userID)
}
