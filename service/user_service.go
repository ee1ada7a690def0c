package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/cydxin/support-chat-sdk/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	*Service
	userDAO       *models.UserDAO
	tokenService  *TokenService
	loginTokenTTL time.Duration
}

func NewUserService(s *Service) *UserService {
	log.Println("NewUserService")
	return &UserService{
		Service:       s,
		userDAO:       models.NewUserDAO(s.DB),
		tokenService:  NewTokenService(s.RDB),
		loginTokenTTL: 7 * 24 * time.Hour,
	}
}

// --- types ---

type UserDTO struct {
	ID        uint64    `json:"id"`
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResp struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

func (s *UserService) toUserDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		UID:       u.UID,
		Email:     u.Email,
		IsAdmin:   s.IsAdminEmail(u.Email),
		CreatedAt: u.CreatedAt,
	}
}

// Register 邮箱注册。邮箱唯一；密码 bcrypt 落库。
func (s *UserService) Register(req RegisterReq) (*UserDTO, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("invalid email")
	}
	if len(req.Password) < 6 {
		return nil, errors.New("password too short")
	}

	if _, err := s.userDAO.FindByEmail(email); err == nil {
		return nil, errors.New("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &models.User{Email: email, Password: string(hash)}
	if err := s.userDAO.Create(u); err != nil {
		return nil, err
	}

	dto := s.toUserDTO(u)
	return &dto, nil
}

// Login 邮箱+密码登录，成功后签发 token（Redis）。
func (s *UserService) Login(ctx context.Context, req LoginReq) (*LoginResp, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	u, err := s.userDAO.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("password mismatch")
	}

	token, err := s.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}
	if err := s.tokenService.StoreToken(ctx, token, u.ID, s.loginTokenTTL); err != nil {
		return nil, err
	}

	now := time.Now()
	_ = s.DB.Model(&models.User{}).Where("id = ?", u.ID).Update("last_login_at", now).Error

	return &LoginResp{Token: token, User: s.toUserDTO(u)}, nil
}

// GetUser 根据ID获取用户
func (s *UserService) GetUser(userID uint64) (*UserDTO, error) {
	u, err := s.userDAO.FindByID(userID)
	if err != nil {
		return nil, err
	}
	dto := s.toUserDTO(u)
	return &dto, nil
}
