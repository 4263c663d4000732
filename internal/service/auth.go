package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"timesheet/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrBadCredentials is returned for both unknown emails and wrong passwords.
var ErrBadCredentials = errors.New("invalid email or password")

const minPasswordLen = 8

type AuthService struct{ db *gorm.DB }

func NewAuthService(db *gorm.DB) *AuthService { return &AuthService{db: db} }

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.TeamMember, error) {
	var m model.TeamMember
	err := s.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, persistence("query member", err)
	}
	if m.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	if m.Status == model.MemberInactive {
		return nil, ErrBadCredentials
	}
	return &m, nil
}

// SetAdminPassword gives an existing member a password and the admin role.
func (s *AuthService) SetAdminPassword(ctx context.Context, email, password string) (*model.TeamMember, error) {
	if len(password) < minPasswordLen {
		return nil, invalidf("password must be at least %d characters", minPasswordLen)
	}
	m, err := memberByEmail(ctx, s.db, strings.TrimSpace(email))
	if err != nil {
		return nil, classify("set admin password", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	err = s.db.WithContext(ctx).Model(m).Updates(map[string]any{
		"password_hash": string(hash),
		"role":          model.RoleAdmin,
	}).Error
	if err != nil {
		return nil, persistence("update member", err)
	}
	m.PasswordHash = string(hash)
	m.Role = model.RoleAdmin
	return m, nil
}
