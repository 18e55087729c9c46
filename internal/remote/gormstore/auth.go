package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/keystore"
	"finance-dashboard/internal/models"
	"finance-dashboard/internal/remote"
	"finance-dashboard/internal/util"
)

const (
	maxFailedLogins = 5
	lockDuration    = 10 * time.Minute
	resetTokenTTL   = time.Hour
)

// ErrAccountLocked is returned after too many failed sign-in attempts.
var ErrAccountLocked = errors.New("account locked, try again later")

// ErrInvalidResetToken is returned for unknown or expired reset tokens.
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	email = normalizeEmail(email)

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Session{}, remote.ErrInvalidCredentials
		}
		return domain.Session{}, fmt.Errorf("query user: %w", err)
	}

	now := s.now()

	// 检查是否被锁定
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return domain.Session{}, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		// 密码错误：递增失败次数，达到5次则锁定10分钟
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxFailedLogins {
			lockUntil := now.Add(lockDuration)
			user.LockedUntil = &lockUntil
			user.FailedLoginAttempts = 0
		}
		if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
			s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("record failed login")
		}
		return domain.Session{}, remote.ErrInvalidCredentials
	}

	// 登录成功：重置失败次数和锁定时间
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return domain.Session{}, fmt.Errorf("update user: %w", err)
	}

	return s.issue(ctx, user)
}

func (s *Store) SignUp(ctx context.Context, email, password string) (domain.Session, error) {
	email = normalizeEmail(email)
	if err := util.ValidateEmail(email); err != nil {
		return domain.Session{}, err
	}
	if err := util.ValidatePassword(password); err != nil {
		return domain.Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return domain.Session{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return fmt.Errorf("query user: %w", err)
		}
		if count > 0 {
			return remote.ErrEmailTaken
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		profile := models.Profile{
			ID:              user.ID,
			Email:           email,
			DefaultCurrency: "BRL",
			ThemePreference: domain.ThemeLight,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Session{}, err
	}

	return s.issue(ctx, user)
}

// issue records a session row, signs its token and persists it locally.
func (s *Store) issue(ctx context.Context, user models.User) (domain.Session, error) {
	row := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}

	token, err := util.GenerateToken(s.secret, s.issuer, row.ID, user.ID, user.Email, s.ttl)
	if err != nil {
		return domain.Session{}, fmt.Errorf("sign token: %w", err)
	}
	if err := s.keys.Put(keystore.SessionKey, []byte(token)); err != nil {
		return domain.Session{}, fmt.Errorf("persist token: %w", err)
	}
	claims, err := util.ParseToken(s.secret, token)
	if err != nil {
		return domain.Session{}, fmt.Errorf("parse token: %w", err)
	}

	s.mu.Lock()
	s.current = claims
	s.mu.Unlock()

	s.logger.Info().Str("user_id", user.ID).Msg("session issued")
	return domain.Session{ID: user.ID, Email: user.Email}, nil
}

// SignOut revokes the session row. The local token is dropped even when the
// revocation fails.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	claims := s.current
	s.current = nil
	s.mu.Unlock()

	if claims == nil {
		if token, err := s.keys.Get(keystore.SessionKey); err == nil {
			claims, _ = util.ParseToken(s.secret, string(token))
		}
	}
	if err := s.keys.Delete(keystore.SessionKey); err != nil {
		s.logger.Warn().Err(err).Msg("delete local session token")
	}
	if claims == nil {
		return nil
	}

	err := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", claims.ID).
		Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// CurrentSession recovers the session from the locally stored token. Expired,
// revoked or unreadable tokens are discarded.
func (s *Store) CurrentSession(ctx context.Context) (*domain.Session, error) {
	token, err := s.keys.Get(keystore.SessionKey)
	if errors.Is(err, keystore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session token: %w", err)
	}

	claims, err := util.ParseToken(s.secret, string(token))
	if err != nil {
		s.logger.Info().Err(err).Msg("discarding unusable session token")
		s.forget()
		return nil, nil
	}

	var row models.Session
	err = s.db.WithContext(ctx).Where("id = ? AND user_id = ?", claims.ID, claims.UserID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.forget()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if row.Revoked || !row.ExpiresAt.After(s.now()) {
		s.forget()
		return nil, nil
	}

	s.mu.Lock()
	s.current = claims
	s.mu.Unlock()
	return &domain.Session{ID: claims.UserID, Email: claims.Email}, nil
}

func (s *Store) forget() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	_ = s.keys.Delete(keystore.SessionKey)
}

func (s *Store) UpdateCredentials(ctx context.Context, email, password *string) error {
	claims, err := s.claims(ctx)
	if err != nil {
		return err
	}

	updates := map[string]any{}
	if email != nil {
		e := normalizeEmail(*email)
		if err := util.ValidateEmail(e); err != nil {
			return err
		}
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("email = ? AND id <> ?", e, claims.UserID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("query user: %w", err)
		}
		if count > 0 {
			return remote.ErrEmailTaken
		}
		updates["email"] = e
	}
	if password != nil {
		if err := util.ValidatePassword(*password); err != nil {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		updates["password_hash"] = string(hash)
	}
	if len(updates) == 0 {
		return nil
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", claims.UserID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update credentials: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return remote.ErrNotFound
	}
	if e, ok := updates["email"].(string); ok {
		return s.reissue(claims, e)
	}
	return nil
}

// reissue 邮箱变更后为同一会话重新签发令牌，过期时间不变
func (s *Store) reissue(old *util.Claims, email string) error {
	ttl := old.ExpiresAt.Time.Sub(s.now())
	token, err := util.GenerateToken(s.secret, s.issuer, old.ID, old.UserID, email, ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	if err := s.keys.Put(keystore.SessionKey, []byte(token)); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	claims, err := util.ParseToken(s.secret, token)
	if err != nil {
		return fmt.Errorf("parse token: %w", err)
	}

	s.mu.Lock()
	s.current = claims
	s.mu.Unlock()
	return nil
}

// RequestPasswordReset mails a one-time token. Unknown addresses succeed
// silently.
func (s *Store) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("query user: %w", err)
	}

	token, err := util.RandomString(32)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	expires := s.now().Add(resetTokenTTL)
	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"reset_token_hash": util.HashToken(token),
		"reset_expires_at": expires,
	}).Error; err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	return s.mailer.SendPasswordReset(ctx, user.Email, token)
}

// ConfirmPasswordReset consumes a token sent by RequestPasswordReset. Every
// session of the user is revoked.
func (s *Store) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	if err := util.ValidatePassword(password); err != nil {
		return err
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("reset_token_hash = ?", util.HashToken(token)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("query user: %w", err)
	}
	if user.ResetExpiresAt == nil || !user.ResetExpiresAt.After(s.now()) {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(map[string]any{
			"password_hash":         string(hash),
			"reset_token_hash":      "",
			"reset_expires_at":      nil,
			"failed_login_attempts": 0,
			"locked_until":          nil,
		}).Error; err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		// 重置密码后吊销所有已有会话
		if err := tx.Model(&models.Session{}).Where("user_id = ?", user.ID).Update("revoked", true).Error; err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
		return nil
	})
}
