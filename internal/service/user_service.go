package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/model"
	"github.com/autoescuela/reservas-bot/internal/repository"
)

var (
	ErrCodeNotFound    = errors.New("link code not found")
	ErrCodeUsed        = errors.New("link code already used")
	ErrAlreadyLinked   = errors.New("telegram account already linked")
	ErrNotLinked       = errors.New("telegram account not linked")
	ErrNotAdmin        = errors.New("admin role required")
	ErrRoleUnsupported = errors.New("unsupported role for link code")
)

// UserService manages the Telegram-to-backend account links. Admin accounts
// are bootstrapped from configuration; students and instructors redeem
// one-time codes issued by an admin.
type UserService struct {
	users    *repository.BotUserRepository
	codes    *repository.LinkCodeRepository
	adminIDs map[int64]bool
	logger   *zap.Logger
}

func NewUserService(
	users *repository.BotUserRepository,
	codes *repository.LinkCodeRepository,
	adminTelegramIDs []int64,
	logger *zap.Logger,
) *UserService {
	admins := make(map[int64]bool, len(adminTelegramIDs))
	for _, id := range adminTelegramIDs {
		admins[id] = true
	}
	return &UserService{users: users, codes: codes, adminIDs: admins, logger: logger}
}

// GetByTelegramID returns the linked account, auto-provisioning admins
// listed in configuration on first contact.
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.BotUser, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	if !s.adminIDs[telegramID] {
		return nil, nil
	}

	admin := &model.BotUser{
		TelegramID: telegramID,
		Role:       model.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("provision admin: %w", err)
	}
	s.logger.Info("Admin account provisioned", zap.Int64("telegram_id", telegramID))
	return admin, nil
}

// Touch refreshes the stored Telegram display fields after any contact.
func (s *UserService) Touch(ctx context.Context, user *model.BotUser, username, firstName string) {
	if user.Username == username && user.FirstName == firstName {
		return
	}
	user.Username = username
	user.FirstName = firstName
	if err := s.users.UpdateIdentity(ctx, user.ID, username, firstName); err != nil {
		s.logger.Warn("Failed to refresh user identity", zap.Error(err))
	}
}

// IssueLinkCode creates a one-time code binding a backend identity. Only
// admins may issue codes.
func (s *UserService) IssueLinkCode(ctx context.Context, issuer *model.BotUser, role model.Role, backendID int64, roleEntityID int64) (*model.LinkCode, error) {
	if !issuer.IsAdmin() {
		return nil, ErrNotAdmin
	}

	code := &model.LinkCode{
		Code:      shortCode(),
		Role:      role,
		BackendID: backendID,
		CreatedBy: issuer.ID,
	}
	switch role {
	case model.RoleAlumno:
		code.AlumnoID = &roleEntityID
	case model.RoleInstructor:
		code.InstructorID = &roleEntityID
	default:
		return nil, ErrRoleUnsupported
	}

	if err := s.codes.Create(ctx, code); err != nil {
		return nil, err
	}
	s.logger.Info("Link code issued",
		zap.String("role", string(role)),
		zap.Int64("backend_id", backendID),
		zap.Int64("issued_by", issuer.ID))
	return code, nil
}

// RedeemLinkCode binds a Telegram account to the identity the code names.
func (s *UserService) RedeemLinkCode(ctx context.Context, telegramID int64, username, firstName, rawCode string) (*model.BotUser, error) {
	existing, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyLinked
	}

	code, err := s.codes.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(rawCode)))
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, ErrCodeNotFound
	}
	if !code.Usable() {
		return nil, ErrCodeUsed
	}

	user := &model.BotUser{
		TelegramID:   telegramID,
		Username:     username,
		FirstName:    firstName,
		Role:         code.Role,
		BackendID:    code.BackendID,
		AlumnoID:     code.AlumnoID,
		InstructorID: code.InstructorID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	ok, err := s.codes.MarkUsed(ctx, code.ID, user.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race for the code; roll the link back.
		if delErr := s.users.Delete(ctx, telegramID); delErr != nil {
			s.logger.Error("Failed to roll back losing link", zap.Error(delErr))
		}
		return nil, ErrCodeUsed
	}

	s.logger.Info("Account linked",
		zap.Int64("telegram_id", telegramID),
		zap.String("role", string(user.Role)),
		zap.Int64("backend_id", user.BackendID))
	return user, nil
}

// Unlink removes the caller's account link.
func (s *UserService) Unlink(ctx context.Context, telegramID int64) error {
	return s.users.Delete(ctx, telegramID)
}

// shortCode derives a human-typable 8-character code.
func shortCode() string {
	id := uuid.NewString()
	return strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}
