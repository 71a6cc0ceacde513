package auth

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/sunkaracharan/roifinal/internal/usage"
	"github.com/sunkaracharan/roifinal/internal/users"
	"github.com/sunkaracharan/roifinal/pkg/db"
	"github.com/sunkaracharan/roifinal/pkg/db/models"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
	"github.com/sunkaracharan/roifinal/pkg/security"
)

// Register creates the account and its usage row in one transaction and
// returns a logged-in session.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if problems := security.CheckPasswordPolicy(req.Password, username, email); len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password does not meet requirements").
			WithDetails(map[string]any{"password": problems})
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	now := s.now()
	var user *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		usernameTaken, emailTaken, err := userRepo.ExistsByUsernameOrEmail(ctx, username, email)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing user")
		}
		if usernameTaken {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		if emailTaken {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}

		created, err := userRepo.Create(ctx, users.CreateUserDTO{
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "username or email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if _, err := usage.NewRepository(tx).GetOrCreate(ctx, created.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create usage limit")
		}

		if err := userRepo.UpdateLastLogin(ctx, created.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
		}
		created.LastLoginAt = &now
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "user registered")
	}
	return s.issue(ctx, user, now)
}
