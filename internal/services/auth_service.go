package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"finance/internal/db"
	"finance/internal/models"
	"finance/internal/store"
	"finance/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, passwordHash string, cash int64) error
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

type AuthService struct {
	txRunner     db.TxRunner
	users        UserStore
	audit        AuditStore
	hasher       PasswordHasher
	startingCash int64
}

func NewAuthService(txRunner db.TxRunner, users UserStore, audit AuditStore, hasher PasswordHasher, startingCash int64) *AuthService {
	return &AuthService{
		txRunner:     txRunner,
		users:        users,
		audit:        audit,
		hasher:       hasher,
		startingCash: startingCash,
	}
}

// Register creates the user with the starting cash balance. Username problems
// are reported before password problems.
func (s *AuthService) Register(ctx context.Context, username, password, confirmation string) (models.User, error) {
	username, err := validator.ValidateUsername(username)
	if err != nil {
		return models.User{}, err
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return models.User{}, ErrUsernameTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := validator.ValidateRegistrationPassword(password, confirmation); err != nil {
		return models.User{}, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{ID: uuid.NewString(), Username: username, PasswordHash: hash, Cash: s.startingCash}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.users.Create(ctx, tx, user.ID, user.Username, user.PasswordHash, user.Cash); err != nil {
			return err
		}
		data, err := json.Marshal(map[string]any{"username": user.Username})
		if err != nil {
			return fmt.Errorf("encode audit data: %w", err)
		}
		return s.audit.Log(ctx, tx, user.ID, "user.register", "user", user.ID, string(data))
	})
	if err != nil {
		// lost a race with another registration of the same name
		if db.IsUniqueViolation(err) {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, err
	}
	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Login never reveals whether the username or the password was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, ErrLoginUsername
	}
	if password == "" {
		return models.User{}, ErrLoginPassword
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return models.User{}, ErrInvalidCredentials
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.audit.Log(ctx, tx, user.ID, "user.login", "user", user.ID, "{}")
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("audit login failed")
	}
	return user, nil
}

// CurrentUser loads the user a session points at, or ErrUnknownUser when the
// row no longer exists.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUnknownUser
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
