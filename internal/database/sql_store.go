package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ibcoder/portfolio/internal/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type userModel struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                string     `bun:"id,pk"`
	Username          string     `bun:"username,notnull,unique"`
	Email             string     `bun:"email,notnull,unique"`
	PasswordHash      string     `bun:"password_hash,notnull"`
	NewsletterOptIn   bool       `bun:"newsletter_opt_in,notnull"`
	EmailVerified     bool       `bun:"email_verified,notnull"`
	ResetToken        *string    `bun:"reset_token"`
	ResetTokenExpires *time.Time `bun:"reset_token_expires"`
	CreatedAt         time.Time  `bun:"created_at,notnull"`
	UpdatedAt         time.Time  `bun:"updated_at,notnull"`
}

type verificationModel struct {
	bun.BaseModel `bun:"table:verifications,alias:v"`

	Code      string    `bun:"code,pk"`
	UserID    string    `bun:"user_id,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

type contactModel struct {
	bun.BaseModel `bun:"table:contact_messages,alias:cm"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name,notnull"`
	Email     string    `bun:"email,notnull"`
	Subject   string    `bun:"subject,notnull"`
	Message   string    `bun:"message,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// SQLStore implements domain.Store on top of bun and SQLite.
type SQLStore struct {
	db *bun.DB
}

// NewSQLStore wraps an existing bun database.
func NewSQLStore(db *bun.DB) *SQLStore {
	return &SQLStore{db: db}
}

// OpenSQLite opens a SQLite database through the bun shim driver and creates
// the schema when it does not exist yet.
func OpenSQLite(ctx context.Context, dsn string) (*SQLStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// SQLite serializes writers; a single connection also keeps :memory: databases alive.
	sqldb.SetMaxOpenConns(1)

	store := NewSQLStore(bun.NewDB(sqldb, sqlitedialect.New()))
	if err := store.Migrate(ctx); err != nil {
		_ = store.db.Close()
		return nil, err
	}
	slog.Info("Opened SQLite database", "dsn", dsn)
	return store, nil
}

// Migrate creates the tables used by the store.
func (s *SQLStore) Migrate(ctx context.Context) error {
	models := []any{
		(*userModel)(nil),
		(*verificationModel)(nil),
		(*contactModel)(nil),
	}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}
	return nil
}

// DB exposes the underlying bun handle.
func (s *SQLStore) DB() *bun.DB {
	return s.db
}

// Close releases the database connection.
func (s *SQLStore) Close(ctx context.Context) error {
	return s.db.Close()
}

// CreateUser inserts a new user. Duplicate emails or usernames are reported as
// domain.ErrUserAlreadyExists.
func (s *SQLStore) CreateUser(ctx context.Context, user *domain.User) error {
	m := toUserModel(user)
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// ListUsers returns every user ordered by creation time.
func (s *SQLStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userModel
	if err := s.db.NewSelect().Model(&rows).Order("created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, *rows[i].toDomain())
	}
	return users, nil
}

func (s *SQLStore) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *SQLStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, "email = ?", strings.ToLower(email))
}

// FindUserByResetToken returns the user holding token while it is still valid.
func (s *SQLStore) FindUserByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrInvalidResetToken
	}
	user, err := s.findUser(ctx, "reset_token = ?", token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidResetToken
	}
	if err != nil {
		return nil, err
	}
	if user.ResetTokenExpires == nil || !now.Before(*user.ResetTokenExpires) {
		return nil, domain.ErrInvalidResetToken
	}
	return user, nil
}

func (s *SQLStore) findUser(ctx context.Context, where string, arg any) (*domain.User, error) {
	var m userModel
	err := s.db.NewSelect().Model(&m).Where(where, arg).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return m.toDomain(), nil
}

func (s *SQLStore) MarkEmailVerified(ctx context.Context, id string) error {
	q := s.db.NewUpdate().Model((*userModel)(nil)).
		Set("email_verified = ?", true).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id)
	return execExpectingRow(ctx, q, "mark email verified")
}

func (s *SQLStore) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	q := s.db.NewUpdate().Model((*userModel)(nil)).
		Set("reset_token = ?", token).
		Set("reset_token_expires = ?", expires.UTC()).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id)
	return execExpectingRow(ctx, q, "set reset token")
}

// UpdatePassword stores a new password hash and invalidates any reset token.
func (s *SQLStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	q := s.db.NewUpdate().Model((*userModel)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("reset_token = NULL").
		Set("reset_token_expires = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id)
	return execExpectingRow(ctx, q, "update password")
}

func (s *SQLStore) SaveVerification(ctx context.Context, v *domain.Verification) error {
	m := &verificationModel{
		Code:      v.Code,
		UserID:    v.UserID,
		ExpiresAt: v.ExpiresAt.UTC(),
		CreatedAt: v.CreatedAt.UTC(),
	}
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrVerificationCodeTaken
		}
		return fmt.Errorf("failed to save verification: %w", err)
	}
	return nil
}

// ConsumeVerification deletes the code in the same transaction that reads it,
// so a code can be redeemed at most once.
func (s *SQLStore) ConsumeVerification(ctx context.Context, code string, now time.Time) (*domain.Verification, error) {
	var found *domain.Verification
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var m verificationModel
		err := tx.NewSelect().Model(&m).Where("code = ?", code).Limit(1).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInvalidVerificationCode
		}
		if err != nil {
			return fmt.Errorf("failed to load verification: %w", err)
		}
		if _, err := tx.NewDelete().Model((*verificationModel)(nil)).Where("code = ?", code).Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete verification: %w", err)
		}
		found = &domain.Verification{
			Code:      m.Code,
			UserID:    m.UserID,
			ExpiresAt: m.ExpiresAt,
			CreatedAt: m.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found.Expired(now) {
		return nil, domain.ErrInvalidVerificationCode
	}
	return found, nil
}

func (s *SQLStore) SaveContact(ctx context.Context, msg *domain.ContactMessage) error {
	m := &contactModel{
		ID:        msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Message:   msg.Message,
		CreatedAt: msg.CreatedAt.UTC(),
	}
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("failed to save contact message: %w", err)
	}
	return nil
}

func execExpectingRow(ctx context.Context, q *bun.UpdateQuery, op string) error {
	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed: UNIQUE")
}

func toUserModel(u *domain.User) *userModel {
	return &userModel{
		ID:                u.ID,
		Username:          u.Username,
		Email:             strings.ToLower(u.Email),
		PasswordHash:      u.PasswordHash,
		NewsletterOptIn:   u.NewsletterOptIn,
		EmailVerified:     u.EmailVerified,
		ResetToken:        u.ResetToken,
		ResetTokenExpires: u.ResetTokenExpires,
		CreatedAt:         u.CreatedAt.UTC(),
		UpdatedAt:         u.UpdatedAt.UTC(),
	}
}

func (m *userModel) toDomain() *domain.User {
	return &domain.User{
		ID:                m.ID,
		Username:          m.Username,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		NewsletterOptIn:   m.NewsletterOptIn,
		EmailVerified:     m.EmailVerified,
		ResetToken:        m.ResetToken,
		ResetTokenExpires: m.ResetTokenExpires,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
