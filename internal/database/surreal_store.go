package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ibcoder/portfolio/internal/domain"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// SurrealConfig carries the connection settings for a SurrealDB instance.
type SurrealConfig struct {
	URL       string
	Namespace string
	Database  string
	User      string
	Password  string
}

// surrealUser mirrors domain.User as stored in the "user" table. Times are
// kept as RFC 3339 strings so they compare lexically inside SurrealQL.
type surrealUser struct {
	ID                *surrealmodels.RecordID `json:"id,omitempty"`
	UserID            string                  `json:"user_id"`
	Username          string                  `json:"username"`
	Email             string                  `json:"email"`
	PasswordHash      string                  `json:"password_hash"`
	NewsletterOptIn   bool                    `json:"newsletter_opt_in"`
	EmailVerified     bool                    `json:"email_verified"`
	ResetToken        *string                 `json:"reset_token,omitempty"`
	ResetTokenExpires *string                 `json:"reset_token_expires,omitempty"`
	CreatedAt         string                  `json:"created_at"`
	UpdatedAt         string                  `json:"updated_at"`
}

type surrealVerification struct {
	ID        *surrealmodels.RecordID `json:"id,omitempty"`
	Code      string                  `json:"code"`
	UserID    string                  `json:"user_id"`
	ExpiresAt string                  `json:"expires_at"`
	CreatedAt string                  `json:"created_at"`
}

// SurrealStore implements domain.Store on SurrealDB.
type SurrealStore struct {
	db *surrealdb.DB
}

// NewSurrealStore wraps an authenticated connection whose namespace and
// database are already selected.
func NewSurrealStore(db *surrealdb.DB) *SurrealStore {
	return &SurrealStore{db: db}
}

// OpenSurreal connects, signs in and selects the namespace/database.
func OpenSurreal(ctx context.Context, cfg SurrealConfig) (*SurrealStore, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to surrealdb: %w", err)
	}

	if cfg.User != "" {
		authData := &surrealdb.Auth{
			Username: cfg.User,
			Password: cfg.Password,
		}
		if _, err = db.SignIn(ctx, authData); err != nil {
			db.Close(ctx)
			return nil, fmt.Errorf("failed to sign in: %w", err)
		}
	}

	if err = db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/db: %w", err)
	}

	slog.Info("Successfully signed in to SurrealDB", "namespace", cfg.Namespace, "database", cfg.Database)
	return NewSurrealStore(db), nil
}

func (s *SurrealStore) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}

func (s *SurrealStore) CreateUser(ctx context.Context, user *domain.User) error {
	existing, err := queryOne[surrealUser](ctx, s.db,
		"SELECT * FROM user WHERE email = $email OR username = $username",
		map[string]any{"email": strings.ToLower(user.Email), "username": user.Username})
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrUserAlreadyExists
	}

	row := toSurrealUser(user)
	err = execute(ctx, s.db, "CREATE type::thing('user', $id) CONTENT $data",
		map[string]any{"id": user.ID, "data": row})
	if err != nil && strings.Contains(err.Error(), "already exists") {
		return domain.ErrUserAlreadyExists
	}
	return err
}

func (s *SurrealStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := query[surrealUser](ctx, s.db, "SELECT * FROM user ORDER BY created_at ASC", nil)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, *rows[i].toDomain())
	}
	return users, nil
}

func (s *SurrealStore) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findUser(ctx, "SELECT * FROM user WHERE user_id = $value", id)
}

func (s *SurrealStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, "SELECT * FROM user WHERE email = $value", strings.ToLower(email))
}

func (s *SurrealStore) FindUserByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrInvalidResetToken
	}
	user, err := s.findUser(ctx,
		"SELECT * FROM user WHERE reset_token = $value", token)
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

func (s *SurrealStore) findUser(ctx context.Context, q string, value string) (*domain.User, error) {
	row, err := queryOne[surrealUser](ctx, s.db, q, map[string]any{"value": value})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.ErrNotFound
	}
	return row.toDomain(), nil
}

func (s *SurrealStore) MarkEmailVerified(ctx context.Context, id string) error {
	return s.updateUser(ctx, id,
		"UPDATE type::thing('user', $id) SET email_verified = true, updated_at = $now RETURN AFTER",
		nil)
}

func (s *SurrealStore) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	return s.updateUser(ctx, id, `
		UPDATE type::thing('user', $id) SET
			reset_token = $token,
			reset_token_expires = $expires,
			updated_at = $now
		RETURN AFTER`,
		map[string]any{"token": token, "expires": formatTime(expires)})
}

func (s *SurrealStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return s.updateUser(ctx, id, `
		UPDATE type::thing('user', $id) SET
			password_hash = $hash,
			reset_token = NONE,
			reset_token_expires = NONE,
			updated_at = $now
		RETURN AFTER`,
		map[string]any{"hash": passwordHash})
}

func (s *SurrealStore) updateUser(ctx context.Context, id, q string, params map[string]any) error {
	if params == nil {
		params = map[string]any{}
	}
	params["id"] = id
	params["now"] = formatTime(time.Now())
	rows, err := query[surrealUser](ctx, s.db, q, params)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *SurrealStore) SaveVerification(ctx context.Context, v *domain.Verification) error {
	row := surrealVerification{
		Code:      v.Code,
		UserID:    v.UserID,
		ExpiresAt: formatTime(v.ExpiresAt),
		CreatedAt: formatTime(v.CreatedAt),
	}
	err := execute(ctx, s.db, "CREATE type::thing('verification', $code) CONTENT $data",
		map[string]any{"code": v.Code, "data": row})
	if err != nil && strings.Contains(err.Error(), "already exists") {
		return domain.ErrVerificationCodeTaken
	}
	return err
}

// ConsumeVerification relies on DELETE ... RETURN BEFORE being atomic for a
// single record, so concurrent redemptions see the row at most once.
func (s *SurrealStore) ConsumeVerification(ctx context.Context, code string, now time.Time) (*domain.Verification, error) {
	row, err := queryOne[surrealVerification](ctx, s.db,
		"DELETE type::thing('verification', $code) RETURN BEFORE",
		map[string]any{"code": code})
	if err != nil {
		return nil, err
	}
	if row == nil || row.Code == "" {
		return nil, domain.ErrInvalidVerificationCode
	}
	v := &domain.Verification{
		Code:      row.Code,
		UserID:    row.UserID,
		ExpiresAt: parseTime(row.ExpiresAt),
		CreatedAt: parseTime(row.CreatedAt),
	}
	if v.Expired(now) {
		return nil, domain.ErrInvalidVerificationCode
	}
	return v, nil
}

func (s *SurrealStore) SaveContact(ctx context.Context, msg *domain.ContactMessage) error {
	return execute(ctx, s.db, "CREATE type::thing('contact_message', $id) CONTENT $data",
		map[string]any{
			"id": msg.ID,
			"data": map[string]any{
				"name":       msg.Name,
				"email":      msg.Email,
				"subject":    msg.Subject,
				"message":    msg.Message,
				"created_at": formatTime(msg.CreatedAt),
			},
		})
}

// query executes a raw SurrealQL statement and returns the rows of its first result.
func query[T any](ctx context.Context, db *surrealdb.DB, q string, params map[string]any) ([]T, error) {
	results, err := surrealdb.Query[[]T](ctx, db, q, params)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

// queryOne returns the first row, or nil when the statement produced none.
func queryOne[T any](ctx context.Context, db *surrealdb.DB, q string, params map[string]any) (*T, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(q))
	if strings.HasPrefix(trimmed, "SELECT") && !strings.Contains(" "+trimmed+" ", " LIMIT ") {
		q += " LIMIT 1"
	}
	rows, err := query[T](ctx, db, q, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func execute(ctx context.Context, db *surrealdb.DB, q string, params map[string]any) error {
	if _, err := surrealdb.Query[any](ctx, db, q, params); err != nil {
		return fmt.Errorf("query execution failed: %w", err)
	}
	return nil
}

func toSurrealUser(u *domain.User) surrealUser {
	row := surrealUser{
		UserID:          u.ID,
		Username:        u.Username,
		Email:           strings.ToLower(u.Email),
		PasswordHash:    u.PasswordHash,
		NewsletterOptIn: u.NewsletterOptIn,
		EmailVerified:   u.EmailVerified,
		ResetToken:      u.ResetToken,
		CreatedAt:       formatTime(u.CreatedAt),
		UpdatedAt:       formatTime(u.UpdatedAt),
	}
	if u.ResetTokenExpires != nil {
		expires := formatTime(*u.ResetTokenExpires)
		row.ResetTokenExpires = &expires
	}
	return row
}

func (r *surrealUser) toDomain() *domain.User {
	u := &domain.User{
		ID:              r.UserID,
		Username:        r.Username,
		Email:           r.Email,
		PasswordHash:    r.PasswordHash,
		NewsletterOptIn: r.NewsletterOptIn,
		EmailVerified:   r.EmailVerified,
		ResetToken:      r.ResetToken,
		CreatedAt:       parseTime(r.CreatedAt),
		UpdatedAt:       parseTime(r.UpdatedAt),
	}
	if r.ResetTokenExpires != nil {
		expires := parseTime(*r.ResetTokenExpires)
		u.ResetTokenExpires = &expires
	}
	return u
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
