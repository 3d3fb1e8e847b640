package admins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/foundersportal/portal/backend/go-services/internal/models"
	"github.com/foundersportal/portal/backend/go-services/internal/oidc"
	"github.com/foundersportal/portal/backend/go-services/pkg/response"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthorized      = errors.New("this account is not authorized to access the dashboard")
	ErrSelfDelete         = errors.New("you cannot delete your own account")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// CreateInput is the body of POST /api/admin/admins.
type CreateInput struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name"`
	Role     string `json:"role" binding:"omitempty,oneof=admin superadmin"`
	Password string `json:"password"`
}

// UpdateInput is the body of PUT /api/admin/admins/:id. Nil fields are left unchanged.
type UpdateInput struct {
	Name     *string `json:"name"`
	Role     *string `json:"role" binding:"omitempty,oneof=admin superadmin"`
	Active   *bool   `json:"active"`
	Password *string `json:"password"`
}

// Service encapsulates admin-related business logic
type Service struct {
	repo      Repository
	bootstrap map[string]bool
	now       func() time.Time
}

// NewService creates the service. Emails in bootstrap may sign in with Google
// before any admin record exists and are created as superadmins.
func NewService(r Repository, bootstrap []string) *Service {
	b := make(map[string]bool, len(bootstrap))
	for _, e := range bootstrap {
		b[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return &Service{repo: r, bootstrap: b, now: func() time.Time { return time.Now().UTC() }}
}

// LoginWithGoogle resolves a verified Google identity to an active admin.
func (s *Service) LoginWithGoogle(ctx context.Context, id *oidc.Identity) (*models.Admin, error) {
	email := strings.ToLower(id.Email)
	a, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		if !s.bootstrap[email] {
			return nil, ErrNotAuthorized
		}
		now := s.now()
		a = &models.Admin{
			ID:          uuid.NewString(),
			Email:       email,
			Name:        id.Name,
			Picture:     id.Picture,
			GoogleSub:   id.Subject,
			Role:        models.RoleSuperAdmin,
			Active:      true,
			LastLoginAt: &now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.Create(ctx, a); err != nil {
			return nil, fmt.Errorf("create bootstrap admin: %w", err)
		}
		return a, nil
	case err != nil:
		return nil, err
	}

	if !a.Active {
		return nil, ErrNotAuthorized
	}
	if a.GoogleSub != "" && a.GoogleSub != id.Subject {
		return nil, ErrNotAuthorized
	}
	a.GoogleSub = id.Subject
	if a.Name == "" {
		a.Name = id.Name
	}
	if id.Picture != "" {
		a.Picture = id.Picture
	}
	return a, s.touch(ctx, a)
}

// PasswordLogin checks email and password for admins that have a password set.
func (s *Service) PasswordLogin(ctx context.Context, email, password string) (*models.Admin, error) {
	a, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !a.Active || a.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return a, s.touch(ctx, a)
}

func (s *Service) touch(ctx context.Context, a *models.Admin) error {
	now := s.now()
	a.LastLoginAt = &now
	a.UpdatedAt = now
	return s.repo.Update(ctx, a)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Admin, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.Admin, error) {
	return s.repo.List(ctx)
}

// Create adds an admin. Role defaults to admin.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Admin, error) {
	now := s.now()
	a := &models.Admin{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Name:      in.Name,
		Role:      in.Role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if a.Role == "" {
		a.Role = models.RoleAdmin
	}
	if in.Password != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		a.PasswordHash = hash
	}
	if err := response.Validator().Struct(a); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Upsert creates the admin or, when the email exists, updates role, name and password.
func (s *Service) Upsert(ctx context.Context, in CreateInput) (*models.Admin, error) {
	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if errors.Is(err, ErrNotFound) {
		return s.Create(ctx, in)
	}
	if err != nil {
		return nil, err
	}
	upd := UpdateInput{Active: boolPtr(true)}
	if in.Name != "" {
		upd.Name = &in.Name
	}
	if in.Role != "" {
		upd.Role = &in.Role
	}
	if in.Password != "" {
		upd.Password = &in.Password
	}
	return s.Update(ctx, existing.ID, upd)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Admin, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		a.Name = *in.Name
	}
	if in.Role != nil {
		a.Role = *in.Role
	}
	if in.Active != nil {
		a.Active = *in.Active
	}
	if in.Password != nil {
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		a.PasswordHash = hash
	}
	if err := response.Validator().Struct(a); err != nil {
		return nil, err
	}
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an admin. actorID is the caller; admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return ErrSelfDelete
	}
	return s.repo.Delete(ctx, id)
}

// HashPassword bcrypt-hashes a password after a length check.
func HashPassword(pw string) (string, error) {
	if len(pw) < 8 {
		return "", ErrWeakPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func boolPtr(b bool) *bool { return &b }
