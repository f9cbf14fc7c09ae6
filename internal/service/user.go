package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/crm-service/internal/metrics"
	"github.com/iliyamo/crm-service/internal/model"
	"github.com/iliyamo/crm-service/internal/repository"
	"github.com/iliyamo/crm-service/internal/utils"
)

// UserConfig carries the credential and hashing settings.
type UserConfig struct {
	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int
}

// UserService handles accounts, credentials and the identity lookup used
// by the authorization gate.
type UserService struct {
	users  UserStore
	cfg    UserConfig
	events notifier
	now    func() time.Time
}

func NewUserService(users UserStore, cfg UserConfig, pub EventPublisher) *UserService {
	return &UserService{
		users:  users,
		cfg:    cfg,
		events: notifier{pub: pub},
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  model.PublicUser `json:"user"`
	Token string           `json:"token"`
}

// Register creates an account and issues a credential. The role is stored
// as given; an empty role becomes the default.
func (s *UserService) Register(ctx context.Context, in model.RegisterInput) (*AuthResult, error) {
	if r := model.ValidateRegister(in); !r.OK() {
		return nil, invalid(r)
	}
	email := normalizeEmail(in.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, Conflict("User already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, errors.Wrap(err, "check email")
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = model.DefaultRole
	}
	now := s.now()
	u := &model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, Conflict("User already exists")
		}
		return nil, errors.Wrap(err, "create user")
	}
	tok, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.events.emit(WithActor(ctx, u.ID.Hex()), "user", "registered", u.ID)
	return &AuthResult{User: u.Public(), Token: tok}, nil
}

// Login verifies a password. An unknown email is reported as NotFound and a
// wrong password as Unauthenticated; both carry the same message.
func (s *UserService) Login(ctx context.Context, in model.LoginInput) (*AuthResult, error) {
	if r := model.ValidateLogin(in); !r.OK() {
		metrics.RecordLogin("invalid")
		return nil, invalid(r)
	}
	u, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordLogin("unknown_email")
			return nil, NotFound("Invalid credentials")
		}
		return nil, errors.Wrap(err, "load user")
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		metrics.RecordLogin("bad_password")
		return nil, Unauthenticated("Invalid credentials")
	}
	tok, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	metrics.RecordLogin("success")
	return &AuthResult{User: u.Public(), Token: tok}, nil
}

// Authenticate resolves a bearer credential to the stored user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := utils.ParseAccessToken(s.cfg.JWTSecret, token)
	if err != nil {
		return nil, Unauthenticated("Not Authorized, Token Failed!")
	}
	id, ok := model.ParseID(claims.UserID)
	if !ok {
		return nil, Unauthenticated("Not Authorized, Token Failed!")
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Unauthenticated("Not Authorized, User Not Found!")
		}
		return nil, errors.Wrap(err, "load user")
	}
	return u, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.PublicUser, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := u.Public()
	return &p, nil
}

// UpdateProfile replaces name, email and password of the caller. All three
// are required and the password is re-hashed.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in model.ProfileInput) (*model.PublicUser, error) {
	if r := model.ValidateProfile(in); !r.OK() {
		return nil, invalid(r)
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	updated, err := s.update(ctx, u.ID.Hex(), model.UserPatch{Name: &name, Email: &email, PasswordHash: &hash})
	if err != nil {
		return nil, err
	}
	p := updated.Public()
	return &p, nil
}

// ListAll returns every user except the caller.
func (s *UserService) ListAll(ctx context.Context, callerID string) ([]model.User, error) {
	id, _ := model.ParseID(callerID)
	users, err := s.users.ListExcept(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// UpdateByID applies a partial admin update. A provided password is
// re-hashed; the role is stored as given.
func (s *UserService) UpdateByID(ctx context.Context, id string, in model.UserInput) error {
	if r := model.ValidateUser(in); !r.OK() {
		return invalid(r)
	}
	p := model.UserPatch{Role: in.Role}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		p.Name = &name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		p.Email = &email
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password, s.cfg.BcryptCost)
		if err != nil {
			return errors.Wrap(err, "hash password")
		}
		p.PasswordHash = &hash
	}
	_, err := s.update(ctx, id, p)
	return err
}

func (s *UserService) update(ctx context.Context, id string, p model.UserPatch) (*model.User, error) {
	oid, ok := model.ParseID(id)
	if !ok {
		return nil, NotFound("User not found")
	}
	u, err := s.users.Update(ctx, oid, p)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, NotFound("User not found")
		case errors.Is(err, repository.ErrEmailExists):
			return nil, Conflict("User already exists")
		}
		return nil, errors.Wrap(err, "update user")
	}
	s.events.emit(ctx, "user", "updated", u.ID)
	return u, nil
}

func (s *UserService) load(ctx context.Context, id string) (*model.User, error) {
	oid, ok := model.ParseID(id)
	if !ok {
		return nil, NotFound("User not found")
	}
	u, err := s.users.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("User not found")
		}
		return nil, errors.Wrap(err, "load user")
	}
	return u, nil
}

func (s *UserService) issue(u *model.User) (string, error) {
	tok, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID.Hex(), u.Role, s.cfg.AccessTTLMin)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return tok.Token, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
