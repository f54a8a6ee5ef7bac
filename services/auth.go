package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/dealdirect/backend/logging"
	"github.com/dcode-github/dealdirect/backend/models"
	"github.com/dcode-github/dealdirect/backend/utils"
)

const minPasswordLength = 6

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService backs the admin panel accounts. Admins and the configured agent
// live in one store and authenticate through the same path.
type AuthService struct {
	accounts AccountStore
	tokens   *utils.TokenManager
	now      func() time.Time
}

func NewAuthService(accounts AccountStore, tokens *utils.TokenManager) *AuthService {
	return &AuthService{accounts: accounts, tokens: tokens, now: time.Now}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", models.ValidationError("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", models.ValidationError("invalid email %q", email)
	}
	return email, nil
}

func (s *AuthService) Register(ctx context.Context, reg Registration) (*models.Admin, error) {
	email, err := normalizeEmail(reg.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(reg.Name)
	if name == "" {
		return nil, models.ValidationError("name is required")
	}
	if len(reg.Password) < minPasswordLength {
		return nil, models.ValidationError("password must be at least %d characters", minPasswordLength)
	}

	existing, err := s.accounts.FindAdminByEmail(ctx, email)
	if err := ignoreNotFound(err); err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.DuplicateError("an account with email %s already exists", email)
	}

	hash, err := utils.HashPassword(reg.Password)
	if err != nil {
		return nil, models.StorageError(err, "failed to hash password")
	}

	now := s.now().UTC()
	admin := &models.Admin{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Password:  hash,
		Role:      models.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.accounts.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).WithField("admin", admin.ID.Hex()).Info("Admin registered")
	return admin, nil
}

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, c Credentials) (string, *models.Admin, error) {
	email, err := normalizeEmail(c.Email)
	if err != nil {
		return "", nil, err
	}
	if c.Password == "" {
		return "", nil, models.ValidationError("password is required")
	}

	admin, err := s.accounts.FindAdminByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		logging.FromContext(ctx).WithField("email", email).Info("Login for unknown account")
		return "", nil, models.UnauthorizedError("invalid email or password")
	}
	if err != nil {
		return "", nil, err
	}
	if !utils.CheckPasswordHash(c.Password, admin.Password) {
		logging.FromContext(ctx).WithField("admin", admin.ID.Hex()).Info("Login with wrong password")
		return "", nil, models.UnauthorizedError("invalid email or password")
	}

	token, err := s.tokens.GenerateJWT(admin.ID.Hex(), admin.Role)
	if err != nil {
		return "", nil, models.StorageError(err, "failed to issue token")
	}
	return token, admin, nil
}

func (s *AuthService) Profile(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	return s.accounts.GetAdmin(ctx, id)
}

// Authenticate validates a bearer token and reloads the account it names, so
// tokens of deleted accounts stop working.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Admin, error) {
	claims, err := s.tokens.ValidateJWT(token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, models.UnauthorizedError("token has expired")
		}
		return nil, models.UnauthorizedError("invalid token")
	}
	if claims.Role == models.RoleUser {
		return nil, models.ForbiddenError("user accounts cannot use the admin panel")
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, models.UnauthorizedError("invalid token")
	}
	admin, err := s.accounts.GetAdmin(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.UnauthorizedError("account no longer exists")
	}
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// SeedAccount creates or refreshes a configured account, typically the agent.
func (s *AuthService) SeedAccount(ctx context.Context, name, email, password, role string) (*models.Admin, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, models.ValidationError("password is required")
	}
	if role != models.RoleAdmin && role != models.RoleAgent {
		return nil, models.ValidationError("unknown role %q", role)
	}
	if strings.TrimSpace(name) == "" {
		name = role
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, models.StorageError(err, "failed to hash password")
	}
	now := s.now().UTC()
	return s.accounts.UpsertAdminByEmail(ctx, &models.Admin{
		Name:      strings.TrimSpace(name),
		Email:     email,
		Password:  hash,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	})
}
