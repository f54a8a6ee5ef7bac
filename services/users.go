package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/dealdirect/backend/logging"
	"github.com/dcode-github/dealdirect/backend/models"
	"github.com/dcode-github/dealdirect/backend/utils"
)

// UserService backs the client-site accounts. User tokens carry the user role
// and are only accepted by the user routes.
type UserService struct {
	users  UserStore
	tokens *utils.TokenManager
	now    func() time.Time
}

func NewUserService(users UserStore, tokens *utils.TokenManager) *UserService {
	return &UserService{users: users, tokens: tokens, now: time.Now}
}

func (s *UserService) Register(ctx context.Context, reg Registration) (*models.User, error) {
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

	existing, err := s.users.FindUserByEmail(ctx, email)
	if err := ignoreNotFound(err); err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.DuplicateError("a user with email %s already exists", email)
	}

	hash, err := utils.HashPassword(reg.Password)
	if err != nil {
		return nil, models.StorageError(err, "failed to hash password")
	}

	now := s.now().UTC()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).WithField("user", user.ID.Hex()).Info("User registered")
	return user, nil
}

func (s *UserService) Login(ctx context.Context, c Credentials) (string, *models.User, error) {
	email, err := normalizeEmail(c.Email)
	if err != nil {
		return "", nil, err
	}
	if c.Password == "" {
		return "", nil, models.ValidationError("password is required")
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		logging.FromContext(ctx).WithField("email", email).Info("Login for unknown user")
		return "", nil, models.UnauthorizedError("invalid email or password")
	}
	if err != nil {
		return "", nil, err
	}
	if !utils.CheckPasswordHash(c.Password, user.Password) {
		logging.FromContext(ctx).WithField("user", user.ID.Hex()).Info("User login with wrong password")
		return "", nil, models.UnauthorizedError("invalid email or password")
	}

	token, err := s.tokens.GenerateJWT(user.ID.Hex(), models.RoleUser)
	if err != nil {
		return "", nil, models.StorageError(err, "failed to issue token")
	}
	return token, user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

// Authenticate accepts only user-role tokens whose user still exists.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.ValidateJWT(token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, models.UnauthorizedError("token has expired")
		}
		return nil, models.UnauthorizedError("invalid token")
	}
	if claims.Role != models.RoleUser {
		return nil, models.ForbiddenError("this route requires a user account")
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, models.UnauthorizedError("invalid token")
	}
	user, err := s.users.GetUser(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.UnauthorizedError("account no longer exists")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
