// Package application coordinates staff authentication and management.
package application

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wyfcoding/shopbackoffice/internal/admin/domain"
	"github.com/wyfcoding/shopbackoffice/pkg/logger"
)

// SuperAdminRole is seeded at startup and carries the wildcard permission.
const SuperAdminRole = "SuperAdmin"

// Claims is the JWT payload; the registered ID doubles as the session key.
type Claims struct {
	jwt.RegisteredClaims
	AdminID uint   `json:"admin_id"`
	Role    string `json:"role"`
}

type CreateAdminCommand struct {
	Username string
	Password string
	RoleName string
}

type CreateRoleCommand struct {
	Name        string
	Permissions []string
}

type AdminApplicationService struct {
	admins    domain.AdminRepository
	roles     domain.RoleRepository
	sessions  domain.SessionRepository
	publisher domain.EventPublisher
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAdminApplicationService(
	admins domain.AdminRepository,
	roles domain.RoleRepository,
	sessions domain.SessionRepository,
	publisher domain.EventPublisher,
	jwtSecret string,
	tokenTTL time.Duration,
) *AdminApplicationService {
	return &AdminApplicationService{
		admins:    admins,
		roles:     roles,
		sessions:  sessions,
		publisher: publisher,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Login verifies the credentials, opens a server-side session and signs a
// token whose id points at it.
func (s *AdminApplicationService) Login(ctx context.Context, username, password string) (string, *domain.Session, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrAdminNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	session := &domain.Session{
		ID:          uuid.New().String(),
		AdminID:     admin.ID,
		Username:    admin.Username,
		Role:        admin.Role.Name,
		Permissions: admin.Role.PermissionList(),
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.tokenTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", nil, err
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   admin.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		AdminID: admin.ID,
		Role:    admin.Role.Name,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	event := domain.AdminLoggedInEvent{
		AdminID:   admin.ID,
		Username:  admin.Username,
		Timestamp: now,
	}
	if err := s.publisher.Publish(ctx, domain.TopicAdminLoggedIn, admin.Username, event); err != nil {
		logger.Warn(ctx, "failed to publish admin logged in event", "admin_id", admin.ID, "error", err)
	}

	return token, session, nil
}

// Authenticate verifies a token and resolves the session behind it.
func (s *AdminApplicationService) Authenticate(ctx context.Context, tokenString string) (*domain.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.ID == "" {
		return nil, domain.ErrInvalidToken
	}

	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			logger.Warn(ctx, "failed to drop expired session", "session_id", session.ID, "error", err)
		}
		return nil, domain.ErrSessionExpired
	}
	return session, nil
}

// Logout revokes the session; the token is dead from this point even
// though its signature is still valid.
func (s *AdminApplicationService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

func (s *AdminApplicationService) CreateAdmin(ctx context.Context, cmd CreateAdminCommand) (uint, error) {
	role, err := s.roles.GetByName(ctx, cmd.RoleName)
	if err != nil {
		return 0, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	admin := domain.NewAdmin(cmd.Username, string(hash), role.ID)
	if err := s.admins.Save(ctx, admin); err != nil {
		return 0, err
	}

	event := domain.AdminCreatedEvent{
		AdminID:   admin.ID,
		Username:  admin.Username,
		RoleID:    role.ID,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, domain.TopicAdminCreated, admin.Username, event); err != nil {
		logger.Warn(ctx, "failed to publish admin created event", "admin_id", admin.ID, "error", err)
	}

	return admin.ID, nil
}

func (s *AdminApplicationService) CreateRole(ctx context.Context, cmd CreateRoleCommand) (uint, error) {
	role, err := domain.NewRole(cmd.Name, cmd.Permissions)
	if err != nil {
		return 0, err
	}
	if err := s.roles.Save(ctx, role); err != nil {
		return 0, err
	}

	event := domain.RoleCreatedEvent{
		RoleID:    role.ID,
		Name:      role.Name,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, domain.TopicRoleCreated, role.Name, event); err != nil {
		logger.Warn(ctx, "failed to publish role created event", "role_id", role.ID, "error", err)
	}

	return role.ID, nil
}

func (s *AdminApplicationService) GetAdmin(ctx context.Context, id uint) (*domain.Admin, error) {
	return s.admins.GetByID(ctx, id)
}

func (s *AdminApplicationService) ListAdmins(ctx context.Context, page, size int) ([]*domain.Admin, int64, error) {
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	return s.admins.List(ctx, offset, size)
}

func (s *AdminApplicationService) DeleteAdmin(ctx context.Context, id uint) error {
	return s.admins.Delete(ctx, id)
}

func (s *AdminApplicationService) ListRoles(ctx context.Context) ([]*domain.Role, error) {
	return s.roles.List(ctx)
}

// Bootstrap seeds the wildcard role and the first staff account so a fresh
// deployment can be signed into.
func (s *AdminApplicationService) Bootstrap(ctx context.Context, username, password string) error {
	role, err := s.roles.GetByName(ctx, SuperAdminRole)
	if errors.Is(err, domain.ErrRoleNotFound) {
		role, err = domain.NewRole(SuperAdminRole, []string{domain.PermAll})
		if err != nil {
			return err
		}
		if err := s.roles.Save(ctx, role); err != nil {
			return err
		}
		logger.Info(ctx, "seeded role", "role", SuperAdminRole)
	} else if err != nil {
		return err
	}

	_, err = s.admins.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrAdminNotFound) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if err := s.admins.Save(ctx, domain.NewAdmin(username, string(hash), role.ID)); err != nil {
			return err
		}
		logger.Info(ctx, "seeded bootstrap admin", "username", username)
		return nil
	}
	return err
}
