package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fmontilla/users-system/internal/cache"
	"github.com/fmontilla/users-system/internal/models"
	"github.com/fmontilla/users-system/internal/store"
	"github.com/fmontilla/users-system/pkg/crypto"
	apperrors "github.com/fmontilla/users-system/pkg/errors"
	"github.com/fmontilla/users-system/pkg/logger"
	"github.com/fmontilla/users-system/pkg/metrics"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrEmailTaken indicates the email is already claimed by another record.
	ErrEmailTaken = apperrors.New("EMAIL_CONFLICT", "Email already in use", http.StatusConflict)
)

// DefaultCacheTTL bounds how stale a cached user projection can get.
const DefaultCacheTTL = 300 * time.Second

const (
	cacheKeyAllUsers    = "users:all"
	cacheKeyUserPattern = "users:*"
)

func cacheKeyUser(id uint) string {
	return fmt.Sprintf("users:%d", id)
}

// CreateUserInput describes the fields accepted when creating a user.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
	IsActive *bool
}

// UpdateUserInput enumerates mutable user attributes. Nil fields are
// left untouched.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *models.Role
	IsActive *bool
}

// UserService is the cache-aside repository for user records: reads go
// to the cache first and fall through to the store on a miss, every
// successful mutation broadly invalidates the users:* namespace.
//
// Cached projections never include the password credential. A cache
// entry may lag the store by at most one TTL period; callers must not
// assume read-after-write consistency.
type UserService struct {
	store store.UserStore
	cache cache.Store
	ttl   time.Duration
	log   *zap.Logger
}

// UserServiceOption customises the service.
type UserServiceOption func(*UserService)

// WithCacheTTL overrides the default entry time-to-live.
func WithCacheTTL(ttl time.Duration) UserServiceOption {
	return func(s *UserService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewUserService constructs a UserService instance.
func NewUserService(st store.UserStore, cs cache.Store, opts ...UserServiceOption) (*UserService, error) {
	if st == nil {
		return nil, errors.New("user service: store is required")
	}
	if cs == nil {
		return nil, errors.New("user service: cache is required")
	}

	s := &UserService{
		store: st,
		cache: cs,
		ttl:   DefaultCacheTTL,
		log:   logger.WithModule("users"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// List returns all users ordered by creation time descending, serving
// from the users:all cache entry when present.
func (s *UserService) List(ctx context.Context) ([]models.UserView, error) {
	if payload, ok := s.cacheGet(ctx, cacheKeyAllUsers, "all"); ok {
		var views []models.UserView
		if err := json.Unmarshal([]byte(payload), &views); err == nil {
			return views, nil
		}
		s.log.Warn("discarding undecodable cache entry", zap.String("key", cacheKeyAllUsers))
	}

	users, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]models.UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}

	s.cachePut(ctx, cacheKeyAllUsers, views)
	return views, nil
}

// Get returns a single user projection, serving from users:<id> when
// cached and populating the entry after a store read.
func (s *UserService) Get(ctx context.Context, id uint) (*models.UserView, error) {
	key := cacheKeyUser(id)
	if payload, ok := s.cacheGet(ctx, key, "one"); ok {
		var view models.UserView
		if err := json.Unmarshal([]byte(payload), &view); err == nil {
			return &view, nil
		}
		s.log.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	user, err := s.store.FindByID(ctx, id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	view := user.View()
	s.cachePut(ctx, key, view)
	return &view, nil
}

// Create provisions a new user with a hashed password and invalidates
// the users:* cache namespace once the insert has succeeded.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.UserView, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.NewBadRequest("role must be USER or ADMIN")
	}

	if err := s.ensureEmailAvailable(ctx, email); err != nil {
		return nil, err
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     role,
		IsActive: true,
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.store.Insert(ctx, user); err != nil {
		if store.IsUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	if err := s.invalidate(ctx); err != nil {
		return nil, err
	}

	view := user.View()
	return &view, nil
}

// Update applies a partial update to an existing user. An email change
// re-runs the uniqueness guard against the new address.
func (s *UserService) Update(ctx context.Context, id uint, input UpdateUserInput) (*models.UserView, error) {
	user, err := s.store.FindByID(ctx, id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			return nil, apperrors.NewBadRequest("email must not be empty")
		}
		if email != user.Email {
			if err := s.ensureEmailAvailable(ctx, email); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("name must not be empty")
		}
		user.Name = name
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperrors.NewBadRequest("role must be USER or ADMIN")
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Password != nil {
		if strings.TrimSpace(*input.Password) == "" {
			return nil, apperrors.NewBadRequest("password must not be empty")
		}
		hashed, err := crypto.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("user service: hash password: %w", err)
		}
		user.Password = hashed
	}

	if err := s.store.Update(ctx, user); err != nil {
		if store.IsUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("user service: update user: %w", err)
	}

	if err := s.invalidate(ctx); err != nil {
		return nil, err
	}

	view := user.View()
	return &view, nil
}

// Delete removes an existing user and invalidates the cache namespace.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("user service: delete user: %w", err)
	}

	return s.invalidate(ctx)
}

// cacheGet reads a key, treating backend failures as misses so that a
// cache outage degrades to store reads instead of failing requests.
func (s *UserService) cacheGet(ctx context.Context, key, kind string) (string, bool) {
	payload, found, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		s.log.Warn("cache read failed, falling through to store",
			zap.String("key", key), zap.Error(err))
		return "", false
	}
	if !found {
		metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return "", false
	}
	metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
	return payload, true
}

// cachePut serialises and stores a projection with the configured TTL.
// Population failures are logged only; the caller already holds fresh
// data from the store.
func (s *UserService) cachePut(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		s.log.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil {
		s.log.Warn("cache populate failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate clears every users:* entry. Over-invalidation is deliberate:
// any mutation can change the collection ordering and count, and clearing
// unrelated per-id entries is cheap while serving stale data until TTL
// expiry is not. Failures propagate because the alternative is readers
// seeing the old state for up to a full TTL period.
func (s *UserService) invalidate(ctx context.Context) error {
	if err := s.cache.DeleteByPattern(ctx, cacheKeyUserPattern); err != nil {
		return fmt.Errorf("user service: invalidate cache: %w", err)
	}
	metrics.CacheInvalidations.Inc()
	return nil
}
