package identity

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"log"
	"strings"
	"time"
)

const minPasswordLen = 6

type Service struct {
	Store  store.RecordStore
	Locks  *store.Locker
	Tokens *Tokens
	Now    func() time.Time

	// HashCost defaults to bcrypt.DefaultCost; tests lower it.
	HashCost int
}

func (s *Service) users() store.Collection[User] {
	return store.Collection[User]{Store: s.Store, Key: store.KeyUsers}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) hash(password string) (string, error) {
	cost := s.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, err, "hash password")
	}
	return string(b), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a customer account and returns a session token for it.
func (s *Service) Register(ctx context.Context, name, email, password string) (string, PublicUser, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return "", PublicUser{}, apperr.E(apperr.InvalidArgument, "name, email, and password are required")
	}
	if len(password) < minPasswordLen {
		return "", PublicUser{}, apperr.Ef(apperr.InvalidArgument, "password must be at least %d characters", minPasswordLen)
	}

	u, err := s.create(ctx, name, email, password, RoleCustomer)
	if err != nil {
		return "", PublicUser{}, err
	}
	token, err := s.Tokens.Issue(u)
	if err != nil {
		return "", PublicUser{}, apperr.Wrap(apperr.Internal, err, "issue token")
	}
	return token, u.Public(), nil
}

var errEmailTaken = apperr.E(apperr.Conflict, "email already registered")

func (s *Service) create(ctx context.Context, name, email, password string, role Role) (User, error) {
	hash, err := s.hash(password)
	if err != nil {
		return User{}, err
	}

	unlock := s.Locks.Lock(store.KeyUsers)
	defer unlock()

	users, err := s.users().ReadAll(ctx)
	if err != nil {
		return User{}, apperr.Wrap(apperr.Internal, err, "load users")
	}
	for _, u := range users {
		if u.Email == email {
			return User{}, errEmailTaken
		}
	}
	u := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now(),
	}
	users = append(users, u)
	if err := s.users().WriteAll(ctx, users); err != nil {
		return User{}, apperr.Wrap(apperr.Internal, err, "save users")
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, PublicUser, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", PublicUser{}, apperr.E(apperr.InvalidArgument, "email and password are required")
	}
	users, err := s.users().ReadAll(ctx)
	if err != nil {
		return "", PublicUser{}, apperr.Wrap(apperr.Internal, err, "load users")
	}
	invalid := apperr.E(apperr.Unauthenticated, "invalid email or password")
	for _, u := range users {
		if u.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return "", PublicUser{}, invalid
		}
		token, err := s.Tokens.Issue(u)
		if err != nil {
			return "", PublicUser{}, apperr.Wrap(apperr.Internal, err, "issue token")
		}
		return token, u.Public(), nil
	}
	return "", PublicUser{}, invalid
}

func (s *Service) Lookup(ctx context.Context, userID string) (User, error) {
	users, err := s.users().ReadAll(ctx)
	if err != nil {
		return User{}, apperr.Wrap(apperr.Internal, err, "load users")
	}
	for _, u := range users {
		if u.ID == userID {
			return u, nil
		}
	}
	return User{}, apperr.E(apperr.NotFound, "user not found")
}

func (s *Service) Me(ctx context.Context, p Principal) (PublicUser, error) {
	u, err := s.Lookup(ctx, p.UserID)
	if err != nil {
		return PublicUser{}, err
	}
	return u.Public(), nil
}

func (s *Service) Verify(token string) (Principal, error) {
	return s.Tokens.Verify(token)
}

// EnsureAdmin creates the bootstrap admin account unless the email is taken.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	_, err := s.create(ctx, "Admin", email, password, RoleAdmin)
	if errors.Is(err, errEmailTaken) {
		if u, ok, err := s.byEmail(ctx, email); err == nil && ok && u.Role != RoleAdmin {
			log.Printf("WARNING: bootstrap admin %s is registered with role %q; no admin account was created", email, u.Role)
		}
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("default admin created: %s", email)
	return nil
}

func (s *Service) byEmail(ctx context.Context, email string) (User, bool, error) {
	users, err := s.users().ReadAll(ctx)
	if err != nil {
		return User{}, false, apperr.Wrap(apperr.Internal, err, "load users")
	}
	for _, u := range users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return User{}, false, nil
}
