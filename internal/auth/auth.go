// Package auth manages host accounts: username/password sign-up and sign-in
// against the local host table, with a single signed-in host per process.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sadopc/viva/internal/logging"
	"github.com/sadopc/viva/internal/store"
)

const (
	MinPasswordLength = 6

	defaultDomain      = "hosts.viva-invite.app"
	defaultMaxAttempts = 5
	defaultLockout     = time.Minute
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{3,30}$`)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongCredential    = errors.New("wrong username or password")
	ErrAlreadyExists      = errors.New("username already taken")
	ErrWeakPassword       = errors.New("password too short")
	ErrRateLimited        = errors.New("too many attempts")
)

// Message returns the text shown to a host for err.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredentials):
		return "Please enter both username and password."
	case errors.Is(err, ErrInvalidUsername):
		return "Usernames must be 3-30 characters using letters, numbers, dots, underscores, or dashes."
	case errors.Is(err, ErrUserNotFound):
		return "Username doesn't exist, please create an account."
	case errors.Is(err, ErrWrongCredential):
		return "Username or password is incorrect."
	case errors.Is(err, ErrAlreadyExists):
		return "That username is already taken. Try a different one."
	case errors.Is(err, ErrWeakPassword):
		return "Password must be at least 6 characters long."
	case errors.Is(err, ErrRateLimited):
		return "Too many attempts. Please wait and try again."
	default:
		return "Unexpected error. Please try again."
	}
}

// User is a signed-in host.
type User struct {
	UID      string
	Username string
	Email    string
}

// HostStore is the persistence the provider needs.
type HostStore interface {
	CreateHost(ctx context.Context, h store.Host) (*store.Host, error)
	GetHostByEmail(ctx context.Context, email string) (*store.Host, error)
}

type Options struct {
	Domain      string
	MaxAttempts int
	Lockout     time.Duration
	Cost        int
	Logger      *slog.Logger
	Now         func() time.Time
}

type Provider struct {
	hosts       HostStore
	domain      string
	maxAttempts int
	lockout     time.Duration
	cost        int
	log         *slog.Logger
	now         func() time.Time

	mu        sync.Mutex
	current   *User
	failures  map[string][]time.Time
	listeners map[int]func(*User)
	nextID    int
}

func NewProvider(hosts HostStore, opts Options) *Provider {
	p := &Provider{
		hosts:       hosts,
		domain:      opts.Domain,
		maxAttempts: opts.MaxAttempts,
		lockout:     opts.Lockout,
		cost:        opts.Cost,
		log:         logging.OrDiscard(opts.Logger),
		now:         opts.Now,
		failures:    map[string][]time.Time{},
		listeners:   map[int]func(*User){},
	}
	if p.domain == "" {
		p.domain = defaultDomain
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = defaultMaxAttempts
	}
	if p.lockout <= 0 {
		p.lockout = defaultLockout
	}
	if p.cost == 0 {
		p.cost = bcrypt.DefaultCost
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// NormalizeUsername trims and lowercases a username.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// EmailFor maps a normalized username to its sign-in email.
func (p *Provider) EmailFor(username string) string {
	return username + "@" + p.domain
}

func (p *Provider) credentials(username, password string) (string, error) {
	name := NormalizeUsername(username)
	if name == "" || password == "" {
		return "", ErrMissingCredentials
	}
	if !usernamePattern.MatchString(name) {
		return "", fmt.Errorf("%q: %w", name, ErrInvalidUsername)
	}
	return name, nil
}

// SignUp registers a new host and signs it in.
func (p *Provider) SignUp(ctx context.Context, username, password string) (User, error) {
	name, err := p.credentials(username, password)
	if err != nil {
		return User{}, err
	}
	if len(password) < MinPasswordLength {
		return User{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	h, err := p.hosts.CreateHost(ctx, store.Host{
		UID:          uuid.NewString(),
		Username:     name,
		Email:        p.EmailFor(name),
		PasswordHash: string(hash),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return User{}, fmt.Errorf("sign up %q: %w", name, ErrAlreadyExists)
	}
	if err != nil {
		return User{}, fmt.Errorf("sign up %q: %w", name, err)
	}

	u := User{UID: h.UID, Username: h.Username, Email: h.Email}
	p.log.Info("host signed up", "username", u.Username, "uid", u.UID)
	p.setCurrent(&u)
	return u, nil
}

// SignIn checks credentials. Failed attempts beyond the limit within the
// lockout window are refused without checking the password.
func (p *Provider) SignIn(ctx context.Context, username, password string) (User, error) {
	name, err := p.credentials(username, password)
	if err != nil {
		return User{}, err
	}
	email := p.EmailFor(name)
	if p.limited(email) {
		p.log.Warn("sign in rate limited", "username", name)
		return User{}, ErrRateLimited
	}

	h, err := p.hosts.GetHostByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		p.fail(email)
		return User{}, fmt.Errorf("sign in %q: %w", name, ErrUserNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("sign in %q: %w", name, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.PasswordHash), []byte(password)); err != nil {
		p.fail(email)
		return User{}, fmt.Errorf("sign in %q: %w", name, ErrWrongCredential)
	}

	p.mu.Lock()
	delete(p.failures, email)
	p.mu.Unlock()

	u := User{UID: h.UID, Username: h.Username, Email: h.Email}
	p.log.Info("host signed in", "username", u.Username)
	p.setCurrent(&u)
	return u, nil
}

func (p *Provider) SignOut() {
	p.setCurrent(nil)
}

// CurrentUser returns the signed-in host, if any.
func (p *Provider) CurrentUser() (User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return User{}, false
	}
	return *p.current, true
}

// OnAuthChange calls fn with the current user now and on every change. A nil
// user means signed out. The returned func removes the listener.
func (p *Provider) OnAuthChange(fn func(*User)) func() {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.listeners[id] = fn
	cur := p.current
	p.mu.Unlock()

	fn(copyUser(cur))
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *Provider) setCurrent(u *User) {
	p.mu.Lock()
	p.current = u
	fns := make([]func(*User), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(copyUser(u))
	}
}

func (p *Provider) limited(email string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	cutoff := p.now().Add(-p.lockout)
	recent := p.failures[email][:0]
	for _, t := range p.failures[email] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	p.failures[email] = recent
	return len(recent) >= p.maxAttempts
}

func (p *Provider) fail(email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[email] = append(p.failures[email], p.now())
}

func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
