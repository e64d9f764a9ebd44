package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wings-inventory/internal/model"
	"wings-inventory/internal/repository"
	"wings-inventory/internal/store"
	"wings-inventory/pkg/jwt"
	"wings-inventory/pkg/validator"
)

var (
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrWeakCredential    = errors.New("password should be at least 6 characters")
	ErrEmailInUse        = errors.New("email already in use")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrNoSession         = errors.New("no active session")
)

// AuthService is the identity gateway: accounts, sessions and the stream of
// session transitions.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*model.Session, error)
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (*model.Session, error)
	// Observe calls fn on every session transition until cancel is called.
	Observe(fn func(model.SessionEvent)) (cancel func())
	ExpireSessions(now time.Time) int
	ResetPassword(ctx context.Context, email, newPassword string) error
	EnsureAdmin(ctx context.Context, email, password string) error
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type authService struct {
	accounts repository.AccountRepository
	members  repository.MemberRepository
	signer   *jwt.Signer
	now      func() time.Time

	// serializes the email-in-use check with account creation
	signupMu sync.Mutex

	mu        sync.Mutex
	sessions  map[string]*model.Session
	observers map[uint64]func(model.SessionEvent)
	nextObs   uint64
}

func NewAuthService(accounts repository.AccountRepository, members repository.MemberRepository, signer *jwt.Signer) AuthService {
	return &authService{
		accounts:  accounts,
		members:   members,
		signer:    signer,
		now:       time.Now,
		sessions:  make(map[string]*model.Session),
		observers: make(map[uint64]func(model.SessionEvent)),
	}
}

func (s *authService) SignUp(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.TrimSpace(email)
	if err := checkCredentials(email, password); err != nil {
		return nil, err
	}

	s.signupMu.Lock()
	defer s.signupMu.Unlock()

	_, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailInUse
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	account, err := s.createAccount(ctx, email, password)
	if err != nil {
		return nil, err
	}

	// The first account becomes the master administrator.
	hasMaster, err := s.members.HasRole(ctx, model.RoleMasterAdmin)
	if err != nil {
		zap.L().Warn("role bootstrap check failed", zap.String("email", email), zap.Error(err))
	} else if !hasMaster {
		if err := s.members.Create(ctx, bootstrapMember(account, model.RoleMasterAdmin)); err != nil {
			zap.L().Warn("role bootstrap failed", zap.String("email", email), zap.Error(err))
		}
	}

	return s.issue(ctx, account, model.SessionSignedUp)
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredential
	}
	if err != nil {
		return nil, err
	}
	if !account.CheckPassword(password) {
		return nil, ErrInvalidCredential
	}

	now := s.now()
	err = s.accounts.TouchLastLogin(ctx, account.ID, model.Timestamp(now))
	if errors.Is(err, store.ErrNotFound) {
		err = s.accounts.SaveProfile(ctx, model.Profile{
			UID:       account.ID,
			Email:     account.Email,
			CreatedAt: account.CreatedAt,
			LastLogin: now,
		})
	}
	if err != nil {
		zap.L().Warn("profile refresh failed", zap.String("uid", account.ID), zap.Error(err))
	}

	return s.issue(ctx, account, model.SessionSignedIn)
}

// SignOut ends the session carried by token. Expired tokens still sign out.
func (s *authService) SignOut(_ context.Context, token string) error {
	claims, err := s.signer.ValidateToken(token)
	if claims == nil {
		zap.L().Debug("sign out without a valid token", zap.Error(err))
		return ErrNoSession
	}
	if !s.end(claims.SessionID, model.SessionSignedOut) {
		return ErrNoSession
	}
	return nil
}

func (s *authService) CurrentSession(ctx context.Context, token string) (*model.Session, error) {
	claims, err := s.signer.ValidateToken(token)
	if errors.Is(err, jwt.ErrExpiredToken) {
		s.end(claims.SessionID, model.SessionExpired)
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, ErrNoSession
	}

	s.mu.Lock()
	sess, ok := s.sessions[claims.SessionID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNoSession
	}

	account, err := s.accounts.FindByID(ctx, claims.AccountID)
	if errors.Is(err, store.ErrNotFound) {
		s.end(claims.SessionID, model.SessionExpired)
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if account.TokenVersion != claims.TokenVersion {
		s.end(claims.SessionID, model.SessionExpired)
		return nil, ErrNoSession
	}

	role, err := s.resolveRole(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	sess.Role = role
	sess.Privileges = model.PrivilegesFor(role)
	out := *sess
	s.mu.Unlock()
	out.Token = token
	return &out, nil
}

func (s *authService) Observe(fn func(model.SessionEvent)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// ExpireSessions ends every session whose token expired at or before now and
// returns how many ended.
func (s *authService) ExpireSessions(now time.Time) int {
	s.mu.Lock()
	var expired []string
	for id, sess := range s.sessions {
		if !sess.ExpiresAt.After(now) {
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	n := 0
	for _, id := range expired {
		if s.end(id, model.SessionExpired) {
			n++
		}
	}
	return n
}

// ResetPassword sets a new password and revokes every session of the account.
func (s *authService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if err := validator.ValidateVar(newPassword, "required,min=6"); err != nil {
		return ErrWeakCredential
	}
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := account.SetPassword(newPassword); err != nil {
		return err
	}
	account.TokenVersion = uuid.NewString()
	if err := s.accounts.Save(ctx, account); err != nil {
		return err
	}

	s.mu.Lock()
	var revoked []string
	for id, sess := range s.sessions {
		if sess.AccountID == account.ID {
			revoked = append(revoked, id)
		}
	}
	s.mu.Unlock()
	for _, id := range revoked {
		s.end(id, model.SessionExpired)
	}
	return nil
}

// EnsureAdmin makes sure an account for email exists and holds the master
// administrator role. An existing account keeps its password.
func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	s.signupMu.Lock()
	defer s.signupMu.Unlock()

	account, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		if err := checkCredentials(email, password); err != nil {
			return err
		}
		account, err = s.createAccount(ctx, strings.TrimSpace(email), password)
	}
	if err != nil {
		return err
	}

	member, err := s.members.FindByAccountID(ctx, account.ID)
	if errors.Is(err, store.ErrNotFound) {
		zap.L().Info("seeding master administrator", zap.String("email", account.Email))
		return s.members.Create(ctx, bootstrapMember(account, model.RoleMasterAdmin))
	}
	if err != nil {
		return err
	}
	if member.Role != model.RoleMasterAdmin {
		return s.members.Update(ctx, member.ID, store.Document{model.FieldMemberRole: model.RoleMasterAdmin})
	}
	return nil
}

func (s *authService) createAccount(ctx context.Context, email, password string) (*model.Account, error) {
	now := s.now()
	account := &model.Account{
		Email:        email,
		TokenVersion: uuid.NewString(),
		CreatedAt:    now,
	}
	if err := account.SetPassword(password); err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	profile := model.Profile{UID: account.ID, Email: email, CreatedAt: now, LastLogin: now}
	if err := s.accounts.SaveProfile(ctx, profile); err != nil {
		zap.L().Warn("profile mirror failed", zap.String("uid", account.ID), zap.Error(err))
	}
	return account, nil
}

// resolveRole returns the member role of an account. Accounts without a member
// record are administrators, or master administrators while none exists.
func (s *authService) resolveRole(ctx context.Context, accountID string) (string, error) {
	member, err := s.members.FindByAccountID(ctx, accountID)
	if err == nil && model.ValidRole(member.Role) {
		return member.Role, nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	hasMaster, err := s.members.HasRole(ctx, model.RoleMasterAdmin)
	if err != nil {
		return "", err
	}
	if !hasMaster {
		return model.RoleMasterAdmin, nil
	}
	return model.RoleAdmin, nil
}

func (s *authService) issue(ctx context.Context, account *model.Account, kind model.SessionEventKind) (*model.Session, error) {
	role, err := s.resolveRole(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	sid := uuid.NewString()
	token, expires, err := s.signer.GenerateToken(sid, account.ID, account.Email, account.TokenVersion)
	if err != nil {
		return nil, err
	}
	sess := &model.Session{
		ID:         sid,
		AccountID:  account.ID,
		Email:      account.Email,
		Role:       role,
		Privileges: model.PrivilegesFor(role),
		IssuedAt:   s.now(),
		ExpiresAt:  expires,
	}

	s.mu.Lock()
	s.sessions[sid] = sess
	s.mu.Unlock()

	zap.L().Info("session started", zap.String("kind", string(kind)), zap.String("email", account.Email), zap.String("role", role))
	s.emit(model.SessionEvent{Kind: kind, Session: *sess})

	out := *sess
	out.Token = token
	return &out, nil
}

// end removes a session and reports whether it was active.
func (s *authService) end(sid string, kind model.SessionEventKind) bool {
	s.mu.Lock()
	sess, ok := s.sessions[sid]
	delete(s.sessions, sid)
	s.mu.Unlock()
	if !ok {
		return false
	}
	zap.L().Info("session ended", zap.String("kind", string(kind)), zap.String("email", sess.Email))
	s.emit(model.SessionEvent{Kind: kind, Session: *sess})
	return true
}

func (s *authService) emit(e model.SessionEvent) {
	s.mu.Lock()
	fns := make([]func(model.SessionEvent), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

func checkCredentials(email, password string) error {
	for _, e := range validator.ValidateStruct(credentials{Email: email, Password: password}) {
		if e.FailedField == "credentials.Email" {
			return ErrInvalidEmail
		}
		return ErrWeakCredential
	}
	return nil
}

func bootstrapMember(account *model.Account, role string) *model.Member {
	name := account.Email
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	return &model.Member{Name: name, Email: account.Email, AccountID: account.ID, Role: role}
}
