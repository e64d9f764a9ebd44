package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"wings-inventory/internal/events"
	"wings-inventory/internal/model"
	"wings-inventory/internal/repository"
	"wings-inventory/internal/store"
	"wings-inventory/pkg/validator"
)

var (
	ErrAccountNotFound = errors.New("no account is registered for this email")
	ErrMemberExists    = errors.New("this account already has a role")
	ErrLastMaster      = errors.New("the last master administrator cannot be removed or demoted")
)

// MemberRules are the validator tags for each member field.
var MemberRules = map[string]string{
	model.FieldMemberName:  "required",
	model.FieldMemberEmail: "required,email",
	model.FieldMemberRole:  "required,oneof=MASTER_ADMIN ADMIN",
}

// MemberService manages role assignments for registered accounts.
type MemberService interface {
	GetAllMembers(ctx context.Context) ([]model.Member, error)
	GetMember(ctx context.Context, id string) (*model.Member, error)
	CreateMember(ctx context.Context, fields map[string]string, actor *model.Session) (*model.Member, error)
	UpdateMember(ctx context.Context, id string, fields map[string]string, actor *model.Session) error
	DeleteMember(ctx context.Context, id string, actor *model.Session) error
}

type memberService struct {
	memberRepo  repository.MemberRepository
	accountRepo repository.AccountRepository
	publisher   events.Publisher

	// serializes the last-master check with the write that depends on it
	writeMu sync.Mutex
}

func NewMemberService(memberRepo repository.MemberRepository, accountRepo repository.AccountRepository, publisher events.Publisher) MemberService {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &memberService{memberRepo: memberRepo, accountRepo: accountRepo, publisher: publisher}
}

func (s *memberService) GetAllMembers(ctx context.Context) ([]model.Member, error) {
	return s.memberRepo.FindAll(ctx)
}

func (s *memberService) GetMember(ctx context.Context, id string) (*model.Member, error) {
	return s.memberRepo.FindByID(ctx, id)
}

func (s *memberService) CreateMember(ctx context.Context, fields map[string]string, actor *model.Session) (*model.Member, error) {
	for _, name := range model.MemberFields {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidInput, name)
		}
	}
	values, err := memberValues(fields)
	if err != nil {
		return nil, err
	}

	accountID, err := s.claimAccount(ctx, values[model.FieldMemberEmail], "")
	if err != nil {
		return nil, err
	}

	member := &model.Member{
		Name:      values[model.FieldMemberName],
		Email:     values[model.FieldMemberEmail],
		AccountID: accountID,
		Role:      values[model.FieldMemberRole],
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	s.publish("member_created", member.ID, map[string]any{"email": member.Email, "role": member.Role}, actor)
	return member, nil
}

func (s *memberService) UpdateMember(ctx context.Context, id string, fields map[string]string, actor *model.Session) error {
	values, err := memberValues(fields)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if role, ok := values[model.FieldMemberRole]; ok && role != model.RoleMasterAdmin {
		if err := s.keepMaster(ctx, id); err != nil {
			return err
		}
	}

	patch := store.Document{}
	for k, v := range values {
		patch[k] = v
	}
	if email, ok := values[model.FieldMemberEmail]; ok {
		accountID, err := s.claimAccount(ctx, email, id)
		if err != nil {
			return err
		}
		patch["account_id"] = accountID
	}

	if err := s.memberRepo.Update(ctx, id, patch); err != nil {
		return err
	}
	s.publish("member_updated", id, map[string]any(patch), actor)
	return nil
}

func (s *memberService) DeleteMember(ctx context.Context, id string, actor *model.Session) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.keepMaster(ctx, id); err != nil {
		return err
	}
	if err := s.memberRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish("member_deleted", id, nil, actor)
	return nil
}

// keepMaster fails with ErrLastMaster when member id is the only master
// administrator.
func (s *memberService) keepMaster(ctx context.Context, id string) error {
	members, err := s.memberRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	masters, target := 0, false
	for _, m := range members {
		if m.Role != model.RoleMasterAdmin {
			continue
		}
		masters++
		if m.ID == id {
			target = true
		}
	}
	if target && masters == 1 {
		return ErrLastMaster
	}
	return nil
}

// claimAccount resolves email to an account id that no member other than
// selfID holds.
func (s *memberService) claimAccount(ctx context.Context, email, selfID string) (string, error) {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrAccountNotFound
	}
	if err != nil {
		return "", err
	}
	existing, err := s.memberRepo.FindByAccountID(ctx, account.ID)
	if err == nil && existing.ID != selfID {
		return "", ErrMemberExists
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	return account.ID, nil
}

func (s *memberService) publish(action, id string, data map[string]any, actor *model.Session) {
	s.publisher.Publish(events.Event{
		Type:   events.TypeMemberUpdate,
		Action: action,
		ID:     id,
		Data:   data,
		User:   actorOf(actor),
	})
}

func memberValues(fields map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	for name, raw := range fields {
		rules, ok := MemberRules[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidInput, name)
		}
		value := strings.TrimSpace(raw)
		if err := validator.ValidateVar(value, rules); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, name)
		}
		out[name] = value
	}
	return out, nil
}
