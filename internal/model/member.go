package model

import (
	"strings"

	"wings-inventory/internal/store"
)

// Member field names, in form order.
const (
	FieldMemberName  = "name"
	FieldMemberEmail = "email"
	FieldMemberRole  = "role"
)

var MemberFields = []string{FieldMemberName, FieldMemberEmail, FieldMemberRole}

// Member is a managed user: a role assignment keyed by an identity-provider
// account. Passwords stay with the account and are never copied here.
type Member struct {
	ID        string `mapstructure:"-" json:"id"`
	Name      string `mapstructure:"name" json:"name"`
	Email     string `mapstructure:"email" json:"email"`
	AccountID string `mapstructure:"account_id" json:"account_id"`
	Role      string `mapstructure:"role" json:"role"`
}

func (m Member) EntityID() string    { return m.ID }
func (m Member) DisplayName() string { return m.Name }

func (m Member) ToDocument() store.Document {
	return store.Document{
		FieldMemberName:  m.Name,
		FieldMemberEmail: m.Email,
		"account_id":     m.AccountID,
		FieldMemberRole:  m.Role,
	}
}

func (m Member) FormValues() map[string]string {
	return map[string]string{
		FieldMemberName:  m.Name,
		FieldMemberEmail: m.Email,
		FieldMemberRole:  m.Role,
	}
}

func (m Member) WithValues(values map[string]string) Member {
	for name, v := range values {
		v = strings.TrimSpace(v)
		switch name {
		case FieldMemberName:
			m.Name = v
		case FieldMemberEmail:
			m.Email = v
		case FieldMemberRole:
			m.Role = v
		}
	}
	return m
}
