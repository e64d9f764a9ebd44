// Package controller holds the per-screen state machines: a form that creates
// or updates one entity and a filterable list with inline editing.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wings-inventory/pkg/validator"
)

// IncompleteFormMessage is shown when a required field is empty.
const IncompleteFormMessage = "Please fill in all fields."

var (
	ErrIncompleteForm = errors.New("incomplete form")
	ErrInvalidField   = errors.New("invalid field value")
	ErrUnknownField   = errors.New("unknown field")
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	ErrNotEditing     = errors.New("no entity is being edited")
	ErrNoSuchItem     = errors.New("no such item in the list")
	ErrClosed         = errors.New("controller closed")
)

// Field is one input of a form.
type Field struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	// Rules are validator tags checked on submit, in addition to non-empty.
	Rules string `json:"-"`
	// Options, when set, lists the accepted values.
	Options []string `json:"options,omitempty"`
}

// Messages are the user-facing outcomes of remote calls.
type Messages struct {
	Created      string
	Updated      string
	Deleted      string
	CreateFailed string
	UpdateFailed string
	DeleteFailed string
	LoadFailed   string
}

// Schema describes the fields of one entity kind.
type Schema struct {
	Entity   string
	Fields   []Field
	Messages Messages
}

func (s Schema) field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s Schema) blank() map[string]string {
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Name] = ""
	}
	return out
}

func failure(prefix string, err error) string {
	if prefix == "" {
		return err.Error()
	}
	return fmt.Sprintf("%s: %v", prefix, err)
}

func copyValues(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// check enforces that every schema field is non-empty and passes its rules.
func (s Schema) check(values map[string]string) (string, error) {
	for _, f := range s.Fields {
		if strings.TrimSpace(values[f.Name]) == "" {
			return IncompleteFormMessage, ErrIncompleteForm
		}
	}
	for _, f := range s.Fields {
		if err := validator.ValidateVar(strings.TrimSpace(values[f.Name]), f.Rules); err != nil {
			return fmt.Sprintf("Invalid %s.", strings.ToLower(f.Label)), fmt.Errorf("%w: %s", ErrInvalidField, f.Name)
		}
	}
	return "", nil
}

// scope ties remote calls to the lifetime of a controller.
type scope struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newScope() scope {
	ctx, cancel := context.WithCancel(context.Background())
	return scope{ctx: ctx, cancel: cancel}
}

// bind derives a context cancelled by either parent or the controller closing.
func (s scope) bind(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (s scope) closed() bool { return s.ctx.Err() != nil }
