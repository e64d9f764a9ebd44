package controller

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Submitter is the remote side of a form.
type Submitter interface {
	Create(ctx context.Context, values map[string]string) error
	Update(ctx context.Context, id string, values map[string]string) error
	Load(ctx context.Context, id string) (map[string]string, error)
}

const (
	ModeCreate = "create"
	ModeUpdate = "update"
)

type FormState struct {
	Entity     string            `json:"entity"`
	Fields     []Field           `json:"fields"`
	Values     map[string]string `json:"values"`
	Mode       string            `json:"mode"`
	EditingID  string            `json:"editing_id,omitempty"`
	Success    string            `json:"success,omitempty"`
	Error      string            `json:"error,omitempty"`
	Submitting bool              `json:"submitting"`
}

// Form holds the field values of one entity being created or updated.
type Form struct {
	schema Schema
	sub    Submitter
	flash  *Flash
	scope  scope

	mu         sync.Mutex
	values     map[string]string
	editingID  string
	errMsg     string
	submitting bool
}

func NewForm(schema Schema, sub Submitter, flashTTL time.Duration) *Form {
	return &Form{
		schema: schema,
		sub:    sub,
		flash:  NewFlash(flashTTL),
		scope:  newScope(),
		values: schema.blank(),
	}
}

// SetField changes one value locally.
func (f *Form) SetField(name, value string) error {
	if _, ok := f.schema.field(name); !ok {
		return ErrUnknownField
	}
	f.mu.Lock()
	f.values[name] = strings.Clone(value)
	f.mu.Unlock()
	return nil
}

// Submit creates or updates the entity. Only one submission runs at a time.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.scope.closed() {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	if msg, err := f.schema.check(f.values); err != nil {
		f.errMsg = msg
		f.mu.Unlock()
		return err
	}
	values := copyValues(f.values)
	id := f.editingID
	f.submitting = true
	f.errMsg = ""
	f.mu.Unlock()

	ctx, cancel := f.scope.bind(ctx)
	defer cancel()

	var err error
	if id == "" {
		err = f.sub.Create(ctx, values)
	} else {
		err = f.sub.Update(ctx, id, values)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		if id == "" {
			f.errMsg = failure(f.schema.Messages.CreateFailed, err)
		} else {
			f.errMsg = failure(f.schema.Messages.UpdateFailed, err)
		}
		return err
	}
	if id == "" {
		f.values = f.schema.blank()
		f.flash.Set(f.schema.Messages.Created)
	} else {
		f.flash.Set(f.schema.Messages.Updated)
	}
	return nil
}

// Edit loads an existing entity and switches the form to update mode.
func (f *Form) Edit(ctx context.Context, id string) error {
	ctx, cancel := f.scope.bind(ctx)
	defer cancel()

	loaded, err := f.sub.Load(ctx, id)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.errMsg = failure(f.schema.Messages.LoadFailed, err)
		return err
	}
	values := f.schema.blank()
	for name := range values {
		values[name] = loaded[name]
	}
	f.values = values
	f.editingID = strings.Clone(id)
	f.errMsg = ""
	return nil
}

// Reset clears the form back to create mode.
func (f *Form) Reset() {
	f.mu.Lock()
	f.values = f.schema.blank()
	f.editingID = ""
	f.errMsg = ""
	f.mu.Unlock()
	f.flash.Clear()
}

func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	mode := ModeCreate
	if f.editingID != "" {
		mode = ModeUpdate
	}
	return FormState{
		Entity:     f.schema.Entity,
		Fields:     f.schema.Fields,
		Values:     copyValues(f.values),
		Mode:       mode,
		EditingID:  f.editingID,
		Success:    f.flash.Message(),
		Error:      f.errMsg,
		Submitting: f.submitting,
	}
}

// Close cancels in-flight calls and stops the flash timer.
func (f *Form) Close() {
	f.scope.cancel()
	f.flash.Stop()
}
