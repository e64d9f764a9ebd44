package controller

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
)

// Item is an entity shown in a list. WithValues returns a copy of the item
// with the given form values applied.
type Item[T any] interface {
	EntityID() string
	DisplayName() string
	FormValues() map[string]string
	WithValues(values map[string]string) T
}

// Source is the remote side of a list.
type Source[T any] interface {
	List(ctx context.Context) ([]T, error)
	Update(ctx context.Context, id string, values map[string]string) error
	Delete(ctx context.Context, id string) error
}

type ListState[T any] struct {
	Entity     string            `json:"entity"`
	Fields     []Field           `json:"fields"`
	Items      []T               `json:"items"`
	Total      int               `json:"total"`
	Query      string            `json:"query"`
	Editing    bool              `json:"editing"`
	EditingID  string            `json:"editing_id,omitempty"`
	EditBuffer map[string]string `json:"edit_buffer,omitempty"`
	Message    string            `json:"message,omitempty"`
	Error      string            `json:"error,omitempty"`
	Loading    bool              `json:"loading"`
}

// List is a point-in-time snapshot of a collection with a name filter and
// inline editing of one item at a time.
type List[T Item[T]] struct {
	schema Schema
	src    Source[T]
	flash  *Flash
	scope  scope

	mu        sync.Mutex
	items     []T
	query     string
	editingID string
	buffer    map[string]string
	errMsg    string
	loading   bool
}

func NewList[T Item[T]](schema Schema, src Source[T], flashTTL time.Duration) *List[T] {
	return &List[T]{
		schema: schema,
		src:    src,
		flash:  NewFlash(flashTTL),
		scope:  newScope(),
	}
}

// Load replaces the snapshot with a fresh fetch of the whole collection.
func (l *List[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.scope.closed() {
		l.mu.Unlock()
		return ErrClosed
	}
	l.loading = true
	l.mu.Unlock()

	ctx, cancel := l.scope.bind(ctx)
	defer cancel()
	items, err := l.src.List(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		l.errMsg = failure(l.schema.Messages.LoadFailed, err)
		return err
	}
	l.items = items
	l.errMsg = ""
	return nil
}

func (l *List[T]) Filter(query string) {
	l.mu.Lock()
	l.query = strings.Clone(query)
	l.mu.Unlock()
}

// Visible returns the items whose name contains the query, ignoring case.
func (l *List[T]) Visible() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible()
}

func (l *List[T]) visible() []T {
	return FilterByName(l.items, l.query)
}

// FilterByName keeps the items whose display name contains query under
// Unicode case folding. An empty query keeps everything.
func FilterByName[T interface{ DisplayName() string }](items []T, query string) []T {
	out := make([]T, 0, len(items))
	if query == "" {
		return append(out, items...)
	}
	fold := cases.Fold()
	q := fold.String(query)
	for _, it := range items {
		if strings.Contains(fold.String(it.DisplayName()), q) {
			out = append(out, it)
		}
	}
	return out
}

// BeginEdit copies the fields of item id into the edit buffer.
func (l *List[T]) BeginEdit(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.index(id)
	if idx < 0 {
		return ErrNoSuchItem
	}
	l.editingID = strings.Clone(id)
	l.buffer = l.items[idx].FormValues()
	l.errMsg = ""
	return nil
}

func (l *List[T]) SetEditField(name, value string) error {
	if _, ok := l.schema.field(name); !ok {
		return ErrUnknownField
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.editingID == "" {
		return ErrNotEditing
	}
	l.buffer[name] = strings.Clone(value)
	return nil
}

func (l *List[T]) CancelEdit() {
	l.mu.Lock()
	l.editingID = ""
	l.buffer = nil
	l.mu.Unlock()
}

// CommitEdit writes the edit buffer. On failure the snapshot is unchanged and
// the list stays in edit mode.
func (l *List[T]) CommitEdit(ctx context.Context) error {
	l.mu.Lock()
	if l.editingID == "" {
		l.mu.Unlock()
		return ErrNotEditing
	}
	if msg, err := l.schema.check(l.buffer); err != nil {
		l.errMsg = msg
		l.mu.Unlock()
		return err
	}
	id := l.editingID
	values := copyValues(l.buffer)
	l.mu.Unlock()

	ctx, cancel := l.scope.bind(ctx)
	defer cancel()
	err := l.src.Update(ctx, id, values)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.errMsg = failure(l.schema.Messages.UpdateFailed, err)
		return err
	}
	if idx := l.index(id); idx >= 0 {
		l.items[idx] = l.items[idx].WithValues(values)
	}
	if l.editingID == id {
		l.editingID = ""
		l.buffer = nil
	}
	l.errMsg = ""
	l.flash.Set(l.schema.Messages.Updated)
	return nil
}

// Remove deletes item id without confirmation.
func (l *List[T]) Remove(ctx context.Context, id string) error {
	ctx, cancel := l.scope.bind(ctx)
	defer cancel()
	err := l.src.Delete(ctx, id)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.errMsg = failure(l.schema.Messages.DeleteFailed, err)
		return err
	}
	if idx := l.index(id); idx >= 0 {
		l.items = append(l.items[:idx:idx], l.items[idx+1:]...)
	}
	if l.editingID == id {
		l.editingID = ""
		l.buffer = nil
	}
	l.errMsg = ""
	l.flash.Set(l.schema.Messages.Deleted)
	return nil
}

func (l *List[T]) State() ListState[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := ListState[T]{
		Entity:    l.schema.Entity,
		Fields:    l.schema.Fields,
		Items:     l.visible(),
		Total:     len(l.items),
		Query:     l.query,
		Editing:   l.editingID != "",
		EditingID: l.editingID,
		Message:   l.flash.Message(),
		Error:     l.errMsg,
		Loading:   l.loading,
	}
	if l.buffer != nil {
		st.EditBuffer = copyValues(l.buffer)
	}
	return st
}

// Close cancels in-flight calls and stops the flash timer.
func (l *List[T]) Close() {
	l.scope.cancel()
	l.flash.Stop()
}

func (l *List[T]) index(id string) int {
	for i, it := range l.items {
		if it.EntityID() == id {
			return i
		}
	}
	return -1
}
