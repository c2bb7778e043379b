package client

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// State is the lifecycle of a form mutation: Idle → Pending → (Success |
// Error) → Idle.
type State int

const (
	StateIdle State = iota
	StatePending
	StateSuccess
	StateError
)

// NotificationType classifies the transient message shown after a mutation.
type NotificationType string

const (
	NotificationNone    NotificationType = ""
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Notification is the transient outcome of the last action. It is reset when
// a new action starts and replaced atomically when a result arrives.
type Notification struct {
	Type    NotificationType
	Message string
}

// blankFieldsMessage mirrors the form-level guard: no request is issued when
// any tracked field is blank.
const blankFieldsMessage = "Fill in the information."

// QueryCache is the client-side cache of read queries. Successful mutations
// invalidate the keys they declare so subsequent reads refetch.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]any
}

func NewQueryCache() *QueryCache {
	return &QueryCache{entries: make(map[string]any)}
}

func (q *QueryCache) Get(key string) (any, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	v, ok := q.entries[key]
	return v, ok
}

func (q *QueryCache) Set(key string, value any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries[key] = value
}

func (q *QueryCache) Invalidate(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.entries, key)
}

// MutationFunc performs the actual request for a form submission and returns
// the server's confirmation message.
type MutationFunc func(ctx context.Context, fields map[string]string) (string, error)

// PrecheckFunc validates the form before any request is issued; a non-nil
// error becomes the error notification and the submission is dropped.
type PrecheckFunc func(fields map[string]string) error

// FormMutation coordinates one in-flight write action per form instance.
//
// Guarantees:
//   - At most one outstanding request: Submit is inert while Pending.
//   - Blank tracked fields (after trim) fail locally with zero requests.
//   - On success the form resets to its initial values and the declared
//     query-cache keys are invalidated.
//   - Errors never escape: every failure lands in the Notification.
type FormMutation struct {
	mu           sync.Mutex
	state        State
	notification Notification
	fields       map[string]string
	initial      map[string]string
	invalidates  []string
	cache        *QueryCache
	precheck     PrecheckFunc
	run          MutationFunc
}

// NewFormMutation creates a form tracking the given field names, all starting
// empty. cache may be nil when the form invalidates nothing.
func NewFormMutation(cache *QueryCache, fieldNames []string, invalidates []string, precheck PrecheckFunc, run MutationFunc) *FormMutation {
	fields := make(map[string]string, len(fieldNames))
	initial := make(map[string]string, len(fieldNames))
	for _, name := range fieldNames {
		fields[name] = ""
		initial[name] = ""
	}
	return &FormMutation{
		state:       StateIdle,
		fields:      fields,
		initial:     initial,
		invalidates: invalidates,
		cache:       cache,
		precheck:    precheck,
		run:         run,
	}
}

// SetField records a field edit. Editing after a result implicitly returns
// the form to Idle; edits while Pending are ignored (the form is disabled).
func (f *FormMutation) SetField(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StatePending {
		return
	}
	if _, tracked := f.fields[name]; !tracked {
		return
	}
	f.fields[name] = value
	if f.state == StateSuccess || f.state == StateError {
		f.state = StateIdle
	}
}

// Field returns the current value of a tracked field.
func (f *FormMutation) Field(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields[name]
}

// State returns the current lifecycle state.
func (f *FormMutation) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Notification returns the outcome of the last completed action.
func (f *FormMutation) Notification() Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notification
}

// Dismiss clears the notification and returns the form to Idle.
func (f *FormMutation) Dismiss() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notification = Notification{}
	if f.state != StatePending {
		f.state = StateIdle
	}
}

// Submit runs the mutation. It reports whether a request was actually issued:
// false means the submission was dropped locally (already pending, blank
// fields, or a failed precheck). Submit blocks until the request resolves;
// concurrent Submit calls while one is outstanding return false immediately
// without issuing a second request.
func (f *FormMutation) Submit(ctx context.Context) bool {
	f.mu.Lock()
	if f.state == StatePending {
		f.mu.Unlock()
		return false
	}

	for _, value := range f.fields {
		if strings.TrimSpace(value) == "" {
			f.state = StateError
			f.notification = Notification{Type: NotificationError, Message: blankFieldsMessage}
			f.mu.Unlock()
			return false
		}
	}
	if f.precheck != nil {
		if err := f.precheck(f.fields); err != nil {
			f.state = StateError
			f.notification = Notification{Type: NotificationError, Message: err.Error()}
			f.mu.Unlock()
			return false
		}
	}

	f.state = StatePending
	f.notification = Notification{}
	snapshot := make(map[string]string, len(f.fields))
	for k, v := range f.fields {
		snapshot[k] = v
	}
	f.mu.Unlock()

	message, err := f.run(ctx, snapshot)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateError
		f.notification = Notification{Type: NotificationError, Message: errorMessage(err)}
		return true
	}

	f.state = StateSuccess
	f.notification = Notification{Type: NotificationSuccess, Message: message}
	for k, v := range f.initial {
		f.fields[k] = v
	}
	if f.cache != nil {
		for _, key := range f.invalidates {
			f.cache.Invalidate(key)
		}
	}
	return true
}

// errorMessage prefers the server's message over transport noise.
func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
