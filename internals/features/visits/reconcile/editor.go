package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"visitorku_backend/internals/helpers/civiltime"
)

var (
	// ErrNotFound: the edit target vanished (zero rows affected).
	ErrNotFound = errors.New("registration not found")
	// ErrEmptyEndTime: saveEdit with nothing entered; blocks with a
	// notification, state unchanged.
	ErrEmptyEndTime = errors.New("end time is required")
	// ErrSaveInFlight: re-entrant save while one is already running; the
	// call is ignored.
	ErrSaveInFlight = errors.New("save already in progress")
	// ErrNotEditing: save/cancel with no row in edit state.
	ErrNotEditing = errors.New("no row is being edited")
)

// EndTimeSaver persists the end-time change. The production implementation
// wraps GORM and the change feed; tests use a fake.
type EndTimeSaver interface {
	SaveEndTime(ctx context.Context, id uuid.UUID, stored string) error
}

// Editor is the inline end-time edit state machine: Idle → Editing(row,
// draft) → Idle. One row at a time; starting an edit elsewhere silently
// moves the focus.
type Editor struct {
	cache *Reconciler
	saver EndTimeSaver
	now   func() time.Time

	editingID uuid.UUID // uuid.Nil = idle
	draft     string    // editable wall-clock string
	saving    bool
}

func NewEditor(cache *Reconciler, saver EndTimeSaver, now func() time.Time) *Editor {
	if now == nil {
		now = civiltime.Now
	}
	return &Editor{cache: cache, saver: saver, now: now}
}

// StartEdit enters Editing for the row, seeding the draft from its stored
// end time when present, else from the current IST wall clock. An edit
// already open on another row is silently abandoned.
func (e *Editor) StartEdit(row Record) {
	e.editingID = row.ID
	if row.EndTime != nil {
		if t, err := civiltime.FromStored(*row.EndTime); err == nil {
			e.draft = civiltime.ToEditable(t)
			return
		}
	}
	e.draft = civiltime.ToEditable(e.now())
}

// CancelEdit returns to Idle, discarding the draft without writing.
func (e *Editor) CancelEdit() {
	e.editingID = uuid.Nil
	e.draft = ""
}

// SetDraft replaces the draft end time while Editing.
func (e *Editor) SetDraft(s string) {
	if e.editingID != uuid.Nil {
		e.draft = s
	}
}

// Editing reports the row in edit state and its draft.
func (e *Editor) Editing() (id uuid.UUID, draft string, ok bool) {
	return e.editingID, e.draft, e.editingID != uuid.Nil
}

// SaveEdit converts the draft back to the stored representation and writes
// it. One save at a time; failures (including not-found) keep the Editing
// state so the operator can retry or cancel.
func (e *Editor) SaveEdit(ctx context.Context) error {
	if e.saving {
		return ErrSaveInFlight
	}
	if e.editingID == uuid.Nil {
		return ErrNotEditing
	}
	if e.draft == "" {
		return ErrEmptyEndTime
	}

	t, err := civiltime.FromEditable(e.draft)
	if err != nil {
		return ErrEmptyEndTime
	}
	stored := civiltime.ToStored(t)

	id := e.editingID
	e.saving = true
	err = e.saver.SaveEndTime(ctx, id, stored)
	e.saving = false
	if err != nil {
		return err
	}

	// reconcile the local cache, then leave Editing
	e.cache.Apply(Event{Type: EventUpdate, ID: id, Patch: &Patch{EndTime: &stored}})
	e.editingID = uuid.Nil
	e.draft = ""
	return nil
}
