// internals/features/visits/controller/admin_controller.go
package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	visitDTO "visitorku_backend/internals/features/visits/dto"
	"visitorku_backend/internals/features/visits/reconcile"
	helper "visitorku_backend/internals/helpers"
)

// DashboardStore is what the hub needs from persistence: the full load plus
// the two mutations the dashboard issues. service.RegistrationStore is the
// production implementation.
type DashboardStore interface {
	reconcile.EndTimeSaver
	LoadAll(ctx context.Context) ([]reconcile.Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DashboardHub owns the server-side dashboard state: the reconciled list,
// the inline end-time editor and the change-feed subscription that keeps
// the list current. The reconciler is not self-locking, so every access
// goes through hub.mu.
type DashboardHub struct {
	mu     sync.Mutex
	cache  *reconcile.Reconciler
	editor *reconcile.Editor
	store  DashboardStore
	feed   reconcile.Feed
	loaded bool
}

func NewDashboardHub(store DashboardStore, feed reconcile.Feed) *DashboardHub {
	h := &DashboardHub{
		cache: reconcile.NewReconciler(),
		store: store,
		feed:  feed,
	}
	h.editor = reconcile.NewEditor(h.cache, store, nil)
	return h
}

// ensureLoaded does the initial full load once, then starts applying feed
// events. Later calls are cheap. The subscription opens before the query so
// changes landing mid-load sit in the buffer and are drained afterwards;
// applying one of them twice is harmless since inserts replace by id.
func (h *DashboardHub) ensureLoaded(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.loaded {
		return nil
	}
	events, cancel := h.feed.Subscribe()
	records, err := h.store.LoadAll(ctx)
	if err != nil {
		cancel()
		return err
	}
	h.cache.Load(records)
	h.loaded = true

	go func() {
		for ev := range events {
			h.mu.Lock()
			h.cache.Apply(ev)
			h.mu.Unlock()
		}
	}()
	return nil
}

// Refresh re-runs the full load and replaces the reconciled set wholesale.
// The feed subscription and the search term both survive. This is the
// recovery path for events the bounded feed buffer dropped.
func (h *DashboardHub) Refresh(ctx context.Context) error {
	if err := h.ensureLoaded(ctx); err != nil {
		return err
	}
	records, err := h.store.LoadAll(ctx)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.cache.Load(records)
	h.mu.Unlock()
	return nil
}

func (h *DashboardHub) findRecord(id uuid.UUID) (reconcile.Record, bool) {
	for _, rec := range h.cache.All() {
		if rec.ID == id {
			return rec, true
		}
	}
	return reconcile.Record{}, false
}

// AdminController serves the staff dashboard list and the end-time edit flow.
type AdminController struct {
	Hub *DashboardHub
}

func NewAdminController(hub *DashboardHub) *AdminController {
	return &AdminController{Hub: hub}
}

// GET /api/a/visitor-registrations?search=&page=&per_page=
func (ctl *AdminController) List(c *fiber.Ctx) error {
	if err := ctl.Hub.ensureLoaded(c.Context()); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Could not load registrations")
	}
	p := helper.ResolvePaging(c, 20, 100)

	ctl.Hub.mu.Lock()
	ctl.Hub.cache.SetSearch(c.Query("search"))
	visible := ctl.Hub.cache.Visible()
	ctl.Hub.mu.Unlock()

	total := int64(len(visible))
	lo := p.Offset
	if lo > len(visible) {
		lo = len(visible)
	}
	hi := lo + p.Limit
	if hi > len(visible) {
		hi = len(visible)
	}

	items := make([]visitDTO.VisitorRegistrationDTO, 0, hi-lo)
	for _, rec := range visible[lo:hi] {
		items = append(items, visitDTO.FromRecord(rec))
	}
	return helper.JsonList(c, "OK", items, helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// POST /api/a/visitor-registrations/refresh
func (ctl *AdminController) Refresh(c *fiber.Ctx) error {
	if err := ctl.Hub.Refresh(c.Context()); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Could not refresh registrations")
	}
	return helper.JsonOK(c, "Registrations refreshed", nil)
}

// GET /api/a/visitor-registrations/:id
func (ctl *AdminController) GetByID(c *fiber.Ctx) error {
	if err := ctl.Hub.ensureLoaded(c.Context()); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Could not load registrations")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid registration id")
	}
	ctl.Hub.mu.Lock()
	rec, ok := ctl.Hub.findRecord(id)
	ctl.Hub.mu.Unlock()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Registration not found")
	}
	return helper.JsonOK(c, "OK", visitDTO.FromRecord(rec))
}

// POST /api/a/visitor-registrations/:id/edit
// Opens the inline end-time editor; a second open silently moves focus and
// discards the previous row's unsaved draft.
func (ctl *AdminController) StartEdit(c *fiber.Ctx) error {
	if err := ctl.Hub.ensureLoaded(c.Context()); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Could not load registrations")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid registration id")
	}
	ctl.Hub.mu.Lock()
	defer ctl.Hub.mu.Unlock()
	rec, ok := ctl.Hub.findRecord(id)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Registration not found")
	}
	ctl.Hub.editor.StartEdit(rec)
	_, draft, _ := ctl.Hub.editor.Editing()
	return helper.JsonOK(c, "Editing", fiber.Map{"id": id, "end_time": draft})
}

// PATCH /api/a/visitor-registrations/edit
func (ctl *AdminController) SetEditDraft(c *fiber.Ctx) error {
	var req visitDTO.UpdateEndTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payload")
	}
	ctl.Hub.mu.Lock()
	defer ctl.Hub.mu.Unlock()
	if _, _, ok := ctl.Hub.editor.Editing(); !ok {
		return fiber.NewError(fiber.StatusConflict, "No row is being edited")
	}
	ctl.Hub.editor.SetDraft(req.EndTime)
	return helper.JsonUpdated(c, "Draft updated", fiber.Map{"end_time": req.EndTime})
}

// POST /api/a/visitor-registrations/edit/save
func (ctl *AdminController) SaveEdit(c *fiber.Ctx) error {
	ctl.Hub.mu.Lock()
	err := ctl.Hub.editor.SaveEdit(c.Context())
	ctl.Hub.mu.Unlock()
	return ctl.respondEditResult(c, err)
}

// DELETE /api/a/visitor-registrations/edit
func (ctl *AdminController) CancelEdit(c *fiber.Ctx) error {
	ctl.Hub.mu.Lock()
	ctl.Hub.editor.CancelEdit()
	ctl.Hub.mu.Unlock()
	return helper.JsonOK(c, "Edit cancelled", nil)
}

// PATCH /api/a/visitor-registrations/:id/endtime
// One-shot update for clients that skip the edit session.
func (ctl *AdminController) UpdateEndTime(c *fiber.Ctx) error {
	if err := ctl.Hub.ensureLoaded(c.Context()); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Could not load registrations")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid registration id")
	}
	var req visitDTO.UpdateEndTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payload")
	}

	ctl.Hub.mu.Lock()
	rec, ok := ctl.Hub.findRecord(id)
	if !ok {
		ctl.Hub.mu.Unlock()
		return fiber.NewError(fiber.StatusNotFound, "Registration not found")
	}
	ctl.Hub.editor.StartEdit(rec)
	ctl.Hub.editor.SetDraft(req.EndTime)
	saveErr := ctl.Hub.editor.SaveEdit(c.Context())
	ctl.Hub.mu.Unlock()

	return ctl.respondEditResult(c, saveErr)
}

func (ctl *AdminController) respondEditResult(c *fiber.Ctx, err error) error {
	switch {
	case err == nil:
		return helper.JsonUpdated(c, "End time saved", nil)
	case errors.Is(err, reconcile.ErrNotEditing):
		return fiber.NewError(fiber.StatusConflict, "No row is being edited")
	case errors.Is(err, reconcile.ErrEmptyEndTime):
		return fiber.NewError(fiber.StatusBadRequest, "End time is required")
	case errors.Is(err, reconcile.ErrSaveInFlight):
		return fiber.NewError(fiber.StatusConflict, "A save is already in progress")
	case errors.Is(err, reconcile.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Registration not found")
	default:
		return helper.JsonError(c, fiber.StatusBadGateway, "Could not save end time")
	}
}

// DELETE /api/a/visitor-registrations/:id
func (ctl *AdminController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid registration id")
	}
	if err := ctl.Hub.store.Delete(c.Context(), id); err != nil {
		if errors.Is(err, reconcile.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Registration not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Could not delete registration")
	}
	return helper.JsonDeleted(c, "Registration deleted", fiber.Map{"id": id})
}
