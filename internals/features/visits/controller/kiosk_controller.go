// internals/features/visits/controller/kiosk_controller.go
package controller

import (
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	visitDTO "visitorku_backend/internals/features/visits/dto"
	"visitorku_backend/internals/features/visits/service"
	"visitorku_backend/internals/features/visits/wizard"
	helper "visitorku_backend/internals/helpers"
	"visitorku_backend/internals/helpers/storage"
)

var validate = validator.New()

// KioskController drives the registration wizard for the lobby tablet. The
// wizard state lives server-side; the tablet only renders snapshots.
type KioskController struct {
	Submit *service.SubmitService
}

func NewKioskController(submit *service.SubmitService) *KioskController {
	return &KioskController{Submit: submit}
}

// sessionFromParams resolves :id into a live kiosk session.
func sessionFromParams(c *fiber.Ctx) (*service.Session, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}
	sess, ok := service.Sessions.Get(id)
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "Session not found or expired")
	}
	return sess, nil
}

func snapshot(sess *service.Session) visitDTO.DraftSnapshotDTO {
	var out visitDTO.DraftSnapshotDTO
	sess.Do(func(m *wizard.Machine) {
		out = visitDTO.ToDraftSnapshotDTO(m.Step(), m.Draft())
	})
	return out
}

// CREATE
// POST /api/kiosk/sessions
func (h *KioskController) CreateSession(c *fiber.Ctx) error {
	sess := service.Sessions.Create()
	return helper.JsonCreated(c, "Session started", fiber.Map{
		"session_id": sess.ID,
		"draft":      snapshot(sess),
	})
}

// GET /api/kiosk/sessions/:id
func (h *KioskController) GetSession(c *fiber.Ctx) error {
	sess, err := sessionFromParams(c)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "OK", snapshot(sess))
}

// POST /api/kiosk/sessions/:id/advance
// Validation gates the transition: on failure the step does not move and the
// message is surfaced for the toast.
func (h *KioskController) Advance(c *fiber.Ctx) error {
	sess, err := sessionFromParams(c)
	if err != nil {
		return err
	}
	var stepErr *wizard.StepError
	sess.Do(func(m *wizard.Machine) {
		if stepErr = m.ValidateCurrent(); stepErr == nil {
			m.Advance()
		}
	})
	if stepErr != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, stepErr.Message)
	}
	return helper.JsonOK(c, "OK", snapshot(sess))
}

// POST /api/kiosk/sessions/:id/retreat
// Going back never validates and never discards entered data.
func (h *KioskController) Retreat(c *fiber.Ctx) error {
	sess, err := sessionFromParams(c)
	if err != nil {
		return err
	}
	sess.Do(func(m *wizard.Machine) { m.Retreat() })
	return helper.JsonOK(c, "OK", snapshot(sess))
}

// PATCH /api/kiosk/sessions/:id/draft
func (h *KioskController) PatchDraft(c *fiber.Ctx) error {
	sess, err := sessionFromParams(c)
	if err != nil {
		return err
	}

	var req visitDTO.DraftPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	partial, err := req.ToPartial()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid end time")
	}

	sess.Do(func(m *wizard.Machine) { m.MergeUpdate(partial) })
	return helper.JsonUpdated(c, "Draft updated", snapshot(sess))
}

// POST /api/kiosk/sessions/:id/people/increment
func (h *KioskController) IncrementPeople(c *fiber.Ctx) error {
	sess, err := sessionFromParams(c)
	if err != nil {
		return err
	}
	sess.Do(func(m *wizard.Machine) { m.IncrementPeople() })
	return helper.JsonUpdated(c, "Draft updated", snapshot(sess))
}

// POST /api/kiosk/sessions/:id/people/decrement
func (h *KioskController) DecrementPeople(c *fiber.Ctx) error {
	sess, err := sessionFromParams(c)
	if err != nil {
		return err
	}
	sess.Do(func(m *wizard.Machine) { m.DecrementPeople() })
	return helper.JsonUpdated(c, "Draft updated", snapshot(sess))
}

const maxImageBytes = 6 << 20

// POST /api/kiosk/sessions/:id/files/:slot  (multipart "file", slot picture|signature)
// The image is re-encoded and staged in the draft; nothing touches the object
// store until submission.
func (h *KioskController) StageFile(c *fiber.Ctx) error {
	sess, err := sessionFromParams(c)
	if err != nil {
		return err
	}
	slot := c.Params("slot")
	if slot != "picture" && slot != "signature" {
		return fiber.NewError(fiber.StatusBadRequest, "Unknown file slot")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing file field")
	}
	if fh.Size > maxImageBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "Image too large")
	}
	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Could not read file")
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Could not read file")
	}

	var ref wizard.ImageRef
	switch slot {
	case "picture":
		data, err := storage.EncodePhotoWebP(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Unsupported image format")
		}
		ref = wizard.ImageRef{Blob: &wizard.Blob{Data: data, ContentType: "image/webp"}}
	case "signature":
		data, err := storage.EncodeSignaturePNG(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Unsupported image format")
		}
		ref = wizard.ImageRef{Blob: &wizard.Blob{Data: data, ContentType: "image/png"}}
	}

	sess.Do(func(m *wizard.Machine) {
		p := wizard.Partial{}
		if slot == "picture" {
			p.Picture = &ref
		} else {
			p.Signature = &ref
		}
		m.MergeUpdate(p)
	})
	return helper.JsonUpdated(c, "Image staged", snapshot(sess))
}

// DELETE /api/kiosk/sessions/:id/files/:slot
func (h *KioskController) ClearFile(c *fiber.Ctx) error {
	sess, err := sessionFromParams(c)
	if err != nil {
		return err
	}
	slot := c.Params("slot")
	if slot != "picture" && slot != "signature" {
		return fiber.NewError(fiber.StatusBadRequest, "Unknown file slot")
	}
	empty := wizard.ImageRef{}
	sess.Do(func(m *wizard.Machine) {
		p := wizard.Partial{}
		if slot == "picture" {
			p.Picture = &empty
		} else {
			p.Signature = &empty
		}
		m.MergeUpdate(p)
	})
	return helper.JsonUpdated(c, "Image cleared", snapshot(sess))
}

// POST /api/kiosk/sessions/:id/submit
// Submission is only reachable from the confirm step; earlier steps have no
// validation of their own, so the step gate is what keeps half-filled drafts
// out of the pipeline. Success resets the session back to the welcome step
// for the next visitor. Any failure keeps the draft so the visitor can retry.
func (h *KioskController) SubmitSession(c *fiber.Ctx) error {
	sess, err := sessionFromParams(c)
	if err != nil {
		return err
	}

	var draft wizard.Draft
	var stepErr *wizard.StepError
	atConfirm := false
	sess.Do(func(m *wizard.Machine) {
		if m.Step() != wizard.StepConfirm {
			return
		}
		atConfirm = true
		if stepErr = m.ValidateCurrent(); stepErr == nil {
			draft = m.Draft()
		}
	})
	if !atConfirm {
		return helper.JsonError(c, fiber.StatusConflict, "Submission is only available from the confirm step")
	}
	if stepErr != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, stepErr.Message)
	}

	id, err := h.Submit.Submit(c.Context(), draft)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUpload):
			return helper.JsonError(c, fiber.StatusBadGateway, "Image upload failed, please try again")
		case errors.Is(err, service.ErrPersist):
			return helper.JsonError(c, fiber.StatusInternalServerError, "Could not save registration, please try again")
		default:
			return helper.JsonError(c, fiber.StatusInternalServerError, "Could not save registration, please try again")
		}
	}

	sess.Do(func(m *wizard.Machine) { m.Reset() })
	return helper.JsonCreated(c, "Registration saved", fiber.Map{
		"registration_id": id,
		"draft":           snapshot(sess),
	})
}

// DELETE /api/kiosk/sessions/:id
func (h *KioskController) EndSession(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}
	service.Sessions.Delete(id)
	return helper.JsonDeleted(c, "Session ended", fiber.Map{"session_id": id})
}
