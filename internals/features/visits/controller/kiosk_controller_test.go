package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"

	"visitorku_backend/internals/features/visits/reconcile"
	"visitorku_backend/internals/features/visits/service"
)

// KioskHTTPSuite drives the wizard through the HTTP surface the tablet uses.
// Submission itself is covered by the service tests; here the session never
// reaches the pipeline.
type KioskHTTPSuite struct {
	suite.Suite
	app       *fiber.App
	sessionID string
}

func TestKioskHTTPSuite(t *testing.T) {
	suite.Run(t, new(KioskHTTPSuite))
}

func (s *KioskHTTPSuite) SetupTest() {
	s.app = fiber.New()
	ctrl := NewKioskController(service.NewSubmitService(nil, nil, reconcile.NewBus(), nil))

	sessions := s.app.Group("/api/kiosk/sessions")
	sessions.Post("/", ctrl.CreateSession)
	sessions.Get("/:id", ctrl.GetSession)
	sessions.Post("/:id/advance", ctrl.Advance)
	sessions.Post("/:id/retreat", ctrl.Retreat)
	sessions.Patch("/:id/draft", ctrl.PatchDraft)
	sessions.Post("/:id/people/increment", ctrl.IncrementPeople)
	sessions.Post("/:id/people/decrement", ctrl.DecrementPeople)
	sessions.Delete("/:id/files/:slot", ctrl.ClearFile)
	sessions.Post("/:id/submit", ctrl.SubmitSession)
	sessions.Delete("/:id", ctrl.EndSession)

	s.sessionID = s.createSession()
}

func (s *KioskHTTPSuite) do(method, path string, body any) (*http.Response, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func (s *KioskHTTPSuite) createSession() string {
	resp, out := s.do(http.MethodPost, "/api/kiosk/sessions/", nil)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	data := out["data"].(map[string]any)
	return data["session_id"].(string)
}

func (s *KioskHTTPSuite) sessionPath(suffix string) string {
	return fmt.Sprintf("/api/kiosk/sessions/%s%s", s.sessionID, suffix)
}

func (s *KioskHTTPSuite) draft() map[string]any {
	resp, out := s.do(http.MethodGet, s.sessionPath(""), nil)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	return out["data"].(map[string]any)
}

func (s *KioskHTTPSuite) TestSessionStartsAtWelcome() {
	d := s.draft()
	s.Equal(float64(1), d["step"])
	s.Equal("welcome", d["step_name"])
	s.Equal(float64(1), d["number_of_people"])
}

func (s *KioskHTTPSuite) TestAdvanceBlockedByValidation() {
	// welcome → name is free
	resp, _ := s.do(http.MethodPost, s.sessionPath("/advance"), nil)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	// name step requires a name
	resp, out := s.do(http.MethodPost, s.sessionPath("/advance"), nil)
	s.Equal(fiber.StatusUnprocessableEntity, resp.StatusCode)
	s.Equal("Please enter your name", out["message"])
	s.Equal(float64(2), s.draft()["step"]) // cursor did not move

	// fill the name and retry
	resp, _ = s.do(http.MethodPatch, s.sessionPath("/draft"), map[string]any{"visitor_name": "Asha Rao"})
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	resp, _ = s.do(http.MethodPost, s.sessionPath("/advance"), nil)
	s.Equal(fiber.StatusOK, resp.StatusCode)
	s.Equal(float64(3), s.draft()["step"])
}

func (s *KioskHTTPSuite) TestSubmitBlockedBeforeConfirmStep() {
	// brand-new session: nothing entered, submit must not reach the pipeline
	resp, out := s.do(http.MethodPost, s.sessionPath("/submit"), nil)
	s.Equal(fiber.StatusConflict, resp.StatusCode)
	s.Equal("Submission is only available from the confirm step", out["message"])
	s.Equal(float64(1), s.draft()["step"]) // draft untouched

	// still blocked from a mid-wizard step
	_, _ = s.do(http.MethodPost, s.sessionPath("/advance"), nil) // welcome → name
	resp, _ = s.do(http.MethodPost, s.sessionPath("/submit"), nil)
	s.Equal(fiber.StatusConflict, resp.StatusCode)
}

func (s *KioskHTTPSuite) TestDraftPatchNormalizesPhone() {
	resp, out := s.do(http.MethodPatch, s.sessionPath("/draft"), map[string]any{"phone_number": "+91 98765-43210 ext 99"})
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	d := out["data"].(map[string]any)
	s.Equal("91987654321", d["phone_number"]) // digits only, capped at 11
}

func (s *KioskHTTPSuite) TestPeopleStepper() {
	resp, out := s.do(http.MethodPost, s.sessionPath("/people/increment"), nil)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	d := out["data"].(map[string]any)
	s.Equal(float64(2), d["number_of_people"])
	s.Len(d["people"].([]any), 2)

	// decrement twice: second one is blocked at 1
	_, _ = s.do(http.MethodPost, s.sessionPath("/people/decrement"), nil)
	_, out = s.do(http.MethodPost, s.sessionPath("/people/decrement"), nil)
	d = out["data"].(map[string]any)
	s.Equal(float64(1), d["number_of_people"])
}

func (s *KioskHTTPSuite) TestRetreatKeepsData() {
	_, _ = s.do(http.MethodPatch, s.sessionPath("/draft"), map[string]any{"visitor_name": "Asha Rao"})
	_, _ = s.do(http.MethodPost, s.sessionPath("/advance"), nil)
	_, _ = s.do(http.MethodPost, s.sessionPath("/retreat"), nil)

	d := s.draft()
	s.Equal(float64(1), d["step"])
	s.Equal("Asha Rao", d["visitor_name"])
}

func (s *KioskHTTPSuite) TestUnknownSessionIs404() {
	resp, _ := s.do(http.MethodGet, "/api/kiosk/sessions/0b9f5df2-11bb-4b52-9d7a-000000000000", nil)
	s.Equal(fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/api/kiosk/sessions/not-a-uuid", nil)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *KioskHTTPSuite) TestClearFileRejectsUnknownSlot() {
	resp, _ := s.do(http.MethodDelete, s.sessionPath("/files/avatar"), nil)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *KioskHTTPSuite) TestEndSessionRemovesIt() {
	resp, _ := s.do(http.MethodDelete, s.sessionPath(""), nil)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	resp, _ = s.do(http.MethodGet, s.sessionPath(""), nil)
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
}
