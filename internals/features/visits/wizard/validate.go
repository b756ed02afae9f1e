package wizard

import (
	"fmt"
	"strings"
)

const (
	minPhoneDigits = 9
)

// StepError is a user-correctable validation failure. It blocks advancement
// and surfaces as a notification; it is never a fault.
type StepError struct {
	Step    Step
	Message string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %s", e.Step, e.Message)
}

// ValidateCurrent applies the step-local rules for the active step. The
// draft is left untouched either way.
func (m *Machine) ValidateCurrent() *StepError {
	return validateStep(m.step, m.draft)
}

func validateStep(step Step, d Draft) *StepError {
	fail := func(msg string) *StepError {
		return &StepError{Step: step, Message: msg}
	}

	switch step {
	case StepName:
		if strings.TrimSpace(d.VisitorName) == "" {
			return fail("Please enter your name")
		}

	case StepPurpose:
		if !d.Purpose.Valid() {
			return fail("Please select a purpose of visit")
		}
		if d.Purpose == PurposeOther && strings.TrimSpace(d.OtherPurpose) == "" {
			return fail("Please describe your purpose of visit")
		}
		if d.Purpose == PurposeMeetingSchoolStaff && strings.TrimSpace(d.StaffEmail) == "" {
			return fail("Please enter the staff member's email")
		}

	case StepContact:
		n := len(d.PhoneNumber)
		if n < minPhoneDigits || n > maxPhoneDigits {
			return fail(fmt.Sprintf("Phone number must be %d to %d digits", minPhoneDigits, maxPhoneDigits))
		}

	case StepAddress:
		if strings.TrimSpace(d.Address.City) == "" {
			return fail("Please enter your city")
		}
		if d.Address.Country == "India" && strings.TrimSpace(d.Address.State) == "" {
			return fail("Please enter your state")
		}

	case StepUpload:
		if d.Picture.Empty() {
			return fail("Please take a photo before continuing")
		}

	case StepSignature:
		// uncommitted strokes are rasterized by the capture endpoint before
		// Advance is called, so an empty signature here means none was drawn
		if d.Signature.Empty() {
			return fail("Please sign before continuing")
		}
	}

	return nil
}
