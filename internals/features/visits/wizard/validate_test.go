package wizard

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ValidateSuite struct {
	suite.Suite
	machine *Machine
}

func TestValidateSuite(t *testing.T) {
	suite.Run(t, new(ValidateSuite))
}

func (s *ValidateSuite) SetupTest() {
	s.machine = NewMachine(nil)
}

func (s *ValidateSuite) advanceTo(step Step) {
	for s.machine.Step() != step {
		s.machine.Advance()
	}
}

func (s *ValidateSuite) TestWelcomeAndConfirmHaveNoRules() {
	s.Nil(s.machine.ValidateCurrent())
	s.advanceTo(StepConfirm)
	s.Nil(s.machine.ValidateCurrent())
}

func (s *ValidateSuite) TestNameRequired() {
	s.advanceTo(StepName)
	err := s.machine.ValidateCurrent()
	s.Require().NotNil(err)
	s.Equal(StepName, err.Step)

	s.machine.MergeUpdate(Partial{VisitorName: strp("Asha")})
	s.Nil(s.machine.ValidateCurrent())
}

func (s *ValidateSuite) TestPhoneBounds() {
	s.advanceTo(StepContact)

	s.machine.MergeUpdate(Partial{PhoneNumber: strp("12345678")}) // 8 digits
	err := s.machine.ValidateCurrent()
	s.Require().NotNil(err)
	s.Contains(err.Message, "9 to 11")

	s.machine.MergeUpdate(Partial{PhoneNumber: strp("123456789")}) // 9 digits
	s.Nil(s.machine.ValidateCurrent())

	// 12 digits truncates to 11 at merge time and passes
	s.machine.MergeUpdate(Partial{PhoneNumber: strp("123456789012")})
	s.Nil(s.machine.ValidateCurrent())
}

func (s *ValidateSuite) TestOtherPurposeRequiresDescription() {
	s.advanceTo(StepPurpose)
	s.machine.MergeUpdate(Partial{Purpose: purp(PurposeOther)})
	s.NotNil(s.machine.ValidateCurrent())

	s.machine.MergeUpdate(Partial{OtherPurpose: strp("campus photography")})
	s.Nil(s.machine.ValidateCurrent())
}

func (s *ValidateSuite) TestStaffMeetingRequiresEmail() {
	s.advanceTo(StepPurpose)
	s.machine.MergeUpdate(Partial{Purpose: purp(PurposeMeetingSchoolStaff)})
	s.NotNil(s.machine.ValidateCurrent())

	s.machine.MergeUpdate(Partial{StaffEmail: strp("teacher@school.edu")})
	s.Nil(s.machine.ValidateCurrent())
}

func (s *ValidateSuite) TestStateRequiredOnlyForIndia() {
	s.advanceTo(StepAddress)
	s.machine.MergeUpdate(Partial{Address: &AddressPatch{City: strp("Landour")}})
	s.NotNil(s.machine.ValidateCurrent()) // country defaults to India

	s.machine.MergeUpdate(Partial{Address: &AddressPatch{Country: strp("Nepal")}})
	s.Nil(s.machine.ValidateCurrent())

	s.machine.MergeUpdate(Partial{Address: &AddressPatch{Country: strp("India"), State: strp("Uttarakhand")}})
	s.Nil(s.machine.ValidateCurrent())
}

func (s *ValidateSuite) TestUploadRequiresPicture() {
	s.advanceTo(StepUpload)
	s.NotNil(s.machine.ValidateCurrent())

	s.machine.MergeUpdate(Partial{Picture: &ImageRef{Blob: &Blob{Data: []byte{1}, ContentType: "image/webp"}}})
	s.Nil(s.machine.ValidateCurrent())

	// a URL left over from a reloaded session also counts
	s.machine.MergeUpdate(Partial{Picture: &ImageRef{URL: "https://example.com/p.webp"}})
	s.Nil(s.machine.ValidateCurrent())
}

func (s *ValidateSuite) TestSignatureGate() {
	s.advanceTo(StepSignature)
	err := s.machine.ValidateCurrent()
	s.Require().NotNil(err)
	s.Contains(err.Message, "sign")

	s.machine.MergeUpdate(Partial{Signature: &ImageRef{Blob: &Blob{Data: []byte{1}, ContentType: "image/png"}}})
	s.Nil(s.machine.ValidateCurrent())
}

func (s *ValidateSuite) TestValidationLeavesDraftUnchanged() {
	s.advanceTo(StepContact)
	s.machine.MergeUpdate(Partial{PhoneNumber: strp("123")})
	before := s.machine.Draft()
	_ = s.machine.ValidateCurrent()
	s.Equal(before, s.machine.Draft())
}
