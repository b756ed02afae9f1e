package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"visitorku_backend/internals/configs"
	"visitorku_backend/internals/features/visits/model"
	"visitorku_backend/internals/features/visits/reconcile"
	"visitorku_backend/internals/features/visits/wizard"
	"visitorku_backend/internals/helpers/mailer"
)

type fakeBlobs struct {
	uploads []string // dir/filename pairs
	deleted []string // public URLs
	err     error
}

func (f *fakeBlobs) UploadImage(_ context.Context, dir, filename, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, dir+"/"+filename)
	return "https://cdn.example.com/" + dir + "/" + filename, nil
}

func (f *fakeBlobs) DeleteByPublicURL(_ context.Context, url string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, url)
	return nil
}

type fakeMailer struct {
	sent []string // recipients
	err  error
}

func (f *fakeMailer) SendMail(to, _, _ string, _ []mailer.Attachment) error {
	f.sent = append(f.sent, to)
	return f.err
}

type SubmitSuite struct {
	suite.Suite
}

func TestSubmitSuite(t *testing.T) {
	suite.Run(t, new(SubmitSuite))
}

func (s *SubmitSuite) TestUploadFailureAbortsBeforePersist() {
	blobs := &fakeBlobs{err: errors.New("bucket unreachable")}
	svc := NewSubmitService(nil, blobs, reconcile.NewBus(), nil)

	draft := wizard.NewDraft()
	draft.VisitorName = "Asha Rao"
	draft.Picture = wizard.ImageRef{Blob: &wizard.Blob{Data: []byte{1}, ContentType: "image/webp"}}

	_, err := svc.Submit(context.Background(), draft)
	s.Require().ErrorIs(err, ErrUpload)
	s.Empty(blobs.uploads)
}

func (s *SubmitSuite) TestResolveImagePassesURLThrough() {
	svc := NewSubmitService(nil, &fakeBlobs{}, reconcile.NewBus(), nil)

	url, err := svc.resolveImage(context.Background(),
		wizard.ImageRef{URL: "https://cdn.example.com/pictures/old.webp"}, "pictures", "photo.webp")
	s.Require().NoError(err)
	s.Require().NotNil(url)
	s.Equal("https://cdn.example.com/pictures/old.webp", *url)
}

func (s *SubmitSuite) TestResolveImageAbsentIsNull() {
	svc := NewSubmitService(nil, &fakeBlobs{}, reconcile.NewBus(), nil)

	url, err := svc.resolveImage(context.Background(), wizard.ImageRef{}, "signatures", "signature.png")
	s.Require().NoError(err)
	s.Nil(url)
}

func (s *SubmitSuite) TestEffectivePurposeOtherUsesFreeText() {
	d := wizard.NewDraft()
	d.Purpose = wizard.PurposeOther
	d.OtherPurpose = "  Campus photography  "
	s.Equal("Campus photography", effectivePurpose(d))

	d.Purpose = wizard.PurposeAlumni
	s.Equal("alumni", effectivePurpose(d))
}

func (s *SubmitSuite) TestToRecordRoundTrip() {
	people, _ := json.Marshal([]wizard.Person{{Name: "Asha Rao", Role: "Self"}, {Role: "Driver"}})
	addr, _ := json.Marshal(wizard.Address{City: "Mussoorie", State: "Uttarakhand", Country: "India"})
	end := "2025-03-14T11:00:00"

	m := model.VisitorRegistrationModel{
		VisitorRegistrationID:             uuid.New(),
		VisitorRegistrationName:           "Asha Rao",
		VisitorRegistrationPhone:          "9876543210",
		VisitorRegistrationNumberOfPeople: 2,
		VisitorRegistrationPeople:         people,
		VisitorRegistrationAddress:        addr,
		VisitorRegistrationPurpose:        "alumni",
		VisitorRegistrationSchoolName:     "Woodstock School",
		VisitorRegistrationStartTime:      "2025-03-14T04:00:00",
		VisitorRegistrationEndTime:        &end,
		VisitorRegistrationCreatedAt:      time.Now(),
	}

	rec := toRecord(m)
	s.Equal(m.VisitorRegistrationID, rec.ID)
	s.Len(rec.People, 2)
	s.Equal("Driver", rec.People[1].Role)
	s.Equal("Mussoorie", rec.Address.City)
	s.Equal("completed", rec.Status())
}

type NotifySuite struct {
	suite.Suite
	prevStaff string
}

func TestNotifySuite(t *testing.T) {
	suite.Run(t, new(NotifySuite))
}

func (s *NotifySuite) SetupTest() {
	s.prevStaff = configs.StaffNotifyEmail
	configs.StaffNotifyEmail = "frontoffice@school.edu"
}

func (s *NotifySuite) TearDownTest() {
	configs.StaffNotifyEmail = s.prevStaff
}

func (s *NotifySuite) TestNotifyReachesOfficeAndStaff() {
	mail := &fakeMailer{}
	n := NewNotifyService(mail)

	n.NotifyStaff(reconcile.Record{VisitorName: "Asha Rao"}, "teacher@school.edu")
	s.Equal([]string{"frontoffice@school.edu", "teacher@school.edu"}, mail.sent)
}

func (s *NotifySuite) TestNotifyDeduplicatesRecipients() {
	mail := &fakeMailer{}
	n := NewNotifyService(mail)

	n.NotifyStaff(reconcile.Record{VisitorName: "Asha Rao"}, "FrontOffice@school.edu")
	s.Equal([]string{"frontoffice@school.edu"}, mail.sent)
}

func (s *NotifySuite) TestNotifyFailureIsSwallowed() {
	mail := &fakeMailer{err: errors.New("smtp down")}
	n := NewNotifyService(mail)

	s.NotPanics(func() {
		n.NotifyStaff(reconcile.Record{VisitorName: "Asha Rao"}, "")
	})
	s.Len(mail.sent, 1)
}

func (s *NotifySuite) TestNotifySkippedWithNoRecipients() {
	configs.StaffNotifyEmail = ""
	mail := &fakeMailer{}
	n := NewNotifyService(mail)

	n.NotifyStaff(reconcile.Record{VisitorName: "Asha Rao"}, "")
	s.Empty(mail.sent)
}

func (s *NotifySuite) TestBodyRendersISTTimes() {
	body := buildNotifyBody(reconcile.Record{
		VisitorName: "Asha Rao",
		StartTime:   "2025-03-14T04:00:00", // 09:30 IST
		Address:     wizard.Address{City: "Dehradun", Country: "India"},
	})
	s.Contains(body, "09:30")
	s.Contains(body, "Dehradun, India")
}
