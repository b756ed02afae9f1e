package wizard

import (
	"fmt"
	"strings"
	"time"
)

// Purpose of the visit as selected on the purpose step.
type Purpose string

const (
	PurposeAlumni             Purpose = "alumni"
	PurposeWork               Purpose = "work"
	PurposeTourism            Purpose = "tourism"
	PurposeSports             Purpose = "sports"
	PurposeMeeting            Purpose = "meeting"
	PurposeOfficialVisit      Purpose = "official_visit"
	PurposeStudentVisit       Purpose = "student_visit"
	PurposeMeetingSchoolStaff Purpose = "meeting_school_staff"
	PurposeOther              Purpose = "other"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeAlumni, PurposeWork, PurposeTourism, PurposeSports, PurposeMeeting,
		PurposeOfficialVisit, PurposeStudentVisit, PurposeMeetingSchoolStaff, PurposeOther:
		return true
	}
	return false
}

type Person struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type Address struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Blob is an image held locally until submission uploads it.
type Blob struct {
	Data        []byte
	ContentType string
}

// ImageRef is either empty, a staged local blob, or (after a reload) a
// public URL string.
type ImageRef struct {
	Blob *Blob
	URL  string
}

func (r ImageRef) Empty() bool {
	return r.Blob == nil && r.URL == ""
}

// Draft is the in-progress registration, owned exclusively by the Machine.
type Draft struct {
	VisitorName    string
	NumberOfPeople int
	People         []Person
	Purpose        Purpose
	OtherPurpose   string
	StaffEmail     string
	StartTime      time.Time // set once when the duration step is first reached
	EndTime        *time.Time
	PhoneNumber    string
	Address        Address
	Picture        ImageRef
	Signature      ImageRef
}

// NewDraft returns the step-1 defaults.
func NewDraft() Draft {
	return Draft{
		NumberOfPeople: 1,
		People:         []Person{{}},
		Address:        Address{Country: "India"},
	}
}

const maxPhoneDigits = 11

// NormalizePhone keeps ASCII digits only and truncates at the 11-digit cap,
// the same filtering the phone input applies on every keystroke. Non-ASCII
// digit runes are stripped like any other character so the cap and the 9-11
// validation both count real digits.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		b.WriteByte(byte(r))
		if b.Len() == maxPhoneDigits {
			break
		}
	}
	return b.String()
}

// DurationText renders the visit duration for the confirm step. A non-positive
// span yields ok=false so the UI can show an "invalid duration" hint; it is
// never an error.
func (d Draft) DurationText() (text string, ok bool) {
	if d.StartTime.IsZero() || d.EndTime == nil {
		return "", false
	}
	span := d.EndTime.Sub(d.StartTime)
	if span <= 0 {
		return "Invalid duration", false
	}
	h := int(span.Hours())
	m := int(span.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%d min", m), true
	}
	return fmt.Sprintf("%d h %d min", h, m), true
}

// clone returns a deep copy so Machine.Draft() snapshots cannot alias the
// machine's own state.
func (d Draft) clone() Draft {
	out := d
	out.People = append([]Person(nil), d.People...)
	if d.EndTime != nil {
		t := *d.EndTime
		out.EndTime = &t
	}
	if d.Picture.Blob != nil {
		b := *d.Picture.Blob
		b.Data = append([]byte(nil), d.Picture.Blob.Data...)
		out.Picture.Blob = &b
	}
	if d.Signature.Blob != nil {
		b := *d.Signature.Blob
		b.Data = append([]byte(nil), d.Signature.Blob.Data...)
		out.Signature.Blob = &b
	}
	return out
}
