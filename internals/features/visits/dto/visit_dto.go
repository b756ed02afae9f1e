package dto

import (
	"encoding/json"
	"strconv"

	"visitorku_backend/internals/features/visits/model"
	"visitorku_backend/internals/features/visits/reconcile"
	"visitorku_backend/internals/features/visits/wizard"
	"visitorku_backend/internals/helpers/civiltime"
)

// ============================
// Admin response DTO
// ============================

type VisitorRegistrationDTO struct {
	ID             string          `json:"id"`
	VisitorName    string          `json:"visitor_name"`
	PhoneNumber    string          `json:"phone_number"`
	NumberOfPeople int             `json:"number_of_people"`
	People         []wizard.Person `json:"people"`
	Purpose        string          `json:"purpose"`
	Address        wizard.Address  `json:"address"`
	SchoolName     string          `json:"school_name"`
	StartTime      string          `json:"start_time"` // editable IST wall clock
	EndTime        *string         `json:"end_time"`
	Status         string          `json:"status"` // derived: end_time null ⇔ active
	PictureURL     *string         `json:"picture_url"`
	SignatureURL   *string         `json:"signature_url"`
	CreatedAt      string          `json:"created_at"`
}

// ToRecord maps a database row into the reconciler's record shape.
func ToRecord(m model.VisitorRegistrationModel) reconcile.Record {
	var people []wizard.Person
	_ = json.Unmarshal(m.VisitorRegistrationPeople, &people)
	var addr wizard.Address
	_ = json.Unmarshal(m.VisitorRegistrationAddress, &addr)

	return reconcile.Record{
		ID:             m.VisitorRegistrationID,
		VisitorName:    m.VisitorRegistrationName,
		PhoneNumber:    m.VisitorRegistrationPhone,
		NumberOfPeople: m.VisitorRegistrationNumberOfPeople,
		People:         people,
		Purpose:        m.VisitorRegistrationPurpose,
		Address:        addr,
		SchoolName:     m.VisitorRegistrationSchoolName,
		StartTime:      m.VisitorRegistrationStartTime,
		EndTime:        m.VisitorRegistrationEndTime,
		PictureURL:     m.VisitorRegistrationPictureURL,
		SignatureURL:   m.VisitorRegistrationSignatureURL,
		CreatedAt:      m.VisitorRegistrationCreatedAt,
	}
}

// FromRecord renders a reconciler record for the dashboard: times in the
// editable IST representation, status derived from end_time.
func FromRecord(r reconcile.Record) VisitorRegistrationDTO {
	out := VisitorRegistrationDTO{
		ID:             r.ID.String(),
		VisitorName:    r.VisitorName,
		PhoneNumber:    r.PhoneNumber,
		NumberOfPeople: r.NumberOfPeople,
		People:         r.People,
		Purpose:        r.Purpose,
		Address:        r.Address,
		SchoolName:     r.SchoolName,
		Status:         r.Status(),
		PictureURL:     r.PictureURL,
		SignatureURL:   r.SignatureURL,
		CreatedAt:      r.CreatedAt.In(civiltime.IST).Format("2006-01-02 15:04:05"),
	}

	if t, err := civiltime.FromStored(r.StartTime); err == nil {
		out.StartTime = civiltime.ToEditable(t)
	}
	if r.EndTime != nil {
		if t, err := civiltime.FromStored(*r.EndTime); err == nil {
			s := civiltime.ToEditable(t)
			out.EndTime = &s
		}
	}
	return out
}

// ============================
// Kiosk draft patch request
// ============================

type DraftPatchRequest struct {
	VisitorName  *string                   `json:"visitor_name"`
	PhoneNumber  *string                   `json:"phone_number"`
	Purpose      *string                   `json:"purpose"`
	OtherPurpose *string                   `json:"other_purpose"`
	StaffEmail   *string                   `json:"staff_email" validate:"omitempty,email"`
	EndTime      *string                   `json:"end_time"` // editable IST wall clock
	Address      *AddressPatchRequest      `json:"address"`
	People       map[string]PersonPatchReq `json:"people"` // index → patch
}

type AddressPatchRequest struct {
	City    *string `json:"city"`
	State   *string `json:"state"`
	Country *string `json:"country"`
}

type PersonPatchReq struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

// ToPartial converts the JSON patch into the wizard's merge shape. An
// unparseable end time comes back as an error string for the notification.
func (r DraftPatchRequest) ToPartial() (wizard.Partial, error) {
	p := wizard.Partial{
		VisitorName:  r.VisitorName,
		PhoneNumber:  r.PhoneNumber,
		OtherPurpose: r.OtherPurpose,
		StaffEmail:   r.StaffEmail,
	}
	if r.Purpose != nil {
		pv := wizard.Purpose(*r.Purpose)
		p.Purpose = &pv
	}
	if r.EndTime != nil && *r.EndTime != "" {
		t, err := civiltime.FromEditable(*r.EndTime)
		if err != nil {
			return wizard.Partial{}, err
		}
		p.EndTime = &t
	}
	if r.Address != nil {
		p.Address = &wizard.AddressPatch{
			City:    r.Address.City,
			State:   r.Address.State,
			Country: r.Address.Country,
		}
	}
	if len(r.People) > 0 {
		p.People = make(map[int]wizard.PersonPatch, len(r.People))
		for k, v := range r.People {
			i, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			p.People[i] = wizard.PersonPatch{Name: v.Name, Role: v.Role}
		}
	}
	return p, nil
}

// ============================
// Kiosk session snapshot
// ============================

type DraftSnapshotDTO struct {
	Step           int             `json:"step"`
	StepName       string          `json:"step_name"`
	VisitorName    string          `json:"visitor_name"`
	NumberOfPeople int             `json:"number_of_people"`
	People         []wizard.Person `json:"people"`
	Purpose        string          `json:"purpose"`
	OtherPurpose   string          `json:"other_purpose"`
	StaffEmail     string          `json:"staff_email"`
	StartTime      string          `json:"start_time,omitempty"`
	EndTime        string          `json:"end_time,omitempty"`
	DurationText   string          `json:"duration_text,omitempty"`
	PhoneNumber    string          `json:"phone_number"`
	Address        wizard.Address  `json:"address"`
	PictureStaged  bool            `json:"picture_staged"`
	SignatureReady bool            `json:"signature_ready"`
}

func ToDraftSnapshotDTO(step wizard.Step, d wizard.Draft) DraftSnapshotDTO {
	out := DraftSnapshotDTO{
		Step:           int(step),
		StepName:       step.String(),
		VisitorName:    d.VisitorName,
		NumberOfPeople: d.NumberOfPeople,
		People:         d.People,
		Purpose:        string(d.Purpose),
		OtherPurpose:   d.OtherPurpose,
		StaffEmail:     d.StaffEmail,
		PhoneNumber:    d.PhoneNumber,
		Address:        d.Address,
		PictureStaged:  !d.Picture.Empty(),
		SignatureReady: !d.Signature.Empty(),
	}
	if !d.StartTime.IsZero() {
		out.StartTime = civiltime.ToEditable(d.StartTime)
	}
	if d.EndTime != nil {
		out.EndTime = civiltime.ToEditable(*d.EndTime)
	}
	if text, ok := d.DurationText(); ok || text != "" {
		out.DurationText = text
	}
	return out
}

// ============================
// Admin end-time update request
// ============================

type UpdateEndTimeRequest struct {
	EndTime string `json:"end_time" validate:"required"` // editable IST wall clock
}
