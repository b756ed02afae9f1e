package wizard

import (
	"time"

	"visitorku_backend/internals/helpers/civiltime"
)

// Step is the 1-based wizard cursor.
type Step int

const (
	StepWelcome Step = iota + 1
	StepName
	StepPeople
	StepPurpose
	StepDuration
	StepContact
	StepAddress
	StepUpload
	StepSignature
	StepConfirm

	firstStep = StepWelcome
	lastStep  = StepConfirm
)

var stepNames = map[Step]string{
	StepWelcome:   "welcome",
	StepName:      "name",
	StepPeople:    "people",
	StepPurpose:   "purpose",
	StepDuration:  "duration",
	StepContact:   "contact",
	StepAddress:   "address",
	StepUpload:    "upload",
	StepSignature: "signature",
	StepConfirm:   "confirm",
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return "unknown"
}

// Machine owns the step cursor and the accumulated draft for one
// registration session. It is not safe for concurrent use; the session
// store serializes access.
type Machine struct {
	step  Step
	draft Draft
	now   func() time.Time
}

// NewMachine starts at step 1 with a default draft. now is injectable for
// tests; nil means the kiosk clock (IST).
func NewMachine(now func() time.Time) *Machine {
	if now == nil {
		now = civiltime.Now
	}
	return &Machine{step: firstStep, draft: NewDraft(), now: now}
}

func (m *Machine) Step() Step { return m.step }

// Draft returns a snapshot; mutations go through MergeUpdate.
func (m *Machine) Draft() Draft { return m.draft.clone() }

// Advance moves the cursor forward. At the last step it is a no-op. The
// caller is responsible for running ValidateCurrent first; the machine
// itself does no cross-step validation.
func (m *Machine) Advance() {
	if m.step >= lastStep {
		return
	}
	m.step++
	// start time freezes the first time the duration step is reached
	if m.step == StepDuration && m.draft.StartTime.IsZero() {
		m.draft.StartTime = m.now()
	}
}

// Retreat moves the cursor back without rolling back any draft data. At the
// first step it is a no-op.
func (m *Machine) Retreat() {
	if m.step <= firstStep {
		return
	}
	m.step--
}

// Partial is a shallow-merge update. Nil fields are left untouched; Address
// is replaced as a whole object with its own unset keys preserved.
type Partial struct {
	VisitorName  *string
	PhoneNumber  *string
	Purpose      *Purpose
	OtherPurpose *string
	StaffEmail   *string
	EndTime      *time.Time
	Address      *AddressPatch
	People       map[int]PersonPatch
	Picture      *ImageRef
	Signature    *ImageRef
}

type AddressPatch struct {
	City    *string
	State   *string
	Country *string
}

type PersonPatch struct {
	Name *string
	Role *string
}

// MergeUpdate applies a partial field set to the draft.
func (m *Machine) MergeUpdate(p Partial) {
	d := &m.draft

	if p.VisitorName != nil {
		d.VisitorName = *p.VisitorName
	}
	if p.PhoneNumber != nil {
		d.PhoneNumber = NormalizePhone(*p.PhoneNumber)
	}
	if p.Purpose != nil {
		d.Purpose = *p.Purpose
	}
	if p.OtherPurpose != nil {
		d.OtherPurpose = *p.OtherPurpose
	}
	if p.StaffEmail != nil {
		d.StaffEmail = *p.StaffEmail
	}
	if p.EndTime != nil {
		t := *p.EndTime
		d.EndTime = &t
	}
	if p.Address != nil {
		// replace the whole object, keeping keys the patch does not carry
		next := d.Address
		if p.Address.City != nil {
			next.City = *p.Address.City
		}
		if p.Address.State != nil {
			next.State = *p.Address.State
		}
		if p.Address.Country != nil {
			next.Country = *p.Address.Country
		}
		d.Address = next
	}
	for i, pp := range p.People {
		if i < 0 || i >= len(d.People) {
			continue
		}
		if pp.Name != nil {
			d.People[i].Name = *pp.Name
		}
		if pp.Role != nil {
			d.People[i].Role = *pp.Role
		}
	}
	if p.Picture != nil {
		d.Picture = *p.Picture
	}
	if p.Signature != nil {
		d.Signature = *p.Signature
	}

	m.syncFirstPerson()
}

// syncFirstPerson default-fills people[0].name from visitorName. One-way:
// once the entry holds anything it is never overwritten.
func (m *Machine) syncFirstPerson() {
	d := &m.draft
	if len(d.People) > 0 && d.VisitorName != "" && d.People[0].Name == "" {
		d.People[0].Name = d.VisitorName
	}
}

// IncrementPeople has no upper bound.
func (m *Machine) IncrementPeople() {
	m.resizePeople(m.draft.NumberOfPeople + 1)
}

// DecrementPeople is blocked at 1.
func (m *Machine) DecrementPeople() {
	if m.draft.NumberOfPeople <= 1 {
		return
	}
	m.resizePeople(m.draft.NumberOfPeople - 1)
}

// resizePeople keeps len(people) == numberOfPeople: existing entries are
// retained, new slots start empty except slot 0 which default-fills from
// visitorName.
func (m *Machine) resizePeople(n int) {
	if n < 1 {
		n = 1
	}
	d := &m.draft
	d.NumberOfPeople = n
	for len(d.People) < n {
		d.People = append(d.People, Person{})
	}
	d.People = d.People[:n]
	m.syncFirstPerson()
}

// Reset returns to step 1 with a fresh draft (after successful submission).
func (m *Machine) Reset() {
	m.step = firstStep
	m.draft = NewDraft()
}
