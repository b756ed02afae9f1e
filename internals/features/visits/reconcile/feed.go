// Package reconcile holds the admin dashboard's core logic: the change feed,
// the list reconciler that merges the full load with live events, and the
// inline end-time edit controller. Everything here is transport-free so the
// merge rules can be tested without HTTP or a database.
package reconcile

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"visitorku_backend/internals/features/visits/wizard"
)

// Record is the admin view of one registration (the backend record shape).
type Record struct {
	ID             uuid.UUID       `json:"id"`
	VisitorName    string          `json:"visitor_name"`
	PhoneNumber    string          `json:"phone_number"`
	NumberOfPeople int             `json:"number_of_people"`
	People         []wizard.Person `json:"people"`
	Purpose        string          `json:"purpose"`
	Address        wizard.Address  `json:"address"`
	SchoolName     string          `json:"school_name"`
	StartTime      string          `json:"start_time"` // stored civil string
	EndTime        *string         `json:"end_time"`   // stored civil string, null while active
	PictureURL     *string         `json:"picture_url"`
	SignatureURL   *string         `json:"signature_url"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Status derives active/completed from end_time; there is no status column.
func (r Record) Status() string {
	if r.EndTime == nil {
		return "active"
	}
	return "completed"
}

type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Patch is the update event payload: nil fields retain their prior values.
type Patch struct {
	VisitorName  *string `json:"visitor_name,omitempty"`
	PhoneNumber  *string `json:"phone_number,omitempty"`
	Purpose      *string `json:"purpose,omitempty"`
	SchoolName   *string `json:"school_name,omitempty"`
	EndTime      *string `json:"end_time,omitempty"`
	ClearEndTime bool    `json:"clear_end_time,omitempty"` // reopen the visit
	PictureURL   *string `json:"picture_url,omitempty"`
	SignatureURL *string `json:"signature_url,omitempty"`
}

// Event is one change-feed entry keyed by record id.
type Event struct {
	Type  EventType `json:"type"`
	ID    uuid.UUID `json:"id"`
	New   *Record   `json:"new,omitempty"`   // insert
	Patch *Patch    `json:"patch,omitempty"` // update
	Old   *Record   `json:"old,omitempty"`   // delete
}

// Feed is the change-feed contract: the write path publishes, the dashboard
// (reconciler + SSE stream) subscribes.
type Feed interface {
	Publish(Event)
	Subscribe() (events <-chan Event, cancel func())
}

// Bus is the in-process Feed. Subscriber channels are buffered; a subscriber
// that falls behind loses its oldest events — this is a UI feed, not a
// durable log, and the dashboard can always do a manual refresh.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

const subscriberBuffer = 32

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		for {
			select {
			case ch <- ev:
			default:
				// full: drop the oldest and retry
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}
