package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"visitorku_backend/internals/features/visits/reconcile"
)

// fakeStore stands in for the GORM-backed registration store. Events queued
// in publishOnLoad fire during LoadAll, mimicking a kiosk submission landing
// while the dashboard's initial query runs.
type fakeStore struct {
	mu            sync.Mutex
	records       []reconcile.Record
	feed          reconcile.Feed
	publishOnLoad []reconcile.Event
}

func (f *fakeStore) LoadAll(_ context.Context) ([]reconcile.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ev := range f.publishOnLoad {
		f.feed.Publish(ev)
	}
	f.publishOnLoad = nil
	return append([]reconcile.Record(nil), f.records...), nil
}

func (f *fakeStore) SaveEndTime(_ context.Context, _ uuid.UUID, _ string) error { return nil }

func (f *fakeStore) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (f *fakeStore) setRecords(records []reconcile.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = records
}

type DashboardHubSuite struct {
	suite.Suite
	feed  *reconcile.Bus
	store *fakeStore
	hub   *DashboardHub
}

func TestDashboardHubSuite(t *testing.T) {
	suite.Run(t, new(DashboardHubSuite))
}

func (s *DashboardHubSuite) SetupTest() {
	s.feed = reconcile.NewBus()
	s.store = &fakeStore{feed: s.feed}
	s.hub = NewDashboardHub(s.store, s.feed)
}

func hubRecord(name string, createdAt time.Time) reconcile.Record {
	return reconcile.Record{
		ID:          uuid.New(),
		VisitorName: name,
		CreatedAt:   createdAt,
	}
}

func (s *DashboardHubSuite) visibleNames() []string {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	recs := s.hub.cache.Visible()
	names := make([]string, 0, len(recs))
	for _, r := range recs {
		names = append(names, r.VisitorName)
	}
	return names
}

func (s *DashboardHubSuite) TestRefreshReplacesWholesale() {
	t0 := time.Now()
	s.store.setRecords([]reconcile.Record{hubRecord("Asha", t0)})
	s.Require().NoError(s.hub.ensureLoaded(context.Background()))
	s.Equal([]string{"Asha"}, s.visibleNames())

	// rows changed behind the feed's back (e.g. dropped events)
	s.store.setRecords([]reconcile.Record{
		hubRecord("Meera", t0.Add(time.Minute)),
		hubRecord("Asha", t0),
	})
	s.Require().NoError(s.hub.Refresh(context.Background()))
	s.Equal([]string{"Meera", "Asha"}, s.visibleNames())
}

func (s *DashboardHubSuite) TestRefreshKeepsSearchTerm() {
	t0 := time.Now()
	s.store.setRecords([]reconcile.Record{
		hubRecord("Asha Rao", t0),
		hubRecord("Meera Pillai", t0.Add(time.Minute)),
	})
	s.Require().NoError(s.hub.ensureLoaded(context.Background()))

	s.hub.mu.Lock()
	s.hub.cache.SetSearch("asha")
	s.hub.mu.Unlock()

	s.Require().NoError(s.hub.Refresh(context.Background()))
	s.Equal([]string{"Asha Rao"}, s.visibleNames())
}

func (s *DashboardHubSuite) TestEventDuringInitialLoadIsNotLost() {
	t0 := time.Now()
	existing := hubRecord("Asha", t0)
	s.store.setRecords([]reconcile.Record{existing})

	// lands mid-query: the subscription must already be open to catch it
	late := hubRecord("Meera", t0.Add(time.Minute))
	s.store.publishOnLoad = []reconcile.Event{
		{Type: reconcile.EventInsert, ID: late.ID, New: &late},
	}

	s.Require().NoError(s.hub.ensureLoaded(context.Background()))
	s.Eventually(func() bool {
		names := s.visibleNames()
		return len(names) == 2 && names[0] == "Meera"
	}, time.Second, 10*time.Millisecond)
}

func (s *DashboardHubSuite) TestEventSeenByLoadAndFeedIsNotDuplicated() {
	t0 := time.Now()
	rec := hubRecord("Asha", t0)
	s.store.setRecords([]reconcile.Record{rec})
	// the same row arrives via the load and the buffered feed event
	s.store.publishOnLoad = []reconcile.Event{
		{Type: reconcile.EventInsert, ID: rec.ID, New: &rec},
	}

	s.Require().NoError(s.hub.ensureLoaded(context.Background()))
	time.Sleep(50 * time.Millisecond) // let the drain goroutine run
	s.Equal([]string{"Asha"}, s.visibleNames())
}
