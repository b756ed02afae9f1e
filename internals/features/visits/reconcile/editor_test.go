package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"visitorku_backend/internals/helpers/civiltime"
)

type fakeSaver struct {
	saved     map[uuid.UUID]string
	err       error
	onSave    func() // runs inside SaveEndTime, for re-entrancy tests
	saveCalls int
}

func (f *fakeSaver) SaveEndTime(_ context.Context, id uuid.UUID, stored string) error {
	f.saveCalls++
	if f.onSave != nil {
		f.onSave()
	}
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = map[uuid.UUID]string{}
	}
	f.saved[id] = stored
	return nil
}

type EditorSuite struct {
	suite.Suite
	cache  *Reconciler
	saver  *fakeSaver
	editor *Editor
	now    time.Time
	row    Record
}

func TestEditorSuite(t *testing.T) {
	suite.Run(t, new(EditorSuite))
}

func (s *EditorSuite) SetupTest() {
	s.cache = NewReconciler()
	s.saver = &fakeSaver{}
	s.now = time.Date(2025, 3, 14, 15, 0, 0, 0, civiltime.IST)
	s.editor = NewEditor(s.cache, s.saver, func() time.Time { return s.now })

	s.row = Record{
		ID:          uuid.New(),
		VisitorName: "Asha",
		StartTime:   "2025-03-14T04:30:00",
		CreatedAt:   time.Date(2025, 3, 14, 4, 30, 0, 0, time.UTC),
	}
	s.cache.Load([]Record{s.row})
}

func (s *EditorSuite) TestStartEditSeedsFromNowWhenActive() {
	s.editor.StartEdit(s.row)
	id, draft, editing := s.editor.Editing()
	s.True(editing)
	s.Equal(s.row.ID, id)
	s.Equal("2025-03-14T15:00", draft)
}

func (s *EditorSuite) TestStartEditSeedsFromStoredEndTime() {
	end := "2025-03-14T06:00:00" // stored; IST wall clock 11:30
	s.row.EndTime = &end
	s.editor.StartEdit(s.row)
	_, draft, _ := s.editor.Editing()
	s.Equal("2025-03-14T11:30", draft)
}

func (s *EditorSuite) TestStartEditTransfersFocusSilently() {
	other := Record{ID: uuid.New(), CreatedAt: s.row.CreatedAt.Add(time.Hour)}
	s.editor.StartEdit(s.row)
	s.editor.SetDraft("2025-03-14T16:00")
	s.editor.StartEdit(other)

	id, draft, _ := s.editor.Editing()
	s.Equal(other.ID, id)
	s.NotEqual("2025-03-14T16:00", draft) // prior draft discarded
}

func (s *EditorSuite) TestCancelDiscardsWithoutWriting() {
	s.editor.StartEdit(s.row)
	s.editor.CancelEdit()

	_, _, editing := s.editor.Editing()
	s.False(editing)
	s.Zero(s.saver.saveCalls)
}

func (s *EditorSuite) TestSaveEmptyDraftBlocksAndStaysEditing() {
	s.editor.StartEdit(s.row)
	s.editor.SetDraft("")

	err := s.editor.SaveEdit(context.Background())
	s.ErrorIs(err, ErrEmptyEndTime)
	s.Zero(s.saver.saveCalls)

	_, _, editing := s.editor.Editing()
	s.True(editing)
}

func (s *EditorSuite) TestSaveWritesStoredFormAndReconcilesCache() {
	s.editor.StartEdit(s.row)
	s.editor.SetDraft("2025-03-14T16:30")

	s.Require().NoError(s.editor.SaveEdit(context.Background()))

	// -5:30 shift applied exactly once
	s.Equal("2025-03-14T11:00:00", s.saver.saved[s.row.ID])

	got := s.cache.Visible()[0]
	s.Require().NotNil(got.EndTime)
	s.Equal("2025-03-14T11:00:00", *got.EndTime)
	s.Equal("completed", got.Status())

	_, _, editing := s.editor.Editing()
	s.False(editing)
}

func (s *EditorSuite) TestSaveFailureKeepsEditingState() {
	s.saver.err = errors.New("connection reset")
	s.editor.StartEdit(s.row)
	s.editor.SetDraft("2025-03-14T16:30")

	err := s.editor.SaveEdit(context.Background())
	s.Error(err)

	id, draft, editing := s.editor.Editing()
	s.True(editing)
	s.Equal(s.row.ID, id)
	s.Equal("2025-03-14T16:30", draft)
	s.Nil(s.cache.Visible()[0].EndTime) // cache untouched
}

func (s *EditorSuite) TestSaveNotFoundKeepsEditingState() {
	s.saver.err = ErrNotFound
	s.editor.StartEdit(s.row)
	s.editor.SetDraft("2025-03-14T16:30")

	s.ErrorIs(s.editor.SaveEdit(context.Background()), ErrNotFound)
	_, _, editing := s.editor.Editing()
	s.True(editing)
}

func (s *EditorSuite) TestReentrantSaveIsIgnored() {
	s.editor.StartEdit(s.row)
	s.editor.SetDraft("2025-03-14T16:30")

	var inner error
	s.saver.onSave = func() {
		inner = s.editor.SaveEdit(context.Background())
	}

	s.Require().NoError(s.editor.SaveEdit(context.Background()))
	s.ErrorIs(inner, ErrSaveInFlight)
	s.Equal(1, s.saver.saveCalls)
}

func (s *EditorSuite) TestSaveWithoutStartIsRejected() {
	s.ErrorIs(s.editor.SaveEdit(context.Background()), ErrNotEditing)
}
