package reconcile

import (
	"sort"
	"strings"
)

// Reconciler merges the authoritative full load with live feed events and
// derives the filtered, sorted view the dashboard shows. Events only ever
// touch the full set; the visible set is always re-derived.
type Reconciler struct {
	all     []Record
	search  string
	visible []Record
}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Load replaces the full set wholesale (initial load and manual refresh).
// The search term survives a refresh.
func (r *Reconciler) Load(records []Record) {
	r.all = append([]Record(nil), records...)
	r.derive()
}

// Apply folds one feed event into the full set.
func (r *Reconciler) Apply(ev Event) {
	switch ev.Type {
	case EventInsert:
		if ev.New == nil {
			return
		}
		// an insert already in the set (seen via load and feed both)
		// replaces the copy instead of duplicating it
		for i := range r.all {
			if r.all[i].ID == ev.New.ID {
				r.all[i] = *ev.New
				r.derive()
				return
			}
		}
		// prepend; derive re-sorts since feed order is not monotonic
		r.all = append([]Record{*ev.New}, r.all...)

	case EventUpdate:
		if ev.Patch == nil {
			return
		}
		for i := range r.all {
			if r.all[i].ID == ev.ID {
				applyPatch(&r.all[i], *ev.Patch)
				break
			}
		}

	case EventDelete:
		for i := range r.all {
			if r.all[i].ID == ev.ID {
				r.all = append(r.all[:i], r.all[i+1:]...)
				break
			}
		}
	}
	r.derive()
}

func applyPatch(rec *Record, p Patch) {
	if p.VisitorName != nil {
		rec.VisitorName = *p.VisitorName
	}
	if p.PhoneNumber != nil {
		rec.PhoneNumber = *p.PhoneNumber
	}
	if p.Purpose != nil {
		rec.Purpose = *p.Purpose
	}
	if p.SchoolName != nil {
		rec.SchoolName = *p.SchoolName
	}
	if p.ClearEndTime {
		rec.EndTime = nil
	} else if p.EndTime != nil {
		v := *p.EndTime
		rec.EndTime = &v
	}
	if p.PictureURL != nil {
		rec.PictureURL = p.PictureURL
	}
	if p.SignatureURL != nil {
		rec.SignatureURL = p.SignatureURL
	}
}

// SetSearch updates the filter term and re-derives.
func (r *Reconciler) SetSearch(term string) {
	r.search = term
	r.derive()
}

// Visible returns a copy of the derived view.
func (r *Reconciler) Visible() []Record {
	return append([]Record(nil), r.visible...)
}

// All returns a copy of the full, sorted set.
func (r *Reconciler) All() []Record {
	out := append([]Record(nil), r.all...)
	sortByCreatedDesc(out)
	return out
}

func (r *Reconciler) Search() string { return r.search }

func (r *Reconciler) derive() {
	sortByCreatedDesc(r.all)

	term := strings.ToLower(strings.TrimSpace(r.search))
	if term == "" {
		r.visible = append([]Record(nil), r.all...)
		return
	}

	r.visible = r.visible[:0]
	for _, rec := range r.all {
		if matches(rec, term) {
			r.visible = append(r.visible, rec)
		}
	}
}

// matches is a case-insensitive substring test over visitor name, phone,
// purpose, address, and school name.
func matches(rec Record, term string) bool {
	fields := []string{
		rec.VisitorName,
		rec.PhoneNumber,
		rec.Purpose,
		rec.Address.City,
		rec.Address.State,
		rec.Address.Country,
		rec.SchoolName,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// sortByCreatedDesc sorts newest first; ties keep their relative order.
func sortByCreatedDesc(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
