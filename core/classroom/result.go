package classroom

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// View is one of the filtered projections of a Result.
type View string

const (
	ViewAll       View = "all"
	ViewUpcoming  View = "upcoming"
	ViewOverdue   View = "overdue"
	ViewCompleted View = "completed"
)

var (
	Views = []View{ViewAll, ViewUpcoming, ViewOverdue, ViewCompleted}

	ErrUnknownView = errors.New("unknown view")
)

// ParseView accepts the view names case-sensitively; "" means ViewAll.
func ParseView(s string) (View, error) {
	if s == "" {
		return ViewAll, nil
	}
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownView, "%q", s)
}

// Includes reports whether e belongs to the view.
// upcoming, overdue and completed are mutually exclusive; a late but submitted assignment is completed.
func (v View) Includes(e EnrichedAssignment) bool {
	switch v {
	case ViewAll:
		return true
	case ViewUpcoming:
		return e.IsUpcoming()
	case ViewOverdue:
		return e.IsPastDue()
	case ViewCompleted:
		return e.HasSubmission
	default:
		return false
	}
}

// Summary holds the cardinality of every view.
type Summary struct {
	All       int `json:"all"`
	Upcoming  int `json:"upcoming"`
	Overdue   int `json:"overdue"`
	Completed int `json:"completed"`
}

// Result is the immutable outcome of one Load. Accessors hand out copies.
type Result struct {
	classes  []EnrolledClass
	items    []EnrichedAssignment
	loadedAt time.Time
}

func newResult(classes []EnrolledClass, items []EnrichedAssignment, loadedAt time.Time) Result {
	if items == nil {
		items = []EnrichedAssignment{}
	}
	if classes == nil {
		classes = []EnrolledClass{}
	}
	return Result{classes: classes, items: items, loadedAt: loadedAt}
}

// NewResult builds a Result from already enriched items, sorting them like Load does.
func NewResult(classes []EnrolledClass, items []EnrichedAssignment, loadedAt time.Time) Result {
	sorted := append([]EnrichedAssignment(nil), items...)
	sortByDueDate(sorted)
	return newResult(append([]EnrolledClass(nil), classes...), sorted, loadedAt)
}

func (r Result) LoadedAt() time.Time { return r.loadedAt }
func (r Result) Len() int            { return len(r.items) }
func (r Result) IsEmpty() bool       { return len(r.items) == 0 }

func (r Result) Classes() []EnrolledClass {
	return append([]EnrolledClass{}, r.classes...)
}

// All is the whole ordered sequence.
func (r Result) All() []EnrichedAssignment { return r.View(ViewAll) }

// View returns the items of v, in the Result's order.
func (r Result) View(v View) []EnrichedAssignment {
	out := make([]EnrichedAssignment, 0, len(r.items))
	for _, e := range r.items {
		if v.Includes(e) {
			out = append(out, e)
		}
	}
	return out
}

// Summary counts every view from the current items.
func (r Result) Summary() Summary {
	s := Summary{All: len(r.items)}
	for _, e := range r.items {
		switch {
		case ViewCompleted.Includes(e):
			s.Completed++
		case ViewOverdue.Includes(e):
			s.Overdue++
		case ViewUpcoming.Includes(e):
			s.Upcoming++
		}
	}
	return s
}

// ForClass narrows the Result down to a single class.
func (r Result) ForClass(classID string) Result {
	var classes []EnrolledClass
	for _, c := range r.classes {
		if c.ID == classID {
			classes = append(classes, c)
		}
	}
	var items []EnrichedAssignment
	for _, e := range r.items {
		if e.ClassID == classID {
			items = append(items, e)
		}
	}
	return newResult(classes, items, r.loadedAt)
}

// Find looks an assignment up by class and id.
func (r Result) Find(classID, assignmentID string) (EnrichedAssignment, bool) {
	for _, e := range r.items {
		if e.ClassID == classID && e.ID == assignmentID {
			return e, true
		}
	}
	return EnrichedAssignment{}, false
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		LoadedAt    time.Time            `json:"loadedAt"`
		Classes     []EnrolledClass      `json:"classes"`
		Assignments []EnrichedAssignment `json:"assignments"`
		Summary     Summary              `json:"summary"`
	}{r.loadedAt, r.classes, r.items, r.Summary()})
}
