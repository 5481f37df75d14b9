// Package dashboard holds the view-state shell of the student dashboard and the figures it shows.
package dashboard

import (
	"github.com/pkg/errors"

	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
)

var (
	ErrInvalidEditor = errors.New("editor needs both a class and an assignment")
	ErrNoClass       = errors.New("no class selected")
	ErrNoView        = errors.New("no view")
)

// View is one screen of the dashboard. The set of views is closed.
type View interface {
	Name() string
	view()
}

type (
	Home     struct{}
	Classes  struct{}
	Schedule struct{}
	Settings struct{}

	// Assignments lists the published assignments of one class.
	Assignments struct {
		Class classroom.EnrolledClass
	}

	// Editor is the code editor of one assignment. Build it with NewEditor.
	Editor struct {
		class      classroom.EnrolledClass
		assignment classroom.EnrichedAssignment
	}
)

func NewEditor(class classroom.EnrolledClass, assignment classroom.EnrichedAssignment) (Editor, error) {
	if class.IsZero() || assignment.IsZero() {
		return Editor{}, ErrInvalidEditor
	}
	return Editor{class: class, assignment: assignment}, nil
}

func (e Editor) Class() classroom.EnrolledClass            { return e.class }
func (e Editor) Assignment() classroom.EnrichedAssignment { return e.assignment }

func (Home) Name() string        { return "home" }
func (Classes) Name() string     { return "classes" }
func (Assignments) Name() string { return "assignments" }
func (Editor) Name() string      { return "editor" }
func (Schedule) Name() string    { return "schedule" }
func (Settings) Name() string    { return "settings" }

func (Home) view()        {}
func (Classes) view()     {}
func (Assignments) view() {}
func (Editor) view()      {}
func (Schedule) view()    {}
func (Settings) view()    {}

// valid reports whether v carries the context it needs.
func valid(v View) bool {
	switch v := v.(type) {
	case Assignments:
		return !v.Class.IsZero()
	case Editor:
		return !v.class.IsZero() && !v.assignment.IsZero()
	case nil:
		return false
	default:
		return true
	}
}

// parent is where Back leads from v.
func parent(v View) View {
	switch v := v.(type) {
	case Editor:
		return Assignments{Class: v.class}
	case Assignments:
		return Classes{}
	default:
		return Home{}
	}
}
