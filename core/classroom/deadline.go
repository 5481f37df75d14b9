package classroom

import (
	"fmt"
	"time"
)

// NowFunc is the clock used by loads.
var NowFunc = time.Now // mockable

const day = 24 * time.Hour

// Deadline holds the deadline-derived fields of an assignment at a given instant.
type Deadline struct {
	IsOverdue    bool
	DaysUntilDue int
	DaysLate     int
}

// SignedDays is the day difference between due and now, rounded away from zero:
// positive when due is ahead (1ms ahead is 1 day), negative when it passed, 0 only when due == now.
func SignedDays(due, now time.Time) int {
	d := due.Sub(now)
	switch {
	case d > 0:
		return ceilDays(d)
	case d < 0:
		return -ceilDays(-d)
	default:
		return 0
	}
}

func ceilDays(d time.Duration) int {
	n := int(d / day)
	if d%day != 0 {
		n++
	}
	return n
}

// DeadlineAt computes the Deadline of a (possibly nil) due date at now.
// Without a due date every field keeps its zero value.
func DeadlineAt(due *time.Time, now time.Time) Deadline {
	if due == nil {
		return Deadline{}
	}
	diff := SignedDays(*due, now)
	dl := Deadline{IsOverdue: due.Before(now)}
	if diff > 0 {
		dl.DaysUntilDue = diff
	} else {
		dl.DaysLate = -diff
	}
	return dl
}

// enrich builds the EnrichedAssignment of a published assignment of class at now.
// Submission fields are filled in later, once statuses are fetched.
func enrich(class EnrolledClass, a Assignment, now time.Time) EnrichedAssignment {
	dl := DeadlineAt(a.DueDate, now)
	return EnrichedAssignment{
		Assignment:   a,
		ClassID:      class.ID,
		ClassName:    class.Name,
		IsOverdue:    dl.IsOverdue,
		DaysUntilDue: dl.DaysUntilDue,
		DaysLate:     dl.DaysLate,
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// DueLabel is the deadline caption shown on assignment cards, eg. "Due in 3 days".
func (e EnrichedAssignment) DueLabel() string {
	switch {
	case !e.HasDueDate():
		return "No due date"
	case e.IsOverdue:
		return "Overdue by " + plural(e.DaysLate, "day")
	case e.DaysUntilDue > 0:
		return "Due in " + plural(e.DaysUntilDue, "day")
	default:
		return "Due now"
	}
}

// StatusLabel is the submission badge shown on assignment cards.
func (e EnrichedAssignment) StatusLabel() string {
	switch {
	case e.HasSubmission:
		return "Submitted"
	case e.IsOverdue:
		return "Overdue"
	case e.HasDueDate():
		return "Pending"
	default:
		return "Open"
	}
}
