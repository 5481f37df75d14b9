package dashboard

import (
	"sort"

	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
)

// RecentActivityLimit caps Stats.RecentActivity.
const RecentActivityLimit = 5

type Stats struct {
	EnrolledClasses int     `json:"enrolledClasses"`
	Total           int     `json:"total"`
	Completed       int     `json:"completed"`
	Upcoming        int     `json:"upcoming"`
	Overdue         int     `json:"overdue"`
	CompletionRate  float64 `json:"completionRate"` // percent of assignments submitted

	NextDue        *classroom.EnrichedAssignment  `json:"nextDue,omitempty"`
	RecentActivity []classroom.EnrichedAssignment `json:"recentActivity"`
}

func NewStats(r classroom.Result) Stats {
	sum := r.Summary()
	st := Stats{
		EnrolledClasses: len(r.Classes()),
		Total:           sum.All,
		Completed:       sum.Completed,
		Upcoming:        sum.Upcoming,
		Overdue:         sum.Overdue,
		RecentActivity:  recentActivity(r.View(classroom.ViewCompleted)),
	}
	if sum.All > 0 {
		st.CompletionRate = float64(sum.Completed) * 100 / float64(sum.All)
	}
	if upcoming := r.View(classroom.ViewUpcoming); len(upcoming) > 0 {
		next := upcoming[0]
		st.NextDue = &next
	}
	return st
}

// recentActivity keeps the latest submissions first; submissions without a time come last.
func recentActivity(completed []classroom.EnrichedAssignment) []classroom.EnrichedAssignment {
	sort.SliceStable(completed, func(i, j int) bool {
		ti, tj := completed[i].SubmittedAt, completed[j].SubmittedAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
	if len(completed) > RecentActivityLimit {
		completed = completed[:RecentActivityLimit]
	}
	return completed
}
