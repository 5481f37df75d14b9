package dashboard

import (
	"time"

	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
)

// Day groups the assignments due on one calendar day.
type Day struct {
	Date        string                         `json:"date"` // 2006-01-02 in the schedule's location
	Weekday     string                         `json:"weekday"`
	Assignments []classroom.EnrichedAssignment `json:"assignments"`
}

// NewSchedule groups the assignments of r that have a due date by the local date of that due date.
// Days are in chronological order. A nil loc means time.Local.
func NewSchedule(r classroom.Result, loc *time.Location) []Day {
	if loc == nil {
		loc = time.Local
	}
	days := make([]Day, 0)
	index := make(map[string]int)
	for _, e := range r.All() {
		if !e.HasDueDate() {
			continue
		}
		due := e.DueDate.In(loc)
		date := due.Format("2006-01-02")
		i, ok := index[date]
		if !ok {
			i = len(days)
			index[date] = i
			days = append(days, Day{Date: date, Weekday: due.Weekday().String()})
		}
		days[i].Assignments = append(days[i].Assignments, e)
	}
	return days
}
