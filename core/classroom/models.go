package classroom

import "time"

// EnrolledClass is a class the student has joined. It is a read-only snapshot of the platform's record.
type EnrolledClass struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	AssignmentCount int       `json:"assignmentCount"`
	CurrentStudents int       `json:"currentStudents"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (c EnrolledClass) IsZero() bool { return c.ID == "" }

type Assignment struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	ProblemDescription  string     `json:"problemDescription"`
	Language            string     `json:"language"`
	IsPublished         bool       `json:"isPublished"`
	DueDate             *time.Time `json:"dueDate,omitempty"`
	TimeLimitMs         *int       `json:"timeLimitMs,omitempty"`
	TotalPoints         *int       `json:"totalPoints,omitempty"`
	AllowLateSubmission bool       `json:"allowLateSubmission"`
	LatePenaltyPerDay   *float64   `json:"latePenaltyPerDay,omitempty"` // percent
}

func (a Assignment) IsZero() bool    { return a.ID == "" }
func (a Assignment) HasDueDate() bool { return a.DueDate != nil }

// SubmissionStatus is fetched per (assignment, class) pair, independently of the Assignment.
type SubmissionStatus struct {
	HasSubmission bool       `json:"hasSubmission"`
	SubmittedAt   *time.Time `json:"submittedAt,omitempty"`
}

// Submission is a student's recorded attempt, as returned to the code editor.
type Submission struct {
	ID           string     `json:"id"`
	AssignmentID string     `json:"assignmentId"`
	ClassID      string     `json:"classId"`
	Code         string     `json:"code"`
	Status       string     `json:"status"`
	Score        *float64   `json:"score,omitempty"`
	SubmittedAt  *time.Time `json:"submittedAt,omitempty"`
}

// EnrichedAssignment is a published Assignment plus its class and display-only deadline & submission fields.
// It is derived on every load and never mutated afterwards.
type EnrichedAssignment struct {
	Assignment

	ClassID       string     `json:"classId"`
	ClassName     string     `json:"className"`
	HasSubmission bool       `json:"hasSubmission"`
	SubmittedAt   *time.Time `json:"submittedAt,omitempty"`
	IsOverdue     bool       `json:"isOverdue"`
	DaysUntilDue  int        `json:"daysUntilDue"`
	DaysLate      int        `json:"daysLate"`
}

// IsUpcoming reports whether e has a due date that has not passed and no submission yet.
func (e EnrichedAssignment) IsUpcoming() bool {
	return e.HasDueDate() && !e.IsOverdue && !e.HasSubmission
}

// IsPastDue reports whether e is overdue and still not submitted.
func (e EnrichedAssignment) IsPastDue() bool {
	return e.IsOverdue && !e.HasSubmission
}

// AcceptsSubmission is false once the due date passed on an assignment that refuses late work.
func (e EnrichedAssignment) AcceptsSubmission() bool {
	return !e.IsOverdue || e.AllowLateSubmission
}

// LatePenalty returns the percentage deducted from a submission made now.
func (e EnrichedAssignment) LatePenalty() float64 {
	if !e.IsOverdue || !e.AllowLateSubmission || e.LatePenaltyPerDay == nil {
		return 0
	}
	penalty := float64(e.DaysLate) * *e.LatePenaltyPerDay
	if penalty > 100 {
		return 100
	}
	return penalty
}
