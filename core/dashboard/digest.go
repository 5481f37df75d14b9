package dashboard

import (
	"net/mail"

	"github.com/Frictionalfor/codeFORGE-sub002/core"
	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
)

const digestTemplate = "digest"

// DigestData feeds the "digest" email templates.
type DigestData struct {
	StudentName string
	Summary     classroom.Summary
	Overdue     []classroom.EnrichedAssignment
	Upcoming    []classroom.EnrichedAssignment
}

// NewDigest builds the overdue/upcoming reminder mail for r. ok is false when there is nothing to remind of.
func NewDigest(r classroom.Result, studentName string, to ...mail.Address) (msg *core.EmailMessage, ok bool) {
	data := DigestData{
		StudentName: studentName,
		Summary:     r.Summary(),
		Overdue:     r.View(classroom.ViewOverdue),
		Upcoming:    r.View(classroom.ViewUpcoming),
	}
	if data.StudentName == "" {
		data.StudentName = "there"
	}
	if len(data.Overdue) == 0 && len(data.Upcoming) == 0 {
		return nil, false
	}
	return &core.EmailMessage{
		To:           to,
		Subject:      "Your assignment deadlines",
		TemplateName: digestTemplate,
		TemplateData: data,
	}, true
}
