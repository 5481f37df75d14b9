package classroom

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Frictionalfor/codeFORGE-sub002/core"
)

var ErrBlankCode = errors.New("code cannot be blank")

type (
	// Repository is the platform's data access layer.
	// Every error it returns is a *FetchError (possibly wrapped); callers decide whether to degrade or abort.
	Repository interface {
		ListEnrolledClasses(ctx context.Context) ([]EnrolledClass, error)
		ListClassAssignments(ctx context.Context, classID string) ([]Assignment, error)
		GetSubmissionStatus(ctx context.Context, assignmentID, classID string) (SubmissionStatus, error)
		// GetSubmission returns nil, nil when nothing was submitted yet.
		GetSubmission(ctx context.Context, classID, assignmentID string) (*Submission, error)
		SubmitAssignment(ctx context.Context, classID, assignmentID, code string) (Submission, error)
	}

	Options struct {
		// MaxConcurrentRequests bounds the submission status lookups in flight for one class.
		MaxConcurrentRequests int
		// ParallelClasses loads every class concurrently instead of one after the other.
		ParallelClasses bool
	}

	Service struct {
		repo   Repository
		logger core.Logger
		opts   Options
	}
)

func NewService(repo Repository, logger core.Logger, opts Options) *Service {
	if opts.MaxConcurrentRequests < 1 {
		opts.MaxConcurrentRequests = 1
	}
	return &Service{repo: repo, logger: logger, opts: opts}
}

// Load runs the aggregation pipeline once: classes, their published assignments, deadlines,
// submission statuses, then the due date ordering.
// Only a failure to list classes is returned; the Result is then empty and the error is meant for
// a single user-facing Notice. Failures for one class or one assignment are logged and degraded.
func (svc *Service) Load(ctx context.Context) (Result, error) {
	now := NowFunc()

	classes, err := svc.repo.ListEnrolledClasses(ctx)
	if err != nil {
		svc.logger.Warn("listing enrolled classes", err, map[string]interface{}{"kind": KindOf(err).String()})
		return newResult(nil, nil, now), errors.Wrap(err, "listing enrolled classes")
	}
	if len(classes) == 0 {
		return newResult(nil, nil, now), nil
	}

	perClass := make([][]EnrichedAssignment, len(classes))
	if svc.opts.ParallelClasses {
		var wg sync.WaitGroup
		for i, class := range classes {
			wg.Add(1)
			go func(i int, class EnrolledClass) {
				defer wg.Done()
				perClass[i] = svc.loadClass(ctx, class, now)
			}(i, class)
		}
		wg.Wait()
	} else {
		for i, class := range classes {
			perClass[i] = svc.loadClass(ctx, class, now)
		}
	}

	var total int
	for _, items := range perClass {
		total += len(items)
	}
	items := make([]EnrichedAssignment, 0, total)
	for _, classItems := range perClass {
		items = append(items, classItems...)
	}
	sortByDueDate(items)

	return newResult(classes, items, now), nil
}

// ListClasses returns the enrolled classes, for the classes view.
func (svc *Service) ListClasses(ctx context.Context) ([]EnrolledClass, error) {
	classes, err := svc.repo.ListEnrolledClasses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing enrolled classes")
	}
	return classes, nil
}

// ClassAssignments enriches the published assignments of a single class, sorted by due date.
func (svc *Service) ClassAssignments(ctx context.Context, class EnrolledClass) []EnrichedAssignment {
	items := svc.loadClass(ctx, class, NowFunc())
	sortByDueDate(items)
	return items
}

// Submission returns the student's submission for the editor, nil when there is none yet.
func (svc *Service) Submission(ctx context.Context, classID, assignmentID string) (*Submission, error) {
	sub, err := svc.repo.GetSubmission(ctx, classID, assignmentID)
	if err != nil {
		return nil, errors.Wrap(err, "getting submission")
	}
	return sub, nil
}

// Submit hands the editor's code over to the platform.
func (svc *Service) Submit(ctx context.Context, classID, assignmentID, code string) (Submission, error) {
	if core.CleanString(code) == "" {
		return Submission{}, core.NewValidationError(ErrBlankCode, core.FieldError{Field: "code", Error: ErrBlankCode.Error()})
	}
	sub, err := svc.repo.SubmitAssignment(ctx, classID, assignmentID, code)
	if err != nil {
		return Submission{}, errors.Wrap(err, "submitting assignment")
	}
	return sub, nil
}

func (svc *Service) loadClass(ctx context.Context, class EnrolledClass, now time.Time) []EnrichedAssignment {
	assignments, err := svc.repo.ListClassAssignments(ctx, class.ID)
	if err != nil {
		svc.logger.Warn("listing class assignments", err, map[string]interface{}{
			"classId": class.ID,
			"kind":    KindOf(err).String(),
		})
		return nil
	}

	items := make([]EnrichedAssignment, 0, len(assignments))
	for _, a := range assignments {
		if a.IsPublished {
			items = append(items, enrich(class, a, now))
		}
	}

	statuses := svc.fetchStatuses(ctx, class.ID, items)
	for i, st := range statuses {
		items[i].HasSubmission = st.HasSubmission
		items[i].SubmittedAt = st.SubmittedAt
	}
	return items
}

// fetchStatuses looks up every submission status concurrently and joins on all of them.
// statuses[i] always belongs to items[i], whatever the completion order.
func (svc *Service) fetchStatuses(ctx context.Context, classID string, items []EnrichedAssignment) []SubmissionStatus {
	statuses := make([]SubmissionStatus, len(items))
	sem := make(chan struct{}, svc.opts.MaxConcurrentRequests)
	var wg sync.WaitGroup

	for i := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, assignmentID string) {
			defer func() {
				<-sem
				wg.Done()
			}()
			st, err := svc.repo.GetSubmissionStatus(ctx, assignmentID, classID)
			if err != nil {
				if !IsNotFound(err) {
					svc.logger.Warn("getting submission status", err, map[string]interface{}{
						"classId":      classID,
						"assignmentId": assignmentID,
						"kind":         KindOf(err).String(),
					})
				}
				return // no submission
			}
			statuses[i] = st
		}(i, items[i].ID)
	}
	wg.Wait()
	return statuses
}

// sortByDueDate orders items by ascending due date; assignments without one go last, in insertion order.
func sortByDueDate(items []EnrichedAssignment) {
	sort.SliceStable(items, func(i, j int) bool {
		di, dj := items[i].DueDate, items[j].DueDate
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.Before(*dj)
		}
	})
}
