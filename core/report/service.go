// Package report derives per-course performance summaries from historical
// quiz attempts. Summaries are recomputed in full on every call; nothing is
// cached or incrementally maintained.
package report

import (
	"context"

	"github.com/pkg/errors"

	"github.com/neuropeak/backend/core/access"
	"github.com/neuropeak/backend/core/course"
	"github.com/neuropeak/backend/core/grading"
	"github.com/neuropeak/backend/core/user"
)

type (
	// PerformanceEntry is one (student, quiz, score) triple.
	PerformanceEntry struct {
		Student string  `json:"student"`
		Quiz    string  `json:"quiz"`
		Score   float64 `json:"score"`
	}

	// CoursePerformance summarizes every attempt made against a course's quizzes.
	CoursePerformance struct {
		Students    []string           `json:"students"`
		Performance []PerformanceEntry `json:"performance"`
	}

	Service struct {
		courseSvc  *course.Service
		gradingSvc *grading.Service
		userSvc    *user.Service
	}
)

func NewService(courseSvc *course.Service, gradingSvc *grading.Service, userSvc *user.Service) *Service {
	return &Service{
		courseSvc:  courseSvc,
		gradingSvc: gradingSvc,
		userSvc:    userSvc,
	}
}

// CoursePerformance scans all attempts for all of the course's quizzes. Only
// the owning lecturer or a superuser may view it. Entries follow quiz order
// then attempt order within each quiz; students are listed uniquely in
// first-seen order.
func (svc *Service) CoursePerformance(ctx context.Context, actor user.User, courseID string) (CoursePerformance, error) {
	crs, err := svc.courseSvc.GetCourse(ctx, courseID)
	if err != nil {
		return CoursePerformance{}, err
	}
	if err = access.Check(actor, access.ActionViewPerformance, access.Resource{Kind: access.KindCourse, OwnerID: crs.LecturerID}); err != nil {
		return CoursePerformance{}, err
	}

	quizzes, err := svc.courseSvc.QueryCourseQuizzes(ctx, crs.ID)
	if err != nil {
		return CoursePerformance{}, errors.Wrap(err, "querying quizzes")
	}

	perf := CoursePerformance{
		Students:    []string{},
		Performance: []PerformanceEntry{},
	}
	seen := make(map[string]bool)
	names := make(map[string]string)

	for _, quiz := range quizzes {
		attempts, err := svc.gradingSvc.QueryAttempts(ctx, quiz.ID)
		if err != nil {
			return CoursePerformance{}, errors.Wrap(err, "querying attempts")
		}
		for _, attempt := range attempts {
			name, ok := names[attempt.StudentID]
			if !ok {
				student, err := svc.userSvc.GetByID(ctx, attempt.StudentID)
				if err != nil {
					return CoursePerformance{}, errors.Wrap(err, "resolving student")
				}
				name = student.Name
				names[attempt.StudentID] = name
			}
			if !seen[attempt.StudentID] {
				seen[attempt.StudentID] = true
				perf.Students = append(perf.Students, name)
			}
			perf.Performance = append(perf.Performance, PerformanceEntry{
				Student: name,
				Quiz:    quiz.Title,
				Score:   attempt.Score,
			})
		}
	}
	return perf, nil
}
