package grading

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/neuropeak/backend/core"
	"github.com/neuropeak/backend/core/access"
	"github.com/neuropeak/backend/core/course"
	"github.com/neuropeak/backend/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("attempt not found")
	ErrEmptySubmission = errors.New("submission contains no answers")
	ErrUnknownQuestion = errors.New("submission references a question not in this quiz")
)

type (
	Repository interface {
		// CreateAttempt persists the attempt and all its answers as one
		// atomic unit: on error nothing is kept.
		CreateAttempt(ctx context.Context, attempt QuizAttempt, answers []QuizAnswer) (QuizAttempt, error)
		QueryAttemptsByQuizID(ctx context.Context, quizID string) ([]QuizAttempt, error)
		QueryAttemptsByStudentID(ctx context.Context, studentID string) ([]QuizAttempt, error)
		GetAttemptByID(ctx context.Context, id string) (QuizAttempt, error)
		// QueryAnswersByAttemptID returns the attempt's answers in the order
		// they were graded.
		QueryAnswersByAttemptID(ctx context.Context, attemptID string) ([]QuizAnswer, error)
	}

	Service struct {
		repo      Repository
		courseSvc *course.Service
	}
)

func NewService(repo Repository, courseSvc *course.Service) *Service {
	return &Service{repo: repo, courseSvc: courseSvc}
}

// normalize prepares an answer for comparison: surrounding whitespace is
// insignificant, as is case.
func normalize(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// Submit grades a student's answers against the quiz's stored correct answers
// and persists the attempt with its per-question results as one transaction.
//
// Every submitted question id is resolved before anything is written, so a bad
// submission leaves no trace. The score is computed over the answers actually
// submitted: a submission covering a subset of the quiz is scored over that
// subset. The report and the stored answers follow the quiz's question order.
func (svc *Service) Submit(ctx context.Context, actor user.User, quizID string, answers map[string]string) (AttemptResult, error) {
	if len(answers) == 0 {
		return AttemptResult{}, core.NewValidationError(ErrEmptySubmission,
			core.FieldError{Field: "answers", Error: ErrEmptySubmission.Error()})
	}

	quiz, err := svc.courseSvc.GetQuiz(ctx, quizID)
	if err != nil {
		return AttemptResult{}, err
	}
	if err = access.Check(actor, access.ActionSubmit, access.Resource{Kind: access.KindQuiz}); err != nil {
		return AttemptResult{}, err
	}

	// all-or-nothing: resolve every submitted id against the quiz before any write
	questions := make(map[string]course.QuizQuestion, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions[q.ID] = q
	}
	for qid := range answers {
		if _, ok := questions[qid]; !ok {
			return AttemptResult{}, errors.Wrapf(ErrUnknownQuestion, "question %q", qid)
		}
	}

	attempt := QuizAttempt{
		QuizID:      quiz.ID,
		StudentID:   actor.ID,
		AttemptedAt: time.Now().UTC(),
	}

	var (
		graded       []QuizAnswer
		wrongAnswers []WrongAnswer
		correctCount int
	)
	for _, q := range quiz.Questions {
		submitted, ok := answers[q.ID]
		if !ok {
			continue
		}
		isCorrect := normalize(submitted) == normalize(q.CorrectAnswer)
		graded = append(graded, QuizAnswer{
			QuestionID:    q.ID,
			StudentAnswer: submitted,
			IsCorrect:     isCorrect,
		})
		if isCorrect {
			correctCount++
		} else {
			wrongAnswers = append(wrongAnswers, WrongAnswer{
				Question:      q.Text,
				YourAnswer:    submitted,
				CorrectAnswer: q.CorrectAnswer,
			})
		}
	}

	// scored over the answers submitted, not the quiz's question count
	attempt.Score = float64(correctCount) / float64(len(answers))

	attempt, err = svc.repo.CreateAttempt(ctx, attempt, graded)
	if err != nil {
		return AttemptResult{}, errors.Wrap(err, "persisting attempt")
	}

	if wrongAnswers == nil {
		wrongAnswers = []WrongAnswer{}
	}
	return AttemptResult{
		AttemptID:    attempt.ID,
		Score:        attempt.Score,
		WrongAnswers: wrongAnswers,
	}, nil
}

// QueryAttempts lists a quiz's attempts in submission order.
func (svc *Service) QueryAttempts(ctx context.Context, quizID string) ([]QuizAttempt, error) {
	return svc.repo.QueryAttemptsByQuizID(ctx, quizID)
}

// QueryStudentAttempts lists a student's attempts across all quizzes.
func (svc *Service) QueryStudentAttempts(ctx context.Context, studentID string) ([]QuizAttempt, error) {
	return svc.repo.QueryAttemptsByStudentID(ctx, studentID)
}

// GetAttempt returns an attempt with its graded answers.
func (svc *Service) GetAttempt(ctx context.Context, id string) (QuizAttempt, []QuizAnswer, error) {
	attempt, err := svc.repo.GetAttemptByID(ctx, id)
	if err != nil {
		return QuizAttempt{}, nil, err
	}
	grdAnswers, err := svc.repo.QueryAnswersByAttemptID(ctx, id)
	if err != nil {
		return QuizAttempt{}, nil, err
	}
	return attempt, grdAnswers, nil
}
