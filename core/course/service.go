package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/neuropeak/backend/core"
	"github.com/neuropeak/backend/core/access"
	"github.com/neuropeak/backend/core/user"
)

var (
	// errors
	ErrNotFound           = errors.New("course not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrDuplicateCode      = errors.New("a course with this code already exists")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string, excludedCourses ...Course) error

		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		// DeleteCoursesByID cascades to assignments, quizzes, questions and attempts.
		DeleteCoursesByID(ctx context.Context, ids ...string) error

		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		QueryAllAssignments(ctx context.Context) ([]Assignment, error)
		QueryAssignmentsByCourseID(ctx context.Context, courseID string) ([]Assignment, error)
		GetAssignmentByID(ctx context.Context, id string) (Assignment, error)
		UpdateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		DeleteAssignmentsByID(ctx context.Context, ids ...string) error

		// CreateQuiz persists the quiz and its questions as one atomic unit.
		CreateQuiz(ctx context.Context, quiz Quiz) (Quiz, error)
		QueryAllQuizzes(ctx context.Context) ([]Quiz, error)
		QueryQuizzesByCourseID(ctx context.Context, courseID string) ([]Quiz, error)
		// GetQuizByID returns the quiz with its questions in position order.
		GetQuizByID(ctx context.Context, id string) (Quiz, error)
		UpdateQuiz(ctx context.Context, quiz Quiz) (Quiz, error)
		// DeleteQuizzesByID cascades to questions and attempts.
		DeleteQuizzesByID(ctx context.Context, ids ...string) error

		CreateQuizQuestion(ctx context.Context, q QuizQuestion) (QuizQuestion, error)
		DeleteQuestionsByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkCodeUniqueness(ctx context.Context, code string, exclCourses ...Course) error {
	if err := svc.repo.CheckCodeUniqueness(ctx, code, exclCourses...); err != nil {
		if errors.Cause(err) == ErrDuplicateCode {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

// ownedCourse loads the course and checks that actor may perform action on a
// resource owned by its lecturer.
func (svc *Service) ownedCourse(ctx context.Context, actor user.User, action access.Action, kind access.Kind, courseID string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Course{}, err
	}
	if err = access.Check(actor, action, access.Resource{Kind: kind, OwnerID: crs.LecturerID}); err != nil {
		return Course{}, err
	}
	return crs, nil
}

// Courses

// CreateCourse creates a course owned by actor (or, for a superuser, by the
// lecturer the superuser acts as).
func (svc *Service) CreateCourse(ctx context.Context, actor user.User, nc NewCourse) (Course, error) {
	if err := access.Check(actor, access.ActionCreate, access.Resource{Kind: access.KindCourse}); err != nil {
		return Course{}, err
	}

	now := time.Now().UTC()
	crs := Course{
		Code:        nc.Code,
		Name:        nc.Name,
		Description: nc.Description,
		LecturerID:  actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) QueryAllCourses(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) GetCourse(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) UpdateCourse(ctx context.Context, actor user.User, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.ownedCourse(ctx, actor, access.ActionUpdate, access.KindCourse, id)
	if err != nil {
		return Course{}, err
	}

	crs.Code = uc.Code
	crs.Name = uc.Name
	if uc.Description != "" {
		crs.Description = core.CleanString(uc.Description)
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *Service) DeleteCourse(ctx context.Context, actor user.User, id string) error {
	if _, err := svc.ownedCourse(ctx, actor, access.ActionDelete, access.KindCourse, id); err != nil {
		return err
	}
	return svc.repo.DeleteCoursesByID(ctx, id)
}

// Assignments

func (svc *Service) CreateAssignment(ctx context.Context, actor user.User, na NewAssignment) (Assignment, error) {
	crs, err := svc.repo.GetCourseByID(ctx, na.CourseID)
	if err != nil {
		return Assignment{}, err
	}
	// creating under a course mutates that course's catalog: only its owner
	// (or a superuser) may do it
	if err = access.Check(actor, access.ActionUpdate, access.Resource{Kind: access.KindAssignment, OwnerID: crs.LecturerID}); err != nil {
		return Assignment{}, err
	}

	now := time.Now().UTC()
	asg := Assignment{
		CourseID:    crs.ID,
		Title:       na.Title,
		Description: na.Description,
		MarkingKey:  na.MarkingKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateAssignment(ctx, asg)
}

func (svc *Service) QueryAllAssignments(ctx context.Context) ([]Assignment, error) {
	return svc.repo.QueryAllAssignments(ctx)
}

// QueryCourseAssignments lists the course's assignments in creation order.
func (svc *Service) QueryCourseAssignments(ctx context.Context, courseID string) ([]Assignment, error) {
	return svc.repo.QueryAssignmentsByCourseID(ctx, courseID)
}

func (svc *Service) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *Service) UpdateAssignment(ctx context.Context, actor user.User, id string, ua UpdateAssignment) (Assignment, error) {
	asg, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if _, err = svc.ownedCourse(ctx, actor, access.ActionUpdate, access.KindAssignment, asg.CourseID); err != nil {
		return Assignment{}, err
	}

	if ua.Title != "" {
		asg.Title = ua.Title
	}
	if ua.Description != "" {
		asg.Description = ua.Description
	}
	if ua.MarkingKey != "" {
		asg.MarkingKey = ua.MarkingKey
	}
	asg.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAssignment(ctx, asg)
}

func (svc *Service) DeleteAssignment(ctx context.Context, actor user.User, id string) error {
	asg, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err = svc.ownedCourse(ctx, actor, access.ActionDelete, access.KindAssignment, asg.CourseID); err != nil {
		return err
	}
	return svc.repo.DeleteAssignmentsByID(ctx, id)
}

// Quizzes

// CreateQuiz creates a quiz with its questions; only the course's owning
// lecturer or a superuser may call it.
func (svc *Service) CreateQuiz(ctx context.Context, actor user.User, nq NewQuiz) (Quiz, error) {
	crs, err := svc.repo.GetCourseByID(ctx, nq.CourseID)
	if err != nil {
		return Quiz{}, err
	}
	if err = access.Check(actor, access.ActionUpdate, access.Resource{Kind: access.KindQuiz, OwnerID: crs.LecturerID}); err != nil {
		return Quiz{}, err
	}

	now := time.Now().UTC()
	quiz := Quiz{
		CourseID:    crs.ID,
		Title:       nq.Title,
		Description: nq.Description,
		MarkingKey:  nq.MarkingKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, q := range nq.Questions {
		quiz.Questions = append(quiz.Questions, QuizQuestion{
			Text:          q.Text,
			Type:          q.Type,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectAnswer: q.CorrectAnswer,
			Position:      i,
			CreatedAt:     now,
		})
	}
	return svc.repo.CreateQuiz(ctx, quiz)
}

func (svc *Service) QueryAllQuizzes(ctx context.Context) ([]Quiz, error) {
	return svc.repo.QueryAllQuizzes(ctx)
}

// QueryCourseQuizzes lists the course's quizzes in creation order.
func (svc *Service) QueryCourseQuizzes(ctx context.Context, courseID string) ([]Quiz, error) {
	return svc.repo.QueryQuizzesByCourseID(ctx, courseID)
}

func (svc *Service) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	return svc.repo.GetQuizByID(ctx, id)
}

func (svc *Service) UpdateQuiz(ctx context.Context, actor user.User, id string, uq UpdateQuiz) (Quiz, error) {
	quiz, err := svc.repo.GetQuizByID(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	if _, err = svc.ownedCourse(ctx, actor, access.ActionUpdate, access.KindQuiz, quiz.CourseID); err != nil {
		return Quiz{}, err
	}

	if uq.Title != "" {
		quiz.Title = uq.Title
	}
	if uq.Description != "" {
		quiz.Description = uq.Description
	}
	if uq.MarkingKey != "" {
		quiz.MarkingKey = uq.MarkingKey
	}
	quiz.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateQuiz(ctx, quiz)
}

func (svc *Service) DeleteQuiz(ctx context.Context, actor user.User, id string) error {
	quiz, err := svc.repo.GetQuizByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err = svc.ownedCourse(ctx, actor, access.ActionDelete, access.KindQuiz, quiz.CourseID); err != nil {
		return err
	}
	return svc.repo.DeleteQuizzesByID(ctx, id)
}

// Questions

// AddQuestion appends a question to the quiz.
func (svc *Service) AddQuestion(ctx context.Context, actor user.User, quizID string, nq NewQuizQuestion) (QuizQuestion, error) {
	quiz, err := svc.repo.GetQuizByID(ctx, quizID)
	if err != nil {
		return QuizQuestion{}, err
	}
	if _, err = svc.ownedCourse(ctx, actor, access.ActionUpdate, access.KindQuiz, quiz.CourseID); err != nil {
		return QuizQuestion{}, err
	}

	q := QuizQuestion{
		QuizID:        quiz.ID,
		Text:          nq.Text,
		Type:          nq.Type,
		OptionA:       nq.OptionA,
		OptionB:       nq.OptionB,
		OptionC:       nq.OptionC,
		OptionD:       nq.OptionD,
		CorrectAnswer: nq.CorrectAnswer,
		Position:      len(quiz.Questions),
		CreatedAt:     time.Now().UTC(),
	}
	return svc.repo.CreateQuizQuestion(ctx, q)
}

// QueryQuestions lists the quiz's questions in position order.
func (svc *Service) QueryQuestions(ctx context.Context, quizID string) ([]QuizQuestion, error) {
	quiz, err := svc.repo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return quiz.Questions, nil
}

func (svc *Service) DeleteQuestion(ctx context.Context, actor user.User, quizID, questionID string) error {
	quiz, err := svc.repo.GetQuizByID(ctx, quizID)
	if err != nil {
		return err
	}
	if _, err = svc.ownedCourse(ctx, actor, access.ActionUpdate, access.KindQuiz, quiz.CourseID); err != nil {
		return err
	}
	for _, q := range quiz.Questions {
		if q.ID == questionID {
			return svc.repo.DeleteQuestionsByID(ctx, questionID)
		}
	}
	return ErrQuestionNotFound
}
