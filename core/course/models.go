package course

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/neuropeak/backend/core"
)

// Question types
const (
	QuestionTypeMCQ       = "MCQ" // multiple choice
	QuestionTypeTrueFalse = "TF"  // true/false
)

// Course is a unit of teaching owned by exactly one lecturer.
type Course struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	LecturerID  string    `json:"lecturer_id"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Assignment belongs to one Course. Its marking key is a free-form rubric
// mapping question ids to expected answers; it is never machine-evaluated.
type Assignment struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	MarkingKey  string    `json:"marking_key"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Quiz belongs to one Course and is the unit students submit attempts against.
type Quiz struct {
	ID          string         `json:"id"`
	CourseID    string         `json:"course_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	MarkingKey  string         `json:"marking_key"`
	Questions   []QuizQuestion `json:"questions,omitempty"`
	CreatedAt   time.Time      `json:"created_at"` // UTC
	UpdatedAt   time.Time      `json:"updated_at"` // UTC
}

// QuizQuestion has exactly one correct answer; comparison against submissions
// is case- and whitespace-insensitive.
type QuizQuestion struct {
	ID            string    `json:"id"`
	QuizID        string    `json:"quiz_id"`
	Text          string    `json:"question_text"`
	Type          string    `json:"question_type"`
	OptionA       string    `json:"option_a,omitempty"`
	OptionB       string    `json:"option_b,omitempty"`
	OptionC       string    `json:"option_c,omitempty"`
	OptionD       string    `json:"option_d,omitempty"`
	CorrectAnswer string    `json:"correct_answer"` // e.g. 'A', 'B', 'True', 'False'
	Position      int       `json:"position"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Code        string `json:"code" validate:"required,max=10,alphanum_"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewCourse) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nc.Code = core.CleanString(nc.Code, true /* lower */)
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.checkCodeUniqueness(ctx, nc.Code)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Code        string `json:"code" validate:"omitempty,max=10,alphanum_"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (uc *UpdateCourse) Validate(ctx context.Context, validate *validator.Validate, orig Course, svc *Service) error {
	uc.Code = core.CleanString(uc.Code, true /* lower */)
	if uc.Code == "" {
		uc.Code = orig.Code
	}
	uc.Name = core.CleanString(uc.Name)
	if uc.Name == "" {
		uc.Name = orig.Name
	}

	if err := validate.Struct(uc); err != nil {
		return err
	}
	return svc.checkCodeUniqueness(ctx, uc.Code, orig)
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	CourseID    string `json:"course_id" validate:"required"`
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description"`
	MarkingKey  string `json:"marking_key" validate:"required,markingkey"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}

// UpdateAssignment defines the editable Assignment attributes.
type UpdateAssignment struct {
	Title       string `json:"title" validate:"omitempty,max=100"`
	Description string `json:"description"`
	MarkingKey  string `json:"marking_key" validate:"omitempty,markingkey"`
}

func (ua *UpdateAssignment) Validate(validate *validator.Validate) error {
	ua.Title = core.CleanString(ua.Title)
	ua.Description = core.CleanString(ua.Description)
	return validate.Struct(ua)
}

// NewQuizQuestion contains information needed to create a new QuizQuestion.
type NewQuizQuestion struct {
	Text          string `json:"question_text" validate:"required"`
	Type          string `json:"question_type" validate:"omitempty,oneof=MCQ TF"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer" validate:"required,max=10"`
}

func (nq *NewQuizQuestion) Validate(validate *validator.Validate) error {
	nq.Text = core.CleanString(nq.Text)
	if nq.Type == "" {
		nq.Type = QuestionTypeMCQ
	}
	return validate.Struct(nq)
}

// NewQuiz contains information needed to create a new Quiz and its questions.
type NewQuiz struct {
	CourseID    string            `json:"course_id" validate:"required"`
	Title       string            `json:"title" validate:"required,max=100"`
	Description string            `json:"description"`
	MarkingKey  string            `json:"marking_key" validate:"required,markingkey"`
	Questions   []NewQuizQuestion `json:"questions" validate:"omitempty,dive"`
}

func (nq *NewQuiz) Validate(validate *validator.Validate) error {
	nq.Title = core.CleanString(nq.Title)
	nq.Description = core.CleanString(nq.Description)
	for i := range nq.Questions {
		if nq.Questions[i].Type == "" {
			nq.Questions[i].Type = QuestionTypeMCQ
		}
		nq.Questions[i].Text = core.CleanString(nq.Questions[i].Text)
	}
	return validate.Struct(nq)
}

// UpdateQuiz defines the editable Quiz attributes.
type UpdateQuiz struct {
	Title       string `json:"title" validate:"omitempty,max=100"`
	Description string `json:"description"`
	MarkingKey  string `json:"marking_key" validate:"omitempty,markingkey"`
}

func (uq *UpdateQuiz) Validate(validate *validator.Validate) error {
	uq.Title = core.CleanString(uq.Title)
	uq.Description = core.CleanString(uq.Description)
	return validate.Struct(uq)
}
