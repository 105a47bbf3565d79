package pgrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/neuropeak/backend/core/course"
)

type courseRow struct {
	ID          string    `db:"id"`
	Code        string    `db:"code"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	LecturerID  string    `db:"lecturer_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type assignmentRow struct {
	ID          string    `db:"id"`
	CourseID    string    `db:"course_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	MarkingKey  string    `db:"marking_key"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type quizRow struct {
	ID          string    `db:"id"`
	CourseID    string    `db:"course_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	MarkingKey  string    `db:"marking_key"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type quizQuestionRow struct {
	ID            string    `db:"id"`
	QuizID        string    `db:"quiz_id"`
	Text          string    `db:"question_text"`
	Type          string    `db:"question_type"`
	OptionA       string    `db:"option_a"`
	OptionB       string    `db:"option_b"`
	OptionC       string    `db:"option_c"`
	OptionD       string    `db:"option_d"`
	CorrectAnswer string    `db:"correct_answer"`
	Position      int       `db:"position"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r courseRow) toDomain() course.Course {
	return course.Course(r)
}

func (r assignmentRow) toDomain() course.Assignment {
	return course.Assignment(r)
}

func (r quizRow) toDomain() course.Quiz {
	return course.Quiz{
		ID:          r.ID,
		CourseID:    r.CourseID,
		Title:       r.Title,
		Description: r.Description,
		MarkingKey:  r.MarkingKey,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (r quizQuestionRow) toDomain() course.QuizQuestion {
	return course.QuizQuestion(r)
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

// Courses

func (repo *courseRepository) CheckCodeUniqueness(ctx context.Context, code string, excludedCourses ...course.Course) error {
	q := psql.Select("COUNT(*)").From("course").Where(sq.Eq{"code": code})
	if len(excludedCourses) > 0 {
		ids := make([]string, 0, len(excludedCourses))
		for _, crs := range excludedCourses {
			ids = append(ids, crs.ID)
		}
		q = q.Where(sq.NotEq{"id": ids})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	var count int
	if err = repo.db.GetContext(ctx, &count, query, args...); err != nil {
		return errors.Wrap(err, "checking code uniqueness")
	}
	if count > 0 {
		return course.ErrDuplicateCode
	}
	return nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	query, args, err := psql.Insert("course").
		Columns("id", "code", "name", "description", "lecturer_id", "created_at", "updated_at").
		Values(crs.ID, crs.Code, crs.Name, crs.Description, crs.LecturerID, crs.CreatedAt, crs.UpdatedAt).
		ToSql()
	if err != nil {
		return course.Course{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	query, args, err := psql.Select("id", "code", "name", "description", "lecturer_id", "created_at", "updated_at").
		From("course").OrderBy("created_at").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []courseRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toDomain())
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	query, args, err := psql.Select("id", "code", "name", "description", "lecturer_id", "created_at", "updated_at").
		From("course").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return course.Course{}, errors.Wrap(err, "building query")
	}

	var row courseRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound)
	}
	return row.toDomain(), nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	query, args, err := psql.Update("course").
		Set("code", crs.Code).
		Set("name", crs.Name).
		Set("description", crs.Description).
		Set("updated_at", crs.UpdatedAt).
		Where(sq.Eq{"id": crs.ID}).
		ToSql()
	if err != nil {
		return course.Course{}, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	query, args, err := psql.Delete("course").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return nil
}

// Assignments

func (repo *courseRepository) CreateAssignment(ctx context.Context, asg course.Assignment) (course.Assignment, error) {
	asg.ID = uuid.New().String()
	query, args, err := psql.Insert("assignment").
		Columns("id", "course_id", "title", "description", "marking_key", "created_at", "updated_at").
		Values(asg.ID, asg.CourseID, asg.Title, asg.Description, asg.MarkingKey, asg.CreatedAt, asg.UpdatedAt).
		ToSql()
	if err != nil {
		return course.Assignment{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return course.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (repo *courseRepository) queryAssignments(ctx context.Context, pred interface{}) ([]course.Assignment, error) {
	q := psql.Select("id", "course_id", "title", "description", "marking_key", "created_at", "updated_at").
		From("assignment").OrderBy("created_at")
	if pred != nil {
		q = q.Where(pred)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []assignmentRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	asgs := make([]course.Assignment, 0, len(rows))
	for _, row := range rows {
		asgs = append(asgs, row.toDomain())
	}
	return asgs, nil
}

func (repo *courseRepository) QueryAllAssignments(ctx context.Context) ([]course.Assignment, error) {
	return repo.queryAssignments(ctx, nil)
}

func (repo *courseRepository) QueryAssignmentsByCourseID(ctx context.Context, courseID string) ([]course.Assignment, error) {
	return repo.queryAssignments(ctx, sq.Eq{"course_id": courseID})
}

func (repo *courseRepository) GetAssignmentByID(ctx context.Context, id string) (course.Assignment, error) {
	query, args, err := psql.Select("id", "course_id", "title", "description", "marking_key", "created_at", "updated_at").
		From("assignment").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return course.Assignment{}, errors.Wrap(err, "building query")
	}

	var row assignmentRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		return course.Assignment{}, trapNoRowsErr(err, course.ErrAssignmentNotFound)
	}
	return row.toDomain(), nil
}

func (repo *courseRepository) UpdateAssignment(ctx context.Context, asg course.Assignment) (course.Assignment, error) {
	query, args, err := psql.Update("assignment").
		Set("title", asg.Title).
		Set("description", asg.Description).
		Set("marking_key", asg.MarkingKey).
		Set("updated_at", asg.UpdatedAt).
		Where(sq.Eq{"id": asg.ID}).
		ToSql()
	if err != nil {
		return course.Assignment{}, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return course.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Assignment{}, course.ErrAssignmentNotFound
	}
	return asg, nil
}

func (repo *courseRepository) DeleteAssignmentsByID(ctx context.Context, ids ...string) error {
	query, args, err := psql.Delete("assignment").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting assignments")
	}
	return nil
}

// Quizzes

func (repo *courseRepository) CreateQuiz(ctx context.Context, quiz course.Quiz) (course.Quiz, error) {
	quiz.ID = uuid.New().String()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return course.Quiz{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := psql.Insert("quiz").
		Columns("id", "course_id", "title", "description", "marking_key", "created_at", "updated_at").
		Values(quiz.ID, quiz.CourseID, quiz.Title, quiz.Description, quiz.MarkingKey, quiz.CreatedAt, quiz.UpdatedAt).
		ToSql()
	if err != nil {
		return course.Quiz{}, errors.Wrap(err, "building query")
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return course.Quiz{}, errors.Wrap(err, "inserting quiz")
	}

	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		q.ID = uuid.New().String()
		q.QuizID = quiz.ID
		query, args, err = psql.Insert("quiz_question").
			Columns("id", "quiz_id", "question_text", "question_type", "option_a", "option_b", "option_c", "option_d", "correct_answer", "position", "created_at").
			Values(q.ID, q.QuizID, q.Text, q.Type, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectAnswer, q.Position, q.CreatedAt).
			ToSql()
		if err != nil {
			return course.Quiz{}, errors.Wrap(err, "building query")
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return course.Quiz{}, errors.Wrap(err, "inserting quiz question")
		}
	}

	if err = tx.Commit(); err != nil {
		return course.Quiz{}, errors.Wrap(err, "committing tx")
	}
	return quiz, nil
}

func (repo *courseRepository) attachQuestions(ctx context.Context, quiz *course.Quiz) error {
	query, args, err := psql.Select("id", "quiz_id", "question_text", "question_type", "option_a", "option_b", "option_c", "option_d", "correct_answer", "position", "created_at").
		From("quiz_question").Where(sq.Eq{"quiz_id": quiz.ID}).OrderBy("position").ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	var rows []quizQuestionRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return errors.Wrap(err, "querying quiz questions")
	}
	for _, row := range rows {
		quiz.Questions = append(quiz.Questions, row.toDomain())
	}
	return nil
}

func (repo *courseRepository) queryQuizzes(ctx context.Context, pred interface{}) ([]course.Quiz, error) {
	q := psql.Select("id", "course_id", "title", "description", "marking_key", "created_at", "updated_at").
		From("quiz").OrderBy("created_at")
	if pred != nil {
		q = q.Where(pred)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []quizRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying quizzes")
	}
	quizzes := make([]course.Quiz, 0, len(rows))
	for _, row := range rows {
		quiz := row.toDomain()
		if err = repo.attachQuestions(ctx, &quiz); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

func (repo *courseRepository) QueryAllQuizzes(ctx context.Context) ([]course.Quiz, error) {
	return repo.queryQuizzes(ctx, nil)
}

func (repo *courseRepository) QueryQuizzesByCourseID(ctx context.Context, courseID string) ([]course.Quiz, error) {
	return repo.queryQuizzes(ctx, sq.Eq{"course_id": courseID})
}

func (repo *courseRepository) GetQuizByID(ctx context.Context, id string) (course.Quiz, error) {
	query, args, err := psql.Select("id", "course_id", "title", "description", "marking_key", "created_at", "updated_at").
		From("quiz").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return course.Quiz{}, errors.Wrap(err, "building query")
	}

	var row quizRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		return course.Quiz{}, trapNoRowsErr(err, course.ErrQuizNotFound)
	}
	quiz := row.toDomain()
	if err = repo.attachQuestions(ctx, &quiz); err != nil {
		return course.Quiz{}, err
	}
	return quiz, nil
}

func (repo *courseRepository) UpdateQuiz(ctx context.Context, quiz course.Quiz) (course.Quiz, error) {
	query, args, err := psql.Update("quiz").
		Set("title", quiz.Title).
		Set("description", quiz.Description).
		Set("marking_key", quiz.MarkingKey).
		Set("updated_at", quiz.UpdatedAt).
		Where(sq.Eq{"id": quiz.ID}).
		ToSql()
	if err != nil {
		return course.Quiz{}, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return course.Quiz{}, errors.Wrap(err, "updating quiz")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Quiz{}, course.ErrQuizNotFound
	}
	return quiz, nil
}

func (repo *courseRepository) DeleteQuizzesByID(ctx context.Context, ids ...string) error {
	query, args, err := psql.Delete("quiz").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting quizzes")
	}
	return nil
}

// Questions

func (repo *courseRepository) CreateQuizQuestion(ctx context.Context, q course.QuizQuestion) (course.QuizQuestion, error) {
	q.ID = uuid.New().String()
	query, args, err := psql.Insert("quiz_question").
		Columns("id", "quiz_id", "question_text", "question_type", "option_a", "option_b", "option_c", "option_d", "correct_answer", "position", "created_at").
		Values(q.ID, q.QuizID, q.Text, q.Type, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectAnswer, q.Position, q.CreatedAt).
		ToSql()
	if err != nil {
		return course.QuizQuestion{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return course.QuizQuestion{}, errors.Wrap(err, "inserting quiz question")
	}
	return q, nil
}

func (repo *courseRepository) DeleteQuestionsByID(ctx context.Context, ids ...string) error {
	query, args, err := psql.Delete("quiz_question").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting quiz questions")
	}
	return nil
}
