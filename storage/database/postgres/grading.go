package pgrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/neuropeak/backend/core/grading"
)

type quizAttemptRow struct {
	ID          string    `db:"id"`
	QuizID      string    `db:"quiz_id"`
	StudentID   string    `db:"student_id"`
	Score       float64   `db:"score"`
	AttemptedAt time.Time `db:"attempted_at"`
}

type quizAnswerRow struct {
	ID            string `db:"id"`
	AttemptID     string `db:"attempt_id"`
	QuestionID    string `db:"question_id"`
	StudentAnswer string `db:"student_answer"`
	IsCorrect     bool   `db:"is_correct"`
	Position      int    `db:"position"`
}

func (r quizAttemptRow) toDomain() grading.QuizAttempt {
	return grading.QuizAttempt(r)
}

func (r quizAnswerRow) toDomain() grading.QuizAnswer {
	return grading.QuizAnswer{
		ID:            r.ID,
		AttemptID:     r.AttemptID,
		QuestionID:    r.QuestionID,
		StudentAnswer: r.StudentAnswer,
		IsCorrect:     r.IsCorrect,
	}
}

type gradingRepository struct {
	db *sqlx.DB
}

var _ grading.Repository = (*gradingRepository)(nil)

func NewGradingRepository(db *sqlx.DB) *gradingRepository {
	return &gradingRepository{db: db}
}

func (repo *gradingRepository) CreateAttempt(ctx context.Context, attempt grading.QuizAttempt, answers []grading.QuizAnswer) (grading.QuizAttempt, error) {
	attempt.ID = uuid.New().String()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return grading.QuizAttempt{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := psql.Insert("quiz_attempt").
		Columns("id", "quiz_id", "student_id", "score", "attempted_at").
		Values(attempt.ID, attempt.QuizID, attempt.StudentID, attempt.Score, attempt.AttemptedAt).
		ToSql()
	if err != nil {
		return grading.QuizAttempt{}, errors.Wrap(err, "building query")
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return grading.QuizAttempt{}, errors.Wrap(err, "inserting attempt")
	}

	for i, ans := range answers {
		ans.ID = uuid.New().String()
		ans.AttemptID = attempt.ID
		query, args, err = psql.Insert("quiz_answer").
			Columns("id", "attempt_id", "question_id", "student_answer", "is_correct", "position").
			Values(ans.ID, ans.AttemptID, ans.QuestionID, ans.StudentAnswer, ans.IsCorrect, i).
			ToSql()
		if err != nil {
			return grading.QuizAttempt{}, errors.Wrap(err, "building query")
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return grading.QuizAttempt{}, errors.Wrap(err, "inserting answer")
		}
	}

	if err = tx.Commit(); err != nil {
		return grading.QuizAttempt{}, errors.Wrap(err, "committing tx")
	}
	return attempt, nil
}

func (repo *gradingRepository) queryAttempts(ctx context.Context, pred interface{}) ([]grading.QuizAttempt, error) {
	query, args, err := psql.Select("id", "quiz_id", "student_id", "score", "attempted_at").
		From("quiz_attempt").Where(pred).OrderBy("attempted_at").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []quizAttemptRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying attempts")
	}
	attempts := make([]grading.QuizAttempt, 0, len(rows))
	for _, row := range rows {
		attempts = append(attempts, row.toDomain())
	}
	return attempts, nil
}

func (repo *gradingRepository) QueryAttemptsByQuizID(ctx context.Context, quizID string) ([]grading.QuizAttempt, error) {
	return repo.queryAttempts(ctx, sq.Eq{"quiz_id": quizID})
}

func (repo *gradingRepository) QueryAttemptsByStudentID(ctx context.Context, studentID string) ([]grading.QuizAttempt, error) {
	return repo.queryAttempts(ctx, sq.Eq{"student_id": studentID})
}

func (repo *gradingRepository) GetAttemptByID(ctx context.Context, id string) (grading.QuizAttempt, error) {
	query, args, err := psql.Select("id", "quiz_id", "student_id", "score", "attempted_at").
		From("quiz_attempt").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return grading.QuizAttempt{}, errors.Wrap(err, "building query")
	}

	var row quizAttemptRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		return grading.QuizAttempt{}, trapNoRowsErr(err, grading.ErrNotFound)
	}
	return row.toDomain(), nil
}

func (repo *gradingRepository) QueryAnswersByAttemptID(ctx context.Context, attemptID string) ([]grading.QuizAnswer, error) {
	query, args, err := psql.Select("id", "attempt_id", "question_id", "student_answer", "is_correct", "position").
		From("quiz_answer").Where(sq.Eq{"attempt_id": attemptID}).OrderBy("position").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []quizAnswerRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying answers")
	}
	answers := make([]grading.QuizAnswer, 0, len(rows))
	for _, row := range rows {
		answers = append(answers, row.toDomain())
	}
	return answers, nil
}
