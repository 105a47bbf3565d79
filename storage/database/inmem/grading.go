package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/neuropeak/backend/core/grading"
)

type gradingRepository struct {
	db *DB
}

var _ grading.Repository = (*gradingRepository)(nil)

func NewGradingRepository(db *DB) *gradingRepository {
	return &gradingRepository{db: db}
}

func (repo *gradingRepository) CreateAttempt(ctx context.Context, attempt grading.QuizAttempt, answers []grading.QuizAnswer) (grading.QuizAttempt, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	// single critical section: the attempt and its answers appear together
	// or not at all
	attempt.ID = uuid.New().String()
	for i := range answers {
		answers[i].ID = uuid.New().String()
		answers[i].AttemptID = attempt.ID
	}
	repo.db.attempts = append(repo.db.attempts, attempt)
	repo.db.answers = append(repo.db.answers, answers...)
	return attempt, nil
}

func (repo *gradingRepository) QueryAttemptsByQuizID(ctx context.Context, quizID string) ([]grading.QuizAttempt, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	attempts := make([]grading.QuizAttempt, 0)
	for _, a := range repo.db.attempts {
		if a.QuizID == quizID {
			attempts = append(attempts, a)
		}
	}
	return attempts, nil
}

func (repo *gradingRepository) QueryAttemptsByStudentID(ctx context.Context, studentID string) ([]grading.QuizAttempt, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	attempts := make([]grading.QuizAttempt, 0)
	for _, a := range repo.db.attempts {
		if a.StudentID == studentID {
			attempts = append(attempts, a)
		}
	}
	return attempts, nil
}

func (repo *gradingRepository) GetAttemptByID(ctx context.Context, id string) (grading.QuizAttempt, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, a := range repo.db.attempts {
		if a.ID == id {
			return a, nil
		}
	}
	return grading.QuizAttempt{}, grading.ErrNotFound
}

func (repo *gradingRepository) QueryAnswersByAttemptID(ctx context.Context, attemptID string) ([]grading.QuizAnswer, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	answers := make([]grading.QuizAnswer, 0)
	for _, ans := range repo.db.answers {
		if ans.AttemptID == attemptID {
			answers = append(answers, ans)
		}
	}
	return answers, nil
}
