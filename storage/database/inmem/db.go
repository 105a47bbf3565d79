// Package inmemdb provides mutex-guarded in-memory repositories, used in
// tests and as a stand-in store during development.
package inmemdb

import (
	"sync"

	"github.com/neuropeak/backend/core/chat"
	"github.com/neuropeak/backend/core/course"
	"github.com/neuropeak/backend/core/grading"
	"github.com/neuropeak/backend/core/user"
)

// DB holds every table as an insertion-ordered slice so listings are
// deterministic. Quiz questions live on their quiz; profiles live on their user.
type DB struct {
	mu sync.RWMutex

	users       []user.User
	courses     []course.Course
	assignments []course.Assignment
	quizzes     []course.Quiz
	attempts    []grading.QuizAttempt
	answers     []grading.QuizAnswer
	messages    []chat.Message
}

func Open() (*DB, error) {
	return &DB{}, nil
}

// deleteCoursesCascade removes the courses' assignments, quizzes, attempts
// and answers. Caller must hold the write lock.
func (db *DB) deleteCoursesCascade(courseIDs ...string) {
	if len(courseIDs) == 0 {
		return
	}
	toDelete := make(map[string]bool, len(courseIDs))
	for _, id := range courseIDs {
		toDelete[id] = true
	}

	assignments := db.assignments[:0]
	for _, asg := range db.assignments {
		if !toDelete[asg.CourseID] {
			assignments = append(assignments, asg)
		}
	}
	db.assignments = assignments

	quizIDs := make(map[string]bool)
	quizzes := db.quizzes[:0]
	for _, quiz := range db.quizzes {
		if toDelete[quiz.CourseID] {
			quizIDs[quiz.ID] = true
		} else {
			quizzes = append(quizzes, quiz)
		}
	}
	db.quizzes = quizzes
	db.deleteQuizzesCascade(quizIDs)
}

// deleteQuizzesCascade removes the quizzes' attempts and their answers.
// Caller must hold the write lock.
func (db *DB) deleteQuizzesCascade(quizIDs map[string]bool) {
	if len(quizIDs) == 0 {
		return
	}
	attemptIDs := make(map[string]bool)
	attempts := db.attempts[:0]
	for _, a := range db.attempts {
		if quizIDs[a.QuizID] {
			attemptIDs[a.ID] = true
		} else {
			attempts = append(attempts, a)
		}
	}
	db.attempts = attempts
	db.deleteAnswersByAttempt(attemptIDs)
}

// deleteAnswersByAttempt removes all answers belonging to the given attempts.
// Caller must hold the write lock.
func (db *DB) deleteAnswersByAttempt(attemptIDs map[string]bool) {
	if len(attemptIDs) == 0 {
		return
	}
	answers := db.answers[:0]
	for _, ans := range db.answers {
		if !attemptIDs[ans.AttemptID] {
			answers = append(answers, ans)
		}
	}
	db.answers = answers
}
