package grading

import "time"

// QuizAttempt is created once per submission event. It is immutable after
// creation except for the score, set exactly once while grading.
type QuizAttempt struct {
	ID          string    `json:"id"`
	QuizID      string    `json:"quiz_id"`
	StudentID   string    `json:"student_id"`
	Score       float64   `json:"score"`        // fraction in [0,1]
	AttemptedAt time.Time `json:"attempted_at"` // UTC
}

// QuizAnswer records a student's raw answer to one question and whether it
// matched the stored correct answer at submission time.
type QuizAnswer struct {
	ID            string `json:"id"`
	AttemptID     string `json:"attempt_id"`
	QuestionID    string `json:"question_id"`
	StudentAnswer string `json:"student_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// WrongAnswer is one entry of the review report returned to the student.
type WrongAnswer struct {
	Question      string `json:"question"`
	YourAnswer    string `json:"your_answer"`
	CorrectAnswer string `json:"correct_answer"`
}

// AttemptResult is what a student gets back from a submission.
type AttemptResult struct {
	AttemptID    string        `json:"attempt_id"`
	Score        float64       `json:"score"`
	WrongAnswers []WrongAnswer `json:"wrong_answers"`
}
