package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/neuropeak/backend/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CheckCodeUniqueness(ctx context.Context, code string, excludedCourses ...course.Course) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, crs := range repo.db.courses {
		if crs.Code != code {
			continue
		}
		excluded := false
		for _, ex := range excludedCourses {
			if crs.ID == ex.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return course.ErrDuplicateCode
		}
	}
	return nil
}

// Courses

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, c := range repo.db.courses {
		if c.Code == crs.Code {
			return course.Course{}, course.ErrDuplicateCode
		}
	}
	crs.ID = uuid.New().String()
	repo.db.courses = append(repo.db.courses, crs)
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	courses := make([]course.Course, len(repo.db.courses))
	copy(courses, repo.db.courses)
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, crs := range repo.db.courses {
		if crs.ID == id {
			return crs, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, c := range repo.db.courses {
		if c.ID == crs.ID {
			repo.db.courses[i] = crs
			return crs, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	toDelete := make(map[string]bool, len(ids))
	for _, id := range ids {
		toDelete[id] = true
	}
	courses := repo.db.courses[:0]
	for _, crs := range repo.db.courses {
		if !toDelete[crs.ID] {
			courses = append(courses, crs)
		}
	}
	repo.db.courses = courses
	repo.db.deleteCoursesCascade(ids...)
	return nil
}

// Assignments

func (repo *courseRepository) CreateAssignment(ctx context.Context, asg course.Assignment) (course.Assignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	asg.ID = uuid.New().String()
	repo.db.assignments = append(repo.db.assignments, asg)
	return asg, nil
}

func (repo *courseRepository) QueryAllAssignments(ctx context.Context) ([]course.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	assignments := make([]course.Assignment, len(repo.db.assignments))
	copy(assignments, repo.db.assignments)
	return assignments, nil
}

func (repo *courseRepository) QueryAssignmentsByCourseID(ctx context.Context, courseID string) ([]course.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	assignments := make([]course.Assignment, 0)
	for _, asg := range repo.db.assignments {
		if asg.CourseID == courseID {
			assignments = append(assignments, asg)
		}
	}
	return assignments, nil
}

func (repo *courseRepository) GetAssignmentByID(ctx context.Context, id string) (course.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, asg := range repo.db.assignments {
		if asg.ID == id {
			return asg, nil
		}
	}
	return course.Assignment{}, course.ErrAssignmentNotFound
}

func (repo *courseRepository) UpdateAssignment(ctx context.Context, asg course.Assignment) (course.Assignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, a := range repo.db.assignments {
		if a.ID == asg.ID {
			repo.db.assignments[i] = asg
			return asg, nil
		}
	}
	return course.Assignment{}, course.ErrAssignmentNotFound
}

func (repo *courseRepository) DeleteAssignmentsByID(ctx context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	toDelete := make(map[string]bool, len(ids))
	for _, id := range ids {
		toDelete[id] = true
	}
	assignments := repo.db.assignments[:0]
	for _, asg := range repo.db.assignments {
		if !toDelete[asg.ID] {
			assignments = append(assignments, asg)
		}
	}
	repo.db.assignments = assignments
	return nil
}

// Quizzes

func (repo *courseRepository) CreateQuiz(ctx context.Context, quiz course.Quiz) (course.Quiz, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	quiz.ID = uuid.New().String()
	for i := range quiz.Questions {
		quiz.Questions[i].ID = uuid.New().String()
		quiz.Questions[i].QuizID = quiz.ID
	}
	repo.db.quizzes = append(repo.db.quizzes, quiz)
	return quiz, nil
}

func (repo *courseRepository) QueryAllQuizzes(ctx context.Context) ([]course.Quiz, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	quizzes := make([]course.Quiz, len(repo.db.quizzes))
	copy(quizzes, repo.db.quizzes)
	return quizzes, nil
}

func (repo *courseRepository) QueryQuizzesByCourseID(ctx context.Context, courseID string) ([]course.Quiz, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	quizzes := make([]course.Quiz, 0)
	for _, quiz := range repo.db.quizzes {
		if quiz.CourseID == courseID {
			quizzes = append(quizzes, quiz)
		}
	}
	return quizzes, nil
}

func (repo *courseRepository) GetQuizByID(ctx context.Context, id string) (course.Quiz, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, quiz := range repo.db.quizzes {
		if quiz.ID == id {
			return quiz, nil
		}
	}
	return course.Quiz{}, course.ErrQuizNotFound
}

func (repo *courseRepository) UpdateQuiz(ctx context.Context, quiz course.Quiz) (course.Quiz, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, q := range repo.db.quizzes {
		if q.ID == quiz.ID {
			quiz.Questions = q.Questions
			repo.db.quizzes[i] = quiz
			return quiz, nil
		}
	}
	return course.Quiz{}, course.ErrQuizNotFound
}

func (repo *courseRepository) DeleteQuizzesByID(ctx context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	toDelete := make(map[string]bool, len(ids))
	for _, id := range ids {
		toDelete[id] = true
	}
	quizzes := repo.db.quizzes[:0]
	for _, quiz := range repo.db.quizzes {
		if !toDelete[quiz.ID] {
			quizzes = append(quizzes, quiz)
		}
	}
	repo.db.quizzes = quizzes
	repo.db.deleteQuizzesCascade(toDelete)
	return nil
}

// Questions

func (repo *courseRepository) CreateQuizQuestion(ctx context.Context, q course.QuizQuestion) (course.QuizQuestion, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, quiz := range repo.db.quizzes {
		if quiz.ID == q.QuizID {
			q.ID = uuid.New().String()
			repo.db.quizzes[i].Questions = append(repo.db.quizzes[i].Questions, q)
			return q, nil
		}
	}
	return course.QuizQuestion{}, course.ErrQuizNotFound
}

func (repo *courseRepository) DeleteQuestionsByID(ctx context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	toDelete := make(map[string]bool, len(ids))
	for _, id := range ids {
		toDelete[id] = true
	}
	for i := range repo.db.quizzes {
		questions := repo.db.quizzes[i].Questions[:0]
		for _, q := range repo.db.quizzes[i].Questions {
			if !toDelete[q.ID] {
				questions = append(questions, q)
			}
		}
		repo.db.quizzes[i].Questions = questions
	}
	return nil
}
