package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/neuropeak/backend/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func isExcluded(usr user.User, excluded []user.User) bool {
	for _, ex := range excluded {
		if usr.ID == ex.ID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email && !isExcluded(usr, excludedUsers) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr.ID = uuid.New().String()
	if usr.Lecturer != nil {
		usr.Lecturer.ID = uuid.New().String()
		usr.Lecturer.UserID = usr.ID
		usr.Lecturer.CreatedAt = usr.CreatedAt
		usr.Lecturer.UpdatedAt = usr.UpdatedAt
	}
	if usr.Student != nil {
		for _, u := range repo.db.users {
			if u.Student != nil && u.Student.StudentNumber == usr.Student.StudentNumber && usr.Student.StudentNumber != "" {
				return user.User{}, user.ErrStudentNumberExists
			}
		}
		usr.Student.ID = uuid.New().String()
		usr.Student.UserID = usr.ID
		usr.Student.CreatedAt = usr.CreatedAt
		usr.Student.UpdatedAt = usr.UpdatedAt
	}
	repo.db.users = append(repo.db.users, usr)
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users := make([]user.User, len(repo.db.users))
	copy(users, repo.db.users)
	return users, nil
}

func (repo *userRepository) QueryUsersByRole(ctx context.Context, role string) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users := make([]user.User, 0)
	for _, usr := range repo.db.users {
		if usr.Role == role {
			users = append(users, usr)
		}
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if usr.ID == id {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, u := range repo.db.users {
		if u.ID != usr.ID {
			continue
		}
		if isActive != nil {
			usr.IsActive = *isActive
		}
		now := time.Now().UTC()
		if usr.Lecturer != nil && usr.Lecturer.ID == "" {
			usr.Lecturer.ID = uuid.New().String()
			usr.Lecturer.UserID = usr.ID
			usr.Lecturer.CreatedAt = now
			usr.Lecturer.UpdatedAt = now
		}
		if usr.Student != nil && usr.Student.ID == "" {
			usr.Student.ID = uuid.New().String()
			usr.Student.UserID = usr.ID
			usr.Student.CreatedAt = now
			usr.Student.UpdatedAt = now
		}
		repo.db.users[i] = usr
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateLecturerProfile(ctx context.Context, prof user.LecturerProfile) (user.LecturerProfile, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, u := range repo.db.users {
		if u.Lecturer != nil && u.Lecturer.ID == prof.ID {
			p := prof
			repo.db.users[i].Lecturer = &p
			return prof, nil
		}
	}
	return user.LecturerProfile{}, user.ErrProfileNotFound
}

func (repo *userRepository) UpdateStudentProfile(ctx context.Context, prof user.StudentProfile) (user.StudentProfile, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, u := range repo.db.users {
		if u.Student != nil && u.Student.ID != prof.ID && u.Student.StudentNumber == prof.StudentNumber {
			return user.StudentProfile{}, user.ErrStudentNumberExists
		}
	}
	for i, u := range repo.db.users {
		if u.Student != nil && u.Student.ID == prof.ID {
			p := prof
			repo.db.users[i].Student = &p
			return prof, nil
		}
	}
	return user.StudentProfile{}, user.ErrProfileNotFound
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	toDelete := make(map[string]bool, len(ids))
	for _, id := range ids {
		toDelete[id] = true
	}

	users := repo.db.users[:0]
	for _, usr := range repo.db.users {
		if !toDelete[usr.ID] {
			users = append(users, usr)
		}
	}
	repo.db.users = users

	// cascade: courses owned by deleted lecturers, attempts by deleted students
	var courseIDs []string
	courses := repo.db.courses[:0]
	for _, crs := range repo.db.courses {
		if toDelete[crs.LecturerID] {
			courseIDs = append(courseIDs, crs.ID)
		} else {
			courses = append(courses, crs)
		}
	}
	repo.db.courses = courses
	repo.db.deleteCoursesCascade(courseIDs...)

	attemptIDs := make(map[string]bool)
	attempts := repo.db.attempts[:0]
	for _, a := range repo.db.attempts {
		if toDelete[a.StudentID] {
			attemptIDs[a.ID] = true
		} else {
			attempts = append(attempts, a)
		}
	}
	repo.db.attempts = attempts
	repo.db.deleteAnswersByAttempt(attemptIDs)

	messages := repo.db.messages[:0]
	for _, m := range repo.db.messages {
		if !toDelete[m.UserID] {
			messages = append(messages, m)
		}
	}
	repo.db.messages = messages
	return nil
}
