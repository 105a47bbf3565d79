package pgrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/neuropeak/backend/core/user"
)

type userRow struct {
	ID           string       `db:"id"`
	Name         string       `db:"name"`
	Email        string       `db:"email"`
	IsActive     bool         `db:"is_active"`
	Role         string       `db:"role"`
	PasswordHash []byte       `db:"password_hash"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
	LastLogin    sql.NullTime `db:"last_login"`
}

type lecturerProfileRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	Department     string    `db:"department"`
	Specialization string    `db:"specialization"`
	Bio            string    `db:"bio"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type studentProfileRow struct {
	ID            string         `db:"id"`
	UserID        string         `db:"user_id"`
	StudentNumber sql.NullString `db:"student_number"`
	Program       string         `db:"program"`
	YearOfStudy   int            `db:"year_of_study"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r userRow) toDomain() user.User {
	usr := user.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		IsActive:     r.IsActive,
		Role:         r.Role,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.LastLogin.Valid {
		usr.LastLogin = r.LastLogin.Time
	}
	return usr
}

func (r lecturerProfileRow) toDomain() *user.LecturerProfile {
	return &user.LecturerProfile{
		ID:             r.ID,
		UserID:         r.UserID,
		Department:     r.Department,
		Specialization: r.Specialization,
		Bio:            r.Bio,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (r studentProfileRow) toDomain() *user.StudentProfile {
	return &user.StudentProfile{
		ID:            r.ID,
		UserID:        r.UserID,
		StudentNumber: r.StudentNumber.String,
		Program:       r.Program,
		YearOfStudy:   r.YearOfStudy,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	q := psql.Select("COUNT(*)").From(`"user"`).Where(sq.Eq{"email": email})
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		q = q.Where(sq.NotEq{"id": ids})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	var count int
	if err = repo.db.GetContext(ctx, &count, query, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := psql.Insert(`"user"`).
		Columns("id", "name", "email", "is_active", "role", "password_hash", "created_at", "updated_at").
		Values(usr.ID, usr.Name, usr.Email, usr.IsActive, usr.Role, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt).
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}

	if err = insertProfile(ctx, tx, &usr); err != nil {
		return user.User{}, err
	}

	if err = tx.Commit(); err != nil {
		return user.User{}, errors.Wrap(err, "committing tx")
	}
	return usr, nil
}

func insertProfile(ctx context.Context, tx *sqlx.Tx, usr *user.User) error {
	switch {
	case usr.Lecturer != nil:
		prof := usr.Lecturer
		prof.ID = uuid.New().String()
		prof.UserID = usr.ID
		prof.CreatedAt = usr.UpdatedAt
		prof.UpdatedAt = usr.UpdatedAt
		query, args, err := psql.Insert("lecturer_profile").
			Columns("id", "user_id", "department", "specialization", "bio", "created_at", "updated_at").
			Values(prof.ID, prof.UserID, prof.Department, prof.Specialization, prof.Bio, prof.CreatedAt, prof.UpdatedAt).
			ToSql()
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(err, "inserting lecturer profile")
		}

	case usr.Student != nil:
		prof := usr.Student
		prof.ID = uuid.New().String()
		prof.UserID = usr.ID
		prof.CreatedAt = usr.UpdatedAt
		prof.UpdatedAt = usr.UpdatedAt
		num := sql.NullString{String: prof.StudentNumber, Valid: prof.StudentNumber != ""}
		query, args, err := psql.Insert("student_profile").
			Columns("id", "user_id", "student_number", "program", "year_of_study", "created_at", "updated_at").
			Values(prof.ID, prof.UserID, num, prof.Program, prof.YearOfStudy, prof.CreatedAt, prof.UpdatedAt).
			ToSql()
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
				return user.ErrStudentNumberExists
			}
			return errors.Wrap(err, "inserting student profile")
		}
	}
	return nil
}

// attachProfile loads the user's profile variant, if any.
func (repo *userRepository) attachProfile(ctx context.Context, usr *user.User) error {
	switch usr.Role {
	case user.RoleLecturer:
		query, args, err := psql.Select("id", "user_id", "department", "specialization", "bio", "created_at", "updated_at").
			From("lecturer_profile").Where(sq.Eq{"user_id": usr.ID}).ToSql()
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		var row lecturerProfileRow
		if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
			if err == sql.ErrNoRows {
				return nil
			}
			return errors.Wrap(err, "getting lecturer profile")
		}
		usr.Lecturer = row.toDomain()

	case user.RoleStudent:
		query, args, err := psql.Select("id", "user_id", "student_number", "program", "year_of_study", "created_at", "updated_at").
			From("student_profile").Where(sq.Eq{"user_id": usr.ID}).ToSql()
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		var row studentProfileRow
		if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
			if err == sql.ErrNoRows {
				return nil
			}
			return errors.Wrap(err, "getting student profile")
		}
		usr.Student = row.toDomain()
	}
	return nil
}

func (repo *userRepository) queryUsers(ctx context.Context, pred interface{}) ([]user.User, error) {
	q := psql.Select("id", "name", "email", "is_active", "role", "password_hash", "created_at", "updated_at", "last_login").
		From(`"user"`).OrderBy("created_at")
	if pred != nil {
		q = q.Where(pred)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []userRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		usr := row.toDomain()
		if err = repo.attachProfile(ctx, &usr); err != nil {
			return nil, err
		}
		users = append(users, usr)
	}
	return users, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	return repo.queryUsers(ctx, nil)
}

func (repo *userRepository) QueryUsersByRole(ctx context.Context, role string) ([]user.User, error) {
	return repo.queryUsers(ctx, sq.Eq{"role": role})
}

func (repo *userRepository) getUser(ctx context.Context, pred interface{}) (user.User, error) {
	query, args, err := psql.Select("id", "name", "email", "is_active", "role", "password_hash", "created_at", "updated_at", "last_login").
		From(`"user"`).Where(pred).ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}

	var row userRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound)
	}
	usr := row.toDomain()
	if err = repo.attachProfile(ctx, &usr); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, sq.Eq{"id": id})
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, sq.Eq{"email": email})
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	if isActive != nil {
		usr.IsActive = *isActive
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	lastLogin := sql.NullTime{Time: usr.LastLogin, Valid: !usr.LastLogin.IsZero()}
	query, args, err := psql.Update(`"user"`).
		Set("name", usr.Name).
		Set("email", usr.Email).
		Set("is_active", usr.IsActive).
		Set("role", usr.Role).
		Set("password_hash", usr.PasswordHash).
		Set("updated_at", usr.UpdatedAt).
		Set("last_login", lastLogin).
		Where(sq.Eq{"id": usr.ID}).
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}

	// a role change swaps the profile variant: drop the one that no longer
	// applies, insert the new one if missing
	if usr.Role != user.RoleLecturer {
		if _, err = tx.ExecContext(ctx, "DELETE FROM lecturer_profile WHERE user_id = $1", usr.ID); err != nil {
			return user.User{}, errors.Wrap(err, "dropping lecturer profile")
		}
	}
	if usr.Role != user.RoleStudent {
		if _, err = tx.ExecContext(ctx, "DELETE FROM student_profile WHERE user_id = $1", usr.ID); err != nil {
			return user.User{}, errors.Wrap(err, "dropping student profile")
		}
	}
	if (usr.Lecturer != nil && usr.Lecturer.ID == "") || (usr.Student != nil && usr.Student.ID == "") {
		if err = insertProfile(ctx, tx, &usr); err != nil {
			return user.User{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return user.User{}, errors.Wrap(err, "committing tx")
	}
	return usr, nil
}

func (repo *userRepository) UpdateLecturerProfile(ctx context.Context, prof user.LecturerProfile) (user.LecturerProfile, error) {
	query, args, err := psql.Update("lecturer_profile").
		Set("department", prof.Department).
		Set("specialization", prof.Specialization).
		Set("bio", prof.Bio).
		Set("updated_at", prof.UpdatedAt).
		Where(sq.Eq{"id": prof.ID}).
		ToSql()
	if err != nil {
		return user.LecturerProfile{}, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return user.LecturerProfile{}, errors.Wrap(err, "updating lecturer profile")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.LecturerProfile{}, user.ErrProfileNotFound
	}
	return prof, nil
}

func (repo *userRepository) UpdateStudentProfile(ctx context.Context, prof user.StudentProfile) (user.StudentProfile, error) {
	num := sql.NullString{String: prof.StudentNumber, Valid: prof.StudentNumber != ""}
	query, args, err := psql.Update("student_profile").
		Set("student_number", num).
		Set("program", prof.Program).
		Set("year_of_study", prof.YearOfStudy).
		Set("updated_at", prof.UpdatedAt).
		Where(sq.Eq{"id": prof.ID}).
		ToSql()
	if err != nil {
		return user.StudentProfile{}, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return user.StudentProfile{}, user.ErrStudentNumberExists
		}
		return user.StudentProfile{}, errors.Wrap(err, "updating student profile")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.StudentProfile{}, user.ErrProfileNotFound
	}
	return prof, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	query, args, err := psql.Delete(`"user"`).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
