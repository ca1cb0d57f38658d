package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/karanbsk/useradmin/internal/apperror"
)

var userColumns = []string{
	"id", "username", "email", "password_hash",
	"is_root", "force_password_change", "created_at", "updated_at",
}

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		TranslateError:       true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db, mock
}

func userRow(id uint, username, email string, isRoot bool) *sqlmock.Rows {
	hash, _ := bcrypt.GenerateFromPassword([]byte("Abcdef1!"), bcrypt.MinCost)
	return sqlmock.NewRows(userColumns).
		AddRow(id, username, email, string(hash), isRoot, false, time.Now(), time.Now())
}

func TestCreateHappyPath(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewUserService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	user, err := svc.Create(context.Background(), "alice", "A@Example.com", "Abcdef1!")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@example.com", user.Email, "email is lowercased on write")
	assert.NotEmpty(t, user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateRejectedWithoutInsert(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewUserService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), "alice", "a@example.com", "Abcdef1!")
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet(), "no insert must run after the conflict")
}

func TestCreateRejectsPolicyFailureBeforeTouchingDB(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Create(context.Background(), "alice", "a@example.com", "Abc12345")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet(), "rejected password must not reach the DB")
}

func TestCreateRejectsBadUsernameAndEmail(t *testing.T) {
	db, _ := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Create(context.Background(), "a b", "a@example.com", "Abcdef1!")
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Create(context.Background(), "alice", "not-an-email", "Abcdef1!")
	assert.True(t, apperror.IsValidation(err))
}

func TestListOrderedByUsername(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewUserService(db)

	rows := sqlmock.NewRows(userColumns).
		AddRow(2, "alice", "a@example.com", "h", false, false, time.Now(), time.Now()).
		AddRow(1, "bob", "b@example.com", "h", false, false, time.Now(), time.Now())
	mock.ExpectQuery(`SELECT \* FROM "users" ORDER BY username asc`).WillReturnRows(rows)

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewUserService(db)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := svc.GetByID(context.Background(), 99)
	assert.True(t, apperror.IsNotFound(err))
}

func TestResetPasswordMissingUserWritesNothing(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewUserService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectRollback()

	_, err := svc.ResetPasswordByUsername(context.Background(), "ghost", "Abcdef1!")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet(), "no update must run for a missing user")
}

func TestResetPasswordRejectsPolicyBeforeLookup(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.ResetPasswordByUsername(context.Background(), "alice", "weak")
	assert.True(t, apperror.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPasswordClearsForceFlag(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewUserService(db)

	hash, _ := bcrypt.GenerateFromPassword([]byte("Old1pass!"), bcrypt.MinCost)
	rows := sqlmock.NewRows(userColumns).
		AddRow(1, "root", "root@useradmin.local", string(hash), true, true, time.Now(), time.Now())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(rows)
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user, err := svc.ResetPasswordByUsername(context.Background(), "root", "New1pass!")
	require.NoError(t, err)
	assert.False(t, user.ForcePasswordChange)
	assert.True(t, user.CheckPassword("New1pass!"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRootRefused(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewUserService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(userRow(1, "root", "root@useradmin.local", true))
	mock.ExpectRollback()

	err := svc.DeleteByUsername(context.Background(), "root")
	require.Error(t, err)
	assert.True(t, apperror.IsRootProtected(err))
	assert.NoError(t, mock.ExpectationsWereMet(), "no delete must run against the root row")
}

func TestDeleteByUsername(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewUserService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(userRow(7, "bob", "b@example.com", false))
	mock.ExpectExec(`DELETE FROM "users"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.DeleteByUsername(context.Background(), "bob"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByID(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewUserService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id" =`).
		WillReturnRows(userRow(7, "bob", "b@example.com", false))
	mock.ExpectExec(`DELETE FROM "users"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.DeleteByID(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDigitOnlyUsernameResolvesByName(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewUserService(db)

	// "42" is a valid username per the whitelist. The by-username path must
	// query the username column, never treat the value as an id.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username =`).
		WillReturnRows(userRow(7, "42", "n42@example.com", false))
	mock.ExpectExec(`DELETE FROM "users"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.DeleteByUsername(context.Background(), "42"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPasswordDigitOnlyUsernameResolvesByName(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewUserService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username =`).
		WillReturnRows(userRow(7, "42", "n42@example.com", false))
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user, err := svc.ResetPasswordByUsername(context.Background(), "42", "New1pass!")
	require.NoError(t, err)
	assert.Equal(t, "42", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingUser(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewUserService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectRollback()

	err := svc.DeleteByUsername(context.Background(), "ghost")
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewUserService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(userRow(7, "bob", "b@example.com", false))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	email := "taken@example.com"
	_, err := svc.UpdateProfile(context.Background(), 7, &email, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileNothingToUpdate(t *testing.T) {
	db, _ := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.UpdateProfile(context.Background(), 7, nil, nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestTranslateWriteError(t *testing.T) {
	assert.True(t, apperror.IsConflict(translateWriteError(gorm.ErrDuplicatedKey)),
		"a unique-index violation on a creation race maps to Conflict")

	trigger := assertableError("ERROR: root user cannot be deleted (SQLSTATE P0001)")
	assert.True(t, apperror.IsRootProtected(translateWriteError(trigger)))

	other := assertableError("connection reset")
	assert.True(t, apperror.Is(translateWriteError(other), apperror.Internal))
}

type assertableError string

func (e assertableError) Error() string { return string(e) }
