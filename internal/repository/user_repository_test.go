package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func countRows(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func TestUserRepository_Create(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	user := &model.User{
		Email:          "test@example.com",
		Username:       "tester",
		HashedPassword: "hashed_password",
		RoleID:         1,
	}

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE email = \$1`).
		WithArgs(user.Email).
		WillReturnRows(countRows(0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE username = \$1`).
		WithArgs(user.Username).
		WillReturnRows(countRows(0))
	// Ожидаем SQL запрос на создание пользователя
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WithArgs(user.Email, user.Username, user.HashedPassword, user.RoleID,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	// Act
	err := userRepo.Create(context.Background(), user)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE email = \$1`).
		WithArgs("taken@example.com").
		WillReturnRows(countRows(1))

	err := userRepo.Create(context.Background(), &model.User{Email: "taken@example.com", Username: "x"})

	var ce *repository.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "email", ce.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_Found(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	email := "test@example.com"

	// Ожидаем SQL запрос на поиск пользователя по email
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1 ORDER BY "users"."id" LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "hashed_password", "role_id", "created_at"}).
			AddRow(3, email, "tester", "hashed_password", 1, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))

	// Act
	user, err := userRepo.FindByEmail(context.Background(), email)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, uint(3), user.ID)
	assert.Equal(t, email, user.Email)
	assert.Equal(t, "tester", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	// Ожидаем SQL запрос на поиск пользователя по email - не найден
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)

	user, err := userRepo.FindByEmail(context.Background(), "nonexistent@example.com")

	assert.NoError(t, err) // отсутствие записи не ошибка
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_Error(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnError(assert.AnError)

	user, err := userRepo.FindByEmail(context.Background(), "test@example.com")

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectUserWithRole(mock sqlmock.Sqlmock, id uint, portfolioID any) {
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "hashed_password", "role_id", "portfolio_id"}).
			AddRow(id, "u@example.com", "u", "h", 1, portfolioID))
	mock.ExpectQuery(`SELECT \* FROM "roles" WHERE "roles"."id" = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role_name"}).AddRow(1, model.RoleNameUser))
}

func TestUserRepository_GetByID_LoadsRole(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	expectUserWithRole(mock, 4, 2)

	user, err := userRepo.GetByID(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, model.RoleNameUser, user.Role.RoleName)
	require.NotNil(t, user.PortfolioID)
	assert.Equal(t, model.Actor{UserID: 4, RoleName: model.RoleNameUser, PortfolioID: user.PortfolioID}, user.Actor())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_PortfolioOnlyOnce(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	expectUserWithRole(mock, 4, 2)

	other := uint(9)
	_, err := userRepo.Update(context.Background(), 4, repository.UserUpdate{PortfolioID: &other})

	var ce *repository.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "portfolio_id", ce.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_FirstPortfolio(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	expectUserWithRole(mock, 4, nil)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "portfolio_id"=\$1 WHERE id = \$2`).
		WithArgs(2, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectUserWithRole(mock, 4, 2)

	p := uint(2)
	user, err := userRepo.Update(context.Background(), 4, repository.UserUpdate{PortfolioID: &p})

	require.NoError(t, err)
	assert.Equal(t, uint(2), *user.PortfolioID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := userRepo.GetByID(context.Background(), 42)

	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
