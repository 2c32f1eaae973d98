package repository_test

import (
	"context"
	"testing"

	"taskboard/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectTaskAndUserExist(mock sqlmock.Sqlmock, taskID, userID uint) {
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks" WHERE id = \$1`).
		WithArgs(taskID).
		WillReturnRows(countRows(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE id = \$1`).
		WithArgs(userID).
		WillReturnRows(countRows(1))
}

func TestTaskAssignmentRepository_Create_New(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskAssignmentRepository(gormDB)

	expectTaskAndUserExist(mock, 10, 20)
	mock.ExpectQuery(`SELECT \* FROM "task_assignments" WHERE task_id = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "task_id", "user_id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "task_assignments"`).
		WithArgs(10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	a, created, err := repo.Create(context.Background(), 10, 20)

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint(1), a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskAssignmentRepository_Create_Idempotent(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskAssignmentRepository(gormDB)

	// повторное назначение возвращает существующую запись без INSERT
	expectTaskAndUserExist(mock, 10, 20)
	mock.ExpectQuery(`SELECT \* FROM "task_assignments" WHERE task_id = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "task_id", "user_id"}).AddRow(1, 10, 20))

	a, created, err := repo.Create(context.Background(), 10, 20)

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, uint(1), a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskAssignmentRepository_Create_UnknownTask(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskAssignmentRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks" WHERE id = \$1`).
		WithArgs(10).
		WillReturnRows(countRows(0))

	_, _, err := repo.Create(context.Background(), 10, 20)

	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskAssignmentRepository_BulkCreate_SkipsExisting(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskAssignmentRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "task_assignments" WHERE task_id = \$1 AND user_id IN \(\$2,\$3\)`).
		WithArgs(10, 20, 21).
		WillReturnRows(sqlmock.NewRows([]string{"id", "task_id", "user_id"}).AddRow(1, 10, 20))
	mock.ExpectQuery(`INSERT INTO "task_assignments"`).
		WithArgs(10, 21).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	out, err := repo.BulkCreate(context.Background(), 10, []uint{20, 21, 20})

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, uint(21), out[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskAssignmentRepository_ReplaceUsers(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskAssignmentRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "user_id" FROM "task_assignments" WHERE task_id = \$1`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(20).AddRow(21))
	mock.ExpectExec(`DELETE FROM "task_assignments" WHERE task_id = \$1 AND user_id IN \(\$2\)`).
		WithArgs(10, 20).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "task_assignments"`).
		WithArgs(10, 22).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectCommit()

	added, removed, err := repo.ReplaceUsers(context.Background(), 10, []uint{21, 22})

	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskAssignmentRepository_DeleteAllForTask(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskAssignmentRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "task_assignments" WHERE task_id = \$1`).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	removed, err := repo.DeleteAllForTask(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskAssignmentRepository_UsersOfTasks(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskAssignmentRepository(gormDB)

	mock.ExpectQuery(`JOIN users ON users\.id = task_assignments\.user_id WHERE task_assignments\.task_id IN \(\$1,\$2\)`).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"assignment_id", "task_id", "user_id", "username", "email", "discord_id"}).
			AddRow(7, 1, 20, "alice", "a@example.com", "111").
			AddRow(8, 2, 21, "bob", "b@example.com", nil))

	users, err := repo.UsersOfTasks(context.Background(), []uint{1, 2})

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, uint(1), users[0].TaskID)
	require.NotNil(t, users[0].DiscordID)
	assert.Equal(t, "111", *users[0].DiscordID)
	assert.Nil(t, users[1].DiscordID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskAssignmentRepository_UsersOfTasks_Empty(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskAssignmentRepository(gormDB)

	users, err := repo.UsersOfTasks(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}
