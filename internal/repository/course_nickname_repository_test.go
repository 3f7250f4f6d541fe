package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/canvas-gateway-api/internal/models"
)

func TestCourseNicknameRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseNicknameRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"user_id", "course_id", "nickname", "updated_at"}).
		AddRow("u1", int64(101), "Bio", now).
		AddRow("u1", int64(202), "Calc", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, course_id, nickname, updated_at FROM course_nicknames WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnRows(rows)

	nicknames, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, nicknames, 2)
	assert.Equal(t, int64(202), nicknames[1].CourseID)
	assert.Equal(t, "Calc", nicknames[1].Nickname)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseNicknameRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseNicknameRepository(db)

	mock.ExpectExec("INSERT INTO course_nicknames").
		WithArgs("u1", int64(101), "Bio", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	nickname := &models.CourseNickname{UserID: "u1", CourseID: 101, Nickname: "Bio"}
	require.NoError(t, repo.Upsert(context.Background(), nickname))
	assert.False(t, nickname.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseNicknameRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseNicknameRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_nicknames WHERE user_id = $1 AND course_id = $2")).
		WithArgs("u1", int64(101)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_nicknames WHERE user_id = $1 AND course_id = $2")).
		WithArgs("u1", int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), "u1", 101)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), "u1", 999)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
