package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/canvas-gateway-api/internal/models"
)

// CourseNicknameRepository persists custom course names per user.
type CourseNicknameRepository struct {
	db *sqlx.DB
}

// NewCourseNicknameRepository constructs the repository.
func NewCourseNicknameRepository(db *sqlx.DB) *CourseNicknameRepository {
	return &CourseNicknameRepository{db: db}
}

// ListByUser returns every nickname for userID ordered by course.
func (r *CourseNicknameRepository) ListByUser(ctx context.Context, userID string) ([]models.CourseNickname, error) {
	const query = `SELECT user_id, course_id, nickname, updated_at FROM course_nicknames WHERE user_id = $1 ORDER BY course_id ASC`
	var nicknames []models.CourseNickname
	if err := r.db.SelectContext(ctx, &nicknames, query, userID); err != nil {
		return nil, fmt.Errorf("list course nicknames: %w", err)
	}
	return nicknames, nil
}

// Upsert inserts or replaces the nickname for (user, course).
func (r *CourseNicknameRepository) Upsert(ctx context.Context, nickname *models.CourseNickname) error {
	const query = `INSERT INTO course_nicknames (user_id, course_id, nickname, updated_at)
VALUES (:user_id, :course_id, :nickname, :updated_at)
ON CONFLICT (user_id, course_id)
DO UPDATE SET nickname = EXCLUDED.nickname, updated_at = EXCLUDED.updated_at`
	nickname.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, nickname); err != nil {
		return fmt.Errorf("upsert course nickname: %w", err)
	}
	return nil
}

// Delete removes a nickname. It reports whether a row existed.
func (r *CourseNicknameRepository) Delete(ctx context.Context, userID string, courseID int64) (bool, error) {
	const query = `DELETE FROM course_nicknames WHERE user_id = $1 AND course_id = $2`
	res, err := r.db.ExecContext(ctx, query, userID, courseID)
	if err != nil {
		return false, fmt.Errorf("delete course nickname: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("course nickname rows affected: %w", err)
	}
	return affected > 0, nil
}
