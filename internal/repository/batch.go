package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxIDsPerQuery caps the ids bound into one IN clause. SQLite allows 32766
// bind variables per statement and Postgres 65535.
const maxIDsPerQuery = 1000

// findIn loads the rows whose column is one of ids, issuing one query per
// chunk of maxIDsPerQuery ids. scope adds the remaining conditions and
// ordering; order holds within a chunk only.
func findIn[T any](ctx context.Context, root *gorm.DB, column string, ids []uuid.UUID, scope func(*gorm.DB) *gorm.DB) ([]T, error) {
	out := []T{}
	for start := 0; start < len(ids); start += maxIDsPerQuery {
		end := min(start+maxIDsPerQuery, len(ids))

		query := GetDB(ctx, root).Where(column+" IN ?", ids[start:end])
		if scope != nil {
			query = query.Scopes(scope)
		}
		var rows []T
		if err := query.Find(&rows).Error; err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}
