package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	other := errors.New("connection reset")
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"record not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"wrapped record not found", fmt.Errorf("get match: %w", gorm.ErrRecordNotFound), ErrNotFound},
		{"translated duplicate", gorm.ErrDuplicatedKey, ErrDuplicate},
		{"postgres unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "idx_prediction_user_match"}, ErrDuplicate},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), ErrDuplicate},
		{"other postgres error", &pgconn.PgError{Code: "23503"}, nil},
		{"unrelated", other, other},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translate(tc.in)
			switch {
			case tc.in == nil:
				assert.NoError(t, got)
			case tc.want == nil:
				// passed through untouched
				assert.Same(t, tc.in, got)
			default:
				assert.ErrorIs(t, got, tc.want)
			}
		})
	}
}
