package pgrepo

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/money"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestNumericConversions(t *testing.T) {
	n := decimalToNumeric(money.MustParse("499.95"))
	assert.True(t, n.Valid)
	assert.Equal(t, int32(-2), n.Exp)
	assert.Equal(t, big.NewInt(49995), n.Int)

	assert.Equal(t, "499.95", numericToDecimal(n).String())
	assert.True(t, numericToDecimal(pgtype.Numeric{}).IsZero())
	assert.Nil(t, numericToDecimalPtr(pgtype.Numeric{}))
	assert.Nil(t, numericToDecimalPtr(pgtype.Numeric{Valid: true, NaN: true}))
}

func TestThresholdConversions(t *testing.T) {
	assert.False(t, thresholdToNumeric(domain.InheritThreshold()).Valid)
	assert.True(t, numericToThreshold(pgtype.Numeric{}).IsInherited())

	n := thresholdToNumeric(domain.OverrideThreshold(money.MustParse("0")))
	assert.True(t, n.Valid)
	v, ok := numericToThreshold(n).Value()
	assert.True(t, ok)
	assert.True(t, v.IsZero())
}

func TestUUIDConversions(t *testing.T) {
	id := "6f1c1a5e-6a4e-4e55-9d55-3f0e8b1f8a11"
	assert.Equal(t, id, uuidToString(stringToUUID(id)))
	assert.False(t, stringToUUID("not-a-uuid").Valid)
	assert.Nil(t, uuidToStringPtr(pgtype.UUID{}))
	assert.Len(t, stringsToUUIDs([]string{id, "bad", ""}), 1)
}

func TestTimeConversions(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Nil(t, pgtimeToTimePtr(pgtype.Timestamptz{}))
	assert.Equal(t, now, *pgtimeToTimePtr(timePtrToPgtime(&now)))
	assert.False(t, timePtrToPgtime(nil).Valid)
	assert.True(t, pgtimeToTime(pgtype.Timestamptz{}).IsZero())
}

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(pgx.ErrNoRows), domain.ErrNotFound)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: pgUniqueViolation}), domain.ErrConflict)

	other := errors.New("boom")
	assert.Equal(t, other, mapErr(other))

	assert.ErrorIs(t, expectRows(pgconn.NewCommandTag("DELETE 0"), nil), domain.ErrNotFound)
	assert.NoError(t, expectRows(pgconn.NewCommandTag("DELETE 1"), nil))
}
