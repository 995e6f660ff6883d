package program

import (
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
	"github.com/m04kA/SMC-WellnessBooking/pkg/ptr"
)

type fakeRow struct {
	values []interface{}
}

// Scan раскладывает заранее подготовленные значения по указателям
func (r fakeRow) Scan(dest ...interface{}) error {
	for i, d := range dest {
		switch v := d.(type) {
		case sql.Scanner:
			if err := v.Scan(r.values[i]); err != nil {
				return err
			}
		case *string:
			*v = r.values[i].(string)
		case *domain.ScheduleType:
			*v = domain.ScheduleType(r.values[i].(string))
		case *int:
			*v = r.values[i].(int)
		case *bool:
			*v = r.values[i].(bool)
		case *[]byte:
			*v = r.values[i].([]byte)
		case *time.Time:
			*v = r.values[i].(time.Time)
		}
	}
	return nil
}

func TestScanProgram(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	row := fakeRow{values: []interface{}{
		"7d3c5a8e-2f51-4b7e-9a44-0c3d1a1f5e10",
		"0b7a6d52-6c39-4f5f-8d8f-3a4c2f1e9b21",
		"Massage",
		"Chair massage",
		"health",
		"#ff0000",
		"spa",
		nil,
		"recurring",
		[]byte("{1,3,5}"),
		nil,
		nil,
		[]byte(`[{"time":"09:00","enabled":true},{"time":"10:00","enabled":false}]`),
		30,
		2,
		14,
		int64(3),
		nil,
		true,
		now,
		now,
	}}

	p, err := scanProgram(row)
	require.NoError(t, err)

	assert.Equal(t, "Massage", p.Name)
	assert.Equal(t, domain.ScheduleRecurring, p.ScheduleType)
	assert.Nil(t, p.ImageURL)
	assert.Equal(t, []int{1, 3, 5}, p.Weekdays)
	assert.Nil(t, p.StartDate)
	require.Len(t, p.Slots, 2)
	assert.Equal(t, "09:00", p.Slots[0].Time.String())
	assert.False(t, p.Slots[1].Enabled)
	assert.Equal(t, ptr.Ptr(3), p.MaxPerUser)
	assert.Nil(t, p.MaxPerUserPerDay)
	assert.True(t, p.Active)
}

func TestArgs(t *testing.T) {
	assert.Equal(t, pq.Int64Array{0, 6}, weekdaysArg([]int{0, 6}))
	assert.Nil(t, dateArg(nil))
	assert.Equal(t, "2024-06-05", dateArg(ptr.Ptr(time.Date(2024, 6, 5, 22, 0, 0, 0, time.UTC))))
	assert.Nil(t, nullInt(sql.NullInt64{}))
	assert.Equal(t, ptr.Ptr(7), nullInt(sql.NullInt64{Int64: 7, Valid: true}))

	d := nullDate(sql.NullTime{Time: time.Date(2024, 6, 5, 0, 0, 0, 0, time.FixedZone("X", 3600)), Valid: true})
	require.NotNil(t, d)
	assert.Equal(t, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), *d)
}
