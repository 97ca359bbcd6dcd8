package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T, clock time.Time) *Resolver {
	t.Helper()
	r, err := New("+07:00", "1900-01-01")
	require.NoError(t, err)
	r.Now = func() time.Time { return clock }
	return r
}

func TestResolverDayBoundaries(t *testing.T) {
	r := newTestResolver(t, time.Now())

	start, err := r.StartOfDay("2024-03-10")
	require.NoError(t, err)
	end, err := r.EndOfDay("2024-03-10")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 9, 17, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 10, 16, 59, 59, 999_000_000, time.UTC), end)
	assert.Equal(t, time.UTC, start.Location())
	assert.True(t, !start.After(end))
	assert.Equal(t, "2024-03-10", r.CivilDate(start))
	assert.Equal(t, "2024-03-10", r.CivilDate(end))
}

func TestResolverBoundariesRoundTrip(t *testing.T) {
	r := newTestResolver(t, time.Now())
	day := time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		d := day.AddDate(0, 0, i).Format("2006-01-02")
		start, err := r.StartOfDay(d)
		require.NoError(t, err)
		end, err := r.EndOfDay(d)
		require.NoError(t, err)
		if start.After(end) {
			t.Fatalf("%s: start %s after end %s", d, start, end)
		}
		if r.CivilDate(start) != d || r.CivilDate(end) != d {
			t.Fatalf("%s does not round trip: %s / %s", d, r.CivilDate(start), r.CivilDate(end))
		}
	}
}

func TestResolverIgnoresProcessTimezone(t *testing.T) {
	original := time.Local
	t.Cleanup(func() { time.Local = original })

	r := newTestResolver(t, time.Now())
	time.Local = time.FixedZone("far-west", -11*3600)
	a, err := r.StartOfDay("2024-01-01")
	require.NoError(t, err)
	time.Local = time.FixedZone("far-east", 13*3600)
	b, err := r.StartOfDay("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResolverToday(t *testing.T) {
	// 18:30 UTC is already the next day at +07:00.
	r := newTestResolver(t, time.Date(2024, 5, 31, 18, 30, 0, 0, time.UTC))
	assert.Equal(t, "2024-06-01", r.Today())

	r.Now = func() time.Time { return time.Date(2024, 5, 31, 16, 59, 59, 0, time.UTC) }
	assert.Equal(t, "2024-05-31", r.Today())
}

func TestResolveRange(t *testing.T) {
	r := newTestResolver(t, time.Now())

	rg, err := r.ResolveRange("", "")
	require.NoError(t, err)
	assert.Nil(t, rg)

	rg, err = r.ResolveRange("2024-01-01", "")
	require.NoError(t, err)
	require.NotNil(t, rg)
	require.NotNil(t, rg.From)
	assert.Nil(t, rg.To)
	assert.Equal(t, time.Date(2023, 12, 31, 17, 0, 0, 0, time.UTC), *rg.From)

	rg, err = r.ResolveRange("", "2024-01-31")
	require.NoError(t, err)
	assert.Nil(t, rg.From)
	require.NotNil(t, rg.To)
	assert.Equal(t, time.Date(2024, 1, 31, 16, 59, 59, 999_000_000, time.UTC), *rg.To)

	rg, err = r.ResolveRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.True(t, rg.Contains(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.False(t, rg.Contains(time.Date(2024, 1, 31, 17, 0, 0, 0, time.UTC)))
}

func TestInvalidDates(t *testing.T) {
	r := newTestResolver(t, time.Now())
	for _, value := range []string{"2024-13-01", "2024-02-30", "24-01-01", "2024/01/01", "2024-1-5", "yesterday", "2024-01-01T00:00:00Z"} {
		_, err := r.StartOfDay(value)
		assert.ErrorIs(t, err, ErrInvalidDateFormat, value)
		_, err = r.ResolveRange("", value)
		assert.ErrorIs(t, err, ErrInvalidDateFormat, value)
	}
}

func TestParseOffset(t *testing.T) {
	loc, err := ParseOffset("-03:30")
	require.NoError(t, err)
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, -(3*3600 + 30*60), offset)

	_, err = ParseOffset("7")
	assert.Error(t, err)
	_, err = ParseOffset("+25:00")
	assert.Error(t, err)
}
