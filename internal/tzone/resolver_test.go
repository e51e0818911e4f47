package tzone

import (
	"testing"
	"time"

	t "github.com/planwx/planwx-core/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFinder struct {
	zone string
}

func (s stubFinder) GetTimezoneName(lng, lat float64) string {
	return s.zone
}

func TestResolvePrefersExplicitZone(tt *testing.T) {
	r := New(FinderOption(stubFinder{zone: "Asia/Tokyo"}))
	assert.Equal(tt, "Europe/Helsinki", r.Resolve(60.17, 24.94, "Europe/Helsinki"))
}

func TestResolveDerivesFromCoordinates(tt *testing.T) {
	r := New(FinderOption(stubFinder{zone: "Asia/Tokyo"}))
	assert.Equal(tt, "Asia/Tokyo", r.Resolve(35.68, 139.69, ""))
}

func TestResolveFallsBackToUTC(tt *testing.T) {
	r := New(FinderOption(stubFinder{zone: ""}))
	assert.Equal(tt, "UTC", r.Resolve(0, 0, ""))
}

func TestResolveUnloadableOverrideFallsThrough(tt *testing.T) {
	r := New(FinderOption(stubFinder{zone: "Asia/Tokyo"}))
	assert.Equal(tt, "Asia/Tokyo", r.Resolve(35.68, 139.69, "Not/AZone"))
}

func TestLocalWindowToUTCNineHoursAhead(tt *testing.T) {
	r := New(FinderOption(stubFinder{zone: "Asia/Tokyo"}))

	win, err := r.LocalWindowToUTC(t.Schedule{
		Date:       "2024-06-10",
		StartLocal: "08:00",
		EndLocal:   "17:00",
	}, 35.68, 139.69)
	require.NoError(tt, err)

	assert.Equal(tt, "Asia/Tokyo", win.Timezone)
	assert.Equal(tt, time.Date(2024, 6, 9, 23, 0, 0, 0, time.UTC), win.StartUTC)
	assert.Equal(tt, time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC), win.EndUTC)
	assert.Equal(tt, "08:00", win.StartLocal)
	assert.Equal(tt, "17:00", win.EndLocal)
}

func TestLocalWindowToUTCAppliesDefaults(tt *testing.T) {
	fixed := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	r := New(
		FinderOption(stubFinder{zone: ""}),
		NowOption(func() time.Time { return fixed }),
	)

	win, err := r.LocalWindowToUTC(t.Schedule{}, 0, 0)
	require.NoError(tt, err)

	assert.Equal(tt, "UTC", win.Timezone)
	assert.Equal(tt, time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC), win.StartUTC)
	assert.Equal(tt, time.Date(2024, 6, 10, 17, 0, 0, 0, time.UTC), win.EndUTC)
}

func TestLocalWindowToUTCRejectsBadTimes(tt *testing.T) {
	r := New(FinderOption(stubFinder{zone: ""}))

	_, err := r.LocalWindowToUTC(t.Schedule{
		Date:       "2024-06-10",
		StartLocal: "25:99",
	}, 0, 0)
	require.Error(tt, err)

	var inputErr *t.InvalidInputError
	assert.ErrorAs(tt, err, &inputErr)
}

func TestLocalWindowEndBeforeStartPassesThrough(tt *testing.T) {
	r := New(FinderOption(stubFinder{zone: ""}))

	win, err := r.LocalWindowToUTC(t.Schedule{
		Date:       "2024-06-10",
		StartLocal: "22:00",
		EndLocal:   "03:00",
	}, 0, 0)
	require.NoError(tt, err)
	assert.True(tt, win.EndUTC.Before(win.StartUTC))
}

func TestLocalDates(tt *testing.T) {
	same := t.ResolvedWindow{
		Timezone: "UTC",
		StartUTC: time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC),
		EndUTC:   time.Date(2024, 6, 10, 17, 0, 0, 0, time.UTC),
	}
	assert.Equal(tt, []string{"2024-06-10"}, LocalDates(same))

	crossing := t.ResolvedWindow{
		Timezone: "UTC",
		StartUTC: time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC),
		EndUTC:   time.Date(2024, 6, 11, 2, 0, 0, 0, time.UTC),
	}
	assert.Equal(tt, []string{"2024-06-10", "2024-06-11"}, LocalDates(crossing))
}
