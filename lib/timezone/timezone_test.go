package timezone

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNowUsesCourseLocalTimezone(t *testing.T) {
	require.Equal(t, "America/Los_Angeles", Location.String())
	require.Equal(t, Location.String(), Now().Location().String())
}

func TestToday(t *testing.T) {
	today := Today()

	require.Equal(t, 0, today.Hour())
	require.Equal(t, 0, today.Minute())
	require.Equal(t, 0, today.Second())
	require.Equal(t, Location.String(), today.Location().String())
}
