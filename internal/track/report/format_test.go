package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatHMS(t *testing.T) {
	cases := []struct {
		seconds int64
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{60, "00:01:00"},
		{3599, "00:59:59"},
		{3600, "01:00:00"},
		{7800, "02:10:00"},
		{86400, "24:00:00"},
		{360000, "100:00:00"},
		{-5, "00:00:00"},
	}

	for _, c := range cases {
		require.Equal(t, c.want, FormatHMS(c.seconds), "seconds=%d", c.seconds)
	}
}

func TestFormatHoursMinutes(t *testing.T) {
	cases := []struct {
		seconds int64
		want    string
	}{
		{0, "0h 00m"},
		{59, "0h 00m"},
		{60, "0h 01m"},
		{3600, "1h 00m"},
		{5400, "1h 30m"},
		{7800, "2h 10m"},
		{3659, "1h 00m"},
		{90060, "25h 01m"},
		{-30, "0h 00m"},
	}

	for _, c := range cases {
		require.Equal(t, c.want, FormatHoursMinutes(c.seconds), "seconds=%d", c.seconds)
	}
}
