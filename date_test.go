package fatinspect

import (
	"testing"
	"time"
)

func TestDOSTime(t *testing.T) {
	tests := []struct {
		name  string
		date  uint16
		clock uint16
		want  time.Time
	}{
		{
			name:  "epoch",
			date:  1<<5 | 1,
			clock: 0,
			want:  time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "some date",
			date:  41<<9 | 3<<5 | 14,
			clock: 13<<11 | 45<<5 | 15,
			want:  time.Date(2021, time.March, 14, 13, 45, 30, 0, time.UTC),
		},
		{
			name:  "last representable second",
			date:  127<<9 | 12<<5 | 31,
			clock: 23<<11 | 59<<5 | 29,
			want:  time.Date(2107, time.December, 31, 23, 59, 58, 0, time.UTC),
		},
		{
			name: "unset",
			want: time.Time{},
		},
		{
			name:  "day zero",
			date:  40<<9 | 5<<5,
			clock: 12 << 11,
			want:  time.Time{},
		},
		{
			name:  "month zero",
			date:  40<<9 | 7,
			clock: 12 << 11,
			want:  time.Time{},
		},
		{
			name:  "hour out of range is clamped",
			date:  40<<9 | 5<<5 | 7,
			clock: 25 << 11,
			want:  time.Date(2020, time.May, 7, 23, 59, 59, 0, time.UTC),
		},
		{
			name:  "minute out of range is clamped",
			date:  40<<9 | 5<<5 | 7,
			clock: 10<<11 | 61<<5,
			want:  time.Date(2020, time.May, 7, 23, 59, 59, 0, time.UTC),
		},
		{
			name:  "seconds out of range are clamped",
			date:  40<<9 | 5<<5 | 7,
			clock: 10<<11 | 30,
			want:  time.Date(2020, time.May, 7, 23, 59, 59, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DOSTime(tt.date, tt.clock); !got.Equal(tt.want) {
				t.Errorf("DOSTime() = %v, want %v", got, tt.want)
			}
		})
	}
}
