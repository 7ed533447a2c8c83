package fatinspect

import (
	"time"
)

// DOSTime combines a FAT directory entry date and time stamp into a UTC time.
//
// The date is a 16 bit field relative to the MS-DOS epoch 1980-01-01:
//  Bits 0–4: Day of month, 1–31.
//  Bits 5–8: Month of year, 1–12.
//  Bits 9–15: Count of years from 1980, 0–127.
// The time has a granularity of 2 seconds:
//  Bits 0–4: 2-second count, 0–29.
//  Bits 5–10: Minutes, 0–59.
//  Bits 11–15: Hours, 0–23.
//
// A day or month of 0 is invalid, in that case time.Time{} is returned so
// that IsZero can be used. Out of range time values are clamped to 23:59:59.
func DOSTime(date, clock uint16) time.Time {
	day := int(date & 0x1F)
	month := time.Month(date & 0x1E0 >> 5)
	year := 1980 + int(date&0xFE00>>9)

	if day == 0 || month == 0 {
		return time.Time{}
	}

	seconds := int(clock&0x1F) * 2
	minutes := int(clock & 0x7E0 >> 5)
	hours := int(clock & 0xF800 >> 11)

	if hours > 23 || minutes > 59 || seconds > 59 {
		hours, minutes, seconds = 23, 59, 59
	}

	// time.Date normalizes a month above 12 into the following year.
	return time.Date(year, month, day, hours, minutes, seconds, 0, time.UTC)
}
