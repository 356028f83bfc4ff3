package processor

import "time"

// validExpiration accepts 0 (no expiration), a day count up to 9999 or a
// real calendar date encoded as MMDDYYYY.
func validExpiration(v uint32) bool {
	if v <= 9999 {
		return true
	}
	month := int(v / 1000000)
	day := int(v / 10000 % 100)
	year := int(v % 10000)
	if month < 1 || month > 12 || day < 1 || year < 2000 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day && int(t.Month()) == month
}
