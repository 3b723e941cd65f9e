package app

import "time"

// ymd formats a time as the NEIS-style YYYYMMDD date string.
func ymd(t time.Time) string {
	return t.Format("20060102")
}

// mealsHorizon is how far ahead meal menus are fetched.
const mealsHorizonDays = 7

// endOfMonthPlus2 returns the last day of the month two months after now,
// the far edge of the official event window.
func endOfMonthPlus2(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+3, 0, 0, 0, 0, 0, now.Location())
}
