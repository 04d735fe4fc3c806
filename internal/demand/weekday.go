package demand

import (
	"strings"
	"time"
)

// weekdayNames maps accepted day spellings to weekdays. Sales reports arrive
// with English or Spanish day names, full or three-letter, so both are
// accepted. Accents are stripped before lookup.
var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"mon":       time.Monday,
	"lunes":     time.Monday,
	"lun":       time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"martes":    time.Tuesday,
	"mar":       time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"miercoles": time.Wednesday,
	"mie":       time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"jueves":    time.Thursday,
	"jue":       time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"viernes":   time.Friday,
	"vie":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
	"sabado":    time.Saturday,
	"sab":       time.Saturday,
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
	"domingo":   time.Sunday,
	"dom":       time.Sunday,
}

var accentReplacer = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u")

// ParseWeekday resolves a day name to a weekday. The second return value is
// false for names that match no known spelling.
func ParseWeekday(s string) (time.Weekday, bool) {
	key := accentReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
	d, ok := weekdayNames[key]
	return d, ok
}
