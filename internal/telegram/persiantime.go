package telegram

import (
	"fmt"
	"strings"
	"time"
)

// PersianDigits заменяет западные цифры на персидские (۰-۹)
func PersianDigits(s string) string {
	var out strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out.WriteRune(rune('۰' + (r - '0')))
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// FormatDateTime форматирует момент времени как fa-IR toLocaleString
// в исходной версии: дата по солнечной хиджре, персидские цифры,
// месяц и день без ведущих нулей.
func FormatDateTime(t time.Time) string {
	jy, jm, jd := toJalali(t.Year(), int(t.Month()), t.Day())
	return PersianDigits(fmt.Sprintf("%d/%d/%d, %d:%02d:%02d",
		jy, jm, jd, t.Hour(), t.Minute(), t.Second()))
}

// toJalali переводит григорианскую дату в солнечную хиджру.
// Арифметика 33-летних циклов, без таблиц високосных лет.
func toJalali(gy, gm, gd int) (jy, jm, jd int) {
	gdm := [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

	gy2 := gy
	if gm > 2 {
		gy2 = gy + 1
	}
	days := 355666 + 365*gy + (gy2+3)/4 - (gy2+99)/100 + (gy2+399)/400 + gd + gdm[gm-1]

	jy = -1595 + 33*(days/12053)
	days %= 12053
	jy += 4 * (days / 1461)
	days %= 1461
	if days > 365 {
		jy += (days - 1) / 365
		days = (days - 1) % 365
	}

	if days < 186 {
		return jy, 1 + days/31, 1 + days%31
	}
	return jy, 7 + (days-186)/30, 1 + (days-186)%30
}
