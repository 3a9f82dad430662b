package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToJalali(t *testing.T) {
	cases := []struct {
		gy, gm, gd int
		jy, jm, jd int
	}{
		{2024, 3, 20, 1403, 1, 1},   // Новруз
		{2024, 3, 19, 1402, 12, 29}, // канун Новруза, 1402 невисокосный
		{2025, 6, 1, 1404, 3, 11},
		{2026, 9, 1, 1405, 6, 10},
		{2025, 3, 20, 1403, 12, 30}, // 1403 високосный
	}

	for _, c := range cases {
		jy, jm, jd := toJalali(c.gy, c.gm, c.gd)
		assert.Equal(t, []int{c.jy, c.jm, c.jd}, []int{jy, jm, jd},
			"%d-%02d-%02d", c.gy, c.gm, c.gd)
	}
}

func TestFormatDateTime(t *testing.T) {
	at := time.Date(2025, 6, 1, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "۱۴۰۴/۳/۱۱, ۱۵:۰۴:۰۵", FormatDateTime(at))

	// Часы без ведущего нуля, минуты и секунды с ним
	morning := time.Date(2024, 3, 20, 9, 4, 5, 0, time.UTC)
	assert.Equal(t, "۱۴۰۳/۱/۱, ۹:۰۴:۰۵", FormatDateTime(morning))
}

func TestPersianDigits(t *testing.T) {
	assert.Equal(t, "۱۲۳۴۵۶۷۸۹۰", PersianDigits("1234567890"))
	assert.Equal(t, "کد ۴۲", PersianDigits("کد 42"))
	assert.Equal(t, "", PersianDigits(""))
}
