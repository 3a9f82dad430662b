package verification

import (
	"regexp"
	"strings"
)

var (
	digitsOnly  = regexp.MustCompile(`^\d{10}$`)
	namePattern = regexp.MustCompile(`^[a-zA-Zآ-ی\s]+$`)
	phoneStrip  = strings.NewReplacer(" ", "", "-", "")
)

// ValidNationalID проверяет иранский национальный код: 10 цифр,
// не из одинаковых цифр, контрольная цифра по модулю 11.
func ValidNationalID(id string) bool {
	if !digitsOnly.MatchString(id) {
		return false
	}

	same := true
	for i := 1; i < len(id); i++ {
		if id[i] != id[0] {
			same = false
			break
		}
	}
	if same {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(id[i]-'0') * (10 - i)
	}

	check := int(id[9] - '0')
	remainder := sum % 11

	if remainder < 2 {
		return check == remainder
	}
	return check == 11-remainder
}

// NormalizePhone убирает пробелы и дефисы и проверяет мобильный формат
// 09xxxxxxxxx. Возвращает нормализованный номер.
func NormalizePhone(phone string) (string, bool) {
	clean := phoneStrip.Replace(phone)
	if len(clean) != 11 || !strings.HasPrefix(clean, "09") {
		return "", false
	}
	for _, r := range clean {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return clean, true
}

// ValidFullName проверяет полное имя: минимум два слова по две буквы,
// только буквы фарси или латиницы
func ValidFullName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if len([]rune(trimmed)) < 3 {
		return false
	}

	words := strings.Fields(trimmed)
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		if len([]rune(w)) < 2 {
			return false
		}
	}

	return namePattern.MatchString(trimmed)
}
