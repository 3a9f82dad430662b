package cases

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/delbarteam/delbar-api/internal/models"
)

// Банки значений для генерации анкеты-заглушки. Тексты продуктовые,
// на фарси, сохранены из исходной версии каталога.
var (
	bankNames = []string{
		"سارا احمدی", "مریم کریمی", "نیلوفر رضایی", "الناز محمدی", "نگار حسینی",
		"پریسا علیزاده", "شیدا مرادی", "یاسمین صادقی", "آناهیتا حیدری", "ترانه نوری",
	}

	bankLocations = []string{
		"تهران", "اصفهان", "شیراز", "مشهد", "تبریز", "کرج", "قم", "اهواز", "کرمان", "رشت",
	}

	bankSkinColors = []string{"روشن", "متوسط", "گندمی", "برنزه"}

	bankBodyTypes = []string{"لاغر", "متوسط", "پرقدرت", "ورزشی"}

	bankTraits = []string{"مهربان", "صمیمی", "شاد", "آرام", "فعال", "خوش‌صحبت", "باهوش", "خلاق"}

	bankExperienceLevels = []string{"مبتدی", "متوسط", "با تجربه", "حرفه‌ای"}

	bankEducations = []string{"دیپلم", "کاردانی", "کارشناسی", "کارشناسی ارشد"}

	bankInterests = []string{"سینما", "مطالعه", "ورزش", "موسیقی", "نقاشی", "آشپزی", "سفر", "عکاسی"}

	bankDescriptions = []string{
		"سلام! من کاربر جدیدی هستم که به تازگی عضو شده‌ام. امیدوارم بتونیم رابطه خوبی داشته باشیم.",
		"با سلام، دوست دارم با افراد جدید آشنا بشم و تجربه‌های خوبی رو با هم بسازیم.",
		"سلام عزیزان! من فردی مهربان و صمیمی هستم که دوست دارم در محیطی امن و دوستانه باشم.",
		"با احترام، به دنبال رابطه‌ای متقابل و محترمانه هستم. امیدوارم بتونیم همدیگه رو درک کنیم.",
		"سلام! من فردی هستم که ارزش زیادی برای احترام متقابل و تفاهم قائل هستم.",
	}

	bankComments = []models.CaseComment{
		{Name: "کاربر راضی", Comment: "تجربه فوق‌العاده‌ای بود! خیلی راضی بودم", Rating: 5, Date: "1403/08/15"},
		{Name: "مشتری دائمی", Comment: "کیس فوق‌العاده و قابل اعتماد. پیشنهاد می‌کنم", Rating: 5, Date: "1403/08/10"},
		{Name: "کاربر جدید", Comment: "تجربه خوبی بود، ممنون", Rating: 4, Date: "1403/08/08"},
		{Name: "مشتری قدیمی", Comment: "همیشه از خدمات راضی بوده‌ام", Rating: 5, Date: "1403/08/05"},
		{Name: "کاربر عادی", Comment: "قابل اعتماد و مهربان", Rating: 4, Date: "1403/08/01"},
	}
)

func pick(bank []string) string {
	return bank[rand.Intn(len(bank))]
}

// pickSet выбирает от 2 до 4 уникальных значений из банка
func pickSet(bank []string) []string {
	n := rand.Intn(3) + 2
	if n > len(bank) {
		n = len(bank)
	}

	selected := make([]string, 0, n)
	seen := make(map[string]bool)
	for len(selected) < n {
		v := pick(bank)
		if seen[v] {
			continue
		}
		seen[v] = true
		selected = append(selected, v)
	}
	return selected
}

// GenerateCase собирает полную анкету-заглушку для запрошенного ID.
// Каталог никогда не отвечает "анкета не найдена": отсутствующая запись
// подменяется сгенерированной, которую вызывающий может сохранить в базу.
func GenerateCase(id int, now time.Time) *models.Case {
	details, _ := json.Marshal(map[string]any{
		"education":         pick(bankEducations),
		"relationship_type": "صیغه موقت",
		"interests":         pickSet(bankInterests),
	})

	comments := make([]models.CaseComment, rand.Intn(4)+2)
	copy(comments, bankComments)

	return &models.Case{
		ID:       id,
		Name:     fmt.Sprintf("کیس شماره %d - %s", id, pick(bankNames)),
		Image: fmt.Sprintf(
			"https://readdy.ai/api/search-image?query=Beautiful%%20Persian%%20woman%%20portrait%%20elegant%%20style%%20professional&width=400&height=600&seq=%d&orientation=portrait", id),
		Location:          pick(bankLocations),
		Category:          "temporary",
		Price:             500000,
		Age:               rand.Intn(15) + 20,
		Height:            fmt.Sprintf("%d سانتی متر", rand.Intn(20)+155),
		SkinColor:         pick(bankSkinColors),
		BodyType:          pick(bankBodyTypes),
		PersonalityTraits: pickSet(bankTraits),
		ExperienceLevel:   pick(bankExperienceLevels),
		Description:       pick(bankDescriptions),
		Status:            models.CaseStatusActive,
		Verified:          true,
		Online:            true,
		IsPersistent:      true,
		Details:           details,
		Comments:          comments,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
