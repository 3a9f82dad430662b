package chatflow

import "time"

// AccessCode — единый код входа в чат для всего сервиса. Известное
// упрощение авторизации, сохранено как в исходной версии: код выдается
// после оплаты и не привязан к конкретной анкете.
const AccessCode = "Cod_4961"

// Тайминги сценария. Константы, не конфигурация: поведение должно
// воспроизводиться один в один.
const (
	// ThinkDelay — пауза "обдумывания" перед ответом собеседницы
	ThinkDelay = 120 * time.Second
	// TypingDelay — длительность индикатора набора текста
	TypingDelay = 3 * time.Second
	// ConfirmDelay — пауза перед подтверждающим сообщением после условий
	ConfirmDelay = 30 * time.Second
	// ApprovalDelay — пауза перед системным сообщением об одобрении
	ApprovalDelay = 2 * time.Second
	// NoticeDelay — пауза перед уведомлением о дальнейших шагах
	NoticeDelay = 2 * time.Second
	// FinalNoticeDelay — пауза перед показом финального предупреждения
	FinalNoticeDelay = 5 * time.Second
	// CloseDelay — пауза до закрытия чата после финального предупреждения
	CloseDelay = 10 * time.Second
	// SaveInterval — периодичность фонового сохранения активной сессии
	SaveInterval = 2 * time.Second
	// SessionRetention — срок хранения сохраненной сессии
	SessionRetention = 7 * 24 * time.Hour
)

// MinPhoneLength — минимальная длина номера телефона
const MinPhoneLength = 11

// Реплики сценария. Тексты продуктовые, сохранены из исходной версии.
const (
	scriptGreeting     = "سلام! من %s هستم! مرسی که منو انتخاب کردی 💕 لطفاً منتظر بمون، به زودی آنلاین میشم 😊"
	scriptPreferences  = "سلام! چه نوع رابطه‌ای از من میخوای؟؟ 🤔💭"
	scriptTerms        = "اوکیه عزیزم! فقط من شبا نمیتونم بیام ولی روزا اوکیه 😊 تایمم میتونم از ساعت ۱۰ صبح تا ۲۲:۰۰ باهات در ارتباط باشم. اگه هم میخوای که شب بیام، خودم مکان دارم - مکان غریبه رو شرمنده... بار اول نمیتونم بیام 🙂💞 اگر اوکی‌ای با شرایطم بگو که تایید ارتباط رو بدم و بعدش با هم در ارتباط باشیم واسه قرار!"
	scriptConfirmation = "من تایید ارتباط رو دادم! تو هم تایید کن که با هم در ارتباط باشیم 😊 فقط حتماً حتماً وقتی شمارمو از مجموعه گرفتی، اگر خواستی زنگ بزنی قبلش بگو که از طرف این مجموعه‌ای وگرنه جواب نمیدم... 🙂📞"
	scriptApproved     = "✅ ارتباط شما با کیس مورد نظر تایید شد! لطفاً شماره تماس خود را وارد کنید:"
	scriptPhoneSuccess = "🥇 Success Phone: %s"
	scriptFollowUp     = "تا ساعات آینده همکاران ما برای رزرو با شما تماس گرفته خواهد شد. لطفاً در دسترس باشید... رزرو رابطه یا از طریق تماس یا از طریق پیامک به شما اعلام خواهد شد."

	labelOnline   = "آنلاین"
	labelLastSeen = "%d دقیقه پیش"

	// notifyChatStarted — заголовок лога оператору при успешном сборе номера
	notifyChatStarted = "شروع چت موفق"
)
