package i18n

var uzbek = Strings{
	HeaderTitle:      "AI Taqdimot Yaratuvchi",
	ErrorTitle:       "Taqdimot yaratishda xatolik yuz berdi. Iltimos, qaytadan urinib ko'ring.",
	RetryButton:      "Qaytadan urinish",
	GeneratingPlan:   "Taqdimot rejasi tuzilmoqda...",
	GeneratingImages: "Rasmlar yaratilmoqda",
	Generate:         "Yaratish",
	Restart:          "Yangi taqdimot",
	Download:         "Saqlash",
	TopicLabel:       "Mavzu",
	SlideCountLabel:  "Slaydlar soni",
	PlanCountLabel:   "Reja bandlari soni",
	LanguageLabel:    "Til",
	AdditionalInfo:   "Qo'shimcha ma'lumot",
}

var english = Strings{
	HeaderTitle:      "AI Presentation Maker",
	ErrorTitle:       "Something went wrong while creating the presentation. Please try again.",
	RetryButton:      "Try again",
	GeneratingPlan:   "Planning your presentation...",
	GeneratingImages: "Generating images",
	Generate:         "Generate",
	Restart:          "New presentation",
	Download:         "Save",
	TopicLabel:       "Topic",
	SlideCountLabel:  "Number of slides",
	PlanCountLabel:   "Number of outline items",
	LanguageLabel:    "Language",
	AdditionalInfo:   "Additional information",
}

var russian = Strings{
	HeaderTitle:      "AI Генератор Презентаций",
	ErrorTitle:       "При создании презентации произошла ошибка. Пожалуйста, попробуйте ещё раз.",
	RetryButton:      "Повторить",
	GeneratingPlan:   "Составляем план презентации...",
	GeneratingImages: "Создаём изображения",
	Generate:         "Создать",
	Restart:          "Новая презентация",
	Download:         "Сохранить",
	TopicLabel:       "Тема",
	SlideCountLabel:  "Количество слайдов",
	PlanCountLabel:   "Количество пунктов плана",
	LanguageLabel:    "Язык",
	AdditionalInfo:   "Дополнительная информация",
}
