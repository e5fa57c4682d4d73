package usecase

import "github.com/xavierca1/consult-intake/internal/entity"

const otherLabel = "Other"

// label holds the English and Arabic display text of one option key.
type label struct {
	en string
	ar string
}

func (l label) in(lang string) string {
	if lang == entity.LanguageArabic && l.ar != "" {
		return l.ar
	}
	return l.en
}

var serviceLabels = map[string]label{
	"accounting":        {"Accounting", "المحاسبة"},
	"bookkeeping":       {"Bookkeeping", "مسك الدفاتر"},
	"vat":               {"VAT", "ضريبة القيمة المضافة"},
	"corporate_tax":     {"Corporate Tax", "ضريبة الشركات"},
	"audit":             {"Audit & Assurance", "التدقيق والمراجعة"},
	"company_formation": {"Company Formation", "تأسيس الشركات"},
	"legal":             {"Legal Services", "الخدمات القانونية"},
	"payroll":           {"Payroll", "إدارة الرواتب"},
	"consulting":        {"Business Consulting", "الاستشارات الإدارية"},
	"other":             {otherLabel, "أخرى"},
}

var businessTypeLabels = map[string]label{
	"individual": {"Individual / Freelancer", "فرد / عمل حر"},
	"startup":    {"Startup", "شركة ناشئة"},
	"sme":        {"Small & Medium Business", "منشأة صغيرة ومتوسطة"},
	"enterprise": {"Enterprise", "شركة كبيرة"},
	"nonprofit":  {"Non-profit", "منظمة غير ربحية"},
	"government": {"Government", "جهة حكومية"},
}

var budgetLabels = map[string]label{
	"under_5k": {"Under $5,000", "أقل من 5,000 دولار"},
	"5k_15k":   {"$5,000 - $15,000", "5,000 - 15,000 دولار"},
	"15k_50k":  {"$15,000 - $50,000", "15,000 - 50,000 دولار"},
	"over_50k": {"Over $50,000", "أكثر من 50,000 دولار"},
	"not_sure": {"Not sure yet", "غير محدد بعد"},
}

var timelineLabels = map[string]label{
	"immediately":    {"Immediately", "فوراً"},
	"within_month":   {"Within a month", "خلال شهر"},
	"within_quarter": {"Within 3 months", "خلال 3 أشهر"},
	"flexible":       {"Flexible", "مرن"},
}

var contactMethodLabels = map[string]label{
	"email":    {"Email", "البريد الإلكتروني"},
	"phone":    {"Phone call", "مكالمة هاتفية"},
	"whatsapp": {"WhatsApp", "واتساب"},
}

var contactTimeLabels = map[string]label{
	"morning":   {"Morning", "صباحاً"},
	"afternoon": {"Afternoon", "بعد الظهر"},
	"evening":   {"Evening", "مساءً"},
	"anytime":   {"Anytime", "في أي وقت"},
}

var languageNames = map[string]label{
	entity.LanguageEnglish: {"English", "الإنجليزية"},
	entity.LanguageArabic:  {"Arabic", "العربية"},
}

type noteLabels struct {
	services         string
	message          string
	phone            string
	location         string
	businessType     string
	budget           string
	timeline         string
	preferredContact string
	preferredTime    string
	language         string
}

var notesLabels = map[string]noteLabels{
	entity.LanguageEnglish: {
		services:         "Services",
		message:          "Message",
		phone:            "Phone",
		location:         "Location",
		businessType:     "Business Type",
		budget:           "Budget",
		timeline:         "Timeline",
		preferredContact: "Preferred Contact",
		preferredTime:    "Preferred Time",
		language:         "Language",
	},
	entity.LanguageArabic: {
		services:         "الخدمات",
		message:          "الرسالة",
		phone:            "الهاتف",
		location:         "الموقع",
		businessType:     "نوع النشاط",
		budget:           "الميزانية",
		timeline:         "الإطار الزمني",
		preferredContact: "وسيلة التواصل المفضلة",
		preferredTime:    "وقت التواصل المفضل",
		language:         "اللغة",
	},
}

// serviceName falls back to Other for keys outside the catalog.
func serviceName(key, lang string) string {
	if l, ok := serviceLabels[key]; ok {
		return l.in(lang)
	}
	return serviceLabels["other"].in(lang)
}

// optionName renders an optional enum value. Unknown keys are shown as typed, empty
// stays empty.
func optionName(table map[string]label, key, lang string) string {
	if key == "" {
		return ""
	}
	if l, ok := table[key]; ok {
		return l.in(lang)
	}
	return key
}
