package usecase

import (
	"strings"
	"time"

	"github.com/xavierca1/consult-intake/internal/entity"
)

const formTypeConsultation = "consultation"

type PhoneFormatter interface {
	E164(raw string) string
}

// PayloadBuilder turns a stored submission (English keys) into the webhook document.
// Translation never touches the stored submission.
type PayloadBuilder struct {
	Phone PhoneFormatter
}

func NewPayloadBuilder(phone PhoneFormatter) *PayloadBuilder {
	return &PayloadBuilder{Phone: phone}
}

func (b *PayloadBuilder) Build(s *entity.ConsultationSubmission, isDuplicate bool, now time.Time) entity.WebhookPayload {
	lang := s.Language
	if lang != entity.LanguageArabic {
		lang = entity.LanguageEnglish
	}

	primaryKey := ""
	if len(s.Services) > 0 {
		primaryKey = s.Services[0]
	}

	servicesTranslated := make([]string, 0, len(s.Services))
	servicesEnglish := make([]string, 0, len(s.Services))
	for _, key := range s.Services {
		servicesTranslated = append(servicesTranslated, serviceName(key, lang))
		servicesEnglish = append(servicesEnglish, serviceName(key, entity.LanguageEnglish))
	}

	primaryEnglish := serviceName(primaryKey, entity.LanguageEnglish)
	primaryTranslated := serviceName(primaryKey, lang)
	if primaryEnglish == "" {
		primaryEnglish = otherLabel
	}
	if primaryTranslated == "" {
		primaryTranslated = otherLabel
	}

	phone := s.Phone
	if b != nil && b.Phone != nil {
		phone = b.Phone.E164(s.Phone)
	}

	return entity.WebhookPayload{
		FormType:   formTypeConsultation,
		ClientName: s.Name,
		Email:      s.Email,
		Phone:      phone,
		Location:   s.Location,
		Company:    s.Company,

		Services:                    servicesTranslated,
		ServicesEnglish:             servicesEnglish,
		ServiceInterested:           primaryEnglish,
		ServiceInterestedKey:        primaryKey,
		ServiceInterestedTranslated: primaryTranslated,

		BusinessType:        optionName(businessTypeLabels, s.BusinessType, lang),
		BusinessTypeKey:     s.BusinessType,
		Budget:              optionName(budgetLabels, s.Budget, lang),
		BudgetKey:           s.Budget,
		Timeline:            optionName(timelineLabels, s.Timeline, lang),
		TimelineKey:         s.Timeline,
		PreferredContact:    optionName(contactMethodLabels, s.PreferredContact, lang),
		PreferredContactKey: s.PreferredContact,
		PreferredTime:       optionName(contactTimeLabels, s.PreferredTime, lang),
		PreferredTimeKey:    s.PreferredTime,

		Message:      s.Message,
		Notes:        buildNotes(s, phone, servicesTranslated, lang),
		Language:     lang,
		Source:       s.Source,
		Timestamp:    now.UTC().Format(time.RFC3339),
		SubmissionID: s.SubmissionID,
		IsDuplicate:  isDuplicate,
	}
}

// buildNotes emits one "Label: value" line per supplied field, in a fixed order.
func buildNotes(s *entity.ConsultationSubmission, phone string, services []string, lang string) string {
	labels := notesLabels[lang]
	separator := ", "
	if lang == entity.LanguageArabic {
		separator = "، "
	}

	var lines []string
	add := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		lines = append(lines, label+": "+value)
	}

	add(labels.services, strings.Join(services, separator))
	add(labels.message, s.Message)
	add(labels.phone, phone)
	add(labels.location, s.Location)
	add(labels.businessType, optionName(businessTypeLabels, s.BusinessType, lang))
	add(labels.budget, optionName(budgetLabels, s.Budget, lang))
	add(labels.timeline, optionName(timelineLabels, s.Timeline, lang))
	add(labels.preferredContact, optionName(contactMethodLabels, s.PreferredContact, lang))
	add(labels.preferredTime, optionName(contactTimeLabels, s.PreferredTime, lang))
	add(labels.language, optionName(languageNames, s.Language, lang))

	return strings.Join(lines, "\n")
}
