package entity

// WebhookPayload is the flat document posted to the automation webhook. Every
// enumerated field travels twice: display text for templates and the English key for
// routing rules. IsDuplicate has no omitempty because the receiving side matches on a
// strict boolean.
type WebhookPayload struct {
	FormType   string `json:"form_type"`
	ClientName string `json:"client_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Location   string `json:"location"`
	Company    string `json:"company"`

	Services                    []string `json:"services"`
	ServicesEnglish             []string `json:"services_english"`
	ServiceInterested           string   `json:"service_interested"`
	ServiceInterestedKey        string   `json:"service_interested_key"`
	ServiceInterestedTranslated string   `json:"service_interested_translated"`

	BusinessType        string `json:"business_type"`
	BusinessTypeKey     string `json:"business_type_key"`
	Budget              string `json:"budget"`
	BudgetKey           string `json:"budget_key"`
	Timeline            string `json:"timeline"`
	TimelineKey         string `json:"timeline_key"`
	PreferredContact    string `json:"preferred_contact"`
	PreferredContactKey string `json:"preferred_contact_key"`
	PreferredTime       string `json:"preferred_time"`
	PreferredTimeKey    string `json:"preferred_time_key"`

	Message      string `json:"message"`
	Notes        string `json:"notes"`
	Language     string `json:"language"`
	Source       string `json:"source"`
	Timestamp    string `json:"timestamp"`
	SubmissionID string `json:"submission_id"`
	IsDuplicate  bool   `json:"is_duplicate"`
}
