package mail

import "gopkg.in/gomail.v2"

type DeliveryFailureData struct {
	SubmissionID   string
	ClientName     string
	Email          string
	Phone          string
	PrimaryService string
	Language       string
	Attempt        int
	Reason         string
	OccurredAt     string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       []string

	send func(m *gomail.Message) error
}
