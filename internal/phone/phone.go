package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Formatter renders user-typed phone numbers for outbound payloads.
type Formatter struct {
	DefaultRegion string
}

func NewFormatter(defaultRegion string) *Formatter {
	if defaultRegion == "" {
		defaultRegion = "AE"
	}
	return &Formatter{DefaultRegion: strings.ToUpper(defaultRegion)}
}

// E164 returns the number in E.164 form when it parses as a valid number, and the
// trimmed input otherwise. The form does not validate phones, so nothing is rejected.
func (f *Formatter) E164(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(trimmed, f.DefaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return trimmed
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
