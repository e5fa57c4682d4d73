package usecase

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const submissionIDSuffixLen = 9

// NewSubmissionID returns sub_<unix millis>_<9 lowercase alnum>. Unique enough to
// debug by eye, not meant as a security token.
func NewSubmissionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:submissionIDSuffixLen]
	return "sub_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}
