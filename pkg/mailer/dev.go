package mailer

import (
	"github.com/crestview/residency-api/pkg/logger"
)

// DevMailer logs decision emails instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendAgreementDecision(toEmail, apartmentNo, decision string) error {
	logger.Info("[DEV MAIL] Agreement decision",
		"to", toEmail,
		"apartment_no", apartmentNo,
		"decision", decision,
	)
	return nil
}
