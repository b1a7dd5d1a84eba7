package mailer

// Service sends resident-facing notification email. Decision emails go out
// after an admin accepts or rejects an agreement.
type Service interface {
	SendAgreementDecision(toEmail, apartmentNo, decision string) error
}
