package domain

type PaymentStatus string

const (
	PaymentStatusCreating PaymentStatus = "creating"
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusChecking PaymentStatus = "checking"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusExpired  PaymentStatus = "expired"
)

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed || s == PaymentStatusExpired
}

// String representation (for logging)
func (s PaymentStatus) String() string {
	return string(s)
}

// ParsePaymentStatus maps a remote status string onto the local enum.
// Anything unrecognized is treated as pending so a flaky collaborator
// never terminates the poll loop by accident.
func ParsePaymentStatus(raw string) PaymentStatus {
	switch PaymentStatus(raw) {
	case PaymentStatusPaid, PaymentStatusFailed, PaymentStatusExpired, PaymentStatusPending:
		return PaymentStatus(raw)
	default:
		return PaymentStatusPending
	}
}
