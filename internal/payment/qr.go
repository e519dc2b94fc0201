package payment

import (
	"fmt"

	"github.com/binhvu284/nobleco-sub000/internal/api"
)

// ComposePayload builds the string the payment page renders as a QR
// code. With merchant bank info it carries the full transfer
// instruction; without it, just the pay code and amount.
func ComposePayload(bank *api.BankAccount, amount float64, payCode string) string {
	if bank != nil {
		return fmt.Sprintf("bank_transfer|bank:%s|account:%s|owner:%s|amount:%.0f|memo:%s",
			bank.BankName, bank.AccountNumber, bank.AccountOwner, amount, payCode)
	}
	return fmt.Sprintf("payment|code:%s|amount:%.0f", payCode, amount)
}
