package model

// FundingStatus values are shown verbatim to users.
type FundingStatus string

const (
	FundingPending          FundingStatus = "En attente"
	FundingPreApproved      FundingStatus = "Pré-approuvé"
	FundingDetailsSubmitted FundingStatus = "Détails fournis"
	FundingApproved         FundingStatus = "Validé"
	FundingRejected         FundingStatus = "Rejeté"
)

var fundingRank = map[FundingStatus]int{
	FundingPending:          0,
	FundingPreApproved:      1,
	FundingDetailsSubmitted: 2,
	FundingApproved:         3,
	FundingRejected:         3,
}

// Rank orders funding states along the forward-only workflow.
func (s FundingStatus) Rank() int {
	if r, ok := fundingRank[s]; ok {
		return r
	}
	return -1
}

func (s FundingStatus) IsTerminal() bool {
	return s == FundingApproved || s == FundingRejected
}

// PayableStatus is the workflow status of orders and payment requests.
type PayableStatus string

const (
	PayablePending       PayableStatus = "En attente"
	PayableValidated     PayableStatus = "Validé"
	PayableRejected      PayableStatus = "Rejeté"
	PayablePartiallyPaid PayableStatus = "Paiement Partiel"
	PayablePaid          PayableStatus = "Payé"
	PayableCancelled     PayableStatus = "Annulé"
)

// AcceptsPayments reports whether money may be recorded against the payable.
func (s PayableStatus) AcceptsPayments() bool {
	return s == PayableValidated || s == PayablePartiallyPaid || s == PayablePaid
}

// PaymentStatus is derived from amounts, never set directly.
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "En attente"
	PaymentPartiallyPaid PaymentStatus = "Paiement Partiel"
	PaymentPaid          PaymentStatus = "Payé"
)
