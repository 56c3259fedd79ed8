package model

import "time"

// Tip is a payment received by a creator.
//
// Amount is in integer minor currency units (cents). PaymentReference is the
// external provider's identifier — a card session id or an on-chain tx hash.
// It is unique across all tips: submitting the same reference twice is a
// replay and must be rejected, never silently merged.
type Tip struct {
	ID               string    `json:"id"`
	CreatorID        string    `json:"creatorId"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	Message          string    `json:"message,omitempty"`
	TipperUsername   string    `json:"tipperUsername,omitempty"`
	PaymentReference string    `json:"paymentReference"`
	CreatedAt        time.Time `json:"createdAt"`
}
