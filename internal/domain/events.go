package domain

import (
	"encoding/json"
	"time"
)

// Event types
const (
	EventTypeCommissionProcessed = "commission.processed"
)

// Aggregate types
const (
	AggregateTypeSaleItem = "sale_item"
)

// OutboxEvent represents an event to be published. Payload is the encoded
// event body and is passed to the broker as is.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       json.RawMessage
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// CommissionProcessedEvent payload
type CommissionProcessedEvent struct {
	SaleItemID             string               `json:"sale_item_id"`
	SellerID               string               `json:"seller_id"`
	Subtotal               string               `json:"subtotal"`
	TotalCommission        string               `json:"total_commission"`
	BalanceAfterCommission string               `json:"balance_after_commission"`
	Payouts                []CommissionPayoutEv `json:"payouts"`
	ProcessedAt            string               `json:"processed_at"`
}

// CommissionPayoutEv is one payout line inside CommissionProcessedEvent.
type CommissionPayoutEv struct {
	Role          string `json:"role"`
	BeneficiaryID string `json:"beneficiary_id"`
	Amount        string `json:"amount"`
}

// NewCommissionProcessedOutboxEvent wraps the commission.processed payload of
// a receipt in an outbox event keyed by the sale item.
func NewCommissionProcessedOutboxEvent(id string, item *SaleLineItem, receipt *Receipt) (*OutboxEvent, error) {
	payload, err := json.Marshal(NewCommissionProcessedEvent(item, receipt))
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		ID:            id,
		AggregateID:   item.ID,
		AggregateType: AggregateTypeSaleItem,
		EventType:     EventTypeCommissionProcessed,
		Payload:       payload,
		CreatedAt:     receipt.ProcessedAt,
	}, nil
}

// NewCommissionProcessedEvent builds the event payload for a receipt.
func NewCommissionProcessedEvent(item *SaleLineItem, receipt *Receipt) CommissionProcessedEvent {
	payouts := make([]CommissionPayoutEv, 0, len(receipt.Payouts))
	for _, p := range receipt.Payouts {
		payouts = append(payouts, CommissionPayoutEv{
			Role:          string(p.Role),
			BeneficiaryID: p.BeneficiaryID,
			Amount:        p.Amount.StringFixed(2),
		})
	}

	return CommissionProcessedEvent{
		SaleItemID:             item.ID,
		SellerID:               item.SellerID,
		Subtotal:               item.Subtotal.StringFixed(2),
		TotalCommission:        receipt.TotalCommission.StringFixed(2),
		BalanceAfterCommission: receipt.BalanceAfterCommission.StringFixed(2),
		Payouts:                payouts,
		ProcessedAt:            receipt.ProcessedAt.UTC().Format(time.RFC3339),
	}
}
