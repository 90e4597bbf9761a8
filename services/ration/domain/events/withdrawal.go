package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Watermill topics for ledger mutations. Both are published inside the same
// transaction that changed the batch quantities, so a consumed event always
// reflects a committed ledger state.
const (
	TopicWithdrawalRecorded = "ration.withdrawal.recorded"
	TopicWithdrawalReversed = "ration.withdrawal.reversed"
)

// WithdrawalRecordedEvent is published after an actual withdrawal depleted
// the ledger. The worker uses it to refresh the availability read model.
type WithdrawalRecordedEvent struct {
	EventID      uuid.UUID       `json:"event_id"` // Unique publish-time identifier for deduplication
	Version      int             `json:"version"`  // Schema version; increment on breaking changes
	WithdrawalID uuid.UUID       `json:"withdrawal_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	UnitID       uuid.UUID       `json:"unit_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Date         time.Time       `json:"date"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// WithdrawalReversedEvent is published after a withdrawal's decrements were
// restored to their source batches.
type WithdrawalReversedEvent struct {
	EventID      uuid.UUID       `json:"event_id"`
	Version      int             `json:"version"`
	WithdrawalID uuid.UUID       `json:"withdrawal_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Date         time.Time       `json:"date"`
	OccurredAt   time.Time       `json:"occurred_at"`
}
