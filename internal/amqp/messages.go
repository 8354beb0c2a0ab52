package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LoanRecalcMessage asks the worker to recompute one loan's schedule.
// It carries only the loan id and the reason; the worker fetches the
// current records from the database before recalculating.
type LoanRecalcMessage struct {
	MessageID string    `json:"message_id"`
	LoanID    string    `json:"loan_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Recalc reasons published by the API on mutations.
const (
	ReasonLoanUpserted   = "loan_upserted"
	ReasonLoanDeleted    = "loan_deleted"
	ReasonPaymentAdded   = "payment_added"
	ReasonPaymentDeleted = "payment_deleted"
	ReasonPeriodicSweep  = "periodic_sweep"
)

func NewLoanRecalcMessage(loanID, reason string) *LoanRecalcMessage {
	return &LoanRecalcMessage{
		MessageID: uuid.NewString(),
		LoanID:    loanID,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

func (m *LoanRecalcMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LoanRecalcMessageFromJSON(data []byte) (*LoanRecalcMessage, error) {
	var msg LoanRecalcMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
