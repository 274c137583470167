package domain

import "fmt" // Error formatting

// Transaction statuses
const (
	StatusSuccess = "Success" // Reported as completed
	StatusFailed  = "Failed"  // Reported as failed
	StatusPending = "Pending" // Default status
)

// Transaction Model
type Transaction struct {
	ID        uint    `gorm:"primaryKey" json:"-"`                            // Surrogate key, never exposed as a resource
	UserID    string  `gorm:"type:char(36);index;not null" json:"-"`          // Owning user
	Date      string  `gorm:"size:64;not null" json:"date"`                   // String-encoded timestamp, passed through
	Amount    float64 `gorm:"not null" json:"amount"`                         // Transaction amount, must be >= 0
	Recipient string  `gorm:"size:255;not null" json:"recipient"`             // Recipient reference
	Status    string  `gorm:"size:20;not null;default:Pending" json:"status"` // Status: Success, Failed or Pending
	CreatedAt int64   `gorm:"autoCreateTime:milli" json:"-"`                  // Timestamp of append in milliseconds
}

// ValidStatus reports whether status is one of the defined statuses
func ValidStatus(status string) bool {
	return status == StatusSuccess || status == StatusFailed || status == StatusPending
}

// Validate checks the Transaction invariants before any append
func (t *Transaction) Validate() error {
	// Date is required
	if t.Date == "" {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	// Amount must be non-negative
	if t.Amount < 0 {
		return fmt.Errorf("%w: amount must be non-negative", ErrValidation)
	}
	// Recipient is required
	if t.Recipient == "" {
		return fmt.Errorf("%w: recipient is required", ErrValidation)
	}
	// Status must be one of the defined values
	if !ValidStatus(t.Status) {
		return fmt.Errorf("%w: status must be %q, %q or %q", ErrValidation, StatusSuccess, StatusFailed, StatusPending)
	}
	return nil
}
