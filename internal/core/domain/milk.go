package domain

import "time"

// MilkRecord is a single dairy intake entry owned by exactly one user.
type MilkRecord struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"userId"`
	MilkType    string    `json:"milkType"`
	Quantity    int       `json:"quantity"`
	Rate        float64   `json:"rate"`
	Amount      float64   `json:"amount"`
	EntryDate   time.Time `json:"entryDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ComputeAmount returns rate × quantity.
func ComputeAmount(rate float64, quantity int) float64 {
	return rate * float64(quantity)
}

// Recalculate sets Amount from the current Rate and Quantity.
func (m *MilkRecord) Recalculate() {
	m.Amount = ComputeAmount(m.Rate, m.Quantity)
}

// OwnerSummary is the minimal owner view embedded in record listings.
type OwnerSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
