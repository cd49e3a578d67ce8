package handler

import (
	"time"

	"github.com/dairyledger/milk-collection/internal/core/domain"
)

// envelope wraps every milk endpoint payload.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func success(message string, data any) envelope {
	return envelope{Status: "success", Message: message, Data: data}
}

type ownerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type milkRecordResponse struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	MilkType  string         `json:"milkType"`
	Quantity  int            `json:"quantity"`
	Rate      float64        `json:"rate"`
	Amount    float64        `json:"amount"`
	EntryDate time.Time      `json:"entryDate"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	User      *ownerResponse `json:"user,omitempty"`
}

// userProfile is the public view of an account. It never carries the hash.
type userProfile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Roles       []string  `json:"roles"`
	CreatedAt   time.Time `json:"createdAt"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

type authResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	User      *userProfile `json:"user"`
}

func toMilkRecordResponse(r *domain.MilkRecord, owners map[string]domain.OwnerSummary) milkRecordResponse {
	resp := milkRecordResponse{
		ID:        r.ID,
		UserID:    r.OwnerUserID,
		MilkType:  r.MilkType,
		Quantity:  r.Quantity,
		Rate:      r.Rate,
		Amount:    r.Amount,
		EntryDate: r.EntryDate,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if o, ok := owners[r.OwnerUserID]; ok {
		resp.User = &ownerResponse{ID: o.ID, Username: o.Username, Email: o.Email}
	}
	return resp
}

func toMilkRecordResponses(records []*domain.MilkRecord, owners map[string]domain.OwnerSummary) []milkRecordResponse {
	out := make([]milkRecordResponse, len(records))
	for i, r := range records {
		out[i] = toMilkRecordResponse(r, owners)
	}
	return out
}

func toUserProfile(u *domain.User) *userProfile {
	roles := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = string(r)
	}
	return &userProfile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Roles:       roles,
		CreatedAt:   u.CreatedAt,
	}
}

func toUserProfiles(users []*domain.User) []*userProfile {
	out := make([]*userProfile, len(users))
	for i, u := range users {
		out[i] = toUserProfile(u)
	}
	return out
}
