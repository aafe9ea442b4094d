package dto

import "time"

type PlanResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	Currency string `json:"currency"`
	Period   string `json:"period"`
}

type PlansResponse struct {
	OK    bool           `json:"ok"`
	Items []PlanResponse `json:"items"`
}

type CreateCheckoutRequest struct {
	PlanID string `json:"plan_id" validate:"required,max=50"`
}

type CheckoutResponse struct {
	OK          bool   `json:"ok"`
	Provider    string `json:"provider"`
	EventID     string `json:"event_id"`
	CheckoutURL string `json:"checkout_url"`
	PlanID      string `json:"plan_id"`
}

type AccessResponse struct {
	OK     bool       `json:"ok"`
	Access bool       `json:"access"`
	Status string     `json:"status"`
	Until  *time.Time `json:"until"`
	Reason string     `json:"reason"`
}

type SubscriptionRequiredResponse struct {
	OK     bool       `json:"ok"`
	Error  string     `json:"error"`
	Reason string     `json:"reason"`
	Status string     `json:"status"`
	Until  *time.Time `json:"until"`
}

// SubscriptionStatusResponse describes the caller's latest subscription.
// Only Status is set when the user has none.
type SubscriptionStatusResponse struct {
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	PlanID           string     `json:"plan_id,omitempty"`
	PlanTitle        string     `json:"plan_title,omitempty"`
	Access           bool       `json:"access"`
	Until            *time.Time `json:"until,omitempty"`
	Reason           string     `json:"reason"`
}

type LibraryItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Lessons     int    `json:"lessons"`
}

type LibraryResponse struct {
	OK     bool           `json:"ok"`
	Items  []LibraryItem  `json:"items"`
	Access AccessResponse `json:"access"`
}
