package models

// CheckoutSnapshot is the document copy persisted right before the redirect
// to the external checkout, and read back after the vendor redirects.
type CheckoutSnapshot struct {
	Goals               []CategoryGoal       `json:"goals"`
	PrimaryCategory     *LifeCategory        `json:"primaryCategory"`
	SecondaryCategories []LifeCategory       `json:"secondaryCategories"`
	Ratings             map[LifeCategory]int `json:"lifeWheelRatings"`
	UserName            string               `json:"userName"`
	UserEmail           string               `json:"userEmail"`
}

// Payment DTOs
type VerifyPaymentRequest struct {
	OrderID    string `json:"orderId"`
	CheckoutID string `json:"checkoutId"`
}

type VerifyPaymentResponse struct {
	Verified      bool   `json:"verified"`
	Status        string `json:"status"`
	DownloadToken string `json:"downloadToken"`
	ExpiresAt     int64  `json:"expiresAt"`
	OrderNumber   int    `json:"orderNumber"`
	Email         string `json:"email"`
	Total         int    `json:"total"`
}

// CheckoutRequest carries the identity fields confirmed on the summary step.
type CheckoutRequest struct {
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

type CheckoutResponse struct {
	RedirectURL string `json:"redirectUrl"`
}
