package dto

type TelegramAuthRequest struct {
	InitData string `json:"init_data" validate:"required"`
}

type AuthResponse struct {
	OK          bool         `json:"ok"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   int64        `json:"expires_at"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

type ErrorResponse struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

type HealthResponse struct {
	OK   bool   `json:"ok"`
	Time string `json:"time"`
	DB   string `json:"db"`
}
