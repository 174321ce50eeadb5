package dto

type LoginRequest struct {
	Assertion string `json:"assertion"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthTokensResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresInSec int64          `json:"expires_in_sec"`
	Me           AuthMeResponse `json:"me"`
}

type AuthMeResponse struct {
	ID int64 `json:"id"`
}

type LogoutResponse struct {
	OK bool `json:"ok"`
}
