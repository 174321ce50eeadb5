package dto

import "time"

type CandidateResponse struct {
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type CandidatesResponse struct {
	Items []CandidateResponse `json:"items"`
}

type SwipeRequest struct {
	TargetUserID int64  `json:"target_user_id"`
	Direction    string `json:"direction"`
}

type SwipeResponse struct {
	Recorded     bool  `json:"recorded"`
	MatchCreated bool  `json:"match_created"`
	MatchID      int64 `json:"match_id,omitempty"`
}

type MatchItemResponse struct {
	ID           int64     `json:"id"`
	TargetUserID int64     `json:"target_user_id"`
	DisplayName  string    `json:"display_name"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}
