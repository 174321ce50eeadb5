package model

import "time"

// Match is an undirected pair: UserAID < UserBID always holds after
// normalization at the storage layer.
type Match struct {
	ID        int64     `json:"id"`
	UserAID   int64     `json:"user_a_id"`
	UserBID   int64     `json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (m Match) HasParticipant(userID int64) bool {
	return userID > 0 && (m.UserAID == userID || m.UserBID == userID)
}

func (m Match) Counterpart(userID int64) int64 {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}
