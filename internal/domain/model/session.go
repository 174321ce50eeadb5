package model

import "time"

type Session struct {
	SID       string
	UserID    int64
	ExpiresAt time.Time
}
