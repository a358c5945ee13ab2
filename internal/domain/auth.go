package domain

import "time"

// Token represents issued access token metadata.
type Token struct {
	ID        string
	SubjectID string
	Role      MemberRole
	ExpiresAt time.Time
	IssuedAt  time.Time
}
