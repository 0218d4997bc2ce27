package response

import (
	"time"

	"consultancy-cms/internal/data/entity"
)

type VerificationSentResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SessionResponse struct {
	Identity  entity.Identity `json:"identity"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

func SessionToResponse(session *entity.Session) SessionResponse {
	return SessionResponse{
		Identity:  session.Identity,
		ExpiresAt: session.ExpiresAt,
	}
}
