package response

import (
	"time"

	"consultancy-cms/internal/usecase"
)

type UploadGrantResponse struct {
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	ObjectPath string    `json:"objectPath"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

func UploadGrantToResponse(grant *usecase.UploadGrant) UploadGrantResponse {
	return UploadGrantResponse{
		Method:     grant.Method,
		URL:        grant.URL,
		ObjectPath: grant.ObjectPath,
		ExpiresAt:  grant.ExpiresAt,
	}
}

type ObjectACLResponse struct {
	ObjectPath string `json:"objectPath"`
}
