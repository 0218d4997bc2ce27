package request

type SendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyLoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}
