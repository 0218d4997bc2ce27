package request

type SetACLRequest struct {
	ObjectURL  string `json:"objectURL" validate:"required"`
	Visibility string `json:"visibility" validate:"required,oneof=public private"`
}

type MarkReadRequest struct {
	IsRead *bool `json:"isRead"`
}
