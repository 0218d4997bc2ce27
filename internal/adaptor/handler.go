package adaptor

import (
	"consultancy-cms/internal/usecase"
	"consultancy-cms/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	Content *ContentHandler
	Public  *PublicHandler
	Object  *ObjectHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, config.Session.CookieSecure, log),
		Content: NewContentHandler(service.Content, log),
		Public:  NewPublicHandler(service.Content, log),
		Object:  NewObjectHandler(service.Upload, log),
	}
}
