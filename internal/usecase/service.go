package usecase

import (
	"time"

	"consultancy-cms/internal/data/repository"
	"consultancy-cms/pkg/mailer"
	"consultancy-cms/pkg/token"
	"consultancy-cms/pkg/utils"

	"go.uber.org/zap"
)

// Dependencies groups what the services are built from. Store is nil when
// object storage is not configured.
type Dependencies struct {
	Repo   *repository.Repository
	Config *utils.Config
	Mailer mailer.Dispatcher
	Signer *token.Signer
	Store  ObjectStore
	Log    *zap.Logger
}

type Service struct {
	Auth    AuthService
	Session SessionService
	Content ContentService
	Upload  UploadService
	Janitor *Janitor
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config

	ttl := time.Duration(cfg.Session.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	sessions := NewSessionService(deps.Repo.Session, deps.Signer, ttl, deps.Log)
	auth := NewAuthService(deps.Repo.VerificationCode, sessions, deps.Mailer, cfg.OTP, cfg.Admin.Emails, deps.Log)

	return &Service{
		Auth:    auth,
		Session: sessions,
		Content: NewContentService(deps.Repo.Content, deps.Log),
		Upload:  NewUploadService(deps.Store, deps.Repo.ObjectACL, cfg.Storage, deps.Log),
		Janitor: NewJanitor(auth, sessions, time.Duration(cfg.App.CleanupInterval)*time.Minute, deps.Log),
	}
}
