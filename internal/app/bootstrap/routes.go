// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountfeature "github.com/dalemusser/memberhub/internal/app/features/account"
	healthfeature "github.com/dalemusser/memberhub/internal/app/features/health"
	membersfeature "github.com/dalemusser/memberhub/internal/app/features/members"
	planstore "github.com/dalemusser/memberhub/internal/app/store/plans"
	signinstore "github.com/dalemusser/memberhub/internal/app/store/signins"
	userstore "github.com/dalemusser/memberhub/internal/app/store/users"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/credentials"
	"github.com/dalemusser/memberhub/internal/app/system/filestore"
	"github.com/dalemusser/memberhub/internal/app/system/mailer"
	"github.com/dalemusser/memberhub/internal/app/system/ratelimit"
	"github.com/dalemusser/memberhub/internal/app/system/resolve"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. MemberHub builds the stores and the
// system collaborators (credentials, mailer, file resolver), applies the
// bearer-token middleware, and mounts the JSON feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	users := userstore.New(deps.MongoDatabase)
	plans := planstore.New(deps.MongoDatabase)
	signins := signinstore.New(deps.MongoDatabase)
	files := filestore.New(appCfg.FilesBaseURL)
	resolver := resolve.New(users, plans, files, logger)

	hasher := credentials.NewHasher(appCfg.BcryptCost)
	sessions := credentials.NewSessions(appCfg.JWTSecret, appCfg.SessionTTL)

	var sender mailer.Sender
	if appCfg.MailEnabled {
		smtpSender, err := mailer.NewSMTPSender(mailer.Config{
			Host:      appCfg.MailSMTPHost,
			Port:      appCfg.MailSMTPPort,
			Username:  appCfg.MailSMTPUser,
			Password:  appCfg.MailSMTPPass,
			FromName:  appCfg.MailFromName,
			FromEmail: appCfg.MailFrom,
			UseTLS:    coreCfg.Env == "prod",
		})
		if err != nil {
			logger.Error("mailer init failed", zap.Error(err))
			return nil, err
		}
		sender = smtpSender
	} else {
		sender = &mailer.LogSender{Log: logger}
	}

	r := chi.NewRouter()

	// Global auth middleware: a valid bearer token puts the user in
	// context for all handlers via auth.CurrentUser(r).
	mw := auth.NewMiddleware(sessions, users, logger)
	r.Use(mw.LoadUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Account self-service: sign-up, sign-in, profile, password reset
	accountHandler := &accountfeature.Handler{
		Users:    users,
		Plans:    plans,
		SignIns:  signins,
		Resolver: resolver,
		Hasher:   hasher,
		Sessions: sessions,
		Sender:   sender,
		Limiter:  ratelimit.NewSignInLimiter(),
		ResetTTL: appCfg.ResetTTL,
		SiteName: appCfg.SiteName,
		BaseURL:  appCfg.BaseURL,
		Log:      logger,
	}
	r.Mount("/", accountfeature.Routes(accountHandler))

	// Member directory and lifecycle administration
	membersHandler := &membersfeature.Handler{
		Users:    users,
		Resolver: resolver,
		Log:      logger,
	}
	r.Mount("/users", membersfeature.Routes(membersHandler))

	return r, nil
}
