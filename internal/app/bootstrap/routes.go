// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountsfeature "github.com/dalemusser/campushub/internal/app/features/accounts"
	calendarfeature "github.com/dalemusser/campushub/internal/app/features/calendar"
	healthfeature "github.com/dalemusser/campushub/internal/app/features/health"
	membershipsfeature "github.com/dalemusser/campushub/internal/app/features/memberships"
	orgadminfeature "github.com/dalemusser/campushub/internal/app/features/orgadmin"
	organizationsfeature "github.com/dalemusser/campushub/internal/app/features/organizations"
	profilefeature "github.com/dalemusser/campushub/internal/app/features/profile"
	recommendationsfeature "github.com/dalemusser/campushub/internal/app/features/recommendations"
	savedfeature "github.com/dalemusser/campushub/internal/app/features/saved"
	surveyfeature "github.com/dalemusser/campushub/internal/app/features/survey"
	"github.com/dalemusser/campushub/internal/app/gcal"
	"github.com/dalemusser/campushub/internal/app/membership"
	"github.com/dalemusser/campushub/internal/app/recommend"
	applicationstore "github.com/dalemusser/campushub/internal/app/store/applications"
	caltokenstore "github.com/dalemusser/campushub/internal/app/store/caltokens"
	eventstore "github.com/dalemusser/campushub/internal/app/store/events"
	formstore "github.com/dalemusser/campushub/internal/app/store/forms"
	joinedorgstore "github.com/dalemusser/campushub/internal/app/store/joinedorgs"
	orgaccountstore "github.com/dalemusser/campushub/internal/app/store/orgaccounts"
	organizationstore "github.com/dalemusser/campushub/internal/app/store/organizations"
	profilestore "github.com/dalemusser/campushub/internal/app/store/profiles"
	savedorgstore "github.com/dalemusser/campushub/internal/app/store/savedorgs"
	surveystore "github.com/dalemusser/campushub/internal/app/store/surveys"
	usercontextstore "github.com/dalemusser/campushub/internal/app/store/usercontext"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/feed"
	"github.com/dalemusser/campushub/internal/app/system/tasks"
	"github.com/dalemusser/campushub/internal/app/system/usercache"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendarapi "google.golang.org/api/calendar/v3"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. This function builds the store layer,
// the change-feed-driven user cache, the membership orchestrator, the
// recommendation resolver, and the calendar syncer, and mounts a feature
// router per API area.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Session manager issuing and verifying bearer tokens. The user fetcher
	// reloads the user row per request so role changes and disabled accounts
	// take effect immediately.
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionTTL, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Stores.
	users := userstore.New(db)
	profiles := profilestore.New(db)
	surveys := surveystore.New(db)
	orgs := organizationstore.New(db)
	accounts := orgaccountstore.New(db)
	saved := savedorgstore.New(db)
	joined := joinedorgstore.New(db)
	apps := applicationstore.New(db)
	forms := formstore.New(db)
	events := eventstore.New(db)
	caltokens := caltokenstore.New(db)

	// Per-user caches, converged through Mongo change streams and cleared
	// synchronously on sign-out.
	changeFeed := feed.NewMongoFeed(db, logger)
	hub := usercache.NewHub(usercontextstore.New(db), changeFeed, logger)
	if err := hub.Start(); err != nil {
		logger.Error("user cache start failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.Notifier().Subscribe(hub)

	// Recommendation resolver: remote search first, local scoring script as
	// the fallback.
	var primary, fallback recommend.Scorer
	script := recommend.NewScriptScorer(appCfg.RecommendInterpreter, appCfg.RecommendScript, appCfg.RecommendDataset)
	if appCfg.SearchAPIURL != "" {
		primary = recommend.NewRemoteScorer(appCfg.SearchAPIURL)
		if appCfg.RecommendScript != "" {
			fallback = script
		}
	} else {
		primary = script
	}
	resolver := recommend.NewResolver(primary, fallback, logger)

	// Membership orchestrator shared by the student and admin surfaces.
	flow := membership.NewOrchestrator(orgs, accounts, joined, saved, apps, forms, logger)

	// Profile picture storage.
	store, err := buildStorage(appCfg)
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return nil, err
	}

	// Google Calendar OAuth client and syncer.
	oauthCfg := &oauth2.Config{
		ClientID:     appCfg.GoogleClientID,
		ClientSecret: appCfg.GoogleClientSecret,
		RedirectURL:  appCfg.GoogleRedirectURL,
		Scopes:       []string{calendarapi.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}
	syncer := gcal.NewSyncer(caltokens, joined, events, oauthCfg, logger)

	// Background jobs.
	runner := tasks.NewRunner(logger)
	if appCfg.GoogleClientID != "" {
		runner.Add(tasks.CalendarSyncJob(syncer, appCfg.CalendarSyncPeriod))
	}
	runner.Start()

	rt.hub = hub
	rt.runner = runner

	r := chi.NewRouter()

	// Global auth middleware: resolves the bearer token into a SessionUser
	// available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	accountsHandler := accountsfeature.NewHandler(users, sessionMgr, logger)
	r.Mount("/auth", accountsfeature.Routes(accountsHandler, sessionMgr))

	profileHandler := profilefeature.NewHandler(profiles, hub, store, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

	surveyHandler := surveyfeature.NewHandler(surveys, hub, logger)
	r.Mount("/survey", surveyfeature.Routes(surveyHandler, sessionMgr))

	orgHandler := organizationsfeature.NewHandler(orgs, accounts, hub, logger)
	r.Mount("/organizations", organizationsfeature.Routes(orgHandler, sessionMgr))

	recHandler := recommendationsfeature.NewHandler(hub, resolver, logger)
	r.Mount("/recommendations", recommendationsfeature.Routes(recHandler, sessionMgr))

	savedHandler := savedfeature.NewHandler(saved, orgs, hub, logger)
	r.Mount("/saved", savedfeature.Routes(savedHandler, sessionMgr))

	membershipsHandler := membershipsfeature.NewHandler(flow, joined, orgs, forms, logger)
	r.Mount("/memberships", membershipsfeature.Routes(membershipsHandler, sessionMgr))

	orgadminHandler := orgadminfeature.NewHandler(accounts, orgs, forms, apps, events, flow, logger)
	r.Mount("/orgadmin", orgadminfeature.Routes(orgadminHandler, sessionMgr))

	calendarHandler := calendarfeature.NewHandler(caltokens, syncer, oauthCfg, logger)
	r.Mount("/calendar", calendarfeature.Routes(calendarHandler, sessionMgr))

	return r, nil
}
