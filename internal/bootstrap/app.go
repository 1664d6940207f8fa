package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kingsign-backend/internal/api"
	"kingsign-backend/internal/apikeys"
	googleauth "kingsign-backend/internal/auth"
	"kingsign-backend/internal/contacts"
	"kingsign-backend/internal/documents"
	"kingsign-backend/internal/events"
	"kingsign-backend/internal/fields"
	"kingsign-backend/internal/files"
	"kingsign-backend/internal/footprints"
	"kingsign-backend/internal/integrations"
	"kingsign-backend/internal/queue"
	"kingsign-backend/internal/services/health"
	"kingsign-backend/internal/shared/config"
	"kingsign-backend/internal/shared/server"
	"kingsign-backend/internal/shared/server/respond"
	"kingsign-backend/internal/shared/storage/db"
	"kingsign-backend/internal/shared/storage/object"
	localstore "kingsign-backend/internal/shared/storage/object/local"
	s3store "kingsign-backend/internal/shared/storage/object/s3"
	"kingsign-backend/internal/signing"
	"kingsign-backend/internal/signingtokens"
	"kingsign-backend/internal/templates"
	"kingsign-backend/internal/users"
	"kingsign-backend/internal/workspaces"
)

// Development fallbacks used only when ENV is dev or local.
const (
	devPublicSignSecret = "dev-public-sign-secret"
	devEncryptionSecret = "dev-encryption-secret"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	Publisher events.Publisher
	inProcess *events.InProcess

	Users        *users.Service
	Workspaces   *workspaces.Service
	Files        *files.Service
	Templates    *templates.Service
	Fields       *fields.Service
	Documents    *documents.Service
	Contacts     *contacts.Service
	Integrations *integrations.Service
	Footprints   *footprints.Recorder
	Tokens       *signingtokens.Service
	APIKeys      *apikeys.Issuer
	Coordinator  *signing.Coordinator
	Dispatcher   *integrations.Dispatcher
	Actions      *api.Dispatcher
	Health       *health.Service
	GoogleAuth   *googleauth.GoogleService
}

type repos struct {
	users        users.Repo
	workspaces   workspaces.Repo
	files        files.Repo
	templates    templates.Repo
	fields       fields.Repo
	documents    documents.Repo
	contacts     contacts.Repo
	integrations integrations.Repo
	footprints   footprints.Repo
}

// Build prepares shared dependencies and the router with the API server pool.
func Build(cfg config.Config) (*App, error) {
	return BuildWith(cfg, db.DefaultServerOptions())
}

// BuildWith is Build with explicit database pool defaults; DB_* env vars
// still override them.
func BuildWith(cfg config.Config, pool db.Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if err := applySecretDefaults(&cfg); err != nil {
		return nil, err
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg, pool)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}
	buildServices(app, buildRepos(sqlDB))
	app.Router = server.NewRouter(routerDeps(app))
	return app, nil
}

// DeliverEvent runs the webhook fan-out for one published event. It is the
// handler behind both the in-process publisher and cmd/worker.
func (a *App) DeliverEvent(ctx context.Context, e events.Event) {
	if a == nil || a.Dispatcher == nil {
		return
	}
	a.Dispatcher.Notify(ctx, e.Type, e.DocumentID)
}

// Close waits for in-flight in-process deliveries and releases the database.
func (a *App) Close() error {
	if a.inProcess != nil {
		a.inProcess.Wait()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

func applySecretDefaults(cfg *config.Config) error {
	dev := config.IsDevLike(cfg.Env)
	if strings.TrimSpace(cfg.PublicSignSecret) == "" {
		if !dev {
			return errors.New("PUBLIC_SIGN_SECRET is required")
		}
		log.Printf("bootstrap: PUBLIC_SIGN_SECRET empty; using development secret")
		cfg.PublicSignSecret = devPublicSignSecret
	}
	if strings.TrimSpace(cfg.EncryptionSecret) == "" {
		if !dev {
			return errors.New("ENCRYPTION_SECRET is required")
		}
		log.Printf("bootstrap: ENCRYPTION_SECRET empty; using development secret")
		cfg.EncryptionSecret = devEncryptionSecret
	}
	return nil
}

func buildDB(ctx context.Context, cfg config.Config, pool db.Options) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(pool))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			log.Printf("bootstrap: database unavailable; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:   cfg.AWSRegion,
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			Endpoint: cfg.S3Endpoint,
			KMSKeyID: cfg.SSEKMSKeyID,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.WebhookQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.WebhookQueueURL, cfg.AWSRegion)
}

func buildRepos(sqlDB *sql.DB) repos {
	if sqlDB != nil {
		return repos{
			users:        &users.PGRepo{DB: sqlDB},
			workspaces:   &workspaces.PGRepo{DB: sqlDB},
			files:        &files.PGRepo{DB: sqlDB},
			templates:    &templates.PGRepo{DB: sqlDB},
			fields:       &fields.PGRepo{DB: sqlDB},
			documents:    &documents.PGRepo{DB: sqlDB},
			contacts:     &contacts.PGRepo{DB: sqlDB},
			integrations: &integrations.PGRepo{DB: sqlDB},
			footprints:   &footprints.PGRepo{DB: sqlDB},
		}
	}
	return repos{
		users:        users.NewMemoryRepo(),
		workspaces:   workspaces.NewMemoryRepo(),
		files:        files.NewMemoryRepo(),
		templates:    templates.NewMemoryRepo(),
		fields:       fields.NewMemoryRepo(),
		documents:    documents.NewMemoryRepo(),
		contacts:     contacts.NewMemoryRepo(),
		integrations: integrations.NewMemoryRepo(),
		footprints:   footprints.NewMemoryRepo(),
	}
}

func buildServices(app *App, r repos) {
	cfg := app.Config

	app.Files = files.NewService(app.Store, r.files, cfg.DownloadURLTTL)
	app.Fields = fields.NewService(r.fields, r.documents)
	app.Templates = templates.NewService(r.templates, app.Files, app.Fields, r.documents)
	app.Contacts = contacts.NewService(r.contacts)
	app.Documents = documents.NewService(r.documents, app.Fields, app.Templates, app.Contacts)
	app.Integrations = integrations.NewService(r.integrations)
	app.Footprints = footprints.NewRecorder(r.footprints)
	app.Tokens = signingtokens.NewService(cfg.PublicSignSecret, cfg.PublicSignTTL)
	app.APIKeys = apikeys.NewIssuer(apikeys.NewCodec(cfg.EncryptionSecret), cfg.APIKeyPrefix)
	app.Workspaces = workspaces.NewService(r.workspaces, app.APIKeys, app.Documents)
	app.Users = users.NewService(r.users, app.Workspaces)
	app.Dispatcher = integrations.NewDispatcher(app.Documents, r.integrations, cfg.WebhookTimeout)
	app.Actions = api.NewDispatcher(app.Templates, app.Documents, app.Contacts, app.Files)
	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		app.Users,
	)
	if app.DB != nil {
		app.Health = health.NewService(app.DB)
	} else {
		app.Health = health.NewService(nil)
	}

	if app.Queue != nil {
		app.Publisher = events.NewQueuePublisher(app.Queue)
	} else {
		app.inProcess = events.NewInProcess(app.DeliverEvent)
		app.Publisher = app.inProcess
	}
	app.Coordinator = signing.NewCoordinator(app.Fields, app.Documents, app.Footprints, app.Publisher)
}

func routerDeps(app *App) server.RouterDeps {
	return server.RouterDeps{
		Config:       app.Config,
		Health:       healthHandler(app.Health),
		GoogleAuth:   app.GoogleAuth,
		Users:        users.NewHandler(app.Users),
		Workspaces:   workspaces.NewHandler(app.Workspaces),
		TokenIssuer:  signingtokens.NewHandler(app.Tokens, app.Workspaces),
		SessionSign:  signing.NewHandler(app.Coordinator, app.Workspaces),
		OwnerCheck:   workspaces.RequireOwner(app.Workspaces),
		Templates:    templates.NewHandler(app.Templates),
		Documents:    documents.NewHandler(app.Documents),
		Contacts:     contacts.NewHandler(app.Contacts),
		Files:        files.NewHandler(app.Files),
		Integrations: integrations.NewHandler(app.Integrations),
		PublicAuth:   signingtokens.Middleware(app.Tokens),
		PublicSign:   signing.NewPublicHandler(app.Coordinator, app.Documents, app.Fields),
		APIKeyAuth:   apikeys.Middleware(app.APIKeys, app.Workspaces),
		API:          api.NewHandler(app.Actions),
	}
}

func healthHandler(svc *health.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, ok := svc.Status(c.Request.Context())
		if !ok {
			respond.JSON(c, http.StatusServiceUnavailable, status)
			return
		}
		respond.JSON(c, http.StatusOK, status)
	}
}
