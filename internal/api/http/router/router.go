package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dtroode/fileshare-server/internal/api/http/handler"
	"github.com/dtroode/fileshare-server/internal/api/http/middleware"
	"github.com/dtroode/fileshare-server/internal/logger"
	"github.com/dtroode/fileshare-server/internal/model"
	"github.com/dtroode/fileshare-server/internal/service"
)

// Router wires HTTP routes, handlers and middleware.
type Router struct {
	authService    *service.Auth
	fileService    *service.File
	accessService  *service.Access
	tokenManager   model.TokenManager
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates a new Router instance.
func New(
	authService *service.Auth,
	fileService *service.File,
	accessService *service.Access,
	tokenManager model.TokenManager,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		fileService:    fileService,
		accessService:  accessService,
		tokenManager:   tokenManager,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register builds the HTTP handler tree. Auth endpoints are public,
// file endpoints require a bearer token, and link resolution accepts
// anonymous requests so the engine itself can reject them with 401.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenManager, r.contextManager, r.logger)

	authHandler := handler.NewAuth(r.authService, r.logger)
	fileHandler := handler.NewFile(r.fileService, r.accessService, r.contextManager, r.logger)
	shareHandler := handler.NewShare(r.accessService, r.contextManager, r.logger)

	root := mux.NewRouter()
	api := root.PathPrefix("/api").Subrouter()

	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	fileRoutes := api.PathPrefix("/files").Subrouter()
	fileRoutes.Use(authenticate.Require)
	fileRoutes.HandleFunc("", fileHandler.List).Methods(http.MethodGet)
	fileRoutes.HandleFunc("/upload", fileHandler.Upload).Methods(http.MethodPost)
	fileRoutes.HandleFunc("/shared-with-me", fileHandler.SharedWithMe).Methods(http.MethodGet)
	fileRoutes.HandleFunc("/download/{fileId}", fileHandler.Download).Methods(http.MethodGet)
	fileRoutes.HandleFunc("/{fileId}", fileHandler.Delete).Methods(http.MethodDelete)

	linkRoutes := api.PathPrefix("/shares/link").Subrouter()
	linkRoutes.Use(authenticate.Optional)
	linkRoutes.HandleFunc("/{shareLink}", shareHandler.ResolveLink).Methods(http.MethodGet)

	shareRoutes := api.PathPrefix("/shares").Subrouter()
	shareRoutes.Use(authenticate.Require)
	shareRoutes.HandleFunc("/share-user", shareHandler.ShareWithUsers).Methods(http.MethodPost)
	shareRoutes.HandleFunc("/generate-link", shareHandler.GenerateLink).Methods(http.MethodPost)
	shareRoutes.HandleFunc("/{shareId}", shareHandler.Revoke).Methods(http.MethodDelete)

	return logging.Handle(root)
}
