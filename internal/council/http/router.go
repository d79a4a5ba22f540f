package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/yplabs/council/internal/council/identity"
	"github.com/yplabs/council/internal/council/metrics"
	"github.com/yplabs/council/internal/council/service"
	"github.com/yplabs/council/internal/council/store"
	"github.com/yplabs/council/pkg/httpx"
	"github.com/yplabs/council/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	identity identity.Store

	IntakeService   *service.IntakeService
	ApprovalService *service.ApprovalService
	BulkService     *service.BulkService
	CohortService   *service.CohortService
	AccountService  *service.AccountService
	AuthzService    *service.AuthzService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	ident identity.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		identity:     ident,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metrics.Instrument,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerPublic()
	r.registerRequests()
	r.registerAccounts()
	r.registerYears()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerPublic() {
	// POST /requests - public intake, strict limit against queue flooding
	registerHandler := &RegisterHandler{IntakeService: r.IntakeService}
	r.Mux.Handle("POST /v1/requests",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/login - strict limit against credential stuffing
	loginHandler := &LoginHandler{AuthzService: r.AuthzService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerRequests() {
	h := &RequestsHandler{
		IntakeService:   r.IntakeService,
		ApprovalService: r.ApprovalService,
	}
	admin := requireAdmin(r.AuthzService)

	r.Mux.Handle("GET /v1/requests",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			admin,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/requests/{id}/approve",
		httpx.Chain(http.HandlerFunc(h.HandleApprove),
			admin,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/requests/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleReject),
			admin,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAccounts() {
	accountsHandler := &AccountsHandler{AccountService: r.AccountService}
	bulkHandler := &BulkHandler{BulkService: r.BulkService}
	admin := requireAdmin(r.AuthzService)

	r.Mux.Handle("POST /v1/accounts/bulk",
		httpx.Chain(bulkHandler,
			admin,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/accounts",
		httpx.Chain(http.HandlerFunc(accountsHandler.HandleList),
			admin,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/accounts/{identityID}",
		httpx.Chain(http.HandlerFunc(accountsHandler.HandleUpdate),
			admin,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/accounts/{identityID}",
		httpx.Chain(http.HandlerFunc(accountsHandler.HandleDelete),
			admin,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/accounts/{identityID}/reset-password",
		httpx.Chain(http.HandlerFunc(accountsHandler.HandleResetPassword),
			admin,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerYears() {
	h := &YearsHandler{CohortService: r.CohortService}
	admin := requireAdmin(r.AuthzService)

	// Listing is public so registration forms can offer valid years.
	r.Mux.Handle("GET /v1/years",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/years",
		httpx.Chain(http.HandlerFunc(h.HandleAdd),
			admin,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.identity))
	r.Mux.Handle("GET /metrics", metrics.Handler())
}
