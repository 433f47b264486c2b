package api

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/lunch-orders/internal/api/middleware"
	"github.com/example/lunch-orders/internal/auth"
)

// NewRouter wires the HTTP surface. Everything except sign-in requires a
// valid access token; menu and calendar changes additionally require the
// admin role.
func NewRouter(handlers *Handlers, authHandlers *AuthHandlers, jwtService *auth.JWTService, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.AuthMiddleware(jwtService)
	requireAdmin := func(h http.HandlerFunc) http.Handler {
		return requireAuth(middleware.RequireRole("admin")(h))
	}

	// Auth
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		authHandlers.Login(w, r)
	})
	mux.Handle("/auth/logout", requireAuth(http.HandlerFunc(authHandlers.Logout)))
	mux.Handle("/auth/me", requireAuth(http.HandlerFunc(authHandlers.Me)))

	// Menus
	mux.Handle("/menus", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetMenus(w, r)
		case http.MethodPost:
			requireAdmin(handlers.CreateMenu).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/menus/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.Contains(path, "/fillings/") && r.Method == http.MethodPut:
			requireAdmin(handlers.UpdateFilling).ServeHTTP(w, r)
		case strings.HasSuffix(path, "/fillings") && r.Method == http.MethodPost:
			requireAdmin(handlers.AddFilling).ServeHTTP(w, r)
		case r.Method == http.MethodPut:
			requireAdmin(handlers.RenameMenu).ServeHTTP(w, r)
		case r.Method == http.MethodGet:
			handlers.GetMenu(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Calendars
	mux.Handle("/calendars", requireAdmin(handlers.CreateCalendar))

	mux.Handle("/calendars/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.Contains(path, "/withdrawals/") && r.Method == http.MethodDelete:
			requireAdmin(handlers.ReinstateDate).ServeHTTP(w, r)
		case strings.HasSuffix(path, "/withdrawals") && r.Method == http.MethodPost:
			requireAdmin(handlers.WithdrawDate).ServeHTTP(w, r)
		case strings.HasSuffix(path, "/cutoff") && r.Method == http.MethodPut:
			requireAdmin(handlers.MoveCutoff).ServeHTTP(w, r)
		case r.Method == http.MethodGet:
			handlers.GetCalendar(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Orders
	mux.Handle("/orders", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetOrders(w, r)
		case http.MethodPost:
			handlers.PlaceOrder(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/orders/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/filling") && r.Method == http.MethodPut:
			handlers.ChangeOrderFilling(w, r)
		case strings.HasSuffix(path, "/date") && r.Method == http.MethodPut:
			handlers.ChangeOrderDate(w, r)
		case strings.HasSuffix(path, "/bread") && r.Method == http.MethodPost:
			handlers.AddBread(w, r)
		case strings.HasSuffix(path, "/bread") && r.Method == http.MethodDelete:
			handlers.RemoveBread(w, r)
		case strings.HasSuffix(path, "/cancel") && r.Method == http.MethodPost:
			handlers.CancelOrder(w, r)
		case r.Method == http.MethodGet:
			handlers.GetOrder(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	return withLogging(mux, log)
}

func withLogging(next http.Handler, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}
