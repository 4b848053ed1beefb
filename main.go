package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"pos-server/core"
	"pos-server/handlers/api/businesses"
	"pos-server/handlers/api/categories"
	"pos-server/handlers/api/expenses"
	"pos-server/handlers/api/products"
	"pos-server/handlers/api/sales"
	"pos-server/handlers/api/shifts"
	"pos-server/handlers/api/supplies"
	"pos-server/handlers/api/tables"
	"pos-server/handlers/api/users"
	"pos-server/handlers/auth"
	authMiddleware "pos-server/middleware"
	"pos-server/realtime"
	"pos-server/stores"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func allowedOrigins() []string {
	raw := os.Getenv("REALTIME_ALLOWED_ORIGINS")
	if raw == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func setupRouter(store stores.Store, images core.ImageStore, rt *realtime.Broadcaster) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return rt.OriginAllowed(origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "Origin", "Host", "Connection", "Accept-Encoding", "Accept-Language", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", auth.HandleLogin)
		r.Get("/oidc/login", auth.HandleOIDCLogin)
		r.Get("/oidc/callback", auth.HandleOIDCCallback)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware.AuthJWT)

		r.Get("/realtime/rooms", func(w http.ResponseWriter, req *http.Request) {
			render.JSON(w, req, rt.Rooms())
		})

		r.Route("/businesses", func(r chi.Router) {
			r.Get("/current", businesses.HandleGetCurrent(store))
			r.Get("/logo", businesses.HandleGetLogo(store, images))
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireRole(core.RoleAdmin))
				r.Get("/", businesses.HandleList(store))
				r.Post("/", businesses.HandleCreate(store))
				r.Put("/current", businesses.HandleUpdate(store))
				r.Delete("/{id}", businesses.HandleDelete(store))
				r.Post("/logo", businesses.HandleUploadLogo(store, images))
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authMiddleware.RequireRole(core.RoleAdmin))
			r.Get("/", users.HandleList(store))
			r.Post("/", users.HandleCreate(store))
			r.Put("/{id}", users.HandleUpdate(store))
			r.Delete("/{id}", users.HandleDelete(store))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categories.HandleList(store))
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireRole(core.RoleAdmin))
				r.Post("/", categories.HandleCreate(store, rt))
				r.Put("/{id}", categories.HandleUpdate(store, rt))
				r.Delete("/{id}", categories.HandleDelete(store, rt))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.HandleList(store))
			r.Get("/{id}", products.HandleGet(store))
			r.Get("/{id}/image", products.HandleGetImage(store, images))
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireRole(core.RoleAdmin))
				r.Post("/", products.HandleCreate(store, rt))
				r.Put("/{id}", products.HandleUpdate(store, rt))
				r.Delete("/{id}", products.HandleDelete(store, images, rt))
				r.Post("/{id}/stock", products.HandleAdjustStock(store, rt))
				r.Post("/{id}/image", products.HandleUploadImage(store, images, rt))
			})
		})

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", tables.HandleList(store))
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireRole(core.RoleAdmin))
				r.Post("/", tables.HandleCreate(store))
				r.Put("/{id}", tables.HandleUpdate(store))
				r.Delete("/{id}", tables.HandleDelete(store))
			})
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", sales.HandleList(store))
			r.Post("/", sales.HandleCreate(store, rt))
			r.Get("/{id}", sales.HandleGet(store))
			r.Post("/{id}/cancel", sales.HandleCancel(store, rt))
			r.Post("/{id}/payments", sales.HandleAddPayment(store, rt))
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/current", shifts.HandleCurrent(store))
			r.Post("/", shifts.HandleOpen(store, rt))
			r.Post("/{id}/close", shifts.HandleClose(store, rt))
			r.Get("/current/cash-movements", shifts.HandleListCashMovements(store))
			r.Post("/current/cash-movements", shifts.HandleAddCashMovement(store, rt))
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", expenses.HandleList(store))
			r.Post("/", expenses.HandleCreate(store, rt))
			r.Delete("/{id}", expenses.HandleDelete(store, rt))
		})

		r.Route("/supplies", func(r chi.Router) {
			r.Get("/", supplies.HandleList(store))
			r.Post("/", supplies.HandleCreate(store, rt))
		})
	})

	return r
}

// seedDefaults makes a fresh install usable: one business and one admin.
func seedDefaults(store stores.Store) {
	ctx := context.Background()

	existing, err := store.ListBusinesses(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to check existing businesses")
	}
	if len(existing) > 0 {
		return
	}

	businessName := os.Getenv("DEFAULT_BUSINESS_NAME")
	if businessName == "" {
		businessName = "My Restaurant"
	}
	businessID, err := store.CreateBusiness(ctx, &core.Business{Name: businessName})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create default business")
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
		logrus.Warn("ADMIN_PASSWORD is not set, using the default password")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to hash admin password")
	}
	if _, err := store.CreateUser(ctx, &core.User{
		BusinessID:   businessID,
		Username:     "admin",
		Name:         "Administrator",
		Role:         core.RoleAdmin,
		PasswordHash: hash,
	}); err != nil {
		logrus.WithError(err).Fatal("Failed to create default admin user")
	}

	logrus.WithFields(logrus.Fields{
		"business": businessName,
		"username": "admin",
	}).Info("Seeded default business and admin user")
}

func waitForShutdown(rt *realtime.Broadcaster) {
	exit := make(chan struct{})
	signalC := make(chan os.Signal, 1)

	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range signalC {
			switch s {
			case os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	logrus.Info("Shutting down...")
	rt.Close()
	os.Exit(0)
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":3002", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	store := stores.GetStore()
	images := stores.GetImageStore()
	seedDefaults(store)
	auth.InitAuth(store)

	rt := realtime.New()
	rt.Initialize(realtime.Options{
		AllowedOrigins: allowedOrigins(),
	})

	r := setupRouter(store, images, rt)
	r.Mount("/socket.io/", rt.ServeHandler())

	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := http.ListenAndServe(*listenAddress, r); err != nil {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(rt)
}
