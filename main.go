package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	adminhandlers "predictcore/handlers/admin"
	"predictcore/handlers/markets"
	"predictcore/handlers/traders"

	"predictcore/events"
	"predictcore/middleware"
	"predictcore/migration"
	_ "predictcore/migration/migrations"
	"predictcore/oracle"
	"predictcore/seed"
	"predictcore/setup"
)

func main() {
	configPath := flag.String("config", "setup.yaml", "path to the YAML config file")
	seedDemo := flag.Bool("seed", false, "seed demo traders and markets, then continue serving")
	flag.Parse()

	// .env is optional; environment overrides still apply without it.
	_ = godotenv.Load()

	cfg, err := setup.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := setup.OpenDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := migration.RunAll(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	if *seedDemo {
		if err := seed.Run(db, cfg); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	adapters := oracle.Adapters{
		Prices: oracle.NewHTTPFeed(cfg.Oracle.Feeds),
		Pool:   oracle.NewHTTPPool(cfg.Oracle.PoolEndpoint, cfg.Oracle.PoolTokenA, cfg.Oracle.PoolTokenB),
	}

	limiter := middleware.NewRateLimiter(5, 10)

	r := mux.NewRouter()
	v0 := r.PathPrefix("/v0").Subrouter()

	v0.HandleFunc("/traders/register", traders.RegisterHandler(db, cfg)).Methods(http.MethodPost)
	v0.HandleFunc("/traders/me", traders.MeHandler(db)).Methods(http.MethodGet)

	v0.HandleFunc("/markets", markets.CreateMarketHandler(db, cfg)).Methods(http.MethodPost)
	v0.HandleFunc("/markets", markets.ListMarketsHandler(db)).Methods(http.MethodGet)
	v0.HandleFunc("/markets/{id}", markets.MarketDetailHandler(db)).Methods(http.MethodGet)
	v0.Handle("/markets/{id}/buy",
		limiter.Wrap(markets.BuySharesHandler(db, cfg))).Methods(http.MethodPost)
	v0.HandleFunc("/markets/{id}/resolve", markets.ResolveMarketHandler(db, adapters)).Methods(http.MethodPost)
	v0.HandleFunc("/markets/{id}/payout", markets.TotalPayoutHandler(db)).Methods(http.MethodGet)
	v0.HandleFunc("/markets/{id}/payout/{address}", markets.TraderPayoutHandler(db)).Methods(http.MethodGet)
	v0.HandleFunc("/markets/{id}/claim", markets.ClaimPayoutHandler(db)).Methods(http.MethodPost)
	v0.HandleFunc("/markets/{id}/leaderboard", markets.LeaderboardHandler(db)).Methods(http.MethodGet)
	v0.HandleFunc("/markets/{id}/participants", markets.ParticipantsHandler(db)).Methods(http.MethodGet)
	v0.HandleFunc("/markets/{id}/whales", markets.WhaleBetsHandler(db)).Methods(http.MethodGet)

	v0.HandleFunc("/events", events.FeedHandler(db)).Methods(http.MethodGet)

	v0.HandleFunc("/admin/login", adminhandlers.LoginHandler(cfg)).Methods(http.MethodPost)
	v0.HandleFunc("/admin/fees", adminhandlers.FeeBalanceHandler(db, cfg)).Methods(http.MethodGet)
	v0.HandleFunc("/admin/fees/withdraw", adminhandlers.WithdrawFeesHandler(db, cfg)).Methods(http.MethodPost)
	v0.HandleFunc("/admin/markets/{id}/emergency-withdraw", adminhandlers.EmergencyWithdrawHandler(db, cfg)).Methods(http.MethodPost)

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key"},
	}).Handler(r)

	log.Printf("predictcore listening on %s", cfg.Server.ListenAddr)
	if err := http.ListenAndServe(cfg.Server.ListenAddr, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
