package app

import (
	"database/sql"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"go.uber.org/dig"

	"github.com/bizledger/cashbank/internal/audit"
	"github.com/bizledger/cashbank/internal/config"
	"github.com/bizledger/cashbank/internal/daterange"
	"github.com/bizledger/cashbank/internal/handlers"
	"github.com/bizledger/cashbank/internal/ledger"
	"github.com/bizledger/cashbank/internal/services"
)

// Injector is a function that will inject desired services
// to a target function
type Injector func(function interface{}) error

// Option supplies externally opened resources to the container.
type Option func(*dependencies)

type dependencies struct {
	db     *sql.DB
	redis  *redis.Client
	logger logrus.FieldLogger
}

func WithDB(db *sql.DB) Option {
	return func(d *dependencies) { d.db = db }
}

// WithRedis sets the idempotency store. A nil client disables the in-flight
// guard; the database unique index still applies.
func WithRedis(client *redis.Client) Option {
	return func(d *dependencies) { d.redis = client }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(d *dependencies) { d.logger = log }
}

// BootstrapServices setup di container with all app services
func BootstrapServices(appCfg *config.Config, opts ...Option) Injector {
	deps := &dependencies{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(deps)
	}

	c := dig.New()

	c.Provide(func() *config.Config { return appCfg })
	c.Provide(func() *sql.DB { return deps.db })
	c.Provide(func() logrus.FieldLogger { return deps.logger })

	c.Provide(func() services.IdempotencyGuard {
		return services.NewIdempotencyGuard(deps.redis, appCfg.Idempotency.TTL)
	})

	c.Provide(func(log logrus.FieldLogger) *audit.Logger {
		return audit.NewLogger(log)
	})

	c.Provide(services.NewValidationHelper)

	c.Provide(func() ledger.Policy {
		return ledger.Policy{AllowNegativeBalance: appCfg.Ledger.AllowNegativeBalance}
	})

	c.Provide(func() *daterange.Resolver {
		return daterange.NewResolver(appCfg.Ledger.FiscalYearStartMonth, appCfg.Ledger.Location())
	})

	c.Provide(services.NewAccountService)
	c.Provide(services.NewLedgerService)
	c.Provide(services.NewDashboardService)

	c.Provide(func(accounts *services.AccountService) *services.QRService {
		return services.NewQRService(accounts, appCfg.Ledger.Currency)
	})

	c.Provide(func(
		ledgerService *services.LedgerService,
		dashboard *services.DashboardService,
		resolver *daterange.Resolver,
		log logrus.FieldLogger,
	) *handlers.CashBankHandler {
		return handlers.NewCashBankHandler(ledgerService, dashboard, resolver, defaultRange(appCfg.Ledger.DefaultRange, log))
	})

	c.Provide(func(accounts *services.AccountService) *handlers.AccountHandler {
		return handlers.NewAccountHandler(accounts)
	})

	c.Provide(func(qr *services.QRService) *handlers.QRHandler {
		return handlers.NewQRHandler(qr)
	})

	c.Provide(NewRouter)

	return func(function interface{}) error {
		return c.Invoke(function)
	}
}

func defaultRange(name string, log logrus.FieldLogger) daterange.Name {
	parsed, err := daterange.ParseName(name)
	if err != nil || parsed == daterange.Custom {
		log.WithField("default_range", name).Warn("Unsupported default date range, using Last 30 Days")
		return daterange.Last30Days
	}
	return parsed
}
