package components

import (
	"log/slog"

	"github.com/membership-loyalty-core/internal/config"
	"github.com/membership-loyalty-core/internal/domain/account"
	"github.com/membership-loyalty-core/internal/domain/ledger"
	"github.com/membership-loyalty-core/internal/domain/outbox"
	"github.com/membership-loyalty-core/internal/domain/tier"
	"github.com/membership-loyalty-core/internal/order_processor/service"
	"github.com/membership-loyalty-core/internal/platform/persistence"
)

// CreateAccrualService creates a new AccrualService with all its dependencies.
func CreateAccrualService(
	pgDB *persistence.PostgresDB,
	accountRepo account.Repository,
	ledgerRepo ledger.Repository,
	tierRepo tier.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) service.AccrualService {
	validator := NewEventValidator(ledgerRepo, logger)
	accrualManager := NewAccrualManager(accountRepo, ledgerRepo, tierRepo, logger)
	outboxManager := NewOutboxManager(outboxRepo, logger)

	baseService := service.NewAccrualService(
		pgDB,
		validator,
		accrualManager,
		outboxManager,
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolAccrualService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)

	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool accrual service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
