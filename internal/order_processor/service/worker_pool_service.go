package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/membership-loyalty-core/internal/domain/shared"
)

// WorkerPoolAccrualService implements the AccrualService interface
type WorkerPoolAccrualService struct {
	baseService AccrualService
	pool        *ants.Pool
	logger      *slog.Logger
	// Use a mutex to protect access to the results map
	mu      sync.Mutex
	results map[string]chan error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolAccrualService(
	baseService AccrualService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolAccrualService, error) {
	// Create a new worker pool with the specified size
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolAccrualService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		results:     make(map[string]chan error),
	}, nil
}

// ProcessOrderPaid submits an order-paid event to the worker pool for processing.
func (s *WorkerPoolAccrualService) ProcessOrderPaid(ctx context.Context, event *shared.OrderPaidEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Submitting order paid event to worker pool",
		"order_id", event.OrderID,
		"user_id", event.UserID.String(),
	)

	// Create a channel to receive the result of the accrual
	resultChan := make(chan error, 1)

	// Store the result channel in the result map
	orderID := event.OrderID
	s.mu.Lock()
	s.results[orderID] = resultChan
	s.mu.Unlock()

	// Create a copy of the event to avoid data races
	eventCopy := *event

	// Submit the task to the worker pool
	err := s.pool.Submit(func() {
		// Process the event using the base service
		err := s.baseService.ProcessOrderPaid(ctx, &eventCopy)

		// Send the result to the channel
		resultChan <- err

		// Remove the result channel from the map
		s.mu.Lock()
		delete(s.results, orderID)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		// If we couldn't submit the task to the pool, remove the result channel
		s.mu.Lock()
		delete(s.results, orderID)
		close(resultChan)
		s.mu.Unlock()

		logger.Error("Failed to submit order paid event to worker pool",
			"order_id", event.OrderID,
			"error", err,
		)
		return err
	}

	// Wait for the result from the worker
	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolAccrualService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolAccrualService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolAccrualService) Capacity() int {
	return s.pool.Cap()
}
