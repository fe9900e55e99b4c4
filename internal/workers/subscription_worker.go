package workers

import (
	"context"
	"time"

	"hirehub_backend/internal/config"
	"hirehub_backend/internal/logger"
	"hirehub_backend/internal/services"
)

// SubscriptionWorker периодически помечает истекшие подписки и
// приводит их аккаунты к квотам бесплатного плана
type SubscriptionWorker struct {
	subscriptionService services.SubscriptionService
}

func NewSubscriptionWorker(subscriptionService services.SubscriptionService) *SubscriptionWorker {
	return &SubscriptionWorker{subscriptionService: subscriptionService}
}

// Start запускает фоновые задачи для подписок
func (w *SubscriptionWorker) Start(ctx context.Context) {
	go w.sweepExpired(ctx)
	go w.notifyExpiring(ctx)
}

func (w *SubscriptionWorker) sweepExpired(ctx context.Context) {
	interval := time.Duration(config.GetConfig().Billing.SweepInterval) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Первый проход сразу при старте: истечения, накопившиеся за простой
	w.runSweep()

	for {
		select {
		case <-ctx.Done():
			logger.Info("subscription worker stopped")
			return
		case <-ticker.C:
			w.runSweep()
		}
	}
}

func (w *SubscriptionWorker) runSweep() {
	err := w.subscriptionService.ProcessExpiredSubscriptions()
	logger.WorkerLog("subscription", "sweep expired", err)
}

func (w *SubscriptionWorker) notifyExpiring(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := w.subscriptionService.NotifyExpiringSubscriptions()
			logger.WorkerLog("subscription", "notify expiring", err)
		}
	}
}
