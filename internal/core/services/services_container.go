package services

import (
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/investment_bot/internal/core/ports/services"
	"github.com/SscSPs/investment_bot/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, options ...ServiceOption) *portssvc.ServiceContainer {
	policy := cfg.ROIPolicy()
	options = append([]ServiceOption{WithOperationTimeout(cfg.OperationTimeout)}, options...)

	container := &portssvc.ServiceContainer{}

	// Balance service first since account payouts and ROI depend on it
	container.Balance = NewBalanceService(repos.AccountRepo, repos.LedgerRepo, repos.TxManager, options...)
	container.Account = NewAccountService(repos.AccountRepo, repos.LedgerRepo, repos.TxManager, policy, options...)
	container.AccessCode = NewAccessCodeService(repos.AccessCodeRepo, repos.AccountRepo, repos.LedgerRepo, repos.TxManager, policy, options...)
	container.ROI = NewROIEngine(repos.AccountRepo, container.Balance, ROIConfig{
		Policy:           policy,
		SweepConcurrency: cfg.ROISweepConcurrency,
	}, options...)
	container.Support = NewSupportService(repos.TicketRepo, repos.AccountRepo, repos.TxManager, options...)

	return container
}
