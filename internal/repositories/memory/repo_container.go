package memory

import (
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every memory repository to one shared store.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:    NewAccountRepository(store),
		LedgerRepo:     NewLedgerRepository(store),
		AccessCodeRepo: NewAccessCodeRepository(store),
		TicketRepo:     NewTicketRepository(store),
		TxManager:      store,
	}
}
