package pgsql

import (
	portsrepo "github.com/SscSPs/investment_bot/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:    newPgxAccountRepository(dbPool),
		LedgerRepo:     newPgxLedgerRepository(dbPool),
		AccessCodeRepo: newPgxAccessCodeRepository(dbPool),
		TicketRepo:     newPgxTicketRepository(dbPool),
		TxManager:      NewTxManager(dbPool),
	}
}
