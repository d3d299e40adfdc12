package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danthegoodman1/tinyrdb/database"
	"github.com/danthegoodman1/tinyrdb/executor"
	"github.com/danthegoodman1/tinyrdb/gologger"
	"github.com/danthegoodman1/tinyrdb/table"
)

const (
	WalletsTable = "wallets"
	LedgerTable  = "ledger"

	StatusActive   = "active"
	StatusInactive = "inactive"

	DirectionDebit = "debit"

	TimestampFormat = "2006-01-02 15:04:05"
)

var (
	logger = gologger.NewLogger()

	ErrWalletExists      = errors.New("wallet exists")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrWalletInactive    = errors.New("wallet inactive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

var (
	walletColumns = []table.Column{
		{Name: "wallet_id", Type: table.TypeInt},
		{Name: "owner", Type: table.TypeStr},
		{Name: "balance", Type: table.TypeFloat},
		{Name: "status", Type: table.TypeStr},
	}
	ledgerColumns = []table.Column{
		{Name: "transaction_id", Type: table.TypeInt},
		{Name: "wallet_id", Type: table.TypeInt},
		{Name: "owner", Type: table.TypeStr},
		{Name: "amount", Type: table.TypeFloat},
		{Name: "direction", Type: table.TypeStr},
		{Name: "timestamp", Type: table.TypeStr},
	}
)

type (
	// Service runs wallet operations under the executor lock so they never
	// interleave with SQL statements.
	Service struct {
		exec *executor.Executor
		now  func() time.Time
	}

	Edit struct {
		Owner string
		Topup float64
	}

	Dashboard struct {
		Wallets            []table.Row `json:"wallets"`
		RecentTransactions []table.Row `json:"recentTransactions"`
		TotalWallets       int         `json:"totalWallets"`
		ActiveWallets      int         `json:"activeWallets"`
		TotalBalance       float64     `json:"totalBalance"`
		TotalSpent         float64     `json:"totalSpent"`
	}
)

func NewService(exec *executor.Executor) *Service {
	return &Service{exec: exec, now: time.Now}
}

// EnsureTables creates the wallets and ledger tables if they are missing.
func EnsureTables(ctx context.Context, db *database.Database) error {
	created, err := db.CreateTable(ctx, WalletsTable, walletColumns, "wallet_id", []string{"wallet_id"})
	if err != nil {
		return fmt.Errorf("error creating wallets table: %w", err)
	}
	if created {
		logger.Info().Msg("created wallets table")
	}
	created, err = db.CreateTable(ctx, LedgerTable, ledgerColumns, "transaction_id", []string{"transaction_id"})
	if err != nil {
		return fmt.Errorf("error creating ledger table: %w", err)
	}
	if created {
		logger.Info().Msg("created ledger table")
	}
	return nil
}

func (s *Service) EnsureTables(ctx context.Context) error {
	return s.exec.WithDatabase(ctx, EnsureTables)
}

func (s *Service) Create(ctx context.Context, walletID int64, owner string, balance float64) (row table.Row, err error) {
	err = s.exec.WithDatabase(ctx, func(ctx context.Context, db *database.Database) error {
		wallets, err := db.Table(WalletsTable)
		if err != nil {
			return err
		}
		if _, exists := wallets.Find("wallet_id", walletID); exists {
			return fmt.Errorf("%w: %d", ErrWalletExists, walletID)
		}
		row, err = wallets.Insert(ctx, table.Row{
			"wallet_id": walletID,
			"owner":     owner,
			"balance":   balance,
			"status":    StatusActive,
		})
		return err
	})
	return
}

// Edit renames the owner when a new name is given and adds a positive topup
// to the balance.
func (s *Service) Edit(ctx context.Context, walletID int64, edit Edit) (row table.Row, err error) {
	err = s.exec.WithDatabase(ctx, func(ctx context.Context, db *database.Database) error {
		wallets, w, err := findWallet(db, walletID)
		if err != nil {
			return err
		}

		changes := table.Row{}
		if edit.Owner != "" {
			changes["owner"] = edit.Owner
		}
		if edit.Topup > 0 {
			changes["balance"] = balanceOf(w) + edit.Topup
		}
		if len(changes) > 0 {
			if err := wallets.Update(ctx, "wallet_id", walletID, changes); err != nil {
				return err
			}
		}
		row, _ = wallets.Find("wallet_id", walletID)
		return nil
	})
	return
}

func (s *Service) Deactivate(ctx context.Context, walletID int64) error {
	return s.exec.WithDatabase(ctx, func(ctx context.Context, db *database.Database) error {
		wallets, _, err := findWallet(db, walletID)
		if err != nil {
			return err
		}
		return wallets.Update(ctx, "wallet_id", walletID, table.Row{"status": StatusInactive})
	})
}

// Pay debits an active wallet and records the debit in the ledger. The
// returned row is the ledger entry.
func (s *Service) Pay(ctx context.Context, walletID int64, amount float64) (entry table.Row, err error) {
	err = s.exec.WithDatabase(ctx, func(ctx context.Context, db *database.Database) error {
		entry, err = Debit(ctx, db, walletID, amount, s.now())
		return err
	})
	return
}

// Debit removes amount from the wallet balance and appends a ledger row.
// The wallet must be active and hold at least amount.
func Debit(ctx context.Context, db *database.Database, walletID int64, amount float64, at time.Time) (table.Row, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	wallets, w, err := findWallet(db, walletID)
	if err != nil {
		return nil, err
	}
	ledger, err := db.Table(LedgerTable)
	if err != nil {
		return nil, err
	}

	if w["status"] != StatusActive {
		return nil, fmt.Errorf("%w: %d", ErrWalletInactive, walletID)
	}
	balance := balanceOf(w)
	if balance < amount {
		return nil, fmt.Errorf("%w: balance %v, amount %v", ErrInsufficientFunds, balance, amount)
	}

	if err := wallets.Update(ctx, "wallet_id", walletID, table.Row{"balance": balance - amount}); err != nil {
		return nil, fmt.Errorf("error debiting wallet %d: %w", walletID, err)
	}

	entry, err := ledger.Insert(ctx, table.Row{
		"wallet_id": walletID,
		"owner":     w["owner"],
		"amount":    amount,
		"direction": DirectionDebit,
		"timestamp": at.Format(TimestampFormat),
	})
	if err != nil {
		logger.Error().Err(err).Int64("walletID", walletID).Msg("ledger insert failed, restoring balance")
		if rerr := wallets.Update(ctx, "wallet_id", walletID, table.Row{"balance": balance}); rerr != nil {
			logger.Error().Err(rerr).Int64("walletID", walletID).Msg("error restoring balance")
		}
		return nil, fmt.Errorf("error recording ledger entry: %w", err)
	}
	return entry, nil
}

func (s *Service) Dashboard(ctx context.Context) (dash *Dashboard, err error) {
	err = s.exec.WithDatabase(ctx, func(ctx context.Context, db *database.Database) error {
		dash, err = BuildDashboard(db)
		return err
	})
	return
}

// BuildDashboard summarizes every wallet and the ten most recent ledger rows.
func BuildDashboard(db *database.Database) (*Dashboard, error) {
	wallets, err := db.Table(WalletsTable)
	if err != nil {
		return nil, err
	}
	dash := &Dashboard{Wallets: wallets.Rows(), RecentTransactions: []table.Row{}}
	dash.TotalWallets = len(dash.Wallets)
	for _, w := range dash.Wallets {
		if w["status"] == StatusActive {
			dash.ActiveWallets++
		}
		dash.TotalBalance += balanceOf(w)
	}

	ledger, err := db.Table(LedgerTable)
	if errors.Is(err, database.ErrUnknownTable) {
		return dash, nil
	}
	if err != nil {
		return nil, err
	}
	txs := ledger.Rows()
	for _, tx := range txs {
		if amount, ok := tx["amount"].(float64); ok && tx["direction"] == DirectionDebit {
			dash.TotalSpent += amount
		}
	}
	if len(txs) > 10 {
		txs = txs[len(txs)-10:]
	}
	dash.RecentTransactions = txs
	return dash, nil
}

func findWallet(db *database.Database, walletID int64) (*table.Table, table.Row, error) {
	wallets, err := db.Table(WalletsTable)
	if err != nil {
		return nil, nil, err
	}
	w, ok := wallets.Find("wallet_id", walletID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d", ErrWalletNotFound, walletID)
	}
	return wallets, w, nil
}

func balanceOf(w table.Row) float64 {
	b, _ := w["balance"].(float64)
	return b
}
