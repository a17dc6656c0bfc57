package integration

import (
	"context"
	"fmt"
	"sync"

	"paylock-gateway/internal/core/domain"
	"paylock-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Username == a.Username {
			return fmt.Errorf("username already exists")
		}
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Balance Repo ---

type balanceKey struct {
	accountID uuid.UUID
	currency  string
}

type inMemoryBalanceRepo struct {
	mu       sync.RWMutex
	balances map[balanceKey]*domain.Balance
}

func newInMemoryBalanceRepo() *inMemoryBalanceRepo {
	return &inMemoryBalanceRepo{balances: make(map[balanceKey]*domain.Balance)}
}

func (r *inMemoryBalanceRepo) Get(ctx context.Context, accountID uuid.UUID, currency string) (*domain.Balance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.balances[balanceKey{accountID, currency}]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *inMemoryBalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, currency string) (*domain.Balance, error) {
	return r.Get(ctx, accountID, currency)
}

func (r *inMemoryBalanceRepo) Add(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, currency string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := balanceKey{accountID, currency}
	b, ok := r.balances[key]
	if !ok {
		b = &domain.Balance{AccountID: accountID, Currency: currency}
		r.balances[key] = b
	}
	b.Available += delta
	return nil
}

// --- In-Memory Ledger Entry Repo ---

type inMemoryLedgerEntryRepo struct {
	mu      sync.RWMutex
	entries []domain.LedgerEntry
}

func newInMemoryLedgerEntryRepo() *inMemoryLedgerEntryRepo {
	return &inMemoryLedgerEntryRepo{}
}

func (r *inMemoryLedgerEntryRepo) Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *inMemoryLedgerEntryRepo) ListByEntity(ctx context.Context, ref domain.EntityID) ([]domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.LedgerEntry
	for _, e := range r.entries {
		if e.EntityRef != nil && *e.EntityRef == ref {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- In-Memory Escrow Repo ---

type inMemoryEscrowRepo struct {
	mu      sync.RWMutex
	escrows map[domain.EntityID]*domain.Escrow
}

func newInMemoryEscrowRepo() *inMemoryEscrowRepo {
	return &inMemoryEscrowRepo{escrows: make(map[domain.EntityID]*domain.Escrow)}
}

func (r *inMemoryEscrowRepo) Create(ctx context.Context, e *domain.Escrow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.escrows[e.ID]; ok {
		return apperror.ErrDuplicateID()
	}
	cp := *e
	r.escrows[e.ID] = &cp
	return nil
}

func (r *inMemoryEscrowRepo) GetByID(ctx context.Context, id domain.EntityID) (*domain.Escrow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.escrows[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *inMemoryEscrowRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id domain.EntityID) (*domain.Escrow, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryEscrowRepo) Update(ctx context.Context, tx pgx.Tx, e *domain.Escrow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.escrows[e.ID]; !ok {
		return fmt.Errorf("escrow not found")
	}
	cp := *e
	r.escrows[e.ID] = &cp
	return nil
}

func (r *inMemoryEscrowRepo) ListByParticipant(ctx context.Context, accountID uuid.UUID) ([]domain.Escrow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Escrow
	for _, e := range r.escrows {
		if e.BuyerID == accountID || e.MerchantID == accountID {
			out = append(out, *e)
		}
	}
	return out, nil
}

// --- In-Memory Payment Link Repo ---

type inMemoryPaymentLinkRepo struct {
	mu    sync.RWMutex
	links map[domain.EntityID]*domain.PaymentLink
}

func newInMemoryPaymentLinkRepo() *inMemoryPaymentLinkRepo {
	return &inMemoryPaymentLinkRepo{links: make(map[domain.EntityID]*domain.PaymentLink)}
}

func (r *inMemoryPaymentLinkRepo) Create(ctx context.Context, l *domain.PaymentLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.links[l.ID]; ok {
		return apperror.ErrDuplicateID()
	}
	cp := *l
	r.links[l.ID] = &cp
	return nil
}

func (r *inMemoryPaymentLinkRepo) GetByID(ctx context.Context, id domain.EntityID) (*domain.PaymentLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.links[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *inMemoryPaymentLinkRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id domain.EntityID) (*domain.PaymentLink, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryPaymentLinkRepo) SetActive(ctx context.Context, tx pgx.Tx, id domain.EntityID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok {
		return fmt.Errorf("payment link not found")
	}
	l.Active = active
	return nil
}

func (r *inMemoryPaymentLinkRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.PaymentLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.PaymentLink
	for _, l := range r.links {
		if l.MerchantID == merchantID {
			out = append(out, *l)
		}
	}
	return out, nil
}

// --- In-Memory Receipt Repo ---

type inMemoryReceiptRepo struct {
	mu       sync.RWMutex
	receipts map[domain.EntityID]*domain.Receipt
}

func newInMemoryReceiptRepo() *inMemoryReceiptRepo {
	return &inMemoryReceiptRepo{receipts: make(map[domain.EntityID]*domain.Receipt)}
}

func (r *inMemoryReceiptRepo) Create(ctx context.Context, receipt *domain.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.receipts[receipt.ID]; ok {
		return apperror.ErrDuplicateID()
	}
	cp := *receipt
	r.receipts[receipt.ID] = &cp
	return nil
}

func (r *inMemoryReceiptRepo) Exists(ctx context.Context, id domain.EntityID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.receipts[id]
	return ok, nil
}

func (r *inMemoryReceiptRepo) ListByEntity(ctx context.Context, ref domain.EntityID) ([]domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Receipt
	for _, receipt := range r.receipts {
		if receipt.EntityRef == ref {
			out = append(out, *receipt)
		}
	}
	return out, nil
}

// --- In-Memory Currency Repo ---

type inMemoryCurrencyRepo struct {
	mu         sync.RWMutex
	currencies map[string]bool
}

func newInMemoryCurrencyRepo(enabled ...string) *inMemoryCurrencyRepo {
	r := &inMemoryCurrencyRepo{currencies: make(map[string]bool)}
	for _, code := range enabled {
		r.currencies[code] = true
	}
	return r
}

func (r *inMemoryCurrencyRepo) Upsert(ctx context.Context, code string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currencies[code] = enabled
	return nil
}

func (r *inMemoryCurrencyRepo) IsSupported(ctx context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currencies[code], nil
}

func (r *inMemoryCurrencyRepo) List(ctx context.Context) ([]domain.Currency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Currency
	for code, enabled := range r.currencies {
		out = append(out, domain.Currency{Code: code, Enabled: enabled})
	}
	return out, nil
}

// --- In-Memory Settings Repo ---

type inMemorySettingsRepo struct {
	mu       sync.RWMutex
	settings *domain.Settings
}

func newInMemorySettingsRepo() *inMemorySettingsRepo {
	return &inMemorySettingsRepo{}
}

func (r *inMemorySettingsRepo) Get(ctx context.Context) (*domain.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.settings == nil {
		return nil, fmt.Errorf("protocol settings not initialized")
	}
	cp := *r.settings
	return &cp, nil
}

func (r *inMemorySettingsRepo) Update(ctx context.Context, s *domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return fmt.Errorf("protocol settings not initialized")
	}
	cp := *s
	r.settings = &cp
	return nil
}

func (r *inMemorySettingsRepo) Ensure(ctx context.Context, defaults *domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		cp := *defaults
		r.settings = &cp
	}
	return nil
}

// --- In-Memory Transactor ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
