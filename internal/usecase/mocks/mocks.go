package mocks

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gocommission/internal/domain"
	"github.com/iho/gocommission/internal/usecase"
)

// stage runs fn when tx commits, or immediately when tx is not a MockTransaction.
func stage(tx usecase.Transaction, fn func()) {
	if mt, ok := tx.(*MockTransaction); ok {
		mt.onCommit(fn)
		return
	}
	fn()
}

// MockSaleItemRepository is an in-memory implementation of SaleItemRepository.
type MockSaleItemRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.SaleLineItem

	GetByIDFunc          func(ctx context.Context, id string) (*domain.SaleLineItem, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.SaleLineItem, error)
	MarkProcessedFunc    func(ctx context.Context, tx usecase.Transaction, item *domain.SaleLineItem) error
	ListUnprocessedFunc  func(ctx context.Context, after domain.SaleItemCursor, limit int) ([]*domain.SaleLineItem, error)
}

func NewMockSaleItemRepository() *MockSaleItemRepository {
	return &MockSaleItemRepository{
		items: make(map[string]*domain.SaleLineItem),
	}
}

// Add stores a copy of item.
func (m *MockSaleItemRepository) Add(item *domain.SaleLineItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *item
	m.items[item.ID] = &cp
}

// Get returns the stored item without copying, for assertions.
func (m *MockSaleItemRepository) Get(id string) *domain.SaleLineItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[id]
}

func (m *MockSaleItemRepository) GetByID(ctx context.Context, id string) (*domain.SaleLineItem, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, domain.ErrSaleItemNotFound
}

func (m *MockSaleItemRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.SaleLineItem, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockSaleItemRepository) MarkProcessed(ctx context.Context, tx usecase.Transaction, item *domain.SaleLineItem) error {
	if m.MarkProcessedFunc != nil {
		return m.MarkProcessedFunc(ctx, tx, item)
	}
	m.mu.RLock()
	stored, ok := m.items[item.ID]
	processed := ok && stored.CommissionIsProcessed
	m.mu.RUnlock()
	if !ok {
		return domain.ErrSaleItemNotFound
	}
	if processed {
		return domain.ErrAlreadyProcessed
	}
	cp := *item
	stage(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.items[cp.ID] = &cp
	})
	return nil
}

func (m *MockSaleItemRepository) ListUnprocessed(ctx context.Context, after domain.SaleItemCursor, limit int) ([]*domain.SaleLineItem, error) {
	if m.ListUnprocessedFunc != nil {
		return m.ListUnprocessedFunc(ctx, after, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []*domain.SaleLineItem
	for _, item := range m.items {
		if item.AwaitingCommission() && after.Before(item) {
			cp := *item
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Cursor().Before(items[j]) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// MockBeneficiaryRepository is an in-memory implementation of BeneficiaryRepository.
type MockBeneficiaryRepository struct {
	mu            sync.RWMutex
	beneficiaries map[string]*domain.Beneficiary

	GetByIDFunc func(ctx context.Context, id string) (*domain.Beneficiary, error)
}

func NewMockBeneficiaryRepository() *MockBeneficiaryRepository {
	return &MockBeneficiaryRepository{
		beneficiaries: make(map[string]*domain.Beneficiary),
	}
}

func (m *MockBeneficiaryRepository) Add(b *domain.Beneficiary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beneficiaries[b.ID] = b
}

func (m *MockBeneficiaryRepository) GetByID(ctx context.Context, id string) (*domain.Beneficiary, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.beneficiaries[id]; ok {
		return b, nil
	}
	return nil, domain.ErrBeneficiaryNotFound
}

// MockLedgerEntryRepository is an in-memory implementation of LedgerEntryRepository.
type MockLedgerEntryRepository struct {
	mu      sync.RWMutex
	entries []*domain.LedgerEntry

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error
	FindByReferenceFunc func(ctx context.Context, tx usecase.Transaction, userID string, ct domain.CommissionType, referenceID string) (*domain.LedgerEntry, error)
	ListByUserFunc      func(ctx context.Context, userID string, limit, offset int) ([]*domain.LedgerEntry, error)
}

func NewMockLedgerEntryRepository() *MockLedgerEntryRepository {
	return &MockLedgerEntryRepository{}
}

// Add stores an entry outside of any transaction.
func (m *MockLedgerEntryRepository) Add(entry *domain.LedgerEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
}

// All returns every committed entry.
func (m *MockLedgerEntryRepository) All() []*domain.LedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.LedgerEntry(nil), m.entries...)
}

func (m *MockLedgerEntryRepository) find(userID string, ct domain.CommissionType, referenceID string) *domain.LedgerEntry {
	for _, e := range m.entries {
		if e.UserID == userID && e.CommissionType == ct && e.CommissionReferenceID == referenceID {
			return e
		}
	}
	return nil
}

func (m *MockLedgerEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.RLock()
	dup := m.find(entry.UserID, entry.CommissionType, entry.CommissionReferenceID) != nil
	m.mu.RUnlock()
	if dup {
		return domain.ErrDuplicateLedgerEntry
	}
	stage(tx, func() { m.Add(entry) })
	return nil
}

func (m *MockLedgerEntryRepository) FindByReference(ctx context.Context, tx usecase.Transaction, userID string, ct domain.CommissionType, referenceID string) (*domain.LedgerEntry, error) {
	if m.FindByReferenceFunc != nil {
		return m.FindByReferenceFunc(ctx, tx, userID, ct, referenceID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e := m.find(userID, ct, referenceID); e != nil {
		return e, nil
	}
	return nil, domain.ErrLedgerEntryNotFound
}

func (m *MockLedgerEntryRepository) ListByReference(ctx context.Context, referenceID string) ([]*domain.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerEntry
	for _, e := range m.entries {
		if e.CommissionReferenceID == referenceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockLedgerEntryRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockLedgerEntryRepository) SumByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range m.entries {
		if e.UserID == userID {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

// MockOutboxRepository is an in-memory implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

// Events returns every committed event.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	stage(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.events = append(m.events, event)
	})
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if !e.Published || e.PublishedAt.After(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu  sync.Mutex
	txs []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	tx := &MockTransaction{}
	m.mu.Lock()
	m.txs = append(m.txs, tx)
	m.mu.Unlock()
	return tx, nil
}

// Transactions returns every transaction begun so far.
func (m *MockTransactionManager) Transactions() []*MockTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockTransaction(nil), m.txs...)
}

// MockTransaction is a mock implementation of Transaction. Writes staged by
// the mock repositories are applied on Commit and dropped on Rollback.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	mu         sync.Mutex
	pending    []func()
	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) onCommit(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, fn)
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.Committed = true
	m.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	m.mu.Lock()
	if m.Committed {
		m.mu.Unlock()
		return nil
	}
	m.pending = nil
	m.RolledBack = true
	m.mu.Unlock()
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "mock-id-" + strconv.Itoa(m.counter)
}

// MockReceiptCache is an in-memory implementation of ReceiptCache.
type MockReceiptCache struct {
	mu       sync.RWMutex
	receipts map[string]*domain.Receipt

	GetFunc func(ctx context.Context, saleItemID string) (*domain.Receipt, error)
	SetFunc func(ctx context.Context, receipt *domain.Receipt, ttl time.Duration) error
}

func NewMockReceiptCache() *MockReceiptCache {
	return &MockReceiptCache{
		receipts: make(map[string]*domain.Receipt),
	}
}

func (m *MockReceiptCache) Get(ctx context.Context, saleItemID string) (*domain.Receipt, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, saleItemID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.receipts[saleItemID]; ok {
		return r, nil
	}
	return nil, domain.ErrReceiptNotCached
}

func (m *MockReceiptCache) Set(ctx context.Context, receipt *domain.Receipt, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, receipt, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts[receipt.SaleItemID] = receipt
	return nil
}

func (m *MockReceiptCache) Delete(ctx context.Context, saleItemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.receipts, saleItemID)
	return nil
}

// MockCommissionMetrics records observations.
type MockCommissionMetrics struct {
	mu       sync.Mutex
	Outcomes []string
	Payouts  map[domain.CommissionType]decimal.Decimal
}

func NewMockCommissionMetrics() *MockCommissionMetrics {
	return &MockCommissionMetrics{
		Payouts: make(map[domain.CommissionType]decimal.Decimal),
	}
}

func (m *MockCommissionMetrics) RecordOutcome(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes = append(m.Outcomes, outcome)
}

func (m *MockCommissionMetrics) RecordPayout(role domain.CommissionType, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Payouts[role] = m.Payouts[role].Add(amount)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	ReleaseFunc     func(ctx context.Context, key string) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Stored returns the value kept for key.
func (m *MockIdempotencyStore) Stored(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

var (
	_ usecase.SaleItemRepository    = (*MockSaleItemRepository)(nil)
	_ usecase.BeneficiaryRepository = (*MockBeneficiaryRepository)(nil)
	_ usecase.LedgerEntryRepository = (*MockLedgerEntryRepository)(nil)
	_ usecase.OutboxRepository      = (*MockOutboxRepository)(nil)
	_ usecase.TransactionManager    = (*MockTransactionManager)(nil)
	_ usecase.IDGenerator           = (*MockIDGenerator)(nil)
	_ usecase.ReceiptCache          = (*MockReceiptCache)(nil)
	_ usecase.CommissionMetrics     = (*MockCommissionMetrics)(nil)
	_ usecase.IdempotencyStore      = (*MockIdempotencyStore)(nil)
)
