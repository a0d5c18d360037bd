package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/iho/billsplit/internal/domain"
)

// MockTransactionRepository is a mock implementation of TransactionRepository.
// Without overrides it behaves as an in-memory store with the unique-hash
// constraint enforced.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
	order        []string

	CreateFunc                 func(ctx context.Context, tx *domain.Transaction) error
	GetByIDFunc                func(ctx context.Context, id string) (*domain.Transaction, error)
	UpdateFunc                 func(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error)
	UpdateOwnerManyFunc        func(ctx context.Context, ids []string, owner domain.Owner) error
	DeleteFunc                 func(ctx context.Context, id string) error
	DeleteByReferenceMonthFunc func(ctx context.Context, month string) (int64, error)
	ListFunc                   func(ctx context.Context) ([]*domain.Transaction, error)
	ListByReferenceMonthFunc   func(ctx context.Context, month string) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

// Seed loads transactions into the store bypassing the hash constraint.
func (m *MockTransactionRepository) Seed(txs ...*domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range txs {
		cp := *tx
		m.transactions[cp.ID] = &cp
		m.order = append(m.order, cp.ID)
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.transactions {
		if existing.UniqueHash != "" && existing.UniqueHash == tx.UniqueHash {
			return domain.ErrDuplicateTransaction
		}
	}
	cp := *tx
	m.transactions[cp.ID] = &cp
	m.order = append(m.order, cp.ID)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if tx, ok := m.transactions[id]; ok {
		cp := *tx
		return &cp, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) Update(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, patch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	if patch.Date != nil {
		tx.Date = *patch.Date
	}
	if patch.Description != nil {
		tx.Description = *patch.Description
	}
	if patch.UniqueHash != nil {
		tx.UniqueHash = *patch.UniqueHash
	}
	if patch.Owner != nil {
		tx.Owner = *patch.Owner
	}
	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	cp := *tx
	return &cp, nil
}

func (m *MockTransactionRepository) UpdateOwnerMany(ctx context.Context, ids []string, owner domain.Owner) error {
	if m.UpdateOwnerManyFunc != nil {
		return m.UpdateOwnerManyFunc(ctx, ids, owner)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if tx, ok := m.transactions[id]; ok {
			tx.Owner = owner
		}
	}
	return nil
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *MockTransactionRepository) DeleteByReferenceMonth(ctx context.Context, month string) (int64, error) {
	if m.DeleteByReferenceMonthFunc != nil {
		return m.DeleteByReferenceMonthFunc(ctx, month)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, tx := range m.transactions {
		if tx.ReferenceMonth == month {
			delete(m.transactions, id)
			removed++
		}
	}
	return removed, nil
}

func (m *MockTransactionRepository) List(ctx context.Context) ([]*domain.Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transaction, 0, len(m.transactions))
	for _, id := range m.order {
		if tx, ok := m.transactions[id]; ok {
			cp := *tx
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockTransactionRepository) ListByReferenceMonth(ctx context.Context, month string) ([]*domain.Transaction, error) {
	if m.ListByReferenceMonthFunc != nil {
		return m.ListByReferenceMonthFunc(ctx, month)
	}
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.Transaction
	for _, tx := range all {
		if tx.ReferenceMonth == month {
			out = append(out, tx)
		}
	}
	return out, nil
}

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	CreateFunc func(ctx context.Context, payment *domain.Payment) error
	DeleteFunc func(ctx context.Context, id string) error
	ListFunc   func(ctx context.Context) ([]*domain.Payment, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[string]*domain.Payment)}
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *payment
	m.payments[cp.ID] = &cp
	return nil
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[id]; !ok {
		return domain.ErrPaymentNotFound
	}
	delete(m.payments, id)
	return nil
}

func (m *MockPaymentRepository) List(ctx context.Context) ([]*domain.Payment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Payment, 0, len(m.payments))
	for _, p := range m.payments {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockPaymentRepository) ListByReferenceMonth(ctx context.Context, month string) ([]*domain.Payment, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.Payment
	for _, p := range all {
		if p.ReferenceMonth == month {
			out = append(out, p)
		}
	}
	return out, nil
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository.
type MockWithdrawalRepository struct {
	mu          sync.RWMutex
	withdrawals map[string]*domain.Withdrawal

	CreateFunc func(ctx context.Context, withdrawal *domain.Withdrawal) error
	DeleteFunc func(ctx context.Context, id string) error
	ListFunc   func(ctx context.Context) ([]*domain.Withdrawal, error)
}

func NewMockWithdrawalRepository() *MockWithdrawalRepository {
	return &MockWithdrawalRepository{withdrawals: make(map[string]*domain.Withdrawal)}
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, withdrawal *domain.Withdrawal) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, withdrawal)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *withdrawal
	m.withdrawals[cp.ID] = &cp
	return nil
}

func (m *MockWithdrawalRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.withdrawals[id]; !ok {
		return domain.ErrWithdrawalNotFound
	}
	delete(m.withdrawals, id)
	return nil
}

func (m *MockWithdrawalRepository) List(ctx context.Context) ([]*domain.Withdrawal, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Withdrawal, 0, len(m.withdrawals))
	for _, w := range m.withdrawals {
		cp := *w
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockWithdrawalRepository) ListByReferenceMonth(ctx context.Context, month string) ([]*domain.Withdrawal, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.Withdrawal
	for _, w := range all {
		if w.ReferenceMonth == month {
			out = append(out, w)
		}
	}
	return out, nil
}

// MockClosingRepository is a mock implementation of ClosingRepository.
type MockClosingRepository struct {
	mu       sync.RWMutex
	closings []*domain.MonthlyClosing

	CreateFunc func(ctx context.Context, closing *domain.MonthlyClosing) error
}

func NewMockClosingRepository() *MockClosingRepository {
	return &MockClosingRepository{}
}

func (m *MockClosingRepository) Create(ctx context.Context, closing *domain.MonthlyClosing) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, closing)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *closing
	m.closings = append(m.closings, &cp)
	return nil
}

func (m *MockClosingRepository) ListByMonth(ctx context.Context, month string) ([]*domain.MonthlyClosing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.MonthlyClosing
	for _, c := range m.closings {
		if c.Month == month {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository.
type MockInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[string]*domain.Invoice

	UpsertFunc func(ctx context.Context, invoice *domain.Invoice) error
}

func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{invoices: make(map[string]*domain.Invoice)}
}

func (m *MockInvoiceRepository) Upsert(ctx context.Context, invoice *domain.Invoice) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, invoice)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *invoice
	m.invoices[cp.ReferenceMonth] = &cp
	return nil
}

func (m *MockInvoiceRepository) GetByMonth(ctx context.Context, month string) (*domain.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if inv, ok := m.invoices[month]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, domain.ErrInvoiceNotFound
}

func (m *MockInvoiceRepository) DeleteByMonth(ctx context.Context, month string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invoices[month]; !ok {
		return domain.ErrInvoiceNotFound
	}
	delete(m.invoices, month)
	return nil
}

func (m *MockInvoiceRepository) List(ctx context.Context) ([]*domain.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		cp := *inv
		out = append(out, &cp)
	}
	return out, nil
}

// MockIDGenerator is a mock implementation of IDGenerator. It hands out
// sequential IDs unless GenerateFunc is set.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
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
	return fmt.Sprintf("id-%04d", m.counter)
}
