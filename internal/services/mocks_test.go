package services

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clixo/backend/internal/chain"
	"github.com/clixo/backend/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory mocks for the store interfaces and the chain gateway. These
// let us test the real service logic without a database or a node.
// Mutations apply immediately; tests that need rollback semantics assert
// on errors and on the fields a real rollback would leave untouched.
// ---------------------------------------------------------------------------

type fakeTx struct{ pgx.Tx }

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

type fakeDB struct{}

func (fakeDB) Begin(context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

// ---

type mockTasks struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*models.Task
}

func newMockTasks(tasks ...*models.Task) *mockTasks {
	m := &mockTasks{tasks: make(map[uuid.UUID]*models.Task)}
	for _, t := range tasks {
		cp := *t
		m.tasks[t.ID] = &cp
	}
	return m
}

func (m *mockTasks) GetByID(_ context.Context, id uuid.UUID) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (m *mockTasks) ApplyFunding(_ context.Context, _ pgx.Tx, id uuid.UUID, credits int64) (applied, newFunded, budget int64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.FundedAmount >= t.Budget {
		return 0, 0, 0, pgx.ErrNoRows
	}
	prev := t.FundedAmount
	t.FundedAmount = min(prev+credits, t.Budget)
	return t.FundedAmount - prev, t.FundedAmount, t.Budget, nil
}

func (m *mockTasks) Activate(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if ok && t.Status == models.TaskStatusDraft && t.FundedAmount >= t.Budget {
		t.Status = models.TaskStatusActive
	}
	return nil
}

func (m *mockTasks) Settle(_ context.Context, _ pgx.Tx, id uuid.UUID, budget int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.Status != models.TaskStatusActive || t.FundedAmount < budget {
		return pgx.ErrNoRows
	}
	t.FundedAmount -= budget
	t.Status = models.TaskStatusSettled
	return nil
}

func (m *mockTasks) funded(id uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasks[id].FundedAmount
}

func (m *mockTasks) status(id uuid.UUID) models.TaskStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasks[id].Status
}

// ---

type mockUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMockUsers(users ...*models.User) *mockUsers {
	m := &mockUsers{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		cp := *u
		m.users[u.ID] = &cp
	}
	return m
}

func (m *mockUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *mockUsers) DeductBalance(_ context.Context, _ pgx.Tx, id uuid.UUID, amount int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.Balance < amount {
		return 0, pgx.ErrNoRows
	}
	u.Balance -= amount
	return u.Balance, nil
}

func (m *mockUsers) AddBalance(_ context.Context, _ pgx.Tx, id uuid.UUID, amount int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	u.Balance += amount
	return u.Balance, nil
}

func (m *mockUsers) balance(id uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].Balance
}

// ---

type mockFundings struct {
	mu      sync.Mutex
	entries []*models.Funding
}

func (m *mockFundings) CreateTx(_ context.Context, _ pgx.Tx, f *models.Funding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockFundings) ExistsByTxHash(_ context.Context, txHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.entries {
		if f.TxHash != nil && *f.TxHash == txHash {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockFundings) bySource(source string) []*models.Funding {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Funding
	for _, f := range m.entries {
		if f.Source == source {
			out = append(out, f)
		}
	}
	return out
}

func (m *mockFundings) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// ---

type mockWorkers struct {
	mu      sync.Mutex
	workers map[uuid.UUID]*models.Worker
}

func newMockWorkers(workers ...*models.Worker) *mockWorkers {
	m := &mockWorkers{workers: make(map[uuid.UUID]*models.Worker)}
	for _, w := range workers {
		cp := *w
		m.workers[w.ID] = &cp
	}
	return m
}

func (m *mockWorkers) GetByID(_ context.Context, id uuid.UUID) (*models.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *w
	return &cp, nil
}

func (m *mockWorkers) LockPending(_ context.Context, _ pgx.Tx, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workers[id]
	if !ok || w.LockedAmount != 0 || w.PendingAmount <= 0 {
		return 0, pgx.ErrNoRows
	}
	w.LockedAmount = w.PendingAmount
	w.PendingAmount = 0
	return w.LockedAmount, nil
}

func (m *mockWorkers) Unlock(_ context.Context, _ pgx.Tx, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.workers[id]; ok {
		w.LockedAmount = 0
	}
	return nil
}

func (m *mockWorkers) RestoreLocked(_ context.Context, _ pgx.Tx, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workers[id]
	if !ok || w.LockedAmount == 0 {
		return pgx.ErrNoRows
	}
	w.PendingAmount += w.LockedAmount
	w.LockedAmount = 0
	return nil
}

func (m *mockWorkers) AddPending(_ context.Context, _ pgx.Tx, id uuid.UUID, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workers[id]
	if !ok {
		return pgx.ErrNoRows
	}
	w.PendingAmount += amount
	return nil
}

func (m *mockWorkers) pending(id uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.workers[id].PendingAmount
}

func (m *mockWorkers) locked(id uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.workers[id].LockedAmount
}

// ---

type mockPayouts struct {
	mu      sync.Mutex
	entries []*models.Payout
}

func (m *mockPayouts) CreateTx(_ context.Context, _ pgx.Tx, p *models.Payout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockPayouts) MarkSuccess(_ context.Context, _ pgx.Tx, id uuid.UUID, txHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.entries {
		if p.ID == id && p.Status == models.PayoutStatusPending {
			p.Status = models.PayoutStatusSuccess
			p.TxHash = &txHash
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *mockPayouts) MarkFailed(_ context.Context, _ pgx.Tx, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.entries {
		if p.ID == id && p.Status == models.PayoutStatusPending {
			p.Status = models.PayoutStatusFailed
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *mockPayouts) ListByWorker(_ context.Context, workerID uuid.UUID) ([]*models.Payout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Payout
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].WorkerID == workerID {
			cp := *m.entries[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockPayouts) all() []*models.Payout {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Payout, len(m.entries))
	copy(out, m.entries)
	return out
}

// ---

type mockSubmissions struct {
	mu      sync.Mutex
	entries []*models.Submission
	options []*models.Option
}

func (m *mockSubmissions) Create(_ context.Context, s *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockSubmissions) ListByTask(_ context.Context, taskID uuid.UUID) ([]*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Submission
	for _, s := range m.entries {
		if s.TaskID == taskID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockSubmissions) ListByWorker(_ context.Context, workerID uuid.UUID) ([]*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Submission
	for _, s := range m.entries {
		if s.WorkerID == workerID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockSubmissions) ExistsForWorkerTask(_ context.Context, workerID, taskID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.entries {
		if s.WorkerID == workerID && s.TaskID == taskID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSubmissions) GetOptionForTask(_ context.Context, optionID, taskID uuid.UUID) (*models.Option, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.options {
		if o.ID == optionID && o.TaskID == taskID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// vote appends a submission directly, bypassing validation. Test setup
// helper.
func (m *mockSubmissions) vote(taskID, workerID, optionID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, &models.Submission{
		ID: uuid.New(), TaskID: taskID, WorkerID: workerID, OptionID: optionID,
	})
}

// ---

type sentTransfer struct {
	to  string
	wei *big.Int
}

type fakeGateway struct {
	mu         sync.Mutex
	txs        map[string]*chain.Transaction
	confirmErr map[string]error
	sendHash   string
	sendErr    error
	sent       []sentTransfer
}

func (g *fakeGateway) GetTransaction(_ context.Context, hash string) (*chain.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	tx, ok := g.txs[hash]
	if !ok {
		return nil, chain.ErrTxNotFound
	}
	return tx, nil
}

func (g *fakeGateway) WaitForTransaction(_ context.Context, hash string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.confirmErr[hash]
}

func (g *fakeGateway) SendTransaction(_ context.Context, to string, wei *big.Int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return "", g.sendErr
	}
	g.sent = append(g.sent, sentTransfer{to: to, wei: wei})
	return g.sendHash, nil
}

func (g *fakeGateway) sentCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
