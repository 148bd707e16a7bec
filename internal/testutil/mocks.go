package testutil

import (
	"sort"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users map[string]*domain.User
	ByID  map[uuid.UUID]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name *string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:      uuid.New(),
		Auth0ID: auth0ID,
		Email:   email,
		Name:    name,
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// ListIDs returns the IDs of all users
func (m *MockUserRepository) ListIDs() ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(m.ByID))
	for id := range m.ByID {
		ids = append(ids, id)
	}
	return ids, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[int32]*domain.Category
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[int32]*domain.Category)}
}

// GetByID retrieves a category by ID, ownership-checked
func (m *MockCategoryRepository) GetByID(userID uuid.UUID, id int32) (*domain.Category, error) {
	cat, ok := m.Categories[id]
	if !ok || cat.UserID != userID {
		return nil, domain.ErrCategoryNotFound
	}
	return cat, nil
}

// GetAllByUser retrieves all categories for a user
func (m *MockCategoryRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Category, error) {
	var categories []*domain.Category
	for _, cat := range m.Categories {
		if cat.UserID == userID {
			categories = append(categories, cat)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(cat *domain.Category) {
	m.Categories[cat.ID] = cat
}

// MockTransactionRepository is a mock implementation of
// domain.TransactionRepository. ListExpenseTransactionsFn, when set, replaces
// the map-backed read so tests can simulate ledger failures.
type MockTransactionRepository struct {
	Transactions              map[int32]*domain.Transaction
	NextID                    int32
	ListExpenseTransactionsFn func(userID uuid.UUID, year, month int) ([]*domain.Transaction, error)
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		NextID:       1,
	}
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(tx *domain.Transaction) (*domain.Transaction, error) {
	tx.ID = m.NextID
	m.NextID++
	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	m.Transactions[tx.ID] = tx
	return tx, nil
}

// GetByID retrieves a transaction by ID, ownership-checked
func (m *MockTransactionRepository) GetByID(userID uuid.UUID, id int32) (*domain.Transaction, error) {
	tx, ok := m.Transactions[id]
	if !ok || tx.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, nil
}

// GetByUser retrieves transactions for a user with optional filters
func (m *MockTransactionRepository) GetByUser(userID uuid.UUID, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	var result []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.UserID != userID {
			continue
		}
		if filters != nil {
			if filters.Year != nil && tx.TransactionDate.Year() != *filters.Year {
				continue
			}
			if filters.Month != nil && int(tx.TransactionDate.Month()) != *filters.Month {
				continue
			}
			if filters.Type != nil && tx.Type != *filters.Type {
				continue
			}
		}
		result = append(result, tx)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update replaces a transaction's state
func (m *MockTransactionRepository) Update(userID uuid.UUID, id int32, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	old, ok := m.Transactions[id]
	if !ok || old.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	// Store a fresh row rather than mutating in place: callers that fetched
	// the previous state via GetByID must not observe the update, mirroring a
	// real repository returning row snapshots.
	tx := *old
	tx.Name = data.Name
	tx.Amount = data.Amount
	tx.Type = data.Type
	tx.CategoryID = data.CategoryID
	tx.TransactionDate = data.TransactionDate
	tx.Notes = data.Notes
	tx.UpdatedAt = time.Now()
	m.Transactions[id] = &tx
	return &tx, nil
}

// Delete removes a transaction
func (m *MockTransactionRepository) Delete(userID uuid.UUID, id int32) error {
	tx, ok := m.Transactions[id]
	if !ok || tx.UserID != userID {
		return domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	return nil
}

// SetReceiptKey updates a transaction's receipt key
func (m *MockTransactionRepository) SetReceiptKey(userID uuid.UUID, id int32, key *string) (*domain.Transaction, error) {
	tx, ok := m.Transactions[id]
	if !ok || tx.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	tx.ReceiptKey = key
	tx.UpdatedAt = time.Now()
	return tx, nil
}

// ListExpenseTransactions returns the user's expense transactions dated in the
// given month
func (m *MockTransactionRepository) ListExpenseTransactions(userID uuid.UUID, year, month int) ([]*domain.Transaction, error) {
	if m.ListExpenseTransactionsFn != nil {
		return m.ListExpenseTransactionsFn(userID, year, month)
	}
	var result []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.UserID != userID || tx.Type != domain.TransactionTypeExpense {
			continue
		}
		if tx.TransactionDate.Year() != year || int(tx.TransactionDate.Month()) != month {
			continue
		}
		result = append(result, tx)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(tx *domain.Transaction) {
	if tx.ID == 0 {
		tx.ID = m.NextID
	}
	if tx.ID >= m.NextID {
		m.NextID = tx.ID + 1
	}
	m.Transactions[tx.ID] = tx
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository and
// domain.BudgetSpentWriter. SpentWrites counts UpdateSpentAmount calls per
// budget so tests can assert the write-only-if-changed behavior.
type MockBudgetRepository struct {
	Budgets     map[int32]*domain.Budget
	NextID      int32
	SpentWrites map[int32]int
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets:     make(map[int32]*domain.Budget),
		NextID:      1,
		SpentWrites: make(map[int32]int),
	}
}

// Create creates a new budget, rejecting duplicates for the same scope
func (m *MockBudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	for _, existing := range m.Budgets {
		if existing.UserID != budget.UserID || existing.Year != budget.Year || existing.Month != budget.Month {
			continue
		}
		if existing.CategoryID == nil && budget.CategoryID == nil {
			return nil, domain.ErrDuplicateBudget
		}
		if existing.CategoryID != nil && budget.CategoryID != nil && *existing.CategoryID == *budget.CategoryID {
			return nil, domain.ErrDuplicateBudget
		}
	}
	budget.ID = m.NextID
	m.NextID++
	now := time.Now()
	budget.CreatedAt = now
	budget.UpdatedAt = now
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByID retrieves a budget by ID, ownership-checked
func (m *MockBudgetRepository) GetByID(userID uuid.UUID, id int32) (*domain.Budget, error) {
	budget, ok := m.Budgets[id]
	if !ok || budget.UserID != userID {
		return nil, domain.ErrBudgetNotFound
	}
	return budget, nil
}

// GetAllByUser retrieves all budgets for a user
func (m *MockBudgetRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Budget, error) {
	var budgets []*domain.Budget
	for _, budget := range m.Budgets {
		if budget.UserID == userID {
			budgets = append(budgets, budget)
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].ID < budgets[j].ID })
	return budgets, nil
}

// GetByPeriod retrieves all budgets for a user and month
func (m *MockBudgetRepository) GetByPeriod(userID uuid.UUID, year, month int) ([]*domain.Budget, error) {
	var budgets []*domain.Budget
	for _, budget := range m.Budgets {
		if budget.UserID == userID && budget.Year == year && budget.Month == month {
			budgets = append(budgets, budget)
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].ID < budgets[j].ID })
	return budgets, nil
}

// GetGeneral retrieves the general budget for a user and month
func (m *MockBudgetRepository) GetGeneral(userID uuid.UUID, year, month int) (*domain.Budget, error) {
	for _, budget := range m.Budgets {
		if budget.UserID == userID && budget.Year == year && budget.Month == month && budget.CategoryID == nil {
			return budget, nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

// GetByCategory retrieves a category budget for a user and month
func (m *MockBudgetRepository) GetByCategory(userID uuid.UUID, categoryID int32, year, month int) (*domain.Budget, error) {
	for _, budget := range m.Budgets {
		if budget.UserID == userID && budget.Year == year && budget.Month == month &&
			budget.CategoryID != nil && *budget.CategoryID == categoryID {
			return budget, nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

// UpdatePlannedAmount updates a budget's planned amount
func (m *MockBudgetRepository) UpdatePlannedAmount(userID uuid.UUID, id int32, amount decimal.Decimal) (*domain.Budget, error) {
	budget, ok := m.Budgets[id]
	if !ok || budget.UserID != userID {
		return nil, domain.ErrBudgetNotFound
	}
	budget.PlannedAmount = amount
	budget.UpdatedAt = time.Now()
	return budget, nil
}

// UpdateSpentAmount writes a budget's spent amount
func (m *MockBudgetRepository) UpdateSpentAmount(id int32, amount decimal.Decimal) error {
	budget, ok := m.Budgets[id]
	if !ok {
		return domain.ErrBudgetNotFound
	}
	budget.SpentAmount = amount
	budget.UpdatedAt = time.Now()
	m.SpentWrites[id]++
	return nil
}

// Delete removes a budget
func (m *MockBudgetRepository) Delete(userID uuid.UUID, id int32) error {
	budget, ok := m.Budgets[id]
	if !ok || budget.UserID != userID {
		return domain.ErrBudgetNotFound
	}
	delete(m.Budgets, id)
	return nil
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	if budget.ID == 0 {
		budget.ID = m.NextID
	}
	if budget.ID >= m.NextID {
		m.NextID = budget.ID + 1
	}
	m.Budgets[budget.ID] = budget
}

// MockAlertRepository is a mock implementation of domain.AlertRepository
type MockAlertRepository struct {
	Alerts map[int32]*domain.Alert
	NextID int32
}

// NewMockAlertRepository creates a new MockAlertRepository
func NewMockAlertRepository() *MockAlertRepository {
	return &MockAlertRepository{
		Alerts: make(map[int32]*domain.Alert),
		NextID: 1,
	}
}

// Create creates a new alert
func (m *MockAlertRepository) Create(alert *domain.Alert) (*domain.Alert, error) {
	alert.ID = m.NextID
	m.NextID++
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	m.Alerts[alert.ID] = alert
	return alert, nil
}

// GetByID retrieves an alert by ID, ownership-checked
func (m *MockAlertRepository) GetByID(userID uuid.UUID, id int32) (*domain.Alert, error) {
	alert, ok := m.Alerts[id]
	if !ok || alert.UserID != userID {
		return nil, domain.ErrAlertNotFound
	}
	return alert, nil
}

// GetAllByUser retrieves all alerts for a user
func (m *MockAlertRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Alert, error) {
	var alerts []*domain.Alert
	for _, alert := range m.Alerts {
		if alert.UserID == userID {
			alerts = append(alerts, alert)
		}
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].ID > alerts[j].ID })
	return alerts, nil
}

// GetUnreadByUser retrieves unread alerts for a user
func (m *MockAlertRepository) GetUnreadByUser(userID uuid.UUID) ([]*domain.Alert, error) {
	var alerts []*domain.Alert
	for _, alert := range m.Alerts {
		if alert.UserID == userID && !alert.IsRead {
			alerts = append(alerts, alert)
		}
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].ID > alerts[j].ID })
	return alerts, nil
}

// CountUnread counts unread alerts for a user
func (m *MockAlertRepository) CountUnread(userID uuid.UUID) (int64, error) {
	var count int64
	for _, alert := range m.Alerts {
		if alert.UserID == userID && !alert.IsRead {
			count++
		}
	}
	return count, nil
}

// HasUnread reports whether an unread alert of the given kind exists for a budget
func (m *MockAlertRepository) HasUnread(budgetID int32, kind domain.AlertKind) (bool, error) {
	for _, alert := range m.Alerts {
		if alert.BudgetID == budgetID && alert.Kind == kind && !alert.IsRead {
			return true, nil
		}
	}
	return false, nil
}

// MarkRead marks one alert as read
func (m *MockAlertRepository) MarkRead(userID uuid.UUID, id int32) (*domain.Alert, error) {
	alert, ok := m.Alerts[id]
	if !ok || alert.UserID != userID {
		return nil, domain.ErrAlertNotFound
	}
	alert.IsRead = true
	return alert, nil
}

// MarkAllRead marks every alert of the user as read
func (m *MockAlertRepository) MarkAllRead(userID uuid.UUID) error {
	for _, alert := range m.Alerts {
		if alert.UserID == userID {
			alert.IsRead = true
		}
	}
	return nil
}

// Delete removes an alert
func (m *MockAlertRepository) Delete(userID uuid.UUID, id int32) error {
	alert, ok := m.Alerts[id]
	if !ok || alert.UserID != userID {
		return domain.ErrAlertNotFound
	}
	delete(m.Alerts, id)
	return nil
}

// DeleteReadOlderThan removes read alerts created before the cutoff
func (m *MockAlertRepository) DeleteReadOlderThan(userID uuid.UUID, before time.Time) (int64, error) {
	var deleted int64
	for id, alert := range m.Alerts {
		if alert.UserID == userID && alert.IsRead && alert.CreatedAt.Before(before) {
			delete(m.Alerts, id)
			deleted++
		}
	}
	return deleted, nil
}

// RecomputeCall records one recomputer notification
type RecomputeCall struct {
	UserID   uuid.UUID
	Year     int
	Month    int
	OldYear  int
	OldMonth int
	Edited   bool
}

// MockRecomputer records recomputer notifications without acting on them
type MockRecomputer struct {
	Calls []RecomputeCall
}

// OnExpenseTransactionCommitted records a committed notification
func (m *MockRecomputer) OnExpenseTransactionCommitted(userID uuid.UUID, year, month int) {
	m.Calls = append(m.Calls, RecomputeCall{UserID: userID, Year: year, Month: month})
}

// OnExpenseTransactionEdited records an edited notification
func (m *MockRecomputer) OnExpenseTransactionEdited(userID uuid.UUID, oldYear, oldMonth, newYear, newMonth int) {
	m.Calls = append(m.Calls, RecomputeCall{
		UserID:   userID,
		Year:     newYear,
		Month:    newMonth,
		OldYear:  oldYear,
		OldMonth: oldMonth,
		Edited:   true,
	})
}
