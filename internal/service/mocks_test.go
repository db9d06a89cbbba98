package service

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/repository"
)

// =============================================================================
// Mock User Repository
// =============================================================================

// MockUserRepository is an in-memory implementation of repository.UserRepository.
type MockUserRepository struct {
	users     map[int64]*domain.User
	nextID    int64
	createErr error
	getErr    error
	updateErr error
	deleteErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*domain.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Account == user.Account || u.Username == user.Username || u.Email == user.Email {
			return domain.ErrUserAlreadyExists
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetByAccount(ctx context.Context, account string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Account == account {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	var items []*domain.User
	for _, u := range m.users {
		items = append(items, u)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })

	total := int64(len(items))
	items = paginate(items, opts)
	return &repository.ListResult[domain.User]{
		Items:  items,
		Total:  total,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

func (m *MockUserRepository) ExistsByAccount(ctx context.Context, account string) (bool, error) {
	for _, u := range m.users {
		if u.Account == account {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) ExistsByAny(ctx context.Context, account, username, email string) (bool, error) {
	for _, u := range m.users {
		if u.Account == account || u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) TakenByOther(ctx context.Context, username, email string, exceptID int64) (bool, error) {
	for _, u := range m.users {
		if u.ID == exceptID {
			continue
		}
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// =============================================================================
// Mock Product Repository
// =============================================================================

// MockProductRepository is an in-memory implementation of repository.ProductRepository.
type MockProductRepository struct {
	products  map[int64]*domain.Product
	nextID    int64
	createErr error
	getErr    error
	updateErr error
	deleteErr error
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[int64]*domain.Product),
		nextID:   1,
	}
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if m.createErr != nil {
		return m.createErr
	}
	product.ID = m.nextID
	m.nextID++
	m.products[product.ID] = product
	return nil
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *MockProductRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	p, ok := m.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.DeletedAt = &at
	return nil
}

func (m *MockProductRepository) HardDelete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *MockProductRepository) active() []*domain.Product {
	var items []*domain.Product
	for _, p := range m.products {
		if p.DeletedAt == nil {
			items = append(items, p)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items
}

func (m *MockProductRepository) List(ctx context.Context, filter repository.ProductFilter, opts repository.ListOptions) (*repository.ListResult[domain.Product], error) {
	var items []*domain.Product
	for _, p := range m.active() {
		if filter.Search != "" &&
			!strings.Contains(p.Name, filter.Search) &&
			!strings.Contains(p.Description, filter.Search) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		items = append(items, p)
	}

	total := int64(len(items))
	items = paginate(items, opts)
	return &repository.ListResult[domain.Product]{
		Items:  items,
		Total:  total,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

func (m *MockProductRepository) Categories(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var categories []string
	for _, p := range m.active() {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (m *MockProductRepository) Totals(ctx context.Context) (*repository.InventoryTotals, error) {
	totals := &repository.InventoryTotals{}
	var stockSum int64
	for _, p := range m.active() {
		totals.TotalProducts++
		totals.TotalValue += p.Price * float64(p.Stock)
		stockSum += int64(p.Stock)
		switch {
		case p.Stock == 0:
			totals.OutOfStock++
		case p.Stock <= p.MinimumStock:
			totals.LowStockCount++
		}
	}
	if totals.TotalProducts > 0 {
		totals.AverageStock = float64(stockSum) / float64(totals.TotalProducts)
	}
	return totals, nil
}

func (m *MockProductRepository) CategoryStats(ctx context.Context) ([]repository.CategoryStat, error) {
	byCategory := make(map[string]*repository.CategoryStat)
	for _, p := range m.active() {
		stat, ok := byCategory[p.Category]
		if !ok {
			stat = &repository.CategoryStat{Category: p.Category}
			byCategory[p.Category] = stat
		}
		stat.ProductCount++
		stat.TotalStock += int64(p.Stock)
		stat.TotalValue += p.Price * float64(p.Stock)
	}

	var stats []repository.CategoryStat
	for _, stat := range byCategory {
		stat.AverageStock = float64(stat.TotalStock) / float64(stat.ProductCount)
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].TotalValue > stats[j].TotalValue })
	return stats, nil
}

func (m *MockProductRepository) ListLowStock(ctx context.Context, limit int) ([]*domain.Product, error) {
	var items []*domain.Product
	for _, p := range m.active() {
		if p.Stock > 0 && p.Stock <= p.MinimumStock {
			items = append(items, p)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Stock < items[j].Stock })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *MockProductRepository) ListTopValue(ctx context.Context, limit int) ([]*domain.Product, error) {
	items := m.active()
	sort.Slice(items, func(i, j int) bool {
		return items[i].Price*float64(items[i].Stock) > items[j].Price*float64(items[j].Stock)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// =============================================================================
// Mock Order Repository
// =============================================================================

// MockOrderRepository is an in-memory implementation of repository.OrderRepository.
type MockOrderRepository struct {
	orders    map[int64]*domain.Order
	items     []domain.OrderItem
	getErr    error
	updateErr error
	deleteErr error
	countErr  error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[int64]*domain.Order),
	}
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockOrderRepository) ListSummaries(ctx context.Context) ([]*domain.OrderSummary, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var summaries []*domain.OrderSummary
	for _, o := range m.orders {
		summaries = append(summaries, &domain.OrderSummary{Order: *o})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID > summaries[j].ID })
	return summaries, nil
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockOrderRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.orders[id]; !ok {
		return repository.ErrNotFound
	}
	// Items are intentionally left in place, matching the store behavior.
	delete(m.orders, id)
	return nil
}

func (m *MockOrderRepository) Stats(ctx context.Context) (*domain.OrderStats, error) {
	stats := &domain.OrderStats{CountByStatus: make(map[domain.OrderStatus]int64)}
	for _, o := range m.orders {
		stats.TotalOrders++
		stats.TotalRevenue += o.TotalPrice
		stats.CountByStatus[o.Status]++
	}
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = stats.TotalRevenue / float64(stats.TotalOrders)
	}
	return stats, nil
}

func (m *MockOrderRepository) CountItemsByProduct(ctx context.Context, productID int64) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	var count int64
	for _, item := range m.items {
		if item.ProductID == productID {
			count++
		}
	}
	return count, nil
}

// =============================================================================
// Mock Auth Log Repository
// =============================================================================

// MockAuthLogRepository records audit entries in memory.
type MockAuthLogRepository struct {
	entries   []*domain.AuthLogEntry
	appendErr error
}

func NewMockAuthLogRepository() *MockAuthLogRepository {
	return &MockAuthLogRepository{}
}

func (m *MockAuthLogRepository) Append(ctx context.Context, entry *domain.AuthLogEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockAuthLogRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AuthLogEntry, error) {
	var entries []*domain.AuthLogEntry
	for i := len(m.entries) - 1; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, m.entries[i])
	}
	return entries, nil
}

// =============================================================================
// Mock Image Store
// =============================================================================

// MockImageStore keeps stored images in memory and records releases.
type MockImageStore struct {
	saved    map[string][]byte
	released []string
	nextRef  int
	saveErr  error
}

func NewMockImageStore() *MockImageStore {
	return &MockImageStore{saved: make(map[string][]byte)}
}

func (m *MockImageStore) Save(ctx context.Context, reader io.Reader, size int64, contentType string) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.nextRef++
	ref := "img-" + strconv.Itoa(m.nextRef)
	m.saved[ref] = data
	return ref, nil
}

func (m *MockImageStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	data, ok := m.saved[ref]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (m *MockImageStore) Release(ctx context.Context, ref string) error {
	m.released = append(m.released, ref)
	delete(m.saved, ref)
	return nil
}

// paginate applies offset/limit to a slice.
func paginate[T any](items []*T, opts repository.ListOptions) []*T {
	if opts.Offset >= len(items) {
		return nil
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	return items
}
