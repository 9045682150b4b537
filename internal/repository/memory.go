package repository

import (
	"cmp"
	"context"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"jwt-pizza-service/internal/domain"
)

// MemoryStore implements every repository interface in process. It backs
// the service when no database is configured and doubles as a test fixture.
type MemoryStore struct {
	mu sync.RWMutex

	seq        int64
	users      map[int64]memUser
	roles      []memRole
	tokens     map[string]memToken
	menu       []domain.MenuItem
	franchises map[int64]string
	stores     map[int64]domain.Store
	orders     []domain.Order

	now func() time.Time
}

type memUser struct {
	user domain.User
	hash string
}

type memRole struct {
	userID int64
	role   domain.UserRole
}

type memToken struct {
	userID    int64
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[int64]memUser),
		tokens:     make(map[string]memToken),
		franchises: make(map[int64]string),
		stores:     make(map[int64]domain.Store),
		now:        time.Now,
	}
}

func (m *MemoryStore) nextID() int64 {
	m.seq++
	return m.seq
}

// users

func (m *MemoryStore) AddUser(_ context.Context, user domain.User, passwordHash string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.userByEmail(user.Email); ok {
		return domain.User{}, ErrConflict
	}
	user.ID = m.nextID()
	for _, r := range user.Roles {
		m.roles = append(m.roles, memRole{userID: user.ID, role: r})
	}
	m.users[user.ID] = memUser{user: domain.User{ID: user.ID, Name: user.Name, Email: user.Email}, hash: passwordHash}
	return m.withRoles(m.users[user.ID].user), nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, id int64) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return m.withRoles(u.user), nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (domain.User, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.userByEmail(email)
	if !ok {
		return domain.User{}, "", ErrNotFound
	}
	return m.withRoles(u.user), u.hash, nil
}

func (m *MemoryStore) UpdateUser(_ context.Context, id int64, upd UserUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Email != "" && upd.Email != u.user.Email {
		if _, taken := m.userByEmail(upd.Email); taken {
			return ErrConflict
		}
		u.user.Email = upd.Email
	}
	if upd.Name != "" {
		u.user.Name = upd.Name
	}
	if upd.PasswordHash != "" {
		u.hash = upd.PasswordHash
	}
	m.users[id] = u
	return nil
}

func (m *MemoryStore) userByEmail(email string) (memUser, bool) {
	for _, u := range m.users {
		if u.user.Email == email {
			return u, true
		}
	}
	return memUser{}, false
}

func (m *MemoryStore) withRoles(u domain.User) domain.User {
	u.Roles = []domain.UserRole{}
	for _, r := range m.roles {
		if r.userID == u.ID {
			u.Roles = append(u.Roles, r.role)
		}
	}
	return u
}

// tokens

func (m *MemoryStore) AddToken(_ context.Context, signature string, userID int64, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tokens[signature]; !ok {
		m.tokens[signature] = memToken{userID: userID, expiresAt: expiresAt}
	}
	return nil
}

func (m *MemoryStore) HasToken(_ context.Context, signature string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tokens[signature]
	if !ok {
		return false, nil
	}
	return t.expiresAt.IsZero() || t.expiresAt.After(m.now()), nil
}

func (m *MemoryStore) DeleteToken(_ context.Context, signature string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tokens, signature)
	return nil
}

// menu

func (m *MemoryStore) GetMenu(_ context.Context) ([]domain.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]domain.MenuItem{}, m.menu...), nil
}

func (m *MemoryStore) GetMenuItem(_ context.Context, id int64) (domain.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, it := range m.menu {
		if it.ID == id {
			return it, nil
		}
	}
	return domain.MenuItem{}, ErrNotFound
}

func (m *MemoryStore) AddMenuItem(_ context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item.ID = m.nextID()
	m.menu = append(m.menu, item)
	return item, nil
}

// franchises

func (m *MemoryStore) ListFranchises(_ context.Context, f FranchiseFilter) ([]domain.Franchise, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	re, err := likePattern(f.Name)
	if err != nil {
		return nil, false, err
	}

	var matched []domain.Franchise
	for _, id := range m.franchiseIDs() {
		if name := m.franchises[id]; re.MatchString(name) {
			matched = append(matched, domain.Franchise{ID: id, Name: name, Stores: m.storesOf(id, false)})
		}
	}

	out := []domain.Franchise{}
	if off := max(f.Offset, 0); off < len(matched) {
		out = matched[off:]
	}
	more := len(out) > f.Limit
	if more {
		out = out[:f.Limit]
	}
	return out, more, nil
}

func (m *MemoryStore) GetFranchise(_ context.Context, id int64) (domain.Franchise, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name, ok := m.franchises[id]
	if !ok {
		return domain.Franchise{}, ErrNotFound
	}
	f := domain.Franchise{ID: id, Name: name, Admins: []domain.FranchiseAdmin{}, Stores: m.storesOf(id, true)}
	for _, r := range m.roles {
		if r.role.Role == domain.RoleFranchisee && r.role.ObjectID == id {
			if u, ok := m.users[r.userID]; ok {
				f.Admins = append(f.Admins, domain.FranchiseAdmin{ID: u.user.ID, Name: u.user.Name, Email: u.user.Email})
			}
		}
	}
	slices.SortFunc(f.Admins, func(a, b domain.FranchiseAdmin) int { return cmp.Compare(a.ID, b.ID) })
	return f, nil
}

func (m *MemoryStore) GetFranchiseIDsByAdmin(_ context.Context, userID int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := []int64{}
	for _, r := range m.roles {
		if r.userID == userID && r.role.Role == domain.RoleFranchisee && !slices.Contains(ids, r.role.ObjectID) {
			ids = append(ids, r.role.ObjectID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *MemoryStore) CreateFranchise(_ context.Context, name string, admins []domain.FranchiseAdmin) (domain.Franchise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.franchises {
		if existing == name {
			return domain.Franchise{}, ErrConflict
		}
	}
	for _, a := range admins {
		if _, ok := m.users[a.ID]; !ok {
			return domain.Franchise{}, ErrNotFound
		}
	}

	id := m.nextID()
	m.franchises[id] = name
	for _, a := range admins {
		m.roles = append(m.roles, memRole{userID: a.ID, role: domain.UserRole{Role: domain.RoleFranchisee, ObjectID: id}})
	}
	return domain.Franchise{ID: id, Name: name, Admins: admins, Stores: []domain.Store{}}, nil
}

func (m *MemoryStore) DeleteFranchise(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for sid, s := range m.stores {
		if s.FranchiseID == id {
			delete(m.stores, sid)
		}
	}
	m.roles = slices.DeleteFunc(m.roles, func(r memRole) bool {
		return r.role.Role == domain.RoleFranchisee && r.role.ObjectID == id
	})
	delete(m.franchises, id)
	return nil
}

func (m *MemoryStore) GetStore(_ context.Context, franchiseID, storeID int64) (domain.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stores[storeID]
	if !ok || s.FranchiseID != franchiseID {
		return domain.Store{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) CreateStore(_ context.Context, franchiseID int64, name string) (domain.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.franchises[franchiseID]; !ok {
		return domain.Store{}, ErrNotFound
	}
	s := domain.Store{ID: m.nextID(), FranchiseID: franchiseID, Name: name}
	m.stores[s.ID] = s
	return s, nil
}

func (m *MemoryStore) DeleteStore(_ context.Context, franchiseID, storeID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[storeID]; ok && s.FranchiseID == franchiseID {
		delete(m.stores, storeID)
	}
	return nil
}

func (m *MemoryStore) franchiseIDs() []int64 {
	ids := make([]int64, 0, len(m.franchises))
	for id := range m.franchises {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (m *MemoryStore) storesOf(franchiseID int64, withRevenue bool) []domain.Store {
	out := []domain.Store{}
	for _, s := range m.stores {
		if s.FranchiseID != franchiseID {
			continue
		}
		st := domain.Store{ID: s.ID, Name: s.Name}
		if withRevenue {
			var revenue float64
			for _, o := range m.orders {
				if o.StoreID == s.ID {
					revenue += o.Total()
				}
			}
			st.TotalRevenue = &revenue
		}
		out = append(out, st)
	}
	slices.SortFunc(out, func(a, b domain.Store) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// orders

func (m *MemoryStore) AddOrder(_ context.Context, order domain.Order) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order.ID = m.nextID()
	order.Date = m.now().UTC()
	items := make([]domain.OrderItem, len(order.Items))
	for i, it := range order.Items {
		it.ID = m.nextID()
		items[i] = it
	}
	order.Items = items
	m.orders = append(m.orders, order)
	return order, nil
}

func (m *MemoryStore) GetOrders(_ context.Context, dinerID int64, limit, offset int) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.Order{}
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].DinerID == dinerID {
			out = append(out, m.orders[i])
		}
	}
	if offset >= len(out) {
		return []domain.Order{}, nil
	}
	out = out[max(offset, 0):]
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// likePattern compiles a SQL LIKE pattern into a case-insensitive regexp.
func likePattern(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
