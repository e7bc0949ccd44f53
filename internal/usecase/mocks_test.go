// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"elearning-platform/internal/domain"
	"elearning-platform/internal/domain/model"
	"elearning-platform/internal/domain/ports/repository"
)

// memTxManager serializes whole transactions with one mutex; fn receives
// a nil tx handle, which every repository accepts.
type memTxManager struct{ mu sync.Mutex }

func newMemTxManager() *memTxManager { return &memTxManager{} }

func (m *memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, nil)
}

// ---- users ----

type memUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{store: make(map[string]*model.User)} }

func (m *memUserRepo) Save(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.User
	for _, u := range m.store {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, offset, limit), nil
}

func (m *memUserRepo) SetActive(ctx context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (m *memUserRepo) CountUsers(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

// ---- courses ----

type memCourseRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Course
}

func newMemCourseRepo() *memCourseRepo { return &memCourseRepo{store: make(map[string]*model.Course)} }

func (m *memCourseRepo) Save(ctx context.Context, c *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *memCourseRepo) FindByID(ctx context.Context, id string) (*model.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCourseRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Course
	for _, id := range ids {
		if c, ok := m.store[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memCourseRepo) ListPublished(ctx context.Context) ([]*model.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Course
	for _, c := range m.store {
		if c.IsActive && c.Status == model.CourseStatusPublished {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memCourseRepo) List(ctx context.Context, offset, limit int) ([]*model.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Course
	for _, c := range m.store {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, offset, limit), nil
}

func (m *memCourseRepo) SoftDelete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.IsActive = false
	return nil
}

// ---- packages ----

type memPackageRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Package
	links map[string][]string // packageID -> courseIDs
}

func newMemPackageRepo() *memPackageRepo {
	return &memPackageRepo{store: make(map[string]*model.Package), links: make(map[string][]string)}
}

func (m *memPackageRepo) Save(ctx context.Context, p *model.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPackageRepo) FindByID(ctx context.Context, id string) (*model.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPackageRepo) List(ctx context.Context, offset, limit int) ([]*model.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Package
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, offset, limit), nil
}

func (m *memPackageRepo) SoftDelete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.IsActive = false
	return nil
}

func (m *memPackageRepo) LinkCourse(ctx context.Context, packageID, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.links[packageID] {
		if id == courseID {
			return nil
		}
	}
	m.links[packageID] = append(m.links[packageID], courseID)
	return nil
}

func (m *memPackageRepo) UnlinkCourse(ctx context.Context, packageID, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.links[packageID][:0]
	for _, id := range m.links[packageID] {
		if id != courseID {
			out = append(out, id)
		}
	}
	m.links[packageID] = out
	return nil
}

func (m *memPackageRepo) ListCourseIDs(ctx context.Context, tx repository.Tx, packageID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.links[packageID]...), nil
}

// ---- promotions ----

type memPromoRepo struct {
	mu    sync.Mutex
	store map[string]*model.PromotionCode
}

func newMemPromoRepo() *memPromoRepo {
	return &memPromoRepo{store: make(map[string]*model.PromotionCode)}
}

func (m *memPromoRepo) Save(ctx context.Context, tx repository.Tx, p *model.PromotionCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPromoRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PromotionCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPromoRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromotionCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.Code == strings.ToUpper(code) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPromoRepo) List(ctx context.Context, offset, limit int) ([]*model.PromotionCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PromotionCode
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return page(out, offset, limit), nil
}

// IncrementUsageIfAvailable mirrors the conditional UPDATE: the check
// and the bump happen under one lock, never as read-then-write.
func (m *memPromoRepo) IncrementUsageIfAvailable(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if p.MaxUses != nil && p.CurrentUses >= *p.MaxUses {
		return false, nil
	}
	p.CurrentUses++
	return true, nil
}

// ---- payments ----

type memPaymentRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{store: make(map[string]*model.Payment)}
}

func (m *memPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPaymentRepo) FindByStripeSession(ctx context.Context, tx repository.Tx, sessionID string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.StripeSessionID != nil && *p.StripeSessionID == sessionID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPaymentRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, offset, limit), nil
}

func (m *memPaymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memPaymentRepo) UpdateStatusIfCurrent(ctx context.Context, tx repository.Tx, id string, current, next model.PaymentStatus, gatewayRef *string, paidAt *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if p.Status != current {
		return false, nil
	}
	p.Status = next
	if gatewayRef != nil {
		p.StripeSessionID = gatewayRef
	}
	if paidAt != nil {
		p.PaidAt = paidAt
	}
	p.UpdatedAt = time.Now()
	return true, nil
}

// ---- access ----

type memAccessRepo struct {
	mu    sync.Mutex
	store map[string]*model.CourseAccess
}

func newMemAccessRepo() *memAccessRepo {
	return &memAccessRepo{store: make(map[string]*model.CourseAccess)}
}

func (m *memAccessRepo) Save(ctx context.Context, tx repository.Tx, a *model.CourseAccess) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.store[a.ID] = &cp
	return nil
}

func (m *memAccessRepo) LockPair(ctx context.Context, tx repository.Tx, userID, courseID string) error {
	// Transactions are fully serialized by memTxManager.
	return nil
}

func (m *memAccessRepo) FindActive(ctx context.Context, tx repository.Tx, userID, courseID string) (*model.CourseAccess, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.store {
		if a.UserID == userID && a.CourseID == courseID && a.IsActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memAccessRepo) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.IsActive = false
	return nil
}

func (m *memAccessRepo) DeactivateExpired(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.store {
		if a.IsActive && a.AccessUntil != nil && a.AccessUntil.Before(now) {
			a.IsActive = false
			n++
		}
	}
	return n, nil
}

func (m *memAccessRepo) HasValid(ctx context.Context, userID, courseID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.store {
		if a.UserID == userID && a.CourseID == courseID && a.ValidAt(now) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAccessRepo) ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]*model.CourseAccess, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.CourseAccess
	for _, a := range m.store {
		if a.UserID == userID && a.ValidAt(now) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// activeRows counts active rows for a pair; used by invariant checks.
func (m *memAccessRepo) activeRows(userID, courseID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.store {
		if a.UserID == userID && a.CourseID == courseID && a.IsActive {
			n++
		}
	}
	return n
}

// ---- audit ----

type memAuditRepo struct {
	mu   sync.Mutex
	recs []*model.AuditRecord
}

func newMemAuditRepo() *memAuditRepo { return &memAuditRepo{} }

func (m *memAuditRepo) Append(ctx context.Context, tx repository.Tx, rec *model.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memAuditRepo) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*model.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AuditRecord
	for _, r := range m.recs {
		if r.EntityType == entityType && r.EntityID == entityID {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- helpers ----

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// testFixture bundles the in-memory repositories behind fully wired
// use cases, the way cmd/app wires the real ones.
type testFixture struct {
	users    *memUserRepo
	courses  *memCourseRepo
	packages *memPackageRepo
	promos   *memPromoRepo
	payments *memPaymentRepo
	access   *memAccessRepo
	audit    *memAuditRepo
	tm       *memTxManager

	promoUC   *promotionUC
	accessUC  *accessUC
	paymentUC *paymentUC
}

func newTestFixture() *testFixture {
	f := &testFixture{
		users:    newMemUserRepo(),
		courses:  newMemCourseRepo(),
		packages: newMemPackageRepo(),
		promos:   newMemPromoRepo(),
		payments: newMemPaymentRepo(),
		access:   newMemAccessRepo(),
		audit:    newMemAuditRepo(),
		tm:       newMemTxManager(),
	}
	log := newTestLogger()
	f.promoUC = NewPromotionUseCase(f.promos, f.audit)
	f.accessUC = NewAccessUseCase(f.access, f.packages, f.courses, f.audit, f.tm, log)
	f.paymentUC = NewPaymentUseCase(f.payments, f.courses, f.packages, f.users, f.promoUC, f.accessUC, f.audit, f.tm, log)
	return f
}

func (f *testFixture) seedUser(t *testing.T, id string) *model.User {
	t.Helper()
	u, err := model.NewUser(id, id+"@example.com", "User "+id, model.UserRoleStudent)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := f.users.Save(context.Background(), u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	return u
}

func (f *testFixture) seedCourse(t *testing.T, id string, priceCents int64) *model.Course {
	t.Helper()
	c, err := model.NewCourse(id, "Course "+id, "course-"+id, "owner-1", priceCents)
	if err != nil {
		t.Fatalf("seed course: %v", err)
	}
	c.Status = model.CourseStatusPublished
	if err := f.courses.Save(context.Background(), c); err != nil {
		t.Fatalf("save course: %v", err)
	}
	return c
}

func (f *testFixture) seedPackage(t *testing.T, id string, priceCents int64, courseIDs ...string) *model.Package {
	t.Helper()
	p, err := model.NewPackage(id, "Package "+id, priceCents)
	if err != nil {
		t.Fatalf("seed package: %v", err)
	}
	if err := f.packages.Save(context.Background(), p); err != nil {
		t.Fatalf("save package: %v", err)
	}
	for _, cid := range courseIDs {
		if err := f.packages.LinkCourse(context.Background(), p.ID, cid); err != nil {
			t.Fatalf("link course: %v", err)
		}
	}
	return p
}

func page[T any](in []T, offset, limit int) []T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && len(in) > limit {
		in = in[:limit]
	}
	return in
}
