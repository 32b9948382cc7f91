package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Identity store
// ---------------------------------------------------------------------------

type stubIdentityRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Identity
	nextID  int
	creates int
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{byID: make(map[string]*domain.Identity)}
}

func cloneIdentity(i *domain.Identity) *domain.Identity {
	c := *i
	return &c
}

func (r *stubIdentityRepo) seed(i *domain.Identity) *domain.Identity {
	created, err := r.Create(context.Background(), i)
	if err != nil {
		panic(err)
	}
	r.creates = 0
	return created
}

func (r *stubIdentityRepo) Create(_ context.Context, i *domain.Identity) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Phone == i.Phone {
			return nil, domain.ErrAlreadyExists
		}
	}
	r.nextID++
	c := cloneIdentity(i)
	c.ID = fmt.Sprintf("%024x", r.nextID)
	r.byID[c.ID] = c
	r.creates++
	return cloneIdentity(c), nil
}

func (r *stubIdentityRepo) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound(domain.EntityUser, id)
	}
	return cloneIdentity(i), nil
}

func (r *stubIdentityRepo) FindByPhoneSuffix(_ context.Context, digits string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.byID {
		if strings.HasSuffix(i.Phone, digits) {
			return cloneIdentity(i), nil
		}
	}
	return nil, domain.NotFound(domain.EntityUser, digits)
}

func (r *stubIdentityRepo) List(_ context.Context) ([]*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Identity, 0, len(r.byID))
	for _, i := range r.byID {
		out = append(out, cloneIdentity(i))
	}
	return out, nil
}

func (r *stubIdentityRepo) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, i := range r.byID {
		if i.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *stubIdentityRepo) UpdateProfile(_ context.Context, i *domain.Identity) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[i.ID]
	if !ok {
		return nil, domain.NotFound(domain.EntityUser, i.ID)
	}
	c := cloneIdentity(i)
	c.PasswordHash = existing.PasswordHash
	c.MustRotatePassword = existing.MustRotatePassword
	r.byID[i.ID] = c
	return cloneIdentity(c), nil
}

func (r *stubIdentityRepo) UpdatePassword(_ context.Context, id, hash string, mustRotate bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return domain.NotFound(domain.EntityUser, id)
	}
	i.PasswordHash = hash
	i.MustRotatePassword = mustRotate
	return nil
}

func (r *stubIdentityRepo) Delete(_ context.Context, id string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound(domain.EntityUser, id)
	}
	delete(r.byID, id)
	return i, nil
}

// ---------------------------------------------------------------------------
// OTP store and sender
// ---------------------------------------------------------------------------

type stubOTPStore struct {
	mu      sync.Mutex
	entries map[string]*ports.OTPEntry
}

func newStubOTPStore() *stubOTPStore {
	return &stubOTPStore{entries: make(map[string]*ports.OTPEntry)}
}

func (s *stubOTPStore) Issue(_ context.Context, phone, hash string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[phone] = &ports.OTPEntry{CodeHash: hash}
	return nil
}

func (s *stubOTPStore) Reserve(_ context.Context, phone string) (*ports.OTPEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[phone]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.Attempts++
	c := *e
	return &c, nil
}

func (s *stubOTPStore) Consume(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, phone)
	return nil
}

func (s *stubOTPStore) outstanding(phone string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[phone]
	return ok
}

type stubSender struct {
	sent map[string]string
	err  error
}

func (s *stubSender) Send(_ context.Context, phone, code string) error {
	if s.err != nil {
		return s.err
	}
	if s.sent == nil {
		s.sent = make(map[string]string)
	}
	s.sent[phone] = code
	return nil
}

// ---------------------------------------------------------------------------
// Audit recorder
// ---------------------------------------------------------------------------

type recordingAudit struct {
	mu      sync.Mutex
	records []domain.AuditRecord
}

func (a *recordingAudit) Record(_ context.Context, actorID string, action domain.ActionKind, entity domain.EntityKind, entityID, details string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, domain.AuditRecord{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
	})
}

func (a *recordingAudit) last() domain.AuditRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.records) == 0 {
		return domain.AuditRecord{}
	}
	return a.records[len(a.records)-1]
}

func (a *recordingAudit) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// ---------------------------------------------------------------------------
// Bookings and ledger with version checks mirroring the Mongo filters
// ---------------------------------------------------------------------------

type stubBookingRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.Booking
	nextID   int
	lastList ports.BookingFilter
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{byID: make(map[string]*domain.Booking)}
}

func (r *stubBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := *b
	c.ID = fmt.Sprintf("b%023x", r.nextID)
	r.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (r *stubBookingRepo) FindByID(_ context.Context, id string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound(domain.EntityBooking, id)
	}
	c := *b
	return &c, nil
}

func (r *stubBookingRepo) List(_ context.Context, f ports.BookingFilter) ([]*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastList = f
	var out []*domain.Booking
	for _, b := range r.byID {
		if f.CustomerID != "" && b.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && string(b.Status) != f.Status {
			continue
		}
		c := *b
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *stubBookingRepo) Update(_ context.Context, b *domain.Booking, expected int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[b.ID]
	if !ok {
		return nil, domain.NotFound(domain.EntityBooking, b.ID)
	}
	if existing.Version != expected {
		return nil, domain.ErrConflict
	}
	c := *b
	c.Version = expected + 1
	r.byID[b.ID] = &c
	out := c
	return &out, nil
}

func (r *stubBookingRepo) Delete(_ context.Context, id string, expected int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound(domain.EntityBooking, id)
	}
	if existing.Version != expected {
		return nil, domain.ErrConflict
	}
	delete(r.byID, id)
	return existing, nil
}

type stubLedger struct {
	mu      sync.Mutex
	records []*domain.FinanceRecord
	err     error
}

func (l *stubLedger) Create(_ context.Context, r *domain.FinanceRecord) (*domain.FinanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	c := *r
	c.ID = fmt.Sprintf("f%023x", len(l.records)+1)
	l.records = append(l.records, &c)
	out := c
	return &out, nil
}

func (l *stubLedger) FindByID(_ context.Context, id string) (*domain.FinanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.records {
		if r.ID == id {
			c := *r
			return &c, nil
		}
	}
	return nil, domain.NotFound(domain.EntityFinance, id)
}

func (l *stubLedger) List(_ context.Context) ([]*domain.FinanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*domain.FinanceRecord(nil), l.records...), nil
}

func (l *stubLedger) Update(_ context.Context, r *domain.FinanceRecord, expected int64) (*domain.FinanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.records {
		if existing.ID != r.ID {
			continue
		}
		if existing.Version != expected {
			return nil, domain.ErrConflict
		}
		c := *r
		c.Version = expected + 1
		l.records[i] = &c
		out := c
		return &out, nil
	}
	return nil, domain.NotFound(domain.EntityFinance, r.ID)
}

func (l *stubLedger) Delete(_ context.Context, id string, expected int64) (*domain.FinanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.records {
		if existing.ID != id {
			continue
		}
		if existing.Version != expected {
			return nil, domain.ErrConflict
		}
		l.records = append(l.records[:i], l.records[i+1:]...)
		return existing, nil
	}
	return nil, domain.NotFound(domain.EntityFinance, id)
}
