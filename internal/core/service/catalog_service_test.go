package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

type stubInventoryRepo struct {
	items map[string]*domain.InventoryItem
}

func (r *stubInventoryRepo) Create(_ context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	if r.items == nil {
		r.items = make(map[string]*domain.InventoryItem)
	}
	c := *item
	c.ID = fmt.Sprintf("i%023x", len(r.items)+1)
	r.items[c.ID] = &c
	out := c
	return &out, nil
}

func (r *stubInventoryRepo) FindByID(_ context.Context, id string) (*domain.InventoryItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, domain.NotFound(domain.EntityInventory, id)
	}
	c := *item
	return &c, nil
}

func (r *stubInventoryRepo) List(_ context.Context) ([]*domain.InventoryItem, error) {
	var out []*domain.InventoryItem
	for _, item := range r.items {
		out = append(out, item)
	}
	return out, nil
}

func (r *stubInventoryRepo) Update(_ context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	c := *item
	r.items[item.ID] = &c
	return item, nil
}

func (r *stubInventoryRepo) Delete(_ context.Context, id string) (*domain.InventoryItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, domain.NotFound(domain.EntityInventory, id)
	}
	delete(r.items, id)
	return item, nil
}

type stubPackageRepo struct {
	pkgs map[string]*domain.EventPackage
}

func (r *stubPackageRepo) Create(_ context.Context, pkg *domain.EventPackage) (*domain.EventPackage, error) {
	if r.pkgs == nil {
		r.pkgs = make(map[string]*domain.EventPackage)
	}
	c := *pkg
	c.ID = fmt.Sprintf("p%023x", len(r.pkgs)+1)
	r.pkgs[c.ID] = &c
	out := c
	return &out, nil
}

func (r *stubPackageRepo) FindByID(_ context.Context, id string) (*domain.EventPackage, error) {
	pkg, ok := r.pkgs[id]
	if !ok {
		return nil, domain.NotFound(domain.EntityPackage, id)
	}
	c := *pkg
	return &c, nil
}

func (r *stubPackageRepo) List(_ context.Context) ([]*domain.EventPackage, error) {
	var out []*domain.EventPackage
	for _, pkg := range r.pkgs {
		out = append(out, pkg)
	}
	return out, nil
}

func (r *stubPackageRepo) Update(_ context.Context, pkg *domain.EventPackage) (*domain.EventPackage, error) {
	c := *pkg
	r.pkgs[pkg.ID] = &c
	return pkg, nil
}

func (r *stubPackageRepo) Delete(_ context.Context, id string) (*domain.EventPackage, error) {
	pkg, ok := r.pkgs[id]
	if !ok {
		return nil, domain.NotFound(domain.EntityPackage, id)
	}
	delete(r.pkgs, id)
	return pkg, nil
}

type stubSettingRepo struct {
	values map[string]string
}

func (r *stubSettingRepo) All(_ context.Context) ([]domain.Setting, error) {
	var out []domain.Setting
	for k, v := range r.values {
		out = append(out, domain.Setting{Key: k, Value: v})
	}
	return out, nil
}

func (r *stubSettingRepo) Upsert(_ context.Context, s domain.Setting) (domain.Setting, error) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	r.values[s.Key] = s.Value
	return s, nil
}

func TestFinanceService_CreateAndUpdate(t *testing.T) {
	ledger := &stubLedger{}
	audit := &recordingAudit{}
	svc := NewFinanceService(ledger, audit, zerolog.Nop())
	ctx := context.Background()

	rec, err := svc.Create(ctx, adminActor, ports.FinanceInput{
		Type:        domain.FinanceExpense,
		Amount:      1200,
		Category:    "Transport",
		Description: "Van hire",
	})
	require.NoError(t, err)
	assert.False(t, rec.Date.IsZero())
	assert.Equal(t, int64(1), rec.Version)

	amount := 1500.0
	updated, err := svc.Update(ctx, adminActor, rec.ID, rec.Version, ports.FinancePatch{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, updated.Amount)
	assert.Equal(t, int64(2), updated.Version)

	_, err = svc.Update(ctx, adminActor, rec.ID, rec.Version, ports.FinancePatch{Amount: &amount})
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.ErrorIs(t, svc.Delete(ctx, adminActor, rec.ID, rec.Version), domain.ErrConflict)
	require.NoError(t, svc.Delete(ctx, adminActor, rec.ID, updated.Version))
	assert.Equal(t, 3, audit.count())
}

func TestFinanceService_Validation(t *testing.T) {
	svc := NewFinanceService(&stubLedger{}, &recordingAudit{}, zerolog.Nop())

	cases := []ports.FinanceInput{
		{Type: "REFUND", Amount: 10, Category: "x", Description: "y"},
		{Type: domain.FinanceIncome, Amount: 0, Category: "x", Description: "y"},
		{Type: domain.FinanceIncome, Amount: 10, Category: "", Description: "y"},
		{Type: domain.FinanceIncome, Amount: 10, Category: "x", Description: ""},
	}
	for _, in := range cases {
		_, err := svc.Create(context.Background(), adminActor, in)
		assert.ErrorIs(t, err, domain.ErrValidation, "input %+v", in)
	}
}

func TestInventoryService(t *testing.T) {
	repo := &stubInventoryRepo{}
	svc := NewInventoryService(repo, &recordingAudit{}, zerolog.Nop())
	ctx := context.Background()

	item, err := svc.Create(ctx, crewActor, ports.InventoryInput{Name: "Speaker", Category: "Audio", Quantity: 4, TotalQuantity: 4})
	require.NoError(t, err)
	assert.Equal(t, domain.InventoryAvailable, item.Status)

	_, err = svc.Create(ctx, crewActor, ports.InventoryInput{Name: "Mixer", Category: "Audio", Quantity: 5, TotalQuantity: 2})
	assert.ErrorIs(t, err, domain.ErrValidation)

	inUse := domain.InventoryInUse
	qty := 1
	updated, err := svc.Update(ctx, crewActor, item.ID, ports.InventoryPatch{Status: &inUse, Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, domain.InventoryInUse, updated.Status)
	assert.Equal(t, 1, updated.Quantity)

	bad := domain.InventoryStatus("LOST")
	_, err = svc.Update(ctx, crewActor, item.ID, ports.InventoryPatch{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Update(ctx, crewActor, "missing", ports.InventoryPatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPackageService(t *testing.T) {
	repo := &stubPackageRepo{}
	svc := NewPackageService(repo, &recordingAudit{}, zerolog.Nop())
	ctx := context.Background()

	pkg, err := svc.Create(ctx, adminActor, ports.PackageInput{Name: " Gold ", Price: 30000, Features: []string{"Lights", " ", "Smoke machine"}})
	require.NoError(t, err)
	assert.Equal(t, "Gold", pkg.Name)
	assert.Equal(t, []string{"Lights", "Smoke machine"}, pkg.Features)

	negative := -1.0
	_, err = svc.Update(ctx, adminActor, pkg.ID, ports.PackagePatch{Price: &negative})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, svc.Delete(ctx, adminActor, pkg.ID))
	assert.ErrorIs(t, svc.Delete(ctx, adminActor, pkg.ID), domain.ErrNotFound)
}

func TestSettingService(t *testing.T) {
	repo := &stubSettingRepo{}
	audit := &recordingAudit{}
	svc := NewSettingService(repo, audit, zerolog.Nop())
	ctx := context.Background()

	cases := []struct {
		key, value string
		ok         bool
	}{
		{domain.SettingUPIID, "vetri@okaxis", true},
		{domain.SettingUPIID, "not-a-handle", false},
		{domain.SettingBusinessName, "Vetri DJ", true},
		{domain.SettingBusinessName, "", false},
		{domain.SettingContactPhone, "9876543210", true},
		{domain.SettingContactPhone, "98765", false},
		{"", "x", false},
	}
	for _, tc := range cases {
		_, err := svc.Set(ctx, adminActor, tc.key, tc.value)
		if tc.ok {
			assert.NoError(t, err, "%s=%q", tc.key, tc.value)
		} else {
			assert.ErrorIs(t, err, domain.ErrValidation, "%s=%q", tc.key, tc.value)
		}
	}

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		domain.SettingUPIID:        "vetri@okaxis",
		domain.SettingBusinessName: "Vetri DJ",
		domain.SettingContactPhone: "9876543210",
	}, all)
	assert.Equal(t, 3, audit.count())
	assert.Equal(t, domain.EntitySetting, audit.records[0].Entity)
}
