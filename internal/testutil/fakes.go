// Package testutil holds in-memory repository fakes for usecase and handler tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"atelier-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Clock is a settable time source.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{t: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// --- Settings ---

type SettingsRepo struct {
	mu     sync.Mutex
	Values map[string]string
	Err    error
	Calls  int
	// AfterRead runs once a GetValues read is done, before it returns.
	AfterRead func()
}

func NewSettingsRepo(values map[string]string) *SettingsRepo {
	if values == nil {
		values = map[string]string{}
	}
	return &SettingsRepo{Values: values}
}

func (r *SettingsRepo) GetValues(_ context.Context, keys []string) (map[string]string, error) {
	r.mu.Lock()
	r.Calls++
	if r.Err != nil {
		err := r.Err
		r.mu.Unlock()
		return nil, err
	}
	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := r.Values[k]; ok {
			out[k] = v
		}
	}
	hook := r.AfterRead
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (r *SettingsRepo) UpsertValues(_ context.Context, values map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for k, v := range values {
		r.Values[k] = v
	}
	return nil
}

// --- Shipping ---

type ShippingRateRepo struct {
	mu    sync.Mutex
	Rates map[string]*domain.ShippingRate
	Err   error
}

func NewShippingRateRepo(rates ...domain.ShippingRate) *ShippingRateRepo {
	r := &ShippingRateRepo{Rates: map[string]*domain.ShippingRate{}}
	for i := range rates {
		rate := rates[i]
		if rate.ID == "" {
			rate.ID = uuid.NewString()
		}
		r.Rates[rate.ID] = &rate
	}
	return r
}

func (r *ShippingRateRepo) sorted() []domain.ShippingRate {
	out := make([]domain.ShippingRate, 0, len(r.Rates))
	for _, rate := range r.Rates {
		out = append(out, *rate)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CountryCode != out[j].CountryCode {
			return out[i].CountryCode < out[j].CountryCode
		}
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out
}

func (r *ShippingRateRepo) GetActiveRate(_ context.Context, country string, method domain.ShippingMethod) (*domain.ShippingRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, rate := range r.Rates {
		if rate.CountryCode == country && rate.Method == method && rate.IsActive {
			cp := *rate
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ShippingRateRepo) ListActiveByCountry(_ context.Context, country string) ([]domain.ShippingRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []domain.ShippingRate
	for _, rate := range r.sorted() {
		if rate.CountryCode == country && rate.IsActive {
			out = append(out, rate)
		}
	}
	return out, nil
}

func (r *ShippingRateRepo) ListAll(_ context.Context) ([]domain.ShippingRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return r.sorted(), nil
}

func (r *ShippingRateRepo) GetByID(_ context.Context, id string) (*domain.ShippingRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rate, ok := r.Rates[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rate
	return &cp, nil
}

func (r *ShippingRateRepo) conflict(rate *domain.ShippingRate) bool {
	for id, existing := range r.Rates {
		if id != rate.ID && existing.CountryCode == rate.CountryCode && existing.Method == rate.Method {
			return true
		}
	}
	return false
}

func (r *ShippingRateRepo) Create(_ context.Context, rate *domain.ShippingRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflict(rate) {
		return domain.ErrConflict
	}
	rate.ID = uuid.NewString()
	cp := *rate
	r.Rates[rate.ID] = &cp
	return nil
}

func (r *ShippingRateRepo) Update(_ context.Context, rate *domain.ShippingRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Rates[rate.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.conflict(rate) {
		return domain.ErrConflict
	}
	cp := *rate
	r.Rates[rate.ID] = &cp
	return nil
}

func (r *ShippingRateRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Rates[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.Rates, id)
	return nil
}

// --- Tax ---

type TaxRateRepo struct {
	mu    sync.Mutex
	Rates map[string]domain.CountryTaxRate
	Err   error
}

func NewTaxRateRepo(rates ...domain.CountryTaxRate) *TaxRateRepo {
	r := &TaxRateRepo{Rates: map[string]domain.CountryTaxRate{}}
	for _, t := range rates {
		r.Rates[t.CountryCode] = t
	}
	return r
}

func (r *TaxRateRepo) GetByCountry(_ context.Context, country string) (*domain.CountryTaxRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	t, ok := r.Rates[country]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r *TaxRateRepo) ListAll(_ context.Context) ([]domain.CountryTaxRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.CountryTaxRate, 0, len(r.Rates))
	for _, t := range r.Rates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CountryCode < out[j].CountryCode })
	return out, nil
}

func (r *TaxRateRepo) Upsert(_ context.Context, rate *domain.CountryTaxRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rate.UpdatedAt = time.Now()
	r.Rates[rate.CountryCode] = *rate
	return nil
}

func (r *TaxRateRepo) Delete(_ context.Context, country string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Rates[country]; !ok {
		return domain.ErrNotFound
	}
	delete(r.Rates, country)
	return nil
}

// --- Promotions ---

type PromotionRepo struct {
	mu     sync.Mutex
	Promos []domain.Promotion
	Err    error
}

func (r *PromotionRepo) ListByProduct(_ context.Context, productID string) ([]domain.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []domain.Promotion
	for _, p := range r.Promos {
		if p.ProductID == productID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PromotionRepo) ListByProducts(_ context.Context, ids []string) (map[string][]domain.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := map[string][]domain.Promotion{}
	for _, p := range r.Promos {
		if want[p.ProductID] {
			out[p.ProductID] = append(out[p.ProductID], p)
		}
	}
	return out, nil
}

func (r *PromotionRepo) List(_ context.Context, f domain.PromotionFilter) ([]domain.Promotion, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Promotion
	for _, p := range r.Promos {
		if f.ProductID != "" && p.ProductID != f.ProductID {
			continue
		}
		if f.ActiveOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *PromotionRepo) GetByID(_ context.Context, id string) (*domain.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Promos {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *PromotionRepo) Create(_ context.Context, promo *domain.Promotion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	promo.ID = uuid.NewString()
	r.Promos = append(r.Promos, *promo)
	return nil
}

func (r *PromotionRepo) Update(_ context.Context, promo *domain.Promotion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Promos {
		if r.Promos[i].ID == promo.ID {
			r.Promos[i] = *promo
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *PromotionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Promos {
		if r.Promos[i].ID == id {
			r.Promos = append(r.Promos[:i], r.Promos[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- Products ---

type ProductRepo struct {
	mu         sync.Mutex
	Products   map[string]*domain.Product
	Categories map[string]*domain.Category
	Calls      int
}

func NewProductRepo(products ...domain.Product) *ProductRepo {
	r := &ProductRepo{Products: map[string]*domain.Product{}, Categories: map[string]*domain.Category{}}
	for i := range products {
		p := products[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		r.Products[p.ID] = &p
	}
	return r
}

func (r *ProductRepo) ListCategories(_ context.Context, activeOnly bool) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	var out []domain.Category
	for _, c := range r.Categories {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (r *ProductRepo) GetCategoryByID(_ context.Context, id string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *ProductRepo) CreateCategory(_ context.Context, c *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Categories {
		if existing.Slug == c.Slug {
			return domain.ErrConflict
		}
	}
	c.ID = uuid.NewString()
	cp := *c
	r.Categories[c.ID] = &cp
	return nil
}

func (r *ProductRepo) UpdateCategory(_ context.Context, c *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Categories[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	r.Categories[c.ID] = &cp
	return nil
}

func (r *ProductRepo) DeleteCategory(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Categories[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.Categories, id)
	return nil
}

func (r *ProductRepo) GetProducts(_ context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	var out []domain.Product
	for _, p := range r.Products {
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Query)) {
			continue
		}
		if f.IsFeatured != nil && p.IsFeatured != *f.IsFeatured {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *ProductRepo) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) GetProductBySlug(_ context.Context, slug string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	for _, p := range r.Products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ProductRepo) CreateProduct(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Products {
		if existing.Slug == p.Slug {
			return domain.ErrConflict
		}
	}
	p.ID = uuid.NewString()
	for i := range p.Variants {
		if p.Variants[i].ID == "" {
			p.Variants[i].ID = uuid.NewString()
		}
		p.Variants[i].ProductID = p.ID
	}
	cp := *p
	r.Products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) UpdateProduct(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.Products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) UpdateProductStatus(_ context.Context, id string, isActive bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.IsActive = isActive
	return nil
}

func (r *ProductRepo) DeleteProduct(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.Products, id)
	return nil
}

// --- Orders ---

type OrderRepo struct {
	mu        sync.Mutex
	Orders    map[string]*domain.Order
	History   []domain.OrderHistory
	CreateErr error
}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{Orders: map[string]*domain.Order{}}
}

func (r *OrderRepo) CreateOrder(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	o.ID = uuid.NewString()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	o.UpdatedAt = o.CreatedAt
	for i := range o.Items {
		o.Items[i].ID = uuid.NewString()
		o.Items[i].OrderID = o.ID
	}
	cp := *o
	r.Orders[o.ID] = &cp
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.Orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *OrderRepo) GetAll(_ context.Context, f domain.OrderFilter) ([]domain.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.Orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *OrderRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.Orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

func (r *OrderRepo) CreateOrderHistory(_ context.Context, h *domain.OrderHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h.ID = uuid.NewString()
	h.CreatedAt = time.Now()
	r.History = append(r.History, *h)
	return nil
}

func (r *OrderRepo) GetOrderHistory(_ context.Context, orderID string) ([]domain.OrderHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.OrderHistory{}
	for _, h := range r.History {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, nil
}

// --- Media ---

type MediaRepo struct {
	mu     sync.Mutex
	Blocks map[string]*domain.MediaBlock
	Calls  int
}

func NewMediaRepo(blocks ...domain.MediaBlock) *MediaRepo {
	r := &MediaRepo{Blocks: map[string]*domain.MediaBlock{}}
	for i := range blocks {
		b := blocks[i]
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		r.Blocks[b.ID] = &b
	}
	return r
}

func (r *MediaRepo) ListByKind(_ context.Context, kind string) ([]domain.MediaBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	var out []domain.MediaBlock
	for _, b := range r.Blocks {
		if kind == "" || b.Kind == kind {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (r *MediaRepo) GetByID(_ context.Context, id string) (*domain.MediaBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.Blocks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *MediaRepo) Create(_ context.Context, b *domain.MediaBlock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = uuid.NewString()
	cp := *b
	r.Blocks[b.ID] = &cp
	return nil
}

func (r *MediaRepo) Update(_ context.Context, b *domain.MediaBlock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Blocks[b.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *b
	r.Blocks[b.ID] = &cp
	return nil
}

func (r *MediaRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Blocks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.Blocks, id)
	return nil
}

// --- Transactions ---

// TxManager runs fn directly and counts calls. It does not roll back.
type TxManager struct {
	Calls int
}

func (t *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	return fn(ctx)
}

// --- Stats ---

// StatsRepo aggregates the orders held by an OrderRepo.
type StatsRepo struct {
	Orders *OrderRepo
	Calls  int
}

func countsAsRevenue(status string) bool {
	return status != domain.OrderStatusCancelled && status != domain.OrderStatusRefunded
}

func (r *StatsRepo) inRange(start, end time.Time) []domain.Order {
	r.Orders.mu.Lock()
	defer r.Orders.mu.Unlock()
	r.Calls++
	var out []domain.Order
	for _, o := range r.Orders.Orders {
		if !o.CreatedAt.Before(start) && o.CreatedAt.Before(end) {
			out = append(out, *o)
		}
	}
	return out
}

func (r *StatsRepo) GetRevenueKPIs(_ context.Context, start, end time.Time) (*domain.SalesKPIs, error) {
	kpis := &domain.SalesKPIs{}
	for _, o := range r.inRange(start, end) {
		kpis.OrderCount++
		if !countsAsRevenue(o.Status) {
			kpis.CancelledCount++
			continue
		}
		kpis.Revenue = kpis.Revenue.Add(o.Total)
		kpis.ShippingCollected = kpis.ShippingCollected.Add(o.ShippingCost)
		kpis.TaxCollected = kpis.TaxCollected.Add(o.TaxAmount)
	}
	return kpis, nil
}

func (r *StatsRepo) GetDailySales(_ context.Context, start, end time.Time) ([]domain.DailySales, error) {
	byDay := map[time.Time]*domain.DailySales{}
	for _, o := range r.inRange(start, end) {
		if !countsAsRevenue(o.Status) {
			continue
		}
		day := o.CreatedAt.UTC().Truncate(24 * time.Hour)
		d, ok := byDay[day]
		if !ok {
			d = &domain.DailySales{Day: day}
			byDay[day] = d
		}
		d.OrderCount++
		d.Revenue = d.Revenue.Add(o.Total)
	}
	var out []domain.DailySales
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (r *StatsRepo) GetTopSellingProducts(_ context.Context, start, end time.Time, limit int) ([]domain.TopProduct, error) {
	byProduct := map[string]*domain.TopProduct{}
	for _, o := range r.inRange(start, end) {
		if !countsAsRevenue(o.Status) {
			continue
		}
		for _, it := range o.Items {
			p, ok := byProduct[it.ProductID]
			if !ok {
				p = &domain.TopProduct{ProductID: it.ProductID, Name: it.Name, Revenue: decimal.Zero}
				byProduct[it.ProductID] = p
			}
			p.UnitsSold += int64(it.Quantity)
			p.Revenue = p.Revenue.Add(it.LineTotal)
		}
	}
	var out []domain.TopProduct
	for _, p := range byProduct {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnitsSold != out[j].UnitsSold {
			return out[i].UnitsSold > out[j].UnitsSold
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
