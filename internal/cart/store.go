// Package cart holds a guest cart in memory and mirrors every change to an
// injected key-value storage.
package cart

import (
	"context"
	"errors"
	"fmt"
	"math"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/logger"
	"atelier-backend/pkg/money"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// ErrNotHydrated is returned by mutations issued before Hydrate completed.
var ErrNotHydrated = errors.New("cart is still loading")

// ErrItemNotFound is returned when a line key is not in the cart.
var ErrItemNotFound = errors.New("cart item not found")

// Option configures a Store.
type Option func(*Store)

// WithMaxQuantity caps the quantity of a single line.
func WithMaxQuantity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxQuantity = n
		}
	}
}

// WithAddListener registers a callback fired after every successful AddItem.
func WithAddListener(fn func(domain.CartItem)) Option {
	return func(s *Store) {
		s.onAdd = fn
	}
}

// Store is a single cart. It is owned by one request or session at a time and
// is not safe for concurrent use.
type Store struct {
	storage     domain.CartStorage
	key         string
	items       []domain.CartItem
	loading     bool
	maxQuantity int
	onAdd       func(domain.CartItem)
}

// New returns a store in the loading state. Call Hydrate before reading.
func New(storage domain.CartStorage, key string, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		key:     key,
		loading: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key the cart is persisted under.
func (s *Store) Key() string {
	return s.key
}

// Loading reports whether the persisted state has not been read yet.
func (s *Store) Loading() bool {
	return s.loading
}

// Hydrate loads the persisted cart. A missing key is an empty cart; an
// unreadable payload is logged and discarded.
func (s *Store) Hydrate(ctx context.Context) error {
	data, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load cart %s: %w", s.key, err)
	}

	s.items = nil
	if found && len(data) > 0 {
		var items []domain.CartItem
		if err := json.Unmarshal(data, &items); err != nil {
			logger.WithContext(ctx).Warn().Err(err).Str("cart_id", s.key).Msg("Discarding unreadable cart payload")
		} else {
			s.items = sanitize(items, s.limit())
		}
	}
	s.loading = false
	return nil
}

// AddItem merges item into the cart by its line key. An existing line grows by
// quantity; a new line is appended. Quantities below one count as one.
func (s *Store) AddItem(ctx context.Context, item domain.CartItem, quantity int) (domain.CartItem, error) {
	if s.loading {
		return domain.CartItem{}, ErrNotHydrated
	}
	if quantity < 1 {
		quantity = 1
	}
	if item.ID == "" {
		item.ID = domain.CartLineKey(item.ProductID, item.VariantID)
	}

	var added domain.CartItem
	if i := s.indexOf(item.ID); i >= 0 {
		s.items[i].Quantity = addQuantity(s.items[i].Quantity, quantity, s.limit())
		added = s.items[i]
	} else {
		item.Quantity = addQuantity(0, quantity, s.limit())
		s.items = append(s.items, item)
		added = item
	}

	if err := s.persist(ctx); err != nil {
		return domain.CartItem{}, err
	}
	if s.onAdd != nil {
		s.onAdd(added)
	}
	return added, nil
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if s.loading {
		return ErrNotHydrated
	}
	if quantity <= 0 {
		return s.RemoveItem(ctx, id)
	}
	i := s.indexOf(id)
	if i < 0 {
		return ErrItemNotFound
	}
	s.items[i].Quantity = addQuantity(0, quantity, s.limit())
	return s.persist(ctx)
}

// RemoveItem deletes a line. Removing an absent line is not an error.
func (s *Store) RemoveItem(ctx context.Context, id string) error {
	if s.loading {
		return ErrNotHydrated
	}
	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return s.persist(ctx)
}

// Clear empties the cart and deletes its persisted state.
func (s *Store) Clear(ctx context.Context) error {
	if s.loading {
		return ErrNotHydrated
	}
	s.items = nil
	if err := s.storage.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear cart %s: %w", s.key, err)
	}
	return nil
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []domain.CartItem {
	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Subtotal is Σ unitPrice × quantity, computed on every call.
func (s *Store) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(money.LineTotal(it.UnitPrice, it.Quantity))
	}
	return total
}

// ItemCount is the total number of units across lines.
func (s *Store) ItemCount() int {
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) IsEmpty() bool {
	return len(s.items) == 0
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// limit is the largest quantity a line may hold.
func (s *Store) limit() int {
	if s.maxQuantity > 0 {
		return s.maxQuantity
	}
	return math.MaxInt
}

// addQuantity returns existing+add capped at limit without overflowing.
// Both operands are expected to be positive or zero.
func addQuantity(existing, add, limit int) int {
	if existing > limit {
		existing = limit
	}
	if add > limit-existing {
		return limit
	}
	return existing + add
}

func (s *Store) persist(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("save cart %s: %w", s.key, err)
	}
	return nil
}

// sanitize drops non-positive lines and merges duplicate keys, capped at limit.
func sanitize(items []domain.CartItem, limit int) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	seen := make(map[string]int, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if it.ID == "" {
			it.ID = domain.CartLineKey(it.ProductID, it.VariantID)
		}
		if it.ProductID == "" {
			it.ProductID = it.ID
		}
		if i, ok := seen[it.ID]; ok {
			out[i].Quantity = addQuantity(out[i].Quantity, it.Quantity, limit)
			continue
		}
		it.Quantity = addQuantity(0, it.Quantity, limit)
		seen[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}
