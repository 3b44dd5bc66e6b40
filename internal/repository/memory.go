package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/marketarena/marketplace-api/internal/models"
	"github.com/marketarena/marketplace-api/internal/utils"
)

// MemoryStore implements Store with in-memory maps. Used for tests and
// development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu   sync.RWMutex
	data *memData
}

// memData holds the actual state so the locked transactional view and the
// per-call locking wrapper can share it.
type memData struct {
	sellers   map[string]models.Seller
	buyers    map[string]models.Buyer
	products  map[string]models.Product
	purchases []models.Purchase
	meta      map[string]string
}

func newMemData() *memData {
	return &memData{
		sellers:  make(map[string]models.Seller),
		buyers:   make(map[string]models.Buyer),
		products: make(map[string]models.Product),
		meta:     make(map[string]string),
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemData()}
}

// Atomic holds the global write lock for the duration of fn. The view passed
// to fn operates lock-free on the shared data, so nested Atomic calls and
// inner reads cannot deadlock.
func (s *MemoryStore) Atomic(_ context.Context, fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTx{data: s.data})
}

func (s *MemoryStore) CreateSeller(_ context.Context, sl *models.Seller) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.createSeller(sl)
}

func (s *MemoryStore) GetSeller(_ context.Context, id string) (*models.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getSeller(id)
}

func (s *MemoryStore) GetSellerByToken(_ context.Context, token string) (*models.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getSellerByToken(token)
}

func (s *MemoryStore) ListSellers(_ context.Context) ([]models.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listSellers()
}

func (s *MemoryStore) CreateBuyer(_ context.Context, b *models.Buyer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.createBuyer(b)
}

func (s *MemoryStore) GetBuyerByToken(_ context.Context, token string) (*models.Buyer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getBuyerByToken(token)
}

func (s *MemoryStore) ListBuyers(_ context.Context) ([]models.Buyer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listBuyers()
}

func (s *MemoryStore) CreateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.createProduct(p)
}

func (s *MemoryStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getProduct(id)
}

func (s *MemoryStore) UpdateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.updateProduct(p)
}

func (s *MemoryStore) ListProducts(_ context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listProducts()
}

func (s *MemoryStore) SearchProducts(_ context.Context, query string) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.searchProducts(query)
}

func (s *MemoryStore) SetRankings(_ context.Context, rankings map[string]int, bestsellers map[string]bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.setRankings(rankings, bestsellers)
}

func (s *MemoryStore) InsertPurchase(_ context.Context, p *models.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.insertPurchase(p)
}

func (s *MemoryStore) GetPurchase(_ context.Context, id string) (*models.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getPurchase(id)
}

func (s *MemoryStore) ListPurchases(_ context.Context, round *int) ([]models.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listPurchases(round)
}

func (s *MemoryStore) CountPurchasesByProduct(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.countPurchasesByProduct()
}

func (s *MemoryStore) GetMeta(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getMeta(key)
}

func (s *MemoryStore) SetMeta(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.setMeta(key, value)
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.reset()
}

// memTx is the lock-free transactional view handed to Atomic callbacks.
type memTx struct {
	data *memData
}

// Atomic on a transactional view just reuses the enclosing critical section.
func (t *memTx) Atomic(_ context.Context, fn func(Store) error) error {
	return fn(t)
}

func (t *memTx) CreateSeller(_ context.Context, s *models.Seller) error { return t.data.createSeller(s) }
func (t *memTx) GetSeller(_ context.Context, id string) (*models.Seller, error) {
	return t.data.getSeller(id)
}
func (t *memTx) GetSellerByToken(_ context.Context, tok string) (*models.Seller, error) {
	return t.data.getSellerByToken(tok)
}
func (t *memTx) ListSellers(_ context.Context) ([]models.Seller, error) { return t.data.listSellers() }
func (t *memTx) CreateBuyer(_ context.Context, b *models.Buyer) error   { return t.data.createBuyer(b) }
func (t *memTx) GetBuyerByToken(_ context.Context, tok string) (*models.Buyer, error) {
	return t.data.getBuyerByToken(tok)
}
func (t *memTx) ListBuyers(_ context.Context) ([]models.Buyer, error) { return t.data.listBuyers() }
func (t *memTx) CreateProduct(_ context.Context, p *models.Product) error {
	return t.data.createProduct(p)
}
func (t *memTx) GetProduct(_ context.Context, id string) (*models.Product, error) {
	return t.data.getProduct(id)
}
func (t *memTx) UpdateProduct(_ context.Context, p *models.Product) error {
	return t.data.updateProduct(p)
}
func (t *memTx) ListProducts(_ context.Context) ([]models.Product, error) {
	return t.data.listProducts()
}
func (t *memTx) SearchProducts(_ context.Context, q string) ([]models.Product, error) {
	return t.data.searchProducts(q)
}
func (t *memTx) SetRankings(_ context.Context, r map[string]int, b map[string]bool) error {
	return t.data.setRankings(r, b)
}
func (t *memTx) InsertPurchase(_ context.Context, p *models.Purchase) error {
	return t.data.insertPurchase(p)
}
func (t *memTx) GetPurchase(_ context.Context, id string) (*models.Purchase, error) {
	return t.data.getPurchase(id)
}
func (t *memTx) ListPurchases(_ context.Context, round *int) ([]models.Purchase, error) {
	return t.data.listPurchases(round)
}
func (t *memTx) CountPurchasesByProduct(_ context.Context) (map[string]int, error) {
	return t.data.countPurchasesByProduct()
}
func (t *memTx) GetMeta(_ context.Context, key string) (string, error) { return t.data.getMeta(key) }
func (t *memTx) SetMeta(_ context.Context, key, value string) error {
	return t.data.setMeta(key, value)
}
func (t *memTx) Reset(_ context.Context) error { return t.data.reset() }

// --- shared data operations (caller holds the appropriate lock) ---

func (d *memData) createSeller(s *models.Seller) error {
	if _, ok := d.sellers[s.ID]; ok {
		return fmt.Errorf("seller %s already exists", s.ID)
	}
	d.sellers[s.ID] = *s
	return nil
}

func (d *memData) getSeller(id string) (*models.Seller, error) {
	s, ok := d.sellers[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	copy := s
	return &copy, nil
}

func (d *memData) getSellerByToken(token string) (*models.Seller, error) {
	for _, s := range d.sellers {
		if s.AuthToken == token {
			copy := s
			return &copy, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (d *memData) listSellers() ([]models.Seller, error) {
	out := make([]models.Seller, 0, len(d.sellers))
	for _, s := range d.sellers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *memData) createBuyer(b *models.Buyer) error {
	if _, ok := d.buyers[b.ID]; ok {
		return fmt.Errorf("buyer %s already exists", b.ID)
	}
	d.buyers[b.ID] = *b
	return nil
}

func (d *memData) getBuyerByToken(token string) (*models.Buyer, error) {
	for _, b := range d.buyers {
		if b.AuthToken == token {
			copy := b
			return &copy, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (d *memData) listBuyers() ([]models.Buyer, error) {
	out := make([]models.Buyer, 0, len(d.buyers))
	for _, b := range d.buyers {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *memData) createProduct(p *models.Product) error {
	if _, ok := d.products[p.ID]; ok {
		return utils.ErrDuplicateProductID
	}
	d.products[p.ID] = *p
	return nil
}

func (d *memData) getProduct(id string) (*models.Product, error) {
	p, ok := d.products[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	copy := p
	return &copy, nil
}

func (d *memData) updateProduct(p *models.Product) error {
	if _, ok := d.products[p.ID]; !ok {
		return utils.ErrNotFound
	}
	d.products[p.ID] = *p
	return nil
}

func (d *memData) listProducts() ([]models.Product, error) {
	out := make([]models.Product, 0, len(d.products))
	for _, p := range d.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *memData) searchProducts(query string) ([]models.Product, error) {
	q := strings.ToLower(query)
	var out []models.Product
	for _, p := range d.products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.ShortDescription), q) ||
			strings.Contains(strings.ToLower(p.LongDescription), q) {
			out = append(out, p)
		}
	}
	// Ranking ascending, unranked last, then id for a stable order.
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].Ranking, out[j].Ranking
		switch {
		case ri != nil && rj != nil && *ri != *rj:
			return *ri < *rj
		case ri != nil && rj == nil:
			return true
		case ri == nil && rj != nil:
			return false
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (d *memData) setRankings(rankings map[string]int, bestsellers map[string]bool) error {
	for id, rank := range rankings {
		p, ok := d.products[id]
		if !ok {
			continue
		}
		r := rank
		p.Ranking = &r
		p.Bestseller = bestsellers[id]
		d.products[id] = p
	}
	return nil
}

func (d *memData) insertPurchase(p *models.Purchase) error {
	d.purchases = append(d.purchases, *p)
	return nil
}

func (d *memData) getPurchase(id string) (*models.Purchase, error) {
	for _, p := range d.purchases {
		if p.ID == id {
			copy := p
			return &copy, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (d *memData) listPurchases(round *int) ([]models.Purchase, error) {
	var out []models.Purchase
	for _, p := range d.purchases {
		if round != nil && p.Round != *round {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (d *memData) countPurchasesByProduct() (map[string]int, error) {
	counts := make(map[string]int)
	for _, p := range d.purchases {
		counts[p.ProductID]++
	}
	return counts, nil
}

func (d *memData) getMeta(key string) (string, error) {
	v, ok := d.meta[key]
	if !ok {
		return "", utils.ErrNotFound
	}
	return v, nil
}

func (d *memData) setMeta(key, value string) error {
	d.meta[key] = value
	return nil
}

func (d *memData) reset() error {
	d.sellers = make(map[string]models.Seller)
	d.buyers = make(map[string]models.Buyer)
	d.products = make(map[string]models.Product)
	d.purchases = nil
	d.meta = make(map[string]string)
	return nil
}
