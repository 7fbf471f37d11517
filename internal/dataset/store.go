package dataset

import (
	"sort"
	"sync/atomic"

	"github.com/tbourn/go-reco-backend/internal/domain"
)

// generation is a process-wide counter assigned to each successfully built
// store. Caches key on it so that a dataset reload invalidates every entry
// derived from the previous store.
var generation atomic.Uint64

// Store holds the four validated collections fully indexed in memory.
// All lookups are map accesses; nothing on the read path scans a table.
// The store is immutable after New returns and safe for concurrent use.
type Store struct {
	gen uint64

	customers map[string]*domain.Customer
	products  map[string]*domain.Product
	logs      map[string]*domain.ActionLog
	reviews   map[string]*domain.Review

	// Deterministic iteration order for the catalog (id ascending).
	productOrder []*domain.Product

	logsByCustomer   map[string][]*domain.ActionLog
	logsByProduct    map[string][]*domain.ActionLog
	purchByCustomer  map[string][]*domain.ActionLog
	purchByProduct   map[string][]*domain.ActionLog
	reviewsByProduct map[string][]*domain.Review
	reviewByPurchase map[string]*domain.Review
}

// New validates the raw collections and builds the indexed store. Validation
// runs schema checks first, then integrity checks; the first violation aborts
// the build. On success the store carries a fresh generation value.
func New(customers []domain.Customer, products []domain.Product, logs []domain.ActionLog, reviews []domain.Review) (*Store, error) {
	s := &Store{
		customers:        make(map[string]*domain.Customer, len(customers)),
		products:         make(map[string]*domain.Product, len(products)),
		logs:             make(map[string]*domain.ActionLog, len(logs)),
		reviews:          make(map[string]*domain.Review, len(reviews)),
		logsByCustomer:   make(map[string][]*domain.ActionLog),
		logsByProduct:    make(map[string][]*domain.ActionLog),
		purchByCustomer:  make(map[string][]*domain.ActionLog),
		purchByProduct:   make(map[string][]*domain.ActionLog),
		reviewsByProduct: make(map[string][]*domain.Review),
		reviewByPurchase: make(map[string]*domain.Review, len(reviews)),
	}

	for i := range customers {
		c := &customers[i]
		if err := validateCustomer(c); err != nil {
			return nil, err
		}
		if _, dup := s.customers[c.ID]; dup {
			return nil, integrityErr("customer", c.ID, "duplicate primary key")
		}
		s.customers[c.ID] = c
	}

	for i := range products {
		p := &products[i]
		if err := validateProduct(p); err != nil {
			return nil, err
		}
		if _, dup := s.products[p.ID]; dup {
			return nil, integrityErr("product", p.ID, "duplicate primary key")
		}
		s.products[p.ID] = p
		s.productOrder = append(s.productOrder, p)
	}
	sort.Slice(s.productOrder, func(i, j int) bool { return s.productOrder[i].ID < s.productOrder[j].ID })

	for i := range logs {
		l := &logs[i]
		if err := validateLog(l); err != nil {
			return nil, err
		}
		if _, dup := s.logs[l.ID]; dup {
			return nil, integrityErr("action_log", l.ID, "duplicate primary key")
		}
		if _, ok := s.customers[l.CustomerID]; !ok {
			return nil, integrityErr("action_log", l.ID, "customer_id "+l.CustomerID+" does not resolve")
		}
		if _, ok := s.products[l.ProductID]; !ok {
			return nil, integrityErr("action_log", l.ID, "product_id "+l.ProductID+" does not resolve")
		}
		s.logs[l.ID] = l
		s.logsByCustomer[l.CustomerID] = append(s.logsByCustomer[l.CustomerID], l)
		s.logsByProduct[l.ProductID] = append(s.logsByProduct[l.ProductID], l)
		if l.Action == domain.ActionPurchase {
			s.purchByCustomer[l.CustomerID] = append(s.purchByCustomer[l.CustomerID], l)
			s.purchByProduct[l.ProductID] = append(s.purchByProduct[l.ProductID], l)
		}
	}

	for i := range reviews {
		r := &reviews[i]
		if err := validateReview(r); err != nil {
			return nil, err
		}
		if _, dup := s.reviews[r.ID]; dup {
			return nil, integrityErr("review", r.ID, "duplicate primary key")
		}
		log, ok := s.logs[r.PurchaseLogID]
		if !ok {
			return nil, integrityErr("review", r.ID, "purchase_log_id "+r.PurchaseLogID+" does not resolve")
		}
		if log.Action != domain.ActionPurchase {
			return nil, integrityErr("review", r.ID, "referenced log "+log.ID+" is not a purchase")
		}
		if log.CustomerID != r.CustomerID || log.ProductID != r.ProductID {
			return nil, integrityErr("review", r.ID, "(customer, product) pair does not match purchase log "+log.ID)
		}
		if !r.CreatedAt.After(log.CreatedAt) {
			return nil, integrityErr("review", r.ID, "created_at is not after the purchase timestamp")
		}
		if _, dup := s.reviewByPurchase[r.PurchaseLogID]; dup {
			return nil, integrityErr("review", r.ID, "purchase log "+r.PurchaseLogID+" already has a review")
		}
		s.reviews[r.ID] = r
		s.reviewByPurchase[r.PurchaseLogID] = r
		s.reviewsByProduct[r.ProductID] = append(s.reviewsByProduct[r.ProductID], r)
	}

	s.gen = generation.Add(1)
	return s, nil
}

// Generation returns the build generation of this store. Values increase
// monotonically across rebuilds within a process.
func (s *Store) Generation() uint64 { return s.gen }

// Customer returns the customer with the given id.
func (s *Store) Customer(id string) (*domain.Customer, bool) {
	c, ok := s.customers[id]
	return c, ok
}

// Customers returns all customers in id-ascending order.
func (s *Store) Customers() []*domain.Customer {
	out := make([]*domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Product returns the product with the given id.
func (s *Store) Product(id string) (*domain.Product, bool) {
	p, ok := s.products[id]
	return p, ok
}

// Products returns the full catalog in id-ascending order. The returned
// slice is a copy; callers may reorder it freely.
func (s *Store) Products() []*domain.Product {
	out := make([]*domain.Product, len(s.productOrder))
	copy(out, s.productOrder)
	return out
}

// PurchaseLogsByProduct returns all purchase events for a product.
func (s *Store) PurchaseLogsByProduct(productID string) []*domain.ActionLog {
	return s.purchByProduct[productID]
}

// PurchaseLogsByCustomer returns all purchase events by a customer.
func (s *Store) PurchaseLogsByCustomer(customerID string) []*domain.ActionLog {
	return s.purchByCustomer[customerID]
}

// ReviewsByProduct returns all reviews for a product.
func (s *Store) ReviewsByProduct(productID string) []*domain.Review {
	return s.reviewsByProduct[productID]
}

// Counts returns the table sizes (customers, products, logs, reviews).
func (s *Store) Counts() (int, int, int, int) {
	return len(s.customers), len(s.products), len(s.logs), len(s.reviews)
}

func validateCustomer(c *domain.Customer) error {
	if c.ID == "" {
		return schemaErr("customer", "", "customer_id", "missing")
	}
	if c.Age < 0 {
		return schemaErr("customer", c.ID, "age", "must be >= 0")
	}
	if !domain.ValidSkinType(c.SkinType) {
		return schemaErr("customer", c.ID, "base_skin_type", "unknown value "+c.SkinType)
	}
	for _, tag := range c.Concerns.Values() {
		if !domain.ValidConcern(tag) {
			return schemaErr("customer", c.ID, "skin_concerns", "unknown tag "+tag)
		}
	}
	return nil
}

func validateProduct(p *domain.Product) error {
	if p.ID == "" {
		return schemaErr("product", "", "product_id", "missing")
	}
	if p.Name == "" {
		return schemaErr("product", p.ID, "product_name", "missing")
	}
	if p.Price < 0 {
		return schemaErr("product", p.ID, "price", "must be >= 0")
	}
	if p.Stock < 0 {
		return schemaErr("product", p.ID, "stock", "must be >= 0")
	}
	if !domain.ValidProductType(p.Type) {
		return schemaErr("product", p.ID, "product_type", "unknown value "+p.Type)
	}
	for _, st := range p.TargetSkinTypes.Values() {
		if !domain.ValidSkinType(st) {
			return schemaErr("product", p.ID, "target_skin_types", "unknown value "+st)
		}
	}
	for _, tag := range p.TargetConcerns.Values() {
		if !domain.ValidConcern(tag) {
			return schemaErr("product", p.ID, "target_concerns", "unknown tag "+tag)
		}
	}
	return nil
}

func validateLog(l *domain.ActionLog) error {
	if l.ID == "" {
		return schemaErr("action_log", "", "log_id", "missing")
	}
	if !domain.ValidAction(l.Action) {
		return schemaErr("action_log", l.ID, "action_type", "unknown value "+l.Action)
	}
	if l.DwellSeconds != nil && *l.DwellSeconds < 0 {
		return schemaErr("action_log", l.ID, "dwell_seconds", "must be >= 0")
	}
	if l.CreatedAt.IsZero() {
		return schemaErr("action_log", l.ID, "created_at", "missing")
	}
	return nil
}

func validateReview(r *domain.Review) error {
	if r.ID == "" {
		return schemaErr("review", "", "review_id", "missing")
	}
	if r.PurchaseLogID == "" {
		return schemaErr("review", r.ID, "purchase_log_id", "missing")
	}
	if !domain.ValidRate(r.Rate) {
		return schemaErr("review", r.ID, "rate", "must be in [1.0, 5.0] at 0.5 steps")
	}
	if r.CreatedAt.IsZero() {
		return schemaErr("review", r.ID, "created_at", "missing")
	}
	return nil
}
