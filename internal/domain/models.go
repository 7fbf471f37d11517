package domain

import "time"

// Customer is a registered shopper with a single skin profile and a set of
// registered concern tags. Customers are created by an out-of-band
// registration flow and are never mutated within a session.
//
// Fields:
//   - ID: stable opaque primary key.
//   - Gender / Age: demographic attributes used only for display and prompts.
//   - SkinType: exactly one profile value from the skin-type vocabulary.
//   - IsSensitive: sensitivity flag (a display concern, not a filter input).
//   - Concerns: set of concern tags from the shared vocabulary.
type Customer struct {
	ID          string    `json:"customer_id" gorm:"column:customer_id;type:varchar(64);primaryKey"`
	Gender      string    `json:"gender"      gorm:"type:varchar(16)"`
	Age         int       `json:"age"`
	SkinType    string    `json:"base_skin_type" gorm:"column:base_skin_type;type:varchar(32);not null;index"`
	IsSensitive bool      `json:"is_sensitive"`
	Concerns    StringSet `json:"skin_concerns" gorm:"column:skin_concerns;type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for Customer.
func (Customer) TableName() string { return "customers" }

// Product is a catalog entry. Its target sets draw from the same vocabularies
// as the corresponding Customer fields; that shared vocabulary is what makes
// the catalog filter's set-intersection stages meaningful.
type Product struct {
	ID              string    `json:"product_id" gorm:"column:product_id;type:varchar(64);primaryKey"`
	Name            string    `json:"product_name" gorm:"column:product_name;type:varchar(255);not null"`
	Brand           string    `json:"brand"        gorm:"type:varchar(128)"`
	Price           int64     `json:"price"        gorm:"not null"`
	Stock           int       `json:"stock"        gorm:"not null"`
	Type            string    `json:"product_type" gorm:"column:product_type;type:varchar(64);not null;index"`
	TargetSkinTypes StringSet `json:"target_skin_types" gorm:"column:target_skin_types;type:text"`
	TargetConcerns  StringSet `json:"target_concerns"   gorm:"column:target_concerns;type:text"`
	Description     string    `json:"description"       gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// ActionLog is one behavioral event (view, cart, or purchase) linking a
// customer to a product. The table is append-only; rows are never updated or
// deleted.
//
// DwellSeconds is meaningful only for "view" events and is nil otherwise.
type ActionLog struct {
	ID           string    `json:"log_id" gorm:"column:log_id;type:char(36);primaryKey"`
	CustomerID   string    `json:"customer_id" gorm:"column:customer_id;type:varchar(64);not null;index"`
	ProductID    string    `json:"product_id"  gorm:"column:product_id;type:varchar(64);not null;index"`
	Action       string    `json:"action_type" gorm:"column:action_type;type:varchar(16);not null;check:action_type IN ('view','cart','purchase')"`
	DwellSeconds *int      `json:"dwell_seconds,omitempty"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the database table name for ActionLog.
func (ActionLog) TableName() string { return "action_logs" }

// Review is verified customer feedback. Every review references exactly one
// purchase ActionLog (at most one review per purchase, enforced by unique
// index), and its (customer, product) pair must match that log's pair. This
// provenance rule keeps unverified reviews out of feedback aggregation.
type Review struct {
	ID            string    `json:"review_id" gorm:"column:review_id;type:char(36);primaryKey"`
	PurchaseLogID string    `json:"purchase_log_id" gorm:"column:purchase_log_id;type:char(36);not null;uniqueIndex:ux_review_purchase"`
	CustomerID    string    `json:"customer_id" gorm:"column:customer_id;type:varchar(64);not null;index"`
	ProductID     string    `json:"product_id"  gorm:"column:product_id;type:varchar(64);not null;index"`
	Rate          float64   `json:"rate"        gorm:"not null"`
	Text          string    `json:"review,omitempty" gorm:"column:review;type:text"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the database table name for Review.
func (Review) TableName() string { return "reviews" }

// Intent is the structured search constraint produced by the collaborator's
// intent parsing (or supplied directly by an API caller). The zero value
// means "no constraint on either dimension".
type Intent struct {
	// ProductType restricts the catalog to one category when non-empty.
	ProductType string `json:"product_type,omitempty"`
	// Concerns are the desired concern tags; empty means unconstrained.
	Concerns StringSet `json:"concerns,omitempty"`
}

// Empty reports whether the intent constrains nothing.
func (i Intent) Empty() bool { return i.ProductType == "" && len(i.Concerns) == 0 }
