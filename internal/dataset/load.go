package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tbourn/go-reco-backend/internal/domain"
)

// Collections carries the four raw entity slices prior to validation.
type Collections struct {
	Customers []domain.Customer
	Products  []domain.Product
	Logs      []domain.ActionLog
	Reviews   []domain.Review
}

// File names expected inside a dataset directory.
const (
	customersFile = "customers.json"
	productsFile  = "products.json"
	logsFile      = "logs.json"
	reviewsFile   = "reviews.json"
)

// LoadDir reads the four JSON collection files from dir. Decoding failures
// are reported as SchemaError (the record is unusable before any field-level
// check can run). Validation is not performed here; pass the result to New.
func LoadDir(dir string) (Collections, error) {
	var c Collections
	if err := readJSON(filepath.Join(dir, customersFile), "customer", &c.Customers); err != nil {
		return Collections{}, err
	}
	if err := readJSON(filepath.Join(dir, productsFile), "product", &c.Products); err != nil {
		return Collections{}, err
	}
	if err := readJSON(filepath.Join(dir, logsFile), "action_log", &c.Logs); err != nil {
		return Collections{}, err
	}
	if err := readJSON(filepath.Join(dir, reviewsFile), "review", &c.Reviews); err != nil {
		return Collections{}, err
	}
	return c, nil
}

// LoadDirStore is a convenience wrapper: LoadDir followed by New.
func LoadDirStore(dir string) (*Store, error) {
	c, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return New(c.Customers, c.Products, c.Logs, c.Reviews)
}

func readJSON(path, entity string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("dataset: read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return &SchemaError{Entity: entity, Field: filepath.Base(path), Reason: err.Error()}
	}
	return nil
}
