// Package services defines the business logic for catalog search, review
// insight, cross-sell ranking, and behavioral event capture. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrCustomerNotFound indicates that the requested customer does not exist.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrProductNotFound indicates that the requested product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidAction is returned when an event carries an action outside the
	// allowed set (view, cart, purchase).
	ErrInvalidAction = errors.New("invalid action type")

	// ErrInvalidDwell is returned when a view event carries a negative dwell
	// time.
	ErrInvalidDwell = errors.New("dwell seconds must be >= 0")

	// ErrInvalidRating is returned when a review rate is outside [1.0, 5.0]
	// or off the 0.5-step grid.
	ErrInvalidRating = errors.New("rate must be between 1.0 and 5.0 in 0.5 steps")

	// ErrNoPurchase is returned when a review does not reference an existing
	// purchase event by the same customer for the same product.
	ErrNoPurchase = errors.New("no matching purchase for review")

	// ErrDuplicateReview is returned when the referenced purchase already has
	// a review.
	ErrDuplicateReview = errors.New("review already exists for this purchase")
)
