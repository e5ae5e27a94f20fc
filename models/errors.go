package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrUnauthenticated = errors.New("user not authenticated")
)

// InsufficientStockError reports a line item whose requested quantity
// exceeds the product's available stock.
type InsufficientStockError struct {
	ProductTitle string
	Available    int
	Requested    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %d, requested %d",
		e.ProductTitle, e.Available, e.Requested)
}

// InvalidTransitionError is returned when an order cannot move to the
// requested status from its current one.
type InvalidTransitionError struct {
	Current OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return "already " + strings.ToLower(string(e.Current))
}

// StatusError is returned for a status value outside the known set.
type StatusError struct {
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("invalid status %q", e.Status)
}

// ValidationErrors aggregates every per-item problem found while
// validating a checkout request, so the storefront can highlight exactly
// which cart lines are invalid.
type ValidationErrors struct {
	Errors []string
}

func (e *ValidationErrors) Add(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationErrors) Empty() bool {
	return len(e.Errors) == 0
}

func (e *ValidationErrors) Error() string {
	return "product validation failed: " + strings.Join(e.Errors, "; ")
}
