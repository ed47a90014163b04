package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientDepth = errors.New("insufficient order book depth")
	ErrNoRoute           = errors.New("no compatible transfer route")
	ErrNoUsableExchanges = errors.New("no usable exchanges")
	ErrScanInFlight      = errors.New("scan cycle already in flight")
)

// FetchErrorKind classifies an exchange request failure.
type FetchErrorKind string

const (
	FetchNetwork     FetchErrorKind = "network"
	FetchTimeout     FetchErrorKind = "timeout"
	FetchRateLimited FetchErrorKind = "rate_limited"
	FetchMalformed   FetchErrorKind = "malformed"
)

// FetchError describes a failed exchange request. Fetch errors are isolated
// per exchange: they are recorded as diagnostics, never propagated in a way
// that aborts a scan cycle.
type FetchError struct {
	Exchange string
	Op       string // "order_book" or "coin_chains"
	Symbol   string
	Kind     FetchErrorKind
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s %s: %s: %v", e.Exchange, e.Op, e.Symbol, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
