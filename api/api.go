package api

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

//go:generate mockgen -package mock -destination ../mock/mock_api.go github.com/dvla-io/dvla/api Vehicle

var (
	// ErrNotAvailable indicates that no vehicle data is available
	ErrNotAvailable = errors.New("not available")

	// ErrMustRetry indicates that the lookup failed transiently and should be retried without caching
	ErrMustRetry = errors.New("must retry")
)

// Record is the flat vehicle record as returned by the vehicle enquiry api
type Record map[string]interface{}

// Empty returns true if the record holds no data
func (r Record) Empty() bool {
	return len(r) == 0
}

// Copy returns a shallow copy of the record
func (r Record) Copy() Record {
	if r == nil {
		return nil
	}

	res := make(Record, len(r))
	for k, v := range r {
		res[k] = v
	}

	return res
}

// Keys returns the sorted record keys
func (r Record) Keys() []string {
	res := make([]string, 0, len(r))
	for k := range r {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// String returns the display value for key and whether the key exists
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}

	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		// json numbers are decoded as float64
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val)), true
		}
		return fmt.Sprintf("%g", val), true
	default:
		return fmt.Sprintf("%v", val), true
	}
}

// Vehicle looks up a vehicle by its registration number
type Vehicle interface {
	Vehicle(ctx context.Context, registration string) (Record, error)
}
