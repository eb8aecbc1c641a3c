package verifier

import "context"

// Filter adjusts the validity of an email address. Implementations may keep
// or lower valid, never raise it.
type Filter interface {
	Filter(ctx context.Context, valid bool, email string) bool
}

// FilterFunc adapts a function to a Filter.
type FilterFunc func(ctx context.Context, valid bool, email string) bool

func (f FilterFunc) Filter(ctx context.Context, valid bool, email string) bool {
	return f(ctx, valid, email)
}

// Chain runs filters in order and stops once the address is invalid.
type Chain []Filter

func (c Chain) Filter(ctx context.Context, valid bool, email string) bool {
	for _, f := range c {
		if !valid {
			return false
		}
		valid = f.Filter(ctx, valid, email) && valid
	}
	return valid
}
