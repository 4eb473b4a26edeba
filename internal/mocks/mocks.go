// Package mocks holds testify mocks of the service interfaces for handler tests.
package mocks

import "github.com/stretchr/testify/mock"

// result unpacks (value, error) return pairs where the value may be nil
func result[T any](args mock.Arguments) (T, error) {
	var zero T
	if args.Get(0) == nil {
		return zero, args.Error(1)
	}
	return args.Get(0).(T), args.Error(1)
}
