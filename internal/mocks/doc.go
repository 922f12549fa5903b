// Package mocks holds hand-written fakes for the service and store
// interfaces. Each fake exposes one function field per method; a nil field
// falls back to a fixed return value, so tests only stub what they exercise:
//
//	accounts := &mocks.MockAccountStore{
//	    ReadFn: func(ctx context.Context, id int64) (*domain.Account, bool, error) {
//	        return nil, false, store.ErrUnavailable
//	    },
//	}
package mocks
