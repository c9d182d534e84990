// test/mock/search.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/sift/api/model"
)

// MockSearchExecutor is a mock implementation of search.Executor
type MockSearchExecutor struct {
	mock.Mock
}

func (m *MockSearchExecutor) ExecuteFilteredSearch(ctx context.Context, query string, filter map[string]interface{}) (*model.SearchResultSet, error) {
	args := m.Called(ctx, query, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SearchResultSet), args.Error(1)
}
