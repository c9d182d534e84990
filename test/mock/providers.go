// test/mock/providers.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/sift/api/model"
	"github.com/dev-mohitbeniwal/sift/api/provider"
)

// MockRoleResolver is a mock implementation of provider.RoleResolver
type MockRoleResolver struct {
	mock.Mock
}

func (m *MockRoleResolver) ResolveRole(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// MockGeoLocator is a mock implementation of provider.GeoLocator
type MockGeoLocator struct {
	mock.Mock
}

func (m *MockGeoLocator) ResolveGeoLocation(ctx context.Context, ipAddress string) (model.GeoLocation, error) {
	args := m.Called(ctx, ipAddress)
	return args.Get(0).(model.GeoLocation), args.Error(1)
}

// MockVPNDetector is a mock implementation of provider.VPNDetector
type MockVPNDetector struct {
	mock.Mock
}

func (m *MockVPNDetector) DetectVPN(ctx context.Context, ipAddress string) (bool, error) {
	args := m.Called(ctx, ipAddress)
	return args.Bool(0), args.Error(1)
}

// MockMembershipProvider is a mock implementation of provider.MembershipProvider
type MockMembershipProvider struct {
	mock.Mock
}

func (m *MockMembershipProvider) FetchProjectMembership(ctx context.Context, userID string) (provider.Membership, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(provider.Membership), args.Error(1)
}

// MockHierarchyProvider is a mock implementation of provider.HierarchyProvider
type MockHierarchyProvider struct {
	mock.Mock
}

func (m *MockHierarchyProvider) FetchUserHierarchy(ctx context.Context, userID string) (provider.Hierarchy, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(provider.Hierarchy), args.Error(1)
}

// MockGrantProvider is a mock implementation of provider.GrantProvider
type MockGrantProvider struct {
	mock.Mock
}

func (m *MockGrantProvider) FetchTemporaryGrants(ctx context.Context, userID string) ([]model.TemporaryGrant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TemporaryGrant), args.Error(1)
}

// MockHistoryReader is a mock implementation of evaluator.HistoryReader
type MockHistoryReader struct {
	mock.Mock
}

func (m *MockHistoryReader) RecentLocations(ctx context.Context, userID string, n int) ([]model.GeoLocation, error) {
	args := m.Called(ctx, userID, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GeoLocation), args.Error(1)
}
