package contract

import (
	"context"

	"github.com/huangsam/contacts/schema"
	"github.com/stretchr/testify/mock"
)

// MockContactStore is a mock implementation of ContactStore for testing.
type MockContactStore struct {
	mock.Mock
}

var _ ContactStore = &MockContactStore{} // Compile-time check

// List implements the ContactStore interface.
func (m *MockContactStore) List(ctx context.Context, params schema.ListParams) (schema.PageResult, error) {
	ret := m.Called(ctx, params)
	page, _ := ret.Get(0).(schema.PageResult)
	return page, ret.Error(1)
}

// Get implements the ContactStore interface.
func (m *MockContactStore) Get(ctx context.Context, id string) (schema.Contact, error) {
	ret := m.Called(ctx, id)
	c, _ := ret.Get(0).(schema.Contact)
	return c, ret.Error(1)
}

// Create implements the ContactStore interface.
func (m *MockContactStore) Create(ctx context.Context, fields schema.ContactFields) (schema.Contact, error) {
	ret := m.Called(ctx, fields)
	c, _ := ret.Get(0).(schema.Contact)
	return c, ret.Error(1)
}

// Update implements the ContactStore interface.
func (m *MockContactStore) Update(ctx context.Context, id string, fields schema.ContactFields) (schema.Contact, error) {
	ret := m.Called(ctx, id, fields)
	c, _ := ret.Get(0).(schema.Contact)
	return c, ret.Error(1)
}

// Delete implements the ContactStore interface.
func (m *MockContactStore) Delete(ctx context.Context, id string) error {
	ret := m.Called(ctx, id)
	return ret.Error(0)
}
