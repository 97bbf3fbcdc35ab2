// Package storagemock has testify mocks for the storage interfaces.
package storagemock

import (
	context "context"

	mock "github.com/stretchr/testify/mock"

	model "github.com/slok/dbsandbox/internal/model"
)

// MockRepository is a mock for storage.Repository.
type MockRepository struct {
	mock.Mock
}

// CreateSandbox provides a mock function with given fields: ctx, s
func (_m *MockRepository) CreateSandbox(ctx context.Context, s model.Sandbox) error {
	ret := _m.Called(ctx, s)

	if len(ret) == 0 {
		panic("no return value specified for CreateSandbox")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, model.Sandbox) error); ok {
		r0 = rf(ctx, s)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// GetSandbox provides a mock function with given fields: ctx, port
func (_m *MockRepository) GetSandbox(ctx context.Context, port int) (*model.Sandbox, error) {
	ret := _m.Called(ctx, port)

	if len(ret) == 0 {
		panic("no return value specified for GetSandbox")
	}

	var r0 *model.Sandbox
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, int) (*model.Sandbox, error)); ok {
		return rf(ctx, port)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Sandbox)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// ListSandboxes provides a mock function with given fields: ctx
func (_m *MockRepository) ListSandboxes(ctx context.Context) ([]model.Sandbox, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for ListSandboxes")
	}

	var r0 []model.Sandbox
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]model.Sandbox, error)); ok {
		return rf(ctx)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Sandbox)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// UpdateSandbox provides a mock function with given fields: ctx, s
func (_m *MockRepository) UpdateSandbox(ctx context.Context, s model.Sandbox) error {
	ret := _m.Called(ctx, s)

	if len(ret) == 0 {
		panic("no return value specified for UpdateSandbox")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, model.Sandbox) error); ok {
		r0 = rf(ctx, s)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// DeleteSandbox provides a mock function with given fields: ctx, port
func (_m *MockRepository) DeleteSandbox(ctx context.Context, port int) error {
	ret := _m.Called(ctx, port)

	if len(ret) == 0 {
		panic("no return value specified for DeleteSandbox")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int) error); ok {
		r0 = rf(ctx, port)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockRepository creates a new instance of MockRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRepository {
	m := &MockRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
