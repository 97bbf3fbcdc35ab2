// Package provisioningmock has testify mocks for the provisioning interfaces.
package provisioningmock

import (
	context "context"

	model "github.com/slok/dbsandbox/internal/model"
	mock "github.com/stretchr/testify/mock"

	provisioning "github.com/slok/dbsandbox/internal/provisioning"
)

// MockProvisioner is a mock for provisioning.Provisioner.
type MockProvisioner struct {
	mock.Mock
}

func (_m *MockProvisioner) call(name string, ctx context.Context, req provisioning.Request) (model.Outcomes, error) {
	ret := _m.MethodCalled(name, ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for " + name)
	}

	var r0 model.Outcomes
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, provisioning.Request) (model.Outcomes, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, provisioning.Request) model.Outcomes); ok {
		r0 = rf(ctx, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(model.Outcomes)
	}

	if rf, ok := ret.Get(1).(func(context.Context, provisioning.Request) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// CreateSandbox provides a mock function with given fields: ctx, req
func (_m *MockProvisioner) CreateSandbox(ctx context.Context, req provisioning.Request) (model.Outcomes, error) {
	return _m.call("CreateSandbox", ctx, req)
}

// StartSandbox provides a mock function with given fields: ctx, req
func (_m *MockProvisioner) StartSandbox(ctx context.Context, req provisioning.Request) (model.Outcomes, error) {
	return _m.call("StartSandbox", ctx, req)
}

// StopSandbox provides a mock function with given fields: ctx, req
func (_m *MockProvisioner) StopSandbox(ctx context.Context, req provisioning.Request) (model.Outcomes, error) {
	return _m.call("StopSandbox", ctx, req)
}

// KillSandbox provides a mock function with given fields: ctx, req
func (_m *MockProvisioner) KillSandbox(ctx context.Context, req provisioning.Request) (model.Outcomes, error) {
	return _m.call("KillSandbox", ctx, req)
}

// DeleteSandbox provides a mock function with given fields: ctx, req
func (_m *MockProvisioner) DeleteSandbox(ctx context.Context, req provisioning.Request) (model.Outcomes, error) {
	return _m.call("DeleteSandbox", ctx, req)
}

// NewMockProvisioner creates a new instance of MockProvisioner. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockProvisioner(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockProvisioner {
	mock := &MockProvisioner{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
