// Package sandboxmock has testify mocks for the sandbox interfaces.
package sandboxmock

import (
	context "context"

	mock "github.com/stretchr/testify/mock"

	model "github.com/slok/dbsandbox/internal/model"
)

// MockEngine is a mock for sandbox.Engine.
type MockEngine struct {
	mock.Mock
}

// Check provides a mock function with given fields: ctx
func (_m *MockEngine) Check(ctx context.Context) model.Outcomes {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Check")
	}

	var r0 model.Outcomes
	if rf, ok := ret.Get(0).(func(context.Context) model.Outcomes); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(model.Outcomes)
	}

	return r0
}

// Deploy provides a mock function with given fields: ctx, port, rootPassword
func (_m *MockEngine) Deploy(ctx context.Context, port int, rootPassword string) error {
	ret := _m.Called(ctx, port, rootPassword)

	if len(ret) == 0 {
		panic("no return value specified for Deploy")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int, string) error); ok {
		r0 = rf(ctx, port, rootPassword)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Start provides a mock function with given fields: ctx, port
func (_m *MockEngine) Start(ctx context.Context, port int) error {
	ret := _m.Called(ctx, port)

	if len(ret) == 0 {
		panic("no return value specified for Start")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int) error); ok {
		r0 = rf(ctx, port)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Stop provides a mock function with given fields: ctx, port, rootPassword
func (_m *MockEngine) Stop(ctx context.Context, port int, rootPassword string) error {
	ret := _m.Called(ctx, port, rootPassword)

	if len(ret) == 0 {
		panic("no return value specified for Stop")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int, string) error); ok {
		r0 = rf(ctx, port, rootPassword)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Kill provides a mock function with given fields: ctx, port
func (_m *MockEngine) Kill(ctx context.Context, port int) error {
	ret := _m.Called(ctx, port)

	if len(ret) == 0 {
		panic("no return value specified for Kill")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int) error); ok {
		r0 = rf(ctx, port)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Restart provides a mock function with given fields: ctx, port, rootPassword
func (_m *MockEngine) Restart(ctx context.Context, port int, rootPassword string) error {
	ret := _m.Called(ctx, port, rootPassword)

	if len(ret) == 0 {
		panic("no return value specified for Restart")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int, string) error); ok {
		r0 = rf(ctx, port, rootPassword)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Destroy provides a mock function with given fields: ctx, port
func (_m *MockEngine) Destroy(ctx context.Context, port int) error {
	ret := _m.Called(ctx, port)

	if len(ret) == 0 {
		panic("no return value specified for Destroy")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int) error); ok {
		r0 = rf(ctx, port)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ChangeConf provides a mock function with given fields: ctx, port, option
func (_m *MockEngine) ChangeConf(ctx context.Context, port int, option string) error {
	ret := _m.Called(ctx, port, option)

	if len(ret) == 0 {
		panic("no return value specified for ChangeConf")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int, string) error); ok {
		r0 = rf(ctx, port, option)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// RemoveFromConf provides a mock function with given fields: ctx, port, option
func (_m *MockEngine) RemoveFromConf(ctx context.Context, port int, option string) error {
	ret := _m.Called(ctx, port, option)

	if len(ret) == 0 {
		panic("no return value specified for RemoveFromConf")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int, string) error); ok {
		r0 = rf(ctx, port, option)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ConfPath provides a mock function with given fields: port
func (_m *MockEngine) ConfPath(port int) string {
	ret := _m.Called(port)

	if len(ret) == 0 {
		panic("no return value specified for ConfPath")
	}

	var r0 string
	if rf, ok := ret.Get(0).(func(int) string); ok {
		r0 = rf(port)
	} else {
		r0 = ret.Get(0).(string)
	}

	return r0
}

// LogPath provides a mock function with given fields: port
func (_m *MockEngine) LogPath(port int) string {
	ret := _m.Called(port)

	if len(ret) == 0 {
		panic("no return value specified for LogPath")
	}

	var r0 string
	if rf, ok := ret.Get(0).(func(int) string); ok {
		r0 = rf(port)
	} else {
		r0 = ret.Get(0).(string)
	}

	return r0
}

// SnapshotConf provides a mock function with given fields: ctx, port
func (_m *MockEngine) SnapshotConf(ctx context.Context, port int) error {
	ret := _m.Called(ctx, port)

	if len(ret) == 0 {
		panic("no return value specified for SnapshotConf")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int) error); ok {
		r0 = rf(ctx, port)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// BeginSnapshotErrorLog provides a mock function with given fields: ctx, port
func (_m *MockEngine) BeginSnapshotErrorLog(ctx context.Context, port int) error {
	ret := _m.Called(ctx, port)

	if len(ret) == 0 {
		panic("no return value specified for BeginSnapshotErrorLog")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int) error); ok {
		r0 = rf(ctx, port)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// EndSnapshotErrorLog provides a mock function with given fields: ctx, port
func (_m *MockEngine) EndSnapshotErrorLog(ctx context.Context, port int) error {
	ret := _m.Called(ctx, port)

	if len(ret) == 0 {
		panic("no return value specified for EndSnapshotErrorLog")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int) error); ok {
		r0 = rf(ctx, port)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockEngine creates a new instance of MockEngine. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockEngine(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEngine {
	mock := &MockEngine{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
