// Package controllermock provides testify mocks for the controller interfaces.
package controllermock

import (
	"github.com/stretchr/testify/mock"

	"github.com/five82/helios/internal/controller"
	"github.com/five82/helios/internal/protocol"
)

// MockChannel is a testify mock of controller.Channel. Send returns protocol.OK
// when no return value is configured.
type MockChannel struct {
	mock.Mock
}

var _ controller.Channel = (*MockChannel)(nil)

func (m *MockChannel) Send(fields protocol.Dict) protocol.Result {
	args := m.Called(fields)
	if len(args) > 0 {
		return args.Get(0).(protocol.Result)
	}
	return protocol.OK
}
