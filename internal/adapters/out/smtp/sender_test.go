package smtp

import (
	"context"
	"errors"
	"testing"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type MockDialer struct {
	mock.Mock
}

func (m *MockDialer) DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error {
	args := m.Called(ctx, messages)
	return args.Error(0)
}

var message = ports.EmailMessage{
	To:       "asha@example.com",
	Subject:  "Order confirmed",
	HTMLBody: "<p>Thanks</p>",
}

func TestSender_Send(t *testing.T) {
	dialer := new(MockDialer)
	sender := &Sender{client: dialer, from: "orders@pharmacy.test", fromName: "Pharmacy"}
	dialer.On("DialAndSendWithContext", mock.Anything, mock.MatchedBy(func(msgs []*mail.Msg) bool {
		if len(msgs) != 1 {
			return false
		}
		rcpts, err := msgs[0].GetRecipients()
		return err == nil && len(rcpts) == 1 && rcpts[0] == "asha@example.com" &&
			msgs[0].GetGenHeader(mail.HeaderSubject)[0] == "Order confirmed"
	})).Return(nil).Once()

	id, err := sender.Send(context.Background(), message)

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NotContains(t, id, "<")
	dialer.AssertExpectations(t)
}

func TestSender_Send_TransportError(t *testing.T) {
	dialer := new(MockDialer)
	sender := &Sender{client: dialer, from: "orders@pharmacy.test"}
	dialer.On("DialAndSendWithContext", mock.Anything, mock.Anything).Return(errors.New("dial tcp: refused"))

	_, err := sender.Send(context.Background(), message)

	require.ErrorContains(t, err, "refused")
}

func TestSender_Send_InvalidRecipient(t *testing.T) {
	dialer := new(MockDialer)
	sender := &Sender{client: dialer, from: "orders@pharmacy.test"}

	_, err := sender.Send(context.Background(), ports.EmailMessage{To: "not an address", Subject: "s"})

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	dialer.AssertNotCalled(t, "DialAndSendWithContext", mock.Anything, mock.Anything)
}

func TestNew_RequiresHostAndSender(t *testing.T) {
	_, err := New(Config{From: "orders@pharmacy.test"})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = New(Config{Host: "localhost"})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	sender, err := New(Config{Host: "localhost", Port: 1025, From: "orders@pharmacy.test"})
	require.NoError(t, err)
	assert.NotNil(t, sender)
}
