package mailer

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	amqp "github.com/streadway/amqp"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// fakeAcknowledger records how a delivery was settled.
type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(_ uint64, _ bool) error { f.acked = true; return nil }
func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}
func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func delivery(ack *fakeAcknowledger, body []byte) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body}
}

func TestHandleDelivery_AcksOnSuccess(t *testing.T) {
	body, err := json.Marshal(Message{
		Template: TemplatePasswordReset,
		To:       "user@example.com",
		Name:     "User",
		URL:      "http://x.test/users/resetPassword/abc",
	})
	require.NoError(t, err)

	ack := &fakeAcknowledger{}
	var got Message
	handleDelivery(delivery(ack, body), func(msg Message) error {
		got = msg
		return nil
	})

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	assert.Equal(t, TemplatePasswordReset, got.Template)
	assert.Equal(t, "user@example.com", got.To)
	assert.Equal(t, "http://x.test/users/resetPassword/abc", got.URL)
}

func TestHandleDelivery_RequeuesOnHandlerError(t *testing.T) {
	body, err := json.Marshal(Message{Template: TemplateWelcome, To: "user@example.com"})
	require.NoError(t, err)

	ack := &fakeAcknowledger{}
	handleDelivery(delivery(ack, body), func(Message) error {
		return fmt.Errorf("smtp unavailable")
	})

	assert.False(t, ack.acked)
	assert.True(t, ack.nacked)
	assert.True(t, ack.requeue)
}

func TestHandleDelivery_DropsMalformedBody(t *testing.T) {
	ack := &fakeAcknowledger{}
	called := false
	handleDelivery(delivery(ack, []byte("not json")), func(Message) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.False(t, ack.acked)
	assert.True(t, ack.nacked)
	// Malformed payloads are dropped, never requeued.
	assert.False(t, ack.requeue)
}
