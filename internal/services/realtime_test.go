package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	frames   []interface{}
	writeErr error
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	c.frames = append(c.frames, v)
	return nil
}

func (c *fakeConn) Close() error { return nil }

func TestFanOutWritesToTargetsOnly(t *testing.T) {
	hub := NewHub()
	s2 := &fakeConn{}
	r1 := &fakeConn{}
	bystander := &fakeConn{}
	hub.Attach("S2", s2)
	hub.Attach("R1", r1)
	hub.Attach("X1", bystander)

	event := DeliveryEvent{From: "alice", To: "bob", Message: "hi"}
	hub.FanOut([]string{"S2", "R1"}, event)

	require.Len(t, s2.frames, 1)
	require.Len(t, r1.frames, 1)
	assert.Empty(t, bystander.frames)

	frame, ok := r1.frames[0].(PushFrame)
	require.True(t, ok)
	assert.Equal(t, EventGetPrivateMessage, frame.Event)
	assert.Equal(t, event, frame.Data)
}

func TestFanOutSkipsSocketsOnOtherInstances(t *testing.T) {
	hub := NewHub()
	local := &fakeConn{}
	hub.Attach("S2", local)

	// "R9" lives on another instance; only the local socket is written.
	hub.FanOut([]string{"S2", "R9"}, DeliveryEvent{From: "alice", To: "bob", Message: "hi"})

	assert.Len(t, local.frames, 1)
}

func TestFanOutWriteErrorDoesNotStopOthers(t *testing.T) {
	hub := NewHub()
	broken := &fakeConn{writeErr: errors.New("connection reset")}
	healthy := &fakeConn{}
	hub.Attach("S2", broken)
	hub.Attach("R1", healthy)

	hub.FanOut([]string{"S2", "R1"}, DeliveryEvent{From: "alice", To: "bob", Message: "hi"})

	assert.Len(t, healthy.frames, 1)
}

func TestDetachStopsDelivery(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	hub.Attach("S2", conn)
	hub.Detach("S2")

	hub.FanOut([]string{"S2"}, DeliveryEvent{From: "alice", To: "bob", Message: "hi"})

	assert.Empty(t, conn.frames)
}
