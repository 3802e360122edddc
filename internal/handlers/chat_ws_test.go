package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/privchat/privchat-backend/internal/services"
)

type fakeRouter struct {
	gotOrigin string
	gotData   *services.SendEnvelope
	ackWith   error
	calls     int
}

func (f *fakeRouter) HandleSend(ctx context.Context, originID string, data *services.SendEnvelope, ack services.AckFunc) {
	f.calls++
	f.gotOrigin = originID
	f.gotData = data
	if ack != nil {
		ack(f.ackWith)
	}
}

type fakeRegistry struct {
	registered    map[string]string
	registerErr   error
	unregisters   []string
	unregisterErr error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{registered: map[string]string{}}
}

func (f *fakeRegistry) Register(ctx context.Context, socketID, username string) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered[socketID] = username
	return nil
}

func (f *fakeRegistry) Unregister(ctx context.Context, socketID string) error {
	f.unregisters = append(f.unregisters, socketID)
	return f.unregisterErr
}

type sessionFixture struct {
	router   *fakeRouter
	registry *fakeRegistry
	sent     []interface{}
	sess     *connSession
}

func newSessionFixture(socketID string) *sessionFixture {
	f := &sessionFixture{
		router:   &fakeRouter{},
		registry: newFakeRegistry(),
	}
	f.sess = newConnSession(socketID, f.router, f.registry, func(v interface{}) error {
		f.sent = append(f.sent, v)
		return nil
	})
	return f
}

func (f *sessionFixture) lastAck(t *testing.T) ackFrame {
	t.Helper()
	require.NotEmpty(t, f.sent)
	frame, ok := f.sent[len(f.sent)-1].(ackFrame)
	require.True(t, ok)
	return frame
}

func TestHandleFrameIdentifyRegistersSocket(t *testing.T) {
	f := newSessionFixture("S1")

	f.sess.handleFrame(context.Background(), []byte(`{"id":"1","event":"set_user_socket","data":{"username":"alice"}}`))

	assert.Equal(t, "alice", f.registry.registered["S1"])

	ack := f.lastAck(t)
	assert.Equal(t, services.EventAck, ack.Event)
	assert.Equal(t, "1", ack.ID)
	assert.Empty(t, ack.Error)
}

func TestHandleFrameIdentifyNullDataSkipsRegistry(t *testing.T) {
	f := newSessionFixture("S1")

	f.sess.handleFrame(context.Background(), []byte(`{"id":"1","event":"set_user_socket","data":null}`))

	assert.Empty(t, f.registry.registered)

	ack := f.lastAck(t)
	assert.Equal(t, services.ErrMissingData.Error(), ack.Error)
}

func TestHandleFrameIdentifyErrorReachesAck(t *testing.T) {
	f := newSessionFixture("S1")
	f.registry.registerErr = errors.New("sockets collection unavailable")

	f.sess.handleFrame(context.Background(), []byte(`{"id":"7","event":"set_user_socket","data":{"username":"alice"}}`))

	ack := f.lastAck(t)
	assert.Equal(t, "sockets collection unavailable", ack.Error)
}

func TestHandleFrameSendRoutesWithOrigin(t *testing.T) {
	f := newSessionFixture("S1")

	f.sess.handleFrame(context.Background(), []byte(`{"id":"2","event":"send_private_message","data":{"from":"alice","to":"bob","message":"hi"}}`))

	assert.Equal(t, 1, f.router.calls)
	assert.Equal(t, "S1", f.router.gotOrigin)
	require.NotNil(t, f.router.gotData)
	assert.Equal(t, services.SendEnvelope{From: "alice", To: "bob", Message: "hi"}, *f.router.gotData)

	ack := f.lastAck(t)
	assert.Equal(t, "2", ack.ID)
	assert.Empty(t, ack.Error)
}

func TestHandleFrameSendNullDataForwardsNilEnvelope(t *testing.T) {
	f := newSessionFixture("S1")
	f.router.ackWith = services.ErrMissingData

	f.sess.handleFrame(context.Background(), []byte(`{"id":"3","event":"send_private_message","data":null}`))

	assert.Equal(t, 1, f.router.calls)
	assert.Nil(t, f.router.gotData)

	ack := f.lastAck(t)
	assert.Equal(t, services.ErrMissingData.Error(), ack.Error)
}

func TestHandleFrameWithoutIDSendsNoAck(t *testing.T) {
	f := newSessionFixture("S1")

	f.sess.handleFrame(context.Background(), []byte(`{"event":"send_private_message","data":{"from":"alice","to":"bob","message":"hi"}}`))

	assert.Equal(t, 1, f.router.calls)
	assert.Empty(t, f.sent)
}

func TestHandleFrameUnknownEventIgnored(t *testing.T) {
	f := newSessionFixture("S1")

	f.sess.handleFrame(context.Background(), []byte(`{"id":"4","event":"start_typing","data":{}}`))

	assert.Zero(t, f.router.calls)
	assert.Empty(t, f.registry.registered)
	assert.Empty(t, f.sent)
}

func TestHandleFrameMalformedJSONIgnored(t *testing.T) {
	f := newSessionFixture("S1")

	assert.NotPanics(t, func() {
		f.sess.handleFrame(context.Background(), []byte(`{not json`))
	})
	assert.Zero(t, f.router.calls)
}

func TestHandleDisconnectUnregisters(t *testing.T) {
	f := newSessionFixture("S1")

	f.sess.handleDisconnect(context.Background())

	assert.Equal(t, []string{"S1"}, f.registry.unregisters)
}

func TestHandleDisconnectSwallowsRegistryError(t *testing.T) {
	f := newSessionFixture("S1")
	f.registry.unregisterErr = errors.New("store unavailable")

	// Nothing to report to after disconnect; the error must not escape.
	assert.NotPanics(t, func() {
		f.sess.handleDisconnect(context.Background())
	})
	assert.Empty(t, f.sent)
}

func TestIdentifyTwiceStillOneAckEach(t *testing.T) {
	f := newSessionFixture("S1")

	frame := []byte(`{"id":"1","event":"set_user_socket","data":{"username":"alice"}}`)
	f.sess.handleFrame(context.Background(), frame)
	f.sess.handleFrame(context.Background(), frame)

	// Dedup is the registry's job; the session just forwards both.
	assert.Len(t, f.sent, 2)
	assert.Equal(t, "alice", f.registry.registered["S1"])
}

func TestAckFrameShape(t *testing.T) {
	f := newSessionFixture("S1")
	f.router.ackWith = services.ErrInvalidReceiver

	f.sess.handleFrame(context.Background(), []byte(`{"id":"9","event":"send_private_message","data":{"from":"alice","to":"carol","message":"hi"}}`))

	raw, err := json.Marshal(f.lastAck(t))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"ack","id":"9","error":"Invalid receiver"}`, string(raw))
}
