package grpcserver

import (
	"context"
	"testing"
	"time"

	pb "clobengine/api/enginepb"
	"clobengine/config"
	"clobengine/engine"
	"clobengine/sequence"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

func newTestServer(t *testing.T) (*Server, *engine.Engine) {
	cfg := config.Default()
	cfg.Instruments = []config.Instrument{{Id: "BTC-USD", SelfTradePolicy: "allow"}}
	hub := engine.NewEventHub()
	eng := engine.New(cfg, hub)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go eng.Run(ctx)

	return NewServer(eng, sequence.New(0), hub), eng
}

func TestPlaceOrderSubmitsAndAcksSeq(t *testing.T) {
	srv, _ := newTestServer(t)
	id := uuid.New()
	idBytes := id[:]

	ack, err := srv.PlaceOrder(context.Background(), &pb.PlaceOrderRequest{
		Instrument: "BTC-USD",
		OrderId:    idBytes,
		Side:       pb.Side_BID,
		Type:       pb.OrderType_LIMIT,
		Price:      100,
		Quantity:   5,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), ack.Seq)
}

func TestPlaceOrderRejectsMalformedOrderId(t *testing.T) {
	srv, _ := newTestServer(t)
	_, err := srv.PlaceOrder(context.Background(), &pb.PlaceOrderRequest{
		Instrument: "BTC-USD",
		OrderId:    []byte{1, 2, 3},
	})
	require.Error(t, err)
}

func TestStreamEventsDeliversAcceptedOrder(t *testing.T) {
	srv, _ := newTestServer(t)
	id := uuid.New()
	idBytes := id[:]

	streamCtx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	fake := newFakeStream(streamCtx)

	go func() {
		_ = srv.StreamEvents(&pb.StreamEventsRequest{Instrument: "BTC-USD"}, fake)
	}()

	// Give the subscriber goroutine a moment to register before
	// publishing, since EventHub.Subscribe must run before Publish.
	time.Sleep(10 * time.Millisecond)

	_, err := srv.PlaceOrder(context.Background(), &pb.PlaceOrderRequest{
		Instrument: "BTC-USD",
		OrderId:    idBytes,
		Side:       pb.Side_BID,
		Type:       pb.OrderType_LIMIT,
		Price:      100,
		Quantity:   5,
	})
	require.NoError(t, err)

	select {
	case msg := <-fake.sent:
		require.Equal(t, pb.EventKind_ORDER_ACCEPTED, msg.Kind)
		require.Equal(t, idBytes, msg.OrderId)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for streamed event")
	}
}

// fakeStream is a minimal grpc.ServerStream stand-in so StreamEvents
// can be exercised without a real network listener.
type fakeStream struct {
	ctx  context.Context
	sent chan *pb.EventMessage
}

func newFakeStream(ctx context.Context) *fakeStream {
	return &fakeStream{ctx: ctx, sent: make(chan *pb.EventMessage, 16)}
}

func (f *fakeStream) Send(m *pb.EventMessage) error {
	select {
	case f.sent <- m:
		return nil
	case <-f.ctx.Done():
		return f.ctx.Err()
	}
}

func (f *fakeStream) Context() context.Context          { return f.ctx }
func (f *fakeStream) SendMsg(m interface{}) error       { return nil }
func (f *fakeStream) RecvMsg(m interface{}) error       { return nil }
func (f *fakeStream) SetHeader(metadata.MD) error       { return nil }
func (f *fakeStream) SendHeader(metadata.MD) error      { return nil }
func (f *fakeStream) SetTrailer(metadata.MD)            {}
