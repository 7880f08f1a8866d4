package grpcserver

import (
	"context"

	pb "clobengine/api/enginepb"
	"clobengine/engine"
	"clobengine/orderbook"
	"clobengine/sequence"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Server adapts an *engine.Engine to the enginepb.Engine gRPC
// service: the "external collaborator boundary" of spec §6. It
// assigns each inbound request its Command.Seq from a shared
// sequence.Allocator (the engine itself never mints one), submits it
// to the engine's input queue, and acknowledges receipt immediately —
// the actual outcome (accepted, rejected, trades) arrives later on
// StreamEvents, mirroring how the engine decouples matching from
// reporting.
type Server struct {
	pb.UnimplementedEngineServer
	eng *engine.Engine
	seq *sequence.Allocator
	hub *engine.EventHub
}

// NewServer wires a gRPC adapter around an already-constructed
// engine. hub must be the same EventHub passed (directly or via a
// CompositeSink) as that engine's EventSink, or StreamEvents will
// never observe anything.
func NewServer(eng *engine.Engine, seq *sequence.Allocator, hub *engine.EventHub) *Server {
	return &Server{eng: eng, seq: seq, hub: hub}
}

func (s *Server) PlaceOrder(ctx context.Context, req *pb.PlaceOrderRequest) (*pb.CommandAck, error) {
	id, err := uuid.FromBytes(req.OrderId)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "order_id: %v", err)
	}

	cmd := engine.Command{
		Seq:        s.seq.Next(),
		Instrument: req.Instrument,
		Kind:       engine.CmdPlaceOrder,
		TsIngress:  req.TsIngress,
		Place: engine.PlaceOrderPayload{
			OrderId:    id,
			Side:       toSide(req.Side),
			Type:       toOrderType(req.Type),
			Price:      req.Price,
			Quantity:   req.Quantity,
			TIF:        toTIF(req.Tif),
			AccountRef: req.AccountRef,
		},
	}
	return s.submit(ctx, cmd)
}

func (s *Server) CancelOrder(ctx context.Context, req *pb.CancelOrderRequest) (*pb.CommandAck, error) {
	id, err := uuid.FromBytes(req.OrderId)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "order_id: %v", err)
	}
	cmd := engine.Command{
		Seq:        s.seq.Next(),
		Instrument: req.Instrument,
		Kind:       engine.CmdCancelOrder,
		TsIngress:  req.TsIngress,
		Cancel:     engine.CancelOrderPayload{OrderId: id},
	}
	return s.submit(ctx, cmd)
}

func (s *Server) AmendOrder(ctx context.Context, req *pb.AmendOrderRequest) (*pb.CommandAck, error) {
	id, err := uuid.FromBytes(req.OrderId)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "order_id: %v", err)
	}
	payload := engine.AmendOrderPayload{OrderId: id}
	if req.HasNewPrice {
		p := req.NewPrice
		payload.NewPrice = &p
	}
	if req.HasNewQuantity {
		q := req.NewQuantity
		payload.NewQuantity = &q
	}
	cmd := engine.Command{
		Seq:        s.seq.Next(),
		Instrument: req.Instrument,
		Kind:       engine.CmdAmendOrder,
		TsIngress:  req.TsIngress,
		Amend:      payload,
	}
	return s.submit(ctx, cmd)
}

func (s *Server) Control(ctx context.Context, req *pb.ControlRequest) (*pb.CommandAck, error) {
	cmd := engine.Command{
		Seq:        s.seq.Next(),
		Instrument: req.Instrument,
		Kind:       engine.CmdControl,
		TsIngress:  req.TsIngress,
		Control:    engine.ControlPayload{Kind: toControlKind(req.Kind), ToSeq: req.ToSeq},
	}
	return s.submit(ctx, cmd)
}

func (s *Server) submit(ctx context.Context, cmd engine.Command) (*pb.CommandAck, error) {
	if err := s.eng.Submit(ctx, cmd); err != nil {
		return nil, status.Errorf(codes.Unavailable, "engine: %v", err)
	}
	return &pb.CommandAck{Seq: cmd.Seq}, nil
}

// StreamEvents streams every Event published to the server's
// EventHub, optionally filtered to one instrument, until the client
// disconnects.
func (s *Server) StreamEvents(req *pb.StreamEventsRequest, stream pb.Engine_StreamEventsServer) error {
	ch, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case evt, ok := <-ch:
			if !ok {
				return nil
			}
			if req.Instrument != "" && evt.Instrument != req.Instrument {
				continue
			}
			if err := stream.Send(toEventMessage(evt)); err != nil {
				return err
			}
		}
	}
}

func toSide(s pb.Side) orderbook.Side {
	if s == pb.Side_ASK {
		return orderbook.Ask
	}
	return orderbook.Bid
}

func fromSide(s orderbook.Side) pb.Side {
	if s == orderbook.Ask {
		return pb.Side_ASK
	}
	return pb.Side_BID
}

func toOrderType(t pb.OrderType) orderbook.OrderType {
	if t == pb.OrderType_MARKET {
		return orderbook.Market
	}
	return orderbook.Limit
}

func toTIF(t pb.TimeInForce) orderbook.TimeInForce {
	switch t {
	case pb.TimeInForce_IOC:
		return orderbook.IOC
	case pb.TimeInForce_FOK:
		return orderbook.FOK
	default:
		return orderbook.GTC
	}
}

func toControlKind(k pb.ControlKind) engine.ControlKind {
	switch k {
	case pb.ControlKind_RESUME:
		return engine.CtrlResume
	case pb.ControlKind_REWIND:
		return engine.CtrlRewind
	case pb.ControlKind_SHUTDOWN:
		return engine.CtrlShutdown
	default:
		return engine.CtrlSuspend
	}
}

func fromEventKind(k engine.EventKind) pb.EventKind {
	switch k {
	case engine.EvtOrderRejected:
		return pb.EventKind_ORDER_REJECTED
	case engine.EvtTrade:
		return pb.EventKind_TRADE
	case engine.EvtOrderCanceled:
		return pb.EventKind_ORDER_CANCELED
	case engine.EvtOrderAmended:
		return pb.EventKind_ORDER_AMENDED
	case engine.EvtPoisonDetected:
		return pb.EventKind_POISON_DETECTED
	case engine.EvtRewindComplete:
		return pb.EventKind_REWIND_COMPLETE
	case engine.EvtEngineStateChanged:
		return pb.EventKind_ENGINE_STATE_CHANGED
	default:
		return pb.EventKind_ORDER_ACCEPTED
	}
}

func toEventMessage(e engine.Event) *pb.EventMessage {
	orderId, makerId, takerId := e.OrderId, e.MakerId, e.TakerId
	return &pb.EventMessage{
		Kind:       fromEventKind(e.Kind),
		Seq:        e.Seq,
		Instrument: e.Instrument,

		OrderId:    orderId[:],
		Rested:     e.Rested,
		IndexSide:  fromSide(e.Index.Side),
		IndexPrice: e.Index.Price,
		IndexMemo:  e.Index.Memo,
		Reason:     uint32(e.Reason),

		MakerId:       makerId[:],
		TakerId:       takerId[:],
		TradePrice:    e.Price,
		TradeQuantity: e.Quantity,

		ToSeq: e.ToSeq,
		State: uint32(e.State),
	}
}
