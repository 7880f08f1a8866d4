package enginepb

// Hand-written against the legacy proto.Message interface
// (Reset/String/ProtoMessage), the same approach journalpb.Frame
// uses, so google.golang.org/protobuf/proto can marshal these
// without a generated descriptor. See engine.proto for the schema.

type Side int32

const (
	Side_BID Side = 0
	Side_ASK Side = 1
)

type OrderType int32

const (
	OrderType_LIMIT  OrderType = 0
	OrderType_MARKET OrderType = 1
)

type TimeInForce int32

const (
	TimeInForce_GTC TimeInForce = 0
	TimeInForce_IOC TimeInForce = 1
	TimeInForce_FOK TimeInForce = 2
)

type ControlKind int32

const (
	ControlKind_SUSPEND  ControlKind = 0
	ControlKind_RESUME   ControlKind = 1
	ControlKind_REWIND   ControlKind = 2
	ControlKind_SHUTDOWN ControlKind = 3
)

type EventKind int32

const (
	EventKind_ORDER_ACCEPTED       EventKind = 0
	EventKind_ORDER_REJECTED       EventKind = 1
	EventKind_TRADE                EventKind = 2
	EventKind_ORDER_CANCELED       EventKind = 3
	EventKind_ORDER_AMENDED        EventKind = 4
	EventKind_POISON_DETECTED      EventKind = 5
	EventKind_REWIND_COMPLETE      EventKind = 6
	EventKind_ENGINE_STATE_CHANGED EventKind = 7
)

type PlaceOrderRequest struct {
	Instrument string      `protobuf:"bytes,1,opt,name=instrument,proto3" json:"instrument,omitempty"`
	OrderId    []byte      `protobuf:"bytes,2,opt,name=order_id,json=orderId,proto3" json:"order_id,omitempty"`
	Side       Side        `protobuf:"varint,3,opt,name=side,proto3,enum=enginepb.Side" json:"side,omitempty"`
	Type       OrderType   `protobuf:"varint,4,opt,name=type,proto3,enum=enginepb.OrderType" json:"type,omitempty"`
	Price      int64       `protobuf:"varint,5,opt,name=price,proto3" json:"price,omitempty"`
	Quantity   int64       `protobuf:"varint,6,opt,name=quantity,proto3" json:"quantity,omitempty"`
	Tif        TimeInForce `protobuf:"varint,7,opt,name=tif,proto3,enum=enginepb.TimeInForce" json:"tif,omitempty"`
	AccountRef uint64      `protobuf:"varint,8,opt,name=account_ref,json=accountRef,proto3" json:"account_ref,omitempty"`
	TsIngress  uint64      `protobuf:"varint,9,opt,name=ts_ingress,json=tsIngress,proto3" json:"ts_ingress,omitempty"`
}

func (m *PlaceOrderRequest) Reset()         { *m = PlaceOrderRequest{} }
func (m *PlaceOrderRequest) String() string { return "" }
func (m *PlaceOrderRequest) ProtoMessage()  {}

type CancelOrderRequest struct {
	Instrument string `protobuf:"bytes,1,opt,name=instrument,proto3" json:"instrument,omitempty"`
	OrderId    []byte `protobuf:"bytes,2,opt,name=order_id,json=orderId,proto3" json:"order_id,omitempty"`
	TsIngress  uint64 `protobuf:"varint,3,opt,name=ts_ingress,json=tsIngress,proto3" json:"ts_ingress,omitempty"`
}

func (m *CancelOrderRequest) Reset()         { *m = CancelOrderRequest{} }
func (m *CancelOrderRequest) String() string { return "" }
func (m *CancelOrderRequest) ProtoMessage()  {}

type AmendOrderRequest struct {
	Instrument      string `protobuf:"bytes,1,opt,name=instrument,proto3" json:"instrument,omitempty"`
	OrderId         []byte `protobuf:"bytes,2,opt,name=order_id,json=orderId,proto3" json:"order_id,omitempty"`
	HasNewPrice     bool   `protobuf:"varint,3,opt,name=has_new_price,json=hasNewPrice,proto3" json:"has_new_price,omitempty"`
	NewPrice        int64  `protobuf:"varint,4,opt,name=new_price,json=newPrice,proto3" json:"new_price,omitempty"`
	HasNewQuantity  bool   `protobuf:"varint,5,opt,name=has_new_quantity,json=hasNewQuantity,proto3" json:"has_new_quantity,omitempty"`
	NewQuantity     int64  `protobuf:"varint,6,opt,name=new_quantity,json=newQuantity,proto3" json:"new_quantity,omitempty"`
	TsIngress       uint64 `protobuf:"varint,7,opt,name=ts_ingress,json=tsIngress,proto3" json:"ts_ingress,omitempty"`
}

func (m *AmendOrderRequest) Reset()         { *m = AmendOrderRequest{} }
func (m *AmendOrderRequest) String() string { return "" }
func (m *AmendOrderRequest) ProtoMessage()  {}

type ControlRequest struct {
	Instrument string      `protobuf:"bytes,1,opt,name=instrument,proto3" json:"instrument,omitempty"`
	Kind       ControlKind `protobuf:"varint,2,opt,name=kind,proto3,enum=enginepb.ControlKind" json:"kind,omitempty"`
	ToSeq      uint64      `protobuf:"varint,3,opt,name=to_seq,json=toSeq,proto3" json:"to_seq,omitempty"`
	TsIngress  uint64      `protobuf:"varint,4,opt,name=ts_ingress,json=tsIngress,proto3" json:"ts_ingress,omitempty"`
}

func (m *ControlRequest) Reset()         { *m = ControlRequest{} }
func (m *ControlRequest) String() string { return "" }
func (m *ControlRequest) ProtoMessage()  {}

type CommandAck struct {
	Seq uint64 `protobuf:"varint,1,opt,name=seq,proto3" json:"seq,omitempty"`
}

func (m *CommandAck) Reset()         { *m = CommandAck{} }
func (m *CommandAck) String() string { return "" }
func (m *CommandAck) ProtoMessage()  {}

type StreamEventsRequest struct {
	Instrument string `protobuf:"bytes,1,opt,name=instrument,proto3" json:"instrument,omitempty"`
}

func (m *StreamEventsRequest) Reset()         { *m = StreamEventsRequest{} }
func (m *StreamEventsRequest) String() string { return "" }
func (m *StreamEventsRequest) ProtoMessage()  {}

type EventMessage struct {
	Kind       EventKind `protobuf:"varint,1,opt,name=kind,proto3,enum=enginepb.EventKind" json:"kind,omitempty"`
	Seq        uint64    `protobuf:"varint,2,opt,name=seq,proto3" json:"seq,omitempty"`
	Instrument string    `protobuf:"bytes,3,opt,name=instrument,proto3" json:"instrument,omitempty"`

	OrderId    []byte `protobuf:"bytes,4,opt,name=order_id,json=orderId,proto3" json:"order_id,omitempty"`
	Rested     bool   `protobuf:"varint,5,opt,name=rested,proto3" json:"rested,omitempty"`
	IndexSide  Side   `protobuf:"varint,6,opt,name=index_side,json=indexSide,proto3,enum=enginepb.Side" json:"index_side,omitempty"`
	IndexPrice int64  `protobuf:"varint,7,opt,name=index_price,json=indexPrice,proto3" json:"index_price,omitempty"`
	IndexMemo  uint64 `protobuf:"varint,8,opt,name=index_memo,json=indexMemo,proto3" json:"index_memo,omitempty"`
	Reason     uint32 `protobuf:"varint,9,opt,name=reason,proto3" json:"reason,omitempty"`

	MakerId       []byte `protobuf:"bytes,10,opt,name=maker_id,json=makerId,proto3" json:"maker_id,omitempty"`
	TakerId       []byte `protobuf:"bytes,11,opt,name=taker_id,json=takerId,proto3" json:"taker_id,omitempty"`
	TradePrice    int64  `protobuf:"varint,12,opt,name=trade_price,json=tradePrice,proto3" json:"trade_price,omitempty"`
	TradeQuantity int64  `protobuf:"varint,13,opt,name=trade_quantity,json=tradeQuantity,proto3" json:"trade_quantity,omitempty"`

	ToSeq uint64 `protobuf:"varint,14,opt,name=to_seq,json=toSeq,proto3" json:"to_seq,omitempty"`
	State uint32 `protobuf:"varint,15,opt,name=state,proto3" json:"state,omitempty"`
}

func (m *EventMessage) Reset()         { *m = EventMessage{} }
func (m *EventMessage) String() string { return "" }
func (m *EventMessage) ProtoMessage()  {}
