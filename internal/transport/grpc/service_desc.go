package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const bookingServiceName = "mentorbook.v1.BookingService"

type BookingServiceServer interface {
	RegisterRule(ctx context.Context, req *RegisterRuleRequest) (*RuleResponse, error)
	ReplaceRule(ctx context.Context, req *RegisterRuleRequest) (*RuleResponse, error)
	GetRule(ctx context.Context, req *GetRuleRequest) (*RuleResponse, error)
	Book(ctx context.Context, req *BookRequest) (*BookResponse, error)
	CheckMoment(ctx context.Context, req *CheckMomentRequest) (*CheckMomentResponse, error)
	ListAvailability(ctx context.Context, req *RangeRequest) (*ListAvailabilityResponse, error)
	ListReservations(ctx context.Context, req *RangeRequest) (*ListReservationsResponse, error)
	ExportCalendar(ctx context.Context, req *RangeRequest) (*ExportCalendarResponse, error)
}

var BookingServiceDesc = grpc.ServiceDesc{
	ServiceName: bookingServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterRule", Handler: unaryHandler("RegisterRule", BookingServiceServer.RegisterRule)},
		{MethodName: "ReplaceRule", Handler: unaryHandler("ReplaceRule", BookingServiceServer.ReplaceRule)},
		{MethodName: "GetRule", Handler: unaryHandler("GetRule", BookingServiceServer.GetRule)},
		{MethodName: "Book", Handler: unaryHandler("Book", BookingServiceServer.Book)},
		{MethodName: "CheckMoment", Handler: unaryHandler("CheckMoment", BookingServiceServer.CheckMoment)},
		{MethodName: "ListAvailability", Handler: unaryHandler("ListAvailability", BookingServiceServer.ListAvailability)},
		{MethodName: "ListReservations", Handler: unaryHandler("ListReservations", BookingServiceServer.ListReservations)},
		{MethodName: "ExportCalendar", Handler: unaryHandler("ExportCalendar", BookingServiceServer.ExportCalendar)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mentorbook/v1/booking.proto",
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingServiceDesc, srv)
}

func unaryHandler[Req, Resp any](method string, call func(BookingServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + bookingServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BookingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// BookingServiceClient calls BookingService with the JSON codec.
type BookingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingServiceClient(cc grpc.ClientConnInterface) *BookingServiceClient {
	return &BookingServiceClient{cc: cc}
}

func (c *BookingServiceClient) RegisterRule(ctx context.Context, req *RegisterRuleRequest, opts ...grpc.CallOption) (*RuleResponse, error) {
	return invoke[RuleResponse](ctx, c.cc, "RegisterRule", req, opts)
}

func (c *BookingServiceClient) ReplaceRule(ctx context.Context, req *RegisterRuleRequest, opts ...grpc.CallOption) (*RuleResponse, error) {
	return invoke[RuleResponse](ctx, c.cc, "ReplaceRule", req, opts)
}

func (c *BookingServiceClient) GetRule(ctx context.Context, req *GetRuleRequest, opts ...grpc.CallOption) (*RuleResponse, error) {
	return invoke[RuleResponse](ctx, c.cc, "GetRule", req, opts)
}

func (c *BookingServiceClient) Book(ctx context.Context, req *BookRequest, opts ...grpc.CallOption) (*BookResponse, error) {
	return invoke[BookResponse](ctx, c.cc, "Book", req, opts)
}

func (c *BookingServiceClient) CheckMoment(ctx context.Context, req *CheckMomentRequest, opts ...grpc.CallOption) (*CheckMomentResponse, error) {
	return invoke[CheckMomentResponse](ctx, c.cc, "CheckMoment", req, opts)
}

func (c *BookingServiceClient) ListAvailability(ctx context.Context, req *RangeRequest, opts ...grpc.CallOption) (*ListAvailabilityResponse, error) {
	return invoke[ListAvailabilityResponse](ctx, c.cc, "ListAvailability", req, opts)
}

func (c *BookingServiceClient) ListReservations(ctx context.Context, req *RangeRequest, opts ...grpc.CallOption) (*ListReservationsResponse, error) {
	return invoke[ListReservationsResponse](ctx, c.cc, "ListReservations", req, opts)
}

func (c *BookingServiceClient) ExportCalendar(ctx context.Context, req *RangeRequest, opts ...grpc.CallOption) (*ExportCalendarResponse, error) {
	return invoke[ExportCalendarResponse](ctx, c.cc, "ExportCalendar", req, opts)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, req any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+bookingServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
