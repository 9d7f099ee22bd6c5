package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mentorbook/internal/domain"
	"mentorbook/internal/service/booking"
)

type BookingServer struct {
	svc bookingService
	log *slog.Logger
}

type bookingService interface {
	Book(ctx context.Context, ownerID string, requested domain.TimeWindow) (domain.Reservation, error)
	RegisterRule(ctx context.Context, ownerID string, def domain.RuleDefinition) (domain.RecurrenceRule, error)
	ReplaceRule(ctx context.Context, ownerID string, def domain.RuleDefinition) (domain.RecurrenceRule, error)
	Rule(ctx context.Context, ownerID string) (domain.RecurrenceRule, error)
	CheckMoment(ctx context.Context, ownerID string, instant time.Time) (bool, error)
	Availability(ctx context.Context, ownerID string, from, to time.Time) ([]booking.Slot, error)
	Reservations(ctx context.Context, ownerID string, from, to time.Time) ([]domain.Reservation, error)
	ExportCalendar(ctx context.Context, ownerID string, from, to time.Time) ([]byte, error)
}

func NewBookingServer(svc bookingService, log *slog.Logger) *BookingServer {
	if log == nil {
		log = slog.Default()
	}
	return &BookingServer{
		svc: svc,
		log: log.With(slog.String("component", "grpc.booking")),
	}
}

func (s *BookingServer) RegisterRule(ctx context.Context, req *RegisterRuleRequest) (*RuleResponse, error) {
	log := s.log.With(slog.String("rpc", "RegisterRule"))
	if err := s.checkRequest(log, req); err != nil {
		return nil, err
	}

	rule, err := s.svc.RegisterRule(ctx, req.OwnerID, toDomainDefinition(req.Rule))
	if err != nil {
		return nil, s.statusError(log, err, slog.String("owner_id", req.OwnerID))
	}

	log.Info("rule registered",
		slog.String("owner_id", rule.OwnerID),
		slog.String("rule_id", rule.ID.String()),
		slog.String("kind", string(rule.Kind)),
	)
	return &RuleResponse{Rule: fromDomainRule(rule)}, nil
}

func (s *BookingServer) ReplaceRule(ctx context.Context, req *RegisterRuleRequest) (*RuleResponse, error) {
	log := s.log.With(slog.String("rpc", "ReplaceRule"))
	if err := s.checkRequest(log, req); err != nil {
		return nil, err
	}

	rule, err := s.svc.ReplaceRule(ctx, req.OwnerID, toDomainDefinition(req.Rule))
	if err != nil {
		return nil, s.statusError(log, err, slog.String("owner_id", req.OwnerID))
	}

	log.Info("rule replaced",
		slog.String("owner_id", rule.OwnerID),
		slog.String("rule_id", rule.ID.String()),
	)
	return &RuleResponse{Rule: fromDomainRule(rule)}, nil
}

func (s *BookingServer) GetRule(ctx context.Context, req *GetRuleRequest) (*RuleResponse, error) {
	log := s.log.With(slog.String("rpc", "GetRule"))
	if err := s.checkRequest(log, req); err != nil {
		return nil, err
	}

	rule, err := s.svc.Rule(ctx, req.OwnerID)
	if err != nil {
		return nil, s.statusError(log, err, slog.String("owner_id", req.OwnerID))
	}
	return &RuleResponse{Rule: fromDomainRule(rule)}, nil
}

func (s *BookingServer) Book(ctx context.Context, req *BookRequest) (*BookResponse, error) {
	log := s.log.With(slog.String("rpc", "Book"))
	if err := s.checkRequest(log, req); err != nil {
		return nil, err
	}

	requested, err := domain.NewTimeWindow(parseTime(req.StartTime), parseTime(req.EndTime))
	if err != nil {
		log.Warn("invalid request", slog.String("field", "end_time"), slog.Any("err", err))
		return nil, status.Error(codes.InvalidArgument, "end_time must be after start_time")
	}
	res, err := s.svc.Book(ctx, req.OwnerID, requested)
	if err != nil {
		return nil, s.statusError(log, err,
			slog.String("owner_id", req.OwnerID),
			slog.Time("start_time", requested.Start),
			slog.Time("end_time", requested.End),
		)
	}

	log.Info("reservation allocated",
		slog.String("reservation_id", res.ID.String()),
		slog.String("owner_id", res.OwnerID),
		slog.Time("start_time", res.Window.Start),
		slog.Time("end_time", res.Window.End),
	)
	return &BookResponse{Reservation: fromDomainReservation(res)}, nil
}

func (s *BookingServer) CheckMoment(ctx context.Context, req *CheckMomentRequest) (*CheckMomentResponse, error) {
	log := s.log.With(slog.String("rpc", "CheckMoment"))
	if err := s.checkRequest(log, req); err != nil {
		return nil, err
	}

	ok, err := s.svc.CheckMoment(ctx, req.OwnerID, parseTime(req.Instant))
	if err != nil {
		return nil, s.statusError(log, err, slog.String("owner_id", req.OwnerID))
	}
	return &CheckMomentResponse{Matches: ok}, nil
}

func (s *BookingServer) ListAvailability(ctx context.Context, req *RangeRequest) (*ListAvailabilityResponse, error) {
	log := s.log.With(slog.String("rpc", "ListAvailability"))
	if err := s.checkRequest(log, req); err != nil {
		return nil, err
	}

	slots, err := s.svc.Availability(ctx, req.OwnerID, parseTime(req.From), parseTime(req.To))
	if err != nil {
		return nil, s.statusError(log, err, slog.String("owner_id", req.OwnerID))
	}

	log.Debug("availability listed", slog.String("owner_id", req.OwnerID), slog.Int("count", len(slots)))
	return &ListAvailabilityResponse{Slots: fromSlots(slots)}, nil
}

func (s *BookingServer) ListReservations(ctx context.Context, req *RangeRequest) (*ListReservationsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListReservations"))
	if err := s.checkRequest(log, req); err != nil {
		return nil, err
	}

	list, err := s.svc.Reservations(ctx, req.OwnerID, parseTime(req.From), parseTime(req.To))
	if err != nil {
		return nil, s.statusError(log, err, slog.String("owner_id", req.OwnerID))
	}

	out := make([]Reservation, 0, len(list))
	for _, r := range list {
		out = append(out, fromDomainReservation(r))
	}
	log.Debug("reservations listed", slog.String("owner_id", req.OwnerID), slog.Int("count", len(out)))
	return &ListReservationsResponse{Reservations: out}, nil
}

func (s *BookingServer) ExportCalendar(ctx context.Context, req *RangeRequest) (*ExportCalendarResponse, error) {
	log := s.log.With(slog.String("rpc", "ExportCalendar"))
	if err := s.checkRequest(log, req); err != nil {
		return nil, err
	}

	body, err := s.svc.ExportCalendar(ctx, req.OwnerID, parseTime(req.From), parseTime(req.To))
	if err != nil {
		return nil, s.statusError(log, err, slog.String("owner_id", req.OwnerID))
	}
	return &ExportCalendarResponse{ContentType: "text/calendar", Calendar: string(body)}, nil
}

func (s *BookingServer) checkRequest(log *slog.Logger, req any) error {
	if err := validate.Struct(req); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			log.Warn("invalid request", slog.String("reason", "nil_request"))
			return status.Error(codes.InvalidArgument, "request is required")
		}
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			field := vErrs[0]
			log.Warn("invalid request", slog.String("field", field.Namespace()), slog.String("tag", field.Tag()))
			return status.Errorf(codes.InvalidArgument, "%s failed %s validation", field.Field(), field.Tag())
		}
		log.Warn("invalid request", slog.Any("err", err))
		return status.Error(codes.InvalidArgument, "invalid request")
	}
	return nil
}

// statusError maps coordinator outcomes to gRPC codes. Only unexpected
// failures are logged at error level.
func (s *BookingServer) statusError(log *slog.Logger, err error, attrs ...any) error {
	args := append([]any{slog.Any("err", err)}, attrs...)

	var defErr *booking.RuleDefinitionError
	var vErr *booking.ValidationError
	switch {
	case errors.As(err, &defErr):
		log.Warn("rule definition rejected", args...)
		return status.Error(codes.InvalidArgument, defErr.Error())
	case errors.As(err, &vErr):
		log.Warn("invalid request", args...)
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.Is(err, booking.ErrOwnerNotFound):
		log.Info("owner not found", args...)
		return status.Error(codes.NotFound, "owner has no recurrence rule")
	case errors.Is(err, booking.ErrInvalidTimeslot):
		log.Info("timeslot rejected", args...)
		return status.Error(codes.InvalidArgument, "requested time is not on an available occurrence")
	case errors.Is(err, booking.ErrTimeslotBooked):
		log.Info("timeslot already booked", args...)
		return status.Error(codes.FailedPrecondition, "That time is already booked. Pick a different slot.")
	case errors.Is(err, booking.ErrDuplicateRule):
		log.Info("duplicate rule", args...)
		return status.Error(codes.AlreadyExists, "owner already has a recurrence rule")
	case errors.Is(err, booking.ErrStoreUnavailable):
		log.Error("store unavailable", args...)
		return status.Error(codes.Unavailable, "temporarily unavailable, try again")
	default:
		log.Error("request failed", args...)
		return status.Error(codes.Internal, "internal error")
	}
}
