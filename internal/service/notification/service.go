package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brickmart/booking-api/internal/email"
	"github.com/brickmart/booking-api/internal/model"
	"github.com/brickmart/booking-api/pkg/logger"
)

// Service turns committed-booking events into customer notifications.
// It sits strictly downstream of the booking transaction: a delivery
// failure is logged and dropped, never propagated back to the commit.
type Service struct {
	emailSvc email.Service
	logger   *logger.Logger
}

func NewService(emailSvc email.Service, logger *logger.Logger) *Service {
	return &Service{
		emailSvc: emailSvc,
		logger:   logger,
	}
}

// HandleBookingCreated decodes the confirmation payload published by the
// outbox processor and sends the confirmation email, when the customer
// left one.
func (s *Service) HandleBookingCreated(ctx context.Context, payload []byte) error {
	var conf model.BookingConfirmation
	if err := json.Unmarshal(payload, &conf); err != nil {
		return fmt.Errorf("failed to decode booking confirmation: %w", err)
	}

	if conf.CustomerEmail == nil || *conf.CustomerEmail == "" {
		s.logger.Debug("booking has no customer email, skipping notification", "human_id", conf.HumanID)
		return nil
	}

	subject := fmt.Sprintf("Appointment confirmed: %s", conf.HumanID)
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Your appointment is booked for %s at %s.\n"+
			"Confirmation code: %s\n"+
			"Purpose: %s\n\n"+
			"Keep the confirmation code at hand when you visit.\n",
		conf.CustomerName, conf.Date, conf.Time, conf.HumanID, conf.Purpose,
	)

	if err := s.emailSvc.SendCustom(ctx, *conf.CustomerEmail, subject, body); err != nil {
		s.logger.Error(err, "failed to send confirmation email", "human_id", conf.HumanID)
		return err
	}

	s.logger.Info("confirmation email sent", "human_id", conf.HumanID)
	return nil
}
