package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tripvoice/go-tripvoice/pkg/logstore"
)

// DefaultBackgroundDelay is how long the mock back-office takes to
// finish a request before the follow-up lands in the conversation.
const DefaultBackgroundDelay = 20 * time.Second

// Suite is the travel-assistant tool set backed by mock booking data.
// Every tool acknowledges immediately with a PENDING response and
// completes later through a background follow-up message.
type Suite struct {
	store *logstore.Store
	delay time.Duration
}

// NewSuite builds the suite. A zero delay falls back to the default;
// tests shorten it. The store receives a TOOL_EVENT entry for each
// invocation and background completion.
func NewSuite(store *logstore.Store, delay time.Duration) *Suite {
	if delay <= 0 {
		delay = DefaultBackgroundDelay
	}
	return &Suite{store: store, delay: delay}
}

// RegisterAll adds every travel tool to the registry.
func (s *Suite) RegisterAll(r *Registry) error {
	all := []Tool{
		{
			Name:        "NameCorrectionAgent",
			Description: "Handles name corrections and name changes for a given booking ID or PNR, including spelling corrections, name swaps, gender corrections, maiden name changes, and title removals.",
			Parameters:  nameCorrectionParams(),
			Handler:     s.nameCorrection,
		},
		{
			Name:        "SpecialClaimAgent",
			Description: "Files special claims for flight-related issues and disruptions.",
			Parameters:  specialClaimParams(),
			Handler:     s.specialClaim,
		},
		{
			Name:        "Enquiry_Tool",
			Description: "Retrieves relevant documentation for a user enquiry or support request.",
			Parameters:  enquiryParams(),
			Handler:     s.enquiry,
		},
		{
			Name:        "Eticket_Sender_Agent",
			Description: "Sends the e-ticket for the given PNR or booking ID via WhatsApp and email.",
			Parameters:  bookingRefParams(),
			Handler:     s.eticketSender,
		},
		{
			Name:        "ObservabilityAgent",
			Description: "Tracks the refund status for a booking after a cancellation or date change.",
			Parameters:  observabilityParams(),
			Handler:     s.observability,
		},
		{
			Name:        "DateChangeAgent",
			Description: "Quotes penalties or executes a date change for an existing itinerary.",
			Parameters:  dateChangeParams(),
			Handler:     s.dateChange,
		},
		{
			Name:        "Connect_To_Human_Tool",
			Description: "Connects the user to a human agent.",
			Parameters:  connectToHumanParams(),
			Handler:     s.connectToHuman,
		},
		{
			Name:        "Booking_Cancellation_Agent",
			Description: "Quotes penalties or executes cancellations for an existing itinerary.",
			Parameters:  cancellationParams(),
			Handler:     s.cancellation,
		},
		{
			Name:        "Flight_Booking_Details_Agent",
			Description: "Retrieves the full itinerary record for a given PNR or booking ID: passengers, flight segments, times, airlines, fare classes, and add-ons.",
			Parameters:  bookingRefParams(),
			Handler:     s.bookingDetails,
		},
		{
			Name:        "Webcheckin_And_Boarding_Pass_Agent",
			Description: "Performs web check-in and sends boarding passes for a given booking ID or PNR via WhatsApp, email, or SMS.",
			Parameters:  webCheckinParams(),
			Handler:     s.webCheckin,
		},
	}
	for _, t := range all {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// pending builds the immediate acknowledgement. Every response carries
// a fresh uuid so duplicate wire deliveries can be told apart from
// repeated calls.
func (s *Suite) pending(tool, message string, params map[string]any) map[string]any {
	resp := map[string]any{
		"status":  "PENDING",
		"message": message,
		"uuid":    uuid.NewString(),
	}
	s.logEvent("INVOCATION_PENDING", tool, params, resp)
	return resp
}

// later schedules the background completion: log the task, then push a
// system turn into the conversation so the model can relay the result.
func (s *Suite) later(tool string, params map[string]any, notify func(string), result func() (map[string]any, string)) {
	time.AfterFunc(s.delay, func() {
		s.logEvent("BACKGROUND_TASK_START", tool, params, nil)
		resp, summary := result()
		detail, _ := json.Marshal(resp)
		notify(fmt.Sprintf("[SYSTEM]: %s Details: %s. Please inform the user.", summary, detail))
		s.logEvent("BACKGROUND_TASK_END", tool, params, resp)
	})
}

func (s *Suite) logEvent(subtype, tool string, params, resp map[string]any) {
	if s.store == nil {
		return
	}
	fields := map[string]any{
		"event_subtype":      subtype,
		"tool_function_name": tool,
		"parameters_sent":    params,
	}
	if resp != nil {
		fields["response_received"] = resp
	}
	s.store.Event("TOOL_EVENT", subtype+" "+tool, fields)
}

func (s *Suite) nameCorrection(_ context.Context, inv Invocation) (map[string]any, error) {
	fn, ln := stringArg(inv.Args, "fn"), stringArg(inv.Args, "ln")
	correction := stringArg(inv.Args, "correction_type")
	s.later("NameCorrectionAgent", inv.Args, inv.Notify, func() (map[string]any, string) {
		resp := map[string]any{
			"status":  "SUCCESS",
			"message": fmt.Sprintf("Name correction of type %s for %s %s has been processed.", correction, fn, ln),
		}
		return resp, fmt.Sprintf("The name correction for %s %s is complete.", fn, ln)
	})
	return s.pending("NameCorrectionAgent", "Processing name correction...", inv.Args), nil
}

func (s *Suite) specialClaim(_ context.Context, inv Invocation) (map[string]any, error) {
	claim := stringArg(inv.Args, "claim_type")
	s.later("SpecialClaimAgent", inv.Args, inv.Notify, func() (map[string]any, string) {
		resp := map[string]any{
			"status":  "SUCCESS",
			"message": fmt.Sprintf("Special claim of type %s has been filed.", claim),
		}
		return resp, fmt.Sprintf("The special claim of type %s has been filed.", claim)
	})
	return s.pending("SpecialClaimAgent", "Filing special claim...", inv.Args), nil
}

func (s *Suite) enquiry(_ context.Context, inv Invocation) (map[string]any, error) {
	s.later("Enquiry_Tool", inv.Args, inv.Notify, func() (map[string]any, string) {
		resp := map[string]any{
			"status":  "SUCCESS",
			"message": "This is a mock response to your enquiry.",
		}
		return resp, "The enquiry has been resolved."
	})
	return s.pending("Enquiry_Tool", "Looking up information for your enquiry...", inv.Args), nil
}

func (s *Suite) eticketSender(_ context.Context, inv Invocation) (map[string]any, error) {
	ref := stringArg(inv.Args, "booking_id_or_pnr")
	s.later("Eticket_Sender_Agent", inv.Args, inv.Notify, func() (map[string]any, string) {
		resp := sendEticket(ref)
		return resp, fmt.Sprintf("The e-ticket for booking %s has been sent.", ref)
	})
	msg := fmt.Sprintf("Sending e-ticket for booking %s...", ref)
	return s.pending("Eticket_Sender_Agent", msg, inv.Args), nil
}

func (s *Suite) observability(_ context.Context, inv Invocation) (map[string]any, error) {
	op := stringArg(inv.Args, "operation_type")
	s.later("ObservabilityAgent", inv.Args, inv.Notify, func() (map[string]any, string) {
		resp := map[string]any{
			"status":  "SUCCESS",
			"message": fmt.Sprintf("Refund status for %s is being tracked.", op),
		}
		return resp, fmt.Sprintf("The refund status for %s is now available.", op)
	})
	msg := fmt.Sprintf("Tracking refund status for %s...", op)
	return s.pending("ObservabilityAgent", msg, inv.Args), nil
}

func (s *Suite) dateChange(_ context.Context, inv Invocation) (map[string]any, error) {
	action := stringArg(inv.Args, "action")
	s.later("DateChangeAgent", inv.Args, inv.Notify, func() (map[string]any, string) {
		resp := map[string]any{
			"status":  "SUCCESS",
			"message": fmt.Sprintf("Date change action '%s' has been processed for the provided sectors.", action),
		}
		return resp, fmt.Sprintf("The date change action '%s' has been processed.", action)
	})
	msg := fmt.Sprintf("Processing date change action '%s'...", action)
	return s.pending("DateChangeAgent", msg, inv.Args), nil
}

func (s *Suite) connectToHuman(_ context.Context, inv Invocation) (map[string]any, error) {
	s.later("Connect_To_Human_Tool", inv.Args, inv.Notify, func() (map[string]any, string) {
		resp := map[string]any{
			"status":  "SUCCESS",
			"message": "Connecting you to a human agent...",
		}
		return resp, "The connection to a human agent has been initiated."
	})
	return s.pending("Connect_To_Human_Tool", "Connecting you to a human agent...", inv.Args), nil
}

func (s *Suite) cancellation(_ context.Context, inv Invocation) (map[string]any, error) {
	ref := stringArg(inv.Args, "booking_id_or_pnr")
	action := stringArg(inv.Args, "action")
	s.later("Booking_Cancellation_Agent", inv.Args, inv.Notify, func() (map[string]any, string) {
		booking, ok := lookupBooking(ref)
		var resp map[string]any
		switch {
		case !ok:
			resp = map[string]any{
				"status":  "BOOKING_NOT_FOUND",
				"message": fmt.Sprintf("No booking found for %s. Please verify the booking ID or PNR.", ref),
			}
		case action == "QUOTE":
			refund := booking.TotalCost * 0.8
			penalty := booking.TotalCost * 0.2
			resp = map[string]any{
				"status": "SUCCESS",
				"message": fmt.Sprintf("Cancellation quote for booking %s: Refund amount %.0f, Penalty %.0f",
					ref, refund, penalty),
				"refund_amount": refund,
				"penalty":       penalty,
				"currency":      booking.Currency,
			}
		default:
			resp = map[string]any{
				"status":            "SUCCESS",
				"message":           fmt.Sprintf("Booking %s has been successfully cancelled. Refund will be processed in 5-7 business days.", ref),
				"booking_cancelled": true,
			}
		}
		return resp, fmt.Sprintf("The booking cancellation action '%s' has been processed.", action)
	})
	msg := fmt.Sprintf("Processing cancellation action '%s' for booking %s...", action, ref)
	return s.pending("Booking_Cancellation_Agent", msg, inv.Args), nil
}

func (s *Suite) bookingDetails(_ context.Context, inv Invocation) (map[string]any, error) {
	ref := stringArg(inv.Args, "booking_id_or_pnr")
	s.logEvent("INVOCATION_START", "Flight_Booking_Details_Agent", inv.Args, nil)
	s.later("Flight_Booking_Details_Agent", inv.Args, inv.Notify, func() (map[string]any, string) {
		resp := bookingDetails(ref)
		return resp, fmt.Sprintf("The booking details for %s are now available.", ref)
	})
	msg := fmt.Sprintf("I'm fetching the details for booking %s. It might take a moment. You can continue our conversation in the meantime.", ref)
	return s.pending("Flight_Booking_Details_Agent", msg, inv.Args), nil
}

func (s *Suite) webCheckin(_ context.Context, inv Invocation) (map[string]any, error) {
	ref := stringArg(inv.Args, "booking_id_or_pnr")
	journeys, _ := inv.Args["journeys"].([]any)
	s.later("Webcheckin_And_Boarding_Pass_Agent", inv.Args, inv.Notify, func() (map[string]any, string) {
		booking, ok := lookupBooking(ref)
		var resp map[string]any
		switch {
		case !ok:
			resp = map[string]any{
				"status":  "BOOKING_NOT_FOUND",
				"message": fmt.Sprintf("No booking found for %s. Please verify the booking ID or PNR.", ref),
			}
		case booking.Type != "flight":
			resp = map[string]any{
				"status":  "INVALID_BOOKING_TYPE",
				"message": fmt.Sprintf("Web check-in is only available for flight bookings. Booking %s is a %s booking.", ref, booking.Type),
			}
		default:
			resp = map[string]any{
				"status":             "SUCCESS",
				"message":            fmt.Sprintf("Web check-in completed for booking %s. Boarding passes have been sent to your registered email and mobile number.", ref),
				"booking_type":       booking.Type,
				"journeys_processed": len(journeys),
			}
		}
		return resp, "The web check-in and boarding pass request has been processed."
	})
	msg := fmt.Sprintf("Processing web check-in for booking %s...", ref)
	return s.pending("Webcheckin_And_Boarding_Pass_Agent", msg, inv.Args), nil
}
