package tools

import "fmt"

// Mock back-office inventory. IDs double as PNRs.

type passenger struct {
	FirstName string
	LastName  string
}

type segment struct {
	Origin    string
	Dest      string
	Airline   string
	Flight    string
	Departure string
	Arrival   string
	FareClass string
}

type booking struct {
	ID         string
	Type       string // flight or hotel
	Passengers []passenger
	Segments   []segment
	TotalCost  float64
	Currency   string
	Email      string
	AddOns     []string
}

var mockBookings = map[string]booking{
	"NF7J2K": {
		ID:   "NF7J2K",
		Type: "flight",
		Passengers: []passenger{
			{"Asha", "Verma"},
			{"Rohan", "Verma"},
		},
		Segments: []segment{
			{"DEL", "BOM", "IndiGo", "6E-2041", "2026-09-14T07:30:00+05:30", "2026-09-14T09:40:00+05:30", "Economy"},
			{"BOM", "DEL", "IndiGo", "6E-2188", "2026-09-18T20:05:00+05:30", "2026-09-18T22:15:00+05:30", "Economy"},
		},
		TotalCost: 18450,
		Currency:  "INR",
		Email:     "asha.verma@example.com",
		AddOns:    []string{"extra_baggage_10kg", "seat_12A"},
	},
	"NF9X4B": {
		ID:   "NF9X4B",
		Type: "flight",
		Passengers: []passenger{
			{"Daniel", "Okafor"},
		},
		Segments: []segment{
			{"BLR", "SIN", "Singapore Airlines", "SQ-509", "2026-10-02T23:55:00+05:30", "2026-10-03T06:50:00+08:00", "Premium Economy"},
		},
		TotalCost: 42300,
		Currency:  "INR",
		Email:     "d.okafor@example.com",
	},
	"HT5Q8M": {
		ID:   "HT5Q8M",
		Type: "hotel",
		Passengers: []passenger{
			{"Meera", "Iyer"},
		},
		TotalCost: 9200,
		Currency:  "INR",
		Email:     "meera.iyer@example.com",
	},
}

func lookupBooking(ref string) (booking, bool) {
	b, ok := mockBookings[ref]
	return b, ok
}

func bookingDetails(ref string) map[string]any {
	b, ok := lookupBooking(ref)
	if !ok {
		return map[string]any{
			"status":  "BOOKING_NOT_FOUND",
			"message": fmt.Sprintf("No booking found for %s. Please verify the booking ID or PNR.", ref),
		}
	}

	pax := make([]map[string]any, 0, len(b.Passengers))
	for _, p := range b.Passengers {
		pax = append(pax, map[string]any{"fn": p.FirstName, "ln": p.LastName})
	}
	segs := make([]map[string]any, 0, len(b.Segments))
	for _, s := range b.Segments {
		segs = append(segs, map[string]any{
			"origin":      s.Origin,
			"destination": s.Dest,
			"airline":     s.Airline,
			"flight":      s.Flight,
			"departure":   s.Departure,
			"arrival":     s.Arrival,
			"fare_class":  s.FareClass,
		})
	}
	return map[string]any{
		"status":     "SUCCESS",
		"booking_id": b.ID,
		"type":       b.Type,
		"passengers": pax,
		"segments":   segs,
		"total_cost": b.TotalCost,
		"currency":   b.Currency,
		"add_ons":    b.AddOns,
	}
}

func sendEticket(ref string) map[string]any {
	b, ok := lookupBooking(ref)
	if !ok {
		return map[string]any{
			"status":  "BOOKING_NOT_FOUND",
			"message": fmt.Sprintf("No booking found for %s. Please verify the booking ID or PNR.", ref),
		}
	}
	return map[string]any{
		"status":  "SUCCESS",
		"message": fmt.Sprintf("E-ticket for booking %s sent to %s and WhatsApp.", b.ID, b.Email),
		"email":   b.Email,
	}
}
