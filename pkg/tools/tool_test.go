package tools

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tripvoice/go-tripvoice/pkg/logstore"
)

func testRegistry(t *testing.T, delay time.Duration) (*Registry, *logstore.Store) {
	t.Helper()
	store := logstore.New(100)
	r := NewRegistry()
	if err := NewSuite(store, delay).RegisterAll(r); err != nil {
		t.Fatal(err)
	}
	return r, store
}

func TestRegistryUnknownTool(t *testing.T) {
	r, _ := testRegistry(t, time.Millisecond)
	_, err := r.Invoke(context.Background(), "NoSuchTool", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "unknown tool") {
		t.Fatalf("err = %v", err)
	}
}

func TestRegistryDuplicateName(t *testing.T) {
	r := NewRegistry()
	tool := Tool{
		Name:    "dup",
		Handler: func(context.Context, Invocation) (map[string]any, error) { return nil, nil },
	}
	if err := r.Register(tool); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(tool); err == nil {
		t.Fatal("want error on duplicate registration")
	}
}

func TestRegistryValidatesArguments(t *testing.T) {
	r, _ := testRegistry(t, time.Millisecond)
	ctx := context.Background()

	cases := []struct {
		name    string
		tool    string
		args    map[string]any
		wantErr bool
	}{
		{
			"valid name correction",
			"NameCorrectionAgent",
			map[string]any{"correction_type": "NAME_SWAP", "fn": "Asha", "ln": "Verma"},
			false,
		},
		{
			"missing required field",
			"NameCorrectionAgent",
			map[string]any{"correction_type": "NAME_SWAP"},
			true,
		},
		{
			"enum violation",
			"SpecialClaimAgent",
			map[string]any{"claim_type": "NOT_A_CLAIM"},
			true,
		},
		{
			"wrong type",
			"Eticket_Sender_Agent",
			map[string]any{"booking_id_or_pnr": 42},
			true,
		},
		{
			"no-arg tool",
			"Enquiry_Tool",
			nil,
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Invoke(ctx, tc.tool, tc.args, func(string) {})
			if (err != nil) != tc.wantErr {
				t.Errorf("err = %v, wantErr = %v", err, tc.wantErr)
			}
		})
	}
}

func TestDeclarationsCoverSuite(t *testing.T) {
	r, _ := testRegistry(t, time.Millisecond)
	decls := r.Declarations()
	if len(decls) != 10 {
		t.Fatalf("want 10 declarations, got %d", len(decls))
	}
	for i := 1; i < len(decls); i++ {
		if decls[i-1].Name >= decls[i].Name {
			t.Fatalf("declarations not sorted: %s before %s", decls[i-1].Name, decls[i].Name)
		}
	}
	byName := map[string]bool{}
	for _, d := range decls {
		byName[d.Name] = true
	}
	for _, want := range []string{
		"NameCorrectionAgent", "SpecialClaimAgent", "Enquiry_Tool",
		"Eticket_Sender_Agent", "ObservabilityAgent", "DateChangeAgent",
		"Connect_To_Human_Tool", "Booking_Cancellation_Agent",
		"Flight_Booking_Details_Agent", "Webcheckin_And_Boarding_Pass_Agent",
	} {
		if !byName[want] {
			t.Errorf("missing declaration %s", want)
		}
	}
}

func TestPendingResponseCarriesUUID(t *testing.T) {
	r, _ := testRegistry(t, time.Hour) // follow-up never fires during the test
	resp, err := r.Invoke(context.Background(), "Enquiry_Tool", nil, func(string) {})
	if err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "PENDING" {
		t.Errorf("status = %v", resp["status"])
	}
	if id, _ := resp["uuid"].(string); id == "" {
		t.Error("pending response must carry a uuid")
	}

	resp2, _ := r.Invoke(context.Background(), "Enquiry_Tool", nil, func(string) {})
	if resp["uuid"] == resp2["uuid"] {
		t.Error("each invocation needs a distinct uuid")
	}
}

func TestBackgroundFollowUp(t *testing.T) {
	r, store := testRegistry(t, 10*time.Millisecond)

	var mu sync.Mutex
	var notes []string
	notify := func(text string) {
		mu.Lock()
		notes = append(notes, text)
		mu.Unlock()
	}

	args := map[string]any{"booking_id_or_pnr": "NF7J2K"}
	if _, err := r.Invoke(context.Background(), "Flight_Booking_Details_Agent", args, notify); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(notes)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("background follow-up never arrived")
		case <-time.After(5 * time.Millisecond):
		}
	}

	mu.Lock()
	note := notes[0]
	mu.Unlock()
	if !strings.HasPrefix(note, "[SYSTEM]:") {
		t.Errorf("follow-up not marked as system turn: %q", note)
	}
	if !strings.Contains(note, "NF7J2K") {
		t.Errorf("follow-up missing booking reference: %q", note)
	}

	var sawEnd bool
	for _, e := range store.Entries() {
		if e.LogType == "TOOL_EVENT" && strings.Contains(e.Message, "BACKGROUND_TASK_END") {
			sawEnd = true
		}
	}
	if !sawEnd {
		t.Error("background completion not recorded in the log store")
	}
}

func TestCancellationQuoteMath(t *testing.T) {
	r, _ := testRegistry(t, 5*time.Millisecond)

	var mu sync.Mutex
	var note string
	notify := func(text string) {
		mu.Lock()
		note = text
		mu.Unlock()
	}

	args := map[string]any{"booking_id_or_pnr": "NF7J2K", "action": "QUOTE"}
	if _, err := r.Invoke(context.Background(), "Booking_Cancellation_Agent", args, notify); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	got := note
	mu.Unlock()
	// 80% refund and 20% penalty of the 18450 INR booking.
	if !strings.Contains(got, "14760") || !strings.Contains(got, "3690") {
		t.Errorf("quote math wrong: %q", got)
	}
}

func TestWebCheckinRejectsHotelBooking(t *testing.T) {
	r, _ := testRegistry(t, 5*time.Millisecond)

	var mu sync.Mutex
	var note string
	notify := func(text string) {
		mu.Lock()
		note = text
		mu.Unlock()
	}

	args := map[string]any{
		"booking_id_or_pnr": "HT5Q8M",
		"journeys": []any{
			map[string]any{"origin": "DEL", "destination": "BOM", "isAllPax": "true"},
		},
	}
	if _, err := r.Invoke(context.Background(), "Webcheckin_And_Boarding_Pass_Agent", args, notify); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	got := note
	mu.Unlock()
	if !strings.Contains(got, "INVALID_BOOKING_TYPE") {
		t.Errorf("hotel booking should be rejected for check-in: %q", got)
	}
}

func TestBookingLookup(t *testing.T) {
	if _, ok := lookupBooking("NF7J2K"); !ok {
		t.Error("known booking missing")
	}
	if _, ok := lookupBooking("ZZZZZZ"); ok {
		t.Error("unknown booking should not resolve")
	}
	details := bookingDetails("ZZZZZZ")
	if details["status"] != "BOOKING_NOT_FOUND" {
		t.Errorf("status = %v", details["status"])
	}
}
