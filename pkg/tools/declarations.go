package tools

// Parameter schemas for the travel-assistant suite. Plain JSON-schema
// maps: the same shape is sent to the model in the session setup and
// compiled locally to validate incoming arguments.

func nameCorrectionParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"correction_type": map[string]any{
				"type":        "string",
				"description": "Type of name correction required.",
				"enum": []any{
					"NAME_CORRECTION", "NAME_SWAP", "GENDER_SWAP",
					"MAIDEN_NAME_CHANGE", "REMOVE_TITLE",
				},
			},
			"fn": map[string]any{
				"type":        "string",
				"description": "First Name of the passenger.",
			},
			"ln": map[string]any{
				"type":        "string",
				"description": "Last Name of the passenger.",
			},
		},
		"required": []any{"correction_type", "fn", "ln"},
	}
}

func specialClaimParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"claim_type": map[string]any{
				"type":        "string",
				"description": "Type of special claim being filed by the user.",
				"enum": []any{
					"FLIGHT_NOT_OPERATIONAL", "MEDICAL_EMERGENCY",
					"TICKET_CANCELLED_WITH_AIRLINE",
				},
			},
		},
		"required": []any{"claim_type"},
	}
}

func enquiryParams() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func bookingRefParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"booking_id_or_pnr": map[string]any{
				"type":        "string",
				"description": "The booking ID or PNR of the user itinerary.",
			},
		},
		"required": []any{"booking_id_or_pnr"},
	}
}

func observabilityParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation_type": map[string]any{
				"type":        "string",
				"description": "Operation whose refund status should be tracked.",
				"enum":        []any{"CANCELLATION", "DATE_CHANGE"},
			},
		},
		"required": []any{"operation_type"},
	}
}

func dateChangeParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"description": "QUOTE fetches penalty and fare difference information, CONFIRM executes the date change.",
				"enum":        []any{"QUOTE", "CONFIRM"},
			},
			"sector_info": map[string]any{
				"type":        "array",
				"description": "Sectors to change with their new dates.",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"origin": map[string]any{
							"type":        "string",
							"description": "Airport code of the origin city (e.g. DEL).",
						},
						"destination": map[string]any{
							"type":        "string",
							"description": "Airport code of the destination city (e.g. BOM).",
						},
						"newDate": map[string]any{
							"type":        "string",
							"description": "New journey date in YYYY-MM-DD format.",
						},
					},
					"required": []any{"origin", "destination", "newDate"},
				},
			},
		},
		"required": []any{"action", "sector_info"},
	}
}

func connectToHumanParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reason_of_invoke": map[string]any{
				"type":        "string",
				"description": "Whether the user is frustrated or the assistant cannot help.",
				"enum":        []any{"FRUSTRATED", "UNABLE_TO_HELP"},
			},
			"frustration_score": map[string]any{
				"type":        "string",
				"description": "User frustration level on a scale of 1 to 10.",
			},
		},
		"required": []any{"reason_of_invoke"},
	}
}

func cancellationParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"booking_id_or_pnr": map[string]any{
				"type":        "string",
				"description": "The booking ID or PNR of the user itinerary.",
			},
			"action": map[string]any{
				"type":        "string",
				"description": "QUOTE fetches refund and penalty information, CONFIRM executes the cancellation.",
				"enum":        []any{"QUOTE", "CONFIRM"},
			},
			"cancel_scope": map[string]any{
				"type":        "string",
				"description": "FULL or PARTIAL. Only set when the user mentions it.",
				"enum":        []any{"NOT_MENTIONED", "FULL", "PARTIAL"},
			},
			"otp": map[string]any{
				"type":        "string",
				"description": "4-digit one time password for the confirmation step. Optional.",
			},
			"partial_info": map[string]any{
				"type":        "array",
				"description": "Journeys and passengers to cancel when cancel_scope is PARTIAL.",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"journey": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"from_city": map[string]any{"type": "string"},
								"to_city":   map[string]any{"type": "string"},
							},
						},
						"pax_to_cancel": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"fn": map[string]any{"type": "string"},
									"ln": map[string]any{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
		"required": []any{"booking_id_or_pnr", "action"},
	}
}

func webCheckinParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"booking_id_or_pnr": map[string]any{
				"type":        "string",
				"description": "The booking ID or PNR of the user itinerary.",
			},
			"journeys": map[string]any{
				"type":        "array",
				"description": "Journeys to check in. Each journey can cover different passengers.",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"origin": map[string]any{
							"type":        "string",
							"description": "Airport code of the origin city (e.g. DEL).",
						},
						"destination": map[string]any{
							"type":        "string",
							"description": "Airport code of the destination city (e.g. BOM).",
						},
						"isAllPax": map[string]any{
							"type":        "string",
							"description": "true to check in every passenger on the journey, false for specific passengers only.",
						},
						"pax_info": map[string]any{
							"type":        "array",
							"description": "Specific passengers, required only when isAllPax is false.",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"fn": map[string]any{"type": "string"},
									"ln": map[string]any{"type": "string"},
								},
								"required": []any{"fn", "ln"},
							},
						},
					},
					"required": []any{"origin", "destination", "isAllPax"},
				},
			},
		},
		"required": []any{"booking_id_or_pnr", "journeys"},
	}
}
