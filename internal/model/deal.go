package model

import (
	"strings"
	"time"
)

// DealProperties lists the HubSpot deal properties every search and
// batch read requests. Missing properties come back as empty strings.
var DealProperties = []string{
	"hs_object_id", "dealname", "pipeline", "dealstage",
	"full_name", "email", "mobile", "phone",
	"appointment_id",
	"td_booking_slot", "td_booking_slot_date", "td_booking_slot_time",
	"td_conducted_date",
	"vehicle_make", "vehicle_model", "vehicle_year", "vehicle_colour", "vehicle_url",
	"car_location_at_time_of_sale",
	"video_url__short_",
	"td_reminder_sms_sent",
}

// Deal is one raw CRM opportunity as returned by HubSpot. All fields
// are strings because HubSpot properties are untyped on the wire; the
// preparer derives typed values.
type Deal struct {
	ID            string
	Name          string
	Pipeline      string
	Stage         string
	FullName      string
	Email         string
	Mobile        string
	Phone         string
	AppointmentID string
	BookingSlot   string
	SlotDateProp  string
	SlotTimeProp  string
	ConductedAt   string
	VehicleMake   string
	VehicleModel  string
	VehicleYear   string
	VehicleColour string
	VehicleURL    string
	CarLocation   string
	VideoURL      string
	ReminderSent  string
}

// DealFromProperties builds a Deal from a HubSpot properties map.
func DealFromProperties(props map[string]string) Deal {
	get := func(k string) string { return strings.TrimSpace(props[k]) }
	return Deal{
		ID:            get("hs_object_id"),
		Name:          get("dealname"),
		Pipeline:      get("pipeline"),
		Stage:         get("dealstage"),
		FullName:      get("full_name"),
		Email:         get("email"),
		Mobile:        get("mobile"),
		Phone:         get("phone"),
		AppointmentID: get("appointment_id"),
		BookingSlot:   get("td_booking_slot"),
		SlotDateProp:  get("td_booking_slot_date"),
		SlotTimeProp:  get("td_booking_slot_time"),
		ConductedAt:   get("td_conducted_date"),
		VehicleMake:   get("vehicle_make"),
		VehicleModel:  get("vehicle_model"),
		VehicleYear:   get("vehicle_year"),
		VehicleColour: get("vehicle_colour"),
		VehicleURL:    get("vehicle_url"),
		CarLocation:   get("car_location_at_time_of_sale"),
		VideoURL:      get("video_url__short_"),
		ReminderSent:  get("td_reminder_sms_sent"),
	}
}

// PreparedDeal is a Deal enriched with derived, locally-typed fields.
// Preparation never removes rows: a deal with an unparseable timestamp
// simply carries a zero date and an empty time string.
type PreparedDeal struct {
	Deal

	// Booking slot, from the epoch/ISO td_booking_slot property.
	SlotDate time.Time
	SlotTime string

	// Booking slot from the dedicated date/time properties, preferred
	// over SlotDate/SlotTime when present.
	SlotDateLocal time.Time
	SlotTimeLocal string

	ConductedDate time.Time
	ConductedTime string

	// PhoneRaw prefers the mobile property, falling back to phone.
	PhoneRaw string
	// PhoneNorm is the normalized +61 form, or "" when no rule matched.
	PhoneNorm string
	// EmailNorm is the trimmed, lowercased email.
	EmailNorm string
}

// BestSlotDate returns the booking date, preferring the dedicated
// property over the combined slot timestamp.
func (d PreparedDeal) BestSlotDate() time.Time {
	if !d.SlotDateLocal.IsZero() {
		return d.SlotDateLocal
	}
	return d.SlotDate
}

// BestSlotTime returns the booking time-of-day with the same preference.
func (d PreparedDeal) BestSlotTime() string {
	if d.SlotTimeLocal != "" {
		return d.SlotTimeLocal
	}
	return d.SlotTime
}

// Removal is one audit row: a deal excluded by a filter stage, with a
// human-readable reason. Removed deals are never silently dropped.
type Removal struct {
	DealID        string `csv:"deal_id"`
	AppointmentID string `csv:"appointment_id"`
	CustomerName  string `csv:"customer_name"`
	Email         string `csv:"email"`
	Phone         string `csv:"phone"`
	VehicleMake   string `csv:"vehicle_make"`
	VehicleModel  string `csv:"vehicle_model"`
	Stage         string `csv:"stage"`
	Reason        string `csv:"reason"`
}

// RemovalOf builds the audit row for a prepared deal.
func RemovalOf(d PreparedDeal, reason string) Removal {
	return Removal{
		DealID:        d.ID,
		AppointmentID: d.AppointmentID,
		CustomerName:  d.FullName,
		Email:         d.EmailNorm,
		Phone:         d.PhoneNorm,
		VehicleMake:   d.VehicleMake,
		VehicleModel:  d.VehicleModel,
		Stage:         d.Stage,
		Reason:        reason,
	}
}
