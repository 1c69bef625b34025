package model

import "time"

// Schedule represents a single bus departure as stored in the
// `schedules` table.  A schedule is owned by a provider (internal or an
// external partner) and carries a live available-seat counter that is
// decremented inside the booking confirmation transaction.
//
// Fields:
//  ID                – primary key identifier.
//  ProviderID        – provider that sourced this schedule ("internal" or a partner id).
//  ProviderRef       – provider-side reference for this schedule.
//  OperatorName      – bus operator display name.
//  BusTypeID         – bus type catalog id.
//  OriginCityID      – origin city catalog id.
//  DestinationCityID – destination city catalog id.
//  DepartureAt       – departure timestamp.
//  ArrivalAt         – arrival timestamp.
//  DurationMinutes   – trip duration in minutes.
//  AmenityIDs        – amenity catalog ids (JSON column).
//  BasePricePaise    – lowest seat price in paise.
//  TotalSeats        – seat count on the bus.
//  AvailableSeats    – seats not yet booked.
//  IsActive          – whether the schedule is bookable.
//  BoardingPoints    – boarding point names (JSON column).
//  DroppingPoints    – dropping point names (JSON column).
type Schedule struct {
    ID                string    `json:"id"`
    ProviderID        string    `json:"provider_id"`
    ProviderRef       string    `json:"provider_ref"`
    OperatorName      string    `json:"operator_name"`
    BusTypeID         string    `json:"bus_type_id"`
    OriginCityID      string    `json:"origin_city_id"`
    DestinationCityID string    `json:"destination_city_id"`
    DepartureAt       time.Time `json:"departure_at"`
    ArrivalAt         time.Time `json:"arrival_at"`
    DurationMinutes   int       `json:"duration_minutes"`
    AmenityIDs        []string  `json:"amenity_ids"`
    BasePricePaise    int64     `json:"base_price_paise"`
    TotalSeats        int       `json:"total_seats"`
    AvailableSeats    int       `json:"available_seats"`
    IsActive          bool      `json:"is_active"`
    BoardingPoints    []string  `json:"boarding_points"`
    DroppingPoints    []string  `json:"dropping_points"`
}
