// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package bloodbank holds the registry of users, donors, receivers and
// blood banks, and the backend side of the nearby search.
package bloodbank

import (
	"errors"
	"strings"
	"time"

	"github.com/vitalflow/vitalflow/spatial"
)

var (
	// ErrMissingFields is returned when a required registration field is blank.
	ErrMissingFields = errors.New("name, blood type, and contact are required")
	// ErrInvalidBloodType is returned for blood types outside BloodTypes.
	ErrInvalidBloodType = errors.New("invalid blood type")
	// ErrUsernameTaken is returned when signing up with a known username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken is returned when signing up with a known email.
	ErrEmailTaken = errors.New("email already exists")
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmptyLocation is returned by nearby searches with a blank location.
	ErrEmptyLocation = errors.New("location is required")
)

// BloodType is one of the eight ABO/Rh groups.
type BloodType string

// BloodTypes lists the accepted blood types in display order.
var BloodTypes = []BloodType{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// Cities are the Tamil Nadu cities offered when registering a donor.
var Cities = []string{
	"Chennai", "Coimbatore", "Madurai", "Tiruchirappalli", "Salem", "Tirunelveli", "Vellore", "Erode",
	"Thoothukudi", "Dindigul", "Thanjavur", "Karur", "Nagercoil", "Kanyakumari", "Kanchipuram",
	"Namakkal", "Sivakasi", "Virudhunagar", "Cuddalore", "Tiruppur",
}

// ParseBloodType validates s against BloodTypes. Surrounding spaces and
// letter case are ignored.
func ParseBloodType(s string) (BloodType, error) {
	candidate := BloodType(strings.ToUpper(strings.TrimSpace(s)))
	for _, bt := range BloodTypes {
		if bt == candidate {
			return bt, nil
		}
	}

	return "", ErrInvalidBloodType
}

// Donor is a registered blood donor. Contact doubles as a geocodable address.
type Donor struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	BloodType    BloodType `json:"bloodType"`
	Contact      string    `json:"contact"`
	City         string    `json:"city,omitempty"`
	LastDonation string    `json:"lastDonation,omitempty"`
	Lat          *float64  `json:"lat,omitempty"`
	Lng          *float64  `json:"lng,omitempty"`
}

// Point returns the donor's stored coordinates, if any.
func (d *Donor) Point() (spatial.Point, bool) {
	if d.Lat == nil || d.Lng == nil {
		return spatial.Point{}, false
	}

	return spatial.Point{Lat: *d.Lat, Lng: *d.Lng}, true
}

// SetPoint stores p as the donor's coordinates.
func (d *Donor) SetPoint(p spatial.Point) {
	lat, lng := p.Lat, p.Lng
	d.Lat, d.Lng = &lat, &lng
}

// Validate normalizes the donor and checks the required fields.
func (d *Donor) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Contact = strings.TrimSpace(d.Contact)
	d.City = strings.TrimSpace(d.City)
	d.LastDonation = strings.TrimSpace(d.LastDonation)

	return validateRegistration(d.Name, &d.BloodType, d.Contact)
}

// Receiver is a registered blood receiver.
type Receiver struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	BloodType    BloodType `json:"bloodType"`
	Contact      string    `json:"contact"`
	LastReceived string    `json:"lastReceived,omitempty"`
}

// Validate normalizes the receiver and checks the required fields.
func (r *Receiver) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Contact = strings.TrimSpace(r.Contact)
	r.LastReceived = strings.TrimSpace(r.LastReceived)

	return validateRegistration(r.Name, &r.BloodType, r.Contact)
}

func validateRegistration(name string, bloodType *BloodType, contact string) error {
	if name == "" || strings.TrimSpace(string(*bloodType)) == "" || contact == "" {
		return ErrMissingFields
	}

	bt, err := ParseBloodType(string(*bloodType))
	if err != nil {
		return err
	}

	*bloodType = bt

	return nil
}

// BloodBank is a blood bank or hospital, geocoded when stored.
type BloodBank struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Point returns the bank's coordinates.
func (b *BloodBank) Point() spatial.Point {
	return spatial.Point{Lat: b.Lat, Lng: b.Lng}
}

// User is an account allowed into the gated pages.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
