// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package bloodbank

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vitalflow/vitalflow/spatial"
)

// Repository handles persistence of the registry.
type Repository interface {
	// CreateSchema creates the tables and sequences
	CreateSchema() error

	// AddUser stores a new user. The username and email must be unused.
	AddUser(username, email, passwordHash string) (*User, error)

	// FindUser returns the user with the given username or ErrNotFound
	FindUser(username string) (*User, error)

	// ListUsers returns all users ordered by id
	ListUsers() ([]*User, error)

	// AddDonor stores a donor and assigns its ID
	AddDonor(donor *Donor) error

	// ListDonors returns all donors ordered by id
	ListDonors() ([]*Donor, error)

	// DonorsWithoutLocation returns the donors lacking coordinates
	DonorsWithoutLocation() ([]*Donor, error)

	// SetDonorLocation stores the coordinates of a donor
	SetDonorLocation(id int64, point spatial.Point) error

	// DonorsInCells returns located donors whose search cell is in cells
	DonorsInCells(cells []int64) ([]*Donor, error)

	// AddReceiver stores a receiver and assigns its ID
	AddReceiver(receiver *Receiver) error

	// ListReceivers returns all receivers ordered by id
	ListReceivers() ([]*Receiver, error)

	// AddBloodBank stores a blood bank and assigns its ID
	AddBloodBank(bank *BloodBank) error

	// ListBloodBanks returns all blood banks ordered by id
	ListBloodBanks() ([]*BloodBank, error)

	// BloodBanksInCells returns blood banks whose search cell is in cells
	BloodBanksInCells(cells []int64) ([]*BloodBank, error)

	// Close releases the database
	Close() error
}

type sqlRepository struct {
	db *sql.DB
}

// NewRepository creates a repository on top of a DuckDB connection.
func NewRepository(db *sql.DB) Repository {
	return &sqlRepository{db: db}
}

func (r *sqlRepository) Close() error {
	return r.db.Close()
}

func (r *sqlRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS users_seq START 1;
		CREATE SEQUENCE IF NOT EXISTS donors_seq START 1;
		CREATE SEQUENCE IF NOT EXISTS receivers_seq START 1;
		CREATE SEQUENCE IF NOT EXISTS blood_banks_seq START 1;

		CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY DEFAULT nextval('users_seq'),
			username VARCHAR NOT NULL UNIQUE,
			email VARCHAR NOT NULL UNIQUE,
			password_hash VARCHAR NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS donors (
			id BIGINT PRIMARY KEY DEFAULT nextval('donors_seq'),
			name VARCHAR NOT NULL,
			blood_type VARCHAR NOT NULL,
			contact VARCHAR NOT NULL,
			city VARCHAR,
			last_donation VARCHAR,
			lat DOUBLE,
			lng DOUBLE,
			h3_res5 BIGINT
		);

		CREATE TABLE IF NOT EXISTS receivers (
			id BIGINT PRIMARY KEY DEFAULT nextval('receivers_seq'),
			name VARCHAR NOT NULL,
			blood_type VARCHAR NOT NULL,
			contact VARCHAR NOT NULL,
			last_received VARCHAR
		);

		CREATE TABLE IF NOT EXISTS blood_banks (
			id BIGINT PRIMARY KEY DEFAULT nextval('blood_banks_seq'),
			name VARCHAR NOT NULL,
			address VARCHAR NOT NULL,
			lat DOUBLE NOT NULL,
			lng DOUBLE NOT NULL,
			h3_res5 BIGINT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

////////////////////////////////////////////////////
// Users

func (r *sqlRepository) AddUser(username, email, passwordHash string) (*User, error) {
	var usernames, emails int

	err := r.db.QueryRow(`
		SELECT
			(SELECT count(*) FROM users WHERE username = ?),
			(SELECT count(*) FROM users WHERE email = ?)
	`, username, email).Scan(&usernames, &emails)
	if err != nil {
		return nil, fmt.Errorf("checking existing users: %w", err)
	}

	if usernames > 0 {
		return nil, ErrUsernameTaken
	}

	if emails > 0 {
		return nil, ErrEmailTaken
	}

	user := &User{Username: username, Email: email, PasswordHash: passwordHash}

	err = r.db.QueryRow(`
		INSERT INTO users (username, email, password_hash)
		VALUES (?, ?, ?)
		RETURNING id, created_at
	`, username, email, passwordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	return user, nil
}

func (r *sqlRepository) FindUser(username string) (*User, error) {
	var user User

	err := r.db.QueryRow(`
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE username = ?
	`, username).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}

	return &user, nil
}

func (r *sqlRepository) ListUsers() ([]*User, error) {
	rows, err := r.db.Query(`SELECT id, username, email, password_hash, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []*User{}

	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		users = append(users, &u)
	}

	return users, rows.Err()
}

////////////////////////////////////////////////////
// Donors

const donorColumns = `id, name, blood_type, contact, city, last_donation, lat, lng`

func scanDonors(rows *sql.Rows) ([]*Donor, error) {
	defer rows.Close()

	donors := []*Donor{}

	for rows.Next() {
		var (
			d            Donor
			city, last   sql.NullString
			lat, lng     sql.NullFloat64
			bloodTypeStr string
		)

		if err := rows.Scan(&d.ID, &d.Name, &bloodTypeStr, &d.Contact, &city, &last, &lat, &lng); err != nil {
			return nil, fmt.Errorf("scanning donor: %w", err)
		}

		d.BloodType = BloodType(bloodTypeStr)
		d.City = city.String
		d.LastDonation = last.String

		if lat.Valid && lng.Valid {
			d.SetPoint(spatial.Point{Lat: lat.Float64, Lng: lng.Float64})
		}

		donors = append(donors, &d)
	}

	return donors, rows.Err()
}

func (r *sqlRepository) AddDonor(donor *Donor) error {
	var (
		lat, lng sql.NullFloat64
		cell     sql.NullInt64
	)

	if p, ok := donor.Point(); ok {
		c, err := p.Cell(spatial.SearchResolution)
		if err != nil {
			return err
		}

		lat = sql.NullFloat64{Float64: p.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: p.Lng, Valid: true}
		cell = sql.NullInt64{Int64: c, Valid: true}
	}

	err := r.db.QueryRow(`
		INSERT INTO donors (name, blood_type, contact, city, last_donation, lat, lng, h3_res5)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		donor.Name,
		string(donor.BloodType),
		donor.Contact,
		nullString(donor.City),
		nullString(donor.LastDonation),
		lat, lng, cell,
	).Scan(&donor.ID)
	if err != nil {
		return fmt.Errorf("inserting donor: %w", err)
	}

	return nil
}

func (r *sqlRepository) ListDonors() ([]*Donor, error) {
	rows, err := r.db.Query(`SELECT ` + donorColumns + ` FROM donors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing donors: %w", err)
	}

	return scanDonors(rows)
}

func (r *sqlRepository) DonorsWithoutLocation() ([]*Donor, error) {
	rows, err := r.db.Query(`SELECT ` + donorColumns + ` FROM donors WHERE lat IS NULL OR lng IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing donors without location: %w", err)
	}

	return scanDonors(rows)
}

func (r *sqlRepository) SetDonorLocation(id int64, point spatial.Point) error {
	cell, err := point.Cell(spatial.SearchResolution)
	if err != nil {
		return err
	}

	res, err := r.db.Exec(`UPDATE donors SET lat = ?, lng = ?, h3_res5 = ? WHERE id = ?`,
		point.Lat, point.Lng, cell, id)
	if err != nil {
		return fmt.Errorf("updating donor location: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating donor location: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("donor %d: %w", id, ErrNotFound)
	}

	return nil
}

// cellFilter returns the "IN (?, ?, …)" clause and its arguments.
func cellFilter(cells []int64) (string, []any) {
	placeholders := make([]string, len(cells))
	args := make([]any, len(cells))

	for i, c := range cells {
		placeholders[i] = "?"
		args[i] = c
	}

	return "h3_res5 IN (" + strings.Join(placeholders, ", ") + ")", args
}

func (r *sqlRepository) DonorsInCells(cells []int64) ([]*Donor, error) {
	if len(cells) == 0 {
		return []*Donor{}, nil
	}

	where, args := cellFilter(cells)

	rows, err := r.db.Query(`SELECT `+donorColumns+` FROM donors WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing donors in cells: %w", err)
	}

	return scanDonors(rows)
}

////////////////////////////////////////////////////
// Receivers

func (r *sqlRepository) AddReceiver(receiver *Receiver) error {
	err := r.db.QueryRow(`
		INSERT INTO receivers (name, blood_type, contact, last_received)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`,
		receiver.Name,
		string(receiver.BloodType),
		receiver.Contact,
		nullString(receiver.LastReceived),
	).Scan(&receiver.ID)
	if err != nil {
		return fmt.Errorf("inserting receiver: %w", err)
	}

	return nil
}

func (r *sqlRepository) ListReceivers() ([]*Receiver, error) {
	rows, err := r.db.Query(`SELECT id, name, blood_type, contact, last_received FROM receivers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing receivers: %w", err)
	}
	defer rows.Close()

	receivers := []*Receiver{}

	for rows.Next() {
		var (
			rec          Receiver
			last         sql.NullString
			bloodTypeStr string
		)

		if err := rows.Scan(&rec.ID, &rec.Name, &bloodTypeStr, &rec.Contact, &last); err != nil {
			return nil, fmt.Errorf("scanning receiver: %w", err)
		}

		rec.BloodType = BloodType(bloodTypeStr)
		rec.LastReceived = last.String
		receivers = append(receivers, &rec)
	}

	return receivers, rows.Err()
}

////////////////////////////////////////////////////
// Blood banks

func (r *sqlRepository) AddBloodBank(bank *BloodBank) error {
	point := bank.Point()
	if !point.Valid() {
		return fmt.Errorf("blood bank %q: invalid coordinates %s", bank.Name, point)
	}

	cell, err := point.Cell(spatial.SearchResolution)
	if err != nil {
		return err
	}

	err = r.db.QueryRow(`
		INSERT INTO blood_banks (name, address, lat, lng, h3_res5)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, bank.Name, bank.Address, bank.Lat, bank.Lng, cell).Scan(&bank.ID)
	if err != nil {
		return fmt.Errorf("inserting blood bank: %w", err)
	}

	return nil
}

func scanBloodBanks(rows *sql.Rows) ([]*BloodBank, error) {
	defer rows.Close()

	banks := []*BloodBank{}

	for rows.Next() {
		var b BloodBank
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.Lat, &b.Lng); err != nil {
			return nil, fmt.Errorf("scanning blood bank: %w", err)
		}

		banks = append(banks, &b)
	}

	return banks, rows.Err()
}

func (r *sqlRepository) ListBloodBanks() ([]*BloodBank, error) {
	rows, err := r.db.Query(`SELECT id, name, address, lat, lng FROM blood_banks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing blood banks: %w", err)
	}

	return scanBloodBanks(rows)
}

func (r *sqlRepository) BloodBanksInCells(cells []int64) ([]*BloodBank, error) {
	if len(cells) == 0 {
		return []*BloodBank{}, nil
	}

	where, args := cellFilter(cells)

	rows, err := r.db.Query(`SELECT id, name, address, lat, lng FROM blood_banks WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing blood banks in cells: %w", err)
	}

	return scanBloodBanks(rows)
}
