package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fleetops/fleet-ledger/internal/logging"
	"fleetops/fleet-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// ImportEntities upserts every entity in set by id, in one transaction.
func (s *SQLiteStorage) ImportEntities(ctx context.Context, set models.EntitySet) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, v := range set.Vehicles {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO vehicles (id, plate_number, model) VALUES (?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET plate_number = excluded.plate_number, model = excluded.model
			`, v.ID, v.PlateNumber, v.Model)
			if err != nil {
				if isConstraintViolation(err) {
					return fmt.Errorf("vehicle %s: plate number %q already registered: %w", v.ID, v.PlateNumber, err)
				}
				return fmt.Errorf("failed to save vehicle %s: %w", v.ID, err)
			}
		}

		for _, inv := range set.Investors {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO investors (id, name, invest_amount, interest_rate, payment_day, active)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					name = excluded.name,
					invest_amount = excluded.invest_amount,
					interest_rate = excluded.interest_rate,
					payment_day = excluded.payment_day,
					active = excluded.active
			`, inv.ID, inv.Name, inv.InvestAmount, inv.InterestRate.String(), inv.PaymentDay, inv.Active)
			if err != nil {
				return fmt.Errorf("failed to save investor %s: %w", inv.ID, err)
			}
		}

		for _, c := range set.Consignments {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO consignment_contracts (id, party_name, vehicle_id, payout_day, active)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					party_name = excluded.party_name,
					vehicle_id = excluded.vehicle_id,
					payout_day = excluded.payout_day,
					active = excluded.active
			`, c.ID, c.PartyName, c.VehicleID, c.PayoutDay, c.Active)
			if err != nil {
				return fmt.Errorf("failed to save consignment contract %s: %w", c.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Imported entities", logging.Field{Key: logging.FieldCount, Value: set.Size()})
	return nil
}

// LoadEntitySet reads every vehicle, investor and consignment contract.
func (s *SQLiteStorage) LoadEntitySet(ctx context.Context) (models.EntitySet, error) {
	var set models.EntitySet
	var err error

	if set.Vehicles, err = s.listVehicles(ctx, s.db); err != nil {
		return models.EntitySet{}, err
	}
	if set.Investors, err = s.listInvestors(ctx, s.db); err != nil {
		return models.EntitySet{}, err
	}
	if set.Consignments, err = s.listConsignments(ctx, s.db); err != nil {
		return models.EntitySet{}, err
	}
	return set, nil
}

func (s *SQLiteStorage) listVehicles(ctx context.Context, q queryable) ([]models.Vehicle, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, plate_number, model FROM vehicles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var vehicles []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.PlateNumber, &v.Model); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (s *SQLiteStorage) listInvestors(ctx context.Context, q queryable) ([]models.Investor, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, invest_amount, interest_rate, payment_day, active
		FROM investors ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query investors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var investors []models.Investor
	for rows.Next() {
		var inv models.Investor
		var rate string
		if err := rows.Scan(&inv.ID, &inv.Name, &inv.InvestAmount, &rate, &inv.PaymentDay, &inv.Active); err != nil {
			return nil, fmt.Errorf("failed to scan investor: %w", err)
		}
		if inv.InterestRate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("investor %s has invalid interest rate %q: %w", inv.ID, rate, err)
		}
		investors = append(investors, inv)
	}
	return investors, rows.Err()
}

func (s *SQLiteStorage) listConsignments(ctx context.Context, q queryable) ([]models.ConsignmentContract, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, party_name, vehicle_id, payout_day, active
		FROM consignment_contracts ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query consignment contracts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var contracts []models.ConsignmentContract
	for rows.Next() {
		var c models.ConsignmentContract
		if err := rows.Scan(&c.ID, &c.PartyName, &c.VehicleID, &c.PayoutDay, &c.Active); err != nil {
			return nil, fmt.Errorf("failed to scan consignment contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}
