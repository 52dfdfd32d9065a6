package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	meterdomain "github.com/aquabill/aquabill/internal/meter/domain"
)

const meterColumns = `id, company_id, client_id, serial_number, location, status,
	 is_current_meter, last_reading, last_reading_date, created_at, updated_at`

type repo struct{}

func Provide() meterdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, m *meterdomain.Meter) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO meters (id, company_id, client_id, serial_number, location, status,
		 is_current_meter, last_reading, last_reading_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID,
		m.CompanyID,
		m.ClientID,
		m.SerialNumber,
		m.Location,
		m.Status,
		m.IsCurrentMeter,
		m.LastReading,
		m.LastReadingDate,
		m.CreatedAt,
		m.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, m *meterdomain.Meter) error {
	return db.WithContext(ctx).Exec(
		`UPDATE meters
		 SET location = ?, status = ?, is_current_meter = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		m.Location,
		m.Status,
		m.IsCurrentMeter,
		m.UpdatedAt,
		m.CompanyID,
		m.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*meterdomain.Meter, error) {
	var meter meterdomain.Meter
	err := db.WithContext(ctx).Raw(
		`SELECT `+meterColumns+` FROM meters WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Scan(&meter).Error
	if err != nil {
		return nil, err
	}
	if meter.ID == 0 {
		return nil, nil
	}
	return &meter, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*meterdomain.Meter, error) {
	var meter meterdomain.Meter
	err := db.WithContext(ctx).Raw(
		`SELECT `+meterColumns+` FROM meters WHERE company_id = ? AND id = ? FOR UPDATE`,
		companyID,
		id,
	).Scan(&meter).Error
	if err != nil {
		return nil, err
	}
	if meter.ID == 0 {
		return nil, nil
	}
	return &meter, nil
}

func (r *repo) FindBySerial(ctx context.Context, db *gorm.DB, companyID snowflake.ID, serial string) (*meterdomain.Meter, error) {
	var meter meterdomain.Meter
	err := db.WithContext(ctx).Raw(
		`SELECT `+meterColumns+` FROM meters WHERE company_id = ? AND serial_number = ?`,
		companyID,
		serial,
	).Scan(&meter).Error
	if err != nil {
		return nil, err
	}
	if meter.ID == 0 {
		return nil, nil
	}
	return &meter, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]meterdomain.Meter, error) {
	var meters []meterdomain.Meter
	err := db.WithContext(ctx).Raw(
		`SELECT `+meterColumns+` FROM meters WHERE company_id = ? ORDER BY created_at ASC`,
		companyID,
	).Scan(&meters).Error
	if err != nil {
		return nil, err
	}
	return meters, nil
}

func (r *repo) ListByClient(ctx context.Context, db *gorm.DB, companyID, clientID snowflake.ID) ([]meterdomain.Meter, error) {
	var meters []meterdomain.Meter
	err := db.WithContext(ctx).Raw(
		`SELECT `+meterColumns+` FROM meters WHERE company_id = ? AND client_id = ? ORDER BY created_at ASC`,
		companyID,
		clientID,
	).Scan(&meters).Error
	if err != nil {
		return nil, err
	}
	return meters, nil
}

func (r *repo) UpdateLastReading(ctx context.Context, db *gorm.DB, id snowflake.ID, reading decimal.Decimal, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE meters SET last_reading = ?, last_reading_date = ?, updated_at = ? WHERE id = ?`,
		reading,
		at,
		at,
		id,
	).Error
}
