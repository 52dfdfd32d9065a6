package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	readingdomain "github.com/aquabill/aquabill/internal/reading/domain"
)

const readingColumns = `id, company_id, meter_id, client_id, reading, previous_reading,
	 consumption, notes, recorded_at, created_at`

type repo struct{}

func Provide() readingdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reading *readingdomain.MeterReading) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO meter_readings (id, company_id, meter_id, client_id, reading, previous_reading,
		 consumption, notes, recorded_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reading.ID,
		reading.CompanyID,
		reading.MeterID,
		reading.ClientID,
		reading.Reading,
		reading.PreviousReading,
		reading.Consumption,
		reading.Notes,
		reading.RecordedAt,
		reading.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*readingdomain.MeterReading, error) {
	var reading readingdomain.MeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT `+readingColumns+` FROM meter_readings WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Scan(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}

func (r *repo) ListByMeter(ctx context.Context, db *gorm.DB, companyID, meterID snowflake.ID) ([]readingdomain.MeterReading, error) {
	var readings []readingdomain.MeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT `+readingColumns+` FROM meter_readings
		 WHERE company_id = ? AND meter_id = ? ORDER BY recorded_at DESC`,
		companyID,
		meterID,
	).Scan(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *repo) ListByCompany(ctx context.Context, db *gorm.DB, companyID snowflake.ID, limit int) ([]readingdomain.MeterReading, error) {
	var readings []readingdomain.MeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT `+readingColumns+` FROM meter_readings
		 WHERE company_id = ? ORDER BY recorded_at DESC LIMIT ?`,
		companyID,
		limit,
	).Scan(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}
