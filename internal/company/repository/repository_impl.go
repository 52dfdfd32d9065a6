package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	companydomain "github.com/aquabill/aquabill/internal/company/domain"
)

const companyColumns = `id, name, tax_id, email, phone, address, city, province,
	 minimum_charge, minimum_cubic_meters, price_per_cubic_meter,
	 accept_cash, accept_card, accept_bank_transfer, accept_emola, accept_mpesa,
	 bank_name, bank_account, bank_code, created_at, updated_at`

type repo struct{}

func Provide() companydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *companydomain.Company) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO companies (id, name, tax_id, email, phone, address, city, province,
		 minimum_charge, minimum_cubic_meters, price_per_cubic_meter,
		 accept_cash, accept_card, accept_bank_transfer, accept_emola, accept_mpesa,
		 bank_name, bank_account, bank_code, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.Name,
		c.TaxID,
		c.Email,
		c.Phone,
		c.Address,
		c.City,
		c.Province,
		c.MinimumCharge,
		c.MinimumCubicMeters,
		c.PricePerCubicMeter,
		c.AcceptCash,
		c.AcceptCard,
		c.AcceptBankTransfer,
		c.AcceptEmola,
		c.AcceptMpesa,
		c.BankName,
		c.BankAccount,
		c.BankCode,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, c *companydomain.Company) error {
	return db.WithContext(ctx).Exec(
		`UPDATE companies
		 SET name = ?, tax_id = ?, email = ?, phone = ?, address = ?, city = ?, province = ?,
		     minimum_charge = ?, minimum_cubic_meters = ?, price_per_cubic_meter = ?,
		     accept_cash = ?, accept_card = ?, accept_bank_transfer = ?, accept_emola = ?, accept_mpesa = ?,
		     bank_name = ?, bank_account = ?, bank_code = ?, updated_at = ?
		 WHERE id = ?`,
		c.Name,
		c.TaxID,
		c.Email,
		c.Phone,
		c.Address,
		c.City,
		c.Province,
		c.MinimumCharge,
		c.MinimumCubicMeters,
		c.PricePerCubicMeter,
		c.AcceptCash,
		c.AcceptCard,
		c.AcceptBankTransfer,
		c.AcceptEmola,
		c.AcceptMpesa,
		c.BankName,
		c.BankAccount,
		c.BankCode,
		c.UpdatedAt,
		c.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*companydomain.Company, error) {
	var company companydomain.Company
	err := db.WithContext(ctx).Raw(
		`SELECT `+companyColumns+` FROM companies WHERE id = ?`,
		id,
	).Scan(&company).Error
	if err != nil {
		return nil, err
	}
	if company.ID == 0 {
		return nil, nil
	}
	return &company, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*companydomain.Company, error) {
	var company companydomain.Company
	err := db.WithContext(ctx).Raw(
		`SELECT `+companyColumns+` FROM companies WHERE id = ? FOR UPDATE`,
		id,
	).Scan(&company).Error
	if err != nil {
		return nil, err
	}
	if company.ID == 0 {
		return nil, nil
	}
	return &company, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]companydomain.Company, error) {
	var companies []companydomain.Company
	err := db.WithContext(ctx).Raw(
		`SELECT ` + companyColumns + ` FROM companies ORDER BY created_at ASC`,
	).Scan(&companies).Error
	if err != nil {
		return nil, err
	}
	return companies, nil
}
