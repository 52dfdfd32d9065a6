package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	clientdomain "github.com/aquabill/aquabill/internal/client/domain"
)

type repo struct{}

func Provide() clientdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *clientdomain.Client) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO clients (id, company_id, name, document_number, email, phone, address, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.CompanyID,
		c.Name,
		c.DocumentNumber,
		c.Email,
		c.Phone,
		c.Address,
		c.Active,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, c *clientdomain.Client) error {
	return db.WithContext(ctx).Exec(
		`UPDATE clients
		 SET name = ?, document_number = ?, email = ?, phone = ?, address = ?, active = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		c.Name,
		c.DocumentNumber,
		c.Email,
		c.Phone,
		c.Address,
		c.Active,
		c.UpdatedAt,
		c.CompanyID,
		c.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*clientdomain.Client, error) {
	var client clientdomain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, name, document_number, email, phone, address, active, created_at, updated_at
		 FROM clients WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == 0 {
		return nil, nil
	}
	return &client, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]clientdomain.Client, error) {
	var clients []clientdomain.Client
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, name, document_number, email, phone, address, active, created_at, updated_at
		 FROM clients WHERE company_id = ? ORDER BY created_at ASC`,
		companyID,
	).Scan(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}
