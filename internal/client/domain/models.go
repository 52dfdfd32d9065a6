package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Client is a billed customer of a company.
type Client struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	CompanyID      snowflake.ID `json:"company_id" gorm:"column:company_id;not null;index:ix_clients_company"`
	Name           string       `json:"name" gorm:"type:text;not null"`
	DocumentNumber string       `json:"document_number" gorm:"type:text"`
	Email          string       `json:"email" gorm:"type:text"`
	Phone          string       `json:"phone" gorm:"type:text"`
	Address        string       `json:"address" gorm:"type:text"`
	Active         bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Client) TableName() string { return "clients" }
