package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, companyID string) ([]Response, error)
	GetByID(ctx context.Context, companyID, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
}

type CreateRequest struct {
	CompanyID      string `json:"company_id"`
	Name           string `json:"name"`
	DocumentNumber string `json:"document_number"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
}

type UpdateRequest struct {
	CompanyID      string  `json:"company_id"`
	ID             string  `json:"id"`
	Name           *string `json:"name,omitempty"`
	DocumentNumber *string `json:"document_number,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Address        *string `json:"address,omitempty"`
	Active         *bool   `json:"active,omitempty"`
}

type Response struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	Name           string    `json:"name"`
	DocumentNumber string    `json:"document_number"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("client_not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
