package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	CompanyID  snowflake.ID
	Action     string
	TargetType string
	TargetID   string
	StartAt    *time.Time
	EndAt      *time.Time
	Cursor     *Cursor
	Limit      int
}

type Cursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*AuditLog, error)
}
