package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Audit actions emitted by the billing pipeline.
const (
	ActionReadingRecorded = "reading.recorded"
	ActionInvoiceIssued   = "invoice.issued"
	ActionPaymentRecorded = "payment.recorded"
	ActionInvoiceSettled  = "invoice.settled"
	ActionTariffUpdated   = "tariff.updated"
	ActionMeterReplaced   = "meter.replaced"
)

// AuditLog is an append-only record of a state-changing operation.
type AuditLog struct {
	ID         snowflake.ID      `json:"id" gorm:"primaryKey"`
	CompanyID  *snowflake.ID     `json:"company_id,omitempty" gorm:"column:company_id;index:ix_audit_logs_company_created,priority:1"`
	Action     string            `json:"action" gorm:"type:text;not null"`
	TargetType string            `json:"target_type" gorm:"type:text;not null"`
	TargetID   *string           `json:"target_id,omitempty" gorm:"type:text"`
	Metadata   datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`
	IPAddress  *string           `json:"ip_address,omitempty" gorm:"type:text"`
	UserAgent  *string           `json:"user_agent,omitempty" gorm:"type:text"`
	CreatedAt  time.Time         `json:"created_at" gorm:"not null;index:ix_audit_logs_company_created,priority:2"`
}

func (AuditLog) TableName() string { return "audit_logs" }
