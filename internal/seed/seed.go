package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	companydomain "github.com/aquabill/aquabill/internal/company/domain"
)

const (
	defaultCompanyName = "Aquabill Water Utility"
	defaultBankName    = "BCI"
	defaultBankAccount = "0000000001"
)

// EnsureDefaultCompany seeds the bootstrap company used by single-tenant
// deployments. The sample tariff matches the documented defaults: 300
// minimum charge covering 5 cubic meters, 100 per cubic meter beyond.
func EnsureDefaultCompany(db *gorm.DB) error {
	node, err := seedNode(db)
	if err != nil {
		return err
	}
	return ensureCompany(db, node.Generate())
}

// EnsureDefaultCompanyWithID seeds the bootstrap company under a fixed ID so
// clients and meters provisioned out of band can reference it.
func EnsureDefaultCompanyWithID(db *gorm.DB, id int64) error {
	if id == 0 {
		return EnsureDefaultCompany(db)
	}
	if _, err := seedNode(db); err != nil {
		return err
	}
	return ensureCompany(db, snowflake.ID(id))
}

func seedNode(db *gorm.DB) (*snowflake.Node, error) {
	if db == nil {
		return nil, errors.New("seed database handle is required")
	}
	return snowflake.NewNode(1)
}

func ensureCompany(db *gorm.DB, id snowflake.ID) error {
	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var company companydomain.Company
		err := tx.WithContext(ctx).
			Where("id = ?", id).
			First(&company).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		company = companydomain.Company{
			ID:                 id,
			Name:               defaultCompanyName,
			MinimumCharge:      decimal.NewFromInt(300),
			MinimumCubicMeters: 5,
			PricePerCubicMeter: decimal.NewFromInt(100),
			AcceptCash:         true,
			AcceptBankTransfer: true,
			BankName:           defaultBankName,
			BankAccount:        defaultBankAccount,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		return tx.WithContext(ctx).Create(&company).Error
	})
}
