package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig holds operational billing parameters that an operator may
// tune without redeploying: invoice payment terms, document numbering
// prefixes, and the aging buckets used by the delinquency report.
type BillingConfig struct {
	DueInDays     int           `mapstructure:"dueInDays"`
	InvoicePrefix string        `mapstructure:"invoicePrefix"`
	ReceiptPrefix string        `mapstructure:"receiptPrefix"`
	AgingBuckets  []AgingBucket `mapstructure:"agingBuckets"`
}

// AgingBucket classifies overdue debt by days past due. MaxDays nil means
// open-ended.
type AgingBucket struct {
	Label   string `mapstructure:"label"`
	MinDays int    `mapstructure:"minDays"`
	MaxDays *int   `mapstructure:"maxDays"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		DueInDays:     15,
		InvoicePrefix: "INV",
		ReceiptPrefix: "RCP",
		AgingBuckets: []AgingBucket{
			{Label: "0-30", MinDays: 0, MaxDays: intPtr(30)},
			{Label: "31-60", MinDays: 31, MaxDays: intPtr(60)},
			{Label: "60+", MinDays: 61, MaxDays: nil},
		},
	}
}

func intPtr(v int) *int { return &v }

// BillingConfigHolder serves the current BillingConfig and hot-reloads it
// when the underlying file changes.
type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/aquabill/config")
	v.AddConfigPath("/etc/aquabill")
	v.AddConfigPath(".")

	v.SetEnvPrefix("AQUABILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.dueInDays", defaults.DueInDays)
	v.SetDefault("billing.invoicePrefix", defaults.InvoicePrefix)
	v.SetDefault("billing.receiptPrefix", defaults.ReceiptPrefix)
	v.SetDefault("billing.agingBuckets", defaults.AgingBuckets)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

// StaticBillingConfigHolder pins the holder to cfg with no file watching.
// Used by tests and one-off tooling.
func StaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	h := &BillingConfigHolder{}
	h.current.Store(cfg)
	return h
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.DueInDays <= 0 {
		return errors.New("billing.dueInDays must be positive")
	}
	if strings.TrimSpace(cfg.InvoicePrefix) == "" {
		return errors.New("billing.invoicePrefix cannot be empty")
	}
	if strings.TrimSpace(cfg.ReceiptPrefix) == "" {
		return errors.New("billing.receiptPrefix cannot be empty")
	}
	if len(cfg.AgingBuckets) == 0 {
		return errors.New("billing.agingBuckets cannot be empty")
	}
	return nil
}
