package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/pkg/metrics"
)

const startedAtKey = "bazaar:started_at"

// Instrument records every statement's latency in metrics.DBQueryDuration,
// labelled by operation.
func Instrument(db *gorm.DB) error {
	cb := db.Callback()

	before := func(tx *gorm.DB) { tx.InstanceSet(startedAtKey, time.Now()) }
	after := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(startedAtKey)
			if !ok {
				return
			}
			if start, ok := v.(time.Time); ok {
				metrics.ObserveDBQuery(op, start)
			}
		}
	}

	regs := []func() error{
		func() error { return cb.Query().Before("*").Register("metrics:before_select", before) },
		func() error { return cb.Query().After("*").Register("metrics:after_select", after("select")) },
		func() error { return cb.Create().Before("*").Register("metrics:before_insert", before) },
		func() error { return cb.Create().After("*").Register("metrics:after_insert", after("insert")) },
		func() error { return cb.Update().Before("*").Register("metrics:before_update", before) },
		func() error { return cb.Update().After("*").Register("metrics:after_update", after("update")) },
		func() error { return cb.Delete().Before("*").Register("metrics:before_delete", before) },
		func() error { return cb.Delete().After("*").Register("metrics:after_delete", after("delete")) },
		func() error { return cb.Raw().Before("*").Register("metrics:before_raw", before) },
		func() error { return cb.Raw().After("*").Register("metrics:after_raw", after("raw")) },
	}
	for _, reg := range regs {
		if err := reg(); err != nil {
			return err
		}
	}
	return nil
}
