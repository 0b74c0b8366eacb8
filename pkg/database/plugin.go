package database

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/pkg/metrics"
	"gorm.io/gorm"
)

const startedAtKey = "vitalapp:started_at"

// MetricsPlugin records the latency of every gorm statement in
// Collector.DBQueryDuration, labelled by operation and table.
type MetricsPlugin struct {
	collector *metrics.Collector
}

func NewMetricsPlugin(c *metrics.Collector) *MetricsPlugin {
	return &MetricsPlugin{collector: c}
}

func (p *MetricsPlugin) Name() string {
	return "vitalapp:metrics"
}

func (p *MetricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	for _, err := range []error{
		cb.Create().Before("gorm:create").Register("vitalapp:before_create", p.before),
		cb.Create().After("gorm:create").Register("vitalapp:after_create", p.after("create")),
		cb.Query().Before("gorm:query").Register("vitalapp:before_query", p.before),
		cb.Query().After("gorm:query").Register("vitalapp:after_query", p.after("query")),
		cb.Update().Before("gorm:update").Register("vitalapp:before_update", p.before),
		cb.Update().After("gorm:update").Register("vitalapp:after_update", p.after("update")),
		cb.Delete().Before("gorm:delete").Register("vitalapp:before_delete", p.before),
		cb.Delete().After("gorm:delete").Register("vitalapp:after_delete", p.after("delete")),
		cb.Row().Before("gorm:row").Register("vitalapp:before_row", p.before),
		cb.Row().After("gorm:row").Register("vitalapp:after_row", p.after("row")),
		cb.Raw().Before("gorm:raw").Register("vitalapp:before_raw", p.before),
		cb.Raw().After("gorm:raw").Register("vitalapp:after_raw", p.after("raw")),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *MetricsPlugin) before(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

func (p *MetricsPlugin) after(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startedAtKey)
		if !ok {
			return
		}
		started, ok := v.(time.Time)
		if !ok {
			return
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		p.collector.DBQueryDuration.WithLabelValues(op, table).Observe(time.Since(started).Seconds())
	}
}
