package balance

import (
	"context"
	"encoding/json"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stardrift/tactical/internal/model"
)

// MetricsWriter records committed writes for analytics. Satisfied by the
// metrics manager.
type MetricsWriter interface {
	WriteBalanceChange(ctx context.Context, key, actor string) error
}

// GormSink persists committed parameter writes: the current value is
// upserted and the change appended to the audit trail. Persistence is
// best-effort; a failed write is logged, never propagated back into the
// store.
type GormSink struct {
	DB      *gorm.DB
	Metrics MetricsWriter
	Logger  *slog.Logger
}

// ParameterChanged implements Sink.
func (s *GormSink) ParameterChanged(c Change, category string) {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}

	if s.DB != nil {
		value, err := json.Marshal(c.New)
		if err != nil {
			s.Logger.Error("balance value not serializable", "key", c.Key, "error", err)
			return
		}
		old, _ := json.Marshal(c.Old)

		param := model.BalanceParameter{
			Key:      c.Key,
			Value:    datatypes.JSON(value),
			Category: category,
		}
		err = s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&param).Error
		if err != nil {
			s.Logger.Error("balance parameter not persisted", "key", c.Key, "error", err)
		}

		change := model.BalanceChange{
			Key:      c.Key,
			OldValue: datatypes.JSON(old),
			NewValue: datatypes.JSON(value),
			Actor:    c.Actor,
		}
		if err := s.DB.Create(&change).Error; err != nil {
			s.Logger.Error("balance change not persisted", "key", c.Key, "error", err)
		}
	}

	if s.Metrics != nil {
		if err := s.Metrics.WriteBalanceChange(context.Background(), c.Key, c.Actor); err != nil {
			s.Logger.Debug("balance change point not shipped", "key", c.Key, "error", err)
		}
	}
}
