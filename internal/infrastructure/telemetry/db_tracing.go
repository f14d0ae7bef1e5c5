package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InstrumentGorm registers the otelgorm plugin so each statement becomes a
// span. Query variables are never recorded.
func InstrumentGorm(db *gorm.DB, dbSystem string, logger *zap.Logger) error {
	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName(dbSystem),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return fmt.Errorf("register otelgorm: %w", err)
	}
	if logger != nil {
		logger.Info("Database tracing enabled", zap.String("db_system", dbSystem))
	}
	return nil
}
