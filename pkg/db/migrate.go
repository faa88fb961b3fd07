package db

import (
	"context"

	"github.com/dvalenzuela-dev/shopbag-backend/pkg/db/models"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/logger"
)

// AutoMigrate creates or updates the schema for every persisted model.
func (c *Client) AutoMigrate(ctx context.Context, logg *logger.Logger) error {
	if err := c.conn.WithContext(ctx).AutoMigrate(
		&models.Product{},
		&models.CartLineItem{},
	); err != nil {
		return err
	}
	if logg != nil {
		logg.Info(ctx, "schema migrated")
	}
	return nil
}
