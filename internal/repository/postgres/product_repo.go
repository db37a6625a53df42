package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"vendex/internal/domain"
	"vendex/internal/port"
)

type productRepo struct {
	db *sqlx.DB
}

// NewProductRepo creates a new PostgreSQL-backed ProductRepository.
func NewProductRepo(db *sqlx.DB) port.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) InsertProducts(ctx context.Context, products []domain.CatalogueProduct) error {
	if len(products) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("productRepo.InsertProducts begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := range products {
		p := &products[i]
		p.CreatedAt = now
		_, err := tx.ExecContext(ctx,
			`INSERT INTO catalogue_products (id, vendor_id, source_batch_id, model_name, attributes, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.VendorID, p.SourceBatchID, p.ModelName, p.Attributes, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("productRepo.InsertProducts insert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("productRepo.InsertProducts commit: %w", err)
	}
	return nil
}
