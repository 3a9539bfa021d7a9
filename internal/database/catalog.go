// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mracine/tagquest/internal/models"
)

// ListProducts returns the full catalog in insertion order.
func (db *DB) ListProducts(ctx context.Context) (_ []*models.Product, err error) {
	start := time.Now()
	defer func() { observe("select", "catalog_products", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT handle, title, vendor, existing_genre, existing_subgenre, existing_decade
		FROM catalog_products
		ORDER BY created_at, handle`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.Handle, &p.Title, &p.Vendor,
			&p.ExistingGenre, &p.ExistingSubgenre, &p.ExistingDecade); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("product iteration failed: %w", err)
	}
	return products, nil
}

// CountProducts returns the catalog size.
func (db *DB) CountProducts(ctx context.Context) (_ int, err error) {
	start := time.Now()
	defer func() { observe("count", "catalog_products", start, err) }()

	var count int
	err = db.conn.QueryRowContext(ctx, `SELECT count(*) FROM catalog_products`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// InsertProducts appends products to the catalog, skipping handles that are
// already present. Returns how many rows were actually added.
func (db *DB) InsertProducts(ctx context.Context, products []*models.Product) (_ int, err error) {
	start := time.Now()
	defer func() { observe("insert", "catalog_products", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog_products
			(handle, title, vendor, existing_genre, existing_subgenre, existing_decade)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (handle) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, p := range products {
		res, execErr := stmt.ExecContext(ctx, p.Handle, p.Title, p.Vendor,
			p.ExistingGenre, p.ExistingSubgenre, p.ExistingDecade)
		if execErr != nil {
			err = fmt.Errorf("failed to insert product %s: %w", p.Handle, execErr)
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit products: %w", err)
	}
	return added, nil
}

// ClearProducts empties the catalog.
func (db *DB) ClearProducts(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { observe("delete", "catalog_products", start, err) }()

	if _, err = db.conn.ExecContext(ctx, `DELETE FROM catalog_products`); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}
	return nil
}
