package calculator

import (
	"errors"
	"fmt"
	"io"

	"purchase-analytics/pkg/csvinput"
	"purchase-analytics/pkg/models"

	"go.uber.org/zap"
)

// Colonnes obligatoires de order_products.csv
const (
	ColProductID = "product_id"
	ColReordered = "reordered"
)

// Lookuper résout product_id → department_id (implémenté par *catalog.Index).
type Lookuper interface {
	Lookup(productID int64) (int64, bool)
}

// Stats : compteurs par department_id.
type Stats map[int64]*models.DepartmentStats

// Summary résume un passage sur le flux de commandes.
type Summary struct {
	LinesRead int
	Matched   int
	Missed    int
}

// Aggregate parcourt le flux une seule fois. Un produit absent de l'index est
// ignoré (une ligne de diagnostic par absence) ; un champ numérique invalide
// est fatal.
func Aggregate(src csvinput.RowReader, idx Lookuper, logger *zap.Logger) (Stats, Summary, error) {
	stats := make(Stats)
	var sum Summary

	for {
		row, err := src.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, sum, fmt.Errorf("commandes : %w", err)
		}
		sum.LinesRead++

		productID, err := row.Int(ColProductID)
		if err != nil {
			return nil, sum, fmt.Errorf("commandes : %w", err)
		}

		departmentID, ok := idx.Lookup(productID)
		if !ok {
			sum.Missed++
			logger.Warn("produit absent du catalogue",
				zap.Int64("product_id", productID),
				zap.Int("line", row.LineNumber),
			)
			continue
		}

		reordered, err := row.Bool01(ColReordered)
		if err != nil {
			return nil, sum, fmt.Errorf("commandes : %w", err)
		}

		stats.Add(departmentID, models.OrderLineRecord{ProductID: productID, Reordered: reordered})
		sum.Matched++
	}
	return stats, sum, nil
}

// Add compte une ligne résolue pour departmentID (entrée créée si absente).
func (s Stats) Add(departmentID int64, line models.OrderLineRecord) {
	d, ok := s[departmentID]
	if !ok {
		d = &models.DepartmentStats{}
		s[departmentID] = d
	}
	d.Record(!line.Reordered)
}
