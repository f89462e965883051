package catalog

import (
	"errors"
	"fmt"
	"io"

	"purchase-analytics/pkg/csvinput"
	"purchase-analytics/pkg/models"

	"go.uber.org/zap"
)

// Colonnes obligatoires de products.csv
const (
	ColProductID    = "product_id"
	ColDepartmentID = "department_id"
)

// Index associe product_id → department_id. Construit une fois, lecture seule ensuite.
type Index struct {
	departments map[int64]int64
}

// BuildStats résume la construction de l'index.
type BuildStats struct {
	Rows       int // lignes lues
	Duplicates int // product_id déjà présent (ignoré)
	Conflicts  int // doublons pointant vers un autre rayon
}

// Lookup retourne le rayon du produit ; ok == false si le produit est inconnu.
func (idx *Index) Lookup(productID int64) (int64, bool) {
	dep, ok := idx.departments[productID]
	return dep, ok
}

// Len retourne le nombre de produits indexés.
func (idx *Index) Len() int {
	return len(idx.departments)
}

// Build lit tout le catalogue. La première occurrence d'un product_id gagne ;
// les doublons sont ignorés sans erreur.
func Build(src csvinput.RowReader, logger *zap.Logger) (*Index, BuildStats, error) {
	idx := &Index{departments: make(map[int64]int64)}
	var stats BuildStats

	for {
		row, err := src.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("catalogue : %w", err)
		}
		stats.Rows++

		productID, err := row.Int(ColProductID)
		if err != nil {
			return nil, stats, fmt.Errorf("catalogue : %w", err)
		}
		departmentID, err := row.Int(ColDepartmentID)
		if err != nil {
			return nil, stats, fmt.Errorf("catalogue : %w", err)
		}

		if existing, ok := idx.departments[productID]; ok {
			stats.Duplicates++
			if existing != departmentID {
				stats.Conflicts++
				logger.Debug("entrée catalogue en conflit ignorée",
					zap.Int64("product_id", productID),
					zap.Int64("kept_department_id", existing),
					zap.Int64("ignored_department_id", departmentID),
					zap.Int("line", row.LineNumber),
				)
			}
			continue
		}
		idx.departments[productID] = departmentID
	}
	return idx, stats, nil
}

// FromRecords construit un index à partir d'enregistrements déjà typés,
// avec la même politique « premier gagne ».
func FromRecords(records []models.ProductRecord) *Index {
	idx := &Index{departments: make(map[int64]int64, len(records))}
	for _, r := range records {
		if _, ok := idx.departments[r.ProductID]; !ok {
			idx.departments[r.ProductID] = r.DepartmentID
		}
	}
	return idx
}
