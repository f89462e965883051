package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"purchase-analytics/pkg/models"

	"github.com/google/renameio/v2"
)

// Header est l'en-tête fixe du rapport.
var Header = []string{"department_id", "number_of_orders", "number_of_first_orders", "percentage"}

// ErrDegenerateDepartment : un rayon sans commande n'a pas de pourcentage.
var ErrDegenerateDepartment = errors.New("rayon sans commande")

// Format trie les rayons par department_id croissant et calcule le pourcentage.
func Format(stats map[int64]*models.DepartmentStats) ([]models.ReportRow, error) {
	ids := make([]int64, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]models.ReportRow, 0, len(ids))
	for _, id := range ids {
		s := stats[id]
		if s.NumberOfOrders <= 0 {
			return nil, fmt.Errorf("department_id=%d : %w", id, ErrDegenerateDepartment)
		}
		rows = append(rows, models.ReportRow{
			DepartmentID:        id,
			NumberOfOrders:      s.NumberOfOrders,
			NumberOfFirstOrders: s.NumberOfFirstOrders,
			Percentage:          Percentage(s.NumberOfFirstOrders, s.NumberOfOrders),
		})
	}
	return rows, nil
}

// Percentage retourne first/orders formaté comme %.2f : arrondi correct de la
// valeur float64, demi au pair sur les égalités exactes (1/8 → "0.12",
// 33/200 → "0.17"). orders doit être > 0.
func Percentage(first, orders int64) string {
	return strconv.FormatFloat(float64(first)/float64(orders), 'f', 2, 64)
}

// WriteCSV écrit l'en-tête puis une ligne par rayon.
func WriteCSV(w io.Writer, rows []models.ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	rec := make([]string, len(Header))
	for _, r := range rows {
		rec[0] = strconv.FormatInt(r.DepartmentID, 10)
		rec[1] = strconv.FormatInt(r.NumberOfOrders, 10)
		rec[2] = strconv.FormatInt(r.NumberOfFirstOrders, 10)
		rec[3] = r.Percentage
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile remplace path de façon atomique (fichier temporaire + rename) :
// un échec ne laisse jamais de rapport partiel à path.
func WriteFile(path string, rows []models.ReportRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return err
	}
	defer pf.Cleanup()

	if err := WriteCSV(pf, rows); err != nil {
		return err
	}
	return pf.CloseAtomicallyReplace()
}
