package calculator

import (
	"context"
	"fmt"
	"io"
	"os"

	"purchase-analytics/pkg/catalog"
	"purchase-analytics/pkg/csvinput"
	"purchase-analytics/pkg/database"
	"purchase-analytics/pkg/models"
	"purchase-analytics/pkg/report"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

var validate = validator.New()

// Run enchaîne catalogue → agrégation → rapport (→ base si StoreDSN).
// Une erreur avant l'écriture ne laisse aucun rapport.
func Run(ctx context.Context, cfg models.Config, logger *zap.Logger) ([]models.ReportRow, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config : %w", err)
	}

	// 1) Index catalogue, entièrement en mémoire avant les commandes
	idx, err := loadCatalog(cfg.ProductsPath, logger)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2) Agrégation en un seul passage
	stats, sum, err := aggregateFile(cfg.OrderProductsPath, cfg.Progress, idx, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("commandes agrégées",
		zap.Int("lines", sum.LinesRead),
		zap.Int("matched", sum.Matched),
		zap.Int("missed", sum.Missed),
		zap.Int("departments", len(stats)),
	)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3) Rapport
	rows, err := report.Format(stats)
	if err != nil {
		return nil, err
	}
	if err := report.WriteFile(cfg.ReportPath, rows); err != nil {
		return nil, fmt.Errorf("écriture rapport %s : %w", cfg.ReportPath, err)
	}
	logger.Info("rapport écrit", zap.String("path", cfg.ReportPath), zap.Int("rows", len(rows)))

	if cfg.StoreDSN != "" {
		if err := storeReport(ctx, cfg, rows, logger); err != nil {
			return rows, err
		}
	}
	return rows, nil
}

func loadCatalog(path string, logger *zap.Logger) (*catalog.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := csvinput.NewParser(f)
	if err != nil {
		return nil, fmt.Errorf("%s : %w", path, err)
	}
	if err := p.ParseHeader(catalog.ColProductID, catalog.ColDepartmentID); err != nil {
		return nil, fmt.Errorf("%s : %w", path, err)
	}
	idx, st, err := catalog.Build(p, logger)
	if err != nil {
		return nil, fmt.Errorf("%s : %w", path, err)
	}
	logger.Info("catalogue chargé",
		zap.Int("rows", st.Rows),
		zap.Int("products", idx.Len()),
		zap.Int("duplicates", st.Duplicates),
		zap.Int("conflicts", st.Conflicts),
	)
	return idx, nil
}

func aggregateFile(path string, progress bool, idx Lookuper, logger *zap.Logger) (Stats, Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Summary{}, err
	}
	defer f.Close()

	var src io.Reader = f
	var bar *progressbar.ProgressBar
	if progress {
		info, err := f.Stat()
		if err != nil {
			return nil, Summary{}, err
		}
		bar = progressbar.DefaultBytes(info.Size(), "commandes")
		pr := progressbar.NewReader(f, bar)
		src = &pr
	}

	p, err := csvinput.NewParser(src)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("%s : %w", path, err)
	}
	if err := p.ParseHeader(ColProductID, ColReordered); err != nil {
		return nil, Summary{}, fmt.Errorf("%s : %w", path, err)
	}
	stats, sum, err := Aggregate(p, idx, logger)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return nil, sum, fmt.Errorf("%s : %w", path, err)
	}
	return stats, sum, nil
}

func storeReport(ctx context.Context, cfg models.Config, rows []models.ReportRow, logger *zap.Logger) error {
	db, dialect, err := database.Open(cfg.StoreDSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	runID := uuid.NewString()
	if err := database.SaveReport(ctx, db, dialect, cfg.StoreTable, runID, rows); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	logger.Info("rapport enregistré en base",
		zap.String("run_id", runID),
		zap.String("dsn", database.Redact(cfg.StoreDSN)),
		zap.String("table", cfg.StoreTable),
	)
	return nil
}
