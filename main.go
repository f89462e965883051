package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"purchase-analytics/pkg/calculator"
	"purchase-analytics/pkg/config"
	"purchase-analytics/pkg/logger"
	"purchase-analytics/pkg/models"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stderr))
}

// execute lance la commande et retourne le code de sortie ; toute erreur,
// y compris d'usage, est écrite sur stderr.
func execute(args []string, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Erreur : %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "purchase-analytics <order_products.csv> <products.csv> <report.csv>",
		Short: "Commandes et premières commandes par rayon",
		Long: `Agrège order_products.csv par rayon (via products.csv) et écrit report.csv :
department_id,number_of_orders,number_of_first_orders,percentage

Les produits absents du catalogue sont ignorés et signalés sur stderr.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(3)(cmd, args); err != nil {
				return fmt.Errorf("%w\nUsage: %s", err, cmd.UseLine())
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				v.SetConfigFile(path)
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			log, err := logger.New(&cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			_, err = calculator.Run(ctx, models.Config{
				OrderProductsPath: args[0],
				ProductsPath:      args[1],
				ReportPath:        args[2],
				StoreDSN:          cfg.Store.DSN,
				StoreTable:        cfg.Store.Table,
				Progress:          cfg.Progress,
			}, log)
			return err
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "fichier de config (défaut ./purchase-analytics.yaml)")
	flags.String("log-level", "info", "debug, info, warn, error")
	flags.String("log-format", "console", "console ou json")
	flags.String("log-output", "stderr", "stderr, stdout ou chemin de fichier")
	flags.Bool("progress", false, "barre de progression sur order_products.csv")
	flags.String("store-dsn", "", "copie du rapport en base (mysql://, mariadb://, sqlite://chemin)")
	flags.String("store-table", "department_report", "table cible du rapport")

	for key, name := range map[string]string{
		"log.level":   "log-level",
		"log.format":  "log-format",
		"log.output":  "log-output",
		"progress":    "progress",
		"store.dsn":   "store-dsn",
		"store.table": "store-table",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
	return cmd
}
