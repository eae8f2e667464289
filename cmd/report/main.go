// Command report generates one synthetic dataset, prints the analysis and
// writes the CSV and chart data files.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"coffeeStatApp/config"
	"coffeeStatApp/internal/domain/model"
	"coffeeStatApp/internal/domain/service"
	"coffeeStatApp/internal/infrastructure/export"
	"coffeeStatApp/internal/lib/logger/handlers/slogpretty"
	"coffeeStatApp/internal/lib/logger/sl"
	"coffeeStatApp/pkg/generator"
)

const printedTopItems = 5

func main() {
	cfg := config.LoadConfig()

	records := flag.Int("records", cfg.DefaultRecords, "number of transactions to generate")
	seed := flag.Uint64("seed", cfg.ReportSeed, "random seed")
	csvPath := flag.String("csv", cfg.CSVPath, "CSV output path")
	chartPath := flag.String("charts", cfg.ChartDataPath, "chart data output path (empty to skip)")
	flag.Parse()

	opts := slogpretty.PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelInfo}}
	log := slog.New(opts.NewPrettyHandler(os.Stderr))

	if err := run(cfg, *records, *seed, *csvPath, *chartPath); err != nil {
		log.Error("report failed", sl.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, records int, seed uint64, csvPath, chartPath string) error {
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	fmt.Println("Generating synthetic data...")
	window := model.DefaultWindow(time.Now().In(loc), cfg.WindowDays)
	ds, err := generator.GenerateSeeded(records, catalog, window, seed)
	if err != nil {
		return err
	}

	if err := export.WriteCSVFile(csvPath, ds); err != nil {
		return err
	}
	fmt.Printf("Data saved to %s\n\n", csvPath)

	report := service.BuildReport(ds, catalog, cfg.TopItems)
	report.GeneratedAt = time.Now().UTC()
	if err := export.WriteAnalysis(os.Stdout, report, printedTopItems); err != nil {
		return err
	}

	if chartPath != "" {
		if err := export.WriteChartDataFile(chartPath, report); err != nil {
			return err
		}
		fmt.Printf("\nChart data saved to %s\n", chartPath)
	}
	return nil
}
