// rosterctl seeds and updates the roster from spreadsheet exports. Imports
// go through the update service, so every row obeys the same validation and
// cascade rules as the API.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/squadpulse/squadpulse/config"
	"github.com/squadpulse/squadpulse/internal/analysis"
	"github.com/squadpulse/squadpulse/internal/integrity"
	"github.com/squadpulse/squadpulse/internal/player"
	"github.com/squadpulse/squadpulse/internal/update"
	"github.com/squadpulse/squadpulse/pkg/logger"
	"github.com/squadpulse/squadpulse/pkg/metrics"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rosterctl",
		Short: "Roster management utilities for SquadPulse",
	}
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func importCmd() *cobra.Command {
	var file string
	var actor string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import players from a CSV export",
		Long: `Reads a CSV file with an ID column plus the standard roster headers
(Name, Position, Jersey Number, Games Played, "Skill: ..." columns, etc.),
creates missing players and applies each row through the integrity engine.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(file, actor)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file to import (required)")
	cmd.Flags().StringVar(&actor, "actor", "rosterctl", "actor recorded on the update history")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(file, actor string) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	cfg := config.GetConfig()

	if err := config.DB.AutoMigrate(&player.Player{}, &integrity.DataUpdate{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	zlog, err := logger.New(cfg.App.Env)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer zlog.Sync() //nolint:errcheck

	store := integrity.NewStore(config.DB)
	engine, err := integrity.NewEngine(store, zlog, metrics.NewManager())
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	service := update.NewService(engine, analysis.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, zlog), zlog)
	repo := player.NewRepository(config.DB)

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	imported, failed := 0, 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Printf("line %d: %v", line, err)
			failed++
			continue
		}

		row := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(record) {
				row[strings.TrimSpace(column)] = record[i]
			}
		}

		id := strings.TrimSpace(row["ID"])
		if id == "" {
			log.Printf("line %d: missing ID column, skipped", line)
			failed++
			continue
		}
		delete(row, "ID")

		if err := ensurePlayer(repo, id, row); err != nil {
			log.Printf("line %d: %v", line, err)
			failed++
			continue
		}

		result := service.ProcessCSVImport(context.Background(), id, row, actor)
		if !result.Success {
			log.Printf("line %d (%s): %s", line, id, strings.Join(result.Errors, "; "))
			failed++
			continue
		}
		imported++
	}

	log.Printf("import finished: %d rows applied, %d failed", imported, failed)
	return nil
}

func ensurePlayer(repo player.Repository, id string, row map[string]string) error {
	_, err := repo.GetByID(context.Background(), id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, player.ErrPlayerNotFound) {
		return err
	}
	name := strings.TrimSpace(row["Name"])
	if name == "" {
		name = id
	}
	p := &player.Player{
		ID:   id,
		Name: name,
		Doc:  player.NewDocument(player.Personal{Name: name}),
	}
	return repo.Create(context.Background(), p)
}
