package main

import (
	"fmt"
	"io"
	"os"

	"impact-eval/internal/dataset"
	"impact-eval/internal/storage"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ingestCmd copies a JSON dataset into the store
var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Copy a JSON record array into the dataset store",
	Long: `Validate that the file holds a JSON array of objects and store it under a
dataset name, replacing any dataset of the same name. Stored datasets are
evaluated with --format boltdb --dataset NAME.

Examples:
  impacteval ingest "2024-1-24-original model.json" --dataset baseline
  impacteval ingest labels.json --store /var/lib/impact --dataset v2`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

// datasetsCmd lists stored datasets
var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List datasets in the store",
	Args:  cobra.NoArgs,
	RunE:  runDatasets,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(datasetsCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd, nil)
	if err != nil {
		return err
	}

	n, err := ingest(args[0], settings.StorePath, settings.Dataset)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d items into dataset %s\n", n, settings.Dataset)
	return nil
}

func ingest(path, storePath, name string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open JSON file: %w", err)
	}
	defer file.Close()

	raws, err := dataset.DecodeRaw(file)
	if err != nil {
		return 0, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	store, err := storage.New(storePath)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	if err := store.PutItems(name, raws); err != nil {
		return 0, fmt.Errorf("failed to store dataset: %w", err)
	}

	log.Info().
		Str("file", path).
		Str("dataset", name).
		Int("items", len(raws)).
		Msg("Dataset ingested")

	return len(raws), nil
}

func runDatasets(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd, nil)
	if err != nil {
		return err
	}

	return listDatasets(settings.StorePath, cmd.OutOrStdout())
}

func listDatasets(storePath string, out io.Writer) error {
	store, err := storage.New(storePath)
	if err != nil {
		return err
	}
	defer store.Close()

	infos, err := store.Datasets()
	if err != nil {
		return fmt.Errorf("failed to list datasets: %w", err)
	}

	if len(infos) == 0 {
		fmt.Fprintln(out, "No datasets stored")
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(out, "%s: %d items\n", info.Name, info.Items)
	}
	return nil
}
