package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"slidegen/internal/storage"
	"slidegen/internal/viewer"
	"slidegen/pkg/config"
)

var viewCmd = &cobra.Command{
	Use:   "view [deck-dir]",
	Short: "Open an exported deck in the terminal viewer",
	Long:  `Page through a locally exported deck. Without an argument the newest deck in the output directory is opened.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	dir, err := resolveDeckDir(cmd, args)
	if err != nil {
		return err
	}

	d, err := storage.LoadDeck(dir)
	if err != nil {
		return fmt.Errorf("load deck %s: %w", dir, err)
	}
	return viewer.Run(d)
}

func resolveDeckDir(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}

	decks, err := storage.NewLocalStorage(cfg.Output.Dir).ListDecks(cmd.Context())
	if err != nil {
		return "", err
	}
	if len(decks) == 0 {
		return "", errors.New("no exported decks in " + cfg.Output.Dir)
	}
	return decks[0], nil
}
