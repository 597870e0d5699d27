package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chengahtung/local-lode/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Changes one setting and persists it.

Keys: kb_folder, chunk_size, overlap, batch_size, ingest_docx,
reranker_keep_loaded.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsResetKBCmd = &cobra.Command{
	Use:   "reset-kb-folder",
	Short: "Restore the corpus folder to its original value",
	RunE:  runSettingsResetKB,
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetKBCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	cmd.Printf("  kb_folder            = %s\n", s.KBFolder)
	cmd.Printf("  original_kb_folder   = %s\n", s.OriginalKBFolder)
	cmd.Printf("  chunk_size           = %d\n", s.ChunkSize)
	cmd.Printf("  overlap              = %d\n", s.Overlap)
	cmd.Printf("  batch_size           = %d\n", s.BatchSize)
	cmd.Printf("  ingest_docx          = %t\n", s.IngestDocx)
	cmd.Printf("  reranker_keep_loaded = %t\n", s.RerankerKeepLoaded)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	patch, err := patchForKey(args[0], args[1])
	if err != nil {
		return err
	}

	updated, err := settingsService.Update(patch)
	if err != nil {
		return fmt.Errorf("updating settings: %w", err)
	}
	cmd.Printf("Updated. chunk_size=%d overlap=%d batch_size=%d kb_folder=%s\n",
		updated.ChunkSize, updated.Overlap, updated.BatchSize, updated.KBFolder)
	return nil
}

func runSettingsResetKB(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	restored, err := settingsService.ResetKBFolder()
	if err != nil {
		return fmt.Errorf("resetting kb folder: %w", err)
	}
	cmd.Printf("kb_folder restored to %s\n", restored.KBFolder)
	return nil
}

func patchForKey(key, value string) (domain.SettingsPatch, error) {
	var patch domain.SettingsPatch
	switch key {
	case "kb_folder":
		patch.KBFolder = &value
	case "chunk_size", "overlap", "batch_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return patch, fmt.Errorf("%s must be an integer: %q", key, value)
		}
		switch key {
		case "chunk_size":
			patch.ChunkSize = &n
		case "overlap":
			patch.Overlap = &n
		case "batch_size":
			patch.BatchSize = &n
		}
	case "ingest_docx", "reranker_keep_loaded":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return patch, fmt.Errorf("%s must be a boolean: %q", key, value)
		}
		if key == "ingest_docx" {
			patch.IngestDocx = &b
		} else {
			patch.RerankerKeepLoaded = &b
		}
	default:
		return patch, fmt.Errorf("unknown setting: %s", key)
	}
	return patch, nil
}
