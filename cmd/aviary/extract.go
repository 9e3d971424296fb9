package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aviary-ml/aviary/pipeline"
	"github.com/aviary-ml/aviary/xenocanto"
)

func newExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract feature artifacts from downloaded audio",
		Long: `Decode every WAV file in the audio directory and persist one feature
artifact per recording under the feature directory, skipping artifacts
that already exist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			audioDir := viper.GetString("audio-dir")

			recs, err := recordingsFromDir(audioDir)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				return fmt.Errorf("no audio files in %s, run fetch first", audioDir)
			}

			store, err := pipeline.NewStore(viper.GetString("feature-dir"))
			if err != nil {
				return err
			}
			// The fetcher only supplies the path convention here.
			fetcher, err := pipeline.NewFetcher(noDownload{}, audioDir)
			if err != nil {
				return err
			}

			extractor, err := pipeline.NewExtractor(store, fetcher,
				pipeline.WithFeatureKind(viper.GetString("feature-kind")),
				pipeline.WithExtractWorkers(viper.GetInt("workers")))
			if err != nil {
				return err
			}

			_, summary, err := extractor.Run(cmd.Context(), recs)
			if err != nil {
				return err
			}

			fmt.Printf("extracted %d, cached %d, failed %d\n",
				summary.Succeeded, summary.Skipped, summary.Failed)
			return nil
		},
	}

	cmd.Flags().String("feature-kind", pipeline.DefaultFeatureKind, "artifact directory name")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		panic(fmt.Sprintf("binding flags: %v", err))
	}

	return cmd
}

// noDownload satisfies pipeline.Downloader for extract-only runs, which
// never hit the network.
type noDownload struct{}

func (noDownload) Download(context.Context, string, io.Writer) (int64, error) {
	return 0, fmt.Errorf("downloads are not available during extract")
}

// recordingsFromDir builds minimal recording records from the WAV files
// already on disk.
func recordingsFromDir(dir string) ([]xenocanto.Recording, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading audio directory: %w", err)
	}

	var recs []xenocanto.Recording
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".wav") {
			continue
		}
		id := strings.TrimSuffix(filepath.Base(e.Name()), ".wav")
		recs = append(recs, xenocanto.Recording{ID: id})
	}
	return recs, nil
}
