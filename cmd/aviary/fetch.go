package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aviary-ml/aviary/pipeline"
	"github.com/aviary-ml/aviary/xenocanto"
)

func newFetchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [query]",
		Short: "Query the catalog and download recording audio",
		Long: `Query the xeno-canto catalog and download the matching recordings
into the audio directory, skipping files that already exist.

The query uses xeno-canto search syntax, for example "turdus merula q:A".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client := xenocanto.NewClient()
			recs, err := client.Query(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("catalog matched %d recordings\n", len(recs))

			fetcher, err := pipeline.NewFetcher(client, viper.GetString("audio-dir"),
				pipeline.WithFetchWorkers(viper.GetInt("workers")))
			if err != nil {
				return err
			}

			_, summary, err := fetcher.Run(ctx, recs)
			if err != nil {
				return err
			}

			fmt.Printf("downloaded %d, cached %d, failed %d\n",
				summary.Succeeded, summary.Skipped, summary.Failed)
			return nil
		},
	}

	return cmd
}
