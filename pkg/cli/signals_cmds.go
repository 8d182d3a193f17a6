package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSignalsCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Numerai Signals tournament commands",
	}

	cmd.AddCommand(
		newSignalsLeaderboardCmd(s),
		newSignalsSubmitCmd(s),
		newSignalsSubmissionStatusCmd(s),
		newSignalsProfileCmd(s),
		newSignalsDailyModelPerformancesCmd(s),
		newSignalsStakeGetCmd(s),
		newSignalsTickerUniverseCmd(s),
		newSignalsDownloadValidationDataCmd(s),
	)

	return cmd
}

func newSignalsLeaderboardCmd(s *settings) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the current signals leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := s.signalsAPI().GetLeaderboard(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of entries to fetch")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of entries to skip")
	return cmd
}

func newSignalsSubmitCmd(s *settings) *cobra.Command {
	var modelID string

	cmd := &cobra.Command{
		Use:   "submit <path>",
		Short: "Upload a signals prediction file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := s.signalsAPI().UploadPredictions(cmd.Context(), args[0], modelID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&modelID, "model-id", "", "Target model id, defaults to your default model")
	return cmd
}

func newSignalsSubmissionStatusCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "submission-status <model-id>",
		Short: "Show the evaluation of your latest signals submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := s.signalsAPI().SubmissionStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), status)
		},
	}
}

func newSignalsProfileCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <username>",
		Short: "Fetch the public signals profile of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := s.signalsAPI().PublicUserProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), profile)
		},
	}
}

func newSignalsDailyModelPerformancesCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "daily-model-performances <username>",
		Short: "Fetch the daily signals performance of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			performances, err := s.signalsAPI().DailyModelPerformances(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), performances)
		},
	}
}

func newSignalsStakeGetCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "stake-get <username>",
		Short: "Show the current signals stake of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stake, err := s.signalsAPI().StakeGet(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), stake.String())
			return nil
		},
	}
}

func newSignalsTickerUniverseCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "ticker-universe",
		Short: "List the tickers eligible for signals submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tickers, err := s.signalsAPI().TickerUniverse(cmd.Context())
			if err != nil {
				return err
			}
			for _, ticker := range tickers {
				fmt.Fprintln(cmd.OutOrStdout(), ticker)
			}
			return nil
		},
	}
}

func newSignalsDownloadValidationDataCmd(s *settings) *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "download-validation-data",
		Short: "Download the historical signals data with targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := s.signalsAPI().DownloadValidationData(cmd.Context(), dest)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dest, "dest", "", "Destination path, defaults to the working directory")
	return cmd
}
