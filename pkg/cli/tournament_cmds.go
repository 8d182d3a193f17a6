package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func addTournamentCommands(rootCmd *cobra.Command, s *settings) {
	rootCmd.AddCommand(
		newAccountCmd(s),
		newModelsCmd(s),
		newCompetitionsCmd(s),
		newCurrentRoundCmd(s),
		newCheckNewRoundCmd(s),
		newLeaderboardCmd(s),
		newProfileCmd(s),
		newDailyModelPerformancesCmd(s),
		newRoundModelPerformancesCmd(s),
		newTransactionsCmd(s),
		newSubmissionFilenamesCmd(s),
		newSubmissionStatusCmd(s),
		newSubmitCmd(s),
		newStakeGetCmd(s),
		newStakeIncreaseCmd(s),
		newStakeDecreaseCmd(s),
		newStakeDrainCmd(s),
		newListDatasetsCmd(s),
		newDatasetURLCmd(s),
		newDownloadDatasetCmd(s),
		newDiagnosticsCmd(s),
		newUploadDiagnosticsCmd(s),
	)
}

func newAccountCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show all information about your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			account, err := s.numerAPI().GetAccount(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), account)
		},
	}
}

func newModelsCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "Show your model names and ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			models, err := s.numerAPI().GetModels(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), models)
		},
	}
}

func newCompetitionsCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "competitions",
		Short: "Retrieve information about all rounds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rounds, err := s.numerAPI().GetCompetitions(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rounds)
		},
	}
}

func newCurrentRoundCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "current-round",
		Short: "Show the number of the current active round",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			num, err := s.numerAPI().GetCurrentRound(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), num)
			return nil
		},
	}
}

func newCheckNewRoundCmd(s *settings) *cobra.Command {
	var hours int

	cmd := &cobra.Command{
		Use:   "check-new-round",
		Short: "Check if a new round has started recently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fresh, err := s.numerAPI().CheckNewRound(cmd.Context(), hours)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fresh)
			return nil
		},
	}
	cmd.Flags().IntVar(&hours, "hours", 24, "Look back this many hours")
	return cmd
}

func newLeaderboardCmd(s *settings) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the current tournament leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := s.numerAPI().GetLeaderboard(cmd.Context(), limit, offset)
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

func newProfileCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <username>",
		Short: "Fetch the public profile of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := s.numerAPI().PublicUserProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), profile)
		},
	}
}

func newDailyModelPerformancesCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "daily-model-performances <username>",
		Short: "Fetch the daily performance of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			performances, err := s.numerAPI().DailyModelPerformances(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), performances)
		},
	}
}

func newRoundModelPerformancesCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "round-model-performances <username>",
		Short: "Fetch the per-round performance of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			performances, err := s.numerAPI().RoundModelPerformances(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), performances)
		},
	}
}

func newTransactionsCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "transactions",
		Short: "List all your wallet deposits and withdrawals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txns, err := s.numerAPI().WalletTransactions(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), txns)
		},
	}
}

func newSubmissionFilenamesCmd(s *settings) *cobra.Command {
	var (
		roundNum   int
		tournament int
		modelID    string
	)

	cmd := &cobra.Command{
		Use:   "submission-filenames",
		Short: "List the filenames of your submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filenames, err := s.numerAPI().GetSubmissionFilenames(
				cmd.Context(), tournament, roundNum, modelID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), filenames)
		},
	}
	cmd.Flags().IntVar(&roundNum, "round-num", 0, "Filter by round number")
	cmd.Flags().IntVar(&tournament, "tournament", 0, "Filter by tournament")
	cmd.Flags().StringVar(&modelID, "model-id", "", "Target model id, defaults to your default model")
	return cmd
}

func newSubmissionStatusCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "submission-status <model-id>",
		Short: "Show the evaluation of your latest submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// submission evaluation details are only exposed for signals
			status, err := s.signalsAPI().SubmissionStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), status)
		},
	}
}

func newSubmitCmd(s *settings) *cobra.Command {
	var modelID string

	cmd := &cobra.Command{
		Use:   "submit <path>",
		Short: "Upload a prediction file for the current round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := s.numerAPI().UploadPredictions(cmd.Context(), args[0], modelID)
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

func newStakeGetCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "stake-get <username>",
		Short: "Show the current stake of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stake, err := s.numerAPI().StakeGet(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), stake.String())
			return nil
		},
	}
}

func newStakeIncreaseCmd(s *settings) *cobra.Command {
	var modelID string

	cmd := &cobra.Command{
		Use:   "stake-increase <nmr>",
		Short: "Increase your stake by the given amount of NMR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nmr, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("parse amount %q: %w", args[0], err)
			}
			result, err := s.numerAPI().StakeIncrease(cmd.Context(), nmr, modelID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&modelID, "model-id", "", "Target model id, defaults to your default model")
	return cmd
}

func newStakeDecreaseCmd(s *settings) *cobra.Command {
	var modelID string

	cmd := &cobra.Command{
		Use:   "stake-decrease <nmr>",
		Short: "Decrease your stake by the given amount of NMR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nmr, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("parse amount %q: %w", args[0], err)
			}
			result, err := s.numerAPI().StakeDecrease(cmd.Context(), nmr, modelID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&modelID, "model-id", "", "Target model id, defaults to your default model")
	return cmd
}

func newStakeDrainCmd(s *settings) *cobra.Command {
	var modelID string

	cmd := &cobra.Command{
		Use:   "stake-drain",
		Short: "Completely remove your stake",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := s.numerAPI().StakeDrain(cmd.Context(), modelID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&modelID, "model-id", "", "Target model id, defaults to your default model")
	return cmd
}

func newListDatasetsCmd(s *settings) *cobra.Command {
	var roundNum int

	cmd := &cobra.Command{
		Use:   "list-datasets",
		Short: "List the available data files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := s.numerAPI().ListDatasets(cmd.Context(), roundNum)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), names)
		},
	}
	cmd.Flags().IntVar(&roundNum, "round-num", 0, "Round you are interested in, defaults to the current round")
	return cmd
}

func newDatasetURLCmd(s *settings) *cobra.Command {
	var roundNum int

	cmd := &cobra.Command{
		Use:   "dataset-url <filename>",
		Short: "Fetch the download URL of a data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := s.numerAPI().DatasetURL(cmd.Context(), args[0], roundNum)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
	cmd.Flags().IntVar(&roundNum, "round-num", 0, "Round you are interested in, defaults to the current round")
	return cmd
}

func newDownloadDatasetCmd(s *settings) *cobra.Command {
	var (
		roundNum int
		filename string
		dest     string
	)

	cmd := &cobra.Command{
		Use:   "download-dataset",
		Short: "Download a data file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := s.numerAPI().DownloadDataset(cmd.Context(), filename, dest, roundNum)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().IntVar(&roundNum, "round-num", 0, "Round you are interested in, defaults to the current round")
	cmd.Flags().StringVar(&filename, "filename", "v5.0/live.parquet", "File to download")
	cmd.Flags().StringVar(&dest, "dest", "", "Destination path, defaults to the filename in the working directory")
	return cmd
}

func newDiagnosticsCmd(s *settings) *cobra.Command {
	var (
		modelID       string
		diagnosticsID string
	)

	cmd := &cobra.Command{
		Use:   "diagnostics",
		Short: "Fetch the results of a diagnostics run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			diag, err := s.numerAPI().Diagnostics(cmd.Context(), modelID, diagnosticsID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), diag)
		},
	}
	cmd.Flags().StringVar(&modelID, "model-id", "", "Target model id")
	cmd.Flags().StringVar(&diagnosticsID, "id", "", "Diagnostics run id, defaults to the most recent run")
	return cmd
}

func newUploadDiagnosticsCmd(s *settings) *cobra.Command {
	var modelID string

	cmd := &cobra.Command{
		Use:   "upload-diagnostics <path>",
		Short: "Upload a prediction file for a diagnostics run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := s.numerAPI().UploadDiagnostics(cmd.Context(), args[0], modelID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&modelID, "model-id", "", "Target model id")
	return cmd
}
