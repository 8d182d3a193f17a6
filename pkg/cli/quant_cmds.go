package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQuantCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quant",
		Short: "Numerai Quant tournament commands",
	}

	cmd.AddCommand(
		newQuantLeaderboardCmd(s),
		newQuantSubmitCmd(s),
		newQuantProfileCmd(s),
	)

	return cmd
}

func newQuantLeaderboardCmd(s *settings) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the current quant leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := s.quantAPI().GetLeaderboard(cmd.Context(), limit, offset)
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

func newQuantSubmitCmd(s *settings) *cobra.Command {
	var modelID string

	cmd := &cobra.Command{
		Use:   "submit <path>",
		Short: "Upload a quant prediction file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := s.quantAPI().UploadPredictions(cmd.Context(), args[0], modelID)
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

func newQuantProfileCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <username>",
		Short: "Fetch the public quant profile of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := s.quantAPI().PublicUserProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), profile)
		},
	}
}
