package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/uuazed/numerapi-go/internal/compute"
)

func newComputeCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Manage Numerai Compute deployments on AWS",
	}

	cmd.AddCommand(newComputeDeployCmd(s))

	return cmd
}

func newComputeDeployCmd(s *settings) *cobra.Command {
	var (
		modelID    string
		modelName  string
		externalID string
		noTail     bool
		webhook    bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Build and deploy the submission container for a model",
		Long: "Provisions the AWS resources for Numerai Compute: an S3 bucket,\n" +
			"a CodeBuild project that builds the container image, an ECR\n" +
			"repository and a Lambda function that runs your model on the\n" +
			"submission webhook.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			api := s.numerAPI()
			if modelName == "" {
				name, err := api.ModelIDToModelName(ctx, modelID)
				if err != nil {
					return fmt.Errorf("resolve model name: %w", err)
				}
				modelName = name
			}
			if externalID == "" {
				externalID = uuid.New().String()
			}

			creds := api.Token()
			if creds == nil {
				return numerapiKeysRequired()
			}

			provisioner, err := compute.New(ctx, nil)
			if err != nil {
				return err
			}
			functionName, err := provisioner.Deploy(ctx, compute.DeployInput{
				ModelID:    modelID,
				ModelName:  modelName,
				PublicID:   creds.PublicID,
				SecretKey:  creds.SecretKey,
				ExternalID: externalID,
				TailLogs:   !noTail,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), functionName)

			if webhook {
				ok, err := api.SetSubmissionWebhook(ctx, modelID, functionName)
				if err != nil {
					return fmt.Errorf("set submission webhook: %w", err)
				}
				if !ok {
					return fmt.Errorf("submission webhook was not accepted")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelID, "model-id", "", "Target model id (required)")
	cmd.Flags().StringVar(&modelName, "model-name", "", "Model name, resolved from the id when omitted")
	cmd.Flags().StringVar(&externalID, "external-id", "", "External id for the trigger role, generated when omitted")
	cmd.Flags().BoolVar(&noTail, "no-tail", false, "Do not stream the container build logs")
	cmd.Flags().BoolVar(&webhook, "set-webhook", false, "Register the function as the model's submission webhook")
	_ = cmd.MarkFlagRequired("model-id")

	return cmd
}

func numerapiKeysRequired() error {
	return fmt.Errorf("api keys required: pass --public-id and --secret-key or set the environment variables")
}
