package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fixhub/estimator-cli/internal/model"
)

var (
	estimateJobID       string
	estimateDescription string
	estimateServiceType string
	estimateLocation    string
	estimateUrgency     string
	estimateBudget      float64
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Generate a material estimate for a single job",
	Example: `  estimator-cli estimate --job-id J1 \
    --description "Fix a leaking copper pipe under the kitchen sink" \
    --service-type plumbing`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var budget *float64
		if cmd.Flags().Changed("budget") {
			budget = &estimateBudget
		}

		req := model.NewExtractionRequest(estimateDescription, estimateServiceType, estimateLocation, estimateUrgency, budget)

		est, err := env.Estimator.GenerateEstimate(ctx, estimateJobID, req)
		if err != nil {
			return eris.Wrap(err, "estimate")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(est)
	},
}

func init() {
	estimateCmd.Flags().StringVar(&estimateJobID, "job-id", "", "job id (required)")
	estimateCmd.Flags().StringVar(&estimateDescription, "description", "", "free-text job description (required)")
	estimateCmd.Flags().StringVar(&estimateServiceType, "service-type", "", "service category key (required)")
	estimateCmd.Flags().StringVar(&estimateLocation, "location", "", "job location")
	estimateCmd.Flags().StringVar(&estimateUrgency, "urgency", "", "job urgency")
	estimateCmd.Flags().Float64Var(&estimateBudget, "budget", 0, "budget ceiling in dollars")
	estimateCmd.MarkFlagRequired("job-id")       //nolint:errcheck
	estimateCmd.MarkFlagRequired("description")  //nolint:errcheck
	estimateCmd.MarkFlagRequired("service-type") //nolint:errcheck
	rootCmd.AddCommand(estimateCmd)
}
