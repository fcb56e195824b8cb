package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var templatesLoadFile string

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage material templates",
}

var templatesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the built-in service templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		count, err := env.Templates.SeedDefaults(ctx)
		if err != nil {
			return eris.Wrap(err, "seed templates")
		}
		zap.L().Info("templates seeded", zap.Int("count", count))
		return nil
	},
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		templates, err := env.Templates.List(ctx)
		if err != nil {
			return eris.Wrap(err, "list templates")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(templates)
	},
}

var templatesLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load templates from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		count, err := env.Templates.LoadFile(ctx, templatesLoadFile)
		if err != nil {
			return eris.Wrap(err, "load templates")
		}
		zap.L().Info("templates loaded", zap.String("file", templatesLoadFile), zap.Int("count", count))
		return nil
	},
}

func init() {
	templatesLoadCmd.Flags().StringVar(&templatesLoadFile, "file", "", "path to templates YAML (required)")
	templatesLoadCmd.MarkFlagRequired("file") //nolint:errcheck

	templatesCmd.AddCommand(templatesSeedCmd, templatesListCmd, templatesLoadCmd)
	rootCmd.AddCommand(templatesCmd)
}
