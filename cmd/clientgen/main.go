package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	cli "github.com/blimu-dev/clientgen/internal/cli"
	"github.com/blimu-dev/clientgen/pkg/logging"
)

func main() {
	var verbose bool
	root := &cobra.Command{
		Use:           "clientgen",
		Short:         "Generate client models from code models and OpenAPI documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
	logger := func() logging.Logger { return cli.NewLogger(os.Stderr, verbose) }

	root.AddCommand(newGenerateCmd(logger))
	root.AddCommand(newValidateCmd(logger))
	root.AddCommand(newImportCmd(logger))
	root.AddCommand(newExamplesCmd(logger))

	if err := root.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func newGenerateCmd(logger func() logging.Logger) *cobra.Command {
	var configPath string
	var singleOutput string
	var options string
	var input string
	var typ string
	var outDir string
	var format string
	var packageName string
	var name string
	var includeTags []string
	var excludeTags []string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the client model and run the configured outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunGenerate(cli.RunGenerateParams{
				ConfigPath:   configPath,
				SingleOutput: singleOutput,
				Options:      options,
				Fallback: cli.FallbackParams{
					CodeModel:   input,
					Type:        typ,
					OutDir:      outDir,
					Format:      format,
					PackageName: packageName,
					Name:        name,
					IncludeTags: includeTags,
					ExcludeTags: excludeTags,
				},
			}, logger())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to clientgen.yaml config")
	cmd.Flags().StringVar(&singleOutput, "only", "", "Run only the outputs of this type from config")
	cmd.Flags().StringVar(&options, "options", "", `Settings as a JSON object, e.g. '{"isDataPlaneClient": true}'`)
	// Fallback single-output flags
	cmd.Flags().StringVar(&input, "input", "", "Code model or OpenAPI document (yaml/json, file or URL)")
	cmd.Flags().StringVar(&typ, "type", "", "Output type (summary, dump)")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory")
	cmd.Flags().StringVar(&format, "format", "", "Output format, e.g. yaml for dump")
	cmd.Flags().StringVar(&packageName, "package-name", "", "Package name")
	cmd.Flags().StringVar(&name, "name", "", "Service name")
	cmd.Flags().StringArrayVar(&includeTags, "include-tags", nil, "Regex patterns for tags to include")
	cmd.Flags().StringArrayVar(&excludeTags, "exclude-tags", nil, "Regex patterns for tags to exclude")

	return cmd
}

func newValidateCmd(logger func() logging.Logger) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a code model or an OpenAPI document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunValidate(input, logger())
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Code model or OpenAPI document (yaml/json)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newImportCmd(logger func() logging.Logger) *cobra.Command {
	var p cli.RunImportParams
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import an OpenAPI document and print the resulting code model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunImport(p, cmd.OutOrStdout(), logger())
		},
	}
	cmd.Flags().StringVar(&p.Input, "input", "", "OpenAPI document (yaml/json, file or URL)")
	cmd.Flags().StringVar(&p.ClientName, "client-name", "", "Client name")
	cmd.Flags().StringArrayVar(&p.IncludeTags, "include-tags", nil, "Regex patterns for tags to include")
	cmd.Flags().StringArrayVar(&p.ExcludeTags, "exclude-tags", nil, "Regex patterns for tags to exclude")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newExamplesCmd(logger func() logging.Logger) *cobra.Command {
	var p cli.RunExamplesParams
	cmd := &cobra.Command{
		Use:   "examples",
		Short: "Print seeded example payloads of the models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunExamples(p, cmd.OutOrStdout(), logger())
		},
	}
	cmd.Flags().StringVarP(&p.ConfigPath, "config", "c", "", "Path to clientgen.yaml config")
	cmd.Flags().StringVar(&p.CodeModel, "input", "", "Code model or OpenAPI document, when no config is given")
	cmd.Flags().StringVar(&p.PackageName, "package-name", "", "Package name")
	cmd.Flags().Int64Var(&p.Seed, "seed", 0, "Example seed (0 keeps the configured seed)")
	cmd.Flags().StringSliceVar(&p.Models, "model", nil, "Only these models")
	cmd.Flags().BoolVar(&p.Literals, "literals", false, "Print Go literals of scalar fields instead of JSON")
	return cmd
}
