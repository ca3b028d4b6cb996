package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evrenbal/mlforge/internal/codegen"
)

// newGenerateCommand creates the code generation command
func newGenerateCommand() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "generate <prompt...>",
		Short: "Generate helper code from a prompt",
		Long: `Generate code from a natural-language prompt using the configured
completion provider. Requires an API key (codegen.api_key in the config
file or MLFORGE_CODEGEN_API_KEY).`,
		Example: `  mlforge generate "plot a histogram of the Age column"
  mlforge generate --language typescript "fetch the dataset shape"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			gen, err := codegen.New(&codegen.Config{
				APIKey:  cfg.Codegen.APIKey,
				BaseURL: cfg.Codegen.BaseURL,
				Model:   cfg.Codegen.Model,
				Timeout: cfg.Codegen.Timeout,
			})
			if err != nil {
				return err
			}

			prompt := strings.Join(args, " ")
			code, err := gen.Generate(cmd.Context(), prompt, codegen.Language(language))
			if err != nil {
				return err
			}

			fmt.Println(code)
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "python", "output language (python, javascript, typescript)")
	return cmd
}
