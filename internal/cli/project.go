package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evrenbal/mlforge/internal/config"
	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/project"
)

// newProjectCommand creates the project command with subcommands
func newProjectCommand() *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Save and restore workbench projects",
		Long: `A project bundles the dataset location, feature/target selection,
and chosen model so a pipeline can be resumed later.`,
	}

	projectCmd.AddCommand(newProjectSaveCommand())
	projectCmd.AddCommand(newProjectShowCommand())
	projectCmd.AddCommand(newProjectListCommand())
	projectCmd.AddCommand(newProjectDeleteCommand())

	return projectCmd
}

func newProjectStore(cfg *config.Config) *project.Store {
	return project.NewStore(config.ExpandPath(cfg.Storage.ProjectDir))
}

func newProjectSaveCommand() *cobra.Command {
	var (
		dataset   string
		features  string
		target    string
		algorithm string
		task      string
	)

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a named project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store := newProjectStore(cfg)
			p := project.Project{
				Name:        args[0],
				DatasetPath: dataset,
				Features:    splitColumns(features),
				Target:      target,
				Algorithm:   algorithm,
				Task:        task,
				SplitPath:   newHandoffStore(cfg).Path(),
			}
			if err := store.Save(p); err != nil {
				return err
			}

			fmt.Printf("%s Project saved: %s\n", emoji.GetEmoji("project"), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "dataset file path")
	cmd.Flags().StringVarP(&features, "features", "f", "", "comma-separated feature columns")
	cmd.Flags().StringVarP(&target, "target", "t", "", "target column")
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "model algorithm")
	cmd.Flags().StringVar(&task, "task", "", "task type (classification, regression)")
	return cmd
}

func newProjectShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a saved project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			p, err := newProjectStore(cfg).Load(args[0])
			if err != nil {
				return err
			}
			return printJSON(p)
		},
	}
}

func newProjectListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			names, err := newProjectStore(cfg).List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("No saved projects")
				return nil
			}
			for _, name := range names {
				fmt.Printf("%s %s\n", emoji.GetEmoji("project"), name)
			}
			return nil
		},
	}
}

func newProjectDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if err := newProjectStore(cfg).Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("%s Project deleted: %s\n", emoji.GetEmoji("project"), args[0])
			return nil
		},
	}
}
