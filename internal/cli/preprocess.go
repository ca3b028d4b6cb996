package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/handoff"
	"github.com/evrenbal/mlforge/internal/session"
)

// newPreprocessCommand creates the preprocess command with subcommands
func newPreprocessCommand() *cobra.Command {
	preprocessCmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Clean and transform the active dataset",
		Long: `Run destructive preprocessing steps against the active dataset
session: drop columns, cast types, impute missing values, encode
categoricals, scale numerics, and split into train/test sets.`,
	}

	preprocessCmd.AddCommand(newDeleteColumnCommand())
	preprocessCmd.AddCommand(newTypecastCommand())
	preprocessCmd.AddCommand(newImputeCommand())
	preprocessCmd.AddCommand(newEncodeCommand())
	preprocessCmd.AddCommand(newScaleCommand())
	preprocessCmd.AddCommand(newSplitCommand())

	return preprocessCmd
}

func newDeleteColumnCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <column>",
		Short: "Delete a column from the dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sess, err := newSession(cfg, newConsoleBus())
			if err != nil {
				return err
			}

			applied, err := sess.DeleteColumn(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !applied {
				fmt.Printf("%s A mutation for %q is already in flight\n", emoji.GetEmoji("warning"), args[0])
				return nil
			}
			fmt.Printf("%s Column deleted: %s\n", emoji.GetEmoji("column"), args[0])
			return nil
		},
	}
}

func newTypecastCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "typecast <column> <dtype>",
		Short: "Change a column's dtype",
		Long:  "Cast a column to a new dtype, e.g. int64, float64, object, category, datetime64.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sess, err := newSession(cfg, newConsoleBus())
			if err != nil {
				return err
			}

			applied, err := sess.UpdateColumnType(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !applied {
				fmt.Printf("%s A mutation for %q is already in flight\n", emoji.GetEmoji("warning"), args[0])
				return nil
			}
			fmt.Printf("%s Column %s cast to %s\n", emoji.GetEmoji("column"), args[0], args[1])
			return nil
		},
	}
}

func newImputeCommand() *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "impute <column>",
		Short: "Handle missing values in a column",
		Long:  "Impute or remove missing values. Methods: mean, median, mode, remove.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sess, err := newSession(cfg, newConsoleBus())
			if err != nil {
				return err
			}

			applied, err := sess.HandleMissing(cmd.Context(), args[0], session.ImputeMethod(method))
			if err != nil {
				return err
			}
			if !applied {
				fmt.Printf("%s A mutation for %q is already in flight\n", emoji.GetEmoji("warning"), args[0])
				return nil
			}
			fmt.Printf("%s Missing values handled in %s (%s)\n", emoji.GetEmoji("missing"), args[0], method)
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "mean", "imputation method (mean, median, mode, remove)")
	return cmd
}

func newEncodeCommand() *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "encode <column>",
		Short: "Encode a categorical column",
		Long:  "Encode a categorical column. Methods: label, onehot, binary, frequency, target.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sess, err := newSession(cfg, newConsoleBus())
			if err != nil {
				return err
			}

			applied, err := sess.Encode(cmd.Context(), args[0], session.EncodeMethod(method))
			if err != nil {
				return err
			}
			if !applied {
				fmt.Printf("%s A mutation for %q is already in flight\n", emoji.GetEmoji("warning"), args[0])
				return nil
			}
			fmt.Printf("%s Column encoded: %s (%s)\n", emoji.GetEmoji("encode"), args[0], method)
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "label", "encoding method (label, onehot, binary, frequency, target)")
	return cmd
}

func newScaleCommand() *cobra.Command {
	var (
		method string
		min    float64
		max    float64
	)

	cmd := &cobra.Command{
		Use:   "scale <column>[,<column>...]",
		Short: "Scale numeric columns",
		Long:  "Scale one or more numeric columns. Methods: minmax, standard, robust, normalizer, quantile.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sess, err := newSession(cfg, newConsoleBus())
			if err != nil {
				return err
			}

			columns := splitColumns(args[0])

			var params *session.ScaleParams
			if cmd.Flag("min").Changed || cmd.Flag("max").Changed {
				params = &session.ScaleParams{Min: &min, Max: &max}
			}

			applied, err := sess.Scale(cmd.Context(), columns, session.ScaleMethod(method), params)
			if err != nil {
				return err
			}
			if !applied {
				fmt.Printf("%s A mutation for one of the columns is already in flight\n", emoji.GetEmoji("warning"))
				return nil
			}
			fmt.Printf("%s Scaled %s (%s)\n", emoji.GetEmoji("scale"), strings.Join(columns, ", "), method)
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "minmax", "scaling method (minmax, standard, robust, normalizer, quantile)")
	cmd.Flags().Float64Var(&min, "min", 0, "minmax lower bound")
	cmd.Flags().Float64Var(&max, "max", 1, "minmax upper bound")
	return cmd
}

func newSplitCommand() *cobra.Command {
	var (
		features    string
		target      string
		testSize    float64
		randomState int
		shuffle     bool
		stratify    bool
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split the dataset into train/test sets",
		Long: `Split the dataset into train and test sets. The materialized split
is stored locally and consumed by the train, evaluate, and predict
commands.`,
		Example: `  mlforge preprocess split --features Age,Income --target Churn
  mlforge preprocess split --features Age,Income --target Churn --test-size 0.3 --shuffle=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sess, err := newSession(cfg, newConsoleBus())
			if err != nil {
				return err
			}

			featureList := splitColumns(features)
			result, err := sess.Split(cmd.Context(), session.SplitRequest{
				Features:    featureList,
				Target:      target,
				TestSize:    testSize,
				RandomState: randomState,
				Shuffle:     shuffle,
				Stratify:    stratify,
			})
			if err != nil {
				return err
			}

			store := newHandoffStore(cfg)
			artifact := handoff.Artifact{
				XTrain:    result.XTrain,
				XTest:     result.XTest,
				YTrain:    result.YTrain,
				YTest:     result.YTest,
				Features:  featureList,
				Target:    target,
				CreatedAt: time.Now().UTC(),
			}
			if err := store.Save(artifact); err != nil {
				return err
			}

			fmt.Printf("%s Dataset split: %d train / %d test rows\n",
				emoji.GetEmoji("split"), result.TrainSize, result.TestSize)
			return nil
		},
	}

	cmd.Flags().StringVarP(&features, "features", "f", "", "comma-separated feature columns (required)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "target column (required)")
	cmd.Flags().Float64Var(&testSize, "test-size", 0.2, "test set fraction")
	cmd.Flags().IntVar(&randomState, "random-state", 42, "random seed")
	cmd.Flags().BoolVar(&shuffle, "shuffle", true, "shuffle before splitting")
	cmd.Flags().BoolVar(&stratify, "stratify", false, "stratify by target")
	return cmd
}

// splitColumns parses a comma-separated column list, trimming blanks.
func splitColumns(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
