package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evrenbal/mlforge/internal/backend"
	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/session"
)

// newModelCommand creates the model command with subcommands
func newModelCommand() *cobra.Command {
	modelCmd := &cobra.Command{
		Use:   "model",
		Short: "Train, evaluate, and run predictions",
		Long: `Train a model on the stored train split, evaluate it against the
test split, and run ad-hoc predictions. All three consume the split
saved by "mlforge preprocess split".`,
	}

	modelCmd.AddCommand(newTrainCommand())
	modelCmd.AddCommand(newEvaluateCommand())
	modelCmd.AddCommand(newPredictCommand())

	return modelCmd
}

func newTrainCommand() *cobra.Command {
	var (
		algorithm string
		task      string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model on the stored train split",
		Example: `  mlforge model train --algorithm random_forest --task classification
  mlforge model train --algorithm linear_regression --task regression`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			artifact, err := newHandoffStore(cfg).Load()
			if err != nil {
				return err
			}
			if !artifact.TrainReady() {
				return backend.NewPreconditionError("No training data found. Please split your dataset first.")
			}

			sess, err := newSession(cfg, newConsoleBus())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := sess.InitModel(ctx, algorithm, session.TaskType(task), nil); err != nil {
				return err
			}

			result, err := sess.Train(ctx, artifact.TrainMatrix(), artifact.YTrain, artifact.Features)
			if err != nil {
				return err
			}

			fmt.Printf("%s Model trained on %d samples (%d features)\n",
				emoji.GetEmoji("model"), result.TrainingSamples, result.FeatureCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "random_forest", "model algorithm")
	cmd.Flags().StringVarP(&task, "task", "t", "classification", "task type (classification, regression)")
	return cmd
}

func newEvaluateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate the trained model on the stored test split",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			artifact, err := newHandoffStore(cfg).Load()
			if err != nil {
				return err
			}
			if !artifact.TestReady() {
				return backend.NewPreconditionError("No test data found. Please split your dataset first.")
			}

			sess, err := newSession(cfg, newConsoleBus())
			if err != nil {
				return err
			}

			metrics, err := sess.Evaluate(cmd.Context(), artifact.TestMatrix(), artifact.YTest)
			if err != nil {
				return err
			}

			if cfg.Output.DefaultFormat == "json" {
				return printJSON(metrics)
			}

			t := newTable("Metric", "Value")
			appendMetric := func(name string, value float64) {
				t.AppendRow([]interface{}{name, strconv.FormatFloat(value, 'f', 4, 64)})
			}
			if metrics.Accuracy != 0 {
				appendMetric("Accuracy", metrics.Accuracy)
			}
			if metrics.Precision != 0 {
				appendMetric("Precision", metrics.Precision)
			}
			if metrics.Recall != 0 {
				appendMetric("Recall", metrics.Recall)
			}
			if metrics.F1 != 0 {
				appendMetric("F1", metrics.F1)
			}
			if metrics.MSE != 0 {
				appendMetric("MSE", metrics.MSE)
			}
			if metrics.R2 != 0 {
				appendMetric("R2", metrics.R2)
			}
			render(t, cfg.Output.DefaultFormat)
			return nil
		},
	}
}

func newPredictCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "predict <value>[,<value>...] ...",
		Short: "Run predictions on ad-hoc samples",
		Long: `Predict with the trained model. Each argument is one sample: a
comma-separated list of feature values in the order of the stored
split's feature list.`,
		Example: `  mlforge model predict 34,52000
  mlforge model predict 34,52000 41,61000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			artifact, err := newHandoffStore(cfg).Load()
			if err != nil {
				return err
			}
			if !artifact.TrainReady() {
				return backend.NewPreconditionError("No training data found. Please split your dataset first.")
			}

			rows, err := parseSamples(args, len(artifact.Features))
			if err != nil {
				return err
			}

			sess, err := newSession(cfg, newConsoleBus())
			if err != nil {
				return err
			}

			result, err := sess.Predict(cmd.Context(), rows, artifact.Features)
			if err != nil {
				return err
			}

			if cfg.Output.DefaultFormat == "json" {
				return printJSON(result)
			}

			t := newTable("Sample", "Prediction")
			for i, pred := range result.Predictions {
				t.AppendRow([]interface{}{args[i], pred})
			}
			render(t, cfg.Output.DefaultFormat)

			fmt.Printf("%s Predicted %d samples\n", emoji.GetEmoji("predict"), result.SamplesPredicted)
			return nil
		},
	}
}

// parseSamples parses each argument as a comma-separated feature vector
// and checks it against the expected width.
func parseSamples(args []string, want int) ([][]float64, error) {
	rows := make([][]float64, 0, len(args))
	for _, arg := range args {
		parts := strings.Split(arg, ",")
		if want > 0 && len(parts) != want {
			return nil, fmt.Errorf("sample %q has %d values, expected %d", arg, len(parts), want)
		}
		row := make([]float64, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid feature value %q in sample %q", p, arg)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
