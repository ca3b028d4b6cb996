package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/evrenbal/mlforge/internal/emoji"
	"github.com/evrenbal/mlforge/internal/session"
)

// newLoadCommand creates the dataset upload command
func newLoadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>",
		Short: "Upload a dataset to the service",
		Long: `Upload a CSV or Excel dataset to the dataset service. The uploaded
dataset becomes the active session for every other command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("cannot access dataset: %w", err)
			}
			if info.Size() > int64(cfg.Server.MaxUploadMB)*1024*1024 {
				return fmt.Errorf("dataset exceeds the %d MB upload limit", cfg.Server.MaxUploadMB)
			}

			// #nosec G304 - user-supplied dataset path
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open dataset: %w", err)
			}
			defer func() { _ = file.Close() }()

			sess, err := newSession(cfg, newConsoleBus())
			if err != nil {
				return err
			}
			if err := sess.Load(cmd.Context(), filepath.Base(path), file); err != nil {
				return err
			}

			fmt.Printf("%s Dataset uploaded: %s\n", emoji.GetEmoji("upload"), filepath.Base(path))

			// A split saved from an earlier dataset still points at
			// the old rows. Keep it, but say so.
			if artifact, err := newHandoffStore(cfg).Load(); err == nil && !artifact.Empty() {
				fmt.Fprintf(os.Stderr, "%s A saved train/test split predates this dataset. Run the split again before training.\n",
					emoji.GetEmoji("warning"))
			}
			return nil
		},
	}
}

// newDataCommands creates the read-only dataset inspection commands
func newDataCommands() []*cobra.Command {
	return []*cobra.Command{
		newShapeCommand(),
		newHeadTailCommand("head", "Show the first rows of the dataset"),
		newHeadTailCommand("tail", "Show the last rows of the dataset"),
		newDescribeCommand(),
		newInfoCommand(),
		newMissingCommand(),
		newColumnsCommand(),
	}
}

func newShapeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shape",
		Short: "Show dataset dimensions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sess, err := newSession(cfg, newConsoleBus())
			if err != nil {
				return err
			}

			shape, err := sess.Shape(cmd.Context())
			if err != nil {
				return err
			}

			if cfg.Output.DefaultFormat == "json" {
				return printJSON(shape)
			}

			t := newTable("Rows", "Columns")
			t.AppendRow([]interface{}{shape.Rows, shape.Columns})
			render(t, cfg.Output.DefaultFormat)
			return nil
		},
	}
}

func newHeadTailCommand(name, short string) *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sess, err := newSession(cfg, newConsoleBus())
			if err != nil {
				return err
			}

			n := rows
			if n <= 0 {
				n = cfg.Output.RowLimit
			}

			var win session.RowWindow
			if name == "head" {
				win, err = sess.Head(cmd.Context(), n)
			} else {
				win, err = sess.Tail(cmd.Context(), n)
			}
			if err != nil {
				return err
			}

			if cfg.Output.DefaultFormat == "json" {
				return printJSON(win)
			}

			renderRowWindow(win, cfg.Output.DefaultFormat)
			return nil
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", 0, "number of rows (default from config)")
	return cmd
}

func renderRowWindow(win session.RowWindow, format string) {
	header := make([]interface{}, len(win.Columns))
	for i, col := range win.Columns {
		header[i] = col
	}

	t := newTable(header...)
	for _, row := range win.Rows {
		cells := make([]interface{}, len(win.Columns))
		for i, col := range win.Columns {
			cells[i] = row[col]
		}
		t.AppendRow(cells)
	}
	render(t, format)
}

func newDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Show summary statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sess, err := newSession(cfg, newConsoleBus())
			if err != nil {
				return err
			}

			desc, err := sess.Describe(cmd.Context())
			if err != nil {
				return err
			}

			if cfg.Output.DefaultFormat == "json" {
				return printJSON(desc)
			}

			header := make([]interface{}, 0, len(desc.Columns)+1)
			header = append(header, "")
			for _, col := range desc.Columns {
				header = append(header, col)
			}

			t := newTable(header...)
			for i, row := range desc.Rows {
				cells := make([]interface{}, 0, len(desc.Columns)+1)
				if i < len(desc.Index) {
					cells = append(cells, desc.Index[i])
				} else {
					cells = append(cells, "")
				}
				for _, col := range desc.Columns {
					cells = append(cells, row[col])
				}
				t.AppendRow(cells)
			}
			render(t, cfg.Output.DefaultFormat)
			return nil
		},
	}
}

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show per-column dtype and non-null counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sess, err := newSession(cfg, newConsoleBus())
			if err != nil {
				return err
			}

			infos, err := sess.Info(cmd.Context())
			if err != nil {
				return err
			}

			if cfg.Output.DefaultFormat == "json" {
				return printJSON(infos)
			}

			t := newTable("Column", "Dtype", "Non-Null", "Memory")
			for _, info := range infos {
				t.AppendRow([]interface{}{info.Column, info.DType, info.NonNullCount, info.MemoryUsage})
			}
			render(t, cfg.Output.DefaultFormat)
			return nil
		},
	}
}

func newMissingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "missing",
		Short: "Show per-column missing-value counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sess, err := newSession(cfg, newConsoleBus())
			if err != nil {
				return err
			}

			missing, err := sess.MissingValues(cmd.Context())
			if err != nil {
				return err
			}

			if cfg.Output.DefaultFormat == "json" {
				return printJSON(missing)
			}

			t := newTable("Column", "Missing")
			for _, m := range missing {
				t.AppendRow([]interface{}{m.Column, m.MissingCount})
			}
			render(t, cfg.Output.DefaultFormat)
			return nil
		},
	}
}

func newColumnsCommand() *cobra.Command {
	var (
		numeric     bool
		categorical bool
	)

	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Show column types",
		Long: `Show every column with its current and suggested dtype. With
--numeric or --categorical, show only that family with its value
ranges or categories.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sess, err := newSession(cfg, newConsoleBus())
			if err != nil {
				return err
			}

			switch {
			case numeric:
				cols, err := sess.NumericColumns(cmd.Context())
				if err != nil {
					return err
				}
				if cfg.Output.DefaultFormat == "json" {
					return printJSON(cols)
				}
				names := make([]string, 0, len(cols))
				for name := range cols {
					names = append(names, name)
				}
				sort.Strings(names)

				t := newTable("Column", "Min", "Max")
				for _, name := range names {
					t.AppendRow([]interface{}{name, cols[name].Min, cols[name].Max})
				}
				render(t, cfg.Output.DefaultFormat)

			case categorical:
				cols, err := sess.CategoricalColumns(cmd.Context())
				if err != nil {
					return err
				}
				if cfg.Output.DefaultFormat == "json" {
					return printJSON(cols)
				}
				names := make([]string, 0, len(cols))
				for name := range cols {
					names = append(names, name)
				}
				sort.Strings(names)

				t := newTable("Column", "Values")
				for _, name := range names {
					t.AppendRow([]interface{}{name, fmt.Sprintf("%v", cols[name])})
				}
				render(t, cfg.Output.DefaultFormat)

			default:
				cols, err := sess.ColumnTypes(cmd.Context())
				if err != nil {
					return err
				}
				if cfg.Output.DefaultFormat == "json" {
					return printJSON(cols)
				}

				t := newTable("Column", "Current Type", "Suggested Type")
				for _, col := range cols {
					t.AppendRow([]interface{}{col.Name, col.CurrentType, col.SuggestedType})
				}
				render(t, cfg.Output.DefaultFormat)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&numeric, "numeric", false, "show numeric columns with min/max ranges")
	cmd.Flags().BoolVar(&categorical, "categorical", false, "show categorical columns with their values")
	return cmd
}
