package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-vmctx/ctxblock"
	"github.com/wippyai/wasm-vmctx/layout"
	"github.com/wippyai/wasm-vmctx/module"
)

type options struct {
	pointerSize uint8
	verbose     bool
	noValidate  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "vmctx",
		Short:         "Inspect the VM context block layout of a WebAssembly module",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !layout.PointerSize(opts.pointerSize).Valid() {
				return fmt.Errorf("invalid pointer size %d: want 4 or 8", opts.pointerSize)
			}
			if opts.verbose {
				logger, err := zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("create logger: %w", err)
				}
				layout.SetLogger(logger)
				module.SetLogger(logger)
				ctxblock.SetLogger(logger)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.Uint8VarP(&opts.pointerSize, "pointer-size", "p", 8, "Target pointer width in bytes (4 or 8).")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log layout and scan details to stderr.")
	flags.BoolVar(&opts.noValidate, "no-validate", false, "Scan the module without validating it first.")

	root.AddCommand(
		newRegionsCmd(opts),
		newRecordsCmd(opts),
		newOffsetCmd(opts),
		newBrowseCmd(opts),
	)
	return root
}

func newRegionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "regions <file.wasm>",
		Short: "Print the region table and total context size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadLayout(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			regions, err := l.Regions()
			if err != nil {
				return err
			}
			return printRegions(cmd.OutOrStdout(), regions)
		},
	}
}

func newRecordsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "Print record sizes and field offsets for the pointer width",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := layout.New(layout.Counts{}, layout.PointerSize(opts.pointerSize))
			records := make([]layout.Record, 0, len(layout.RecordKinds()))
			for _, k := range layout.RecordKinds() {
				records = append(records, l.Record(k))
			}
			return printRecords(cmd.OutOrStdout(), records)
		},
	}
}

func newOffsetCmd(opts *options) *cobra.Command {
	var fieldName string
	cmd := &cobra.Command{
		Use:   "offset <file.wasm> <region> <index>",
		Short: "Print the context block offset of one record or field",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			region, ok := layout.ParseRegion(args[1])
			if !ok {
				return fmt.Errorf("unknown region %q (want one of %s)", args[1], regionNames())
			}
			index, err := strconv.ParseUint(args[2], 0, 32)
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[2], err)
			}

			l, err := loadLayout(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}

			var off layout.Offset
			if fieldName == "" {
				off, err = l.OffsetOf(region, uint32(index))
			} else {
				field, ok := layout.ParseField(fieldName)
				if !ok {
					return fmt.Errorf("unknown field %q", fieldName)
				}
				off, err = l.FieldOffsetOf(region, uint32(index), field)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), off)
			return err
		},
	}
	cmd.Flags().StringVarP(&fieldName, "field", "f", "", "Field within the record, e.g. vmctx or current_length.")
	return cmd
}

func newBrowseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "browse <file.wasm>",
		Short: "Explore regions and offsets interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(opts, args[0])
		},
	}
}

func loadLayout(ctx context.Context, opts *options, path string) (*layout.Layout, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var info *module.Info
	if opts.noValidate {
		info, err = module.Scan(data)
	} else {
		info, err = module.Load(ctx, data)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return layout.New(info, layout.PointerSize(opts.pointerSize)), nil
}

func regionNames() string {
	var names []string
	for _, r := range layout.AllRegions() {
		names = append(names, r.String())
	}
	return strings.Join(names, ", ")
}
