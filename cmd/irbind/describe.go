package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"irbind/internal/trace"
	"irbind/internal/typedesc"
	"irbind/internal/typeparse"
	"irbind/irtype"
)

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <type-expr>",
		Short: "Parse an LLVM type expression and describe its layout",
		Long: `describe parses a type in LLVM assembly syntax, such as "i32 (ptr, ...)",
"[4 x { i8, double }]" or "%node = type { i32, ptr }", builds it in a fresh
context, and prints its structure with sizes and alignments.`,
		Example: `  irbind describe '{ i8, i32 }'
  irbind describe --format msgpack -o pair.mp '<{ i8, i32 }>'`,
		Args: cobra.ExactArgs(1),
		RunE: runDescribe,
	}
	cmd.Flags().String("format", "", "output format (table|text|msgpack, default from config)")
	cmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	cmd.Flags().Bool("cache", false, "reuse and store descriptions in the disk cache")
	cmd.Flags().Int("max-type-width", -1, "truncate the TYPE column, 0 for no limit (default from config)")
	return cmd
}

func runDescribe(cmd *cobra.Command, args []string) error {
	s, cleanup, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	expr := strings.TrimSpace(args[0])
	format := s.cfg.Describe.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format") //nolint:errcheck
	}
	switch format {
	case "table", "text", "msgpack":
	default:
		return fmt.Errorf("unsupported format %q (must be table, text or msgpack)", format)
	}
	maxWidth := s.cfg.Describe.MaxTypeWidth
	if cmd.Flags().Changed("max-type-width") {
		maxWidth, _ = cmd.Flags().GetInt("max-type-width") //nolint:errcheck
	}
	useCache := s.cfg.Describe.Cache
	if cmd.Flags().Changed("cache") {
		useCache, _ = cmd.Flags().GetBool("cache") //nolint:errcheck
	}

	ctx, span := trace.Start(cmd.Context(), trace.ScopeDescribe, "describe")
	span.WithExtra("format", format)
	defer span.End("")

	var cache *typedesc.DiskCache
	if useCache {
		cache, err = openCache(s.cfg.Describe.CacheDir)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
	}

	doc, err := describeExpr(s, cache, expr)
	if err != nil {
		trace.Fail(ctx, trace.ScopeDescribe, "describe", err.Error())
		var perr *typeparse.Error
		if errors.As(err, &perr) {
			printCaret(cmd.ErrOrStderr(), expr, int(perr.Off))
		}
		return err
	}

	path, _ := cmd.Flags().GetString("output") //nolint:errcheck
	if path == "" {
		out := cmd.OutOrStdout()
		if format == "msgpack" && out == io.Writer(os.Stdout) && isTerminal(os.Stdout) {
			return fmt.Errorf("refusing to write msgpack to a terminal; use --output")
		}
		return s.timer.Measure("render", func() error {
			return renderDocument(out, s, doc, format, maxWidth)
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	err = s.timer.Measure("render", func() error {
		return renderDocument(f, s, doc, format, maxWidth)
	})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

func openCache(dir string) (*typedesc.DiskCache, error) {
	if dir != "" {
		return typedesc.OpenDiskCacheAt(dir)
	}
	return typedesc.OpenDiskCache("irbind")
}

// describeExpr returns the document for expr, from cache when possible.
// Every parse gets its own context, disposed before returning.
func describeExpr(s *session, cache *typedesc.DiskCache, expr string) (typedesc.Document, error) {
	engine := irtype.EngineName()
	if doc, ok, err := cache.Get(engine, expr); err != nil {
		s.log.Warn("cache read failed", zap.Error(err))
	} else if ok {
		s.log.Debug("cache hit", zap.String("expr", expr))
		return doc, nil
	}

	doc := typedesc.Document{Schema: typedesc.SchemaVersion, Engine: engine, Expr: expr}
	err := s.timer.Measure("describe", func() error {
		return irtype.WithContext(func(c irtype.Context) error {
			t, err := typeparse.Parse(c, expr)
			if err != nil {
				return err
			}
			doc.Root = typedesc.Describe(t)
			return nil
		})
	})
	if err != nil {
		return typedesc.Document{}, fmt.Errorf("describe %q: %w", expr, err)
	}
	if err := cache.Put(doc); err != nil {
		s.log.Warn("cache write failed", zap.Error(err))
	}
	return doc, nil
}

func renderDocument(out io.Writer, s *session, doc typedesc.Document, format string, maxWidth int) error {
	switch format {
	case "msgpack":
		data, err := typedesc.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case "text":
		_, err := fmt.Fprintln(out, describeLine(doc.Root))
		return err
	default:
		if _, err := fmt.Fprintln(out, s.heading(doc.Root.Text)); err != nil {
			return err
		}
		return typedesc.WriteTable(out, doc.Root, maxWidth)
	}
}

// describeLine is the one-line summary used by the text format.
func describeLine(d typedesc.Descriptor) string {
	var sb strings.Builder
	sb.WriteString(d.Text)
	sb.WriteString(": ")
	sb.WriteString(d.Kind)
	switch {
	case d.Sized && d.Overflow:
		fmt.Fprintf(&sb, ", size overflows 64 bits, align %d", d.Align)
	case d.Sized:
		fmt.Fprintf(&sb, ", size %d, align %d", d.Size, d.Align)
	default:
		sb.WriteString(", unsized")
	}
	switch n := len(d.Elems); n {
	case 0:
	case 1:
		sb.WriteString(", 1 component")
	default:
		fmt.Fprintf(&sb, ", %d components", n)
	}
	return sb.String()
}

// printCaret shows src with a marker under byte offset off.
func printCaret(w io.Writer, src string, off int) {
	off = min(max(off, 0), len(src))
	pad := strings.Repeat(" ", runewidth.StringWidth(src[:off]))
	fmt.Fprintf(w, "  %s\n  %s%s\n", src, pad, failColor.Sprint("^"))
}
