// Command htmlcore is a small CLI over the parsing pipeline: parse a
// file and print its tree (or an XML export), query it with a boolean
// expression, or watch it for changes and serve a live view.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/noxbrowser/htmlcore/devserver"
	"github.com/noxbrowser/htmlcore/diag"
	"github.com/noxbrowser/htmlcore/export"
	"github.com/noxbrowser/htmlcore/query"
	"github.com/noxbrowser/htmlcore/store"
	"github.com/noxbrowser/htmlcore/tokenizer"
	"github.com/noxbrowser/htmlcore/treebuilder"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "parse":
		err = runParse(os.Args[2:], logger)
	case "query":
		err = runQuery(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:], logger)
	default:
		err = runParse(os.Args[1:], logger)
	}
	if err != nil {
		logger.Error("htmlcore", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  htmlcore <file>")
	fmt.Fprintln(os.Stderr, "  htmlcore parse <file> [--format=tree|xml] [--diagnostics]")
	fmt.Fprintln(os.Stderr, "  htmlcore query <file> <expr>")
	fmt.Fprintln(os.Stderr, "  htmlcore watch <file> [--addr=127.0.0.1:8765]")
}

func parsePipeline(path string, reporter diag.Reporter) (*store.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st := store.New()
	tk := tokenizer.New(f)
	if reporter != nil {
		tk.SetReporter(reporter)
	}
	c := treebuilder.New()
	for {
		ev := c.PollNext(tk, st)
		if ev.Kind == treebuilder.Fatal {
			return st, ev.Err
		}
		if ev.Kind == treebuilder.Done {
			break
		}
	}
	return st, nil
}

func runParse(args []string, logger *slog.Logger) error {
	format := "tree"
	withDiagnostics := false
	var path string
	for _, a := range args {
		switch {
		case a == "--format=xml":
			format = "xml"
		case a == "--format=tree":
			format = "tree"
		case a == "--diagnostics":
			withDiagnostics = true
		case path == "":
			path = a
		}
	}
	if path == "" {
		usage()
		os.Exit(2)
	}

	var reporter diag.Reporter
	if withDiagnostics {
		reporter = diag.NewTextReporter(os.Stderr)
	}

	st, err := parsePipeline(path, reporter)
	if err != nil {
		return err
	}

	switch format {
	case "xml":
		doc, err := export.ExportXML(st)
		if err != nil {
			return err
		}
		doc.Indent(2)
		_, err = doc.WriteTo(os.Stdout)
		return err
	default:
		return export.Serialize(os.Stdout, st)
	}
}

func runQuery(args []string) error {
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}
	path, exprStr := args[0], args[1]

	st, err := parsePipeline(path, nil)
	if err != nil {
		return err
	}
	matches, err := query.Eval(st, exprStr)
	if err != nil {
		return err
	}
	for _, id := range matches {
		e, ok := st.GetElement(id)
		if !ok {
			continue
		}
		line := st.Text(e.Name())
		for _, attr := range st.Attrs(e.Attrs()) {
			line += fmt.Sprintf(" %s=%q", st.Text(attr.Name), st.Text(attr.Value))
		}
		fmt.Println(line)
	}
	return nil
}

func runWatch(args []string, logger *slog.Logger) error {
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}
	path := args[0]
	addr := "127.0.0.1:8765"
	for _, a := range args[1:] {
		if len(a) > len("--addr=") && a[:len("--addr=")] == "--addr=" {
			addr = a[len("--addr="):]
		}
	}

	logger.Info("watching file", "path", path, "address", "http://"+addr)
	srv := devserver.New(path, logger)
	return srv.Watch(addr, nil)
}
