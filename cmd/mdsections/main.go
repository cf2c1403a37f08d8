package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mdsections/internal"
	"mdsections/internal/config"
	"mdsections/internal/pipeline"
	"mdsections/internal/sections"
	"mdsections/internal/storage"
	"mdsections/internal/tabular"
)

func main() {
	cfg, err := config.Load()
	must(err)
	log := cfg.NewLogger(os.Stderr)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "columns":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		src := addSourceFlags(fs, cfg)
		_ = fs.Parse(os.Args[2:])
		opts, err := src.options()
		must(err)
		table, err := pipeline.LoadSource(src.require(), opts)
		must(err)
		for _, c := range table.Columns() {
			fmt.Println(c)
		}
	case "split":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "markdown file (stdin when empty)")
		plain := fs.Bool("plain", false, "strip inline markdown from bodies")
		_ = fs.Parse(os.Args[2:])
		text, err := readInput(*input)
		must(err)
		m := sections.Split(text)
		if *plain {
			m = m.MapBodies(sections.PlainText)
		}
		blob, err := json.MarshalIndent(m, "", "  ")
		must(err)
		fmt.Println(string(blob))
	case "export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		src := addSourceFlags(fs, cfg)
		column := fs.String("column", cfg.Column, "column holding the markdown text")
		var headings headingList
		fs.Var(&headings, "heading", "heading to export as a column (repeatable)")
		require := fs.String("require", "", "keep only records with a non-empty section for this heading")
		plain := fs.Bool("plain", false, "strip inline markdown from section bodies")
		out := fs.String("out", "", "output path .xlsx|.csv|.json|.db")
		save := fs.Bool("save", false, "also record the run in DB_PATH")
		_ = fs.Parse(os.Args[2:])

		source := src.require()
		if strings.TrimSpace(*out) == "" {
			base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
			*out = filepath.Join(cfg.OutputDir, base+"_sections.xlsx")
		}
		opts, err := src.options()
		must(err)

		store, err := pipeline.Load(source, *column, opts, log)
		must(err)
		records := store.Records()
		if strings.TrimSpace(*require) != "" {
			records = store.Filter(*require)
			log.Info("filtered by section presence", "heading", *require, "kept", len(records), "total", len(store.Records()))
		}
		frame := store.Export(records, headings)
		if *plain {
			frame = frame.MapValues(sections.PlainText)
		}

		meta := storage.RunMeta{Source: source, Column: store.Column(), Headings: headings}
		must(pipeline.ExportFrame(frame, *out, meta))
		fmt.Printf("exported %d rows to %s\n", len(frame.Rows), *out)
		if *save {
			runID, err := pipeline.ExportFrameToSQLite(frame, cfg.DBPath, meta)
			must(err)
			fmt.Printf("saved run %s to %s\n", runID, cfg.DBPath)
		}
	case "runs":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dbPath := fs.String("db", cfg.DBPath, "sqlite database")
		limit := fs.Int("limit", 20, "max runs")
		_ = fs.Parse(os.Args[2:])
		db, err := storage.Open(*dbPath)
		must(err)
		defer db.Close()
		runs, err := db.ListRuns(*limit)
		must(err)
		for _, r := range runs {
			fmt.Printf("%s  %s  source=%s column=%s rows=%d columns=%s\n", r.ID, r.CreatedAt, r.Source, r.Column, r.RowCount, strings.Join(r.Columns, ","))
		}
	case "show":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dbPath := fs.String("db", cfg.DBPath, "sqlite database")
		runID := fs.String("run", "", "run id")
		out := fs.String("out", "", "output path .xlsx|.csv|.json")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*runID) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--run and --out are required"))
		}
		db, err := storage.Open(*dbPath)
		must(err)
		defer db.Close()
		run, err := db.GetRun(*runID)
		must(err)
		if run == nil {
			must(fmt.Errorf("run not found: %s", *runID))
		}
		frame, err := db.LoadFrame(run.ID)
		must(err)
		must(pipeline.ExportFrame(frame, *out, storage.RunMeta{Source: run.Source, Column: run.Column, Headings: run.Headings}))
		fmt.Printf("exported run %s rows=%d to %s\n", *runID, len(frame.Rows), *out)
	default:
		usage()
		os.Exit(1)
	}
}

type sourceFlags struct {
	path      *string
	kind      *string
	encoding  *string
	delimiter *string
	sheet     *string
	table     *int
}

func addSourceFlags(fs *flag.FlagSet, cfg config.Config) *sourceFlags {
	return &sourceFlags{
		path:      fs.String("source", "", "input file .csv|.tsv|.xlsx|.html"),
		kind:      fs.String("type", "", "csv|xlsx|html (default from extension)"),
		encoding:  fs.String("encoding", cfg.Encoding, "character encoding of csv/html sources"),
		delimiter: fs.String("delimiter", cfg.Delimiter, "csv delimiter"),
		sheet:     fs.String("sheet", cfg.Sheet, "xlsx sheet name (default first)"),
		table:     fs.Int("table", 0, "html table index"),
	}
}

func (s *sourceFlags) require() string {
	if strings.TrimSpace(*s.path) == "" {
		must(fmt.Errorf("--source is required"))
	}
	return *s.path
}

func (s *sourceFlags) options() (tabular.Options, error) {
	delim, err := config.ParseDelimiter(*s.delimiter)
	if err != nil {
		return tabular.Options{}, err
	}
	if *s.table < 0 {
		return tabular.Options{}, fmt.Errorf("invalid --table %d: must be 0 or greater", *s.table)
	}
	opts := tabular.Options{
		Encoding:   *s.encoding,
		Delimiter:  delim,
		Sheet:      *s.sheet,
		TableIndex: *s.table,
	}
	switch kind := internal.SourceKind(strings.ToLower(*s.kind)); kind {
	case "":
	case internal.SourceCSV, internal.SourceXLSX, internal.SourceHTML:
		opts.Kind = kind
	default:
		return tabular.Options{}, fmt.Errorf("unsupported source type: %s", *s.kind)
	}
	return opts, nil
}

type headingList []string

func (h *headingList) String() string { return strings.Join(*h, ",") }

func (h *headingList) Set(v string) error {
	*h = append(*h, v)
	return nil
}

func readInput(path string) (string, error) {
	if path == "" {
		blob, err := io.ReadAll(os.Stdin)
		return string(blob), err
	}
	blob, err := os.ReadFile(path)
	return string(blob), err
}

func usage() {
	fmt.Println("usage: mdsections <command>")
	fmt.Println("commands:")
	fmt.Println("  columns --source=issues.csv")
	fmt.Println("  split [--input=notes.md] [--plain]")
	fmt.Println("  export --source=issues.csv [--column=description] [--heading=Notes]... [--require=Notes] [--plain] [--save] --out=./out/sections.xlsx")
	fmt.Println("  runs [--db=./data/runs.db] [--limit=20]")
	fmt.Println("  show --run=<id> --out=./out/run.csv")
	fmt.Println("source flags: --type=csv|xlsx|html --encoding=utf-8 --delimiter=, --sheet=Sheet1 --table=0")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
