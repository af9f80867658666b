package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/olekukonko/tablewriter"

	"github.com/koustreak/querytalk/internal/config"
	"github.com/koustreak/querytalk/internal/database"
	"github.com/koustreak/querytalk/internal/errs"
	"github.com/koustreak/querytalk/internal/exec"
	"github.com/koustreak/querytalk/internal/filestore"
	fsminio "github.com/koustreak/querytalk/internal/filestore/minio"
	"github.com/koustreak/querytalk/internal/ingest"
	"github.com/koustreak/querytalk/internal/logger"
	"github.com/koustreak/querytalk/internal/nlq"
	"github.com/koustreak/querytalk/internal/sample"
	"github.com/koustreak/querytalk/internal/schema"
)

const helpText = `Commands:
  samples [keyword]   show generated example queries, optionally containing a clause keyword
  run <n>             execute sample query number n from the last listing
  schema              show the connected tables and columns
  load <dir>          load every CSV file in a local directory as tables
  load                load CSV datasets from the configured object store
  drop                drop every table in the connected schema
  help                show this help
  exit                leave the console

Anything else is interpreted as a question about the data, e.g.
  show orders where amount is greater than 100`

type repl struct {
	db          database.DB
	interp      *nlq.Interpreter
	generator   *sample.Generator
	cfg         *config.Config
	log         *logger.Logger
	lastSamples []sample.Sample
}

func (r *repl) run(ctx context.Context) error {
	rl, err := readline.New("querytalk> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("querytalk interactive console. Type 'help' for commands.")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cmd, arg := splitCommand(line)
		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			fmt.Println(helpText)
		case "samples":
			r.showSamples(ctx, arg)
		case "run":
			r.runSample(ctx, arg)
		case "schema":
			r.showSchema(ctx)
		case "load":
			r.loadDatasets(ctx, arg)
		case "drop":
			r.dropTables(ctx)
		default:
			r.ask(ctx, line)
		}
	}
}

func splitCommand(line string) (cmd, arg string) {
	parts := strings.SplitN(line, " ", 2)
	cmd = strings.ToLower(parts[0])
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return cmd, arg
}

func (r *repl) ask(ctx context.Context, question string) {
	result, err := r.interp.Interpret(ctx, question)
	if err != nil {
		fmt.Println("error:", errorText(err))
		return
	}
	if result.SQL != "" {
		fmt.Println("SQL:", result.SQL)
	}
	if !result.OK {
		fmt.Println("could not answer:", result.Message)
		return
	}
	renderRows(result.Columns, result.Rows)
}

func (r *repl) showSamples(ctx context.Context, keyword string) {
	var samples []sample.Sample
	var err error
	if keyword != "" {
		samples, err = r.generator.GenerateWithKeyword(ctx, keyword)
	} else {
		samples, err = r.generator.GenerateSet(ctx)
	}
	if err != nil {
		fmt.Println("error:", errorText(err))
		return
	}
	if len(samples) == 0 {
		fmt.Println("no example queries could be generated")
		return
	}

	r.lastSamples = samples
	for i, s := range samples {
		fmt.Printf("%d. %s\n   %s\n", i+1, s.Description, s.SQL)
	}
	fmt.Println("Use 'run <n>' to execute one of these.")
}

// runSample executes a query from the last 'samples' listing by its number.
func (r *repl) runSample(ctx context.Context, arg string) {
	if len(r.lastSamples) == 0 {
		fmt.Println("no samples listed yet; run 'samples' first")
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(r.lastSamples) {
		fmt.Printf("pick a number between 1 and %d\n", len(r.lastSamples))
		return
	}

	s := r.lastSamples[n-1]
	fmt.Println("SQL:", s.SQL)
	out := exec.Run(ctx, r.db, s.SQL)
	if !out.OK {
		fmt.Println("could not execute:", out.Message)
		return
	}
	renderRows(out.Columns, out.Rows)
}

func (r *repl) showSchema(ctx context.Context) {
	snap, err := schema.Take(ctx, r.db)
	if err != nil {
		fmt.Println("error:", errorText(err))
		return
	}
	for _, t := range snap.Tables {
		fmt.Println(t.Name)
		for _, c := range t.Columns {
			fmt.Printf("  %-24s %s\n", c.Name, c.DataType)
		}
	}
}

func (r *repl) loadDatasets(ctx context.Context, dir string) {
	src, cleanup, err := r.datasetSource(ctx, dir)
	if err != nil {
		fmt.Println("error:", errorText(err))
		return
	}
	defer cleanup()

	if err := ingest.NewLoader(r.db, src, r.log).Load(ctx); err != nil {
		fmt.Println("error:", errorText(err))
		return
	}
	fmt.Println("datasets loaded")
}

func (r *repl) datasetSource(ctx context.Context, dir string) (ingest.Source, func(), error) {
	if dir != "" {
		return ingest.DirSource{Dir: dir}, func() {}, nil
	}
	if r.cfg.Storage.Endpoint == "" {
		return nil, nil, errs.New(errs.ErrKindInvalidInput,
			"no directory given and no object store configured")
	}

	store, err := fsminio.New(ctx, &filestore.Config{
		Endpoint:  r.cfg.Storage.Endpoint,
		AccessKey: r.cfg.Storage.AccessKey,
		SecretKey: r.cfg.Storage.SecretKey,
		UseSSL:    r.cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, nil, err
	}
	src := ingest.ObjectSource{
		Store:  store,
		Bucket: r.cfg.Storage.Bucket,
		Prefix: r.cfg.Storage.Prefix,
	}
	return src, func() { store.Close() }, nil
}

func (r *repl) dropTables(ctx context.Context) {
	if err := ingest.NewLoader(r.db, nil, r.log).DropAll(ctx); err != nil {
		fmt.Println("error:", errorText(err))
		return
	}
	fmt.Println("all tables dropped")
}

// renderRows prints a result set as an aligned table. Column order follows
// the statement's projection; cell values are stringified as scanned.
func renderRows(columns []string, rows []map[string]any) {
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return
	}
	if len(columns) == 0 {
		columns = columnsFromRow(rows[0])
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(columns)
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			if v := row[col]; v != nil {
				cells[i] = fmt.Sprintf("%v", v)
			} else {
				cells[i] = "NULL"
			}
		}
		table.Append(cells)
	}
	table.Render()
	fmt.Printf("(%d rows)\n", len(rows))
}

func columnsFromRow(row map[string]any) []string {
	cols := make([]string, 0, len(row))
	for col := range row {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func errorText(err error) string {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
