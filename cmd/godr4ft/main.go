package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/malexanderboyd/pwr9-cubeflow/internal"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/config"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/director"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/format"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/replay"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/storage"
)

const usage = `usage: godr4ft [flags] <command>

commands:
  migrate   apply database migrations
  ratings   import card ratings from a JSON object of name -> rating
  create    deal a new draft from a JSON card list and print its id
  preview   print the expected copies per pack of each card and a sample first pack
  sealed    deal sealed pools from a JSON card list
  serve     run a stored draft over websockets
  export    replay stored drafts into JSON lines of training rows
`

func main() {
	log.SetFlags(log.Lshortfile)

	configPath := flag.String("config", "godr4ft.toml", "path to the TOML configuration file")
	port := flag.Int("port", 0, "the port the server will open a socket server on (overrides config)")
	draftID := flag.String("draft", "", "draft id for serve")
	poolPath := flag.String("pool", "", "JSON card list for create")
	owner := flag.String("owner", "", "drafter name for create")
	ratingsPath := flag.String("ratings", "", "JSON ratings file for ratings")
	outPath := flag.String("out", "", "output file for export (default stdout)")
	pickTimer := flag.Duration("pick-timer", 0, "force a pick after this long (serve)")
	formatPath := flag.String("format", "", "JSON format document for create and preview (default: a standard draft from config)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	// A missing .env file is fine; the process environment still applies.
	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalln("cannot load config:", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalln("cannot apply environment:", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if err := internal.ConfigureLogger(cfg.Log.Level, cfg.Log.Development); err != nil {
		log.Fatalln("cannot configure logger:", err)
	}
	logger := internal.GetLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// These only read a card list, so they run without a database.
	if cmd := flag.Arg(0); cmd == "preview" || cmd == "sealed" {
		if cmd == "preview" {
			err = previewFormat(cfg, *poolPath, *formatPath, *outPath)
		} else {
			err = sealedPools(cfg, *poolPath, *outPath)
		}
		if err != nil {
			logger.Fatalw("command failed", "command", cmd, "error", err)
		}
		return
	}

	dbCfg := storage.DefaultConfig(cfg.Database.Path)
	dbCfg.BusyTimeout = cfg.BusyTimeout()
	dbCfg.AutoMigrate = cfg.Database.AutoMigrate || flag.Arg(0) == "migrate"
	db, err := storage.Open(dbCfg)
	if err != nil {
		logger.Fatalw("cannot open database", "path", cfg.Database.Path, "error", err)
	}
	defer db.Close()

	switch flag.Arg(0) {
	case "migrate":
		logger.Infow("database is up to date", "path", cfg.Database.Path)
	case "ratings":
		err = importRatings(ctx, db, *ratingsPath)
	case "create":
		err = createDraft(ctx, cfg, db, *poolPath, *formatPath, *owner)
	case "serve":
		err = serveDraft(ctx, cfg, db, *draftID, *pickTimer)
	case "export":
		err = exportDrafts(ctx, cfg, db, *outPath)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatalw("command failed", "command", flag.Arg(0), "error", err)
	}
}

func readJSON(path string, v interface{}) error {
	if path == "" {
		return fmt.Errorf("no input file given")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func importRatings(ctx context.Context, db *storage.DB, path string) error {
	var ratings game.Ratings
	if err := readJSON(path, &ratings); err != nil {
		return err
	}
	if err := db.Ratings.Save(ctx, ratings); err != nil {
		return err
	}
	internal.GetLogger().Infow("imported ratings", "cards", len(ratings))
	return nil
}

// draftFormat reads a format document whose slot filters use the query
// language, or falls back to the configured standard draft.
func draftFormat(cfg *config.Config, path string) (game.DraftFormat, error) {
	if path == "" {
		return format.DefaultFormat(cfg.Draft.Packs, cfg.Draft.CardsPerPack), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return game.DraftFormat{}, err
	}
	f, err := format.ParseJSON(data, format.Query)
	if err != nil {
		return game.DraftFormat{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// openOut returns stdout when path is empty.
func openOut(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func createDraft(ctx context.Context, cfg *config.Config, db *storage.DB, poolPath, formatPath, owner string) error {
	var pool []game.Card
	if err := readJSON(poolPath, &pool); err != nil {
		return err
	}
	f, err := draftFormat(cfg, formatPath)
	if err != nil {
		return err
	}
	draft, warnings, err := director.NewDraft(director.DraftOptions{
		Format:    f,
		Pool:      pool,
		Seats:     cfg.Draft.Seats,
		Owner:     owner,
		Multiples: cfg.Draft.Multiples,
	})
	if err != nil {
		return err
	}
	for _, w := range warnings {
		internal.GetLogger().Warnw("format warning", "draft", draft.ID, "warning", w)
	}
	if err := db.Drafts.Put(ctx, draft); err != nil {
		return err
	}
	fmt.Println(draft.ID)
	return nil
}

func serveDraft(ctx context.Context, cfg *config.Config, db *storage.DB, id string, pickTimer time.Duration) error {
	if id == "" {
		return fmt.Errorf("serve needs -draft")
	}
	draft, err := db.Drafts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	ratings, err := db.Ratings.ForDraft(ctx, draft)
	if err != nil {
		return err
	}
	session, err := director.NewSession(draft, db.Drafts, ratings, nil)
	if err != nil {
		return err
	}
	return director.StartDraftServer(ctx, session, cfg.Server.Port, pickTimer)
}

type cardAsfan struct {
	Name  string  `json:"name"`
	Asfan float64 `json:"asfan"`
}

type formatPreview struct {
	Title  string      `json:"title"`
	Asfans []cardAsfan `json:"asfans"`
	Pack   []string    `json:"pack"`
	// Grid is set for 9-card packs: three rows then three columns.
	Grid [][]string `json:"grid,omitempty"`
}

func previewFormat(cfg *config.Config, poolPath, formatPath, outPath string) error {
	var pool []game.Card
	if err := readJSON(poolPath, &pool); err != nil {
		return err
	}
	f, err := draftFormat(cfg, formatPath)
	if err != nil {
		return err
	}
	preview := formatPreview{Title: f.Title}

	compiler := &format.Compiler{}
	compiler.Asfans(f, pool)
	for _, card := range pool {
		if card.Asfan > 0 {
			preview.Asfans = append(preview.Asfans, cardAsfan{Name: card.Name, Asfan: card.Asfan})
		}
	}
	sort.SliceStable(preview.Asfans, func(i, j int) bool {
		return preview.Asfans[i].Asfan > preview.Asfans[j].Asfan
	})

	pack, err := format.SamplePack(f, pool, nil)
	if err != nil {
		return err
	}
	refs := make([]game.CardRef, len(pack))
	for i, card := range pack {
		preview.Pack = append(preview.Pack, card.Name)
		refs[i] = game.CardRef(i)
	}
	if lines, err := format.GridPack(refs); err == nil {
		for _, line := range lines {
			names := make([]string, len(line))
			for i, ref := range line {
				names[i] = pack[ref].Name
			}
			preview.Grid = append(preview.Grid, names)
		}
	}
	return writeJSON(outPath, preview)
}

func sealedPools(cfg *config.Config, poolPath, outPath string) error {
	var pool []game.Card
	if err := readJSON(poolPath, &pool); err != nil {
		return err
	}
	pools, err := format.SealedPools(pool, cfg.Draft.Seats, cfg.Draft.Packs*cfg.Draft.CardsPerPack, nil)
	if err != nil {
		return err
	}
	return writeJSON(outPath, pools)
}

func writeJSON(path string, v interface{}) error {
	out, closeOut, err := openOut(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func exportDrafts(ctx context.Context, cfg *config.Config, db *storage.DB, outPath string) error {
	out, closeOut, err := openOut(outPath)
	if err != nil {
		return err
	}
	defer closeOut()
	exporter := &replay.Exporter{
		Source:            db.Drafts,
		Concurrency:       cfg.Export.Concurrency,
		PageSize:          cfg.Export.PageSize,
		IncludeIncomplete: cfg.Export.IncludeIncomplete,
	}
	if cfg.Export.PagesPerSecond > 0 {
		exporter.Limiter = rate.NewLimiter(rate.Limit(cfg.Export.PagesPerSecond), 1)
	}
	_, err = exporter.Run(ctx, out)
	return err
}
