package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	flag "github.com/spf13/pflag"

	"fastboard/appstate"
	"fastboard/config"
	"fastboard/connection"
	"fastboard/localdb"
	"fastboard/syncer"
)

const usage = `Usage: fastboard <command> [flags]

Commands:
  serve    run the sync server
  agent    run the device agent (local store + auto-sync)
  export   write a backup file of the local dataset
  import   replace the local dataset from a backup file
  reset    reset the local dataset to the seed data
`

func main() {
	cfg := config.Load()

	cmd := "serve"
	args := []string{}
	if len(os.Args) > 1 {
		cmd = os.Args[1]
		args = os.Args[2:]
	}

	switch cmd {
	case "serve":
		gin.SetMode(gin.ReleaseMode)
		connection.StartServer(cfg)
	case "agent":
		runAgent(cfg, args)
	case "export":
		runExport(cfg, args)
	case "import":
		runImport(cfg, args)
	case "reset":
		runReset(cfg)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
}

// openStore opens the local database, falling back to a transient
// in-memory store for the session if storage is unavailable.
func openStore(cfg *config.Config) localdb.Store {
	store, err := localdb.Open(cfg.DBPath)
	if err != nil {
		log.Printf("Error initializing local database: %v (using in-memory state)", err)
		return localdb.NewMemStore()
	}
	return store
}

func newManager(cfg *config.Config, seedFile string) *appstate.Manager {
	store := openStore(cfg)
	sync := syncer.New(cfg.ServerURL, cfg.PollInterval, cfg.HTTPTimeout)
	mgr := appstate.New(store, sync)
	mgr.SeedFile = seedFile
	return mgr
}

func runAgent(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("agent", flag.ExitOnError)
	seedFile := fs.String("seed", "", "JSON seed file used on first run")
	fs.Parse(args)

	mgr := newManager(cfg, *seedFile)
	if err := mgr.Load(); err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}

	total := 0
	for _, p := range mgr.Projects() {
		total += len(p.Tasks)
	}
	log.Printf("App ready with %d total tasks", total)

	mgr.StartSync()
	defer mgr.StopSync()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Println("Shutting down")
}

func runExport(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", defaultBackupName(), "backup file to write")
	fs.Parse(args)

	mgr := newManager(cfg, "")
	if err := mgr.Load(); err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}
	if err := mgr.ExportData(*out); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	fmt.Printf("Exported to %s\n", *out)
}

func runImport(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	in := fs.String("in", "", "backup file to import")
	fs.Parse(args)
	if *in == "" {
		log.Fatal("import requires --in <file>")
	}

	mgr := newManager(cfg, "")
	if err := mgr.Load(); err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}
	if err := mgr.ImportData(*in); err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	fmt.Printf("Imported %s\n", *in)
}

func runReset(cfg *config.Config) {
	mgr := newManager(cfg, "")
	if err := mgr.Load(); err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}
	if err := mgr.ResetToInitialData(); err != nil {
		log.Fatalf("Reset failed: %v", err)
	}
	fmt.Println("Reset completed")
}

func defaultBackupName() string {
	return fmt.Sprintf("fastboard-backup-%s.json", time.Now().Format("2006-01-02"))
}
