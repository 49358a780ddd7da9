package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/maxsklar/newmap.ai.nyu/internal/config"
	"github.com/maxsklar/newmap.ai.nyu/internal/session"

	"github.com/mattn/go-isatty"
)

const usage = `usage: newmap [flags] [file.yaml]
       newmap [flags] env [name...]

Reads YAML documents, one command each, from file.yaml or stdin:

  {let: n, type: {index: 3}, value: 2}
  {expr: {apply: {func: {param: m}, input: 0}}}

Flags:
`

func main() {
	log.SetFlags(0)          // Disable timestamp in logs
	log.SetOutput(os.Stderr) // Results go to stdout

	configPath := flag.String("config", "", "YAML config file")
	driver := flag.String("driver", "", "command log driver: sqlite or mysql (overrides config)")
	dsn := flag.String("db", "", "command log data source name (overrides config)")
	channel := flag.String("channel", config.DefaultChannel, "session channel")
	user := flag.String("user", config.DefaultUser, "session user")
	asYAML := flag.Bool("yaml", false, "print results as YAML")
	verbose := flag.Bool("v", false, "trace commands to stderr")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}
	if *driver != "" {
		cfg.Store.Driver = *driver
	}
	if *dsn != "" {
		cfg.Store.DSN = *dsn
	}

	ctx := context.Background()
	store, err := session.OpenStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Store error: %s", err)
	}
	defer store.Close()

	var logger *log.Logger
	if *verbose {
		logger = log.New(os.Stderr, "newmap: ", 0)
	}
	sess, err := session.Open(ctx, store, *channel, *user, cfg.Limits, logger)
	if err != nil {
		log.Fatalf("Session error: %s", err)
	}

	args := flag.Args()
	if len(args) > 0 && args[0] == "env" {
		if err := printEnv(os.Stdout, sess, args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		return
	}
	if len(args) > 1 {
		flag.Usage()
		os.Exit(2)
	}

	input := io.Reader(os.Stdin)
	if len(args) == 1 {
		if !isSourceFile(args[0]) {
			log.Printf("Warning: %s is not a %s file", args[0], strings.Join(config.SourceFileExtensions, " or "))
		}
		f, err := os.Open(args[0])
		if err != nil {
			log.Fatalf("Error reading source file: %s", err)
		}
		defer f.Close()
		input = f
	} else if isTerminal(os.Stdin) {
		fmt.Fprintln(os.Stderr, "Enter YAML commands separated by '---'; end with Ctrl-D.")
	}

	r := &runner{
		sess:   sess,
		out:    os.Stdout,
		errOut: os.Stderr,
		asYAML: *asYAML,
		color:  isTerminal(os.Stderr),
	}
	if failed := r.run(ctx, input); failed > 0 {
		store.Close()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(path)
}

// isSourceFile checks if a file has a recognized source extension
func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
