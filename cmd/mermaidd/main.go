// Command mermaidd serves the Mermaid rendering tool over HTTP,
// and the rendered images from the public storage folder.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/effective-security/gogentic-mermaid/callbacks"
	"github.com/effective-security/gogentic-mermaid/internal/server"
	"github.com/effective-security/gogentic-mermaid/pkg/llmutils"
	"github.com/effective-security/gogentic-mermaid/pkg/mermaid"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/gogentic-mermaid", "mermaidd")

func main() {
	cfgFile := flag.String("cfg", "", "path to the config file")
	listen := flag.String("listen", "", "listen address, overrides the config")
	storage := flag.String("storage", "", "storage root folder, overrides the config")
	debug := flag.Bool("debug", false, "enable debug logging")
	trace := flag.Bool("trace", false, "print tool calls with input and output to stdout")
	printConfig := flag.Bool("print-config", false, "print the effective config and exit")
	flag.Parse()

	xlog.SetFormatter(xlog.NewStringFormatter(os.Stdout))
	if *debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		xlog.SetGlobalLogLevel(xlog.INFO)
	}

	f := flags{
		cfgFile:     *cfgFile,
		listen:      *listen,
		storage:     *storage,
		trace:       *trace,
		printConfig: *printConfig,
	}
	if err := run(f, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	cfgFile     string
	listen      string
	storage     string
	trace       bool
	printConfig bool
}

func run(f flags, out io.Writer) error {
	cfg, err := server.LoadConfig(f.cfgFile)
	if err != nil {
		return err
	}
	if f.listen != "" {
		cfg.ListenAddr = f.listen
	}
	if f.storage != "" {
		cfg.Mermaid.StorageRoot = f.storage
	}
	if f.printConfig {
		_, err = fmt.Fprint(out, llmutils.ToYAML(cfg.WithDefaults()))
		return err
	}

	renderer, err := mermaid.New(&cfg.Mermaid)
	if err != nil {
		return err
	}
	logger.KV(xlog.INFO,
		"status", "renderer",
		"executable", renderer.Executable(),
		"search_dirs", renderer.SearchDirs(),
	)

	var opts []server.Option
	if f.trace {
		opts = append(opts, server.WithCallback(callbacks.NewPrinter(out, callbacks.ModeVerbose)))
	}
	srv, err := server.New(cfg, renderer, opts...)
	if err != nil {
		return err
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Listen()
	}()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-errs:
		return err
	case sig := <-sigint:
		logger.KV(xlog.WARNING, "status", "shutdown", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = srv.Shutdown(ctx); err != nil {
		return err
	}
	logger.KV(xlog.INFO, "status", "stopped")
	return nil
}
