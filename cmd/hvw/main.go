package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/XclusivVv/hyprland-video-wallpapers/internal/config"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/daemon"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/hypr"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/ipc"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/migrate"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/player"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/tiling"
	"github.com/XclusivVv/hyprland-video-wallpapers/internal/wallpaper"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "retile":
		os.Exit(runRetile(os.Args[2:]))
	case "pause":
		os.Exit(runSetPaused(os.Args[2:], true))
	case "play":
		os.Exit(runSetPaused(os.Args[2:], false))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hvw <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Start the wallpaper daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  retile              Run a layout pass via the daemon")
	fmt.Fprintln(w, "  pause <workspace>   Pause the player on a workspace")
	fmt.Fprintln(w, "  play <workspace>    Resume the player on a workspace")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'hvw <command> --help' for command-specific options.")
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/hyprland-video-wallpapers/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hvw run [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the wallpaper daemon in the foreground.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	configPath := *path
	if configPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			log.Fatalf("Cannot resolve config path: %v", err)
		}
		configPath = p
	}

	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (%d wallpaper(s), gap: %dpx)", len(cfg.Wallpapers), cfg.GapSize)

	hyprClient, err := hypr.NewClient()
	if err != nil {
		log.Fatalf("Cannot connect to Hyprland: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	supervisor := player.NewSupervisor(cfg, hyprClient, logger)
	tiler := tiling.NewTiler(cfg, hyprClient)
	migrator := migrate.NewCoordinator(cfg, hyprClient, logger)
	images := wallpaper.NewManager(cfg, hyprClient, logger)

	reload := func() (*config.Config, error) {
		return config.LoadFromPath(configPath)
	}
	reactor := daemon.NewReactor(cfg, hyprClient, supervisor, tiler, migrator, images, reload, logger)

	ipcServer, err := ipc.NewServer(reactor)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go handleSignals(sigCh, reactor.Reload, cancel, os.Exit)

	go watchConfig(ctx, configPath, reactor)

	log.Println("hvw daemon started")
	if err := reactor.Run(ctx); err != nil {
		log.Printf("Daemon exited with error: %v", err)
		return 1
	}
	return 0
}

// handleSignals drives reload and shutdown from the daemon's signal channel.
// The loop never stops consuming: a second interrupt while teardown is still
// running forces an immediate exit.
func handleSignals(sigCh <-chan os.Signal, reload func() error, cancel func(), exit func(int)) {
	interrupted := false
	for sig := range sigCh {
		switch sig {
		case syscall.SIGHUP:
			log.Println("Received SIGHUP, reloading config...")
			if err := reload(); err != nil {
				log.Printf("Config reload failed: %v", err)
			}
		case os.Interrupt, syscall.SIGTERM:
			if interrupted {
				log.Println("Second interrupt, exiting immediately")
				exit(1)
				continue
			}
			interrupted = true
			log.Println("Shutting down wallpaper daemon...")
			cancel()
		}
	}
}

// watchConfig reloads the daemon when the config file changes on disk.
// Editors replace files instead of writing in place, so the parent directory
// is watched and events are matched against the file name.
func watchConfig(ctx context.Context, path string, reactor *daemon.Reactor) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("Config watching disabled: %v", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		log.Printf("Config watching disabled: %v", err)
		return
	}

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Name != path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			// Debounce: editors fire several events per save.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(300*time.Millisecond, func() {
				log.Println("Config file changed, reloading...")
				if err := reactor.Reload(); err != nil {
					log.Printf("Config reload failed: %v", err)
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Config watcher error: %v", err)
		}
	}
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hvw status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_state:     %s\n", status.DaemonState)
	fmt.Printf("active_workspace: %d\n", status.ActiveWorkspace)
	fmt.Printf("uptime_seconds:   %d\n", status.UptimeSeconds)
	for _, slot := range status.Slots {
		fmt.Printf("- workspace %d: %s (%s, pid %d)\n", slot.Workspace, slot.State, slot.MediaPath, slot.PID)
	}
	return 0
}

func runRetile(args []string) int {
	fs := flag.NewFlagSet("retile", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	workspace := fs.Int("workspace", 0, "Workspace to tile (default: active workspace)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hvw retile [--workspace N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run a layout pass on a workspace via the daemon.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "retile takes no positional arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.Retile(*workspace); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runSetPaused(args []string, paused bool) int {
	name := "play"
	if paused {
		name = "pause"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hvw %s <workspace>\n", name)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s requires <workspace>\n", name)
		fs.Usage()
		return 2
	}
	workspace, err := strconv.Atoi(fs.Arg(0))
	if err != nil || workspace < 1 {
		fmt.Fprintf(os.Stderr, "Invalid workspace: %s\n", fs.Arg(0))
		return 2
	}

	client := ipc.NewClient()
	if err := client.SetPaused(workspace, paused); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hvw reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the running daemon to re-read its configuration.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  hvw config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  hvw config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/hyprland-video-wallpapers/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var err error
		if *path == "" {
			_, err = config.Load()
		} else {
			_, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/hyprland-video-wallpapers/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var cfg *config.Config
		if *printDefaults {
			cfg = config.DefaultConfig()
		} else {
			var err error
			if *path == "" {
				cfg, err = config.Load()
			} else {
				cfg, err = config.LoadFromPath(*path)
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}
