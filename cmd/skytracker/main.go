package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/JasperJeuken/SkyTracker/pkg/config"
	"github.com/JasperJeuken/SkyTracker/pkg/skyapi"
)

var (
	// Version information (set by build flags)
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("skytracker version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client := skyapi.NewClient(skyapi.Config{
		BaseURL:           cfg.API.BaseURL,
		APIKey:            cfg.API.APIKey,
		Timeout:           time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	})

	app := NewApp(cfg, client)
	if err := app.Run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

// printHelp prints usage information
func printHelp() {
	fmt.Println("skytracker - Live aircraft map for the terminal")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  skytracker [options]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -config string")
	fmt.Println("        Path to configuration file (default: configs/config.json)")
	fmt.Println("  -version")
	fmt.Println("        Show version information")
	fmt.Println("  -help")
	fmt.Println("        Show this help message")
	fmt.Println()
	fmt.Println("KEYBOARD SHORTCUTS:")
	fmt.Println("  Navigation:")
	fmt.Println("    ↑/↓ or j/k     Select aircraft")
	fmt.Println("    w/a/s/d, ←/→   Pan map")
	fmt.Println()
	fmt.Println("  Actions:")
	fmt.Println("    ENTER          Open details for selected aircraft")
	fmt.Println("    ESC            Close details / deselect")
	fmt.Println()
	fmt.Println("  Zoom:")
	fmt.Println("    +/-            Zoom in/out")
	fmt.Println("    0              Reset view")
	fmt.Println()
	fmt.Println("  Control:")
	fmt.Println("    q or Ctrl+C    Quit application")
}
