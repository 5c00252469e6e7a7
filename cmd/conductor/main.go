// Command conductor broadcasts a song to every device in the orchestra.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lightorchestra-go/pkg/orchestra"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	picosPath := flag.String("picos", "", "path to file with one device address per line")
	songPath := flag.String("song", "", "path to a YAML song file (default: built-in song)")
	hosts := flag.String("hosts", "", "comma-separated device addresses (overrides -picos)")
	timeout := flag.Duration("timeout", orchestra.DefaultTimeout, "per-device request timeout")
	melody := flag.Bool("melody", false, "queue the whole song on each device instead of conducting note by note")
	gapMs := flag.Uint("gap-ms", 20, "inter-note gap for -melody mode")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	roster, err := loadHosts(*hosts, *picosPath)
	if err != nil {
		return err
	}

	song := orchestra.DefaultSong()
	if *songPath != "" {
		if song, err = orchestra.LoadSong(*songPath); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := orchestra.NewConductor(roster, *timeout)
	fmt.Println("--- Pico Light Orchestra Conductor ---")
	fmt.Printf("Found %d devices in the orchestra.\n", c.Size())
	fmt.Println("Press Ctrl+C to stop.")

	// Give everyone a moment to get ready.
	for _, s := range []string{"\nStarting in 3...", "2...", "1..."} {
		fmt.Println(s)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Second):
		}
	}
	fmt.Print("Go!\n\n")

	if *melody {
		c.PlayMelody(ctx, song.Melody(uint32(*gapMs)))
		fmt.Println("Melody queued on all devices.")
		return nil
	}

	if err := c.PlaySong(ctx, song); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nConductor stopped.")
			return nil
		}
		return err
	}
	fmt.Println("\nSong finished!")
	return nil
}

func loadHosts(hostsFlag, picosPath string) ([]string, error) {
	if hostsFlag != "" {
		var out []string
		for _, h := range strings.Split(hostsFlag, ",") {
			if h = strings.TrimSpace(h); h != "" {
				out = append(out, h)
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("-hosts given but empty")
		}
		return out, nil
	}
	if picosPath == "" {
		return nil, fmt.Errorf("provide -picos FILE or -hosts a,b,c")
	}
	return orchestra.LoadRoster(picosPath)
}
