package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"media-editor/internal/edit"
	"media-editor/internal/editor"
	"media-editor/internal/logging"
	"media-editor/internal/mediatypes"
	"media-editor/internal/transcoder"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runCommand(os.Args[2:]))
	case "hash-token":
		os.Exit(hashTokenCommand())
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitizeCommand(os.Args[1]))
		printUsage(os.Stderr)
		os.Exit(2)
	}
}

// sanitizeCommand replaces everything outside [a-zA-Z0-9_-] with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Media Editor")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: mediaedit <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run         - Edit one video (see mediaedit run -h)")
	fmt.Fprintln(w, "  hash-token  - Read an API token and print its bcrypt hash for API_TOKEN_HASH")
}

func runCommand(args []string) int {
	opts, err := parseRunFlags(args, os.Stderr)
	if err != nil {
		return 2
	}

	if opts.logLevel != "" {
		level, err := logging.ParseLevel(opts.logLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
		logging.SetLevel(level)
	}

	req, err := opts.request()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if !mediatypes.IsVideo(req.InputPath) {
		logging.Warn("Input %s does not have a known video extension", req.InputPath)
	}
	if out := mediatypes.ForPath(req.OutputPath); !out.Known() {
		logging.Warn("Output extension %q is not a known container", out.Ext)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factory := transcoder.NewFactory(transcoder.Options{FFmpegPath: opts.ffmpeg, FFprobePath: opts.ffprobe})
	if !factory.Available() {
		fmt.Fprintf(os.Stderr, "Error: %s or %s not found\n", opts.ffmpeg, opts.ffprobe)
		return 1
	}

	orchestrator := editor.New(factory)
	defer func() {
		if err := orchestrator.Close(); err != nil {
			logging.Warn("Failed to close orchestrator: %v", err)
		}
	}()

	bar := newProgressBar(os.Stderr)
	result, err := orchestrator.Execute(ctx, req,
		bar.update,
		func(ev edit.FallbackEvent) {
			bar.clear()
			fmt.Fprintf(os.Stderr, "Fallback: %s\n", ev.Reason)
		},
	)
	bar.clear()

	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Cancelled")
		return 130
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	printResult(os.Stdout, result)
	return 0
}

func printResult(w io.Writer, r *edit.Result) {
	fmt.Fprintf(w, "Output:    %s\n", r.OutputPath)
	fmt.Fprintf(w, "Duration:  %.3fs\n", float64(r.DurationMs)/1000)
	fmt.Fprintf(w, "Size:      %d bytes\n", r.FileSizeBytes)
	if r.Width != nil && r.Height != nil {
		fmt.Fprintf(w, "Frame:     %dx%d\n", *r.Width, *r.Height)
	}
	if r.VideoCodec != nil {
		fmt.Fprintf(w, "Video:     %s", *r.VideoCodec)
		if r.AverageVideoBitrate != nil {
			fmt.Fprintf(w, " @ %d bps", *r.AverageVideoBitrate)
		}
		fmt.Fprintf(w, ", %d frames\n", r.VideoFrameCount)
	}
	if r.AudioCodec != nil {
		fmt.Fprintf(w, "Audio:     %s", *r.AudioCodec)
		if r.SampleRate != nil && r.ChannelCount != nil {
			fmt.Fprintf(w, " %d Hz, %d ch", *r.SampleRate, *r.ChannelCount)
		}
		fmt.Fprintln(w)
	}
}

func hashTokenCommand() int {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: hash-token must be run from a terminal")
		return 1
	}

	fmt.Fprint(os.Stderr, "API Token: ")
	token, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading token: %v\n", err)
		return 1
	}

	hash, err := hashToken(token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println(hash)
	return 0
}

// minTokenLength is the shortest token hash-token accepts.
const minTokenLength = 16

func hashToken(token []byte) (string, error) {
	if len(token) < minTokenLength {
		return "", fmt.Errorf("token must be at least %d characters", minTokenLength)
	}
	hash, err := bcrypt.GenerateFromPassword(token, bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hash), nil
}
