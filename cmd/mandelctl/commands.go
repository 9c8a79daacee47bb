package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tinytelemetry/mandelview/internal/model"
	"github.com/tinytelemetry/mandelview/internal/socketrpc"
	"github.com/tinytelemetry/mandelview/internal/viewer"
)

// usageError reports a malformed command line.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// run executes one command against remote and prints the result to out.
func run(remote socketrpc.Remote, args []string, out io.Writer, asJSON bool) error {
	cmd, rest := args[0], args[1:]

	var (
		info model.ViewInfo
		err  error
	)
	switch cmd {
	case "view":
		if err := wantArgs(cmd, rest, 0); err != nil {
			return err
		}
		info, err = remote.View()
	case "zoom":
		if err := wantArgs(cmd, rest, 1); err != nil {
			return err
		}
		switch rest[0] {
		case "in":
			info, err = remote.Zoom(true)
		case "out":
			info, err = remote.Zoom(false)
		default:
			return usagef("zoom: want in or out, got %q", rest[0])
		}
	case "pan", "hover":
		if err := wantArgs(cmd, rest, 2); err != nil {
			return err
		}
		col, row, perr := parsePosition(rest)
		if perr != nil {
			return usagef("%s: %v", cmd, perr)
		}
		if cmd == "hover" {
			h, err := remote.Hover(col, row)
			if err != nil {
				return err
			}
			return printHover(out, h, asJSON)
		}
		info, err = remote.Pan(col, row)
	case "quality":
		if err := wantArgs(cmd, rest, 1); err != nil {
			return err
		}
		q, perr := strconv.Atoi(rest[0])
		if perr != nil {
			return usagef("quality: %q is not a number", rest[0])
		}
		info, err = remote.SetQuality(q)
	case "palette":
		if err := wantArgs(cmd, rest, 1); err != nil {
			return err
		}
		info, err = remote.SetPalette(rest[0])
	case "jump":
		if len(rest) == 0 {
			return usagef("jump: missing preset")
		}
		info, err = remote.Jump(strings.Join(rest, " "))
	case "reset":
		if err := wantArgs(cmd, rest, 0); err != nil {
			return err
		}
		info, err = remote.Reset()
	default:
		return usagef("unknown command %q", cmd)
	}
	if err != nil {
		return err
	}
	return printInfo(out, info, asJSON)
}

func wantArgs(cmd string, args []string, n int) error {
	if len(args) != n {
		return usagef("%s: want %d argument(s), got %d", cmd, n, len(args))
	}
	return nil
}

func parsePosition(args []string) (col, row int, err error) {
	col, err = strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("column %q is not a number", args[0])
	}
	row, err = strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("row %q is not a number", args[1])
	}
	return col, row, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printInfo(out io.Writer, info model.ViewInfo, asJSON bool) error {
	if asJSON {
		return printJSON(out, info)
	}
	r := info.Readout
	fmt.Fprintf(out, "Scale:    %s\n", r.Scale)
	fmt.Fprintf(out, "xOffset:  %s\n", r.XOffset)
	fmt.Fprintf(out, "yOffset:  %s\n", r.YOffset)
	fmt.Fprintf(out, "Quality:  %s\n", r.Quality)
	fmt.Fprintf(out, "Palette:  %s\n", info.Palette)
	fmt.Fprintf(out, "Frame:    %dx%d (threshold %d)\n", info.Width, info.Height, info.View.Threshold)
	return nil
}

func printHover(out io.Writer, h viewer.Hover, asJSON bool) error {
	if asJSON {
		return printJSON(out, h)
	}
	s := h.Sample
	state := "escaped"
	if s.Inside() {
		state = "inside"
	}
	fmt.Fprintf(out, "Point:       %g, %g\n", s.Point.X, s.Point.Y)
	fmt.Fprintf(out, "Iterations:  %d of %d (%s)\n", s.Iterations, s.Threshold, state)
	fmt.Fprintf(out, "Trajectory:  %d points\n", len(h.Path))
	return nil
}
