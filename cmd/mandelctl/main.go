// Command mandelctl drives a running mandelview explorer over its control
// socket.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/mandelview/internal/socketrpc"
)

var (
	version = "dev"
	commit  = "unknown"
)

const usage = `usage: mandelctl [flags] <command> [args]

commands:
  view                 print the current view
  zoom in|out          zoom around the frame centre
  pan COL ROW          centre on a raster position
  hover COL ROW        show iterations and trajectory of a raster position
  quality N            set the sampling quality (1-100)
  palette NAME         select a colour palette
  jump PRESET          jump to a preset by name or number
  reset                return to the default view

flags:
`

func main() {
	var configPath string
	var socketPath string
	var asJSON bool
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/mandelview/config.yml)")
	flag.StringVar(&socketPath, "socket", "", "override the control socket path")
	flag.BoolVar(&asJSON, "json", false, "print raw JSON results")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("mandelctl %s (%s)\n", version, commit)
		return
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if socketPath == "" {
		var err error
		socketPath, err = configuredSocket(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	client, err := socketrpc.Dial(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot connect to mandelview at %s: %v\nIs mandelview running with control-socket enabled?\n", socketPath, err)
		os.Exit(1)
	}
	defer client.Close()

	if err := run(client, flag.Args(), os.Stdout, asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// configuredSocket reads socket-path from the shared config file and env.
func configuredSocket(configPath string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("MANDELVIEW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "mandelview", "config.yml"))
	}
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return "", err
		}
	}

	path := v.GetString("socket-path")
	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(home, path[2:])
	}
	return path, nil
}
