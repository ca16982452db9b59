package main

import (
	"flag"
	"fmt"
	"io"
)

// Flags holds command-line options, empty values leave the config file settings in place
type Flags struct {
	ConfigPath string
	Listen     string
	Script     string
	LogLevel   string
	LogFormat  string
	Emulate    bool
}

func parseFlags(args []string, output io.Writer) (*Flags, error) {
	ret := &Flags{}
	set := flag.NewFlagSet("firebridge", flag.ContinueOnError)
	set.SetOutput(output)
	set.StringVar(&ret.ConfigPath, "config", "", "Path to YAML configuration file")
	set.StringVar(&ret.Listen, "listen", "", "Websocket listen address, overrides config")
	set.StringVar(&ret.Script, "script", "", "Run JavaScript file in the embedded runtime instead of serving websocket clients")
	set.StringVar(&ret.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	set.StringVar(&ret.LogFormat, "log-format", "json", "Log format: json, console")
	set.BoolVar(&ret.Emulate, "emulate", false, "Use in-memory database and auth instead of Firebase")
	if err := set.Parse(args); err != nil {
		return nil, err
	}
	if set.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", set.Args())
	}
	switch ret.LogFormat {
	case "json", "console":
	default:
		return nil, fmt.Errorf("invalid log format: %v", ret.LogFormat)
	}
	return ret, nil
}
