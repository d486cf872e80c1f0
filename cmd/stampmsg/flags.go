package main

import "github.com/urfave/cli/v2"

var (
	ConfigFileFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "Path to a YAML config file",
		EnvVars: []string{"STAMPMSG_CONFIG"},
	}

	LogLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		Usage:   "Log level (debug, info, warn, error)",
		EnvVars: []string{"LOG_LEVEL"},
	}

	NetworkFlag = &cli.StringFlag{
		Name:    "network",
		Value:   "mainnet",
		Usage:   "Address network (mainnet, testnet)",
		EnvVars: []string{"STAMPMSG_NETWORK"},
	}

	ToFlag = &cli.StringFlag{
		Name:     "to",
		Usage:    "Recipient address",
		Required: true,
	}

	TextFlag = &cli.StringFlag{
		Name:     "text",
		Usage:    "Message text",
		Required: true,
	}

	PlainFlag = &cli.BoolFlag{
		Name:  "plain",
		Usage: "Send without encryption",
	}

	ContactsFlag = &cli.StringSliceFlag{
		Name:  "contact",
		Usage: "Address to load and keep refreshed (repeatable)",
	}
)
