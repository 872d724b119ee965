package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tabfile/xport/internal/catalog"
)

func lsCmd() *cli.Command {
	return &cli.Command{
		Name:  "ls",
		Usage: "List transport datasets in the data directory",
		Flags: append(dataDirFlags(), loggingFlags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx
			cfg := LoadConfig()
			applyLoggingConfig(c, cfg)
			applyDataDirConfig(c, cfg)

			cat := catalog.New(dataDir)
			if err := cat.Refresh(); err != nil {
				return cli.Exit(fmt.Sprintf("error: scan %s: %v", dataDir, err), 1)
			}
			list := cat.List()
			if len(list) == 0 {
				fmt.Printf("no datasets in %s\n", cat.Dir())
				return nil
			}

			nameW := len("NAME")
			for _, ds := range list {
				nameW = max(nameW, len(ds.Name))
			}
			fmt.Printf("%-*s  %10s  %-19s  %s\n", nameW, "NAME", "SIZE", "MODIFIED", "ID")
			for _, ds := range list {
				fmt.Printf("%-*s  %10s  %-19s  %s\n",
					nameW, ds.Name, formatBytes(uint64(ds.Size)), ds.ModTime.Format(time.DateTime), ds.ID)
			}
			return nil
		},
	}
}
