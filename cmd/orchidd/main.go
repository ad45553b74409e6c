// Command orchidd is the host process: extension binaries dial its
// control socket, it speaks the handshake and system-lifecycle protocol
// to each one over that connection, and it answers as the master of the
// process-wide interner.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/op/go-logging"
	"github.com/urfave/cli"

	"github.com/lbfalvy/orchid-sub001/internal/config"
	"github.com/lbfalvy/orchid-sub001/internal/intern"
	"github.com/lbfalvy/orchid-sub001/internal/obslog"
)

var log = obslog.New("orchidd", logging.NOTICE)

func main() {
	app := cli.NewApp()
	app.Name = "orchidd"
	app.Usage = "run the host process for a set of Orchid extensions"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "socket",
			Usage: "path to the control socket, overriding the runtime directory default",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "listen for extensions and serve as interner master (the default)",
			Action: runHost,
		},
		{
			Name:  "version",
			Usage: "print the protocol version this binary speaks",
			Action: func(c *cli.Context) error {
				fmt.Println(protocolVersion().String())
				return nil
			},
		},
	}
	app.Action = runHost

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("orchidd: %v", err))
		os.Exit(1)
	}
}

func runHost(c *cli.Context) error {
	intern.Global() // establishes this process as the interner master

	socketPath := c.String("socket")
	if socketPath == "" {
		var err error
		if socketPath, err = config.SocketPath("orchidd.sock"); err != nil {
			return err
		}
	}
	log.Noticef("listening on %s", socketPath)
	return serve(socketPath, config.DefaultTimeouts())
}
