// Command orchidx is a reference extension binary: it performs the
// handshake with a host's control socket, answers NewSystem/SystemDrop,
// and registers itself as a replica of the process-wide interner. It
// declares no systems and holds no atoms of its own; it exists purely so
// the transport and interner packages have a runnable peer to speak to,
// the way an empty krd-compatible client would to a krd.
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/blang/semver"
	"github.com/fatih/color"
	"github.com/op/go-logging"
	uuid "github.com/satori/go.uuid"
	"github.com/urfave/cli"

	"github.com/lbfalvy/orchid-sub001/internal/codec"
	"github.com/lbfalvy/orchid-sub001/internal/config"
	"github.com/lbfalvy/orchid-sub001/internal/intern"
	"github.com/lbfalvy/orchid-sub001/internal/obslog"
	"github.com/lbfalvy/orchid-sub001/internal/reqnot"
	"github.com/lbfalvy/orchid-sub001/pkg/host"
	"github.com/lbfalvy/orchid-sub001/pkg/protocol"
)

var log = obslog.New("orchidx", logging.INFO)

func main() {
	app := cli.NewApp()
	app.Name = "orchidx"
	app.Usage = "reference extension: connect to a host and serve as an interner replica"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "socket",
			Usage: "path to the host's control socket, overriding the runtime directory default",
		},
	}
	app.Action = runExtension

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("orchidx: %v", err))
		os.Exit(1)
	}
}

func runExtension(c *cli.Context) error {
	socketPath := c.String("socket")
	if socketPath == "" {
		var err error
		if socketPath, err = config.SocketPath("orchidd.sock"); err != nil {
			return err
		}
	}

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	hostVersion, err := handshake(conn)
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	if hostVersion.Major != protocolVersion().Major {
		return fmt.Errorf("host speaks incompatible protocol version %s", hostVersion)
	}
	color.Cyan("connected to host speaking protocol %s", hostVersion)

	send := func(frame []byte) error { return reqnot.WriteFrame(conn, frame) }
	link := host.NewHostLink(send, newHandler(), log)

	if err := intern.InitReplica(link); err != nil {
		return err
	}

	return reqnot.RunReceiveLoop(conn, link.Transport())
}

// handshake reads the host's HostHeader and writes this extension's
// ExtensionHeader in reply, declaring no systems.
func handshake(conn net.Conn) (semver.Version, error) {
	msg, err := reqnot.ReadFrame(conn)
	if err != nil {
		return semver.Version{}, err
	}
	hdr, err := protocol.DecodeHostHeader(codec.NewReader(msg))
	if err != nil {
		return semver.Version{}, fmt.Errorf("decoding host header: %w", err)
	}

	reply := protocol.ExtensionHeader{
		Version:  protocolVersion(),
		StableID: uuid.NewV4(),
		Systems:  nil,
	}
	w := codec.NewWriter()
	reply.Encode(w)
	if err := reqnot.WriteFrame(conn, w.Bytes()); err != nil {
		return semver.Version{}, err
	}
	return hdr.Version, nil
}
