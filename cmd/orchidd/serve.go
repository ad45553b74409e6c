package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/lbfalvy/orchid-sub001/internal/codec"
	"github.com/lbfalvy/orchid-sub001/internal/config"
	"github.com/lbfalvy/orchid-sub001/internal/intern"
	"github.com/lbfalvy/orchid-sub001/internal/reqnot"
	"github.com/lbfalvy/orchid-sub001/pkg/host"
	"github.com/lbfalvy/orchid-sub001/pkg/protocol"
)

// serve listens on socketPath and runs until the listener fails.
// Extensions dial in; each connection gets its own handshake, Link, and
// TicketTable, and is registered under the systems its ExtensionHeader
// declares.
func serve(socketPath string, timeouts config.Timeouts) error {
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return err
	}
	defer listener.Close()

	registry := host.NewRegistry()
	for {
		conn, err := listener.Accept()
		if err != nil {
			return err
		}
		go handleConn(conn, registry, timeouts)
	}
}

func handleConn(conn net.Conn, registry *host.Registry, timeouts config.Timeouts) {
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(timeouts.Handshake))
	header, err := handshake(conn)
	if err != nil {
		log.Warningf("handshake with %s failed: %v", conn.RemoteAddr(), err)
		return
	}
	conn.SetDeadline(time.Time{})
	log.Noticef("extension %s connected, declaring %d system(s)", header.StableID, len(header.Systems))

	tickets := host.NewTicketTable()
	send := func(frame []byte) error { return reqnot.WriteFrame(conn, frame) }
	link := host.NewLink(send, intern.Global(), tickets, log)

	ext := host.NewExtension(header, link)
	registry.Add(ext)
	defer registry.Remove(ext)

	if err := reqnot.RunReceiveLoop(conn, link.Transport()); err != nil {
		log.Infof("extension %s disconnected: %v", header.StableID, err)
	}
}

// handshake writes this process's HostHeader and reads the connecting
// extension's ExtensionHeader in reply.
func handshake(conn net.Conn) (protocol.ExtensionHeader, error) {
	w := codec.NewWriter()
	protocol.HostHeader{Version: protocolVersion()}.Encode(w)
	if err := reqnot.WriteFrame(conn, w.Bytes()); err != nil {
		return protocol.ExtensionHeader{}, err
	}

	msg, err := reqnot.ReadFrame(conn)
	if err != nil {
		return protocol.ExtensionHeader{}, err
	}
	header, err := protocol.DecodeExtensionHeader(codec.NewReader(msg))
	if err != nil {
		return protocol.ExtensionHeader{}, fmt.Errorf("decoding extension header: %w", err)
	}
	return header, nil
}
