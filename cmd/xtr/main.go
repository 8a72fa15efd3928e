// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command xtr is a minimal CLI driver for xtransport over a TCP
// net.Conn. It either connects to a peer and sends stdin as one message
// (client mode) or listens for one connection and writes received
// messages to stdout (server mode).
package main

import (
	"bufio"
	"flag"
	"io"
	"net"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kylinx/xtransport"
)

const (
	exitSuccess = 0
	exitCarrier = 1
	exitProto   = 2
	exitReset   = 3
)

func main() {
	listen := flag.String("listen", "", "listen address, e.g. :9000 (server mode)")
	connect := flag.String("connect", "", "peer address, e.g. 127.0.0.1:9000 (client mode)")
	flag.Parse()

	log := logrus.WithField("cmd", "xtr")

	switch {
	case *listen != "":
		os.Exit(runServer(*listen, log))
	case *connect != "":
		os.Exit(runClient(*connect, log))
	default:
		log.Fatal("one of -listen or -connect is required")
	}
}

func runServer(addr string, log *logrus.Entry) int {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.WithError(err).Error("listen")
		return exitCarrier
	}
	defer ln.Close()
	log.WithField("addr", addr).Info("listening")

	conn, err := ln.Accept()
	if err != nil {
		log.WithError(err).Error("accept")
		return exitCarrier
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Time{})

	carrier := xtransport.NewStreamCarrier(conn, xtransport.MaxFrameSize)
	engine := xtransport.NewEngine(xtransport.NewConfig())
	log = log.WithField("conn", engine.ID.String())

	now := nowMillis()
	if err := engine.Poll(carrier, now); err != nil {
		log.WithError(err).Error("handshake poll")
		return exitCarrier
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	buf := make([]byte, xtransport.MaxPacketSize)

	for {
		now = nowMillis()
		n, err := engine.Recv(carrier, buf, now)
		if err == xtransport.ErrWouldBlock {
			if engine.State() == xtransport.StateClosed {
				return exitSuccess
			}
			if err := engine.Poll(carrier, now); err != nil {
				log.WithError(err).Error("poll")
				return exitCarrier
			}
			if engine.Stats().FailedFrames > 0 {
				log.Warn("peer unresponsive: max retransmit exceeded")
				return exitProto
			}
			continue
		}
		if err != nil {
			log.WithError(err).Error("recv")
			return exitCarrier
		}
		if _, err := out.Write(buf[:n]); err != nil {
			log.WithError(err).Error("stdout write")
			return exitCarrier
		}
		out.Flush()
		if engine.State() == xtransport.StateClosed {
			return exitSuccess
		}
	}
}

func runClient(addr string, log *logrus.Entry) int {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		log.WithError(err).Error("dial")
		return exitCarrier
	}
	defer conn.Close()

	carrier := xtransport.NewStreamCarrier(conn, xtransport.MaxFrameSize)
	engine := xtransport.NewEngine(xtransport.NewConfig())
	log = log.WithField("conn", engine.ID.String())

	now := nowMillis()
	if err := engine.Connect(carrier, now); err != nil {
		log.WithError(err).Error("connect")
		return exitCarrier
	}
	for engine.State() != xtransport.StateConnected {
		now = nowMillis()
		if err := engine.Poll(carrier, now); err != nil {
			log.WithError(err).Error("handshake poll")
			return exitCarrier
		}
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.WithError(err).Error("stdin read")
		return exitCarrier
	}

	now = nowMillis()
	if _, err := engine.Send(carrier, data, now); err != nil {
		log.WithError(err).Error("send")
		return exitCarrier
	}

	for engine.Stats().FramesSent > engine.Stats().SuccessfulDeliveries {
		now = nowMillis()
		if err := engine.Poll(carrier, now); err != nil {
			log.WithError(err).Error("poll")
			return exitCarrier
		}
		if engine.Stats().FailedFrames > 0 {
			log.Error("max retransmit exceeded")
			return exitProto
		}
	}

	if err := engine.Close(carrier); err != nil {
		log.WithError(err).Error("close")
		return exitCarrier
	}
	log.Info("sent")
	return exitSuccess
}

func nowMillis() int64 { return time.Now().UnixMilli() }
