package server

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/eternalApril/greenis/internal/resp"
	"go.uber.org/zap"
)

// Serve accepts connections on ln and executes their commands on engine until
// ctx is cancelled. On cancellation it closes the listener and every open
// connection, then waits for the connection handlers to return
func Serve(ctx context.Context, ln net.Listener, engine *Engine, log *zap.Logger) error {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		peers = make(map[*Peer]struct{})
	)

	stop := context.AfterFunc(ctx, func() {
		ln.Close() //nolint:errcheck

		mu.Lock()
		for p := range peers {
			p.Close() //nolint:errcheck
		}
		mu.Unlock()
	})
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}
			log.Error("accept error", zap.Error(err))
			continue
		}

		peer := NewPeer(conn)

		mu.Lock()
		if ctx.Err() != nil {
			mu.Unlock()
			peer.Close() //nolint:errcheck
			break
		}
		peers[peer] = struct{}{}
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			handleConnection(peer, engine, log)

			mu.Lock()
			delete(peers, peer)
			mu.Unlock()
		}()
	}

	wg.Wait()

	if ctx.Err() == nil {
		// the listener was closed by someone else
		return net.ErrClosed
	}
	return nil
}

// handleConnection handles a connection for a single user
func handleConnection(peer *Peer, engine *Engine, log *zap.Logger) {
	if log.Core().Enabled(zap.DebugLevel) {
		log.Debug("client connected", zap.String("addr", peer.RemoteAddr()))
	}

	defer func() {
		peer.Close() //nolint:errcheck
		// log connection close
		if log.Core().Enabled(zap.DebugLevel) {
			log.Debug("client disconnected", zap.String("addr", peer.RemoteAddr()))
		}
	}()

	for {
		cmdValue, err := peer.ReadCommand()
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) {
				log.Warn("read command failed", zap.Error(err))
			}
			return
		}

		var reply resp.Value

		name, args, err := cmdValue.Command()
		switch {
		case err != nil:
			reply = resp.MakeError(err.Error())
		case name == "":
			continue
		default:
			reply = Reply(name, engine.Execute(name, args...))
		}

		if err = peer.Send(reply); err != nil {
			log.Error("error writing response", zap.Error(err))
			return
		}

		if peer.InputBuffered() == 0 {
			if err := peer.Flush(); err != nil {
				return
			}
		}
	}
}
