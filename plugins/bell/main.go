package main

import (
	"context"
	"fmt"
	"io"
	"os"

	pluginrpc "yomite/internal/modules/plugin/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

// server rings the terminal bell on segment changes and at cycle end.
// It writes to the controlling terminal because the host owns stdout.
type server struct {
	tty io.Writer
}

func (s *server) GetMetadata(_ context.Context, _ *pluginrpc.Empty) (*pluginrpc.Metadata, error) {
	return &pluginrpc.Metadata{
		Name:    "bell",
		Version: "1.0.0",
		Events:  []string{"segment", "complete"},
	}, nil
}

func (s *server) Notify(_ context.Context, in *pluginrpc.NotifyRequest) (*pluginrpc.NotifyResponse, error) {
	rings := 0
	switch in.Kind {
	case "segment":
		rings = 1
	case "complete":
		rings = 2
	default:
		return &pluginrpc.NotifyResponse{Acknowledged: false, Message: "ignored " + in.Kind}, nil
	}
	for i := 0; i < rings; i++ {
		if _, err := io.WriteString(s.tty, "\a"); err != nil {
			return nil, fmt.Errorf("ring bell: %w", err)
		}
	}
	return &pluginrpc.NotifyResponse{Acknowledged: true, Message: fmt.Sprintf("rang %d", rings)}, nil
}

func main() {
	var tty io.Writer = io.Discard
	if f, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0); err == nil {
		defer f.Close()
		tty = f
	}
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: pluginrpc.HandshakeConfig,
		Plugins:         pluginrpc.PluginMap(&server{tty: tty}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
