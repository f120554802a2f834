package out

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	pluginrpc "yomite/internal/modules/plugin/adapter/out/rpc"
	"yomite/internal/modules/plugin/domain"
	pluginout "yomite/internal/modules/plugin/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 2 * time.Second
)

type connection struct {
	client *plugin.Client
	rpc    pluginrpc.CuePluginClient
}

// GRPCHost keeps one plugin process per manifest alive between
// notifications. Close kills them all.
type GRPCHost struct {
	logger hclog.Logger

	mu    sync.Mutex
	conns map[string]connection
}

func NewGRPCHost(logger hclog.Logger) *GRPCHost {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &GRPCHost{logger: logger.Named("plugin"), conns: map[string]connection{}}
}

var _ pluginout.Host = (*GRPCHost)(nil)

// CheckLifecycle starts a fresh process, asks for metadata and stops it.
func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	conn, err := h.start(manifest)
	if err != nil {
		return err
	}
	defer conn.client.Kill()

	callCtx, cancel := h.callContext(ctx)
	defer cancel()
	if _, err := conn.rpc.GetMetadata(callCtx); err != nil {
		return fmt.Errorf("get metadata: %w", err)
	}
	return nil
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	conn, err := h.connection(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	callCtx, cancel := h.callContext(ctx)
	defer cancel()

	meta, err := conn.rpc.GetMetadata(callCtx)
	if err != nil {
		h.drop(manifest.Name)
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	events := make([]domain.EventKind, 0, len(meta.Events))
	for _, e := range meta.Events {
		events = append(events, domain.EventKind(e))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Events: events}, nil
}

func (h *GRPCHost) Notify(ctx context.Context, manifest domain.Manifest, event domain.Event) (domain.NotifyResult, error) {
	conn, err := h.connection(manifest)
	if err != nil {
		return domain.NotifyResult{}, err
	}
	callCtx, cancel := h.callContext(ctx)
	defer cancel()

	response, err := conn.rpc.Notify(callCtx, &pluginrpc.NotifyRequest{
		Kind:         string(event.Kind),
		SegmentIndex: int32(event.SegmentIndex),
		SegmentLabel: event.SegmentLabel,
		CardID:       int32(event.CardID),
		AtUnixMilli:  event.At.UnixMilli(),
	})
	if err != nil {
		h.drop(manifest.Name)
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return domain.NotifyResult{}, fmt.Errorf("%w: %s", domain.ErrPluginTimeout, manifest.Name)
		}
		return domain.NotifyResult{}, fmt.Errorf("notify: %w", err)
	}
	return domain.NotifyResult{Acknowledged: response.Acknowledged, Message: response.Message}, nil
}

// Close stops every cached plugin process.
func (h *GRPCHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for name, conn := range h.conns {
		conn.client.Kill()
		delete(h.conns, name)
	}
	return nil
}

func (h *GRPCHost) connection(manifest domain.Manifest) (connection, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn, ok := h.conns[manifest.Name]; ok && !conn.client.Exited() {
		return conn, nil
	}
	conn, err := h.start(manifest)
	if err != nil {
		return connection{}, err
	}
	h.conns[manifest.Name] = conn
	return conn, nil
}

func (h *GRPCHost) drop(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn, ok := h.conns[name]; ok {
		conn.client.Kill()
		delete(h.conns, name)
	}
}

func (h *GRPCHost) start(manifest domain.Manifest) (connection, error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  pluginrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          pluginrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           h.logger.Named(manifest.Name),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return connection{}, fmt.Errorf("start plugin client: %w", err)
	}
	raw, err := rpcClient.Dispense(pluginrpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return connection{}, fmt.Errorf("dispense plugin: %w", err)
	}
	typed, ok := raw.(pluginrpc.CuePluginClient)
	if !ok {
		client.Kill()
		return connection{}, fmt.Errorf("plugin rpc client type mismatch")
	}
	return connection{client: client, rpc: typed}, nil
}

func (h *GRPCHost) callContext(parent context.Context) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, defaultCallTimeout)
}
