package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"yomite/internal/modules/plugin/domain"
	"yomite/internal/modules/plugin/dto"
	pluginout "yomite/internal/modules/plugin/port/out"
)

type PluginService struct {
	fs    afero.Fs
	store pluginout.ManifestStore
	host  pluginout.Host

	mu       sync.Mutex
	verified map[string]string
}

func NewPluginService(fs afero.Fs, store pluginout.ManifestStore, host pluginout.Host) *PluginService {
	return &PluginService{fs: fs, store: store, host: host, verified: map[string]string{}}
}

func (s *PluginService) List(ctx context.Context) ([]dto.PluginInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PluginInfo, 0, len(manifests))
	for _, m := range manifests {
		events := make([]string, 0, len(m.Events))
		for _, e := range m.Events {
			events = append(events, string(e))
		}
		out = append(out, dto.PluginInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Events: events})
	}
	return out, nil
}

func (s *PluginService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		binaryOK := s.fileExists(m.Binary)
		result.BinaryReachable = binaryOK
		checksumOK := false
		if binaryOK {
			checksumOK = s.checksumMatches(m.Binary, m.SHA256) == nil
		}
		result.ChecksumValid = checksumOK
		if binaryOK && checksumOK && m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		if !binaryOK {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		}
		if binaryOK && !checksumOK {
			result.Error = "checksum mismatch"
		}
		results = append(results, result)
	}
	return results, nil
}

// Dispatch notifies every enabled plugin subscribed to the event kind.
// Failures are reported per plugin; only an unusable event or manifest
// file fails the call.
func (s *PluginService) Dispatch(ctx context.Context, event domain.Event) ([]dto.DispatchResult, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	results := []dto.DispatchResult{}
	for _, m := range manifests {
		if !m.Enabled || !m.Subscribes(event.Kind) {
			continue
		}
		result := dto.DispatchResult{Name: m.Name}
		if err := s.checksumMatches(m.Binary, m.SHA256); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		if s.host == nil {
			result.Error = "plugin host unavailable"
			results = append(results, result)
			continue
		}
		notified, err := s.host.Notify(ctx, m, event)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %s", domain.ErrPluginTimeout, m.Name)
			}
			result.Error = err.Error()
		} else {
			result.Acknowledged = notified.Acknowledged
			result.Message = notified.Message
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *PluginService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate plugin name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

// checksumMatches hashes a binary once per expected digest.
func (s *PluginService) checksumMatches(path string, expected string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.verified[path] == expected {
		return nil
	}
	payload, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return fmt.Errorf("read plugin binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	if hex.EncodeToString(hash[:]) != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	s.verified[path] = expected
	return nil
}

func (s *PluginService) fileExists(path string) bool {
	_, err := s.fs.Stat(path)
	return err == nil
}
