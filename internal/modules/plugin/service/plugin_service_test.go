package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"yomite/internal/modules/plugin/domain"
	"yomite/internal/modules/plugin/service"
)

type fakeStore struct {
	manifests []domain.Manifest
}

func (s fakeStore) Load(context.Context) ([]domain.Manifest, error) {
	return s.manifests, nil
}

type fakeHost struct {
	notified []string
	failFor  string
}

func (h *fakeHost) CheckLifecycle(context.Context, domain.Manifest) error { return nil }

func (h *fakeHost) GetMetadata(_ context.Context, m domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: m.Name, Version: m.Version, Events: m.Events}, nil
}

func (h *fakeHost) Notify(_ context.Context, m domain.Manifest, e domain.Event) (domain.NotifyResult, error) {
	if m.Name == h.failFor {
		return domain.NotifyResult{}, errors.New("boom")
	}
	h.notified = append(h.notified, m.Name+":"+string(e.Kind))
	return domain.NotifyResult{Acknowledged: true, Message: "ok"}, nil
}

func writeBinary(t *testing.T, fs afero.Fs, path, content string) string {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func TestDoctorDetectsChecksumMismatch(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	writeBinary(t, fs, "/bin/demo", "not-a-real-plugin")
	manifests := []domain.Manifest{{
		Name:    "demo",
		Version: "1.0.0",
		Binary:  "/bin/demo",
		SHA256:  strings.Repeat("0", 64),
		Enabled: true,
		Events:  []domain.EventKind{domain.EventComplete},
	}}

	svc := service.NewPluginService(fs, fakeStore{manifests: manifests}, &fakeHost{})
	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if !results[0].BinaryReachable || results[0].ChecksumValid || results[0].LifecycleOK {
		t.Fatalf("unexpected doctor result: %+v", results[0])
	}
}

func TestDoctorReportsMissingBinaryAndInvalidManifest(t *testing.T) {
	t.Parallel()
	manifests := []domain.Manifest{
		{Name: "gone", Version: "1", Binary: "/bin/gone", SHA256: strings.Repeat("a", 64), Enabled: true, Events: []domain.EventKind{domain.EventReset}},
		{Name: "bad", Version: "1", Binary: "/bin/bad", SHA256: "xyz", Events: []domain.EventKind{domain.EventReset}},
	}
	svc := service.NewPluginService(afero.NewMemMapFs(), fakeStore{manifests: manifests}, &fakeHost{})
	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if results[0].BinaryReachable || !strings.Contains(results[0].Error, "does not exist") {
		t.Fatalf("expected missing binary, got %+v", results[0])
	}
	if !strings.Contains(results[1].Error, "sha256") {
		t.Fatalf("expected validation error, got %+v", results[1])
	}
}

func TestDispatchNotifiesSubscribersOnly(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	sum := writeBinary(t, fs, "/bin/bell", "bell")
	manifests := []domain.Manifest{
		{Name: "bell", Version: "1", Binary: "/bin/bell", SHA256: sum, Enabled: true, Events: []domain.EventKind{domain.EventSegment, domain.EventComplete}},
		{Name: "quiet", Version: "1", Binary: "/bin/bell", SHA256: sum, Enabled: false, Events: []domain.EventKind{domain.EventSegment}},
		{Name: "resetter", Version: "1", Binary: "/bin/bell", SHA256: sum, Enabled: true, Events: []domain.EventKind{domain.EventReset}},
	}
	host := &fakeHost{}
	svc := service.NewPluginService(fs, fakeStore{manifests: manifests}, host)

	results, err := svc.Dispatch(context.Background(), domain.Event{Kind: domain.EventSegment, SegmentIndex: 1, At: time.Unix(0, 0)})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(results) != 1 || results[0].Name != "bell" || !results[0].Acknowledged {
		t.Fatalf("unexpected results: %+v", results)
	}
	if len(host.notified) != 1 || host.notified[0] != "bell:segment" {
		t.Fatalf("unexpected notifications: %v", host.notified)
	}
}

func TestDispatchCollectsFailuresPerPlugin(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	sum := writeBinary(t, fs, "/bin/ok", "ok")
	manifests := []domain.Manifest{
		{Name: "broken", Version: "1", Binary: "/bin/ok", SHA256: sum, Enabled: true, Events: []domain.EventKind{domain.EventComplete}},
		{Name: "tampered", Version: "1", Binary: "/bin/ok", SHA256: strings.Repeat("b", 64), Enabled: true, Events: []domain.EventKind{domain.EventComplete}},
		{Name: "fine", Version: "1", Binary: "/bin/ok", SHA256: sum, Enabled: true, Events: []domain.EventKind{domain.EventComplete}},
	}
	host := &fakeHost{failFor: "broken"}
	svc := service.NewPluginService(fs, fakeStore{manifests: manifests}, host)

	results, err := svc.Dispatch(context.Background(), domain.Event{Kind: domain.EventComplete})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected three results, got %+v", results)
	}
	if results[0].Error == "" || !strings.Contains(results[1].Error, "checksum") || results[2].Error != "" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestDispatchRejectsDuplicateNames(t *testing.T) {
	t.Parallel()
	m := domain.Manifest{Name: "dup", Version: "1", Binary: "/bin/x", SHA256: strings.Repeat("c", 64), Enabled: true, Events: []domain.EventKind{domain.EventReset}}
	svc := service.NewPluginService(afero.NewMemMapFs(), fakeStore{manifests: []domain.Manifest{m, m}}, &fakeHost{})
	if _, err := svc.Dispatch(context.Background(), domain.Event{Kind: domain.EventReset}); err == nil {
		t.Fatalf("expected duplicate name error")
	}
}
