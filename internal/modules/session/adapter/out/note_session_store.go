package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"yomite/internal/modules/session/domain"
	sessionout "yomite/internal/modules/session/port/out"
	"yomite/internal/platform/markdown"
	"yomite/internal/platform/slug"
)

// NoteSessionStore writes one markdown note per finished session under
// <data>/sessions/YYYY/MM/DD.
type NoteSessionStore struct {
	fs       afero.Fs
	dataPath string
}

func NewNoteSessionStore(fs afero.Fs, dataPath string) sessionout.SessionStore {
	return &NoteSessionStore{fs: fs, dataPath: dataPath}
}

func (s *NoteSessionStore) root() string {
	return filepath.Join(s.dataPath, "sessions")
}

func (s *NoteSessionStore) Save(_ context.Context, session domain.Session) (string, error) {
	date := session.StartedAt
	dir := filepath.Join(s.root(), date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.md", date.Format("150405"), slug.Make(session.Title))
	path := filepath.Join(dir, name)

	meta := domain.Note{SchemaVersion: domain.SchemaVersion, Session: session}
	body := fmt.Sprintf(
		"# %s\n\n- Duration: %d minutes\n- Cards read: %d / %d\n- Cycles: %d\n- Unit seconds: %g\n\n## Outcome\n\n%s\n",
		session.Title, session.DurationMin, session.CardsRead, session.DeckSize, session.Cycles, session.UnitSeconds, session.Outcome,
	)
	rendered, err := markdown.RenderFrontmatter(meta, body)
	if err != nil {
		return "", err
	}
	if err := afero.WriteFile(s.fs, path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write session note: %w", err)
	}
	return path, nil
}

func (s *NoteSessionStore) List(_ context.Context) ([]domain.Session, error) {
	exists, err := afero.DirExists(s.fs, s.root())
	if err != nil {
		return nil, fmt.Errorf("stat sessions dir: %w", err)
	}
	if !exists {
		return nil, nil
	}
	var sessions []domain.Session
	err = afero.Walk(s.fs, s.root(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".md") {
			return nil
		}
		raw, err := afero.ReadFile(s.fs, path)
		if err != nil {
			return fmt.Errorf("read session note: %w", err)
		}
		var note domain.Note
		if _, err := markdown.SplitFrontmatter(string(raw), &note); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if note.ID == "" {
			return nil
		}
		sessions = append(sessions, note.Session)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].StartedAt.After(sessions[j].StartedAt) })
	return sessions, nil
}
