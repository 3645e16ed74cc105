package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"telegram-cleaner/internal/domain"
	"telegram-cleaner/internal/ports"
)

// Options управляют составом и доставкой резервной копии.
type Options struct {
	// WithMessages включает выгрузку истории сообщений.
	WithMessages bool
	// WithMembers включает выгрузку списка участников.
	WithMembers bool
	// ToCloud отправляет созданные файлы в облачный чат аккаунта.
	ToCloud bool
}

// Result — пути и счетчики созданных артефактов.
type Result struct {
	MessagesPath string
	MembersPath  string
	Messages     int
	Members      int
}

// Exporter сохраняет содержимое диалога в JSON-файлы и при
// необходимости отправляет их в облачный чат аккаунта.
type Exporter struct {
	source ports.BackupSource
	dir    string
	log    *slog.Logger
	now    func() time.Time
}

// Option — функциональная опция для настройки Exporter.
type Option func(*Exporter)

// WithLogger устанавливает логгер экспортера.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock подменяет источник времени для имен файлов.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// NewExporter создает экспортер, пишущий в каталог dir.
func NewExporter(source ports.BackupSource, dir string, opts ...Option) *Exporter {
	e := &Exporter{
		source: source,
		dir:    dir,
		log:    slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Export выгружает данные диалога target согласно opts.
func (e *Exporter) Export(ctx context.Context, target string, opts Options) (Result, error) {
	var res Result

	d, err := e.source.ResolvePeer(ctx, target)
	if err != nil {
		return res, fmt.Errorf("resolve backup target: %w", err)
	}
	if d.Title == "" {
		d.Title = domain.UntitledDialog
	}
	e.log.InfoContext(ctx, "Backing up dialog", "dialog", d.Title)

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return res, fmt.Errorf("create backup dir: %w", err)
	}

	stamp := e.now().Format("20060102_150405")

	if opts.WithMessages {
		path := filepath.Join(e.dir, fmt.Sprintf("messages_%s_%s.json", sanitizeName(d.Title), stamp))
		n, err := e.exportMessages(ctx, d, path)
		if err != nil {
			return res, err
		}
		res.MessagesPath, res.Messages = path, n
		e.log.InfoContext(ctx, "Messages exported", "dialog", d.Title, "count", n, "path", path)
	}

	if opts.WithMembers {
		members, err := e.source.Participants(ctx, d)
		if err != nil {
			return res, fmt.Errorf("fetch participants: %w", err)
		}
		path := filepath.Join(e.dir, fmt.Sprintf("members_%s_%s.json", sanitizeName(d.Title), stamp))
		if err := writeJSON(path, members); err != nil {
			return res, err
		}
		res.MembersPath, res.Members = path, len(members)
		e.log.InfoContext(ctx, "Members exported", "dialog", d.Title, "count", len(members), "path", path)
	}

	if opts.ToCloud {
		for _, p := range []string{res.MessagesPath, res.MembersPath} {
			if p == "" {
				continue
			}
			if err := e.source.UploadToCloud(ctx, p); err != nil {
				return res, fmt.Errorf("upload backup: %w", err)
			}
			e.log.InfoContext(ctx, "Backup uploaded to cloud chat", "path", p)
		}
	}

	return res, nil
}

func (e *Exporter) exportMessages(ctx context.Context, d domain.Dialog, path string) (int, error) {
	it := e.source.IterHistory(ctx, d.Peer)

	messages := make([]domain.BackupMessage, 0)
	for it.Next(ctx) {
		messages = append(messages, it.Message())
	}
	if err := it.Err(); err != nil {
		return 0, fmt.Errorf("history stream failed: %w", err)
	}

	if err := writeJSON(path, messages); err != nil {
		return 0, err
	}
	return len(messages), nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// sanitizeName приводит имя диалога к виду, пригодному для имени файла.
func sanitizeName(title string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, title)

	mapped = strings.Trim(mapped, "._")
	if mapped == "" {
		return "dialog"
	}
	return mapped
}
