package root

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"strings"

	"adhdrpg/internal/catalog"
	"adhdrpg/internal/companion"
	"adhdrpg/internal/config"
	"adhdrpg/internal/engine"
	"adhdrpg/internal/rules"
	"adhdrpg/internal/storage"
	"adhdrpg/internal/ui"
)

type app struct {
	db      *sql.DB
	store   *storage.Store
	svc     *engine.Service
	catalog *catalog.Catalog
}

func openDB(ctx context.Context) (*sql.DB, func(), error) {
	path, err := storage.ResolveDBPath(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

func loadCatalog() (*catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		return catalog.Default()
	}
	return catalog.Load(cfg.CatalogPath)
}

func openApp(ctx context.Context) (*app, func(), error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, nil, err
	}
	achievements, err := rules.NewAchievements(cat)
	if err != nil {
		return nil, nil, err
	}
	db, cleanup, err := openDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	store := storage.NewStore(db)
	svc := engine.NewService(ctx, store,
		engine.WithCatalog(cat),
		engine.WithAchievements(achievements),
		engine.WithUndoWindow(cfg.Undo.Window),
		engine.WithStreakGoal(cfg.Streak.DefaultGoal),
	)
	return &app{db: db, store: store, svc: svc, catalog: cat}, cleanup, nil
}

// newCompanion returns nil when the companion is disabled.
func newCompanion(svc *engine.Service) *companion.Companion {
	var client companion.Client
	switch cfg.Companion.Provider {
	case config.ProviderAnthropic:
		client = companion.NewAnthropicClient(cfg.Companion.APIKey, cfg.Companion.Model)
	case config.ProviderHTTP:
		client = companion.NewHTTPClient(cfg.Companion.ServerURL, cfg.Companion.Timeout)
	default:
		return nil
	}
	log.Printf("[companion] using %s provider", cfg.Companion.Provider)
	return companion.New(client, svc)
}

// report prints the notices of a successful dispatch. A rejected action is
// returned as an error so the command exits non-zero.
func report(w io.Writer, headline string, out engine.Outcome) error {
	if err := out.Rejection(); err != nil {
		return err
	}
	fmt.Fprintln(w, headline)
	for _, n := range out.Notices {
		fmt.Fprintln(w, "  "+ui.NoticeText(n))
	}
	return nil
}

func resolveQuest(svc *engine.Service, ref string) (engine.Quest, error) {
	ref = strings.TrimSpace(ref)
	q, ok := svc.FindQuest(ref)
	if !ok {
		return engine.Quest{}, fmt.Errorf("no quest matches %q", ref)
	}
	return q, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
