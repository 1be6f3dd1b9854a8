package container

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"storefront/catalog/internal/cart"
	"storefront/catalog/internal/client"
	"storefront/catalog/internal/config"
	"storefront/catalog/internal/domain"
	"storefront/catalog/internal/proxy"
	"storefront/catalog/internal/registry"
	"storefront/catalog/internal/scheduler"
	"storefront/catalog/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components of the catalog browser
type Container struct {
	Config    *config.Config
	Client    client.CatalogClient
	Registry  *registry.Registry
	Board     *ui.Board
	Scheduler *scheduler.Scheduler
	Cart      *cart.Cart
}

// New creates a new container with all dependencies initialized. A failure to
// load categories is logged and leaves category filtering disabled.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	var proxySupplier proxy.Supplier
	if len(cfg.Catalog.Proxies) > 0 {
		pingURL := strings.TrimRight(cfg.Catalog.BaseURL, "/") + "/ping"
		proxySupplier = proxy.NewSupplier(ctx, cfg.Catalog.Proxies, pingURL)
		if proxySupplier.Len() == 0 {
			return nil, errors.New("no configured proxy can reach the catalog service")
		}
	}

	catalogClient := client.NewCatalogClient(cfg.Catalog, proxySupplier)
	container.Client = catalogClient

	// Test connection
	if err := catalogClient.Ping(ctx); err != nil {
		log.Warnf("⚠️ Catalog service not reachable yet: %v", err)
	} else {
		log.Info("✅ Catalog service is reachable")
	}

	categoryRegistry := registry.New(catalogClient)
	if _, err := categoryRegistry.Load(ctx); err != nil {
		log.Warnf("⚠️ Starting without category filter: %v", err)
	}
	container.Registry = categoryRegistry

	board := ui.NewBoard()
	container.Board = board

	container.Scheduler = scheduler.New(catalogClient, board, board, scheduler.Options{
		QuietPeriod:  cfg.Browser.QuietPeriod(),
		QueryTimeout: cfg.Browser.QueryTimeoutDuration(),
	})

	container.Cart = cart.New(board)

	return container, nil
}

// Run shows the terminal UI until the user quits or ctx is cancelled
func (c *Container) Run(ctx context.Context) error {
	app := ui.NewApp(c.Board, c.Scheduler, c.Cart, c.filterCategories())
	program := tea.NewProgram(app, tea.WithAltScreen())
	c.Board.Attach(program)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		return err
	})

	// Stop the program on external cancellation
	g.Go(func() error {
		<-ctx.Done()
		program.Quit()
		return nil
	})

	return g.Wait()
}

// filterCategories is nil when the registry could not be loaded, which turns
// the category filter off in the UI.
func (c *Container) filterCategories() []domain.Category {
	if !c.Registry.Available() {
		return nil
	}
	return c.Registry.Categories()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	c.Scheduler.Close()

	log.Info("Container shut down successfully")
	return nil
}
