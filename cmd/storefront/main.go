package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/app"
	"github.com/talkincode/storefront/internal/storeapi"
	"github.com/talkincode/storefront/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	h             = flag.Bool("h", false, "help usage")
	conffile      = flag.String("c", "", "config yaml file")
	initdb        = flag.Bool("initdb", false, "drop and recreate all tables, then seed the demo catalog")
	importCatalog = flag.String("import-catalog", "", "import products and categories from a CSV file and exit")
)

func main() {
	flag.Parse()

	if *h {
		flag.Usage()
		return
	}

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		return
	}

	if *importCatalog != "" {
		f, err := os.Open(*importCatalog)
		if err != nil {
			zap.S().Errorf("open catalog file: %v", err)
			return
		}
		defer f.Close()
		n, err := application.ImportCatalog(f)
		if err != nil {
			zap.S().Errorf("catalog import failed: %v", err)
			return
		}
		zap.S().Infof("imported %d catalog rows from %s", n, *importCatalog)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	webserver.Init(cfg)
	storeapi.Init(application)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return webserver.Server().Start(gctx)
	})

	if err := g.Wait(); err != nil {
		zap.S().Errorf("storefront stopped: %v", err)
	}
}
