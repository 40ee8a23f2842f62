package cmd

import (
	"context"
	"errors"
	argFlag "flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"lockd/models/mode"
	"lockd/pkg/config"
	"lockd/pkg/log"
	"lockd/pkg/metrics"
	"lockd/routers"
	v1 "lockd/routers/api/v1"
	"lockd/service/adminauth"
	"lockd/service/audit"
	"lockd/service/lock"
	"lockd/service/ratelimit"
)

type Options struct {
	Flags FlagDefinitionList
	Mode  string
}

type App struct {
	httpServer *http.Server
	sweeper    *lock.Sweeper
	auditor    *audit.Publisher
	limiter    *ratelimit.Limiter
	ctx        context.Context
	cancel     context.CancelFunc
	workerWg   sync.WaitGroup
}

type InitTask struct {
	Name string
	Task func() error
}

func (it *InitTask) Begin(prefix string) {
	log.Infof("%s %s%s%s %s...%s ", prefix, log.Orange, it.Name, log.Reset, log.Grey, log.Reset)
}

// Create creates a new App instance: the lock registry, sweeper, rate
// limiter and audit publisher are always started, regardless of which
// worker flags are passed, since they are the core this service exists
// to provide.
func Create(opts *Options) *App {
	err := log.SetupLogger(opts.Mode)
	if err != nil {
		panic(fmt.Sprintf("Failed to set up logger. details: %s", err.Error()))
	}

	initTasks := []InitTask{
		{Name: "Validate application", Task: func() error { return validateApp(opts) }},
		{Name: "Setup environment", Task: func() error { return config.SetupEnvironment(opts.Mode) }},
	}

	for idx, task := range initTasks {
		task.Begin(fmt.Sprintf("(%d/%d)", idx+1, len(initTasks)))
		if err := task.Task(); err != nil {
			log.Fatalf("Init task %s failed. details: %s", task.Name, err.Error())
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{ctx: ctx, cancel: cancel}

	registry := lock.NewRegistry(
		config.Config.Lock.ShardCount,
		config.Config.Lock.DefaultTimeoutSeconds,
		config.Config.Lock.MaxTimeoutSeconds,
	)

	auditor, err := audit.NewPublisher(config.Config.Redis.URL, config.Config.Redis.Password)
	if err != nil {
		log.Fatalf("Failed to set up audit publisher. details: %s", err.Error())
	}
	app.auditor = auditor

	app.sweeper = lock.NewSweeper(registry, config.Config.Lock.SweepInterval, func(evicted []lock.LeaseView) {
		log.Debugf("sweeper evicted %d expired lease(s)", len(evicted))
		for _, lv := range evicted {
			log.GetBaseLogger().Debug("lease expired", log.LeaseFields(lv.Namespace, lv.BusinessID, lv.LockID)...)
			app.auditor.Publish(context.Background(), audit.Event{
				Type: audit.EventExpired, Namespace: lv.Namespace, BusinessID: lv.BusinessID,
				UserID: lv.UserID, LockID: lv.LockID, At: time.Now(),
			})
		}
	})
	app.workerWg.Add(1)
	go func() {
		defer app.workerWg.Done()
		app.sweeper.Start(ctx)
		<-ctx.Done()
		app.sweeper.Stop()
	}()

	app.limiter = ratelimit.New(config.Config.RateLimit.RequestsPerMinute, config.Config.RateLimit.Burst)

	adminAuth, bootstrapToken, err := adminauth.NewService(config.Config.Admin.BootstrapToken)
	if err != nil {
		log.Fatalf("Failed to set up admin auth. details: %s", err.Error())
	}
	if config.Config.Admin.BootstrapToken == "" {
		log.Printf("%sNo admin token configured - generated one for this run: %s%s", log.Orange, bootstrapToken, log.Reset)
	}

	v1.Init(registry, app.limiter, app.auditor, adminAuth)

	if err := metrics.Setup(); err != nil {
		log.Fatalf("Failed to set up metrics. details: %s", err.Error())
	}
	app.startMetricsSync(registry)

	log.Printf("%sInitialization complete%s", log.Orange, log.Reset)

	if opts.Flags.GetPassedValue("api").(bool) {
		ginMode, exists := os.LookupEnv("GIN_MODE")
		if exists {
			gin.SetMode(ginMode)
		} else {
			gin.SetMode("release")
		}

		app.httpServer = &http.Server{
			Addr:    fmt.Sprintf("0.0.0.0:%d", config.Config.Port),
			Handler: routers.NewRouter(),
		}

		go func() {
			log.Printf("%sHTTP server listening on %s0.0.0.0:%d%s", log.Bold, log.Orange, config.Config.Port, log.Reset)
			err := app.httpServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalln(fmt.Errorf("failed to start http server. details: %w", err))
			}
		}()
	}

	return app
}

// Stop gracefully shuts down the application: it cancels the context to
// stop the sweeper, waits for background work to finish, then shuts down
// the HTTP server.
func (app *App) Stop() {
	app.cancel()

	workersDone := make(chan struct{})
	go func() {
		app.workerWg.Wait()
		close(workersDone)
	}()

	select {
	case <-workersDone:
		log.Println("All workers stopped gracefully")
	case <-time.After(10 * time.Second):
		log.Println("Timed out waiting for workers to stop")
	}

	app.limiter.Stop()
	if err := app.auditor.Close(); err != nil {
		log.PrettyError(fmt.Errorf("failed to close audit publisher. details: %w", err))
	}

	if app.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.httpServer.Shutdown(ctx); err != nil {
			log.Fatalln(fmt.Errorf("failed to shutdown server. details: %w", err))
		}
		log.Println("HTTP server shutdown complete")
	}

	log.Println("Server exited successfully")
}

func ParseFlags() *Options {
	flags := GetFlags()

	for _, flag := range flags {
		switch flag.ValueType {
		case "bool":
			argFlag.Bool(flag.Name, flag.DefaultValue.(bool), flag.Description)
		case "string":
			argFlag.String(flag.Name, flag.DefaultValue.(string), flag.Description)
		}
	}
	argFlag.Parse()

	for _, flag := range flags {
		switch flag.ValueType {
		case "bool":
			if lookedUpVal := argFlag.Lookup(flag.Name); lookedUpVal != nil {
				flags.SetPassedValue(flag.Name, argFlag.Lookup(flag.Name).Value.(argFlag.Getter).Get().(bool))
			}
		case "string":
			if lookedUpVal := argFlag.Lookup(flag.Name); lookedUpVal != nil {
				flags.SetPassedValue(flag.Name, argFlag.Lookup(flag.Name).Value.(argFlag.Getter).Get().(string))
			}
		}
	}

	options := Options{
		Flags: flags,
		Mode:  flags.GetPassedValue("mode").(string),
	}

	if options.Mode != mode.Test && options.Mode != mode.Prod && options.Mode != mode.Dev {
		panic("Invalid mode specified. Valid options are: test, dev, prod")
	}

	return &options
}

// startMetricsSync launches a background loop syncing the gin-metrics
// gauges from the registry's counters every second, until the app context
// is cancelled.
func (app *App) startMetricsSync(registry *lock.Registry) {
	app.workerWg.Add(1)
	go func() {
		defer app.workerWg.Done()

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-app.ctx.Done():
				return
			case <-ticker.C:
				metrics.Sync(registry)
			}
		}
	}()
}

func validateApp(options *Options) error {
	if !options.Flags.AnyWorkerFlagsPassed() {
		log.Println("No workers specified, starting all")

		for _, flag := range options.Flags {
			if flag.FlagType == FlagTypeWorker {
				options.Flags.SetPassedValue(flag.Name, true)
			}
		}
	}

	return nil
}
