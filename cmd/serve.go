package cmd

import (
	"context"
	"log"
	"time"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"vmsgate/internal/api"
	"vmsgate/internal/config"
)

var (
	serveListen   string
	serviceAction string // "install", "uninstall", "start", "stop"
)

// program implements the kardianos/service interface
type program struct {
	rt     *runtime
	server *api.Server
}

func (p *program) Start(s service.Service) error {
	// Start should not block. Do the actual work async.
	go p.run()
	return nil
}

func (p *program) run() {
	rt, err := newRuntime()
	if err != nil {
		log.Fatalf("Fatal: startup failed: %v", err)
	}
	p.rt = rt

	listen := serveListen
	if listen == "" {
		listen = config.ListenAddr()
	}

	p.server = api.New(api.Config{
		ListenAddr:  listen,
		RelayDomain: config.RelayDomain(),
		Store:       rt.store,
		Dispatcher:  rt.dispatcher,
		Media:       rt.media,
		Logger:      rt.log,
	})

	if err := p.server.Start(); err != nil {
		log.Printf("HTTP server error: %v", err)
	}
}

func (p *program) Stop(s service.Service) error {
	log.Println("Stopping service...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if p.server != nil {
		if err := p.server.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
		}
	}
	if p.rt != nil {
		p.rt.Close()
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the connector gateway HTTP server",
	Long: `Starts the long-running HTTP server that exposes connector
management, device info, event/bookmark creation and media proxying.
Can be installed as a system service.`,
	Run: func(cmd *cobra.Command, args []string) {
		svcConfig := &service.Config{
			Name:        "vmsgate",
			DisplayName: "VMS Connector Gateway",
			Description: "Relays VMS device info, events and media through one interface",
			Arguments:   []string{"serve"},
		}
		if serveListen != "" {
			svcConfig.Arguments = append(svcConfig.Arguments, "--listen", serveListen)
		}
		if cfgFile != "" {
			svcConfig.Arguments = append(svcConfig.Arguments, "--config", cfgFile)
		}

		prg := &program{}
		s, err := service.New(prg, svcConfig)
		if err != nil {
			log.Fatal(err)
		}

		if serviceAction != "" {
			if err := service.Control(s, serviceAction); err != nil {
				log.Fatalf("Failed to %s service: %v", serviceAction, err)
			}
			log.Printf("Service action '%s' completed successfully.", serviceAction)
			return
		}

		// Run blocks until the service manager (or an interrupt, when run
		// interactively) stops it.
		svcLogger, err := s.Logger(nil)
		if err != nil {
			log.Fatal(err)
		}
		if err := s.Run(); err != nil {
			svcLogger.Error(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default from config, :8780)")
	serveCmd.Flags().StringVar(&serviceAction, "service", "", "Service action: install, uninstall, start, stop")
}
