package cmd

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"vmsgate/internal/auth"
	"vmsgate/internal/client"
	"vmsgate/internal/config"
	"vmsgate/internal/media"
	"vmsgate/internal/store"
	"vmsgate/internal/transport"
	"vmsgate/pkg/logger"
)

// runtime wires the subsystem once per command invocation.
type runtime struct {
	log        *zap.Logger
	store      *store.SQLiteStore
	tokens     *auth.Manager
	dispatcher *client.Dispatcher
	media      *media.Negotiator
}

func newRuntime() (*runtime, error) {
	log, err := logger.New(config.LogConfig())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	st, err := store.NewSQLiteStore(config.StorePath())
	if err != nil {
		return nil, fmt.Errorf("open connector store: %w", err)
	}

	standard := transport.NewStandard()
	var insecure transport.Factory
	if config.AllowInsecureTransport() {
		insecure = transport.NewInsecure()
		log.Warn("insecure transport enabled; connectors may skip TLS verification")
	}

	tokens := auth.NewManager(st, standard, insecure, config.RelayDomain(), config.TokenMargin(), log)
	dispatcher := client.NewDispatcher(tokens, standard, insecure, config.RelayDomain(), log)
	negotiator := media.NewNegotiator(tokens, dispatcher, log)

	return &runtime{
		log:        log,
		store:      st,
		tokens:     tokens,
		dispatcher: dispatcher,
		media:      negotiator,
	}, nil
}

func (r *runtime) Close() {
	if err := r.store.Close(); err != nil {
		r.log.Warn("closing connector store", zap.Error(err))
	}
	_ = r.log.Sync()
}

// printResult renders v as indented JSON when --json is set, otherwise
// via the provided plain-text printer.
func printResult(v any, plain func()) {
	if jsonOutput {
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(string(out))
		return
	}
	plain()
}
