package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	orchestratorx "github.com/tanpawarit/shopdesk-agent/agent/agents/orchestrator"
	routerx "github.com/tanpawarit/shopdesk-agent/agent/agents/router"
	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
	llmx "github.com/tanpawarit/shopdesk-agent/agent/llm"
	notifyx "github.com/tanpawarit/shopdesk-agent/agent/notify"
	storex "github.com/tanpawarit/shopdesk-agent/agent/store"
	toolx "github.com/tanpawarit/shopdesk-agent/agent/tool"
	configx "github.com/tanpawarit/shopdesk-agent/pkg/config"
	logx "github.com/tanpawarit/shopdesk-agent/pkg/logger"
	_ "github.com/tanpawarit/shopdesk-agent/pkg/logger/autoload"
	qstashx "github.com/tanpawarit/shopdesk-agent/pkg/qstash"
)

type AgentConfig struct {
	CancelWindow   time.Duration `split_words:"true" default:"60m"`
	ClockOverride  string        `split_words:"true"`
	RequestTimeout time.Duration `split_words:"true" default:"60s"`
}

var errScenarioMismatch = errors.New("scenario expectations not met")

func main() {
	var (
		message   = flag.String("message", "", "customer message to handle")
		scenarios = flag.Bool("scenarios", false, "run the reference scenarios")
		nowFlag   = flag.String("now", "", "evaluation time (RFC3339), overrides AGENT_CLOCK_OVERRIDE")
	)

	// configx parses flags on first use, so every flag above must be defined first.
	logCfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*logCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	text := strings.TrimSpace(*message)
	if text == "" {
		text = strings.TrimSpace(strings.Join(flag.Args(), " "))
	}

	if err := run(ctx, os.Stdout, text, *scenarios, *nowFlag); err != nil {
		log.Error().Err(err).Msg("shopdesk agent failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, text string, scenarios bool, nowFlag string) error {
	agentCfg := configx.MustNew[AgentConfig]("AGENT")
	storeCfg := configx.MustNew[storex.Config]("STORE")
	upstashCfg := configx.MustNew[storex.UpstashRedisConfig]("UPSTASH_REDIS")
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")

	clock, err := resolveClock(nowFlag, agentCfg.ClockOverride, scenarios)
	if err != nil {
		return err
	}

	catalog, orders, err := storex.Open(ctx, *storeCfg, *upstashCfg)
	if err != nil {
		return err
	}

	gateway, err := toolx.NewGateway(catalog, orders,
		toolx.WithCancelWindow(agentCfg.CancelWindow),
		toolx.WithClock(clock),
	)
	if err != nil {
		return err
	}

	router, closeRouter, err := routerx.New(ctx, *llmCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRouter(); err != nil {
			log.Warn().Err(err).Msg("close router")
		}
	}()

	recorder, err := notifyx.New(*qstashCfg)
	if err != nil {
		return err
	}

	agent, err := orchestratorx.New(router, gateway, catalog, recorder, orchestratorx.Config{
		CancelWindow: agentCfg.CancelWindow,
		Clock:        clock,
	})
	if err != nil {
		return err
	}

	handle := func(msg string) (contractx.Trace, error) {
		reqCtx, cancel := context.WithTimeout(ctx, agentCfg.RequestTimeout)
		defer cancel()
		return agent.HandleMessage(reqCtx, msg)
	}

	if scenarios {
		return runScenarios(out, handle)
	}
	if text == "" {
		return errors.New("no message given: use -message, a positional argument, or -scenarios")
	}

	trace, err := handle(text)
	if err != nil {
		return err
	}
	return writeTrace(out, "Result", text, trace)
}

// resolveClock picks the evaluation time: -now, then AGENT_CLOCK_OVERRIDE, then
// the scenario reference time in scenario mode, else wall clock.
func resolveClock(nowFlag, override string, scenarios bool) (func() time.Time, error) {
	raw := strings.TrimSpace(nowFlag)
	if raw == "" {
		raw = strings.TrimSpace(override)
	}
	if raw == "" && scenarios {
		raw = scenarioNow
	}
	if raw == "" {
		return func() time.Time { return time.Now().UTC() }, nil
	}

	pinned, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid evaluation time %q: %v", contractx.ErrValidation, raw, err)
	}
	pinned = pinned.UTC()
	log.Info().Time("now", pinned).Msg("evaluation time pinned")
	return func() time.Time { return pinned }, nil
}

func writeTrace(out io.Writer, title, message string, trace contractx.Trace) error {
	raw, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}
	_, err = fmt.Fprintf(out, "## %s\n\n**Message:** %s\n\n### Trace\n\n```json\n%s\n```\n\n### Reply\n\n%s\n\n",
		title, message, raw, trace.FinalMessage)
	return err
}
