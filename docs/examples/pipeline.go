// Package examples shows how the graph, plugin, and hooks packages compose
// into a single runnable unit: a small ingest pipeline plugin that fetches a
// batch, branches on whether it found anything, fans out into two
// independent enrichment systems, and reports the merged result — wired to
// zap logging, Prometheus metrics, and a cron-driven tick in addition to the
// manual Tick(schedule) a host can call directly.
package examples

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/TeamRadiantAI/polaris-sub000/access"
	"github.com/TeamRadiantAI/polaris-sub000/graph"
	"github.com/TeamRadiantAI/polaris-sub000/graphexec"
	"github.com/TeamRadiantAI/polaris-sub000/hooks"
	"github.com/TeamRadiantAI/polaris-sub000/obslog"
	"github.com/TeamRadiantAI/polaris-sub000/obsmetrics"
	"github.com/TeamRadiantAI/polaris-sub000/plugin"
	"github.com/TeamRadiantAI/polaris-sub000/predicate"
	"github.com/TeamRadiantAI/polaris-sub000/resource"
	"github.com/TeamRadiantAI/polaris-sub000/schedule"
	"github.com/TeamRadiantAI/polaris-sub000/sysctx"
	"github.com/TeamRadiantAI/polaris-sub000/system"
)

// RunIngest is the tick-dispatch schedule IngestPlugin registers itself
// under. A host ticks it manually via Runtime.Tick, or lets CronTrigger
// drive it on a wall-clock cadence.
type RunIngest struct{}

// FetchResult is the output the pipeline's first system produces; the
// decision node branches on whether it's empty.
type FetchResult struct {
	Items []string
}

// Summary and Extraction are the two independent enrichments that run in
// parallel over a non-empty FetchResult.
type Summary struct{ Text string }
type Extraction struct{ Entities []string }

// IngestPlugin owns one compiled graph and the executor that runs it. Build
// assembles both; Update runs the graph once per tick.
type IngestPlugin struct {
	plugin.BasePlugin

	log     obslog.Logger
	metrics *obsmetrics.Collector
	hookAPI *hooks.API

	g        *graph.Graph
	executor *graphexec.Executor
}

// NewIngestPlugin wires a zap-backed logger and a Prometheus collector
// registered against reg into a fresh plugin. Pass prometheus.NewRegistry()
// for an isolated registry in tests.
func NewIngestPlugin(zl *zap.Logger, reg prometheus.Registerer) *IngestPlugin {
	return &IngestPlugin{
		log:     obslog.NewZap(zl),
		metrics: obsmetrics.New(reg, obsmetrics.Options{}),
		hookAPI: hooks.NewAPI(),
	}
}

func (p *IngestPlugin) Name() string { return "ingest" }

func (p *IngestPlugin) TickSchedules() []schedule.ID {
	return []schedule.ID{schedule.Of[RunIngest]()}
}

// Build compiles the pipeline graph, registers a logging observer on
// SystemError, and constructs the executor the plugin will run on every
// tick. Capabilities are published so a host (or another plugin depending on
// "ingest") can reach the same graph/executor pair directly.
func (p *IngestPlugin) Build(rt *plugin.Runtime) error {
	if err := p.hookAPI.RegisterObserver("log-system-error", func(event hooks.Event) {
		if se, ok := event.(hooks.SystemError); ok {
			p.log.Error("system failed", "system", se.SystemName, "error", se.Err)
		}
	}, schedule.Of[schedule.OnSystemError]()); err != nil {
		return fmt.Errorf("ingest: registering observer: %w", err)
	}

	p.g = buildIngestGraph()
	p.executor = graphexec.New(
		graphexec.WithLogger(p.log),
		graphexec.WithMetrics(p.metrics),
		graphexec.WithHooks(p.hookAPI),
		graphexec.WithMaxLoopIterations(1000),
	)

	resource.Insert(rt.Capabilities(), p.g)
	resource.Insert(rt.Capabilities(), p.executor)
	return nil
}

// Update runs the compiled graph once against a fresh root context built by
// the runtime: globals come from rt.Globals(), not the capability registry
// (a plugin-to-plugin concern Update has no business exposing to systems),
// and any local-resource factories another plugin registered via
// plugin.RegisterLocal are pre-populated before the graph takes a single
// step.
func (p *IngestPlugin) Update(rt *plugin.Runtime, sched schedule.ID) error {
	root := rt.CreateContext()
	_, err := p.executor.Run(context.Background(), p.g, root, "ingest")
	return err
}

// NewCronTrigger binds RunIngest to spec (e.g. "@every 30s") so the plugin
// ticks on a wall-clock cadence instead of only via manual Tick calls.
func NewCronTrigger(rt *plugin.Runtime, spec string) (*schedule.CronTrigger, error) {
	trigger := schedule.NewCronTrigger(rt)
	if _, err := trigger.AddSchedule(spec, schedule.Of[RunIngest]()); err != nil {
		return nil, fmt.Errorf("ingest: registering cron schedule %q: %w", spec, err)
	}
	return trigger, nil
}

func buildIngestGraph() *graph.Graph {
	b := graph.NewBuilder()
	b.AddSystem("fetch", fetchSystem())

	hasItems := predicate.NewPredicate(func(r FetchResult) bool { return len(r.Items) > 0 })
	b.AddConditionalBranch("has-items", hasItems,
		func(tb *graph.Builder) {
			tb.AddParallel("enrich", summarizeBranch, extractBranch)
			tb.AddSystem("report", reportSystem())
		},
		func(fb *graph.Builder) {
			fb.AddSystem("skip", skipSystem())
		},
	)

	return b.Build()
}

func summarizeBranch(b *graph.Builder) {
	b.AddSystem("summarize", summarizeSystem())
}

func extractBranch(b *graph.Builder) {
	b.AddSystem("extract", extractSystem())
}

// fetchStep is a hand-written system.Typed[FetchResult] (rather than a
// system.Func) so it can declare its read/write access footprint alongside
// a named type — the Go equivalent of the tuple-composed SystemParam the
// original implementation derives automatically. It returns its result
// directly; boxing it under FetchResult's key and storing it into sc is the
// executor's job once Erase wraps this as a system.System.
type fetchStep struct{}

func (fetchStep) Name() string { return "fetch" }

func (fetchStep) Access() access.Access { return access.New() }

func (fetchStep) Run(ctx context.Context, sc *sysctx.Context) (FetchResult, error) {
	return FetchResult{Items: []string{"a", "b"}}, nil
}

func fetchSystem() system.System { return system.Erase[FetchResult](fetchStep{}) }

func summarizeSystem() system.System {
	return system.Erase[Summary](system.Func[Summary]{
		FuncName: "summarize",
		Fn: func(ctx context.Context, sc *sysctx.Context) (Summary, error) {
			res, err := sysctx.GetOutput[FetchResult](sc)
			if err != nil {
				return Summary{}, err
			}
			return Summary{Text: fmt.Sprintf("%d items", len(res.Items))}, nil
		},
	})
}

func extractSystem() system.System {
	return system.Erase[Extraction](system.Func[Extraction]{
		FuncName: "extract",
		Fn: func(ctx context.Context, sc *sysctx.Context) (Extraction, error) {
			res, err := sysctx.GetOutput[FetchResult](sc)
			if err != nil {
				return Extraction{}, err
			}
			return Extraction{Entities: res.Items}, nil
		},
	})
}

func reportSystem() system.System {
	return system.Erase[system.Void](system.Func[system.Void]{
		FuncName: "report",
		Fn: func(ctx context.Context, sc *sysctx.Context) (system.Void, error) {
			if _, ok := sysctx.TryOutput[Summary](sc); !ok {
				return system.Void{}, fmt.Errorf("report: missing summary")
			}
			if _, ok := sysctx.TryOutput[Extraction](sc); !ok {
				return system.Void{}, fmt.Errorf("report: missing extraction")
			}
			return system.Void{}, nil
		},
	})
}

func skipSystem() system.System {
	return system.Erase[system.Void](system.Func[system.Void]{
		FuncName: "skip",
		Fn: func(ctx context.Context, sc *sysctx.Context) (system.Void, error) {
			return system.Void{}, nil
		},
	})
}

var _ plugin.Plugin = (*IngestPlugin)(nil)
var _ plugin.Updater = (*IngestPlugin)(nil)
