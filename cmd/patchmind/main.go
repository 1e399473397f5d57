// cmd/patchmind/main.go
//
// Entry point for the patchmind chat. Running `patchmind` in any directory
// creates a .patchmind/ folder there, loads the rack inventory and any
// phrasing rule packs, and opens the conversational refinement TUI around
// a patch.

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/voltlab/patchmind/internal/config"
	"github.com/voltlab/patchmind/internal/feedback"
	"github.com/voltlab/patchmind/internal/logging"
	"github.com/voltlab/patchmind/internal/patch"
	"github.com/voltlab/patchmind/internal/rack"
	"github.com/voltlab/patchmind/internal/refine"
	"github.com/voltlab/patchmind/internal/session"
	"github.com/voltlab/patchmind/internal/transcript"
	"github.com/voltlab/patchmind/internal/tui"
	"github.com/voltlab/patchmind/plugins"
)

func main() {
	rackPath := flag.String("rack", "", "rack inventory YAML (overrides config)")
	patchPath := flag.String("patch", "", "patch YAML to refine (defaults to a starter patch)")
	flag.Parse()

	cwd, err := os.Getwd()
	if err != nil {
		fail("get working directory: %v", err)
	}
	if err := config.InitPatchmindDir(cwd); err != nil {
		fail("initialize .patchmind directory: %v", err)
	}
	cfg, err := config.NewConfig(cwd)
	if err != nil {
		fail("load config: %v", err)
	}

	logger, err := logging.New(cwd)
	if err != nil {
		fail("open log: %v", err)
	}
	defer logger.Close()

	rk, err := loadRack(cfg, *rackPath)
	if err != nil {
		fail("load rack: %v", err)
	}
	initial, err := loadPatch(*patchPath, rk)
	if err != nil {
		fail("load patch: %v", err)
	}

	lexicon, err := plugins.LoadLexicon(cfg.RulesDir())
	if err != nil {
		fail("load rule packs: %v", err)
	}

	engine := refine.NewEngine(
		refine.WithParser(feedback.NewParser(feedback.WithLexicon(lexicon))),
		refine.WithGate(feedback.NewGate(cfg.Settings.ClarifyThreshold)),
		refine.WithMapper(refine.NewMapper(
			refine.WithMultipliers(cfg.Settings.Multipliers.Decrease, cfg.Settings.Multipliers.Increase),
		)),
	)

	scribe, err := transcript.New(filepath.Join(cfg.LogsDir(), "transcript.log"))
	if err != nil {
		fail("open transcript: %v", err)
	}

	sess := session.New(initial, rk,
		session.WithEngine(engine),
		session.WithHistoryCapacity(cfg.Settings.HistoryCapacity),
		session.WithLogger(logger),
		session.WithTranscript(scribe),
	)

	logger.Printf("session start rack=%s patch=%s rules=%s", rk.Name, initial.ID, cfg.RulesDir())
	p := tea.NewProgram(tui.NewApp(cfg, sess), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fail("run TUI: %v", err)
	}
}

func loadRack(cfg *config.Config, override string) (rack.Rack, error) {
	if override != "" {
		return rack.Load(override)
	}
	if path, ok := cfg.RackPath(); ok {
		return rack.Load(path)
	}
	return rack.Demo(), nil
}

// loadPatch reads the patch to refine, or builds a starter patch through
// the rack's basic voice so there is always something to talk about. Real
// deployments get the initial patch from the generation service.
func loadPatch(path string, rk rack.Rack) (*patch.Patch, error) {
	if path != "" {
		return patch.Load(path)
	}
	return starterPatch(rk), nil
}

func starterPatch(rk rack.Rack) *patch.Patch {
	p := &patch.Patch{
		ID:     "starter",
		RackID: rk.ID,
		Metadata: patch.Metadata{
			Title:       "Starter Voice",
			Description: "A basic subtractive voice through your rack.",
			Difficulty:  "beginner",
		},
		WhyThisWorks: "Oscillator into filter into VCA is the backbone most patches build on.",
		Tips:         []string{"Sweep the cutoff while it plays to find the sweet spot."},
	}
	// Chain the first few audio modules in rack order.
	var prev *rack.Module
	count := 0
	for i := range rk.Modules {
		mod := rk.Modules[i]
		if len(mod.Outputs) == 0 && len(mod.Inputs) == 0 {
			continue
		}
		if prev != nil && len(prev.Outputs) > 0 && len(mod.Inputs) > 0 {
			conn := patch.Connection{
				ID:         fmt.Sprintf("starter-%d", count+1),
				From:       patch.PortRef{ModuleID: prev.ID, ModuleName: prev.Name, Port: prev.PrimaryOutput()},
				To:         patch.PortRef{ModuleID: mod.ID, ModuleName: mod.Name, Port: mod.PrimaryInput()},
				SignalType: patch.SignalAudio,
				Importance: patch.ImportancePrimary,
			}
			p.Connections = append(p.Connections, conn)
			p.PatchingOrder = append(p.PatchingOrder, conn.ID)
			count++
			if count == 3 {
				break
			}
		}
		prev = &mod
	}
	for _, mod := range rk.Modules {
		if mod.Matches("filter") {
			p.ParameterSuggestions = append(p.ParameterSuggestions, patch.ParameterSuggestion{
				ModuleID:   mod.ID,
				ModuleName: mod.Name,
				Parameter:  "cutoff",
				Value:      "5kHz",
				Reasoning:  "open enough to hear the raw tone",
			})
			break
		}
	}
	return p
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "patchmind: "+format+"\n", args...)
	os.Exit(1)
}
