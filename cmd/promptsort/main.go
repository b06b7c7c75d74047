// Command promptsort sorts AI-generated images into keyword folders based
// on the generation prompts embedded in their metadata.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	promptsort "github.com/anatolykoptev/go-promptsort"
)

// journalFile is where classify writes its undo log, inside the config dir.
const journalFile = "last_run.json"

var cli struct {
	Verbose   bool   `short:"v" help:"Enable debug logging."`
	ConfigDir string `name:"config-dir" env:"PROMPTSORT_CONFIG_DIR" help:"Directory holding settings, presets and the undo journal."`

	Classify ClassifyCmd `cmd:"" help:"Sort images into keyword folders by their embedded prompts."`
	Undo     UndoCmd     `cmd:"" help:"Reverse the moves of the last classify run."`
	Inspect  InspectCmd  `cmd:"" help:"Print the prompt data embedded in an image."`
	Preset   PresetGroup `cmd:"" help:"Manage saved settings presets."`
}

// appEnv is passed to every command Run method.
type appEnv struct {
	store *promptsort.Store
	dir   string
	ctx   context.Context
}

func (env *appEnv) journalPath() string { return filepath.Join(env.dir, journalFile) }

// ClassifyCmd runs a classification plan built from the stored settings,
// optionally overridden by flags.
type ClassifyCmd struct {
	Source   string   `arg:"" optional:"" help:"Source directory; overrides the stored setting." type:"existingdir"`
	Keywords []string `short:"k" placeholder:"CAT|DOG" help:"Keyword field per cascade level; overrides the stored levels."`
	Rename   bool     `help:"Rename moved files to <keyword>_000001<ext>."`
	Dest     string   `help:"Move every match into this directory instead of per-keyword folders."`
	Preset   string   `help:"Start from a saved preset instead of the stored settings."`
	Workers  int      `default:"3" help:"Concurrent extraction workers."`
	Dedup    bool     `help:"Skip images perceptually identical to one already seen."`
}

func (c *ClassifyCmd) Run(env *appEnv) error {
	settings := env.store.Load()
	if c.Preset != "" {
		var err error
		settings, err = env.store.LoadPreset(c.Preset)
		if err != nil {
			return err
		}
	}

	plan := settings.Plan()
	if c.Source != "" {
		plan.SourceDir = c.Source
	}
	if len(c.Keywords) > 0 {
		plan.Levels = nil
		for _, kw := range c.Keywords {
			plan.Levels = append(plan.Levels, promptsort.Level{Enabled: true, Keywords: promptsort.ParseKeywords(kw)})
		}
		plan.FullTracking = false
	}
	if c.Rename {
		plan.RenameImages = true
	}
	if c.Dest != "" {
		plan.CustomDest = c.Dest
	}

	cfg := &promptsort.Config{
		MaxWorkers:     c.Workers,
		SkipDuplicates: c.Dedup,
		OnMove: func(ev promptsort.MoveEvent) {
			fmt.Printf("%s -> %s\n", ev.Source, ev.Dest)
		},
		OnPanic: func(tag string, r any) {
			slog.Error("promptsort: worker panic", "tag", tag, "panic", fmt.Sprint(r))
		},
	}

	journal, err := cfg.Classify(env.ctx, plan)
	if journal.Empty() {
		if err != nil {
			return err
		}
		fmt.Println("no images moved")
		return nil
	}

	fmt.Printf("moved %d image(s)\n", len(journal.Moves))
	if mkErr := os.MkdirAll(env.dir, 0o755); mkErr == nil {
		if jErr := journal.Save(env.journalPath()); jErr != nil {
			slog.Warn("promptsort: journal not saved, undo unavailable", "error", jErr.Error())
		}
	}
	return err
}

// UndoCmd replays the last journal in reverse.
type UndoCmd struct{}

func (c *UndoCmd) Run(env *appEnv) error {
	path := env.journalPath()
	journal, err := promptsort.LoadJournal(path)
	if err != nil {
		return fmt.Errorf("no classify run to undo: %w", err)
	}
	restored := journal.Undo()
	fmt.Printf("restored %d image(s)\n", restored)
	return os.Remove(path)
}

// InspectCmd prints what a single image carries.
type InspectCmd struct {
	Path   string `arg:"" help:"Image file to inspect." type:"existingfile"`
	Record bool   `help:"Print the parsed record as JSON instead of the raw prompt text."`
}

func (c *InspectCmd) Run(env *appEnv) error {
	img, err := promptsort.OpenImage(c.Path)
	if err != nil {
		return err
	}

	if c.Record {
		rec := promptsort.ExtractRecord(img)
		if rec == nil {
			return fmt.Errorf("no prompt data in %s", c.Path)
		}
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	prompt := promptsort.ExtractPrompt(img)
	if prompt == "" {
		return fmt.Errorf("no prompt data in %s", c.Path)
	}
	fmt.Println(prompt)
	return nil
}

// PresetGroup manages named settings presets.
type PresetGroup struct {
	List   PresetListCmd   `cmd:"" help:"List saved presets."`
	Save   PresetSaveCmd   `cmd:"" help:"Save the current settings under a preset name."`
	Show   PresetShowCmd   `cmd:"" help:"Print a preset as JSON."`
	Delete PresetDeleteCmd `cmd:"" help:"Delete a preset."`
}

type PresetListCmd struct{}

func (c *PresetListCmd) Run(env *appEnv) error {
	names := env.store.ListPresets()
	if len(names) == 0 {
		fmt.Println("no presets saved")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

type PresetSaveCmd struct {
	Name string `arg:"" help:"Preset name."`
}

func (c *PresetSaveCmd) Run(env *appEnv) error {
	return env.store.SavePreset(c.Name, env.store.Load())
}

type PresetShowCmd struct {
	Name string `arg:"" help:"Preset name."`
}

func (c *PresetShowCmd) Run(env *appEnv) error {
	s, err := env.store.LoadPreset(c.Name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

type PresetDeleteCmd struct {
	Name string `arg:"" help:"Preset name."`
}

func (c *PresetDeleteCmd) Run(env *appEnv) error {
	return env.store.DeletePreset(c.Name)
}

func main() {
	// Optional .env for PROMPTSORT_ variables; must load before kong
	// resolves env-tagged flags.
	_ = godotenv.Load()

	kctx := kong.Parse(&cli,
		kong.Name("promptsort"),
		kong.Description("Sort AI-generated images by the prompts embedded in their metadata."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	dir := cli.ConfigDir
	if dir == "" {
		dir = defaultConfigDir()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := kctx.Run(&appEnv{
		store: promptsort.NewStore(dir),
		dir:   dir,
		ctx:   ctx,
	})
	kctx.FatalIfErrorf(err)
}

func defaultConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".promptsort"
	}
	return filepath.Join(base, "promptsort")
}
