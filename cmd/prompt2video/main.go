package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ivlev/prompt2video/internal/config"
	"github.com/ivlev/prompt2video/internal/llm"
	"github.com/ivlev/prompt2video/internal/narration"
	"github.com/ivlev/prompt2video/internal/pipeline"
	"github.com/ivlev/prompt2video/internal/playback"
	"github.com/ivlev/prompt2video/internal/storyboard"
	"github.com/ivlev/prompt2video/internal/system"
	"github.com/ivlev/prompt2video/internal/tts"
)

var (
	cfgPath  string
	specPath string
	cfg      config.Config
)

func main() {
	system.InitResourceLimits()

	// .env carries the collaborator API keys; absence is fine in dev.
	godotenv.Load()

	root := &cobra.Command{
		Use:   "prompt2video",
		Short: "Turn a text prompt into a narrated, time-boxed video spec and its export artifacts",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
			warnings, err := cfg.Validate()
			for _, w := range warnings {
				fmt.Printf("[!] config: %s\n", w)
			}
			return err
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "prompt2video.yaml", "path to the YAML config")
	root.PersistentFlags().StringVar(&specPath, "spec", "", "spec file (default: latest in spec_dir)")

	root.AddCommand(generateCmd(), checkCmd(), synthCmd(), exportCmd(), previewCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[-] %v\n", err)
		os.Exit(1)
	}
}

func loadSpec() (*storyboard.Spec, *storyboard.Store, error) {
	store, err := storyboard.NewStore(cfg.SpecDir)
	if err != nil {
		return nil, nil, err
	}

	path := specPath
	if path == "" {
		path, err = store.FindLatest()
		if err != nil {
			return nil, nil, err
		}
		fmt.Printf("[*] Using spec: %s\n", path)
	}

	spec, err := store.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return spec, store, nil
}

func synthClient() narration.Synthesizer {
	return &tts.Client{
		Endpoint: cfg.TTS.Endpoint,
		APIKey:   os.Getenv("TTS_API_KEY"),
		Model:    cfg.TTS.Model,
		WorkDir:  cfg.AudioDir,
		Timeout:  time.Duration(cfg.TTS.Timeout * float64(time.Second)),
	}
}

func generateCmd() *cobra.Command {
	var prompt string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a video spec from a prompt and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if prompt == "" {
				return fmt.Errorf("--prompt is required")
			}

			client := &llm.Client{
				Endpoint: cfg.LLM.Endpoint,
				APIKey:   os.Getenv("LLM_API_KEY"),
				Model:    cfg.LLM.Model,
				Timeout:  time.Duration(cfg.LLM.Timeout * float64(time.Second)),
			}

			fmt.Printf("[*] Generating spec for: %s\n", prompt)
			spec, err := client.GenerateSpec(cmd.Context(), prompt)
			if err != nil {
				return err
			}

			store, err := storyboard.NewStore(cfg.SpecDir)
			if err != nil {
				return err
			}
			path, err := store.Save(spec)
			if err != nil {
				return err
			}

			fmt.Printf("[+] Spec saved: %s (%d scenes, %.0fs target)\n",
				path, len(spec.Scenes), spec.DurationTarget)
			return nil
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "", "what the video should be about")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate a spec and report every violation",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, _, err := loadSpec()
			if err != nil {
				return err
			}

			errs := storyboard.Check(spec)
			if len(errs) == 0 {
				fmt.Println("[+] Spec is valid")
				if len(spec.AudioSegments) > 0 {
					report := narration.CheckSync(spec.AudioSegments)
					for _, w := range report.Warnings {
						fmt.Printf("[!] sync: %s\n", w)
					}
					for _, e := range report.Errors {
						fmt.Printf("[!] sync: %s\n", e)
					}
				}
				return nil
			}

			for _, e := range errs {
				fmt.Printf("[-] %s\n", e)
			}
			return fmt.Errorf("%d validation errors", len(errs))
		},
	}
}

func synthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "synth",
		Short: "Synthesize narration and attach audio segment timing to the spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, store, err := loadSpec()
			if err != nil {
				return err
			}

			p := pipeline.New(cfg, synthClient())
			out, err := p.Synthesize(cmd.Context(), spec)
			if err != nil {
				return err
			}

			path, err := store.Save(out)
			if err != nil {
				return err
			}
			fmt.Printf("[+] Narration resolved: %d segments, spec saved: %s\n",
				len(out.AudioSegments), path)
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Run the full pipeline and write subtitles, transcript and cues manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, _, err := loadSpec()
			if err != nil {
				return err
			}

			p := pipeline.New(cfg, synthClient())
			result, err := p.Export(cmd.Context(), spec)
			if err != nil {
				return err
			}

			if !result.SyncReport.Valid {
				for _, e := range result.SyncReport.Errors {
					fmt.Printf("[!] sync: %s\n", e)
				}
			}
			return nil
		},
	}
}

func previewCmd() *cobra.Command {
	var at float64

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Resolve the render state of each scene at a timeline position",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, _, err := loadSpec()
			if err != nil {
				return err
			}

			queryTime := storyboard.TimelineSeconds(at)
			for i, scene := range spec.Scenes {
				if queryTime < scene.Start || queryTime > scene.End {
					continue
				}
				state := playback.Resolve(scene, queryTime)
				fmt.Printf("[>] t=%.2fs scene %d (%s): x=%.2f y=%.2f scale=%.2f opacity=%.2f\n",
					at, i, scene.Type, state.X, state.Y, state.Scale, state.Opacity)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&at, "time", 0, "timeline position in seconds")
	return cmd
}
