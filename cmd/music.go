package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"mediaforge/core/orchestrator"
	"mediaforge/model"
	"mediaforge/presets"
)

var (
	musicPrompt      string
	musicProvider    string
	musicStyle       string
	musicDuration    int
	musicBPM         int
	musicLyricsFile  string
	musicReference   string
	musicOutput      string
	musicTemperature float64
	musicForce       bool
)

var musicCmd = &cobra.Command{
	Use:   "music",
	Short: "Generate music from a text prompt",
	Long: `Generate music from a text prompt.

Providers: minimax (vocals, reference audio) and lyria (realtime
instrumental streaming). A style preset fills in prompt, bpm and
temperature; explicit flags win over the preset.`,
	Run: func(cmd *cobra.Command, args []string) {
		req := model.MusicRequest{
			Prompt:            musicPrompt,
			BPM:               musicBPM,
			DurationSeconds:   musicDuration,
			Temperature:       musicTemperature,
			ReferenceAudioURL: musicReference,
			OutputPath:        musicOutput,
		}

		if musicStyle != "" {
			preset, err := presets.Music(musicStyle)
			if err != nil {
				log.Fatalf("%v", err)
			}
			if req.Prompt == "" {
				req.Prompt = preset.Prompt
			} else {
				req.Prompt = req.Prompt + ", " + preset.Prompt
			}
			if req.BPM == 0 {
				req.BPM = preset.BPM
			}
			if req.Temperature == 0 {
				req.Temperature = preset.Temperature
			}
		}
		if req.Prompt == "" {
			log.Fatalf("a prompt is required (--prompt or --style)")
		}

		if musicLyricsFile != "" {
			data, err := os.ReadFile(musicLyricsFile)
			if err != nil {
				log.Fatalf("read lyrics file: %v", err)
			}
			req.Lyrics = string(data)
		}

		a, err := newApp()
		if err != nil {
			log.Fatalf("initialisation failed: %v", err)
		}
		defer a.Close()

		fmt.Printf("Generating music with %s...\n", musicProvider)
		report, err := a.orch.GenerateMusic(cmd.Context(), musicProvider, req, orchestrator.Options{
			Force:   musicForce,
			Command: commandString(),
		})
		if err != nil {
			log.Fatalf("generation failed: %v", err)
		}

		printReport(report)
	},
}

func init() {
	musicCmd.Flags().StringVarP(&musicPrompt, "prompt", "p", "", "text prompt describing the music")
	musicCmd.Flags().StringVar(&musicProvider, "provider", "minimax", "music provider (minimax, lyria)")
	musicCmd.Flags().StringVar(&musicStyle, "style", "", "style preset (see 'mediaforge presets')")
	musicCmd.Flags().IntVar(&musicDuration, "duration", 0, "duration in seconds (lyria)")
	musicCmd.Flags().IntVar(&musicBPM, "bpm", 0, "beats per minute (lyria)")
	musicCmd.Flags().StringVar(&musicLyricsFile, "lyrics", "", "path to a lyrics file (minimax)")
	musicCmd.Flags().StringVar(&musicReference, "reference", "", "reference audio URL for style transfer (minimax)")
	musicCmd.Flags().StringVarP(&musicOutput, "output", "o", "", "output file path")
	musicCmd.Flags().Float64Var(&musicTemperature, "temperature", 0, "sampling temperature (lyria)")
	musicCmd.Flags().BoolVar(&musicForce, "force", false, "generate even if an identical request already ran")
	rootCmd.AddCommand(musicCmd)
}

// printReport renders a generate outcome for the terminal.
func printReport(report *orchestrator.Report) {
	if report.Duplicate != nil {
		dup := report.Duplicate
		fmt.Printf("Identical request already tracked as job %s (status: %s)\n", dup.ID, dup.Status)
		if dup.OutputPath != "" {
			fmt.Printf("Output: %s\n", dup.OutputPath)
		}
		fmt.Println("Use --force to generate anyway.")
		return
	}

	result := report.Result
	if !result.Success {
		fmt.Printf("Generation failed: %s\n", result.Error)
		if report.Job != nil {
			fmt.Printf("Tracked as job %s (status: %s)\n", report.Job.ID, report.Job.Status)
		}
		os.Exit(1)
	}

	fmt.Println("Generation complete.")
	if result.FilePath != "" {
		fmt.Printf("Output: %s\n", result.FilePath)
	}
	if report.Job != nil {
		fmt.Printf("Job: %s (status: %s)\n", report.Job.ID, report.Job.Status)
	}
}
