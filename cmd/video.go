package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"mediaforge/core/orchestrator"
	"mediaforge/model"
	"mediaforge/presets"
)

var (
	videoPrompt   string
	videoProvider string
	videoStyle    string
	videoAspect   string
	videoDuration int
	videoImage    string
	videoOutput   string
	videoForce    bool
)

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Generate video from a text prompt",
	Long: `Generate video from a text prompt.

Providers: kling and veo. An optional first-frame image URL anchors the
clip; a style preset fills in prompt and aspect ratio.`,
	Run: func(cmd *cobra.Command, args []string) {
		req := model.VideoRequest{
			Prompt:          videoPrompt,
			AspectRatio:     videoAspect,
			DurationSeconds: videoDuration,
			FirstFrameURL:   videoImage,
			OutputPath:      videoOutput,
		}

		if videoStyle != "" {
			preset, err := presets.Video(videoStyle)
			if err != nil {
				log.Fatalf("%v", err)
			}
			if req.Prompt == "" {
				req.Prompt = preset.Prompt
			} else {
				req.Prompt = req.Prompt + ", " + preset.Prompt
			}
			if req.AspectRatio == "" {
				req.AspectRatio = preset.AspectRatio
			}
		}
		if req.Prompt == "" {
			log.Fatalf("a prompt is required (--prompt or --style)")
		}

		a, err := newApp()
		if err != nil {
			log.Fatalf("initialisation failed: %v", err)
		}
		defer a.Close()

		fmt.Printf("Generating video with %s...\n", videoProvider)
		report, err := a.orch.GenerateVideo(cmd.Context(), videoProvider, req, orchestrator.Options{
			Force:   videoForce,
			Command: commandString(),
		})
		if err != nil {
			log.Fatalf("generation failed: %v", err)
		}

		printReport(report)
	},
}

func init() {
	videoCmd.Flags().StringVarP(&videoPrompt, "prompt", "p", "", "text prompt describing the video")
	videoCmd.Flags().StringVar(&videoProvider, "provider", "kling", "video provider (kling, veo)")
	videoCmd.Flags().StringVar(&videoStyle, "style", "", "style preset (see 'mediaforge presets')")
	videoCmd.Flags().StringVar(&videoAspect, "aspect", "16:9", "aspect ratio")
	videoCmd.Flags().IntVar(&videoDuration, "duration", 5, "duration in seconds")
	videoCmd.Flags().StringVar(&videoImage, "image", "", "first-frame image URL")
	videoCmd.Flags().StringVarP(&videoOutput, "output", "o", "", "output file path")
	videoCmd.Flags().BoolVar(&videoForce, "force", false, "generate even if an identical request already ran")
	rootCmd.AddCommand(videoCmd)
}
