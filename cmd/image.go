package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"mediaforge/core/imagen"
	"mediaforge/core/orchestrator"
	"mediaforge/model"
)

var (
	imagePrompt string
	imageAspect string
	imageCount  int
	imageOutput string
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Generate an image from a text prompt",
	Run: func(cmd *cobra.Command, args []string) {
		if imagePrompt == "" {
			log.Fatalf("a prompt is required (--prompt)")
		}

		req := model.ImageRequest{
			Prompt:      imagePrompt,
			AspectRatio: imageAspect,
			NumImages:   imageCount,
			OutputPath:  imageOutput,
		}

		a, err := newApp()
		if err != nil {
			log.Fatalf("initialisation failed: %v", err)
		}
		defer a.Close()

		fmt.Println("Generating image...")
		report, err := a.orch.GenerateImage(cmd.Context(), imagen.Name, req, orchestrator.Options{
			Command: commandString(),
		})
		if err != nil {
			log.Fatalf("generation failed: %v", err)
		}

		printReport(report)
	},
}

func init() {
	imageCmd.Flags().StringVarP(&imagePrompt, "prompt", "p", "", "text prompt describing the image")
	imageCmd.Flags().StringVar(&imageAspect, "aspect", "1:1", "aspect ratio")
	imageCmd.Flags().IntVar(&imageCount, "count", 1, "number of images to request")
	imageCmd.Flags().StringVarP(&imageOutput, "output", "o", "", "output file path")
	rootCmd.AddCommand(imageCmd)
}
