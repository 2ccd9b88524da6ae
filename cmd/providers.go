package cmd

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mediaforge/core/providers"
	"mediaforge/presets"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List available generation providers",
	Run: func(cmd *cobra.Command, args []string) {
		reg := providers.Build(cfg)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tNAME\tVOCALS\tREALTIME\tREFERENCE AUDIO")

		for _, name := range reg.ListMusic() {
			p, err := reg.Music(name)
			if err != nil {
				log.Fatalf("%v", err)
			}
			d := p.Descriptor()
			fmt.Fprintf(w, "music\t%s\t%s\t%s\t%s\n",
				d.Name, yesNo(d.SupportsVocals), yesNo(d.SupportsRealtime), yesNo(d.SupportsReferenceAudio))
		}
		for _, name := range reg.ListVideo() {
			p, err := reg.Video(name)
			if err != nil {
				log.Fatalf("%v", err)
			}
			fmt.Fprintf(w, "video\t%s\t-\t-\t-\n", p.Descriptor().Name)
		}
		for _, name := range reg.ListImage() {
			p, err := reg.Image(name)
			if err != nil {
				log.Fatalf("%v", err)
			}
			fmt.Fprintf(w, "image\t%s\t-\t-\t-\n", p.Descriptor().Name)
		}
		w.Flush()
	},
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in style presets",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Music presets:")
		for _, name := range presets.MusicNames() {
			p, _ := presets.Music(name)
			fmt.Printf("  %-12s %d bpm, %s\n", name, p.BPM, p.Prompt)
		}
		fmt.Println("\nVideo presets:")
		for _, name := range presets.VideoNames() {
			p, _ := presets.Video(name)
			fmt.Printf("  %-12s %s, %s\n", name, p.AspectRatio, p.Prompt)
		}
	},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(presetsCmd)
}
