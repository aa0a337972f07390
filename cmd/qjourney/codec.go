package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/qjourney/internal/codec"
	"github.com/san-kum/qjourney/internal/export"
	"github.com/san-kum/qjourney/internal/journey"
	"github.com/san-kum/qjourney/internal/storage"
	"github.com/san-kum/qjourney/internal/viz"
)

// artifactsFor builds the codec artifacts of args[0], or of the configured
// message when no argument is given.
func artifactsFor(cmd *cobra.Command, args []string) (*journey.Artifacts, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	text := cfg.Message
	if len(args) > 0 {
		text = args[0]
	}
	policy, err := codec.ParsePolicy(cfg.Charset)
	if err != nil {
		return nil, err
	}
	return journey.BuildArtifacts(text, policy)
}

func runEncode(cmd *cobra.Command, args []string) error {
	a, err := artifactsFor(cmd, args)
	if err != nil {
		return err
	}
	if jsonOut {
		return storage.WriteJSON(os.Stdout, a.Export())
	}

	fmt.Printf("message:    %q\n", a.Message)
	fmt.Printf("binary:     %s\n", codec.JoinGroups(a.Groups))
	fmt.Printf("compressed: %s\n", a.Bits)
	fmt.Printf("payload:    % x (%d bytes)\n\n", a.Packed, len(a.Packed))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHAR\tCOUNT\tCODE")
	for _, e := range a.Codebook.Table.Entries() {
		fmt.Fprintf(w, "%q\t%d\t%s\n", e.Symbol, a.Codebook.Frequencies[e.Symbol], e.Code)
	}
	w.Flush()

	fmt.Printf("\n%d -> %d bits (%.1f%% saved)\n",
		a.Stats.OriginalBits, a.Stats.CompressedBits, journey.PercentSaved(a.Stats))
	return nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	if huffSource != "" {
		book := codec.NewCodebook(huffSource)
		text, err := book.Decode(strings.Join(args, ""))
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	policy, err := codec.ParsePolicy(cfg.Charset)
	if err != nil {
		return err
	}
	var groups []string
	for _, arg := range args {
		groups = append(groups, strings.Fields(arg)...)
	}
	text, err := codec.NewBinaryCodec(policy).Decode(groups)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func runTree(cmd *cobra.Command, args []string) error {
	a, err := artifactsFor(cmd, args)
	if err != nil {
		return err
	}
	for _, line := range viz.TreeLines(a.Codebook.Root) {
		fmt.Println(line)
	}
	if svgFile != "" {
		if err := os.WriteFile(svgFile, []byte(export.TreeToSVG(a.Codebook.Root)), 0644); err != nil {
			return err
		}
		fmt.Printf("\ntree written to %s\n", svgFile)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd.Context(), cmd, false)
	if err != nil {
		return err
	}
	defer rt.close()

	data := storage.NewExportData(rt.sess, nil)

	if outFile != "" {
		if err := storage.ExportJSON(outFile, data); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", outFile)
	} else if err := storage.WriteJSON(os.Stdout, data); err != nil {
		return err
	}

	if chartFile != "" {
		a := rt.sess.Artifacts()
		svg := export.BitsToSVG(a.Message, a.Codebook.Table, 480, 240)
		if svg == "" {
			return fmt.Errorf("message too short to chart")
		}
		if err := os.WriteFile(chartFile, []byte(svg), 0644); err != nil {
			return err
		}
		rt.logger.Info("chart written", "path", chartFile)
	}
	return nil
}
