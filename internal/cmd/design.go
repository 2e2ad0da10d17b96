package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Lattice-Automation/primedesign/internal/config"
	"github.com/Lattice-Automation/primedesign/internal/design"
	"github.com/Lattice-Automation/primedesign/internal/refsource"
	"github.com/Lattice-Automation/primedesign/internal/report"
	"github.com/Lattice-Automation/primedesign/internal/variantsource"
)

// designCmd runs the full primer-pair search for one target interval:
// region expansion and masking, primer picking, off-target screening, and
// heterodimer screening.
var designCmd = &cobra.Command{
	Use:   "design",
	Short: "Design ranked primer pairs for a target interval",
	Example: `  primedesign design --chrom chr1 --start 9050 --end 9060 \
    --reference genome.fa --out pairs.tsv`,
	Run: runDesign,
}

func init() {
	designCmd.Flags().String("chrom", "", "target chromosome/contig name")
	designCmd.Flags().Int("start", 0, "target 1-based start position")
	designCmd.Flags().Int("end", 0, "target 1-based end position")
	designCmd.Flags().String("strand", "+", "target strand, + or -")
	designCmd.Flags().String("config", "", "path to a config.yaml override")
	designCmd.Flags().String("reference", "", "path to a FASTA reference")
	designCmd.Flags().String("variant-db", "", "path to a variant store (empty = no variant masking)")
	designCmd.Flags().String("variant-backend", "duckdb", "variant store backend: duckdb or kv")
	designCmd.Flags().String("out", "", "output path (default: stdout)")
	designCmd.Flags().String("out-fmt", "tsv", "output format: tsv or bed")

	RootCmd.AddCommand(designCmd)
}

func runDesign(cmd *cobra.Command, args []string) {
	chrom := extractString(cmd, "chrom")
	start := extractInt(cmd, "start")
	end := extractInt(cmd, "end")
	strand := extractStrand(cmd)
	referencePath := extractString(cmd, "reference")
	if chrom == "" || start == 0 || end == 0 || referencePath == "" {
		log.Fatal("--chrom, --start, --end, and --reference are required")
	}

	cfg, err := config.New(extractString(cmd, "config"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	params, err := cfg.Parameters.ToParameters()
	if err != nil {
		log.Fatalf("invalid default parameters: %v", err)
	}
	weights := cfg.Weights.ToWeights()

	ref, err := refsource.LoadFastaFile(referencePath)
	if err != nil {
		log.Fatalf("load reference: %v", err)
	}

	variants, err := openVariantSource(cmd)
	if err != nil {
		log.Fatalf("open variant source: %v", err)
	}
	defer variants.Close()

	target, err := design.NewMapping(chrom, start, end, strand)
	if err != nil {
		log.Fatalf("invalid target interval: %v", err)
	}

	region, err := design.BuildRegion(target, params.AmpliconSize.Max, ref, variants, cfg.VariantMinMAF, cfg.VariantIncludeMissingMafs)
	if err != nil {
		log.Fatalf("build design region: %v", err)
	}

	picker, err := design.NewPrimerPicker(cfg.Primer3Path)
	if err != nil {
		log.Fatalf("start primer picker: %v", err)
	}

	aligner, err := design.NewAlignerWrapper(design.AlignerConfig{
		ExecutablePath: cfg.AlignerPath,
		IndexPath:      cfg.AlignerIndexPath,
		SeedLength:     19,
		SeedMismatches: 0,
		MaxMismatches:  5,
		MaxGapOpens:    1,
		MaxGapExtends:  2,
		MaxHits:        cfg.OffTargetMaxPrimerHits,
		Threads:        1,
	})
	if err != nil {
		picker.Close()
		log.Fatalf("start aligner: %v", err)
	}

	offTarget := design.NewOffTargetDetector(aligner, design.OffTargetConfig{
		MaxPrimerHits:     cfg.OffTargetMaxPrimerHits,
		MaxPrimerPairHits: cfg.OffTargetMaxPrimerPairHits,
		MaxAmpliconSize:   cfg.OffTargetMaxAmpliconSize,
	})

	dimer := design.NewDimerChecker(design.DimerCheckerConfig{
		ExecutablePath: cfg.DuplexTmPath,
		SaltConc:       cfg.DimerSaltConc,
		DNTPConc:       cfg.DimerDNTPConc,
		DNAConc:        cfg.DimerDNAConc,
		TempC:          cfg.DimerTempC,
	})

	pipeline := design.NewPipeline(picker, offTarget, dimer, cfg.OffTargetMinDuplexTm)
	defer pipeline.Close()

	pairs, failures, err := pipeline.Design(region, target, params, weights)
	if err != nil {
		log.Fatalf("design pipeline: %v", err)
	}
	if len(pairs) == 0 {
		log.Printf("no surviving primer pairs; failure breakdown: %v", failures)
	}

	if err := writeReport(cmd, pairs); err != nil {
		log.Fatalf("write report: %v", err)
	}
}

func openVariantSource(cmd *cobra.Command) (design.VariantSource, error) {
	path := extractString(cmd, "variant-db")
	if path == "" {
		return variantsource.NewCached(nil)
	}
	return variantsource.Open(variantsource.Backend(extractVariantBackend(cmd)), path)
}

func writeReport(cmd *cobra.Command, pairs []design.PrimerPair) error {
	out := extractString(cmd, "out")
	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch extractString(cmd, "out-fmt") {
	case "bed":
		return report.WriteBED12(w, pairs)
	case "tsv", "":
		return report.WriteTSV(w, pairs)
	default:
		return fmt.Errorf("unknown --out-fmt %q, want tsv or bed", extractString(cmd, "out-fmt"))
	}
}
