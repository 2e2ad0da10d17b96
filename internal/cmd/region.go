package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/Lattice-Automation/primedesign/internal/config"
	"github.com/Lattice-Automation/primedesign/internal/design"
	"github.com/Lattice-Automation/primedesign/internal/refsource"
	"github.com/Lattice-Automation/primedesign/internal/variantsource"
)

// regionCmd prints the masked and unmasked design region for a target
// without running the primer picker, useful for debugging masking.
var regionCmd = &cobra.Command{
	Use:   "region",
	Short: "Print the expanded, masked design region for a target interval",
	Example: `  primedesign region --chrom chr1 --start 9050 --end 9060 \
    --reference genome.fa`,
	Run: runRegion,
}

func init() {
	regionCmd.Flags().String("chrom", "", "target chromosome/contig name")
	regionCmd.Flags().Int("start", 0, "target 1-based start position")
	regionCmd.Flags().Int("end", 0, "target 1-based end position")
	regionCmd.Flags().String("strand", "+", "target strand, + or -")
	regionCmd.Flags().String("config", "", "path to a config.yaml override")
	regionCmd.Flags().String("reference", "", "path to a FASTA reference")
	regionCmd.Flags().String("variant-db", "", "path to a variant store (empty = no variant masking)")
	regionCmd.Flags().String("variant-backend", "duckdb", "variant store backend: duckdb or kv")

	RootCmd.AddCommand(regionCmd)
}

func runRegion(cmd *cobra.Command, args []string) {
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

	ref, err := refsource.LoadFastaFile(referencePath)
	if err != nil {
		log.Fatalf("load reference: %v", err)
	}

	path := extractString(cmd, "variant-db")
	var variants design.VariantSource
	if path == "" {
		variants, err = variantsource.NewCached(nil)
	} else {
		variants, err = variantsource.Open(variantsource.Backend(extractVariantBackend(cmd)), path)
	}
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

	fmt.Printf("region: %s\n", region.Mapping)
	fmt.Printf("soft-masked:\n%s\n", region.SoftMasked)
	fmt.Printf("hard-masked:\n%s\n", region.HardMasked)
}
