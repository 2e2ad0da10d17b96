package cmd

import (
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Lattice-Automation/primedesign/internal/design"
)

func extractString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		if helperr := cmd.Help(); helperr != nil {
			log.Fatal(helperr)
		}
		log.Fatalf("failed to parse --%s: %v", name, err)
	}
	return value
}

func extractInt(cmd *cobra.Command, name string) int {
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		if helperr := cmd.Help(); helperr != nil {
			log.Fatal(helperr)
		}
		log.Fatalf("failed to parse --%s: %v", name, err)
	}
	return value
}

func extractFloat(cmd *cobra.Command, name string) float64 {
	value, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		if helperr := cmd.Help(); helperr != nil {
			log.Fatal(helperr)
		}
		log.Fatalf("failed to parse --%s: %v", name, err)
	}
	return value
}

// extractStrand parses --strand (accepts "+"/"-"/"plus"/"minus", case
// insensitive) into a design.Strand.
func extractStrand(cmd *cobra.Command) design.Strand {
	raw := strings.ToLower(strings.TrimSpace(extractString(cmd, "strand")))
	switch raw {
	case "+", "plus", "":
		return design.Plus
	case "-", "minus":
		return design.Minus
	default:
		log.Fatalf("unrecognized --strand value %q, want + or -", raw)
		return design.Plus
	}
}

// extractVariantBackend parses --variant-backend into a variantsource.Backend
// string, defaulting to duckdb when unset.
func extractVariantBackend(cmd *cobra.Command) string {
	raw := strings.ToLower(strings.TrimSpace(extractString(cmd, "variant-backend")))
	if raw == "" {
		return "duckdb"
	}
	return raw
}
