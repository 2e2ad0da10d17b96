// Package config is for app wide settings.
package config

import (
	_ "embed"
	"log"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/Lattice-Automation/primedesign/internal/design"
)

var (
	// dataDir is the root directory where primedesign settings live.
	dataDir string

	// defaultConfigPath is the path to a local/default config file.
	defaultConfigPath string
)

var (
	// DefaultConfig is the config embedded with primedesign and installed
	// on first run.
	//go:embed config.yaml
	DefaultConfig []byte
)

// TripleConfig is the YAML shape of a design.Triple.
type TripleConfig struct {
	Min int `mapstructure:"min"`
	Opt int `mapstructure:"opt"`
	Max int `mapstructure:"max"`
}

func (t TripleConfig) toTriple() (design.Triple, error) {
	return design.NewTriple(t.Min, t.Opt, t.Max)
}

// ParametersConfig is the YAML shape of design.Parameters.
type ParametersConfig struct {
	AmpliconSize    TripleConfig `mapstructure:"amplicon-size"`
	AmpliconTm      TripleConfig `mapstructure:"amplicon-tm"`
	PrimerSize      TripleConfig `mapstructure:"primer-size"`
	PrimerTm        TripleConfig `mapstructure:"primer-tm"`
	PrimerGC        TripleConfig `mapstructure:"primer-gc"`
	GCClampMin      int          `mapstructure:"gc-clamp-min"`
	GCClampMax      int          `mapstructure:"gc-clamp-max"`
	MaxHomopolymer  int          `mapstructure:"max-homopolymer"`
	MaxAmbiguous    int          `mapstructure:"max-ambiguous"`
	MaxDinucBases   int          `mapstructure:"max-dinuc-bases"`
	AvoidSoftMasked bool         `mapstructure:"avoid-soft-masked"`
	NumReturn       int          `mapstructure:"num-return"`
}

// ToParameters converts the YAML-decoded config into a design.Parameters,
// validating every Triple along the way.
func (p ParametersConfig) ToParameters() (design.Parameters, error) {
	ampliconSize, err := p.AmpliconSize.toTriple()
	if err != nil {
		return design.Parameters{}, err
	}
	ampliconTm, err := p.AmpliconTm.toTriple()
	if err != nil {
		return design.Parameters{}, err
	}
	primerSize, err := p.PrimerSize.toTriple()
	if err != nil {
		return design.Parameters{}, err
	}
	primerTm, err := p.PrimerTm.toTriple()
	if err != nil {
		return design.Parameters{}, err
	}
	primerGC, err := p.PrimerGC.toTriple()
	if err != nil {
		return design.Parameters{}, err
	}

	params := design.Parameters{
		AmpliconSize:    ampliconSize,
		AmpliconTm:      ampliconTm,
		PrimerSize:      primerSize,
		PrimerTm:        primerTm,
		PrimerGC:        primerGC,
		GCClampMin:      p.GCClampMin,
		GCClampMax:      p.GCClampMax,
		MaxHomopolymer:  p.MaxHomopolymer,
		MaxAmbiguous:    p.MaxAmbiguous,
		MaxDinucBases:   p.MaxDinucBases,
		AvoidSoftMasked: p.AvoidSoftMasked,
		NumReturn:       p.NumReturn,
	}
	if err := params.Validate(); err != nil {
		return design.Parameters{}, err
	}
	return params, nil
}

// WeightsConfig is the YAML shape of design.Weights.
type WeightsConfig struct {
	SizeLt             float64 `mapstructure:"size-lt"`
	SizeGt             float64 `mapstructure:"size-gt"`
	TmLt               float64 `mapstructure:"tm-lt"`
	TmGt               float64 `mapstructure:"tm-gt"`
	GCContentLt        float64 `mapstructure:"gc-content-lt"`
	GCContentGt        float64 `mapstructure:"gc-content-gt"`
	SelfAnyTh          float64 `mapstructure:"self-any-th"`
	SelfEndTh          float64 `mapstructure:"self-end-th"`
	HairpinTh          float64 `mapstructure:"hairpin-th"`
	EndStability       float64 `mapstructure:"end-stability"`
	TemplateMispriming float64 `mapstructure:"template-mispriming"`
}

// ToWeights converts the YAML-decoded config into a design.Weights.
func (w WeightsConfig) ToWeights() design.Weights {
	return design.Weights{
		SizeLt: w.SizeLt, SizeGt: w.SizeGt,
		TmLt: w.TmLt, TmGt: w.TmGt,
		GCContentLt: w.GCContentLt, GCContentGt: w.GCContentGt,
		SelfAnyTh: w.SelfAnyTh, SelfEndTh: w.SelfEndTh,
		HairpinTh:          w.HairpinTh,
		EndStability:       w.EndStability,
		TemplateMispriming: w.TemplateMispriming,
	}
}

// Config is the root-level settings struct, populated from config.yaml or a
// user-supplied override via viper/mapstructure.
type Config struct {
	Version string `mapstructure:"version"`

	Primer3Path      string `mapstructure:"primer3-path"`
	AlignerPath      string `mapstructure:"aligner-path"`
	AlignerIndexPath string `mapstructure:"aligner-index-path"`
	DuplexTmPath     string `mapstructure:"duplex-tm-path"`

	VariantMinMAF             float64 `mapstructure:"variant-min-maf"`
	VariantIncludeMissingMafs bool    `mapstructure:"variant-include-missing-mafs"`

	OffTargetMaxPrimerHits     int     `mapstructure:"off-target-max-primer-hits"`
	OffTargetMaxPrimerPairHits int     `mapstructure:"off-target-max-primer-pair-hits"`
	OffTargetMaxAmpliconSize   int     `mapstructure:"off-target-max-amplicon-size"`
	OffTargetMinDuplexTm       float64 `mapstructure:"off-target-min-duplex-tm"`

	DimerSaltConc float64 `mapstructure:"dimer-salt-conc"`
	DimerDNTPConc float64 `mapstructure:"dimer-dntp-conc"`
	DimerDNAConc  float64 `mapstructure:"dimer-dna-conc"`
	DimerTempC    float64 `mapstructure:"dimer-temp-c"`

	Parameters ParametersConfig `mapstructure:"parameters"`
	Weights    WeightsConfig    `mapstructure:"weights"`
}

func initDataPaths(providedDataDir string) error {
	if providedDataDir == "" {
		dataDir = os.Getenv("PRIMEDESIGN_DATA_DIR")
		if dataDir == "" {
			home, err := homedir.Dir()
			if err != nil {
				return err
			}
			dataDir = filepath.Join(home, ".primedesign")
		}
	} else {
		dataDir = providedDataDir
	}
	defaultConfigPath = filepath.Join(dataDir, "config.yaml")
	return nil
}

// Setup ensures the primedesign data directory exists and that a config.yaml
// is present, writing the embedded default if not.
func Setup(providedDataDir string) {
	if err := initDataPaths(providedDataDir); err != nil {
		log.Fatal("error resolving primedesign data paths: ", err)
	}

	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		if err := os.Mkdir(dataDir, 0755); err != nil {
			log.Fatal(err)
		}
	} else if err != nil {
		log.Fatal(err)
	}

	if _, err := os.Stat(defaultConfigPath); os.IsNotExist(err) {
		if err := os.WriteFile(defaultConfigPath, DefaultConfig, 0644); err != nil {
			log.Fatal(err)
		}
	}
}

// New reads config.yaml (or a user-specified override file) and returns the
// decoded settings.
func New(userConfigPath string) (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(defaultConfigPath)
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	if userConfigPath != "" {
		viper.SetConfigFile(userConfigPath)
		if err := viper.MergeInConfig(); err != nil {
			return nil, err
		}

		// Decode the override file a second time, independent of viper, so
		// that a malformed override is reported even if its keys happen to
		// coincide with defaults already satisfied by config.yaml.
		file, err := os.Open(userConfigPath)
		if err != nil {
			return nil, err
		}
		userData := make(map[string]interface{})
		decodeErr := yaml.NewDecoder(file).Decode(userData)
		file.Close()
		if decodeErr != nil {
			return nil, decodeErr
		}
		if err := mapstructure.Decode(userData, &Config{}); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
