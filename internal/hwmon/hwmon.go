package hwmon

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/md14454/gosensors"
)

const (
	BusTypeIsa  = 1
	BusTypePci  = 2
	BusTypeAcpi = 5
)

// Chip is a hardware monitoring device detected by lm-sensors
type Chip struct {
	Name     string
	Platform string
	Path     string

	Inputs []Input
}

// Input is a single readable value of a Chip
type Input struct {
	// one of configuration.HwMonFeatureTemp | HwMonFeatureVoltage | HwMonFeatureFan
	Feature string
	// 1-based index within the features of the same type
	Index int
	Label string
	// sysfs path of the input file
	Path  string
	Value float64
}

// GetChips returns all chips known to lm-sensors that provide at least one input
func GetChips() []*Chip {
	gosensors.Init()
	defer gosensors.Cleanup()
	chips := gosensors.GetDetectedChips()

	var list []*Chip
	for i := 0; i < len(chips); i++ {
		chip := chips[i]

		identifier := computeIdentifier(chip)
		platform := findPlatform(chip.Path)
		if len(platform) <= 0 {
			platform = identifier
		}

		inputs := getInputs(chip)
		if len(inputs) <= 0 {
			continue
		}

		list = append(list, &Chip{
			Name:     identifier,
			Platform: platform,
			Path:     chip.Path,
			Inputs:   inputs,
		})
	}

	return list
}

func getInputs(chip gosensors.Chip) []Input {
	var result []Input
	counters := map[string]int{}

	features := chip.GetFeatures()
	for j := 0; j < len(features); j++ {
		feature := features[j]

		var featureName string
		var inputType gosensors.SubFeatureType
		switch feature.Type {
		case gosensors.FeatureTypeTemp:
			featureName, inputType = configuration.HwMonFeatureTemp, gosensors.SubFeatureTypeTempInput
		case gosensors.FeatureTypeIn:
			featureName, inputType = configuration.HwMonFeatureVoltage, gosensors.SubFeatureTypeInInput
		case gosensors.FeatureTypeFan:
			featureName, inputType = configuration.HwMonFeatureFan, gosensors.SubFeatureTypeFanInput
		default:
			continue
		}

		subfeatures := feature.GetSubFeatures()
		inputSubFeature, ok := findSubFeature(subfeatures, inputType)
		if !ok {
			continue
		}

		counters[featureName]++
		result = append(result, Input{
			Feature: featureName,
			Index:   counters[featureName],
			Label:   getLabel(chip.Path, inputSubFeature.Name),
			Path:    fmt.Sprintf("%s/%s", chip.Path, inputSubFeature.Name),
			Value:   inputSubFeature.GetValue(),
		})
	}

	return result
}

// FindInput resolves the input matching the given hwmon sensor configuration
func FindInput(chips []*Chip, config configuration.HwMonSensorConfig) (Input, error) {
	platformRegex, err := regexp.Compile("(?i)" + config.Platform)
	if err != nil {
		return Input{}, fmt.Errorf("invalid platform regex '%s': %w", config.Platform, err)
	}

	for _, chip := range chips {
		if !platformRegex.MatchString(chip.Platform) {
			continue
		}
		for _, input := range chip.Inputs {
			if input.Feature == config.Feature && input.Index == config.Index {
				return input, nil
			}
		}
	}

	return Input{}, fmt.Errorf("no hwmon %s input with index %d found for platform '%s'", config.Feature, config.Index, config.Platform)
}

func findSubFeature(subfeatures []gosensors.SubFeature, input gosensors.SubFeatureType) (gosensors.SubFeature, bool) {
	for _, a := range subfeatures {
		if a.Type == input {
			return a, true
		}
	}
	return gosensors.SubFeature{}, false
}

// getLabel read the label of a in/output of a device
func getLabel(devicePath string, input string) string {
	labelPath := strings.TrimSuffix(devicePath+"/"+input, "input") + "label"

	content, _ := os.ReadFile(labelPath)
	label := string(content)
	if len(label) <= 0 {
		label = input
	}
	return strings.TrimSpace(label)
}

// read the name of a device
func getDeviceName(devicePath string) string {
	content, _ := os.ReadFile(devicePath + "/name")
	name := string(content)
	if len(name) <= 0 {
		_, name = filepath.Split(devicePath)
	}
	return strings.TrimSpace(name)
}

func computeIdentifier(chip gosensors.Chip) (name string) {
	name = chip.Prefix

	devicePath := chip.Path
	if len(name) <= 0 {
		name = getDeviceName(devicePath)
	}

	identifier := name
	switch chip.Bus.Type {
	case BusTypeIsa:
		identifier = fmt.Sprintf("%s-isa-%d", identifier, chip.Bus.Nr)
	case BusTypePci:
		identifier = fmt.Sprintf("%s-pci-%d", identifier, chip.Bus.Nr)
	case BusTypeAcpi:
		identifier = fmt.Sprintf("%s-acpi-%d", identifier, chip.Bus.Nr)
	}

	return identifier
}

func findPlatform(devicePath string) string {
	platformRegex := regexp.MustCompile(".*/platform/{}/.*")
	return platformRegex.FindString(devicePath)
}
