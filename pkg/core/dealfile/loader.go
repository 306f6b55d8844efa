// Package dealfile reads deal scenarios written by analysts. Three formats are accepted,
// chosen by file extension:
//   - .json  strict JSON, falling back to an HJSON read and then a repair pass for
//     trailing commas, single quotes, missing braces and the like
//   - .hjson Human JSON (comments, unquoted keys, optional commas)
//   - .yaml / .yml
package dealfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"deal_underwriting/pkg/core/deal"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v2"
)

// Format identifies the encoding of a deal file.
type Format string

const (
	FormatJSON  Format = "json"
	FormatHJSON Format = "hjson"
	FormatYAML  Format = "yaml"
)

// FormatFromPath maps a file extension to a Format.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".hjson":
		return FormatHJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported deal file extension %q (want .json, .hjson, .yaml)", filepath.Ext(path))
	}
}

// Load reads a single scenario from disk. When the file does not name the scenario, the
// file's base name is used.
func Load(path string) (deal.Scenario, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return deal.Scenario{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return deal.Scenario{}, fmt.Errorf("failed to read deal file: %w", err)
	}

	sc, err := Parse(data, format)
	if err != nil {
		return deal.Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// LoadAll reads every path in order and stops at the first failure.
func LoadAll(paths []string) ([]deal.Scenario, error) {
	scenarios := make([]deal.Scenario, 0, len(paths))
	for _, p := range paths {
		sc, err := Load(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// Parse decodes one scenario. The result is not validated; that is the evaluator's job.
func Parse(data []byte, format Format) (deal.Scenario, error) {
	var sc deal.Scenario
	switch format {
	case FormatJSON:
		if err := DecodeJSON(data, &sc); err != nil {
			return sc, err
		}
	case FormatHJSON:
		if err := decodeHJSON(data, &sc); err != nil {
			return sc, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &sc); err != nil {
			return sc, fmt.Errorf("YAML_UNMARSHAL_ERROR: %v", err)
		}
	default:
		return sc, fmt.Errorf("unknown deal file format %q", format)
	}
	return sc, nil
}

// numberToken matches JSON number literals.
var numberToken = regexp.MustCompile(`-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`)

// sameNumbers reports whether a and b carry the same number literals. Repair re-sorts
// object keys, so order is ignored.
func sameNumbers(a, b string) bool {
	na, nb := numberToken.FindAllString(a, -1), numberToken.FindAllString(b, -1)
	slices.Sort(na)
	slices.Sort(nb)
	return slices.Equal(na, nb)
}

// decodeHJSON reads Human JSON into v. Numbers stay json.Number until the final decode,
// so every literal reaches v with the value a strict JSON read would give it.
func decodeHJSON(data []byte, v interface{}) error {
	var generic interface{}
	opts := hjson.DefaultDecoderOptions()
	opts.UseJSONNumber = true
	if err := hjson.UnmarshalWithOptions(data, &generic, opts); err != nil {
		return fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}
	// Go through standard JSON so embedded fields decode the same way they do for .json files.
	buf, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}
	if err := json.Unmarshal(buf, v); err != nil {
		return fmt.Errorf("JSON_STRUCTURAL_ERROR: %w", err)
	}
	return nil
}

// DecodeJSON unmarshals data into v. Bytes that are not valid JSON are read as HJSON,
// which covers trailing commas, single quotes and comments. Only when that also fails is
// a repaired copy decoded, and the repair is rejected if it rewrote any number.
func DecodeJSON(data []byte, v interface{}) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if _, isType := err.(*json.UnmarshalTypeError); isType {
		return fmt.Errorf("JSON_STRUCTURAL_ERROR: %v", err)
	}

	hjsonErr := decodeHJSON(data, v)
	if hjsonErr == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(hjsonErr, &typeErr) {
		return hjsonErr
	}

	repaired, repairErr := jsonrepair.RepairJSON(string(data))
	if repairErr != nil {
		return fmt.Errorf("JSON_REPAIR_FAILED: %v (original: %v)", repairErr, err)
	}
	if !sameNumbers(string(data), repaired) {
		return fmt.Errorf("JSON_REPAIR_FAILED: repair altered numeric values (original: %v)", err)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("JSON_STRUCTURAL_ERROR: %v", err)
	}
	return nil
}
