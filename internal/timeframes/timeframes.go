package timeframes

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
)

// Set is the configured list of lookback windows, in report order
type Set struct {
	Timeframes []contracts.Timeframe `yaml:"timeframes" json:"timeframes"`
}

// ValidationError 검증 실패 (실행 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the built-in 7d/30d/90d/180d/365d set
func Default() *Set {
	return &Set{Timeframes: []contracts.Timeframe{
		{Label: "7d", WindowDays: 7, MinCoverageFraction: 0.85},
		{Label: "30d", WindowDays: 30, MinCoverageFraction: 0.85},
		{Label: "90d", WindowDays: 90, MinCoverageFraction: 0.85},
		{Label: "180d", WindowDays: 180, MinCoverageFraction: 0.85},
		{Label: "365d", WindowDays: 365, MinCoverageFraction: 0.85},
	}}
}

// Load reads and validates a YAML timeframe set; an empty path yields Default()
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string, lookbackDays int) (*Set, error) {
	if path == "" {
		set := Default()
		return set, Validate(set, lookbackDays)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timeframes: %w", err)
	}
	return Parse(data, lookbackDays)
}

// Parse decodes strictly and validates
func Parse(data []byte, lookbackDays int) (*Set, error) {
	var set Set
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&set); err != nil {
		return nil, fmt.Errorf("decode timeframes: %w", err)
	}

	if err := Validate(&set, lookbackDays); err != nil {
		return nil, err
	}
	return &set, nil
}

// labelPattern keeps labels usable as file name parts and URL path segments
var labelPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Validate rejects empty sets, duplicate labels, bad windows and fractions outside (0, 1].
// lookbackDays <= 0 skips the lookback bound.
func Validate(set *Set, lookbackDays int) error {
	if set == nil || len(set.Timeframes) == 0 {
		return ValidationError{"timeframes", "at least one timeframe is required"}
	}

	labels := make(map[string]bool, len(set.Timeframes))
	for i, tf := range set.Timeframes {
		field := fmt.Sprintf("timeframes[%d]", i)

		if tf.Label == "" {
			return ValidationError{field + ".label", "required"}
		}
		if !labelPattern.MatchString(tf.Label) {
			return ValidationError{field + ".label", fmt.Sprintf("%q must match [A-Za-z0-9_-]+", tf.Label)}
		}
		if labels[tf.Label] {
			return ValidationError{field + ".label", fmt.Sprintf("duplicate label %q", tf.Label)}
		}
		labels[tf.Label] = true

		if tf.WindowDays <= 0 {
			return ValidationError{field + ".window_days", "must be > 0"}
		}
		if lookbackDays > 0 && tf.WindowDays > lookbackDays {
			return ValidationError{field + ".window_days", fmt.Sprintf("must be <= lookback (%d days)", lookbackDays)}
		}
		if tf.MinCoverageFraction <= 0 || tf.MinCoverageFraction > 1 {
			return ValidationError{field + ".min_coverage_fraction", "must be in (0, 1]"}
		}
	}

	return nil
}

// Lookup finds a timeframe by label
func (s *Set) Lookup(label string) (contracts.Timeframe, bool) {
	for _, tf := range s.Timeframes {
		if tf.Label == label {
			return tf, true
		}
	}
	return contracts.Timeframe{}, false
}

// MaxWindow returns the longest window in the set
func (s *Set) MaxWindow() int {
	max := 0
	for _, tf := range s.Timeframes {
		if tf.WindowDays > max {
			max = tf.WindowDays
		}
	}
	return max
}

// Hash returns the SHA256 of the set's canonical JSON, recorded with each stored run
func Hash(set *Set) (string, error) {
	jsonBytes, err := json.Marshal(set)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
