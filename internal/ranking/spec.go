package ranking

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/rankedinc-cli/internal/company"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is matched by every *ConfigError.
var ErrInvalidConfig = errors.New("invalid ranking configuration")

// MetricSpec is one ranking criterion. Ascending follows the rank direction:
// true gives the smallest value position 1 (fewest points), false gives the
// largest value position 1.
type MetricSpec struct {
	Metric    company.Metric `mapstructure:"metric" yaml:"metric" json:"metric" validate:"required"`
	Weight    float64        `mapstructure:"weight" yaml:"weight" json:"weight" validate:"gt=0,finite"`
	Ascending bool           `mapstructure:"ascending" yaml:"ascending" json:"ascending"`
}

// ConfigError describes why a metric table was rejected.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid ranking configuration: %s", strings.Join(e.Problems, "; "))
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// RankedMetrics lists the ten criteria a metric table must cover.
func RankedMetrics() []company.Metric {
	return []company.Metric{
		company.Capitalisation, company.DividendYield, company.PayoutRatio,
		company.ROE, company.ROA, company.GrossMargin, company.NetMargin,
		company.PER, company.DebtToEquity, company.ProfitGrowth,
	}
}

// DefaultSpecs is the fixed weight table. Weights are business policy.
func DefaultSpecs() []MetricSpec {
	return []MetricSpec{
		{Metric: company.Capitalisation, Weight: 0.5, Ascending: true},
		{Metric: company.DividendYield, Weight: 2, Ascending: true},
		{Metric: company.PayoutRatio, Weight: 5, Ascending: false},
		{Metric: company.ROE, Weight: 6, Ascending: true},
		{Metric: company.ROA, Weight: 4, Ascending: true},
		{Metric: company.GrossMargin, Weight: 7, Ascending: true},
		{Metric: company.NetMargin, Weight: 6, Ascending: true},
		{Metric: company.PER, Weight: 4, Ascending: false},
		{Metric: company.DebtToEquity, Weight: 5, Ascending: false},
		{Metric: company.ProfitGrowth, Weight: 5, Ascending: true},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// gt=0 alone lets +Inf through
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsInf(f, 0) && !math.IsNaN(f)
	})
	return v
}

// ValidateSpecs checks that specs cover exactly the ten ranked metrics, each
// once, with positive finite weights.
func ValidateSpecs(specs []MetricSpec) error {
	var problems []string
	allowed := map[company.Metric]bool{}
	for _, m := range RankedMetrics() {
		allowed[m] = true
	}
	seen := map[company.Metric]bool{}
	for i, s := range specs {
		if err := validate.Struct(s); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					problems = append(problems, fmt.Sprintf("spec %d (%s): %s failed %q", i, s.Metric, fe.Field(), fe.Tag()))
				}
			} else {
				problems = append(problems, fmt.Sprintf("spec %d: %v", i, err))
			}
		}
		if s.Metric == "" {
			continue
		}
		if !allowed[s.Metric] {
			problems = append(problems, fmt.Sprintf("unknown metric %q", s.Metric))
			continue
		}
		if seen[s.Metric] {
			problems = append(problems, fmt.Sprintf("metric %q listed twice", s.Metric))
		}
		seen[s.Metric] = true
	}
	for _, m := range RankedMetrics() {
		if !seen[m] {
			problems = append(problems, fmt.Sprintf("metric %q not configured", m))
		}
	}
	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}
