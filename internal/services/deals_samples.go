package services

import (
	_ "embed"
	"fmt"
	"time"

	"campusmarket/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed sample_deals.yaml
var sampleDealsYAML []byte

type sampleDeal struct {
	domain.Deal `yaml:",inline"`
	ExpiresIn   string `yaml:"expires_in"`
}

var samples = mustParseSamples(sampleDealsYAML)

func parseSamples(raw []byte) ([]sampleDeal, error) {
	var out []sampleDeal
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse sample deals: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("parse sample deals: empty set")
	}
	for _, s := range out {
		if s.ExpiresIn == "" {
			continue
		}
		if _, err := time.ParseDuration(s.ExpiresIn); err != nil {
			return nil, fmt.Errorf("sample %s: expires_in: %w", s.ExternalID, err)
		}
	}
	return out, nil
}

func mustParseSamples(raw []byte) []sampleDeal {
	s, err := parseSamples(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// SampleDeals materializes the built-in deal set as of now. Deals without an
// id get a stable "sample-" one so the set renders the same on every call.
func SampleDeals(now time.Time) []domain.Deal {
	out := make([]domain.Deal, 0, len(samples))
	for _, s := range samples {
		d := s.Deal
		if d.ID == "" {
			d.ID = "sample-" + d.ExternalID
		}
		d.CreatedAt = now.UnixMilli()
		if s.ExpiresIn != "" {
			ttl, _ := time.ParseDuration(s.ExpiresIn)
			exp := now.Add(ttl).UnixMilli()
			d.ExpiresAt = &exp
		}
		out = append(out, d)
	}
	return out
}
