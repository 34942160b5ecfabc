// Package orchestrator turns a validated configuration into an execution plan
// and runs it with bounded concurrency.
package orchestrator

import (
	"fmt"
	"regexp"

	"testdeck/internal/config"
	"testdeck/internal/dependency"
)

// PlanSuite is one scheduled suite in an execution plan.
type PlanSuite struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Priority      int                    `json:"priority"`
	Parameters    map[string]interface{} `json:"parameters,omitempty"`
	Dependencies  []string               `json:"dependencies,omitempty"`
	Timeout       config.Millis          `json:"timeout"`
	RetryAttempts int                    `json:"retryAttempts"`
}

// Plan is the resolved execution order for one run. Suites appear in
// dependency order with priority as the tie-break, so executing them
// sequentially front to back is always safe.
type Plan struct {
	ConfigurationID   string               `json:"configurationId"`
	ConfigurationName string               `json:"configurationName"`
	Environment       config.Environment   `json:"environment"`
	ConcurrencyLevel  int                  `json:"concurrencyLevel"`
	Timeout           config.Millis        `json:"timeout"`
	RetryAttempts     int                  `json:"retryAttempts"`
	Bail              bool                 `json:"bail"`
	Coverage          bool                 `json:"coverage"`
	Suites            []PlanSuite          `json:"suites"`
	Profiles          []config.UserProfile `json:"profiles"`
}

// Filter narrows which suites a plan includes.
type Filter struct {
	// Suite selects a single suite by ID; its transitive dependencies are
	// pulled in so the selection stays runnable.
	Suite string
	// Pattern keeps only suites whose name matches.
	Pattern *regexp.Regexp
	// Tags keeps only suites carrying at least one of these tags.
	Tags []string
	// ExcludeTags removes suites carrying any of these tags. Exclusion wins
	// over inclusion.
	ExcludeTags []string
}

// BuildPlan resolves a configuration into an ordered plan. Disabled suites
// are excluded before filtering; selecting a single suite includes its
// transitive dependencies even if the filter would drop them.
func BuildPlan(cfg *config.TestConfiguration, filter Filter) (*Plan, error) {
	enabled := make(map[string]config.TestSuiteConfig)
	graph := dependency.New()
	for _, suite := range cfg.TestSuites {
		if !suite.Enabled {
			continue
		}
		enabled[suite.ID] = suite
		graph.Add(suite.ID, suite.Dependencies)
	}

	selected := make(map[string]bool)
	if filter.Suite != "" {
		if _, ok := enabled[filter.Suite]; !ok {
			return nil, fmt.Errorf("suite %q not found or not enabled", filter.Suite)
		}
		collectTransitive(graph, filter.Suite, selected)
	} else {
		for id, suite := range enabled {
			if matchesFilter(suite, filter) {
				selected[id] = true
			}
		}
		// Pull in dependencies of matched suites so ordering is runnable.
		// Collection starts from the dependencies, not the matched suite
		// itself, because a matched suite is already marked selected.
		seeds := make([]string, 0, len(selected))
		for id := range selected {
			seeds = append(seeds, id)
		}
		for _, id := range seeds {
			for _, dep := range graph.Dependencies(id) {
				if graph.Contains(dep) {
					collectTransitive(graph, dep, selected)
				}
			}
		}
	}

	ordered := dependency.New()
	for _, suite := range cfg.TestSuites {
		if suite.Enabled && selected[suite.ID] {
			ordered.Add(suite.ID, suite.Dependencies)
		}
	}
	order, err := ordered.TopoSort(func(id string) int { return enabled[id].Priority })
	if err != nil {
		return nil, fmt.Errorf("cannot order suites: %w", err)
	}

	plan := &Plan{
		ConfigurationID:   cfg.ID,
		ConfigurationName: cfg.Name,
		Environment:       cfg.Environment,
		ConcurrencyLevel:  cfg.ConcurrencyLevel,
		Timeout:           cfg.Timeout,
		RetryAttempts:     cfg.RetryAttempts,
		Profiles:          cfg.UserProfiles,
	}
	for _, id := range order {
		suite := enabled[id]
		planSuite := PlanSuite{
			ID:            suite.ID,
			Name:          suite.Name,
			Priority:      suite.Priority,
			Parameters:    suite.Parameters,
			Dependencies:  suite.Dependencies,
			Timeout:       cfg.Timeout,
			RetryAttempts: cfg.RetryAttempts,
		}
		// Per-suite overrides beat the configuration-wide settings.
		if suite.Timeout != nil {
			planSuite.Timeout = *suite.Timeout
		}
		if suite.RetryAttempts != nil {
			planSuite.RetryAttempts = *suite.RetryAttempts
		}
		plan.Suites = append(plan.Suites, planSuite)
	}
	return plan, nil
}

func collectTransitive(graph *dependency.Graph, id string, out map[string]bool) {
	if out[id] {
		return
	}
	out[id] = true
	for _, dep := range graph.Dependencies(id) {
		if graph.Contains(dep) {
			collectTransitive(graph, dep, out)
		}
	}
}

func matchesFilter(suite config.TestSuiteConfig, filter Filter) bool {
	if filter.Pattern != nil && !filter.Pattern.MatchString(suite.Name) {
		return false
	}

	tags := suite.SuiteTags()
	for _, excluded := range filter.ExcludeTags {
		for _, tag := range tags {
			if tag == excluded {
				return false
			}
		}
	}
	if len(filter.Tags) == 0 {
		return true
	}
	for _, wanted := range filter.Tags {
		for _, tag := range tags {
			if tag == wanted {
				return true
			}
		}
	}
	return false
}
