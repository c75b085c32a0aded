// Package scenario runs ordered chains of FSM expectations against a log.
package scenario

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/Zuo-Peng/logexpect/internal/expect"
	"github.com/Zuo-Peng/logexpect/internal/parse"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Delay is a max_delay value. YAML accepts Go durations ("100ms") or
// plain seconds (0.1).
type Delay time.Duration

func (d *Delay) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: max_delay must be a scalar", node.Line)
	}
	if secs, err := strconv.ParseFloat(node.Value, 64); err == nil {
		*d = Delay(time.Duration(secs * float64(time.Second)))
		return nil
	}
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: bad max_delay %q", node.Line, node.Value)
	}
	*d = Delay(v)
	return nil
}

func (d Delay) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

type Step struct {
	Target   string   `yaml:"target,omitempty"`
	From     string   `yaml:"from"`
	Event    string   `yaml:"event"`
	To       string   `yaml:"to"`
	Skip     []string `yaml:"skip,omitempty"`
	MaxDelay Delay    `yaml:"max_delay,omitempty"`
}

// Scenario is an ordered chain of expectations. Target and Skip are
// defaults applied to every step.
type Scenario struct {
	Name   string   `yaml:"name"`
	Log    string   `yaml:"log,omitempty"`
	Target string   `yaml:"target,omitempty"`
	Skip   []string `yaml:"skip,omitempty"`
	Steps  []Step   `yaml:"steps"`
}

func Load(fs afero.Fs, path string) (*Scenario, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if len(sc.Steps) == 0 {
		return errors.New("no steps")
	}
	for i, st := range sc.Steps {
		switch {
		case st.Target == "" && sc.Target == "":
			return fmt.Errorf("step %d: no target", i+1)
		case st.From == "":
			return fmt.Errorf("step %d: no from state", i+1)
		case st.Event == "":
			return fmt.Errorf("step %d: no event", i+1)
		case st.To == "":
			return fmt.Errorf("step %d: no to state", i+1)
		case st.MaxDelay < 0:
			return fmt.Errorf("step %d: negative max_delay", i+1)
		}
	}
	return nil
}

// Expectations resolves the scenario defaults into one Expectation per step.
func (sc *Scenario) Expectations() []expect.Expectation {
	out := make([]expect.Expectation, 0, len(sc.Steps))
	for _, st := range sc.Steps {
		target := st.Target
		if target == "" {
			target = sc.Target
		}
		skip := slices.Clone(sc.Skip)
		for _, ev := range st.Skip {
			if !slices.Contains(skip, ev) {
				skip = append(skip, ev)
			}
		}
		out = append(out, expect.Expectation{
			TargetID:   target,
			FromState:  st.From,
			Event:      st.Event,
			ToState:    st.To,
			SkipEvents: skip,
			MaxDelay:   time.Duration(st.MaxDelay),
		})
	}
	return out
}

type Result struct {
	Matched []*parse.Record
	// FailedStep is the 1-based step that stopped the run, 0 if none did.
	FailedStep int
}

// Run opens sess, checks every step in order and closes sess again, also
// when a step fails. The first failure stops the chain; its error is returned
// as is and its step number is recorded in the result.
func Run(sess *expect.Session, sc *Scenario) (res Result, err error) {
	if err := sess.Open(); err != nil {
		return res, err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close session: %w", cerr)
		}
	}()

	for i, exp := range sc.Expectations() {
		rec, err := sess.Expect(exp)
		if err != nil {
			res.FailedStep = i + 1
			return res, err
		}
		res.Matched = append(res.Matched, rec)
	}
	return res, nil
}
