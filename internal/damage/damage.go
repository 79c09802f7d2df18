/*
Package damage holds the building damage profiles and the drift alarm model.

A Profile gives, for each damage state, the physical drift limit (m) and the exceedance
probability (percent) above which an alarm is raised.  Profiles are looked up from a Table by
building typology and number of stories.
*/
package damage

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Typology is a building construction class.
type Typology string

const (
	RC       Typology = "RC"        // reinforced concrete
	URMReg   Typology = "URM_REG"   // regular unreinforced masonry
	URMStone Typology = "URM_STONE" // stone unreinforced masonry
)

// ParseTypology returns the Typology named by s (case insensitive).
func ParseTypology(s string) (Typology, error) {
	switch t := Typology(strings.ToUpper(strings.TrimSpace(s))); t {
	case RC, URMReg, URMStone:
		return t, nil
	default:
		return "", fmt.Errorf("unknown building typology %q", s)
	}
}

// State is a damage state.
type State string

const (
	MDS State = "MDS" // moderate
	EDS State = "EDS" // extensive
	CDS State = "CDS" // complete
)

// ParseState returns the State named by s (case insensitive).
func ParseState(s string) (State, error) {
	switch d := State(strings.ToUpper(strings.TrimSpace(s))); d {
	case MDS, EDS, CDS:
		return d, nil
	default:
		return "", fmt.Errorf("unknown damage state %q", s)
	}
}

// Profile holds drift limits (m) and probability thresholds (percent) per damage state.
type Profile struct {
	MDS, EDS, CDS    float64
	PMDS, PEDS, PCDS float64
}

// Thresholds returns the drift limit and probability threshold for s.
func (p Profile) Thresholds(s State) (drift, probability float64, err error) {
	switch s {
	case MDS:
		return p.MDS, p.PMDS, nil
	case EDS:
		return p.EDS, p.PEDS, nil
	case CDS:
		return p.CDS, p.PCDS, nil
	default:
		return 0, 0, fmt.Errorf("unknown damage state %q", string(s))
	}
}

// Bucketed splits a typology into low and mid rise profiles.
type Bucketed struct {
	MaxLowRise int // most stories for the Low profile
	Low, Mid   Profile
}

// Table maps a typology to its profiles.  It is read only once built.
type Table map[Typology]Bucketed

var errStories = errors.New("number of stories must be positive")

// Profile returns the profile for a building of the given typology and story count.
func (t Table) Profile(typ Typology, stories int) (Profile, error) {
	if stories <= 0 {
		return Profile{}, fmt.Errorf("%d: %w", stories, errStories)
	}

	b, ok := t[typ]
	if !ok {
		return Profile{}, fmt.Errorf("no damage profile for typology %q", string(typ))
	}

	if stories <= b.MaxLowRise {
		return b.Low, nil
	}

	return b.Mid, nil
}

// Typologies returns the typologies in t in name order.
func (t Table) Typologies() []Typology {
	var l []Typology
	for k := range t {
		l = append(l, k)
	}

	sort.Slice(l, func(i, j int) bool { return l[i] < l[j] })

	return l
}

// DefaultTable returns the calibrated profiles.
func DefaultTable() Table {
	return Table{
		RC: {
			MaxLowRise: 3,
			Low:        Profile{MDS: 0.0184, EDS: 0.0301, CDS: 0.0451, PMDS: 13.26, PEDS: 12.37, PCDS: 9.06},
			Mid:        Profile{MDS: 0.0223, EDS: 0.0449, CDS: 0.0674, PMDS: 9.96, PEDS: 9.13, PCDS: 4.23},
		},
		URMReg: {
			MaxLowRise: 2,
			Low:        Profile{MDS: 0.0028, EDS: 0.0138, CDS: 0.0236, PMDS: 6.34, PEDS: 17.32, PCDS: 10.33},
			Mid:        Profile{MDS: 0.0062, EDS: 0.0219, CDS: 0.0350, PMDS: 5.08, PEDS: 8.27, PCDS: 5.02},
		},
		URMStone: {
			MaxLowRise: 2,
			Low:        Profile{MDS: 0.0019, EDS: 0.0085, CDS: 0.0140, PMDS: 11.66, PEDS: 12.66, PCDS: 12.19},
			Mid:        Profile{MDS: 0.0042, EDS: 0.0135, CDS: 0.0210, PMDS: 32.19, PEDS: 6.38, PCDS: 10.71},
		},
	}
}
