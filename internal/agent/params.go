package agent

import (
	"time"

	"wavechase/internal/heat"
)

// Params tunes the decision core. Rates are per second of simulation time.
type Params struct {
	// Panic escalation.
	PanicMax           float64       `yaml:"panic_max"`
	PanicRate          float64       `yaml:"panic_rate"`
	CrampedThreshold   int           `yaml:"cramped_threshold"` // reachable cells below which space is cramped
	CrampedRate        float64       `yaml:"cramped_rate"`      // extra rate with no space at all
	CrampedNodeCap     int           `yaml:"cramped_node_cap"`  // BFS budget for the space estimate
	StuckTimeout       time.Duration `yaml:"stuck_timeout"`
	StuckEpsilon       float64       `yaml:"stuck_epsilon"`
	StuckRate          float64       `yaml:"stuck_rate"`
	LoopBonus          float64       `yaml:"loop_bonus"`
	PanicDecay         float64       `yaml:"panic_decay"`
	PanicCooldown      time.Duration `yaml:"panic_cooldown"`
	EnableGhostOnPanic bool          `yaml:"enable_ghost_on_panic"`

	Heat   heat.Params       `yaml:"heat"`
	Shared heat.SharedParams `yaml:"shared"`

	// Direction scoring.
	BaseScore       float64 `yaml:"base_score"`
	PathBonusChase  float64 `yaml:"path_bonus_chase"`
	PathBonusPatrol float64 `yaml:"path_bonus_patrol"`
	MarchBonus      float64 `yaml:"march_bonus"`
	JunctionBonus   float64 `yaml:"junction_bonus"`
	HeatWeight      float64 `yaml:"heat_weight"`
	SharedWeight    float64 `yaml:"shared_weight"`
	ReversePenalty  float64 `yaml:"reverse_penalty"`
	Jitter          float64 `yaml:"jitter"`

	// Door/portal override.
	ProgressSlack    float64       `yaml:"progress_slack"`
	ProgressTimeout  time.Duration `yaml:"progress_timeout"`
	MaxGateCrossings int           `yaml:"max_gate_crossings"`
	TicketLifetime   time.Duration `yaml:"ticket_lifetime"`

	// Paths and movement.
	PathTimeout     time.Duration `yaml:"path_timeout"`
	RepathInterval  time.Duration `yaml:"repath_interval"`
	DecisionEpsilon float64       `yaml:"decision_epsilon"`
	ArriveRadius    float64       `yaml:"arrive_radius"`
	Speed           float64       `yaml:"speed"` // cells per second
}

// DefaultParams returns the tuning used by the viewer and wfcgen.
func DefaultParams() Params {
	return Params{
		PanicMax:           100,
		PanicRate:          2,
		CrampedThreshold:   12,
		CrampedRate:        10,
		CrampedNodeCap:     32,
		StuckTimeout:       1500 * time.Millisecond,
		StuckEpsilon:       0.05,
		StuckRate:          15,
		LoopBonus:          20,
		PanicDecay:         10,
		PanicCooldown:      8 * time.Second,
		EnableGhostOnPanic: true,

		Heat: heat.Params{
			History:         48,
			RepeatThreshold: 4,
			Baseline:        0.15,
			SpawnHeat:       2,
			SpawnRadius:     1,
		},
		Shared: heat.SharedParams{
			Interval: 250 * time.Millisecond,
			Radius:   2,
			Peak:     1.5,
		},

		BaseScore:       1,
		PathBonusChase:  6,
		PathBonusPatrol: 3,
		MarchBonus:      1.5,
		JunctionBonus:   0.5,
		HeatWeight:      1,
		SharedWeight:    1,
		ReversePenalty:  10,
		Jitter:          0.05,

		ProgressSlack:    0.75,
		ProgressTimeout:  6 * time.Second,
		MaxGateCrossings: 2,
		TicketLifetime:   5 * time.Second,

		PathTimeout:     2 * time.Second,
		RepathInterval:  500 * time.Millisecond,
		DecisionEpsilon: 0.1,
		ArriveRadius:    0.75,
		Speed:           4,
	}
}
