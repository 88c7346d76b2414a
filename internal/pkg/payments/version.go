package payments

import (
	"strings"

	"github.com/warrox1993/SalonCoiffure-sub001/internal/pkg/env"
)

// RouteAction is what the endpoint should do with an event of a given API
// version. The enum is closed; every consumer switches exhaustively.
type RouteAction int

const (
	// ActionProcess sends the event through the dispatcher.
	ActionProcess RouteAction = iota
	// ActionRejectLegacy signals "retry later": a legacy-schema event arrived
	// while legacy processing is disabled.
	ActionRejectLegacy
	// ActionIgnoreNew acknowledges without side effects: a current-schema
	// event arrived before the system is ready for it.
	ActionIgnoreNew
	// ActionUnsupported rejects a version outside both known ranges.
	ActionUnsupported
)

func (a RouteAction) String() string {
	switch a {
	case ActionProcess:
		return "process"
	case ActionRejectLegacy:
		return "reject_legacy"
	case ActionIgnoreNew:
		return "ignore_new"
	case ActionUnsupported:
		return "unsupported"
	default:
		return "invalid"
	}
}

// MigrationPhase is the stage of the zero-downtime schema cutover, derived
// from the two processing flags.
type MigrationPhase int

const (
	PhaseNormal MigrationPhase = iota
	PhasePreparation
	PhaseMigration
	PhaseCompleted
	PhaseUnknown
)

func (p MigrationPhase) String() string {
	switch p {
	case PhaseNormal:
		return "normal"
	case PhasePreparation:
		return "preparation"
	case PhaseMigration:
		return "migration"
	case PhaseCompleted:
		return "completed"
	case PhaseUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// MigrationPolicy is process-wide configuration loaded once at startup.
// Versions are provider date strings (YYYY-MM-DD), so lexicographic order is
// also chronological.
type MigrationPolicy struct {
	MigrationMode  bool
	ProcessLegacy  bool
	ProcessCurrent bool
	LegacyVersion  string
	CurrentVersion string
	DefaultVersion string
}

// LoadMigrationPolicyFromEnv reads the policy at startup.
func LoadMigrationPolicyFromEnv() MigrationPolicy {
	current := env.GetEnv("STRIPE_API_VERSION_CURRENT", "2023-10-16")
	return MigrationPolicy{
		MigrationMode:  env.GetBool("WEBHOOK_MIGRATION_MODE", false),
		ProcessLegacy:  env.GetBool("WEBHOOK_PROCESS_LEGACY", true),
		ProcessCurrent: env.GetBool("WEBHOOK_PROCESS_CURRENT", true),
		LegacyVersion:  env.GetEnv("STRIPE_API_VERSION_LEGACY", "2020-08-27"),
		CurrentVersion: current,
		DefaultVersion: env.GetEnv("STRIPE_API_VERSION_DEFAULT", current),
	}
}

// Phase derives the cutover stage. Outside migration mode both schema
// generations are processed and the phase is normal.
func (p MigrationPolicy) Phase() MigrationPhase {
	if !p.MigrationMode {
		return PhaseNormal
	}
	switch {
	case p.ProcessLegacy && !p.ProcessCurrent:
		return PhasePreparation
	case p.ProcessLegacy && p.ProcessCurrent:
		return PhaseMigration
	case !p.ProcessLegacy && p.ProcessCurrent:
		return PhaseCompleted
	default:
		return PhaseUnknown
	}
}

func (p MigrationPolicy) legacyEnabled() bool {
	return !p.MigrationMode || p.ProcessLegacy
}

func (p MigrationPolicy) currentEnabled() bool {
	return !p.MigrationMode || p.ProcessCurrent
}

// Decide routes an event by API version. Precedence: caller override, then
// the event's declared version, then the configured default. Pure function,
// no I/O.
func (p MigrationPolicy) Decide(eventVersion, overrideVersion string) RouteAction {
	version := strings.TrimSpace(overrideVersion)
	if version == "" {
		version = strings.TrimSpace(eventVersion)
	}
	if version == "" {
		version = p.DefaultVersion
	}

	switch {
	case version == p.CurrentVersion:
		if p.currentEnabled() {
			return ActionProcess
		}
		return ActionIgnoreNew
	case version >= p.LegacyVersion && version < p.CurrentVersion:
		if p.legacyEnabled() {
			return ActionProcess
		}
		return ActionRejectLegacy
	default:
		return ActionUnsupported
	}
}
