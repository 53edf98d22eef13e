package domain

// Requirement is the phase and role a command must be issued under.
type Requirement struct {
	Phase Phase
	Role  Role // RoleNone means the caller must not yet participate
}

// Command is a single player action. Every command declares its Requirement,
// so a new action cannot be added without stating the phase it is legal in.
type Command interface {
	Name() string
	Requirement() Requirement
	apply(r *Rules, s *Session, caller string, res *Result) error
}

// Join binds the caller as the second player and prey.
type Join struct{}

// HunterMove steps the hunter to an orthogonally adjacent tile.
type HunterMove struct{ To Coord }

// HunterSearch probes one adjacent jungle tile for the hidden prey.
type HunterSearch struct{ Target Coord }

// HunterPowerSearch probes every jungle tile around the hunter.
type HunterPowerSearch struct{}

// HunterEMP freezes a visible prey for its next turn.
type HunterEMP struct{}

// PreyMove steps a visible prey to an adjacent plain tile.
type PreyMove struct{ To Coord }

// PreyDash moves a visible prey up to two tiles onto plain terrain.
type PreyDash struct{ To Coord }

// PreyEnterJungle hides the prey behind a proven commitment.
type PreyEnterJungle struct {
	Commitment Commitment
	Proof      []byte
}

// PreyMoveJungle replaces the commitment with a new proven one.
type PreyMoveJungle struct {
	Commitment Commitment
	Proof      []byte
}

// PreyExitJungle reveals the prey on a plain tile.
type PreyExitJungle struct{ To Coord }

// PreyPassFrozen spends a frozen prey's turn.
type PreyPassFrozen struct{}

// RespondSearch answers a pending search. An empty proof concedes the round.
type RespondSearch struct{ Proof []byte }

// ClaimCatch lets the hunter take the round when a search goes unanswered.
type ClaimCatch struct{}

func (Join) Name() string              { return "join" }
func (HunterMove) Name() string        { return "hunter_move" }
func (HunterSearch) Name() string      { return "hunter_search" }
func (HunterPowerSearch) Name() string { return "hunter_power_search" }
func (HunterEMP) Name() string         { return "hunter_emp" }
func (PreyMove) Name() string          { return "prey_move" }
func (PreyDash) Name() string          { return "prey_dash" }
func (PreyEnterJungle) Name() string   { return "prey_enter_jungle" }
func (PreyMoveJungle) Name() string    { return "prey_move_jungle" }
func (PreyExitJungle) Name() string    { return "prey_exit_jungle" }
func (PreyPassFrozen) Name() string    { return "prey_pass_frozen" }
func (RespondSearch) Name() string     { return "respond_search" }
func (ClaimCatch) Name() string        { return "claim_catch" }

func (Join) Requirement() Requirement              { return Requirement{PhaseWaitingForSecondPlayer, RoleNone} }
func (HunterMove) Requirement() Requirement        { return Requirement{PhaseHunterTurn, RoleHunter} }
func (HunterSearch) Requirement() Requirement      { return Requirement{PhaseHunterTurn, RoleHunter} }
func (HunterPowerSearch) Requirement() Requirement { return Requirement{PhaseHunterTurn, RoleHunter} }
func (HunterEMP) Requirement() Requirement         { return Requirement{PhaseHunterTurn, RoleHunter} }
func (PreyMove) Requirement() Requirement          { return Requirement{PhasePreyTurn, RolePrey} }
func (PreyDash) Requirement() Requirement          { return Requirement{PhasePreyTurn, RolePrey} }
func (PreyEnterJungle) Requirement() Requirement   { return Requirement{PhasePreyTurn, RolePrey} }
func (PreyMoveJungle) Requirement() Requirement    { return Requirement{PhasePreyTurn, RolePrey} }
func (PreyExitJungle) Requirement() Requirement    { return Requirement{PhasePreyTurn, RolePrey} }
func (PreyPassFrozen) Requirement() Requirement    { return Requirement{PhasePreyTurn, RolePrey} }
func (RespondSearch) Requirement() Requirement     { return Requirement{PhaseSearchPending, RolePrey} }
func (ClaimCatch) Requirement() Requirement        { return Requirement{PhaseSearchPending, RoleHunter} }

// Commands lists one zero value of every command, for exhaustive tests and registries.
func Commands() []Command {
	return []Command{
		Join{},
		HunterMove{},
		HunterSearch{},
		HunterPowerSearch{},
		HunterEMP{},
		PreyMove{},
		PreyDash{},
		PreyEnterJungle{},
		PreyMoveJungle{},
		PreyExitJungle{},
		PreyPassFrozen{},
		RespondSearch{},
		ClaimCatch{},
	}
}
