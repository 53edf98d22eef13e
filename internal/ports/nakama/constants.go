package nakama

// RPC ids registered with the Nakama runtime.
const (
	RpcCreateGame        = "zkhunt_create_game"
	RpcGetGame           = "zkhunt_get_game"
	RpcJoinGame          = "zkhunt_join_game"
	RpcHunterMove        = "zkhunt_hunter_move"
	RpcHunterSearch      = "zkhunt_hunter_search"
	RpcHunterPowerSearch = "zkhunt_hunter_power_search"
	RpcHunterEMP         = "zkhunt_hunter_emp"
	RpcPreyMovePublic    = "zkhunt_prey_move_public"
	RpcPreyDashPublic    = "zkhunt_prey_dash_public"
	RpcPreyEnterJungle   = "zkhunt_prey_enter_jungle"
	RpcPreyMoveJungle    = "zkhunt_prey_move_jungle"
	RpcPreyExitJungle    = "zkhunt_prey_exit_jungle"
	RpcPreyPassFrozen    = "zkhunt_prey_pass_frozen"
	RpcRespondSearch     = "zkhunt_respond_search"
	RpcClaimCatch        = "zkhunt_claim_catch"

	// MatchNameSession is the relay match handler name registered with Nakama.
	MatchNameSession = "zkhunt_session"
)

// Server -> Client op codes on the relay socket.
const (
	OpSessionUpdated int64 = 101
	OpGameEvent      int64 = 102 // may be sent privately
)

// Storage layout. Objects are owned by the system user.
const (
	sessionCollection = "zkhunt_sessions"
	counterCollection = "zkhunt_counters"
	counterKey        = "session_id"
)

// In-app notification codes.
const (
	NotificationMatchStarted = 4001
	NotificationMatchEnded   = 4002
)

// Relay lifetime.
const (
	relayTickRate      = 1
	relayMaxEmptyTicks = 300
)
