package nakama

// RpcIDQuickMatch is the Nakama RPC id clients call to find or create a
// lobby-capable match.
const RpcIDQuickMatch = "quick_match"

// RpcIDListGames is the Nakama RPC id clients call to enumerate the games
// registered on this server.
const RpcIDListGames = "list_games"

// MatchNameSeaBattle is the authoritative match handler name registered
// with Nakama.
const MatchNameSeaBattle = "seabattle_match"

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame  int64 = 1
	OpGameAction int64 = 2

	// Server -> Client
	OpLobbyState     int64 = 100
	OpStateUpdate    int64 = 101
	OpActionRejected int64 = 102
	OpGameEnded      int64 = 103
)
