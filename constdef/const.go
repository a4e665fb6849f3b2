package constdef

const (
	// MaxPageSize bounds the history queries served over rpc.
	MaxPageSize     = 100
	DefaultPageSize = 20
)

const (
	MaxPercentage = 100
	// AddressLength is the length of a hex encoded address with 0x prefix.
	AddressLength = 42
)

const (
	// MaxClaimsPerPoll bounds how many pending windows the reward manager
	// resolves in one round.
	MaxClaimsPerPoll       = 50
	DefaultPollIntervalSec = 5
	// DefaultResolvedCacheSize is the number of resolved windows kept in memory.
	DefaultResolvedCacheSize = 1024
)
