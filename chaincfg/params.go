package chaincfg

// Params is used to group parameters for various networks such as the main
// network and test networks.
type Params struct {
	Name        string
	DefaultPort string

	// WindowSize is the number of external blocks that form one mining
	// window.
	WindowSize uint64

	// EpochLength is the number of windows that form one epoch.
	EpochLength uint64

	// MinAttemptPerWindow is the smallest per-window allocation a new
	// contributor may buy, the minimum contribution is this value times
	// EpochLength.
	MinAttemptPerWindow uint64

	// BlockReward is the reward unit credited for one won window.
	BlockReward uint64

	// SimulatedBlockSeconds is the block interval of the in-process
	// reward source, zero means the network has no simulated source.
	SimulatedBlockSeconds int
}

// MinContribution returns MinAttemptPerWindow * EpochLength.
func (p *Params) MinContribution() uint64 {
	return p.MinAttemptPerWindow * p.EpochLength
}

// MainNetParams contains parameters on the main network
var MainNetParams = Params{
	Name:                "mainnet",
	DefaultPort:         "8686",
	WindowSize:          50,
	EpochLength:         100,
	MinAttemptPerWindow: 10_000_000,
	BlockReward:         100 * 100_000_000,
}

// TestNet3Params contains parameters on the test network
var TestNet3Params = Params{
	Name:                "testnet3",
	DefaultPort:         "18686",
	WindowSize:          50,
	EpochLength:         100,
	MinAttemptPerWindow: 10_000_000,
	BlockReward:         100 * 100_000_000,
}

// SimNetParams contains parameters specific to the simulation test network
var SimNetParams = Params{
	Name:                  "simnet",
	DefaultPort:           "18888",
	WindowSize:            5,
	EpochLength:           10,
	MinAttemptPerWindow:   10_000_000,
	BlockReward:           100 * 100_000_000,
	SimulatedBlockSeconds: 2,
}

// RegNetParams contains parameters specific to the regression test network
var RegNetParams = Params{
	Name:                  "regtest",
	DefaultPort:           "18777",
	WindowSize:            50,
	EpochLength:           100,
	MinAttemptPerWindow:   10_000_000,
	BlockReward:           100 * 100_000_000,
	SimulatedBlockSeconds: 1,
}

var ActiveNetParams = &MainNetParams

var PoolBackendVersion = "unknown"

// PoolName is reported by getpoolinfo.
const PoolName = "GaoPool Unlimited"
