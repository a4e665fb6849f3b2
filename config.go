package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/abesuite/gaopool/chaincfg"
	"github.com/abesuite/gaopool/constdef"
	"github.com/abesuite/gaopool/dal"
	"github.com/abesuite/gaopool/model"
	"github.com/abesuite/gaopool/utils"

	"github.com/ethereum/go-ethereum/common"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename       = "gaopoold.conf"
	defaultLogDirname           = "logs"
	defaultLogFilename          = "gaopoold.log"
	defaultDbType               = dal.DBTypeMySQL
	defaultDbFilename           = "gaopool.db"
	defaultLogLevel             = "info"
	defaultListenerPort         = "27777"
	defaultPoolLimitUser        = "viewer"
	defaultPoolLimitPass        = "viewer"
	defaultMaxRPCClients        = 1000
	defaultMaxRPCWebsockets     = 1000
	defaultMaxRPCConcurrentReqs = 200
	defaultDbAddress            = "127.0.0.1:3306"
	defaultDatabaseName         = "gao_pool"
	defaultSimWinPercent        = 30
)

var (
	defaultHomeDir    = utils.AppDataDir("gaopool", false)
	localConfigFile   = defaultConfigFilename
	knownDbTypes      = []string{dal.DBTypeMySQL, dal.DBTypeSQLite}
	localPoolKeyFile  = "pool.key"
	localPoolCertFile = "pool.cert"
	defaultLogDir     = filepath.Join(defaultHomeDir, defaultLogDirname)
	netParams         = &chaincfg.MainNetParams
)

// config defines the configuration options for gaopoold.
//
// See loadConfig for details on the configuration load process.
type config struct {
	AppDataDir           *utils.ExplicitString `short:"A" long:"appdata" description:"Application data directory for pool config, logs and sqlite database"`
	Blacklists           []string              `long:"blacklist" description:"Add an IP network or IP that will be banned. (eg. 192.168.1.0/24 or ::1)"`
	blacklists           []*net.IPNet
	ConfigFile           string   `short:"C" long:"configfile" description:"Path to configuration file"`
	DbType               string   `long:"dbtype" description:"Database backend to use for the ledger {mysql, sqlite}"`
	DbUsername           string   `long:"dbusername" description:"username which is used to connect with database"`
	DbPassword           string   `long:"dbpassword" default-mask:"-" description:"password which is used to connect with database"`
	DbAddress            string   `long:"dbaddress" description:"ip address and port of database (default: 127.0.0.1:3306)"`
	DbName               string   `long:"dbname" description:"name of server database (default: gao_pool)"`
	DbPath               string   `long:"dbpath" description:"Path of the sqlite database file (default: <appdata>/<network>/gaopool.db)"`
	DebugLevel           string   `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	DisableAutoCreateDB  bool     `long:"noautocreatedb" description:"Disable creating database and table automatically"`
	DisableAutoMine      bool     `long:"noautomine" description:"Do not submit an attempt at the start of every window, matured windows are still claimed"`
	DisableTLS           bool     `long:"notls" description:"Disable TLS for the RPC server -- NOTE: This is only allowed if the RPC server is bound to localhost"`
	ExternalIPs          []string `long:"externalip" description:"Add an ip to the list of local addresses the generated certificate is valid for"`
	Listeners            []string `long:"listen" description:"Add an interface/port to listen for connections (HTTP/ws)"`
	ListenerPort         string   `long:"listenerport" description:"listenerport is the port that HTTP/ws server listen on (default: 27777)"`
	LogDir               string   `long:"logdir" description:"Directory to log output."`
	PollInterval         int      `long:"pollinterval" description:"Seconds between two polls of the reward source height (default: 5)"`
	ProfilePort          string   `long:"profileport" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65536"`
	RegressionTest       bool     `long:"regtest" description:"Use the regression test network"`
	RPCCert              string   `long:"rpccert" description:"File containing the certificate file"`
	RPCKey               string   `long:"rpckey" description:"File containing the certificate key"`
	RPCLimitPass         string   `long:"rpclimitpass" default-mask:"-" description:"Password for limited RPC connections"`
	RPCLimitUser         string   `long:"rpclimituser" description:"Username for limited RPC connections, limited users may only query the pool over websocket"`
	RPCMaxClients        int      `long:"rpcmaxclients" description:"Max number of RPC clients for standard connections"`
	RPCMaxConcurrentReqs int      `long:"rpcmaxconcurrentreqs" description:"Max number of concurrent RPC requests that may be processed concurrently"`
	RPCMaxWebsockets     int      `long:"rpcmaxwebsockets" description:"Max number of RPC websocket connections"`
	RPCPass              string   `short:"P" long:"rpcpass" default-mask:"-" description:"Password for admin RPC connections"`
	RPCUser              string   `short:"u" long:"rpcuser" description:"Username for admin RPC connections"`
	ShowVersion          bool     `short:"V" long:"version" description:"Display version information and exit"`
	SimNet               bool     `long:"simnet" description:"Use the simulation test network"`
	TestNet              bool     `long:"testnet" description:"Use the test network"`
	Whitelists           []string `long:"whitelist" description:"Add an IP network or IP that will not be banned. (eg. 192.168.1.0/24 or ::1)"`
	whitelists           []*net.IPNet
	WorkingDir           string `long:"workingdir" description:"Working directory"`

	// Pool settings, only used to seed the pool config on first start.
	// Later changes go through the owner RPC commands.
	PoolAddress       string `long:"pooladdress" description:"Address the pool mines and holds the won rewards with"`
	Owner             string `long:"owner" description:"Address allowed to change the pool settings"`
	FeePercentage     uint64 `long:"feepercentage" description:"Percentage of every epoch reward kept as fee (0-100)"`
	FeeBank           string `long:"feebank" description:"Address receiving part of the fee"`
	FeeBankPercentage uint64 `long:"feebankpercentage" description:"Percentage of the fee sent to the fee bank (0-100)"`
	MaxContribution   string `long:"maxcontribution" description:"Upper bound of one contributor's stake, 0 means unlimited"`
	Paused            bool   `long:"paused" description:"Start with deposits paused"`
	QuietRedeem       bool   `long:"quietredeem" description:"Treat a redemption with nothing to pay as a successful no-op"`
	CreditTo          string `long:"creditto" description:"Address passed along when claiming a window"`

	// In-process reward source.
	SimWinPercent   uint64 `long:"simwinpercent" description:"Chance in percent that an attempted window wins on the simulated reward source (default: 30)"`
	SimSeed         string `long:"simseed" description:"Seed of the simulated window draws"`
	SimBlockSeconds int    `long:"simblockseconds" description:"Seconds between two blocks of the simulated reward source (default: network specific)"`

	poolDefaults *model.PoolConfig
	creditTo     common.Address
}

func newConfigParser(cfg *config, options flags.Options) *flags.Parser {
	parser := flags.NewParser(cfg, options)
	return parser
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(defaultHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// supportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func supportedSubsystems() []string {
	// Convert the subsystemLoggers map keys to a slice.
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}

	// Sort the subsystems for stable display.
	sort.Strings(subsystems)
	return subsystems
}

func validLogLevel(logLevel string) bool {
	switch logLevel {
	case "trace":
		fallthrough
	case "debug":
		fallthrough
	case "info":
		fallthrough
	case "warn":
		fallthrough
	case "error":
		fallthrough
	case "critical":
		return true
	}
	return false
}

func validDbType(dbType string) bool {
	for _, knownType := range knownDbTypes {
		if dbType == knownType {
			return true
		}
	}

	return false
}

// parseAndSetDebugLevels attempts to parse the specified debug level and set
// the levels accordingly.  An appropriate error is returned if anything is
// invalid.
func parseAndSetDebugLevels(debugLevel string) error {
	// When the specified string doesn't have any delimters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		// Validate debug log level.
		if !validLogLevel(debugLevel) {
			str := "The specified debug level [%v] is invalid"
			return fmt.Errorf(str, debugLevel)
		}

		// Change the logging level for all subsystems.
		setLogLevels(debugLevel)

		return nil
	}

	// Split the specified string into subsystem/level pairs while detecting
	// issues and update the log levels accordingly.
	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			str := "The specified debug level contains an invalid " +
				"subsystem/level pair [%v]"
			return fmt.Errorf(str, logLevelPair)
		}

		// Extract the specified subsystem and log level.
		fields := strings.Split(logLevelPair, "=")
		subsysID, logLevel := fields[0], fields[1]

		// Validate subsystem.
		if _, exists := subsystemLoggers[subsysID]; !exists {
			str := "The specified subsystem [%v] is invalid -- " +
				"supported subsytems %v"
			return fmt.Errorf(str, subsysID, supportedSubsystems())
		}

		// Validate log level.
		if !validLogLevel(logLevel) {
			str := "The specified debug level [%v] is invalid"
			return fmt.Errorf(str, logLevel)
		}

		setLogLevel(subsysID, logLevel)
	}

	return nil
}

// removeDuplicateAddresses returns a new slice with all duplicate entries in
// addrs removed.
func removeDuplicateAddresses(addrs []string) []string {
	result := make([]string, 0, len(addrs))
	seen := map[string]struct{}{}
	for _, val := range addrs {
		if _, ok := seen[val]; !ok {
			result = append(result, val)
			seen[val] = struct{}{}
		}
	}
	return result
}

// normalizeAddresses returns a new slice with all the passed peer addresses
// normalized with the given default port, and all duplicates removed.
func normalizeAddresses(addrs []string, defaultPort string) []string {
	for i, addr := range addrs {
		addrs[i] = utils.NormalizeAddress(addr, defaultPort)
	}

	return removeDuplicateAddresses(addrs)
}

// parseIPNets turns a list of IPs and CIDR networks into IP networks, a bare
// IP becomes a single host network.
func parseIPNets(addrs []string) ([]*net.IPNet, error) {
	res := make([]*net.IPNet, 0, len(addrs))
	for _, addr := range addrs {
		_, ipnet, err := net.ParseCIDR(addr)
		if err != nil {
			ip := net.ParseIP(addr)
			if ip == nil {
				return nil, fmt.Errorf("the value of '%s' is invalid", addr)
			}
			var bits int
			if ip.To4() == nil {
				bits = 128
			} else {
				bits = 32
			}
			ipnet = &net.IPNet{
				IP:   ip,
				Mask: net.CIDRMask(bits, bits),
			}
		}
		res = append(res, ipnet)
	}
	return res, nil
}

// genCertPair generates a key/cert pair to the paths provided.
func genCertPair(certFile string, keyFile string, externalIPs []string) error {
	poolLog.Infof("Generating TLS certificates...")

	org := "gaopool autogenerated cert"
	validUntil := time.Now().Add(10 * 365 * 24 * time.Hour)
	cert, key, err := utils.NewTLSCertPair(org, validUntil, externalIPs)
	if err != nil {
		return err
	}

	// Write cert and key files.
	if err = os.WriteFile(certFile, cert, 0666); err != nil {
		return err
	}
	if err = os.WriteFile(keyFile, key, 0600); err != nil {
		os.Remove(certFile)
		return err
	}

	poolLog.Infof("Done generating TLS certificates")
	return nil
}

// buildPoolDefaults parses the pool settings used to seed the pool config.
func buildPoolDefaults(cfg *config) (*model.PoolConfig, error) {
	if utils.IsBlank(cfg.PoolAddress) {
		return nil, errors.New("pooladdress should be configured")
	}
	poolAddress, err := utils.ParseAddress(cfg.PoolAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid pooladdress: %v", err)
	}
	if utils.IsBlank(cfg.Owner) {
		return nil, errors.New("owner should be configured")
	}
	owner, err := utils.ParseAddress(cfg.Owner)
	if err != nil {
		return nil, fmt.Errorf("invalid owner: %v", err)
	}
	feeBank, err := utils.ParseOptionalAddress(cfg.FeeBank)
	if err != nil {
		return nil, fmt.Errorf("invalid feebank: %v", err)
	}
	if cfg.FeePercentage > constdef.MaxPercentage || cfg.FeeBankPercentage > constdef.MaxPercentage {
		return nil, fmt.Errorf("feepercentage and feebankpercentage should not exceed %v", constdef.MaxPercentage)
	}
	maxContribution := "0"
	if !utils.IsBlank(cfg.MaxContribution) {
		maxContribution = cfg.MaxContribution
	}
	maxAmount, err := model.ParseAmount(maxContribution)
	if err != nil {
		return nil, fmt.Errorf("invalid maxcontribution: %v", err)
	}

	return &model.PoolConfig{
		Owner:             owner,
		PoolAddress:       poolAddress,
		FeePercentage:     cfg.FeePercentage,
		FeeBankAddress:    feeBank,
		FeeBankPercentage: cfg.FeeBankPercentage,
		MaxContribution:   maxAmount,
		Paused:            cfg.Paused,
	}, nil
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in gaopoold functioning properly without any config
// settings while still allowing the user to override settings with config
// files and command line options.  Command line options always take
// precedence.
func loadConfig() (*config, []string, error) {
	// Default config.
	cfg := config{
		ConfigFile:           localConfigFile,
		AppDataDir:           utils.NewExplicitString(defaultHomeDir),
		DebugLevel:           defaultLogLevel,
		LogDir:               defaultLogDir,
		RPCMaxClients:        defaultMaxRPCClients,
		RPCMaxConcurrentReqs: defaultMaxRPCConcurrentReqs,
		RPCMaxWebsockets:     defaultMaxRPCWebsockets,
		DbType:               defaultDbType,
		DbName:               defaultDatabaseName,
		RPCKey:               localPoolKeyFile,
		RPCCert:              localPoolCertFile,
		PollInterval:         constdef.DefaultPollIntervalSec,
		SimWinPercent:        defaultSimWinPercent,
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.  Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := cfg
	preParser := newConfigParser(&preCfg, flags.HelpFlag)
	_, err := preParser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			return nil, nil, err
		}
	}

	// Show the version and exit if the version flag was specified.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", version())
		os.Exit(0)
	}

	if preCfg.WorkingDir != "" {
		err := os.Chdir(preCfg.WorkingDir)
		if err != nil {
			return nil, nil, err
		}
	}

	// Load additional config from file.
	var configFileError error
	parser := newConfigParser(&cfg, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		if _, ok := err.(*os.PathError); !ok {
			fmt.Fprintf(os.Stderr, "Error parsing config "+
				"file: %v\n", err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, nil, err
		}
		configFileError = err
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return nil, nil, err
	}

	funcName := "loadConfig"
	appDataDir := cleanAndExpandPath(cfg.AppDataDir.Value)
	err = os.MkdirAll(appDataDir, 0700)
	if err != nil {
		// Show a nicer error message if it's because a symlink is
		// linked to a directory that does not exist (probably because
		// it's not mounted).
		if e, ok := err.(*os.PathError); ok && os.IsExist(err) {
			if link, lerr := os.Readlink(e.Path); lerr == nil {
				str := "is symlink %s -> %s mounted?"
				err = fmt.Errorf(str, e.Path, link)
			}
		}

		str := "%s: Failed to create home directory: %v"
		err := fmt.Errorf(str, funcName, err)
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	// A log directory left at its default follows an explicit appdata.
	if cfg.AppDataDir.ExplicitlySet() && cfg.LogDir == defaultLogDir {
		cfg.LogDir = filepath.Join(appDataDir, defaultLogDirname)
	}
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	// Initialize log rotation.  After log rotation has been initialized, the
	// logger variables may be used.
	initLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err := fmt.Errorf("%s: %v", funcName, err.Error())
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	poolLog.Infof("Version %s", version())

	// Validate database type.
	if !validDbType(cfg.DbType) {
		str := "%s: The specified database type [%v] is invalid -- " +
			"supported types %v"
		err := fmt.Errorf(str, funcName, cfg.DbType, knownDbTypes)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	// Multiple networks can't be selected simultaneously.
	numNets := 0
	if cfg.TestNet {
		numNets++
		netParams = &chaincfg.TestNet3Params
	}
	if cfg.RegressionTest {
		numNets++
		netParams = &chaincfg.RegNetParams
	}
	if cfg.SimNet {
		numNets++
		netParams = &chaincfg.SimNetParams
	}
	if numNets > 1 {
		str := "%s: The testnet, regtest, and simnet params " +
			"can't be used together -- choose one of the three"
		err := fmt.Errorf(str, funcName)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}
	if netParams != &chaincfg.MainNetParams {
		cfg.DbName = cfg.DbName + "_" + netParams.Name
	}
	chaincfg.ActiveNetParams = netParams

	// The only reward source is the in-process one, networks without a
	// block interval need it set explicitly.
	if cfg.SimBlockSeconds <= 0 {
		cfg.SimBlockSeconds = netParams.SimulatedBlockSeconds
	}
	if cfg.SimBlockSeconds <= 0 {
		str := "%s: network %v has no simulated reward source, " +
			"set simblockseconds"
		err := fmt.Errorf(str, funcName, netParams.Name)
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}
	if cfg.SimWinPercent > constdef.MaxPercentage {
		return nil, nil, fmt.Errorf("%s: simwinpercent should not exceed %v", funcName, constdef.MaxPercentage)
	}
	if cfg.SimSeed == "" {
		cfg.SimSeed = netParams.Name
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = constdef.DefaultPollIntervalSec
	}

	if len(cfg.Whitelists) > 0 {
		cfg.whitelists, err = parseIPNets(cfg.Whitelists)
		if err != nil {
			err := fmt.Errorf("%s: whitelist: %v", funcName, err)
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, nil, err
		}
	}
	if len(cfg.Blacklists) > 0 {
		cfg.blacklists, err = parseIPNets(cfg.Blacklists)
		if err != nil {
			err := fmt.Errorf("%s: blacklist: %v", funcName, err)
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, nil, err
		}
	}

	// Default RPC to listen on all interfaces.
	if cfg.ListenerPort == "" {
		cfg.ListenerPort = defaultListenerPort
	}
	if len(cfg.Listeners) == 0 {
		cfg.Listeners = []string{
			net.JoinHostPort("", cfg.ListenerPort),
		}
	}
	cfg.Listeners = normalizeAddresses(cfg.Listeners, cfg.ListenerPort)

	if cfg.RPCUser == "" || cfg.RPCPass == "" {
		return nil, nil, errors.New("rpcuser and rpcpass should be configured for the pool owner to manage the pool")
	}
	if cfg.RPCLimitUser == "" || cfg.RPCLimitPass == "" {
		cfg.RPCLimitUser = defaultPoolLimitUser
		cfg.RPCLimitPass = defaultPoolLimitPass
	}
	if cfg.RPCUser == cfg.RPCLimitUser {
		str := "%s: --rpcuser and --rpclimituser must not specify the same username"
		err := fmt.Errorf(str, funcName)
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	switch cfg.DbType {
	case dal.DBTypeMySQL:
		if cfg.DbUsername == "" || cfg.DbPassword == "" {
			return nil, nil, errors.New("database username or password not configured, please add them in configuration file or " +
				"specify them using --dbusername and --dbpassword")
		}
		if cfg.DbAddress == "" {
			poolLog.Infof("Use default database address: %v", defaultDbAddress)
			cfg.DbAddress = defaultDbAddress
		}
		if cfg.DbName == "" {
			return nil, nil, fmt.Errorf("nil dbname")
		}
	case dal.DBTypeSQLite:
		if cfg.DbPath == "" {
			cfg.DbPath = filepath.Join(appDataDir, netParams.Name, defaultDbFilename)
		}
		cfg.DbPath = cleanAndExpandPath(cfg.DbPath)
		if err := os.MkdirAll(filepath.Dir(cfg.DbPath), 0700); err != nil {
			return nil, nil, err
		}
	}

	cfg.poolDefaults, err = buildPoolDefaults(&cfg)
	if err != nil {
		err := fmt.Errorf("%s: %v", funcName, err)
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}
	cfg.creditTo, err = utils.ParseOptionalAddress(cfg.CreditTo)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: invalid creditto: %v", funcName, err)
	}
	if cfg.creditTo == (common.Address{}) {
		cfg.creditTo = cfg.poolDefaults.PoolAddress
	}

	// Warn about missing config file only after all other configuration is
	// done.  This prevents the warning on help messages and invalid
	// options.  Note this should go directly before the return.
	if configFileError != nil {
		poolLog.Warnf("%v", configFileError)
	}

	if !cfg.DisableTLS {
		cfg.RPCCert = cleanAndExpandPath(cfg.RPCCert)
		cfg.RPCKey = cleanAndExpandPath(cfg.RPCKey)
		certExists, err := utils.FileExists(cfg.RPCCert)
		if err != nil {
			return nil, nil, err
		}
		keyExists, err := utils.FileExists(cfg.RPCKey)
		if err != nil {
			return nil, nil, err
		}
		if !certExists && !keyExists {
			err := genCertPair(cfg.RPCCert, cfg.RPCKey, cfg.ExternalIPs)
			if err != nil {
				return nil, nil, err
			}
		}
	} else {
		poolLog.Infof("TLS certificate for RPC server is disabled")
	}

	poolLog.Infof("Network: %v, window size: %v blocks, epoch length: %v windows",
		netParams.Name, netParams.WindowSize, netParams.EpochLength)

	chaincfg.PoolBackendVersion = version()

	return &cfg, remainingArgs, nil
}
