package poolserver

import (
	"crypto/sha256"
	"crypto/subtle"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abesuite/gaopool/ledger"
	"github.com/abesuite/gaopool/pooljson"
	"github.com/abesuite/gaopool/rewardmgr"
	"github.com/abesuite/gaopool/utils"

	"github.com/gorilla/websocket"
)

const (
	// rpcAuthTimeoutSeconds is the number of seconds a connection to the
	// RPC server is allowed to stay open without authenticating before it
	// is closed.
	rpcAuthTimeoutSeconds = 10
)

// Commands that are available to a limited user
var rpcLimited = map[string]struct{}{
	"version":            {},
	"getpoolinfo":        {},
	"getwindowinfo":      {},
	"findcontribution":   {},
	"balanceof":          {},
	"getepochrecord":     {},
	"checkminingattempt": {},
	"checkwinning":       {},
	"getwindowstate":     {},
	"getcontributions":   {},
	"getredemptions":     {},

	// Websockets commands
	"notifywindows":     {},
	"stopnotifywindows": {},
}

type commandHandler func(*PoolServer, interface{}, <-chan struct{}) (interface{}, error)

// rpcHandlers maps RPC command strings to appropriate handler functions.
// This is set by init because help references rpcHandlers and thus causes
// a dependency loop.
var rpcHandlers map[string]commandHandler
var rpcHandlersBeforeInit = map[string]commandHandler{
	"version":       handleVersion,
	"getpoolinfo":   handleGetPoolInfo,
	"getwindowinfo": handleGetWindowInfo,

	"deposit": handleDeposit,
	"redeem":  handleRedeem,
	"mine":    handleMine,
	"claim":   handleClaim,

	"setfeepercentage":   handleSetFeePercentage,
	"setpaused":          handleSetPaused,
	"setmaxcontribution": handleSetMaxContribution,
	"setfeebank":         handleSetFeeBank,
	"setrewardsource":    handleSetRewardSource,
	"setowner":           handleSetOwner,

	"findcontribution":   handleFindContribution,
	"balanceof":          handleBalanceOf,
	"getepochrecord":     handleGetEpochRecord,
	"checkminingattempt": handleCheckMiningAttempt,
	"checkwinning":       handleCheckWinning,
	"getwindowstate":     handleGetWindowState,
	"getcontributions":   handleGetContributions,
	"getredemptions":     handleGetRedemptions,
}

// simpleAddr implements the net.Addr interface with two struct fields
type simpleAddr struct {
	net, addr string
}

// String returns the address.
//
// This is part of the net.Addr interface.
func (a simpleAddr) String() string {
	return a.addr
}

// Network returns the network.
//
// This is part of the net.Addr interface.
func (a simpleAddr) Network() string {
	return a.net
}

// Ensure simpleAddr implements the net.Addr interface.
var _ net.Addr = simpleAddr{}

// internalRPCError is a convenience function to convert an internal error to
// an RPC error with the appropriate code set.  It also logs the error to the
// RPC server subsystem since internal errors really should not occur.  The
// context parameter is only used in the log message and may be empty if it's
// not needed.
func internalRPCError(errStr, context string) *pooljson.RPCError {
	logStr := errStr
	if context != "" {
		logStr = context + ": " + errStr
	}
	log.Error(logStr)
	return pooljson.NewRPCError(pooljson.ErrRPCInternal.Code, errStr)
}

// PoolServer provides a concurrent safe RPC server to the pool ledger.
type PoolServer struct {
	started      int32
	shutdown     int32
	cfg          ConfigPoolServer
	commonCfg    *CommonConfig
	authsha      [sha256.Size]byte
	limitauthsha [sha256.Size]byte
	ntfnMgr      *wsNotificationManager
	numClients   int32
	statusLines  map[int]string
	statusLock   sync.RWMutex
	wg           sync.WaitGroup
	quit         chan struct{}

	ledger *ledger.Ledger
}

// ConfigPoolServer is a descriptor containing the RPC server configuration.
type ConfigPoolServer struct {
	DisableTLS bool
	// ListenersString an array that contains ip address and port for generating
	// listeners later
	ListenersString []string

	// Listeners defines a slice of listeners for which the RPC server will
	// take ownership of and accept connections.  Since the RPC server takes
	// ownership of these listeners, they will be closed when the RPC server
	// is stopped.
	Listeners []net.Listener

	// StartupTime is the unix timestamp for when the server that is hosting
	// the RPC server started.
	StartupTime int64

	// Network is reported by getpoolinfo.
	Network string

	RPCUser              string
	RPCPass              string
	RPCLimitUser         string
	RPCLimitPass         string
	RPCMaxClients        int
	RPCMaxWebsockets     int
	RPCMaxConcurrentReqs int
	RPCKey               string
	RPCCert              string
	ExternalIPs          []string
}

type CommonConfig struct {
	Blacklist []*net.IPNet
	Whitelist []*net.IPNet
}

func (svr *PoolServer) SetLedger(l *ledger.Ledger) {
	svr.ledger = l
}

func (svr *PoolServer) SetCommonConfig(cfg *CommonConfig) {
	svr.commonCfg = cfg
}

// genCertPair generates a key/cert pair to the paths provided.
func genCertPair(certFile string, keyFile string, externalIPs []string) error {
	log.Infof("Generating TLS certificates of pool server...")

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

	log.Infof("Done generating TLS certificates")
	return nil
}

// parseListeners determines whether each listen address is IPv4 and IPv6 and
// returns a slice of appropriate net.Addrs to listen on with TCP. It also
// properly detects addresses which apply to "all interfaces" and adds the
// address as both IPv4 and IPv6.
func parseListeners(addrs []string) ([]net.Addr, error) {
	netAddrs := make([]net.Addr, 0, len(addrs)*2)
	for _, addr := range addrs {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			// Shouldn't happen due to already being normalized.
			return nil, err
		}

		// Empty host or host of * on plan9 is both IPv4 and IPv6.
		if host == "" || (host == "*" && runtime.GOOS == "plan9") {
			netAddrs = append(netAddrs, simpleAddr{net: "tcp4", addr: addr})
			netAddrs = append(netAddrs, simpleAddr{net: "tcp6", addr: addr})
			continue
		}

		// Strip IPv6 zone id if present since net.ParseIP does not
		// handle it.
		zoneIndex := strings.LastIndex(host, "%")
		if zoneIndex > 0 {
			host = host[:zoneIndex]
		}

		// Parse the IP.
		ip := net.ParseIP(host)
		if ip == nil {
			return nil, fmt.Errorf("'%s' is not a valid IP address", host)
		}

		// To4 returns nil when the IP is not an IPv4 address, so use
		// this determine the address type.
		if ip.To4() == nil {
			netAddrs = append(netAddrs, simpleAddr{net: "tcp6", addr: addr})
		} else {
			netAddrs = append(netAddrs, simpleAddr{net: "tcp4", addr: addr})
		}
	}
	return netAddrs, nil
}

// setupRPCListeners returns a slice of listeners that are configured for use
// with the RPC server depending on the configuration settings for listen
// addresses and TLS.
func setupRPCListeners(listenersString []string, RPCKey string, RPCCert string, externalIPs []string,
	disableTLS bool) ([]net.Listener, error) {
	listenFunc := net.Listen
	// Check the TLS cert and key file, generate a pair when both are missing.
	if !disableTLS {
		keyExists, err := utils.FileExists(RPCKey)
		if err != nil {
			return nil, err
		}
		certExists, err := utils.FileExists(RPCCert)
		if err != nil {
			return nil, err
		}
		if !keyExists && !certExists {
			err := genCertPair(RPCCert, RPCKey, externalIPs)
			if err != nil {
				return nil, err
			}
		}

		keypair, err := tls.LoadX509KeyPair(RPCCert, RPCKey)
		if err != nil {
			return nil, err
		}

		tlsConfig := tls.Config{
			Certificates: []tls.Certificate{keypair},
			MinVersion:   tls.VersionTLS12,
		}

		// Change the standard net.Listen function to the tls one.
		listenFunc = func(net string, laddr string) (net.Listener, error) {
			return tls.Listen(net, laddr, &tlsConfig)
		}
	}

	netAddrs, err := parseListeners(listenersString)
	if err != nil {
		return nil, err
	}

	listeners := make([]net.Listener, 0, len(netAddrs))
	for _, addr := range netAddrs {
		listener, err := listenFunc(addr.Network(), addr.String())
		if err != nil {
			log.Warnf("Can't listen on %s: %v", addr, err)
			continue
		}
		listeners = append(listeners, listener)
	}

	return listeners, nil
}

// NewPoolServer returns a new instance of the PoolServer struct.  Listeners
// already present in config are used as is, otherwise they are created from
// ListenersString.
func NewPoolServer(config *ConfigPoolServer) (*PoolServer, error) {
	if len(config.Listeners) == 0 {
		rpcListeners, err := setupRPCListeners(config.ListenersString, config.RPCKey, config.RPCCert,
			config.ExternalIPs, config.DisableTLS)
		if err != nil {
			return nil, err
		}
		if len(rpcListeners) == 0 {
			return nil, errors.New("Pool RPCS: No valid listen address")
		}
		config.Listeners = rpcListeners
	}
	rpc := PoolServer{
		cfg:         *config,
		commonCfg:   &CommonConfig{},
		statusLines: make(map[int]string),
		quit:        make(chan struct{}),
	}
	if config.RPCUser != "" && config.RPCPass != "" {
		login := config.RPCUser + ":" + config.RPCPass
		auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(login))
		rpc.authsha = sha256.Sum256([]byte(auth))
	}
	if config.RPCLimitUser != "" && config.RPCLimitPass != "" {
		login := config.RPCLimitUser + ":" + config.RPCLimitPass
		auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(login))
		rpc.limitauthsha = sha256.Sum256([]byte(auth))
	}
	rpc.ntfnMgr = newWsNotificationManager(&rpc)

	return &rpc, nil
}

// jsonRPCRead handles reading and responding to RPC messages.
func (svr *PoolServer) jsonRPCRead(w http.ResponseWriter, r *http.Request, isAdmin bool) {
	if atomic.LoadInt32(&svr.shutdown) != 0 {
		return
	}

	// Read and close the JSON-RPC request body from the caller.
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		errCode := http.StatusBadRequest
		http.Error(w, fmt.Sprintf("%d error reading JSON message: %v",
			errCode, err), errCode)
		return
	}

	// Unfortunately, the http server doesn't provide the ability to
	// change the read deadline for the new connection and having one breaks
	// long polling. However, not having a read deadline on the initial
	// connection would mean clients can connect and idle forever. Thus,
	// hijack the connection from the HTTP server, clear the read deadline,
	// and handle writing the response manually.
	hj, ok := w.(http.Hijacker)
	if !ok {
		errMsg := "webserver doesn't support hijacking"
		log.Warnf(errMsg)
		errCode := http.StatusInternalServerError
		http.Error(w, strconv.Itoa(errCode)+" "+errMsg, errCode)
		return
	}
	conn, buf, err := hj.Hijack()
	if err != nil {
		log.Warnf("Failed to hijack HTTP connection: %v", err)
		errCode := http.StatusInternalServerError
		http.Error(w, strconv.Itoa(errCode)+" "+err.Error(), errCode)
		return
	}
	defer conn.Close()
	defer buf.Flush()
	conn.SetReadDeadline(timeZeroVal)

	// Attempt to parse the raw body into a JSON-RPC request.
	var responseID interface{}
	var jsonErr error
	var result interface{}
	var request pooljson.Request
	if err := json.Unmarshal(body, &request); err != nil {
		jsonErr = &pooljson.RPCError{
			Code:    pooljson.ErrRPCParse.Code,
			Message: "Failed to parse request: " + err.Error(),
		}
	}
	if jsonErr == nil {
		// Requests with no ID (notifications) must not have a response
		// per the JSON-RPC spec.
		if request.ID == nil {
			return
		}

		// The parse was at least successful enough to have an ID so
		// set it for the response.
		responseID = request.ID

		// Setup a close notifier.  Since the connection is hijacked,
		// the CloseNotifer on the ResponseWriter is not available.
		closeChan := make(chan struct{}, 1)
		go func() {
			_, err := conn.Read(make([]byte, 1))
			if err != nil {
				close(closeChan)
			}
		}()

		// Check if the user is limited and set error if method unauthorized
		if !isAdmin {
			if _, ok := rpcLimited[request.Method]; !ok {
				jsonErr = &pooljson.RPCError{
					Code:    pooljson.ErrRPCInvalidParams.Code,
					Message: "limited user not authorized for this method",
				}
			}
		}

		if jsonErr == nil {
			// Attempt to parse the JSON-RPC request into a known concrete
			// command.
			parsedCmd := parseCmd(&request)
			if parsedCmd.err != nil {
				jsonErr = parsedCmd.err
			} else {
				result, jsonErr = svr.standardCmdResult(parsedCmd, closeChan)
			}
		}
	}

	if result == nil && jsonErr == nil {
		jsonErr = pooljson.ErrRPCInternal
	}
	// Marshal the response.
	msg, err := createMarshalledReply(responseID, result, jsonErr)
	if err != nil {
		log.Errorf("Failed to marshal reply: %v", err)
		return
	}

	// Write the response.
	err = svr.writeHTTPResponseHeaders(r, w.Header(), http.StatusOK, buf)
	if err != nil {
		log.Error(err)
		return
	}
	if _, err := buf.Write(msg); err != nil {
		log.Errorf("Failed to write marshalled reply: %v", err)
	}

	// Terminate with newline to maintain compatibility.
	if err := buf.WriteByte('\n'); err != nil {
		log.Errorf("Failed to append terminating newline to reply: %v", err)
	}
}

// writeHTTPResponseHeaders writes the necessary response headers prior to
// writing an HTTP body given a request to use for protocol negotiation, headers
// to write, a status code, and a writer.
func (svr *PoolServer) writeHTTPResponseHeaders(req *http.Request, headers http.Header, code int, w io.Writer) error {
	_, err := io.WriteString(w, svr.httpStatusLine(req, code))
	if err != nil {
		return err
	}

	err = headers.Write(w)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, "\r\n")
	return err
}

// httpStatusLine returns a response Status-Line (RFC 2616 Section 6.1)
// for the given request and response status code.  This function was lifted and
// adapted from the standard library HTTP server code since it's not exported.
func (svr *PoolServer) httpStatusLine(req *http.Request, code int) string {
	// Fast path:
	key := code
	proto11 := req.ProtoAtLeast(1, 1)
	if !proto11 {
		key = -key
	}
	svr.statusLock.RLock()
	line, ok := svr.statusLines[key]
	svr.statusLock.RUnlock()
	if ok {
		return line
	}

	// Slow path:
	proto := "HTTP/1.0"
	if proto11 {
		proto = "HTTP/1.1"
	}
	codeStr := strconv.Itoa(code)
	text := http.StatusText(code)
	if text != "" {
		line = proto + " " + codeStr + " " + text + "\r\n"
		svr.statusLock.Lock()
		svr.statusLines[key] = line
		svr.statusLock.Unlock()
	} else {
		text = "status code " + codeStr
		line = proto + " " + codeStr + " " + text + "\r\n"
	}

	return line
}

// Handler returns the http handler serving "/" and "/ws".
func (svr *PoolServer) Handler() http.Handler {
	rpcServeMux := http.NewServeMux()

	// Http endpoint.
	rpcServeMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Connection", "close")
		w.Header().Set("Content-Type", "application/json")
		r.Close = true

		if isUndesiredIP(r.RemoteAddr, svr.commonCfg.Blacklist, svr.commonCfg.Whitelist) {
			jsonIPForbidden(w)
			return
		}

		// Limit the number of connections to max allowed.
		if svr.limitConnections(w, r.RemoteAddr) {
			return
		}

		// Keep track of the number of connected clients.
		svr.incrementClients()
		defer svr.decrementClients()
		_, isAdmin, err := svr.checkAuth(r, true)
		if err != nil {
			jsonAuthFail(w)
			return
		}
		// We do not allow no admin user to use http
		if !isAdmin {
			jsonAuthFail(w)
			return
		}

		// Read and respond to the request.
		svr.jsonRPCRead(w, r, isAdmin)
	})

	// Websocket endpoint.
	rpcServeMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if isUndesiredIP(r.RemoteAddr, svr.commonCfg.Blacklist, svr.commonCfg.Whitelist) {
			jsonIPForbidden(w)
			return
		}

		authenticated, isAdmin, err := svr.checkAuth(r, false)
		if err != nil {
			jsonAuthFail(w)
			return
		}

		// Attempt to upgrade the connection to a websocket connection
		// using the default size for read/write buffers.
		ws, err := websocket.Upgrade(w, r, nil, 0, 0)
		if err != nil {
			if _, ok := err.(websocket.HandshakeError); !ok {
				log.Errorf("Unexpected websocket error: %v",
					err)
			}
			http.Error(w, "400 Bad Request.", http.StatusBadRequest)
			return
		}
		svr.WebsocketHandler(ws, r.RemoteAddr, authenticated, isAdmin)
	})
	return rpcServeMux
}

// Start is used by server.go to start the rpc listener.
func (svr *PoolServer) Start() {
	if atomic.AddInt32(&svr.started, 1) != 1 {
		return
	}

	log.Trace("Starting pool server...")
	httpServer := &http.Server{
		Handler: svr.Handler(),

		// Timeout connections which don't complete the initial
		// handshake within the allowed timeframe.
		ReadTimeout: time.Second * rpcAuthTimeoutSeconds,
	}

	for _, listener := range svr.cfg.Listeners {
		svr.wg.Add(1)
		go func(listener net.Listener) {
			tlsState := "on"
			if svr.cfg.DisableTLS {
				tlsState = "off"
			}
			log.Infof("Pool RPC server listening on %s (TLS %s)", listener.Addr(), tlsState)
			httpServer.Serve(listener)
			log.Tracef("Pool RPC listener done for %s", listener.Addr())
			svr.wg.Done()
		}(listener)
	}

	svr.ntfnMgr.Start()
}

// Stop is used by server.go to stop the pool rpc listener.
func (svr *PoolServer) Stop() error {
	if atomic.AddInt32(&svr.shutdown, 1) != 1 {
		log.Infof("Pool RPC server is already in the process of shutting down")
		return nil
	}
	log.Warnf("Pool RPC server shutting down...")
	for _, listener := range svr.cfg.Listeners {
		err := listener.Close()
		if err != nil {
			log.Errorf("Problem shutting down pool RPC server: %v", err)
			return err
		}
	}
	svr.ntfnMgr.Shutdown()
	svr.ntfnMgr.WaitForShutdown()
	close(svr.quit)
	svr.wg.Wait()
	log.Infof("Pool RPC server shutdown complete")
	return nil
}

// limitConnections responds with a 503 service unavailable and returns true if
// adding another client would exceed the maximum allow RPC clients.
//
// This function is safe for concurrent access.
func (svr *PoolServer) limitConnections(w http.ResponseWriter, remoteAddr string) bool {
	if int(atomic.LoadInt32(&svr.numClients)+1) > svr.cfg.RPCMaxClients {
		log.Infof("Max Pool RPC clients exceeded [%d] - "+
			"disconnecting client %s", svr.cfg.RPCMaxClients,
			remoteAddr)
		http.Error(w, "503 Too busy.  Try again later.",
			http.StatusServiceUnavailable)
		return true
	}
	return false
}

// incrementClients adds one to the number of connected RPC clients.  Note
// this only applies to standard clients.  Websocket clients have their own
// limits and are tracked separately.
//
// This function is safe for concurrent access.
func (svr *PoolServer) incrementClients() {
	atomic.AddInt32(&svr.numClients, 1)
}

// decrementClients subtracts one from the number of connected RPC clients.
// Note this only applies to standard clients.  Websocket clients have their own
// limits and are tracked separately.
//
// This function is safe for concurrent access.
func (svr *PoolServer) decrementClients() {
	atomic.AddInt32(&svr.numClients, -1)
}

// checkAuth checks the HTTP Basic authentication. If the supplied authentication
// does not match the username and password expected, a non-nil error is
// returned.
//
// This check is time-constant.
//
// The first bool return value signifies auth success (true if successful) and
// the second bool return value specifies whether the user can change the state
// of the server (true) or whether the user is limited (false). The second is
// always false if the first is.
func (svr *PoolServer) checkAuth(r *http.Request, require bool) (bool, bool, error) {
	authhdr := r.Header["Authorization"]
	if len(authhdr) <= 0 {
		if require {
			log.Warnf("RPC authentication failure from %s",
				r.RemoteAddr)
			return false, false, errors.New("auth failure")
		}

		return false, false, nil
	}

	authsha := sha256.Sum256([]byte(authhdr[0]))

	// Check for limited auth first as in environments with limited users, those
	// are probably expected to have a higher volume of calls
	limitcmp := subtle.ConstantTimeCompare(authsha[:], svr.limitauthsha[:])
	if limitcmp == 1 {
		return true, false, nil
	}

	// Check for admin-level auth
	cmp := subtle.ConstantTimeCompare(authsha[:], svr.authsha[:])
	if cmp == 1 {
		return true, true, nil
	}

	// Request's auth doesn't match either user
	log.Warnf("RPC authentication failure from %s", r.RemoteAddr)
	return false, false, errors.New("auth failure")
}

// jsonAuthFail sends a message back to the client if the http auth is rejected.
func jsonAuthFail(w http.ResponseWriter) {
	w.Header().Add("WWW-Authenticate", `Basic realm="gaopool RPC"`)
	http.Error(w, "401 Unauthorized.", http.StatusUnauthorized)
}

func jsonIPForbidden(w http.ResponseWriter) {
	http.Error(w, "403 Forbidden.", http.StatusForbidden)
}

// WebsocketHandler handles a new websocket client by creating a new wsClient,
// starting it, and blocking until the connection closes.  Since it blocks, it
// must be run in a separate goroutine.  It should be invoked from the websocket
// server handler which runs each new connection in a new goroutine thereby
// satisfying the requirement.
func (svr *PoolServer) WebsocketHandler(conn *websocket.Conn, remoteAddr string,
	authenticated bool, isAdmin bool) {

	// Clear the read deadline that was set before the websocket hijacked
	// the connection.
	conn.SetReadDeadline(timeZeroVal)

	// Limit max number of websocket clients.
	log.Infof("New websocket client %s", remoteAddr)
	if svr.ntfnMgr.NumClients()+1 > svr.cfg.RPCMaxWebsockets {
		log.Infof("Max websocket clients exceeded [%d] - "+
			"disconnecting client %s", svr.cfg.RPCMaxWebsockets,
			remoteAddr)
		conn.Close()
		return
	}

	// Create a new websocket client to handle the new websocket connection
	// and wait for it to shutdown.  Once it has shutdown (and hence
	// disconnected), remove it and any notifications it registered for.
	client, err := newWebsocketClient(svr, conn, remoteAddr, authenticated, isAdmin)
	if err != nil {
		log.Errorf("Failed to serve client %s: %v", remoteAddr, err)
		conn.Close()
		return
	}
	svr.ntfnMgr.AddClient(client)
	client.Start()
	client.WaitForShutdown()
	svr.ntfnMgr.RemoveClient(client)
	log.Infof("Disconnected websocket client %s", remoteAddr)
}

// createMarshalledReply returns a new marshalled JSON-RPC response given the
// passed parameters.  It will automatically convert errors that are not of
// the type *pooljson.RPCError to the appropriate type as needed.
func createMarshalledReply(id, result interface{}, replyErr error) ([]byte, error) {
	var jsonErr *pooljson.RPCError
	if replyErr != nil {
		if jErr, ok := replyErr.(*pooljson.RPCError); ok {
			jsonErr = jErr
		} else if lErr := pooljson.LedgerRPCError(replyErr); lErr != nil {
			jsonErr = lErr
		} else {
			jsonErr = internalRPCError(replyErr.Error(), "")
		}
	}

	return pooljson.MarshalResponse(id, result, jsonErr)
}

// parsedRPCCmd represents a JSON-RPC request object that has been parsed into
// a known concrete command along with any error that might have happened while
// parsing it.
type parsedRPCCmd struct {
	id     interface{}
	method string
	cmd    interface{}
	err    *pooljson.RPCError
}

// parseCmd parses a JSON-RPC request object into known concrete command.  The
// err field of the returned parsedRPCCmd struct will contain an RPC error that
// is suitable for use in replies if the command is invalid in some way such as
// an unregistered command or invalid parameters.
func parseCmd(request *pooljson.Request) *parsedRPCCmd {
	var parsedCmd parsedRPCCmd
	parsedCmd.id = request.ID
	parsedCmd.method = request.Method

	cmd, err := pooljson.UnmarshalCmd(request)
	if err != nil {
		// When the error is because the method is not registered,
		// produce a method not found RPC error.
		if jerr, ok := err.(pooljson.Error); ok &&
			jerr.ErrorCode == pooljson.ErrUnregisteredMethod {

			parsedCmd.err = pooljson.ErrRPCMethodNotFound
			return &parsedCmd
		}

		// Otherwise, some type of invalid parameters is the
		// cause, so produce the equivalent RPC error.
		parsedCmd.err = pooljson.NewRPCError(
			pooljson.ErrRPCInvalidParams.Code, err.Error())
		return &parsedCmd
	}

	parsedCmd.cmd = cmd
	return &parsedCmd
}

// standardCmdResult checks that a parsed command is a standard pool JSON-RPC
// command and runs the appropriate handler to reply to the command.  Any
// commands which are not recognized or not implemented will return an error
// suitable for use in replies.
func (svr *PoolServer) standardCmdResult(cmd *parsedRPCCmd, closeChan <-chan struct{}) (result interface{}, err error) {
	// Recovery
	defer func() {
		if r := recover(); r != nil {
			utils.LogRecovered(cmd.method+" handler", r)
			result, err = nil, pooljson.ErrRPCInternal
		}
	}()

	handler, ok := rpcHandlers[cmd.method]
	if !ok {
		return nil, pooljson.ErrRPCMethodNotFound
	}
	return handler(svr, cmd.cmd, closeChan)
}

// HandleRewardManagerNotification handles notifications from the reward
// manager and forwards them to the websocket clients that asked for them.
func (svr *PoolServer) HandleRewardManagerNotification(notification *rewardmgr.Notification) {
	switch notification.Type {
	case rewardmgr.NTWindowOpened:
		opened, ok := notification.Data.(*rewardmgr.WindowOpened)
		if !ok {
			log.Warnf("The NTWindowOpened notification is not a window!")
			break
		}
		svr.ntfnMgr.NotifyWindowOpened(opened)

	case rewardmgr.NTWindowResolved:
		resolved, ok := notification.Data.(*ledger.ClaimResult)
		if !ok {
			log.Warnf("The NTWindowResolved notification is not a claim result!")
			break
		}
		svr.ntfnMgr.NotifyWindowResolved(resolved)
	}
}

// isUndesiredIP determines whether the server should continue to pursue
// a connection with this peer based on its ip address. It performs
// the following steps:
// 1) Reject the peer if it contains a blacklisted ip.
// 2) If no whitelist is provided, accept all ip.
// 3) Accept the peer if it contains a whitelisted ip.
// 4) Reject all other peers.
func isUndesiredIP(remoteAddress string, blacklistedIPs, whitelistedIPs []*net.IPNet) bool {
	if len(blacklistedIPs) == 0 && len(whitelistedIPs) == 0 {
		return false
	}

	host, _, err := net.SplitHostPort(remoteAddress)
	if err != nil {
		log.Warnf("Unable to SplitHostPort on '%s': %v", remoteAddress, err)
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil {
		log.Warnf("Unable to parse IP '%s'", remoteAddress)
		return false
	}

	for _, blacklistedIP := range blacklistedIPs {
		if blacklistedIP.Contains(ip) {
			log.Debugf("Ignoring peer %s because it contains blacklisted ip: %v", remoteAddress, blacklistedIP)
			return true
		}
	}

	// If no whitelist is provided, we will accept all peers.
	if len(whitelistedIPs) == 0 {
		return false
	}

	// Check to see if it contains one of our whitelisted ip, if so accept.
	for _, whitelistedIP := range whitelistedIPs {
		if whitelistedIP.Contains(ip) {
			return false
		}
	}

	// Otherwise, the peer's ip was not included in our whitelist.
	log.Debugf("Ignoring peer %s because it is not in whitelist", remoteAddress)

	return true
}

func init() {
	rpcHandlers = rpcHandlersBeforeInit
}
