package poolserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abesuite/gaopool/constdef"
	"github.com/abesuite/gaopool/dal"
	"github.com/abesuite/gaopool/errcode"
	"github.com/abesuite/gaopool/ledger"
	"github.com/abesuite/gaopool/model"
	"github.com/abesuite/gaopool/pooljson"
	"github.com/abesuite/gaopool/rewardmgr"
	"github.com/abesuite/gaopool/rewardsource"
	"github.com/abesuite/gaopool/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminUser = "admin"
	adminPass = "adminpass"
	limitUser = "viewer"
	limitPass = "viewerpass"
)

var (
	owner = common.HexToAddress("0x00000000000000000000000000000000000000e0")
	pool  = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
)

type testServer struct {
	server *PoolServer
	ledger *ledger.Ledger
	source *rewardsource.Simulated
	addr   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	name := strings.NewReplacer("/", "_").Replace(t.Name())
	db, err := dal.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, dal.CreateTables(db))

	source := rewardsource.NewSimulated(rewardsource.SimulatedConfig{
		WindowSize:  5,
		BlockReward: big.NewInt(1000),
		WinPercent:  100,
	})
	l, err := ledger.New(context.Background(), db, ledger.Config{
		WindowSize:      5,
		EpochLength:     10,
		MinContribution: big.NewInt(100),
		BlockReward:     big.NewInt(1000),
		Defaults: &model.PoolConfig{
			Owner:           owner,
			PoolAddress:     pool,
			MaxContribution: new(big.Int),
		},
	}, source, source)
	require.NoError(t, err)

	ts := httptest.NewUnstartedServer(nil)
	svr, err := NewPoolServer(&ConfigPoolServer{
		DisableTLS:           true,
		Listeners:            []net.Listener{ts.Listener},
		Network:              "regtest",
		RPCUser:              adminUser,
		RPCPass:              adminPass,
		RPCLimitUser:         limitUser,
		RPCLimitPass:         limitPass,
		RPCMaxClients:        10,
		RPCMaxWebsockets:     10,
		RPCMaxConcurrentReqs: 5,
	})
	require.NoError(t, err)
	svr.SetLedger(l)
	svr.ntfnMgr.Start()
	ts.Config.Handler = svr.Handler()
	ts.Start()

	t.Cleanup(func() {
		ts.Close()
		svr.ntfnMgr.Shutdown()
		svr.ntfnMgr.WaitForShutdown()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return &testServer{
		server: svr,
		ledger: l,
		source: source,
		addr:   ts.Listener.Addr().String(),
	}
}

// call posts cmd to the http endpoint and returns the status code and the
// decoded response, the response is nil unless the status is 200.
func (s *testServer) call(t *testing.T, user string, pass string, cmd interface{}) (int, *pooljson.Response) {
	t.Helper()
	marshalled, err := pooljson.MarshalCmd(1, cmd)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, "http://"+s.addr+"/", bytes.NewReader(marshalled))
	require.NoError(t, err)
	if user != "" {
		req.SetBasicAuth(user, pass)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}

	var res pooljson.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return resp.StatusCode, &res
}

// adminCall calls cmd as the admin user and unmarshals the result into
// result when the call succeeds.
func (s *testServer) adminCall(t *testing.T, cmd interface{}, result interface{}) *pooljson.RPCError {
	t.Helper()
	code, res := s.call(t, adminUser, adminPass, cmd)
	require.Equal(t, http.StatusOK, code)
	if res.Error != nil {
		return res.Error
	}
	if result != nil {
		require.NoError(t, json.Unmarshal(res.Result, result))
	}
	return nil
}

func ledgerCode(err *errcode.Error) pooljson.RPCErrorCode {
	return pooljson.RPCErrorCode(err.Code)
}

func TestPoolServer_Auth(t *testing.T) {
	s := newTestServer(t)

	t.Run("test_1", func(t *testing.T) {
		code, res := s.call(t, adminUser, adminPass, pooljson.NewVersionCmd())
		require.Equal(t, http.StatusOK, code)
		require.Nil(t, res.Error)

		var version map[string]pooljson.VersionResult
		require.NoError(t, json.Unmarshal(res.Result, &version))
		assert.Contains(t, version, "gaopoold")
	})

	t.Run("test_2", func(t *testing.T) {
		code, _ := s.call(t, "", "", pooljson.NewVersionCmd())
		assert.Equal(t, http.StatusUnauthorized, code)

		code, _ = s.call(t, adminUser, "wrong", pooljson.NewVersionCmd())
		assert.Equal(t, http.StatusUnauthorized, code)

		// limited users are served over websockets only
		code, _ = s.call(t, limitUser, limitPass, pooljson.NewVersionCmd())
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("test_3", func(t *testing.T) {
		body := `{"jsonrpc":"1.0","method":"nosuchmethod","params":[],"id":7}`
		req, err := http.NewRequest(http.MethodPost, "http://"+s.addr+"/", strings.NewReader(body))
		require.NoError(t, err)
		req.SetBasicAuth(adminUser, adminPass)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		var res pooljson.Response
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		require.NotNil(t, res.Error)
		assert.Equal(t, pooljson.ErrRPCMethodNotFound.Code, res.Error.Code)
	})
}

func TestPoolServer_LedgerCommands(t *testing.T) {
	s := newTestServer(t)
	aliceHex := alice.Hex()

	t.Run("test_1", func(t *testing.T) {
		var info pooljson.GetPoolInfoResult
		require.Nil(t, s.adminCall(t, pooljson.NewGetPoolInfoCmd(), &info))
		assert.Equal(t, "regtest", info.Network)
		assert.Equal(t, owner.Hex(), info.Owner)
		assert.Equal(t, pool.Hex(), info.PoolAddress)
		assert.Equal(t, uint64(5), info.WindowSize)
		assert.Equal(t, uint64(10), info.EpochLength)
		assert.Equal(t, "100", info.MinContribution)
		assert.Equal(t, "1000", info.BlockReward)
		assert.Empty(t, info.FeeBankAddress)
	})

	t.Run("test_2", func(t *testing.T) {
		rpcErr := s.adminCall(t, pooljson.NewDepositCmd(aliceHex, "50", nil), nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, ledgerCode(errcode.ErrBelowMinimum), rpcErr.Code)

		rpcErr = s.adminCall(t, pooljson.NewDepositCmd("0x1234", "100", nil), nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, pooljson.ErrAddressInvalid.Code, rpcErr.Code)

		rpcErr = s.adminCall(t, pooljson.NewDepositCmd(aliceHex, "ten", nil), nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, pooljson.ErrAmountInvalid.Code, rpcErr.Code)

		var res pooljson.CommonResult
		require.Nil(t, s.adminCall(t, pooljson.NewDepositCmd(aliceHex, "100", nil), &res))
		assert.True(t, res.Success)
	})

	t.Run("test_3", func(t *testing.T) {
		var mined pooljson.MineResult
		require.Nil(t, s.adminCall(t, pooljson.NewMineCmd(), &mined))
		assert.True(t, mined.Attempted)
		assert.Equal(t, uint64(0), mined.Window)
		assert.Equal(t, "10", mined.Total)
		assert.Equal(t, 1, mined.Participants)

		rpcErr := s.adminCall(t, pooljson.NewMineCmd(), nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, ledgerCode(errcode.ErrAlreadyAttempted), rpcErr.Code)

		rpcErr = s.adminCall(t, pooljson.NewClaimCmd(0, nil), nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, ledgerCode(errcode.ErrNotMature), rpcErr.Code)

		s.source.SetHeight(5)
		var claimed pooljson.ClaimResult
		require.Nil(t, s.adminCall(t, pooljson.NewClaimCmd(0, nil), &claimed))
		assert.True(t, claimed.Won)

		rpcErr = s.adminCall(t, pooljson.NewClaimCmd(0, nil), nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, ledgerCode(errcode.ErrAlreadyClaimed), rpcErr.Code)
	})

	t.Run("test_4", func(t *testing.T) {
		var attempt pooljson.CheckMiningAttemptResult
		require.Nil(t, s.adminCall(t, pooljson.NewCheckMiningAttemptCmd(0), &attempt))
		assert.True(t, attempt.Attempted)

		var winning pooljson.CheckWinningResult
		require.Nil(t, s.adminCall(t, pooljson.NewCheckWinningCmd(0), &winning))
		assert.True(t, winning.Won)

		var state pooljson.GetWindowStateResult
		require.Nil(t, s.adminCall(t, pooljson.NewGetWindowStateCmd(0), &state))
		assert.True(t, state.Attempted)
		assert.True(t, state.Claimed)
		assert.Equal(t, "10", state.AttemptValue)

		var record pooljson.GetEpochRecordResult
		require.Nil(t, s.adminCall(t, pooljson.NewGetEpochRecordCmd(nil), &record))
		assert.Equal(t, uint64(0), record.Epoch)
		assert.Equal(t, uint64(1), record.MinedWindows)
		assert.Equal(t, uint64(1), record.ClaimedWindows)
		assert.Equal(t, "100", record.TotalStake)
		assert.Equal(t, "1000", record.TotalClaimed)

		var contribution pooljson.FindContributionResult
		require.Nil(t, s.adminCall(t, pooljson.NewFindContributionCmd(aliceHex), &contribution))
		assert.Equal(t, "100", contribution.Stake)
		assert.Equal(t, "10", contribution.CommittedAttempt)
		assert.Equal(t, "90", contribution.UncommittedBalance)
		assert.Equal(t, "10", contribution.PerWindowAllocation)
	})

	t.Run("test_5", func(t *testing.T) {
		rpcErr := s.adminCall(t, pooljson.NewRedeemCmd(aliceHex), nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, ledgerCode(errcode.ErrNothingToRedeem), rpcErr.Code)

		var history pooljson.GetContributionsResult
		require.Nil(t, s.adminCall(t, pooljson.NewGetContributionsCmd(aliceHex, nil, nil, nil), &history))
		assert.Equal(t, int64(1), history.Total)
		require.Len(t, history.Contributions, 1)
		assert.Equal(t, "100", history.Contributions[0].Amount)
		assert.Equal(t, aliceHex, history.Contributions[0].CreditTo)

		num := constdef.MaxPageSize + 1
		rpcErr = s.adminCall(t, pooljson.NewGetRedemptionsCmd(aliceHex, nil, &num, nil), nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, pooljson.ErrInvalidRequestParams.Code, rpcErr.Code)
	})

	t.Run("test_6", func(t *testing.T) {
		s.source.Fail(rewardsource.OpCurrentHeight, fmt.Errorf("node down"))
		defer s.source.Fail(rewardsource.OpCurrentHeight, nil)

		rpcErr := s.adminCall(t, pooljson.NewGetWindowInfoCmd(), nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, ledgerCode(errcode.ErrExternalCallFailed), rpcErr.Code)
	})
}

func TestPoolServer_AdminCommands(t *testing.T) {
	s := newTestServer(t)
	ownerHex := owner.Hex()

	t.Run("test_1", func(t *testing.T) {
		rpcErr := s.adminCall(t, pooljson.NewSetFeePercentageCmd(alice.Hex(), 5), nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, ledgerCode(errcode.ErrNotOwner), rpcErr.Code)

		rpcErr = s.adminCall(t, pooljson.NewSetFeePercentageCmd(ownerHex, 101), nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, ledgerCode(errcode.ErrInvalidPercentage), rpcErr.Code)

		require.Nil(t, s.adminCall(t, pooljson.NewSetFeePercentageCmd(ownerHex, 5), nil))
		require.Nil(t, s.adminCall(t, pooljson.NewSetMaxContributionCmd(ownerHex, "500"), nil))
		require.Nil(t, s.adminCall(t, pooljson.NewSetFeeBankCmd(ownerHex, alice.Hex(), 40), nil))

		var info pooljson.GetPoolInfoResult
		require.Nil(t, s.adminCall(t, pooljson.NewGetPoolInfoCmd(), &info))
		assert.Equal(t, uint64(5), info.FeePercentage)
		assert.Equal(t, "500", info.MaxContribution)
		assert.Equal(t, alice.Hex(), info.FeeBankAddress)
		assert.Equal(t, uint64(40), info.FeeBankPercentage)
	})

	t.Run("test_2", func(t *testing.T) {
		require.Nil(t, s.adminCall(t, pooljson.NewSetPausedCmd(ownerHex, true), nil))

		rpcErr := s.adminCall(t, pooljson.NewDepositCmd(alice.Hex(), "100", nil), nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, ledgerCode(errcode.ErrPoolPaused), rpcErr.Code)

		require.Nil(t, s.adminCall(t, pooljson.NewSetPausedCmd(ownerHex, false), nil))
		require.Nil(t, s.adminCall(t, pooljson.NewDepositCmd(alice.Hex(), "100", nil), nil))
	})

	t.Run("test_3", func(t *testing.T) {
		require.Nil(t, s.adminCall(t, pooljson.NewSetOwnerCmd(ownerHex, alice.Hex()), nil))

		rpcErr := s.adminCall(t, pooljson.NewSetPausedCmd(ownerHex, true), nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, ledgerCode(errcode.ErrNotOwner), rpcErr.Code)

		var info pooljson.GetPoolInfoResult
		require.Nil(t, s.adminCall(t, pooljson.NewGetPoolInfoCmd(), &info))
		assert.Equal(t, alice.Hex(), info.Owner)
	})
}

// wsDial opens an authenticated websocket connection as the given user.
func (s *testServer) wsDial(t *testing.T, user string, pass string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	login := user + ":" + pass
	header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(login)))
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+s.addr+"/ws", header)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
	})
	return conn
}

func wsCall(t *testing.T, conn *websocket.Conn, id int, cmd interface{}) *pooljson.Response {
	t.Helper()
	marshalled, err := pooljson.MarshalCmd(id, cmd)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, marshalled))
	return wsReadResponse(t, conn)
}

func wsReadResponse(t *testing.T, conn *websocket.Conn) *pooljson.Response {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var res pooljson.Response
	require.NoError(t, json.Unmarshal(msg, &res))
	return &res
}

func TestPoolServer_Websocket(t *testing.T) {
	s := newTestServer(t)

	t.Run("test_1", func(t *testing.T) {
		conn := s.wsDial(t, limitUser, limitPass)

		res := wsCall(t, conn, 1, pooljson.NewGetPoolInfoCmd())
		require.Nil(t, res.Error)

		res = wsCall(t, conn, 2, pooljson.NewMineCmd())
		require.NotNil(t, res.Error)
		assert.Equal(t, pooljson.ErrRPCInvalidParams.Code, res.Error.Code)
	})

	t.Run("test_2", func(t *testing.T) {
		conn := s.wsDial(t, adminUser, adminPass)

		res := wsCall(t, conn, 1, pooljson.NewNotifyWindowsCmd())
		require.Nil(t, res.Error)

		s.server.HandleRewardManagerNotification(&rewardmgr.Notification{
			Type: rewardmgr.NTWindowOpened,
			Data: &rewardmgr.WindowOpened{Window: 3, Epoch: 0, Attempted: true},
		})
		s.server.HandleRewardManagerNotification(&rewardmgr.Notification{
			Type: rewardmgr.NTWindowResolved,
			Data: &ledger.ClaimResult{Window: 3, Epoch: 0, Won: true},
		})

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var request pooljson.Request
		require.NoError(t, json.Unmarshal(msg, &request))
		cmd, err := pooljson.UnmarshalCmd(&request)
		require.NoError(t, err)
		opened, ok := cmd.(*pooljson.WindowOpenedNtfn)
		require.True(t, ok)
		assert.Equal(t, uint64(3), opened.Window)
		assert.True(t, opened.Attempted)

		_, msg, err = conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(msg, &request))
		cmd, err = pooljson.UnmarshalCmd(&request)
		require.NoError(t, err)
		resolved, ok := cmd.(*pooljson.WindowResolvedNtfn)
		require.True(t, ok)
		assert.Equal(t, uint64(3), resolved.Window)
		assert.True(t, resolved.Won)
	})

	t.Run("test_3", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial("ws://"+s.addr+"/ws", nil)
		require.NoError(t, err)
		defer conn.Close()

		res := wsCall(t, conn, 1, pooljson.NewAuthenticateCmd(limitUser, limitPass))
		require.Nil(t, res.Error)
		res = wsCall(t, conn, 2, pooljson.NewVersionCmd())
		require.Nil(t, res.Error)

		bad, _, err := websocket.DefaultDialer.Dial("ws://"+s.addr+"/ws", nil)
		require.NoError(t, err)
		defer bad.Close()
		marshalled, err := pooljson.MarshalCmd(1, pooljson.NewAuthenticateCmd(limitUser, "wrong"))
		require.NoError(t, err)
		require.NoError(t, bad.WriteMessage(websocket.TextMessage, marshalled))
		require.NoError(t, bad.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, _, err = bad.ReadMessage()
		assert.Error(t, err)
	})
}

func TestSetupRPCListeners(t *testing.T) {
	t.Run("test_1", func(t *testing.T) {
		dir := t.TempDir()
		certFile := filepath.Join(dir, "rpc.cert")
		keyFile := filepath.Join(dir, "rpc.key")

		listeners, err := setupRPCListeners([]string{"127.0.0.1:0"}, keyFile, certFile, nil, false)
		require.NoError(t, err)
		require.Len(t, listeners, 1)
		listeners[0].Close()
		cert, err := os.ReadFile(certFile)
		require.NoError(t, err)

		// an existing pair is reused
		listeners, err = setupRPCListeners([]string{"127.0.0.1:0"}, keyFile, certFile, nil, false)
		require.NoError(t, err)
		listeners[0].Close()
		again, err := os.ReadFile(certFile)
		require.NoError(t, err)
		assert.Equal(t, cert, again)
	})

	t.Run("test_2", func(t *testing.T) {
		dir := t.TempDir()
		certFile := filepath.Join(dir, "rpc.cert")
		keyFile := filepath.Join(dir, "rpc.key")
		require.NoError(t, os.WriteFile(certFile, []byte("not a cert"), 0600))

		// only one half of the pair exists, nothing is generated
		_, err := setupRPCListeners([]string{"127.0.0.1:0"}, keyFile, certFile, nil, false)
		assert.Error(t, err)
		ok, err := utils.FileExists(keyFile)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
